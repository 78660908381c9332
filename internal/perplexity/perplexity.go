// Package perplexity generates document content through the Perplexity
// chat completions API, which speaks the OpenAI wire format.
package perplexity

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/pep299/pdf-generator-api/internal/cache"
	"github.com/pep299/pdf-generator-api/internal/logging"
)

// Defaults for the completions call
const (
	DefaultBaseURL = "https://api.perplexity.ai"
	DefaultModel   = "sonar-pro"

	temperature = 0.7
	topP        = 0.9
	maxTokens   = 4000
)

// ErrEmptyResponse is returned when the API answers without content
var ErrEmptyResponse = errors.New("no content in response")

// ContentRequest represents a content generation request
type ContentRequest struct {
	Title    string
	Template string
	Points   []string
	Language string
}

// Client handles Perplexity API operations
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	timeout     time.Duration
	templates   Templates
	cache       cache.Cache
	logger      *logging.Logger
	requestOpts []option.RequestOption
	api         openai.Client
}

// Option configures a Client
type Option func(*Client)

// WithCache caches generated content
func WithCache(c cache.Cache) Option {
	return func(client *Client) { client.cache = c }
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(client *Client) { client.logger = l }
}

// WithTemplates replaces the template catalog
func WithTemplates(t Templates) Option {
	return func(client *Client) { client.templates = t }
}

// WithTimeout bounds each completions call
func WithTimeout(d time.Duration) Option {
	return func(client *Client) { client.timeout = d }
}

// WithRequestOptions appends raw SDK options, used by tests
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(client *Client) { client.requestOpts = append(client.requestOpts, opts...) }
}

// NewClient creates a new Perplexity API client. An empty apiKey puts the
// client in demo mode.
func NewClient(apiKey, baseURL, model string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}

	c := &Client{
		apiKey:    apiKey,
		baseURL:   baseURL,
		model:     model,
		timeout:   120 * time.Second,
		templates: DefaultTemplates(),
		logger:    logging.New(nil),
	}
	for _, opt := range opts {
		opt(c)
	}

	requestOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	}
	c.api = openai.NewClient(append(requestOpts, c.requestOpts...)...)

	return c
}

// DemoMode reports whether the client answers without calling the API
func (c *Client) DemoMode() bool {
	return c.apiKey == ""
}

// GenerateContent returns HTML content for the request. API failures are
// logged and answered with fallback content; only cancellation of ctx is
// returned as an error.
func (c *Client) GenerateContent(ctx context.Context, req ContentRequest) (string, error) {
	if c.DemoMode() {
		c.logger.Infof("Using demo content (no API key configured)")
		return DemoContent(req.Title, req.Points), nil
	}

	key := cache.GenerateKey(req.Template, req.Title, req.Language, req.Points)
	if c.cache != nil {
		if entry, err := c.cache.Get(ctx, key); err == nil {
			c.logger.Infof("Using cached AI content for: %s", req.Title)
			return entry.Content, nil
		}
	}

	content, err := c.complete(ctx, buildPrompt(c.templates.Instruction(req.Template), req))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		c.logger.Errorf("AI generation failed: %v", err)
		return FallbackContent(req.Points), nil
	}

	c.logger.Infof("AI content generated (%d chars)", len(content))

	if c.cache != nil {
		entry := &cache.CacheEntry{Template: req.Template, Title: req.Title, Content: content}
		if err := c.cache.Set(ctx, key, entry); err != nil {
			c.logger.Warnf("Failed to cache AI content: %v", err)
		}
	}

	return content, nil
}

// complete sends one user message and returns the normalized HTML answer
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.logger.Infof("Requesting content from Perplexity API...")
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(temperature),
		TopP:        openai.Float(topP),
		MaxTokens:   openai.Int(maxTokens),
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}

	return normalizeContent(resp.Choices[0].Message.Content)
}
