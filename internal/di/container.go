package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pep299/pdf-generator-api/internal/cache"
	"github.com/pep299/pdf-generator-api/internal/config"
	"github.com/pep299/pdf-generator-api/internal/converter"
	"github.com/pep299/pdf-generator-api/internal/document"
	"github.com/pep299/pdf-generator-api/internal/logging"
	"github.com/pep299/pdf-generator-api/internal/perplexity"
	"github.com/pep299/pdf-generator-api/internal/slack"
	"github.com/pep299/pdf-generator-api/internal/storage"
)

// Container holds all dependencies
type Container struct {
	Config       *config.Config
	Logger       *logging.Logger
	ContentCache *cache.MemoryCache // nil when caching is disabled
	AIClient     *perplexity.Client
	Converter    converter.Converter
	Store        storage.Store
	Files        *storage.Manager
	Generator    *document.Service
	SlackClient  *slack.Client // nil when Slack is not configured
}

// NewContainer creates a new dependency container
func NewContainer(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.New(nil)
	}

	templates, err := perplexity.LoadTemplates(cfg.TemplateCatalog)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	store, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	conv, err := converter.New(cfg, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating converter: %w", err)
	}

	c := &Container{
		Config:    cfg,
		Logger:    logger,
		Converter: conv,
		Store:     store,
	}

	aiOpts := []perplexity.Option{
		perplexity.WithLogger(logger),
		perplexity.WithTemplates(templates),
		perplexity.WithTimeout(time.Duration(cfg.AITimeout) * time.Second),
	}
	if cfg.ContentCacheTTL > 0 {
		c.ContentCache = cache.NewMemoryCache(time.Duration(cfg.ContentCacheTTL) * time.Minute)
		aiOpts = append(aiOpts, perplexity.WithCache(c.ContentCache))
	}
	c.AIClient = perplexity.NewClient(cfg.PerplexityAPIKey, cfg.PerplexityBaseURL, cfg.PerplexityModel, aiOpts...)

	var (
		docNotifier     document.Notifier
		cleanupNotifier storage.CleanupNotifier
	)
	if cfg.SlackBotToken != "" {
		c.SlackClient = slack.NewClient(cfg.SlackBotToken, cfg.SlackChannel)
		docNotifier = c.SlackClient
		cleanupNotifier = c.SlackClient
	}

	c.Files = storage.NewManager(store, logger, cleanupNotifier)
	c.Generator = document.NewService(document.ServiceConfig{
		Content:       c.AIClient,
		Converter:     conv,
		Store:         store,
		Notifier:      docNotifier,
		Logger:        logger,
		DefaultAuthor: cfg.DefaultAuthor,
	})

	return c, nil
}

// Close cleans up resources
func (c *Container) Close() error {
	var errs []error
	if c.Converter != nil {
		errs = append(errs, c.Converter.Close())
	}
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	if c.ContentCache != nil {
		errs = append(errs, c.ContentCache.Close())
	}
	return errors.Join(errs...)
}
