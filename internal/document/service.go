// Package document turns generation requests into stored document files.
package document

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pep299/pdf-generator-api/internal/converter"
	"github.com/pep299/pdf-generator-api/internal/logging"
	"github.com/pep299/pdf-generator-api/internal/perplexity"
	"github.com/pep299/pdf-generator-api/internal/slack"
	"github.com/pep299/pdf-generator-api/internal/storage"
)

// ContentGenerator produces HTML body content for AI requests
type ContentGenerator interface {
	GenerateContent(ctx context.Context, req perplexity.ContentRequest) (string, error)
}

// Notifier is told about generated documents
type Notifier interface {
	SendDocumentGenerated(ctx context.Context, event slack.DocumentEvent) error
}

// Result describes a generated document
type Result struct {
	Filename string        `json:"filename"`
	Size     int64         `json:"size"`
	Duration time.Duration `json:"duration"`
	Files    []string      `json:"files"`
}

// ServiceConfig holds the collaborators of a Service
type ServiceConfig struct {
	Content       ContentGenerator
	Converter     converter.Converter
	Store         storage.Store
	Notifier      Notifier // optional
	Logger        *logging.Logger
	DefaultAuthor string
}

// Service runs the generation pipeline: content, HTML, conversion, storage
type Service struct {
	content       ContentGenerator
	converter     converter.Converter
	store         storage.Store
	notifier      Notifier
	logger        *logging.Logger
	defaultAuthor string
	now           func() time.Time
	newID         func() string
}

// NewService creates a new generation service
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.New(nil)
	}
	return &Service{
		content:       cfg.Content,
		converter:     cfg.Converter,
		store:         cfg.Store,
		notifier:      cfg.Notifier,
		logger:        logger,
		defaultAuthor: cfg.DefaultAuthor,
		now:           time.Now,
		newID:         uuid.NewString,
	}
}

// Generate validates req and produces a stored document. Validation
// failures are returned as *ValidationError.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	start := s.now()

	if err := req.Validate(); err != nil {
		s.logger.Warnf("Invalid request: %v", err)
		return nil, err
	}
	req.Normalize(s.defaultAuthor)

	s.logger.Infof("PDF generation request: %s", req.Title)

	content, err := s.buildContent(ctx, req)
	if err != nil {
		return nil, err
	}

	page, err := RenderHTML(Page{
		Title:        req.Title,
		Description:  req.Description,
		Author:       req.Author,
		Content:      content,
		CoverStyle:   req.CoverStyle,
		PrimaryColor: req.PrimaryColor,
		Now:          start,
	})
	if err != nil {
		return nil, err
	}

	filename := s.newFilename(start)
	outputs, err := s.converter.Convert(ctx, page, filename)
	if err != nil {
		s.logger.Errorf("PDF conversion error: %v", err)
		return nil, fmt.Errorf("converting document: %w", err)
	}

	result := &Result{Filename: filename}
	for _, out := range outputs {
		if err := s.store.Save(ctx, out.Name, out.Data, out.ContentType); err != nil {
			s.logger.Errorf("Document generation failed: %v", err)
			return nil, fmt.Errorf("saving %s: %w", out.Name, err)
		}
		result.Files = append(result.Files, out.Name)
		if out.Name == filename {
			result.Size = int64(len(out.Data))
		}
	}
	s.logger.Infof("Document generated: %s (%d bytes)", filename, result.Size)

	result.Duration = s.now().Sub(start)
	s.logger.Infof("PDF ready: %s in %.2fs", filename, result.Duration.Seconds())

	if s.notifier != nil {
		event := slack.DocumentEvent{
			Title:    req.Title,
			Author:   req.Author,
			Template: req.Template,
			Filename: filename,
			Size:     result.Size,
			Duration: result.Duration,
			UsedAI:   req.UseAI,
		}
		if err := s.notifier.SendDocumentGenerated(ctx, event); err != nil {
			s.logger.Warnf("Failed to send Slack notification: %v", err)
		}
	}

	return result, nil
}

func (s *Service) buildContent(ctx context.Context, req Request) (string, error) {
	if !req.UseAI || s.content == nil {
		return KeyPointsContent(req.Points), nil
	}

	content, err := s.content.GenerateContent(ctx, perplexity.ContentRequest{
		Title:    req.Title,
		Template: req.Template,
		Points:   req.Points,
		Language: req.Language,
	})
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	return content, nil
}

// newFilename returns document-<unix>-<8 hex>.pdf
func (s *Service) newFilename(t time.Time) string {
	suffix := strings.ReplaceAll(s.newID(), "-", "")
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("document-%d-%s.pdf", t.Unix(), suffix)
}
