// Package converter turns rendered HTML documents into downloadable files.
package converter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/pep299/pdf-generator-api/internal/config"
	"github.com/pep299/pdf-generator-api/internal/logging"
)

// Sentinel errors for PDF engines
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
)

// Content types of produced files
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeHTML = "text/html; charset=utf-8"
)

// Output is one file produced by a conversion
type Output struct {
	Name        string
	ContentType string
	Data        []byte
}

// Converter converts an HTML document into files named after filename
type Converter interface {
	Convert(ctx context.Context, html, filename string) ([]Output, error)
	Name() string
	Close() error
}

// Compile-time interface checks
var (
	_ Converter = (*RodConverter)(nil)
	_ Converter = (*HTMLExport)(nil)
	_ Converter = (*Chain)(nil)
)

// Chain tries a primary engine and falls back to another one on failure
type Chain struct {
	primary  Converter
	fallback Converter
	logger   *logging.Logger
}

// NewChain creates a converter chain
func NewChain(primary, fallback Converter, logger *logging.Logger) *Chain {
	if logger == nil {
		logger = logging.New(nil)
	}
	return &Chain{primary: primary, fallback: fallback, logger: logger}
}

// Convert runs the primary engine, then the fallback if it fails
func (c *Chain) Convert(ctx context.Context, html, filename string) ([]Output, error) {
	outputs, err := c.primary.Convert(ctx, html, filename)
	if err == nil {
		return outputs, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	c.logger.Warnf("pdf engine failed: %v", err)
	return c.fallback.Convert(ctx, html, filename)
}

// Name returns the primary engine name
func (c *Chain) Name() string {
	return c.primary.Name()
}

// Close closes both engines
func (c *Chain) Close() error {
	return errors.Join(c.primary.Close(), c.fallback.Close())
}

// New builds the converter selected by cfg.PDFEngine
func New(cfg *config.Config, logger *logging.Logger) (Converter, error) {
	export := NewHTMLExport()
	timeout := time.Duration(cfg.PDFTimeout) * time.Second

	switch cfg.PDFEngine {
	case config.EngineNone:
		return export, nil
	case config.EngineChrome:
		return NewChain(NewRodConverter(timeout, cfg.BrowserBinary), export, logger), nil
	case config.EngineAuto:
		if !browserAvailable(cfg.BrowserBinary) {
			if logger != nil {
				logger.Infof("No Chrome/Chromium found, documents are exported as HTML")
			}
			return export, nil
		}
		return NewChain(NewRodConverter(timeout, cfg.BrowserBinary), export, logger), nil
	default:
		return nil, fmt.Errorf("unknown pdf engine %q", cfg.PDFEngine)
	}
}

// browserAvailable reports whether a local Chrome can be launched
func browserAvailable(bin string) bool {
	if bin != "" {
		return true
	}
	_, found := launcher.LookPath()
	return found
}
