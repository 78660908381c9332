package di

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pep299/pdf-generator-api/internal/config"
	"github.com/pep299/pdf-generator-api/internal/document"
	"github.com/pep299/pdf-generator-api/internal/logging"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		StorageBackend:     config.StorageLocal,
		OutputDir:          filepath.Join(t.TempDir(), "generated_pdfs"),
		PDFEngine:          config.EngineNone,
		PDFTimeout:         5,
		AITimeout:          5,
		DefaultAuthor:      "Emmanuel",
		ContentCacheTTL:    60,
		CleanupMaxAgeHours: 168,
	}
}

func TestNewContainer(t *testing.T) {
	cfg := testConfig(t)

	c, err := NewContainer(context.Background(), cfg, logging.New(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}
	defer c.Close()

	if c.Generator == nil || c.Files == nil || c.AIClient == nil {
		t.Fatal("Expected generator, file manager and AI client to be wired")
	}
	if c.ContentCache == nil {
		t.Error("Expected content cache for a positive TTL")
	}
	if c.SlackClient != nil {
		t.Error("Expected no Slack client without a token")
	}
	if !c.AIClient.DemoMode() {
		t.Error("Expected demo mode without an API key")
	}
	if c.Converter.Name() != "html-export" {
		t.Errorf("Expected html-export engine, got '%s'", c.Converter.Name())
	}

	// Demo AI generation end to end
	result, err := c.Generator.Generate(context.Background(), document.Request{
		Title:  "Demo document",
		Points: []string{"One"},
		UseAI:  true,
	})
	if err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, result.Filename)); err != nil {
		t.Errorf("Expected generated file on disk: %v", err)
	}
}

func TestNewContainerOptionalParts(t *testing.T) {
	cfg := testConfig(t)
	cfg.ContentCacheTTL = 0
	cfg.SlackBotToken = "xoxb-test"
	cfg.SlackChannel = "#docs"

	c, err := NewContainer(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}
	defer c.Close()

	if c.ContentCache != nil {
		t.Error("Expected no content cache when TTL is 0")
	}
	if c.SlackClient == nil {
		t.Error("Expected Slack client with a token")
	}
}

func TestNewContainerBadCatalog(t *testing.T) {
	cfg := testConfig(t)
	cfg.TemplateCatalog = filepath.Join(t.TempDir(), "missing.yaml")

	if _, err := NewContainer(context.Background(), cfg, nil); err == nil {
		t.Error("Expected error for a missing template catalog")
	}
}
