package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("PERPLEXITY_API_KEY", "pplx-test-key")
	t.Setenv("OUTPUT_DIR", "out")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.PerplexityAPIKey != "pplx-test-key" {
		t.Errorf("Expected PerplexityAPIKey to be 'pplx-test-key', got '%s'", cfg.PerplexityAPIKey)
	}
	if !cfg.APIKeyConfigured() {
		t.Error("Expected API key to be reported as configured")
	}
	if cfg.OutputDir != "out" {
		t.Errorf("Expected OutputDir to be 'out', got '%s'", cfg.OutputDir)
	}
	if cfg.Port != "5000" {
		t.Errorf("Expected Port to be '5000', got '%s'", cfg.Port)
	}
	if cfg.PerplexityModel != "sonar-pro" {
		t.Errorf("Expected model 'sonar-pro', got '%s'", cfg.PerplexityModel)
	}
	if cfg.CleanupMaxAge() != 7*24*time.Hour {
		t.Errorf("Expected 7 day cleanup age, got %v", cfg.CleanupMaxAge())
	}
	if cfg.MaxBodyBytes != 50*1024*1024 {
		t.Errorf("Expected 50MB body limit, got %d", cfg.MaxBodyBytes)
	}
}

func TestLoadConfigDemoMode(t *testing.T) {
	t.Setenv("PERPLEXITY_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("A missing API key must not fail config loading: %v", err)
	}
	if cfg.APIKeyConfigured() {
		t.Error("Expected API key to be reported as missing")
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		field string
	}{
		{
			name:  "unknown storage backend",
			env:   map[string]string{"STORAGE_BACKEND": "ftp"},
			field: "STORAGE_BACKEND",
		},
		{
			name:  "gcs without bucket",
			env:   map[string]string{"STORAGE_BACKEND": "gcs", "GCS_BUCKET": ""},
			field: "GCS_BUCKET",
		},
		{
			name:  "minio without endpoint",
			env:   map[string]string{"STORAGE_BACKEND": "minio", "MINIO_ENDPOINT": ""},
			field: "MINIO_ENDPOINT",
		},
		{
			name:  "unknown pdf engine",
			env:   map[string]string{"PDF_ENGINE": "wkhtmltopdf"},
			field: "PDF_ENGINE",
		},
		{
			name:  "negative cleanup age",
			env:   map[string]string{"CLEANUP_MAX_AGE_HOURS": "-1"},
			field: "CLEANUP_MAX_AGE_HOURS",
		},
		{
			name:  "malformed slack token",
			env:   map[string]string{"SLACK_BOT_TOKEN": "not-a-bot-token"},
			field: "SLACK_BOT_TOKEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("Expected validation error")
			}

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Expected *ConfigError, got %T", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Expected field '%s', got '%s'", tt.field, cfgErr.Field)
			}
		})
	}
}

func TestGetEnvOrDefaultInt(t *testing.T) {
	t.Setenv("TEST_INT_VALUE", "42")
	t.Setenv("TEST_INT_INVALID", "forty-two")

	if got := getEnvOrDefaultInt("TEST_INT_VALUE", 1); got != 42 {
		t.Errorf("Expected 42, got %d", got)
	}
	if got := getEnvOrDefaultInt("TEST_INT_INVALID", 7); got != 7 {
		t.Errorf("Expected fallback 7 for invalid value, got %d", got)
	}
	if got := getEnvOrDefaultInt("TEST_INT_UNSET", 9); got != 9 {
		t.Errorf("Expected fallback 9 for unset value, got %d", got)
	}
}

func TestGetEnvOrDefaultBool(t *testing.T) {
	t.Setenv("TEST_BOOL_VALUE", "true")

	if !getEnvOrDefaultBool("TEST_BOOL_VALUE", false) {
		t.Error("Expected true")
	}
	if getEnvOrDefaultBool("TEST_BOOL_UNSET", false) {
		t.Error("Expected default false")
	}
}
