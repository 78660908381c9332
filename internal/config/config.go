package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageLocal = "local"
	StorageGCS   = "gcs"
	StorageMinio = "minio"
)

// PDF engines
const (
	EngineAuto   = "auto"
	EngineChrome = "chrome"
	EngineNone   = "none"
)

// Config holds all configuration for the application
type Config struct {
	// Server settings
	Port         string `json:"port"`
	Host         string `json:"host"`
	MaxBodyBytes int64  `json:"max_body_bytes"`

	// Perplexity API settings
	PerplexityAPIKey  string `json:"-"` // Don't expose in JSON
	PerplexityBaseURL string `json:"perplexity_base_url"`
	PerplexityModel   string `json:"perplexity_model"`
	AITimeout         int    `json:"ai_timeout_seconds"`

	// Document settings
	DefaultAuthor   string `json:"default_author"`
	TemplateCatalog string `json:"template_catalog"`
	ContentCacheTTL int    `json:"content_cache_ttl_minutes"`

	// Directories
	OutputDir    string `json:"output_dir"`
	LogDir       string `json:"log_dir"`
	TemplatesDir string `json:"templates_dir"`

	// Storage settings
	StorageBackend string `json:"storage_backend"` // "local", "gcs" or "minio"
	GCSBucket      string `json:"gcs_bucket"`
	GCSPrefix      string `json:"gcs_prefix"`
	MinioEndpoint  string `json:"minio_endpoint"`
	MinioAccessKey string `json:"-"`
	MinioSecretKey string `json:"-"`
	MinioBucket    string `json:"minio_bucket"`
	MinioUseSSL    bool   `json:"minio_use_ssl"`

	// PDF engine settings
	PDFEngine     string `json:"pdf_engine"` // "auto", "chrome" or "none"
	PDFTimeout    int    `json:"pdf_timeout_seconds"`
	BrowserBinary string `json:"browser_binary"`

	// Cleanup settings
	CleanupMaxAgeHours int    `json:"cleanup_max_age_hours"`
	CleanupSchedule    string `json:"cleanup_schedule"`
	CleanupAuthToken   string `json:"-"`

	// Slack settings
	SlackBotToken string `json:"-"`
	SlackChannel  string `json:"slack_channel"`
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	config := &Config{
		Port:               getEnvOrDefault("PORT", "5000"),
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		MaxBodyBytes:       int64(getEnvOrDefaultInt("MAX_BODY_BYTES", 50*1024*1024)),
		PerplexityAPIKey:   getEnvOrDefault("PERPLEXITY_API_KEY", ""),
		PerplexityBaseURL:  getEnvOrDefault("PERPLEXITY_BASE_URL", "https://api.perplexity.ai"),
		PerplexityModel:    getEnvOrDefault("PERPLEXITY_MODEL", "sonar-pro"),
		AITimeout:          getEnvOrDefaultInt("AI_TIMEOUT_SECONDS", 120),
		DefaultAuthor:      getEnvOrDefault("DEFAULT_AUTHOR", "Emmanuel"),
		TemplateCatalog:    getEnvOrDefault("TEMPLATE_CATALOG", ""),
		ContentCacheTTL:    getEnvOrDefaultInt("CONTENT_CACHE_TTL_MINUTES", 60),
		OutputDir:          getEnvOrDefault("OUTPUT_DIR", "generated_pdfs"),
		LogDir:             getEnvOrDefault("LOG_DIR", "logs"),
		TemplatesDir:       getEnvOrDefault("TEMPLATES_DIR", "templates"),
		StorageBackend:     strings.ToLower(getEnvOrDefault("STORAGE_BACKEND", StorageLocal)),
		GCSBucket:          getEnvOrDefault("GCS_BUCKET", ""),
		GCSPrefix:          getEnvOrDefault("GCS_PREFIX", "documents/"),
		MinioEndpoint:      getEnvOrDefault("MINIO_ENDPOINT", ""),
		MinioAccessKey:     getEnvOrDefault("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:     getEnvOrDefault("MINIO_SECRET_KEY", ""),
		MinioBucket:        getEnvOrDefault("MINIO_BUCKET", "generated-pdfs"),
		MinioUseSSL:        getEnvOrDefaultBool("MINIO_USE_SSL", false),
		PDFEngine:          strings.ToLower(getEnvOrDefault("PDF_ENGINE", EngineAuto)),
		PDFTimeout:         getEnvOrDefaultInt("PDF_TIMEOUT_SECONDS", 60),
		BrowserBinary:      getEnvOrDefault("ROD_BROWSER_BIN", ""),
		CleanupMaxAgeHours: getEnvOrDefaultInt("CLEANUP_MAX_AGE_HOURS", 7*24),
		CleanupSchedule:    getEnvOrDefault("CLEANUP_SCHEDULE", ""),
		CleanupAuthToken:   getEnvOrDefault("CLEANUP_AUTH_TOKEN", ""),
		SlackBotToken:      getEnvOrDefault("SLACK_BOT_TOKEN", ""),
		SlackChannel:       getEnvOrDefault("SLACK_CHANNEL", "#pdf-generator"),
	}

	return config, config.validate()
}

// APIKeyConfigured reports whether AI generation talks to the real API
func (c *Config) APIKeyConfigured() bool {
	return c.PerplexityAPIKey != ""
}

// CleanupMaxAge is the age after which stored files are deleted
func (c *Config) CleanupMaxAge() time.Duration {
	return time.Duration(c.CleanupMaxAgeHours) * time.Hour
}

// validate checks that the configuration is usable
func (c *Config) validate() error {
	switch c.StorageBackend {
	case StorageLocal:
		if c.OutputDir == "" {
			return &ConfigError{Field: "OUTPUT_DIR", Message: "output directory is required for local storage"}
		}
	case StorageGCS:
		if c.GCSBucket == "" {
			return &ConfigError{Field: "GCS_BUCKET", Message: "bucket is required for gcs storage"}
		}
	case StorageMinio:
		if c.MinioEndpoint == "" {
			return &ConfigError{Field: "MINIO_ENDPOINT", Message: "endpoint is required for minio storage"}
		}
		if c.MinioBucket == "" {
			return &ConfigError{Field: "MINIO_BUCKET", Message: "bucket is required for minio storage"}
		}
	default:
		return &ConfigError{Field: "STORAGE_BACKEND", Message: "unsupported backend " + strconv.Quote(c.StorageBackend)}
	}

	switch c.PDFEngine {
	case EngineAuto, EngineChrome, EngineNone:
	default:
		return &ConfigError{Field: "PDF_ENGINE", Message: "must be auto, chrome or none"}
	}

	if c.CleanupMaxAgeHours <= 0 {
		return &ConfigError{Field: "CLEANUP_MAX_AGE_HOURS", Message: "must be positive"}
	}
	if c.SlackBotToken != "" && !strings.HasPrefix(c.SlackBotToken, "xoxb-") {
		return &ConfigError{Field: "SLACK_BOT_TOKEN", Message: "must start with xoxb-"}
	}
	return nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default if not set
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
