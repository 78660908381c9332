// Package storage keeps generated document files in a local directory,
// a Cloud Storage bucket or an S3-compatible MinIO bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pep299/pdf-generator-api/internal/config"
)

// Common storage errors
var (
	ErrNotFound    = errors.New("file not found")
	ErrInvalidName = errors.New("invalid filename")
)

// FileInfo describes a stored file
type FileInfo struct {
	Name    string    `json:"filename"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modified"`
}

// Store persists output files by flat name
type Store interface {
	Save(ctx context.Context, name string, data []byte, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, FileInfo, error)
	List(ctx context.Context) ([]FileInfo, error)
	Delete(ctx context.Context, name string) error
	Close() error
}

// ValidateName rejects names that could escape the store
func ValidateName(name string) error {
	if name == "" || name == "." ||
		strings.Contains(name, "..") ||
		strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// New creates the store selected by cfg.StorageBackend
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageBackend {
	case config.StorageLocal:
		return NewLocalStore(cfg.OutputDir)
	case config.StorageGCS:
		return NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSPrefix)
	case config.StorageMinio:
		return NewMinioStore(ctx, MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
