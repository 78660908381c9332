package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSStore keeps files as objects under a prefix of a Cloud Storage bucket
type GCSStore struct {
	client     *storage.Client
	bucketName string
	prefix     string
}

// NewGCSStore creates a Cloud Storage store using default credentials
func NewGCSStore(ctx context.Context, bucketName, prefix string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return newGCSStore(client, bucketName, prefix), nil
}

func newGCSStore(client *storage.Client, bucketName, prefix string) *GCSStore {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &GCSStore{client: client, bucketName: bucketName, prefix: prefix}
}

func (s *GCSStore) object(name string) *storage.ObjectHandle {
	return s.client.Bucket(s.bucketName).Object(s.prefix + name)
}

// Save uploads data as an object
func (s *GCSStore) Save(ctx context.Context, name string, data []byte, contentType string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	writer := s.object(name).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return fmt.Errorf("writing object data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing object writer: %w", err)
	}

	return nil
}

// Open returns a reader over the object
func (s *GCSStore) Open(ctx context.Context, name string) (io.ReadCloser, FileInfo, error) {
	if err := ValidateName(name); err != nil {
		return nil, FileInfo{}, err
	}

	reader, err := s.object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, FileInfo{}, ErrNotFound
		}
		return nil, FileInfo{}, fmt.Errorf("opening object reader: %w", err)
	}

	info := FileInfo{Name: name, Size: reader.Attrs.Size, ModTime: reader.Attrs.LastModified}
	return reader, info, nil
}

// List returns the objects directly under the prefix
func (s *GCSStore) List(ctx context.Context) ([]FileInfo, error) {
	it := s.client.Bucket(s.bucketName).Objects(ctx, &storage.Query{Prefix: s.prefix})

	var files []FileInfo
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing objects: %w", err)
		}

		name := strings.TrimPrefix(attrs.Name, s.prefix)
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		files = append(files, FileInfo{Name: name, Size: attrs.Size, ModTime: attrs.Updated})
	}

	return files, nil
}

// Delete removes an object
func (s *GCSStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	if err := s.object(name).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting object: %w", err)
	}

	return nil
}

// Close closes the storage client
func (s *GCSStore) Close() error {
	return s.client.Close()
}
