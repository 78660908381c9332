package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioOptions configures a MinioStore
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStore keeps files in an S3-compatible bucket
type MinioStore struct {
	client     *minio.Client
	bucketName string
}

// NewMinioStore connects to the endpoint and creates the bucket if needed
func NewMinioStore(ctx context.Context, opts MinioOptions) (*MinioStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket %s: %w", opts.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("creating bucket %s: %w", opts.Bucket, err)
		}
	}

	return &MinioStore{client: client, bucketName: opts.Bucket}, nil
}

// Save uploads data as an object
func (s *MinioStore) Save(ctx context.Context, name string, data []byte, contentType string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	_, err := s.client.PutObject(ctx, s.bucketName, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", name, err)
	}
	return nil
}

// Open returns a reader over the object
func (s *MinioStore) Open(ctx context.Context, name string) (io.ReadCloser, FileInfo, error) {
	if err := ValidateName(name); err != nil {
		return nil, FileInfo{}, err
	}

	obj, err := s.client.GetObject(ctx, s.bucketName, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, FileInfo{}, minioError(name, err)
	}

	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, FileInfo{}, minioError(name, err)
	}

	return obj, FileInfo{Name: name, Size: info.Size, ModTime: info.LastModified}, nil
}

// List returns the top-level objects of the bucket
func (s *MinioStore) List(ctx context.Context) ([]FileInfo, error) {
	var files []FileInfo
	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("listing objects: %w", obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		files = append(files, FileInfo{Name: obj.Key, Size: obj.Size, ModTime: obj.LastModified})
	}
	return files, nil
}

// Delete removes an object
func (s *MinioStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	if err := s.client.RemoveObject(ctx, s.bucketName, name, minio.RemoveObjectOptions{}); err != nil {
		return minioError(name, err)
	}
	return nil
}

// Close is a no-op, the client holds no connections of its own
func (s *MinioStore) Close() error {
	return nil
}

func minioError(name string, err error) error {
	if code := minio.ToErrorResponse(err).Code; code == "NoSuchKey" || code == "NoSuchObject" {
		return ErrNotFound
	}
	return fmt.Errorf("accessing %s: %w", name, err)
}
