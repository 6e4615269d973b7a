package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"docvault/internal/config"
	"docvault/internal/domain/services"
)

// MinioStorage implements the ObjectStorage interface on an S3-compatible
// object store.
type MinioStorage struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewMinioStorage creates the client and ensures the bucket exists.
func NewMinioStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*MinioStorage, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
		logger.Info("bucket created", "bucket", cfg.MinioBucket)
	}

	return &MinioStorage{
		client: client,
		bucket: cfg.MinioBucket,
		logger: logger,
	}, nil
}

// Download reads the whole object into memory and returns its bytes and
// stored content type.
func (s *MinioStorage) Download(ctx context.Context, key string) ([]byte, string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("get object %q: %w", key, err)
	}
	defer obj.Close()

	// Stat surfaces missing-object errors before the read and carries the
	// stored content type.
	info, err := obj.Stat()
	if err != nil {
		return nil, "", fmt.Errorf("stat object %q: %w", key, err)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", fmt.Errorf("read object %q: %w", key, err)
	}

	return data, info.ContentType, nil
}

// Upload writes an object, overwriting any existing one at key. The content
// type is set explicitly so relocation preserves it.
func (s *MinioStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

// Remove bulk-deletes objects by key. Per-object failures are collected and
// returned as one error; objects already gone are not failures.
func (s *MinioStorage) Remove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)

	var failed int
	for rmErr := range s.client.RemoveObjects(ctx, s.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if rmErr.Err != nil {
			failed++
			s.logger.Error("remove object failed", "key", rmErr.ObjectName, "error", rmErr.Err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("remove objects: %d of %d deletions failed", failed, len(keys))
	}
	return nil
}

var _ services.ObjectStorage = (*MinioStorage)(nil)
