package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// GCSProvider implements Provider on top of Google Cloud Storage.
// Authentication is handled via Application Default Credentials.
type GCSProvider struct {
	client *storage.Client
	bucket string
	logger *zap.Logger
}

// NewGCSProvider initializes a GCS client and verifies the bucket is
// reachable, failing fast on misconfiguration.
func NewGCSProvider(ctx context.Context, bucket string, logger *zap.Logger) (*GCSProvider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		if cerr := client.Close(); cerr != nil {
			logger.Warn("close gcs client after failed bucket check", zap.Error(cerr))
		}
		return nil, fmt.Errorf("get attributes of bucket %q: %w", bucket, err)
	}
	return &GCSProvider{client: client, bucket: bucket, logger: logger}, nil
}

// Save uploads data to the configured bucket under key.
func (g *GCSProvider) Save(ctx context.Context, key string, data []byte) (ObjectInfo, error) {
	wc := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	wc.ContentType = "application/json"

	if _, err := wc.Write(data); err != nil {
		if cerr := wc.Close(); cerr != nil {
			g.logger.Warn("close gcs writer after write failure", zap.Error(cerr))
		}
		return ObjectInfo{}, fmt.Errorf("write gcs object %s: %w", key, err)
	}
	// Close finalizes the upload; until then nothing is committed.
	if err := wc.Close(); err != nil {
		return ObjectInfo{}, fmt.Errorf("close gcs writer for %s: %w", key, err)
	}

	return ObjectInfo{
		Bucket: g.bucket,
		Key:    key,
		Size:   int64(len(data)),
		SHA256: digest(data),
	}, nil
}

// Close releases the underlying client.
func (g *GCSProvider) Close() error {
	if err := g.client.Close(); err != nil {
		return fmt.Errorf("close gcs client: %w", err)
	}
	return nil
}
