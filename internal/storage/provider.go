// Package storage defines the blob storage interface used to persist
// extracted records. The abstraction keeps the scraper independent of a
// specific backend: Google Cloud Storage in production, the local
// filesystem or memory for development and tests.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// ObjectInfo confirms an upload: where the payload landed and what was
// written.
type ObjectInfo struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
}

// Provider is the common interface for a blob storage backend.
type Provider interface {
	// Save uploads data under key and returns a confirmation descriptor.
	Save(ctx context.Context, key string, data []byte) (ObjectInfo, error)
}

// NoOpProvider discards payloads. Useful for dry runs where records are
// extracted but never persisted.
type NoOpProvider struct{}

// Save reports a successful write without storing anything.
func (NoOpProvider) Save(_ context.Context, key string, data []byte) (ObjectInfo, error) {
	return ObjectInfo{
		Bucket: "noop",
		Key:    key,
		Size:   int64(len(data)),
		SHA256: digest(data),
	}, nil
}

// digest returns the hex SHA-256 of data, recorded with every upload for
// integrity checks downstream.
func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
