package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalProvider writes payloads beneath a base directory. Keys map to
// relative file paths.
type LocalProvider struct {
	baseDir string
}

// NewLocalProvider validates the base directory, creating it if needed.
func NewLocalProvider(baseDir string) (*LocalProvider, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	info, err := os.Stat(baseDir)
	switch {
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(baseDir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("create base directory: %w", mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("stat base directory: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("base directory path %s is not a directory", baseDir)
	}
	return &LocalProvider{baseDir: baseDir}, nil
}

// Save writes data to a file under the base directory. Keys must stay
// inside it.
func (l *LocalProvider) Save(ctx context.Context, key string, data []byte) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, fmt.Errorf("context canceled: %w", err)
	}
	clean := filepath.Clean(key)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return ObjectInfo{}, fmt.Errorf("key %q escapes base directory", key)
	}
	target := filepath.Join(l.baseDir, clean)
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return ObjectInfo{}, fmt.Errorf("create directory for %s: %w", target, err)
	}
	if err := os.WriteFile(target, data, 0o600); err != nil {
		return ObjectInfo{}, fmt.Errorf("write %s: %w", target, err)
	}
	return ObjectInfo{
		Bucket: "file://" + l.baseDir,
		Key:    clean,
		Size:   int64(len(data)),
		SHA256: digest(data),
	}, nil
}
