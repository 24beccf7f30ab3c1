// Package fs implements blob storage on a local directory.
package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ade-bello/filedepot/internal/files"
)

// Storage implements files.BlobStorage using the filesystem.
type Storage struct {
	rootDir string
}

// NewStorage creates a new filesystem storage rooted at rootDir.
func NewStorage(rootDir string) *Storage {
	return &Storage{rootDir: rootDir}
}

// Save writes content under rootDir and returns its absolute path.
func (s *Storage) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.rootDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	path := filepath.Join(s.rootDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}

	return path, nil
}

// Open returns a reader for the content at path.
func (s *Storage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, files.ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}
	return f, nil
}
