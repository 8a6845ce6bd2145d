// Package file provides a blob store backed by one JSON file per key under
// a data directory. It is the browser-local-storage analog for
// single-machine deployments; other processes may overwrite the same file
// with last-writer-wins semantics.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BlobStore writes each key to <dir>/<sanitized key>.json. Writes go
// through a temp file and rename so readers never observe a partial blob.
type BlobStore struct {
	dir string
}

// NewBlobStore creates the data directory if needed.
func NewBlobStore(dir string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &BlobStore{dir: dir}, nil
}

// Read returns the blob for key, or nil when the file does not exist.
func (s *BlobStore) Read(ctx context.Context, key string) ([]byte, error) {
	blob, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	return blob, nil
}

// Write atomically replaces the blob for key.
func (s *BlobStore) Write(ctx context.Context, key string, blob []byte) error {
	target := s.path(key)
	tmp := target + ".tmp"

	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace blob %s: %w", key, err)
	}
	return nil
}

// Remove deletes the blob file. Removing an absent key is a no-op.
func (s *BlobStore) Remove(ctx context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove blob %s: %w", key, err)
	}
	return nil
}

// path maps a namespaced key to a filesystem-safe file name.
func (s *BlobStore) path(key string) string {
	name := strings.NewReplacer(":", "_", "/", "_", "\\", "_").Replace(key)
	return filepath.Join(s.dir, name+".json")
}
