// Package memory provides an in-memory blob store, used in tests and for
// ephemeral deployments where user data does not need to survive restarts.
package memory

import (
	"context"
	"sync"
)

// BlobStore keeps blobs in a map guarded by a mutex.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewBlobStore creates an empty in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{
		blobs: make(map[string][]byte),
	}
}

// Read returns the blob for key, or nil when absent.
func (s *BlobStore) Read(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, nil
}

// Write stores a copy of the blob under key.
func (s *BlobStore) Write(ctx context.Context, key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(blob))
	copy(stored, blob)
	s.blobs[key] = stored
	return nil
}

// Remove deletes the blob for key. Removing an absent key is a no-op.
func (s *BlobStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, key)
	return nil
}
