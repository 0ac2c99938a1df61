// Package memory provides in-memory implementations of the storage ports.
// State lives for the lifetime of the process; it is the default driver for
// development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/stewardhq/steward/internal/domain"
)

// AssetStore implements assetstore.Store with a mutex-guarded map. Content is
// copied on both ingress and egress so callers can never alias store state.
type AssetStore struct {
	mu     sync.RWMutex
	assets map[string][]byte
}

// NewAssetStore creates an empty in-memory asset store.
func NewAssetStore() *AssetStore {
	return &AssetStore{assets: make(map[string][]byte)}
}

// Get returns the current content for key.
func (s *AssetStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.assets[key]
	if !ok {
		return nil, fmt.Errorf("get asset %s: %w", key, domain.ErrNotFound)
	}
	return append([]byte(nil), content...), nil
}

// Set overwrites the content for key, creating it if absent.
func (s *AssetStore) Set(_ context.Context, key string, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[key] = append([]byte(nil), content...)
	return nil
}

// Keys returns the managed asset keys sorted lexically.
func (s *AssetStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.assets))
	for k := range s.assets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
