// Package fs provides a directory-backed asset store. Keys are slash paths
// relative to the configured root, so the store can manage a deployed site
// directory in place.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/stewardhq/steward/internal/domain"
	"github.com/stewardhq/steward/internal/domain/asset"
)

// Store implements assetstore.Store on top of a directory tree.
type Store struct {
	root string
}

// NewStore creates a store rooted at dir. The directory must already exist.
func NewStore(dir string) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("asset dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("asset dir %s: not a directory", dir)
	}
	return &Store{root: dir}, nil
}

// Get returns the file content for key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("get asset %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get asset %s: %w", key, err)
	}
	return content, nil
}

// Set writes content for key, creating parent directories as needed.
func (s *Store) Set(_ context.Context, key string, content []byte) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("set asset %s: %w", key, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("set asset %s: %w", key, err)
	}
	return nil
}

// Keys walks the root and returns the relative paths of every file with a
// recognized asset class. WalkDir visits lexically, so the order is stable.
func (s *Store) Keys(_ context.Context) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible files
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if asset.ClassOf(rel) == asset.ClassOther {
			return nil
		}
		keys = append(keys, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk asset dir: %w", err)
	}
	return keys, nil
}

func (s *Store) resolve(key string) (string, error) {
	if err := asset.ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}
