// Package assetstore defines the asset store port (interface).
package assetstore

import "context"

// Store is the port interface for current asset content. It carries no
// versioning of its own; history is the version log's responsibility,
// layered on top by the orchestrator.
type Store interface {
	// Get returns the current content for key. domain.ErrNotFound if the
	// key is unknown.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites the content for key, creating it if absent. Called
	// only from the orchestrator's seed, commit, and rollback paths.
	Set(ctx context.Context, key string, content []byte) error

	// Keys enumerates the managed asset keys in a stable order.
	Keys(ctx context.Context) ([]string, error)
}
