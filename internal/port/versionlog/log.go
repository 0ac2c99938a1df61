// Package versionlog defines the version log port (interface): append-only
// snapshot history per asset.
package versionlog

import (
	"context"

	"github.com/stewardhq/steward/internal/domain/asset"
)

// Log is the port interface for per-asset snapshot history. Sequence numbers
// for one asset are strictly increasing and gapless, starting at 0; history
// is never rewritten, only appended to.
type Log interface {
	// Append records content as the next snapshot for key and returns it.
	Append(ctx context.Context, key string, content []byte) (asset.Snapshot, error)

	// History returns every snapshot for key, oldest first.
	// domain.ErrNotFound if the key has no snapshots.
	History(ctx context.Context, key string) ([]asset.Snapshot, error)

	// Latest returns the most recent snapshot for key.
	// domain.ErrNotFound if the key has no snapshots.
	Latest(ctx context.Context, key string) (asset.Snapshot, error)

	// Restore appends a new snapshot whose content equals the snapshot at
	// seq, making the restoration itself auditable, and returns the new
	// snapshot. domain.ErrUnknownSnapshot if seq does not exist for key.
	Restore(ctx context.Context, key string, seq int64) (asset.Snapshot, error)
}
