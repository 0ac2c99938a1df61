package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stewardhq/steward/internal/domain"
	"github.com/stewardhq/steward/internal/domain/asset"
)

// VersionLog implements versionlog.Log in memory. Snapshots per key are held
// in append order, so the slice index doubles as the sequence number.
type VersionLog struct {
	mu        sync.RWMutex
	snapshots map[string][]asset.Snapshot
}

// NewVersionLog creates an empty in-memory version log.
func NewVersionLog() *VersionLog {
	return &VersionLog{snapshots: make(map[string][]asset.Snapshot)}
}

// Append records content as the next snapshot for key and returns it.
func (l *VersionLog) Append(_ context.Context, key string, content []byte) (asset.Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	snap := asset.NewSnapshot(key, int64(len(l.snapshots[key])), content, time.Now().UTC())
	l.snapshots[key] = append(l.snapshots[key], snap)
	return snap, nil
}

// History returns every snapshot for key, oldest first.
func (l *VersionLog) History(_ context.Context, key string) ([]asset.Snapshot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	snaps, ok := l.snapshots[key]
	if !ok {
		return nil, fmt.Errorf("history for asset %s: %w", key, domain.ErrNotFound)
	}
	out := make([]asset.Snapshot, len(snaps))
	copy(out, snaps)
	return out, nil
}

// Latest returns the most recent snapshot for key.
func (l *VersionLog) Latest(_ context.Context, key string) (asset.Snapshot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	snaps := l.snapshots[key]
	if len(snaps) == 0 {
		return asset.Snapshot{}, fmt.Errorf("latest snapshot for asset %s: %w", key, domain.ErrNotFound)
	}
	return snaps[len(snaps)-1], nil
}

// Restore appends a new snapshot carrying the content recorded at seq and
// returns it. History stays append-only: the original snapshot is untouched.
func (l *VersionLog) Restore(_ context.Context, key string, seq int64) (asset.Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	snaps := l.snapshots[key]
	if seq < 0 || seq >= int64(len(snaps)) {
		return asset.Snapshot{}, fmt.Errorf("restore asset %s to seq %d: %w", key, seq, domain.ErrUnknownSnapshot)
	}
	snap := asset.NewSnapshot(key, int64(len(snaps)), snaps[seq].Content, time.Now().UTC())
	l.snapshots[key] = append(l.snapshots[key], snap)
	return snap, nil
}
