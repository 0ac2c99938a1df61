// Package changelog defines the change record store port (interface).
package changelog

import (
	"context"

	"github.com/stewardhq/steward/internal/domain/change"
)

// Store is the port interface for persisting change records through their
// lifecycle.
type Store interface {
	// Create persists a new record (normally in status pending).
	Create(ctx context.Context, rec *change.ChangeRecord) error

	// Update persists the record's current scores, status, and sequence
	// markers. domain.ErrNotFound if the id is unknown.
	Update(ctx context.Context, rec *change.ChangeRecord) error

	// Get returns the record by id. domain.ErrNotFound if unknown.
	Get(ctx context.Context, id string) (*change.ChangeRecord, error)

	// ListRecent returns up to limit records, newest first.
	ListRecent(ctx context.Context, limit int) ([]*change.ChangeRecord, error)
}
