package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/stewardhq/steward/internal/domain"
	"github.com/stewardhq/steward/internal/domain/change"
)

// ChangeLog implements changelog.Store in memory. Records are indexed by ID
// with insertion order retained for recency listing.
type ChangeLog struct {
	mu      sync.RWMutex
	records map[string]*change.ChangeRecord
	order   []string
}

// NewChangeLog creates an empty in-memory change log.
func NewChangeLog() *ChangeLog {
	return &ChangeLog{records: make(map[string]*change.ChangeRecord)}
}

// Create persists a new change record.
func (s *ChangeLog) Create(_ context.Context, rec *change.ChangeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.ID]; ok {
		return fmt.Errorf("create change %s: already exists", rec.ID)
	}
	s.records[rec.ID] = copyRecord(rec)
	s.order = append(s.order, rec.ID)
	return nil
}

// Update replaces the stored record with the given state.
func (s *ChangeLog) Update(_ context.Context, rec *change.ChangeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.ID]; !ok {
		return fmt.Errorf("update change %s: %w", rec.ID, domain.ErrNotFound)
	}
	s.records[rec.ID] = copyRecord(rec)
	return nil
}

// Get returns the record by id.
func (s *ChangeLog) Get(_ context.Context, id string) (*change.ChangeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("get change %s: %w", id, domain.ErrNotFound)
	}
	return copyRecord(rec), nil
}

// ListRecent returns up to limit records, newest first by creation order.
func (s *ChangeLog) ListRecent(_ context.Context, limit int) ([]*change.ChangeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		return nil, nil
	}
	n := min(limit, len(s.order))
	out := make([]*change.ChangeRecord, 0, n)
	for i := len(s.order) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, copyRecord(s.records[s.order[i]]))
	}
	return out, nil
}

func copyRecord(rec *change.ChangeRecord) *change.ChangeRecord {
	cp := *rec
	cp.After = append([]byte(nil), rec.After...)
	return &cp
}
