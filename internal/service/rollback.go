package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stewardhq/steward/internal/adapter/otel"
	"github.com/stewardhq/steward/internal/domain"
	"github.com/stewardhq/steward/internal/domain/change"
	"github.com/stewardhq/steward/internal/logger"
	"github.com/stewardhq/steward/internal/port/messagequeue"
)

// Rollback restores the asset touched by a committed change to its
// pre-change snapshot. The restoration is itself an append, so history
// survives and the rollback can in turn be rolled back.
//
// Idempotent on repetition: the first call performs the restore, a second
// call on the same change detects the recorded restoration and returns
// success without appending another snapshot. A change that was
// auto-rejected (discarded without ever being applied) has nothing to
// restore and reports domain.ErrAlreadyRolledBack.
func (s *Orchestrator) Rollback(ctx context.Context, changeID string) error {
	ctx = logger.WithChangeID(ctx, changeID)
	ctx, span := otel.StartRollbackSpan(ctx, changeID)
	defer span.End()

	rec, err := s.changes.Get(ctx, changeID)
	if err != nil {
		return fmt.Errorf("rollback change %s: %w", changeID, err)
	}

	switch rec.Status {
	case change.StatusPending, change.StatusFailed:
		return fmt.Errorf("rollback change %s: %w", changeID, domain.ErrChangeNotCommitted)
	case change.StatusRolledBack:
		if rec.WasRestored() {
			// Second call on a restored change: documented no-op.
			slog.Info("rollback already performed",
				"change_id", changeID, "restored_seq", rec.RestoredSeq)
			return nil
		}
		// Auto-rejected proposal: never applied, nothing to restore.
		return fmt.Errorf("rollback change %s: %w", changeID, domain.ErrAlreadyRolledBack)
	case change.StatusCommitted:
		// Fall through to the restore below.
	default:
		return fmt.Errorf("rollback change %s: unexpected status %q", changeID, rec.Status)
	}

	// Wait out any in-flight attempt on the asset rather than racing it.
	if err := s.leases.Acquire(ctx, rec.AssetKey); err != nil {
		return fmt.Errorf("rollback change %s: %w", changeID, err)
	}
	defer s.leases.Release(rec.AssetKey)

	snap, err := s.versions.Restore(ctx, rec.AssetKey, rec.BeforeSeq)
	if err != nil {
		return fmt.Errorf("rollback change %s: %w", changeID, err)
	}
	if err := s.protect(func() error { return s.store.Set(ctx, rec.AssetKey, snap.Content) }); err != nil {
		return fmt.Errorf("rollback change %s: %w", changeID, err)
	}

	rec.Status = change.StatusRolledBack
	rec.RestoredSeq = snap.Seq
	rec.UpdatedAt = time.Now().UTC()
	if err := s.protect(func() error { return s.changes.Update(ctx, rec) }); err != nil {
		slog.Error("change record update failed after restore",
			"change_id", changeID, "error", err)
	}

	s.stats.changesRolledBack.Add(1)
	s.stats.touch()
	if s.metrics != nil {
		s.metrics.ChangesRolledBack.Add(ctx, 1)
	}
	s.publishChange(ctx, rec, messagequeue.SubjectChangeRolledBack, snap.Seq)
	slog.Info("change rolled back",
		"change_id", changeID,
		"asset_key", rec.AssetKey,
		"restored_to_seq", rec.BeforeSeq,
		"restoration_seq", snap.Seq)
	return nil
}
