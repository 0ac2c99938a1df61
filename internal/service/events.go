package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/stewardhq/steward/internal/domain/change"
	"github.com/stewardhq/steward/internal/port/messagequeue"
)

// publishChange emits a lifecycle event for the record. A nil queue disables
// publishing; a publish failure is logged and never fails the attempt.
func (s *Orchestrator) publishChange(ctx context.Context, rec *change.ChangeRecord, subject string, seq int64) {
	if s.queue == nil {
		return
	}

	ev := messagequeue.ChangeEvent{
		ChangeID:   rec.ID,
		AssetKey:   rec.AssetKey,
		Capability: string(rec.Capability),
		AgentID:    rec.AgentID,
		Status:     string(rec.Status),
		Seq:        seq,
		Composite:  rec.Scores.Composite,
		OccurredAt: time.Now().UTC(),
	}
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("change event marshal failed", "change_id", rec.ID, "error", err)
		return
	}
	if err := s.queue.Publish(ctx, subject, data); err != nil {
		slog.Warn("change event publish failed",
			"change_id", rec.ID, "subject", subject, "error", err)
	}
}
