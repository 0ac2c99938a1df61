package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/stewardhq/steward/internal/domain/asset"
	"github.com/stewardhq/steward/internal/domain/capability"
	"github.com/stewardhq/steward/internal/domain/task"
)

// generateTasks enqueues one task per (asset, capability) pair for every
// enabled capability that targets the asset's class. Queue dedup keeps the
// backlog bounded: a pair with a task already queued or in flight is
// dropped.
func (s *Orchestrator) generateTasks(ctx context.Context) {
	keys, err := s.store.Keys(ctx)
	if err != nil {
		slog.Error("task generation failed: cannot enumerate assets", "error", err)
		return
	}

	enqueued, dropped := 0, 0
	for _, key := range keys {
		for _, c := range capability.ForClass(asset.ClassOf(key)) {
			if !s.CapabilityEnabled(c) {
				continue
			}
			t := task.Task{
				ID:          uuid.NewString(),
				Capability:  c,
				AssetKey:    key,
				Priority:    c.DefaultPriority(),
				Description: c.TaskDescription(key),
				Status:      task.StatusQueued,
				CreatedAt:   time.Now().UTC(),
			}
			if s.tasks.Enqueue(t) {
				enqueued++
			} else {
				dropped++
			}
		}
	}

	if dropped > 0 && s.metrics != nil {
		s.metrics.TasksDropped.Add(ctx, int64(dropped))
	}
	if enqueued > 0 {
		slog.Debug("tasks generated",
			"enqueued", enqueued,
			"dropped", dropped,
			"queued", s.tasks.Len())
	}
}
