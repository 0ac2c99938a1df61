// Package task defines the Task domain entity, one unit of queued agent work.
package task

import (
	"time"

	"github.com/stewardhq/steward/internal/domain/capability"
)

// Status represents the current state of a task.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusDispatched Status = "dispatched"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// IsTerminal returns true if the task is in a final state.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusDone, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Task asks one capability's agent to look at one asset. Priority orders the
// queue (higher first); tasks of equal priority run in enqueue order.
type Task struct {
	ID          string                `json:"id"`
	Capability  capability.Capability `json:"capability"`
	AssetKey    string                `json:"asset_key"`
	Priority    int                   `json:"priority"`
	Description string                `json:"description"`
	Status      Status                `json:"status"`
	CreatedAt   time.Time             `json:"created_at"`
}
