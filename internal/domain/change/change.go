// Package change defines the ChangeRecord entity, the auditable record of
// one proposed edit and its outcome.
package change

import (
	"time"

	"github.com/stewardhq/steward/internal/domain/capability"
)

// Status represents the lifecycle state of a change record.
type Status string

const (
	StatusPending    Status = "pending"
	StatusCommitted  Status = "committed"
	StatusRolledBack Status = "rolled_back"
	StatusFailed     Status = "failed"
)

// IsTerminal returns true if the change is in a final state. Failed is
// terminal for the attempt; the asset may be retried by a later task.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCommitted, StatusRolledBack, StatusFailed:
		return true
	default:
		return false
	}
}

// EvaluationScore holds the evaluator's verdict inputs. All values are in
// [0,1]; composite is the weighted combination the accept decision used.
// Attached once at evaluation time, immutable afterward.
type EvaluationScore struct {
	Aesthetic  float64 `json:"aesthetic"`
	Functional float64 `json:"functional"`
	Composite  float64 `json:"composite"`
}

// ChangeRecord captures one staged proposal for an asset. BeforeSeq is the
// asset's snapshot sequence at proposal time; CommittedSeq is the snapshot
// appended by an accepting commit (0 when never committed); RestoredSeq is
// the snapshot appended by a manual rollback (0 when never restored).
type ChangeRecord struct {
	ID           string                `json:"id"`
	AgentID      string                `json:"agent_id"`
	Capability   capability.Capability `json:"capability"`
	AssetKey     string                `json:"asset_key"`
	BeforeSeq    int64                 `json:"before_seq"`
	CommittedSeq int64                 `json:"committed_seq,omitempty"`
	RestoredSeq  int64                 `json:"restored_seq,omitempty"`
	After        []byte                `json:"after"`
	Rationale    string                `json:"rationale"`
	Scores       EvaluationScore       `json:"scores"`
	Status       Status                `json:"status"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// WasCommitted reports whether the change was ever applied to the asset.
// Seed snapshots own sequence 0, so a commit always produces seq >= 1.
func (c *ChangeRecord) WasCommitted() bool { return c.CommittedSeq > 0 }

// WasRestored reports whether a manual rollback already appended a
// restoration snapshot for this change.
func (c *ChangeRecord) WasRestored() bool { return c.RestoredSeq > 0 }
