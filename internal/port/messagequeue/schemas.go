package messagequeue

import "time"

// ChangeEvent is the payload published on the changes.* subjects. Seq carries
// the snapshot appended by the event: the committed sequence for
// changes.committed, the restoration sequence for changes.rolledback after a
// manual rollback, and zero otherwise.
type ChangeEvent struct {
	ChangeID   string    `json:"change_id"`
	AssetKey   string    `json:"asset_key"`
	Capability string    `json:"capability"`
	AgentID    string    `json:"agent_id"`
	Status     string    `json:"status"`
	Seq        int64     `json:"seq,omitempty"`
	Composite  float64   `json:"composite,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
