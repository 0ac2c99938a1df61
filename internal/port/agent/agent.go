// Package agent defines the agent port (interface) and its factory registry.
package agent

import (
	"context"

	"github.com/stewardhq/steward/internal/domain/capability"
)

// Request carries everything an agent needs for one proposal. Content is the
// asset's current bytes; agents never read or write stores directly.
type Request struct {
	Capability  capability.Capability `json:"capability"`
	AssetKey    string                `json:"asset_key"`
	Content     []byte                `json:"content"`
	Description string                `json:"description"`
}

// Proposal is an agent's suggested replacement content. Content equal to the
// request's content signals "no change needed"; the orchestrator resolves
// that as a local rejection without creating a change record.
type Proposal struct {
	Content   []byte `json:"content"`
	Rationale string `json:"rationale"`
}

// Unchanged reports whether the proposal leaves the request content as-is.
func (p Proposal) Unchanged(req Request) bool {
	return string(p.Content) == string(req.Content)
}

// Agent is the port interface for one capability's proposal generator.
// Propose must be a pure function of the request: identical inputs yield
// identical proposals across retries.
type Agent interface {
	// ID returns the unique identifier for this agent (e.g. "ui-agent").
	ID() string

	// Capability returns the capability this agent serves.
	Capability() capability.Capability

	// Propose produces replacement content for the asset in the request.
	Propose(ctx context.Context, req Request) (Proposal, error)
}
