// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested asset, snapshot, change, or task does not exist.
var ErrNotFound = errors.New("not found")

// ErrAssetBusy indicates the per-asset lease is held by another in-flight
// attempt. Recoverable: the dispatcher requeues the task at lowered priority.
var ErrAssetBusy = errors.New("asset busy: lease held by another attempt")

// ErrAgentUnavailable indicates the requested capability is disabled.
var ErrAgentUnavailable = errors.New("agent unavailable: capability disabled")

// ErrProposalRejected indicates the agent declined to change the asset
// (proposed content equals current content). Not a failure: the task
// completes as a no-op without creating a change record.
var ErrProposalRejected = errors.New("proposal rejected locally: no change needed")

// ErrAgentFailure indicates proposal generation errored. The task and any
// created change record are marked failed; retry happens only through normal
// task regeneration on a later tick.
var ErrAgentFailure = errors.New("agent failure")

// ErrEvaluationFailure indicates the evaluator errored. Fail-safe policy:
// the proposal is rejected, never accepted by default.
var ErrEvaluationFailure = errors.New("evaluation failure")

// ErrUnknownSnapshot indicates a restore target sequence that does not exist
// for the asset.
var ErrUnknownSnapshot = errors.New("unknown snapshot")

// ErrAlreadyRolledBack indicates a rollback request for a change that was
// discarded without ever being applied.
var ErrAlreadyRolledBack = errors.New("change already rolled back")

// ErrChangeNotCommitted indicates a rollback request for a change that never
// reached committed status (still pending, or failed).
var ErrChangeNotCommitted = errors.New("change not committed")
