// Package service implements the steward engine: the control loop that
// generates tasks, dispatches them to agents under per-asset leases, gates
// proposals on the evaluator's verdict, and keeps every applied change
// reversible through the version log.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stewardhq/steward/internal/adapter/otel"
	"github.com/stewardhq/steward/internal/config"
	"github.com/stewardhq/steward/internal/domain"
	"github.com/stewardhq/steward/internal/domain/asset"
	"github.com/stewardhq/steward/internal/domain/capability"
	"github.com/stewardhq/steward/internal/domain/change"
	"github.com/stewardhq/steward/internal/domain/task"
	"github.com/stewardhq/steward/internal/evaluator"
	"github.com/stewardhq/steward/internal/logger"
	"github.com/stewardhq/steward/internal/pool"
	"github.com/stewardhq/steward/internal/port/agent"
	"github.com/stewardhq/steward/internal/port/assetstore"
	"github.com/stewardhq/steward/internal/port/changelog"
	"github.com/stewardhq/steward/internal/port/messagequeue"
	"github.com/stewardhq/steward/internal/port/versionlog"
	"github.com/stewardhq/steward/internal/resilience"
	"github.com/stewardhq/steward/internal/taskqueue"
)

// Options carries the orchestrator's dependencies. Store, Versions, Changes,
// and Evaluator are required; Queue, Metrics, and Breaker are optional and
// nil disables the corresponding concern.
type Options struct {
	Store     assetstore.Store
	Versions  versionlog.Log
	Changes   changelog.Store
	Evaluator evaluator.Evaluator
	Queue     messagequeue.Queue
	Metrics   *otel.Metrics
	Breaker   *resilience.Breaker
	Engine    config.Engine

	// Agents supplies pre-built agents per capability. Capabilities absent
	// from the map are constructed from the factory registry.
	Agents map[capability.Capability]agent.Agent
}

// Orchestrator owns the task queue, lease table, and worker pool, and is the
// only writer to the asset store and version log. Agents and the evaluator
// are consulted but never mutate anything themselves.
type Orchestrator struct {
	store     assetstore.Store
	versions  versionlog.Log
	changes   changelog.Store
	eval      evaluator.Evaluator
	queue     messagequeue.Queue
	metrics   *otel.Metrics
	breaker   *resilience.Breaker
	tasks     *taskqueue.Queue
	leases    *leaseTable
	workers   *pool.Pool
	threshold float64
	tick      time.Duration
	recent    int

	mu      sync.Mutex
	enabled map[capability.Capability]bool
	agents  map[capability.Capability]agent.Agent
	started bool

	stats stats

	stopCh   chan struct{}
	stopOnce sync.Once
	loopWG   sync.WaitGroup
}

// NewOrchestrator builds the engine from its dependencies and the engine
// configuration. Agents are instantiated once, at construction, from the
// factory registry; a configured capability with no registered agent is an
// error so misconfiguration surfaces at startup rather than on a tick.
func NewOrchestrator(opts Options) (*Orchestrator, error) {
	if opts.Store == nil || opts.Versions == nil || opts.Changes == nil || opts.Evaluator == nil {
		return nil, fmt.Errorf("orchestrator: store, versions, changes, and evaluator are required")
	}

	enabled := make(map[capability.Capability]bool, len(opts.Engine.Capabilities))
	agents := make(map[capability.Capability]agent.Agent, len(opts.Engine.Capabilities))
	for _, raw := range opts.Engine.Capabilities {
		c, err := capability.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: %w", err)
		}
		a := opts.Agents[c]
		if a == nil {
			a, err = agent.New(c)
			if err != nil {
				return nil, fmt.Errorf("orchestrator: %w", err)
			}
		}
		enabled[c] = true
		agents[c] = a
	}

	return &Orchestrator{
		store:     opts.Store,
		versions:  opts.Versions,
		changes:   opts.Changes,
		eval:      opts.Evaluator,
		queue:     opts.Queue,
		metrics:   opts.Metrics,
		breaker:   opts.Breaker,
		tasks:     taskqueue.New(),
		leases:    newLeaseTable(),
		workers:   pool.New(opts.Engine.MaxWorkers),
		threshold: opts.Engine.AcceptThreshold,
		tick:      opts.Engine.TickInterval,
		recent:    opts.Engine.RecentLimit,
		enabled:   enabled,
		agents:    agents,
		stopCh:    make(chan struct{}),
	}, nil
}

// Start launches the periodic improvement loop. The lifecycle is one-shot:
// after Stop the engine cannot be restarted, construct a new one.
func (s *Orchestrator) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("orchestrator already started")
	}
	s.started = true
	s.mu.Unlock()

	s.loopWG.Add(1)
	go s.loop(ctx)

	slog.Info("engine started",
		"tick_interval", s.tick.String(),
		"accept_threshold", s.threshold,
		"agents", len(s.agents))
	return nil
}

// Stop halts the ticker and waits for in-flight dispatches to drain.
// Idempotent; safe to call whether or not Start ran.
func (s *Orchestrator) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.loopWG.Wait()
	s.workers.Wait()
	slog.Info("engine stopped",
		"tasks_executed", s.stats.tasksExecuted.Load(),
		"changes_committed", s.stats.changesCommitted.Load())
}

func (s *Orchestrator) loop(ctx context.Context) {
	defer s.loopWG.Done()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	// First pass runs immediately so a fresh engine does not idle for a
	// full interval before looking at its assets.
	s.runTick(ctx)

	for {
		select {
		case <-ticker.C:
			s.runTick(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// runTick is one pass of the single-threaded control loop: generate tasks
// for every managed asset, then hand as many as possible to free workers.
func (s *Orchestrator) runTick(ctx context.Context) {
	s.generateTasks(ctx)
	s.dispatch(ctx)
}

// dispatch starts one worker per queued task until the pool is saturated.
// The worker slot is taken before the task is dequeued, so tasks stay
// queued (and cancellable) until a worker is actually free.
func (s *Orchestrator) dispatch(ctx context.Context) {
	for range s.tasks.Len() {
		started := s.workers.TryGo(func() {
			t, ok := s.tasks.Next()
			if !ok {
				return
			}
			s.runTask(ctx, t)
		})
		if !started {
			return
		}
	}
}

// runTask executes one change attempt: lease, propose, stage, evaluate,
// then commit or discard. Failures are isolated to this asset's attempt.
func (s *Orchestrator) runTask(ctx context.Context, t task.Task) {
	ctx = logger.WithTaskID(ctx, t.ID)
	ctx, span := otel.StartDispatchSpan(ctx, t.ID, t.AssetKey, string(t.Capability))
	defer span.End()

	if !s.CapabilityEnabled(t.Capability) {
		slog.Debug("task dropped: capability disabled",
			"task_id", t.ID, "capability", string(t.Capability))
		s.tasks.Complete(t.ID)
		return
	}
	ag := s.agentFor(t.Capability)
	if ag == nil {
		slog.Debug("task dropped: no agent for capability",
			"task_id", t.ID, "capability", string(t.Capability))
		s.tasks.Complete(t.ID)
		return
	}

	if !s.leases.TryAcquire(t.AssetKey) {
		// domain.ErrAssetBusy: recoverable, retry at lowered priority.
		if err := s.tasks.Requeue(t.ID); err != nil {
			slog.Warn("requeue failed", "task_id", t.ID, "error", err)
		}
		if s.metrics != nil {
			s.metrics.TasksRequeued.Add(ctx, 1)
		}
		slog.Debug("asset busy, task requeued", "task_id", t.ID, "asset_key", t.AssetKey)
		return
	}
	defer s.leases.Release(t.AssetKey)

	if err := s.attempt(ctx, t, ag); err != nil {
		s.tasks.Fail(t.ID)
		if s.metrics != nil {
			s.metrics.ChangesFailed.Add(ctx, 1)
		}
		slog.Error("change attempt failed",
			"task_id", t.ID,
			"asset_key", t.AssetKey,
			"capability", string(t.Capability),
			"error", err)
		return
	}

	s.tasks.Complete(t.ID)
	s.stats.tasksExecuted.Add(1)
	s.stats.touch()
	if s.metrics != nil {
		s.metrics.TasksExecuted.Add(ctx, 1)
	}
}

// attempt runs the leased portion of a task. A nil return means the task
// finished (committed, discarded, or no-op); an error means the attempt
// failed and any created change record has been marked failed.
func (s *Orchestrator) attempt(ctx context.Context, t task.Task, ag agent.Agent) error {
	before, err := s.store.Get(ctx, t.AssetKey)
	if err != nil {
		return fmt.Errorf("read asset: %w", err)
	}
	latest, err := s.versions.Latest(ctx, t.AssetKey)
	if err != nil {
		return fmt.Errorf("read latest snapshot: %w", err)
	}

	req := agent.Request{
		Capability:  t.Capability,
		AssetKey:    t.AssetKey,
		Content:     before,
		Description: t.Description,
	}

	proposeCtx, proposeSpan := otel.StartProposeSpan(ctx, ag.ID(), t.AssetKey)
	start := time.Now()
	prop, err := ag.Propose(proposeCtx, req)
	proposeSpan.End()
	if s.metrics != nil {
		s.metrics.ProposalDuration.Record(ctx, time.Since(start).Seconds())
	}
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAgentFailure, err)
	}

	if prop.Unchanged(req) {
		// Local rejection: the agent sees nothing to improve. The task
		// completes as a no-op; no change record is created or scored.
		slog.Info("no change needed",
			"task_id", t.ID, "asset_key", t.AssetKey, "agent_id", ag.ID())
		return nil
	}

	now := time.Now().UTC()
	rec := &change.ChangeRecord{
		ID:         uuid.NewString(),
		AgentID:    ag.ID(),
		Capability: t.Capability,
		AssetKey:   t.AssetKey,
		BeforeSeq:  latest.Seq,
		After:      prop.Content,
		Rationale:  prop.Rationale,
		Status:     change.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	ctx = logger.WithChangeID(ctx, rec.ID)

	if err := s.protect(func() error { return s.changes.Create(ctx, rec) }); err != nil {
		return fmt.Errorf("stage change record: %w", err)
	}

	evalCtx, evalSpan := otel.StartEvaluateSpan(ctx, rec.ID)
	score, evalErr := s.eval.Evaluate(evalCtx, before, prop.Content)
	evalSpan.End()
	if evalErr != nil {
		// Evaluation failure fails safe: reject, never accept.
		slog.Warn("evaluation failed, rejecting proposal",
			"change_id", rec.ID, "error", fmt.Errorf("%w: %v", domain.ErrEvaluationFailure, evalErr))
		s.discard(ctx, rec)
		return nil
	}
	rec.Scores = score
	if s.metrics != nil {
		s.metrics.CompositeScore.Record(ctx, score.Composite)
	}

	if score.Composite >= s.threshold {
		return s.commit(ctx, rec, before)
	}
	s.discard(ctx, rec)
	return nil
}

// commit applies an accepted proposal: store write, snapshot append, record
// update. Either both the store and the log reflect the change, or neither
// does: an append failure compensates the store back to the before content.
func (s *Orchestrator) commit(ctx context.Context, rec *change.ChangeRecord, before []byte) error {
	ctx, span := otel.StartCommitSpan(ctx, rec.ID, rec.AssetKey)
	defer span.End()

	if err := s.protect(func() error { return s.store.Set(ctx, rec.AssetKey, rec.After) }); err != nil {
		s.markFailed(ctx, rec)
		return fmt.Errorf("apply asset content: %w", err)
	}

	snap, err := s.versions.Append(ctx, rec.AssetKey, rec.After)
	if err != nil {
		if restoreErr := s.store.Set(ctx, rec.AssetKey, before); restoreErr != nil {
			slog.Error("compensating store write failed, asset content diverged from log",
				"change_id", rec.ID, "asset_key", rec.AssetKey, "error", restoreErr)
		}
		s.markFailed(ctx, rec)
		return fmt.Errorf("append snapshot: %w", err)
	}

	rec.Status = change.StatusCommitted
	rec.CommittedSeq = snap.Seq
	rec.UpdatedAt = time.Now().UTC()
	if err := s.protect(func() error { return s.changes.Update(ctx, rec) }); err != nil {
		slog.Error("change record update failed after commit", "change_id", rec.ID, "error", err)
	}

	s.stats.changesCommitted.Add(1)
	if s.metrics != nil {
		s.metrics.ChangesCommitted.Add(ctx, 1)
	}
	s.publishChange(ctx, rec, messagequeue.SubjectChangeCommitted, snap.Seq)
	slog.Info("change committed",
		"change_id", rec.ID,
		"asset_key", rec.AssetKey,
		"agent_id", rec.AgentID,
		"seq", snap.Seq,
		"composite", rec.Scores.Composite)
	return nil
}

// discard resolves a rejected proposal. The proposal was never applied, so
// nothing is written to the store or the log; the record alone moves to
// rolled_back.
func (s *Orchestrator) discard(ctx context.Context, rec *change.ChangeRecord) {
	rec.Status = change.StatusRolledBack
	rec.UpdatedAt = time.Now().UTC()
	if err := s.protect(func() error { return s.changes.Update(ctx, rec) }); err != nil {
		slog.Error("change record update failed after reject", "change_id", rec.ID, "error", err)
	}

	s.stats.changesRolledBack.Add(1)
	if s.metrics != nil {
		s.metrics.ChangesRolledBack.Add(ctx, 1)
	}
	s.publishChange(ctx, rec, messagequeue.SubjectChangeRolledBack, 0)
	slog.Info("change rejected",
		"change_id", rec.ID,
		"asset_key", rec.AssetKey,
		"agent_id", rec.AgentID,
		"composite", rec.Scores.Composite,
		"threshold", s.threshold)
}

// markFailed records a storage-path failure on the staged record.
func (s *Orchestrator) markFailed(ctx context.Context, rec *change.ChangeRecord) {
	rec.Status = change.StatusFailed
	rec.UpdatedAt = time.Now().UTC()
	if err := s.changes.Update(ctx, rec); err != nil {
		slog.Error("change record update failed", "change_id", rec.ID, "error", err)
	}
	s.publishChange(ctx, rec, messagequeue.SubjectChangeFailed, 0)
}

// protect routes a storage write through the circuit breaker when one is
// configured.
func (s *Orchestrator) protect(fn func() error) error {
	if s.breaker == nil {
		return fn()
	}
	return s.breaker.Execute(fn)
}

// agentFor returns the constructed agent for a capability, or nil.
func (s *Orchestrator) agentFor(c capability.Capability) agent.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agents[c]
}

// CapabilityEnabled reports whether tasks for c are currently generated and
// dispatched.
func (s *Orchestrator) CapabilityEnabled(c capability.Capability) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled[c]
}

// SetCapabilityEnabled turns an agent capability on or off. Enabling a
// capability that was not configured at construction instantiates its agent
// from the registry.
func (s *Orchestrator) SetCapabilityEnabled(c capability.Capability, on bool) error {
	if _, err := capability.Parse(string(c)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if on && s.agents[c] == nil {
		a, err := agent.New(c)
		if err != nil {
			return fmt.Errorf("enable capability %q: %w", c, err)
		}
		s.agents[c] = a
	}
	s.enabled[c] = on
	slog.Info("capability toggled", "capability", string(c), "enabled", on)
	return nil
}

// CancelTask removes a queued task. Dispatched tasks run to completion.
func (s *Orchestrator) CancelTask(id string) error {
	return s.tasks.Cancel(id)
}

// RecentChanges returns up to limit change records, newest first. A
// non-positive limit uses the configured default.
func (s *Orchestrator) RecentChanges(ctx context.Context, limit int) ([]*change.ChangeRecord, error) {
	if limit <= 0 {
		limit = s.recent
	}
	return s.changes.ListRecent(ctx, limit)
}

// History returns an asset's full snapshot history, oldest first.
func (s *Orchestrator) History(ctx context.Context, assetKey string) ([]asset.Snapshot, error) {
	return s.versions.History(ctx, assetKey)
}

// Seed registers a managed asset: the store takes the content and the
// version log gains its seq-0 snapshot. Re-seeding an asset whose persisted
// history already matches the content appends nothing; differing content is
// recorded as a fresh drift snapshot so history stays truthful.
func (s *Orchestrator) Seed(ctx context.Context, key string, content []byte) error {
	if err := asset.ValidateKey(key); err != nil {
		return err
	}
	if !s.leases.TryAcquire(key) {
		return fmt.Errorf("seed asset %s: %w", key, domain.ErrAssetBusy)
	}
	defer s.leases.Release(key)

	if err := s.protect(func() error { return s.store.Set(ctx, key, content) }); err != nil {
		return fmt.Errorf("seed asset %s: %w", key, err)
	}

	latest, err := s.versions.Latest(ctx, key)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// First sighting: the append below becomes seq 0.
	case err != nil:
		return fmt.Errorf("seed asset %s: %w", key, err)
	case latest.Checksum == asset.Checksum(content):
		return nil
	default:
		slog.Warn("seeded content differs from persisted history, appending drift snapshot",
			"asset_key", key, "last_seq", latest.Seq)
	}

	if _, err := s.versions.Append(ctx, key, content); err != nil {
		return fmt.Errorf("seed asset %s: %w", key, err)
	}
	return nil
}
