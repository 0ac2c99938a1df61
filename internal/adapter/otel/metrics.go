package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "steward"

// Metrics holds all steward metric instruments. The engine takes a *Metrics
// and skips recording when it is nil, so telemetry never becomes a hard
// dependency of the pipeline.
type Metrics struct {
	TasksExecuted     metric.Int64Counter
	TasksRequeued     metric.Int64Counter
	TasksDropped      metric.Int64Counter
	ChangesCommitted  metric.Int64Counter
	ChangesRolledBack metric.Int64Counter
	ChangesFailed     metric.Int64Counter
	ProposalDuration  metric.Float64Histogram
	CompositeScore    metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.TasksExecuted, err = meter.Int64Counter("steward.tasks.executed",
		metric.WithDescription("Number of tasks run to completion"))
	if err != nil {
		return nil, err
	}

	m.TasksRequeued, err = meter.Int64Counter("steward.tasks.requeued",
		metric.WithDescription("Number of dispatches requeued on asset lease contention"))
	if err != nil {
		return nil, err
	}

	m.TasksDropped, err = meter.Int64Counter("steward.tasks.dropped",
		metric.WithDescription("Number of generated tasks dropped as duplicates"))
	if err != nil {
		return nil, err
	}

	m.ChangesCommitted, err = meter.Int64Counter("steward.changes.committed",
		metric.WithDescription("Number of proposals accepted and applied"))
	if err != nil {
		return nil, err
	}

	m.ChangesRolledBack, err = meter.Int64Counter("steward.changes.rolledback",
		metric.WithDescription("Number of proposals discarded or changes manually restored"))
	if err != nil {
		return nil, err
	}

	m.ChangesFailed, err = meter.Int64Counter("steward.changes.failed",
		metric.WithDescription("Number of change attempts that errored"))
	if err != nil {
		return nil, err
	}

	m.ProposalDuration, err = meter.Float64Histogram("steward.proposal.duration_seconds",
		metric.WithDescription("Agent proposal generation latency in seconds"))
	if err != nil {
		return nil, err
	}

	m.CompositeScore, err = meter.Float64Histogram("steward.evaluation.composite",
		metric.WithDescription("Composite evaluation score per scored proposal"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
