package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "steward"

// StartDispatchSpan starts a span covering one task's full change attempt.
func StartDispatchSpan(ctx context.Context, taskID, assetKey, capability string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "dispatch",
		trace.WithAttributes(
			attribute.String("task.id", taskID),
			attribute.String("asset.key", assetKey),
			attribute.String("agent.capability", capability),
		),
	)
}

// StartProposeSpan starts a span for agent proposal generation.
func StartProposeSpan(ctx context.Context, agentID, assetKey string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "propose",
		trace.WithAttributes(
			attribute.String("agent.id", agentID),
			attribute.String("asset.key", assetKey),
		),
	)
}

// StartEvaluateSpan starts a span for evaluator scoring of a staged change.
func StartEvaluateSpan(ctx context.Context, changeID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "evaluate",
		trace.WithAttributes(
			attribute.String("change.id", changeID),
		),
	)
}

// StartCommitSpan starts a span for the store write and snapshot append of
// an accepted change.
func StartCommitSpan(ctx context.Context, changeID, assetKey string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "commit",
		trace.WithAttributes(
			attribute.String("change.id", changeID),
			attribute.String("asset.key", assetKey),
		),
	)
}

// StartRollbackSpan starts a span for a manual rollback of a committed change.
func StartRollbackSpan(ctx context.Context, changeID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "rollback",
		trace.WithAttributes(
			attribute.String("change.id", changeID),
		),
	)
}
