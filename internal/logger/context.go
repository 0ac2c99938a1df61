package logger

import "context"

// contextKey is a private type to prevent collisions with other context keys.
type contextKey string

const (
	taskIDKey   contextKey = "task_id"
	changeIDKey contextKey = "change_id"
)

// WithTaskID returns a new context carrying the dispatched task's ID.
func WithTaskID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, taskIDKey, id)
}

// TaskID extracts the task ID from the context, or "" if unset.
func TaskID(ctx context.Context) string {
	id, _ := ctx.Value(taskIDKey).(string)
	return id
}

// WithChangeID returns a new context carrying the staged change's ID.
func WithChangeID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, changeIDKey, id)
}

// ChangeID extracts the change ID from the context, or "" if unset.
func ChangeID(ctx context.Context) string {
	id, _ := ctx.Value(changeIDKey).(string)
	return id
}
