package task_test

import (
	"testing"

	"github.com/stewardhq/steward/internal/domain/task"
)

func TestStatusIsTerminal(t *testing.T) {
	for _, s := range []task.Status{task.StatusDone, task.StatusFailed, task.StatusCancelled} {
		if !s.IsTerminal() {
			t.Fatalf("expected %s to be terminal", s)
		}
	}
	for _, s := range []task.Status{task.StatusQueued, task.StatusDispatched} {
		if s.IsTerminal() {
			t.Fatalf("expected %s to be non-terminal", s)
		}
	}
}
