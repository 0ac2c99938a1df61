package logger

import (
	"context"
	"testing"

	"github.com/stewardhq/steward/internal/config"
)

func TestNew(t *testing.T) {
	cfg := config.Logging{Level: "debug", Service: "test-svc", Format: "json"}
	l, closer := New(cfg)
	defer closer.Close()
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewAsync(t *testing.T) {
	cfg := config.Logging{Level: "debug", Service: "test-svc", Async: true, AsyncBuffer: 16}
	l, closer := New(cfg)
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	closer.Close()
}

func TestResolveFormat(t *testing.T) {
	if got := resolveFormat("text"); got != "text" {
		t.Errorf("resolveFormat(text) = %s", got)
	}
	if got := resolveFormat("json"); got != "json" {
		t.Errorf("resolveFormat(json) = %s", got)
	}
	if got := resolveFormat("garbage"); got != "json" {
		t.Errorf("expected unknown format to fall back to json, got %s", got)
	}
	// "auto" resolves by TTY detection; under `go test` stdout is a pipe.
	if got := resolveFormat("auto"); got != "text" && got != "json" {
		t.Errorf("resolveFormat(auto) = %s", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"unknown", "INFO"},
		{"", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseLevel(tt.input).String()
			if got != tt.want {
				t.Errorf("parseLevel(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestTaskIDContext(t *testing.T) {
	ctx := context.Background()

	if got := TaskID(ctx); got != "" {
		t.Errorf("expected empty task ID, got %q", got)
	}

	ctx = WithTaskID(ctx, "task-123")
	if got := TaskID(ctx); got != "task-123" {
		t.Errorf("expected task-123, got %q", got)
	}
}

func TestChangeIDContext(t *testing.T) {
	ctx := WithChangeID(context.Background(), "chg-9")
	if got := ChangeID(ctx); got != "chg-9" {
		t.Errorf("expected chg-9, got %q", got)
	}
	if got := ChangeID(context.Background()); got != "" {
		t.Errorf("expected empty change ID, got %q", got)
	}
}
