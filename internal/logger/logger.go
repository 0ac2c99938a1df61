// Package logger provides structured logging setup for steward.
package logger

import (
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/stewardhq/steward/internal/config"
)

// New creates a *slog.Logger from the given Logging config, plus a Closer
// that flushes buffered records when async logging is enabled.
// Every record carries a "service" attribute.
func New(cfg config.Logging) (*slog.Logger, Closer) {
	level := parseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch resolveFormat(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	closer := Closer(nopCloser{})
	if cfg.Async {
		async := NewAsyncHandler(handler, cfg.AsyncBuffer, 1)
		handler = async
		closer = async
	}

	return slog.New(handler).With("service", cfg.Service), closer
}

// resolveFormat maps "auto" to text on a terminal and JSON everywhere else.
func resolveFormat(format string) string {
	switch strings.ToLower(format) {
	case "text", "json":
		return strings.ToLower(format)
	case "auto":
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return "text"
		}
		return "json"
	default:
		return "json"
	}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
