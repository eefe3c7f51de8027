package stile

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with stile-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// OrNoop returns l, or a NoopLogger when l is nil.
func (l *Logger) OrNoop() *Logger {
	if l == nil {
		return NoopLogger()
	}
	return l
}

// WithRun tags every record with a staging run ID.
func (l *Logger) WithRun(id string) *Logger {
	return &Logger{Logger: l.Logger.With("run", id)}
}

// WithRole adds the dataset role (primary, secondary, random, random2).
func (l *Logger) WithRole(role string) *Logger {
	return &Logger{Logger: l.Logger.With("role", role)}
}

// WithPath adds a file path field.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{Logger: l.Logger.With("path", path)}
}

// LogStage logs a completed (or failed) staging run.
func (l *Logger) LogStage(ctx context.Context, written, rewritten int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "staging failed",
			"written", written,
			"rewritten", rewritten,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "staging completed",
		"written", written,
		"rewritten", rewritten,
		"duration", d,
	)
}

// LogRewrite logs the eviction of an already-written file whose schema
// conflicts with the others.
func (l *Logger) LogRewrite(ctx context.Context, path string, size int64, conflicts []string) {
	l.WarnContext(ctx, "schema conflict, rewriting smallest file",
		"path", path,
		"size", size,
		"fields", conflicts,
	)
}

// LogTempFile logs creation of a temporary file.
func (l *Logger) LogTempFile(ctx context.Context, path string, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "temp file write failed",
			"path", path,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "temp file written",
		"path", path,
		"rows", rows,
	)
}

// LogMask logs a mask evaluation.
func (l *Logger) LogMask(ctx context.Context, objectType string, selected, total int) {
	l.DebugContext(ctx, "mask applied",
		"object_type", objectType,
		"selected", selected,
		"total", total,
	)
}
