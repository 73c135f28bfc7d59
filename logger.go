package typedjson

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/typedjson/codec"
)

// Logger wraps slog.Logger with typedjson-specific context.
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
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithPipeline adds a pipeline field to the logger.
func (l *Logger) WithPipeline(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("pipeline", name),
	}
}

// LogEncode logs a dump operation.
func (l *Logger) LogEncode(ctx context.Context, mode codec.Mode, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "encode failed",
			"mode", mode.String(),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "encode completed",
			"mode", mode.String(),
			"bytes", size,
		)
	}
}

// LogDecode logs a load operation.
func (l *Logger) LogDecode(ctx context.Context, mode codec.Mode, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "decode failed",
			"mode", mode.String(),
			"bytes", size,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "decode completed",
			"mode", mode.String(),
			"bytes", size,
		)
	}
}

// LogStateSave logs a persisted state write.
func (l *Logger) LogStateSave(ctx context.Context, pipeline string, version int64, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "state save failed",
			"pipeline", pipeline,
			"version", version,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "state saved",
			"pipeline", pipeline,
			"version", version,
			"bytes", size,
		)
	}
}

// LogStateLoad logs a persisted state read.
func (l *Logger) LogStateLoad(ctx context.Context, pipeline string, version int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "state load failed",
			"pipeline", pipeline,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "state loaded",
			"pipeline", pipeline,
			"version", version,
		)
	}
}
