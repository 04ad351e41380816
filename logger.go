package factormerge

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/factormerge/merge"
)

// Logger wraps slog.Logger with factormerge-specific helpers.
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

// NewJSONLogger creates a Logger that outputs JSON-formatted logs to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewFormatLogger creates a Logger writing to w. format is "text" or "json";
// level is a slog level name such as "debug".
func NewFormatLogger(w io.Writer, format, level string) (*Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "", "text":
		return NewLogger(slog.NewTextHandler(w, opts)), nil
	case "json":
		return NewLogger(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithPhase tags every record with the tool phase.
func (l *Logger) WithPhase(phase string) *Logger {
	return &Logger{
		Logger: l.Logger.With("phase", phase),
	}
}

// LogLoad logs a model load.
func (l *Logger) LogLoad(ctx context.Context, role, name string, rows, columns int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"model", role,
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "model loaded",
			"model", role,
			"name", name,
			"rows", rows,
			"columns", columns,
			"duration", duration,
		)
	}
}

// LogMerge logs a merge.
func (l *Logger) LogMerge(ctx context.Context, stats merge.Stats, err error) {
	if err != nil {
		l.ErrorContext(ctx, "merge failed",
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "merge completed",
		"shared_ids", stats.SharedIDs,
		"overlap", stats.Overlap,
		"input_dim", stats.InputDim,
		"output_dim", stats.OutputDim,
		"rows", stats.Rows,
		"columns", stats.Columns,
		"duration", stats.Duration,
	)
}

// LogSave logs the write of the merged model.
func (l *Logger) LogSave(ctx context.Context, name string, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "merged model saved",
			"name", name,
			"duration", duration,
		)
	}
}
