package docarray

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/docarray/offset2id"
)

// Logger wraps slog.Logger with docarray-specific context.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithCollection adds the collection name to every record.
func (l *Logger) WithCollection(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("collection", name),
	}
}

// LogSet logs a set operation.
func (l *Logger) LogSet(ctx context.Context, idx any, err error) {
	if err != nil {
		l.ErrorContext(ctx, "set failed",
			"index", idx,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "set completed",
			"index", idx,
		)
	}
}

// LogDelete logs a delete operation.
func (l *Logger) LogDelete(ctx context.Context, idx any, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			"index", idx,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "delete completed",
			"index", idx,
		)
	}
}

// LogExtend logs an extend operation.
func (l *Logger) LogExtend(ctx context.Context, count, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "extend failed",
			"count", count,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "extend completed",
			"count", count,
			"len", size,
		)
	}
}

// LogDivergence logs a verification that found the offset2id table out of
// sync with the stored documents.
func (l *Logger) LogDivergence(ctx context.Context, r offset2id.Report) {
	l.WarnContext(ctx, "offset2id diverged from storage",
		"table_len", r.TableLen,
		"store_len", r.StoreLen,
		"duplicates", len(r.Duplicates),
		"orphans", len(r.Orphans),
		"missing", len(r.Missing),
	)
}

// LogRepair logs a repair of the offset2id table.
func (l *Logger) LogRepair(ctx context.Context, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "offset2id repair failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "offset2id repaired",
			"len", size,
		)
	}
}
