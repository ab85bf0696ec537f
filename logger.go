package resonance

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with engine-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses a text handler to stderr at warn level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelWarn,
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
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithN adds the searched number to the logger.
func (l *Logger) WithN(n uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("n", n),
	}
}

// WithIteration adds an iteration field to the logger.
func (l *Logger) WithIteration(iteration int) *Logger {
	return &Logger{
		Logger: l.Logger.With("iteration", iteration),
	}
}

// WithScale adds an observation scale field to the logger.
func (l *Logger) WithScale(scale uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("scale", scale),
	}
}

// WithSource adds a candidate source field to the logger.
func (l *Logger) WithSource(source string) *Logger {
	return &Logger{
		Logger: l.Logger.With("source", source),
	}
}

// WithDuration adds a duration field to the logger.
func (l *Logger) WithDuration(d time.Duration) *Logger {
	return &Logger{
		Logger: l.Logger.With("duration", d),
	}
}

// LogFactorStart logs the start of a factor search.
func (l *Logger) LogFactorStart(ctx context.Context, session string, n uint64, candidates int) {
	l.DebugContext(ctx, "factor search started",
		"session", session,
		"n", n,
		"candidates", candidates,
	)
}

// LogFactorFound logs a successful factor search.
func (l *Logger) LogFactorFound(ctx context.Context, session string, n, p, q uint64, iterations int, source string) {
	l.InfoContext(ctx, "factor found",
		"session", session,
		"n", n,
		"p", p,
		"q", q,
		"iterations", iterations,
		"source", source,
	)
}

// LogExhausted logs a search that ended without a factor. A non-nil err
// means the search was aborted rather than exhausted.
func (l *Logger) LogExhausted(ctx context.Context, session string, n uint64, iterations int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "factor search aborted",
			"session", session,
			"n", n,
			"iterations", iterations,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "search exhausted",
			"session", session,
			"n", n,
			"iterations", iterations,
		)
	}
}

// LogSnapshotSave logs a memory snapshot write.
func (l *Logger) LogSnapshotSave(ctx context.Context, key string, bytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot save failed",
			"key", key,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"key", key,
			"bytes", bytes,
		)
	}
}

// LogSnapshotLoad logs a memory snapshot read.
func (l *Logger) LogSnapshotLoad(ctx context.Context, key string, records int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot load failed",
			"key", key,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot loaded",
			"key", key,
			"records", records,
		)
	}
}
