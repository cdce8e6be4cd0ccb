package cabaliser

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/cabaliser/instruction"
)

// Logger wraps slog.Logger with widget-specific field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, a text handler to stderr at info level is used.
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

// NewJSONLogger creates a Logger that writes JSON to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that writes human-readable text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// WithWidget adds the widget ID field.
func (l *Logger) WithWidget(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("widget", id),
	}
}

// WithQubit adds a qubit field.
func (l *Logger) WithQubit(q int) *Logger {
	return &Logger{
		Logger: l.Logger.With("qubit", q),
	}
}

// WithCount adds a count field.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogApply logs a single instruction. It returns before formatting when
// debug logging is off.
func (l *Logger) LogApply(ctx context.Context, ins instruction.Instruction, err error) {
	if !l.Enabled(ctx, slog.LevelDebug) {
		return
	}
	if err != nil {
		l.DebugContext(ctx, "apply rejected",
			"instruction", ins.String(),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "apply",
			"instruction", ins.String(),
		)
	}
}

// LogTeleport logs input teleportation.
func (l *Logger) LogTeleport(ctx context.Context, inputs int) {
	l.DebugContext(ctx, "inputs teleported",
		"inputs", inputs,
	)
}

// LogDecompose logs a decomposition.
func (l *Logger) LogDecompose(ctx context.Context, nQubits int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "decompose failed",
			"n_qubits", nQubits,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "decompose completed",
			"n_qubits", nQubits,
			"duration", d,
		)
	}
}

// LogSegment logs one compiled segment of a Sequence.
func (l *Logger) LogSegment(ctx context.Context, segment, rotations int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "segment failed",
			"segment", segment,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "segment compiled",
			"segment", segment,
			"rotations", rotations,
		)
	}
}

// LogSnapshot logs a snapshot save.
func (l *Logger) LogSnapshot(ctx context.Context, id string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"snapshot", id,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"snapshot", id,
		)
	}
}
