// Package log provides structured logging for the iristree workflow.
//
// It defines a minimal, slog-compatible Logger interface so components stay
// agnostic of the backend, plus a zerolog-backed provider and a slog JSON
// setup with stacktrace extraction for cockroachdb/errors values. Standard
// attribute keys for ML operations live in attributes.go.
package log

import (
	"context"
)

// Logger is a structured logging interface compatible with log/slog.
// Fields are alternating key/value pairs.
type Logger interface {
	// Debug logs detailed diagnostic information.
	Debug(msg string, fields ...any)

	// Info logs general operational information.
	Info(msg string, fields ...any)

	// Warn logs potentially problematic situations that do not stop the run.
	Warn(msg string, fields ...any)

	// Error logs error conditions. If a field value is an error, stacktrace
	// information may be attached by the backend.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, value-compatible with slog.Level.
type Level int

const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates and configures loggers. It exists for dependency
// injection: production code uses the zerolog provider, tests use
// TestLoggerProvider.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum level for loggers from this provider.
	SetLevel(level Level)
}
