package log

import (
	"fmt"
	"strings"
)

// Logger is the structured logger used throughout the module.
// keysAndValues are alternating keys and values, e.g. "method", "status".
type Logger interface {
	// Debug logs diagnostic detail, such as per-call request traces.
	Debug(msg string, keysAndValues ...any)
	// Info logs routine progress.
	Info(msg string, keysAndValues ...any)
	// Warn logs unexpected but recoverable situations.
	Warn(msg string, keysAndValues ...any)
	// Error logs failures that need attention.
	Error(msg string, keysAndValues ...any)
	// Fatal logs an unrecoverable failure; implementations may exit the process.
	Fatal(msg string, keysAndValues ...any)
	// WithKV returns a logger that adds the pair to every record.
	WithKV(key string, value any) Logger
	// GetAllKV returns the pairs added with WithKV.
	GetAllKV() []any
	// WithName returns a logger scoped to a named component.
	WithName(name string) Logger
	// Name returns the component name.
	Name() string
	// AddCallerSkip returns a logger that skips extra stack frames when
	// reporting the caller. Implementations without caller info return themselves.
	AddCallerSkip(skip int) Logger
}

// Level is the severity of a log record.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// SetValue implements cleanenv.Setter so that levels read from the
// environment are checked when the config is loaded.
func (l *Level) SetValue(s string) error {
	lvl := Level(strings.ToLower(strings.TrimSpace(s)))
	switch lvl {
	case LevelDebug, LevelInfo, LevelWarn, LevelError, LevelFatal:
		*l = lvl
		return nil
	case "":
		*l = LevelInfo
		return nil
	default:
		return fmt.Errorf("unknown log level %q", s)
	}
}

// SpanEventRecorder records log records onto a trace span.
type SpanEventRecorder interface {
	// TraceID returns the hex trace id of the span.
	TraceID() string
	// SpanID returns the hex span id of the span.
	SpanID() string

	// RecordEvent adds an event with the given attributes.
	RecordEvent(name string, keysAndValues ...any)
	// RecordError adds an event and marks the span as failed.
	RecordError(name string, keysAndValues ...any)
}
