package log

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

type contextKey struct{}

var loggerContextKey = contextKey{}

// SetContextLogger stores lg in ctx. If ctx carries a valid span, lg is wrapped
// in a SpanLogger recording onto that span. A nil lg stores a NoopLogger.
func SetContextLogger(ctx context.Context, lg Logger) context.Context {
	if lg == nil {
		lg = NewNoopLogger()
	}

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		lg = NewSpanLogger(unwrapSpanLogger(lg), NewOtelSpanEventRecorder(span))
	}

	return context.WithValue(ctx, loggerContextKey, lg)
}

// FromContext returns the logger stored in ctx, or a NoopLogger.
func FromContext(ctx context.Context) Logger {
	if lg, ok := ctx.Value(loggerContextKey).(Logger); ok {
		return lg
	}
	return NewNoopLogger()
}

// unwrapSpanLogger strips an existing span wrapper so that re-binding a logger
// to a child span does not record every event on the parent span as well.
func unwrapSpanLogger(lg Logger) Logger {
	switch sl := lg.(type) {
	case *SpanLogger:
		return sl.lg.AddCallerSkip(-1)
	case SpanLogger:
		return sl.lg.AddCallerSkip(-1)
	default:
		return lg
	}
}
