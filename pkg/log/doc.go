// Package log provides the structured, context-aware logger used across nearrpc.
//
// Loggers are passed explicitly or carried in a context.Context; the package
// keeps no global logger.
//
// # Implementations
//
//   - ZapLogger: backed by go.uber.org/zap, with console, logfmt and json encoders
//   - NoopLogger: discards everything; the default returned by FromContext
//   - SpanLogger: forwards records to a wrapped logger and to a trace span
//
// # Usage
//
//	logger := log.NewZapLogger(log.Config{Format: "logfmt", Level: log.LevelDebug})
//	ctx = log.SetContextLogger(ctx, logger.WithName("nearrpc"))
//
//	// deeper in the call stack
//	log.FromContext(ctx).Debug("call succeeded", "method", "status")
//
// When SetContextLogger sees a valid OpenTelemetry span in the context it wraps
// the logger in a SpanLogger, so every record is also added to the span as an
// event and the log line carries traceId and spanId.
//
// # Configuration
//
// Config is read from the environment with cleanenv:
//
//	NEARRPC_LOG_FORMAT  console | logfmt | json  (default console)
//	NEARRPC_LOG_LEVEL   debug | info | warn | error | fatal  (default info)
//	NEARRPC_LOG_OUTPUT  stderr | stdout | <file path>  (default stderr)
package log
