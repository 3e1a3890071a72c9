package log_test

import "github.com/erc7824/nitrolite/nearrpc/pkg/log"

var (
	_ log.Logger            = &MockLogger{}
	_ log.SpanEventRecorder = &MockSpanEventRecorder{}
)

// MockLogEntry is one captured record.
type MockLogEntry struct {
	Level         log.Level
	Message       string
	KeysAndValues []any
}

// MockLogger captures the last record and the logger state.
type MockLogger struct {
	lastEntry     MockLogEntry
	name          string
	keysAndValues []any
	callerSkip    int
}

func NewMockLogger() *MockLogger {
	return &MockLogger{name: "mock", keysAndValues: []any{}}
}

func (ml *MockLogger) Debug(msg string, kv ...any) { ml.record(log.LevelDebug, msg, kv) }
func (ml *MockLogger) Info(msg string, kv ...any)  { ml.record(log.LevelInfo, msg, kv) }
func (ml *MockLogger) Warn(msg string, kv ...any)  { ml.record(log.LevelWarn, msg, kv) }
func (ml *MockLogger) Error(msg string, kv ...any) { ml.record(log.LevelError, msg, kv) }
func (ml *MockLogger) Fatal(msg string, kv ...any) { ml.record(log.LevelFatal, msg, kv) }

func (ml *MockLogger) WithKV(key string, value any) log.Logger {
	ml.keysAndValues = append(ml.keysAndValues, key, value)
	return ml
}

func (ml *MockLogger) GetAllKV() []any { return ml.keysAndValues }

func (ml *MockLogger) WithName(name string) log.Logger {
	ml.name = name
	return ml
}

func (ml *MockLogger) Name() string { return ml.name }

func (ml *MockLogger) AddCallerSkip(skip int) log.Logger {
	ml.callerSkip += skip
	return ml
}

func (ml *MockLogger) CallerSkip() int { return ml.callerSkip }

func (ml *MockLogger) LastEntry() MockLogEntry { return ml.lastEntry }

func (ml *MockLogger) record(level log.Level, msg string, kv []any) {
	ml.lastEntry = MockLogEntry{Level: level, Message: msg, KeysAndValues: kv}
}

// MockSpanEventRecorder captures the last span event.
type MockSpanEventRecorder struct {
	traceID           string
	spanID            string
	hasErr            bool
	lastEventMetadata []any
}

func NewMockSpanEventRecorder(traceID, spanID string) *MockSpanEventRecorder {
	return &MockSpanEventRecorder{traceID: traceID, spanID: spanID}
}

func (ser *MockSpanEventRecorder) TraceID() string { return ser.traceID }
func (ser *MockSpanEventRecorder) SpanID() string  { return ser.spanID }

func (ser *MockSpanEventRecorder) RecordEvent(name string, kv ...any) {
	ser.lastEventMetadata = append([]any{"msg", name}, kv...)
}

func (ser *MockSpanEventRecorder) RecordError(name string, kv ...any) {
	ser.hasErr = true
	ser.lastEventMetadata = append([]any{"msg", name}, kv...)
}

func (ser *MockSpanEventRecorder) LastEventMetadata() []any { return ser.lastEventMetadata }
func (ser *MockSpanEventRecorder) HasError() bool           { return ser.hasErr }
