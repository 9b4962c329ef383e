// Package telemetry carries the ambient logging concern spec.md keeps
// even where CLI/config wiring is out of scope: a narrow Logger
// interface used by the ingestion scheduler and the supervisor, plus
// one concrete adapter over go.uber.org/zap.
package telemetry

// Logger is the logging capability every package in this module depends
// on, never a concrete logging library directly — mirroring the
// teacher's own func-field injection for DebugDriver logging
// (dialect/sql.DebugWithLog) generalized to a small interface so it can
// be passed around rather than closed over.
type Logger interface {
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

// NopLogger discards every line, the default when no Logger is supplied.
type NopLogger struct{}

func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}
