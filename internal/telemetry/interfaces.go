// Package telemetry narrows the logging and counter surface simulation
// components depend on, so the engine and loop never import a concrete
// logger or metrics backend.
package telemetry

// Logger exposes the formatted-logging capability components require. Both
// the standard library logger and the console logger satisfy it.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggerFunc adapts a function into the Logger interface.
type LoggerFunc func(format string, args ...any)

// Printf implements Logger for LoggerFunc.
func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// NopLogger returns a Logger that discards everything.
func NopLogger() Logger {
	return LoggerFunc(nil)
}

// Metrics exposes the counter operations simulation components record with.
type Metrics interface {
	Add(key string, delta uint64)
	Store(key string, value uint64)
}

type nopMetrics struct{}

func (nopMetrics) Add(string, uint64)   {}
func (nopMetrics) Store(string, uint64) {}

// NopMetrics returns a Metrics sink that records nothing.
func NopMetrics() Metrics {
	return nopMetrics{}
}
