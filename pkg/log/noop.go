package log

// NoopLogger implements Logger by dropping every message. It is the default
// for library embedding and keeps test output quiet.
type NoopLogger struct{}

// NewNoopLogger creates a logger that discards everything.
func NewNoopLogger() *NoopLogger {
	return &NoopLogger{}
}

func (NoopLogger) Debug(string, ...Field) {}
func (NoopLogger) Info(string, ...Field)  {}
func (NoopLogger) Warn(string, ...Field)  {}
func (NoopLogger) Error(string, ...Field) {}
