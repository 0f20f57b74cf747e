package binary

// Logger is the diagnostic sink for provisioning: download progress,
// integrity decisions, and cleanup problems all flow through it. Arguments
// after the message are alternating key-value pairs, so a zap sugared
// logger adapts directly.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// noopLogger backs Config.Logger when the caller supplies none; library
// consumers like the sdk package stay silent by default.
type noopLogger struct{}

func (n *noopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (n *noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (n *noopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (n *noopLogger) Error(msg string, keysAndValues ...interface{}) {}
