// Package logging configures the process-wide zap logger for the wrapper
// CLI and adapts it to the provisioning packages' Logger interface.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/RevylAI/revyl-cli/internal/binary"
)

// Init sets up the global zap logger writing to stderr at the given level
// ("debug", "info", "warn", "error"; anything else means info). It returns
// the sugared logger and a cleanup function that must be deferred.
func Init(level string) (*zap.SugaredLogger, func()) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		// The static config above cannot fail to build; fall back anyway.
		logger = zap.NewNop()
	}

	zap.ReplaceGlobals(logger)
	sugar := logger.Sugar()

	return sugar, func() {
		_ = logger.Sync()
	}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// provisionLogger adapts a zap sugared logger to binary.Logger.
type provisionLogger struct {
	sugar *zap.SugaredLogger
}

// ForProvisioner wraps a sugared logger for use by the binary package.
func ForProvisioner(sugar *zap.SugaredLogger) binary.Logger {
	return &provisionLogger{sugar: sugar}
}

func (l *provisionLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *provisionLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *provisionLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}

func (l *provisionLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}
