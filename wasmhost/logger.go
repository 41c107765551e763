package wasmhost

import (
	"go.uber.org/zap"

	"github.com/wippyai/jni-bridge/internal/logging"
)

var logger logging.Slot

// Logger returns the wasm host package logger, a no-op logger until SetLogger
// installs one.
func Logger() *zap.Logger {
	return logger.Get()
}

// SetLogger replaces the wasm host package logger. Nil restores the no-op logger.
func SetLogger(l *zap.Logger) {
	logger.Set(l)
}
