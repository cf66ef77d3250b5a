package disposable

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	logger      atomic.Pointer[zap.Logger]
	nopLogger   = zap.NewNop()
	reportLeaks atomic.Bool
)

// Logger returns the package logger.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return nopLogger
}

// SetLogger configures the package logger. Passing nil restores the no-op logger.
// Teardown runs on a runtime goroutine, so the logger may be read concurrently.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}

// SetLeakReporting enables a warning for every tracked value that is
// reclaimed without having been disposed.
func SetLeakReporting(enabled bool) {
	reportLeaks.Store(enabled)
}

// LeakReporting reports whether leak warnings are enabled.
func LeakReporting() bool {
	return reportLeaks.Load()
}
