// Package logging exposes package-level log helpers backed by a shared zap logger.
package logging

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	disabled atomic.Bool
	base     atomic.Pointer[zap.Logger]
)

func init() {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	base.Store(l)
}

// Init replaces the shared logger. Level is one of debug, info, warn, error.
func Init(level string, development bool) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	if old := base.Swap(l); old != nil {
		_ = old.Sync()
	}
	return nil
}

// L returns the shared structured logger. Returns a no-op logger while disabled.
func L() *zap.Logger {
	if disabled.Load() {
		return zap.NewNop()
	}
	return base.Load()
}

// Sync flushes buffered entries.
func Sync() {
	_ = base.Load().Sync()
}

// Disable turns off all logging
func Disable() {
	disabled.Store(true)
}

// Enable turns logging back on
func Enable() {
	disabled.Store(false)
}

func sugar() *zap.SugaredLogger {
	return base.Load().WithOptions(zap.AddCallerSkip(1)).Sugar()
}

// Info logs an info message
func Info(v ...any) {
	if !disabled.Load() {
		sugar().Info(v...)
	}
}

// Infof logs a formatted info message
func Infof(format string, v ...any) {
	if !disabled.Load() {
		sugar().Infof(format, v...)
	}
}

// Warn logs a warning message
func Warn(v ...any) {
	if !disabled.Load() {
		sugar().Warn(v...)
	}
}

// Warnf logs a formatted warning message
func Warnf(format string, v ...any) {
	if !disabled.Load() {
		sugar().Warnf(format, v...)
	}
}

// Error logs an error message
func Error(v ...any) {
	if !disabled.Load() {
		sugar().Error(v...)
	}
}

// Errorf logs a formatted error message
func Errorf(format string, v ...any) {
	if !disabled.Load() {
		sugar().Errorf(format, v...)
	}
}

// Debug logs a debug message
func Debug(v ...any) {
	if !disabled.Load() {
		sugar().Debug(v...)
	}
}

// Debugf logs a formatted debug message
func Debugf(format string, v ...any) {
	if !disabled.Load() {
		sugar().Debugf(format, v...)
	}
}
