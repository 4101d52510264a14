// Package logger wraps a process-wide zap logger.
package logger

import (
	"fmt"

	"go.uber.org/zap"
)

var (
	base  = zap.NewNop()
	sugar = base.Sugar()
)

// Init initializes the package-level logger
func Init(debug bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		l, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("failed to initialize zap logger: %w", err)
	}

	base = l
	sugar = l.Sugar()
	return nil
}

// Get returns the sugared logger. It discards everything until Init is called.
func Get() *zap.SugaredLogger {
	return sugar
}

// Sync flushes any buffered log entries
func Sync() {
	_ = base.Sync()
}

func Debugw(msg string, keysAndValues ...any) {
	Get().Debugw(msg, keysAndValues...)
}

func Infow(msg string, keysAndValues ...any) {
	Get().Infow(msg, keysAndValues...)
}

func Warnw(msg string, keysAndValues ...any) {
	Get().Warnw(msg, keysAndValues...)
}

func Errorw(msg string, keysAndValues ...any) {
	Get().Errorw(msg, keysAndValues...)
}

func Fatalw(msg string, keysAndValues ...any) {
	Get().Fatalw(msg, keysAndValues...)
}
