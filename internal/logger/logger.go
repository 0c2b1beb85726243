// Package logger is the SDK's internal logging seam. The default sink is a
// JSON slog handler on stderr at warn level, so a quiet integration stays
// quiet; host applications route it into their own logger with SetLogger.
package logger

import (
	"log/slog"
	"os"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

func init() {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})
	current.Store(slog.New(handler))
}

// SetLogger replaces the SDK-wide logger. Safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l != nil {
		current.Store(l)
	}
}

// Get returns the active logger.
func Get() *slog.Logger {
	return current.Load()
}

func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Get().Error(msg, args...)
}

func With(args ...any) *slog.Logger {
	return Get().With(args...)
}
