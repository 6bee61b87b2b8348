// Package logger provides structured key-value logging for the application.
package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	log  *slog.Logger
	once sync.Once
)

// Init configures the global logger. Level is one of debug, info, warn, error.
// Safe to call multiple times; only the first call takes effect.
func Init(level string) {
	once.Do(func() {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: parseLevel(level),
		}))
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func get() *slog.Logger {
	if log == nil {
		Init("info")
	}
	return log
}

// Debug logs a debug message with key-value pairs
func Debug(msg string, args ...any) { get().Debug(msg, args...) }

// Info logs an info message with key-value pairs
func Info(msg string, args ...any) { get().Info(msg, args...) }

// Warn logs a warning message with key-value pairs
func Warn(msg string, args ...any) { get().Warn(msg, args...) }

// Error logs an error message with key-value pairs
func Error(msg string, args ...any) { get().Error(msg, args...) }
