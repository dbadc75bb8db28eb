// Package logger is the process-wide structured logger. Output goes to
// stderr because stdout carries the MCP stdio transport.
package logger

import (
	"io"
	"log/slog"
	"os"
)

var log *slog.Logger

func init() {
	level := slog.LevelInfo
	if os.Getenv("STORYCODEX_DEBUG") == "true" {
		level = slog.LevelDebug
	}
	Init(os.Stderr, level)
}

// Init replaces the logger. Used by main after config is loaded and by
// tests that capture output.
func Init(w io.Writer, level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}
	log = slog.New(slog.NewTextHandler(w, opts))
}

// With returns a child logger carrying the given attributes.
func With(args ...any) *slog.Logger {
	return log.With(args...)
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	log.Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	log.Info(msg, args...)
}

// Warn logs a recoverable problem.
func Warn(msg string, args ...any) {
	log.Warn(msg, args...)
}

// Error logs a failure the caller also returns.
func Error(msg string, args ...any) {
	log.Error(msg, args...)
}

