// Package logger wraps log/slog with a context-first API shared by all
// bounded contexts.
package logger

import (
	"context"
	"io"
	"log/slog"
)

// Level mirrors slog levels for config mapping.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// LoggerInterface is the logging port consumed by services and adapters.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) LoggerInterface
}

// Logger is the slog-backed implementation.
type Logger struct {
	sl *slog.Logger
}

var _ LoggerInterface = (*Logger)(nil)

// New creates a Logger writing structured text to w at the given level.
// The service name is attached to every record.
func New(w io.Writer, level Level, service string) *Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	sl := slog.New(h)
	if service != "" {
		sl = sl.With("service", service)
	}
	return &Logger{sl: sl}
}

// NewDiscard creates a Logger that drops everything. Used in tests and when
// stdout belongs to the reporting surface.
func NewDiscard() *Logger {
	return New(io.Discard, LevelError, "")
}

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.sl.DebugContext(ctx, msg, args...)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.sl.InfoContext(ctx, msg, args...)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.sl.WarnContext(ctx, msg, args...)
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.sl.ErrorContext(ctx, msg, args...)
}

// With returns a logger with the given attributes attached to every record.
func (l *Logger) With(args ...any) LoggerInterface {
	return &Logger{sl: l.sl.With(args...)}
}
