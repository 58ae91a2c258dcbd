package logging

import (
	"log/slog"

	"github.com/rs/zerolog"
)

// Logger defines the minimal structured logging interface used across the
// engine. Args are alternating key/value pairs, slog-style.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// ZerologAdapter wraps a zerolog.Logger to implement the Logger interface.
// The HTTP layer logs through zerolog directly; this adapter lets the engine
// share the same sink.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates a Logger from a zerolog.Logger.
func NewZerologAdapter(logger zerolog.Logger) Logger {
	return &ZerologAdapter{logger: logger}
}

// Debug logs a debug message.
func (z *ZerologAdapter) Debug(msg string, args ...any) {
	z.emit(z.logger.Debug(), msg, args)
}

// Info logs an informational message.
func (z *ZerologAdapter) Info(msg string, args ...any) {
	z.emit(z.logger.Info(), msg, args)
}

// Warn logs a warning message.
func (z *ZerologAdapter) Warn(msg string, args ...any) {
	z.emit(z.logger.Warn(), msg, args)
}

// Error logs an error message.
func (z *ZerologAdapter) Error(msg string, args ...any) {
	z.emit(z.logger.Error(), msg, args)
}

func (z *ZerologAdapter) emit(ev *zerolog.Event, msg string, args []any) {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, args[i+1])
	}
	ev.Msg(msg)
}

// NoOpLogger discards all log messages. Useful for testing or when logging is
// disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}
