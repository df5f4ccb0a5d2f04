package logging

import "log/slog"

// Logger is the logging interface handed to server and tool code.
// Arguments follow the slog convention of alternating keys and values.
// *slog.Logger satisfies it directly.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter carries an *slog.Logger behind the Logger interface. The
// level methods are promoted from the embedded logger; the field itself
// gives back the underlying logger where one is needed.
type SlogAdapter struct {
	*slog.Logger
}

// NewSlogAdapter wraps the given logger, falling back to slog.Default()
// when nil.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{Logger: logger}
}

// DefaultLogger returns an adapter over the process-wide default logger.
func DefaultLogger() *SlogAdapter {
	return NewSlogAdapter(nil)
}
