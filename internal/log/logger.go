// Package log provides structured logging for tatara.
//
// It defines a Logger interface backed by Go's stdlib slog so that
// subsystems (the reconciliation driver, probes, resolvers) can log
// without a hard dependency on a concrete handler. Subsystems accept
// the Logger via functional options, with a global default for the CLI.
//
// Verbosity levels:
//   - ERROR (--quiet): failures only
//   - WARN (default): drift warnings and fallback notices
//   - INFO (--verbose): per-entry reconciliation progress
//   - DEBUG (--debug): token extraction, probe results, API traffic
package log

import (
	"io"
	"log/slog"
	"sync"
)

// Logger is the interface for structured logging.
// Method signatures match slog for easy integration.
type Logger interface {
	// Debug logs internal detail: extracted tokens, candidate
	// canonicalizations, probe status codes.
	Debug(msg string, args ...any)

	// Info logs operational progress, e.g. "entry up to date" or
	// "rebuilding download target".
	Info(msg string, args ...any)

	// Warn logs recoverable conditions, e.g. "checkver failed,
	// falling back to latest release".
	Warn(msg string, args ...any)

	// Error logs failures that end a reconciliation.
	Error(msg string, args ...any)

	// With returns a Logger that includes the given key-value pairs
	// in all subsequent records.
	With(args ...any) Logger
}

type slogLogger struct {
	l *slog.Logger
}

// New creates a Logger backed by slog with the given handler.
func New(h slog.Handler) Logger {
	return &slogLogger{l: slog.New(h)}
}

// NewText creates a Logger writing human-readable lines to w at the
// given minimum level. This is what the CLI installs after parsing
// verbosity flags.
func NewText(w io.Writer, level slog.Level) Logger {
	return New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

func (s *slogLogger) With(args ...any) Logger {
	return &slogLogger{l: s.l.With(args...)}
}

// noopLogger discards all output.
type noopLogger struct{}

// NewNoop returns a logger that discards all output.
// Useful in tests and for collaborators constructed without options.
func NewNoop() Logger {
	return noopLogger{}
}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) With(...any) Logger   { return noopLogger{} }

var (
	defaultLogger Logger = noopLogger{}
	defaultMu     sync.RWMutex
)

// Default returns the global logger configured at startup.
// Returns a noop logger if SetDefault has not been called.
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault sets the global logger. Called once in main() after
// parsing verbosity flags.
func SetDefault(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}
