package texpos

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the package logger. Accessed atomically so that
// SetLogger can be called while a reset is being recovered.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the diagnostic sink used by texpos and its backends.
// By default texpos produces no log output. Pass nil to restore the
// silent default.
//
// Log levels used by texpos:
//   - [slog.LevelDebug]: per-handle uploads, lookups of invalid handles
//   - [slog.LevelInfo]: lifecycle events (init, cleanup, reset recovered)
//   - [slog.LevelWarn]: failures that produce a sentinel (decode, unknown asset)
//   - [slog.LevelError]: uploads that failed during reset recovery
//
// A [Manager] created with [WithLogger] uses its own logger instead.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current package logger.
// Backend packages call this to share the same configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// logSource resolves to an explicit logger or, when nil, to the package
// logger at call time, so SetLogger affects components created earlier.
type logSource struct {
	l *slog.Logger
}

func (s logSource) logger() *slog.Logger {
	if s.l != nil {
		return s.l
	}
	return Logger()
}
