// Package logx builds the single structured logger instance every
// subsystem in the core receives at construction. There is no ambient
// global logger; callers that need one hold onto the *log.Logger (or
// Logger) they were handed.
package logx

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Logger is the narrow surface components depend on, letting tests pass
// in a discard logger without pulling in charmbracelet/log directly.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Info(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
	Error(msg interface{}, keyvals ...interface{})
	With(keyvals ...interface{}) *log.Logger
}

// Options configures the root logger built at boot.
type Options struct {
	Level      string // "debug", "info", "warn", "error"
	Output     io.Writer
	ReportTime bool
}

// New builds the root logger. Subsystems derive their own scoped logger
// via root.With("component", "render") rather than sharing one instance
// with no context.
func New(opts Options) *log.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	logger := log.NewWithOptions(out, log.Options{ //nolint:exhaustruct
		ReportTimestamp: opts.ReportTime,
		Level:           parseLevel(opts.Level),
	})

	return logger
}

func parseLevel(s string) log.Level {
	lvl, err := log.ParseLevel(s)
	if err != nil {
		return log.InfoLevel
	}

	return lvl
}

// Discard returns a logger that writes nowhere, for tests.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{}) //nolint:exhaustruct
}
