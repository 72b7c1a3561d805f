package logger

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// Logger is the logging interface used by the library.
type Logger interface {
	Info(msg string, obj any)
	Warn(msg string, obj any)
	Debug(msg string, obj any)
	Error(msg string, obj any)
}

// NopLogger discards all log messages.
type NopLogger struct{}

func (NopLogger) Info(string, any)  {}
func (NopLogger) Warn(string, any)  {}
func (NopLogger) Debug(string, any) {}
func (NopLogger) Error(string, any) {}

// Options configures a writer logger.
type Options struct {
	// Debug lowers the threshold from warn to debug.
	Debug bool
	// Session is attached to every line when non-empty.
	Session string
}

type charmLogger struct {
	l *charmlog.Logger
}

// NewWriterLogger builds a logger that writes to an io.Writer.
func NewWriterLogger(w io.Writer, opts Options) Logger {
	level := charmlog.WarnLevel
	if opts.Debug {
		level = charmlog.DebugLevel
	}
	l := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	if opts.Session != "" {
		l = l.With("session", opts.Session)
	}
	return charmLogger{l: l}
}

func (c charmLogger) Info(msg string, obj any)  { c.l.Info(msg, fields(obj)...) }
func (c charmLogger) Warn(msg string, obj any)  { c.l.Warn(msg, fields(obj)...) }
func (c charmLogger) Debug(msg string, obj any) { c.l.Debug(msg, fields(obj)...) }
func (c charmLogger) Error(msg string, obj any) { c.l.Error(msg, fields(obj)...) }

// fields flattens obj into key/value pairs. Maps become one pair per key,
// anything else is logged under "obj".
func fields(obj any) []any {
	switch v := obj.(type) {
	case nil:
		return nil
	case map[string]any:
		out := make([]any, 0, len(v)*2)
		for _, key := range slices.Sorted(maps.Keys(v)) {
			out = append(out, key, v[key])
		}
		return out
	default:
		return []any{"obj", fmt.Sprintf("%+v", v)}
	}
}

// Debug writes a debug log when enabled and logger is non-nil.
func Debug(enabled bool, logger Logger, msg string, obj any) {
	if !enabled || logger == nil {
		return
	}
	logger.Debug(msg, obj)
}

// Debugf is a compatibility helper for format-style debug logging.
func Debugf(enabled bool, logger Logger, format string, args ...any) {
	Debug(enabled, logger, fmt.Sprintf(format, args...), nil)
}

// Info writes an info log when logger is non-nil.
func Info(logger Logger, msg string, obj any) {
	if logger == nil {
		return
	}
	logger.Info(msg, obj)
}

// Warn writes a warning log when logger is non-nil.
func Warn(logger Logger, msg string, obj any) {
	if logger == nil {
		return
	}
	logger.Warn(msg, obj)
}

// Error writes an error log when logger is non-nil.
func Error(logger Logger, msg string, obj any) {
	if logger == nil {
		return
	}
	logger.Error(msg, obj)
}
