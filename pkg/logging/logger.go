// Package logging provides the structured logger shared by kuberift components.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Logger is a structured logger for kuberift components.
type Logger struct {
	*slog.Logger
	level slog.Level
}

// Options controls where and how logs are written.
type Options struct {
	Level  string
	Format string // "json" or "text"
	Output io.Writer
}

// ParseLevel converts a config level name to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
}

// New creates a logger. Unknown levels fall back to info.
func New(opts Options) *Logger {
	level, _ := ParseLevel(opts.Level)
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(opts.Format, "text") {
		handler = slog.NewTextHandler(out, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(out, handlerOpts)
	}

	return &Logger{
		Logger: slog.New(handler).With(slog.String("system", "kuberift")),
		level:  level,
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), level: slog.LevelError}
}

// DebugEnabled reports whether debug records are emitted. The dashboard shows
// its debug panel only when this is true.
func (l *Logger) DebugEnabled() bool {
	return l.level <= slog.LevelDebug
}

func (l *Logger) with(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), level: l.level}
}

// WithComponent returns a logger tagged with a component name.
func (l *Logger) WithComponent(component string) *Logger {
	return l.with(slog.String("component", component))
}

// WithSession returns a logger with session-specific fields.
func (l *Logger) WithSession(sessionID string) *Logger {
	return l.with(slog.String("session_id", sessionID))
}

// WithPrincipal returns a logger tagged with the authenticated user.
func (l *Logger) WithPrincipal(principal string) *Logger {
	return l.with(slog.String("principal", principal))
}

// WithContext adds the trace and span ids of the active span, if any.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return l
	}
	return l.with(
		slog.String("trace_id", spanCtx.TraceID().String()),
		slog.String("span_id", spanCtx.SpanID().String()),
	)
}

// SessionStarted logs a new dashboard session.
func (l *Logger) SessionStarted(remote string, width, height int) {
	l.Info("session started",
		slog.String("remote", remote),
		slog.Int("width", width),
		slog.Int("height", height),
	)
}

// SessionEnded logs the end of a dashboard session.
func (l *Logger) SessionEnded(duration time.Duration, err error) {
	if err != nil {
		l.Warn("session ended with error",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()),
		)
		return
	}
	l.Info("session ended", slog.Duration("duration", duration))
}

// RawStarted logs a raw takeover of the terminal.
func (l *Logger) RawStarted(kind string) {
	l.Debug("raw mode entered", slog.String("raw", kind))
}

// RawFinished logs the end of a raw takeover.
func (l *Logger) RawFinished(kind string, duration time.Duration, err error) {
	attrs := []any{slog.String("raw", kind), slog.Duration("duration", duration)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.Debug("raw mode finished", attrs...)
}

// WatchError logs a recoverable watch failure.
func (l *Logger) WatchError(resource string, err error) {
	l.Debug("watch error",
		slog.String("resource", resource),
		slog.String("error", err.Error()),
	)
}
