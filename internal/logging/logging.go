// Package logging provides a leveled structured logger backed by log/slog.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Level represents log severity.
type Level int

// Levels in increasing severity.
const (
	// LevelDebug enables per-event diagnostics.
	LevelDebug Level = iota
	// LevelInfo reports loading and pass summaries.
	LevelInfo
	// LevelWarn reports recoverable problems such as dropped bodies.
	LevelWarn
	// LevelError reports failures.
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	case LevelInfo:
		return slog.LevelInfo
	default:
		// above every level
		return slog.LevelError + 4
	}
}

// ParseLevel parses a log level string.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Format selects the line encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat parses a log format string, defaulting to text.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), "json") {
		return FormatJSON
	}
	return FormatText
}

// Logger is a leveled logger with key/value attributes.
type Logger struct {
	mu     sync.Mutex
	level  slog.LevelVar
	format Format
	output io.Writer
	attrs  []any
	sl     *slog.Logger
}

// New creates a text logger writing to stderr.
func New(level Level) *Logger {
	return NewWithFormat(os.Stderr, level, FormatText)
}

// NewWithFormat creates a logger with an explicit output and format.
func NewWithFormat(w io.Writer, level Level, format Format) *Logger {
	l := &Logger{
		format: format,
		output: w,
	}
	l.level.Set(level.slogLevel())
	l.rebuild()
	return l
}

// rebuild recreates the handler; callers hold mu or own l exclusively.
func (l *Logger) rebuild() {
	opts := &slog.HandlerOptions{Level: &l.level}
	var h slog.Handler
	if l.format == FormatJSON {
		h = slog.NewJSONHandler(l.output, opts)
	} else {
		h = slog.NewTextHandler(l.output, opts)
	}
	l.sl = slog.New(h).With(l.attrs...)
}

// SetOutput sets the log output destination.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
	l.rebuild()
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.level.Set(level.slogLevel())
}

// Enabled reports whether messages at level are emitted.
func (l *Logger) Enabled(level Level) bool {
	return l.handler().Enabled(context.Background(), level.slogLevel())
}

// With returns a logger that adds attrs to every message.
func (l *Logger) With(args ...any) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	child := &Logger{
		format: l.format,
		output: l.output,
		attrs:  append(append([]any{}, l.attrs...), args...),
	}
	child.level.Set(l.level.Level())
	child.rebuild()
	return child
}

// Slog exposes the underlying slog logger.
func (l *Logger) Slog() *slog.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sl
}

func (l *Logger) handler() slog.Handler {
	return l.Slog().Handler()
}

func (l *Logger) log(level Level, msg string, args ...any) {
	l.Slog().Log(context.Background(), level.slogLevel(), msg, args...)
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(LevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.log(LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.log(LevelError, msg, args...)
}

// Discard returns a logger that discards all output.
func Discard() *Logger {
	return NewWithFormat(io.Discard, LevelError+1, FormatText)
}
