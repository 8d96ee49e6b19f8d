// Package logger provides a simple leveled logger for the application.
// It supports three levels: off (no output), normal (info/warn/error),
// and verbose (includes debug). Records are written through log/slog in
// either text or JSON form. The logger is safe for concurrent use.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Level controls the verbosity of the logger.
type Level int

const (
	// LevelOff disables all log output.
	LevelOff Level = iota
	// LevelNormal enables info, warn, and error output.
	LevelNormal
	// LevelVerbose enables all output including debug.
	LevelVerbose
)

// String returns the configuration name of the level.
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelNormal:
		return "normal"
	case LevelVerbose:
		return "verbose"
	default:
		return "unknown"
	}
}

// ParseLevel maps a configuration name to a Level. "quiet" and "debug"
// are accepted as aliases of off and verbose.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "off", "quiet":
		return LevelOff, nil
	case "", "normal", "info":
		return LevelNormal, nil
	case "verbose", "debug":
		return LevelVerbose, nil
	default:
		return LevelNormal, fmt.Errorf("unknown log level %q", name)
	}
}

// Format selects the record encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// levelVar is shared between a logger and the loggers derived from it
// with With, so SetLevel affects all of them.
type levelVar struct {
	mu    sync.RWMutex
	level Level
}

// Logger is a leveled logger. All methods are safe for concurrent use.
type Logger struct {
	lv  *levelVar
	out *slog.Logger
}

// New creates a text logger with the given level, writing to the given output.
// If out is nil, os.Stderr is used.
func New(level Level, out io.Writer) *Logger {
	return NewWithFormat(level, FormatText, out)
}

// NewWithFormat creates a logger writing records in the given format.
func NewWithFormat(level Level, format Format, out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}

	// Level filtering happens here, the handler lets everything through.
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}

	var h slog.Handler
	if format == FormatJSON {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}

	return &Logger{
		lv:  &levelVar{level: level},
		out: slog.New(h),
	}
}

// With returns a logger that attaches key=value to every record.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{lv: l.lv, out: l.out.With(key, value)}
}

// SetLevel changes the log level at runtime.
func (l *Logger) SetLevel(level Level) {
	l.lv.mu.Lock()
	defer l.lv.mu.Unlock()
	l.lv.level = level
}

// GetLevel returns the current log level.
func (l *Logger) GetLevel() Level {
	l.lv.mu.RLock()
	defer l.lv.mu.RUnlock()
	return l.lv.level
}

// Debug logs a message at debug level (only visible in verbose mode).
func (l *Logger) Debug(format string, args ...any) {
	l.emit(LevelVerbose, slog.LevelDebug, format, args)
}

// Info logs a message at info level.
func (l *Logger) Info(format string, args ...any) {
	l.emit(LevelNormal, slog.LevelInfo, format, args)
}

// Warn logs a message at warn level.
func (l *Logger) Warn(format string, args ...any) {
	l.emit(LevelNormal, slog.LevelWarn, format, args)
}

// Error logs a message at error level.
func (l *Logger) Error(format string, args ...any) {
	l.emit(LevelNormal, slog.LevelError, format, args)
}

func (l *Logger) emit(min Level, sl slog.Level, format string, args []any) {
	if l == nil || l.GetLevel() < min {
		return
	}
	l.out.Log(context.Background(), sl, fmt.Sprintf(format, args...))
}
