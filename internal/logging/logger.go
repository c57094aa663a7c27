// Package logging wraps charmbracelet/log with the service's defaults.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Logger is a wrapper around the log.Logger from the charmbracelet/log package.
type Logger struct {
	*log.Logger
	Buffer *bytes.Buffer // set only for loggers created by NewTestLogger
}

var (
	logger *Logger
	mu     sync.RWMutex
)

// ParseLevel converts a level name ("debug", "info", "warn", "error") to a log.Level.
func ParseLevel(name string) (log.Level, error) {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return log.InfoLevel, fmt.Errorf("parse log level %q: %w", name, err)
	}
	return lvl, nil
}

// New creates a logger writing to w at the given level. Debug level also
// reports the caller.
func New(w io.Writer, level log.Level) *Logger {
	base := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		ReportCaller:    level == log.DebugLevel,
		Prefix:          "fileupload",
		Level:           level,
	})
	return &Logger{Logger: base}
}

// NewProduction creates a logger that writes one JSON object per line, for
// log collectors rather than terminals.
func NewProduction(w io.Writer, level log.Level) *Logger {
	base := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "fileupload",
		Level:           level,
		Formatter:       log.JSONFormatter,
	})
	return &Logger{Logger: base}
}

// NewTestLogger creates a logger that writes to an in-memory buffer.
func NewTestLogger() *Logger {
	buf := new(bytes.Buffer)
	base := log.NewWithOptions(buf, log.Options{Level: log.DebugLevel})
	return &Logger{Logger: base, Buffer: buf}
}

// GetOutput returns what a test logger has written so far.
func (l *Logger) GetOutput() string {
	if l.Buffer == nil {
		return ""
	}
	return l.Buffer.String()
}

// SetDefault replaces the package-level logger used by Info, Warn, Error and Fatal.
func SetDefault(l *Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// Default returns the package-level logger, creating an info-level stderr logger on first use.
func Default() *Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = New(os.Stderr, log.InfoLevel)
	}
	return logger
}

// Debug logs debug messages if debug logging is enabled.
func Debug(msg interface{}, keyvals ...interface{}) {
	Default().Debug(msg, keyvals...)
}

// Info logs informational messages.
func Info(msg interface{}, keyvals ...interface{}) {
	Default().Info(msg, keyvals...)
}

// Warn logs warning messages.
func Warn(msg interface{}, keyvals ...interface{}) {
	Default().Warn(msg, keyvals...)
}

// Error logs error messages.
func Error(msg interface{}, keyvals ...interface{}) {
	Default().Error(msg, keyvals...)
}

// Fatal logs a fatal message and exits the program.
func Fatal(msg interface{}, keyvals ...interface{}) {
	Default().Fatal(msg, keyvals...)
}
