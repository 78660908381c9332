// Package logging writes leveled log lines to the console and to an
// append-only api.log file.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// Log levels
const (
	LevelInfo    = "INFO"
	LevelWarning = "WARNING"
	LevelError   = "ERROR"
)

// FileName is the log file created inside the log directory
const FileName = "api.log"

// Logger is a leveled wrapper around the standard library logger
type Logger struct {
	logger *log.Logger
	file   *os.File
}

// New creates a logger writing to w only
func New(w io.Writer) *Logger {
	if w == nil {
		w = os.Stdout
	}
	return &Logger{logger: log.New(w, "", log.LstdFlags)}
}

// NewWithFile creates a logger writing to stdout and to dir/api.log.
// When the file cannot be opened the logger keeps writing to stdout and the
// error is returned alongside it.
func NewWithFile(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return New(os.Stdout), fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return New(os.Stdout), fmt.Errorf("opening log file: %w", err)
	}

	l := New(io.MultiWriter(os.Stdout, f))
	l.file = f
	return l, nil
}

// Infof logs an INFO line
func (l *Logger) Infof(format string, args ...interface{}) {
	l.logf(LevelInfo, format, args...)
}

// Warnf logs a WARNING line
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logf(LevelWarning, format, args...)
}

// Errorf logs an ERROR line
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logf(LevelError, format, args...)
}

// Printf logs without a level, used for access lines
func (l *Logger) Printf(format string, args ...interface{}) {
	l.logger.Printf(format, args...)
}

// Writer returns the underlying destination
func (l *Logger) Writer() io.Writer {
	return l.logger.Writer()
}

// Close closes the log file if one is open
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *Logger) logf(level, format string, args ...interface{}) {
	l.logger.Printf("["+level+"] "+format, args...)
}
