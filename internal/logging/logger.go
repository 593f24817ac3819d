// Package logging writes application logs to per-level files inside a
// configured directory: info.log, warning.log, error.log and debug.log.
// Each file is handled by its own slog logger so the standard structured
// format and levels are kept while the file layout stays predictable for
// operators tailing a single severity.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Logger fans log records out to one file per severity.
type Logger struct {
	info  *slog.Logger
	warn  *slog.Logger
	err   *slog.Logger
	debug *slog.Logger
}

// New creates the log directory if needed and opens the per-level files in
// append mode.  The files stay open for the process lifetime.
func New(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	open := func(name string, level slog.Level) (*slog.Logger, error) {
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), nil
	}
	info, err := open("info.log", slog.LevelInfo)
	if err != nil {
		return nil, err
	}
	warn, err := open("warning.log", slog.LevelWarn)
	if err != nil {
		return nil, err
	}
	errl, err := open("error.log", slog.LevelError)
	if err != nil {
		return nil, err
	}
	debug, err := open("debug.log", slog.LevelDebug)
	if err != nil {
		return nil, err
	}
	return &Logger{info: info, warn: warn, err: errl, debug: debug}, nil
}

// Discard returns a logger that drops everything.  Used in tests.
func Discard() *Logger {
	l := slog.New(slog.DiscardHandler)
	return &Logger{info: l, warn: l, err: l, debug: l}
}

func (l *Logger) Info(msg string, args ...any)  { l.info.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.warn.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.err.Error(msg, args...) }
func (l *Logger) Debug(msg string, args ...any) { l.debug.Debug(msg, args...) }
