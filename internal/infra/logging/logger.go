// Package logging provides file-based logging for autocrew.
// It outputs logs to both a global log file (.autocrew/logs/autocrew.log)
// and task-specific log files (.autocrew/logs/task-<slug>.log).
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/runoshun/autocrew/internal/domain"
)

// Ensure Logger implements domain.Logger interface.
var _ domain.Logger = (*Logger)(nil)

// Logger writes formatted entries to log files and optionally mirrors them
// to a slog.Handler.
// Fields are ordered to minimize memory padding.
type Logger struct {
	globalFile *os.File
	taskFiles  map[string]*os.File
	mirror     slog.Handler
	clock      domain.Clock
	configDir  string
	mu         sync.Mutex
	level      slog.Level
}

// New creates a new Logger that writes to the autocrew log directory.
// If configDir is empty, file logging is disabled.
func New(configDir string, level slog.Level) *Logger {
	return &Logger{
		configDir: configDir,
		level:     level,
		clock:     domain.RealClock{},
		taskFiles: make(map[string]*os.File),
	}
}

// WithMirror also sends every entry at or above the logger's level to h.
func (l *Logger) WithMirror(h slog.Handler) *Logger {
	l.mirror = h
	return l
}

// WithClock replaces the time source used for entry timestamps.
func (l *Logger) WithClock(c domain.Clock) *Logger {
	l.clock = c
	return l
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) slog.Level {
	normalized, err := domain.ParseLogLevel(levelStr)
	if err != nil {
		return slog.LevelInfo
	}
	switch normalized {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) openFile(path string) (*os.File, error) {
	if err := os.MkdirAll(domain.LogsDir(l.configDir), 0o750); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	// G302: Log files are append-only and need read access by repository users
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// writers returns the files an entry for taskID goes to. Caller holds l.mu.
func (l *Logger) writers(taskID string) []io.Writer {
	var out []io.Writer
	if l.globalFile == nil {
		if f, err := l.openFile(domain.GlobalLogPath(l.configDir)); err == nil {
			l.globalFile = f
		}
	}
	if l.globalFile != nil {
		out = append(out, l.globalFile)
	}
	if taskID == "" {
		return out
	}
	f, ok := l.taskFiles[taskID]
	if !ok {
		var err error
		if f, err = l.openFile(domain.TaskLogPath(l.configDir, taskID)); err != nil {
			return out
		}
		l.taskFiles[taskID] = f
	}
	return append(out, f)
}

// Close closes all open log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lastErr error
	if l.globalFile != nil {
		if err := l.globalFile.Close(); err != nil {
			lastErr = err
		}
		l.globalFile = nil
	}
	for id, f := range l.taskFiles {
		if err := f.Close(); err != nil {
			lastErr = err
		}
		delete(l.taskFiles, id)
	}
	return lastErr
}

// formatLog formats a log entry.
// Format: [2025-12-30 09:32:51] [INFO] [task-add-login] [run] message
func formatLog(t time.Time, level slog.Level, taskID, category, msg string) string {
	taskStr := "global"
	if taskID != "" {
		taskStr = "task-" + taskID
	}
	return fmt.Sprintf("[%s] [%s] [%s] [%s] %s\n",
		t.Format("2006-01-02 15:04:05"),
		levelToString(level),
		taskStr,
		category,
		msg,
	)
}

func levelToString(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// log writes an entry to the global log and, when taskID is set, the task log.
func (l *Logger) log(level slog.Level, taskID, category, msg string) {
	if level < l.level {
		return
	}
	now := l.clock.Now()

	if l.mirror != nil && l.mirror.Enabled(context.Background(), level) {
		rec := slog.NewRecord(now, level, msg, 0)
		rec.AddAttrs(slog.String("category", category))
		if taskID != "" {
			rec.AddAttrs(slog.String("task", taskID))
		}
		_ = l.mirror.Handle(context.Background(), rec)
	}

	if l.configDir == "" {
		return
	}

	entry := formatLog(now, level, taskID, category, msg)
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, w := range l.writers(taskID) {
		_, _ = io.WriteString(w, entry)
	}
}

// Info logs an info message.
func (l *Logger) Info(taskID, category, msg string) {
	l.log(slog.LevelInfo, taskID, category, msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(taskID, category, msg string) {
	l.log(slog.LevelDebug, taskID, category, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(taskID, category, msg string) {
	l.log(slog.LevelWarn, taskID, category, msg)
}

// Error logs an error message.
func (l *Logger) Error(taskID, category, msg string) {
	l.log(slog.LevelError, taskID, category, msg)
}
