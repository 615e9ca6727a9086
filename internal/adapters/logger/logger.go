// Package logger implements a logging adapter using log/slog.
package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"go.trai.ch/pulse/internal/core/ports"
)

// messager describes an error that can report its own message without the chain.
// zerr errors implement it.
type messager interface {
	Message() string
}

// sink is the handler state shared by a logger and every logger derived with With.
type sink struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	jsonMode bool
	output   io.Writer
	level    slog.LevelVar
}

// Logger implements ports.Logger using log/slog.
type Logger struct {
	sink  *sink
	attrs []any
}

// New creates a new Logger writing pretty records to stderr.
func New() ports.Logger {
	s := &sink{output: os.Stderr}
	s.level.Set(slog.LevelInfo)
	s.rebuild()
	return &Logger{sink: s}
}

// rebuild replaces the handler. Callers hold mu or own s exclusively.
func (s *sink) rebuild() {
	w := s.output
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: &s.level}
	if s.jsonMode {
		s.logger = slog.New(slog.NewJSONHandler(w, opts))
		return
	}
	s.logger = slog.New(NewPrettyHandler(w, opts))
}

// SetOutput updates the output destination, keeping the JSON mode.
// If w is nil, os.Stderr is used.
func (l *Logger) SetOutput(w io.Writer) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	l.sink.output = w
	l.sink.rebuild()
}

// SetJSON switches between JSON and pretty records, keeping the output destination.
func (l *Logger) SetJSON(enable bool) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.jsonMode = enable
	l.sink.rebuild()
}

// SetVerbose enables debug records.
func (l *Logger) SetVerbose(enable bool) {
	if enable {
		l.sink.level.Set(slog.LevelDebug)
		return
	}
	l.sink.level.Set(slog.LevelInfo)
}

// With returns a logger that adds args to every record.
func (l *Logger) With(args ...any) ports.Logger {
	attrs := make([]any, 0, len(l.attrs)+len(args))
	attrs = append(attrs, l.attrs...)
	attrs = append(attrs, args...)
	return &Logger{sink: l.sink, attrs: attrs}
}

func (l *Logger) log(level slog.Level, msg string, args ...any) {
	l.sink.mu.RLock()
	defer l.sink.mu.RUnlock()
	if len(l.attrs) > 0 {
		args = append(append([]any{}, l.attrs...), args...)
	}
	l.sink.logger.Log(context.Background(), level, msg, args...)
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string) {
	l.log(slog.LevelDebug, msg)
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.log(slog.LevelInfo, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.log(slog.LevelWarn, msg)
}

// Error logs an error. In pretty mode the zerr chain is printed one cause per line.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}

	l.sink.mu.RLock()
	jsonMode := l.sink.jsonMode
	l.sink.mu.RUnlock()
	if jsonMode {
		l.log(slog.LevelError, "operation failed", "error", err)
		return
	}
	l.log(slog.LevelError, formatErrorEntries(collectErrorEntries(err)))
}

// collectErrorEntries walks the error chain, taking the bare message of every zerr
// error and the full text of the first foreign error.
func collectErrorEntries(err error) []string {
	var messages []string
	for current := err; current != nil; {
		m, ok := current.(messager)
		if !ok {
			messages = append(messages, current.Error())
			break
		}
		messages = append(messages, m.Message())
		current = errors.Unwrap(current)
	}
	return messages
}

// formatErrorEntries renders the head error followed by an indented cause list.
func formatErrorEntries(messages []string) string {
	var lines []string
	for i, msg := range messages {
		parts := strings.Split(msg, "\n")
		switch i {
		case 0:
			lines = append(lines, "Error: "+parts[0])
			for _, line := range parts[1:] {
				lines = append(lines, "       "+line)
			}
			continue
		case 1:
			lines = append(lines, "", "  Caused by:")
		}
		lines = append(lines, "    → "+parts[0])
		for _, line := range parts[1:] {
			lines = append(lines, "      "+line)
		}
	}
	return strings.Join(lines, "\n")
}
