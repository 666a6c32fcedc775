package logx

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"time"
)

// ============================================================================
// Levels
// ============================================================================

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
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
	default:
		return "ERROR"
	}
}

var (
	mu       sync.Mutex
	minLevel = LevelInfo
	out      = os.Stdout
)

// SetLevel sets the minimum level that gets written
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = l
}

// ============================================================================
// Fields
// ============================================================================

// Fields is structured context attached to a log line
type Fields map[string]any

// Entry carries fields into the final log call
type Entry struct {
	fields Fields
}

// WithFields returns an entry that logs with the given fields
func WithFields(fields Fields) *Entry {
	return &Entry{fields: fields}
}

func (e *Entry) Debug(msg string)                  { write(LevelDebug, msg, e.fields) }
func (e *Entry) Info(msg string)                   { write(LevelInfo, msg, e.fields) }
func (e *Entry) Warn(msg string)                   { write(LevelWarn, msg, e.fields) }
func (e *Entry) Error(msg string)                  { write(LevelError, msg, e.fields) }
func (e *Entry) Debugf(format string, args ...any) { write(LevelDebug, fmt.Sprintf(format, args...), e.fields) }
func (e *Entry) Infof(format string, args ...any)  { write(LevelInfo, fmt.Sprintf(format, args...), e.fields) }
func (e *Entry) Warnf(format string, args ...any)  { write(LevelWarn, fmt.Sprintf(format, args...), e.fields) }
func (e *Entry) Errorf(format string, args ...any) { write(LevelError, fmt.Sprintf(format, args...), e.fields) }

// ============================================================================
// Package-level helpers
// ============================================================================

func Debug(msg string)                  { write(LevelDebug, msg, nil) }
func Info(msg string)                   { write(LevelInfo, msg, nil) }
func Warn(msg string)                   { write(LevelWarn, msg, nil) }
func Error(msg string)                  { write(LevelError, msg, nil) }
func Debugf(format string, args ...any) { write(LevelDebug, fmt.Sprintf(format, args...), nil) }
func Infof(format string, args ...any)  { write(LevelInfo, fmt.Sprintf(format, args...), nil) }
func Warnf(format string, args ...any)  { write(LevelWarn, fmt.Sprintf(format, args...), nil) }
func Errorf(format string, args ...any) { write(LevelError, fmt.Sprintf(format, args...), nil) }

// Fatalf logs at error level and exits the process
func Fatalf(format string, args ...any) {
	write(LevelError, fmt.Sprintf(format, args...), nil)
	os.Exit(1)
}

func write(l Level, msg string, fields Fields) {
	mu.Lock()
	defer mu.Unlock()

	if l < minLevel {
		return
	}

	line := fmt.Sprintf("%s | %-5s | %s", time.Now().Format("2006-01-02 15:04:05"), l, msg)

	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			line += fmt.Sprintf(" %s=%v", k, fields[k])
		}
	}

	fmt.Fprintln(out, line)
}
