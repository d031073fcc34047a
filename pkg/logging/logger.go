// Package logging provides structured logging for assertion
// engines with JSON, console, and multi-destination output.
package logging

import (
	"fmt"
	"strings"
)

// Logger is the structured logger of an engine. Implementations
// are safe for concurrent use.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithFields returns a child that attaches fields to every
	// entry. The parent is unchanged.
	WithFields(fields ...Field) Logger

	// LogFailure records one failed assertion.
	LogFailure(failure FailureLog)

	// Close releases the files the logger owns.
	Close() error
}

// Field is one key/value pair of a log entry.
type Field struct {
	Key   string
	Value any
}

// FailureLog captures one failed assertion.
type FailureLog struct {
	Timestamp  string `json:"timestamp"`
	File       string `json:"file"`
	Line       int    `json:"line"`
	Col        int    `json:"col"`
	Expression string `json:"expression"`
	Message    string `json:"message,omitempty"`
	Report     string `json:"report"`
}

// Fields returns the location and expression of the failure as
// log fields.
func (f FailureLog) Fields() []Field {
	return []Field{
		StringField("file", f.File),
		IntField("line", f.Line),
		IntField("col", f.Col),
		StringField("expression", f.Expression),
	}
}

// LogLevel orders log entries by severity. Entries below a
// logger's level are dropped.
type LogLevel int

// Levels, least severe first. LevelInfo is the default.
const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the upper-case level name.
func (l LogLevel) String() string {
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

// ParseLevel parses a level name, ignoring case.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, nil
	case "", "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}
