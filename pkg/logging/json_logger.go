package logging

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LogEntry is one line of the main JSON log.
type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// LoggerConfig configures a JSONLogger.
type LoggerConfig struct {
	// OutputPath is the main log. Empty means stdout.
	OutputPath string

	// FailureLog receives one FailureLog record per line. Empty
	// disables it.
	FailureLog string

	Level   LogLevel
	Verbose bool
	Fields  map[string]any
}

// jsonSink is the state shared by a JSONLogger and its children.
type jsonSink struct {
	mu       sync.Mutex
	main     io.Writer
	failures io.Writer
	files    []*os.File
	closed   bool
}

// line encodes v as one JSON line on w. Records that cannot be
// encoded are dropped.
func (s *jsonSink) line(w io.Writer, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || w == nil {
		return
	}
	w.Write(data)
}

func (s *jsonSink) open(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	s.files = append(s.files, f)
	return f, nil
}

func (s *jsonSink) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for _, f := range s.files {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}

// JSONLogger writes JSON Lines. Failures additionally go to a
// dedicated failure log when one is configured.
type JSONLogger struct {
	sink    *jsonSink
	level   LogLevel
	verbose bool
	fields  fieldSet
}

// NewJSONLogger opens the configured logs. Parent directories
// are created as needed and existing files are appended to.
func NewJSONLogger(config LoggerConfig) (*JSONLogger, error) {
	sink := &jsonSink{main: os.Stdout}

	if config.OutputPath != "" {
		f, err := sink.open(config.OutputPath)
		if err != nil {
			return nil, fmt.Errorf("open log %s: %w", config.OutputPath, err)
		}
		sink.main = f
	}
	if config.FailureLog != "" {
		f, err := sink.open(config.FailureLog)
		if err != nil {
			sink.close()
			return nil, fmt.Errorf("open failure log %s: %w", config.FailureLog, err)
		}
		sink.failures = f
	}

	fields := fieldSet{}
	for k, v := range config.Fields {
		fields[k] = v
	}
	return &JSONLogger{
		sink:    sink,
		level:   config.Level,
		verbose: config.Verbose,
		fields:  fields,
	}, nil
}

func (l *JSONLogger) write(level LogLevel, msg string, fields []Field) {
	if level < l.level || (level == LevelDebug && !l.verbose) {
		return
	}
	entry := LogEntry{
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Level:     level.String(),
		Message:   msg,
	}
	if all := l.fields.with(fields...); len(all) > 0 {
		entry.Fields = all
	}
	l.sink.line(l.sink.main, entry)
}

// Info logs at info level.
func (l *JSONLogger) Info(msg string, fields ...Field) { l.write(LevelInfo, msg, fields) }

// Warn logs at warn level.
func (l *JSONLogger) Warn(msg string, fields ...Field) { l.write(LevelWarn, msg, fields) }

// Error logs at error level.
func (l *JSONLogger) Error(msg string, fields ...Field) { l.write(LevelError, msg, fields) }

// Debug logs at debug level when verbose.
func (l *JSONLogger) Debug(msg string, fields ...Field) { l.write(LevelDebug, msg, fields) }

// WithFields returns a child writing to the same files. Closing
// either closes both.
func (l *JSONLogger) WithFields(fields ...Field) Logger {
	child := *l
	child.fields = l.fields.with(fields...)
	return &child
}

// LogFailure logs an error line on the main log and the full
// record on the failure log.
func (l *JSONLogger) LogFailure(failure FailureLog) {
	if failure.Timestamp == "" {
		failure.Timestamp = time.Now().Format(time.RFC3339Nano)
	}
	l.write(LevelError, "assertion failed", failure.Fields())
	l.sink.line(l.sink.failures, failure)
}

// Close closes the log files. Later writes are dropped.
func (l *JSONLogger) Close() error {
	return l.sink.close()
}

// SetupLogging creates a JSON logger writing equate.log and
// failures.log under dir. Verbose also lowers the level to debug.
func SetupLogging(dir string, verbose bool) (*JSONLogger, error) {
	level := LevelInfo
	if verbose {
		level = LevelDebug
	}
	return NewJSONLogger(LoggerConfig{
		OutputPath: filepath.Join(dir, "equate.log"),
		FailureLog: filepath.Join(dir, "failures.log"),
		Level:      level,
		Verbose:    verbose,
	})
}
