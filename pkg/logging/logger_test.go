package logging

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// call is one method invocation seen by a recorder.
type call struct {
	Method string
	Msg    string
	Fields []Field
}

// recorder is a Logger that remembers what it was asked to do.
type recorder struct {
	mu       sync.Mutex
	calls    []call
	failures []FailureLog
	fields   []Field
	closeErr error
	closed   int
}

func (r *recorder) add(method, msg string, fields []Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{Method: method, Msg: msg, Fields: fields})
}

func (r *recorder) Info(msg string, fields ...Field)  { r.add("info", msg, fields) }
func (r *recorder) Warn(msg string, fields ...Field)  { r.add("warn", msg, fields) }
func (r *recorder) Error(msg string, fields ...Field) { r.add("error", msg, fields) }
func (r *recorder) Debug(msg string, fields ...Field) { r.add("debug", msg, fields) }

func (r *recorder) WithFields(fields ...Field) Logger {
	return &recorder{fields: append(append([]Field{}, r.fields...), fields...)}
}

func (r *recorder) LogFailure(failure FailureLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, failure)
}

func (r *recorder) Close() error {
	r.closed++
	return r.closeErr
}

var (
	_ Logger = (*recorder)(nil)
	_ Logger = NullLogger{}
	_ Logger = MultiLogger{}
	_ Logger = (*ConsoleLogger)(nil)
	_ Logger = (*JSONLogger)(nil)
	_ Logger = (*RedactingLogger)(nil)
)

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"", LevelInfo, false},
		{" Info ", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"ERROR", LevelError, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.ErrorContains(t, err, "unknown log level")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFieldConstructors(t *testing.T) {
	assert.Equal(t, Field{Key: "expr", Value: "a == b"}, StringField("expr", "a == b"))
	assert.Equal(t, Field{Key: "operands", Value: 2}, IntField("operands", 2))
	assert.Equal(t, Field{Key: "tol", Value: 0.5}, AnyField("tol", 0.5))
	assert.Equal(t, Field{Key: "error", Value: "boom"}, ErrorField(errors.New("boom")))
	assert.Equal(t, Field{Key: "error", Value: "<nil>"}, ErrorField(nil))
}

func TestFieldSet(t *testing.T) {
	base := fieldSet{"b": 2}
	child := base.with(AnyField("a", 1), AnyField("b", 3))

	assert.Equal(t, fieldSet{"b": 2}, base)
	assert.Equal(t, "a=1, b=3", child.format())
	assert.Empty(t, fieldSet(nil).format())
}

func TestFailureLog_Fields(t *testing.T) {
	f := FailureLog{File: "calc_test.go", Line: 12, Col: 2, Expression: "3 == 4"}
	assert.Equal(t, []Field{
		StringField("file", "calc_test.go"),
		IntField("line", 12),
		IntField("col", 2),
		StringField("expression", "3 == 4"),
	}, f.Fields())
}
