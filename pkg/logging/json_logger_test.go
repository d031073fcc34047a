package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readLines decodes every JSON line of path into a T.
func readLines[T any](t *testing.T, path string) []T {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []T
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var v T
		require.NoError(t, json.Unmarshal(sc.Bytes(), &v), sc.Text())
		out = append(out, v)
	}
	require.NoError(t, sc.Err())
	return out
}

func newFileLogger(t *testing.T, config LoggerConfig) (*JSONLogger, string) {
	t.Helper()
	config.OutputPath = filepath.Join(t.TempDir(), "logs", "equate.log")
	l, err := NewJSONLogger(config)
	require.NoError(t, err)
	return l, config.OutputPath
}

func TestJSONLogger_Stdout(t *testing.T) {
	l, err := NewJSONLogger(LoggerConfig{})
	require.NoError(t, err)
	assert.Same(t, os.Stdout, l.sink.main)
	assert.NoError(t, l.Close())
}

func TestJSONLogger_Levels(t *testing.T) {
	tests := []struct {
		name    string
		level   LogLevel
		verbose bool
		want    []string
	}{
		{"info", LevelInfo, false, []string{"INFO", "WARN", "ERROR"}},
		{"debug needs verbose", LevelDebug, false, []string{"INFO", "WARN", "ERROR"}},
		{"verbose debug", LevelDebug, true, []string{"DEBUG", "INFO", "WARN", "ERROR"}},
		{"warn", LevelWarn, true, []string{"WARN", "ERROR"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, path := newFileLogger(t, LoggerConfig{Level: tt.level, Verbose: tt.verbose})
			l.Debug("d")
			l.Info("i")
			l.Warn("w")
			l.Error("e")
			require.NoError(t, l.Close())

			var got []string
			for _, e := range readLines[LogEntry](t, path) {
				got = append(got, e.Level)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONLogger_Fields(t *testing.T) {
	l, path := newFileLogger(t, LoggerConfig{Fields: map[string]any{"engine": "default"}})

	l.Info("plain")
	l.WithFields(StringField("expression", "x == y")).Info("compiled", IntField("operands", 2))
	require.NoError(t, l.Close())

	entries := readLines[LogEntry](t, path)
	require.Len(t, entries, 2)
	assert.Equal(t, map[string]any{"engine": "default"}, entries[0].Fields)
	assert.Equal(t, "compiled", entries[1].Message)
	assert.Equal(t, map[string]any{
		"engine":     "default",
		"expression": "x == y",
		"operands":   float64(2),
	}, entries[1].Fields)
}

func TestJSONLogger_LogFailure(t *testing.T) {
	dir := t.TempDir()
	l, err := NewJSONLogger(LoggerConfig{
		OutputPath: filepath.Join(dir, "equate.log"),
		FailureLog: filepath.Join(dir, "failures.log"),
	})
	require.NoError(t, err)

	l.LogFailure(FailureLog{
		File:       "calc_test.go",
		Line:       12,
		Col:        2,
		Expression: "3 == 4",
		Report:     "3 == 4\n- 3 = 3\n- 4 = 4",
	})
	require.NoError(t, l.Close())

	failures := readLines[FailureLog](t, filepath.Join(dir, "failures.log"))
	require.Len(t, failures, 1)
	assert.Equal(t, "3 == 4", failures[0].Expression)
	assert.Equal(t, 12, failures[0].Line)
	assert.NotEmpty(t, failures[0].Timestamp)
	assert.Contains(t, failures[0].Report, "- 4 = 4")

	entries := readLines[LogEntry](t, filepath.Join(dir, "equate.log"))
	require.Len(t, entries, 1)
	assert.Equal(t, "ERROR", entries[0].Level)
	assert.Equal(t, "assertion failed", entries[0].Message)
	assert.Equal(t, "calc_test.go", entries[0].Fields["file"])
}

func TestJSONLogger_WritesAfterCloseAreDropped(t *testing.T) {
	l, path := newFileLogger(t, LoggerConfig{})
	child := l.WithFields(StringField("k", "v"))

	require.NoError(t, l.Close())
	l.Info("after close")
	child.Info("child after close")
	child.LogFailure(FailureLog{})
	assert.NoError(t, child.Close())

	assert.Empty(t, readLines[LogEntry](t, path))
}

func TestJSONLogger_OpenErrors(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := NewJSONLogger(LoggerConfig{OutputPath: filepath.Join(blocker, "x.log")})
	assert.ErrorContains(t, err, "open log")

	_, err = NewJSONLogger(LoggerConfig{
		OutputPath: filepath.Join(dir, "ok.log"),
		FailureLog: filepath.Join(blocker, "f.log"),
	})
	assert.ErrorContains(t, err, "open failure log")
}

func TestSetupLogging(t *testing.T) {
	dir := t.TempDir()
	l, err := SetupLogging(dir, true)
	require.NoError(t, err)
	assert.Equal(t, LevelDebug, l.level)

	l.Debug("setup")
	require.NoError(t, l.Close())

	for _, name := range []string{"equate.log", "failures.log"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	assert.Len(t, readLines[LogEntry](t, filepath.Join(dir, "equate.log")), 1)
}
