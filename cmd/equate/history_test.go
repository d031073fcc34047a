package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.equate/pkg/render"
	"digital.vasic.equate/pkg/report"
)

func failure(file string, line int, expr string) *report.AssertionError {
	return &report.AssertionError{
		Location:   render.Location{File: file, Line: line, Col: 2},
		Expression: expr,
		Report:     "Assertion failed at " + file + "\n" + expr,
		Time:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func writeHistory(t *testing.T, failures ...*report.AssertionError) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.jsonl")
	for _, f := range failures {
		require.NoError(t, report.AppendToHistory(path, f))
	}
	return path
}

func TestHistory_JSON(t *testing.T) {
	path := writeHistory(t,
		failure("a_test.go", 3, "x == 1"),
		failure("a_test.go", 3, "x == 1"),
		failure("b_test.go", 9, "ok"),
	)

	out, err := execute(t, "history", "--file", path, "--format", "json")
	require.NoError(t, err)

	var summary report.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 3, summary.TotalFailures)
	require.Len(t, summary.Sites, 2)
	assert.Equal(t, "a_test.go:3:2", summary.Sites[0].Location)
	assert.Equal(t, 2, summary.Sites[0].Failures)
}

func TestHistory_Text(t *testing.T) {
	out, err := execute(t, "history", "--file", filepath.Join(t.TempDir(), "none.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, "no recorded failures\n", out)
}

func TestHistory_Save(t *testing.T) {
	path := writeHistory(t, failure("a_test.go", 3, "x == 1"))
	dir := t.TempDir()

	_, err := execute(t, "history", "--file", path, "--format", "markdown", "--save", dir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "latest_summary.json"))
	assert.NoError(t, err)
}

func TestHistory_Errors(t *testing.T) {
	_, err := execute(t, "history", "--file", "x.jsonl", "--format", "pdf")
	assert.ErrorContains(t, err, "unknown report format")

	t.Setenv("EQUATE_HISTORY", "")
	_, err = execute(t, "history")
	assert.ErrorContains(t, err, "no history file")
}

func TestHistoryArchive(t *testing.T) {
	dir := t.TempDir()
	archive, err := report.NewArchive(dir)
	require.NoError(t, err)
	require.NoError(t, archive.Put(report.NewArchiveRecord(failure("a_test.go", 3, "x == 1"))))

	out, err := execute(t, "history", "archive", "--dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01T12:00:00Z  a_test.go:3:2  x == 1\n", out)

	out, err = execute(t, "history", "archive", "--dir", dir, "--reports")
	require.NoError(t, err)
	assert.Contains(t, out, "Assertion failed at a_test.go")

	_, err = execute(t, "history", "archive", "--dir", dir, "--drop")
	require.NoError(t, err)

	out, err = execute(t, "history", "archive", "--dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "no archived failures\n", out)
}

func TestHistoryArchive_NotConfigured(t *testing.T) {
	t.Setenv("EQUATE_ARCHIVE", "")
	_, err := execute(t, "history", "archive")
	assert.ErrorContains(t, err, "no archive")
}
