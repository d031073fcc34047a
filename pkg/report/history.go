package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"digital.vasic.equate/pkg/render"
)

// maxHistoryLine bounds one history line; reports of large values
// can exceed bufio's default.
const maxHistoryLine = 4 << 20

// HistoricalEntry is a single failure in the history log.
type HistoricalEntry struct {
	Timestamp  time.Time       `json:"timestamp"`
	Location   render.Location `json:"location"`
	Expression string          `json:"expression"`
	Message    string          `json:"message,omitempty"`
	Report     string          `json:"report"`
}

// AppendToHistory adds a failure to the history log stored at
// historyPath. Each entry is a single JSON line.
func AppendToHistory(historyPath string, failure *AssertionError) error {
	entry := HistoricalEntry{
		Timestamp:  failure.Time,
		Location:   failure.Location,
		Expression: failure.Expression,
		Message:    failure.Message,
		Report:     failure.Report,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf(
			"failed to marshal history entry: %w", err,
		)
	}

	if err := os.MkdirAll(filepath.Dir(historyPath), 0755); err != nil {
		return fmt.Errorf(
			"failed to create history directory: %w", err,
		)
	}
	file, err := os.OpenFile(
		historyPath,
		os.O_CREATE|os.O_APPEND|os.O_WRONLY,
		0644,
	)
	if err != nil {
		return fmt.Errorf(
			"failed to open history file: %w", err,
		)
	}
	defer func() { _ = file.Close() }()

	_, err = fmt.Fprintln(file, string(data))
	return err
}

// ReadHistory reads every entry of the history log. A missing file
// is an empty history.
func ReadHistory(historyPath string) ([]HistoricalEntry, error) {
	file, err := os.Open(historyPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf(
			"failed to open history file: %w", err,
		)
	}
	defer func() { _ = file.Close() }()

	var entries []HistoricalEntry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxHistoryLine)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var entry HistoricalEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return nil, fmt.Errorf(
				"history line %d: %w", line, err,
			)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf(
			"failed to read history file: %w", err,
		)
	}
	return entries, nil
}
