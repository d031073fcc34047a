package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Summary aggregates a failure history per call site.
type Summary struct {
	ID            string        `json:"id"`
	GeneratedAt   time.Time     `json:"generated_at"`
	Sites         []SiteSummary `json:"sites"`
	TotalFailures int           `json:"total_failures"`
	FirstFailure  time.Time     `json:"first_failure"`
	LastFailure   time.Time     `json:"last_failure"`
}

// SiteSummary summarizes the failures of one assertion.
type SiteSummary struct {
	Location   string    `json:"location"`
	Expression string    `json:"expression"`
	Failures   int       `json:"failures"`
	FirstSeen  time.Time `json:"first_seen"`
	LastSeen   time.Time `json:"last_seen"`
	LastReport string    `json:"last_report"`
}

// BuildSummary creates a summary of history entries. Sites are
// ordered by failure count, then by location.
func BuildSummary(entries []HistoricalEntry) *Summary {
	now := time.Now()
	summary := &Summary{
		ID: fmt.Sprintf(
			"summary_%s",
			now.Format("20060102_150405"),
		),
		GeneratedAt: now,
	}

	sites := make(map[string]*SiteSummary)
	for _, e := range entries {
		loc := e.Location.String()
		key := loc + "\x00" + e.Expression
		s, ok := sites[key]
		if !ok {
			s = &SiteSummary{
				Location:   loc,
				Expression: e.Expression,
				FirstSeen:  e.Timestamp,
			}
			sites[key] = s
		}
		s.Failures++
		if e.Timestamp.Before(s.FirstSeen) {
			s.FirstSeen = e.Timestamp
		}
		if !e.Timestamp.Before(s.LastSeen) {
			s.LastSeen = e.Timestamp
			s.LastReport = e.Report
		}

		summary.TotalFailures++
		if summary.FirstFailure.IsZero() ||
			e.Timestamp.Before(summary.FirstFailure) {
			summary.FirstFailure = e.Timestamp
		}
		if e.Timestamp.After(summary.LastFailure) {
			summary.LastFailure = e.Timestamp
		}
	}

	summary.Sites = make([]SiteSummary, 0, len(sites))
	for _, s := range sites {
		summary.Sites = append(summary.Sites, *s)
	}
	sort.Slice(summary.Sites, func(i, j int) bool {
		a, b := summary.Sites[i], summary.Sites[j]
		if a.Failures != b.Failures {
			return a.Failures > b.Failures
		}
		if a.Location != b.Location {
			return a.Location < b.Location
		}
		return a.Expression < b.Expression
	})
	return summary
}

// SaveSummary saves the summary to both JSON and Markdown files in
// the given output directory, and points latest_summary.* at them.
func SaveSummary(summary *Summary, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf(
			"failed to create output directory: %w", err,
		)
	}

	ts := summary.GeneratedAt.Format("20060102_150405")

	jsonPath := filepath.Join(
		outputDir,
		fmt.Sprintf("failure_summary_%s.json", ts),
	)
	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf(
			"failed to marshal summary: %w", err,
		)
	}
	if err := os.WriteFile(jsonPath, jsonData, 0644); err != nil {
		return fmt.Errorf(
			"failed to write JSON summary: %w", err,
		)
	}

	mdPath := filepath.Join(
		outputDir,
		fmt.Sprintf("failure_summary_%s.md", ts),
	)
	if err := os.WriteFile(
		mdPath, []byte(summaryMarkdown(summary)), 0644,
	); err != nil {
		return fmt.Errorf(
			"failed to write Markdown summary: %w", err,
		)
	}

	latestJSON := filepath.Join(outputDir, "latest_summary.json")
	latestMD := filepath.Join(outputDir, "latest_summary.md")

	_ = os.Remove(latestJSON)
	_ = os.Remove(latestMD)
	_ = os.Symlink(filepath.Base(jsonPath), latestJSON)
	_ = os.Symlink(filepath.Base(mdPath), latestMD)

	return nil
}
