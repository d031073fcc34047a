package report

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"
	"time"
)

// Reporter writes a failure summary in one format.
type Reporter interface {
	Write(w io.Writer, summary *Summary) error
}

// NewReporter returns the reporter of a format: json, markdown (or
// md), html or text.
func NewReporter(format string) (Reporter, error) {
	switch strings.ToLower(format) {
	case "json":
		return JSONReporter{Pretty: true}, nil
	case "markdown", "md":
		return MarkdownReporter{}, nil
	case "html":
		return HTMLReporter{}, nil
	case "", "text":
		return TextReporter{}, nil
	default:
		return nil, fmt.Errorf("unknown report format: %s", format)
	}
}

// JSONReporter writes the summary as JSON.
type JSONReporter struct {
	Pretty bool
}

func (r JSONReporter) Write(w io.Writer, summary *Summary) error {
	enc := json.NewEncoder(w)
	if r.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(summary)
}

// MarkdownReporter writes the summary as a Markdown document.
type MarkdownReporter struct{}

func (MarkdownReporter) Write(w io.Writer, summary *Summary) error {
	_, err := io.WriteString(w, summaryMarkdown(summary))
	return err
}

func summaryMarkdown(summary *Summary) string {
	var sb strings.Builder

	sb.WriteString("# Assertion Failure Summary\n\n")
	fmt.Fprintf(&sb, "**Summary ID:** %s\n\n", summary.ID)
	fmt.Fprintf(&sb, "**Generated:** %s\n\n",
		summary.GeneratedAt.Format(time.RFC3339))

	sb.WriteString("## Overview\n\n")
	sb.WriteString("| Location | Expression | Failures | Last Seen |\n")
	sb.WriteString("|----------|------------|----------|-----------|\n")
	for _, s := range summary.Sites {
		fmt.Fprintf(&sb, "| %s | `%s` | %d | %s |\n",
			s.Location,
			strings.ReplaceAll(s.Expression, "|", `\|`),
			s.Failures,
			s.LastSeen.Format(time.RFC3339),
		)
	}

	sb.WriteString("\n## Statistics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	fmt.Fprintf(&sb, "| Failing Sites | %d |\n", len(summary.Sites))
	fmt.Fprintf(&sb, "| Total Failures | %d |\n", summary.TotalFailures)
	if summary.TotalFailures > 0 {
		fmt.Fprintf(&sb, "| First Failure | %s |\n",
			summary.FirstFailure.Format(time.RFC3339))
		fmt.Fprintf(&sb, "| Last Failure | %s |\n",
			summary.LastFailure.Format(time.RFC3339))
	}

	if len(summary.Sites) > 0 {
		sb.WriteString("\n## Latest Reports\n")
		for _, s := range summary.Sites {
			fmt.Fprintf(&sb, "\n### %s\n\n```\n%s\n```\n", s.Location, s.LastReport)
		}
	}

	return sb.String()
}

// TextReporter writes one line per site followed by its latest
// report.
type TextReporter struct{}

func (TextReporter) Write(w io.Writer, summary *Summary) error {
	if len(summary.Sites) == 0 {
		_, err := fmt.Fprintln(w, "no recorded failures")
		return err
	}
	for _, s := range summary.Sites {
		if _, err := fmt.Fprintf(w, "%s  %dx  %s\n", s.Location, s.Failures, s.Expression); err != nil {
			return err
		}
		for _, line := range strings.Split(s.LastReport, "\n") {
			if _, err := fmt.Fprintf(w, "    %s\n", line); err != nil {
				return err
			}
		}
	}
	return nil
}

// HTMLReporter writes the summary as a standalone HTML page.
type HTMLReporter struct{}

func (r HTMLReporter) Write(w io.Writer, summary *Summary) error {
	ew := &errWriter{w: w}
	r.writeHeader(ew, "Assertion Failure Summary")

	fmt.Fprintln(ew, "<h1>Assertion Failure Summary</h1>")
	fmt.Fprintf(ew,
		"<p><strong>Generated:</strong> %s</p>\n",
		summary.GeneratedAt.Format(time.RFC3339),
	)
	fmt.Fprintf(ew,
		"<p><strong>Total Failures:</strong> %d at %d sites</p>\n",
		summary.TotalFailures, len(summary.Sites),
	)

	fmt.Fprintln(ew, "<table>")
	fmt.Fprintln(ew,
		"<tr><th>Location</th><th>Expression</th>"+
			"<th>Failures</th><th>Last Seen</th></tr>",
	)
	for _, s := range summary.Sites {
		fmt.Fprintf(ew,
			"<tr><td>%s</td><td><code>%s</code></td>"+
				"<td class=\"status-failed\">%d</td>"+
				"<td>%s</td></tr>\n",
			html.EscapeString(s.Location),
			html.EscapeString(s.Expression),
			s.Failures,
			s.LastSeen.Format(time.RFC3339),
		)
	}
	fmt.Fprintln(ew, "</table>")

	for _, s := range summary.Sites {
		fmt.Fprintf(ew, "<h2>%s</h2>\n<pre>%s</pre>\n",
			html.EscapeString(s.Location),
			html.EscapeString(s.LastReport),
		)
	}

	fmt.Fprintln(ew, "</body>\n</html>")
	return ew.err
}

func (HTMLReporter) writeHeader(w io.Writer, title string) {
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>%s</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
pre { background: #f6f6f6; padding: 8px; }
.status-failed { color: #c00; font-weight: bold; }
</style>
</head>
<body>
`, html.EscapeString(title))
}

// errWriter keeps the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
