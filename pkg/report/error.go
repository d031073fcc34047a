// Package report raises failed assertions. A failure is rendered
// once, passed to every observer, and raised exactly once through
// a Sink.
package report

import (
	"errors"
	"time"

	"digital.vasic.equate/pkg/assertion"
	"digital.vasic.equate/pkg/render"
)

// ErrAssertionFailed is the sentinel error of failed assertions.
var ErrAssertionFailed = errors.New("assertion failed")

// AssertionError is a failed assertion with its rendered report.
type AssertionError struct {
	Location   render.Location
	Expression string
	Message    string
	Report     string
	Time       time.Time
}

// NewAssertionError renders the failed expression x at loc.
func NewAssertionError(
	r *render.Renderer,
	x *assertion.Expr,
	loc render.Location,
) *AssertionError {
	m := render.NewMessage(x, loc)
	return &AssertionError{
		Location:   loc,
		Expression: x.Program().Source(),
		Message:    m.Text,
		Report:     r.Render(m),
		Time:       time.Now(),
	}
}

// Error returns the rendered report.
func (e *AssertionError) Error() string {
	if e == nil {
		return ErrAssertionFailed.Error()
	}
	if e.Report == "" {
		return "assertion failed at " + e.Location.String() + ": " + e.Expression
	}
	return e.Report
}

// Unwrap returns ErrAssertionFailed for errors.Is.
func (e *AssertionError) Unwrap() error {
	return ErrAssertionFailed
}
