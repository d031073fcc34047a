package render

import (
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/cases"

	"digital.vasic.equate/pkg/assertion"
	"digital.vasic.equate/pkg/capability"
	"digital.vasic.equate/pkg/parser"
)

// Redacted replaces the value of a redacted operand.
const Redacted = "[redacted]"

// Options configures a Renderer.
type Options struct {
	// Color enables ANSI colour.
	Color bool

	// Style is the rendering style of printable values.
	Style capability.Style

	// MaxWidth truncates each rendered value line to this display
	// width. Zero disables truncation.
	MaxWidth int

	// Redact lists identifiers whose values are never shown. A
	// leaf matches when its text, or its last selector, equals an
	// entry ignoring case.
	Redact []string

	// Diff appends a unified diff to failed == comparisons of
	// multi-line values.
	Diff bool
}

// Renderer turns messages into report text. It is safe for
// concurrent use.
type Renderer struct {
	opts    Options
	redact  map[string]bool
	failure *color.Color
	header  *color.Color
	source  *color.Color
}

// New creates a Renderer.
func New(opts Options) *Renderer {
	r := &Renderer{
		opts:    opts,
		redact:  make(map[string]bool, len(opts.Redact)),
		failure: color.New(color.FgRed, color.Bold),
		header:  color.New(color.FgYellow),
		source:  color.New(color.Bold),
	}
	for _, name := range opts.Redact {
		r.redact[fold(name)] = true
	}
	for _, c := range []*color.Color{r.failure, r.header, r.source} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Render produces the full report:
//
//	Assertion failed at <file>:<line>:<col>
//	[<user message>]
//	<explanation>
func (r *Renderer) Render(m *Message) string {
	var sb strings.Builder
	sb.WriteString(r.failure.Sprint("Assertion failed at " + m.Location.String()))
	sb.WriteString("\n")
	if m.Text != "" {
		sb.WriteString(m.Text)
		sb.WriteString("\n")
	}
	sb.WriteString(r.Explain(m))
	return sb.String()
}

// Explain renders the structural explanation alone.
func (r *Renderer) Explain(m *Message) string {
	return r.node(m.Result, m.Source, m.Dispatch, m.Values)
}

func (r *Renderer) node(
	res *assertion.Tree[bool],
	src *assertion.Tree[assertion.Source],
	dsp *assertion.Tree[assertion.Dispatch],
	val *assertion.Tree[assertion.Values],
) string {
	switch res.Kind {
	case parser.KindAnd:
		var parts []string
		if !res.Left.Value {
			parts = append(parts, r.node(res.Left, src.Left, dsp.Left, val.Left))
		}
		if !res.Right.Value {
			parts = append(parts, r.node(res.Right, src.Right, dsp.Right, val.Right))
		}
		return strings.Join(parts, "\n")

	case parser.KindOr:
		if res.Left.Value || res.Right.Value {
			return ""
		}
		return r.node(res.Left, src.Left, dsp.Left, val.Left) + "\n" +
			r.node(res.Right, src.Right, dsp.Right, val.Right)

	case parser.KindBool:
		return r.line(src.Value.Text, dsp.Value.Value, val.Value.Value)

	default:
		s, d, v := src.Value, dsp.Value, val.Value
		lines := []string{
			r.header.Sprint(d.Comparator.Render(s.LHS, s.RHS)),
			r.line(s.LHS, d.LHS, v.LHS),
			r.line(s.RHS, d.RHS, v.RHS),
		}
		if diff := r.diff(res.Kind, s, d, v); diff != "" {
			lines = append(lines, diff)
		}
		return strings.Join(lines, "\n")
	}
}

// line renders "- <source> = <value>".
func (r *Renderer) line(
	source string,
	entry *capability.Entry,
	slot *capability.Slot,
) string {
	return "- " + r.source.Sprint(source) + " = " + r.value(source, entry, slot)
}

func (r *Renderer) value(
	source string,
	entry *capability.Entry,
	slot *capability.Slot,
) string {
	if r.redacted(source) {
		return Redacted
	}

	lines := strings.Split(entry.Render(slot, r.opts.Style), "\n")
	for i, l := range lines {
		if r.opts.MaxWidth > 0 {
			l = runewidth.Truncate(l, r.opts.MaxWidth, "…")
		}
		if i > 0 {
			l = "  " + l
		}
		lines[i] = l
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) redacted(source string) bool {
	if len(r.redact) == 0 {
		return false
	}
	name := fold(source)
	if r.redact[name] {
		return true
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return r.redact[name[i+1:]]
	}
	return false
}

// fold case-folds an identifier for redaction matching.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// diff returns a unified diff of the two sides of a failed equality
// whose values span several lines.
func (r *Renderer) diff(
	kind parser.Kind,
	s assertion.Source,
	d assertion.Dispatch,
	v assertion.Values,
) string {
	if !r.opts.Diff || kind != parser.KindCmp {
		return ""
	}
	rel, ok := d.Comparator.(assertion.Relational)
	if !ok || rel.Op != parser.OpEq {
		return ""
	}
	if r.redacted(s.LHS) || r.redacted(s.RHS) {
		return ""
	}
	if !d.LHS.Strategy.Printable() || !d.RHS.Strategy.Printable() {
		return ""
	}

	a := d.LHS.Render(v.LHS, r.opts.Style)
	b := d.RHS.Render(v.RHS, r.opts.Style)
	if !strings.Contains(a, "\n") && !strings.Contains(b, "\n") {
		return ""
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a + "\n"),
		B:        difflib.SplitLines(b + "\n"),
		FromFile: s.LHS,
		ToFile:   s.RHS,
		Context:  1,
	})
	if err != nil || text == "" {
		return ""
	}
	return "diff:\n" + strings.TrimRight(text, "\n")
}
