// Package assertion compiles assertion expressions into programs,
// binds programs to operands and evaluates the resulting
// expressions. It also hosts the comparator registry used by the
// :name: and ~ forms.
package assertion

import (
	"fmt"
	"math"
)

// Comparator is a binary predicate with its own failure header.
// Render receives the source text of both operands.
type Comparator interface {
	Test(lhs, rhs any) bool
	Render(lhs, rhs string) string
}

// Func adapts a predicate to a Comparator. Header is a format string
// receiving the lhs and rhs source text, such as "%s contains %s".
type Func struct {
	Predicate func(lhs, rhs any) bool
	Header    string
}

// Test calls the predicate.
func (f Func) Test(lhs, rhs any) bool {
	return f.Predicate(lhs, rhs)
}

// Render formats the header.
func (f Func) Render(lhs, rhs string) string {
	return fmt.Sprintf(f.Header, lhs, rhs)
}

// ApproxEq holds when two numbers differ by at most Abs, or by at
// most Rel times the larger magnitude.
type ApproxEq struct {
	Abs float64
	Rel float64
}

// DefaultApproxEq is the comparator the ~ form uses unless the
// registry entry for approx_eq is replaced.
var DefaultApproxEq = ApproxEq{Abs: 1e-9}

// Test compares lhs and rhs numerically. Non-numeric operands never
// compare equal.
func (a ApproxEq) Test(lhs, rhs any) bool {
	l, ok := toFloat64(lhs)
	if !ok {
		return false
	}
	r, ok := toFloat64(rhs)
	if !ok {
		return false
	}
	if l == r {
		return true
	}

	diff := math.Abs(l - r)
	if diff <= a.Abs {
		return true
	}
	scale := math.Max(math.Abs(l), math.Abs(r))
	return a.Rel > 0 && diff <= a.Rel*scale
}

// Render returns the header, for example
// "0.1 ~ 0.2, with absolute tolerance 1.0e-02".
func (a ApproxEq) Render(lhs, rhs string) string {
	header := fmt.Sprintf(
		"%s ~ %s, with absolute tolerance %.1e", lhs, rhs, a.Abs,
	)
	if a.Rel > 0 {
		header += fmt.Sprintf(" and relative tolerance %.1e", a.Rel)
	}
	return header
}
