// Package capability decides, once per operand type, how an
// assertion operand is stored and how it is shown in a failure
// report.
//
// Every type gets exactly one of four strategies. ByValue strategies
// keep the operand in its slot directly; ByRef strategies keep one
// addressed copy and compare through the pointer. Printable
// strategies render the value; Opaque strategies render a
// placeholder naming the type and the storage address. ByRefOpaque
// is valid for every type.
package capability

import "strings"

// Profile is the set of capabilities probed for a type.
type Profile uint8

const (
	// Printable is set when the type has a debug rendering.
	Printable Profile = 1 << iota
	// PlainlySized is set when the type may be copied freely, which
	// in Go means it holds no lock.
	PlainlySized
	// FitsInWord is set when the type's size and alignment do not
	// exceed a uintptr.
	FitsInWord
)

// Has reports whether every bit of flags is set in p.
func (p Profile) Has(flags Profile) bool {
	return p&flags == flags
}

// String lists the set bits, or "none".
func (p Profile) String() string {
	var parts []string
	if p.Has(Printable) {
		parts = append(parts, "printable")
	}
	if p.Has(PlainlySized) {
		parts = append(parts, "plainly-sized")
	}
	if p.Has(FitsInWord) {
		parts = append(parts, "fits-in-word")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Strategy is the storage and rendering strategy of an operand.
type Strategy int

const (
	ByValuePrintable Strategy = iota
	ByValueOpaque
	ByRefPrintable
	ByRefOpaque
)

// Select maps a profile to its strategy. It is total.
func Select(p Profile) Strategy {
	byValue := p.Has(PlainlySized | FitsInWord)
	switch {
	case byValue && p.Has(Printable):
		return ByValuePrintable
	case byValue:
		return ByValueOpaque
	case p.Has(Printable):
		return ByRefPrintable
	default:
		return ByRefOpaque
	}
}

// ByValue reports whether operands are stored directly in the slot.
func (s Strategy) ByValue() bool {
	return s == ByValuePrintable || s == ByValueOpaque
}

// Printable reports whether operands render as values.
func (s Strategy) Printable() bool {
	return s == ByValuePrintable || s == ByRefPrintable
}

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case ByValuePrintable:
		return "by-value/printable"
	case ByValueOpaque:
		return "by-value/opaque"
	case ByRefPrintable:
		return "by-ref/printable"
	case ByRefOpaque:
		return "by-ref/opaque"
	default:
		return "unknown"
	}
}
