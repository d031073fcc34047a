package capability

import (
	"fmt"
	"reflect"
	"sync"
)

// Entry is the dispatch-table entry of one operand type. Entries are
// built once per type, shared process-wide and never mutated.
type Entry struct {
	Type     reflect.Type
	Profile  Profile
	Strategy Strategy

	ops *ops
}

// ops is the pair of functions a strategy dispatches to.
type ops struct {
	render func(e *Entry, s *Slot, style Style) string
	deref  func(s *Slot) reflect.Value
}

var table = [...]ops{
	ByValuePrintable: {
		render: func(_ *Entry, s *Slot, style Style) string {
			return Format(s.val, style)
		},
		deref: func(s *Slot) reflect.Value { return s.val },
	},
	ByValueOpaque: {
		render: func(e *Entry, s *Slot, _ Style) string {
			return Placeholder(e.Type, s.address())
		},
		deref: func(s *Slot) reflect.Value { return s.val },
	},
	ByRefPrintable: {
		render: func(_ *Entry, s *Slot, style Style) string {
			return Format(s.ref.Elem(), style)
		},
		deref: func(s *Slot) reflect.Value { return s.ref.Elem() },
	},
	ByRefOpaque: {
		render: func(e *Entry, s *Slot, _ Style) string {
			return Placeholder(e.Type, s.ref.Pointer())
		},
		deref: func(s *Slot) reflect.Value { return s.ref.Elem() },
	},
}

// Render renders the operand held by s, or its placeholder.
func (e *Entry) Render(s *Slot, style Style) string {
	return e.ops.render(e, s, style)
}

// Deref recovers the comparable value held by s.
func (e *Entry) Deref(s *Slot) reflect.Value {
	return e.ops.deref(s)
}

// String describes the entry.
func (e *Entry) String() string {
	return fmt.Sprintf("%s: %s (%s)", typeName(e.Type), e.Strategy, e.Profile)
}

var (
	entries sync.Map // reflect.Type -> *Entry

	nilEntry = &Entry{
		Profile:  Printable | PlainlySized | FitsInWord,
		Strategy: ByValuePrintable,
		ops:      &table[ByValuePrintable],
	}
)

// Lookup returns the entry for t, building it on first use. A nil
// type, the type of an untyped nil operand, has its own entry.
func Lookup(t reflect.Type) *Entry {
	if t == nil {
		return nilEntry
	}
	if e, ok := entries.Load(t); ok {
		return e.(*Entry)
	}

	profile := Probe(t)
	strategy := Select(profile)
	e, _ := entries.LoadOrStore(t, &Entry{
		Type:     t,
		Profile:  profile,
		Strategy: strategy,
		ops:      &table[strategy],
	})
	return e.(*Entry)
}

// For returns the entry for T.
func For[T any]() *Entry {
	return Lookup(reflect.TypeOf((*T)(nil)).Elem())
}

// Slot holds one captured operand.
type Slot struct {
	entry *Entry
	val   reflect.Value
	ref   reflect.Value
}

// Capture materializes v into a slot using the strategy of its
// dynamic type.
func Capture(v any) *Slot {
	return CaptureValue(reflect.ValueOf(v))
}

// CaptureValue is Capture for a value already in reflected form.
func CaptureValue(v reflect.Value) *Slot {
	var t reflect.Type
	if v.IsValid() {
		t = v.Type()
	}
	e := Lookup(t)

	s := &Slot{entry: e}
	if e.Strategy.ByValue() {
		s.val = v
		return s
	}
	s.ref = reflect.New(t)
	s.ref.Elem().Set(v)
	return s
}

// Entry returns the slot's dispatch-table entry.
func (s *Slot) Entry() *Entry {
	return s.entry
}

// Value recovers the operand.
func (s *Slot) Value() reflect.Value {
	return s.entry.Deref(s)
}

// Interface returns the operand as an any, or nil for an untyped nil
// operand.
func (s *Slot) Interface() any {
	v := s.Value()
	if !v.IsValid() || !v.CanInterface() {
		return nil
	}
	return v.Interface()
}

// Render renders the operand in the given style.
func (s *Slot) Render(style Style) string {
	return s.entry.Render(s, style)
}

func (s *Slot) address() uintptr {
	return reflect.ValueOf(s).Pointer()
}
