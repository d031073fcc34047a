package assertion

import (
	"cmp"
	"fmt"
	"math"
	"reflect"

	"digital.vasic.equate/pkg/parser"
)

// Relational is the Comparator behind the ==, !=, <, <=, > and >=
// forms.
type Relational struct {
	Op parser.Op
}

// Test compares lhs and rhs. Operands the operator is not defined
// on never satisfy it.
func (r Relational) Test(lhs, rhs any) bool {
	l, rv := reflect.ValueOf(lhs), reflect.ValueOf(rhs)
	if checkRelational(r.Op, l, rv, true) != nil {
		return false
	}
	return compare(r.Op, l, rv)
}

// Render returns "lhs op rhs".
func (r Relational) Render(lhs, rhs string) string {
	return fmt.Sprintf("%s %s %s", lhs, r.Op, rhs)
}

func isOrdering(op parser.Op) bool {
	return op != parser.OpEq && op != parser.OpNe
}

func nilable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func,
		reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return true
	}
	return false
}

func ordered(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.String:
		return true
	}
	return false
}

// checkRelational reports whether op is defined on l and r. An
// invalid value stands for nil. When erased is set the values came
// in as operands of type any, so a kind that cannot be nil is a
// non-nil interface and comparing it with nil is allowed.
func checkRelational(op parser.Op, l, r reflect.Value, erased bool) error {
	if !l.IsValid() || !r.IsValid() {
		if isOrdering(op) {
			return fmt.Errorf("operator %s not defined on nil", op)
		}
		other := l
		if !l.IsValid() {
			other = r
		}
		if other.IsValid() && !nilable(other.Kind()) && !erased {
			return fmt.Errorf("mismatched types %s and nil", other.Type())
		}
		return nil
	}

	if isOrdering(op) {
		if l.Type() != r.Type() {
			return fmt.Errorf(
				"mismatched types %s and %s", l.Type(), r.Type(),
			)
		}
		if !ordered(l.Kind()) {
			return fmt.Errorf(
				"operator %s not defined on %s", op, l.Type(),
			)
		}
		return nil
	}

	for _, v := range []reflect.Value{l, r} {
		if !v.Comparable() {
			return fmt.Errorf(
				"operator %s not defined on %s", op, v.Type(),
			)
		}
	}
	return nil
}

// compare evaluates l op r. checkRelational must have accepted the
// operands.
func compare(op parser.Op, l, r reflect.Value) bool {
	if !isOrdering(op) {
		eq := equal(l, r)
		if op == parser.OpEq {
			return eq
		}
		return !eq
	}

	c, ok := order(l, r)
	if !ok {
		return false
	}
	switch op {
	case parser.OpLt:
		return c < 0
	case parser.OpLe:
		return c <= 0
	case parser.OpGt:
		return c > 0
	default:
		return c >= 0
	}
}

func equal(l, r reflect.Value) bool {
	switch {
	case !l.IsValid() && !r.IsValid():
		return true
	case !l.IsValid():
		return nilable(r.Kind()) && r.IsNil()
	case !r.IsValid():
		return nilable(l.Kind()) && l.IsNil()
	}
	return l.Equal(r)
}

// order compares two values of the same ordered type. It reports
// false when either side is NaN, which no ordering accepts.
func order(l, r reflect.Value) (int, bool) {
	switch l.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(l.Int(), r.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return cmp.Compare(l.Uint(), r.Uint()), true
	case reflect.Float32, reflect.Float64:
		a, b := l.Float(), r.Float()
		if math.IsNaN(a) || math.IsNaN(b) {
			return 0, false
		}
		return cmp.Compare(a, b), true
	default:
		return cmp.Compare(l.String(), r.String()), true
	}
}
