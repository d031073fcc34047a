package capability

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

var (
	formatterType = reflect.TypeOf((*fmt.Formatter)(nil)).Elem()
	goStringType  = reflect.TypeOf((*fmt.GoStringer)(nil)).Elem()
	stringerType  = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
	errorType     = reflect.TypeOf((*error)(nil)).Elem()
	lockerType    = reflect.TypeOf((*sync.Locker)(nil)).Elem()

	wordSize = unsafe.Sizeof(uintptr(0))
)

// Probe computes the capability profile of t.
func Probe(t reflect.Type) Profile {
	var p Profile
	if IsPrintable(t) {
		p |= Printable
	}
	if IsPlainlySized(t) {
		p |= PlainlySized
	}
	if FitsWord(t) {
		p |= FitsInWord
	}
	return p
}

// HasFormatter reports whether t, or a pointer to t, implements one
// of the fmt rendering interfaces or error.
func HasFormatter(t reflect.Type) bool {
	return implementsFormatter(t) || implementsFormatter(reflect.PointerTo(t))
}

func implementsFormatter(t reflect.Type) bool {
	return t.Implements(formatterType) ||
		t.Implements(goStringType) ||
		t.Implements(stringerType) ||
		t.Implements(errorType)
}

// IsPrintable reports whether values of t have a debug rendering:
// either a formatter method, or a structure made only of plain data.
// Functions, channels and unsafe pointers are opaque, and so is any
// composite that holds one outside an interface.
func IsPrintable(t reflect.Type) bool {
	return printable(t, map[reflect.Type]bool{})
}

func printable(t reflect.Type, seen map[reflect.Type]bool) bool {
	if HasFormatter(t) {
		return true
	}
	if seen[t] {
		return true
	}
	seen[t] = true

	switch t.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return false
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return printable(t.Elem(), seen)
	case reflect.Map:
		return printable(t.Key(), seen) && printable(t.Elem(), seen)
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !printable(t.Field(i).Type, seen) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// IsPlainlySized reports whether values of t may be copied. A type
// is not copyable when it, or any value it embeds by value, has
// pointer Lock and Unlock methods, the rule go vet's copylocks
// check applies.
func IsPlainlySized(t reflect.Type) bool {
	return !holdsLock(t, map[reflect.Type]bool{})
}

func holdsLock(t reflect.Type, seen map[reflect.Type]bool) bool {
	if seen[t] {
		return false
	}
	seen[t] = true

	if t.Kind() == reflect.Struct &&
		reflect.PointerTo(t).Implements(lockerType) {
		return true
	}

	switch t.Kind() {
	case reflect.Array:
		return t.Len() > 0 && holdsLock(t.Elem(), seen)
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if holdsLock(t.Field(i).Type, seen) {
				return true
			}
		}
	}
	return false
}

// FitsWord reports whether values of t fit in one machine word.
func FitsWord(t reflect.Type) bool {
	return t.Size() <= wordSize && uintptr(t.Align()) <= wordSize
}
