package capability

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/kr/pretty"
)

// Style selects how printable values are rendered.
type Style int

const (
	// StyleGo renders composites as Go syntax using kr/pretty.
	StyleGo Style = iota
	// StyleSpew renders composites as a go-spew dump.
	StyleSpew
	// StylePlain renders everything with fmt's %v verb.
	StylePlain
)

// String returns the style name used in configuration.
func (s Style) String() string {
	switch s {
	case StyleGo:
		return "go"
	case StyleSpew:
		return "spew"
	case StylePlain:
		return "plain"
	default:
		return "unknown"
	}
}

// ParseStyle parses a configuration style name.
func ParseStyle(name string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "go":
		return StyleGo, nil
	case "spew":
		return StyleSpew, nil
	case "plain":
		return StylePlain, nil
	default:
		return StyleGo, fmt.Errorf("unknown render style: %s", name)
	}
}

var spewConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Format renders v in the given style. Scalars, strings and values
// with formatter methods render the same way in every style.
func Format(v reflect.Value, style Style) string {
	if !v.IsValid() {
		return "nil"
	}
	if !v.CanInterface() {
		return fmt.Sprintf("<unexported %s>", v.Type())
	}

	x := v.Interface()
	if HasFormatter(v.Type()) {
		if !implementsFormatter(v.Type()) {
			ptr := reflect.New(v.Type())
			ptr.Elem().Set(v)
			x = ptr.Interface()
		}
		if _, ok := x.(fmt.GoStringer); ok && style == StyleGo {
			return fmt.Sprintf("%#v", x)
		}
		return fmt.Sprintf("%v", x)
	}

	switch v.Kind() {
	case reflect.String:
		return fmt.Sprintf("%q", x)
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr, reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return fmt.Sprintf("%v", x)
	}

	switch style {
	case StyleSpew:
		return strings.TrimRight(spewConfig.Sdump(x), "\n")
	case StylePlain:
		return fmt.Sprintf("%v", x)
	default:
		return pretty.Sprint(x)
	}
}

// Placeholder is the rendering of an opaque value stored at addr.
func Placeholder(t reflect.Type, addr uintptr) string {
	return fmt.Sprintf("<object of type %q at address %#x>", typeName(t), addr)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	return t.String()
}
