package assertion

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"fortio.org/safecast"
)

// deepEq compares with reflect.DeepEqual, for operands == cannot
// compare such as slices and maps.
var deepEq = Func{
	Predicate: func(lhs, rhs any) bool {
		return reflect.DeepEqual(lhs, rhs)
	},
	Header: "%s deeply equals %s",
}

// contains checks that a string contains the expected substring
// (case-insensitive).
var contains = Func{
	Predicate: func(lhs, rhs any) bool {
		str, ok := lhs.(string)
		if !ok {
			return false
		}
		expected, ok := rhs.(string)
		if !ok {
			return false
		}
		return strings.Contains(
			strings.ToLower(str),
			strings.ToLower(expected),
		)
	},
	Header: "%s contains %s",
}

// containsAny checks that a string contains at least one of the
// expected substrings. The expected side is a []string or a
// comma-separated string.
var containsAny = Func{
	Predicate: func(lhs, rhs any) bool {
		str, ok := lhs.(string)
		if !ok {
			return false
		}

		var values []string
		switch v := rhs.(type) {
		case string:
			values = strings.Split(v, ",")
		case []string:
			values = v
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					values = append(values, s)
				}
			}
		}

		lower := strings.ToLower(str)
		for _, expected := range values {
			trimmed := strings.TrimSpace(expected)
			if trimmed == "" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(trimmed)) {
				return true
			}
		}
		return false
	},
	Header: "%s contains any of %s",
}

// matches checks a string against a regular expression given as a
// string or a *regexp.Regexp.
var matches = Func{
	Predicate: func(lhs, rhs any) bool {
		str, ok := lhs.(string)
		if !ok {
			return false
		}
		switch p := rhs.(type) {
		case *regexp.Regexp:
			return p.MatchString(str)
		case string:
			re, err := regexp.Compile(p)
			return err == nil && re.MatchString(str)
		}
		return false
	},
	Header: "%s matches %s",
}

// minLength checks that a string, slice, map, array or channel has
// at least the expected length.
var minLength = Func{
	Predicate: func(lhs, rhs any) bool {
		n, ok := toLen(lhs)
		if !ok {
			return false
		}
		want, ok := toInt(rhs)
		return ok && n >= want
	},
	Header: "len(%s) >= %s",
}

// minCount checks that a countable value meets a minimum count.
var minCount = Func{
	Predicate: func(lhs, rhs any) bool {
		count, ok := toCount(lhs)
		if !ok {
			return false
		}
		want, ok := toInt(rhs)
		return ok && count >= want
	},
	Header: "count(%s) >= %s",
}

// exactCount checks that a countable value matches the expected
// count exactly.
var exactCount = Func{
	Predicate: func(lhs, rhs any) bool {
		count, ok := toCount(lhs)
		if !ok {
			return false
		}
		want, ok := toInt(rhs)
		return ok && count == want
	},
	Header: "count(%s) == %s",
}

// maxLatency checks that a latency does not exceed a maximum. Both
// sides are time.Duration values or plain numbers of milliseconds.
var maxLatency = Func{
	Predicate: func(lhs, rhs any) bool {
		latency, ok := toDuration(lhs)
		if !ok {
			return false
		}
		limit, ok := toDuration(rhs)
		return ok && latency <= limit
	},
	Header: "latency %s <= %s",
}

var mockPatterns = []string{
	"lorem ipsum",
	"placeholder",
	"mock response",
	"TODO",
	"not implemented",
	"[MOCK]",
	"test response",
	"dummy",
	"sample output",
}

// notMock checks that a string carries none of the common
// placeholder patterns, nor any of the extra patterns on the right
// (a []string, a single string, or nil).
var notMock = Func{
	Predicate: func(lhs, rhs any) bool {
		str, ok := lhs.(string)
		if !ok {
			return true
		}

		patterns := mockPatterns
		switch extra := rhs.(type) {
		case string:
			patterns = append(patterns[:len(patterns):len(patterns)], extra)
		case []string:
			patterns = append(patterns[:len(patterns):len(patterns)], extra...)
		}

		lower := strings.ToLower(str)
		for _, pattern := range patterns {
			if pattern == "" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(pattern)) {
				return false
			}
		}
		return true
	},
	Header: "%s is not a mock (extra patterns %s)",
}

// --- helpers ---

// toInt converts a number to int. It fails for values int cannot
// represent exactly, such as 2.5 or math.MaxUint64.
func toInt(v any) (int, bool) {
	var (
		n   int
		err error
	)
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16,
		reflect.Int32, reflect.Int64:
		n, err = safecast.Conv[int](rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16,
		reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err = safecast.Conv[int](rv.Uint())
	case reflect.Float32, reflect.Float64:
		n, err = safecast.Convert[int](rv.Float())
	default:
		return 0, false
	}
	return n, err == nil
}

// toFloat64 converts any number to float64.
func toFloat64(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16,
		reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16,
		reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	}
	return 0, false
}

// toLen returns the length of anything len() accepts.
func toLen(v any) (int, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map,
		reflect.Array, reflect.Chan:
		return rv.Len(), true
	}
	return 0, false
}

// toCount extracts a count from a number or from anything with a
// length.
func toCount(v any) (int, bool) {
	if n, ok := toLen(v); ok {
		return n, true
	}
	return toInt(v)
}

// toDuration reads a time.Duration, or a number of milliseconds.
func toDuration(v any) (time.Duration, bool) {
	if d, ok := v.(time.Duration); ok {
		return d, true
	}
	ms, ok := toFloat64(v)
	if !ok {
		return 0, false
	}
	return time.Duration(ms * float64(time.Millisecond)), true
}
