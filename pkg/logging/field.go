package logging

import (
	"fmt"
	"sort"
	"strings"
)

// StringField creates a Field with a string value.
func StringField(key, value string) Field {
	return Field{Key: key, Value: value}
}

// IntField creates a Field with an integer value.
func IntField(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// AnyField creates a Field holding an arbitrary value.
func AnyField(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// ErrorField records err under the "error" key. A nil error is
// recorded as "<nil>".
func ErrorField(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: "<nil>"}
	}
	return Field{Key: "error", Value: err.Error()}
}

// fieldSet holds the default fields of a logger. Later keys
// overwrite earlier ones.
type fieldSet map[string]any

// with returns a copy of s extended by fields. s is not modified.
func (s fieldSet) with(fields ...Field) fieldSet {
	out := make(fieldSet, len(s)+len(fields))
	for k, v := range s {
		out[k] = v
	}
	for _, f := range fields {
		out[f.Key] = f.Value
	}
	return out
}

// format renders the set as "k=v, k=v" in key order.
func (s fieldSet) format() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, s[k])
	}
	return strings.Join(parts, ", ")
}
