package assertion

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownComparator is returned when an expression names a
// comparator that is neither registered nor bound to an operand.
var ErrUnknownComparator = errors.New("unknown comparator")

// Registry holds named comparators. It is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	comparators map[string]Comparator
}

// NewRegistry creates a Registry with all built-in comparators
// pre-registered.
func NewRegistry() *Registry {
	r := &Registry{
		comparators: make(map[string]Comparator),
	}
	r.registerDefaults()
	return r
}

// registerDefaults registers the built-in comparators.
func (r *Registry) registerDefaults() {
	r.comparators["approx_eq"] = DefaultApproxEq
	r.comparators["deep_eq"] = deepEq
	r.comparators["contains"] = contains
	r.comparators["contains_any"] = containsAny
	r.comparators["matches"] = matches
	r.comparators["min_length"] = minLength
	r.comparators["min_count"] = minCount
	r.comparators["exact_count"] = exactCount
	r.comparators["max_latency"] = maxLatency
	r.comparators["not_mock"] = notMock
}

// Register adds a comparator under name. Returns an error if the
// name is already registered.
func (r *Registry) Register(name string, c Comparator) error {
	if c == nil {
		return fmt.Errorf("comparator %s is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.comparators[name]; exists {
		return fmt.Errorf("comparator already registered: %s", name)
	}

	r.comparators[name] = c
	return nil
}

// Replace registers c under name, overwriting any existing entry.
func (r *Registry) Replace(name string, c Comparator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comparators[name] = c
}

// Lookup returns the comparator registered under name.
func (r *Registry) Lookup(name string) (Comparator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.comparators[name]
	return c, ok
}

// Has returns true if a comparator is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.comparators))
	for name := range r.comparators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
