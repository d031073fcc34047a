package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// Counters implements AssertionMetrics with in-memory counters. It
// can write its state in the Prometheus text exposition format;
// scraping is left to the host application.
type Counters struct {
	mu          sync.Mutex
	evaluations map[string]int
	failures    map[string]int
	durations   map[string]time.Duration
	compiles    int
	cacheHits   int
}

// NewCounters creates an empty Counters.
func NewCounters() *Counters {
	return &Counters{
		evaluations: make(map[string]int),
		failures:    make(map[string]int),
		durations:   make(map[string]time.Duration),
	}
}

func status(passed bool) string {
	if passed {
		return "passed"
	}
	return "failed"
}

func (m *Counters) RecordEvaluation(expression string, passed bool, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evaluations[expression+"\x00"+status(passed)]++
	m.durations[expression] += duration
}

func (m *Counters) RecordFailure(location string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[location]++
}

func (m *Counters) RecordCompile(_ string, cached bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cached {
		m.cacheHits++
		return
	}
	m.compiles++
}

// Evaluations returns how often expression evaluated with the given
// outcome.
func (m *Counters) Evaluations(expression string, passed bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.evaluations[expression+"\x00"+status(passed)]
}

// Failures returns the number of failures reported at location.
func (m *Counters) Failures(location string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures[location]
}

// TotalFailures returns the number of failures at all locations.
func (m *Counters) TotalFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.failures {
		total += n
	}
	return total
}

// Duration returns the accumulated evaluation time of expression.
func (m *Counters) Duration(expression string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.durations[expression]
}

// Compiles returns the number of compiled programs and cache hits.
func (m *Counters) Compiles() (compiled, cached int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.compiles, m.cacheHits
}

// WritePrometheus writes the counters in the Prometheus text format.
func (m *Counters) WritePrometheus(w io.Writer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sb strings.Builder
	sb.WriteString("# TYPE equate_evaluations_total counter\n")
	for _, key := range sortedKeys(m.evaluations) {
		expr, st, _ := strings.Cut(key, "\x00")
		fmt.Fprintf(&sb, "equate_evaluations_total{expression=%q,status=%q} %d\n",
			expr, st, m.evaluations[key])
	}
	sb.WriteString("# TYPE equate_failures_total counter\n")
	for _, loc := range sortedKeys(m.failures) {
		fmt.Fprintf(&sb, "equate_failures_total{location=%q} %d\n",
			loc, m.failures[loc])
	}
	sb.WriteString("# TYPE equate_programs_compiled_total counter\n")
	fmt.Fprintf(&sb, "equate_programs_compiled_total %d\n", m.compiles)
	sb.WriteString("# TYPE equate_program_cache_hits_total counter\n")
	fmt.Fprintf(&sb, "equate_program_cache_hits_total %d\n", m.cacheHits)

	_, err := io.WriteString(w, sb.String())
	return err
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
