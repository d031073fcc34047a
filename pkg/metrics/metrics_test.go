package metrics

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters_ImplementsInterface(t *testing.T) {
	var _ AssertionMetrics = &Counters{}
	var _ AssertionMetrics = NoopMetrics{}
}

func TestCounters_RecordEvaluation(t *testing.T) {
	m := NewCounters()
	m.RecordEvaluation("a == b", true, 2*time.Millisecond)
	m.RecordEvaluation("a == b", true, 3*time.Millisecond)
	m.RecordEvaluation("a == b", false, time.Millisecond)

	assert.Equal(t, 2, m.Evaluations("a == b", true))
	assert.Equal(t, 1, m.Evaluations("a == b", false))
	assert.Equal(t, 0, m.Evaluations("ok", true))
	assert.Equal(t, 6*time.Millisecond, m.Duration("a == b"))
}

func TestCounters_RecordFailure(t *testing.T) {
	m := NewCounters()
	m.RecordFailure("a_test.go:3:2")
	m.RecordFailure("a_test.go:3:2")
	m.RecordFailure("b_test.go:9:4")

	assert.Equal(t, 2, m.Failures("a_test.go:3:2"))
	assert.Equal(t, 3, m.TotalFailures())
}

func TestCounters_RecordCompile(t *testing.T) {
	m := NewCounters()
	m.RecordCompile("x", false)
	m.RecordCompile("x", true)
	m.RecordCompile("x", true)

	compiled, cached := m.Compiles()
	assert.Equal(t, 1, compiled)
	assert.Equal(t, 2, cached)
}

func TestCounters_Concurrent(t *testing.T) {
	m := NewCounters()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordEvaluation("ok", false, 0)
			m.RecordFailure("x.go:1:1")
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, m.Evaluations("ok", false))
	assert.Equal(t, 50, m.TotalFailures())
}

func TestCounters_WritePrometheus(t *testing.T) {
	m := NewCounters()
	m.RecordEvaluation(`s == "x"`, false, 0)
	m.RecordFailure("a_test.go:3:2")
	m.RecordCompile("ok", false)

	var buf bytes.Buffer
	require.NoError(t, m.WritePrometheus(&buf))

	out := buf.String()
	assert.Contains(t, out, `equate_evaluations_total{expression="s == \"x\"",status="failed"} 1`)
	assert.Contains(t, out, `equate_failures_total{location="a_test.go:3:2"} 1`)
	assert.Contains(t, out, "equate_programs_compiled_total 1\n")
	assert.Contains(t, out, "equate_program_cache_hits_total 0\n")
}

func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics{}
	m.RecordEvaluation("ok", true, time.Second)
	m.RecordFailure("x.go:1:1")
	m.RecordCompile("ok", true)
}
