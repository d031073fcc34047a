// Package metrics records assertion engine activity.
package metrics

import "time"

// AssertionMetrics defines the interface for recording assertion
// metrics.
type AssertionMetrics interface {
	// RecordEvaluation records one evaluated assertion.
	RecordEvaluation(expression string, passed bool, duration time.Duration)
	// RecordFailure records a reported failure at a call site.
	RecordFailure(location string)
	// RecordCompile records a program lookup; cached is true when the
	// program came from the cache.
	RecordCompile(expression string, cached bool)
}

// NoopMetrics is a no-op implementation of AssertionMetrics
// used when metrics collection is disabled.
type NoopMetrics struct{}

func (NoopMetrics) RecordEvaluation(_ string, _ bool, _ time.Duration) {}
func (NoopMetrics) RecordFailure(_ string)                             {}
func (NoopMetrics) RecordCompile(_ string, _ bool)                     {}
