package equate

import (
	"digital.vasic.equate/pkg/assertion"
	"digital.vasic.equate/pkg/callsite"
	"digital.vasic.equate/pkg/logging"
	"digital.vasic.equate/pkg/metrics"
	"digital.vasic.equate/pkg/render"
	"digital.vasic.equate/pkg/report"
)

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry sets the comparator registry.
func WithRegistry(reg *assertion.Registry) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// WithRenderOptions sets how failures are rendered.
func WithRenderOptions(opts render.Options) Option {
	return func(e *Engine) {
		e.renderer = render.New(opts)
	}
}

// WithSink sets the terminal sink of Assert. The default panics.
func WithSink(sink report.Sink) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

// WithObserver adds an observer notified of every failure before
// it is raised.
func WithObserver(o report.Observer) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, o)
	}
}

// WithLogger logs failures and malformed assertions to logger.
func WithLogger(logger logging.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics records evaluations, failures and compiles.
func WithMetrics(m metrics.AssertionMetrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithLocator sets the call-site locator.
func WithLocator(l *callsite.Locator) Option {
	return func(e *Engine) {
		e.locator = l
	}
}

// WithCloser registers a function run by Engine.Close.
func WithCloser(fn func() error) Option {
	return func(e *Engine) {
		e.closers = append(e.closers, fn)
	}
}
