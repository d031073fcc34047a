// Package equate is the entry point of the assertion engine. An
// expression is written in a small grammar and its non-constant
// leaves are passed as operands:
//
//	equate.Assert("all(len(items) == want, total < limit)",
//		len(items), want, total, limit)
//
// A failed assertion is rendered into a report that decomposes the
// expression and shows the value of every leaf that caused it.
package equate

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"digital.vasic.equate/pkg/assertion"
	"digital.vasic.equate/pkg/callsite"
	"digital.vasic.equate/pkg/logging"
	"digital.vasic.equate/pkg/metrics"
	"digital.vasic.equate/pkg/render"
	"digital.vasic.equate/pkg/report"
)

// Engine compiles, evaluates and reports assertions. Programs are
// compiled once per expression text. It is safe for concurrent use.
type Engine struct {
	registry   *assertion.Registry
	renderer   *render.Renderer
	sink       report.Sink
	observers  []report.Observer
	logger     logging.Logger
	metrics    metrics.AssertionMetrics
	locator    *callsite.Locator
	dispatcher *report.Dispatcher
	closers    []func() error

	mu       sync.RWMutex
	programs map[string]*assertion.Program
}

// New creates an Engine with the supplied options.
func New(opts ...Option) *Engine {
	e := &Engine{
		programs: make(map[string]*assertion.Program),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.registry == nil {
		e.registry = assertion.NewRegistry()
	}
	if e.renderer == nil {
		e.renderer = render.New(render.Options{})
	}
	if e.metrics == nil {
		e.metrics = metrics.NoopMetrics{}
	}
	if e.locator == nil {
		e.locator = callsite.NewLocator()
	}

	e.dispatcher = report.NewDispatcher(e.sink)
	if e.logger != nil {
		e.dispatcher.SetLogger(e.logger)
		e.dispatcher.AddObserver(report.LogObserver{Logger: e.logger})
	} else {
		e.logger = logging.NullLogger{}
	}
	if _, noop := e.metrics.(metrics.NoopMetrics); !noop {
		e.dispatcher.AddObserver(report.MetricsObserver{Metrics: e.metrics})
	}
	for _, o := range e.observers {
		e.dispatcher.AddObserver(o)
	}
	return e
}

// Registry returns the comparator registry.
func (e *Engine) Registry() *assertion.Registry {
	return e.registry
}

// Dispatcher returns the dispatcher failures are raised through.
func (e *Engine) Dispatcher() *report.Dispatcher {
	return e.dispatcher
}

// Register adds a named comparator, usable as :name: in
// expressions. Cached programs are dropped since a name may now
// resolve differently.
func (e *Engine) Register(name string, c assertion.Comparator) error {
	if err := e.registry.Register(name, c); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.programs = make(map[string]*assertion.Program)
	return nil
}

// Compile compiles expr for repeated use.
func (e *Engine) Compile(expr string) (*Compiled, error) {
	p, err := e.program(expr)
	if err != nil {
		return nil, err
	}
	return &Compiled{engine: e, program: p}, nil
}

// MustCompile is Compile that panics with a *MisuseError on error.
func (e *Engine) MustCompile(expr string) *Compiled {
	c, err := e.Compile(expr)
	if err != nil {
		e.misuse(2, expr, err)
	}
	return c
}

// Assert evaluates expr against operands and raises a failure
// through the engine's sink. A malformed expression or a wrong
// operand count panics with a *MisuseError.
func (e *Engine) Assert(expr string, operands ...any) {
	e.run(nil, 2, expr, operands)
}

// Check is Assert that fails t instead of the engine's sink.
func (e *Engine) Check(t report.TestingT, expr string, operands ...any) {
	t.Helper()
	e.run(report.TestingSink{T: t}, 2, expr, operands)
}

// DebugAssert is Assert in builds without the equate_release tag
// and a no-op otherwise. Its operands are still evaluated by the
// caller.
func (e *Engine) DebugAssert(expr string, operands ...any) {
	if !debugAssertions {
		return
	}
	e.run(nil, 2, expr, operands)
}

// Evaluate reports the failure of expr at loc without raising it.
// It returns nil when the assertion holds.
func (e *Engine) Evaluate(
	loc render.Location,
	expr string,
	operands ...any,
) (*report.AssertionError, error) {
	p, err := e.program(expr)
	if err != nil {
		return nil, err
	}
	x, err := p.Bind(operands...)
	if err != nil {
		return nil, err
	}
	if e.eval(x) {
		return nil, nil
	}
	return report.NewAssertionError(e.renderer, x, loc), nil
}

// Close runs the registered closers and closes the logger.
func (e *Engine) Close() error {
	var errs []error
	for _, fn := range e.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := e.logger.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// program returns the cached program of expr, compiling it on first
// use.
func (e *Engine) program(expr string) (*assertion.Program, error) {
	e.mu.RLock()
	p, ok := e.programs[expr]
	e.mu.RUnlock()
	if ok {
		e.metrics.RecordCompile(expr, true)
		return p, nil
	}

	p, err := assertion.Compile(e.registry, expr)
	if err != nil {
		return nil, err
	}
	e.metrics.RecordCompile(expr, false)

	e.mu.Lock()
	defer e.mu.Unlock()
	if cached, ok := e.programs[expr]; ok {
		return cached, nil
	}
	e.programs[expr] = p
	return p, nil
}

// run compiles and executes expr. depth counts the frames between
// run and the assertion call.
func (e *Engine) run(sink report.Sink, depth int, expr string, operands []any) {
	p, err := e.program(expr)
	if err != nil {
		e.misuse(depth+1, expr, err)
	}
	e.exec(sink, depth+1, p, operands)
}

func (e *Engine) exec(
	sink report.Sink,
	depth int,
	p *assertion.Program,
	operands []any,
) {
	x, err := p.Bind(operands...)
	if err != nil {
		e.misuse(depth+1, p.Text(), err)
	}
	if e.eval(x) {
		return
	}
	loc := e.locator.Caller(depth)
	e.dispatcher.Raise(report.NewAssertionError(e.renderer, x, loc), sink)
}

func (e *Engine) eval(x *assertion.Expr) bool {
	start := time.Now()
	ok := x.Eval()
	e.metrics.RecordEvaluation(x.Program().Source(), ok, time.Since(start))
	return ok
}

// misuse notifies the observers of a malformed assertion and
// panics.
func (e *Engine) misuse(depth int, expr string, err error) {
	loc := e.locator.Caller(depth)
	e.dispatcher.Misuse(loc, expr, err)
	panic(&MisuseError{Location: loc, Expression: expr, Err: err})
}

// MisuseError is a malformed assertion: a syntax error, an unknown
// comparator or operands that do not fit the expression. It is a
// programming error, never an assertion failure.
type MisuseError struct {
	Location   render.Location
	Expression string
	Err        error
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("%s: malformed assertion %q: %v",
		e.Location, e.Expression, e.Err)
}

// Unwrap returns the compile or bind error.
func (e *MisuseError) Unwrap() error {
	return e.Err
}
