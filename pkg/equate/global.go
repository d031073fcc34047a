package equate

import (
	"errors"
	"sync"

	"digital.vasic.equate/pkg/assertion"
	"digital.vasic.equate/pkg/logging"
	"digital.vasic.equate/pkg/report"
)

var (
	defaultMu     sync.Mutex
	defaultEngine *Engine
)

// Default returns the engine behind the package-level functions. It
// is configured from the environment on first use. An invalid
// configuration is reported once on stderr and the defaults are
// used instead.
func Default() *Engine {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultEngine == nil {
		e, err := fromEnvironment()
		if err != nil {
			logging.NewConsoleLogger(false).Warn("invalid equate configuration",
				logging.ErrorField(err))
			e = New()
		}
		defaultEngine = e
	}
	return defaultEngine
}

// SetDefault replaces the engine behind the package-level functions
// and returns the previous one, or nil if none was in use.
func SetDefault(e *Engine) *Engine {
	if e == nil {
		panic(errors.New("equate: SetDefault with nil engine"))
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := defaultEngine
	defaultEngine = e
	return prev
}

// Assert evaluates expr against operands with the default engine
// and panics with a *report.AssertionError when it does not hold.
func Assert(expr string, operands ...any) {
	Default().run(nil, 2, expr, operands)
}

// Check is Assert that fails t instead of panicking.
func Check(t report.TestingT, expr string, operands ...any) {
	t.Helper()
	Default().run(report.TestingSink{T: t}, 2, expr, operands)
}

// DebugAssert is Assert in builds without the equate_release tag
// and a no-op otherwise.
func DebugAssert(expr string, operands ...any) {
	if !debugAssertions {
		return
	}
	Default().run(nil, 2, expr, operands)
}

// Compile compiles expr with the default engine.
func Compile(expr string) (*Compiled, error) {
	return Default().Compile(expr)
}

// MustCompile compiles expr with the default engine and panics with
// a *MisuseError on error.
func MustCompile(expr string) *Compiled {
	e := Default()
	c, err := e.Compile(expr)
	if err != nil {
		e.misuse(2, expr, err)
	}
	return c
}

// Register adds a named comparator to the default engine.
func Register(name string, c assertion.Comparator) error {
	return Default().Register(name, c)
}
