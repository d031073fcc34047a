package equate

import (
	"digital.vasic.equate/pkg/assertion"
	"digital.vasic.equate/pkg/report"
)

// Compiled is an expression compiled once for repeated evaluation.
type Compiled struct {
	engine  *Engine
	program *assertion.Program
}

// Program returns the compiled program.
func (c *Compiled) Program() *assertion.Program {
	return c.program
}

// Operands returns the number of operands each evaluation takes.
func (c *Compiled) Operands() int {
	return c.program.Operands()
}

// Assert evaluates the expression against operands and raises a
// failure through the engine's sink.
func (c *Compiled) Assert(operands ...any) {
	c.engine.exec(nil, 2, c.program, operands)
}

// Check is Assert that fails t instead of the engine's sink.
func (c *Compiled) Check(t report.TestingT, operands ...any) {
	t.Helper()
	c.engine.exec(report.TestingSink{T: t}, 2, c.program, operands)
}

// Eval evaluates the expression without reporting.
func (c *Compiled) Eval(operands ...any) (bool, error) {
	x, err := c.program.Bind(operands...)
	if err != nil {
		return false, err
	}
	return c.engine.eval(x), nil
}
