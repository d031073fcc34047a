// Package render formats failed assertions into multi-line
// diagnostics. Only failing branches are rendered.
package render

import (
	"fmt"

	"digital.vasic.equate/pkg/assertion"
)

// Location is the call site of an assertion.
type Location struct {
	File string `json:"file" msgpack:"file"`
	Line int    `json:"line" msgpack:"line"`
	Col  int    `json:"col" msgpack:"col"`
}

// String formats the location as file:line:col.
func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

// Message is everything the renderer needs to explain one failed
// assertion: the result tree and the parallel source, dispatch and
// value trees, plus the user message and the call site.
type Message struct {
	Result   *assertion.Tree[bool]
	Source   *assertion.Tree[assertion.Source]
	Dispatch *assertion.Tree[assertion.Dispatch]
	Values   *assertion.Tree[assertion.Values]
	Text     string
	Location Location
}

// NewMessage assembles the message of a bound expression.
func NewMessage(x *assertion.Expr, loc Location) *Message {
	return &Message{
		Result:   x.Result(),
		Source:   x.Source(),
		Dispatch: x.Dispatch(),
		Values:   x.Values(),
		Text:     x.Message(),
		Location: loc,
	}
}
