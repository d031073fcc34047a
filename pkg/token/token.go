// Package token scans assertion expressions into a flat token
// stream with delimiter matching. The lexical grammar is Go's own,
// so anything that is a valid Go expression scans cleanly.
package token

import (
	"fmt"
	gotoken "go/token"
)

// Kind classifies a token for the purposes of expression
// decomposition.
type Kind int

const (
	// KindIdent is an identifier such as x or all.
	KindIdent Kind = iota
	// KindLiteral is a basic literal (number, rune or string).
	KindLiteral
	// KindKeyword is a Go keyword such as func or chan.
	KindKeyword
	// KindOperator is any operator or punctuation not listed
	// below.
	KindOperator
	// KindOpen is an opening delimiter: ( [ or {.
	KindOpen
	// KindClose is a closing delimiter: ) ] or }.
	KindClose
	// KindComma is a comma.
	KindComma
	// KindColon is a colon.
	KindColon
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindIdent:
		return "IDENT"
	case KindLiteral:
		return "LITERAL"
	case KindKeyword:
		return "KEYWORD"
	case KindOperator:
		return "OPERATOR"
	case KindOpen:
		return "OPEN"
	case KindClose:
		return "CLOSE"
	case KindComma:
		return "COMMA"
	case KindColon:
		return "COLON"
	default:
		return "UNKNOWN"
	}
}

// Pos is a 1-based line and column inside an expression.
type Pos struct {
	Line uint32
	Col  uint32
}

// String formats the position as line:col.
func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Token is the smallest lexical unit of an expression.
type Token struct {
	// Kind is the decomposition class of the token.
	Kind Kind

	// Tok is the underlying Go token.
	Tok gotoken.Token

	// Text is the token's source text.
	Text string

	// Offset and End delimit the token in the scanned source
	// as a half-open byte range.
	Offset int
	End    int

	// Pos is the token's line and column.
	Pos Pos

	// Match is the index of the partner delimiter for Open and
	// Close tokens, and -1 for every other token.
	Match int
}

// Is reports whether the token is the given Go token.
func (t Token) Is(tok gotoken.Token) bool {
	return t.Tok == tok
}

// IsIdent reports whether the token is the identifier name.
func (t Token) IsIdent(name string) bool {
	return t.Kind == KindIdent && t.Text == name
}

// Error is a lexical error inside an expression.
type Error struct {
	Pos Pos
	Msg string
}

// Error returns the positioned message.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}
