package token

import (
	"fmt"
	"go/scanner"
	gotoken "go/token"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"
)

// Stream is a scanned expression: the normalized source and its
// tokens in order.
type Stream struct {
	Source string
	Tokens []Token
}

// Len returns the number of tokens.
func (s *Stream) Len() int {
	return len(s.Tokens)
}

// Text returns the source text spanned by tokens [i, j). Interior
// whitespace is preserved and the ends are trimmed.
func (s *Stream) Text(i, j int) string {
	if i >= j || i < 0 || j > len(s.Tokens) {
		return ""
	}
	return strings.TrimSpace(
		s.Source[s.Tokens[i].Offset:s.Tokens[j-1].End],
	)
}

// PosAt returns the position of token i, or the position just
// after the last token when i is out of range.
func (s *Stream) PosAt(i int) Pos {
	if i >= 0 && i < len(s.Tokens) {
		return s.Tokens[i].Pos
	}
	if len(s.Tokens) == 0 {
		return Pos{Line: 1, Col: 1}
	}
	last := s.Tokens[len(s.Tokens)-1]
	return Pos{
		Line: last.Pos.Line,
		Col:  last.Pos.Col + uint32(len(last.Text)),
	}
}

// Normalize returns src in Unicode NFC form, so visually identical
// identifiers scan to identical text.
func Normalize(src string) string {
	return norm.NFC.String(src)
}

// Scan tokenizes src. Auto-inserted semicolons are dropped and
// every delimiter is linked to its partner through Token.Match.
func Scan(src string) (*Stream, error) {
	src = Normalize(src)

	fset := gotoken.NewFileSet()
	file := fset.AddFile("expr", fset.Base(), len(src))

	var firstErr *Error
	var sc scanner.Scanner
	sc.Init(file, []byte(src), func(p gotoken.Position, msg string) {
		if firstErr == nil {
			firstErr = &Error{Pos: toPos(p), Msg: msg}
		}
	}, 0)

	stream := &Stream{Source: src}
	var open []int

	for {
		p, tok, lit := sc.Scan()
		if tok == gotoken.EOF {
			break
		}
		if tok == gotoken.SEMICOLON && lit == "\n" {
			continue
		}

		text := lit
		if text == "" {
			text = tok.String()
		}
		offset := file.Offset(p)
		t := Token{
			Kind:   classify(tok),
			Tok:    tok,
			Text:   text,
			Offset: offset,
			End:    offset + len(text),
			Pos:    toPos(fset.Position(p)),
			Match:  -1,
		}

		idx := len(stream.Tokens)
		switch t.Kind {
		case KindOpen:
			open = append(open, idx)
		case KindClose:
			if len(open) == 0 {
				return nil, &Error{
					Pos: t.Pos,
					Msg: fmt.Sprintf("unexpected %s", t.Text),
				}
			}
			partner := open[len(open)-1]
			open = open[:len(open)-1]
			if closerOf(stream.Tokens[partner].Tok) != tok {
				return nil, &Error{
					Pos: t.Pos,
					Msg: fmt.Sprintf(
						"mismatched %s, expected %s",
						t.Text,
						closerOf(stream.Tokens[partner].Tok),
					),
				}
			}
			stream.Tokens[partner].Match = idx
			t.Match = partner
		}
		stream.Tokens = append(stream.Tokens, t)
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if len(open) > 0 {
		t := stream.Tokens[open[len(open)-1]]
		return nil, &Error{
			Pos: t.Pos,
			Msg: fmt.Sprintf("unclosed %s", t.Text),
		}
	}

	return stream, nil
}

func classify(tok gotoken.Token) Kind {
	switch {
	case tok == gotoken.IDENT:
		return KindIdent
	case tok.IsLiteral():
		return KindLiteral
	case tok.IsKeyword():
		return KindKeyword
	}

	switch tok {
	case gotoken.LPAREN, gotoken.LBRACK, gotoken.LBRACE:
		return KindOpen
	case gotoken.RPAREN, gotoken.RBRACK, gotoken.RBRACE:
		return KindClose
	case gotoken.COMMA:
		return KindComma
	case gotoken.COLON:
		return KindColon
	default:
		return KindOperator
	}
}

func closerOf(tok gotoken.Token) gotoken.Token {
	switch tok {
	case gotoken.LPAREN:
		return gotoken.RPAREN
	case gotoken.LBRACK:
		return gotoken.RBRACK
	case gotoken.LBRACE:
		return gotoken.RBRACE
	default:
		return gotoken.ILLEGAL
	}
}

func toPos(p gotoken.Position) Pos {
	line, err := safecast.Conv[uint32](p.Line)
	if err != nil {
		line = 0
	}
	col, err := safecast.Conv[uint32](p.Column)
	if err != nil {
		col = 0
	}
	return Pos{Line: line, Col: col}
}
