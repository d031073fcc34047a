// Package parser recovers the operator structure of an assertion
// expression from its flat token stream.
//
// The grammar is
//
//	expr := bool | lhs OP rhs | lhs :name: rhs | lhs ~ rhs
//	      | all(expr, ...) | any(expr, ...)
//	OP   := == | != | < | <= | > | >=
//
// optionally followed by a message tail `, "format", args...`. Any
// region holding a top-level && or || is kept whole as one boolean
// leaf.
package parser

import (
	"errors"
	"fmt"
	gotoken "go/token"
	"strconv"

	"digital.vasic.equate/pkg/token"
)

// ApproxComparator is the comparator name the ~ marker stands for.
const ApproxComparator = "approx_eq"

const (
	combinatorAll = "all"
	combinatorAny = "any"
)

// Error is a syntax error in an assertion expression.
type Error struct {
	Pos token.Pos
	Msg string
}

// Error returns the positioned message.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

type parser struct {
	stream *token.Stream
	toks   []token.Token
	leaves []Leaf
}

// Parse scans and parses src. Identical sources always produce
// structurally identical trees.
func Parse(src string) (*Tree, error) {
	stream, err := token.Scan(src)
	if err != nil {
		var lexErr *token.Error
		if errors.As(err, &lexErr) {
			return nil, &Error{Pos: lexErr.Pos, Msg: lexErr.Msg}
		}
		return nil, err
	}
	if stream.Len() == 0 {
		return nil, &Error{
			Pos: token.Pos{Line: 1, Col: 1},
			Msg: "empty expression",
		}
	}

	p := &parser{stream: stream, toks: stream.Tokens}
	end := p.nextTop(0, len(p.toks), p.isComma)

	root, err := p.region(0, end)
	if err != nil {
		return nil, err
	}

	tree := &Tree{Stream: stream, Root: root, Tail: -1}
	if end < len(p.toks) {
		if err := p.tail(tree, end+1); err != nil {
			return nil, err
		}
	}
	tree.Leaves = p.leaves
	return tree, nil
}

// region parses tokens [i, j) as one expression.
func (p *parser) region(i, j int) (*Node, error) {
	if i >= j {
		return nil, p.errorf(i, "expected expression")
	}

	if p.lastTop(i, j, p.isLogical) >= 0 {
		return p.boolLeaf(i, j), nil
	}

	if name, ok := p.combinator(i, j); ok {
		return p.combine(name, i+2, j-1)
	}

	marker := func(k int) bool { return k+2 < j && p.isCustomMarker(k) }
	if k := p.lastTop(i, j, marker); k >= 0 {
		return p.comparison(i, j, k, 3, KindCustomCmp, p.toks[k+1].Text)
	}
	if k := p.lastTop(i, j, p.isWideRelational); k >= 0 {
		return p.comparison(i, j, k, 1, KindCmp, "")
	}
	if k := p.lastTop(i, j, p.isNarrowRelational); k >= 0 {
		return p.comparison(i, j, k, 1, KindCmp, "")
	}
	if k := p.lastTop(i, j, p.isTilde); k >= 0 {
		return p.comparison(i, j, k, 1, KindCustomCmp, ApproxComparator)
	}

	if k := p.nextTop(i, j, p.isColon); k < j {
		return nil, p.errorf(k, "unexpected ':' outside a :comparator: marker")
	}
	return p.boolLeaf(i, j), nil
}

// combinator reports whether [i, j) has the exact shape
// all(...) or any(...).
func (p *parser) combinator(i, j int) (string, bool) {
	if j-i < 3 {
		return "", false
	}
	head, open := p.toks[i], p.toks[i+1]
	if head.Kind != token.KindIdent {
		return "", false
	}
	if head.Text != combinatorAll && head.Text != combinatorAny {
		return "", false
	}
	if !open.Is(gotoken.LPAREN) || open.Match != j-1 {
		return "", false
	}
	return head.Text, true
}

// combine parses the argument list [i, j) of a combinator and
// right-folds the pieces.
func (p *parser) combine(name string, i, j int) (*Node, error) {
	kind := KindAnd
	identity := "true"
	if name == combinatorAny {
		kind = KindOr
		identity = "false"
	}

	pieces := p.splitTop(i, j)
	if len(pieces) == 0 {
		return p.syntheticLeaf(identity, i-2), nil
	}

	nodes := make([]*Node, 0, len(pieces))
	for _, piece := range pieces {
		n, err := p.region(piece[0], piece[1])
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}

	root := nodes[len(nodes)-1]
	for k := len(nodes) - 2; k >= 0; k-- {
		root = &Node{Kind: kind, Left: nodes[k], Right: root}
	}
	return root, nil
}

// comparison splits [i, j) around the operator occupying tokens
// [k, k+width).
func (p *parser) comparison(
	i, j, k, width int,
	kind Kind,
	comparator string,
) (*Node, error) {
	if k == i {
		return nil, p.errorf(k, "missing left operand of %s", p.stream.Text(k, k+width))
	}
	if k+width >= j {
		return nil, p.errorf(k, "missing right operand of %s", p.stream.Text(k, k+width))
	}

	n := &Node{Kind: kind, Comparator: comparator, Cmp: -1}
	n.LHS = p.addLeaf(RoleLHS, i, k)

	switch {
	case kind == KindCmp:
		n.Op = relational(p.toks[k].Tok)
	case width == 3:
		n.Cmp = p.addLeaf(RoleComparator, k+1, k+2)
	default:
		n.Cmp = p.addSynthetic(RoleComparator, comparator, k)
	}

	n.RHS = p.addLeaf(RoleRHS, k+width, j)
	return n, nil
}

// tail parses the message tail starting at token i.
func (p *parser) tail(tree *Tree, i int) error {
	tree.Tail = i
	if i >= len(p.toks) {
		return nil
	}

	first := p.toks[i]
	if !first.Is(gotoken.STRING) {
		return p.errorf(i, "message must start with a string literal, found %s", first.Text)
	}
	format, err := strconv.Unquote(first.Text)
	if err != nil {
		return p.errorf(i, "invalid message literal: %v", err)
	}
	tree.Format = format

	if i+1 == len(p.toks) {
		return nil
	}
	if p.toks[i+1].Kind != token.KindComma {
		return p.errorf(i+1, "expected ',' after message, found %s", p.toks[i+1].Text)
	}
	for _, piece := range p.splitTop(i+2, len(p.toks)) {
		tree.Args = append(tree.Args, p.addLeaf(RoleFormatArg, piece[0], piece[1]))
	}
	return nil
}

func (p *parser) boolLeaf(i, j int) *Node {
	return &Node{Kind: KindBool, Leaf: p.addLeaf(RoleValue, i, j), Cmp: -1}
}

func (p *parser) syntheticLeaf(text string, at int) *Node {
	return &Node{Kind: KindBool, Leaf: p.addSynthetic(RoleValue, text, at), Cmp: -1}
}

func (p *parser) addLeaf(role Role, i, j int) int {
	id := len(p.leaves)
	p.leaves = append(p.leaves, Leaf{
		ID:    id,
		Role:  role,
		Text:  p.stream.Text(i, j),
		Start: i,
		End:   j,
		Pos:   p.stream.PosAt(i),
	})
	return id
}

func (p *parser) addSynthetic(role Role, text string, at int) int {
	id := len(p.leaves)
	p.leaves = append(p.leaves, Leaf{
		ID:    id,
		Role:  role,
		Text:  text,
		Start: at,
		End:   at,
		Pos:   p.stream.PosAt(at),
	})
	return id
}

// splitTop splits [i, j) on top-level commas. A trailing comma is
// allowed; an empty piece anywhere else is kept and rejected by the
// caller's region parse.
func (p *parser) splitTop(i, j int) [][2]int {
	var pieces [][2]int
	start := i
	for k := i; k < j; k++ {
		t := p.toks[k]
		if t.Kind == token.KindOpen {
			k = t.Match
			continue
		}
		if t.Kind == token.KindComma {
			pieces = append(pieces, [2]int{start, k})
			start = k + 1
		}
	}
	if start < j {
		pieces = append(pieces, [2]int{start, j})
	}
	return pieces
}

// nextTop returns the first top-level index in [i, j) satisfying
// match, or j.
func (p *parser) nextTop(i, j int, match func(int) bool) int {
	for k := i; k < j; k++ {
		if p.toks[k].Kind == token.KindOpen {
			k = p.toks[k].Match
			continue
		}
		if match(k) {
			return k
		}
	}
	return j
}

// lastTop returns the last top-level index in [i, j) satisfying
// match, or -1.
func (p *parser) lastTop(i, j int, match func(int) bool) int {
	found := -1
	for k := i; k < j; k++ {
		if p.toks[k].Kind == token.KindOpen {
			k = p.toks[k].Match
			continue
		}
		if match(k) {
			found = k
		}
	}
	return found
}

func (p *parser) errorf(i int, format string, args ...any) error {
	return &Error{Pos: p.stream.PosAt(i), Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) isCustomMarker(k int) bool {
	if k+2 >= len(p.toks) {
		return false
	}
	return p.toks[k].Kind == token.KindColon &&
		p.toks[k+1].Kind == token.KindIdent &&
		p.toks[k+2].Kind == token.KindColon
}

func (p *parser) isComma(k int) bool {
	return p.toks[k].Kind == token.KindComma
}

func (p *parser) isColon(k int) bool {
	return p.toks[k].Kind == token.KindColon
}

func (p *parser) isLogical(k int) bool {
	return p.toks[k].Is(gotoken.LAND) || p.toks[k].Is(gotoken.LOR)
}

func (p *parser) isWideRelational(k int) bool {
	switch p.toks[k].Tok {
	case gotoken.EQL, gotoken.NEQ, gotoken.LEQ, gotoken.GEQ:
		return true
	}
	return false
}

func (p *parser) isNarrowRelational(k int) bool {
	return p.toks[k].Is(gotoken.LSS) || p.toks[k].Is(gotoken.GTR)
}

func (p *parser) isTilde(k int) bool {
	return p.toks[k].Is(gotoken.TILDE)
}

func relational(tok gotoken.Token) Op {
	switch tok {
	case gotoken.EQL:
		return OpEq
	case gotoken.NEQ:
		return OpNe
	case gotoken.LSS:
		return OpLt
	case gotoken.LEQ:
		return OpLe
	case gotoken.GTR:
		return OpGt
	default:
		return OpGe
	}
}
