package assertion

import (
	"errors"
	"fmt"
	"reflect"

	"digital.vasic.equate/pkg/capability"
	"digital.vasic.equate/pkg/parser"
	"digital.vasic.equate/pkg/token"
)

// BindError reports an expression that cannot be bound: an operand
// count mismatch, a non-boolean leaf, or operands an operator is not
// defined on. Like a syntax error it is a misuse of the engine, not
// an assertion failure.
type BindError struct {
	Pos  token.Pos
	Text string
	Err  error
}

// Error returns the positioned message.
func (e *BindError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("%s: %v", e.Pos, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Pos, e.Text, e.Err)
}

// Unwrap returns the underlying error.
func (e *BindError) Unwrap() error {
	return e.Err
}

func bindErrorf(leaf parser.Leaf, format string, args ...any) *BindError {
	return &BindError{
		Pos:  leaf.Pos,
		Text: leaf.Text,
		Err:  fmt.Errorf(format, args...),
	}
}

type bindKind int

const (
	bindOperand bindKind = iota
	bindConstant
	bindComparator
)

// binding says where the value of one leaf comes from.
type binding struct {
	kind       bindKind
	operand    int
	constant   *constLeaf
	comparator Comparator
}

// Program is a compiled expression. It is immutable and may be
// bound any number of times, concurrently.
type Program struct {
	text     string
	tree     *parser.Tree
	bindings []binding
	operands []int
	source   *Tree[Source]
}

// Compile parses src and resolves each leaf against reg. Leaves that
// are Go constant expressions are materialized from their text;
// comparator leaves naming a registered comparator use it; every
// other leaf takes the next operand.
func Compile(reg *Registry, src string) (*Program, error) {
	tree, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}

	p := &Program{
		text:     src,
		tree:     tree,
		bindings: make([]binding, len(tree.Leaves)),
	}

	for _, leaf := range tree.Leaves {
		b := &p.bindings[leaf.ID]

		if leaf.Role == parser.RoleComparator {
			if c, ok := reg.Lookup(leaf.Text); ok {
				b.kind = bindComparator
				b.comparator = c
				continue
			}
			if leaf.Synthetic() {
				return nil, &BindError{
					Pos:  leaf.Pos,
					Text: leaf.Text,
					Err:  ErrUnknownComparator,
				}
			}
		} else if c, ok := evalConst(leaf.Text); ok {
			b.kind = bindConstant
			b.constant = c
			continue
		}

		b.kind = bindOperand
		b.operand = len(p.operands)
		p.operands = append(p.operands, leaf.ID)
	}

	if err := p.checkConstants(); err != nil {
		return nil, err
	}

	p.source = Mirror(tree.Root, func(n *parser.Node) Source {
		if n.Kind == parser.KindBool {
			return Source{Text: tree.Leaves[n.Leaf].Text}
		}
		return Source{
			Text: p.nodeText(n),
			LHS:  tree.Leaves[n.LHS].Text,
			RHS:  tree.Leaves[n.RHS].Text,
		}
	})
	return p, nil
}

// checkConstants rejects nodes whose leaves are all constants and
// still cannot be bound, so the error surfaces at compile time.
func (p *Program) checkConstants() error {
	var err error
	p.tree.Root.Walk(func(n *parser.Node) {
		if err != nil {
			return
		}
		switch n.Kind {
		case parser.KindBool:
			if p.bindings[n.Leaf].kind == bindConstant {
				_, err = p.boolLeaf(n, nil)
			}
		case parser.KindCmp:
			if p.bindings[n.LHS].kind == bindConstant &&
				p.bindings[n.RHS].kind == bindConstant {
				_, _, err = p.comparison(n, nil)
			}
		}
	})
	return err
}

// Text returns the full source the program was compiled from.
func (p *Program) Text() string {
	return p.text
}

// Source returns the expression text without the message tail.
func (p *Program) Source() string {
	return p.tree.Source()
}

// Tree returns the parse tree.
func (p *Program) Tree() *parser.Tree {
	return p.tree
}

// SourceTree returns the source-text tree mirroring the AST.
func (p *Program) SourceTree() *Tree[Source] {
	return p.source
}

// Operands returns the number of operands Bind expects.
func (p *Program) Operands() int {
	return len(p.operands)
}

// OperandLeaves returns the leaves that consume operands, in
// operand order.
func (p *Program) OperandLeaves() []parser.Leaf {
	out := make([]parser.Leaf, 0, len(p.operands))
	for _, id := range p.operands {
		out = append(out, p.tree.Leaves[id])
	}
	return out
}

// Bind captures every operand exactly once and checks that each
// operator is defined on its operands.
func (p *Program) Bind(operands ...any) (*Expr, error) {
	if len(operands) != len(p.operands) {
		return nil, &BindError{
			Pos: token.Pos{Line: 1, Col: 1},
			Err: fmt.Errorf(
				"expression %q needs %d operands, got %d",
				p.Source(), len(p.operands), len(operands),
			),
		}
	}

	x := &Expr{
		program:     p,
		slots:       make([]*capability.Slot, len(p.tree.Leaves)),
		comparators: make([]Comparator, len(p.tree.Leaves)),
	}

	var err error
	p.tree.Root.Walk(func(n *parser.Node) {
		if err == nil {
			err = x.bindNode(n, operands)
		}
	})
	if err != nil {
		return nil, err
	}

	for _, id := range p.tree.Args {
		v, err := p.leafValue(id, operands, nil)
		if err != nil {
			return nil, bindErrorf(p.tree.Leaves[id], "%v", err)
		}
		x.capture(id, v)
	}
	return x, nil
}

// leafValue materializes leaf id. peer is the type of the other side
// of a comparison, or nil.
func (p *Program) leafValue(
	id int,
	operands []any,
	peer reflect.Type,
) (reflect.Value, error) {
	b := p.bindings[id]
	switch b.kind {
	case bindConstant:
		return b.constant.valueFor(peer)
	case bindOperand:
		return reflect.ValueOf(operands[b.operand]), nil
	default:
		return reflect.Value{}, errors.New("comparator used as a value")
	}
}

func (p *Program) boolLeaf(n *parser.Node, operands []any) (reflect.Value, error) {
	leaf := p.tree.Leaves[n.Leaf]
	v, err := p.leafValue(n.Leaf, operands, nil)
	if err != nil {
		return v, bindErrorf(leaf, "%v", err)
	}
	if !v.IsValid() {
		return v, bindErrorf(leaf, "nil used as a condition")
	}
	if v.Kind() != reflect.Bool {
		return v, bindErrorf(leaf, "non-boolean condition of type %s", v.Type())
	}
	return v, nil
}

// comparison materializes both sides of a relational node. An
// untyped constant takes the type of the other side; two untyped
// constants use the wider default type.
func (p *Program) comparison(
	n *parser.Node,
	operands []any,
) (reflect.Value, reflect.Value, error) {
	lb, rb := p.bindings[n.LHS], p.bindings[n.RHS]
	lhsLeaf := p.tree.Leaves[n.LHS]

	var l, r reflect.Value
	var err error
	switch {
	case lb.kind == bindConstant && rb.kind == bindConstant:
		l, r, err = constPair(lb.constant, rb.constant)
	case lb.kind == bindConstant:
		r = reflect.ValueOf(operands[rb.operand])
		l, err = lb.constant.valueFor(typeOf(r))
	case rb.kind == bindConstant:
		l = reflect.ValueOf(operands[lb.operand])
		r, err = rb.constant.valueFor(typeOf(l))
	default:
		l = reflect.ValueOf(operands[lb.operand])
		r = reflect.ValueOf(operands[rb.operand])
	}
	if err != nil {
		return l, r, bindErrorf(lhsLeaf, "%v", err)
	}

	erased := lb.kind != bindConstant || rb.kind != bindConstant
	if err := checkRelational(n.Op, l, r, erased); err != nil {
		return l, r, &BindError{
			Pos:  lhsLeaf.Pos,
			Text: p.nodeText(n),
			Err:  err,
		}
	}
	return l, r, nil
}

// nodeText is the source text of a comparison node.
func (p *Program) nodeText(n *parser.Node) string {
	return p.tree.Stream.Text(
		p.tree.Leaves[n.LHS].Start, p.tree.Leaves[n.RHS].End,
	)
}

func constPair(a, b *constLeaf) (reflect.Value, reflect.Value, error) {
	var t reflect.Type
	switch {
	case a.isNil() || b.isNil():
		l, err := a.value()
		if err != nil {
			return l, reflect.Value{}, err
		}
		r, err := b.value()
		return l, r, err
	case a.untyped() && b.untyped():
		t = widest(a, b)
	case a.untyped():
		t = b.goType()
	case b.untyped() || a.goType() == b.goType():
		t = a.goType()
	default:
		return reflect.Value{}, reflect.Value{}, fmt.Errorf(
			"mismatched types %s and %s", a.goType(), b.goType(),
		)
	}

	l, err := a.convert(t)
	if err != nil {
		return l, reflect.Value{}, err
	}
	r, err := b.convert(t)
	return l, r, err
}

func typeOf(v reflect.Value) reflect.Type {
	if !v.IsValid() {
		return nil
	}
	return v.Type()
}
