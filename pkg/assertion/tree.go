package assertion

import (
	"digital.vasic.equate/pkg/capability"
	"digital.vasic.equate/pkg/parser"
)

// Tree mirrors the shape of an expression AST. Leaf and comparison
// nodes carry Value; And and Or nodes carry Left and Right.
type Tree[T any] struct {
	Kind  parser.Kind
	Value T
	Left  *Tree[T]
	Right *Tree[T]
}

// Leaves returns the leaf and comparison values in left-to-right
// order.
func (t *Tree[T]) Leaves() []T {
	var out []T
	t.walk(func(n *Tree[T]) {
		if n.Kind.IsLeaf() {
			out = append(out, n.Value)
		}
	})
	return out
}

func (t *Tree[T]) walk(fn func(*Tree[T])) {
	if t == nil {
		return
	}
	fn(t)
	t.Left.walk(fn)
	t.Right.walk(fn)
}

// Mirror builds a Tree with the shape of n, computing each leaf
// value with fn.
func Mirror[T any](n *parser.Node, fn func(*parser.Node) T) *Tree[T] {
	if n == nil {
		return nil
	}
	t := &Tree[T]{Kind: n.Kind}
	if n.Kind.IsLeaf() {
		t.Value = fn(n)
		return t
	}
	t.Left = Mirror(n.Left, fn)
	t.Right = Mirror(n.Right, fn)
	return t
}

// Source is the source text of one node. Bool leaves use Text;
// comparisons use LHS and RHS.
type Source struct {
	Text string
	LHS  string
	RHS  string
}

// Dispatch is the dispatch-table view of one node: the capability
// entries of its operands and, for comparisons, the comparator that
// renders the header.
type Dispatch struct {
	Value      *capability.Entry
	LHS        *capability.Entry
	RHS        *capability.Entry
	Comparator Comparator
}

// Values holds the captured operands of one node.
type Values struct {
	Value *capability.Slot
	LHS   *capability.Slot
	RHS   *capability.Slot
}
