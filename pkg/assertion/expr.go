package assertion

import (
	"fmt"
	"reflect"

	"digital.vasic.equate/pkg/capability"
	"digital.vasic.equate/pkg/parser"
)

// Expr is a program bound to its operands. It is built, evaluated
// and, on failure, rendered once.
type Expr struct {
	program     *Program
	slots       []*capability.Slot
	comparators []Comparator
	result      *Tree[bool]
}

// bindNode materializes and captures the leaves of one node.
func (x *Expr) bindNode(n *parser.Node, operands []any) error {
	p := x.program
	switch n.Kind {
	case parser.KindBool:
		v, err := p.boolLeaf(n, operands)
		if err != nil {
			return err
		}
		x.capture(n.Leaf, v)

	case parser.KindCmp:
		l, r, err := p.comparison(n, operands)
		if err != nil {
			return err
		}
		x.capture(n.LHS, l)
		x.capture(n.RHS, r)

	case parser.KindCustomCmp:
		c, err := x.comparator(n, operands)
		if err != nil {
			return err
		}
		x.comparators[n.Cmp] = c

		for _, id := range []int{n.LHS, n.RHS} {
			v, err := p.leafValue(id, operands, nil)
			if err != nil {
				return bindErrorf(p.tree.Leaves[id], "%v", err)
			}
			x.capture(id, v)
		}
	}
	return nil
}

func (x *Expr) comparator(n *parser.Node, operands []any) (Comparator, error) {
	b := x.program.bindings[n.Cmp]
	if b.kind == bindComparator {
		return b.comparator, nil
	}

	leaf := x.program.tree.Leaves[n.Cmp]
	if b.kind != bindOperand {
		return nil, bindErrorf(leaf, "%w", ErrUnknownComparator)
	}
	c, ok := operands[b.operand].(Comparator)
	if !ok {
		return nil, bindErrorf(leaf,
			"operand of type %T is not a comparator", operands[b.operand])
	}
	return c, nil
}

func (x *Expr) capture(id int, v reflect.Value) {
	x.slots[id] = capability.CaptureValue(v)
}

// Program returns the program x was bound from.
func (x *Expr) Program() *Program {
	return x.program
}

// Eval computes the truth value of the expression. And and Or
// short-circuit; the operands were already captured by Bind, so
// skipping a branch never skips a side effect.
func (x *Expr) Eval() bool {
	if x.result != nil {
		return x.result.Value
	}
	return x.eval(x.program.tree.Root)
}

func (x *Expr) eval(n *parser.Node) bool {
	switch n.Kind {
	case parser.KindAnd:
		return x.eval(n.Left) && x.eval(n.Right)
	case parser.KindOr:
		return x.eval(n.Left) || x.eval(n.Right)
	default:
		return x.leaf(n)
	}
}

func (x *Expr) leaf(n *parser.Node) bool {
	switch n.Kind {
	case parser.KindBool:
		return x.slots[n.Leaf].Value().Bool()
	case parser.KindCmp:
		return compare(n.Op,
			x.slots[n.LHS].Value(), x.slots[n.RHS].Value())
	default:
		return x.comparators[n.Cmp].Test(
			x.slots[n.LHS].Interface(), x.slots[n.RHS].Interface())
	}
}

// Result returns the full result tree. Every leaf is computed and
// And/Or nodes hold the combination of their children.
func (x *Expr) Result() *Tree[bool] {
	if x.result == nil {
		x.result = x.fold(x.program.tree.Root)
	}
	return x.result
}

func (x *Expr) fold(n *parser.Node) *Tree[bool] {
	t := &Tree[bool]{Kind: n.Kind}
	switch n.Kind {
	case parser.KindAnd:
		t.Left, t.Right = x.fold(n.Left), x.fold(n.Right)
		t.Value = t.Left.Value && t.Right.Value
	case parser.KindOr:
		t.Left, t.Right = x.fold(n.Left), x.fold(n.Right)
		t.Value = t.Left.Value || t.Right.Value
	default:
		t.Value = x.leaf(n)
	}
	return t
}

// Source returns the source-text tree.
func (x *Expr) Source() *Tree[Source] {
	return x.program.source
}

// Dispatch returns the dispatch tree: per node, the capability
// entries of the operands and the comparator.
func (x *Expr) Dispatch() *Tree[Dispatch] {
	return Mirror(x.program.tree.Root, func(n *parser.Node) Dispatch {
		switch n.Kind {
		case parser.KindBool:
			return Dispatch{Value: x.slots[n.Leaf].Entry()}
		case parser.KindCmp:
			return Dispatch{
				LHS:        x.slots[n.LHS].Entry(),
				RHS:        x.slots[n.RHS].Entry(),
				Comparator: Relational{Op: n.Op},
			}
		default:
			return Dispatch{
				LHS:        x.slots[n.LHS].Entry(),
				RHS:        x.slots[n.RHS].Entry(),
				Comparator: x.comparators[n.Cmp],
			}
		}
	})
}

// Values returns the tree of captured operands.
func (x *Expr) Values() *Tree[Values] {
	return Mirror(x.program.tree.Root, func(n *parser.Node) Values {
		if n.Kind == parser.KindBool {
			return Values{Value: x.slots[n.Leaf]}
		}
		return Values{LHS: x.slots[n.LHS], RHS: x.slots[n.RHS]}
	})
}

// Message formats the message tail, or returns "" when there is
// none.
func (x *Expr) Message() string {
	tree := x.program.tree
	if tree.Format == "" {
		return ""
	}
	if len(tree.Args) == 0 {
		return tree.Format
	}

	args := make([]any, 0, len(tree.Args))
	for _, id := range tree.Args {
		args = append(args, x.slots[id].Interface())
	}
	return fmt.Sprintf(tree.Format, args...)
}
