package parser

import (
	"fmt"
	"strconv"
	"strings"

	"digital.vasic.equate/pkg/token"
)

// Kind tags the variants of Node.
type Kind int

const (
	// KindBool is an opaque boolean leaf.
	KindBool Kind = iota
	// KindCmp is a relational comparison between two leaves.
	KindCmp
	// KindCustomCmp is a comparison through a user comparator.
	KindCustomCmp
	// KindAnd is the conjunction produced by all(...).
	KindAnd
	// KindOr is the disjunction produced by any(...).
	KindOr
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindCmp:
		return "cmp"
	case KindCustomCmp:
		return "custom"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	default:
		return "unknown"
	}
}

// IsLeaf reports whether nodes of this kind have no children.
func (k Kind) IsLeaf() bool {
	return k == KindBool || k == KindCmp || k == KindCustomCmp
}

// Op is a relational operator.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

// String returns the operator's Go spelling.
func (o Op) String() string {
	switch o {
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	default:
		return "?"
	}
}

// Role describes what a leaf stands for inside its node.
type Role int

const (
	// RoleValue is the operand of a boolean leaf.
	RoleValue Role = iota
	// RoleLHS is the left operand of a comparison.
	RoleLHS
	// RoleRHS is the right operand of a comparison.
	RoleRHS
	// RoleComparator is the comparator of a custom comparison.
	RoleComparator
	// RoleFormatArg is an argument of the message tail.
	RoleFormatArg
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleValue:
		return "value"
	case RoleLHS:
		return "lhs"
	case RoleRHS:
		return "rhs"
	case RoleComparator:
		return "comparator"
	case RoleFormatArg:
		return "arg"
	default:
		return "unknown"
	}
}

// Leaf is one operand of the expression together with its source
// text. Start and End are token indices; synthetic leaves (the
// constants standing for empty combinators and the implicit
// comparator of ~) have Start == End.
type Leaf struct {
	ID    int
	Role  Role
	Text  string
	Start int
	End   int
	Pos   token.Pos
}

// Synthetic reports whether the leaf has no source tokens.
func (l Leaf) Synthetic() bool {
	return l.Start == l.End
}

// Node is the expression AST.
//
// Bool nodes use Leaf. Cmp nodes use Op, LHS and RHS. CustomCmp
// nodes use Comparator (the comparator's name), Cmp (its leaf), LHS
// and RHS. And/Or nodes use Left and Right. Leaf fields hold leaf
// IDs.
type Node struct {
	Kind       Kind
	Op         Op
	Comparator string
	Leaf       int
	Cmp        int
	LHS        int
	RHS        int
	Left       *Node
	Right      *Node
}

// Walk visits n and its descendants in pre-order.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	n.Left.Walk(fn)
	n.Right.Walk(fn)
}

// Format writes n as an S-expression, resolving leaf IDs against
// leaves.
func (n *Node) Format(leaves []Leaf) string {
	var sb strings.Builder
	n.format(&sb, leaves)
	return sb.String()
}

func (n *Node) format(sb *strings.Builder, leaves []Leaf) {
	text := func(id int) string {
		if id >= 0 && id < len(leaves) {
			return strconv.Quote(leaves[id].Text)
		}
		return fmt.Sprintf("#%d", id)
	}

	switch n.Kind {
	case KindBool:
		fmt.Fprintf(sb, "(bool %s)", text(n.Leaf))
	case KindCmp:
		fmt.Fprintf(sb, "(%s %s %s)", n.Op, text(n.LHS), text(n.RHS))
	case KindCustomCmp:
		fmt.Fprintf(sb, "(:%s: %s %s)",
			n.Comparator, text(n.LHS), text(n.RHS))
	case KindAnd, KindOr:
		fmt.Fprintf(sb, "(%s ", n.Kind)
		n.Left.format(sb, leaves)
		sb.WriteString(" ")
		n.Right.format(sb, leaves)
		sb.WriteString(")")
	}
}

// Tree is the result of parsing one assertion.
type Tree struct {
	// Stream holds the scanned tokens.
	Stream *token.Stream

	// Root is the expression AST.
	Root *Node

	// Leaves lists every leaf in discovery order, expression
	// leaves first and message arguments last. Leaves[i].ID == i.
	Leaves []Leaf

	// Tail is the token index where the message tail starts, or
	// -1 when there is none.
	Tail int

	// Format is the unquoted message format string, empty when
	// there is no tail.
	Format string

	// Args holds the leaf IDs of the message arguments.
	Args []int
}

// Source returns the expression text without the message tail.
func (t *Tree) Source() string {
	end := t.Stream.Len()
	if t.Tail >= 0 {
		end = t.Tail - 1
	}
	return t.Stream.Text(0, end)
}

// String returns the S-expression form of the tree.
func (t *Tree) String() string {
	return t.Root.Format(t.Leaves)
}
