package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"digital.vasic.equate/pkg/assertion"
	"digital.vasic.equate/pkg/parser"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [flags] <expression>",
		Short: "Print the syntax tree of an assertion expression",
		Long: `Parse decomposes an expression into its combinators, comparisons and
leaves, and shows which leaves take operands`,
		Args: cobra.ExactArgs(1),
		RunE: runParse,
	}
	cmd.Flags().String("format", "tree", "output format (tree|sexpr|json)")
	cmd.Flags().StringSlice("comparator", nil, "comparator names registered at run time")
	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	names, err := cmd.Flags().GetStringSlice("comparator")
	if err != nil {
		return fmt.Errorf("failed to get comparator flag: %w", err)
	}

	reg := assertion.NewRegistry()
	for _, name := range names {
		reg.Replace(name, runtimeComparator)
	}
	p, err := assertion.Compile(reg, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "tree":
		colored, err := useColor(cmd, stdoutFile(cmd))
		if err != nil {
			return err
		}
		return writeTree(out, p, newTreeStyles(colored))
	case "sexpr":
		_, err := fmt.Fprintln(out, p.Tree().String())
		return err
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(programJSON(p))
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// runtimeComparator stands for a comparator registered by the
// program under test.
var runtimeComparator = assertion.Func{
	Predicate: func(_, _ any) bool { return false },
	Header:    "%s ? %s",
}

type styleFunc func(strs ...string) string

type treeStyles struct {
	kind    styleFunc
	text    styleFunc
	operand styleFunc
	dim     styleFunc
}

func newTreeStyles(colored bool) treeStyles {
	if !colored {
		plain := func(strs ...string) string { return strings.Join(strs, " ") }
		return treeStyles{plain, plain, plain, plain}
	}
	return treeStyles{
		kind:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")).Render,
		text:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Render,
		operand: lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Render,
		dim:     lipgloss.NewStyle().Faint(true).Render,
	}
}

// writeTree prints the expression as an indented tree followed by
// its leaves.
func writeTree(w io.Writer, p *assertion.Program, st treeStyles) error {
	tree := p.Tree()
	operand := make(map[int]bool, p.Operands())
	for _, l := range p.OperandLeaves() {
		operand[l.ID] = true
	}
	leaf := func(id int) string {
		l := tree.Leaves[id]
		s := st.text(l.Text)
		if operand[id] {
			s += " " + st.operand("[operand]")
		}
		return s
	}

	var lines []string
	var walk func(n *parser.Node, prefix string, last, root bool)
	walk = func(n *parser.Node, prefix string, last, root bool) {
		branch, next := "├── ", prefix+"│   "
		if last {
			branch, next = "└── ", prefix+"    "
		}
		if root {
			branch, next = "", ""
		}

		var label string
		var children []string
		switch n.Kind {
		case parser.KindBool:
			label = st.kind("bool") + " " + leaf(n.Leaf)
		case parser.KindCmp:
			label = st.kind(n.Op.String())
			children = []string{"lhs " + leaf(n.LHS), "rhs " + leaf(n.RHS)}
		case parser.KindCustomCmp:
			label = st.kind(":"+n.Comparator+":") + " " + comparatorNote(tree, n, operand, st)
			children = []string{"lhs " + leaf(n.LHS), "rhs " + leaf(n.RHS)}
		case parser.KindAnd, parser.KindOr:
			label = st.kind(n.Kind.String())
		}
		lines = append(lines, prefix+branch+label)

		for i, c := range children {
			b := "├── "
			if i == len(children)-1 {
				b = "└── "
			}
			lines = append(lines, next+b+c)
		}
		if n.Left != nil {
			walk(n.Left, next, false, false)
			walk(n.Right, next, true, false)
		}
	}
	walk(tree.Root, "", true, true)

	if tree.Tail >= 0 {
		lines = append(lines, st.dim("message")+" "+st.text(fmt.Sprintf("%q", tree.Format)))
		for _, id := range tree.Args {
			lines = append(lines, "    arg "+leaf(id))
		}
	}
	lines = append(lines, st.dim(fmt.Sprintf("operands: %d", p.Operands())))

	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

func comparatorNote(tree *parser.Tree, n *parser.Node, operand map[int]bool, st treeStyles) string {
	if operand[n.Cmp] {
		return st.operand("[operand]")
	}
	if tree.Leaves[n.Cmp].Synthetic() {
		return st.dim("[implicit]")
	}
	return st.dim("[registered]")
}

type nodeJSON struct {
	Kind       string      `json:"kind"`
	Op         string      `json:"op,omitempty"`
	Comparator string      `json:"comparator,omitempty"`
	Value      string      `json:"value,omitempty"`
	LHS        string      `json:"lhs,omitempty"`
	RHS        string      `json:"rhs,omitempty"`
	Children   []*nodeJSON `json:"children,omitempty"`
}

type leafJSON struct {
	ID      int    `json:"id"`
	Role    string `json:"role"`
	Text    string `json:"text"`
	Line    uint32 `json:"line"`
	Col     uint32 `json:"col"`
	Operand bool   `json:"operand"`
}

type parseJSON struct {
	Source   string     `json:"source"`
	Message  string     `json:"message,omitempty"`
	Root     *nodeJSON  `json:"root"`
	Leaves   []leafJSON `json:"leaves"`
	Operands int        `json:"operands"`
}

func programJSON(p *assertion.Program) parseJSON {
	tree := p.Tree()
	operand := make(map[int]bool, p.Operands())
	for _, l := range p.OperandLeaves() {
		operand[l.ID] = true
	}

	var node func(n *parser.Node) *nodeJSON
	node = func(n *parser.Node) *nodeJSON {
		out := &nodeJSON{Kind: n.Kind.String()}
		switch n.Kind {
		case parser.KindBool:
			out.Value = tree.Leaves[n.Leaf].Text
		case parser.KindCmp:
			out.Op = n.Op.String()
			out.LHS, out.RHS = tree.Leaves[n.LHS].Text, tree.Leaves[n.RHS].Text
		case parser.KindCustomCmp:
			out.Comparator = n.Comparator
			out.LHS, out.RHS = tree.Leaves[n.LHS].Text, tree.Leaves[n.RHS].Text
		case parser.KindAnd, parser.KindOr:
			out.Children = []*nodeJSON{node(n.Left), node(n.Right)}
		}
		return out
	}

	res := parseJSON{
		Source:   p.Source(),
		Message:  tree.Format,
		Root:     node(tree.Root),
		Operands: p.Operands(),
	}
	for _, l := range tree.Leaves {
		res.Leaves = append(res.Leaves, leafJSON{
			ID:      l.ID,
			Role:    l.Role.String(),
			Text:    l.Text,
			Line:    l.Pos.Line,
			Col:     l.Pos.Col,
			Operand: operand[l.ID],
		})
	}
	return res
}
