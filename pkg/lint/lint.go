// Package lint finds assertion calls in Go source and reports
// expressions that would panic at run time: syntax errors, unknown
// comparators and operand counts that do not match the expression.
package lint

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"digital.vasic.equate/pkg/assertion"
	"digital.vasic.equate/pkg/callsite"
)

// ImportPath is the import path of the assertion façade.
const ImportPath = "digital.vasic.equate/pkg/equate"

// exprArg maps each checked call name to the index of its
// expression argument. Calls with an operand list also have their
// operand count checked.
var exprArg = map[string]struct {
	index    int
	operands bool
}{
	"Assert":      {0, true},
	"DebugAssert": {0, true},
	"Check":       {1, true},
	"Compile":     {0, false},
	"MustCompile": {0, false},
}

// Problem is one malformed assertion.
type Problem struct {
	Pos        token.Position
	Expression string
	Msg        string
}

// String formats the problem as file:line:col: msg.
func (p Problem) String() string {
	return fmt.Sprintf("%s:%d:%d: %s", p.Pos.Filename, p.Pos.Line, p.Pos.Column, p.Msg)
}

// Checker checks Go files for malformed assertions. It is safe for
// concurrent use.
type Checker struct {
	registry *assertion.Registry
	exclude  []string
	workers  int
}

// Option configures a Checker.
type Option func(*Checker)

// WithComparators declares comparator names that are registered at
// run time, so :name: does not consume an operand.
func WithComparators(names ...string) Option {
	return func(c *Checker) {
		for _, name := range names {
			_ = c.registry.Register(name, placeholder)
		}
	}
}

// WithExclude skips paths matching any of the glob patterns. A
// pattern matches the path relative to the checked root or its base
// name.
func WithExclude(patterns ...string) Option {
	return func(c *Checker) {
		c.exclude = append(c.exclude, patterns...)
	}
}

// WithWorkers bounds the number of files checked at once.
func WithWorkers(n int) Option {
	return func(c *Checker) {
		c.workers = n
	}
}

// placeholder stands for comparators only known at run time.
var placeholder = assertion.Func{
	Predicate: func(_, _ any) bool { return false },
	Header:    "%s ? %s",
}

// NewChecker creates a Checker.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		registry: assertion.NewRegistry(),
		workers:  8,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckPaths checks every .go file under paths. Directories are
// walked recursively, skipping vendor, testdata and directories
// starting with "." or "_". Problems are sorted by position.
func (c *Checker) CheckPaths(ctx context.Context, paths []string) ([]Problem, error) {
	var files []string
	for _, root := range paths {
		found, err := c.collect(strings.TrimSuffix(root, "/..."))
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}

	results := make([][]Problem, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.workers, 1))
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			problems, err := c.CheckFile(file)
			if err != nil {
				return err
			}
			results[i] = problems
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Problem
	for _, r := range results {
		all = append(all, r...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i].Pos, all[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return all, nil
}

func (c *Checker) collect(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		if d.IsDir() {
			name := d.Name()
			if path != root && (name == "vendor" || name == "testdata" ||
				strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			if path != root && c.excluded(rel, name) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".go") && !c.excluded(rel, d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

func (c *Checker) excluded(rel, base string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range c.exclude {
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// CheckFile checks one Go file.
func (c *Checker) CheckFile(path string) ([]Problem, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return c.CheckSource(path, src)
}

// CheckSource checks the Go source src of filename. Files that do
// not import the façade have no problems.
func (c *Checker) CheckSource(filename string, src []byte) ([]Problem, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	local, imported := importName(f)
	if !imported {
		return nil, nil
	}
	others := otherImports(f)

	var problems []Problem
	ast.Inspect(f, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		if p, ok := c.checkCall(fset, call, local, others); ok {
			problems = append(problems, p)
		}
		return true
	})
	return problems, nil
}

func (c *Checker) checkCall(
	fset *token.FileSet,
	call *ast.CallExpr,
	local string,
	others map[string]bool,
) (Problem, bool) {
	name := callsite.Name(call.Fun)
	arg, ok := exprArg[name]
	if !ok {
		return Problem{}, false
	}

	switch fun := call.Fun.(type) {
	case *ast.Ident:
		if local != "." {
			return Problem{}, false
		}
	case *ast.SelectorExpr:
		if id, ok := fun.X.(*ast.Ident); ok && id.Name != local && others[id.Name] {
			return Problem{}, false
		}
	}

	if len(call.Args) <= arg.index {
		return Problem{}, false
	}
	lit, ok := call.Args[arg.index].(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return Problem{}, false
	}
	expr, err := strconv.Unquote(lit.Value)
	if err != nil {
		return Problem{}, false
	}

	problem := func(format string, args ...any) (Problem, bool) {
		return Problem{
			Pos:        fset.Position(lit.Pos()),
			Expression: expr,
			Msg:        fmt.Sprintf(format, args...),
		}, true
	}

	p, err := assertion.Compile(c.registry, expr)
	if err != nil {
		return problem("malformed assertion %q: %v", expr, err)
	}
	if !arg.operands || call.Ellipsis.IsValid() {
		return Problem{}, false
	}
	if got := len(call.Args) - arg.index - 1; got != p.Operands() {
		return problem("assertion %q needs %d operands, got %d", expr, p.Operands(), got)
	}
	return Problem{}, false
}

// importName returns the local name of the façade import of f.
func importName(f *ast.File) (string, bool) {
	for _, imp := range f.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil || path != ImportPath {
			continue
		}
		if imp.Name != nil {
			return imp.Name.Name, true
		}
		return "equate", true
	}
	return "", false
}

// otherImports returns the local names of every other import.
func otherImports(f *ast.File) map[string]bool {
	names := make(map[string]bool, len(f.Imports))
	for _, imp := range f.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil || path == ImportPath {
			continue
		}
		if imp.Name != nil {
			names[imp.Name.Name] = true
			continue
		}
		names[filepath.Base(path)] = true
	}
	return names
}
