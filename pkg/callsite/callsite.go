// Package callsite locates the assertion call that is running:
// runtime.Caller gives the file and line, and the column comes from
// the parsed source of that file.
package callsite

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"digital.vasic.equate/pkg/render"
)

// DefaultNames are the call names a Locator searches for.
var DefaultNames = []string{"Assert", "Check", "DebugAssert"}

// call is one call expression of a source file.
type call struct {
	name      string
	startLine int
	endLine   int
	col       int
}

// Locator resolves call sites. Parsed files are cached for the
// lifetime of the Locator. It is safe for concurrent use.
type Locator struct {
	names map[string]bool
	root  string

	mu    sync.RWMutex
	files map[string][]call
}

// NewLocator creates a Locator for calls named names. With no names
// DefaultNames are used.
func NewLocator(names ...string) *Locator {
	if len(names) == 0 {
		names = DefaultNames
	}
	l := &Locator{
		names: make(map[string]bool, len(names)),
		files: make(map[string][]call),
	}
	for _, n := range names {
		l.names[n] = true
	}
	if wd, err := os.Getwd(); err == nil {
		l.root = wd
	}
	return l
}

// Caller returns the location of the call skip frames above the
// caller of Caller. A frame that cannot be resolved yields the zero
// Location with File "unknown".
func (l *Locator) Caller(skip int) render.Location {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return render.Location{File: "unknown"}
	}
	return render.Location{
		File: l.shorten(file),
		Line: line,
		Col:  l.Column(file, line),
	}
}

// Column returns the 1-based column of the innermost matching call
// that spans line, or 0 when there is none.
func (l *Locator) Column(file string, line int) int {
	var (
		best     call
		found    bool
		fallback int
	)
	for _, c := range l.calls(file) {
		if line < c.startLine || line > c.endLine {
			continue
		}
		if l.names[c.name] {
			if !found || c.startLine > best.startLine ||
				(c.startLine == best.startLine && c.col > best.col) {
				best, found = c, true
			}
			continue
		}
		if c.startLine == line && (fallback == 0 || c.col < fallback) {
			fallback = c.col
		}
	}
	if found {
		return best.col
	}
	return fallback
}

// Reset drops every cached file.
func (l *Locator) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.files = make(map[string][]call)
}

func (l *Locator) calls(file string) []call {
	l.mu.RLock()
	calls, ok := l.files[file]
	l.mu.RUnlock()
	if ok {
		return calls
	}

	calls = scan(file)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.files[file] = calls
	return calls
}

// scan lists the call expressions of file. Files with syntax errors
// contribute what the parser recovered; unreadable files have none.
func scan(file string) []call {
	fset := token.NewFileSet()
	f, _ := parser.ParseFile(fset, file, nil, parser.SkipObjectResolution)
	if f == nil {
		return nil
	}

	var calls []call
	ast.Inspect(f, func(n ast.Node) bool {
		ce, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		start := fset.Position(ce.Pos())
		end := fset.Position(ce.End())
		calls = append(calls, call{
			name:      Name(ce.Fun),
			startLine: start.Line,
			endLine:   end.Line,
			col:       start.Column,
		})
		return true
	})
	return calls
}

// Name returns the called name of fun: the identifier, or the
// selected name of a selector. Generic instantiations are
// unwrapped.
func Name(fun ast.Expr) string {
	switch f := fun.(type) {
	case *ast.Ident:
		return f.Name
	case *ast.SelectorExpr:
		return f.Sel.Name
	case *ast.IndexExpr:
		return Name(f.X)
	case *ast.IndexListExpr:
		return Name(f.X)
	case *ast.ParenExpr:
		return Name(f.X)
	}
	return ""
}

// shorten makes file relative to the working directory when it lies
// below it.
func (l *Locator) shorten(file string) string {
	if l.root == "" {
		return file
	}
	rel, err := filepath.Rel(l.root, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return file
	}
	return filepath.ToSlash(rel)
}

var defaultLocator = NewLocator()

// Caller resolves the call site skip frames above its caller with
// the default Locator.
func Caller(skip int) render.Location {
	return defaultLocator.Caller(skip + 1)
}
