package lint

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const source = `package sample

import (
	"regexp"
	"testing"

	"digital.vasic.equate/pkg/equate"
)

var re = regexp.MustCompile("([a-z]+")

func TestSample(t *testing.T) {
	equate.Assert("x == y", 1, 2)
	equate.Assert("x ==", 1)
	equate.Assert("x == y", 1)
	equate.Check(t, "all(a, b)", true, false)
	equate.Check(t, "any(a,,b)", true)
	equate.DebugAssert("n < 10", 3)
	equate.Assert("a :near: b", 1, 2)
	equate.Assert(expr, 1)
	equate.Assert("x == y", args...)
	c := equate.MustCompile("all(")
	e.Assert("a :within: b", 1, 2)
}
`

func problems(t *testing.T, c *Checker, src string) []string {
	t.Helper()
	found, err := c.CheckSource("sample_test.go", []byte(src))
	require.NoError(t, err)
	var out []string
	for _, p := range found {
		out = append(out, p.String())
	}
	return out
}

func TestCheckSource(t *testing.T) {
	got := problems(t, NewChecker(), source)

	require.Len(t, got, 6)
	assert.Contains(t, got[0], "sample_test.go:14:16: malformed assertion \"x ==\"")
	assert.Equal(t, `sample_test.go:15:16: assertion "x == y" needs 2 operands, got 1`, got[1])
	assert.Contains(t, got[2], "sample_test.go:17:18: malformed assertion \"any(a,,b)\"")
	assert.Equal(t, `sample_test.go:19:16: assertion "a :near: b" needs 3 operands, got 2`, got[3])
	assert.Contains(t, got[4], "sample_test.go:22:26: malformed assertion \"all(\"")
	assert.Equal(t, `sample_test.go:23:11: assertion "a :within: b" needs 3 operands, got 2`, got[5])
}

func TestCheckSource_DeclaredComparators(t *testing.T) {
	got := problems(t, NewChecker(WithComparators("near", "within")), source)

	assert.Len(t, got, 4)
	for _, p := range got {
		assert.NotContains(t, p, "near")
		assert.NotContains(t, p, "within")
	}
}

func TestCheckSource_NoImport(t *testing.T) {
	got := problems(t, NewChecker(), `package sample

func f() { Assert("x ==") }
`)
	assert.Empty(t, got)
}

func TestCheckSource_ImportAliases(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{
		{"alias", `package s
import eq "digital.vasic.equate/pkg/equate"
func f() { eq.Assert("x ==") }
`, 1},
		{"dot import", `package s
import . "digital.vasic.equate/pkg/equate"
func f() { Assert("x ==") }
`, 1},
		{"plain identifier without dot import", `package s
import "digital.vasic.equate/pkg/equate"
var _ = equate.Default
func f() { Assert("x ==") }
`, 0},
		{"other package", `package s
import (
	"digital.vasic.equate/pkg/equate"
	"example.com/other"
)
var _ = equate.Default
func f() { other.Assert("x ==") }
`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, problems(t, NewChecker(), tt.src), tt.want)
		})
	}
}

func TestCheckSource_InvalidGo(t *testing.T) {
	_, err := NewChecker().CheckSource("bad.go", []byte("package"))
	assert.Error(t, err)
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

const bad = `package p
import "digital.vasic.equate/pkg/equate"
func f() { equate.Assert("x ==") }
`

func TestCheckPaths(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.go":                bad,
		"sub/b.go":            bad,
		"sub/gen/c.go":        bad,
		"vendor/v.go":         bad,
		"testdata/t.go":       bad,
		".hidden/h.go":        bad,
		"_scratch/s.go":       bad,
		"sub/notes.txt":       "Assert(\"x ==\")",
		"sub/zz_generated.go": bad,
	})

	c := NewChecker(WithExclude("sub/gen", "zz_*.go"), WithWorkers(2))
	got, err := c.CheckPaths(context.Background(), []string{root + "/..."})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, filepath.Join(root, "a.go"), got[0].Pos.Filename)
	assert.Equal(t, filepath.Join(root, "sub", "b.go"), got[1].Pos.Filename)
}

func TestCheckPaths_SingleFile(t *testing.T) {
	root := writeTree(t, map[string]string{"a.go": bad})

	got, err := NewChecker().CheckPaths(context.Background(),
		[]string{filepath.Join(root, "a.go")})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCheckPaths_Errors(t *testing.T) {
	_, err := NewChecker().CheckPaths(context.Background(),
		[]string{filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)

	root := writeTree(t, map[string]string{"broken.go": "package"})
	_, err = NewChecker().CheckPaths(context.Background(), []string{root})
	assert.Error(t, err)
}

func TestCheckPaths_Canceled(t *testing.T) {
	root := writeTree(t, map[string]string{"a.go": bad})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewChecker().CheckPaths(ctx, []string{root})
	assert.ErrorIs(t, err, context.Canceled)
}
