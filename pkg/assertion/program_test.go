package assertion

import (
	"errors"
	"io"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.equate/pkg/parser"
)

func mustCompile(t *testing.T, src string) *Program {
	t.Helper()
	p, err := Compile(NewRegistry(), src)
	require.NoError(t, err)
	return p
}

func TestCompile_OperandCount(t *testing.T) {
	tests := []struct {
		src      string
		operands int
		leaves   []string
	}{
		{"x == y", 2, []string{"x", "y"}},
		{"x == 3", 1, []string{"x"}},
		{"2+2 == 4", 0, nil},
		{"all(ok, n < 10, s == \"a\")", 3, []string{"ok", "n", "s"}},
		{"err == nil", 1, []string{"err"}},
		{"len(\"ab\") == n", 1, []string{"n"}},
		{"got ~ want", 2, []string{"got", "want"}},
		{"a :contains: b", 2, []string{"a", "b"}},
		{"a :near: b", 3, []string{"a", "near", "b"}},
		{"ok, \"case %d: %s\", i, \"fixed\"", 2, []string{"ok", "i"}},
		{"x == 1<<3", 1, []string{"x"}},
		{"int64(5) == d", 1, []string{"d"}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			p := mustCompile(t, tt.src)
			assert.Equal(t, tt.operands, p.Operands())

			var texts []string
			for _, l := range p.OperandLeaves() {
				texts = append(texts, l.Text)
			}
			assert.Equal(t, tt.leaves, texts)
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"syntax", "x ==", "missing right operand"},
		{"non-boolean constant", "all(ok, 3)", "non-boolean condition"},
		{"nil condition", "nil", "nil used as a condition"},
		{"constant mismatch", `1 == "a"`, "cannot be represented"},
		{"typed constant mismatch", "int8(1) == int16(1)", "mismatched types"},
		{"ordering bools", "true < false", "not defined on bool"},
		{"ordering nil", "nil < nil", "not defined on nil"},
		{"constant against nil", "1 == nil", "and nil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(NewRegistry(), tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestCompile_SyntaxErrorIsParserError(t *testing.T) {
	_, err := Compile(NewRegistry(), "all(a,,b)")

	var perr *parser.Error
	assert.ErrorAs(t, err, &perr)
}

func TestCompile_UnknownApprox(t *testing.T) {
	reg := &Registry{comparators: map[string]Comparator{}}
	_, err := Compile(reg, "a ~ b")
	assert.ErrorIs(t, err, ErrUnknownComparator)
}

func TestProgram_SourceTree(t *testing.T) {
	p := mustCompile(t, `all(x == y, ok, a :contains: b), "msg"`)

	assert.Equal(t, "all(x == y, ok, a :contains: b)", p.Source())
	assert.Equal(t, []Source{
		{Text: "x == y", LHS: "x", RHS: "y"},
		{Text: "ok"},
		{Text: "a :contains: b", LHS: "a", RHS: "b"},
	}, p.SourceTree().Leaves())
}

func TestBind_OperandCountMismatch(t *testing.T) {
	p := mustCompile(t, "x == y")

	_, err := p.Bind(1)
	require.Error(t, err)

	var berr *BindError
	require.ErrorAs(t, err, &berr)
	assert.Contains(t, berr.Error(), "needs 2 operands, got 1")
}

func TestBind_TypeErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		operands []any
		msg      string
	}{
		{"non-boolean operand", "ok", []any{1}, "non-boolean condition of type int"},
		{"mismatched ordering", "a < b", []any{1, int64(2)}, "mismatched types"},
		{"uncomparable", "a == b", []any{[]int{1}, []int{1}}, "not defined on []int"},
		{"unordered", "a < b", []any{true, false}, "not defined on bool"},
		{"constant for peer", "d == 2.5", []any{3}, "cannot be represented as int"},
		{"not a comparator", "a :near: b", []any{1, 2, 3}, "not a comparator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustCompile(t, tt.src)
			_, err := p.Bind(tt.operands...)
			require.Error(t, err)

			var berr *BindError
			require.ErrorAs(t, err, &berr)
			assert.Contains(t, berr.Error(), tt.msg)
		})
	}
}

func TestBind_UntypedConstantTakesPeerType(t *testing.T) {
	type celsius float64

	tests := []struct {
		name     string
		src      string
		operands []any
		want     bool
	}{
		{"named float", "t > 20", []any{celsius(21.5)}, true},
		{"duration", "d < 5", []any{time.Duration(4)}, true},
		{"byte rune", "b == 'a'", []any{byte('a')}, true},
		{"integral float", "n == 2.0", []any{2}, true},
		{"uint", "u >= 3", []any{uint16(2)}, false},
		{"string", `s == "x"`, []any{"x"}, true},
		{"mixed untyped", "1 < 2.5", nil, true},
		{"typed and untyped", "int8(3) > 2", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustCompile(t, tt.src)
			x, err := p.Bind(tt.operands...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, x.Eval())
		})
	}
}

func TestBind_Nil(t *testing.T) {
	var nilErr error
	var ptr *int
	pathErr := &os.PathError{Op: "open", Path: "x", Err: io.EOF}

	tests := []struct {
		name    string
		src     string
		operand any
		want    bool
	}{
		{"nil interface", "err == nil", nilErr, true},
		{"nil pointer", "p == nil", ptr, true},
		{"non-nil error", "err != nil", pathErr, true},
		{"nil on the left", "nil == err", pathErr, false},
		{"errno is not nil", "err != nil", syscall.EINVAL, true},
		{"errno equals nil", "err == nil", syscall.EINVAL, false},
		{"nil equals errno", "nil == err", syscall.EINVAL, false},
		{"int operand is not nil", "n != nil", 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, err := mustCompile(t, tt.src).Bind(tt.operand)
			require.NoError(t, err)
			assert.Equal(t, tt.want, x.Eval())
		})
	}
}

func TestBind_EqualityAcrossDynamicTypes(t *testing.T) {
	x, err := mustCompile(t, "err == target").Bind(
		error(&os.PathError{}), io.EOF,
	)
	require.NoError(t, err)
	assert.False(t, x.Eval())

	x, err = mustCompile(t, "err == target").Bind(io.EOF, io.EOF)
	require.NoError(t, err)
	assert.True(t, x.Eval())
}

func TestBindError_Unwrap(t *testing.T) {
	sentinel := errors.New("boom")
	err := &BindError{Text: "x", Err: sentinel}
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, "0:0: x: boom", err.Error())
}
