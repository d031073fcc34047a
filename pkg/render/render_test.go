package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.equate/pkg/assertion"
	"digital.vasic.equate/pkg/capability"
)

var testLoc = Location{File: "calc_test.go", Line: 12, Col: 2}

func message(t *testing.T, src string, operands ...any) *Message {
	t.Helper()
	p, err := assertion.Compile(assertion.NewRegistry(), src)
	require.NoError(t, err)
	x, err := p.Bind(operands...)
	require.NoError(t, err)
	require.False(t, x.Eval(), "expression must fail")
	return NewMessage(x, testLoc)
}

func TestRender_ScenarioB(t *testing.T) {
	out := New(Options{}).Render(message(t, "3 == 4"))

	assert.Equal(t, strings.Join([]string{
		"Assertion failed at calc_test.go:12:2",
		"3 == 4",
		"- 3 = 3",
		"- 4 = 4",
	}, "\n"), out)
}

func TestRender_ScenarioC_OmitsPassingOr(t *testing.T) {
	out := New(Options{}).Render(message(t,
		"all(true == false, 3 < 2, any(false, true))"))

	assert.Equal(t, strings.Join([]string{
		"Assertion failed at calc_test.go:12:2",
		"true == false",
		"- true = true",
		"- false = false",
		"3 < 2",
		"- 3 = 3",
		"- 2 = 2",
	}, "\n"), out)
	assert.NotContains(t, out, "any")
}

func TestRender_ScenarioD_Opaque(t *testing.T) {
	type handle struct{ ch chan int }

	out := New(Options{}).Render(message(t, "x == y",
		handle{ch: make(chan int)}, handle{ch: make(chan int)}))

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "x == y", lines[1])
	placeholder := `^- [xy] = <object of type "render\.handle" at address 0x[0-9a-f]+>$`
	assert.Regexp(t, placeholder, lines[2])
	assert.Regexp(t, placeholder, lines[3])
}

func TestRender_ScenarioE_CustomHeader(t *testing.T) {
	out := New(Options{}).Render(message(t, "0.1 :tol: 0.2",
		assertion.ApproxEq{Abs: 0.01}))

	assert.Equal(t, strings.Join([]string{
		"Assertion failed at calc_test.go:12:2",
		"0.1 ~ 0.2, with absolute tolerance 1.0e-02",
		"- 0.1 = 0.1",
		"- 0.2 = 0.2",
	}, "\n"), out)
}

func TestRender_AndRendersOnlyFailingChildren(t *testing.T) {
	out := New(Options{}).Explain(message(t,
		"all(a == 1, b == 2, ok)", 1, 3, true))

	assert.Equal(t, "b == 2\n- b = 3\n- 2 = 2", out)
}

func TestRender_OrRendersBothWhenBothFail(t *testing.T) {
	out := New(Options{}).Explain(message(t,
		"any(a, b > 2)", false, 1))

	assert.Equal(t, "- a = false\nb > 2\n- b = 1\n- 2 = 2", out)
}

func TestRender_NestedOrInsideAnd(t *testing.T) {
	out := New(Options{}).Explain(message(t,
		"all(any(a, b), c)", false, false, true))

	assert.Equal(t, "- a = false\n- b = false", out)
}

func TestRender_UserMessage(t *testing.T) {
	out := New(Options{}).Render(message(t,
		`ok, "batch %d of %s", i, name`, false, 3, "import"))

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "batch 3 of import", lines[1])
	assert.Equal(t, "- ok = false", lines[2])
}

func TestRender_Strings(t *testing.T) {
	out := New(Options{}).Explain(message(t,
		"name == want", "alice", "bob"))
	assert.Contains(t, out, `- name = "alice"`)
	assert.Contains(t, out, `- want = "bob"`)
}

func TestRender_Redaction(t *testing.T) {
	r := New(Options{Redact: []string{"password", "Token"}})

	out := r.Explain(message(t, "password == want", "hunter2", "secret"))
	assert.Contains(t, out, "- password = "+Redacted)
	assert.Contains(t, out, `- want = "secret"`)
	assert.NotContains(t, out, "hunter2")

	out = r.Explain(message(t, "cfg.token != \"\"", ""))
	assert.Contains(t, out, "- cfg.token = "+Redacted)
}

func TestRender_Truncation(t *testing.T) {
	r := New(Options{MaxWidth: 8})
	out := r.Explain(message(t, "s == \"x\"", strings.Repeat("y", 40)))

	assert.Contains(t, out, `- s = "yyyyyy…`)
	assert.NotContains(t, out, strings.Repeat("y", 10))
}

func TestRender_Diff(t *testing.T) {
	r := New(Options{Diff: true, Style: capability.StyleSpew})
	out := r.Explain(message(t, "got == want", [2]int{1, 2}, [2]int{1, 3}))

	assert.Contains(t, out, "diff:")
	assert.Contains(t, out, "--- got")
	assert.Contains(t, out, "+++ want")
	assert.Contains(t, out, "-  (int) 2")
	assert.Contains(t, out, "+  (int) 3")
}

func TestRender_DiffSkipsSingleLineValues(t *testing.T) {
	r := New(Options{Diff: true})
	out := r.Explain(message(t, "a == b", 1, 2))
	assert.NotContains(t, out, "diff:")
}

func TestRender_Color(t *testing.T) {
	out := New(Options{Color: true}).Render(message(t, "3 == 4"))
	assert.Contains(t, out, "\x1b[")

	plain := New(Options{Color: false}).Render(message(t, "3 == 4"))
	assert.NotContains(t, plain, "\x1b[")
}

func TestLocation_String(t *testing.T) {
	assert.Equal(t, "a.go:3:7", Location{File: "a.go", Line: 3, Col: 7}.String())
}
