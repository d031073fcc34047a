package report

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.equate/pkg/assertion"
	"digital.vasic.equate/pkg/render"
)

var testLoc = render.Location{File: "calc_test.go", Line: 12, Col: 2}

func failed(t *testing.T, src string, operands ...any) *AssertionError {
	t.Helper()
	p, err := assertion.Compile(assertion.NewRegistry(), src)
	require.NoError(t, err)
	x, err := p.Bind(operands...)
	require.NoError(t, err)
	require.False(t, x.Eval())
	return NewAssertionError(render.New(render.Options{}), x, testLoc)
}

type fakeT struct {
	helpers int
	fatal   []any
}

func (f *fakeT) Helper()           { f.helpers++ }
func (f *fakeT) Fatal(args ...any) { f.fatal = append(f.fatal, args...) }

func TestAssertionError(t *testing.T) {
	err := failed(t, `3 == 4, "scenario %s", "B"`)

	assert.Equal(t, testLoc, err.Location)
	assert.Equal(t, "3 == 4", err.Expression)
	assert.Equal(t, "scenario B", err.Message)
	assert.Equal(t,
		"Assertion failed at calc_test.go:12:2\nscenario B\n3 == 4\n- 3 = 3\n- 4 = 4",
		err.Error())
	assert.False(t, err.Time.IsZero())
	assert.ErrorIs(t, err, ErrAssertionFailed)

	wrapped := fmt.Errorf("checking: %w", err)
	var target *AssertionError
	require.ErrorAs(t, wrapped, &target)
	assert.Same(t, err, target)
}

func TestAssertionError_Fallbacks(t *testing.T) {
	var nilErr *AssertionError
	assert.Equal(t, "assertion failed", nilErr.Error())

	bare := &AssertionError{Location: testLoc, Expression: "ok"}
	assert.Equal(t, "assertion failed at calc_test.go:12:2: ok", bare.Error())
}

func TestPanicSink(t *testing.T) {
	err := failed(t, "ok", false)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		got, ok := r.(*AssertionError)
		require.True(t, ok)
		assert.Same(t, err, got)
	}()
	PanicSink{}.Fail(err)
	t.Fatal("PanicSink returned")
}

func TestTestingSink(t *testing.T) {
	ft := &fakeT{}
	err := failed(t, "ok", false)

	TestingSink{T: ft}.Fail(err)

	assert.Equal(t, 1, ft.helpers)
	require.Len(t, ft.fatal, 1)
	assert.Equal(t, err.Error(), ft.fatal[0])
}

func TestRecordingSink(t *testing.T) {
	s := &RecordingSink{}
	a := failed(t, "ok", false)
	b := failed(t, "1 > 2")

	s.Fail(a)
	s.Fail(b)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []*AssertionError{a, b}, s.Errors())

	s.Reset()
	assert.Zero(t, s.Len())
}

func TestSinkFunc(t *testing.T) {
	var got *AssertionError
	err := failed(t, "ok", false)
	SinkFunc(func(e *AssertionError) { got = e }).Fail(err)
	assert.Same(t, err, got)
}

func TestNewAssertionError_UsesRendererOptions(t *testing.T) {
	p, err := assertion.Compile(assertion.NewRegistry(), "password == want")
	require.NoError(t, err)
	x, err := p.Bind("hunter2", "x")
	require.NoError(t, err)

	r := render.New(render.Options{Redact: []string{"password"}})
	ae := NewAssertionError(r, x, testLoc)
	assert.NotContains(t, ae.Report, "hunter2")
	assert.True(t, errors.Is(ae, ErrAssertionFailed))
}
