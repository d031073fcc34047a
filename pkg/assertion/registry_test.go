package assertion

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_RegistersAllBuiltins(t *testing.T) {
	r := NewRegistry()

	builtins := []string{
		"approx_eq", "deep_eq", "contains", "contains_any",
		"matches", "min_length", "min_count", "exact_count",
		"max_latency", "not_mock",
	}

	for _, name := range builtins {
		assert.True(t, r.Has(name),
			"missing built-in comparator: %s", name)
	}
	assert.Len(t, r.Names(), len(builtins))
}

func TestRegistry_Register_Success(t *testing.T) {
	r := NewRegistry()

	err := r.Register("same_len", Func{
		Predicate: func(lhs, rhs any) bool {
			a, _ := toLen(lhs)
			b, _ := toLen(rhs)
			return a == b
		},
		Header: "len(%s) == len(%s)",
	})

	require.NoError(t, err)
	c, ok := r.Lookup("same_len")
	require.True(t, ok)
	assert.True(t, c.Test("ab", []int{1, 2}))
	assert.Equal(t, "len(a) == len(b)", c.Render("a", "b"))
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	r := NewRegistry()

	err := r.Register("contains", ApproxEq{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistry_Register_Nil(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register("nothing", nil))
}

func TestRegistry_Replace(t *testing.T) {
	r := NewRegistry()
	r.Replace("approx_eq", ApproxEq{Abs: 0.5})

	c, ok := r.Lookup("approx_eq")
	require.True(t, ok)
	assert.True(t, c.Test(1.0, 1.4))
}

func TestRegistry_Names_Sorted(t *testing.T) {
	names := NewRegistry().Names()
	assert.IsIncreasing(t, names)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = r.Register(string(rune('a'+i)), ApproxEq{})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = r.Lookup("contains")
		}()
	}
	wg.Wait()

	assert.Len(t, r.Names(), 30)
}
