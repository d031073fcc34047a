package token

import (
	gotoken "go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(s *Stream) []Kind {
	out := make([]Kind, 0, s.Len())
	for _, t := range s.Tokens {
		out = append(out, t.Kind)
	}
	return out
}

func texts(s *Stream) []string {
	out := make([]string, 0, s.Len())
	for _, t := range s.Tokens {
		out = append(out, t.Text)
	}
	return out
}

func TestScan_Comparison(t *testing.T) {
	s, err := Scan("x == y")
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "==", "y"}, texts(s))
	assert.Equal(t,
		[]Kind{KindIdent, KindOperator, KindIdent}, kinds(s))
	assert.True(t, s.Tokens[1].Is(gotoken.EQL))
	assert.Equal(t, Pos{Line: 1, Col: 3}, s.Tokens[1].Pos)
}

func TestScan_DropsAutoSemicolons(t *testing.T) {
	s, err := Scan("a <\n b\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "<", "b"}, texts(s))
	assert.Equal(t, uint32(2), s.Tokens[2].Pos.Line)
}

func TestScan_MatchesDelimiters(t *testing.T) {
	s, err := Scan("all(f[int](x), {1})")
	require.NoError(t, err)

	// all ( f [ int ] ( x ) , { 1 } )
	require.Equal(t, 14, s.Len())
	assert.Equal(t, 13, s.Tokens[1].Match)
	assert.Equal(t, 1, s.Tokens[13].Match)
	assert.Equal(t, 5, s.Tokens[3].Match)
	assert.Equal(t, 8, s.Tokens[6].Match)
	assert.Equal(t, 12, s.Tokens[10].Match)
	assert.Equal(t, -1, s.Tokens[0].Match)
}

func TestScan_ShiftAndArrowAreSingleTokens(t *testing.T) {
	s, err := Scan("a<<1 >= <-ch")
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"a", "<<", "1", ">=", "<-", "ch"}, texts(s))
	assert.True(t, s.Tokens[1].Is(gotoken.SHL))
	assert.True(t, s.Tokens[4].Is(gotoken.ARROW))
}

func TestScan_CustomMarkerAndTilde(t *testing.T) {
	s, err := Scan("a :approx: b ~ c")
	require.NoError(t, err)

	assert.Equal(t, []Kind{
		KindIdent, KindColon, KindIdent, KindColon,
		KindIdent, KindOperator, KindIdent,
	}, kinds(s))
	assert.True(t, s.Tokens[5].Is(gotoken.TILDE))
}

func TestScan_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"unclosed", "f(x", "unclosed ("},
		{"unexpected close", "x)", "unexpected )"},
		{"mismatched", "f(x]", "mismatched ]"},
		{"unterminated string", `"abc`, "string literal not terminated"},
		{"illegal character", "a $ b", "illegal character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Scan(tt.src)
			require.Error(t, err)

			var lexErr *Error
			require.ErrorAs(t, err, &lexErr)
			assert.Contains(t, lexErr.Msg, tt.msg)
		})
	}
}

func TestStream_TextRoundTrip(t *testing.T) {
	src := "all( len(xs)  ==  3 , m[\"k\"] < f(a, b) )"
	s, err := Scan(src)
	require.NoError(t, err)

	for i := 0; i < s.Len(); i++ {
		for j := i + 1; j <= s.Len(); j++ {
			span := s.Text(i, j)
			again, err := Scan(span)
			if err != nil {
				// Spans that cut a delimited group do not
				// re-scan; only balanced spans are checked.
				continue
			}
			assert.Equal(t, texts(&Stream{Tokens: s.Tokens[i:j]}),
				texts(again), "span %q", span)
		}
	}
}

func TestStream_TextBounds(t *testing.T) {
	s, err := Scan("a == b")
	require.NoError(t, err)

	assert.Equal(t, "a == b", s.Text(0, 3))
	assert.Equal(t, "", s.Text(2, 2))
	assert.Equal(t, "", s.Text(0, 9))
	assert.Equal(t, Pos{Line: 1, Col: 7}, s.PosAt(3))
}

func TestNormalize_ComposesIdentifiers(t *testing.T) {
	decomposed := "cafe\u0301"
	composed := "caf\u00e9"
	assert.Equal(t, composed, Normalize(decomposed))

	s, err := Scan(decomposed + " == " + composed)
	require.NoError(t, err)
	assert.Equal(t, s.Tokens[0].Text, s.Tokens[2].Text)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "IDENT", KindIdent.String())
	assert.Equal(t, "COLON", KindColon.String())
	assert.Equal(t, "UNKNOWN", Kind(99).String())
}
