package path

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPathHasPrefix(t *testing.T) {
	p := Path{Key("a"), Index(1), Key("b")}
	require.True(t, p.HasPrefix(nil))
	require.True(t, p.HasPrefix(Path{Key("a")}))
	require.True(t, p.HasPrefix(Path{Key("a"), Index(1)}))
	require.True(t, p.HasPrefix(p))
	require.False(t, p.HasPrefix(Path{Key("a"), Index(2)}))
	require.False(t, p.HasPrefix(Path{Key("a"), Index(1), Key("b"), Key("c")}))
}

func TestPathTrimPrefix(t *testing.T) {
	p := Path{Key("a"), Index(1), Key("b")}
	require.True(t, p.TrimPrefix(Path{Key("a")}).Equal(Path{Index(1), Key("b")}))
	require.True(t, p.TrimPrefix(p).Equal(nil))
}

func TestPathTrimPrefixPanicsWhenNotPrefix(t *testing.T) {
	p := Path{Key("a")}
	require.Panics(t, func() { p.TrimPrefix(Path{Key("b")}) })
}

func TestPatternMatchLength(t *testing.T) {
	pat, err := ParsePattern("a.*.{x,y}")
	require.NoError(t, err)
	require.True(t, pat.Match(Path{Key("a"), Index(3), Key("x")}))
	require.True(t, pat.Match(Path{Key("a"), Key("k"), Key("y")}))
	require.False(t, pat.Match(Path{Key("a"), Key("k"), Key("z")}))
	require.False(t, pat.Match(Path{Key("a"), Key("k")}))
}

func TestParsePatternRejectsNegativeIndex(t *testing.T) {
	_, err := ParsePattern("-1")
	require.Error(t, err)
}

func TestParsePatternEmptyString(t *testing.T) {
	pat, err := ParsePattern("")
	require.NoError(t, err)
	require.True(t, pat.Match(nil))
	require.False(t, pat.Match(Path{Key("a")}))
}
