package jsonstream

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cdauth/jsonstream-go/jsonparser"
	"github.com/cdauth/jsonstream-go/path"
)

func TestPipelineParsesToTokens(t *testing.T) {
	ctx := context.Background()
	toks, errc := Pipeline(ctx, strings.NewReader(`{"a":1}`), jsonparser.SingleDocument)

	var count int
	for range toks {
		count++
	}
	require.NoError(t, <-errc)
	require.Greater(t, count, 0)
}

func TestPipelineSurfacesParseError(t *testing.T) {
	ctx := context.Background()
	toks, errc := Pipeline(ctx, strings.NewReader(`{bad`), jsonparser.SingleDocument)
	for range toks {
	}
	require.Error(t, <-errc)
}

func TestSelectForwardsOnlyMatchedSubtree(t *testing.T) {
	ctx := context.Background()
	toks, errc := Pipeline(ctx, strings.NewReader(`{"a":1,"b":{"c":2}}`), jsonparser.SingleDocument)

	pat, err := path.ParsePattern("b")
	require.NoError(t, err)

	var lastErr error
	selected := Select(ctx, toks, pat, func(e error) { lastErr = e })

	var raws []string
	for tok := range selected {
		raws = append(raws, tok.Raw)
	}
	require.NoError(t, <-errc)
	require.NoError(t, lastErr)
	require.Contains(t, raws, "{")
	require.Contains(t, raws, "2")
	require.NotContains(t, raws, "1")
}

func TestSplitEmitsOneSubStreamPerMatch(t *testing.T) {
	ctx := context.Background()
	toks, errc := Pipeline(ctx, strings.NewReader(`[{"x":1},{"x":2}]`), jsonparser.SingleDocument)

	pat, err := path.ParsePattern("*")
	require.NoError(t, err)

	var lastErr error
	subs := Split(ctx, toks, pat, func(e error) { lastErr = e })

	var count int
	for sub := range subs {
		count++
		for range sub.Tokens {
		}
	}
	require.NoError(t, <-errc)
	require.NoError(t, lastErr)
	require.Equal(t, 2, count)
}
