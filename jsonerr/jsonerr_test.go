package jsonerr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAsCancelledChainsBothCauses(t *testing.T) {
	err := AsCancelled(context.Canceled)
	require.True(t, IsCancellation(err))
	require.ErrorIs(t, err, ErrCancelled)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAsCancelledNil(t *testing.T) {
	require.NoError(t, AsCancelled(nil))
}

func TestWrapUpstreamPreservesCause(t *testing.T) {
	cause := context.DeadlineExceeded
	wrapped := WrapUpstream(cause)
	require.ErrorIs(t, wrapped, context.DeadlineExceeded)

	again := WrapUpstream(wrapped)
	require.Same(t, wrapped, again)
}
