package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestObjectSetPreservesInsertionOrderAndLastWriterWins(t *testing.T) {
	o := NewObject()
	o.Set("a", Number{Float64: 1, Raw: "1"})
	o.Set("b", Number{Float64: 2, Raw: "2"})
	o.Set("a", Number{Float64: 3, Raw: "3"})

	require.Equal(t, []string{"a", "b"}, o.Keys())
	v, ok := o.Get("a")
	require.True(t, ok)
	require.Equal(t, Number{Float64: 3, Raw: "3"}, v)
	require.Equal(t, 2, o.Len())
}

func TestObjectGetMissingKey(t *testing.T) {
	o := NewObject()
	_, ok := o.Get("missing")
	require.False(t, ok)
}

func TestNumberFromFloat64RoundTrips(t *testing.T) {
	n := NumberFromFloat64(3.5)
	require.Equal(t, "3.5", n.Raw)
}

func TestRawJSONBytesReadsBackOriginalBytes(t *testing.T) {
	raw := RawJSONBytes([]byte(`{"a":1}`))
	buf := make([]byte, 64)
	n, err := raw.Reader.Read(buf)
	require.NoError(t, err)
	require.Equal(t, `{"a":1}`, string(buf[:n]))
}
