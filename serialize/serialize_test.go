package serialize

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cdauth/jsonstream-go/deserialize"
	"github.com/cdauth/jsonstream-go/stringify"
	"github.com/cdauth/jsonstream-go/token"
	"github.com/cdauth/jsonstream-go/value"
)

func runSerialize(t *testing.T, opts Options, src value.Source) string {
	t.Helper()
	ctx := context.Background()
	out := make(chan token.Token, 1024)
	s := New(opts)
	err := s.SerializeDocument(ctx, src, out)
	require.NoError(t, err)
	close(out)
	str, err := stringify.String(ctx, out)
	require.NoError(t, err)
	return str
}

func TestSerializeCompactObject(t *testing.T) {
	obj := value.NewObject()
	obj.Set("a", value.Number{Float64: 1, Raw: "1"})
	obj.Set("b", value.Array{value.Bool(true), value.Null{}})
	got := runSerialize(t, Options{}, value.Of(obj))
	require.Equal(t, `{"a":1,"b":[true,null]}`, got)
}

func TestSerializePrettyObject(t *testing.T) {
	obj := value.NewObject()
	obj.Set("a", value.Number{Float64: 1, Raw: "1"})
	got := runSerialize(t, Options{IndentSize: 2}, value.Of(obj))
	require.Equal(t, "{\n  \"a\": 1\n}", got)
}

func TestSerializeEscapesStrings(t *testing.T) {
	got := runSerialize(t, Options{}, value.Of(value.String("a\"b\nc")))
	require.Equal(t, `"a\"b\nc"`, got)
}

func TestSerializeNonFiniteNumberBecomesNull(t *testing.T) {
	got := runSerialize(t, Options{}, value.Of(value.Number{Float64: math.NaN()}))
	require.Equal(t, "null", got)
}

func TestSerializeRawJSONSplice(t *testing.T) {
	entries := make(chan value.ObjectStreamEntry, 1)
	entries <- value.ObjectStreamEntry{Key: "x", Value: value.RawJSONBytes([]byte(`[1,2,3]`))}
	close(entries)
	got := runSerialize(t, Options{}, value.ObjectStream{Entries: entries})
	require.Equal(t, `{"x":[1,2,3]}`, got)
}

func TestSerializeStringStream(t *testing.T) {
	frags := make(chan value.StringFragment, 4)
	frags <- "hel"
	frags <- "lo"
	close(frags)
	got := runSerialize(t, Options{}, value.StringStream{Fragments: frags})
	require.Equal(t, `"hello"`, got)
}

func TestSerializeArrayStream(t *testing.T) {
	items := make(chan value.Source, 4)
	items <- value.Of(value.Number{Float64: 1, Raw: "1"})
	items <- value.Of(value.Number{Float64: 2, Raw: "2"})
	close(items)
	got := runSerialize(t, Options{}, value.ArrayStream{Items: items})
	require.Equal(t, `[1,2]`, got)
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	obj := value.NewObject()
	obj.Set("name", value.String("ed"))
	obj.Set("nums", value.Array{
		value.Number{Float64: 1, Raw: "1"},
		value.Number{Float64: 2, Raw: "2"},
	})
	obj.Set("nested", value.NewObject())

	ctx := context.Background()
	out := make(chan token.Token, 1024)
	s := New(Options{})
	require.NoError(t, s.SerializeDocument(ctx, value.Of(obj), out))
	close(out)

	values := make(chan value.Value, 4)
	require.NoError(t, deserialize.Deserialize(ctx, out, values))
	close(values)

	var results []value.Value
	for v := range values {
		results = append(results, v)
	}
	require.Len(t, results, 1)
	got, ok := results[0].(*value.Object)
	require.True(t, ok)
	name, _ := got.Get("name")
	require.Equal(t, value.String("ed"), name)
}

func TestSerializeValueTransformHookSeesKey(t *testing.T) {
	var sawKey string
	entries := make(chan value.ObjectStreamEntry, 1)
	entries <- value.ObjectStreamEntry{
		Key: "a",
		Value: value.Transformed{Hook: func(key string) (value.Source, error) {
			sawKey = key
			return value.Of(value.String("overridden")), nil
		}},
	}
	close(entries)
	got := runSerialize(t, Options{}, value.ObjectStream{Entries: entries})
	require.Equal(t, `{"a":"overridden"}`, got)
	require.Equal(t, "a", sawKey)
}

func TestSerializeStreamJSONLFraming(t *testing.T) {
	ctx := context.Background()
	sources := make(chan value.Source, 4)
	sources <- value.Of(value.Number{Float64: 1, Raw: "1"})
	sources <- value.Of(value.Number{Float64: 2, Raw: "2"})
	close(sources)

	out := make(chan token.Token, 1024)
	s := New(JSONLOptions())
	require.NoError(t, s.SerializeStream(ctx, sources, out))
	close(out)

	got, err := stringify.String(ctx, out)
	require.NoError(t, err)
	require.Equal(t, "1\n2", got)
}
