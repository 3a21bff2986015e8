package deserialize

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cdauth/jsonstream-go/jsonparser"
	"github.com/cdauth/jsonstream-go/pathtrack"
	"github.com/cdauth/jsonstream-go/token"
	"github.com/cdauth/jsonstream-go/value"
)

func newReader(s string) io.Reader { return strings.NewReader(s) }

func parse(t *testing.T, doc string) <-chan token.Token {
	t.Helper()
	p := jsonparser.NewFromReader(newReader(doc), jsonparser.SingleDocument)
	out := make(chan token.Token, 1024)
	require.NoError(t, p.Produce(context.Background(), out))
	close(out)
	return out
}

func TestDeserializeNestedDocument(t *testing.T) {
	values := make(chan value.Value, 1)
	require.NoError(t, Deserialize(context.Background(), parse(t, `{"a":[1,2,{"b":true}],"c":null}`), values))
	close(values)

	var results []value.Value
	for v := range values {
		results = append(results, v)
	}
	require.Len(t, results, 1)
	obj := results[0].(*value.Object)
	arr := mustGet(t, obj, "a").(value.Array)
	require.Len(t, arr, 3)
	require.Equal(t, value.Number{Float64: 1, Raw: "1"}, arr[0])
	nested := arr[2].(*value.Object)
	require.Equal(t, value.Bool(true), mustGet(t, nested, "b"))
	require.Equal(t, value.Null{}, mustGet(t, obj, "c"))
}

func TestDeserializeMultiDocument(t *testing.T) {
	p := jsonparser.NewFromReader(newReader("1\n2\n"), jsonparser.MultiDocument)
	toks := make(chan token.Token, 1024)
	require.NoError(t, p.Produce(context.Background(), toks))
	close(toks)

	values := make(chan value.Value, 4)
	require.NoError(t, Deserialize(context.Background(), toks, values))
	close(values)

	var results []value.Value
	for v := range values {
		results = append(results, v)
	}
	require.Equal(t, []value.Value{
		value.Number{Float64: 1, Raw: "1"},
		value.Number{Float64: 2, Raw: "2"},
	}, results)
}

func TestDeserializeAnnotatedReportsCompletingPath(t *testing.T) {
	d := pathtrack.NewPathDetector()
	var annotated []pathtrack.Annotated
	for tok := range parse(t, `{"a":1}`) {
		annotated = append(annotated, d.Annotate(tok))
	}
	ann := make(chan pathtrack.Annotated, len(annotated))
	for _, a := range annotated {
		ann <- a
	}
	close(ann)

	results := make(chan Result, 1)
	require.NoError(t, DeserializeAnnotated(context.Background(), ann, results))
	close(results)

	var got []Result
	for r := range results {
		got = append(got, r)
	}
	require.Len(t, got, 1)
	require.True(t, got[0].Path.Equal(nil))
}

func mustGet(t *testing.T, o *value.Object, key string) value.Value {
	t.Helper()
	v, ok := o.Get(key)
	require.True(t, ok)
	return v
}
