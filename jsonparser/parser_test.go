package jsonparser

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cdauth/jsonstream-go/internal/scanner"
	"github.com/cdauth/jsonstream-go/token"
)

// oneByteReader forces the scanner to issue one physical Read per byte, so
// every byte boundary is also a chunk boundary — the worst case for
// flushChunkBoundary.
type oneByteReader struct {
	data []byte
	pos  int
}

func (r *oneByteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	p[0] = r.data[r.pos]
	r.pos++
	return 1, nil
}

func collect(t *testing.T, p *Parser) []token.Token {
	t.Helper()
	out := make(chan token.Token, 1024)
	err := p.Produce(context.Background(), out)
	require.NoError(t, err)
	close(out)
	var toks []token.Token
	for tok := range out {
		toks = append(toks, tok)
	}
	return toks
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestParserSimpleObject(t *testing.T) {
	p := NewFromReader(stringsReader(`{"a":1,"b":[true,null]}`), SingleDocument)
	toks := collect(t, p)
	require.Equal(t, []token.Kind{
		token.ObjectStart,
		token.StringStart, token.StringChunk, token.StringEnd,
		token.Colon,
		token.NumberValue,
		token.Comma,
		token.StringStart, token.StringChunk, token.StringEnd,
		token.Colon,
		token.ArrayStart,
		token.BooleanValue,
		token.Comma,
		token.NullValue,
		token.ArrayEnd,
		token.ObjectEnd,
	}, kinds(toks))
}

func TestParserChunkFragmentationInvariance(t *testing.T) {
	docs := []string{
		`{"a":1,"b":[true,null,"hi\nthere"]}`,
		`[1,2.5,-3e10,"xéy"]`,
		"\"a\x5cu00012A\"",
		`{}`,
		`[]`,
	}
	for _, doc := range docs {
		baseline := collect(t, NewFromReader(stringsReader(doc), SingleDocument))
		fragmented := collect(t, New(scanner.New(&oneByteReader{data: []byte(doc)}), SingleDocument))
		require.Equal(t, concatRaw(baseline), concatRaw(fragmented), "round-trip raw text must match regardless of chunking, doc=%q", doc)
		require.Equal(t, decodedText(baseline), decodedText(fragmented), "decoded string content must match regardless of chunking, doc=%q", doc)
	}
}

func concatRaw(toks []token.Token) string {
	var s string
	for _, tok := range toks {
		s += tok.Raw
	}
	return s
}

func decodedText(toks []token.Token) string {
	var s string
	for _, tok := range toks {
		if tok.Kind == token.StringChunk {
			s += tok.Text
		}
	}
	return s
}

func TestParserSurrogatePair(t *testing.T) {
	// The JSON escape pair for U+1F600 (\x5c is a backslash).
	p := NewFromReader(stringsReader("\"\x5cud83d\x5cude00\""), SingleDocument)
	toks := collect(t, p)
	require.Equal(t, "\U0001F600", decodedText(toks))
}

func TestParserRejectsLeadingZero(t *testing.T) {
	out := make(chan token.Token, 16)
	p := NewFromReader(stringsReader(`01`), SingleDocument)
	err := p.Produce(context.Background(), out)
	require.Error(t, err)
}

func TestParserRejectsLeadingZeroAfterMinus(t *testing.T) {
	out := make(chan token.Token, 16)
	p := NewFromReader(stringsReader(`-01`), SingleDocument)
	err := p.Produce(context.Background(), out)
	require.Error(t, err)
}

func TestParserAcceptsNegativeZero(t *testing.T) {
	out := make(chan token.Token, 16)
	p := NewFromReader(stringsReader(`-0`), SingleDocument)
	require.NoError(t, p.Produce(context.Background(), out))
}

func TestParserRejectsTrailingGarbage(t *testing.T) {
	out := make(chan token.Token, 16)
	p := NewFromReader(stringsReader(`1 2`), SingleDocument)
	err := p.Produce(context.Background(), out)
	require.Error(t, err)
}

func TestParserMultiDocumentJSONL(t *testing.T) {
	p := NewFromReader(stringsReader("1\n2\n3\n"), MultiDocument)
	toks := collect(t, p)
	var nums []float64
	for _, tok := range toks {
		if tok.Kind == token.NumberValue {
			nums = append(nums, tok.Number)
		}
	}
	require.Equal(t, []float64{1, 2, 3}, nums)
}

func TestParserPrematureEnd(t *testing.T) {
	out := make(chan token.Token, 16)
	p := NewFromReader(stringsReader(`{"a":`), SingleDocument)
	err := p.Produce(context.Background(), out)
	require.Error(t, err)
}

func stringsReader(s string) io.Reader { return strings.NewReader(s) }
