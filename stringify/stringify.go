// Package stringify implements the Stringifier of SPEC_FULL.md §4.2: it
// emits each token's raw text verbatim and performs no validation,
// matching the teacher jsonstream project's DefaultPrinter.PrintBytes
// directness.
package stringify

import (
	"context"
	"io"

	"github.com/cdauth/jsonstream-go/token"
)

// Writer writes the raw text of every token it receives to an io.Writer. It
// implements token.StreamSink.
type Writer struct {
	W io.Writer
}

// Consume implements token.StreamSink.
func (w Writer) Consume(ctx context.Context, in <-chan token.Token) error {
	for {
		tok, ok, err := token.Receive(ctx, in)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if _, err := io.WriteString(w.W, tok.Raw); err != nil {
			return err
		}
	}
}

// String drains in and returns the concatenation of every token's raw text.
// Round-trip with a Parser is exact when its output is consumed unmodified
// (SPEC_FULL.md §8).
func String(ctx context.Context, in <-chan token.Token) (string, error) {
	var b []byte
	for {
		tok, ok, err := token.Receive(ctx, in)
		if err != nil {
			return string(b), err
		}
		if !ok {
			return string(b), nil
		}
		b = append(b, tok.Raw...)
	}
}
