// Package pathtrack implements the three path-aware token transforms of
// SPEC_FULL.md §4.5–§4.7: PathDetector, PathSelector and PathStreamSplitter.
// They are grounded in the teacher jsonstream project's
// jsonpathtransformer package's compiler-to-runner pattern (compile a
// selector once, then run it against a token stream) but drastically
// simplified, since spec.md §3.3's selector grammar has four constructs
// against the teacher's full RFC 9535 JSONPath grammar.
package pathtrack

import (
	"context"

	"github.com/cdauth/jsonstream-go/path"
	"github.com/cdauth/jsonstream-go/token"
)

// Annotated is a token tagged with its position in the document tree, the
// output of PathDetector and the input/output of PathSelector and
// PathStreamSplitter.
type Annotated struct {
	Token token.Token
	Path  path.Path
}

// Send writes a to out, honoring ctx cancellation.
func Send(ctx context.Context, out chan<- Annotated, a Annotated) error {
	select {
	case out <- a:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive reads the next Annotated token from in, or reports ctx
// cancellation. ok is false when in is closed with no more tokens.
func Receive(ctx context.Context, in <-chan Annotated) (a Annotated, ok bool, err error) {
	select {
	case a, ok = <-in:
		return a, ok, nil
	case <-ctx.Done():
		return Annotated{}, false, ctx.Err()
	}
}

// TokensOnly adapts a stream of Annotated values to a plain token.Token
// stream, for consumers (Stringifier, Deserializer) that don't need paths.
func TokensOnly(ctx context.Context, in <-chan Annotated, out chan<- token.Token) error {
	for {
		a, ok, err := Receive(ctx, in)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := token.Send(ctx, out, a.Token); err != nil {
			return err
		}
	}
}
