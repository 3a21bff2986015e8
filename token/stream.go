package token

import "context"

// A StreamSource produces a token stream, e.g. a Parser reading from an
// io.Reader. Produce must close out's sending side by returning — callers
// wrap Produce in a goroutine and close(out) when it returns, following the
// teacher jsonstream project's token.StreamSource contract.
type StreamSource interface {
	Produce(ctx context.Context, out chan<- Token) error
}

// A StreamSink consumes a token stream, e.g. a Stringifier or the demo CLI's
// pretty-printer.
type StreamSink interface {
	Consume(ctx context.Context, in <-chan Token) error
}

// A StreamTransformer turns one token stream into another; TransformStream
// runs one. PathDetector and PathSelector do not implement it: their
// Transform methods produce pathtrack.Annotated values rather than tokens.
type StreamTransformer interface {
	Transform(ctx context.Context, in <-chan Token, out chan<- Token) error
}

// StartStream runs source in a new goroutine and returns the stream of
// tokens it produces. Any error from Produce is reported to handleError,
// which may be nil.
func StartStream(ctx context.Context, source StreamSource, handleError func(error)) <-chan Token {
	out := make(chan Token)
	go func() {
		defer close(out)
		if err := source.Produce(ctx, out); err != nil && handleError != nil {
			handleError(err)
		}
	}()
	return out
}

// TransformStream applies transformer to in, in a new goroutine, and returns
// the resulting stream.
func TransformStream(ctx context.Context, in <-chan Token, transformer StreamTransformer, handleError func(error)) <-chan Token {
	out := make(chan Token)
	go func() {
		defer close(out)
		if err := transformer.Transform(ctx, in, out); err != nil && handleError != nil {
			handleError(err)
		}
	}()
	return out
}

// ConsumeStream drains in into sink and returns any error sink reports.
func ConsumeStream(ctx context.Context, in <-chan Token, sink StreamSink) error {
	return sink.Consume(ctx, in)
}

// Send writes tok to out, honoring ctx cancellation the way every transform
// in this module must (SPEC_FULL.md §5 ADDED — Go mapping). It is the
// suspension point token-producing stages use for "awaiting room in the
// downstream sink"; pathtrack.Send and the deserializer do the same for
// their own element types.
func Send(ctx context.Context, out chan<- Token, tok Token) error {
	select {
	case out <- tok:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

// Receive reads the next token from in, or reports ctx cancellation. ok is
// false when in is closed with no more tokens.
func Receive(ctx context.Context, in <-chan Token) (tok Token, ok bool, err error) {
	select {
	case tok, ok = <-in:
		return tok, ok, nil
	case <-ctx.Done():
		return Token{}, false, context.Cause(ctx)
	}
}
