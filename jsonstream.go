// Package jsonstream glues the token/jsonparser/pathtrack packages into the
// three convenience entry points a caller reaches for most often: parse a
// reader straight to tokens, select a subtree by path, or split a stream
// into per-match sub-streams. It is composition sugar over the lower-level
// packages, not a new transform, the way the teacher jsonstream project's
// root package glues token/iterator/encoding together for its cmd/ tools.
package jsonstream

import (
	"context"
	"io"

	"github.com/cdauth/jsonstream-go/jsonerr"
	"github.com/cdauth/jsonstream-go/jsonparser"
	"github.com/cdauth/jsonstream-go/path"
	"github.com/cdauth/jsonstream-go/pathtrack"
	"github.com/cdauth/jsonstream-go/token"
)

// Pipeline parses r and returns the resulting token stream, plus a channel
// that receives exactly one error once the parse finishes (nil on success).
// mode controls whether r is expected to hold exactly one JSON document
// (jsonparser.SingleDocument) or a JSON Lines / JSON-seq sequence of
// documents (jsonparser.MultiDocument).
//
// token.StartStream's handleError callback only fires when Produce returns a
// non-nil error, so reporting completion (including the success case) needs
// its own goroutine rather than reusing that callback.
func Pipeline(ctx context.Context, r io.Reader, mode jsonparser.Mode) (<-chan token.Token, <-chan error) {
	p := jsonparser.NewFromReader(r, mode)
	out := make(chan token.Token)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		errc <- p.Produce(ctx, out)
		close(errc)
	}()
	return out, errc
}

// Select filters tokens to those matching sel (plus their descendants),
// by composing a PathDetector and a PathSelector. The returned stream
// carries plain tokens; callers that need each token's path should drive
// pathtrack.NewPathDetector/NewPathSelector directly instead.
func Select(ctx context.Context, tokens <-chan token.Token, sel path.Selector, handleError func(error)) <-chan token.Token {
	annotated := pathtrack.RunDetector(ctx, tokens, handleError)
	selected := pathtrack.RunSelector(ctx, annotated, sel, handleError)
	out := make(chan token.Token)
	go func() {
		defer close(out)
		if err := pathtrack.TokensOnly(ctx, selected, out); err != nil && handleError != nil {
			handleError(jsonerr.AsCancelled(err))
		}
	}()
	return out
}

// Split is Select followed by a PathStreamSplitter: it returns one
// SubStream per matched subtree, re-rooted so each sub-stream's tokens
// carry paths relative to that subtree's root.
func Split(ctx context.Context, tokens <-chan token.Token, sel path.Selector, handleError func(error)) <-chan *pathtrack.SubStream {
	annotated := pathtrack.RunDetector(ctx, tokens, handleError)
	selector := pathtrack.NewPathSelector(sel)
	filtered := make(chan pathtrack.Annotated)
	go func() {
		defer close(filtered)
		if err := selector.Transform(ctx, annotated, filtered); err != nil && handleError != nil {
			handleError(jsonerr.AsCancelled(err))
		}
	}()
	return pathtrack.RunSplitter(ctx, filtered, handleError)
}
