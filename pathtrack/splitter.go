package pathtrack

import (
	"context"

	"github.com/cdauth/jsonstream-go/path"
)

// subStreamBufferSize bounds the internal tee queue each SubStream uses to
// decouple "announce the sub-stream on the outer channel" from "write
// tokens into it" (SPEC_FULL.md §5 "Backpressured fan-out"). 256 tokens is
// enough to absorb a typical object/array header without blocking the
// splitter on a reader that hasn't started draining yet; callers streaming
// very large leaf subtrees should drain promptly regardless.
const subStreamBufferSize = 256

// SubStream is one nested sub-stream emitted by PathStreamSplitter: all
// tokens belonging to one matched subtree, with that subtree's root path
// stripped from every token's path.
type SubStream struct {
	// Root is the matched subtree's original root path.
	Root path.Path
	// Tokens yields the subtree's re-rooted, path-annotated tokens.
	Tokens <-chan Annotated

	cancel chan struct{}
}

// Cancel stops further delivery to this sub-stream; writes after Cancel are
// dropped rather than blocking the splitter, per SPEC_FULL.md §4.7
// "Buffering discipline".
func (s *SubStream) Cancel() {
	select {
	case <-s.cancel:
	default:
		close(s.cancel)
	}
}

// Splitter implements SPEC_FULL.md §4.7: it groups consecutive tokens from
// a selector's output by shared path-prefix and emits one SubStream per
// group.
type Splitter struct{}

// NewSplitter returns a Splitter.
func NewSplitter() *Splitter { return &Splitter{} }

// Run groups in into SubStreams, sending each newly opened SubStream to
// out. Cancelling ctx makes Run return ctx's error; the open SubStream's
// Tokens channel is closed whenever Run returns. A reader that stops
// receiving from out, or from an uncancelled SubStream whose buffer is full,
// blocks Run until ctx is cancelled.
func (sp *Splitter) Run(ctx context.Context, in <-chan Annotated, out chan<- *SubStream) error {
	var current *SubStream
	var currentCh chan Annotated

	closeCurrent := func() {
		if currentCh != nil {
			close(currentCh)
		}
		current, currentCh = nil, nil
	}
	defer closeCurrent()

	for {
		a, ok, err := Receive(ctx, in)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if current == nil || !a.Path.HasPrefix(current.Root) {
			closeCurrent()
			root := a.Path.Clone()
			ch := make(chan Annotated, subStreamBufferSize)
			current = &SubStream{Root: root, Tokens: ch, cancel: make(chan struct{})}
			currentCh = ch
			if err := sendSubStream(ctx, out, current); err != nil {
				return err
			}
		}
		rerooted := Annotated{Token: a.Token, Path: a.Path.TrimPrefix(current.Root)}
		select {
		case currentCh <- rerooted:
		case <-current.cancel:
			// dropped, per SPEC_FULL.md §4.7.
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func sendSubStream(ctx context.Context, out chan<- *SubStream, s *SubStream) error {
	select {
	case out <- s:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunSplitter starts Run in a new goroutine and returns the stream of
// emitted sub-streams.
func RunSplitter(ctx context.Context, in <-chan Annotated, handleError func(error)) <-chan *SubStream {
	out := make(chan *SubStream)
	sp := NewSplitter()
	go func() {
		defer close(out)
		if err := sp.Run(ctx, in, out); err != nil && handleError != nil {
			handleError(err)
		}
	}()
	return out
}
