package pathtrack

import (
	"context"

	"github.com/cdauth/jsonstream-go/path"
)

// PathSelector implements SPEC_FULL.md §4.6: it forwards every token whose
// path matches sel, plus every token whose path descends from a match,
// until a token arrives whose path is no longer an extension of the
// currently matched prefix.
type PathSelector struct {
	sel           path.Selector
	matching      bool
	matchedPrefix path.Path
}

// NewPathSelector returns a PathSelector matching sel.
func NewPathSelector(sel path.Selector) *PathSelector {
	return &PathSelector{sel: sel}
}

// Filter decides whether a should be forwarded, updating the selector's
// matched-prefix state.
func (s *PathSelector) Filter(a Annotated) bool {
	if s.matching {
		if a.Path.HasPrefix(s.matchedPrefix) {
			return true
		}
		s.matching = false
	}
	if s.sel.Match(a.Path) {
		s.matching = true
		s.matchedPrefix = a.Path.Clone()
		return true
	}
	return false
}

// Transform filters in, emitting matched tokens (and their descendants) to
// out. The output stream may contain several top-level values and need not
// be a valid single JSON document, per SPEC_FULL.md §4.6.
func (s *PathSelector) Transform(ctx context.Context, in <-chan Annotated, out chan<- Annotated) error {
	for {
		a, ok, err := Receive(ctx, in)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if s.Filter(a) {
			if err := Send(ctx, out, a); err != nil {
				return err
			}
		}
	}
}

// RunSelector starts Transform in a new goroutine and returns the filtered
// stream.
func RunSelector(ctx context.Context, in <-chan Annotated, sel path.Selector, handleError func(error)) <-chan Annotated {
	out := make(chan Annotated)
	s := NewPathSelector(sel)
	go func() {
		defer close(out)
		if err := s.Transform(ctx, in, out); err != nil && handleError != nil {
			handleError(err)
		}
	}()
	return out
}
