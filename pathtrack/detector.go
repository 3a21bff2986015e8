package pathtrack

import (
	"context"

	"github.com/cdauth/jsonstream-go/path"
	"github.com/cdauth/jsonstream-go/token"
)

type frameKind uint8

const (
	kindObject frameKind = iota
	kindArray
)

type subState uint8

const (
	subPendingKey subState = iota
	subNextValue
	subActiveValue
)

type ptFrame struct {
	kind  frameKind
	sub   subState
	key   []byte
	index int
}

// PathDetector implements SPEC_FULL.md §4.5: it tags every token with a
// snapshot of its path, maintaining a stack of open-container frames.
type PathDetector struct {
	frames []ptFrame
}

// NewPathDetector returns a PathDetector ready to annotate a fresh token
// stream from the document root.
func NewPathDetector() *PathDetector { return &PathDetector{} }

// currentPath builds the path contributed by the first n frames, stopping
// at the first frame not in subActiveValue — which, by construction, is
// never reached before n because a frame is only ever pushed once its
// parent has already been promoted to subActiveValue.
func (d *PathDetector) currentPath(n int) path.Path {
	if n <= 0 {
		return nil
	}
	p := make(path.Path, 0, n)
	for i := 0; i < n; i++ {
		f := &d.frames[i]
		if f.sub != subActiveValue {
			break
		}
		if f.kind == kindObject {
			p = append(p, path.Key(string(f.key)))
		} else {
			p = append(p, path.Index(f.index))
		}
	}
	return p
}

func (d *PathDetector) fullPath() path.Path { return d.currentPath(len(d.frames)) }

func (d *PathDetector) ancestorsPath() path.Path {
	if len(d.frames) == 0 {
		return nil
	}
	return d.currentPath(len(d.frames) - 1)
}

// Annotate processes one token, returning it together with its path.
func (d *PathDetector) Annotate(tok token.Token) Annotated {
	if len(d.frames) > 0 {
		top := &d.frames[len(d.frames)-1]
		if top.sub == subNextValue {
			top.sub = subActiveValue
		}
	}
	switch tok.Kind {
	case token.ObjectStart:
		p := d.fullPath()
		d.frames = append(d.frames, ptFrame{kind: kindObject, sub: subPendingKey})
		return Annotated{Token: tok, Path: p}
	case token.ArrayStart:
		p := d.fullPath()
		d.frames = append(d.frames, ptFrame{kind: kindArray, sub: subNextValue})
		return Annotated{Token: tok, Path: p}
	case token.ObjectEnd, token.ArrayEnd:
		p := d.ancestorsPath()
		d.frames = d.frames[:len(d.frames)-1]
		return Annotated{Token: tok, Path: p}
	case token.StringStart:
		if tok.Role == token.Key {
			top := &d.frames[len(d.frames)-1]
			top.key = top.key[:0]
			return Annotated{Token: tok, Path: d.ancestorsPath()}
		}
		return Annotated{Token: tok, Path: d.fullPath()}
	case token.StringChunk:
		if tok.Role == token.Key {
			top := &d.frames[len(d.frames)-1]
			top.key = append(top.key, tok.Text...)
			return Annotated{Token: tok, Path: d.ancestorsPath()}
		}
		return Annotated{Token: tok, Path: d.fullPath()}
	case token.StringEnd:
		if tok.Role == token.Key {
			return Annotated{Token: tok, Path: d.ancestorsPath()}
		}
		return Annotated{Token: tok, Path: d.fullPath()}
	case token.Colon:
		top := &d.frames[len(d.frames)-1]
		top.sub = subNextValue
		return Annotated{Token: tok, Path: d.ancestorsPath()}
	case token.Comma:
		top := &d.frames[len(d.frames)-1]
		if top.kind == kindObject {
			top.sub = subPendingKey
			top.key = top.key[:0]
		} else {
			top.sub = subNextValue
			top.index++
		}
		return Annotated{Token: tok, Path: d.ancestorsPath()}
	default:
		// NumberValue, BooleanValue, NullValue and Whitespace all take the
		// position currently open for a value, per SPEC_FULL.md §4.5/§3.2
		// ("tokens strictly between a Colon and the subsequent
		// Comma/ObjectEnd carry the key").
		return Annotated{Token: tok, Path: d.fullPath()}
	}
}

// Transform runs Annotate over a plain token stream, implementing it as a
// standalone transform from token.Token to Annotated.
func (d *PathDetector) Transform(ctx context.Context, in <-chan token.Token, out chan<- Annotated) error {
	for {
		tok, ok, err := token.Receive(ctx, in)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := Send(ctx, out, d.Annotate(tok)); err != nil {
			return err
		}
	}
}

// RunDetector starts Transform in a new goroutine and returns the annotated
// stream.
func RunDetector(ctx context.Context, in <-chan token.Token, handleError func(error)) <-chan Annotated {
	out := make(chan Annotated)
	d := NewPathDetector()
	go func() {
		defer close(out)
		if err := d.Transform(ctx, in, out); err != nil && handleError != nil {
			handleError(err)
		}
	}()
	return out
}
