// Package deserialize implements the Deserializer of SPEC_FULL.md §4.4: it
// rebuilds value.Value trees from a token stream, maintaining a stack of
// build frames and emitting one value per completed root-level value (so a
// multi-document token stream, as produced by a PathSelector, yields one
// value.Value per completed document).
//
// Grounded in the teacher jsonstream project's iterator package's
// frame-stack approach (Object/Array/collectionBase) but rebuilt to
// construct trees rather than only walk an existing stream lazily — the
// teacher's iterator never materialises a value, it only re-exposes the
// token stream as a lazy cursor.
package deserialize

import (
	"context"

	"github.com/cdauth/jsonstream-go/jsonerr"
	"github.com/cdauth/jsonstream-go/path"
	"github.com/cdauth/jsonstream-go/pathtrack"
	"github.com/cdauth/jsonstream-go/token"
	"github.com/cdauth/jsonstream-go/value"
)

// Result is one completed document: its value and, when the input tokens
// carried paths, the path of the token that completed it.
type Result struct {
	Value value.Value
	Path  path.Path
}

type frameKind uint8

const (
	frameRoot frameKind = iota
	frameObject
	frameArray
)

type frame struct {
	kind       frameKind
	object     *value.Object
	array      value.Array
	pendingKey []byte
}

// Deserializer rebuilds value.Value trees from a token stream.
type Deserializer struct {
	stack     []frame
	curString []byte
}

// New returns a Deserializer ready to consume tokens from the document root.
func New() *Deserializer {
	return &Deserializer{stack: []frame{{kind: frameRoot}}}
}

// Feed processes one token (with an optional path, nil if unknown) and
// returns the completed Result if this token finished a root-level value.
func (d *Deserializer) Feed(tok token.Token, p path.Path) (*Result, error) {
	switch tok.Kind {
	case token.ObjectStart:
		d.stack = append(d.stack, frame{kind: frameObject, object: value.NewObject()})
		return nil, nil
	case token.ArrayStart:
		d.stack = append(d.stack, frame{kind: frameArray})
		return nil, nil
	case token.ObjectEnd:
		top := d.stack[len(d.stack)-1]
		d.stack = d.stack[:len(d.stack)-1]
		return d.commit(top.object, p)
	case token.ArrayEnd:
		top := d.stack[len(d.stack)-1]
		d.stack = d.stack[:len(d.stack)-1]
		arr := top.array
		if arr == nil {
			arr = value.Array{}
		}
		return d.commit(arr, p)
	case token.StringStart:
		if tok.Role == token.Key {
			top := &d.stack[len(d.stack)-1]
			top.pendingKey = top.pendingKey[:0]
		} else {
			d.curString = d.curString[:0]
		}
		return nil, nil
	case token.StringChunk:
		if tok.Role == token.Key {
			top := &d.stack[len(d.stack)-1]
			top.pendingKey = append(top.pendingKey, tok.Text...)
		} else {
			d.curString = append(d.curString, tok.Text...)
		}
		return nil, nil
	case token.StringEnd:
		if tok.Role == token.Key {
			return nil, nil
		}
		v := value.String(string(d.curString))
		d.curString = d.curString[:0]
		return d.commit(v, p)
	case token.NumberValue:
		return d.commit(value.Number{Float64: tok.Number, Raw: tok.Raw}, p)
	case token.BooleanValue:
		return d.commit(value.Bool(tok.Bool), p)
	case token.NullValue:
		return d.commit(value.Null{}, p)
	default: // Whitespace, Comma, Colon
		return nil, nil
	}
}

// commit writes v into the now-current top frame (the parent of whatever
// frame, if any, was just popped), or reports a completed root value.
func (d *Deserializer) commit(v value.Value, p path.Path) (*Result, error) {
	top := &d.stack[len(d.stack)-1]
	switch top.kind {
	case frameObject:
		top.object.Set(string(top.pendingKey), v)
		top.pendingKey = top.pendingKey[:0]
		return nil, nil
	case frameArray:
		top.array = append(top.array, v)
		return nil, nil
	default:
		return &Result{Value: v, Path: p}, nil
	}
}

// Deserialize drains a plain token stream into value.Value results.
func Deserialize(ctx context.Context, in <-chan token.Token, out chan<- value.Value) error {
	d := New()
	for {
		tok, ok, err := token.Receive(ctx, in)
		if err != nil {
			return jsonerr.AsCancelled(err)
		}
		if !ok {
			return nil
		}
		result, err := d.Feed(tok, nil)
		if err != nil {
			return err
		}
		if result != nil {
			if err := sendValue(ctx, out, result.Value); err != nil {
				return err
			}
		}
	}
}

func sendValue(ctx context.Context, out chan<- value.Value, v value.Value) error {
	select {
	case out <- v:
		return nil
	case <-ctx.Done():
		return jsonerr.AsCancelled(ctx.Err())
	}
}

// DeserializeAnnotated drains a path-annotated token stream (PathDetector's
// or PathSelector's output) into Results carrying the completing token's
// path, per SPEC_FULL.md §4.4's multi-document emission rule.
func DeserializeAnnotated(ctx context.Context, in <-chan pathtrack.Annotated, out chan<- Result) error {
	d := New()
	for {
		a, ok, err := pathtrack.Receive(ctx, in)
		if err != nil {
			return jsonerr.AsCancelled(err)
		}
		if !ok {
			return nil
		}
		result, err := d.Feed(a.Token, a.Path)
		if err != nil {
			return err
		}
		if result != nil {
			select {
			case out <- *result:
			case <-ctx.Done():
				return jsonerr.AsCancelled(ctx.Err())
			}
		}
	}
}
