// Package serialize implements the Serializer of SPEC_FULL.md §4.3: it
// turns a value.Source (possibly a lazily-streamed tree) into a token.Token
// stream, resolving deferred values and stream tags as it goes.
//
// Grounded in the teacher jsonstream project's jsonencoder.go (a Printer
// driving a walk over a value tree) and iterator/streamiterator.go (the
// Value/Collection abstraction for walking a tree of unknown shape lazily),
// generalised so the thing being walked is value.Source rather than a
// pre-parsed cursor, and so "await a promise" / "invoke a closure" / "drain
// an iterator" are plain goroutines and channels rather than a promise
// library, per SPEC_FULL.md §9's dispatcher note.
package serialize

import (
	"context"
	"math"

	"github.com/cdauth/jsonstream-go/internal/scanner"
	"github.com/cdauth/jsonstream-go/jsonerr"
	"github.com/cdauth/jsonstream-go/jsonparser"
	"github.com/cdauth/jsonstream-go/token"
	"github.com/cdauth/jsonstream-go/value"
)

// Serializer turns source values into token streams.
type Serializer struct {
	opts Options
}

// New returns a Serializer with the given options.
func New(opts Options) *Serializer { return &Serializer{opts: opts} }

// SerializeDocument writes exactly one document's tokens for src to out.
func (s *Serializer) SerializeDocument(ctx context.Context, src value.Source, out chan<- token.Token) error {
	return s.writeValue(ctx, "", 0, src, out)
}

// SerializeStream writes one document per value received from sources,
// framed per SPEC_FULL.md §4.3 "Multi-document mode".
func (s *Serializer) SerializeStream(ctx context.Context, sources <-chan value.Source, out chan<- token.Token) error {
	first := true
	for {
		select {
		case src, ok := <-sources:
			if !ok {
				if !first && s.opts.AfterLast != "" {
					return token.Send(ctx, out, token.WhitespaceToken(s.opts.AfterLast))
				}
				return nil
			}
			if first {
				if s.opts.BeforeFirst != "" {
					if err := token.Send(ctx, out, token.WhitespaceToken(s.opts.BeforeFirst)); err != nil {
						return err
					}
				}
			} else if s.opts.delimiter() != "" {
				if err := token.Send(ctx, out, token.WhitespaceToken(s.opts.delimiter())); err != nil {
					return err
				}
			}
			first = false
			if err := s.SerializeDocument(ctx, src, out); err != nil {
				return err
			}
		case <-ctx.Done():
			return jsonerr.AsCancelled(ctx.Err())
		}
	}
}

// resolve peels Deferred/Future layers and invokes the value-transform hook
// (SPEC_FULL.md §9 Open Question 2) until a concrete Source shape is
// reached: Plain, StringStream, ArrayStream, ObjectStream, RawJSON or
// Absent.
func (s *Serializer) resolve(ctx context.Context, key string, src value.Source) (value.Source, error) {
	for {
		switch v := src.(type) {
		case value.Deferred:
			next, err := v()
			if err != nil {
				return nil, err
			}
			src = next
		case value.Future:
			select {
			case <-v.Done:
			case <-ctx.Done():
				return nil, jsonerr.AsCancelled(ctx.Err())
			}
			if v.Err != nil {
				return nil, v.Err
			}
			src = v.Value
		default:
			if t, ok := src.(value.Transformer); ok {
				next, err := t.MarshalJSONStream(key)
				if err != nil {
					return nil, err
				}
				src = next
				continue
			}
			return src, nil
		}
	}
}

func (s *Serializer) writeValue(ctx context.Context, key string, depth int, src value.Source, out chan<- token.Token) error {
	resolved, err := s.resolve(ctx, key, src)
	if err != nil {
		return jsonerr.WrapUpstream(err)
	}
	switch v := resolved.(type) {
	case nil:
		return token.Send(ctx, out, token.NullToken())
	case value.Absent:
		return token.Send(ctx, out, token.NullToken())
	case value.Plain:
		return s.writePlain(ctx, depth, v.Value, out)
	case value.StringStream:
		return s.writeStringStream(ctx, v, out)
	case value.ArrayStream:
		return s.writeArrayStream(ctx, depth, v, out)
	case value.ObjectStream:
		return s.writeObjectStream(ctx, depth, v, out)
	case value.RawJSON:
		return s.spliceRawJSON(ctx, v, out)
	default:
		return token.Send(ctx, out, token.NullToken())
	}
}

func (s *Serializer) writePlain(ctx context.Context, depth int, v value.Value, out chan<- token.Token) error {
	switch vv := v.(type) {
	case nil:
		return token.Send(ctx, out, token.NullToken())
	case value.Null:
		return token.Send(ctx, out, token.NullToken())
	case value.Bool:
		return token.Send(ctx, out, token.BooleanToken(bool(vv)))
	case value.Number:
		if math.IsNaN(vv.Float64) || math.IsInf(vv.Float64, 0) {
			return token.Send(ctx, out, token.NullToken())
		}
		raw := vv.Raw
		if raw == "" {
			raw = value.NumberFromFloat64(vv.Float64).Raw
		}
		return token.Send(ctx, out, token.NumberToken(raw, vv.Float64))
	case value.String:
		return s.writeLiteralString(ctx, token.Value, string(vv), out)
	case value.Array:
		return s.writePlainArray(ctx, depth, vv, out)
	case *value.Object:
		return s.writePlainObject(ctx, depth, vv, out)
	default:
		return token.Send(ctx, out, token.NullToken())
	}
}

func (s *Serializer) writeLiteralString(ctx context.Context, role token.Role, text string, out chan<- token.Token) error {
	if err := token.Send(ctx, out, token.StringStartToken(role)); err != nil {
		return err
	}
	if text != "" {
		if err := token.Send(ctx, out, token.StringChunkToken(role, escapeJSONString(text), text)); err != nil {
			return err
		}
	}
	return token.Send(ctx, out, token.StringEndToken(role))
}

func (s *Serializer) writePlainArray(ctx context.Context, depth int, arr value.Array, out chan<- token.Token) error {
	if err := token.Send(ctx, out, token.ArrayStartToken()); err != nil {
		return err
	}
	for i, elem := range arr {
		if err := s.beforeElement(ctx, depth+1, i == 0, out); err != nil {
			return err
		}
		if err := s.writeValue(ctx, "", depth+1, value.Of(elem), out); err != nil {
			return err
		}
	}
	if err := s.beforeClose(ctx, depth, len(arr) > 0, out); err != nil {
		return err
	}
	return token.Send(ctx, out, token.ArrayEndToken())
}

func (s *Serializer) writePlainObject(ctx context.Context, depth int, obj *value.Object, out chan<- token.Token) error {
	if err := token.Send(ctx, out, token.ObjectStartToken()); err != nil {
		return err
	}
	entries := obj.Entries()
	for i, e := range entries {
		if err := s.beforeElement(ctx, depth+1, i == 0, out); err != nil {
			return err
		}
		if err := s.writeLiteralString(ctx, token.Key, e.Key, out); err != nil {
			return err
		}
		if err := s.writeColon(ctx, out); err != nil {
			return err
		}
		if err := s.writeValue(ctx, e.Key, depth+1, value.Of(e.Value), out); err != nil {
			return err
		}
	}
	if err := s.beforeClose(ctx, depth, len(entries) > 0, out); err != nil {
		return err
	}
	return token.Send(ctx, out, token.ObjectEndToken())
}

// beforeElement emits the separating Comma (for non-first entries) and the
// pretty-print indentation whitespace before an array/object entry, per
// SPEC_FULL.md §4.3 "Pretty printing".
func (s *Serializer) beforeElement(ctx context.Context, depth int, first bool, out chan<- token.Token) error {
	if !first {
		if err := token.Send(ctx, out, token.CommaToken(",")); err != nil {
			return err
		}
	}
	if s.opts.pretty() {
		return token.Send(ctx, out, token.WhitespaceToken(indentToken(s.opts.indentUnit(), depth)))
	}
	return nil
}

func (s *Serializer) beforeClose(ctx context.Context, depth int, nonEmpty bool, out chan<- token.Token) error {
	if s.opts.pretty() && nonEmpty {
		return token.Send(ctx, out, token.WhitespaceToken(indentToken(s.opts.indentUnit(), depth)))
	}
	return nil
}

func (s *Serializer) writeColon(ctx context.Context, out chan<- token.Token) error {
	if err := token.Send(ctx, out, token.ColonToken(":")); err != nil {
		return err
	}
	if s.opts.pretty() {
		return token.Send(ctx, out, token.WhitespaceToken(" "))
	}
	return nil
}

func (s *Serializer) writeStringStream(ctx context.Context, ss value.StringStream, out chan<- token.Token) error {
	if err := token.Send(ctx, out, token.StringStartToken(token.Value)); err != nil {
		return err
	}
	for {
		select {
		case frag, ok := <-ss.Fragments:
			if !ok {
				if ss.Err != nil {
					if err := ss.Err(); err != nil {
						return jsonerr.WrapUpstream(err)
					}
				}
				return token.Send(ctx, out, token.StringEndToken(token.Value))
			}
			text := string(frag)
			if err := token.Send(ctx, out, token.StringChunkToken(token.Value, escapeJSONString(text), text)); err != nil {
				return err
			}
		case <-ctx.Done():
			return jsonerr.AsCancelled(ctx.Err())
		}
	}
}

func (s *Serializer) writeArrayStream(ctx context.Context, depth int, as value.ArrayStream, out chan<- token.Token) error {
	if err := token.Send(ctx, out, token.ArrayStartToken()); err != nil {
		return err
	}
	first := true
	for {
		select {
		case item, ok := <-as.Items:
			if !ok {
				if as.Err != nil {
					if err := as.Err(); err != nil {
						return jsonerr.WrapUpstream(err)
					}
				}
				if err := s.beforeClose(ctx, depth, !first, out); err != nil {
					return err
				}
				return token.Send(ctx, out, token.ArrayEndToken())
			}
			resolved, err := s.resolve(ctx, "", item)
			if err != nil {
				return jsonerr.WrapUpstream(err)
			}
			if _, absent := resolved.(value.Absent); absent {
				continue
			}
			if err := s.beforeElement(ctx, depth+1, first, out); err != nil {
				return err
			}
			first = false
			if err := s.writeValue(ctx, "", depth+1, resolved, out); err != nil {
				return err
			}
		case <-ctx.Done():
			return jsonerr.AsCancelled(ctx.Err())
		}
	}
}

func (s *Serializer) writeObjectStream(ctx context.Context, depth int, os value.ObjectStream, out chan<- token.Token) error {
	if err := token.Send(ctx, out, token.ObjectStartToken()); err != nil {
		return err
	}
	first := true
	for {
		select {
		case entry, ok := <-os.Entries:
			if !ok {
				if os.Err != nil {
					if err := os.Err(); err != nil {
						return jsonerr.WrapUpstream(err)
					}
				}
				if err := s.beforeClose(ctx, depth, !first, out); err != nil {
					return err
				}
				return token.Send(ctx, out, token.ObjectEndToken())
			}
			key := entry.Key
			if entry.StreamKey != nil {
				key = "" // SPEC_FULL.md §9 Open Question 4
			}
			resolved, err := s.resolve(ctx, key, entry.Value)
			if err != nil {
				return jsonerr.WrapUpstream(err)
			}
			if _, absent := resolved.(value.Absent); absent {
				continue
			}
			if err := s.beforeElement(ctx, depth+1, first, out); err != nil {
				return err
			}
			first = false
			if entry.StreamKey != nil {
				if err := s.writeStreamKey(ctx, *entry.StreamKey, out); err != nil {
					return err
				}
			} else if err := s.writeLiteralString(ctx, token.Key, entry.Key, out); err != nil {
				return err
			}
			if err := s.writeColon(ctx, out); err != nil {
				return err
			}
			if err := s.writeValue(ctx, key, depth+1, resolved, out); err != nil {
				return err
			}
		case <-ctx.Done():
			return jsonerr.AsCancelled(ctx.Err())
		}
	}
}

func (s *Serializer) writeStreamKey(ctx context.Context, ss value.StringStream, out chan<- token.Token) error {
	if err := token.Send(ctx, out, token.StringStartToken(token.Key)); err != nil {
		return err
	}
	for {
		select {
		case frag, ok := <-ss.Fragments:
			if !ok {
				if ss.Err != nil {
					if err := ss.Err(); err != nil {
						return jsonerr.WrapUpstream(err)
					}
				}
				return token.Send(ctx, out, token.StringEndToken(token.Key))
			}
			text := string(frag)
			if err := token.Send(ctx, out, token.StringChunkToken(token.Key, escapeJSONString(text), text)); err != nil {
				return err
			}
		case <-ctx.Done():
			return jsonerr.AsCancelled(ctx.Err())
		}
	}
}

// spliceRawJSON implements SPEC_FULL.md §9 Open Question 3: feed the raw
// fragment through the parser and forward its tokens directly.
func (s *Serializer) spliceRawJSON(ctx context.Context, raw value.RawJSON, out chan<- token.Token) error {
	p := jsonparser.New(scanner.New(raw.Reader), jsonparser.SingleDocument)
	return p.Produce(ctx, out)
}
