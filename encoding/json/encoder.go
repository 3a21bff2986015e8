// Package json adapts the teacher jsonstream project's jsonencoder.go into a
// token-stream pretty-printer: it drives an internal/format.Printer straight
// from the token stream's own structural tokens (ObjectStart/Comma/...)
// instead of the teacher's iterator.Value tree, since every indentation
// decision the teacher's recursive writeObject/writeArray makes is already
// present as an explicit token here.
package json

import (
	"context"

	"github.com/cdauth/jsonstream-go/internal/format"
	"github.com/cdauth/jsonstream-go/jsonerr"
	"github.com/cdauth/jsonstream-go/token"
)

type frameKind uint8

const (
	frameObject frameKind = iota
	frameArray
)

type frame struct {
	kind       frameKind
	hadContent bool
}

// Encoder pretty-prints a token stream to a format.Printer, optionally
// colorizing scalars and keys.
type Encoder struct {
	Printer   format.Printer
	Colorizer *format.Colorizer

	stack []frame
}

var _ token.StreamSink = &Encoder{}

// Consume writes every token in to e's Printer. It assumes in carries a
// well-formed stream (or concatenation of streams). A *format.PrinterError
// panic raised by the Printer is recovered and returned as err.
func (e *Encoder) Consume(ctx context.Context, in <-chan token.Token) (err error) {
	defer format.CatchPrinterError(&err)
	for {
		tok, ok, rerr := token.Receive(ctx, in)
		if rerr != nil {
			return jsonerr.AsCancelled(rerr)
		}
		if !ok {
			return nil
		}
		e.write(tok)
	}
}

func (e *Encoder) write(tok token.Token) {
	switch tok.Kind {
	case token.Whitespace:
		return
	case token.ObjectStart:
		e.beforeValue()
		e.Printer.PrintBytes([]byte("{"))
		e.stack = append(e.stack, frame{kind: frameObject})
		return
	case token.ArrayStart:
		e.beforeValue()
		e.Printer.PrintBytes([]byte("["))
		e.stack = append(e.stack, frame{kind: frameArray})
		return
	case token.ObjectEnd:
		e.closeContainer('}')
		return
	case token.ArrayEnd:
		e.closeContainer(']')
		return
	case token.Comma:
		e.Printer.PrintBytes([]byte(","))
		e.Printer.NewLine()
		return
	case token.Colon:
		e.Printer.PrintBytes([]byte(": "))
		return
	}
	// beforeValue opens an entry's indented block exactly once, on the first
	// token of that entry: for an object entry that's the key's StringStart,
	// for an array entry (no key) it's the element's own opening token.
	// StringChunk/StringEnd continue an already-opened key or value and must
	// not re-trigger it.
	switch tok.Kind {
	case token.StringStart, token.NumberValue, token.BooleanValue, token.NullValue:
		e.beforeValue()
	}
	e.printColored(tok)
}

// beforeValue opens the indented block for the first element of the
// innermost open container; later elements were already newlined by Comma.
func (e *Encoder) beforeValue() {
	if len(e.stack) == 0 {
		return
	}
	top := &e.stack[len(e.stack)-1]
	if !top.hadContent {
		top.hadContent = true
		e.Printer.Indent()
	}
}

func (e *Encoder) closeContainer(closeByte byte) {
	top := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	if top.hadContent {
		e.Printer.Dedent()
	}
	e.Printer.PrintBytes([]byte{closeByte})
}

func (e *Encoder) printColored(tok token.Token) {
	var data []byte
	switch tok.Kind {
	case token.StringStart:
		data = []byte(`"`)
	case token.StringChunk:
		data = []byte(tok.Raw)
	case token.StringEnd:
		data = []byte(`"`)
	default:
		data = []byte(tok.Raw)
	}
	if e.Colorizer != nil {
		e.Colorizer.PrintBytes(e.Printer, tok.Kind, tok.Role, data)
	} else {
		e.Printer.PrintBytes(data)
	}
}
