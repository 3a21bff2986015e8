// Package format adapts the teacher jsonstream project's root-level Printer
// and Colorizer (printer.go, colorizer.go) into helpers for the demo CLI's
// token-stream pretty-printer: indentation bookkeeping plus ANSI coloring
// keyed by token.Kind rather than the teacher's Scalar.Type.
package format

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Printer receives pretty-printing instructions: Indent/Dedent/NewLine
// manage indentation, PrintBytes sends output verbatim. Methods panic with
// a *PrinterError rather than returning one, matching the teacher's own
// Printer contract — see CatchPrinterError.
type Printer interface {
	Indent()
	Dedent()
	NewLine()
	PrintBytes([]byte)
}

// CatchPrinterError recovers a panic raised by a Printer implementation and
// stores it in *err, re-panicking anything else.
func CatchPrinterError(err *error) {
	if r := recover(); r != nil {
		if perr, ok := r.(*PrinterError); ok {
			*err = perr
		} else {
			panic(r)
		}
	}
}

// PrinterError wraps an error encountered while a Printer was writing.
type PrinterError struct {
	Err error
}

func (e *PrinterError) Error() string { return fmt.Sprintf("printer error: %s", e.Err) }

func (e *PrinterError) Unwrap() error { return e.Err }

// DefaultPrinter writes to an io.Writer, indenting by IndentSize spaces per
// level. A negative IndentSize suppresses new lines entirely (single-line
// output); zero keeps new lines without indentation.
type DefaultPrinter struct {
	io.Writer
	IndentSize int

	// Flusher, if set, is flushed after every NewLine so a terminal reader
	// sees output as it's produced rather than only once the buffer fills.
	Flusher interface{ Flush() error }

	indentLevel int
}

var _ Printer = &DefaultPrinter{}

func (p *DefaultPrinter) write(b []byte) {
	if _, err := p.Write(b); err != nil {
		// Captured with a stack trace via pkg/errors, same as every other
		// transform boundary in this module (see jsonerr), so a write
		// failure several layers under token.StreamSink.Consume still shows
		// where the underlying io.Writer actually failed.
		panic(&PrinterError{Err: errors.WithStack(err)})
	}
}

// NewLine writes '\n' followed by IndentSize*level spaces.
func (p *DefaultPrinter) NewLine() {
	if p.IndentSize < 0 {
		return
	}
	p.write([]byte{'\n'})
	for i := p.IndentSize * p.indentLevel; i > 0; i-- {
		p.write([]byte{' '})
	}
	if p.Flusher != nil {
		if err := p.Flusher.Flush(); err != nil {
			panic(&PrinterError{Err: errors.WithStack(err)})
		}
	}
}

// Indent increments the indentation level, then calls NewLine.
func (p *DefaultPrinter) Indent() {
	p.indentLevel++
	p.NewLine()
}

// Dedent decrements the indentation level, then calls NewLine.
func (p *DefaultPrinter) Dedent() {
	p.indentLevel--
	p.NewLine()
}

// PrintBytes writes b verbatim.
func (p *DefaultPrinter) PrintBytes(b []byte) { p.write(b) }
