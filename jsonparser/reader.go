package jsonparser

import (
	"io"

	"github.com/cdauth/jsonstream-go/internal/scanner"
)

// NewFromReader is a convenience constructor wrapping r in a default-sized
// internal/scanner.Scanner.
func NewFromReader(r io.Reader, mode Mode) *Parser {
	return New(scanner.New(r), mode)
}
