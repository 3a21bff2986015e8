package format

import "github.com/cdauth/jsonstream-go/token"

// Colorizer wraps scalar and key output in ANSI color codes, adapted from
// the teacher's root-level Colorizer but keyed by token.Kind/Role instead of
// Scalar.Type, since this module's tokens don't carry the teacher's 4-value
// scalar-type tag.
type Colorizer struct {
	KeyColor     []byte
	StringColor  []byte
	NumberColor  []byte
	BoolColor    []byte
	NullColor    []byte
	PunctColor   []byte
	ResetCode    []byte
}

func (c *Colorizer) colorFor(kind token.Kind, role token.Role) []byte {
	if role == token.Key {
		return c.KeyColor
	}
	switch kind {
	case token.StringStart, token.StringChunk, token.StringEnd:
		return c.StringColor
	case token.NumberValue:
		return c.NumberColor
	case token.BooleanValue:
		return c.BoolColor
	case token.NullValue:
		return c.NullColor
	default:
		return c.PunctColor
	}
}

// PrintBytes writes b wrapped in the color appropriate for kind/role, or
// unwrapped if c is nil.
func (c *Colorizer) PrintBytes(p Printer, kind token.Kind, role token.Role, b []byte) {
	if c == nil {
		p.PrintBytes(b)
		return
	}
	if code := c.colorFor(kind, role); code != nil {
		p.PrintBytes(code)
		p.PrintBytes(b)
		p.PrintBytes(c.ResetCode)
		return
	}
	p.PrintBytes(b)
}

// DefaultColorizer matches the teacher's own chosen palette (colorizer.go's
// "the colors I chose"), remapped onto this module's token kinds.
var DefaultColorizer = Colorizer{
	StringColor: []byte("\033[32m"),
	NumberColor: []byte("\033[33m"),
	BoolColor:   []byte("\033[37m"),
	NullColor:   []byte("\033[37;2m"),
	KeyColor:    []byte("\033[34;1m"),
	PunctColor:  nil,
	ResetCode:   []byte("\033[0m"),
}
