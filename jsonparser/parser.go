// Package jsonparser implements the character-driven push parser of
// SPEC_FULL.md §4.1: bytes in, token.Token out, one token.Token per
// grammatical unit, honoring chunk-boundary flushing and both single- and
// multi-document modes.
//
// The parser is grounded in the teacher jsonstream project's
// internal/scanner-driven approach (a Scanner the caller controls the
// refill timing of) but replaces its recursive-descent parseObject/parseArray
// with an explicit stack of frames, since this parser must be able to
// suspend at any byte boundary — something a recursive descent parser
// blocked inside a Go function call cannot do without an extra goroutine per
// nesting level.
package jsonparser

import (
	"context"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/cdauth/jsonstream-go/internal/debug"
	"github.com/cdauth/jsonstream-go/internal/scanner"
	"github.com/cdauth/jsonstream-go/jsonerr"
	"github.com/cdauth/jsonstream-go/token"
)

// Mode selects how many top-level values the parser accepts.
type Mode uint8

const (
	// SingleDocument accepts exactly one top-level value.
	SingleDocument Mode = iota
	// MultiDocument accepts zero or more top-level values, JSONL- and
	// JSON-seq-framed (spec.md §4.1 "Modes").
	MultiDocument
)

// RecordSeparator is the RFC 7464 JSON-seq framing byte, accepted between
// top-level values in MultiDocument mode.
const RecordSeparator byte = 0x1E

type containerKind uint8

const (
	containerObject containerKind = iota
	containerArray
)

type containerState uint8

const (
	afterStart containerState = iota
	afterKey
	afterColon
	afterValue
	afterComma
)

type frame struct {
	kind  containerKind
	state containerState
}

type position uint8

const (
	posInvalid position = iota
	posObjectKey
	posObjectValue
	posArrayValue
	posRootValue
)

type escState uint8

const (
	escNone escState = iota
	escBackslash
	escUnicode
)

type numSub uint8

const (
	numMinus numSub = iota
	numIntDigits
	numPoint
	numFracDigits
	numExp
	numExpSign
	numExpDigits
)

type docState uint8

const (
	docStart docState = iota
	docEnd
)

// Parser consumes bytes from an io.Reader (via internal/scanner.Scanner) and
// produces token.Token values. It implements token.StreamSource.
type Parser struct {
	scanner *scanner.Scanner
	mode    Mode

	stack []frame
	doc   docState

	wsBuf []byte

	numActive  bool
	numSub     numSub
	numRaw     []byte
	numNeg     bool
	numLeading bool

	litActive bool
	lit       string
	litPos    int

	inString     bool
	strRole      token.Role
	strEsc       escState
	strRawBuf    []byte
	strTextBuf   []byte
	unicodeDigits []byte
	pendingHigh   uint16
	havePending   bool
}

// New returns a Parser reading from s in the given mode.
func New(s *scanner.Scanner, mode Mode) *Parser {
	return &Parser{scanner: s, mode: mode}
}

// Produce implements token.StreamSource.
func (p *Parser) Produce(ctx context.Context, out chan<- token.Token) error {
	lastFill := p.scanner.FillCount()
	for {
		b, ok, err := p.scanner.Peek()
		if err != nil {
			return err
		}
		if !ok {
			return p.finish(ctx, out)
		}
		if fc := p.scanner.FillCount(); fc != lastFill {
			lastFill = fc
			if err := p.flushChunkBoundary(ctx, out); err != nil {
				return err
			}
		}
		if _, _, err := p.scanner.ReadByte(); err != nil {
			return err
		}
		if err := p.step(ctx, out, b); err != nil {
			return err
		}
	}
}

func (p *Parser) emit(ctx context.Context, out chan<- token.Token, tok token.Token) error {
	return token.Send(ctx, out, tok)
}

func (p *Parser) errAt(state string, b byte) error {
	line, col := p.scanner.Pos()
	debug.Printf("jsonparser: unexpected %q in state %s at %d:%d", b, state, line, col)
	return &jsonerr.UnexpectedCharacterError{Char: b, Offset: p.scanner.Offset(), Line: line, Col: col, State: state}
}

func (p *Parser) prematureEnd(state string) error {
	return &jsonerr.PrematureEndError{State: state}
}

// step processes one input byte, looping internally when an "implicit
// terminator" (spec.md §4.1 step 1) requires re-dispatching the same byte
// after closing out a number or flushing whitespace.
func (p *Parser) step(ctx context.Context, out chan<- token.Token, b byte) error {
	if p.inString {
		return p.stepString(ctx, out, b)
	}
	if p.numActive {
		if next, extends := numTransition(p.numSub, b); extends {
			wasMinus := p.numSub == numMinus
			p.numSub = next
			p.numRaw = append(p.numRaw, b)
			if wasMinus && next == numIntDigits {
				// First digit of the integer part of a negative number: this
				// is the leading digit itself, not a repeat of it.
				p.numLeading = b == '0'
			} else if scanner.IsDigit(b) && p.numLeading && next == numIntDigits {
				return p.errAt("number", b)
			}
			return nil
		}
		if !numTerminal(p.numSub) {
			return p.errAt("number", b)
		}
		if err := p.completeNumber(ctx, out); err != nil {
			return err
		}
		return p.step(ctx, out, b)
	}
	if p.litActive {
		if p.lit[p.litPos] != b {
			return p.errAt("literal", b)
		}
		p.litPos++
		if p.litPos == len(p.lit) {
			if err := p.completeLiteral(ctx, out); err != nil {
				return err
			}
		}
		return nil
	}
	return p.dispatch(ctx, out, b)
}

func isWhitespaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

func (p *Parser) dispatch(ctx context.Context, out chan<- token.Token, b byte) error {
	if isWhitespaceByte(b) || (len(p.stack) == 0 && p.mode == MultiDocument && b == RecordSeparator) {
		p.wsBuf = append(p.wsBuf, b)
		return nil
	}
	if len(p.wsBuf) > 0 {
		if err := p.flushWhitespace(ctx, out); err != nil {
			return err
		}
	}

	switch b {
	case '{':
		if !p.canStartValue() {
			return p.errAt("value", b)
		}
		p.stack = append(p.stack, frame{kind: containerObject, state: afterStart})
		return p.emit(ctx, out, token.ObjectStartToken())
	case '[':
		if !p.canStartValue() {
			return p.errAt("value", b)
		}
		p.stack = append(p.stack, frame{kind: containerArray, state: afterStart})
		return p.emit(ctx, out, token.ArrayStartToken())
	case '}':
		if len(p.stack) == 0 {
			return p.errAt("root", b)
		}
		top := &p.stack[len(p.stack)-1]
		if top.kind != containerObject || (top.state != afterStart && top.state != afterValue) {
			return p.errAt("object", b)
		}
		p.stack = p.stack[:len(p.stack)-1]
		if err := p.emit(ctx, out, token.ObjectEndToken()); err != nil {
			return err
		}
		p.completeValue(false)
		return nil
	case ']':
		if len(p.stack) == 0 {
			return p.errAt("root", b)
		}
		top := &p.stack[len(p.stack)-1]
		if top.kind != containerArray || (top.state != afterStart && top.state != afterValue) {
			return p.errAt("array", b)
		}
		p.stack = p.stack[:len(p.stack)-1]
		if err := p.emit(ctx, out, token.ArrayEndToken()); err != nil {
			return err
		}
		p.completeValue(false)
		return nil
	case ',':
		if len(p.stack) == 0 {
			return p.errAt("root", b)
		}
		top := &p.stack[len(p.stack)-1]
		if top.state != afterValue {
			return p.errAt("container", b)
		}
		top.state = afterComma
		return p.emit(ctx, out, token.CommaToken(","))
	case ':':
		if len(p.stack) == 0 {
			return p.errAt("root", b)
		}
		top := &p.stack[len(p.stack)-1]
		if top.kind != containerObject || top.state != afterKey {
			return p.errAt("object", b)
		}
		top.state = afterColon
		return p.emit(ctx, out, token.ColonToken(":"))
	case '"':
		pos := p.position()
		var role token.Role
		switch pos {
		case posObjectKey:
			role = token.Key
		case posObjectValue, posArrayValue, posRootValue:
			role = token.Value
		default:
			return p.errAt("string", b)
		}
		p.beginString(role)
		return p.emit(ctx, out, token.StringStartToken(role))
	case '-':
		if !p.canStartValue() {
			return p.errAt("value", b)
		}
		p.beginNumber(b)
		return nil
	case 't':
		if !p.canStartValue() {
			return p.errAt("value", b)
		}
		p.beginLiteral("true")
		return nil
	case 'f':
		if !p.canStartValue() {
			return p.errAt("value", b)
		}
		p.beginLiteral("false")
		return nil
	case 'n':
		if !p.canStartValue() {
			return p.errAt("value", b)
		}
		p.beginLiteral("null")
		return nil
	default:
		if scanner.IsDigit(b) {
			if !p.canStartValue() {
				return p.errAt("value", b)
			}
			p.beginNumber(b)
			return nil
		}
		return p.errAt("value", b)
	}
}

func (p *Parser) canStartValue() bool {
	switch p.position() {
	case posObjectValue, posArrayValue, posRootValue:
		return true
	default:
		return false
	}
}

func (p *Parser) position() position {
	if len(p.stack) == 0 {
		if p.doc == docEnd && p.mode == SingleDocument {
			return posInvalid
		}
		return posRootValue
	}
	top := &p.stack[len(p.stack)-1]
	if top.kind == containerObject {
		switch top.state {
		case afterStart, afterComma:
			return posObjectKey
		case afterColon:
			return posObjectValue
		default:
			return posInvalid
		}
	}
	switch top.state {
	case afterStart, afterComma:
		return posArrayValue
	default:
		return posInvalid
	}
}

// completeValue transitions the enclosing frame (or the root document state)
// after a value, or a key, has just finished.
func (p *Parser) completeValue(isKey bool) {
	if len(p.stack) == 0 {
		p.doc = docEnd
		return
	}
	top := &p.stack[len(p.stack)-1]
	if isKey {
		top.state = afterKey
		return
	}
	top.state = afterValue
}

func (p *Parser) flushWhitespace(ctx context.Context, out chan<- token.Token) error {
	raw := string(p.wsBuf)
	p.wsBuf = p.wsBuf[:0]
	return p.emit(ctx, out, token.WhitespaceToken(raw))
}

// flushChunkBoundary implements spec.md §4.1 "Chunk-boundary flushing":
// called whenever the scanner needed a fresh Read() to produce the byte
// about to be processed.
func (p *Parser) flushChunkBoundary(ctx context.Context, out chan<- token.Token) error {
	if p.inString && p.strEsc == escNone && len(p.strRawBuf) > 0 {
		if err := p.emit(ctx, out, token.StringChunkToken(p.strRole, string(p.strRawBuf), string(p.strTextBuf))); err != nil {
			return err
		}
		p.strRawBuf = p.strRawBuf[:0]
		p.strTextBuf = p.strTextBuf[:0]
		return nil
	}
	if !p.inString && len(p.wsBuf) > 0 {
		return p.flushWhitespace(ctx, out)
	}
	return nil
}

// ---- numbers ----

func numTransition(s numSub, b byte) (numSub, bool) {
	digit := scanner.IsDigit(b)
	switch s {
	case numMinus:
		if digit {
			return numIntDigits, true
		}
	case numIntDigits:
		if digit {
			return numIntDigits, true
		}
		if b == '.' {
			return numPoint, true
		}
		if b == 'e' || b == 'E' {
			return numExp, true
		}
	case numPoint:
		if digit {
			return numFracDigits, true
		}
	case numFracDigits:
		if digit {
			return numFracDigits, true
		}
		if b == 'e' || b == 'E' {
			return numExp, true
		}
	case numExp:
		if b == '+' || b == '-' {
			return numExpSign, true
		}
		if digit {
			return numExpDigits, true
		}
	case numExpSign:
		if digit {
			return numExpDigits, true
		}
	case numExpDigits:
		if digit {
			return numExpDigits, true
		}
	}
	return s, false
}

func numTerminal(s numSub) bool {
	switch s {
	case numIntDigits, numFracDigits, numExpDigits:
		return true
	default:
		return false
	}
}

func (p *Parser) beginNumber(b byte) {
	p.numActive = true
	p.numRaw = append(p.numRaw[:0], b)
	p.numLeading = b == '0'
	if b == '-' {
		p.numSub = numMinus
	} else {
		p.numSub = numIntDigits
	}
}

func (p *Parser) completeNumber(ctx context.Context, out chan<- token.Token) error {
	raw := string(p.numRaw)
	p.numActive = false
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		f = 0
	}
	p.completeValue(false)
	return p.emit(ctx, out, token.NumberToken(raw, f))
}

// ---- literals ----

func (p *Parser) beginLiteral(lit string) {
	p.litActive = true
	p.lit = lit
	p.litPos = 1
}

func (p *Parser) completeLiteral(ctx context.Context, out chan<- token.Token) error {
	lit := p.lit
	p.litActive = false
	p.completeValue(false)
	switch lit {
	case "true":
		return p.emit(ctx, out, token.BooleanToken(true))
	case "false":
		return p.emit(ctx, out, token.BooleanToken(false))
	default:
		return p.emit(ctx, out, token.NullToken())
	}
}

// ---- strings ----

func (p *Parser) beginString(role token.Role) {
	p.inString = true
	p.strRole = role
	p.strEsc = escNone
	p.strRawBuf = p.strRawBuf[:0]
	p.strTextBuf = p.strTextBuf[:0]
	p.unicodeDigits = p.unicodeDigits[:0]
	p.havePending = false
}

func (p *Parser) stepString(ctx context.Context, out chan<- token.Token, b byte) error {
	switch p.strEsc {
	case escNone:
		switch {
		case b == '"':
			if len(p.strRawBuf) > 0 {
				if err := p.emit(ctx, out, token.StringChunkToken(p.strRole, string(p.strRawBuf), string(p.strTextBuf))); err != nil {
					return err
				}
				p.strRawBuf = p.strRawBuf[:0]
				p.strTextBuf = p.strTextBuf[:0]
			}
			p.inString = false
			role := p.strRole
			if err := p.emit(ctx, out, token.StringEndToken(role)); err != nil {
				return err
			}
			p.completeValue(role == token.Key)
			return nil
		case b == '\\':
			p.strEsc = escBackslash
			return nil
		case scanner.IsCtrl(b):
			return p.errAt("string", b)
		default:
			p.strRawBuf = append(p.strRawBuf, b)
			p.strTextBuf = append(p.strTextBuf, b)
			return nil
		}
	case escBackslash:
		p.strRawBuf = append(p.strRawBuf, '\\', b)
		switch b {
		case '"', '\\', '/':
			p.strTextBuf = append(p.strTextBuf, b)
			p.strEsc = escNone
			return nil
		case 'b':
			p.strTextBuf = append(p.strTextBuf, '\b')
			p.strEsc = escNone
			return nil
		case 'f':
			p.strTextBuf = append(p.strTextBuf, '\f')
			p.strEsc = escNone
			return nil
		case 'n':
			p.strTextBuf = append(p.strTextBuf, '\n')
			p.strEsc = escNone
			return nil
		case 'r':
			p.strTextBuf = append(p.strTextBuf, '\r')
			p.strEsc = escNone
			return nil
		case 't':
			p.strTextBuf = append(p.strTextBuf, '\t')
			p.strEsc = escNone
			return nil
		case 'u':
			p.strEsc = escUnicode
			p.unicodeDigits = p.unicodeDigits[:0]
			return nil
		default:
			return p.errAt("string escape", b)
		}
	case escUnicode:
		if !isHexDigit(b) {
			return p.errAt("unicode escape", b)
		}
		p.strRawBuf = append(p.strRawBuf, b)
		p.unicodeDigits = append(p.unicodeDigits, b)
		if len(p.unicodeDigits) < 4 {
			return nil
		}
		codeUnit, _ := strconv.ParseUint(string(p.unicodeDigits), 16, 32)
		p.strEsc = escNone
		p.appendCodeUnit(uint16(codeUnit))
		return nil
	}
	return nil
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// appendCodeUnit resolves one UTF-16 code unit from a \uXXXX escape,
// buffering a pending high surrogate until its low surrogate arrives, per
// spec.md §4.1 item 3's atomic-absorption rule.
func (p *Parser) appendCodeUnit(codeUnit uint16) {
	if p.havePending {
		r := utf16.DecodeRune(rune(p.pendingHigh), rune(codeUnit))
		p.havePending = false
		if r == utf8.RuneError {
			var buf [utf8.UTFMax]byte
			n := utf8.EncodeRune(buf[:], utf8.RuneError)
			p.strTextBuf = append(p.strTextBuf, buf[:n]...)
			p.appendCodeUnit(codeUnit)
			return
		}
		var buf [utf8.UTFMax]byte
		n := utf8.EncodeRune(buf[:], r)
		p.strTextBuf = append(p.strTextBuf, buf[:n]...)
		return
	}
	if utf16.IsSurrogate(rune(codeUnit)) && codeUnit >= 0xD800 && codeUnit <= 0xDBFF {
		p.pendingHigh = codeUnit
		p.havePending = true
		return
	}
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], rune(codeUnit))
	p.strTextBuf = append(p.strTextBuf, buf[:n]...)
}

// finish runs the end-of-stream implicit terminator step (spec.md §4.1
// "End-of-stream").
func (p *Parser) finish(ctx context.Context, out chan<- token.Token) error {
	if p.inString {
		return p.prematureEnd("string")
	}
	if p.numActive {
		if !numTerminal(p.numSub) {
			return p.prematureEnd("number")
		}
		if err := p.completeNumber(ctx, out); err != nil {
			return err
		}
	}
	if p.litActive {
		return p.prematureEnd("literal")
	}
	if len(p.wsBuf) > 0 {
		if err := p.flushWhitespace(ctx, out); err != nil {
			return err
		}
	}
	if len(p.stack) != 0 {
		return p.prematureEnd("container")
	}
	if p.mode == SingleDocument && p.doc != docEnd {
		return p.prematureEnd("document")
	}
	return nil
}
