// Package jsonerr defines the error kinds every transform in this module
// surfaces, per SPEC_FULL.md §7. Construction goes through
// github.com/pkg/errors so that an error which crosses several transform
// boundaries (parser -> detector -> selector -> splitter -> deserializer)
// keeps a usable stack trace and an intact cause chain, which the teacher
// jsonstream project's bare fmt.Errorf/errors.New calls do not preserve once
// wrapped more than once.
package jsonerr

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// UnexpectedCharacterError is returned by the Parser when the current
// grammatical state cannot be extended by the next input character.
type UnexpectedCharacterError struct {
	Char   byte
	Offset int64
	Line   int
	Col    int
	State  string
}

func (e *UnexpectedCharacterError) Error() string {
	if e.Char == 0 {
		return fmt.Sprintf("unexpected end of input at byte %d (line %d, col %d) in state %s", e.Offset, e.Line, e.Col, e.State)
	}
	return fmt.Sprintf("unexpected character %q at byte %d (line %d, col %d) in state %s", e.Char, e.Offset, e.Line, e.Col, e.State)
}

// PrematureEndError is returned by the Parser when input ends in the middle
// of a document.
type PrematureEndError struct {
	State string
}

func (e *PrematureEndError) Error() string {
	return fmt.Sprintf("premature end of input while parsing %s", e.State)
}

// InvalidSelectorError is returned synchronously when a selector expression
// is malformed, e.g. a negative array index or an unterminated {...} set.
type InvalidSelectorError struct {
	Selector string
	Reason   string
}

func (e *InvalidSelectorError) Error() string {
	return fmt.Sprintf("invalid selector %q: %s", e.Selector, e.Reason)
}

// ErrCancelled is the sentinel wrapped whenever a transform observes its
// context cancelled, either on its own input or output side.
var ErrCancelled = errors.New("jsonstream: cancelled")

// AsCancelled turns a context error into ErrCancelled, preserving the
// context's own cause via %w so errors.Is(err, ErrCancelled) and
// errors.Is(err, context.Canceled) both work, per SPEC_FULL.md §5's
// cancellation-forwarding rule.
func AsCancelled(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrCancelled, err)
}

// IsCancellation reports whether err originated from context cancellation,
// either directly or wrapped by AsCancelled.
func IsCancellation(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// UpstreamError wraps a failure received from an upstream stage so that
// downstream consumers see an error on their own output without losing the
// original cause, per SPEC_FULL.md §7.
type UpstreamError struct {
	cause error
}

func (e *UpstreamError) Error() string { return "upstream error: " + e.cause.Error() }

func (e *UpstreamError) Unwrap() error { return e.cause }

// WrapUpstream wraps err as an UpstreamError with a captured stack trace,
// unless it is already one (in which case it is passed through unchanged so
// repeated wrapping at each pipeline stage doesn't pile up redundant frames).
func WrapUpstream(err error) error {
	if err == nil {
		return nil
	}
	var up *UpstreamError
	if errors.As(err, &up) {
		return err
	}
	return &UpstreamError{cause: errors.WithStack(err)}
}
