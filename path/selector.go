package path

import (
	"strconv"
	"strings"

	"github.com/cdauth/jsonstream-go/jsonerr"
)

// A Selector matches paths, per SPEC_FULL.md §3.3. Pattern implements the
// structural (pattern) form; PredicateSelector implements the opaque
// function form.
type Selector interface {
	Match(p Path) bool
}

// PredicateSelector adapts a plain function to Selector. It is
// library-internal per spec.md §3.3/§6 — there is no textual form for it.
type PredicateSelector func(p Path) bool

func (f PredicateSelector) Match(p Path) bool { return f(p) }

// entryKind discriminates the four pattern-entry constructs named in
// SPEC_FULL.md §6: literal key, literal index, an alternative set of
// keys/indices, and the wildcard.
type entryKind uint8

const (
	entryKeyLiteral entryKind = iota
	entryIndexLiteral
	entrySet
	entryWildcard
)

// PatternEntry constrains one segment of a matched Path.
type PatternEntry struct {
	kind    entryKind
	key     string
	index   int
	keySet  map[string]struct{}
	idxSet  map[int]struct{}
}

func (e PatternEntry) matches(seg Segment) bool {
	switch e.kind {
	case entryWildcard:
		return true
	case entryKeyLiteral:
		return !seg.IsIndex() && seg.KeyName() == e.key
	case entryIndexLiteral:
		return seg.IsIndex() && seg.IndexValue() == e.index
	case entrySet:
		if seg.IsIndex() {
			_, ok := e.idxSet[seg.IndexValue()]
			return ok
		}
		_, ok := e.keySet[seg.KeyName()]
		return ok
	default:
		return false
	}
}

// KeyEntry matches a single literal object key.
func KeyEntry(key string) PatternEntry { return PatternEntry{kind: entryKeyLiteral, key: key} }

// IndexEntry matches a single literal array index.
func IndexEntry(index int) PatternEntry { return PatternEntry{kind: entryIndexLiteral, index: index} }

// WildcardEntry matches any single segment.
func WildcardEntry() PatternEntry { return PatternEntry{kind: entryWildcard} }

// SetEntry matches any of the given keys (for an object segment) or indices
// parsed from numeric alternatives (for an array segment).
func SetEntry(alternatives []string) (PatternEntry, error) {
	keySet := make(map[string]struct{}, len(alternatives))
	idxSet := make(map[int]struct{}, len(alternatives))
	anyIndex := false
	for _, alt := range alternatives {
		if alt == "" {
			return PatternEntry{}, &jsonerr.InvalidSelectorError{Reason: "empty alternative in {...} set"}
		}
		if n, err := strconv.Atoi(alt); err == nil {
			if n < 0 {
				return PatternEntry{}, &jsonerr.InvalidSelectorError{Reason: "negative index in {...} set: " + alt}
			}
			idxSet[n] = struct{}{}
			anyIndex = true
		}
		keySet[alt] = struct{}{}
	}
	_ = anyIndex
	return PatternEntry{kind: entrySet, keySet: keySet, idxSet: idxSet}, nil
}

// Pattern is the ordered-list selector form of SPEC_FULL.md §3.3: its i-th
// entry constrains the i-th segment of a matching Path. A Path matches only
// if its length equals len(Pattern).
type Pattern []PatternEntry

var _ Selector = Pattern(nil)

func (pat Pattern) Match(p Path) bool {
	if len(p) != len(pat) {
		return false
	}
	for i, seg := range p {
		if !pat[i].matches(seg) {
			return false
		}
	}
	return true
}

// ParsePattern parses the textual selector language of spec.md §6: a
// dot-separated sequence of segments, where each segment is a literal key, a
// non-negative integer index, a brace-delimited alternative set
// "{a,b,c}", or "*" for a wildcard.
//
// This is a hand-written scanner rather than a grammar-compiler-library
// invocation (see DESIGN.md for why arnodel/grammar, the teacher's JSONPath
// grammar dependency, was dropped rather than reused here): the grammar has
// exactly four productions and no recursion, operator precedence or
// backtracking, which a PEG/parser-combinator library would be solving a
// problem this selector language doesn't have.
func ParsePattern(s string) (Pattern, error) {
	if s == "" {
		return Pattern{}, nil
	}
	parts := strings.Split(s, ".")
	pat := make(Pattern, 0, len(parts))
	for _, part := range parts {
		entry, err := parseEntry(part)
		if err != nil {
			return nil, err
		}
		pat = append(pat, entry)
	}
	return pat, nil
}

func parseEntry(part string) (PatternEntry, error) {
	switch {
	case part == "":
		return PatternEntry{}, &jsonerr.InvalidSelectorError{Selector: part, Reason: "empty segment"}
	case part == "*":
		return WildcardEntry(), nil
	case strings.HasPrefix(part, "{"):
		if !strings.HasSuffix(part, "}") {
			return PatternEntry{}, &jsonerr.InvalidSelectorError{Selector: part, Reason: "unterminated {...} set"}
		}
		inner := part[1 : len(part)-1]
		if inner == "" {
			return PatternEntry{}, &jsonerr.InvalidSelectorError{Selector: part, Reason: "empty {...} set"}
		}
		entry, err := SetEntry(strings.Split(inner, ","))
		if err != nil {
			if se, ok := err.(*jsonerr.InvalidSelectorError); ok {
				se.Selector = part
			}
			return PatternEntry{}, err
		}
		return entry, nil
	default:
		if n, err := strconv.Atoi(part); err == nil {
			if n < 0 {
				return PatternEntry{}, &jsonerr.InvalidSelectorError{Selector: part, Reason: "negative index"}
			}
			return IndexEntry(n), nil
		}
		return KeyEntry(part), nil
	}
}
