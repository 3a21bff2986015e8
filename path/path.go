// Package path implements the path and selector model of SPEC_FULL.md §3.2
// and §3.3: an ordered sequence of key/index segments describing a token's
// position in the document tree, and the pattern/predicate selectors that
// match subsets of paths.
package path

import (
	"strconv"
	"strings"
)

// Segment is one element of a Path: either an object key or an array index.
type Segment struct {
	key     string
	index   int
	isIndex bool
}

// Key builds a key segment.
func Key(k string) Segment { return Segment{key: k} }

// Index builds an index segment.
func Index(i int) Segment { return Segment{index: i, isIndex: true} }

func (s Segment) IsIndex() bool { return s.isIndex }

// KeyName returns the segment's key; valid only when !IsIndex().
func (s Segment) KeyName() string { return s.key }

// IndexValue returns the segment's index; valid only when IsIndex().
func (s Segment) IndexValue() int { return s.index }

func (s Segment) String() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.key
}

func (s Segment) equal(o Segment) bool {
	if s.isIndex != o.isIndex {
		return false
	}
	if s.isIndex {
		return s.index == o.index
	}
	return s.key == o.key
}

// Path is an ordered sequence of segments; the empty Path denotes the
// document root.
type Path []Segment

// Clone returns an independent copy of p, suitable for the "snapshot copy"
// a PathDetector attaches to each token it emits (SPEC_FULL.md §4.5).
func (p Path) Clone() Path {
	if len(p) == 0 {
		return nil
	}
	c := make(Path, len(p))
	copy(c, p)
	return c
}

// Equal reports whether p and o have the same segments in the same order.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if !p[i].equal(o[i]) {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is a prefix of p (every Path has itself
// and Path{} as prefixes).
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if !p[i].equal(prefix[i]) {
			return false
		}
	}
	return true
}

// WithSegment returns a new Path with seg appended, without mutating p's
// backing array.
func (p Path) WithSegment(seg Segment) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = seg
	return out
}

// TrimPrefix removes prefix from the front of p, returning the remainder.
// It panics if prefix is not in fact a prefix of p, since callers (the
// splitter re-rooting a sub-stream) only ever call it having just checked
// HasPrefix.
func (p Path) TrimPrefix(prefix Path) Path {
	if !p.HasPrefix(prefix) {
		panic("path: TrimPrefix: not a prefix")
	}
	if len(p) == len(prefix) {
		return nil
	}
	return p[len(prefix):]
}

func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.String())
	}
	return b.String()
}
