// Package value implements the in-memory value model of SPEC_FULL.md §3.4:
// a closed tree of null/bool/number/string/array/object, built by the
// deserializer and consumed by the serializer.
package value

import "strconv"

// Value is implemented by Null, Bool, Number, String, Array and *Object.
type Value interface {
	// isValue is unexported so Value stays a closed sum type, matching the
	// teacher jsonstream project's own preference for closed token/value
	// kinds over an open interface any caller could implement.
	isValue()
}

// Null is the JSON null value.
type Null struct{}

func (Null) isValue() {}

// Bool is a JSON boolean.
type Bool bool

func (Bool) isValue() {}

// Number is a JSON number: a decoded float64 plus, where available, the
// exact source text (so a bigint's digits survive round-tripping even where
// the float64 has lost precision, per spec.md §3.4/§4.3).
type Number struct {
	Float64 float64
	Raw     string
}

func (Number) isValue() {}

// NumberFromFloat64 builds a Number whose Raw text is the shortest decimal
// representation of f.
func NumberFromFloat64(f float64) Number {
	return Number{Float64: f, Raw: strconv.FormatFloat(f, 'g', -1, 64)}
}

// String is a JSON string, already decoded (escapes resolved).
type String string

func (String) isValue() {}

// Array is an ordered sequence of values.
type Array []Value

func (Array) isValue() {}

// Object is an ordered sequence of key/value pairs. Duplicate keys collapse
// to the last writer, per spec.md §3.4; Set maintains this while preserving
// the position of the first occurrence of a repeated key, matching ordinary
// JSON-object semantics.
type Object struct {
	keys   []string
	values map[string]Value
}

func (*Object) isValue() {}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Set assigns key, appending it to the iteration order on first use.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value for key and whether it is present.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the object's keys in insertion order.
func (o *Object) Keys() []string { return o.keys }

// Len returns the number of entries.
func (o *Object) Len() int { return len(o.keys) }

// Entries returns the object's entries as ordered pairs.
func (o *Object) Entries() []Entry {
	out := make([]Entry, len(o.keys))
	for i, k := range o.keys {
		out[i] = Entry{Key: k, Value: o.values[k]}
	}
	return out
}

// Entry is one key/value pair of an Object, as returned by Entries.
type Entry struct {
	Key   string
	Value Value
}
