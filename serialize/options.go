package serialize

// Options controls pretty-printing and multi-document framing, per
// SPEC_FULL.md §4.3.
type Options struct {
	// Indent, if non-empty, is used as one level of indentation and enables
	// pretty-printing. IndentSize is an alternative way to request N spaces
	// of indentation; it is ignored when Indent is non-empty. Neither set
	// means compact output.
	Indent     string
	IndentSize int

	// BeforeFirst is emitted once, before the first document, in
	// multi-document mode.
	BeforeFirst string
	// Delimiter is emitted between adjacent documents. Defaults to "\n"
	// (JSONL) when empty and multi-document framing is used.
	Delimiter string
	// AfterLast is emitted once, after the last document.
	AfterLast string
}

func (o Options) indentUnit() string {
	if o.Indent != "" {
		return o.Indent
	}
	if o.IndentSize > 0 {
		return " " + spaces(o.IndentSize-1)
	}
	return ""
}

func (o Options) pretty() bool { return o.indentUnit() != "" }

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

func (o Options) delimiter() string {
	if o.Delimiter != "" {
		return o.Delimiter
	}
	return "\n"
}

// JSONLOptions returns Options framing documents as JSON Lines.
func JSONLOptions() Options { return Options{Delimiter: "\n"} }

// JSONSeqOptions returns Options framing documents per RFC 7464 JSON text
// sequences.
func JSONSeqOptions() Options {
	return Options{BeforeFirst: "\x1e", Delimiter: "\n\x1e", AfterLast: "\n"}
}

func indentToken(unit string, depth int) string {
	if depth <= 0 {
		return "\n"
	}
	n := len(unit) * depth
	b := make([]byte, 0, n+1)
	b = append(b, '\n')
	for i := 0; i < depth; i++ {
		b = append(b, unit...)
	}
	return string(b)
}
