package liveeval

import "reflect"

// HighlightKind distinguishes a highlight span that groups other spans
// from one that highlights a single leaf lexeme.
type HighlightKind uint8

const (
	// HighlightGroup marks a span that contains nested highlighted spans.
	HighlightGroup HighlightKind = iota

	// HighlightLeaf marks a span with no further nested structure.
	HighlightLeaf
)

// String implements fmt.Stringer.
func (k HighlightKind) String() string {
	if k == HighlightGroup {
		return "group"
	}

	return "leaf"
}

// Span is a half-open [Start, End) byte range into a SourceBlock's source
// text.
type Span struct {
	Start int
	End   int
}

// Highlight is one highlighted span within a SourceBlock, tagged with
// whether it groups nested spans or highlights a single leaf.
type Highlight struct {
	Kind HighlightKind
	Span Span
}

// SourceBlock is one top-level, independently evaluable fragment of the
// watched file: the unit that parseCells produces and evalFun consumes.
// It carries enough structure for a client to render syntax highlighting
// and hover tooltips without re-parsing anything itself.
type SourceBlock struct {
	// Line is the 1-based line number where this block begins in the
	// file it was parsed from.
	Line int

	// BlockID identifies this block within the parse tree produced for a
	// single snapshot. Unlike NodeId, it is not stable across re-parses;
	// it exists so Focus/Highlights/HoverInfo can reference lexemes
	// without repeating the lexeme text.
	BlockID int

	// Lexemes is the flat token sequence making up this block's source
	// text, in order.
	Lexemes []string

	// Focus maps a child lexeme index to its parent lexeme index,
	// describing the block's syntax tree without a separate node type.
	Focus map[int]int

	// Highlights maps a parent lexeme index to the highlighted spans
	// nested under it.
	Highlights map[int][]Highlight

	// HoverInfo maps a lexeme index to the tooltip text shown when a
	// client hovers over it.
	HoverInfo map[int]string

	// HTML is the block's pre-rendered HTML, produced ahead of time so
	// clients never need a markdown/syntax renderer of their own.
	HTML string
}

// Equal reports whether two SourceBlocks are interchangeable for the
// purpose of preserving a cell's NodeId across a re-parse. Two blocks at
// different source lines, or with different text, are never equal — the
// comparison intentionally mirrors the identity-preserving contract in
// spec §4.4: a block counts as unchanged only if everything a client
// would render is unchanged too.
func (b SourceBlock) Equal(other SourceBlock) bool {
	if b.Line != other.Line || b.BlockID != other.BlockID {
		return false
	}

	if b.HTML != other.HTML {
		return false
	}

	if len(b.Lexemes) != len(other.Lexemes) {
		return false
	}

	for i, l := range b.Lexemes {
		if other.Lexemes[i] != l {
			return false
		}
	}

	return reflect.DeepEqual(b.Focus, other.Focus) &&
		reflect.DeepEqual(b.Highlights, other.Highlights) &&
		reflect.DeepEqual(b.HoverInfo, other.HoverInfo)
}

// SourceBlockEq is an EqFunc[SourceBlock] built on SourceBlock.Equal, ready
// to hand to ComputeNodeListUpdate.
func SourceBlockEq(a, b SourceBlock) bool {
	return a.Equal(b)
}
