package page

import (
	"iter"

	"github.com/arvindk/termrow/size"
)

// Glyph is one step of forward iteration over a row's glyphs.
type Glyph struct {
	ColumnStart size.CellCountInt
	ColumnEnd   size.CellCountInt
	CodeUnits   []uint16
}

// GlyphIterator walks a Row's glyphs left to right. It holds a live
// reference to the row, so mutating the row mid-iteration produces
// unspecified results.
type GlyphIterator struct {
	row *Row
	col size.CellCountInt
}

// CharsBegin returns an iterator positioned at column 0.
func (r *Row) CharsBegin() *GlyphIterator {
	return &GlyphIterator{row: r, col: 0}
}

// Done reports whether the iterator has consumed every column.
func (g *GlyphIterator) Done() bool {
	return g.col >= g.row.width
}

// Next returns the next glyph and advances past it.
func (g *GlyphIterator) Next() (Glyph, bool) {
	if g.Done() {
		return Glyph{}, false
	}

	start := g.col
	end := start + 1
	for int(end) < int(g.row.width) && g.row.indices[end] == g.row.indices[start] {
		end++
	}

	codeUnits := g.row.chars[g.row.indices[start]:g.row.indices[end]]
	g.col = end
	return Glyph{ColumnStart: start, ColumnEnd: end, CodeUnits: codeUnits}, true
}

// Glyphs returns a range-over-func sequence for use with `for range`.
func (r *Row) Glyphs() iter.Seq[Glyph] {
	return func(yield func(Glyph) bool) {
		it := r.CharsBegin()
		for {
			g, ok := it.Next()
			if !ok {
				return
			}
			if !yield(g) {
				return
			}
		}
	}
}
