package page

import "github.com/arvindk/termrow/terminal/attr"

// CellBehavior controls which part of an InputCell WriteCells actually
// applies.
type CellBehavior int

const (
	// Normal applies both text and attribute.
	Normal CellBehavior = iota
	// Current applies text only; the row's existing attribute run is left
	// untouched for these columns.
	Current
	// StoredOnly applies the attribute only; the row's existing text is
	// left untouched for these columns.
	StoredOnly
)

// InputCell is a single item a CellIterator produces for WriteCells.
type InputCell struct {
	// Chars is the code-unit sequence for this cell: a single glyph, or
	// the DBCS trailing sentinel when DbcsAttr is Trailing.
	Chars []uint16
	// DbcsAttr classifies this cell's column role.
	DbcsAttr DbcsAttr
	// TextAttr is the attribute to apply, subject to Behavior.
	TextAttr attr.Attribute
	// Behavior selects which of Chars/TextAttr actually gets written.
	Behavior CellBehavior
}

// CellIterator is the producer WriteCells consumes. Peek returns the next
// item without consuming it; Advance consumes whatever Peek last returned.
// This split lets WriteCells return an iterator still positioned on an
// unconsumed cell (a Leading cell that didn't fit at the row's right
// edge) without needing to push a value back onto the sequence.
type CellIterator interface {
	// Peek reports the next cell and whether one is available.
	Peek() (InputCell, bool)
	// Advance consumes the cell last returned by Peek.
	Advance()
}
