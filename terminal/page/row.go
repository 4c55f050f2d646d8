// Package page implements Row, the storage layer for a single line of a
// terminal screen: a fixed-width column grid over a packed code-unit
// buffer, an index table mapping columns to code-unit ranges, and a
// run-length-encoded attribute sequence.
package page

import (
	"strings"
	"unicode/utf16"

	"github.com/arvindk/termrow/size"
	"github.com/arvindk/termrow/terminal/attr"
	"github.com/arvindk/termrow/terminal/utils"
)

// Blank is the code unit written into cleared or freshly reset columns.
const Blank uint16 = ' '

// DbcsTrailingSentinel is the code unit a WriteCells producer sends for the
// second column of a wide glyph; it is what actually gets stored as the
// glyph's second code unit in chars.
const DbcsTrailingSentinel uint16 = 0xFFFF

// Row is one line of the terminal, fixed at Width columns until Resize.
// It is a passive, single-owner-mutable data structure: it does not lock
// and does not support a concurrent writer alongside any reader.
type Row struct {
	// chars is the packed code-unit buffer currently in use. It starts as
	// baselineChars (caller-owned) and may be swapped for a larger,
	// Row-owned allocation by ensureCapacity.
	chars         []uint16
	baselineChars []uint16
	charsCapacity int
	charsOwned    bool

	// indices has width+1 entries; indices[c] is the code-unit offset
	// where the glyph occupying column c begins, and indices[width] is
	// the total number of code units in use.
	indices []int

	attrs             *attr.List
	dbcsPaddedColumns *utils.StaticBitSet

	width            size.CellCountInt
	lineRendition    LineRendition
	wrapForced       bool
	doubleBytePadded bool
}

// NewRow constructs a Row of the given width backed by chars (length
// width) and indices (length width+1). Both are borrowed from the caller
// until a later Resize replaces them.
func NewRow(chars []uint16, indices []int, width size.CellCountInt, fillAttr attr.Attribute) *Row {
	utils.Assert(width > 0, "page: row width must be positive")
	utils.Assert(len(chars) == int(width), "page: chars backing must be width-sized")
	utils.Assert(len(indices) == int(width)+1, "page: indices backing must be width+1 sized")

	r := &Row{
		baselineChars: chars,
		indices:       indices,
		width:         width,
	}
	r.Reset(fillAttr)
	return r
}

// Width reports the row's current column count.
func (r *Row) Width() size.CellCountInt {
	return r.width
}

// LineRendition reports the row's display mode.
func (r *Row) LineRendition() LineRendition {
	return r.lineRendition
}

// SetLineRendition sets the row's display mode.
func (r *Row) SetLineRendition(lr LineRendition) {
	r.lineRendition = lr
}

// WrapForced reports whether the previous line spilled into this one.
func (r *Row) WrapForced() bool {
	return r.wrapForced
}

// DoubleBytePadded reports whether this row's last column was blanked to
// make room for a wide glyph that carries over to the next row.
func (r *Row) DoubleBytePadded() bool {
	return r.doubleBytePadded
}

// dbcsPaddedColumnsBitmap lazily allocates the row's padded-column bitmap
// and returns it, mirroring the original's _getDbcsPaddedColumns().
func (r *Row) dbcsPaddedColumnsBitmap() *utils.StaticBitSet {
	if r.dbcsPaddedColumns == nil {
		r.dbcsPaddedColumns = utils.NewStaticBitSet(int(r.width))
	}
	return r.dbcsPaddedColumns
}

// markDbcsPadded records that col holds padding written in place of a wide
// glyph's second half rather than real content.
func (r *Row) markDbcsPadded(col size.CellCountInt) {
	r.dbcsPaddedColumnsBitmap().Set(int(col))
}

// IsDbcsPadded reports whether col currently holds DBCS padding rather
// than real glyph content. A row that has never padded any column reports
// false for every column without allocating the bitmap.
func (r *Row) IsDbcsPadded(col size.CellCountInt) bool {
	if r.dbcsPaddedColumns == nil {
		return false
	}
	return r.dbcsPaddedColumns.IsSet(int(col))
}

// Reset restores the row to its baseline buffer, blanks every column, and
// replaces the attribute list with a single run of fillAttr.
func (r *Row) Reset(fillAttr attr.Attribute) {
	r.chars = r.baselineChars
	r.charsCapacity = len(r.baselineChars)
	r.charsOwned = false

	for i := range r.chars {
		r.chars[i] = Blank
	}
	for c := 0; c <= int(r.width); c++ {
		r.indices[c] = c
	}

	r.attrs = attr.NewList(r.width, fillAttr)
	r.dbcsPaddedColumns = nil
	r.lineRendition = SingleWidth
	r.wrapForced = false
	r.doubleBytePadded = false
}

// ReplaceCharacters writes glyph as a single unit occupying columns
// [col, col+width). Any pre-existing glyph that overlaps that range is
// replaced in full, even the columns of it that fall outside the range.
func (r *Row) ReplaceCharacters(col size.CellCountInt, width size.CellCountInt, glyph []uint16) error {
	if len(glyph) == 0 || width <= 0 {
		return nil
	}

	col1 := int(col)
	col2 := col1 + int(width)
	if col1 < 0 || col2 > int(r.width) {
		return ErrColumnOutOfRange
	}
	if col1 >= col2 {
		return nil
	}

	// Expand left over columns that are the middle/trailing part of a
	// glyph col1 is already inside of.
	col0 := col1
	ch1ref := r.indices[col1]
	for col0 > 0 && r.indices[col0-1] == ch1ref {
		col0--
	}

	// Expand right to cover every column of the glyph whose head sits at
	// col2-1.
	col3 := col2
	tailRef := r.indices[col2-1]
	for col3 < int(r.width) && r.indices[col3] == tailRef {
		col3++
	}

	leadingSpaces := col1 - col0
	trailingSpaces := col3 - col2

	newCh1 := r.indices[col0] + leadingSpaces + len(glyph) + trailingSpaces
	oldCh1 := r.indices[col3]
	delta := newCh1 - oldCh1
	if delta != 0 {
		r.shiftTail(oldCh1, delta)
	}

	pos := r.indices[col0]
	for c := col0; c < col1; c++ {
		r.indices[c] = pos
	}
	for i := 0; i < leadingSpaces; i++ {
		r.chars[pos+i] = Blank
	}
	pos += leadingSpaces

	glyphStart := pos
	for c := col1; c < col2; c++ {
		r.indices[c] = glyphStart
	}
	copy(r.chars[glyphStart:glyphStart+len(glyph)], glyph)
	pos = glyphStart + len(glyph)

	for c := col2; c < col3; c++ {
		r.indices[c] = pos
	}
	for i := 0; i < trailingSpaces; i++ {
		r.chars[pos+i] = Blank
	}
	pos += trailingSpaces
	utils.Assert(pos == newCh1, "page: replace characters offset bookkeeping drifted")

	if delta != 0 {
		for c := col3; c <= int(r.width); c++ {
			r.indices[c] += delta
		}
	}

	// Whatever col0..col3 held before, it's real content now.
	if r.dbcsPaddedColumns != nil {
		for c := col0; c < col3; c++ {
			r.dbcsPaddedColumns.Unset(c)
		}
	}
	return nil
}

// shiftTail moves chars[oldOffset..indices[width]) so it instead starts at
// oldOffset+delta, growing the backing buffer first if needed.
func (r *Row) shiftTail(oldOffset int, delta int) {
	oldLen := r.indices[r.width]
	newLen := oldLen + delta
	r.ensureCapacity(newLen)

	visibleLen := oldLen
	if newLen > visibleLen {
		visibleLen = newLen
	}
	r.chars = r.chars[:visibleLen]
	copy(r.chars[oldOffset+delta:newLen], r.chars[oldOffset:oldLen])
	r.chars = r.chars[:newLen]
}

// ensureCapacity grows chars, amortized 1.5x, so it can hold at least
// minLen code units.
func (r *Row) ensureCapacity(minLen int) {
	if minLen <= r.charsCapacity {
		return
	}
	grown, overflowed := utils.AddWithOverflow(r.charsCapacity, r.charsCapacity/2)
	newCap := minLen
	if !overflowed && grown > minLen {
		newCap = grown
	}

	newBuf := make([]uint16, len(r.chars), newCap)
	copy(newBuf, r.chars)
	r.chars = newBuf
	r.charsCapacity = newCap
	r.charsOwned = true
}

// ClearCell blanks a single column.
func (r *Row) ClearCell(col size.CellCountInt) error {
	return r.ReplaceCharacters(col, 1, []uint16{Blank})
}

// GlyphAt returns the code units of the glyph occupying col, clamping col
// into range if it is out of bounds.
func (r *Row) GlyphAt(col size.CellCountInt) []uint16 {
	c := int(col)
	if c >= int(r.width) {
		c = int(r.width) - 1
	}
	if c < 0 {
		c = 0
	}

	start := c
	end := c + 1
	for end < int(r.width) && r.indices[end] == r.indices[start] {
		end++
	}
	return r.chars[r.indices[start]:r.indices[end]]
}

// DbcsAttrAt classifies col's role in the glyph it belongs to.
func (r *Row) DbcsAttrAt(col size.CellCountInt) DbcsAttr {
	c := int(col)
	if c > 0 && r.indices[c-1] == r.indices[c] {
		return Trailing
	}
	if c < int(r.width) && r.indices[c+1] == r.indices[c] {
		return Leading
	}
	return Single
}

// DelimiterClassAt classifies the glyph at col against wordDelimiters, for
// callers implementing word-boundary navigation. Only the glyph's first
// code unit is examined. A blank always counts as a delimiter; every other
// delimiter comes from the caller's set.
func (r *Row) DelimiterClassAt(col size.CellCountInt, wordDelimiters string) DelimiterClass {
	glyph := r.GlyphAt(col)
	if len(glyph) == 0 {
		return RegularChar
	}
	ch := glyph[0]
	if ch < 0x20 || ch == 0x7f {
		return ControlChar
	}
	if ch == Blank || strings.ContainsRune(wordDelimiters, rune(ch)) {
		return DelimiterChar
	}
	return RegularChar
}

// MeasureLeft returns the chars-buffer offset of the first non-blank code
// unit, or the length of the in-use buffer if the row is entirely blank.
func (r *Row) MeasureLeft() int {
	end := r.indices[r.width]
	for i := 0; i < end; i++ {
		if r.chars[i] != Blank {
			return i
		}
	}
	return end
}

// MeasureRight returns the chars-buffer offset of the last non-blank code
// unit, or -1 if the row is entirely blank.
func (r *Row) MeasureRight() int {
	end := r.indices[r.width]
	for i := end - 1; i >= 0; i-- {
		if r.chars[i] != Blank {
			return i
		}
	}
	return -1
}

// ContainsText reports whether any code unit in the row is not blank.
func (r *Row) ContainsText() bool {
	end := r.indices[r.width]
	for i := 0; i < end; i++ {
		if r.chars[i] != Blank {
			return true
		}
	}
	return false
}

// CodeUnitLen returns the number of code units currently in use in the
// row's packed chars buffer, i.e. indices[Width()].
func (r *Row) CodeUnitLen() size.CodeUnitCount {
	return size.CodeUnitCount(r.indices[r.width])
}

// GetText returns the row's raw code units. The slice may contain
// DbcsTrailingSentinel verbatim; interpreting that is a caller concern.
func (r *Row) GetText() []uint16 {
	return r.chars[:r.indices[r.width]]
}

// AsString decodes GetText as UTF-16 for logging or debugging. Any
// DbcsTrailingSentinel code units come through unchanged, as U+FFFF.
func (r *Row) AsString() string {
	return string(utf16.Decode(r.GetText()))
}

// Attributes exposes the row's attribute runs.
func (r *Row) Attributes() []attr.Run {
	return r.attrs.Runs()
}

// GetAttrByColumn returns the attribute covering col.
func (r *Row) GetAttrByColumn(col size.CellCountInt) attr.Attribute {
	return r.attrs.GetAttrByColumn(col)
}

// SetAttrToEnd overwrites [begin, Width) with value.
func (r *Row) SetAttrToEnd(begin size.CellCountInt, value attr.Attribute) {
	r.attrs.SetAttrToEnd(begin, value)
}

// ReplaceAttrs retargets every run equal to old to new.
func (r *Row) ReplaceAttrs(old, newVal attr.Attribute) {
	r.attrs.ReplaceAttrs(old, newVal)
}

// GetHyperlinks enumerates hyperlink ids across the row's attribute runs.
func (r *Row) GetHyperlinks() []uint64 {
	return r.attrs.GetHyperlinks()
}

// WriteCells bulk-writes cells from it starting at column index, applying
// text and/or attribute per each cell's Behavior, and returns it
// positioned at the first cell it did not consume. limitRight bounds the
// last column touched (defaulting to Width-1); wrap, if non-nil, sets
// WrapForced to *wrap when a cell that is not StoredOnly reaches the limit
// column.
func (r *Row) WriteCells(it CellIterator, index size.CellCountInt, wrap *bool, limitRight *size.CellCountInt) (CellIterator, error) {
	if index < 0 || int(index) >= int(r.width) {
		return it, ErrColumnOutOfRange
	}

	limit := int(r.width) - 1
	if limitRight != nil {
		limit = int(*limitRight)
		if limit < 0 || limit >= int(r.width) {
			return it, ErrColumnOutOfRange
		}
	}

	c := int(index)
	runStart := c
	var runAttr attr.Attribute

	for c <= limit {
		cell, ok := it.Peek()
		if !ok {
			break
		}

		if cell.Behavior == Current {
			if c > runStart && runAttr != nil {
				r.attrs.Replace(size.CellCountInt(runStart), size.CellCountInt(c), runAttr)
			}
			runAttr = nil
			runStart = c + 1
		} else if runAttr == nil || !cell.TextAttr.Equal(runAttr) {
			if c > runStart && runAttr != nil {
				r.attrs.Replace(size.CellCountInt(runStart), size.CellCountInt(c), runAttr)
			}
			runAttr = cell.TextAttr
			runStart = c
		}

		consumed := true
		if cell.Behavior != StoredOnly {
			switch cell.DbcsAttr {
			case Single:
				r.ReplaceCharacters(size.CellCountInt(c), 1, cell.Chars)
			case Leading:
				if c == limit {
					r.ClearCell(size.CellCountInt(c))
					r.doubleBytePadded = true
					r.markDbcsPadded(size.CellCountInt(c))
					consumed = false
				} else {
					r.ReplaceCharacters(size.CellCountInt(c), 2, cell.Chars)
				}
			case Trailing:
				if c > 0 && len(cell.Chars) > 0 && cell.Chars[0] == DbcsTrailingSentinel {
					leadUnit := r.chars[r.indices[c-1]]
					r.ReplaceCharacters(size.CellCountInt(c-1), 2, []uint16{leadUnit, DbcsTrailingSentinel})
				}
				// A Trailing cell arriving at column 0, or whose payload
				// isn't the padding sentinel, has nothing to pair with and
				// is silently dropped.
			}

			// Only a cell that actually touched the text (not a
			// StoredOnly attribute-only stamp) can carry the wrap
			// status of the line that produced it.
			if c == limit && wrap != nil {
				r.wrapForced = *wrap
			}
		}

		if consumed {
			it.Advance()
		}
		c++
	}

	if c > runStart && runAttr != nil {
		r.attrs.Replace(size.CellCountInt(runStart), size.CellCountInt(c), runAttr)
	}

	return it, nil
}

// Resize moves this row's content into a new width, copying as many whole
// glyphs as fit and blanking the rest. newChars must have length newWidth
// and newIndices length newWidth+1; both become the row's new baseline.
func (r *Row) Resize(newChars []uint16, newIndices []int, newWidth size.CellCountInt) error {
	utils.Assert(newWidth > 0, "page: resize to non-positive width")
	utils.Assert(len(newChars) == int(newWidth), "page: newChars must be width-sized")
	utils.Assert(len(newIndices) == int(newWidth)+1, "page: newIndices must be width+1 sized")

	colsToCopy := int(r.width)
	if int(newWidth) < colsToCopy {
		colsToCopy = int(newWidth)
	}
	charsToCopy := r.indices[colsToCopy]

	// Drop a trailing glyph that colsToCopy would otherwise split.
	for colsToCopy > 0 && r.indices[colsToCopy-1] == charsToCopy {
		colsToCopy--
	}
	charsToCopy = r.indices[colsToCopy]

	trailingBlanks := int(newWidth) - colsToCopy
	required := charsToCopy + trailingBlanks

	target := newChars
	owned := false
	if required > int(newWidth) {
		target = make([]uint16, required)
		owned = true
	}

	copy(target[:charsToCopy], r.chars[:charsToCopy])
	for i := charsToCopy; i < required; i++ {
		target[i] = Blank
	}

	copy(newIndices[:colsToCopy], r.indices[:colsToCopy])
	for i := 0; i <= int(newWidth)-colsToCopy; i++ {
		newIndices[colsToCopy+i] = charsToCopy + i
	}

	if r.dbcsPaddedColumns != nil {
		newBitmap := utils.NewStaticBitSet(int(newWidth))
		for c := 0; c < colsToCopy; c++ {
			if r.dbcsPaddedColumns.IsSet(c) {
				newBitmap.Set(c)
			}
		}
		r.dbcsPaddedColumns = newBitmap
	}

	r.attrs.ResizeTrailingExtent(newWidth)

	r.baselineChars = newChars
	r.chars = target
	r.charsCapacity = len(target)
	r.charsOwned = owned
	r.indices = newIndices
	r.width = newWidth
	return nil
}
