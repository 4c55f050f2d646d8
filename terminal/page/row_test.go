package page

import (
	"testing"

	"github.com/arvindk/termrow/size"
	"github.com/arvindk/termrow/terminal/attr"
	"github.com/arvindk/termrow/terminal/cellattr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRow(width int) *Row {
	chars := make([]uint16, width)
	indices := make([]int, width+1)
	return NewRow(chars, indices, size.CellCountInt(width), cellattr.Attribute{})
}

// sliceIterator is a CellIterator over a fixed slice, for tests.
type sliceIterator struct {
	cells []InputCell
	pos   int
}

func (s *sliceIterator) Peek() (InputCell, bool) {
	if s.pos >= len(s.cells) {
		return InputCell{}, false
	}
	return s.cells[s.pos], true
}

func (s *sliceIterator) Advance() {
	s.pos++
}

func singleCell(ch rune, a attr.Attribute) InputCell {
	return InputCell{Chars: []uint16{uint16(ch)}, DbcsAttr: Single, TextAttr: a}
}

func TestRow_ReplaceCharactersBasic(t *testing.T) {
	r := newTestRow(4)
	err := r.ReplaceCharacters(1, 1, []uint16{'A'})
	require.NoError(t, err)

	assert.Equal(t, []uint16{'A'}, r.GlyphAt(1))
	assert.Equal(t, " A  ", r.AsString())
}

func TestRow_ReplaceCharactersOutOfRange(t *testing.T) {
	r := newTestRow(4)
	err := r.ReplaceCharacters(3, 2, []uint16{'A'})
	assert.ErrorIs(t, err, ErrColumnOutOfRange)
}

func TestRow_ReplaceCharactersGrowsBuffer(t *testing.T) {
	r := newTestRow(4)
	err := r.ReplaceCharacters(0, 1, []uint16{'H', 'i'})
	require.NoError(t, err)

	assert.Equal(t, []uint16{'H', 'i'}, r.GlyphAt(0))
	assert.Equal(t, Single, r.DbcsAttrAt(0))
}

func TestRow_ReplaceCharactersOverwritesMultiUnitGlyph(t *testing.T) {
	r := newTestRow(4)
	require.NoError(t, r.ReplaceCharacters(0, 1, []uint16{'H', 'i'}))
	require.NoError(t, r.ReplaceCharacters(0, 1, []uint16{'X'}))

	assert.Equal(t, []uint16{'X'}, r.GlyphAt(0))
	assert.Equal(t, DbcsAttr(Single), r.DbcsAttrAt(0))
}

func TestRow_ClearCell(t *testing.T) {
	r := newTestRow(4)
	require.NoError(t, r.ReplaceCharacters(2, 1, []uint16{'Z'}))
	require.NoError(t, r.ClearCell(2))

	assert.Equal(t, []uint16{Blank}, r.GlyphAt(2))
}

func TestRow_GlyphAtClampsOutOfRange(t *testing.T) {
	r := newTestRow(4)
	require.NoError(t, r.ReplaceCharacters(3, 1, []uint16{'Z'}))

	assert.Equal(t, []uint16{'Z'}, r.GlyphAt(10))
	assert.Equal(t, []uint16{Blank}, r.GlyphAt(-1))
}

func TestRow_DbcsAttrAt(t *testing.T) {
	r := newTestRow(4)
	require.NoError(t, r.ReplaceCharacters(1, 2, []uint16{'W', 'i'}))

	assert.Equal(t, Single, r.DbcsAttrAt(0))
	assert.Equal(t, Leading, r.DbcsAttrAt(1))
	assert.Equal(t, Trailing, r.DbcsAttrAt(2))
	assert.Equal(t, Single, r.DbcsAttrAt(3))
}

func TestRow_MeasureLeftAndRightOnBlankRow(t *testing.T) {
	r := newTestRow(4)
	assert.Equal(t, 4, r.MeasureLeft())
	assert.Equal(t, -1, r.MeasureRight())
	assert.False(t, r.ContainsText())
}

func TestRow_MeasureLeftAndRightWithText(t *testing.T) {
	r := newTestRow(6)
	require.NoError(t, r.ReplaceCharacters(2, 1, []uint16{'A'}))
	require.NoError(t, r.ReplaceCharacters(4, 1, []uint16{'B'}))

	assert.Equal(t, 2, r.MeasureLeft())
	assert.Equal(t, 4, r.MeasureRight())
	assert.True(t, r.ContainsText())
}

func TestRow_CodeUnitLenTracksPackedBuffer(t *testing.T) {
	r := newTestRow(4)
	assert.EqualValues(t, 4, r.CodeUnitLen())

	require.NoError(t, r.ReplaceCharacters(0, 1, []uint16{'H', 'i'}))
	assert.EqualValues(t, 5, r.CodeUnitLen())
}

func TestRow_DelimiterClassAt(t *testing.T) {
	r := newTestRow(4)
	require.NoError(t, r.ReplaceCharacters(0, 1, []uint16{'a'}))
	require.NoError(t, r.ReplaceCharacters(1, 1, []uint16{','}))
	require.NoError(t, r.ReplaceCharacters(2, 1, []uint16{0x01}))

	assert.Equal(t, RegularChar, r.DelimiterClassAt(0, " ,"))
	assert.Equal(t, DelimiterChar, r.DelimiterClassAt(1, " ,"))
	assert.Equal(t, ControlChar, r.DelimiterClassAt(2, " ,"))
	assert.Equal(t, DelimiterChar, r.DelimiterClassAt(3, " ,"))
}

func TestRow_WriteCellsSimpleRun(t *testing.T) {
	r := newTestRow(4)
	a := cellattr.Attribute{Bold: true}
	it := &sliceIterator{cells: []InputCell{
		singleCell('A', a), singleCell('B', a), singleCell('C', a),
	}}

	rest, err := r.WriteCells(it, 0, nil, nil)
	require.NoError(t, err)
	_, ok := rest.Peek()
	assert.False(t, ok)

	assert.Equal(t, "ABC ", r.AsString())
	assert.Equal(t, a, r.GetAttrByColumn(0))
	assert.Equal(t, a, r.GetAttrByColumn(2))
}

func TestRow_WriteCellsLeadingAtRightEdgeIsUnconsumed(t *testing.T) {
	r := newTestRow(4)
	a := cellattr.Attribute{}
	wide := InputCell{Chars: []uint16{'W', 'i'}, DbcsAttr: Leading, TextAttr: a}
	it := &sliceIterator{cells: []InputCell{
		singleCell('A', a), singleCell('B', a), singleCell('C', a), wide,
	}}

	rest, err := r.WriteCells(it, 0, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "ABC ", r.AsString())
	assert.True(t, r.DoubleBytePadded())

	peeked, ok := rest.Peek()
	require.True(t, ok)
	assert.Equal(t, wide, peeked)
}

func TestRow_WriteCellsTrailingAtColumnZeroIsDropped(t *testing.T) {
	r := newTestRow(4)
	a := cellattr.Attribute{}
	trailing := InputCell{Chars: []uint16{DbcsTrailingSentinel}, DbcsAttr: Trailing, TextAttr: a}
	it := &sliceIterator{cells: []InputCell{trailing, singleCell('X', a)}}

	_, err := r.WriteCells(it, 0, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, " X  ", r.AsString())
}

func TestRow_WriteCellsTrailingWithNonSentinelPayloadIsDropped(t *testing.T) {
	r := newTestRow(4)
	a := cellattr.Attribute{}
	wide := InputCell{Chars: []uint16{'W', 'i'}, DbcsAttr: Leading, TextAttr: a}
	notPadding := InputCell{Chars: []uint16{'i'}, DbcsAttr: Trailing, TextAttr: a}
	it := &sliceIterator{cells: []InputCell{wide, notPadding, singleCell('C', a)}}

	_, err := r.WriteCells(it, 0, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []uint16{'W', 'i'}, r.GlyphAt(0))
	assert.Equal(t, "WiC ", r.AsString())
}

func TestRow_WriteCellsSetsWrapForcedAtLimit(t *testing.T) {
	r := newTestRow(4)
	a := cellattr.Attribute{}
	it := &sliceIterator{cells: []InputCell{
		singleCell('A', a), singleCell('B', a), singleCell('C', a), singleCell('D', a),
	}}

	wrap := true
	_, err := r.WriteCells(it, 0, &wrap, nil)
	require.NoError(t, err)
	assert.True(t, r.WrapForced())
}

func TestRow_WriteCellsStoredOnlyAtLastColumnDoesNotSetWrap(t *testing.T) {
	r := newTestRow(4)
	a := cellattr.Attribute{Bold: true}
	it := &sliceIterator{cells: []InputCell{
		{Chars: []uint16{'D'}, DbcsAttr: Single, TextAttr: a, Behavior: StoredOnly},
	}}

	wrap := true
	_, err := r.WriteCells(it, 3, &wrap, nil)
	require.NoError(t, err)

	assert.False(t, r.WrapForced())
	assert.Equal(t, a, r.GetAttrByColumn(3))
	assert.Equal(t, []uint16{Blank}, r.GlyphAt(3))
}

func TestRow_WriteCellsLeadingAtRightEdgeMarksDbcsPadded(t *testing.T) {
	r := newTestRow(4)
	a := cellattr.Attribute{}
	wide := InputCell{Chars: []uint16{'W', 'i'}, DbcsAttr: Leading, TextAttr: a}
	it := &sliceIterator{cells: []InputCell{
		singleCell('A', a), singleCell('B', a), singleCell('C', a), wide,
	}}

	_, err := r.WriteCells(it, 0, nil, nil)
	require.NoError(t, err)

	assert.True(t, r.IsDbcsPadded(3))
	assert.False(t, r.IsDbcsPadded(0))

	require.NoError(t, r.ReplaceCharacters(3, 1, []uint16{'Z'}))
	assert.False(t, r.IsDbcsPadded(3))
}

func TestRow_WriteCellsCurrentBehaviorLeavesAttrUntouched(t *testing.T) {
	r := newTestRow(4)
	base := cellattr.Attribute{Bold: true}
	r.SetAttrToEnd(0, base)

	it := &sliceIterator{cells: []InputCell{
		{Chars: []uint16{'A'}, DbcsAttr: Single, Behavior: Current},
	}}

	_, err := r.WriteCells(it, 0, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "A   ", r.AsString())
	assert.Equal(t, base, r.GetAttrByColumn(0))
}

func TestRow_ResizeShrinkDropsStraddledGlyph(t *testing.T) {
	r := newTestRow(4)
	require.NoError(t, r.ReplaceCharacters(2, 2, []uint16{'W', 'i'}))

	newChars := make([]uint16, 3)
	newIndices := make([]int, 4)
	require.NoError(t, r.Resize(newChars, newIndices, 3))

	assert.EqualValues(t, 3, r.Width())
	assert.Equal(t, "  ", r.AsString()[:2])
}

func TestRow_ResizeGrowPadsWithBlanks(t *testing.T) {
	r := newTestRow(3)
	require.NoError(t, r.ReplaceCharacters(0, 1, []uint16{'A'}))

	newChars := make([]uint16, 5)
	newIndices := make([]int, 6)
	require.NoError(t, r.Resize(newChars, newIndices, 5))

	assert.EqualValues(t, 5, r.Width())
	assert.Equal(t, "A    ", r.AsString())
}

func TestRow_ResetRestoresBaseline(t *testing.T) {
	r := newTestRow(4)
	require.NoError(t, r.ReplaceCharacters(0, 1, []uint16{'H', 'i'}))

	fill := cellattr.Attribute{Faint: true}
	r.Reset(fill)

	assert.Equal(t, "    ", r.AsString())
	assert.Equal(t, fill, r.GetAttrByColumn(0))
	assert.False(t, r.ContainsText())
}

func TestRow_GlyphIteration(t *testing.T) {
	r := newTestRow(4)
	require.NoError(t, r.ReplaceCharacters(0, 2, []uint16{'W', 'i'}))
	require.NoError(t, r.ReplaceCharacters(2, 1, []uint16{'A'}))

	var glyphs []Glyph
	for g := range r.Glyphs() {
		glyphs = append(glyphs, g)
	}

	require.Len(t, glyphs, 3)
	assert.Equal(t, []uint16{'W', 'i'}, glyphs[0].CodeUnits)
	assert.EqualValues(t, 0, glyphs[0].ColumnStart)
	assert.EqualValues(t, 2, glyphs[0].ColumnEnd)
	assert.Equal(t, []uint16{'A'}, glyphs[1].CodeUnits)
	assert.Equal(t, []uint16{Blank}, glyphs[2].CodeUnits)
}
