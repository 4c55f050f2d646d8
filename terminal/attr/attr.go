// Package attr implements the run-length-encoded attribute sequence that
// backs a single row of the terminal's text buffer. It knows nothing about
// color, hyperlinks or SGR; it only ever compares attribute values for
// equality and coalesces equal, adjacent runs.
package attr

import (
	"github.com/arvindk/termrow/size"
	"github.com/arvindk/termrow/terminal/utils"
)

// Attribute is a single cell's attribute value. Row and List treat it as
// opaque; a concrete type (see the cellattr package) supplies the actual
// color/style/hyperlink data.
type Attribute interface {
	Equal(other Attribute) bool
	IsHyperlink() bool
	HyperlinkID() uint64
}

// Run is a maximal span of consecutive columns sharing the same value.
type Run struct {
	Value  Attribute
	Length size.CellCountInt
}

// List is a run-length-encoded attribute sequence covering exactly Width
// columns. The zero value is not usable; construct with NewList.
type List struct {
	runs  []Run
	width size.CellCountInt
}

// NewList builds a List of the given width with every column set to fill.
func NewList(width size.CellCountInt, fill Attribute) *List {
	utils.Assert(width > 0, "attr: list width must be positive")
	return &List{
		runs:  []Run{{Value: fill, Length: width}},
		width: width,
	}
}

// Width reports the total number of columns this list covers.
func (l *List) Width() size.CellCountInt {
	return l.width
}

// Runs returns a copy of the run sequence, in column order.
func (l *List) Runs() []Run {
	out := make([]Run, len(l.runs))
	copy(out, l.runs)
	return out
}

// Replace overwrites [begin, end) with value, splitting any run that
// straddles the boundary and merging the result with adjacent runs that
// now carry the same value.
func (l *List) Replace(begin, end size.CellCountInt, value Attribute) {
	if begin >= end {
		return
	}
	utils.Assert(begin >= 0 && end <= l.width, "attr: replace range out of bounds")

	out := make([]Run, 0, len(l.runs)+2)
	inserted := false
	col := size.CellCountInt(0)
	for _, r := range l.runs {
		runStart := col
		runEnd := col + r.Length
		col = runEnd

		if runEnd <= begin || runStart >= end {
			out = append(out, r)
			continue
		}
		if runStart < begin {
			out = append(out, Run{Value: r.Value, Length: begin - runStart})
		}
		if !inserted {
			out = append(out, Run{Value: value, Length: end - begin})
			inserted = true
		}
		if runEnd > end {
			out = append(out, Run{Value: r.Value, Length: runEnd - end})
		}
	}
	utils.Assert(inserted, "attr: replace range not covered by existing runs")
	l.runs = mergeAdjacent(out)
}

// SetAttrToEnd overwrites [begin, Width) with value.
func (l *List) SetAttrToEnd(begin size.CellCountInt, value Attribute) {
	l.Replace(begin, l.width, value)
}

// ReplaceAttrs retargets every run whose value equals old to new, without
// altering run boundaries. Runs are not merged afterwards, so retargeting
// to a value a neighboring run already holds leaves two adjacent equal
// runs.
func (l *List) ReplaceAttrs(old, new Attribute) {
	for i := range l.runs {
		if l.runs[i].Value.Equal(old) {
			l.runs[i].Value = new
		}
	}
}

// GetAttrByColumn returns the attribute value covering the given column.
func (l *List) GetAttrByColumn(col size.CellCountInt) Attribute {
	utils.Assert(col >= 0 && col < l.width, "attr: column out of bounds")
	c := size.CellCountInt(0)
	for _, r := range l.runs {
		c += r.Length
		if col < c {
			return r.Value
		}
	}
	panic("attr: run list did not cover requested column")
}

// ResizeTrailingExtent grows or shrinks the last run so the list's total
// length becomes newWidth. Shrinking past the start of a run drops it
// entirely.
func (l *List) ResizeTrailingExtent(newWidth size.CellCountInt) {
	utils.Assert(newWidth > 0, "attr: resize to non-positive width")
	if newWidth == l.width {
		return
	}
	if newWidth > l.width {
		l.runs[len(l.runs)-1].Length += newWidth - l.width
		l.width = newWidth
		return
	}

	col := size.CellCountInt(0)
	for i, r := range l.runs {
		runEnd := col + r.Length
		if runEnd >= newWidth {
			l.runs = l.runs[:i+1]
			l.runs[i].Length = newWidth - col
			break
		}
		col = runEnd
	}
	l.width = newWidth
}

// GetHyperlinks enumerates the hyperlink ids carried by runs whose value
// reports IsHyperlink() == true. One entry per run, not per column: a run
// spanning many columns contributes its id once.
func (l *List) GetHyperlinks() []uint64 {
	var ids []uint64
	for _, r := range l.runs {
		if r.Value.IsHyperlink() {
			ids = append(ids, r.Value.HyperlinkID())
		}
	}
	return ids
}

func mergeAdjacent(runs []Run) []Run {
	if len(runs) == 0 {
		return runs
	}
	out := make([]Run, 0, len(runs))
	out = append(out, runs[0])
	for _, r := range runs[1:] {
		last := &out[len(out)-1]
		if last.Value.Equal(r.Value) {
			last.Length += r.Length
			continue
		}
		out = append(out, r)
	}
	return out
}
