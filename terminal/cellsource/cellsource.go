// Package cellsource turns plain text, optionally carrying embedded CSI SGR
// escape sequences, into the page.CellIterator stream Row.WriteCells
// consumes. It exists for tests and the rowcat demo: a real terminal
// emulator would drive WriteCells straight from its VT parser instead.
package cellsource

import (
	"unicode/utf16"

	"github.com/arvindk/termrow/terminal/attrtable"
	"github.com/arvindk/termrow/terminal/cellattr"
	"github.com/arvindk/termrow/terminal/page"
	"github.com/arvindk/termrow/terminal/set"
	"github.com/arvindk/termrow/terminal/sgr"
	"github.com/arvindk/termrow/terminal/utils"
	"github.com/mattn/go-runewidth"
	xwidth "golang.org/x/text/width"
)

const (
	esc = 0x1b
)

// iterator is a slice-backed page.CellIterator built by FromString.
type iterator struct {
	cells []page.InputCell
	pos   int
}

func (it *iterator) Peek() (page.InputCell, bool) {
	if it.pos >= len(it.cells) {
		return page.InputCell{}, false
	}
	return it.cells[it.pos], true
}

func (it *iterator) Advance() {
	it.pos++
}

// FromString parses text into a page.CellIterator. A `\x1b[...m` sequence
// updates the attribute applied to subsequent runes rather than producing
// a cell of its own. Every other rune becomes one Single cell, or a
// Leading/Trailing pair when go-runewidth (cross-checked against
// golang.org/x/text/width's East Asian width class) reports it as
// double-width.
//
// table interns every distinct attribute the SGR stream produces, so
// cells sharing a style share one attrtable entry instead of each
// carrying its own copy; a nil table gets a private one with the default
// capacity for the duration of this call.
func FromString(text string, table *attrtable.Table) page.CellIterator {
	return &iterator{cells: Parse(text, table)}
}

// Parse is the non-streaming form of FromString, useful when a caller
// wants the cell slice directly (e.g. to count columns before writing).
func Parse(text string, table *attrtable.Table) []page.InputCell {
	if table == nil {
		table = attrtable.New(attrtable.Options{})
	}

	var cells []page.InputCell
	var cur cellattr.Attribute
	curID := attrtable.DefaultID
	curAttr := cur

	runes := []rune(text)
	for i := 0; i < len(runes); {
		if runes[i] == esc && i+1 < len(runes) && runes[i+1] == '[' {
			end := i + 2
			for end < len(runes) && runes[end] != 'm' {
				end++
			}
			if end < len(runes) {
				applySGR(&cur, string(runes[i+2:end]))
				curID, curAttr = restyle(table, curID, cur)
				i = end + 1
				continue
			}
		}

		r := runes[i]
		i++
		cells = append(cells, runeCells(r, curAttr)...)
	}
	if curID != attrtable.DefaultID {
		table.Release(curID)
	}
	return cells
}

// restyle interns value in table, releasing the previously-held id, and
// returns the new id together with the table's canonical copy of value.
// If the table has no room left for a new distinct attribute, the
// previous style is kept rather than losing track of its id.
func restyle(table *attrtable.Table, prevID set.ID, value cellattr.Attribute) (set.ID, cellattr.Attribute) {
	id, err := table.Intern(value)
	if err != nil {
		canon, _ := table.Get(prevID)
		return prevID, canon
	}
	if prevID != attrtable.DefaultID {
		table.Release(prevID)
	}
	canon, ok := table.Get(id)
	if !ok {
		canon = value
	}
	return id, canon
}

func runeCells(r rune, a cellattr.Attribute) []page.InputCell {
	w := runewidth.RuneWidth(r)
	if k := xwidth.LookupRune(r).Kind(); k == xwidth.EastAsianWide || k == xwidth.EastAsianFullwidth {
		if w < 2 {
			w = 2
		}
	}

	units := utf16.Encode([]rune{r})
	if w < 2 {
		return []page.InputCell{{Chars: units, DbcsAttr: page.Single, TextAttr: a}}
	}

	return []page.InputCell{
		{Chars: units, DbcsAttr: page.Leading, TextAttr: a},
		{Chars: []uint16{page.DbcsTrailingSentinel}, DbcsAttr: page.Trailing, TextAttr: a},
	}
}

// applySGR feeds the numeric body of one CSI...m sequence through
// sgr.Parser and folds every resulting Change into cur.
func applySGR(cur *cellattr.Attribute, body string) {
	params, seps := splitParams(body)
	p := &sgr.Parser{Params: params, ParamsSep: seps}
	for _, c := range p.Changes() {
		applyChange(cur, c)
	}
}

func splitParams(body string) ([]uint16, *utils.StaticBitSet) {
	if body == "" {
		return []uint16{0}, utils.NewStaticBitSet(1)
	}

	var nums []uint16
	var colon []bool
	acc := 0
	for _, ch := range body {
		switch {
		case ch >= '0' && ch <= '9':
			acc = acc*10 + int(ch-'0')
		case ch == ';' || ch == ':':
			nums = append(nums, uint16(acc))
			colon = append(colon, ch == ':')
			acc = 0
		}
	}
	nums = append(nums, uint16(acc))
	colon = append(colon, false)

	seps := utils.NewStaticBitSet(len(nums))
	for i, c := range colon {
		if c {
			seps.Set(i)
		}
	}
	return nums, seps
}

func applyChange(cur *cellattr.Attribute, a *sgr.Change) {
	if a == nil {
		return
	}
	switch a.Type {
	case sgr.AttributeTypeUnset:
		cur.Reset()
	case sgr.AttributeTypeBold:
		cur.Bold = true
	case sgr.AttributeTypeResetBold:
		cur.Bold = false
	case sgr.AttributeTypeItalic:
		cur.Italic = true
	case sgr.AttributeTypeResetItalic:
		cur.Italic = false
	case sgr.AttributeTypeFaint:
		cur.Faint = true
	case sgr.AttributeTypeResetFaint:
		cur.Faint = false
	case sgr.AttributeTypeUnderline:
		cur.Underline = a.Underline
	case sgr.AttributeTypeResetUnderline:
		cur.Underline = sgr.UnderlineTypeNone
	case sgr.AttributeTypeUnderlineColor:
		cur.UnderlineColor = cellattr.Color{Type: cellattr.ColorTypeRGB, RGB: a.UnderlineColor}
	case sgr.AttributeTypeResetUnderlineColor:
		cur.UnderlineColor = cellattr.Color{}
	case sgr.AttributeTypeOverline:
		cur.Overline = true
	case sgr.AttributeTypeResetOverline:
		cur.Overline = false
	case sgr.AttributeTypeBlink:
		cur.Blink = true
	case sgr.AttributeTypeResetBlink:
		cur.Blink = false
	case sgr.AttributeTypeInverse:
		cur.Inverse = true
	case sgr.AttributeTypeResetInverse:
		cur.Inverse = false
	case sgr.AttributeTypeInvisible:
		cur.Invisible = true
	case sgr.AttributeTypeResetInvisible:
		cur.Invisible = false
	case sgr.AttributeTypeStrikethrough:
		cur.Strikethrough = true
	case sgr.AttributeTypeResetStrikethrough:
		cur.Strikethrough = false
	case sgr.AttributeTypeDirectColorFg:
		cur.ForegroundColor = cellattr.Color{Type: cellattr.ColorTypeRGB, RGB: a.DirectColorFg}
	case sgr.AttributeTypeDirectColorBg:
		cur.BackgroundColor = cellattr.Color{Type: cellattr.ColorTypeRGB, RGB: a.DirectColorBg}
	case sgr.AttributeTypeResetFg:
		cur.ForegroundColor = cellattr.Color{}
	case sgr.AttributeTypeResetBg:
		cur.BackgroundColor = cellattr.Color{}
	}
}
