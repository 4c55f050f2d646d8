// Package sgr parses the numeric parameter list of a CSI...m (Selective
// Graphic Rendition) escape sequence into a stream of Change values that
// a caller folds into a cell's text attribute one at a time.
//
// This is implemented based on: https://vt100.net/docs/vt510-rm/SGR.html
package sgr

import (
	"iter"
	"math"

	"github.com/arvindk/termrow/terminal/color"
	"github.com/arvindk/termrow/terminal/utils"
)

type AttributeType uint16

const (
	AttributeTypeUnset AttributeType = iota
	// Bold the text.
	AttributeTypeBold
	AttributeTypeResetBold

	// Italic the text.
	AttributeTypeItalic
	AttributeTypeResetItalic

	// Faint/dim text.
	AttributeTypeFaint
	AttributeTypeResetFaint

	// Underline the text.
	AttributeTypeUnderline
	AttributeTypeResetUnderline
	AttributeTypeUnderlineColor
	AttributeTypeResetUnderlineColor

	// Overline the text.
	AttributeTypeOverline
	AttributeTypeResetOverline

	// Blink the text.
	AttributeTypeBlink
	AttributeTypeResetBlink

	// Invert fg/bg colors.
	AttributeTypeInverse
	AttributeTypeResetInverse

	// Invisible text.
	AttributeTypeInvisible
	AttributeTypeResetInvisible

	// Fg direct color
	AttributeTypeDirectColorFg
	// Bg direct color
	AttributeTypeDirectColorBg

	// Strikethrough the text.
	AttributeTypeStrikethrough
	AttributeTypeResetStrikethrough

	// Reset fg colors.
	AttributeTypeResetFg
	// Reset bg colors.
	AttributeTypeResetBg

	// Unkown
	AttributeTypeUnknown
)

type UnderlineType uint8

const (
	UnderlineTypeNone UnderlineType = iota
	UnderlineTypeSingle
	UnderlineTypeDouble
	UnderlineTypeCurly
	UnderlineTypeDotted
	UnderlineTypeDashed
)

type unknown struct {
	Full    []uint16
	Partial []uint16
}

// Change is one attribute update produced by a single parameter group of
// a CSI...m sequence, e.g. "turn bold on" or "set the underline color".
type Change struct {
	Type           AttributeType
	Underline      UnderlineType
	UnderlineColor color.RGB
	Unknown        unknown
	DirectColorFg  color.RGB
	DirectColorBg  color.RGB
}

// Parser walks the semicolon/colon-separated parameter list of one
// CSI...m sequence and yields the Change it describes, one parameter
// group at a time via Iter, or all at once via Changes.
type Parser struct {
	Params    []uint16
	ParamsSep *utils.StaticBitSet
	idx       int
}

// next return pull function that could be used to get attr parsed by this
// parser.
// Result of pull function:
//   - attr: parsed value
//   - ok: bool value indicated pull is availabe next time or not.
func (p *Parser) next() func() (attr *Change, ok bool) {
	p.idx = 0
	return func() (*Change, bool) {
		if p.idx >= len(p.Params) {
			// If we are at the index zero, it means we must have an empty
			// list and an empty list implicitly means nothings.
			if p.idx == 0 {
				p.idx += 1
				return &Change{Type: AttributeTypeUnset}, false
			}
			return nil, false
		}
		slice := p.Params[p.idx:]
		colon := p.ParamsSep.IsSet(p.idx)
		p.idx += 1
		// Our last one will have an idx be the last value.
		if colon {
			switch slice[0] {
			// Underline, FG colored, BG colored is support, Set Underline colored
			case 4, 38, 48, 58:
				// we need colon separated value for colors
				break
			default:
				// otherwise, consume all the colon separated values.
				start := p.idx
				for p.ParamsSep.IsSet(p.idx) {
					p.idx += 1
				}
				p.idx += 1
				return &Change{
					Type: AttributeTypeUnknown,
					Unknown: unknown{
						Full:    p.Params[start:p.idx],
						Partial: slice[0 : p.idx-start+1],
					},
				}, true
			}
		}
		// Based on: https://en.wikipedia.org/wiki/ANSI_escape_code
		switch slice[0] {
		case 0:
			return &Change{Type: AttributeTypeUnset}, true
		case 1:
			return &Change{Type: AttributeTypeBold}, true
		case 2:
			return &Change{Type: AttributeTypeFaint}, true
		case 3:
			return &Change{Type: AttributeTypeItalic}, true
		case 4:
			if colon {
				utils.Assert(len(slice) >= 2)
				if p.isColon() {
					p.consumeUnknownColon()
					return nil, true
				}

				p.idx += 1
				// Get the underlineType
				// based on: https://gitlab.com/gnachman/iterm2/-/issues/6382
				switch slice[1] {
				case 0:
					return &Change{Type: AttributeTypeResetUnderline}, true
				case 1:
					return &Change{
						Type:      AttributeTypeUnderline,
						Underline: UnderlineTypeSingle,
					}, true
				case 2:
					return &Change{
						Type:      AttributeTypeUnderline,
						Underline: UnderlineTypeDouble,
					}, true
				case 3:
					return &Change{
						Type:      AttributeTypeUnderline,
						Underline: UnderlineTypeCurly,
					}, true
				case 4:
					return &Change{
						Type:      AttributeTypeUnderline,
						Underline: UnderlineTypeDotted,
					}, true
				case 5:
					return &Change{
						Type:      AttributeTypeUnderline,
						Underline: UnderlineTypeDashed,
					}, true
				default:
					// For unknown underline styles, just render
					// a single underline.
					return &Change{
						Type:      AttributeTypeUnderline,
						Underline: UnderlineTypeSingle,
					}, true
				}

			}
			return &Change{Type: AttributeTypeUnderline, Underline: UnderlineTypeSingle}, true
		case 5, 6:
			return &Change{Type: AttributeTypeBlink}, true
		case 7:
			return &Change{Type: AttributeTypeInverse}, true
		case 8:
			return &Change{Type: AttributeTypeInvisible}, true
		case 9:
			return &Change{Type: AttributeTypeStrikethrough}, true
		case 21:
			return &Change{Type: AttributeTypeUnderline, Underline: UnderlineTypeDouble}, true
		case 22:
			return &Change{Type: AttributeTypeResetBold}, true
		case 23:
			return &Change{Type: AttributeTypeResetItalic}, true
		case 24:
			return &Change{Type: AttributeTypeResetUnderline}, true
		case 25:
			return &Change{Type: AttributeTypeResetBlink}, true
		case 27:
			return &Change{Type: AttributeTypeResetInverse}, true
		case 28:
			return &Change{Type: AttributeTypeResetInvisible}, true
		case 29:
			return &Change{Type: AttributeTypeResetStrikethrough}, true
		case 38:
			if len(slice) >= 2 {
				switch slice[1] {
				// direct-color (r, g, b)
				case 2:
					color := p.parseDirectColor(slice, colon)
					if color != nil {
						return &Change{
							Type:          AttributeTypeDirectColorFg,
							DirectColorFg: *color,
						}, true
					} else {
						return nil, true
					}
				// case 5 we don't support indexed color yet.
				default:
					return nil, true
				}
			}
		case 48:
			if len(slice) >= 2 {
				switch slice[1] {
				// direct-color (r, g, b)
				case 2:
					color := p.parseDirectColor(slice, colon)
					if color != nil {
						return &Change{
							Type:          AttributeTypeDirectColorBg,
							DirectColorBg: *color,
						}, true
					} else {
						return nil, true
					}
				// case 5 we don't support indexed color yet.
				default:
					return nil, true
				}
			}
		case 49:
			// Reset the background color)
			return &Change{Type: AttributeTypeResetBg}, true
		case 53:
			return &Change{Type: AttributeTypeOverline}, true
		case 55:
			return &Change{Type: AttributeTypeResetOverline}, true
		case 58:
			// underline color
			if len(slice) >= 2 {
				switch slice[1] {
				// direct-color (r, g, b)
				case 2:
					if color := p.parseDirectColor(slice, colon); color != nil {
						return &Change{
							Type:           AttributeTypeUnderlineColor,
							UnderlineColor: *color,
						}, true
					} else {
						return nil, true
					}
				// case 5 we don't support indexed color yet.
				default:
					return nil, true
				}
			}
		case 59:
			return &Change{Type: AttributeTypeResetUnderlineColor}, true
		}
		return &Change{
			Type:    AttributeTypeUnknown,
			Unknown: unknown{Full: p.Params, Partial: slice},
		}, true
	}
}

// Iter returns iter.Seq[*Change] iterator that yields the parsed changes
// one CSI...m parameter group at a time.
func (p *Parser) Iter() iter.Seq[*Change] {
	next := p.next()
	return func(yield func(*Change) bool) {
		for {
			attr, ok := next()
			if !yield(attr) {
				return
			}
			if !ok {
				return
			}
		}
	}
}

// Changes drains the parser and returns every Change it produces, in
// order. cellsource always parses a whole CSI...m sequence at once
// rather than interleaving it with other escape-sequence dispatch, so it
// has no use for Iter's pull-based streaming and wants the plain slice.
func (p *Parser) Changes() []*Change {
	var changes []*Change
	for c := range p.Iter() {
		changes = append(changes, c)
	}
	return changes
}

// parseDirectColor parses the direct color from the parameters.
// Any direct color style must have at least 5 values.
func (p *Parser) parseDirectColor(slice []uint16, colon bool) *color.RGB {
	if len(slice) < 5 {
		return nil
	}
	// Assert this method only used for direct color sets (38, 48, 58) and subparam 2.
	utils.Assert(slice[1] == 2)
	if !colon {
		p.idx += 4
		// perform truncate data as we are working with uint16
		// the value should be 0 to 255, we don't know the behavior of term if
		// the value is out of range.
		return &color.RGB{
			R: uint8(min(math.MaxUint8, slice[2])),
			G: uint8(min(math.MaxUint8, slice[3])),
			B: uint8(min(math.MaxUint8, slice[4])),
		}
	}

	// we have a colon, we might have either 5 or 6 values depending
	// on the color space is present or not.
	count := p.countColon()
	switch count {
	case 3:
		// rgb
		p.idx += 4
		return &color.RGB{
			R: uint8(min(math.MaxUint8, slice[2])),
			G: uint8(min(math.MaxUint8, slice[3])),
			B: uint8(min(math.MaxUint8, slice[4])),
		}
	case 4:
		p.idx += 5
		return &color.RGB{
			R: uint8(min(math.MaxUint8, slice[3])),
			G: uint8(min(math.MaxUint8, slice[4])),
			B: uint8(min(math.MaxUint8, slice[5])),
		}
	default:
		// consume remaining colon, as we have ill-formed data.
		p.consumeUnknownColon()
		return nil
	}
}

// Returns true if the present position has a colon separator.
// This always returns false for the last value since it has no
// separator.
func (p *Parser) isColon() bool {
	// The `- 1` here is because the last value has no separator.
	if p.idx >= len(p.Params)-1 {
		return false
	}
	return p.ParamsSep.IsSet(p.idx)
}

// Consumes all the remaining parameters separated by a colon and
// returns an unknown attribute.
func (p *Parser) consumeUnknownColon() {
	count := p.countColon()
	p.idx += count + 1
}

func (p *Parser) countColon() int {
	count := 0
	for idx := p.idx; idx < len(p.Params) && p.ParamsSep.IsSet(idx); idx++ {
		count++
	}
	return count
}
