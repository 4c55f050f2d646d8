// Package cellattr provides the concrete attribute value stored in a row's
// run-length-encoded attribute list: colors, text style flags and an
// optional hyperlink id.
package cellattr

import (
	"fmt"

	"github.com/arvindk/termrow/terminal/attr"
	"github.com/arvindk/termrow/terminal/color"
	"github.com/arvindk/termrow/terminal/set"
	"github.com/arvindk/termrow/terminal/sgr"
	"github.com/arvindk/termrow/terminal/utils"
	"github.com/mitchellh/hashstructure/v2"
)

// HyperlinkID identifies a URL associated with an attribute run. Zero means
// "no hyperlink".
type HyperlinkID uint64

// DefaultHyperlinkID is the sentinel used for cells without a hyperlink.
const DefaultHyperlinkID HyperlinkID = 0

// Attribute is the text attribute for a cell: colors, style flags and an
// optional hyperlink id. It satisfies both attr.Attribute (so a row's run
// list can store it) and set.Hashable (so an attrtable.Table can intern
// it).
type Attribute struct {
	ForegroundColor Color
	BackgroundColor Color
	UnderlineColor  Color

	Bold          bool
	Italic        bool
	Faint         bool
	Blink         bool
	Inverse       bool
	Invisible     bool
	Strikethrough bool
	Overline      bool
	Underline     sgr.UnderlineType

	Hyperlink HyperlinkID
}

// FG returns the resolved foreground color, or nil if none is set.
func (a *Attribute) FG(palette *color.Palette, boldIsBright bool) *color.RGB {
	switch a.ForegroundColor.Type {
	case ColorTypeNone:
		return nil
	case ColorTypePalette:
		idx := a.ForegroundColor.Palette
		if boldIsBright && a.Bold && color.ColorType(idx) < color.ColorTypeBrightBlack {
			idx = uint8(color.ColorType(idx) + color.ColorTypeBrightBlack)
		}
		return &palette[idx]
	case ColorTypeRGB:
		return &a.ForegroundColor.RGB
	default:
		return nil
	}
}

// BG returns the resolved background color, or nil if none is set.
func (a *Attribute) BG(palette *color.Palette) *color.RGB {
	switch a.BackgroundColor.Type {
	case ColorTypeNone:
		return nil
	case ColorTypePalette:
		return &palette[a.BackgroundColor.Palette]
	case ColorTypeRGB:
		return &a.BackgroundColor.RGB
	default:
		return nil
	}
}

// UColor returns the resolved underline color, or nil if none is set.
func (a *Attribute) UColor(palette *color.Palette) *color.RGB {
	switch a.UnderlineColor.Type {
	case ColorTypeNone:
		return nil
	case ColorTypePalette:
		return &palette[a.UnderlineColor.Palette]
	case ColorTypeRGB:
		return &a.UnderlineColor.RGB
	default:
		return nil
	}
}

func (a *Attribute) Reset() {
	*a = Attribute{}
}

func (a Attribute) IsDefault() bool {
	return a == Attribute{}
}

// Equal satisfies attr.Attribute.
func (a Attribute) Equal(other attr.Attribute) bool {
	o, ok := other.(Attribute)
	return ok && a == o
}

// IsHyperlink satisfies attr.Attribute.
func (a Attribute) IsHyperlink() bool {
	return a.Hyperlink != DefaultHyperlinkID
}

// HyperlinkID satisfies attr.Attribute.
func (a Attribute) HyperlinkID() uint64 {
	return uint64(a.Hyperlink)
}

// Hash satisfies set.Hashable.
func (a Attribute) Hash() uint64 {
	hashed, err := hashstructure.Hash(a, hashstructure.FormatV2, nil)
	utils.Assert(err == nil, fmt.Sprintf("cellattr: failed to hash attribute: %v", err))
	return hashed
}

// Equals satisfies set.Hashable.
func (a Attribute) Equals(other set.Hashable) bool {
	o, ok := other.(Attribute)
	return ok && a == o
}

// Delete satisfies set.Hashable. Attribute owns no external resources, so
// there is nothing to release.
func (a Attribute) Delete() {}

// Color is the source of a color: unset, an index into a 256-color
// palette, or a direct RGB value.
type Color struct {
	Type    ColorType
	Palette uint8
	RGB     color.RGB
}

func (c Color) String() string {
	switch c.Type {
	case ColorTypeNone:
		return "Color.none"
	case ColorTypePalette:
		return fmt.Sprintf("Color.palette{{ %d }}", c.Palette)
	case ColorTypeRGB:
		return fmt.Sprintf("Color.rgb{{ %d, %d, %d }}", c.RGB.R, c.RGB.G, c.RGB.B)
	default:
		return "Color.unknown"
	}
}

type ColorType int

const (
	ColorTypeNone ColorType = iota
	ColorTypePalette
	ColorTypeRGB
)
