package vtcore

import "image/color"

// Attr is a bitmask of per-cell rendering attributes.
type Attr uint8

const (
	AttrBold Attr = 1 << iota
	AttrItalic
	AttrUnderline
	AttrNegative
	AttrBlink
)

// Has reports whether flag is set.
func (a Attr) Has(flag Attr) bool {
	return a&flag != 0
}

// Cell stores the code point, colours, and attribute bitset for one grid
// position. A wide (double-width) character occupies two cells: the first
// carries the rune, the second is a spacer (see width.go).
type Cell struct {
	Char    rune
	Fg      color.RGBA
	Bg      color.RGBA
	Attrs   Attr
	spacer  bool
}

// zeroCell returns a cell containing a space with the default colours and
// no attributes, per spec.md's "Zero cell" definition.
func zeroCell() Cell {
	return Cell{
		Char: ' ',
		Fg:   defaultPalette.DefaultFg(),
		Bg:   defaultPalette.DefaultBg(),
	}
}

// Reset clears the cell back to the zero cell.
func (c *Cell) Reset() {
	*c = zeroCell()
}

// IsSpacer reports whether this cell is the trailing half of a wide
// character and should be skipped when linearising text.
func (c *Cell) IsSpacer() bool {
	return c.spacer
}

// attrState is the (fg, bg, attrs) triple threaded through SGR parsing and
// held as the "current attributes" for newly written cells.
type attrState struct {
	fg    color.RGBA
	bg    color.RGBA
	attrs Attr
}

// defaultAttrState returns the attribute state SGR 0 and a hard reset
// restore: default colours, no attributes.
func defaultAttrState() attrState {
	return attrState{
		fg: defaultPalette.DefaultFg(),
		bg: defaultPalette.DefaultBg(),
	}
}
