package vtcore

import "image/color"

// cubeStep is the xterm-conventional step table for the 6x6x6 colour cube:
// the first step is 95, every subsequent step increases by 40.
var cubeStep = [6]uint8{0, 95, 135, 175, 215, 255}

// Palette is the immutable 256-entry ANSI colour table: 16 ANSI colours,
// a 6x6x6 colour cube, and a 24-step greyscale ramp.
type Palette struct {
	entries [256]color.RGBA
}

// NewPalette builds the standard xterm-256 palette.
func NewPalette() *Palette {
	p := &Palette{}

	// 0-7: ANSI normal.
	p.entries[0] = color.RGBA{0, 0, 0, 255}
	p.entries[1] = color.RGBA{210, 0, 0, 255}
	p.entries[2] = color.RGBA{0, 210, 0, 255}
	p.entries[3] = color.RGBA{210, 210, 0, 255}
	p.entries[4] = color.RGBA{0, 0, 240, 255}
	p.entries[5] = color.RGBA{210, 0, 210, 255}
	p.entries[6] = color.RGBA{0, 210, 210, 255}
	p.entries[7] = color.RGBA{235, 235, 235, 255}

	// 8-15: ANSI bright.
	p.entries[8] = color.RGBA{127, 127, 127, 255}
	p.entries[9] = color.RGBA{255, 0, 0, 255}
	p.entries[10] = color.RGBA{0, 255, 0, 255}
	p.entries[11] = color.RGBA{255, 255, 0, 255}
	p.entries[12] = color.RGBA{92, 92, 255, 255}
	p.entries[13] = color.RGBA{255, 0, 255, 255}
	p.entries[14] = color.RGBA{0, 255, 255, 255}
	p.entries[15] = color.RGBA{255, 255, 255, 255}

	// 16-231: 6x6x6 colour cube.
	idx := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				p.entries[idx] = color.RGBA{R: cubeStep[r], G: cubeStep[g], B: cubeStep[b], A: 255}
				idx++
			}
		}
	}

	// 232-255: 24-step greyscale ramp, starting at 8, step 10.
	for i := 0; i < 24; i++ {
		level := uint8(8 + i*10)
		p.entries[232+i] = color.RGBA{level, level, level, 255}
	}

	return p
}

// At returns the RGB colour for the given palette index (0-255).
// Out-of-range indices return the default foreground colour.
func (p *Palette) At(index int) color.RGBA {
	if index < 0 || index > 255 {
		return p.entries[7]
	}
	return p.entries[index]
}

// DefaultFg returns the default foreground colour (palette index 7).
func (p *Palette) DefaultFg() color.RGBA {
	return p.entries[7]
}

// DefaultBg returns the default background colour (palette index 0).
func (p *Palette) DefaultBg() color.RGBA {
	return p.entries[0]
}

// defaultPalette is the process-wide immutable palette shared by every
// Terminal; unlike the teacher's mutable global colour map, nothing ever
// writes through this pointer after NewPalette returns.
var defaultPalette = NewPalette()

// rgbColor builds a direct 24-bit colour (SGR 38;2/48;2).
func rgbColor(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
