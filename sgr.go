package vtcore

import "fmt"

// sgrApply is the pure SGR (Select Graphic Rendition) sub-parser: spec.md
// §4.2's `apply(params, state) → state' | Error`. It is deliberately free of
// any Terminal/Buffer dependency so it can be tested and reasoned about in
// isolation, per spec.md §7 ("the core does not propagate errors to the
// caller ... Test hooks expose the SGR parser as a pure function").
//
// On error, processing stops immediately: the returned state reflects
// whatever partial update happened before the failing parameter, and the
// caller (Terminal) is expected to have staged its own copy and only commit
// on success (see dispatcher.go's handling of CSI 'm').
func sgrApply(params []int, state attrState) (attrState, error) {
	// Bold-promotion of an indexed foreground colour (the "+8" rule) is
	// decided by the Bold attribute's value at the END of this whole SGR
	// sequence, not at the moment the colour code is seen — so "31;1"
	// (red, then bold) promotes to bright red exactly like "1;31" does.
	finalBold := finalBoldState(params, state.attrs.Has(AttrBold))

	i := 0
	for i < len(params) {
		p := params[i]
		switch {
		case p == 0:
			state = defaultAttrState()

		case p == 1:
			state.attrs |= AttrBold
		case p == 3:
			state.attrs |= AttrItalic
		case p == 4:
			state.attrs |= AttrUnderline
		case p == 5 || p == 6:
			state.attrs |= AttrBlink
		case p == 7:
			state.attrs |= AttrNegative

		case p == 22:
			state.attrs &^= AttrBold
		case p == 23:
			state.attrs &^= AttrItalic
		case p == 24:
			state.attrs &^= AttrUnderline
		case p == 25 || p == 26:
			state.attrs &^= AttrBlink
		case p == 27:
			state.attrs &^= AttrNegative

		case p == 2 || p == 8 || p == 9 || p == 21 || p == 28 || p == 29:
			// documented no-ops

		case p >= 30 && p <= 37:
			idx := p - 30
			if finalBold {
				idx += 8
			}
			state.fg = defaultPalette.At(idx)

		case p >= 40 && p <= 47:
			state.bg = defaultPalette.At(p - 40)

		case p == 39:
			state.fg = defaultPalette.DefaultFg()
		case p == 49:
			state.bg = defaultPalette.DefaultBg()

		case p >= 90 && p <= 97:
			state.fg = defaultPalette.At(p - 90 + 8)
		case p >= 100 && p <= 107:
			state.bg = defaultPalette.At(p - 100 + 8)

		case p == 38 || p == 48:
			isFg := p == 38
			consumed, newState, err := sgrExtendedColor(params[i+1:], state, isFg, finalBold)
			if err != nil {
				return state, err
			}
			state = newState
			i += consumed

		default:
			return state, fmt.Errorf("got unknown SGR: %d", p)
		}
		i++
	}
	return state, nil
}

// finalBoldState simulates the Bold attribute's transitions across params
// (0 resets it, 1 sets it, 22 clears it), skipping over 38/48 extended
// colour sub-parameters, and returns its value at the end of the list.
func finalBoldState(params []int, initial bool) bool {
	bold := initial
	i := 0
	for i < len(params) {
		switch params[i] {
		case 0:
			bold = false
		case 1:
			bold = true
		case 22:
			bold = false
		case 38, 48:
			if i+1 < len(params) {
				switch params[i+1] {
				case 5:
					i += 2
				case 2:
					i += 4
				}
			}
		}
		i++
	}
	return bold
}

// sgrExtendedColor parses the sub-parameters following a 38 or 48 code:
// either "5 ; index" (256-colour) or "2 ; r ; g ; b" (24-bit). Returns the
// number of extra parameters consumed (beyond the leading 38/48 itself).
func sgrExtendedColor(rest []int, state attrState, isFg, finalBold bool) (int, attrState, error) {
	if len(rest) < 1 {
		return 0, state, fmt.Errorf("got invalid extended SGR: missing form selector")
	}

	switch rest[0] {
	case 5:
		if len(rest) < 2 {
			return 0, state, fmt.Errorf("got invalid 16bit SGR with too few parameters: %d", len(rest)-1)
		}
		idx := rest[1]
		if idx < 0 || idx > 255 {
			return 0, state, fmt.Errorf("got invalid 16bit SGR with out-of-range index: %d", idx)
		}
		if isFg {
			if idx < 9 && finalBold {
				idx += 8
			}
			state.fg = defaultPalette.At(idx)
		} else {
			state.bg = defaultPalette.At(idx)
		}
		return 2, state, nil

	case 2:
		if len(rest) < 4 {
			return 0, state, fmt.Errorf("got invalid 16bit SGR with too few parameters: %d", len(rest)-1)
		}
		r, g, b := rest[1], rest[2], rest[3]
		for i, comp := range []int{r, g, b} {
			if comp < 0 || comp > 255 {
				return 0, state, fmt.Errorf("got invalid 16bit SGR with out-of-range %c: %d", "rgb"[i], comp)
			}
		}
		c := rgbColor(uint8(r), uint8(g), uint8(b))
		if isFg {
			state.fg = c
		} else {
			state.bg = c
		}
		return 4, state, nil

	default:
		return 0, state, fmt.Errorf("got unknown SGR extended-colour form: %d", rest[0])
	}
}
