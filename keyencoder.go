package vtcore

import (
	"log"
	"strconv"
	"unicode"
)

// Key identifies a platform-agnostic key the host has decoded from its
// native input system (spec.md §4.8).
type Key int

const (
	KeyChar Key = iota // a printable character; see ch/text in EncodeKey
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyDelete
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyEnter
	KeyBackspace
	KeyTab
	KeyEscape
)

// Mod is a 3-bit modifier mask.
type Mod uint8

const (
	ModShift Mod = 1 << iota
	ModAlt
	ModControl
)

// xtermModifier implements "m = 1 + (Shift?1:0) + (Alt?2:0) + (Control?4:0)".
func (m Mod) xtermModifier() int {
	n := 1
	if m&ModShift != 0 {
		n++
	}
	if m&ModAlt != 0 {
		n += 2
	}
	if m&ModControl != 0 {
		n += 4
	}
	return n
}

// cursorKeyFinal maps the four arrow keys plus Home/End to their CSI/SS3
// final byte.
var cursorKeyFinal = map[Key]byte{
	KeyUp: 'A', KeyDown: 'B', KeyRight: 'C', KeyLeft: 'D',
	KeyHome: 'H', KeyEnd: 'F',
}

// tildeCode maps PageUp/PageDown/Insert/Delete and F5-F12 to their xterm
// numeric "~"-terminated code.
var tildeCode = map[Key]int{
	KeyInsert: 2, KeyDelete: 3, KeyPageUp: 5, KeyPageDown: 6,
	KeyF5: 15, KeyF6: 17, KeyF7: 18, KeyF8: 19,
	KeyF9: 20, KeyF10: 21, KeyF11: 23, KeyF12: 24,
}

// ss3Final maps F1-F4 to their SS3 final byte.
var ss3Final = map[Key]byte{
	KeyF1: 'P', KeyF2: 'Q', KeyF3: 'R', KeyF4: 'S',
}

// EncodeKey turns a key press into the bytes a terminal would send to its
// child process, per spec.md §4.8. ch is the key's nominal character (used
// for KeyChar and for Control-letter folding); text is an optional override
// (e.g. from an input method) used verbatim when non-empty.
func EncodeKey(key Key, mods Mod, ch rune, text string, appCursorKeys, newlineMode bool) []byte {
	switch key {
	case KeyUp, KeyDown, KeyLeft, KeyRight:
		final := cursorKeyFinal[key]
		if mods == 0 {
			if appCursorKeys {
				return []byte{0x1b, 'O', final}
			}
			return []byte{0x1b, '[', final}
		}
		return csiModified(mods, final)

	case KeyHome, KeyEnd:
		final := cursorKeyFinal[key]
		if mods == 0 {
			return []byte{0x1b, 'O', final}
		}
		return csiModified(mods, final)

	case KeyPageUp, KeyPageDown, KeyInsert, KeyDelete:
		code := tildeCode[key]
		if mods == 0 {
			return []byte("\x1b[" + strconv.Itoa(code) + "~")
		}
		return csiTildeModified(code, mods)

	case KeyF1, KeyF2, KeyF3, KeyF4:
		final := ss3Final[key]
		if mods == 0 {
			return []byte{0x1b, 'O', final}
		}
		return csiModified(mods, final)

	case KeyF5, KeyF6, KeyF7, KeyF8, KeyF9, KeyF10, KeyF11, KeyF12:
		code := tildeCode[key]
		if mods == 0 {
			return []byte("\x1b[" + strconv.Itoa(code) + "~")
		}
		return csiTildeModified(code, mods)

	case KeyEnter:
		return encodeEnter(mods, newlineMode)

	case KeyBackspace:
		return encodeBackspace(mods)

	case KeyTab:
		return encodeTab(mods)

	case KeyEscape:
		if mods&ModShift != 0 {
			return []byte{0x9b}
		}
		return []byte{0x1b}

	case KeyChar:
		return encodeChar(mods, ch, text)
	}

	return nil
}

func csiModified(mods Mod, final byte) []byte {
	return []byte("\x1b[1;" + strconv.Itoa(mods.xtermModifier()) + string(final))
}

func csiTildeModified(code int, mods Mod) []byte {
	return []byte("\x1b[" + strconv.Itoa(code) + ";" + strconv.Itoa(mods.xtermModifier()) + "~")
}

func encodeEnter(mods Mod, newlineMode bool) []byte {
	switch {
	case mods&ModControl != 0 && mods&ModShift != 0:
		return []byte{0x9e}
	case mods&ModControl != 0:
		return []byte{0x1e}
	case mods&ModShift != 0:
		return []byte{'\n'}
	case newlineMode:
		return []byte("\r\n")
	default:
		return []byte{'\r'}
	}
}

func encodeBackspace(mods Mod) []byte {
	switch {
	case mods&ModControl != 0 && mods&ModShift != 0:
		return []byte{0x9f}
	case mods&ModControl != 0:
		return []byte{0x1f}
	default:
		return []byte{0x7f}
	}
}

func encodeTab(mods Mod) []byte {
	switch {
	case mods&ModControl != 0 && mods&ModShift != 0:
		return []byte("\x1b[1;6I")
	case mods&ModControl != 0:
		return []byte("\x1b[1;5I")
	case mods&ModShift != 0:
		return []byte("\x1b[Z")
	default:
		return []byte{'\t'}
	}
}

// ctrlFoldable reports whether upper is one of the characters
// Control-folding applies to: A-Z and @[\]^_, which map to bytes 0x00-0x1F
// via `ch XOR 0x40`.
func ctrlFoldable(upper rune) bool {
	if upper >= 'A' && upper <= 'Z' {
		return true
	}
	switch upper {
	case '@', '[', '\\', ']', '^', '_':
		return true
	}
	return false
}

func encodeChar(mods Mod, ch rune, text string) []byte {
	var out []byte
	if mods&ModAlt != 0 {
		out = append(out, 0x1b)
	}

	if mods&ModControl != 0 {
		upper := unicode.ToUpper(ch)
		if ctrlFoldable(upper) {
			return append(out, byte(upper)^0x40)
		}
		// Invalid key combination: Control with a non-foldable key.
		// spec.md §7: logged and produces no output.
		log.Printf("vtcore: invalid key combination: Control with %q", ch)
		return nil
	}

	if text != "" {
		return append(out, []byte(text)...)
	}

	if mods&ModShift != 0 {
		ch = unicode.ToUpper(ch)
	} else {
		ch = unicode.ToLower(ch)
	}
	return append(out, []byte(string(ch))...)
}
