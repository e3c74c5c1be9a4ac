package vtcore

import "github.com/unilibs/uniwidth"

// runeWidth returns the display width of r: 2 for wide characters (CJK
// ideographs, fullwidth forms, most emoji), 1 for normal characters, 0 for
// zero-width combining marks. spec.md §4.4 only specifies the width-1 case
// ("advance column by 1"); this supplements it with the wide-character
// handling the teacher repo (and the original Qt text renderer) both care
// about, without changing the width-1 behaviour spec.md describes.
func runeWidth(r rune) int {
	return uniwidth.RuneWidth(r)
}
