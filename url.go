package vtcore

import "regexp"

// urlPattern matches the common schemes a terminal is expected to
// recognise and offer as clickable links. There is no third-party regex
// engine anywhere in the example corpus this project was built from, so
// this is one of the few spots that leans on the standard library by
// necessity rather than convenience (see DESIGN.md).
var urlPattern = regexp.MustCompile(`(?:https?|ftp|file)://[^\s<>"'` + "`" + `]+`)

// ExtractURLs linearises the scrollback followed by the live screen into a
// single text blob — substituting a space for non-printable cells and
// padding short lines to full width — and returns the de-duplicated
// matches of urlPattern in first-occurrence order (spec.md §4.11). The alt
// buffer is excluded, matching the rule that only the primary screen ever
// feeds scrollback. A row that soft-wrapped into the next one is joined
// directly, without an intervening newline, so a URL split across the
// right margin still matches as one run.
func (t *Terminal) ExtractURLs() []string {
	var b []byte

	for i := 0; i < t.scrollback.Len(); i++ {
		b = appendLinearised(b, t.scrollback.Line(i), t.cols)
		b = append(b, '\n')
	}

	buf := t.primary
	for r := 0; r < t.rows; r++ {
		b = appendLinearised(b, buf.Row(r), t.cols)
		if !buf.IsWrapped(r) {
			b = append(b, '\n')
		}
	}

	matches := urlPattern.FindAll(b, -1)
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		s := string(m)
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// appendLinearised writes line's printable characters to dst, padding (or
// truncating) to width columns with spaces; non-printable and spacer cells
// become spaces.
func appendLinearised(dst []byte, line Line, width int) []byte {
	for c := 0; c < width; c++ {
		if c >= len(line) {
			dst = append(dst, ' ')
			continue
		}
		cell := line[c]
		if cell.IsSpacer() || cell.Char == 0 || cell.Char < 0x20 {
			dst = append(dst, ' ')
			continue
		}
		dst = append(dst, string(cell.Char)...)
	}
	return dst
}
