package vtcore

import "strings"

// Option configures a Terminal at construction time, mirroring the
// functional-options pattern used throughout this package's ancestry.
type Option func(*Terminal)

// WithSize sets the initial grid dimensions. Default 24x80.
func WithSize(rows, cols int) Option {
	return func(t *Terminal) { t.rows, t.cols = rows, cols }
}

// WithEvents installs the sink that receives logical events (spec.md §6).
// Default NoopEventSink.
func WithEvents(sink EventSink) Option {
	return func(t *Terminal) { t.sink = sink }
}

// WithMaxScrollback sets the scrollback ring capacity. Default
// DefaultMaxScrollback.
func WithMaxScrollback(n int) Option {
	return func(t *Terminal) { t.maxScrollback = n }
}

type savedCursor struct {
	row, col   int
	attr       attrState
	modeOrigin bool
}

// Selection is a rectangle in combined scrollback+live coordinate space:
// line 0 is the oldest retained scrollback line, and line
// scrollback.Len()+rows-1 is the bottom of the live screen.
type Selection struct {
	Active              bool
	StartLine, StartCol int
	EndLine, EndCol      int
}

// Terminal is the screen engine: it owns the primary and alternate
// buffers, scrollback, cursor, margins, mode flags, and selection, and
// dispatches a decoded character stream into mutations of that state. It
// holds no lock — per spec.md §5 it is single-threaded and cooperative;
// Feed/Key/Resize run to completion on the caller's goroutine.
type Terminal struct {
	rows, cols int

	primary *Buffer
	alt     *Buffer
	usingAlt bool

	scrollback     *Scrollback
	maxScrollback  int
	scrollbackView int

	cursorRow, cursorCol int

	savedPrimary savedCursor
	savedAlt     savedCursor

	top, bottom int

	attr attrState

	modeOrigin         bool
	modeWrap           bool
	modeReplace        bool
	modeNewline        bool
	modeAppCursorKeys  bool
	modeShowCursor     bool
	modeInverse        bool
	modeBracketedPaste bool

	selection Selection

	sink EventSink

	esc escAccumulator
}

// New builds a Terminal with the given options applied over the defaults
// (24x80, NoopEventSink, DefaultMaxScrollback).
func New(opts ...Option) *Terminal {
	t := &Terminal{
		rows:          24,
		cols:          80,
		maxScrollback: DefaultMaxScrollback,
		sink:          NoopEventSink{},
	}
	for _, opt := range opts {
		opt(t)
	}

	t.primary = NewBuffer(t.rows, t.cols)
	t.alt = NewBuffer(t.rows, t.cols)
	t.scrollback = NewScrollback(t.maxScrollback)

	t.cursorRow, t.cursorCol = 1, 1
	t.top, t.bottom = 1, t.rows
	t.attr = defaultAttrState()
	t.modeWrap = true
	t.modeShowCursor = true
	t.modeReplace = true // spec.md §4.4: "In replace mode (default)"

	return t
}

func (t *Terminal) activeBuffer() *Buffer {
	if t.usingAlt {
		return t.alt
	}
	return t.primary
}

// Rows, Cols, Cursor, IsAltScreen report current state for hosts and tests.
func (t *Terminal) Rows() int { return t.rows }
func (t *Terminal) Cols() int { return t.cols }
func (t *Terminal) Cursor() (row, col int)     { return t.cursorRow, t.cursorCol }
func (t *Terminal) IsAltScreen() bool          { return t.usingAlt }
func (t *Terminal) ScrollbackLen() int         { return t.scrollback.Len() }
func (t *Terminal) ScrollbackLine(i int) string { return lineText(t.scrollback.Line(i)) }

// LineContent returns the right-trimmed text of row (1-based) in the
// active buffer.
func (t *Terminal) LineContent(row int) string {
	return t.activeBuffer().LineContent(row - 1)
}

// Cell returns a pointer to the cell at (row, col), 1-based, in the active
// buffer. Returns nil if out of bounds.
func (t *Terminal) Cell(row, col int) *Cell {
	return t.activeBuffer().Cell(row-1, col-1)
}

// Resize updates the grid dimensions, resets tab stops and margins, and
// emits a size-changed event. A 0 in either dimension disables Feed's
// character insertion until resized again (spec.md §6).
func (t *Terminal) Resize(rows, cols int) {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	t.rows, t.cols = rows, cols
	t.primary.Resize(rows, cols)
	t.alt.Resize(rows, cols)
	t.top, t.bottom = 1, maxInt(rows, 1)
	t.cursorRow = clampInt(t.cursorRow, 1, maxInt(rows, 1))
	t.cursorCol = clampInt(t.cursorCol, 1, maxInt(cols, 1))
	t.sink.SizeChanged(rows, cols)
}

// --- cursor motion -----------------------------------------------------

func (t *Terminal) setCursor(row, col int) {
	minRow, maxRow := 1, t.rows
	if t.modeOrigin {
		minRow, maxRow = t.top, t.bottom
	}
	if maxRow < minRow {
		maxRow = minRow
	}
	t.cursorRow = clampInt(row, minRow, maxRow)
	t.cursorCol = clampInt(col, 1, maxInt(t.cols, 1))
	t.sink.CursorMoved(t.cursorRow, t.cursorCol)
}

// cursorPosition implements CSI H/f: row is relative to the top margin
// when origin mode is set.
func (t *Terminal) cursorPosition(row, col int) {
	if t.modeOrigin {
		row = t.top + row - 1
	}
	t.setCursor(row, col)
}

func (t *Terminal) moveUp(n int)    { t.setCursor(t.cursorRow-n, t.cursorCol) }
func (t *Terminal) moveDown(n int)  { t.setCursor(t.cursorRow+n, t.cursorCol) }
func (t *Terminal) moveRight(n int) { t.setCursor(t.cursorRow, t.cursorCol+n) }
func (t *Terminal) moveLeft(n int)  { t.setCursor(t.cursorRow, t.cursorCol-n) }

// index moves the cursor down one row, scrolling the region if already at
// the bottom margin (ESC D without the accompanying carriage return).
func (t *Terminal) index() {
	if t.cursorRow == t.bottom {
		t.scrollForward(1, t.top)
	} else if t.cursorRow < t.rows {
		t.cursorRow++
	}
}

func (t *Terminal) reverseLineFeed() {
	if t.cursorRow == t.top {
		t.scrollBackward(1, t.top)
	} else if t.cursorRow > 1 {
		t.cursorRow--
	}
}

// nextLine moves down one row (scrolling if needed) and returns to column 1.
func (t *Terminal) nextLine() {
	t.index()
	t.cursorCol = 1
}

func (t *Terminal) prevLine() {
	if t.cursorRow > t.top {
		t.cursorRow--
	}
	t.cursorCol = 1
}

func (t *Terminal) lineFeed() {
	// A pending wrap (cursorCol == cols+1) is consumed by the line feed, so
	// the next printable lands on the new row instead of wrapping again.
	if t.cursorCol > t.cols {
		t.cursorCol = t.cols
	}
	t.index()
	if t.modeNewline {
		t.cursorCol = 1
	}
}

func (t *Terminal) tabForward(n int) {
	buf := t.activeBuffer()
	for i := 0; i < n; i++ {
		cur := t.cursorCol - 1
		next := buf.NextTabStop(cur)
		if next == cur {
			break
		}
		t.cursorCol = next + 1
	}
	t.cursorCol = clampInt(t.cursorCol, 1, t.cols)
}

func (t *Terminal) tabBackward(n int) {
	buf := t.activeBuffer()
	for i := 0; i < n; i++ {
		cur := t.cursorCol - 1
		prev := buf.PrevTabStop(cur)
		if prev == cur {
			break
		}
		t.cursorCol = prev + 1
	}
	t.cursorCol = clampInt(t.cursorCol, 1, t.cols)
}

// --- printable insertion (spec.md §4.4) --------------------------------

func (t *Terminal) putChar(r rune) {
	if t.rows == 0 || t.cols == 0 {
		return
	}

	if t.cursorCol > t.cols {
		if t.modeWrap {
			// Mark the wrapping row before index(), which may scroll the
			// region: once it does, the row's content (and its wrapped
			// flag, carried along by ScrollUpRegion) has already moved up
			// by one, so marking after index() would tag the wrong row —
			// the freshly blanked one that slid into its old position.
			t.activeBuffer().SetWrapped(t.cursorRow-1, true)
			t.index()
			t.cursorCol = 1
		} else {
			t.cursorCol = t.cols
		}
	}

	buf := t.activeBuffer()
	row, col := t.cursorRow-1, t.cursorCol-1
	w := runeWidth(r)
	if w < 1 {
		w = 1
	}

	if !t.modeReplace {
		buf.InsertBlanks(row, col, w)
	}

	cell := buf.EnsureCol(row, col)
	cell.Char = r
	cell.Fg = t.attr.fg
	cell.Bg = t.attr.bg
	cell.Attrs = t.attr.attrs
	cell.spacer = false

	if w >= 2 {
		spacer := buf.EnsureCol(row, col+1)
		spacer.Char = 0
		spacer.Fg = t.attr.fg
		spacer.Bg = t.attr.bg
		spacer.Attrs = t.attr.attrs
		spacer.spacer = true
	}

	t.cursorCol += w
}

// --- erase / insert / delete -------------------------------------------

func (t *Terminal) eraseInDisplay(mode int) {
	buf := t.activeBuffer()
	row, col := t.cursorRow-1, t.cursorCol-1
	switch mode {
	case 0:
		buf.ClearRowRange(row, col, t.cols)
		for r := row + 1; r < t.rows; r++ {
			buf.ClearRow(r)
		}
	case 1:
		buf.ClearRowRange(row, 0, col+1)
		for r := 0; r < row; r++ {
			buf.ClearRow(r)
		}
	case 2:
		buf.ClearAll()
		t.ClearSelection()
	}
	t.sink.DisplayChanged()
}

func (t *Terminal) eraseInLine(mode int) {
	buf := t.activeBuffer()
	row, col := t.cursorRow-1, t.cursorCol-1
	switch mode {
	case 0:
		buf.ClearRowRange(row, col, t.cols)
	case 1:
		buf.ClearRowRange(row, 0, col+1)
	case 2:
		buf.ClearRowRange(row, 0, t.cols)
	}
	t.sink.DisplayChanged()
}

func (t *Terminal) eraseChars(n int) {
	buf := t.activeBuffer()
	row, col := t.cursorRow-1, t.cursorCol-1
	buf.ClearRowRange(row, col, col+n)
	t.sink.DisplayChanged()
}

func (t *Terminal) insertLines(n int) {
	if t.cursorRow < t.top || t.cursorRow > t.bottom {
		return
	}
	n = minInt(n, t.bottom-t.cursorRow+1)
	t.activeBuffer().ScrollDownRegion(t.cursorRow-1, t.bottom, n, nil)
	t.sink.DisplayChanged()
}

func (t *Terminal) deleteLines(n int) {
	if t.cursorRow < t.top || t.cursorRow > t.bottom {
		return
	}
	n = minInt(n, t.bottom-t.cursorRow+1)
	t.activeBuffer().ScrollUpRegion(t.cursorRow-1, t.bottom, n)
	t.sink.DisplayChanged()
}

func (t *Terminal) insertBlanksAtCursor(n int) {
	t.activeBuffer().InsertBlanks(t.cursorRow-1, t.cursorCol-1, n)
	t.sink.DisplayChanged()
}

func (t *Terminal) deleteCharsAtCursor(n int) {
	t.activeBuffer().DeleteChars(t.cursorRow-1, t.cursorCol-1, n)
	t.sink.DisplayChanged()
}

// --- scrolling (spec.md §4.6) -------------------------------------------

func (t *Terminal) scrollForward(n, at int) {
	if n <= 0 {
		return
	}
	removed := t.activeBuffer().ScrollUpRegion(at-1, t.bottom, n)
	// Absolute-coordinate content is only displaced by lines that actually
	// leave the retained set: a scrolled-off line that lands safely in the
	// scrollback ring keeps its abs index (the ring's own length grows to
	// absorb it), so only lines the ring itself evicts — or lines that
	// were never captured at all — shift everything below them up.
	shift := n
	if !t.usingAlt && at == t.top {
		shift = 0
		for _, line := range removed {
			if t.scrollback.Push(line) {
				shift++
			}
		}
		t.sink.ScrollbackAdjusted(false)
	}
	t.shiftSelection(-shift)
	t.sink.DisplayChanged()
}

func (t *Terminal) scrollBackward(n, at int) {
	if n <= 0 {
		return
	}
	var fill []Line
	popped := 0
	if !t.usingAlt && at == t.top {
		lines := make([]Line, 0, n)
		for i := 0; i < n; i++ {
			line, ok := t.scrollback.PopTail()
			if !ok {
				break
			}
			lines = append(lines, line)
		}
		popped = len(lines)
		for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
			lines[i], lines[j] = lines[j], lines[i]
		}
		fill = lines
		t.sink.ScrollbackAdjusted(false)
	}
	t.activeBuffer().ScrollDownRegion(at-1, t.bottom, n, fill)
	// Symmetric with scrollForward: only the n-popped lines that had to be
	// manufactured as blanks (scrollback couldn't supply them) are genuinely
	// new content that pushes everything below down; lines actually pulled
	// back from scrollback keep their abs index (the ring shrinks to match).
	t.shiftSelection(n - popped)
	t.sink.DisplayChanged()
}

// --- margins, modes, reset -----------------------------------------------

// setMargins implements DECSTBM. An invalid region (top >= bottom) is
// normalised by shifting one margin, and the cursor always moves to the
// region's home position afterward (spec.md §9 open question: "yes").
func (t *Terminal) setMargins(top, bottom int) {
	if top < 1 {
		top = 1
	}
	if bottom > t.rows {
		bottom = t.rows
	}
	if top >= bottom {
		if bottom < t.rows {
			bottom = top + 1
		} else {
			top = bottom - 1
		}
	}
	t.top, t.bottom = top, bottom
	if t.modeOrigin {
		t.cursorRow = t.top
	} else {
		t.cursorRow = 1
	}
	t.cursorCol = 1
}

func (t *Terminal) saveCursor() {
	sc := savedCursor{row: t.cursorRow, col: t.cursorCol, attr: t.attr, modeOrigin: t.modeOrigin}
	if t.usingAlt {
		t.savedAlt = sc
	} else {
		t.savedPrimary = sc
	}
}

func (t *Terminal) restoreCursor() {
	var sc savedCursor
	if t.usingAlt {
		sc = t.savedAlt
	} else {
		sc = t.savedPrimary
	}
	t.cursorRow, t.cursorCol = sc.row, sc.col
	t.attr = sc.attr
	t.modeOrigin = sc.modeOrigin
}

func (t *Terminal) setMode(dec bool, param int, set bool) {
	if dec {
		switch param {
		case 1:
			t.modeAppCursorKeys = set
		case 3:
			t.activeBuffer().ClearAll()
			t.ClearSelection()
			t.top, t.bottom = 1, t.rows
			t.activeBuffer().ResetTabStops()
			t.setCursor(1, 1)
		case 5:
			t.modeInverse = set
			t.sink.DisplayChanged()
		case 6:
			t.modeOrigin = set
			t.setCursor(1, 1)
		case 7:
			t.modeWrap = set
		case 12:
			// cursor blink, recognised and ignored
		case 25:
			t.modeShowCursor = set
		case 1049:
			if set {
				t.enterAltScreen()
			} else {
				t.exitAltScreen()
			}
		case 2004:
			t.modeBracketedPaste = set
		}
		return
	}

	switch param {
	case 4:
		t.modeReplace = !set
	case 20:
		t.modeNewline = set
	}
}

func (t *Terminal) enterAltScreen() {
	t.savedAlt = savedCursor{row: t.cursorRow, col: t.cursorCol, attr: t.attr, modeOrigin: t.modeOrigin}
	t.usingAlt = true
	t.top, t.bottom = 1, t.rows
	t.scrollbackView = 0
	t.ClearSelection()
	t.alt.ClearAll()
	t.alt.ResetTabStops()
	t.sink.DisplayChanged()
}

func (t *Terminal) exitAltScreen() {
	t.usingAlt = false
	sc := t.savedAlt
	t.cursorRow, t.cursorCol = sc.row, sc.col
	t.attr = sc.attr
	t.modeOrigin = sc.modeOrigin
	t.top, t.bottom = 1, t.rows
	t.scrollbackView = 0
	t.ClearSelection()
	t.primary.ResetTabStops()
	t.sink.DisplayChanged()
}

// softReset implements DECSTR (and its `!`/`>`/`$` CSI-p variants).
func (t *Terminal) softReset() {
	t.top, t.bottom = 1, t.rows
	t.attr = defaultAttrState()
	t.modeWrap = true
	t.modeOrigin = false
	t.modeShowCursor = true
	t.modeReplace = true // spec.md §4.4's power-on default; reconciled against §8's "reset equals initial state" invariant (see DESIGN.md)
	t.modeNewline = false
	t.modeInverse = false
	t.modeBracketedPaste = false
	t.modeAppCursorKeys = false
	if t.usingAlt {
		t.usingAlt = false
	}
	sc := savedCursor{row: t.cursorRow, col: t.cursorCol, attr: t.attr, modeOrigin: t.modeOrigin}
	t.savedPrimary = sc
	t.savedAlt = sc
}

// hardReset implements RIS.
func (t *Terminal) hardReset() {
	t.softReset()
	t.primary.ClearAll()
	t.alt.ClearAll()
	t.primary.ResetTabStops()
	t.alt.ResetTabStops()
	t.scrollback.Clear()
	t.cursorRow, t.cursorCol = 1, 1
	t.scrollbackView = 0
	t.ClearSelection()
	t.sink.ScrollbackAdjusted(true)
	t.sink.DisplayChanged()
}

// --- selection (spec.md §4.12) ------------------------------------------

func (t *Terminal) absoluteLineCount() int {
	return t.scrollback.Len() + t.rows
}

func (t *Terminal) rawAbsoluteLine(abs int) Line {
	sbLen := t.scrollback.Len()
	if abs < sbLen {
		return t.scrollback.Line(abs)
	}
	return t.activeBuffer().Row(abs - sbLen)
}

// shiftSelection moves the selection by delta absolute lines after a
// scroll, clearing it if it falls entirely outside the grid and clamping
// it if only partially out (spec.md §4.6).
func (t *Terminal) shiftSelection(delta int) {
	if !t.selection.Active {
		return
	}
	t.selection.StartLine += delta
	t.selection.EndLine += delta
	maxLine := t.absoluteLineCount() - 1
	if t.selection.EndLine < 0 || t.selection.StartLine > maxLine {
		t.ClearSelection()
		return
	}
	t.selection.StartLine = clampInt(t.selection.StartLine, 0, maxLine)
	t.selection.EndLine = clampInt(t.selection.EndLine, 0, maxLine)
}

// SetSelection normalises (startLine,startCol)-(endLine,endCol) so the
// start precedes the end in row-major order, clamps to the grid, and emits
// SelectionChanged, plus SelectionFinished unless the drag is ongoing.
func (t *Terminal) SetSelection(startLine, startCol, endLine, endCol int, ongoing bool) {
	if startLine > endLine || (startLine == endLine && startCol > endCol) {
		startLine, endLine = endLine, startLine
		startCol, endCol = endCol, startCol
	}
	maxLine := maxInt(t.absoluteLineCount()-1, 0)
	t.selection = Selection{
		Active:    true,
		StartLine: clampInt(startLine, 0, maxLine),
		StartCol:  clampInt(startCol, 1, maxInt(t.cols, 1)),
		EndLine:   clampInt(endLine, 0, maxLine),
		EndCol:    clampInt(endCol, 1, maxInt(t.cols, 1)),
	}
	t.sink.SelectionChanged()
	if !ongoing {
		t.sink.SelectionFinished()
	}
}

// ClearSelection discards the current selection, if any.
func (t *Terminal) ClearSelection() {
	if !t.selection.Active {
		return
	}
	t.selection = Selection{}
	t.sink.SelectionChanged()
}

// isWrappedAbsLine reports whether the absolute line at abs is a live
// buffer row that soft-wrapped into the next one (buffer.go's per-row
// wrapped flag; scrollback lines carry no such record).
func (t *Terminal) isWrappedAbsLine(abs int) bool {
	sbLen := t.scrollback.Len()
	if abs < sbLen {
		return false
	}
	return t.activeBuffer().IsWrapped(abs - sbLen)
}

// SelectedText concatenates the printable characters covered by the
// selection, right-trimming each line. Lines are joined with "\n", except
// where a line soft-wrapped into the next one: that boundary is not a real
// line break, so the continuation is joined directly.
func (t *Terminal) SelectedText() string {
	sel := t.selection
	if !sel.Active {
		return ""
	}
	var b strings.Builder
	for abs := sel.StartLine; abs <= sel.EndLine; abs++ {
		line := t.rawAbsoluteLine(abs)
		from, to := 0, len(line)
		if abs == sel.StartLine {
			from = sel.StartCol - 1
		}
		if abs == sel.EndLine {
			to = sel.EndCol
		}
		b.WriteString(sliceLineText(line, from, to))
		if abs < sel.EndLine && !t.isWrappedAbsLine(abs) {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// --- scrollback view ------------------------------------------------------

// ScrollBackView moves the scrollback viewport by delta lines (positive
// toward older content), clamped to [0, scrollback.Len()].
func (t *Terminal) ScrollBackView(delta int) {
	t.scrollbackView = clampInt(t.scrollbackView+delta, 0, t.scrollback.Len())
	t.sink.ScrollbackAdjusted(t.scrollbackView == 0)
}

// --- keyboard & paste (spec.md §4.8-4.9) ---------------------------------

// Key encodes a key press into outgoing PTY bytes, resets the scrollback
// view to live, and clears the selection unless the encoded bytes are an
// escape sequence.
func (t *Terminal) Key(id Key, mods Mod, ch rune, text string) []byte {
	out := EncodeKey(id, mods, ch, text, t.modeAppCursorKeys, t.modeNewline)
	t.scrollbackView = 0
	if len(out) == 0 || out[0] != 0x1b {
		t.ClearSelection()
	}
	return out
}

// Paste wraps text in bracketed-paste markers when that mode is set, and
// always resets the scrollback view and clears the selection.
func (t *Terminal) Paste(text string) []byte {
	var out []byte
	if t.modeBracketedPaste {
		out = append(out, "\x1b[200~"...)
		out = append(out, text...)
		out = append(out, "\x1b[201~"...)
	} else {
		out = []byte(text)
	}
	t.scrollbackView = 0
	t.ClearSelection()
	return out
}

// PutString decodes the scripted-input escapes documented in spec.md §4.10
// and feeds the result through the same path as PTY input.
func (t *Terminal) PutString(s string) {
	t.Feed(decodeEscapes(s))
}

// Hangup notifies the core that the host has observed the child process's
// EOF/SIGCHLD (spec.md §6, PTY boundary). The core itself never detects
// this — PTY ownership is an external collaborator — so the host calls
// Hangup once it has translated that condition, and the core forwards it
// downstream. Per spec.md §7, the core does not otherwise become inert:
// subsequent Feed/Key calls still run normally, and it is the host's choice
// whether to keep routing bytes to a dead child.
func (t *Terminal) Hangup() {
	t.sink.Hangup()
}
