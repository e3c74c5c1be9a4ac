package vtcore

import "testing"

// testSink records every event it receives, for assertions in tests that
// need to observe the downstream event stream rather than just buffer state.
type testSink struct {
	NoopEventSink
	titles       []string
	cwds         []string
	bells        int
	displays     int
	hangups      int
	lastSize     [2]int
}

func (s *testSink) WindowTitleChanged(title string)    { s.titles = append(s.titles, title) }
func (s *testSink) WorkingDirectoryChanged(dir string) { s.cwds = append(s.cwds, dir) }
func (s *testSink) VisualBell()                        { s.bells++ }
func (s *testSink) DisplayChanged()                    { s.displays++ }
func (s *testSink) Hangup()                            { s.hangups++ }
func (s *testSink) SizeChanged(rows, cols int)         { s.lastSize = [2]int{rows, cols} }

func TestScenarioHello(t *testing.T) {
	term := New(WithSize(24, 80))
	term.Feed("hello")

	if got := term.LineContent(1); got != "hello" {
		t.Errorf("row 1 = %q, want %q", got, "hello")
	}
	row, col := term.Cursor()
	if row != 1 || col != 6 {
		t.Errorf("cursor = (%d,%d), want (1,6)", row, col)
	}
}

func TestScenarioWrap(t *testing.T) {
	term := New(WithSize(24, 5))
	term.Feed("abcdef")

	if got := term.LineContent(1); got != "abcde" {
		t.Errorf("row 1 = %q, want %q", got, "abcde")
	}
	if got := term.LineContent(2); got != "f" {
		t.Errorf("row 2 = %q, want %q", got, "f")
	}
	row, col := term.Cursor()
	if row != 2 || col != 2 {
		t.Errorf("cursor = (%d,%d), want (2,2)", row, col)
	}
}

func TestScenarioSGRColour(t *testing.T) {
	term := New(WithSize(24, 80))
	term.Feed("\x1b[31;1mX\x1b[0mY")

	x := term.Cell(1, 1)
	if x == nil || x.Char != 'X' {
		t.Fatalf("expected X at (1,1), got %+v", x)
	}
	if x.Fg != defaultPalette.At(9) {
		t.Errorf("X fg = %v, want bright red (palette[9])", x.Fg)
	}

	y := term.Cell(1, 2)
	if y == nil || y.Char != 'Y' {
		t.Fatalf("expected Y at (1,2), got %+v", y)
	}
	if y.Fg != defaultPalette.DefaultFg() {
		t.Errorf("Y fg = %v, want default", y.Fg)
	}
	if y.Attrs.Has(AttrBold) {
		t.Error("Y should not be bold: SGR 0 clears it")
	}
}

// Scrollback exercises a 3-row terminal filled past capacity. CRLF is used
// so each letter lands at column 1 of its row (LF alone does not imply a
// carriage return unless newline mode is set, matching this package's and
// its teacher's default).
func TestScenarioScrollback(t *testing.T) {
	term := New(WithSize(3, 80))
	term.Feed("a\r\nb\r\nc\r\nd\r\n")

	if got := term.LineContent(1); got != "b" {
		t.Errorf("row 1 = %q, want %q", got, "b")
	}
	if got := term.LineContent(2); got != "c" {
		t.Errorf("row 2 = %q, want %q", got, "c")
	}
	if got := term.LineContent(3); got != "d" {
		t.Errorf("row 3 = %q, want %q", got, "d")
	}
	if term.ScrollbackLen() != 1 {
		t.Fatalf("expected 1 scrollback line, got %d", term.ScrollbackLen())
	}
	if got := term.ScrollbackLine(0); got != "a" {
		t.Errorf("scrollback[0] = %q, want %q", got, "a")
	}
}

func TestScenarioAltScreen(t *testing.T) {
	term := New(WithSize(24, 80))
	term.Feed("hello")
	preRow, preCol := term.Cursor()
	preAttr := term.attr

	term.Feed("\x1b[?1049h")
	term.Feed("X")
	term.Feed("\x1b[?1049l")

	if got := term.LineContent(1); got != "hello" {
		t.Errorf("primary row 1 = %q, want unchanged %q", got, "hello")
	}
	row, col := term.Cursor()
	if row != preRow || col != preCol {
		t.Errorf("cursor = (%d,%d), want restored (%d,%d)", row, col, preRow, preCol)
	}
	if term.attr != preAttr {
		t.Errorf("attr = %+v, want restored %+v", term.attr, preAttr)
	}
}

func TestScenarioKeyEncoding(t *testing.T) {
	term := New(WithSize(24, 80))

	if got := string(term.Key(KeyUp, 0, 0, "")); got != "\x1b[A" {
		t.Errorf("Up: got %q", got)
	}
	if got := string(term.Key(KeyUp, ModShift|ModAlt, 0, "")); got != "\x1b[1;4A" {
		t.Errorf("Shift+Alt+Up: got %q", got)
	}

	term.setMode(false, 20, true) // LNM on
	if got := string(term.Key(KeyEnter, 0, 0, "")); got != "\r\n" {
		t.Errorf("Enter with newline mode: got %q", got)
	}

	got := term.Key(KeyChar, ModControl, 'a', "")
	if len(got) != 1 || got[0] != 0x01 {
		t.Errorf("Control+A: got %v", got)
	}
}

func TestSoftResetLeavesReplaceMode(t *testing.T) {
	term := New(WithSize(10, 20))
	term.Feed("\x1b[4h") // IRM on: insert mode
	if term.modeReplace {
		t.Fatal("precondition: expected insert mode after CSI 4h")
	}

	term.softReset()

	if !term.modeReplace {
		t.Error("soft reset should restore replace (overwrite) mode, matching the power-on default")
	}
}

func TestHardResetMatchesFreshTerminalModes(t *testing.T) {
	fresh := New(WithSize(10, 20))
	dirty := New(WithSize(10, 20))
	dirty.Feed("\x1b[4h\x1b[20h\x1b[?7l") // insert mode, newline mode, wrap off
	dirty.hardReset()

	if dirty.modeReplace != fresh.modeReplace {
		t.Errorf("modeReplace = %v, want %v (fresh terminal's default)", dirty.modeReplace, fresh.modeReplace)
	}
	if dirty.modeWrap != fresh.modeWrap {
		t.Errorf("modeWrap = %v, want %v", dirty.modeWrap, fresh.modeWrap)
	}
	if dirty.modeNewline != fresh.modeNewline {
		t.Errorf("modeNewline = %v, want %v", dirty.modeNewline, fresh.modeNewline)
	}
}

func TestHardResetRestoresInitialState(t *testing.T) {
	term := New(WithSize(10, 20))
	term.Feed("\x1b[31mhello\x1b[?1049h\x1b[4h")
	term.Feed("\x1b[H")

	term.hardReset()

	if term.usingAlt {
		t.Error("expected hard reset to leave primary screen")
	}
	if term.cursorRow != 1 || term.cursorCol != 1 {
		t.Errorf("cursor = (%d,%d), want (1,1)", term.cursorRow, term.cursorCol)
	}
	if term.attr != defaultAttrState() {
		t.Errorf("attr = %+v, want defaults", term.attr)
	}
	if term.top != 1 || term.bottom != term.rows {
		t.Errorf("margins = (%d,%d), want (1,%d)", term.top, term.bottom, term.rows)
	}
	if term.scrollback.Len() != 0 {
		t.Error("expected scrollback cleared")
	}
	if term.LineContent(1) != "" {
		t.Error("expected primary buffer cleared")
	}
}

func TestCursorClampedToMargins(t *testing.T) {
	term := New(WithSize(10, 10))
	term.Feed("\x1b[3;6r") // top=3, bottom=6
	term.setMode(true, 6, true) // origin mode

	term.cursorPosition(1, 1)
	if term.cursorRow != 3 {
		t.Errorf("origin-mode row 1 should map to margin top 3, got %d", term.cursorRow)
	}

	term.moveDown(100)
	if term.cursorRow != 6 {
		t.Errorf("expected clamp to bottom margin 6, got %d", term.cursorRow)
	}
}

func TestEraseInDisplayModes(t *testing.T) {
	term := New(WithSize(3, 5))
	term.Feed("\x1b[Haaaaa\r\nbbbbb\r\nccccc")
	term.Feed("\x1b[2;3H") // row2, col3
	term.Feed("\x1b[0J")   // erase cursor to end of screen

	if got := term.LineContent(2); got != "bb" {
		t.Errorf("row 2 after erase = %q, want %q", got, "bb")
	}
	if got := term.LineContent(3); got != "" {
		t.Errorf("row 3 after erase = %q, want empty", got)
	}
	if got := term.LineContent(1); got != "aaaaa" {
		t.Errorf("row 1 should be untouched, got %q", got)
	}
}

func TestInsertLines(t *testing.T) {
	term := New(WithSize(4, 5))
	term.Feed("\x1b[Haaaaa\r\nbbbbb\r\nccccc\r\nddddd")
	term.Feed("\x1b[2;1H\x1b[L") // insert 1 blank line at row 2

	if got := term.LineContent(2); got != "" {
		t.Errorf("row 2 after insert = %q, want blank", got)
	}
	if got := term.LineContent(3); got != "bbbbb" {
		t.Errorf("row 3 after insert = %q, want %q", got, "bbbbb")
	}
}

func TestTabStops(t *testing.T) {
	term := New(WithSize(2, 40))
	term.Feed("\t\t")
	_, col := term.Cursor()
	if col != 17 {
		t.Errorf("after two tabs, col = %d, want 17", col)
	}

	term.Feed("\x1b[3g") // clear all tab stops
	term.Feed("\r\t")
	_, col = term.Cursor()
	if col != 1 {
		t.Errorf("after clearing stops, tab should not move cursor, col = %d", col)
	}
}

func TestSaveRestoreCursor(t *testing.T) {
	term := New(WithSize(10, 10))
	term.Feed("\x1b[5;5H\x1b[31m\x1b7") // save at (5,5), red fg
	term.Feed("\x1b[0m\x1b[1;1H")       // move away, clear attrs
	term.Feed("\x1b8")                  // restore

	row, col := term.Cursor()
	if row != 5 || col != 5 {
		t.Errorf("cursor after restore = (%d,%d), want (5,5)", row, col)
	}
	if term.attr.fg != defaultPalette.At(1) {
		t.Errorf("fg after restore = %v, want palette[1]", term.attr.fg)
	}
}

func TestDECSTBMNormalisesInvalidMargins(t *testing.T) {
	term := New(WithSize(10, 10))
	term.Feed("\x1b[8;3r") // top >= bottom, invalid

	if term.top >= term.bottom {
		t.Fatalf("margins not normalised: top=%d bottom=%d", term.top, term.bottom)
	}
	row, col := term.Cursor()
	if row != 1 || col != 1 {
		t.Errorf("cursor after DECSTBM = (%d,%d), want (1,1)", row, col)
	}
}

func TestOSCWindowTitle(t *testing.T) {
	sink := &testSink{}
	term := New(WithSize(24, 80), WithEvents(sink))
	term.Feed("\x1b]0;my title\x07")

	if len(sink.titles) != 1 || sink.titles[0] != "my title" {
		t.Errorf("titles = %v, want [\"my title\"]", sink.titles)
	}
}

func TestOSCWorkingDirectory(t *testing.T) {
	sink := &testSink{}
	term := New(WithSize(24, 80), WithEvents(sink))
	term.Feed("\x1b]7;file:///home/x\x1b\\")

	if len(sink.cwds) != 1 || sink.cwds[0] != "file:///home/x" {
		t.Errorf("cwds = %v", sink.cwds)
	}
}

func TestBellEvent(t *testing.T) {
	sink := &testSink{}
	term := New(WithSize(24, 80), WithEvents(sink))
	term.Feed("a\x07b")

	if sink.bells != 1 {
		t.Errorf("bells = %d, want 1", sink.bells)
	}
}

func TestSelectionRoundTrip(t *testing.T) {
	term := New(WithSize(24, 80))
	term.Feed("Hello World")
	term.SetSelection(term.absoluteLineCount()-term.rows, 1, term.absoluteLineCount()-term.rows, 5, false)

	if !term.selection.Active {
		t.Fatal("expected selection active")
	}
	if got := term.SelectedText(); got != "Hello" {
		t.Errorf("selected text = %q, want %q", got, "Hello")
	}

	term.ClearSelection()
	if term.selection.Active {
		t.Error("expected selection cleared")
	}
}

// TestSelectionStableAcrossScrollWithinScrollbackCapacity covers the
// review-flagged bug where a forward scroll shifted a selection's absolute
// indices by n unconditionally. With plenty of scrollback headroom, a
// scrolled-off line lands safely in the ring instead of being evicted, so
// the selection's absolute coordinates must not move at all.
func TestSelectionStableAcrossScrollWithinScrollbackCapacity(t *testing.T) {
	term := New(WithSize(3, 10)) // DefaultMaxScrollback headroom, far from capacity
	term.Feed("line1\r\nline2\r\nline3")

	abs := term.absoluteLineCount() - 1 // last row, "line3"
	term.SetSelection(abs, 1, abs, 5, false)
	if got := term.SelectedText(); got != "line3" {
		t.Fatalf("precondition: selected text = %q, want %q", got, "line3")
	}

	term.Feed("\r\nline4") // forces one line ("line1") off the top into scrollback

	if got := term.SelectedText(); got != "line3" {
		t.Errorf("selected text after below-capacity scroll = %q, want %q (selection should not drift)", got, "line3")
	}
}

// TestSelectionStableWhenScrollBackwardConsumesAllScrollback covers the
// symmetric case: scrolling backward pulls a retired line off the ring, so
// the selection's absolute index does not shift (the ring shrinks by
// exactly the amount restored to the live grid).
func TestSelectionStableWhenScrollBackwardConsumesAllScrollback(t *testing.T) {
	term := New(WithSize(3, 10))
	term.Feed("line1\r\nline2\r\nline3")
	term.Feed("\r\nline4") // "line1" retired to scrollback; grid now line2/line3/line4

	abs := term.absoluteLineCount() - 2 // the "line3" row
	term.SetSelection(abs, 1, abs, 5, false)
	if got := term.SelectedText(); got != "line3" {
		t.Fatalf("precondition: selected text = %q, want %q", got, "line3")
	}

	term.cursorRow = term.top
	term.reverseLineFeed() // pulls "line1" back from scrollback, discards "line4"

	if got := term.SelectedText(); got != "line3" {
		t.Errorf("selected text after scrollBackward = %q, want %q (selection should track its content, not shift by raw n)", got, "line3")
	}
}

func TestTerminalWideCharacter(t *testing.T) {
	term := New(WithSize(24, 80))
	term.Feed("中")

	cell := term.Cell(1, 1)
	if cell == nil || cell.Char != '中' {
		t.Fatalf("expected wide rune at (1,1), got %+v", cell)
	}
	spacer := term.Cell(1, 2)
	if spacer == nil || !spacer.IsSpacer() {
		t.Fatalf("expected spacer cell at (1,2), got %+v", spacer)
	}
	_, col := term.Cursor()
	if col != 3 {
		t.Errorf("cursor col = %d, want 3 (advanced by the rune's width)", col)
	}
}

// TestWrapMarksSourceRowAcrossRegionScroll covers the review-flagged bug
// where the wrapped flag was set after index() instead of before: when the
// wrap happens at the bottom margin, index() scrolls the region, and
// marking after the fact would tag the freshly blanked row that slid into
// the wrapping row's old place, not the row that actually wrapped.
func TestWrapMarksSourceRowAcrossRegionScroll(t *testing.T) {
	term := New(WithSize(2, 5))
	term.Feed("abcde") // fills row 1, cursor pending-wraps
	term.Feed("fghij") // fills row 2 (bottom margin), cursor pending-wraps again
	term.Feed("k")     // overflow: wraps at the bottom margin, forcing a scroll

	buf := term.activeBuffer()
	if !buf.IsWrapped(0) {
		t.Error("row 1 (now holding \"fghij\", scrolled up from row 2) should be marked wrapped")
	}
	if got := term.LineContent(2); got != "k" {
		t.Errorf("row 2 content = %q, want %q", got, "k")
	}
}

// TestSelectedTextJoinsWrappedRowWithoutNewline covers wiring IsWrapped
// into SelectedText: a soft-wrapped row's continuation should not gain an
// inserted line break when the selection is linearised.
func TestSelectedTextJoinsWrappedRowWithoutNewline(t *testing.T) {
	term := New(WithSize(3, 5))
	term.Feed("abcdefghij") // exactly two rows, row 1 wraps into row 2, no scroll

	if !term.activeBuffer().IsWrapped(0) {
		t.Fatal("precondition: row 1 should be marked wrapped")
	}

	term.SetSelection(0, 1, 1, 5, false)
	if got := term.SelectedText(); got != "abcdefghij" {
		t.Errorf("selected text = %q, want %q (no newline across a soft wrap)", got, "abcdefghij")
	}
}

// TestExtractURLsJoinsAcrossWrappedRow covers the same wiring from the
// ExtractURLs side: a URL split across the right margin by a soft wrap must
// still match as a single run.
func TestExtractURLsJoinsAcrossWrappedRow(t *testing.T) {
	term := New(WithSize(3, 10))
	term.Feed("http://example.com") // 18 chars: wraps after column 10

	if !term.activeBuffer().IsWrapped(0) {
		t.Fatal("precondition: row 1 should be marked wrapped")
	}

	urls := term.ExtractURLs()
	if len(urls) != 1 || urls[0] != "http://example.com" {
		t.Errorf("ExtractURLs() = %v, want [%q]", urls, "http://example.com")
	}
}

func TestResizeDisablesInsertionAtZero(t *testing.T) {
	term := New(WithSize(24, 80))
	term.Resize(0, 0)
	term.Feed("hello") // must be silently dropped

	term.Resize(24, 80)
	if got := term.LineContent(1); got != "" {
		t.Errorf("row 1 = %q, want empty: feed during 0x0 should have been dropped", got)
	}
}

func TestPutStringDecodesEscapes(t *testing.T) {
	term := New(WithSize(3, 20))
	term.PutString(`ab\r\nc\x41\0101`)

	if got := term.LineContent(1); got != "ab" {
		t.Errorf("row 1 = %q, want %q", got, "ab")
	}
	if got := term.LineContent(2); got != "cAA" {
		t.Errorf("row 2 = %q, want %q", got, "cAA")
	}
}

func TestHangupForwardsToSink(t *testing.T) {
	sink := &testSink{}
	term := New(WithSize(24, 80), WithEvents(sink))
	term.Hangup()

	if sink.hangups != 1 {
		t.Errorf("hangups = %d, want 1", sink.hangups)
	}
}

func TestDeviceAttributesReply(t *testing.T) {
	wc := &writeCaptureSink{}
	term := New(WithSize(24, 80), WithEvents(wc))
	term.Feed("\x1b[c")
	if string(wc.written) != "\x1b[?1;2c" {
		t.Errorf("DA reply = %q", wc.written)
	}
}

type writeCaptureSink struct {
	testSink
	written []byte
}

func (w *writeCaptureSink) Write(p []byte) { w.written = append(w.written, p...) }
