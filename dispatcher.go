package vtcore

import (
	"fmt"
	"log"
	"strconv"
	"strings"
)

// escState is the Escape Accumulator's state (spec.md §3, §4.3), rewritten
// here as an explicit enum rather than a raw integer/rune leader so the
// state machine is exhaustive at the type level (spec.md §9).
type escState int

const (
	escNone escState = iota
	escStart
	escCsi
	escOsc
	escOscEsc // inside OSC, just saw ESC; waiting for '\' to close via ST
	escMulti
)

type escAccumulator struct {
	state     escState
	multiChar byte
	buf       []byte
}

const multiCharSet = "().*+-/%#"

// feedSink forwards every event to the wrapped sink except DisplayChanged,
// which Feed emits once after the whole body has been processed.
type feedSink struct{ EventSink }

func (feedSink) DisplayChanged() {}

// Feed consumes a decoded Unicode string, mutating the grid synchronously
// and emitting exactly one DisplayChanged at the end (spec.md §5). A zero
// row or column count silently drops the whole body.
func (t *Terminal) Feed(s string) {
	if t.rows == 0 || t.cols == 0 {
		return
	}
	sink := t.sink
	t.sink = feedSink{sink}
	for _, r := range s {
		t.feedRune(r)
	}
	t.sink = sink
	t.sink.DisplayChanged()
}

func (t *Terminal) feedRune(r rune) {
	switch t.esc.state {
	case escNone:
		t.feedGround(r)
	case escStart:
		t.feedEscStart(r)
	case escCsi:
		t.feedEscCsi(r)
	case escOsc:
		t.feedEscOsc(r)
	case escOscEsc:
		t.feedEscOscEsc(r)
	case escMulti:
		t.feedEscMulti(r)
	}
}

// feedGround handles C0 controls and printable characters outside any
// escape sequence (spec.md §4.3 "C0 handling").
func (t *Terminal) feedGround(r rune) {
	switch r {
	case 0x1b:
		t.esc = escAccumulator{state: escStart}
	case '\n', '\v', '\f':
		t.lineFeed()
	case '\r':
		t.cursorCol = 1
	case 0x08, 0x7f:
		if t.cursorCol > 1 {
			t.cursorCol--
		}
	case 0x07:
		t.sink.VisualBell()
	case '\t':
		t.tabForward(1)
	case 0x0e, 0x0f:
		// SI/SO, recognised and ignored
	default:
		if r < 0x20 {
			return
		}
		t.putChar(r)
	}
}

func (t *Terminal) feedEscStart(r rune) {
	switch {
	case r == '[':
		t.esc = escAccumulator{state: escCsi}
	case r == ']':
		t.esc = escAccumulator{state: escOsc}
	case strings.ContainsRune(multiCharSet, r):
		t.esc = escAccumulator{state: escMulti, multiChar: byte(r)}
	case r == '\\':
		t.esc = escAccumulator{state: escNone}
	case r == 0x1b:
		t.esc = escAccumulator{state: escStart}
	default:
		t.esc = escAccumulator{state: escNone}
		t.dispatchSingleEsc(byte(r))
	}
}

func (t *Terminal) feedEscCsi(r rune) {
	t.esc.buf = append(t.esc.buf, byte(r))
	if r >= 0x40 && r <= 0x7e && r != '[' {
		buf := t.esc.buf
		t.esc = escAccumulator{state: escNone}
		t.dispatchCSI(buf)
	}
}

func (t *Terminal) feedEscOsc(r rune) {
	switch r {
	case 0x07:
		buf := t.esc.buf
		t.esc = escAccumulator{state: escNone}
		t.dispatchOSC(buf)
	case 0x1b:
		t.esc.state = escOscEsc
	default:
		t.esc.buf = append(t.esc.buf, byte(r))
	}
}

func (t *Terminal) feedEscOscEsc(r rune) {
	if r == '\\' {
		buf := t.esc.buf
		t.esc = escAccumulator{state: escNone}
		t.dispatchOSC(buf)
		return
	}
	t.esc = escAccumulator{state: escNone}
	t.feedRune(r)
}

func (t *Terminal) feedEscMulti(r rune) {
	t.esc.buf = append(t.esc.buf, byte(r))
	leader, rest := t.esc.multiChar, t.esc.buf
	t.esc = escAccumulator{state: escNone}
	t.dispatchMultiEsc(leader, rest)
}

// --- CSI ------------------------------------------------------------------

// parseCSI splits a CSI body (everything after '[', including the final
// byte) into its extra prefix, numeric parameters, and final byte
// (spec.md §4.3 "CSI dispatch").
func parseCSI(buf []byte) (extra string, params []int, final byte) {
	if len(buf) == 0 {
		return "", nil, 0
	}
	final = buf[len(buf)-1]
	body := buf[:len(buf)-1]

	i := 0
	for i < len(body) {
		c := body[i]
		if (c >= '0' && c <= '9') || c == ';' {
			break
		}
		i++
	}
	extra = string(body[:i])

	for _, tok := range strings.Split(string(body[i:]), ";") {
		if tok == "" {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		params = append(params, n)
	}
	return extra, params, final
}

func paramAt(params []int, idx, def int) int {
	if idx < len(params) {
		return params[idx]
	}
	return def
}

func treatZeroAsOne(n int) int {
	if n == 0 {
		return 1
	}
	return n
}

func (t *Terminal) dispatchCSI(buf []byte) {
	extra, params, final := parseCSI(buf)

	switch final {
	case 'A':
		t.moveUp(treatZeroAsOne(paramAt(params, 0, 1)))
	case 'B':
		t.moveDown(treatZeroAsOne(paramAt(params, 0, 1)))
	case 'C':
		t.moveRight(treatZeroAsOne(paramAt(params, 0, 1)))
	case 'D':
		t.moveLeft(treatZeroAsOne(paramAt(params, 0, 1)))
	case 'E':
		for i, n := 0, treatZeroAsOne(paramAt(params, 0, 1)); i < n; i++ {
			t.nextLine()
		}
	case 'F':
		for i, n := 0, treatZeroAsOne(paramAt(params, 0, 1)); i < n; i++ {
			t.prevLine()
		}
	case 'G':
		t.setCursor(t.cursorRow, treatZeroAsOne(paramAt(params, 0, 1)))
	case 'H', 'f':
		row := treatZeroAsOne(paramAt(params, 0, 1))
		col := treatZeroAsOne(paramAt(params, 1, 1))
		t.cursorPosition(row, col)
	case 'I':
		t.tabForward(treatZeroAsOne(paramAt(params, 0, 1)))
	case 'Z':
		t.tabBackward(treatZeroAsOne(paramAt(params, 0, 1)))
	case 'J':
		t.eraseInDisplay(paramAt(params, 0, 0))
	case 'K':
		t.eraseInLine(paramAt(params, 0, 0))
	case 'X':
		t.eraseChars(treatZeroAsOne(paramAt(params, 0, 1)))
	case 'L':
		t.insertLines(treatZeroAsOne(paramAt(params, 0, 1)))
	case 'M':
		t.deleteLines(treatZeroAsOne(paramAt(params, 0, 1)))
	case 'P':
		t.deleteCharsAtCursor(treatZeroAsOne(paramAt(params, 0, 1)))
	case '@':
		t.insertBlanksAtCursor(treatZeroAsOne(paramAt(params, 0, 1)))
	case 'S':
		t.scrollForward(treatZeroAsOne(paramAt(params, 0, 1)), t.top)
	case 'T':
		t.scrollBackward(treatZeroAsOne(paramAt(params, 0, 1)), t.top)
	case 'c':
		if extra == "" {
			t.sink.Write([]byte("\x1b[?1;2c"))
		}
	case 'd':
		t.setCursor(treatZeroAsOne(paramAt(params, 0, 1)), t.cursorCol)
	case 'g':
		switch paramAt(params, 0, 0) {
		case 0:
			t.activeBuffer().ClearTabStop(t.cursorCol - 1)
		case 3:
			t.activeBuffer().ClearAllTabStops()
		}
	case 'n':
		if paramAt(params, 0, 6) == 6 {
			t.sink.Write([]byte(fmt.Sprintf("\x1b[%d;%dR", t.cursorRow, t.cursorCol)))
		}
	case 'p':
		if extra == "!" || extra == ">" || extra == "$" {
			t.softReset()
		}
	case 's':
		t.saveCursor()
	case 'u':
		t.restoreCursor()
	case 'm':
		t.applySGR(params)
	case 'h':
		t.applyModes(extra == "?", params, true)
	case 'l':
		t.applyModes(extra == "?", params, false)
	case 'r':
		top := paramAt(params, 0, 1)
		bottom := paramAt(params, 1, t.rows)
		t.setMargins(top, bottom)
	default:
		log.Printf("vtcore: unhandled CSI final %q (extra=%q params=%v)", final, extra, params)
	}
}

func (t *Terminal) applySGR(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	state, err := sgrApply(params, t.attr)
	if err != nil {
		log.Printf("vtcore: %v", err)
		return
	}
	t.attr = state
}

func (t *Terminal) applyModes(dec bool, params []int, set bool) {
	for _, p := range params {
		t.setMode(dec, p, set)
	}
}

// --- OSC --------------------------------------------------------------

func (t *Terminal) dispatchOSC(buf []byte) {
	s := string(buf)
	code, payload := s, ""
	if idx := strings.IndexByte(s, ';'); idx >= 0 {
		code, payload = s[:idx], s[idx+1:]
	}
	switch code {
	case "0", "2":
		t.sink.WindowTitleChanged(payload)
	case "7":
		t.sink.WorkingDirectoryChanged(payload)
	case "6", "133", "1337":
		// recognised iTerm2-family sequences, intentionally ignored
	default:
		log.Printf("vtcore: unrecognised OSC %q", s)
	}
}

// --- single-char and multi-char ESC -------------------------------------

func (t *Terminal) dispatchSingleEsc(c byte) {
	switch c {
	case '7':
		t.saveCursor()
	case '8':
		t.restoreCursor()
	case '>', '=':
		// keypad modes, recognised and ignored
	case 'H':
		t.activeBuffer().SetTabStop(t.cursorCol - 1)
	case 'D':
		t.index()
	case 'M':
		t.reverseLineFeed()
	case 'E':
		t.nextLine()
	case 'c':
		t.hardReset()
	case 'g':
		t.sink.VisualBell()
	default:
		log.Printf("vtcore: unhandled ESC %q", c)
	}
}

func (t *Terminal) dispatchMultiEsc(leader byte, rest []byte) {
	if len(rest) == 0 {
		return
	}
	switch leader {
	case '(', ')':
		// character set designation (G0/G1), recognised and ignored
	case '#':
		if rest[0] == '8' {
			buf := t.activeBuffer()
			buf.ClearAll()
			buf.FillWithE()
			t.cursorRow, t.cursorCol = 1, 1
			t.sink.DisplayChanged()
		}
	default:
		log.Printf("vtcore: unhandled multi-char ESC %q%q", leader, rest)
	}
}

// --- putString escape decoding (spec.md §4.10) --------------------------

// decodeEscapes expands the back-slash escapes \r \n \e \b \t \xHH \0ooo
// used by scripted test input.
func decodeEscapes(s string) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			i++
			continue
		}
		switch s[i+1] {
		case 'r':
			b.WriteByte('\r')
			i += 2
		case 'n':
			b.WriteByte('\n')
			i += 2
		case 'e':
			b.WriteByte(0x1b)
			i += 2
		case 'b':
			b.WriteByte(0x08)
			i += 2
		case 't':
			b.WriteByte('\t')
			i += 2
		case 'x':
			if i+3 < len(s) {
				if n, err := strconv.ParseUint(s[i+2:i+4], 16, 8); err == nil {
					b.WriteByte(byte(n))
					i += 4
					continue
				}
			}
			b.WriteByte(s[i+1])
			i += 2
		case '0':
			if i+4 < len(s) {
				if n, err := strconv.ParseUint(s[i+2:i+5], 8, 8); err == nil {
					b.WriteByte(byte(n))
					i += 5
					continue
				}
			}
			b.WriteByte(s[i+1])
			i += 2
		default:
			b.WriteByte(s[i+1])
			i += 2
		}
	}
	return b.String()
}
