package vtcore

// DefaultMaxScrollback is the default scrollback ring capacity (spec.md §2:
// "bounded FIFO of retired rows (cap ≈ 300 default)").
const DefaultMaxScrollback = 300

// Scrollback is a bounded, oldest-first FIFO of retired [Line]s. Only the
// primary buffer feeds it; the alternate buffer never does.
type Scrollback struct {
	lines []Line
	max   int
}

// NewScrollback creates an empty scrollback ring with the given capacity.
// A non-positive max disables scrollback (Push becomes a no-op).
func NewScrollback(max int) *Scrollback {
	return &Scrollback{max: max}
}

// Push appends a line, evicting the oldest line if the ring is at capacity.
// It reports lost = true when this call did not grow the retained count —
// either the line was discarded outright (scrollback disabled) or its
// arrival evicted an older line to stay within capacity. Callers that track
// absolute line coordinates (e.g. a selection) use this to tell "the line
// slid safely into the ring" apart from "a line left the retained set for
// good".
func (s *Scrollback) Push(line Line) (lost bool) {
	if s.max <= 0 {
		return true
	}
	before := len(s.lines)
	s.lines = append(s.lines, line)
	if over := len(s.lines) - s.max; over > 0 {
		s.lines = s.lines[over:]
	}
	return len(s.lines) == before
}

// PopTail removes and returns the most recently pushed line, or false if
// scrollback is empty. Used by scrollBackward to pull retired lines back
// onto the live screen.
func (s *Scrollback) PopTail() (Line, bool) {
	if len(s.lines) == 0 {
		return nil, false
	}
	line := s.lines[len(s.lines)-1]
	s.lines = s.lines[:len(s.lines)-1]
	return line, true
}

// Len returns the number of retained lines.
func (s *Scrollback) Len() int {
	return len(s.lines)
}

// Max returns the configured capacity.
func (s *Scrollback) Max() int {
	return s.max
}

// SetMax changes the capacity, trimming the oldest lines if it shrinks.
func (s *Scrollback) SetMax(max int) {
	s.max = max
	if max <= 0 {
		s.lines = nil
		return
	}
	if over := len(s.lines) - max; over > 0 {
		s.lines = s.lines[over:]
	}
}

// Line returns the line at index, where 0 is the oldest retained line.
// Returns nil if index is out of range.
func (s *Scrollback) Line(index int) Line {
	if index < 0 || index >= len(s.lines) {
		return nil
	}
	return s.lines[index]
}

// Clear discards all retained lines.
func (s *Scrollback) Clear() {
	s.lines = nil
}
