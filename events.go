package vtcore

// EventSink receives the logical events a Terminal emits while processing
// Feed (spec.md §6 "Downstream (core → host)"). Every method has a no-op
// default via NoopEventSink, mirroring the teacher's Provider pattern
// (BellProvider, TitleProvider, ...) — a host overrides only what it cares
// about by embedding NoopEventSink and redefining the rest.
type EventSink interface {
	// Write is called when the core itself needs to send bytes back to the
	// PTY: DA (CSI c) and DSR (CSI n) responses. Keyboard-encoded bytes and
	// pasted text (including any bracketed-paste markers) are returned
	// directly from Key and Paste and do not go through here.
	Write(p []byte)

	CursorMoved(row, col int)
	DisplayChanged()
	SizeChanged(rows, cols int)
	VisualBell()
	WindowTitleChanged(title string)
	WorkingDirectoryChanged(dir string)
	SelectionChanged()
	SelectionFinished()
	ScrollbackAdjusted(reset bool)
	Hangup()
}

// NoopEventSink discards every event. Embed it and override selectively.
type NoopEventSink struct{}

func (NoopEventSink) Write(p []byte)                    {}
func (NoopEventSink) CursorMoved(row, col int)           {}
func (NoopEventSink) DisplayChanged()                    {}
func (NoopEventSink) SizeChanged(rows, cols int)         {}
func (NoopEventSink) VisualBell()                        {}
func (NoopEventSink) WindowTitleChanged(title string)    {}
func (NoopEventSink) WorkingDirectoryChanged(dir string) {}
func (NoopEventSink) SelectionChanged()                  {}
func (NoopEventSink) SelectionFinished()                 {}
func (NoopEventSink) ScrollbackAdjusted(reset bool)      {}
func (NoopEventSink) Hangup()                            {}

var _ EventSink = NoopEventSink{}
