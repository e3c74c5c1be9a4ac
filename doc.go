// Package vtcore implements the stateful core of a VT-style terminal
// emulator: the byte-stream parser, the screen/scrollback buffer model, the
// cursor/attribute state machine, and the keyboard-to-byte encoder that
// together translate between a pseudo-terminal child process and a grid of
// styled cells.
//
// vtcore has no display of its own. It is meant to be driven by a host that
// owns the PTY, the GUI (or other) renderer, and the keyboard/clipboard
// integration; the host talks to the core through three entry points and
// gets typed events back through an [EventSink].
//
// # Quick start
//
//	term := vtcore.New(vtcore.WithSize(24, 80))
//	term.Feed("\x1b[31mHello\x1b[0m, World!")
//	fmt.Println(term.LineContent(1)) // "Hello, World!"
//
// # Architecture
//
// The package is organized around these core types, built bottom-up:
//
//   - [Palette]: the immutable 256-entry ANSI colour table
//   - [Cell]: a single grid position (code point, fg/bg colour, attributes)
//   - [Buffer]: a screen's worth of [Line]s plus tab stops
//   - [Scrollback]: a bounded FIFO of retired lines
//   - [sgrApply] (unexported): the SGR (Select Graphic Rendition) sub-parser
//   - [Terminal]: the screen engine — cursor, modes, selection, dispatch
//   - [EncodeKey]: translates a key press into outgoing PTY bytes
//   - [ExtractURLs]: linearises the grid and scrollback and finds URLs
//
// # Driving the terminal
//
// [Terminal.Feed] accepts a decoded Unicode string (the host is responsible
// for byte-to-rune decoding) and mutates the grid synchronously:
//
//	term.Feed(decodedChunk)
//
// [Terminal.Key] turns a key press into the bytes a real terminal would send
// to the child process:
//
//	out := term.Key(vtcore.KeyUp, vtcore.ModShift|vtcore.ModAlt, 0, "")
//	ptyWriter.Write(out)
//
// [Terminal.Resize] updates the grid dimensions and resets tab stops.
//
// vtcore is single-threaded and cooperative: a call to any of the three
// entry points runs to completion on the caller's goroutine, and the host
// may only read buffer state between calls.
package vtcore
