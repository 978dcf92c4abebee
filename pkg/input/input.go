// Package input defines the editor's input event model and the
// translation from tcell key events, including the VT byte encoding
// used when forwarding keys into a PTY zone.
package input

import (
	"github.com/gdamore/tcell/v2"
)

// Key identifies a named (non-printable) key.
type Key int

const (
	KeyRune Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyDelete
	KeyTab
	KeyHome
	KeyEnd
	KeyPgUp
	KeyPgDn
	KeyF1
	KeyCtrlC
	KeyNone
)

// Event is a single decoded keystroke.
type Event struct {
	Key   Key
	Rune  rune // valid when Key == KeyRune
	Shift bool
	Ctrl  bool
	Alt   bool
	Paste bool // part of a bracketed paste
}

// Printable reports whether the event is a plain printable rune.
func (e Event) Printable() bool {
	return e.Key == KeyRune && !e.Ctrl && e.Rune >= ' '
}

// FromTcell converts a tcell key event into an editor event.
func FromTcell(ev *tcell.EventKey) Event {
	mods := ev.Modifiers()
	out := Event{
		Shift: mods&tcell.ModShift != 0,
		Ctrl:  mods&tcell.ModCtrl != 0,
		Alt:   mods&tcell.ModAlt != 0,
	}

	switch ev.Key() {
	case tcell.KeyRune:
		out.Key = KeyRune
		out.Rune = ev.Rune()
	case tcell.KeyUp:
		out.Key = KeyUp
	case tcell.KeyDown:
		out.Key = KeyDown
	case tcell.KeyLeft:
		out.Key = KeyLeft
	case tcell.KeyRight:
		out.Key = KeyRight
	case tcell.KeyEnter:
		out.Key = KeyEnter
	case tcell.KeyEscape:
		out.Key = KeyEscape
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		out.Key = KeyBackspace
	case tcell.KeyDelete:
		out.Key = KeyDelete
	case tcell.KeyTab:
		out.Key = KeyTab
	case tcell.KeyHome:
		out.Key = KeyHome
	case tcell.KeyEnd:
		out.Key = KeyEnd
	case tcell.KeyPgUp:
		out.Key = KeyPgUp
	case tcell.KeyPgDn:
		out.Key = KeyPgDn
	case tcell.KeyF1:
		out.Key = KeyF1
	case tcell.KeyCtrlC:
		out.Key = KeyCtrlC
		out.Ctrl = true
	default:
		// Other control keys arrive as their rune with Ctrl set:
		// tcell numbers KeyCtrlA..KeyCtrlZ as 1..26.
		k := ev.Key()
		if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
			out.Key = KeyRune
			out.Ctrl = true
			out.Rune = rune('a' + (k - tcell.KeyCtrlA))
		} else {
			out.Key = KeyNone
		}
	}
	return out
}

// EncodeVT translates an event into the byte sequence a VT-style
// terminal would send, for forwarding into a PTY. Returns nil for
// events with no terminal encoding.
func EncodeVT(e Event) []byte {
	switch e.Key {
	case KeyRune:
		if e.Ctrl && e.Rune >= 'a' && e.Rune <= 'z' {
			return []byte{byte(e.Rune - 'a' + 1)}
		}
		if e.Alt {
			return []byte{0x1b, byte(e.Rune)}
		}
		return []byte(string(e.Rune))
	case KeyEnter:
		return []byte{'\r'}
	case KeyEscape:
		return []byte{0x1b}
	case KeyBackspace:
		return []byte{0x7f}
	case KeyTab:
		return []byte{'\t'}
	case KeyUp:
		return []byte("\x1b[A")
	case KeyDown:
		return []byte("\x1b[B")
	case KeyRight:
		return []byte("\x1b[C")
	case KeyLeft:
		return []byte("\x1b[D")
	case KeyHome:
		return []byte("\x1b[1~")
	case KeyEnd:
		return []byte("\x1b[4~")
	case KeyPgUp:
		return []byte("\x1b[5~")
	case KeyPgDn:
		return []byte("\x1b[6~")
	case KeyDelete:
		return []byte("\x1b[3~")
	case KeyCtrlC:
		return []byte{0x03}
	}
	return nil
}
