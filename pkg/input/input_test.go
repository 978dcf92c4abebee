package input

import (
	"bytes"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestFromTcell(t *testing.T) {
	tests := []struct {
		name     string
		event    *tcell.EventKey
		expected Event
	}{
		{
			"plain rune",
			tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone),
			Event{Key: KeyRune, Rune: 'x'},
		},
		{
			"shifted rune",
			tcell.NewEventKey(tcell.KeyRune, 'X', tcell.ModShift),
			Event{Key: KeyRune, Rune: 'X', Shift: true},
		},
		{
			"arrow",
			tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone),
			Event{Key: KeyUp},
		},
		{
			"shift arrow",
			tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModShift),
			Event{Key: KeyLeft, Shift: true},
		},
		{
			"escape",
			tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone),
			Event{Key: KeyEscape},
		},
		{
			"backspace2",
			tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone),
			Event{Key: KeyBackspace},
		},
		{
			"ctrl-c",
			tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl),
			Event{Key: KeyCtrlC, Ctrl: true},
		},
		{
			"ctrl letter",
			tcell.NewEventKey(tcell.KeyCtrlD, 0, tcell.ModCtrl),
			Event{Key: KeyRune, Rune: 'd', Ctrl: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromTcell(tt.event)
			if got != tt.expected {
				t.Errorf("FromTcell() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestEvent_Printable(t *testing.T) {
	if !(Event{Key: KeyRune, Rune: 'a'}).Printable() {
		t.Error("'a' should be printable")
	}
	if (Event{Key: KeyRune, Rune: 'a', Ctrl: true}).Printable() {
		t.Error("ctrl chord is not printable")
	}
	if (Event{Key: KeyUp}).Printable() {
		t.Error("named key is not printable")
	}
}

func TestEncodeVT(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		expected []byte
	}{
		{"rune", Event{Key: KeyRune, Rune: 'q'}, []byte("q")},
		{"utf8 rune", Event{Key: KeyRune, Rune: 'é'}, []byte("é")},
		{"ctrl chord", Event{Key: KeyRune, Rune: 'd', Ctrl: true}, []byte{0x04}},
		{"alt chord", Event{Key: KeyRune, Rune: 'f', Alt: true}, []byte{0x1b, 'f'}},
		{"enter", Event{Key: KeyEnter}, []byte{'\r'}},
		{"backspace", Event{Key: KeyBackspace}, []byte{0x7f}},
		{"up", Event{Key: KeyUp}, []byte("\x1b[A")},
		{"down", Event{Key: KeyDown}, []byte("\x1b[B")},
		{"right", Event{Key: KeyRight}, []byte("\x1b[C")},
		{"left", Event{Key: KeyLeft}, []byte("\x1b[D")},
		{"home", Event{Key: KeyHome}, []byte("\x1b[1~")},
		{"end", Event{Key: KeyEnd}, []byte("\x1b[4~")},
		{"page up", Event{Key: KeyPgUp}, []byte("\x1b[5~")},
		{"page down", Event{Key: KeyPgDn}, []byte("\x1b[6~")},
		{"delete", Event{Key: KeyDelete}, []byte("\x1b[3~")},
		{"interrupt", Event{Key: KeyCtrlC}, []byte{0x03}},
		{"unmapped", Event{Key: KeyNone}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeVT(tt.event); !bytes.Equal(got, tt.expected) {
				t.Errorf("EncodeVT(%+v) = %q, want %q", tt.event, got, tt.expected)
			}
		})
	}
}
