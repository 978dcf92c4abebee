// Package term implements the VT100/ANSI subset needed to host
// interactive programs inside PTY zones: printable text, cursor
// control, erase operations, SGR attributes, wrap mode, and a bounded
// scrollback history of lines that leave the top of the screen.
package term

import (
	"sync"
	"unicode/utf8"
)

// Attributes are the active SGR text attributes. Colors use the
// editor's convention: -1 default, 0-7 basic, 8-15 bright, 16-255
// extended.
type Attributes struct {
	Fg        int
	Bg        int
	Bold      bool
	Underline bool
	Reverse   bool
}

// DefaultAttributes returns the reset state.
func DefaultAttributes() Attributes {
	return Attributes{Fg: -1, Bg: -1}
}

// Cell is one character cell of the emulated screen.
type Cell struct {
	Char rune
	Attr Attributes
}

func blankCell(attr Attributes) Cell {
	return Cell{Char: ' ', Attr: Attributes{Fg: -1, Bg: attr.Bg}}
}

// Emulator is a fixed-size terminal screen plus scrollback. Feed is
// called from the PTY reader goroutine; Snapshot and the other
// accessors may be called concurrently from the render path.
type Emulator struct {
	mu sync.Mutex

	width  int
	height int
	screen [][]Cell

	cursorX int
	cursorY int
	attr    Attributes
	wrap    bool
	pending bool // deferred wrap: cursor sits past the last column

	savedX    int
	savedY    int
	savedAttr Attributes

	history    [][]Cell
	maxHistory int

	parser  parser
	utf8buf []byte
}

// NewEmulator creates an emulator of the given screen size with a
// bounded history.
func NewEmulator(width, height, maxHistory int) *Emulator {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if maxHistory < 0 {
		maxHistory = 0
	}
	e := &Emulator{
		width:      width,
		height:     height,
		attr:       DefaultAttributes(),
		wrap:       true,
		maxHistory: maxHistory,
	}
	e.screen = newScreen(width, height)
	return e
}

func newScreen(w, h int) [][]Cell {
	s := make([][]Cell, h)
	for y := range s {
		s[y] = newRow(w)
	}
	return s
}

func newRow(w int) []Cell {
	row := make([]Cell, w)
	for x := range row {
		row[x] = Cell{Char: ' ', Attr: DefaultAttributes()}
	}
	return row
}

// Size returns the screen dimensions.
func (e *Emulator) Size() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.width, e.height
}

// CursorPos returns the cursor position on the current screen.
func (e *Emulator) CursorPos() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursorX, e.cursorY
}

// HistoryLen returns the number of scrollback lines.
func (e *Emulator) HistoryLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.history)
}

// TotalLines returns history plus screen height.
func (e *Emulator) TotalLines() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.history) + e.height
}

// Feed processes raw terminal output bytes. Partial UTF-8 sequences
// are buffered across calls.
func (e *Emulator) Feed(data []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()

	buf := data
	if len(e.utf8buf) > 0 {
		buf = append(e.utf8buf, data...)
		e.utf8buf = nil
	}

	for len(buf) > 0 {
		if e.parser.state != stateGround {
			n := e.parser.consume(buf[0])
			if e.parser.state == stateDone {
				e.dispatch()
				e.parser.reset()
			}
			buf = buf[n:]
			continue
		}

		b := buf[0]
		switch {
		case b == 0x1b:
			e.parser.state = stateEscape
			buf = buf[1:]
		case b == '\n':
			e.lineFeed()
			buf = buf[1:]
		case b == '\r':
			e.cursorX = 0
			e.pending = false
			buf = buf[1:]
		case b == '\b':
			if e.pending {
				e.pending = false
			} else if e.cursorX > 0 {
				e.cursorX--
			}
			buf = buf[1:]
		case b == '\t':
			e.pending = false
			next := (e.cursorX/8 + 1) * 8
			if next >= e.width {
				next = e.width - 1
			}
			e.cursorX = next
			buf = buf[1:]
		case b == 0x07: // BEL
			buf = buf[1:]
		case b < 0x20:
			// Other C0 controls are ignored.
			buf = buf[1:]
		default:
			r, size := utf8.DecodeRune(buf)
			if r == utf8.RuneError && size == 1 && !utf8.FullRune(buf) {
				// Partial sequence at the chunk boundary.
				e.utf8buf = append(e.utf8buf, buf...)
				return
			}
			if r == utf8.RuneError {
				r = '�'
			}
			e.printRune(r)
			buf = buf[size:]
		}
	}
}

func (e *Emulator) printRune(r rune) {
	if e.pending {
		if e.wrap {
			e.cursorX = 0
			e.lineFeed()
		}
		e.pending = false
	}
	if e.cursorY >= 0 && e.cursorY < e.height && e.cursorX >= 0 && e.cursorX < e.width {
		e.screen[e.cursorY][e.cursorX] = Cell{Char: r, Attr: e.attr}
	}
	if e.cursorX < e.width-1 {
		e.cursorX++
	} else if e.wrap {
		e.pending = true
	}
}

func (e *Emulator) lineFeed() {
	e.pending = false
	if e.cursorY < e.height-1 {
		e.cursorY++
		return
	}
	e.scrollUp()
}

// scrollUp pushes the top line into history and shifts the screen.
func (e *Emulator) scrollUp() {
	top := e.screen[0]
	if e.maxHistory > 0 {
		e.history = append(e.history, top)
		if len(e.history) > e.maxHistory {
			e.history = e.history[len(e.history)-e.maxHistory:]
		}
	}
	copy(e.screen, e.screen[1:])
	e.screen[e.height-1] = newRow(e.width)
}

// reverseIndex moves the cursor up, scrolling the screen down at the
// top. Lines pushed off the bottom are dropped.
func (e *Emulator) reverseIndex() {
	if e.cursorY > 0 {
		e.cursorY--
		return
	}
	copy(e.screen[1:], e.screen[:e.height-1])
	e.screen[0] = newRow(e.width)
}

// Resize changes the screen dimensions, clipping or padding content.
func (e *Emulator) Resize(width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	next := newScreen(width, height)
	for y := 0; y < height && y < e.height; y++ {
		copy(next[y], e.screen[y])
	}
	e.screen = next
	e.width = width
	e.height = height
	if e.cursorX >= width {
		e.cursorX = width - 1
	}
	if e.cursorY >= height {
		e.cursorY = height - 1
	}
	e.pending = false
}

// Reset clears the screen, history, cursor, and attributes.
func (e *Emulator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

func (e *Emulator) resetLocked() {
	e.screen = newScreen(e.width, e.height)
	e.history = nil
	e.cursorX = 0
	e.cursorY = 0
	e.attr = DefaultAttributes()
	e.wrap = true
	e.pending = false
}

// Snapshot returns the visible lines for the given scrollback offset:
// offset 0 is the live screen, larger offsets reveal history above.
// The returned rows are copies safe to use without the lock.
func (e *Emulator) Snapshot(offset int) [][]Cell {
	e.mu.Lock()
	defer e.mu.Unlock()

	if offset <= 0 {
		return copyRows(e.screen)
	}
	if offset > len(e.history) {
		offset = len(e.history)
	}

	total := len(e.history) + e.height
	start := total - e.height - offset
	if start < 0 {
		start = 0
	}

	out := make([][]Cell, 0, e.height)
	for i := start; i < start+e.height && i < total; i++ {
		if i < len(e.history) {
			out = append(out, copyRow(e.history[i], e.width))
		} else {
			out = append(out, copyRow(e.screen[i-len(e.history)], e.width))
		}
	}
	return out
}

func copyRows(rows [][]Cell) [][]Cell {
	out := make([][]Cell, len(rows))
	for i, row := range rows {
		out[i] = copyRow(row, len(row))
	}
	return out
}

func copyRow(row []Cell, width int) []Cell {
	out := make([]Cell, width)
	n := copy(out, row)
	for i := n; i < width; i++ {
		out[i] = Cell{Char: ' ', Attr: DefaultAttributes()}
	}
	return out
}

// Line renders a screen row as plain text (for tests and status
// output).
func Line(row []Cell) string {
	runes := make([]rune, len(row))
	for i, c := range row {
		if c.Char == 0 {
			runes[i] = ' '
		} else {
			runes[i] = c.Char
		}
	}
	return string(runes)
}
