// Package modes implements the editor's input-handling state machine:
// NAV, PAN, EDIT, COMMAND, MARK_SET, MARK_JUMP, VISUAL, DRAW, and the
// PTY_FOCUSED pseudo-mode while a zone captures input.
package modes

import (
	"fmt"

	"mygrid/pkg/bookmarks"
	"mygrid/pkg/canvas"
	"mygrid/pkg/clip"
	"mygrid/pkg/input"
	"mygrid/pkg/undo"
	"mygrid/pkg/viewport"
)

// Mode is an input-handling regime.
type Mode int

const (
	ModeNav Mode = iota
	ModePan
	ModeEdit
	ModeCommand
	ModeMarkSet
	ModeMarkJump
	ModeVisual
	ModeDraw
	ModePTYFocused
)

// String returns the mode tag shown on the status line.
func (m Mode) String() string {
	switch m {
	case ModeNav:
		return "NAV"
	case ModePan:
		return "PAN"
	case ModeEdit:
		return "EDIT"
	case ModeCommand:
		return "CMD"
	case ModeMarkSet:
		return "MARK"
	case ModeMarkJump:
		return "JUMP"
	case ModeVisual:
		return "VIS"
	case ModeDraw:
		return "DRW"
	case ModePTYFocused:
		return "PTY"
	default:
		return "?"
	}
}

// Config tunes movement distances.
type Config struct {
	MoveStep     int64
	FastStep     int64
	ScrollMargin int
}

// DefaultConfig matches the editor defaults: single steps, 10x with
// Shift, cursor flush against the viewport edge.
func DefaultConfig() Config {
	return Config{MoveStep: 1, FastStep: 10, ScrollMargin: 0}
}

// Result reports what processing one event did.
type Result struct {
	Consumed     bool
	ModeChanged  bool
	Mode         Mode
	Commands     []string // command lines to run through the executor
	Message      string
	Quit         bool
	ForwardToPTY bool // PTY_FOCUSED: send the event to the focused zone
	PTYScroll    int  // PTY_FOCUSED: scrollback delta (+back, -forward)
	PTYScrollEnd bool // PTY_FOCUSED: jump back to live tail
}

// Selection is the VISUAL-mode region: the anchor is fixed at entry,
// the cursor is the opposite corner.
type Selection struct {
	AnchorX, AnchorY int64
}

// Normalized returns the selection rectangle for the current cursor,
// min/max on each axis so the rectangle stays valid as the cursor
// crosses the anchor.
func (s Selection) Normalized(cur viewport.Cursor) (x, y int64, w, h int64) {
	x1, x2 := s.AnchorX, cur.X
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	y1, y2 := s.AnchorY, cur.Y
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return x1, y1, x2 - x1 + 1, y2 - y1 + 1
}

// Machine dispatches input events according to the active mode. It
// mutates the canvas, viewport, bookmarks, and clipboard directly and
// hands command lines back to the caller for execution.
type Machine struct {
	canvas    *canvas.Canvas
	viewport  *viewport.Viewport
	bookmarks *bookmarks.Manager
	clipboard *clip.Clipboard
	config    Config

	mode       Mode
	CommandBuf CommandBuffer

	selection Selection
	hasSel    bool

	penDown bool
	border  canvas.BorderStyle
	penFg   canvas.Color
	penBg   canvas.Color

	undoMgr *undo.Manager

	focusedZone string
}

// NewMachine creates the state machine in NAV mode.
func NewMachine(cv *canvas.Canvas, vp *viewport.Viewport, bm *bookmarks.Manager, cb *clip.Clipboard) *Machine {
	m := &Machine{
		canvas:    cv,
		viewport:  vp,
		bookmarks: bm,
		clipboard: cb,
		config:    DefaultConfig(),
		mode:      ModeNav,
		border:    canvas.DefaultBorderStyle(),
		penFg:     canvas.ColorDefault,
		penBg:     canvas.ColorDefault,
	}
	m.CommandBuf.Clear()
	return m
}

// Mode returns the active mode.
func (m *Machine) Mode() Mode { return m.mode }

// SetMode forces a mode (commands like `zone focus` use this).
func (m *Machine) SetMode(mode Mode) {
	if m.mode == ModeCommand && mode != ModeCommand {
		m.CommandBuf.Clear()
	}
	m.mode = mode
}

// BorderStyle returns the active drawing style.
func (m *Machine) BorderStyle() canvas.BorderStyle { return m.border }

// SetBorderStyle switches the drawing style used by DRAW and `rect`.
func (m *Machine) SetBorderStyle(style canvas.BorderStyle) { m.border = style }

// PenDown reports the DRAW pen state for the status line.
func (m *Machine) PenDown() bool { return m.penDown }

// SetUndoManager wires the undo history; EDIT typing, DRAW strokes,
// and VISUAL deletes record through it.
func (m *Machine) SetUndoManager(um *undo.Manager) { m.undoMgr = um }

// PenColor returns the active drawing colors.
func (m *Machine) PenColor() (fg, bg canvas.Color) { return m.penFg, m.penBg }

// SetPenColor changes the colors applied by EDIT typing and the
// drawing commands.
func (m *Machine) SetPenColor(fg, bg canvas.Color) {
	m.penFg = fg
	m.penBg = bg
}

// Selection returns the active VISUAL selection.
func (m *Machine) Selection() (Selection, bool) { return m.selection, m.hasSel }

// FocusedZone returns the zone (PTY or pager) holding input, if any.
func (m *Machine) FocusedZone() string { return m.focusedZone }

// FocusZone enters PTY_FOCUSED for the named zone.
func (m *Machine) FocusZone(name string) {
	m.focusedZone = name
	m.mode = ModePTYFocused
}

// Process dispatches one event through the active mode.
func (m *Machine) Process(ev input.Event) Result {
	switch m.mode {
	case ModeNav:
		return m.processNav(ev)
	case ModePan:
		return m.processPan(ev)
	case ModeEdit:
		return m.processEdit(ev)
	case ModeCommand:
		return m.processCommand(ev)
	case ModeMarkSet:
		return m.processMark(ev, true)
	case ModeMarkJump:
		return m.processMark(ev, false)
	case ModeVisual:
		return m.processVisual(ev)
	case ModeDraw:
		return m.processDraw(ev)
	case ModePTYFocused:
		return m.processPTYFocused(ev)
	}
	return Result{}
}

func (m *Machine) enter(mode Mode, msg string) Result {
	m.SetMode(mode)
	return Result{Consumed: true, ModeChanged: true, Mode: mode, Message: msg}
}

// movementDelta maps movement keys (wasd + arrows) to a step. Shift
// selects the fast step; W/A/S letters are their own shift variant.
func (m *Machine) movementDelta(ev input.Event) (int64, int64, bool) {
	step := m.config.MoveStep
	if ev.Shift {
		step = m.config.FastStep
	}
	switch ev.Key {
	case input.KeyUp:
		return 0, -step, true
	case input.KeyDown:
		return 0, step, true
	case input.KeyLeft:
		return -step, 0, true
	case input.KeyRight:
		return step, 0, true
	case input.KeyRune:
		switch ev.Rune {
		case 'w':
			return 0, -m.config.MoveStep, true
		case 's':
			return 0, m.config.MoveStep, true
		case 'a':
			return -m.config.MoveStep, 0, true
		case 'd':
			return m.config.MoveStep, 0, true
		case 'W':
			return 0, -m.config.FastStep, true
		case 'S':
			return 0, m.config.FastStep, true
		case 'A':
			return -m.config.FastStep, 0, true
		}
	}
	return 0, 0, false
}

// moveCursor applies a delta in the Y-direction's sense and keeps the
// cursor visible.
func (m *Machine) moveCursor(dx, dy int64) {
	if m.viewport.YDirection == viewport.YUp {
		dy = -dy
	}
	m.viewport.MoveCursor(dx, dy)
	m.viewport.EnsureCursorVisible(m.config.ScrollMargin)
}

func (m *Machine) processNav(ev input.Event) Result {
	if dx, dy, ok := m.movementDelta(ev); ok {
		m.moveCursor(dx, dy)
		return Result{Consumed: true}
	}

	if ev.Key == input.KeyEscape {
		return Result{Consumed: true} // no-op by contract
	}
	if ev.Key != input.KeyRune {
		return Result{}
	}

	if ev.Ctrl {
		switch ev.Rune {
		case 'z':
			return Result{Consumed: true, Message: m.undoMessage(false)}
		case 'r':
			return Result{Consumed: true, Message: m.undoMessage(true)}
		}
		return Result{}
	}

	switch ev.Rune {
	case 'i':
		return m.enter(ModeEdit, "-- EDIT --")
	case 'p':
		return m.enter(ModePan, "-- PAN --")
	case 'v':
		m.selection = Selection{AnchorX: m.viewport.Cursor.X, AnchorY: m.viewport.Cursor.Y}
		m.hasSel = true
		return m.enter(ModeVisual, "-- VISUAL --")
	case 'D':
		m.penDown = false
		return m.enter(ModeDraw, "-- DRAW -- pen up")
	case ':', '/':
		m.CommandBuf.Clear()
		return m.enter(ModeCommand, "")
	case 'm':
		return m.enter(ModeMarkSet, "Set mark: press a-z or 0-9")
	case '\'':
		return m.enter(ModeMarkJump, "Jump to mark: press a-z or 0-9")
	case 'c':
		m.viewport.CenterOnCursor()
		return Result{Consumed: true}
	case 'C':
		m.viewport.CenterOnOrigin()
		return Result{Consumed: true}
	}
	return Result{}
}

func (m *Machine) processPan(ev input.Event) Result {
	if ev.Key == input.KeyEscape {
		return m.enter(ModeNav, "")
	}
	if dx, dy, ok := m.movementDelta(ev); ok {
		// Cursor follows the viewport at the same offset.
		m.viewport.Pan(dx, dy)
		if m.viewport.YDirection == viewport.YUp {
			dy = -dy
		}
		m.viewport.MoveCursor(dx, dy)
		return Result{Consumed: true}
	}
	if ev.Key == input.KeyRune {
		switch ev.Rune {
		case 'p':
			return m.enter(ModeNav, "")
		case 'c':
			m.viewport.CenterOnCursor()
			return Result{Consumed: true}
		case 'C':
			m.viewport.CenterOnOrigin()
			return Result{Consumed: true}
		}
	}
	return Result{}
}

func (m *Machine) processEdit(ev input.Event) Result {
	switch {
	case ev.Key == input.KeyEscape:
		return m.enter(ModeNav, "")
	case ev.Printable():
		cur := m.viewport.Cursor
		m.beginCellOp("Type", cur.X, cur.Y)
		m.canvas.Set(cur.X, cur.Y, canvas.Cell{Char: ev.Rune, Fg: m.penFg, Bg: m.penBg})
		m.endCellOp(cur.X, cur.Y)
		m.moveCursor(1, 0)
		return Result{Consumed: true}
	case ev.Key == input.KeyBackspace:
		m.moveCursor(-1, 0)
		cur := m.viewport.Cursor
		m.beginCellOp("Delete", cur.X, cur.Y)
		m.canvas.Clear(cur.X, cur.Y)
		m.endCellOp(cur.X, cur.Y)
		return Result{Consumed: true}
	case ev.Key == input.KeyDelete:
		cur := m.viewport.Cursor
		m.beginCellOp("Delete", cur.X, cur.Y)
		m.canvas.Clear(cur.X, cur.Y)
		m.endCellOp(cur.X, cur.Y)
		return Result{Consumed: true}
	case ev.Key == input.KeyEnter:
		m.viewport.SetCursor(m.viewport.Origin.X, m.viewport.Cursor.Y)
		m.moveCursor(0, 1)
		return Result{Consumed: true}
	}
	if dx, dy, ok := arrowDelta(ev); ok {
		m.moveCursor(dx, dy)
		return Result{Consumed: true}
	}
	return Result{}
}

// arrowDelta maps only arrow keys; EDIT mode letters are content.
func arrowDelta(ev input.Event) (int64, int64, bool) {
	step := int64(1)
	if ev.Shift {
		step = 10
	}
	switch ev.Key {
	case input.KeyUp:
		return 0, -step, true
	case input.KeyDown:
		return 0, step, true
	case input.KeyLeft:
		return -step, 0, true
	case input.KeyRight:
		return step, 0, true
	}
	return 0, 0, false
}

func (m *Machine) processCommand(ev input.Event) Result {
	buf := &m.CommandBuf
	switch {
	case ev.Key == input.KeyEscape:
		buf.Clear()
		return m.enter(ModeNav, "")
	case ev.Key == input.KeyEnter:
		line := buf.Submit()
		res := m.enter(ModeNav, "")
		if line != "" {
			res.Commands = []string{line}
		}
		return res
	case ev.Printable():
		buf.Insert(ev.Rune)
		return Result{Consumed: true}
	case ev.Key == input.KeyBackspace:
		buf.Backspace()
		return Result{Consumed: true}
	case ev.Key == input.KeyDelete:
		buf.Delete()
		return Result{Consumed: true}
	case ev.Key == input.KeyLeft:
		buf.MoveLeft()
		return Result{Consumed: true}
	case ev.Key == input.KeyRight:
		buf.MoveRight()
		return Result{Consumed: true}
	case ev.Key == input.KeyHome:
		buf.MoveStart()
		return Result{Consumed: true}
	case ev.Key == input.KeyEnd:
		buf.MoveEnd()
		return Result{Consumed: true}
	case ev.Key == input.KeyUp:
		buf.HistoryPrev()
		return Result{Consumed: true}
	case ev.Key == input.KeyDown:
		buf.HistoryNext()
		return Result{Consumed: true}
	}
	return Result{}
}

func (m *Machine) processMark(ev input.Event, set bool) Result {
	if ev.Key == input.KeyRune && bookmarks.ValidKey(ev.Rune) {
		cur := m.viewport.Cursor
		if set {
			m.bookmarks.Set(ev.Rune, cur.X, cur.Y, "")
			return m.enter(ModeNav, fmt.Sprintf("Mark '%c' set at (%d, %d)", ev.Rune, cur.X, cur.Y))
		}
		b, ok := m.bookmarks.Get(ev.Rune)
		if !ok {
			return m.enter(ModeNav, fmt.Sprintf("Mark '%c' not set", ev.Rune))
		}
		m.viewport.SetCursor(b.X, b.Y)
		m.viewport.EnsureCursorVisible(m.config.ScrollMargin)
		return m.enter(ModeNav, fmt.Sprintf("Jumped to mark '%c' (%d, %d)", ev.Rune, b.X, b.Y))
	}
	return m.enter(ModeNav, "Cancelled")
}

func (m *Machine) processVisual(ev input.Event) Result {
	if ev.Key == input.KeyEscape {
		m.hasSel = false
		return m.enter(ModeNav, "")
	}

	// Operators win over wasd movement: 'd' clears the region.
	if ev.Key == input.KeyRune {
		x, y, w, h := m.selection.Normalized(m.viewport.Cursor)
		switch ev.Rune {
		case 'y':
			err := m.clipboard.Yank(m.canvas, x, y, int(w), int(h))
			m.hasSel = false
			if err != nil {
				return m.enter(ModeNav, err.Error())
			}
			return m.enter(ModeNav, fmt.Sprintf("Yanked %dx%d", w, h))
		case 'd':
			if m.undoMgr != nil {
				m.undoMgr.Begin("Delete Region")
				m.undoMgr.RecordRegionBefore(m.canvas, x, y, w, h)
			}
			m.canvas.ClearRegion(x, y, w, h)
			if m.undoMgr != nil {
				m.undoMgr.RecordRegionAfter(m.canvas, x, y, w, h)
				m.undoMgr.End()
			}
			m.hasSel = false
			return m.enter(ModeNav, fmt.Sprintf("Cleared %dx%d", w, h))
		case 'f':
			// Fill prompts for the glyph through a preloaded
			// mini-command anchored at the selection's top-left.
			m.hasSel = false
			m.viewport.SetCursor(x, y)
			m.CommandBuf.Clear()
			m.CommandBuf.Preload(fmt.Sprintf("fill %d %d ", w, h))
			return m.enter(ModeCommand, "")
		}
	}

	if dx, dy, ok := m.movementDelta(ev); ok {
		m.moveCursor(dx, dy)
		return Result{Consumed: true}
	}
	return Result{}
}

func (m *Machine) processDraw(ev input.Event) Result {
	if ev.Key == input.KeyEscape {
		m.penDown = false
		return m.enter(ModeNav, "")
	}
	if ev.Key == input.KeyRune && ev.Rune == ' ' {
		m.penDown = !m.penDown
		state := "up"
		if m.penDown {
			state = "down"
		}
		return Result{Consumed: true, Message: "-- DRAW -- pen " + state}
	}
	if dx, dy, ok := m.movementDelta(ev); ok {
		from := m.viewport.Cursor
		m.moveCursor(dx, dy)
		to := m.viewport.Cursor
		if m.penDown {
			// The stroke also re-resolves neighbor glyphs, so record
			// one cell of margin around the segment.
			minX, maxX := from.X, to.X
			if minX > maxX {
				minX, maxX = maxX, minX
			}
			minY, maxY := from.Y, to.Y
			if minY > maxY {
				minY, maxY = maxY, minY
			}
			if m.undoMgr != nil {
				m.undoMgr.Begin("Draw")
				m.undoMgr.RecordRegionBefore(m.canvas, minX-1, minY-1, maxX-minX+3, maxY-minY+3)
			}
			// Draw the path cell by cell so corners and junctions
			// resolve against what is already on the canvas.
			stepX, stepY := sign(to.X-from.X), sign(to.Y-from.Y)
			x, y := from.X, from.Y
			for x != to.X || y != to.Y {
				x += stepX
				y += stepY
				m.canvas.DrawConnected(x, y, stepX, stepY, m.border)
			}
			if m.undoMgr != nil {
				m.undoMgr.RecordRegionAfter(m.canvas, minX-1, minY-1, maxX-minX+3, maxY-minY+3)
				m.undoMgr.End()
			}
		}
		return Result{Consumed: true}
	}
	return Result{}
}

func sign(v int64) int64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func (m *Machine) processPTYFocused(ev input.Event) Result {
	switch {
	case ev.Key == input.KeyEscape:
		m.focusedZone = ""
		return m.enter(ModeNav, "")
	case ev.Shift && ev.Key == input.KeyPgUp:
		return Result{Consumed: true, PTYScroll: 10}
	case ev.Shift && ev.Key == input.KeyPgDn:
		return Result{Consumed: true, PTYScroll: -10}
	case ev.Shift && ev.Key == input.KeyHome:
		return Result{Consumed: true, PTYScroll: 1 << 30}
	case ev.Shift && ev.Key == input.KeyEnd:
		return Result{Consumed: true, PTYScrollEnd: true}
	}
	return Result{Consumed: true, ForwardToPTY: true}
}

// beginCellOp opens a single-cell undo operation when a manager is
// wired.
func (m *Machine) beginCellOp(desc string, x, y int64) {
	if m.undoMgr == nil {
		return
	}
	m.undoMgr.Begin(desc)
	m.undoMgr.RecordBefore(m.canvas, x, y)
}

func (m *Machine) endCellOp(x, y int64) {
	if m.undoMgr == nil {
		return
	}
	m.undoMgr.RecordAfter(m.canvas, x, y)
	m.undoMgr.End()
}

// undoMessage performs an undo or redo and formats the status
// message.
func (m *Machine) undoMessage(redo bool) string {
	if m.undoMgr == nil {
		return "Undo is not available"
	}
	if redo {
		if desc, found := m.undoMgr.Redo(m.canvas); found {
			return "Redo: " + desc
		}
		return "Nothing to redo"
	}
	if desc, found := m.undoMgr.Undo(m.canvas); found {
		return "Undo: " + desc
	}
	return "Nothing to undo"
}
