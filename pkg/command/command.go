// Package command implements the `:cmd args…` parser and executor.
// The same executor serves COMMAND-mode input and the external API
// server, so both surfaces share one contract.
package command

import (
	"fmt"
	"strconv"
	"strings"

	"mygrid/pkg/bookmarks"
	"mygrid/pkg/canvas"
	"mygrid/pkg/clip"
	"mygrid/pkg/grid"
	"mygrid/pkg/layout"
	"mygrid/pkg/modes"
	"mygrid/pkg/undo"
	"mygrid/pkg/viewport"
	"mygrid/pkg/zones"
)

// Status of a command result.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Result is the outcome of one command. Data carries structured state
// for API callers (the `status` command).
type Result struct {
	Status  string
	Message string
	Quit    bool
	Data    map[string]interface{}
}

func ok(format string, args ...interface{}) Result {
	return Result{Status: StatusOK, Message: fmt.Sprintf(format, args...)}
}

func fail(format string, args ...interface{}) Result {
	return Result{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}

// IsError reports whether the result is an error.
func (r Result) IsError() bool { return r.Status == StatusError }

// Executor owns references to every mutable subsystem and applies
// commands to them. It runs only on the application thread.
type Executor struct {
	Canvas    *canvas.Canvas
	Viewport  *viewport.Viewport
	Grid      *grid.Settings
	Bookmarks *bookmarks.Manager
	Clipboard *clip.Clipboard
	Zones     *zones.Manager
	Machine   *modes.Machine
	Layouts   *layout.Store
	System    clip.SystemClipboard
	Undo      *undo.Manager

	// Project file state.
	FilePath string
	Created  string
	dirty    bool

	// SaveFunc persists the project (wired by the application).
	SaveFunc func(path string) error
}

// Dirty reports unsaved changes.
func (e *Executor) Dirty() bool { return e.dirty }

// MarkDirty flags unsaved changes (EDIT typing does this through the
// application loop).
func (e *Executor) MarkDirty() { e.dirty = true }

// markClean resets the dirty flag after a successful write.
func (e *Executor) markClean() { e.dirty = false }

// Execute parses and runs one command line. A leading ':' is
// accepted and stripped. Unknown commands are errors; errors never
// stop the loop.
func (e *Executor) Execute(line string) Result {
	line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), ":"))
	if line == "" {
		return ok("")
	}

	name, rest, _ := strings.Cut(line, " ")
	name = strings.ToLower(name)
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	switch name {
	case "quit", "q":
		return Result{Status: StatusOK, Quit: true}
	case "write", "w":
		return e.cmdWrite(args, false)
	case "wq":
		return e.cmdWrite(args, true)
	case "goto", "g":
		return e.cmdGoto(args)
	case "origin":
		return e.cmdOrigin(args)
	case "pan":
		return e.cmdPan(args)
	case "clear":
		return e.cmdClear()
	case "rect":
		return e.cmdRect(args)
	case "line":
		return e.cmdLine(args)
	case "text":
		return e.cmdText(rest)
	case "fill":
		return e.cmdFill(args)
	case "grid":
		return e.cmdGrid(args)
	case "mark":
		return e.cmdMark(args)
	case "delmark":
		return e.cmdDelmark(args)
	case "delmarks":
		e.Bookmarks.Clear()
		return ok("All marks deleted")
	case "marks":
		return e.cmdMarks()
	case "export":
		return e.cmdExport(args)
	case "import":
		return e.cmdImport(args)
	case "ydir":
		return e.cmdYdir(args)
	case "yank", "y":
		return e.cmdYank(args)
	case "paste", "p":
		return e.cmdPaste(args)
	case "clipboard":
		return e.cmdClipboard(args)
	case "color":
		return e.cmdColor(args)
	case "palette":
		return e.cmdPalette()
	case "border", "borders":
		return e.cmdBorder(args)
	case "search":
		return e.cmdSearch(rest)
	case "zone":
		return e.cmdZone(args, rest)
	case "zones":
		return e.cmdZones()
	case "layout":
		return e.cmdLayout(args)
	case "status":
		return e.cmdStatus()
	case "undo":
		return e.cmdUndo()
	case "redo":
		return e.cmdRedo()
	case "history":
		return e.cmdHistory()
	}
	return fail("Unknown command: %s", name)
}

// beginRegionOp opens an undo operation covering a region.
func (e *Executor) beginRegionOp(desc string, x, y, w, h int64) {
	if e.Undo == nil {
		return
	}
	e.Undo.Begin(desc)
	e.Undo.RecordRegionBefore(e.Canvas, x, y, w, h)
}

// endRegionOp records the region's new state and closes the
// operation.
func (e *Executor) endRegionOp(x, y, w, h int64) {
	if e.Undo == nil {
		return
	}
	e.Undo.RecordRegionAfter(e.Canvas, x, y, w, h)
	e.Undo.End()
}

func (e *Executor) cmdClear() Result {
	if e.Undo != nil {
		e.Undo.Begin("Clear Canvas")
		var coords []canvas.Point
		e.Canvas.Cells(func(x, y int64, _ canvas.Cell) {
			coords = append(coords, canvas.Point{X: x, Y: y})
		})
		for _, p := range coords {
			e.Undo.RecordBefore(e.Canvas, p.X, p.Y)
		}
		e.Canvas.ClearAll()
		for _, p := range coords {
			e.Undo.RecordAfter(e.Canvas, p.X, p.Y)
		}
		e.Undo.End()
	} else {
		e.Canvas.ClearAll()
	}
	e.MarkDirty()
	return ok("Canvas cleared")
}

func (e *Executor) cmdUndo() Result {
	if e.Undo == nil {
		return fail("Undo is not available")
	}
	desc, found := e.Undo.Undo(e.Canvas)
	if !found {
		return ok("Nothing to undo")
	}
	e.MarkDirty()
	return ok("Undo: %s", desc)
}

func (e *Executor) cmdRedo() Result {
	if e.Undo == nil {
		return fail("Redo is not available")
	}
	desc, found := e.Undo.Redo(e.Canvas)
	if !found {
		return ok("Nothing to redo")
	}
	e.MarkDirty()
	return ok("Redo: %s", desc)
}

func (e *Executor) cmdHistory() Result {
	if e.Undo == nil || e.Undo.UndoCount() == 0 {
		return ok("No history")
	}
	entries := e.Undo.History(10)
	return ok("History: %s", strings.Join(entries, ", "))
}

// parseInt64 parses a signed coordinate argument.
func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// parseSize parses a positive dimension argument.
func parseSize(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("must be positive")
	}
	return n, nil
}

func (e *Executor) cmdWrite(args []string, quit bool) Result {
	path := e.FilePath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return fail("No file name (use: write PATH)")
	}
	if e.SaveFunc == nil {
		return fail("Saving is not available")
	}
	if err := e.SaveFunc(path); err != nil {
		return fail("Save failed: %v", err)
	}
	e.FilePath = path
	e.markClean()
	res := ok("Saved %s", path)
	res.Quit = quit
	return res
}

func (e *Executor) cmdGoto(args []string) Result {
	if len(args) < 2 {
		return fail("Usage: goto X Y")
	}
	x, err1 := parseInt64(args[0])
	y, err2 := parseInt64(args[1])
	if err1 != nil || err2 != nil {
		return fail("Usage: goto X Y")
	}
	e.Viewport.SetCursor(x, y)
	e.Viewport.EnsureCursorVisible(0)
	return ok("Moved to (%d, %d)", x, y)
}

func (e *Executor) cmdOrigin(args []string) Result {
	if len(args) == 0 || args[0] == "here" {
		cur := e.Viewport.Cursor
		e.Viewport.Origin = viewport.Origin{X: cur.X, Y: cur.Y}
		return ok("Origin set to (%d, %d)", cur.X, cur.Y)
	}
	if len(args) < 2 {
		return fail("Usage: origin [X Y | here]")
	}
	x, err1 := parseInt64(args[0])
	y, err2 := parseInt64(args[1])
	if err1 != nil || err2 != nil {
		return fail("Usage: origin [X Y | here]")
	}
	e.Viewport.Origin = viewport.Origin{X: x, Y: y}
	return ok("Origin set to (%d, %d)", x, y)
}

func (e *Executor) cmdPan(args []string) Result {
	if len(args) < 2 {
		return fail("Usage: pan X Y")
	}
	dx, err1 := parseInt64(args[0])
	dy, err2 := parseInt64(args[1])
	if err1 != nil || err2 != nil {
		return fail("Usage: pan X Y")
	}
	e.Viewport.Pan(dx, dy)
	return ok("Panned by (%d, %d)", dx, dy)
}

func (e *Executor) cmdRect(args []string) Result {
	if len(args) < 2 {
		return fail("Usage: rect W H [glyph]")
	}
	w, err1 := parseSize(args[0])
	h, err2 := parseSize(args[1])
	if err1 != nil || err2 != nil {
		return fail("Usage: rect W H [glyph]")
	}
	cur := e.Viewport.Cursor
	e.beginRegionOp("Rectangle", cur.X, cur.Y, int64(w), int64(h))
	if len(args) >= 3 {
		glyph := []rune(args[2])[0]
		style := canvas.BorderStyle{
			Horizontal: glyph, Vertical: glyph,
			TopLeft: glyph, TopRight: glyph, BottomLeft: glyph, BottomRight: glyph,
		}
		e.Canvas.DrawRect(cur.X, cur.Y, int64(w), int64(h), style)
	} else {
		e.Canvas.DrawRect(cur.X, cur.Y, int64(w), int64(h), e.Machine.BorderStyle())
	}
	e.applyPenColors(cur.X, cur.Y, int64(w), int64(h), true)
	e.endRegionOp(cur.X, cur.Y, int64(w), int64(h))
	e.MarkDirty()
	return ok("Rectangle %dx%d at (%d, %d)", w, h, cur.X, cur.Y)
}

func (e *Executor) cmdLine(args []string) Result {
	if len(args) < 2 {
		return fail("Usage: line X2 Y2 [glyph]")
	}
	x2, err1 := parseInt64(args[0])
	y2, err2 := parseInt64(args[1])
	if err1 != nil || err2 != nil {
		return fail("Usage: line X2 Y2 [glyph]")
	}
	glyph := '*'
	if len(args) >= 3 {
		glyph = []rune(args[2])[0]
	} else if x2 == e.Viewport.Cursor.X || y2 == e.Viewport.Cursor.Y {
		// Straight lines take the border style's strokes.
		style := e.Machine.BorderStyle()
		if y2 == e.Viewport.Cursor.Y {
			glyph = style.Horizontal
		} else {
			glyph = style.Vertical
		}
	}
	cur := e.Viewport.Cursor
	points := canvas.LinePoints(cur.X, cur.Y, x2, y2)
	if e.Undo != nil {
		e.Undo.Begin("Line")
		for _, p := range points {
			e.Undo.RecordBefore(e.Canvas, p.X, p.Y)
		}
	}
	e.Canvas.DrawLine(cur.X, cur.Y, x2, y2, glyph)
	if e.Undo != nil {
		for _, p := range points {
			e.Undo.RecordAfter(e.Canvas, p.X, p.Y)
		}
		e.Undo.End()
	}
	e.MarkDirty()
	return ok("Line to (%d, %d)", x2, y2)
}

func (e *Executor) cmdText(rest string) Result {
	if rest == "" {
		return fail("Usage: text MESSAGE")
	}
	cur := e.Viewport.Cursor
	fg, bg := e.Machine.PenColor()
	width := int64(len([]rune(rest)))
	e.beginRegionOp("Text", cur.X, cur.Y, width, 1)
	i := int64(0)
	for _, r := range rest {
		e.Canvas.Set(cur.X+i, cur.Y, canvas.Cell{Char: r, Fg: fg, Bg: bg})
		i++
	}
	e.endRegionOp(cur.X, cur.Y, width, 1)
	e.MarkDirty()
	return ok("Wrote %d characters", len([]rune(rest)))
}

func (e *Executor) cmdFill(args []string) Result {
	if len(args) < 3 {
		return fail("Usage: fill W H CHAR")
	}
	w, err1 := parseSize(args[0])
	h, err2 := parseSize(args[1])
	if err1 != nil || err2 != nil {
		return fail("Usage: fill W H CHAR")
	}
	glyph := []rune(args[2])[0]
	cur := e.Viewport.Cursor
	fg, bg := e.Machine.PenColor()
	e.beginRegionOp("Fill", cur.X, cur.Y, int64(w), int64(h))
	for y := int64(0); y < int64(h); y++ {
		for x := int64(0); x < int64(w); x++ {
			e.Canvas.Set(cur.X+x, cur.Y+y, canvas.Cell{Char: glyph, Fg: fg, Bg: bg})
		}
	}
	e.endRegionOp(cur.X, cur.Y, int64(w), int64(h))
	e.MarkDirty()
	return ok("Filled %dx%d with '%c'", w, h, glyph)
}

// applyPenColors recolors non-empty cells in a region with the active
// pen, skipping when the pen is default.
func (e *Executor) applyPenColors(x, y, w, h int64, borderOnly bool) {
	fg, bg := e.Machine.PenColor()
	if fg == canvas.ColorDefault && bg == canvas.ColorDefault {
		return
	}
	for cy := y; cy < y+h; cy++ {
		for cx := x; cx < x+w; cx++ {
			if borderOnly && cx != x && cx != x+w-1 && cy != y && cy != y+h-1 {
				continue
			}
			if !e.Canvas.IsEmptyAt(cx, cy) {
				e.Canvas.SetColor(cx, cy, fg, bg)
			}
		}
	}
}

func (e *Executor) cmdSearch(pattern string) Result {
	if pattern == "" {
		return fail("Usage: search TEXT")
	}
	matches := e.Canvas.SearchText(pattern, false)
	if len(matches) == 0 {
		return fail("Pattern not found: %s", pattern)
	}
	// Jump to the next match after the cursor, wrapping around.
	cur := e.Viewport.Cursor
	pick := -1
	for i, m := range matches {
		if m.Y > cur.Y || (m.Y == cur.Y && m.X > cur.X) {
			pick = i
			break
		}
	}
	if pick == -1 {
		pick = 0
	}
	m := matches[pick]
	e.Viewport.SetCursor(m.X, m.Y)
	e.Viewport.EnsureCursorVisible(0)
	return ok("Match %d/%d at (%d, %d)", pick+1, len(matches), m.X, m.Y)
}
