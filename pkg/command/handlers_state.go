package command

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"mygrid/pkg/canvas"
	"mygrid/pkg/grid"
	"mygrid/pkg/project"
	"mygrid/pkg/viewport"
)

func (e *Executor) cmdGrid(args []string) Result {
	if len(args) == 0 {
		return fail("Usage: grid (major|minor|N|lines|markers|dots|off|rulers on|off|labels on|off|interval MAJOR [MINOR])")
	}

	switch args[0] {
	case "off":
		e.Grid.LineMode = grid.ModeOff
		e.Grid.ShowOrigin = false
		return ok("Grid off")
	case "lines", "markers", "dots":
		mode, _ := grid.ParseLineMode(args[0])
		e.Grid.LineMode = mode
		e.Grid.ShowOrigin = true
		return ok("Grid mode: %s", args[0])
	case "major":
		e.Grid.MinorInterval = 0
		e.Grid.ShowOrigin = true
		return ok("Major grid only")
	case "minor":
		if e.Grid.MinorInterval == 0 {
			e.Grid.MinorInterval = e.Grid.MajorInterval / 2
			if e.Grid.MinorInterval < 1 {
				e.Grid.MinorInterval = 1
			}
		}
		return ok("Minor interval: %d", e.Grid.MinorInterval)
	case "rulers":
		if len(args) < 2 || (args[1] != "on" && args[1] != "off") {
			return fail("Usage: grid rulers on|off")
		}
		e.Grid.ShowRulers = args[1] == "on"
		return ok("Rulers %s", args[1])
	case "labels":
		if len(args) < 2 || (args[1] != "on" && args[1] != "off") {
			return fail("Usage: grid labels on|off")
		}
		e.Grid.ShowLabels = args[1] == "on"
		return ok("Labels %s", args[1])
	case "interval":
		if len(args) < 2 {
			return fail("Usage: grid interval MAJOR [MINOR]")
		}
		major, err := parseSize(args[1])
		if err != nil {
			return fail("Invalid major interval: %s", args[1])
		}
		e.Grid.MajorInterval = major
		if len(args) >= 3 {
			minor, err := parseSize(args[2])
			if err != nil {
				return fail("Invalid minor interval: %s", args[2])
			}
			e.Grid.MinorInterval = minor
		}
		return ok("Grid interval: %d", major)
	}

	// Bare number sets the major interval.
	if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
		e.Grid.MajorInterval = n
		return ok("Grid interval: %d", n)
	}
	return fail("Unknown grid option: %s", args[0])
}

func (e *Executor) cmdMark(args []string) Result {
	if len(args) == 0 {
		return fail("Usage: mark KEY [X Y]")
	}
	keyRunes := []rune(args[0])
	if len(keyRunes) != 1 {
		return fail("Mark key must be a single character a-z or 0-9")
	}
	key := keyRunes[0]

	x, y := e.Viewport.Cursor.X, e.Viewport.Cursor.Y
	if len(args) >= 3 {
		var err1, err2 error
		x, err1 = parseInt64(args[1])
		y, err2 = parseInt64(args[2])
		if err1 != nil || err2 != nil {
			return fail("Invalid coordinates")
		}
	}
	if err := e.Bookmarks.Set(key, x, y, ""); err != nil {
		return fail("%v", err)
	}
	return ok("Mark '%c' set at (%d, %d)", key, x, y)
}

func (e *Executor) cmdDelmark(args []string) Result {
	if len(args) == 0 {
		return fail("Usage: delmark KEY")
	}
	key := []rune(args[0])[0]
	if !e.Bookmarks.Delete(key) {
		return fail("Mark '%c' not found", key)
	}
	return ok("Mark '%c' deleted", key)
}

func (e *Executor) cmdMarks() Result {
	entries := e.Bookmarks.List()
	if len(entries) == 0 {
		return ok("No marks set")
	}
	parts := make([]string, len(entries))
	for i, en := range entries {
		parts[i] = fmt.Sprintf("%c:(%d,%d)", en.Key, en.Bookmark.X, en.Bookmark.Y)
	}
	return ok("Marks: %s", strings.Join(parts, " "))
}

func (e *Executor) cmdExport(args []string) Result {
	path := "export.txt"
	if len(args) > 0 {
		path = args[0]
	}
	if err := project.ExportTextFile(e.Canvas, path); err != nil {
		return fail("Export failed: %v", err)
	}
	return ok("Exported to %s", path)
}

func (e *Executor) cmdImport(args []string) Result {
	if len(args) == 0 {
		return fail("Usage: import FILE")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fail("Import failed: %v", err)
	}

	// The affected region is the text's bounding box at the cursor.
	text := strings.TrimRight(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	lines := strings.Split(text, "\n")
	width := int64(0)
	for _, line := range lines {
		if n := int64(len([]rune(line))); n > width {
			width = n
		}
	}

	cur := e.Viewport.Cursor
	e.beginRegionOp("Import", cur.X, cur.Y, width, int64(len(lines)))
	n := project.ImportText(e.Canvas, cur.X, cur.Y, string(data))
	e.endRegionOp(cur.X, cur.Y, width, int64(len(lines)))
	e.MarkDirty()
	return ok("Imported %d lines from %s", n, args[0])
}

func (e *Executor) cmdYdir(args []string) Result {
	if len(args) == 0 {
		return fail("Usage: ydir up|down")
	}
	dir, err := viewport.ParseYDirection(args[0])
	if err != nil {
		return fail("Usage: ydir up|down")
	}
	e.Viewport.YDirection = dir
	return ok("Y axis points %s", strings.ToLower(dir.String()))
}

func (e *Executor) cmdYank(args []string) Result {
	// yank W H [zone NAME | system]
	if len(args) >= 2 && args[0] == "zone" {
		return e.yankZone(args[1])
	}
	if len(args) < 2 {
		return fail("Usage: yank W H [zone NAME | system]")
	}
	w, err1 := parseSize(args[0])
	h, err2 := parseSize(args[1])
	if err1 != nil || err2 != nil {
		return fail("Usage: yank W H [zone NAME | system]")
	}

	rest := args[2:]
	if len(rest) >= 2 && rest[0] == "zone" {
		return e.yankZone(rest[1])
	}

	cur := e.Viewport.Cursor
	if err := e.Clipboard.Yank(e.Canvas, cur.X, cur.Y, w, h); err != nil {
		return fail("%v", err)
	}
	if len(rest) >= 1 && rest[0] == "system" {
		if e.System == nil {
			return fail("System clipboard is not available")
		}
		if err := e.Clipboard.CopyToSystem(e.System); err != nil {
			return fail("System clipboard: %v", err)
		}
		return ok("Yanked %dx%d to system clipboard", w, h)
	}
	return ok("Yanked %dx%d", w, h)
}

func (e *Executor) yankZone(name string) Result {
	z, found := e.Zones.Get(name)
	if !found {
		return fail("No zone named %q", name)
	}
	lines := z.Buffer.PlainLines()
	if z.Terminal != nil {
		lines = lines[:0]
		for _, row := range z.Terminal.Snapshot(0) {
			lines = append(lines, strings.TrimRight(termLine(row), " "))
		}
	}
	if len(lines) == 0 {
		return fail("Zone %q has no content", name)
	}
	e.Clipboard.SetLines(lines)
	return ok("Yanked %d lines from zone %s", len(lines), z.Name)
}

func (e *Executor) cmdPaste(args []string) Result {
	if len(args) >= 1 && args[0] == "system" {
		if e.System == nil {
			return fail("System clipboard is not available")
		}
		if err := e.Clipboard.PasteFromSystem(e.System); err != nil {
			return fail("%v", err)
		}
	}
	cur := e.Viewport.Cursor
	w, h := e.Clipboard.Size()
	e.beginRegionOp("Paste", cur.X, cur.Y, int64(w), int64(h))
	if err := e.Clipboard.Paste(e.Canvas, cur.X, cur.Y); err != nil {
		if e.Undo != nil {
			e.Undo.Cancel()
		}
		return fail("%v", err)
	}
	e.endRegionOp(cur.X, cur.Y, int64(w), int64(h))
	e.MarkDirty()
	return ok("Pasted %dx%d at (%d, %d)", w, h, cur.X, cur.Y)
}

func (e *Executor) cmdClipboard(args []string) Result {
	if len(args) == 0 {
		if e.Clipboard.IsEmpty() {
			return ok("Clipboard is empty")
		}
		w, h := e.Clipboard.Size()
		return ok("Clipboard: %dx%d, %d lines", w, h, e.Clipboard.LineCount())
	}
	switch args[0] {
	case "clear":
		e.Clipboard.Clear()
		return ok("Clipboard cleared")
	case "zone":
		cur := e.Viewport.Cursor
		w, h := e.Clipboard.Size()
		if w < 10 {
			w = 10
		}
		if h < 3 {
			h = 3
		}
		_, err := e.Zones.Create("clipboard", cur.X, cur.Y, w+2, h+2,
			canvasZoneConfig())
		if err != nil {
			return fail("%v", err)
		}
		return ok("Clipboard zone created at (%d, %d)", cur.X, cur.Y)
	}
	return fail("Usage: clipboard [clear | zone]")
}

func (e *Executor) cmdColor(args []string) Result {
	if len(args) == 0 {
		fg, bg := e.Machine.PenColor()
		return ok("Color: fg=%s bg=%s", fg, bg)
	}
	switch args[0] {
	case "off":
		e.Machine.SetPenColor(canvas.ColorDefault, canvas.ColorDefault)
		return ok("Color off")
	case "apply":
		if len(args) < 3 {
			return fail("Usage: color apply W H")
		}
		w, err1 := parseSize(args[1])
		h, err2 := parseSize(args[2])
		if err1 != nil || err2 != nil {
			return fail("Usage: color apply W H")
		}
		cur := e.Viewport.Cursor
		e.beginRegionOp("Color", cur.X, cur.Y, int64(w), int64(h))
		e.applyPenColors(cur.X, cur.Y, int64(w), int64(h), false)
		e.endRegionOp(cur.X, cur.Y, int64(w), int64(h))
		e.MarkDirty()
		return ok("Applied colors to %dx%d", w, h)
	}

	fg := canvas.ParseColor(args[0])
	bg := canvas.ColorDefault
	if len(args) >= 2 {
		bg = canvas.ParseColor(args[1])
	}
	e.Machine.SetPenColor(fg, bg)
	return ok("Color: fg=%s bg=%s", fg, bg)
}

func (e *Executor) cmdPalette() Result {
	names := []string{"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white"}
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%d=%s", i, n)
	}
	return ok("Palette: %s (8-15 bright, 16-255 extended, default)", strings.Join(parts, " "))
}

func (e *Executor) cmdBorder(args []string) Result {
	if len(args) == 0 {
		return ok("Border: %s (available: %s)",
			e.Machine.BorderStyle().Name, strings.Join(canvas.BorderStyleNames(), " "))
	}
	style, err := canvas.GetBorderStyle(args[0])
	if err != nil {
		return fail("%v", err)
	}
	e.Machine.SetBorderStyle(style)
	return ok("Border style: %s", style.Name)
}
