package app

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"mygrid/pkg/canvas"
	"mygrid/pkg/modes"
	"mygrid/pkg/zones"
)

var (
	styleDefault = tcell.StyleDefault.
			Foreground(tcell.ColorReset).
			Background(tcell.ColorReset)
	styleGrid   = styleDefault.Foreground(tcell.ColorGray).Dim(true)
	styleBorder = styleDefault.Foreground(tcell.ColorTeal)
	styleError  = styleDefault.Foreground(tcell.ColorRed)
	styleSelect = styleDefault.Reverse(true)
	styleStatus = styleDefault.Reverse(true)
)

// convertColor maps the editor's color codes onto tcell colors.
func convertColor(c canvas.Color) tcell.Color {
	if c == canvas.ColorDefault {
		return tcell.ColorReset
	}
	if c >= 0 && c <= 255 {
		return tcell.PaletteColor(int(c))
	}
	return tcell.ColorReset
}

func cellStyle(cell canvas.Cell) tcell.Style {
	return styleDefault.
		Foreground(convertColor(cell.Fg)).
		Background(convertColor(cell.Bg))
}

// render composes one frame: grid and canvas, zones in creation
// order, selection highlight, cursor, status line.
func (a *Application) render() {
	s := a.screen
	s.Clear()

	a.renderBackground()
	a.renderZones()
	a.renderSelection()
	a.renderRulers()
	a.renderCursor()
	a.renderStatusLine()

	s.Show()
}

// renderBackground draws canvas cells within the viewport, with the
// grid overlay underneath (consulted only for empty cells).
func (a *Application) renderBackground() {
	vp := a.viewport
	origin := vp.Origin
	for sy := 0; sy < vp.Height; sy++ {
		for sx := 0; sx < vp.Width; sx++ {
			cx, cy := vp.ScreenToCanvas(sx, sy)
			cell := a.canvas.Get(cx, cy)
			if !cell.IsEmpty() {
				ch := cell.Char
				if runewidth.RuneWidth(ch) == 0 {
					ch = ' '
				}
				a.screen.SetContent(sx, sy, ch, nil, cellStyle(cell))
				continue
			}
			if g, ok := a.grid.GlyphAt(cx, cy, origin.X, origin.Y); ok {
				a.screen.SetContent(sx, sy, g, nil, styleGrid)
			}
			if a.grid.LabelAt(cx, cy, origin.X, origin.Y) {
				label := fmt.Sprintf("%d,%d", cx, cy)
				a.drawText(sx, sy, label, styleGrid)
			}
		}
	}
}

// renderRulers draws edge tick marks along the top row and left
// column when enabled.
func (a *Application) renderRulers() {
	if !a.grid.ShowRulers {
		return
	}
	vp := a.viewport
	for sx := 0; sx < vp.Width; sx++ {
		cx, _ := vp.ScreenToCanvas(sx, 0)
		if tick := a.grid.RulerTick(cx, vp.Origin.X); tick != 0 {
			a.screen.SetContent(sx, 0, tick, nil, styleGrid)
		}
	}
	for sy := 0; sy < vp.Height; sy++ {
		_, cy := vp.ScreenToCanvas(0, sy)
		if tick := a.grid.RulerTick(cy, vp.Origin.Y); tick != 0 {
			a.screen.SetContent(0, sy, tick, nil, styleGrid)
		}
	}
}

// renderZones draws zones in creation order, so later zones win
// overlapping cells.
func (a *Application) renderZones() {
	for _, z := range a.zones.RenderOrder() {
		a.renderZone(z)
	}
}

func (a *Application) renderZone(z *zones.Zone) {
	border := styleBorder
	if z.State == zones.StateError {
		border = styleError
	}

	// Border rectangle with the type tag and name in the top edge.
	style := canvas.DefaultBorderStyle()
	for dy := int64(0); dy < int64(z.Height); dy++ {
		for dx := int64(0); dx < int64(z.Width); dx++ {
			onEdge := dy == 0 || dy == int64(z.Height)-1 || dx == 0 || dx == int64(z.Width)-1
			if !onEdge {
				continue
			}
			var ch rune
			switch {
			case (dx == 0 || dx == int64(z.Width)-1) && (dy == 0 || dy == int64(z.Height)-1):
				ch = style.TopLeft
			case dy == 0 || dy == int64(z.Height)-1:
				ch = style.Horizontal
			default:
				ch = style.Vertical
			}
			a.setCanvasContent(z.X+dx, z.Y+dy, ch, border)
		}
	}
	title := fmt.Sprintf("[%c] %s", z.Config.Type.TypeTag(), z.Name)
	if z.State == zones.StatePaused {
		title += " (paused)"
	}
	maxTitle := z.Width - 4
	if maxTitle > 0 {
		title = runewidth.Truncate(title, maxTitle, "…")
		a.drawCanvasText(z.X+2, z.Y, title, border)
	}

	iw, ih := z.InnerSize()
	switch {
	case z.Terminal != nil:
		a.renderTerminalZone(z, iw, ih)
	case z.Config.Type == zones.TypeClipboard:
		a.renderClipboardZone(z, iw, ih)
	default:
		a.renderBufferZone(z, iw, ih)
		if off := z.Buffer.ScrollOffset(); off > 0 {
			ind := fmt.Sprintf("↑%d", off)
			a.drawCanvasText(z.X+int64(z.Width)-int64(len([]rune(ind)))-1, z.Y+int64(z.Height)-1, ind, border)
		}
	}
}

func (a *Application) renderBufferZone(z *zones.Zone, iw, ih int) {
	lines := z.Buffer.Visible(ih)
	for row, line := range lines {
		x := z.X + 1
		for _, seg := range line {
			segStyle := styleDefault.
				Foreground(convertColor(seg.Fg)).
				Background(convertColor(seg.Bg))
			for _, r := range seg.Text {
				if x >= z.X+1+int64(iw) {
					break
				}
				a.setCanvasContent(x, z.Y+1+int64(row), r, segStyle)
				x++
			}
		}
	}
}

func (a *Application) renderClipboardZone(z *zones.Zone, iw, ih int) {
	view := a.zones.Clipboard()
	if view == nil || view.IsEmpty() {
		a.drawCanvasText(z.X+1, z.Y+1, "(clipboard empty)", styleGrid)
		return
	}
	lines := view.Lines()
	if len(lines) > ih {
		lines = lines[:ih]
	}
	for row, line := range lines {
		if len(line) > iw {
			line = line[:iw]
		}
		a.drawCanvasText(z.X+1, z.Y+1+int64(row), line, styleDefault)
	}
}

func (a *Application) renderTerminalZone(z *zones.Zone, iw, ih int) {
	rows := z.Terminal.Snapshot(z.PTYScroll)
	for row, cells := range rows {
		if row >= ih {
			break
		}
		for col, cell := range cells {
			if col >= iw {
				break
			}
			st := styleDefault.
				Foreground(convertColor(canvas.Color(cell.Attr.Fg))).
				Background(convertColor(canvas.Color(cell.Attr.Bg)))
			if cell.Attr.Bold {
				st = st.Bold(true)
			}
			if cell.Attr.Underline {
				st = st.Underline(true)
			}
			if cell.Attr.Reverse {
				st = st.Reverse(true)
			}
			ch := cell.Char
			if ch == 0 {
				ch = ' '
			}
			a.setCanvasContent(z.X+1+int64(col), z.Y+1+int64(row), ch, st)
		}
	}
}

// renderSelection highlights the normalized VISUAL rectangle.
func (a *Application) renderSelection() {
	if a.machine.Mode() != modes.ModeVisual {
		return
	}
	sel, ok := a.machine.Selection()
	if !ok {
		return
	}
	x, y, w, h := sel.Normalized(a.viewport.Cursor)
	for cy := y; cy < y+h; cy++ {
		for cx := x; cx < x+w; cx++ {
			if sx, sy, visible := a.viewport.CanvasToScreen(cx, cy); visible {
				ch := a.canvas.GetChar(cx, cy)
				a.screen.SetContent(sx, sy, ch, nil, styleSelect)
			}
		}
	}
}

func (a *Application) renderCursor() {
	if a.machine.Mode() == modes.ModePTYFocused {
		if z, ok := a.zones.Get(a.machine.FocusedZone()); ok && z.Terminal != nil && z.PTYScroll == 0 {
			cx, cy := z.Terminal.CursorPos()
			if sx, sy, visible := a.viewport.CanvasToScreen(z.X+1+int64(cx), z.Y+1+int64(cy)); visible {
				a.screen.ShowCursor(sx, sy)
				return
			}
		}
		a.screen.HideCursor()
		return
	}
	if sx, sy, ok := a.viewport.CursorScreenPos(); ok {
		a.screen.ShowCursor(sx, sy)
	} else {
		a.screen.HideCursor()
	}
}

// renderStatusLine draws the bottom bar: mode tag, cursor relative to
// the origin, cell count, file/dirty, and the message or command
// line.
func (a *Application) renderStatusLine() {
	vp := a.viewport
	row := vp.Height
	width := vp.Width

	var left strings.Builder
	fmt.Fprintf(&left, " %s ", a.machine.Mode())

	switch a.machine.Mode() {
	case modes.ModeDraw:
		pen := "^"
		if a.machine.PenDown() {
			pen = "v"
		}
		fmt.Fprintf(&left, "pen:%s ", pen)
	case modes.ModePTYFocused:
		if z, ok := a.zones.Get(a.machine.FocusedZone()); ok && z.Terminal != nil {
			if z.PTYScroll == 0 {
				left.WriteString("auto ")
			} else {
				fmt.Fprintf(&left, "%d/%d ", z.PTYScroll, z.Terminal.TotalLines())
			}
		}
	}

	dx, dy := vp.RelativeCursor()
	fmt.Fprintf(&left, "| (%d,%d) | cells:%d ", dx, dy, a.canvas.Count())
	file := a.executor.FilePath
	if file == "" {
		file = "[No Name]"
	}
	if a.executor.Dirty() {
		file = "*" + file
	}
	fmt.Fprintf(&left, "| %s ", file)

	right := a.message
	if a.machine.Mode() == modes.ModeCommand {
		right = ":" + a.machine.CommandBuf.Text()
	}

	line := left.String()
	if right != "" {
		pad := width - runewidth.StringWidth(line) - runewidth.StringWidth(right) - 1
		if pad < 1 {
			right = runewidth.Truncate(right, width-runewidth.StringWidth(line)-2, "…")
			pad = 1
		}
		if pad > 0 {
			line += strings.Repeat(" ", pad) + right
		}
	}
	line = runewidth.Truncate(line, width, "")
	line += strings.Repeat(" ", max(0, width-runewidth.StringWidth(line)))

	col := 0
	for _, r := range line {
		a.screen.SetContent(col, row, r, nil, styleStatus)
		col += runewidth.RuneWidth(r)
	}

	// The command-line cursor sits in the status bar.
	if a.machine.Mode() == modes.ModeCommand {
		promptStart := width - runewidth.StringWidth(":"+a.machine.CommandBuf.Text()) - 1
		if promptStart >= 0 {
			a.screen.ShowCursor(promptStart+1+a.machine.CommandBuf.Pos(), row)
		}
	}
}

// setCanvasContent draws one rune at a canvas coordinate if visible.
func (a *Application) setCanvasContent(cx, cy int64, ch rune, style tcell.Style) {
	if sx, sy, ok := a.viewport.CanvasToScreen(cx, cy); ok {
		a.screen.SetContent(sx, sy, ch, nil, style)
	}
}

// drawCanvasText writes a string starting at a canvas coordinate.
func (a *Application) drawCanvasText(cx, cy int64, text string, style tcell.Style) {
	i := int64(0)
	for _, r := range text {
		a.setCanvasContent(cx+i, cy, r, style)
		i++
	}
}

// drawText writes a string at a screen position.
func (a *Application) drawText(sx, sy int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		if sx+i >= a.viewport.Width {
			break
		}
		a.screen.SetContent(sx+i, sy, r, nil, style)
	}
}
