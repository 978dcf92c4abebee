// Package clip provides the rectangular cell clipboard: yanking
// regions of the canvas, pasting them back, and the bridge to the
// operating system clipboard.
package clip

import (
	"fmt"
	"strings"

	sysclip "github.com/atotto/clipboard"

	"mygrid/pkg/canvas"
)

// Clipboard holds a finite rectangular matrix of cells. The zero value
// is an empty clipboard.
type Clipboard struct {
	cells  [][]canvas.Cell
	width  int
	height int
}

// New creates an empty clipboard.
func New() *Clipboard {
	return &Clipboard{}
}

// IsEmpty reports whether the clipboard holds no content.
func (c *Clipboard) IsEmpty() bool {
	return c.height == 0
}

// Size returns the buffer dimensions in cells.
func (c *Clipboard) Size() (width, height int) {
	return c.width, c.height
}

// Clear discards the buffer.
func (c *Clipboard) Clear() {
	c.cells = nil
	c.width = 0
	c.height = 0
}

// Yank copies a w×h region of the canvas at (x, y), colors included.
func (c *Clipboard) Yank(cv *canvas.Canvas, x, y int64, w, h int) error {
	if w < 1 || h < 1 {
		return fmt.Errorf("yank size must be positive, got %dx%d", w, h)
	}
	cells := make([][]canvas.Cell, h)
	for ry := 0; ry < h; ry++ {
		row := make([]canvas.Cell, w)
		for rx := 0; rx < w; rx++ {
			row[rx] = cv.Get(x+int64(rx), y+int64(ry))
		}
		cells[ry] = row
	}
	c.cells = cells
	c.width = w
	c.height = h
	return nil
}

// Paste blits the buffer onto the canvas at (x, y). Empty cells are
// skipped so transparent positions do not erase underlying content.
func (c *Clipboard) Paste(cv *canvas.Canvas, x, y int64) error {
	if c.IsEmpty() {
		return fmt.Errorf("clipboard is empty")
	}
	for ry, row := range c.cells {
		for rx, cell := range row {
			if cell.IsEmpty() {
				continue
			}
			cv.Set(x+int64(rx), y+int64(ry), cell)
		}
	}
	return nil
}

// SetLines replaces the buffer with plain text lines, one row per
// line, padded to the longest line. Used by zone yanks and the system
// clipboard import.
func (c *Clipboard) SetLines(lines []string) {
	if len(lines) == 0 {
		c.Clear()
		return
	}
	width := 0
	rows := make([][]rune, len(lines))
	for i, line := range lines {
		rows[i] = []rune(line)
		if len(rows[i]) > width {
			width = len(rows[i])
		}
	}
	if width == 0 {
		width = 1
	}
	cells := make([][]canvas.Cell, len(rows))
	for ry, row := range rows {
		out := make([]canvas.Cell, width)
		for rx := range out {
			cell := canvas.EmptyCell()
			if rx < len(row) {
				cell.Char = row[rx]
			}
			out[rx] = cell
		}
		cells[ry] = out
	}
	c.cells = cells
	c.width = width
	c.height = len(rows)
}

// Lines renders the buffer as plain text, one string per row. Colors
// are dropped; empty cells become spaces.
func (c *Clipboard) Lines() []string {
	lines := make([]string, c.height)
	for ry, row := range c.cells {
		var b strings.Builder
		for _, cell := range row {
			ch := cell.Char
			if ch == 0 {
				ch = ' '
			}
			b.WriteRune(ch)
		}
		lines[ry] = strings.TrimRight(b.String(), " ")
	}
	return lines
}

// LineCount returns the number of rows in the buffer.
func (c *Clipboard) LineCount() int {
	return c.height
}

// Rows exposes the cell matrix for rendering (clipboard zones).
// Callers must not mutate the returned slices.
func (c *Clipboard) Rows() [][]canvas.Cell {
	return c.cells
}

// SystemClipboard is the process-boundary text contract. The default
// implementation shells out through the platform bridge; tests swap in
// a fake.
type SystemClipboard interface {
	ReadText() (string, error)
	WriteText(string) error
}

// OSClipboard bridges to the operating system clipboard.
type OSClipboard struct{}

// ReadText reads the system clipboard.
func (OSClipboard) ReadText() (string, error) {
	return sysclip.ReadAll()
}

// WriteText writes the system clipboard.
func (OSClipboard) WriteText(s string) error {
	return sysclip.WriteAll(s)
}

// CopyToSystem writes the buffer's text rendering to the system
// clipboard.
func (c *Clipboard) CopyToSystem(sys SystemClipboard) error {
	if c.IsEmpty() {
		return fmt.Errorf("clipboard is empty")
	}
	return sys.WriteText(strings.Join(c.Lines(), "\n"))
}

// PasteFromSystem replaces the buffer with the system clipboard's
// text.
func (c *Clipboard) PasteFromSystem(sys SystemClipboard) error {
	text, err := sys.ReadText()
	if err != nil {
		return fmt.Errorf("read system clipboard: %w", err)
	}
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return fmt.Errorf("system clipboard is empty")
	}
	c.SetLines(strings.Split(text, "\n"))
	return nil
}
