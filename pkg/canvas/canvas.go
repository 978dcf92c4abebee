// Package canvas provides the sparse, unbounded cell store that backs
// the editor. Coordinates are signed 64-bit and never clamped; only
// non-empty cells consume memory.
package canvas

import (
	"sort"
	"strings"
)

// Point is a canvas coordinate.
type Point struct {
	X int64
	Y int64
}

// BoundingBox is the axis-aligned extent of non-empty content.
type BoundingBox struct {
	MinX, MinY int64
	MaxX, MaxY int64
}

// Width returns the box width in cells.
func (b BoundingBox) Width() int64 { return b.MaxX - b.MinX + 1 }

// Height returns the box height in cells.
func (b BoundingBox) Height() int64 { return b.MaxY - b.MinY + 1 }

// Contains reports whether (x, y) lies inside the box.
func (b BoundingBox) Contains(x, y int64) bool {
	return b.MinX <= x && x <= b.MaxX && b.MinY <= y && y <= b.MaxY
}

// Canvas is a sparse mapping from coordinates to cells. The zero value
// is not usable; call New.
type Canvas struct {
	cells map[Point]Cell
}

// New creates an empty canvas.
func New() *Canvas {
	return &Canvas{cells: make(map[Point]Cell)}
}

// Get returns the cell at (x, y), or the empty cell if unset.
func (c *Canvas) Get(x, y int64) Cell {
	if cell, ok := c.cells[Point{x, y}]; ok {
		return cell
	}
	return EmptyCell()
}

// GetChar returns the rune at (x, y), space if unset.
func (c *Canvas) GetChar(x, y int64) rune {
	return c.Get(x, y).Char
}

// Set writes a cell at (x, y). Writing a space with default colors
// removes the key so storage stays proportional to visible content; a
// space with explicit colors is kept.
func (c *Canvas) Set(x, y int64, cell Cell) {
	if cell.Char == 0 {
		cell.Char = ' '
	}
	if cell.IsEmpty() {
		c.Clear(x, y)
		return
	}
	c.cells[Point{x, y}] = cell
}

// SetChar writes a rune with default colors.
func (c *Canvas) SetChar(x, y int64, ch rune) {
	c.Set(x, y, Cell{Char: ch, Fg: ColorDefault, Bg: ColorDefault})
}

// SetColor recolors the cell at (x, y) without changing its rune.
// Resetting both colors to default on a space cell removes it.
func (c *Canvas) SetColor(x, y int64, fg, bg Color) {
	cell := c.Get(x, y)
	cell.Fg = fg
	cell.Bg = bg
	c.Set(x, y, cell)
}

// Clear removes the cell at (x, y).
func (c *Canvas) Clear(x, y int64) {
	delete(c.cells, Point{x, y})
}

// ClearAll removes every cell.
func (c *Canvas) ClearAll() {
	c.cells = make(map[Point]Cell)
}

// ClearRegion removes all cells in the w×h rectangle at (x, y).
func (c *Canvas) ClearRegion(x, y, w, h int64) {
	for cy := y; cy < y+h; cy++ {
		for cx := x; cx < x+w; cx++ {
			c.Clear(cx, cy)
		}
	}
}

// IsEmptyAt reports whether (x, y) holds no cell.
func (c *Canvas) IsEmptyAt(x, y int64) bool {
	_, ok := c.cells[Point{x, y}]
	return !ok
}

// Count returns the number of stored (non-empty) cells.
func (c *Canvas) Count() int {
	return len(c.cells)
}

// Cells calls fn for every stored cell. Iteration order is undefined.
func (c *Canvas) Cells(fn func(x, y int64, cell Cell)) {
	for p, cell := range c.cells {
		fn(p.X, p.Y, cell)
	}
}

// SortedCells returns all stored cells ordered top-to-bottom,
// left-to-right, for deterministic serialization.
func (c *Canvas) SortedCells() []struct {
	X, Y int64
	Cell Cell
} {
	out := make([]struct {
		X, Y int64
		Cell Cell
	}, 0, len(c.cells))
	for p, cell := range c.cells {
		out = append(out, struct {
			X, Y int64
			Cell Cell
		}{p.X, p.Y, cell})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// BoundingBox returns the extent of stored content, or false when the
// canvas is empty.
func (c *Canvas) BoundingBox() (BoundingBox, bool) {
	if len(c.cells) == 0 {
		return BoundingBox{}, false
	}
	first := true
	var box BoundingBox
	for p := range c.cells {
		if first {
			box = BoundingBox{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
			first = false
			continue
		}
		if p.X < box.MinX {
			box.MinX = p.X
		}
		if p.X > box.MaxX {
			box.MaxX = p.X
		}
		if p.Y < box.MinY {
			box.MinY = p.Y
		}
		if p.Y > box.MaxY {
			box.MaxY = p.Y
		}
	}
	return box, true
}

// LinePoints returns the 8-way Bresenham cells from (x1, y1) to
// (x2, y2), endpoints included. A zero-length line is one point.
func LinePoints(x1, y1, x2, y2 int64) []Point {
	dx := abs64(x2 - x1)
	dy := abs64(y2 - y1)
	sx := int64(1)
	if x1 > x2 {
		sx = -1
	}
	sy := int64(1)
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy

	var points []Point
	x, y := x1, y1
	for {
		points = append(points, Point{x, y})
		if x == x2 && y == y2 {
			return points
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

// DrawLine draws an 8-way Bresenham line from (x1, y1) to (x2, y2)
// using ch. A zero-length line writes a single cell.
func (c *Canvas) DrawLine(x1, y1, x2, y2 int64, ch rune) {
	for _, p := range LinePoints(x1, y1, x2, y2) {
		c.SetChar(p.X, p.Y, ch)
	}
}

// DrawRect draws a w×h rectangle outline at (x, y) in the given border
// style. Degenerate sizes (w or h < 1) are ignored.
func (c *Canvas) DrawRect(x, y, w, h int64, style BorderStyle) {
	if w < 1 || h < 1 {
		return
	}
	if w == 1 && h == 1 {
		c.SetChar(x, y, style.Horizontal)
		return
	}
	c.SetChar(x, y, style.TopLeft)
	c.SetChar(x+w-1, y, style.TopRight)
	c.SetChar(x, y+h-1, style.BottomLeft)
	c.SetChar(x+w-1, y+h-1, style.BottomRight)
	for cx := x + 1; cx < x+w-1; cx++ {
		c.SetChar(cx, y, style.Horizontal)
		c.SetChar(cx, y+h-1, style.Horizontal)
	}
	for cy := y + 1; cy < y+h-1; cy++ {
		c.SetChar(x, cy, style.Vertical)
		c.SetChar(x+w-1, cy, style.Vertical)
	}
}

// FillRect fills a w×h rectangle at (x, y) with ch.
func (c *Canvas) FillRect(x, y, w, h int64, ch rune) {
	for cy := y; cy < y+h; cy++ {
		for cx := x; cx < x+w; cx++ {
			c.SetChar(cx, cy, ch)
		}
	}
}

// WriteText writes text left to right starting at (x, y), one cell per
// rune.
func (c *Canvas) WriteText(x, y int64, text string) {
	i := int64(0)
	for _, r := range text {
		c.SetChar(x+i, y, r)
		i++
	}
}

// Match is a text search hit: the leftmost cell of the run and its
// length in cells.
type Match struct {
	X, Y   int64
	Length int
}

// SearchText finds horizontal occurrences of pattern within the content
// bounding box, case-insensitively unless caseSensitive is set. Matches
// are ordered top-to-bottom, left-to-right.
func (c *Canvas) SearchText(pattern string, caseSensitive bool) []Match {
	if pattern == "" {
		return nil
	}
	box, ok := c.BoundingBox()
	if !ok {
		return nil
	}
	want := pattern
	if !caseSensitive {
		want = strings.ToLower(pattern)
	}
	patLen := len([]rune(pattern))

	var matches []Match
	for y := box.MinY; y <= box.MaxY; y++ {
		var row strings.Builder
		for x := box.MinX; x <= box.MaxX; x++ {
			row.WriteRune(c.GetChar(x, y))
		}
		line := row.String()
		if !caseSensitive {
			line = strings.ToLower(line)
		}
		runes := []rune(line)
		for i := 0; i+patLen <= len(runes); i++ {
			if string(runes[i:i+patLen]) == want {
				matches = append(matches, Match{X: box.MinX + int64(i), Y: y, Length: patLen})
			}
		}
	}
	return matches
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
