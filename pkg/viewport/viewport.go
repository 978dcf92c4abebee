// Package viewport provides the window-to-canvas coordinate transform,
// the cursor, and the configurable origin marker.
package viewport

import "fmt"

// YDirection controls how canvas Y maps onto the screen.
type YDirection int

const (
	// YDown is screen-style: canvas Y increases downward.
	YDown YDirection = iota
	// YUp is mathematical: canvas Y increases upward.
	YUp
)

// String returns the serialized direction name.
func (d YDirection) String() string {
	if d == YUp {
		return "UP"
	}
	return "DOWN"
}

// ParseYDirection parses "UP"/"up" or "DOWN"/"down"; mixed-case
// spellings are rejected.
func ParseYDirection(s string) (YDirection, error) {
	switch s {
	case "UP", "up":
		return YUp, nil
	case "DOWN", "down":
		return YDown, nil
	}
	return YDown, fmt.Errorf("invalid y direction: %s", s)
}

// Cursor is a position in canvas coordinates.
type Cursor struct {
	X int64
	Y int64
}

// Origin is the reference point shown by the grid overlay and used for
// relative coordinate display.
type Origin struct {
	X int64
	Y int64
}

// Viewport is a rectangular window into the canvas. X/Y is the
// top-left corner in canvas space (after Y-direction mapping); width
// and height are in terminal cells.
type Viewport struct {
	X      int64
	Y      int64
	Width  int
	Height int

	Cursor     Cursor
	Origin     Origin
	YDirection YDirection
}

// New creates a viewport of the given size at the canvas origin.
func New(width, height int) *Viewport {
	v := &Viewport{}
	v.Resize(width, height)
	return v
}

// Resize sets the window size, keeping at least one cell each way.
func (v *Viewport) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	v.Width = width
	v.Height = height
}

// mapY applies the Y-direction transform. It is its own inverse.
func (v *Viewport) mapY(cy int64) int64 {
	if v.YDirection == YUp {
		return -cy
	}
	return cy
}

// CanvasToScreen converts a canvas coordinate to screen space. The
// second return is false when the point is outside the window.
func (v *Viewport) CanvasToScreen(cx, cy int64) (int, int, bool) {
	sx := cx - v.X
	sy := v.mapY(cy) - v.Y
	if sx < 0 || sx >= int64(v.Width) || sy < 0 || sy >= int64(v.Height) {
		return 0, 0, false
	}
	return int(sx), int(sy), true
}

// ScreenToCanvas converts a screen coordinate to canvas space.
func (v *Viewport) ScreenToCanvas(sx, sy int) (int64, int64) {
	cx := int64(sx) + v.X
	cy := v.mapY(int64(sy) + v.Y)
	return cx, cy
}

// IsVisible reports whether a canvas coordinate is inside the window.
func (v *Viewport) IsVisible(cx, cy int64) bool {
	_, _, ok := v.CanvasToScreen(cx, cy)
	return ok
}

// Pan moves the window by a delta in screen-oriented canvas units.
func (v *Viewport) Pan(dx, dy int64) {
	v.X += dx
	v.Y += dy
}

// PanTo places the window's top-left corner.
func (v *Viewport) PanTo(x, y int64) {
	v.X = x
	v.Y = y
}

// MoveCursor moves the cursor by a delta in canvas units.
func (v *Viewport) MoveCursor(dx, dy int64) {
	v.Cursor.X += dx
	v.Cursor.Y += dy
}

// SetCursor places the cursor at a canvas coordinate.
func (v *Viewport) SetCursor(x, y int64) {
	v.Cursor.X = x
	v.Cursor.Y = y
}

// CenterOn centers the window on a canvas coordinate.
func (v *Viewport) CenterOn(cx, cy int64) {
	v.X = cx - int64(v.Width)/2
	v.Y = v.mapY(cy) - int64(v.Height)/2
}

// CenterOnCursor centers the window on the cursor.
func (v *Viewport) CenterOnCursor() {
	v.CenterOn(v.Cursor.X, v.Cursor.Y)
}

// CenterOnOrigin centers the window on the origin marker.
func (v *Viewport) CenterOnOrigin() {
	v.CenterOn(v.Origin.X, v.Origin.Y)
}

// EnsureCursorVisible scrolls the window the minimum amount needed to
// keep the cursor at least margin cells from every edge.
func (v *Viewport) EnsureCursorVisible(margin int) {
	m := int64(margin)
	if 2*m >= int64(v.Width) {
		m = 0
	}
	cx := v.Cursor.X
	cy := v.mapY(v.Cursor.Y)

	if cx < v.X+m {
		v.X = cx - m
	} else if cx >= v.X+int64(v.Width)-m {
		v.X = cx - int64(v.Width) + m + 1
	}
	if cy < v.Y+m {
		v.Y = cy - m
	} else if cy >= v.Y+int64(v.Height)-m {
		v.Y = cy - int64(v.Height) + m + 1
	}
}

// CursorScreenPos returns the cursor's screen position, false when it
// is scrolled out of view.
func (v *Viewport) CursorScreenPos() (int, int, bool) {
	return v.CanvasToScreen(v.Cursor.X, v.Cursor.Y)
}

// RelativeCursor returns the cursor position relative to the origin
// marker, in the active Y-direction's sense.
func (v *Viewport) RelativeCursor() (int64, int64) {
	dx := v.Cursor.X - v.Origin.X
	dy := v.Cursor.Y - v.Origin.Y
	return dx, dy
}
