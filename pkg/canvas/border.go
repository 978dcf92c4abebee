package canvas

import (
	"fmt"
	"sort"
	"strings"
)

// BorderStyle is a set of box-drawing glyphs used by DrawRect and the
// interactive line-drawing mode.
type BorderStyle struct {
	Name        string
	Horizontal  rune
	Vertical    rune
	TopLeft     rune
	TopRight    rune
	BottomLeft  rune
	BottomRight rune
	TeeLeft     rune // junction opening left  (┤)
	TeeRight    rune // junction opening right (├)
	TeeUp       rune // junction opening up    (┴)
	TeeDown     rune // junction opening down  (┬)
	Cross       rune
}

var borderStyles = map[string]BorderStyle{
	"ascii": {
		Name: "ascii", Horizontal: '-', Vertical: '|',
		TopLeft: '+', TopRight: '+', BottomLeft: '+', BottomRight: '+',
		TeeLeft: '+', TeeRight: '+', TeeUp: '+', TeeDown: '+', Cross: '+',
	},
	"unicode": {
		Name: "unicode", Horizontal: '─', Vertical: '│',
		TopLeft: '┌', TopRight: '┐', BottomLeft: '└', BottomRight: '┘',
		TeeLeft: '┤', TeeRight: '├', TeeUp: '┴', TeeDown: '┬', Cross: '┼',
	},
	"rounded": {
		Name: "rounded", Horizontal: '─', Vertical: '│',
		TopLeft: '╭', TopRight: '╮', BottomLeft: '╰', BottomRight: '╯',
		TeeLeft: '┤', TeeRight: '├', TeeUp: '┴', TeeDown: '┬', Cross: '┼',
	},
	"double": {
		Name: "double", Horizontal: '═', Vertical: '║',
		TopLeft: '╔', TopRight: '╗', BottomLeft: '╚', BottomRight: '╝',
		TeeLeft: '╣', TeeRight: '╠', TeeUp: '╩', TeeDown: '╦', Cross: '╬',
	},
	"heavy": {
		Name: "heavy", Horizontal: '━', Vertical: '┃',
		TopLeft: '┏', TopRight: '┓', BottomLeft: '┗', BottomRight: '┛',
		TeeLeft: '┫', TeeRight: '┣', TeeUp: '┻', TeeDown: '┳', Cross: '╋',
	},
}

// GetBorderStyle looks up a style by name (case-insensitive).
func GetBorderStyle(name string) (BorderStyle, error) {
	if s, ok := borderStyles[strings.ToLower(name)]; ok {
		return s, nil
	}
	return BorderStyle{}, fmt.Errorf("unknown border style: %s", name)
}

// DefaultBorderStyle returns the ASCII style.
func DefaultBorderStyle() BorderStyle {
	return borderStyles["ascii"]
}

// BorderStyleNames lists the available style names, sorted.
func BorderStyleNames() []string {
	names := make([]string, 0, len(borderStyles))
	for name := range borderStyles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// glyphOpenings maps every border glyph to the directions it connects
// toward: bits up=1, down=2, left=4, right=8.
var glyphOpenings = func() map[rune]int {
	const (
		up    = 1
		down  = 2
		left  = 4
		right = 8
	)
	m := make(map[rune]int)
	add := func(r rune, bits int) {
		m[r] |= bits
	}
	for _, s := range borderStyles {
		add(s.Horizontal, left|right)
		add(s.Vertical, up|down)
		add(s.TopLeft, down|right)
		add(s.TopRight, down|left)
		add(s.BottomLeft, up|right)
		add(s.BottomRight, up|left)
		add(s.TeeLeft, up|down|left)
		add(s.TeeRight, up|down|right)
		add(s.TeeUp, up|left|right)
		add(s.TeeDown, down|left|right)
		add(s.Cross, up|down|left|right)
	}
	return m
}()

// isDrawingRune reports whether r belongs to any border style, i.e.
// whether an existing cell should be treated as part of a drawn line
// when resolving junctions.
func isDrawingRune(r rune) bool {
	_, ok := glyphOpenings[r]
	return ok
}

// opensToward reports whether glyph r connects in the given direction
// (bit constants as in glyphOpenings). The ASCII '+' opens every way.
func opensToward(r rune, bit int) bool {
	return glyphOpenings[r]&bit != 0
}

// ConnectGlyph picks the style glyph for a drawn cell from its
// connectivity: which of the four neighbors carry line content. Used
// by the interactive pen so corners and junctions form as segments
// meet.
func (s BorderStyle) ConnectGlyph(up, down, left, right bool) rune {
	switch {
	case up && down && left && right:
		return s.Cross
	case up && down && left:
		return s.TeeLeft
	case up && down && right:
		return s.TeeRight
	case left && right && up:
		return s.TeeUp
	case left && right && down:
		return s.TeeDown
	case down && right:
		return s.TopLeft
	case down && left:
		return s.TopRight
	case up && right:
		return s.BottomLeft
	case up && left:
		return s.BottomRight
	case up || down:
		return s.Vertical
	default:
		return s.Horizontal
	}
}

// DrawConnected writes a line cell at (x, y), choosing the glyph from
// the drawn neighbors plus the segment direction just traveled
// (dx, dy). Neighbor cells already holding line glyphs are re-resolved
// so a new segment meeting an old one produces a tee or cross.
func (c *Canvas) DrawConnected(x, y int64, dx, dy int64, style BorderStyle) {
	const (
		bitUp    = 1
		bitDown  = 2
		bitLeft  = 4
		bitRight = 8
	)
	place := func(px, py int64, forceH, forceV bool) {
		up := opensToward(c.GetChar(px, py-1), bitDown)
		down := opensToward(c.GetChar(px, py+1), bitUp)
		left := opensToward(c.GetChar(px-1, py), bitRight)
		right := opensToward(c.GetChar(px+1, py), bitLeft)
		if forceH {
			left, right = true, true
		}
		if forceV {
			up, down = true, true
		}
		c.SetChar(px, py, style.ConnectGlyph(up, down, left, right))
	}

	place(x, y, dy == 0 && dx != 0, dx == 0 && dy != 0)

	// Re-resolve touched neighbors that are already line cells.
	for _, n := range [][2]int64{{x, y - 1}, {x, y + 1}, {x - 1, y}, {x + 1, y}} {
		if isDrawingRune(c.GetChar(n[0], n[1])) {
			place(n[0], n[1], false, false)
		}
	}
}
