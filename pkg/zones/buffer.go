package zones

import (
	"strconv"
	"strings"

	"mygrid/pkg/canvas"
)

// Segment is a run of text with one color pair.
type Segment struct {
	Text string
	Fg   canvas.Color
	Bg   canvas.Color
}

// Line is a rendered zone buffer line: a sequence of color runs.
type Line []Segment

// PlainLine wraps uncolored text.
func PlainLine(text string) Line {
	return Line{{Text: text, Fg: canvas.ColorDefault, Bg: canvas.ColorDefault}}
}

// String flattens the line to plain text.
func (l Line) String() string {
	var b strings.Builder
	for _, seg := range l {
		b.WriteString(seg.Text)
	}
	return b.String()
}

// ParseANSILine converts one line of program output into color runs.
// SGR sequences set colors; every other escape sequence is stripped.
func ParseANSILine(s string) Line {
	var line Line
	fg, bg := canvas.ColorDefault, canvas.ColorDefault
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			line = append(line, Segment{Text: cur.String(), Fg: fg, Bg: bg})
			cur.Reset()
		}
	}

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != 0x1b {
			if r >= ' ' || r == '\t' {
				cur.WriteRune(r)
			}
			continue
		}
		// Escape sequence.
		if i+1 >= len(runes) {
			break
		}
		if runes[i+1] != '[' {
			i++ // swallow the next byte
			continue
		}
		j := i + 2
		for j < len(runes) && !(runes[j] >= 0x40 && runes[j] <= 0x7e) {
			j++
		}
		if j >= len(runes) {
			break
		}
		if runes[j] == 'm' {
			flush()
			fg, bg = applySGRColors(string(runes[i+2:j]), fg, bg)
		}
		i = j
	}
	flush()
	if line == nil {
		line = Line{}
	}
	return line
}

func applySGRColors(params string, fg, bg canvas.Color) (canvas.Color, canvas.Color) {
	if params == "" {
		return canvas.ColorDefault, canvas.ColorDefault
	}
	parts := strings.Split(params, ";")
	for i := 0; i < len(parts); i++ {
		v, err := strconv.Atoi(parts[i])
		if err != nil {
			continue
		}
		switch {
		case v == 0:
			fg, bg = canvas.ColorDefault, canvas.ColorDefault
		case v >= 30 && v <= 37:
			fg = canvas.Color(v - 30)
		case v == 38 && i+2 < len(parts) && parts[i+1] == "5":
			if n, err := strconv.Atoi(parts[i+2]); err == nil {
				fg = canvas.Color(n)
			}
			i += 2
		case v == 39:
			fg = canvas.ColorDefault
		case v >= 40 && v <= 47:
			bg = canvas.Color(v - 40)
		case v == 48 && i+2 < len(parts) && parts[i+1] == "5":
			if n, err := strconv.Atoi(parts[i+2]); err == nil {
				bg = canvas.Color(n)
			}
			i += 2
		case v == 49:
			bg = canvas.ColorDefault
		case v >= 90 && v <= 97:
			fg = canvas.Color(v - 90 + 8)
		case v >= 100 && v <= 107:
			bg = canvas.Color(v - 100 + 8)
		}
	}
	return fg, bg
}

// Buffer is a bounded ordered sequence of lines with a scroll offset
// measured in lines from the bottom. Oldest lines are evicted first.
type Buffer struct {
	lines        []Line
	maxLines     int
	scrollOffset int
	autoScroll   bool
}

// NewBuffer creates a buffer capped at maxLines (minimum 1).
func NewBuffer(maxLines int, autoScroll bool) *Buffer {
	if maxLines < 1 {
		maxLines = 1
	}
	return &Buffer{maxLines: maxLines, autoScroll: autoScroll}
}

// Len returns the current line count.
func (b *Buffer) Len() int { return len(b.lines) }

// MaxLines returns the capacity.
func (b *Buffer) MaxLines() int { return b.maxLines }

// AutoScroll reports whether appends pin the view to the tail.
func (b *Buffer) AutoScroll() bool { return b.autoScroll }

// ScrollOffset returns the scroll position in lines from the bottom.
func (b *Buffer) ScrollOffset() int { return b.scrollOffset }

// Append adds a line, evicting the head when over capacity. With
// auto-scroll on, the view snaps back to the tail.
func (b *Buffer) Append(line Line) {
	b.lines = append(b.lines, line)
	if len(b.lines) > b.maxLines {
		b.lines = b.lines[len(b.lines)-b.maxLines:]
	}
	if b.autoScroll {
		b.scrollOffset = 0
	}
}

// SetLines replaces the whole content (WATCH refreshes do this).
func (b *Buffer) SetLines(lines []Line) {
	if len(lines) > b.maxLines {
		lines = lines[len(lines)-b.maxLines:]
	}
	b.lines = append([]Line(nil), lines...)
	if b.autoScroll {
		b.scrollOffset = 0
	}
	b.clampScroll()
}

// Clear empties the buffer.
func (b *Buffer) Clear() {
	b.lines = nil
	b.scrollOffset = 0
}

// Scroll moves the view by delta lines (positive = back in time).
func (b *Buffer) Scroll(delta int) {
	b.scrollOffset += delta
	b.clampScroll()
}

// ScrollToTail pins the view back to the live end.
func (b *Buffer) ScrollToTail() {
	b.scrollOffset = 0
}

func (b *Buffer) clampScroll() {
	if b.scrollOffset < 0 {
		b.scrollOffset = 0
	}
	if b.scrollOffset > len(b.lines) {
		b.scrollOffset = len(b.lines)
	}
}

// Visible returns the height lines ending scrollOffset lines above the
// tail, for rendering the zone's inner rectangle.
func (b *Buffer) Visible(height int) []Line {
	if height < 1 || len(b.lines) == 0 {
		return nil
	}
	end := len(b.lines) - b.scrollOffset
	if end < 0 {
		end = 0
	}
	start := end - height
	if start < 0 {
		start = 0
	}
	return b.lines[start:end]
}

// Lines returns all buffered lines, oldest first.
func (b *Buffer) Lines() []Line {
	return b.lines
}

// PlainLines returns the buffer as plain strings.
func (b *Buffer) PlainLines() []string {
	out := make([]string, len(b.lines))
	for i, l := range b.lines {
		out[i] = l.String()
	}
	return out
}
