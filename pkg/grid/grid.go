// Package grid computes the grid overlay: origin marker, axis lines,
// and major/minor interval markers drawn underneath canvas content.
package grid

import "fmt"

// LineMode selects how grid intervals are displayed.
type LineMode int

const (
	ModeOff LineMode = iota
	ModeMarkers
	ModeLines
	ModeDots
)

// String returns the serialized mode name.
func (m LineMode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeMarkers:
		return "markers"
	case ModeLines:
		return "lines"
	case ModeDots:
		return "dots"
	default:
		return "unknown"
	}
}

// ParseLineMode parses a mode name.
func ParseLineMode(s string) (LineMode, error) {
	switch s {
	case "off":
		return ModeOff, nil
	case "markers":
		return ModeMarkers, nil
	case "lines":
		return ModeLines, nil
	case "dots":
		return ModeDots, nil
	}
	return ModeOff, fmt.Errorf("invalid grid mode: %s", s)
}

// Settings configures the grid overlay.
type Settings struct {
	ShowOrigin    bool
	MajorInterval int
	MinorInterval int // 0 disables minor markers
	LineMode      LineMode
	ShowRulers    bool
	ShowLabels    bool
	LabelInterval int
}

// DefaultSettings matches the editor's startup configuration.
func DefaultSettings() Settings {
	return Settings{
		ShowOrigin:    true,
		MajorInterval: 10,
		MinorInterval: 0,
		LineMode:      ModeMarkers,
		LabelInterval: 50,
	}
}

// Validate checks interval sanity.
func (s Settings) Validate() error {
	if s.MajorInterval < 1 {
		return fmt.Errorf("major interval must be positive, got %d", s.MajorInterval)
	}
	if s.MinorInterval < 0 {
		return fmt.Errorf("minor interval cannot be negative, got %d", s.MinorInterval)
	}
	if s.LabelInterval < 1 {
		return fmt.Errorf("label interval must be positive, got %d", s.LabelInterval)
	}
	return nil
}

// Overlay glyphs.
const (
	originChar = '+'
	majorChar  = '+'
	minorChar  = '·'
	axisHChar  = '-'
	axisVChar  = '|'
	lineHChar  = '─'
	lineVChar  = '│'
	crossChar  = '┼'
	majorH     = '═'
	majorV     = '║'
	majorCross = '╬'
	dotChar    = '·'
)

func onInterval(v, origin int64, interval int) bool {
	if interval <= 0 {
		return false
	}
	d := v - origin
	step := int64(interval)
	return ((d%step)+step)%step == 0
}

// GlyphAt returns the overlay rune for a canvas coordinate relative to
// the origin marker at (ox, oy), or false when the position carries no
// overlay. Canvas content is drawn over the overlay, so this is only
// consulted for otherwise empty cells.
func (s Settings) GlyphAt(cx, cy, ox, oy int64) (rune, bool) {
	if s.ShowOrigin && cx == ox && cy == oy {
		return originChar, true
	}

	majorX := onInterval(cx, ox, s.MajorInterval)
	majorY := onInterval(cy, oy, s.MajorInterval)
	minorX := onInterval(cx, ox, s.MinorInterval)
	minorY := onInterval(cy, oy, s.MinorInterval)

	switch s.LineMode {
	case ModeOff:
		return 0, false

	case ModeMarkers:
		// Axis lines through the origin, markers at intersections.
		if s.ShowOrigin && cy == oy {
			return axisHChar, true
		}
		if s.ShowOrigin && cx == ox {
			return axisVChar, true
		}
		if majorX && majorY {
			return majorChar, true
		}
		if s.MinorInterval > 0 && minorX && minorY {
			return minorChar, true
		}
		return 0, false

	case ModeLines:
		switch {
		case majorX && majorY:
			return majorCross, true
		case majorX:
			return majorV, true
		case majorY:
			return majorH, true
		case s.MinorInterval > 0 && minorX && minorY:
			return crossChar, true
		case s.MinorInterval > 0 && minorX:
			return lineVChar, true
		case s.MinorInterval > 0 && minorY:
			return lineHChar, true
		}
		return 0, false

	case ModeDots:
		if majorX && majorY {
			return dotChar, true
		}
		if s.MinorInterval > 0 && minorX && minorY {
			return dotChar, true
		}
		return 0, false
	}
	return 0, false
}

// LabelAt reports whether a coordinate label belongs at (cx, cy)
// relative to the origin: label positions are intersections of the
// label interval.
func (s Settings) LabelAt(cx, cy, ox, oy int64) bool {
	if !s.ShowLabels {
		return false
	}
	return onInterval(cx, ox, s.LabelInterval) && onInterval(cy, oy, s.LabelInterval)
}

// RulerTick returns the tick rune for a ruler position: a major tick
// on major intervals, a minor tick on minor ones, 0 otherwise.
func (s Settings) RulerTick(v, origin int64) rune {
	if onInterval(v, origin, s.MajorInterval) {
		return '+'
	}
	if s.MinorInterval > 0 && onInterval(v, origin, s.MinorInterval) {
		return '.'
	}
	return 0
}
