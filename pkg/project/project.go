// Package project handles persistence: the JSON project file holding
// canvas cells, viewport, grid settings, bookmarks, and zone
// descriptors, plus plain-text export and import.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mygrid/pkg/bookmarks"
	"mygrid/pkg/canvas"
	"mygrid/pkg/grid"
	"mygrid/pkg/viewport"
	"mygrid/pkg/zones"
)

// Version is the project file format version.
const Version = "1.0"

// Metadata describes the project file.
type Metadata struct {
	Name     string `json:"name"`
	Created  string `json:"created"`
	Modified string `json:"modified"`
}

// CellRecord is one serialized canvas cell. Default colors are
// omitted to keep files small and diffable.
type CellRecord struct {
	X    int64  `json:"x"`
	Y    int64  `json:"y"`
	Char string `json:"char"`
	Fg   *int   `json:"fg,omitempty"`
	Bg   *int   `json:"bg,omitempty"`
}

// PointRecord is a serialized coordinate pair.
type PointRecord struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
}

// ViewportRecord is the serialized viewport state.
type ViewportRecord struct {
	X          int64       `json:"x"`
	Y          int64       `json:"y"`
	Cursor     PointRecord `json:"cursor"`
	Origin     PointRecord `json:"origin"`
	YDirection string      `json:"y_direction"`
}

// GridRecord is the serialized grid settings.
type GridRecord struct {
	ShowOrigin    bool   `json:"show_origin"`
	MajorInterval int    `json:"major_interval"`
	MinorInterval int    `json:"minor_interval,omitempty"`
	LineMode      string `json:"line_mode"`
	Rulers        bool   `json:"rulers"`
	Labels        bool   `json:"labels"`
	LabelInterval int    `json:"label_interval"`
}

// ConfigRecord is the serialized zone configuration. The refresh
// interval is stored in seconds for readability.
type ConfigRecord struct {
	Type            string  `json:"zone_type"`
	Command         string  `json:"command,omitempty"`
	RefreshInterval float64 `json:"refresh_interval,omitempty"`
	WatchPath       string  `json:"watch_path,omitempty"`
	Shell           string  `json:"shell,omitempty"`
	Path            string  `json:"path,omitempty"`
	Port            int     `json:"port,omitempty"`
	Renderer        string  `json:"renderer,omitempty"`
	Scroll          bool    `json:"scroll"`
	MaxLines        int     `json:"max_lines,omitempty"`
}

// ZoneRecord is a zone descriptor; runtime buffers are not persisted.
type ZoneRecord struct {
	Name        string       `json:"name"`
	X           int64        `json:"x"`
	Y           int64        `json:"y"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	Config      ConfigRecord `json:"config"`
	Bookmark    string       `json:"bookmark,omitempty"`
	Description string       `json:"description,omitempty"`
}

// Document is the full project file.
type Document struct {
	Version  string `json:"version"`
	Metadata Metadata `json:"metadata"`
	Canvas   struct {
		Cells []CellRecord `json:"cells"`
	} `json:"canvas"`
	Viewport  ViewportRecord         `json:"viewport"`
	Grid      GridRecord             `json:"grid"`
	Bookmarks map[string]PointRecord `json:"bookmarks"`
	Zones     struct {
		Zones []ZoneRecord `json:"zones"`
	} `json:"zones"`
}

// ConfigToRecord converts a runtime zone config for serialization.
func ConfigToRecord(c zones.Config) ConfigRecord {
	return ConfigRecord{
		Type:            string(c.Type),
		Command:         c.Command,
		RefreshInterval: c.RefreshInterval.Seconds(),
		WatchPath:       c.WatchPath,
		Shell:           c.Shell,
		Path:            c.Path,
		Port:            c.Port,
		Renderer:        c.Renderer,
		Scroll:          c.AutoScroll,
		MaxLines:        c.MaxLines,
	}
}

// RecordToConfig converts a serialized zone config back.
func (r ConfigRecord) RecordToConfig() zones.Config {
	c := zones.Config{
		Type:            zones.Type(r.Type),
		Command:         r.Command,
		RefreshInterval: time.Duration(r.RefreshInterval * float64(time.Second)),
		WatchPath:       r.WatchPath,
		Shell:           r.Shell,
		Path:            r.Path,
		Port:            r.Port,
		Renderer:        r.Renderer,
		AutoScroll:      r.Scroll,
		MaxLines:        r.MaxLines,
	}
	c.Normalize()
	return c
}

// Capture builds a document from live editor state.
func Capture(name string, created string, cv *canvas.Canvas, vp *viewport.Viewport, gs grid.Settings, bm *bookmarks.Manager, zm *zones.Manager) *Document {
	now := time.Now().Format(time.RFC3339)
	if created == "" {
		created = now
	}
	doc := &Document{
		Version:  Version,
		Metadata: Metadata{Name: name, Created: created, Modified: now},
	}

	for _, c := range cv.SortedCells() {
		rec := CellRecord{X: c.X, Y: c.Y, Char: string(c.Cell.Char)}
		if c.Cell.Fg != canvas.ColorDefault {
			fg := int(c.Cell.Fg)
			rec.Fg = &fg
		}
		if c.Cell.Bg != canvas.ColorDefault {
			bg := int(c.Cell.Bg)
			rec.Bg = &bg
		}
		doc.Canvas.Cells = append(doc.Canvas.Cells, rec)
	}

	doc.Viewport = ViewportRecord{
		X:          vp.X,
		Y:          vp.Y,
		Cursor:     PointRecord{X: vp.Cursor.X, Y: vp.Cursor.Y},
		Origin:     PointRecord{X: vp.Origin.X, Y: vp.Origin.Y},
		YDirection: vp.YDirection.String(),
	}
	doc.Grid = GridRecord{
		ShowOrigin:    gs.ShowOrigin,
		MajorInterval: gs.MajorInterval,
		MinorInterval: gs.MinorInterval,
		LineMode:      gs.LineMode.String(),
		Rulers:        gs.ShowRulers,
		Labels:        gs.ShowLabels,
		LabelInterval: gs.LabelInterval,
	}

	doc.Bookmarks = make(map[string]PointRecord)
	for _, e := range bm.List() {
		doc.Bookmarks[string(e.Key)] = PointRecord{X: e.Bookmark.X, Y: e.Bookmark.Y}
	}

	if zm != nil {
		for _, z := range zm.List() {
			rec := ZoneRecord{
				Name:        z.Name,
				X:           z.X,
				Y:           z.Y,
				Width:       z.Width,
				Height:      z.Height,
				Config:      ConfigToRecord(z.Config),
				Description: z.Description,
			}
			if z.Bookmark != 0 {
				rec.Bookmark = string(z.Bookmark)
			}
			doc.Zones.Zones = append(doc.Zones.Zones, rec)
		}
	}
	return doc
}

// Save writes the document as indented JSON.
func Save(path string, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	data = append(data, '\n')
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create project directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write project: %w", err)
	}
	return nil
}

// Load parses a project file. Unknown fields are ignored for forward
// compatibility; a parse failure leaves the caller's state untouched.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}
	return &doc, nil
}

// Restore applies a document to the canvas, viewport, grid, and
// bookmarks. Zone descriptors are returned for the caller to
// instantiate (handlers need the live zone manager).
func Restore(doc *Document, cv *canvas.Canvas, vp *viewport.Viewport, gs *grid.Settings, bm *bookmarks.Manager) ([]ZoneRecord, error) {
	// Reject bad enumerations before touching any state.
	if doc.Viewport.YDirection != "" {
		if _, err := viewport.ParseYDirection(doc.Viewport.YDirection); err != nil {
			return nil, err
		}
	}
	if doc.Grid.LineMode != "" {
		if _, err := grid.ParseLineMode(doc.Grid.LineMode); err != nil {
			return nil, err
		}
	}

	cv.ClearAll()
	for _, rec := range doc.Canvas.Cells {
		if rec.Char == "" {
			continue
		}
		cell := canvas.EmptyCell()
		cell.Char = []rune(rec.Char)[0]
		if rec.Fg != nil {
			cell.Fg = canvas.Color(*rec.Fg)
		}
		if rec.Bg != nil {
			cell.Bg = canvas.Color(*rec.Bg)
		}
		cv.Set(rec.X, rec.Y, cell)
	}

	vp.X = doc.Viewport.X
	vp.Y = doc.Viewport.Y
	vp.Cursor = viewport.Cursor{X: doc.Viewport.Cursor.X, Y: doc.Viewport.Cursor.Y}
	vp.Origin = viewport.Origin{X: doc.Viewport.Origin.X, Y: doc.Viewport.Origin.Y}
	if doc.Viewport.YDirection != "" {
		dir, err := viewport.ParseYDirection(doc.Viewport.YDirection)
		if err != nil {
			return nil, err
		}
		vp.YDirection = dir
	}

	if doc.Grid.MajorInterval > 0 {
		gs.MajorInterval = doc.Grid.MajorInterval
	}
	gs.ShowOrigin = doc.Grid.ShowOrigin
	gs.MinorInterval = doc.Grid.MinorInterval
	if doc.Grid.LineMode != "" {
		mode, err := grid.ParseLineMode(doc.Grid.LineMode)
		if err != nil {
			return nil, err
		}
		gs.LineMode = mode
	}
	gs.ShowRulers = doc.Grid.Rulers
	gs.ShowLabels = doc.Grid.Labels
	if doc.Grid.LabelInterval > 0 {
		gs.LabelInterval = doc.Grid.LabelInterval
	}

	bm.Clear()
	for key, p := range doc.Bookmarks {
		if key == "" {
			continue
		}
		bm.Set([]rune(key)[0], p.X, p.Y, "")
	}

	return doc.Zones.Zones, nil
}
