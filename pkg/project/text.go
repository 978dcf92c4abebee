package project

import (
	"fmt"
	"os"
	"strings"

	"mygrid/pkg/canvas"
)

// ExportText renders the canvas's non-empty bounding box as plain
// text, one line per row, padded with spaces inside the box. Returns
// the empty string for an empty canvas.
func ExportText(cv *canvas.Canvas) string {
	box, ok := cv.BoundingBox()
	if !ok {
		return ""
	}
	var b strings.Builder
	for y := box.MinY; y <= box.MaxY; y++ {
		var line strings.Builder
		for x := box.MinX; x <= box.MaxX; x++ {
			line.WriteRune(cv.GetChar(x, y))
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
		b.WriteByte('\n')
	}
	return b.String()
}

// ExportTextFile writes the export to a UTF-8 file with a trailing
// newline and no BOM.
func ExportTextFile(cv *canvas.Canvas, path string) error {
	if err := os.WriteFile(path, []byte(ExportText(cv)), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// ImportText pastes text onto the canvas at (x, y), one line per row
// advancing downward. Spaces are written like any other character,
// so a space clears the cell beneath it.
func ImportText(cv *canvas.Canvas, x, y int64, text string) int {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return 0
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		cv.WriteText(x, y+int64(i), line)
	}
	return len(lines)
}

// ImportTextFile pastes a file's content at (x, y) and returns the
// number of imported lines.
func ImportTextFile(cv *canvas.Canvas, x, y int64, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read import: %w", err)
	}
	return ImportText(cv, x, y, string(data)), nil
}
