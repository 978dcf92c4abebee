// Package undo tracks reversible canvas operations. Each operation
// stores before/after snapshots of the cells it touched; undoing
// restores the before state, redoing the after state.
package undo

import (
	"fmt"

	"mygrid/pkg/canvas"
)

// CellSnapshot is one cell's recorded state. Existed distinguishes a
// stored cell from the empty default so undo can remove cells an
// operation created.
type CellSnapshot struct {
	X, Y    int64
	Cell    canvas.Cell
	Existed bool
}

func snapshotCell(cv *canvas.Canvas, x, y int64) CellSnapshot {
	return CellSnapshot{
		X:       x,
		Y:       y,
		Cell:    cv.Get(x, y),
		Existed: !cv.IsEmptyAt(x, y),
	}
}

// Operation is a group of cell changes recorded as one undoable step.
type Operation struct {
	desc   string
	before []CellSnapshot
	after  []CellSnapshot
}

// Description returns the human-readable label, with a cell count for
// multi-cell operations.
func (op *Operation) Description() string {
	if len(op.before) == 1 {
		return op.desc
	}
	return fmt.Sprintf("%s (%d cells)", op.desc, len(op.before))
}

func applySnapshots(cv *canvas.Canvas, snaps []CellSnapshot) {
	for _, snap := range snaps {
		if snap.Existed {
			cv.Set(snap.X, snap.Y, snap.Cell)
		} else {
			cv.Clear(snap.X, snap.Y)
		}
	}
}

// DefaultMaxHistory is the operation cap when none is given.
const DefaultMaxHistory = 100

// Manager holds the undo and redo stacks. A new operation clears the
// redo stack; history is bounded by dropping the oldest entries.
type Manager struct {
	undoStack  []*Operation
	redoStack  []*Operation
	maxHistory int
	current    *Operation
}

// NewManager creates a manager capped at maxHistory operations.
func NewManager(maxHistory int) *Manager {
	if maxHistory < 1 {
		maxHistory = DefaultMaxHistory
	}
	return &Manager{maxHistory: maxHistory}
}

// CanUndo reports whether an operation can be undone.
func (m *Manager) CanUndo() bool { return len(m.undoStack) > 0 }

// CanRedo reports whether an operation can be redone.
func (m *Manager) CanRedo() bool { return len(m.redoStack) > 0 }

// UndoCount returns the number of undoable operations.
func (m *Manager) UndoCount() int { return len(m.undoStack) }

// RedoCount returns the number of redoable operations.
func (m *Manager) RedoCount() int { return len(m.redoStack) }

// Begin opens a new operation. Cell changes recorded until End are
// grouped as one undo step.
func (m *Manager) Begin(description string) {
	m.current = &Operation{desc: description}
}

// RecordBefore snapshots a cell's state prior to modification.
func (m *Manager) RecordBefore(cv *canvas.Canvas, x, y int64) {
	if m.current == nil {
		return
	}
	m.current.before = append(m.current.before, snapshotCell(cv, x, y))
}

// RecordAfter snapshots a cell's state after modification.
func (m *Manager) RecordAfter(cv *canvas.Canvas, x, y int64) {
	if m.current == nil {
		return
	}
	m.current.after = append(m.current.after, snapshotCell(cv, x, y))
}

// RecordRegionBefore snapshots a w×h region before modification.
func (m *Manager) RecordRegionBefore(cv *canvas.Canvas, x, y, w, h int64) {
	for cy := y; cy < y+h; cy++ {
		for cx := x; cx < x+w; cx++ {
			m.RecordBefore(cv, cx, cy)
		}
	}
}

// RecordRegionAfter snapshots a w×h region after modification.
func (m *Manager) RecordRegionAfter(cv *canvas.Canvas, x, y, w, h int64) {
	for cy := y; cy < y+h; cy++ {
		for cx := x; cx < x+w; cx++ {
			m.RecordAfter(cv, cx, cy)
		}
	}
}

// End closes the current operation and pushes it onto the undo stack.
// Empty operations are discarded; returns whether one was recorded.
func (m *Manager) End() bool {
	op := m.current
	m.current = nil
	if op == nil || (len(op.before) == 0 && len(op.after) == 0) {
		return false
	}

	m.undoStack = append(m.undoStack, op)
	m.redoStack = nil
	if len(m.undoStack) > m.maxHistory {
		m.undoStack = m.undoStack[len(m.undoStack)-m.maxHistory:]
	}
	return true
}

// Cancel discards the current operation without recording it.
func (m *Manager) Cancel() {
	m.current = nil
}

// Undo reverses the most recent operation. Returns its description
// and false when there is nothing to undo.
func (m *Manager) Undo(cv *canvas.Canvas) (string, bool) {
	if len(m.undoStack) == 0 {
		return "", false
	}
	op := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	applySnapshots(cv, op.before)
	m.redoStack = append(m.redoStack, op)
	return op.Description(), true
}

// Redo re-applies the most recently undone operation.
func (m *Manager) Redo(cv *canvas.Canvas) (string, bool) {
	if len(m.redoStack) == 0 {
		return "", false
	}
	op := m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]
	applySnapshots(cv, op.after)
	m.undoStack = append(m.undoStack, op)
	return op.Description(), true
}

// History returns descriptions of the most recent operations, newest
// first. Index 0 is the next to undo.
func (m *Manager) History(limit int) []string {
	if limit < 1 || limit > len(m.undoStack) {
		limit = len(m.undoStack)
	}
	out := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, m.undoStack[len(m.undoStack)-1-i].Description())
	}
	return out
}

// Clear drops all history (new canvas, project load).
func (m *Manager) Clear() {
	m.undoStack = nil
	m.redoStack = nil
	m.current = nil
}
