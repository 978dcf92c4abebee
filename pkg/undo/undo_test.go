package undo

import (
	"testing"

	"mygrid/pkg/canvas"
)

func TestManager_UndoRedoSingleCell(t *testing.T) {
	cv := canvas.New()
	m := NewManager(100)

	m.Begin("Type")
	m.RecordBefore(cv, 0, 0)
	cv.SetChar(0, 0, 'x')
	m.RecordAfter(cv, 0, 0)
	if !m.End() {
		t.Fatal("operation with changes should record")
	}

	desc, ok := m.Undo(cv)
	if !ok || desc != "Type" {
		t.Fatalf("Undo() = %q, %v", desc, ok)
	}
	if !cv.IsEmptyAt(0, 0) {
		t.Error("undo should remove the created cell")
	}

	desc, ok = m.Redo(cv)
	if !ok || desc != "Type" {
		t.Fatalf("Redo() = %q, %v", desc, ok)
	}
	if cv.GetChar(0, 0) != 'x' {
		t.Error("redo should restore the cell")
	}
}

func TestManager_UndoRestoresOverwrittenCell(t *testing.T) {
	cv := canvas.New()
	cv.Set(1, 1, canvas.Cell{Char: 'a', Fg: canvas.ColorRed, Bg: canvas.ColorDefault})
	m := NewManager(100)

	m.Begin("Edit")
	m.RecordBefore(cv, 1, 1)
	cv.SetChar(1, 1, 'b')
	m.RecordAfter(cv, 1, 1)
	m.End()

	m.Undo(cv)
	got := cv.Get(1, 1)
	if got.Char != 'a' || got.Fg != canvas.ColorRed {
		t.Errorf("undone cell = %+v, want original with color", got)
	}
}

func TestManager_RegionRoundTrip(t *testing.T) {
	cv := canvas.New()
	cv.WriteText(0, 0, "abc")
	m := NewManager(100)

	m.Begin("Delete Region")
	m.RecordRegionBefore(cv, 0, 0, 3, 1)
	cv.ClearRegion(0, 0, 3, 1)
	m.RecordRegionAfter(cv, 0, 0, 3, 1)
	m.End()

	if cv.Count() != 0 {
		t.Fatal("region should be cleared")
	}
	desc, _ := m.Undo(cv)
	if desc != "Delete Region (3 cells)" {
		t.Errorf("description = %q", desc)
	}
	if cv.GetChar(0, 0) != 'a' || cv.GetChar(2, 0) != 'c' {
		t.Error("undo should restore the region")
	}
	m.Redo(cv)
	if cv.Count() != 0 {
		t.Error("redo should clear again")
	}
}

func TestManager_EmptyOperationsDiscarded(t *testing.T) {
	m := NewManager(100)
	m.Begin("Nothing")
	if m.End() {
		t.Error("empty operation should not record")
	}
	if m.CanUndo() {
		t.Error("undo stack should stay empty")
	}

	// Recording without Begin is a no-op.
	cv := canvas.New()
	m.RecordBefore(cv, 0, 0)
	if m.End() {
		t.Error("End without Begin should not record")
	}
}

func TestManager_Cancel(t *testing.T) {
	cv := canvas.New()
	m := NewManager(100)
	m.Begin("Edit")
	m.RecordBefore(cv, 0, 0)
	m.Cancel()
	if m.End() {
		t.Error("cancelled operation should not record")
	}
}

func TestManager_NewOperationClearsRedo(t *testing.T) {
	cv := canvas.New()
	m := NewManager(100)

	record := func(x int64, ch rune) {
		m.Begin("Type")
		m.RecordBefore(cv, x, 0)
		cv.SetChar(x, 0, ch)
		m.RecordAfter(cv, x, 0)
		m.End()
	}
	record(0, 'a')
	record(1, 'b')

	m.Undo(cv)
	if !m.CanRedo() {
		t.Fatal("redo should be available after undo")
	}
	record(2, 'c') // new branch of history
	if m.CanRedo() {
		t.Error("new operation should clear the redo stack")
	}
}

func TestManager_HistoryBound(t *testing.T) {
	cv := canvas.New()
	m := NewManager(3)
	for i := int64(0); i < 10; i++ {
		m.Begin("Type")
		m.RecordBefore(cv, i, 0)
		cv.SetChar(i, 0, 'x')
		m.RecordAfter(cv, i, 0)
		m.End()
	}
	if m.UndoCount() != 3 {
		t.Errorf("UndoCount() = %d, want 3", m.UndoCount())
	}
}

func TestManager_UndoRedoEmpty(t *testing.T) {
	cv := canvas.New()
	m := NewManager(100)
	if _, ok := m.Undo(cv); ok {
		t.Error("undo with empty history should report false")
	}
	if _, ok := m.Redo(cv); ok {
		t.Error("redo with empty history should report false")
	}
}

func TestManager_History(t *testing.T) {
	cv := canvas.New()
	m := NewManager(100)
	for _, desc := range []string{"Line", "Fill", "Text"} {
		m.Begin(desc)
		m.RecordBefore(cv, 0, 0)
		cv.SetChar(0, 0, 'x')
		m.RecordAfter(cv, 0, 0)
		m.End()
	}

	hist := m.History(2)
	if len(hist) != 2 || hist[0] != "Text" || hist[1] != "Fill" {
		t.Errorf("History(2) = %q", hist)
	}
	hist = m.History(0)
	if len(hist) != 3 {
		t.Errorf("History(0) = %q, want all", hist)
	}

	m.Clear()
	if m.CanUndo() || m.CanRedo() {
		t.Error("Clear should drop everything")
	}
}
