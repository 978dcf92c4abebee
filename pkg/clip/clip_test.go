package clip

import (
	"strings"
	"testing"

	"mygrid/pkg/canvas"
)

type fakeSystem struct {
	text string
	err  error
}

func (f *fakeSystem) ReadText() (string, error) { return f.text, f.err }
func (f *fakeSystem) WriteText(s string) error {
	f.text = s
	return f.err
}

func TestClipboard_YankPasteRoundTrip(t *testing.T) {
	cv := canvas.New()
	cv.WriteText(2, 3, "AB")
	cv.Set(3, 4, canvas.Cell{Char: 'C', Fg: canvas.ColorRed, Bg: canvas.ColorBlue})

	c := New()
	if err := c.Yank(cv, 2, 3, 2, 2); err != nil {
		t.Fatalf("Yank: %v", err)
	}

	cv.ClearAll()
	if err := c.Paste(cv, 2, 3); err != nil {
		t.Fatalf("Paste: %v", err)
	}

	if cv.GetChar(2, 3) != 'A' || cv.GetChar(3, 3) != 'B' {
		t.Error("text row not restored")
	}
	got := cv.Get(3, 4)
	if got.Char != 'C' || got.Fg != canvas.ColorRed || got.Bg != canvas.ColorBlue {
		t.Errorf("colored cell not restored: %+v", got)
	}
	// The cell at (2,4) was empty before the yank and must stay empty.
	if !cv.IsEmptyAt(2, 4) {
		t.Error("empty cell should remain empty after paste")
	}
}

func TestClipboard_PasteTransparency(t *testing.T) {
	cv := canvas.New()
	cv.WriteText(0, 0, "A B") // gap at x=1

	c := New()
	c.Yank(cv, 0, 0, 3, 1)

	// Underlay at the target position.
	cv.WriteText(0, 5, "xyz")
	c.Paste(cv, 0, 5)

	if cv.GetChar(0, 5) != 'A' || cv.GetChar(2, 5) != 'B' {
		t.Error("non-empty cells should overwrite")
	}
	if cv.GetChar(1, 5) != 'y' {
		t.Errorf("transparent cell erased underlying %q", cv.GetChar(1, 5))
	}
}

func TestClipboard_YankErrors(t *testing.T) {
	c := New()
	cv := canvas.New()

	if err := c.Yank(cv, 0, 0, 0, 5); err == nil {
		t.Error("expected error for zero width")
	}
	if err := c.Paste(cv, 0, 0); err == nil {
		t.Error("expected error pasting empty clipboard")
	}
}

func TestClipboard_SetLines(t *testing.T) {
	c := New()
	c.SetLines([]string{"ab", "c"})

	w, h := c.Size()
	if w != 2 || h != 2 {
		t.Errorf("Size() = %dx%d, want 2x2", w, h)
	}
	lines := c.Lines()
	if lines[0] != "ab" || lines[1] != "c" {
		t.Errorf("Lines() = %q", lines)
	}

	c.SetLines(nil)
	if !c.IsEmpty() {
		t.Error("SetLines(nil) should clear")
	}
}

func TestClipboard_SystemBridge(t *testing.T) {
	c := New()
	c.SetLines([]string{"one", "two"})

	sys := &fakeSystem{}
	if err := c.CopyToSystem(sys); err != nil {
		t.Fatalf("CopyToSystem: %v", err)
	}
	if sys.text != "one\ntwo" {
		t.Errorf("system text = %q", sys.text)
	}

	other := New()
	if err := other.PasteFromSystem(sys); err != nil {
		t.Fatalf("PasteFromSystem: %v", err)
	}
	if strings.Join(other.Lines(), "|") != "one|two" {
		t.Errorf("imported lines = %q", other.Lines())
	}

	empty := &fakeSystem{text: ""}
	if err := other.PasteFromSystem(empty); err == nil {
		t.Error("expected error for empty system clipboard")
	}
}
