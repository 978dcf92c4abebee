package viewport

import "testing"

func TestYDirection_String(t *testing.T) {
	tests := []struct {
		dir      YDirection
		expected string
	}{
		{YDown, "DOWN"},
		{YUp, "UP"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.dir.String(); got != tt.expected {
				t.Errorf("String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseYDirection(t *testing.T) {
	if d, err := ParseYDirection("UP"); err != nil || d != YUp {
		t.Errorf("ParseYDirection(UP) = %v, %v", d, err)
	}
	if d, err := ParseYDirection("down"); err != nil || d != YDown {
		t.Errorf("ParseYDirection(down) = %v, %v", d, err)
	}
	if _, err := ParseYDirection("sideways"); err == nil {
		t.Error("expected error for invalid direction")
	}
}

func TestViewport_Transform(t *testing.T) {
	v := New(80, 24)
	v.PanTo(10, 5)

	sx, sy, ok := v.CanvasToScreen(10, 5)
	if !ok || sx != 0 || sy != 0 {
		t.Errorf("top-left maps to (%d,%d,%v), want (0,0,true)", sx, sy, ok)
	}

	sx, sy, ok = v.CanvasToScreen(89, 28)
	if !ok || sx != 79 || sy != 23 {
		t.Errorf("bottom-right maps to (%d,%d,%v)", sx, sy, ok)
	}

	if _, _, ok := v.CanvasToScreen(90, 5); ok {
		t.Error("point past right edge should be invisible")
	}
	if _, _, ok := v.CanvasToScreen(9, 5); ok {
		t.Error("point past left edge should be invisible")
	}
}

func TestViewport_TransformRoundTrip(t *testing.T) {
	for _, dir := range []YDirection{YDown, YUp} {
		t.Run(dir.String(), func(t *testing.T) {
			v := New(40, 12)
			v.YDirection = dir
			v.PanTo(-17, 3)

			for sy := 0; sy < v.Height; sy++ {
				for sx := 0; sx < v.Width; sx++ {
					cx, cy := v.ScreenToCanvas(sx, sy)
					gx, gy, ok := v.CanvasToScreen(cx, cy)
					if !ok || gx != sx || gy != sy {
						t.Fatalf("round trip (%d,%d) -> (%d,%d) -> (%d,%d,%v)",
							sx, sy, cx, cy, gx, gy, ok)
					}
				}
			}
		})
	}
}

func TestViewport_YUp(t *testing.T) {
	v := New(10, 10)
	v.YDirection = YUp
	v.PanTo(0, -9) // show canvas y 0..9 with 9 at the top

	_, sy, ok := v.CanvasToScreen(0, 0)
	if !ok || sy != 9 {
		t.Errorf("canvas y=0 maps to screen y=%d (ok=%v), want 9", sy, ok)
	}
	_, sy, ok = v.CanvasToScreen(0, 9)
	if !ok || sy != 0 {
		t.Errorf("canvas y=9 maps to screen y=%d (ok=%v), want 0", sy, ok)
	}
}

func TestViewport_EnsureCursorVisible(t *testing.T) {
	t.Run("flush edges", func(t *testing.T) {
		v := New(20, 10)
		v.SetCursor(25, 3)
		v.EnsureCursorVisible(0)
		if !v.IsVisible(25, 3) {
			t.Error("cursor should be visible after scroll")
		}
		// Margin 0 means the cursor sits flush on the edge.
		sx, _, _ := v.CanvasToScreen(25, 3)
		if sx != v.Width-1 {
			t.Errorf("cursor screen x = %d, want %d", sx, v.Width-1)
		}
	})

	t.Run("no scroll when visible", func(t *testing.T) {
		v := New(20, 10)
		v.SetCursor(5, 5)
		x, y := v.X, v.Y
		v.EnsureCursorVisible(0)
		if v.X != x || v.Y != y {
			t.Error("viewport moved although cursor was visible")
		}
	})

	t.Run("negative coordinates", func(t *testing.T) {
		v := New(20, 10)
		v.SetCursor(-100, -50)
		v.EnsureCursorVisible(0)
		if !v.IsVisible(-100, -50) {
			t.Error("cursor should be visible")
		}
	})

	t.Run("y-up direction", func(t *testing.T) {
		v := New(20, 10)
		v.YDirection = YUp
		v.SetCursor(0, 42)
		v.EnsureCursorVisible(0)
		if !v.IsVisible(0, 42) {
			t.Error("cursor should be visible in y-up mode")
		}
	})
}

func TestViewport_PanAndCursor(t *testing.T) {
	v := New(30, 10)
	v.SetCursor(4, 4)
	v.Pan(7, -2)

	if v.X != 7 || v.Y != -2 {
		t.Errorf("viewport at (%d,%d), want (7,-2)", v.X, v.Y)
	}
	// Pan alone does not move the cursor.
	if v.Cursor.X != 4 || v.Cursor.Y != 4 {
		t.Errorf("cursor moved to (%d,%d)", v.Cursor.X, v.Cursor.Y)
	}
}

func TestViewport_CenterOn(t *testing.T) {
	v := New(21, 11)
	v.CenterOn(100, 50)
	sx, sy, ok := v.CanvasToScreen(100, 50)
	if !ok || sx != 10 || sy != 5 {
		t.Errorf("centered point at (%d,%d,%v), want (10,5,true)", sx, sy, ok)
	}
}

func TestViewport_Resize(t *testing.T) {
	v := New(80, 24)
	v.Resize(0, -5)
	if v.Width != 1 || v.Height != 1 {
		t.Errorf("Resize floor = %dx%d, want 1x1", v.Width, v.Height)
	}
}

func TestViewport_RelativeCursor(t *testing.T) {
	v := New(10, 10)
	v.Origin = Origin{X: 5, Y: 5}
	v.SetCursor(8, 2)
	dx, dy := v.RelativeCursor()
	if dx != 3 || dy != -3 {
		t.Errorf("RelativeCursor() = (%d,%d), want (3,-3)", dx, dy)
	}
}
