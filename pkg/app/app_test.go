package app

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"mygrid/pkg/input"
	"mygrid/pkg/modes"
	"mygrid/pkg/server"
	"mygrid/pkg/zones"
)

func newTestApp(t *testing.T) *Application {
	t.Helper()
	opts := DefaultOptions()
	opts.Headless = true
	opts.LayoutsDir = filepath.Join(t.TempDir(), "layouts")
	opts.LogPath = ""
	a, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(a.zones.Clear)
	return a
}

func key(r rune) input.Event {
	return input.Event{Key: input.KeyRune, Rune: r}
}

func enqueue(t *testing.T, a *Application, line string) chan server.Response {
	t.Helper()
	reply := make(chan server.Response, 1)
	if !a.Queue().Put(server.Request{Line: line, Source: "tcp", Reply: reply}, 0) {
		t.Fatalf("queue full for %q", line)
	}
	return reply
}

func TestApplication_APIScenario(t *testing.T) {
	// Scenario 6: goto/rect/status through the API path.
	a := newTestApp(t)

	r1 := enqueue(t, a, "goto 5 5")
	r2 := enqueue(t, a, "rect 4 2")
	r3 := enqueue(t, a, "status")
	a.Step()

	for i, ch := range []chan server.Response{r1, r2} {
		resp := <-ch
		if resp.Status != "ok" {
			t.Errorf("response %d: %+v", i, resp)
		}
	}
	status := <-r3
	if status.Status != "ok" || status.Data == nil {
		t.Fatalf("status response: %+v", status)
	}
	cursor := status.Data["cursor"].(map[string]int64)
	if cursor["x"] != 5 || cursor["y"] != 5 {
		t.Errorf("cursor = %+v", cursor)
	}
	if status.Data["cells"].(int) < 8 {
		t.Errorf("cells = %v (rect perimeter expected)", status.Data["cells"])
	}
	if status.Data["mode"] != "NAV" {
		t.Errorf("mode = %v", status.Data["mode"])
	}
}

func TestApplication_APIBudget(t *testing.T) {
	a := newTestApp(t)
	a.opts.APIBudget = 3

	for i := 0; i < 5; i++ {
		if !a.Queue().Put(server.Request{Line: "goto 1 1", Source: "fifo"}, 0) {
			t.Fatal("queue full")
		}
	}
	a.Step()
	if got := a.Queue().Len(); got != 2 {
		t.Errorf("after one frame %d commands remain, want 2", got)
	}
	a.Step()
	if got := a.Queue().Len(); got != 0 {
		t.Errorf("after two frames %d commands remain, want 0", got)
	}
}

func TestApplication_EditTyping(t *testing.T) {
	a := newTestApp(t)

	a.Step(key('i'), key('o'), key('k'), input.Event{Key: input.KeyEscape})
	if a.canvas.GetChar(0, 0) != 'o' || a.canvas.GetChar(1, 0) != 'k' {
		t.Error("typed text missing")
	}
	if !a.executor.Dirty() {
		t.Error("typing should dirty the project")
	}
	if a.machine.Mode() != modes.ModeNav {
		t.Error("Esc should return to NAV")
	}
}

func TestApplication_QuitViaAPI(t *testing.T) {
	a := newTestApp(t)
	enqueue(t, a, "quit")
	a.Step()
	if a.Running() {
		t.Error("quit should stop the loop")
	}
}

func TestApplication_CommandModeFlow(t *testing.T) {
	a := newTestApp(t)
	events := []input.Event{key(':')}
	for _, r := range "text hey" {
		events = append(events, key(r))
	}
	events = append(events, input.Event{Key: input.KeyEnter})
	a.Step(events...)

	if a.canvas.GetChar(0, 0) != 'h' {
		t.Error("command did not run")
	}
	if a.machine.Mode() != modes.ModeNav {
		t.Error("mode should be NAV after the command")
	}
}

func TestApplication_ProjectRoundTripWithBookmarks(t *testing.T) {
	// Scenario 2: marks survive save/load.
	a := newTestApp(t)
	path := filepath.Join(t.TempDir(), "proj.json")

	a.Step(key('m')) // enters MARK_SET
	a.viewport.SetCursor(10, 20)
	a.Step(key('a'))
	a.viewport.SetCursor(100, 200)
	a.Step(key('m'), key('b'))

	res := a.executor.Execute("write " + path)
	if res.IsError() {
		t.Fatalf("write: %s", res.Message)
	}

	b := newTestApp(t)
	if err := b.LoadProject(path); err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	b.Step(key('\''), key('b'))
	if b.viewport.Cursor.X != 100 || b.viewport.Cursor.Y != 200 {
		t.Errorf("cursor = (%d,%d), want (100,200)", b.viewport.Cursor.X, b.viewport.Cursor.Y)
	}
}

func TestApplication_ZoneBookmarkInstalledAtCenter(t *testing.T) {
	a := newTestApp(t)
	path := filepath.Join(t.TempDir(), "proj.json")

	a.executor.Execute("zone create pane 10 20 20 10")
	z, _ := a.zones.Get("pane")
	z.Bookmark = 'p'
	if res := a.executor.Execute("write " + path); res.IsError() {
		t.Fatalf("write: %s", res.Message)
	}

	b := newTestApp(t)
	if err := b.LoadProject(path); err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	// Jumping to the zone mark lands on the zone center, not its
	// corner.
	b.Step(key('\''), key('p'))
	if b.viewport.Cursor.X != 20 || b.viewport.Cursor.Y != 25 {
		t.Errorf("cursor = (%d,%d), want zone center (20,25)",
			b.viewport.Cursor.X, b.viewport.Cursor.Y)
	}
}

func TestApplication_UndoKeyRoundTrip(t *testing.T) {
	a := newTestApp(t)
	a.Step(key('i'), key('q'), input.Event{Key: input.KeyEscape})
	if a.canvas.Count() != 1 {
		t.Fatal("typed cell missing")
	}

	a.Step(input.Event{Key: input.KeyRune, Rune: 'z', Ctrl: true})
	if a.canvas.Count() != 0 {
		t.Error("Ctrl+Z should undo the keystroke")
	}
	a.Step(input.Event{Key: input.KeyRune, Rune: 'r', Ctrl: true})
	if a.canvas.Count() != 1 {
		t.Error("Ctrl+R should redo it")
	}

	// The command surface drives the same history.
	res := a.executor.Execute("undo")
	if res.IsError() || a.canvas.Count() != 0 {
		t.Errorf("undo command result = %+v, cells = %d", res, a.canvas.Count())
	}
}

func TestApplication_ZoneEventsApplied(t *testing.T) {
	a := newTestApp(t)
	res := a.executor.Execute("zone create log 40 0 20 6")
	if res.IsError() {
		t.Fatal(res.Message)
	}

	a.zones.Queue().Post(zones.Event{Zone: "log", Kind: zones.EventAppend,
		Lines: []zones.Line{zones.PlainLine("hello")}})
	a.Step()

	z, _ := a.zones.Get("log")
	if z.Buffer.Len() != 1 || z.Buffer.PlainLines()[0] != "hello" {
		t.Errorf("zone buffer = %q", z.Buffer.PlainLines())
	}
}

func TestApplication_DeleteDiscardsPendingEvents(t *testing.T) {
	a := newTestApp(t)
	a.executor.Execute("zone create temp 0 0 10 4")
	a.zones.Queue().Post(zones.Event{Zone: "temp", Kind: zones.EventAppend,
		Lines: []zones.Line{zones.PlainLine("stale")}})
	a.executor.Execute("zone delete temp")
	a.Step()

	a.executor.Execute("zone create temp 0 0 10 4")
	z, _ := a.zones.Get("temp")
	if z.Buffer.Len() != 0 {
		t.Error("event from the deleted generation leaked into the new zone")
	}
}

func newSimApp(t *testing.T) (*Application, tcell.SimulationScreen) {
	t.Helper()
	a := newTestApp(t)
	sim := tcell.NewSimulationScreen("UTF-8")
	if err := sim.Init(); err != nil {
		t.Fatal(err)
	}
	sim.SetSize(80, 24)
	a.screen = sim
	a.viewport.Resize(80, 23)
	a.opts.Headless = false
	t.Cleanup(sim.Fini)
	return a, sim
}

func simRow(sim tcell.SimulationScreen, row, width int) string {
	var b strings.Builder
	for x := 0; x < width; x++ {
		ch, _, _, _ := sim.GetContent(x, row)
		b.WriteRune(ch)
	}
	return b.String()
}

func TestApplication_RenderFrame(t *testing.T) {
	a, sim := newSimApp(t)
	a.executor.Execute("text hello")
	a.executor.Execute("zone create side 20 2 12 4")
	a.render()

	if row := simRow(sim, 0, 40); !strings.Contains(row, "hello") {
		t.Errorf("canvas row = %q", row)
	}
	// Zone border with the type tag lands at its canvas position.
	if row := simRow(sim, 2, 40); !strings.Contains(row, "[S] side") {
		t.Errorf("zone title row = %q", row)
	}
	// Status line carries the mode and cell count.
	status := simRow(sim, 23, 80)
	if !strings.Contains(status, "NAV") || !strings.Contains(status, "cells:5") {
		t.Errorf("status line = %q", status)
	}
}

func TestApplication_RenderZoneContentAndOverlap(t *testing.T) {
	a, sim := newSimApp(t)
	a.executor.Execute("zone create under 0 0 20 6")
	a.executor.Execute("zone create over 5 2 20 6")
	zUnder, _ := a.zones.Get("under")
	zUnder.Buffer.Append(zones.PlainLine("UNDER-CONTENT"))
	zOver, _ := a.zones.Get("over")
	zOver.Buffer.Append(zones.PlainLine("OVER"))
	a.render()

	// The later-created zone's border wins the overlapping cells: the
	// cell at (5,2) belongs to over's corner.
	row := simRow(sim, 2, 40)
	if !strings.Contains(row, "[S] over") {
		t.Errorf("overlap row = %q", row)
	}
	// over's content row.
	if row := simRow(sim, 3, 40); !strings.Contains(row, "OVER") {
		t.Errorf("content row = %q", row)
	}
}

func TestApplication_RenderVisualSelection(t *testing.T) {
	a, sim := newSimApp(t)
	a.Step(key('v'), input.Event{Key: input.KeyRight}, input.Event{Key: input.KeyRight})
	a.render()

	// Selected cells render reversed.
	for x := 0; x <= 2; x++ {
		_, _, st, _ := sim.GetContent(x, 0)
		_, _, attrs := st.Decompose()
		if attrs&tcell.AttrReverse == 0 {
			t.Errorf("cell %d not highlighted", x)
		}
	}
	status := simRow(sim, 23, 80)
	if !strings.Contains(status, "VIS") {
		t.Errorf("status = %q", status)
	}
}

func TestApplication_RenderGridOrigin(t *testing.T) {
	a, sim := newSimApp(t)
	a.render()
	// Default grid shows the origin marker at (0,0).
	ch, _, _, _ := sim.GetContent(0, 0)
	if ch != '+' {
		t.Errorf("origin cell = %q, want +", ch)
	}
}
