package zones

import (
	"fmt"
	"net"
	"path/filepath"
	"testing"
	"time"
)

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{}) {}
func (nopLogger) Warnf(string, ...interface{}) {}

func newTestManager() *Manager {
	return NewManager(256, nil, nopLogger{})
}

// drainUntil applies queued events until cond holds or the deadline
// passes.
func drainUntil(t *testing.T, m *Manager, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		m.Drain(64)
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"static", Config{Type: TypeStatic}, false},
		{"pipe ok", Config{Type: TypePipe, Command: "ls"}, false},
		{"pipe missing command", Config{Type: TypePipe}, true},
		{"watch interval", Config{Type: TypeWatch, Command: "date", RefreshInterval: time.Second}, false},
		{"watch path", Config{Type: TypeWatch, Command: "cat {file}", WatchPath: "/tmp"}, false},
		{"watch missing trigger", Config{Type: TypeWatch, Command: "date"}, true},
		{"fifo missing path", Config{Type: TypeFIFO}, true},
		{"socket bad port", Config{Type: TypeSocket, Port: 0}, true},
		{"socket ok", Config{Type: TypeSocket, Port: 9999}, false},
		{"pager missing file", Config{Type: TypePager}, true},
		{"unknown", Config{Type: Type("weird")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Normalize(t *testing.T) {
	c := Config{}
	c.Normalize()
	if c.Type != TypeStatic || c.MaxLines != DefaultMaxLines {
		t.Errorf("Normalize() = %+v", c)
	}

	p := Config{Type: TypePTY}
	p.Normalize()
	if p.Shell != DefaultShell {
		t.Errorf("pty shell default = %q", p.Shell)
	}
}

func TestType_TypeTag(t *testing.T) {
	tags := map[Type]rune{
		TypeStatic: 'S', TypePipe: 'P', TypeWatch: 'W', TypePTY: 'T',
		TypeFIFO: 'F', TypeSocket: 'N', TypePager: 'R', TypeClipboard: 'C',
	}
	for typ, want := range tags {
		if got := typ.TypeTag(); got != want {
			t.Errorf("TypeTag(%s) = %q, want %q", typ, got, want)
		}
	}
}

func TestManager_CreateAndDelete(t *testing.T) {
	m := newTestManager()

	z, err := m.Create("Inbox", 5, 5, 20, 6, Config{Type: TypeStatic})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if z.State != StateRunning {
		t.Errorf("state = %v", z.State)
	}

	// Case-insensitive uniqueness and lookup.
	if _, err := m.Create("INBOX", 0, 0, 10, 4, Config{Type: TypeStatic}); err == nil {
		t.Error("duplicate name should fail")
	}
	if got, ok := m.Get("inbox"); !ok || got != z {
		t.Error("case-insensitive lookup failed")
	}

	if err := m.Delete("inBOX"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if m.Count() != 0 {
		t.Errorf("Count() = %d after delete", m.Count())
	}
	if err := m.Delete("inbox"); err == nil {
		t.Error("second delete should fail")
	}
}

func TestManager_GeometryValidation(t *testing.T) {
	m := newTestManager()
	if _, err := m.Create("tiny", 0, 0, 2, 2, Config{Type: TypeStatic}); err == nil {
		t.Error("sub-minimum size should fail")
	}
	if _, err := m.Create("", 0, 0, 10, 10, Config{Type: TypeStatic}); err == nil {
		t.Error("empty name should fail")
	}
}

func TestManager_FindAtAndOverlap(t *testing.T) {
	m := newTestManager()
	m.Create("under", 0, 0, 10, 10, Config{Type: TypeStatic})
	m.Create("over", 5, 5, 10, 10, Config{Type: TypeStatic})

	z, ok := m.FindAt(7, 7)
	if !ok || z.Name != "over" {
		t.Errorf("FindAt(7,7) = %v; later-created zone should win", z)
	}
	z, ok = m.FindAt(1, 1)
	if !ok || z.Name != "under" {
		t.Errorf("FindAt(1,1) = %v", z)
	}
	if _, ok := m.FindAt(100, 100); ok {
		t.Error("FindAt outside every zone should miss")
	}

	// Render order is creation order.
	order := m.RenderOrder()
	if len(order) != 2 || order[0].Name != "under" || order[1].Name != "over" {
		t.Error("render order should be creation order")
	}
}

func TestManager_ApplyDiscardsDeleted(t *testing.T) {
	m := newTestManager()
	m.Create("gone", 0, 0, 10, 5, Config{Type: TypeStatic})

	m.Queue().Post(Event{Zone: "gone", Kind: EventAppend, Lines: []Line{PlainLine("x")}})
	m.Delete("gone")
	m.Drain(16)

	// Re-creating the zone must not see the stale event.
	z, _ := m.Create("gone", 0, 0, 10, 5, Config{Type: TypeStatic})
	if z.Buffer.Len() != 0 {
		t.Errorf("stale event mutated re-created zone: %q", z.Buffer.PlainLines())
	}
}

func TestManager_ApplyEvents(t *testing.T) {
	m := newTestManager()
	z, _ := m.Create("log", 0, 0, 20, 6, Config{Type: TypeStatic, AutoScroll: true})

	m.Apply(Event{Zone: "log", Kind: EventAppend, Lines: []Line{PlainLine("a"), PlainLine("b")}})
	if z.Buffer.Len() != 2 {
		t.Errorf("buffer len = %d", z.Buffer.Len())
	}

	m.Apply(Event{Zone: "log", Kind: EventReplace, Lines: []Line{PlainLine("new")}})
	if z.Buffer.Len() != 1 || z.Buffer.PlainLines()[0] != "new" {
		t.Errorf("replace failed: %q", z.Buffer.PlainLines())
	}

	m.Apply(Event{Zone: "log", Kind: EventError, Err: "boom"})
	if z.State != StateError || z.Err != "boom" {
		t.Errorf("error event: state=%v err=%q", z.State, z.Err)
	}

	m.Apply(Event{Zone: "log", Kind: EventState, State: StateRunning})
	if z.State != StateRunning || z.Err != "" {
		t.Errorf("recovery event: state=%v err=%q", z.State, z.Err)
	}
}

func TestManager_PipeZone(t *testing.T) {
	m := newTestManager()
	z, err := m.Create("date", 0, 0, 30, 5, Config{Type: TypePipe, Command: "printf 'one\\ntwo\\n'", AutoScroll: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer m.Clear()

	drainUntil(t, m, func() bool { return z.Buffer.Len() == 2 })
	lines := z.Buffer.PlainLines()
	if lines[0] != "one" || lines[1] != "two" {
		t.Errorf("pipe output = %q", lines)
	}
}

func TestManager_SocketZone(t *testing.T) {
	// Pick a free port first.
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	m := newTestManager()
	z, err := m.Create("net", 0, 0, 30, 10, Config{Type: TypeSocket, Port: port, AutoScroll: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer m.Clear()

	conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	fmt.Fprintf(conn, "A\nB\nC\n")
	conn.Close()

	drainUntil(t, m, func() bool { return z.Buffer.Len() == 3 })
	lines := z.Buffer.PlainLines()
	if lines[0] != "A" || lines[1] != "B" || lines[2] != "C" {
		t.Errorf("socket lines = %q", lines)
	}
	if z.Buffer.ScrollOffset() != 0 {
		t.Errorf("scroll offset = %d, want 0", z.Buffer.ScrollOffset())
	}

	// Port collision on a second zone puts it in the error state.
	if _, err := m.Create("net2", 0, 0, 30, 10, Config{Type: TypeSocket, Port: port}); err == nil {
		// Creation succeeds but the zone lands in the error state.
		z2, _ := m.Get("net2")
		if z2.State != StateError {
			t.Error("second listener on the same port should error")
		}
	}
}

func TestManager_FIFOZone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.fifo")

	m := newTestManager()
	z, err := m.Create("pipefile", 0, 0, 30, 10, Config{Type: TypeFIFO, Path: path, AutoScroll: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// The handler created the pipe; write through it like an external
	// producer.
	writeFIFO(t, path, "A\nB\nC\n")

	drainUntil(t, m, func() bool { return z.Buffer.Len() == 3 })
	lines := z.Buffer.PlainLines()
	if lines[0] != "A" || lines[2] != "C" {
		t.Errorf("fifo lines = %q", lines)
	}

	// Delete removes the pipe the zone created.
	if err := m.Delete("pipefile"); err != nil {
		t.Fatal(err)
	}
	if fileExists(path) {
		t.Error("fifo file should be removed on delete")
	}
}

func TestManager_ZoneSend(t *testing.T) {
	m := newTestManager()
	m.Create("plain", 0, 0, 10, 5, Config{Type: TypeStatic})
	if err := m.Send("plain", []byte("x")); err == nil {
		t.Error("send to a static zone should fail")
	}
	if err := m.Send("missing", nil); err == nil {
		t.Error("send to a missing zone should fail")
	}
}

func TestManager_MoveResize(t *testing.T) {
	m := newTestManager()
	z, _ := m.Create("box", 0, 0, 10, 5, Config{Type: TypeStatic})

	if err := m.Move("box", -7, 12); err != nil {
		t.Fatal(err)
	}
	if z.X != -7 || z.Y != 12 {
		t.Errorf("zone at (%d,%d)", z.X, z.Y)
	}

	if err := m.Resize("box", 20, 8); err != nil {
		t.Fatal(err)
	}
	if z.Width != 20 || z.Height != 8 {
		t.Errorf("zone size %dx%d", z.Width, z.Height)
	}
	if err := m.Resize("box", 1, 1); err == nil {
		t.Error("sub-minimum resize should fail")
	}
}

func TestParseWatchInterval(t *testing.T) {
	tests := []struct {
		input    string
		interval time.Duration
		path     string
		wantErr  bool
	}{
		{"0.5s", 500 * time.Millisecond, "", false},
		{"2s", 2 * time.Second, "", false},
		{"3m", 3 * time.Minute, "", false},
		{"watch:/tmp/x", 0, "/tmp/x", false},
		{"watch:", 0, "", true},
		{"-1s", 0, "", true},
		{"5", 0, "", true},
		{"fast", 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, p, err := ParseWatchInterval(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (d != tt.interval || p != tt.path) {
				t.Errorf("got (%v, %q), want (%v, %q)", d, p, tt.interval, tt.path)
			}
		})
	}
}

func TestEventQueue_TailDrop(t *testing.T) {
	q := NewEventQueue(2)
	q.Post(Event{Zone: "a"})
	q.Post(Event{Zone: "b"})
	q.Post(Event{Zone: "c"}) // dropped

	if q.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", q.Dropped())
	}
	ev, ok := q.Poll()
	if !ok || ev.Zone != "a" {
		t.Errorf("Poll() = %+v, %v", ev, ok)
	}
}
