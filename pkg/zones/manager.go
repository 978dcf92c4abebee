package zones

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"mygrid/pkg/term"
)

// Logger is the subset of the application logger the manager needs.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// ClipboardView lets CLIPBOARD zones project the clipboard buffer
// without the zones package depending on it.
type ClipboardView interface {
	Lines() []string
	IsEmpty() bool
}

// Manager owns the zone registry and the handler event queue. Only the
// application thread calls into it; handlers communicate through the
// queue.
type Manager struct {
	zones     map[string]*Zone // keyed by lowercase name
	order     []*Zone          // creation order = render z-order
	queue     *EventQueue
	clipboard ClipboardView
	logger    Logger
	nextSeq   int
}

// NewManager creates a zone manager posting to a bounded queue.
func NewManager(queueCapacity int, clipboard ClipboardView, logger Logger) *Manager {
	return &Manager{
		zones:     make(map[string]*Zone),
		queue:     NewEventQueue(queueCapacity),
		clipboard: clipboard,
		logger:    logger,
	}
}

// Queue returns the handler event queue.
func (m *Manager) Queue() *EventQueue { return m.queue }

// Clipboard returns the clipboard view for rendering CLIPBOARD zones.
func (m *Manager) Clipboard() ClipboardView { return m.clipboard }

// Count returns the number of zones.
func (m *Manager) Count() int { return len(m.zones) }

// Get looks up a zone by name, case-insensitively.
func (m *Manager) Get(name string) (*Zone, bool) {
	z, ok := m.zones[strings.ToLower(name)]
	return z, ok
}

// List returns zones sorted by name for listings.
func (m *Manager) List() []*Zone {
	out := make([]*Zone, 0, len(m.zones))
	for _, z := range m.zones {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// RenderOrder returns zones in creation order; later zones draw over
// earlier ones where they overlap.
func (m *Manager) RenderOrder() []*Zone {
	return m.order
}

// FindAt returns the topmost zone containing a canvas coordinate.
func (m *Manager) FindAt(cx, cy int64) (*Zone, bool) {
	for i := len(m.order) - 1; i >= 0; i-- {
		if m.order[i].Contains(cx, cy) {
			return m.order[i], true
		}
	}
	return nil, false
}

// Create registers a zone and starts its handler. A handler start
// failure leaves the zone registered in the error state so the user
// can refresh or delete it.
func (m *Manager) Create(name string, x, y int64, width, height int, cfg Config) (*Zone, error) {
	if name == "" {
		return nil, fmt.Errorf("zone name cannot be empty")
	}
	key := strings.ToLower(name)
	if _, exists := m.zones[key]; exists {
		return nil, fmt.Errorf("zone %q already exists", name)
	}
	if width < 3 || height < 3 {
		return nil, fmt.Errorf("zone size must be at least 3x3, got %dx%d", width, height)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	z := &Zone{
		Name:   name,
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
		Config: cfg,
		Buffer: NewBuffer(cfg.MaxLines, cfg.AutoScroll),
		State:  StateRunning,
		seq:    m.nextSeq,
	}
	m.nextSeq++

	if err := m.startHandler(z); err != nil {
		z.State = StateError
		z.Err = err.Error()
		z.handler = nil // Refresh retries the start
		if m.logger != nil {
			m.logger.Warnf("zone %s handler failed: %v", name, err)
		}
	}

	m.zones[key] = z
	m.order = append(m.order, z)
	if m.logger != nil {
		m.logger.Infof("zone %s created: %s %dx%d at (%d,%d)", name, cfg.Type, width, height, x, y)
	}
	return z, nil
}

func (m *Manager) startHandler(z *Zone) error {
	iw, ih := z.InnerSize()
	switch z.Config.Type {
	case TypeStatic, TypeClipboard:
		z.handler = nil
		return nil
	case TypePipe:
		z.handler = NewPipeHandler(z.Name, z.Config.Command, m.queue)
	case TypeWatch:
		z.handler = NewWatchHandler(z.Name, z.Config.Command, z.Config.RefreshInterval, z.Config.WatchPath, m.queue)
	case TypePTY:
		z.Terminal = term.NewEmulator(iw, ih, z.Config.MaxLines)
		z.handler = NewPTYHandler(z.Name, z.Config.Shell, z.Terminal, m.queue)
	case TypeFIFO:
		z.handler = NewFIFOHandler(z.Name, z.Config.Path, m.queue)
	case TypeSocket:
		z.handler = NewSocketHandler(z.Name, z.Config.Port, m.queue)
	case TypePager:
		z.handler = NewPagerHandler(z.Name, z.Config.Path, z.Config.Renderer, m.queue)
	default:
		return fmt.Errorf("unknown zone type: %s", z.Config.Type)
	}
	return z.handler.Start()
}

// Delete stops a zone's handler, releases its resources, and removes
// it from the registry. Events already queued for the name are
// discarded when applied.
func (m *Manager) Delete(name string) error {
	key := strings.ToLower(name)
	z, ok := m.zones[key]
	if !ok {
		return fmt.Errorf("no zone named %q", name)
	}
	z.State = StateStopped
	if z.handler != nil {
		z.handler.Stop()
	}
	delete(m.zones, key)
	for i, o := range m.order {
		if o == z {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	// Flush the queue now so a later zone reusing the name cannot
	// receive this zone's pending output; its own events are dropped
	// by the missing-name check in Apply.
	for {
		ev, ok := m.queue.Poll()
		if !ok {
			break
		}
		m.Apply(ev)
	}
	if m.logger != nil {
		m.logger.Infof("zone %s deleted", name)
	}
	return nil
}

// Pause suspends a zone's handler.
func (m *Manager) Pause(name string) error {
	z, ok := m.Get(name)
	if !ok {
		return fmt.Errorf("no zone named %q", name)
	}
	if z.handler != nil {
		z.handler.Pause()
	}
	z.State = StatePaused
	return nil
}

// Resume reverses Pause.
func (m *Manager) Resume(name string) error {
	z, ok := m.Get(name)
	if !ok {
		return fmt.Errorf("no zone named %q", name)
	}
	if z.handler != nil {
		z.handler.Resume()
	}
	z.State = StateRunning
	return nil
}

// Refresh re-runs a zone's content source. A zone stuck in the error
// state gets its handler restarted.
func (m *Manager) Refresh(name string) error {
	z, ok := m.Get(name)
	if !ok {
		return fmt.Errorf("no zone named %q", name)
	}
	if z.State == StateError && z.handler == nil {
		if err := m.startHandler(z); err != nil {
			z.Err = err.Error()
			return err
		}
		z.State = StateRunning
		z.Err = ""
		return nil
	}
	if z.handler != nil {
		z.handler.Refresh()
	}
	return nil
}

// Send forwards input bytes to a zone (PTY zones only).
func (m *Manager) Send(name string, data []byte) error {
	z, ok := m.Get(name)
	if !ok {
		return fmt.Errorf("no zone named %q", name)
	}
	if z.handler == nil {
		return errNotInteractive
	}
	return z.handler.Send(data)
}

// Move repositions a zone.
func (m *Manager) Move(name string, x, y int64) error {
	z, ok := m.Get(name)
	if !ok {
		return fmt.Errorf("no zone named %q", name)
	}
	z.X = x
	z.Y = y
	return nil
}

// Resize changes a zone's geometry, propagating to PTY terminals.
func (m *Manager) Resize(name string, width, height int) error {
	z, ok := m.Get(name)
	if !ok {
		return fmt.Errorf("no zone named %q", name)
	}
	if width < 3 || height < 3 {
		return fmt.Errorf("zone size must be at least 3x3, got %dx%d", width, height)
	}
	z.Width = width
	z.Height = height
	if p, ok := z.handler.(*PTYHandler); ok {
		iw, ih := z.InnerSize()
		p.Resize(iw, ih)
	}
	return nil
}

// Apply folds one handler event into zone state. Events naming
// deleted zones are dropped.
func (m *Manager) Apply(ev Event) {
	z, ok := m.Get(ev.Zone)
	if !ok {
		return
	}
	switch ev.Kind {
	case EventAppend:
		for _, line := range ev.Lines {
			z.Buffer.Append(line)
		}
	case EventReplace:
		z.Buffer.SetLines(ev.Lines)
	case EventState:
		z.State = ev.State
		if ev.State == StateRunning {
			z.Err = ""
		}
	case EventError:
		z.State = StateError
		z.Err = ev.Err
	}
}

// Drain applies up to budget queued events, returning how many were
// processed.
func (m *Manager) Drain(budget int) int {
	n := 0
	for n < budget {
		ev, ok := m.queue.Poll()
		if !ok {
			break
		}
		m.Apply(ev)
		n++
	}
	if d := m.queue.Dropped(); d > 0 && m.logger != nil {
		m.logger.Warnf("zone event queue dropped %d events", d)
	}
	return n
}

// StopAll stops every handler (application shutdown). Zones stay
// registered so a final render can show their last content.
func (m *Manager) StopAll() {
	for _, z := range m.order {
		if z.handler != nil {
			z.handler.Stop()
			z.State = StateStopped
		}
	}
}

// Clear deletes every zone.
func (m *Manager) Clear() {
	for _, z := range m.order {
		if z.handler != nil {
			z.handler.Stop()
		}
	}
	m.zones = make(map[string]*Zone)
	m.order = nil
}

// ParseWatchInterval parses the WATCH trigger argument: "<float>s"
// seconds, "<int>m" minutes, or "watch:PATH" for file-change mode.
func ParseWatchInterval(s string) (time.Duration, string, error) {
	if path, ok := strings.CutPrefix(s, "watch:"); ok {
		if path == "" {
			return 0, "", fmt.Errorf("watch: requires a path")
		}
		return 0, path, nil
	}
	if v, ok := strings.CutSuffix(s, "s"); ok {
		secs, err := strconv.ParseFloat(v, 64)
		if err != nil || secs <= 0 {
			return 0, "", fmt.Errorf("invalid interval: %s", s)
		}
		return time.Duration(secs * float64(time.Second)), "", nil
	}
	if v, ok := strings.CutSuffix(s, "m"); ok {
		mins, err := strconv.Atoi(v)
		if err != nil || mins <= 0 {
			return 0, "", fmt.Errorf("invalid interval: %s", s)
		}
		return time.Duration(mins) * time.Minute, "", nil
	}
	return 0, "", fmt.Errorf("interval must be <float>s, <int>m, or watch:PATH, got %s", s)
}
