package zones

import (
	"fmt"
	"os"
	"strings"
)

// PagerHandler loads a file into the zone buffer once at start and
// again on refresh. The renderer hint selects ANSI-aware or plain
// display.
type PagerHandler struct {
	baseHandler
	path     string
	renderer string
	refresh  chan struct{}
}

// NewPagerHandler creates the handler for a PAGER zone.
func NewPagerHandler(zone, path, renderer string, queue *EventQueue) *PagerHandler {
	return &PagerHandler{
		baseHandler: newBaseHandler(zone, queue),
		path:        path,
		renderer:    renderer,
		refresh:     make(chan struct{}, 1),
	}
}

// Start verifies the file is readable, loads it, and waits for
// refresh requests.
func (h *PagerHandler) Start() error {
	if _, err := os.Stat(h.path); err != nil {
		return fmt.Errorf("open %s: %w", h.path, err)
	}
	h.wg.Add(1)
	go h.loop()
	h.Refresh()
	return nil
}

// Refresh schedules a re-read of the file.
func (h *PagerHandler) Refresh() {
	select {
	case h.refresh <- struct{}{}:
	default:
	}
}

// Stop terminates the loop.
func (h *PagerHandler) Stop() {
	h.signalStop()
	h.join()
}

func (h *PagerHandler) loop() {
	defer h.wg.Done()
	for {
		select {
		case <-h.stop:
			return
		case <-h.refresh:
			h.load()
		}
	}
}

func (h *PagerHandler) load() {
	data, err := os.ReadFile(h.path)
	if err != nil {
		h.queue.Post(Event{Zone: h.zone, Kind: EventError, Err: fmt.Sprintf("read %s: %v", h.path, err)})
		return
	}
	text := strings.TrimRight(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	var lines []Line
	if text != "" {
		for _, raw := range strings.Split(text, "\n") {
			if h.renderer == "plain" {
				lines = append(lines, PlainLine(stripANSI(raw)))
			} else {
				lines = append(lines, ParseANSILine(raw))
			}
		}
	}
	h.queue.Post(Event{Zone: h.zone, Kind: EventReplace, Lines: lines})
	h.queue.Post(Event{Zone: h.zone, Kind: EventState, State: StateRunning})
}

// stripANSI removes escape sequences without interpreting them.
func stripANSI(s string) string {
	return ParseANSILine(s).String()
}
