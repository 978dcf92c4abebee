package zones

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchHandler re-runs a command either on a fixed interval or when a
// watched filesystem path changes. Each run replaces the buffer; run
// failures append the error and the handler keeps going.
type WatchHandler struct {
	baseHandler
	command   string
	interval  time.Duration
	watchPath string
	refresh   chan struct{}
	watcher   *fsnotify.Watcher
}

// NewWatchHandler creates an interval- or path-triggered handler. One
// of interval/watchPath must be set (validated by the config).
func NewWatchHandler(zone, command string, interval time.Duration, watchPath string, queue *EventQueue) *WatchHandler {
	return &WatchHandler{
		baseHandler: newBaseHandler(zone, queue),
		command:     command,
		interval:    interval,
		watchPath:   watchPath,
		refresh:     make(chan struct{}, 1),
	}
}

// Start launches the refresh loop. In path mode the fsnotify watcher
// is created here so setup failures surface at zone creation.
func (h *WatchHandler) Start() error {
	if h.watchPath != "" {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		if err := w.Add(h.watchPath); err != nil {
			w.Close()
			return fmt.Errorf("watch %s: %w", h.watchPath, err)
		}
		h.watcher = w
		h.wg.Add(1)
		go h.watchLoop()
	} else {
		h.wg.Add(1)
		go h.intervalLoop()
	}
	return nil
}

// Refresh forces a run outside the schedule.
func (h *WatchHandler) Refresh() {
	select {
	case h.refresh <- struct{}{}:
	default:
	}
}

// Stop terminates the loop and the watcher.
func (h *WatchHandler) Stop() {
	h.signalStop()
	if h.watcher != nil {
		h.watcher.Close()
	}
	h.join()
}

func (h *WatchHandler) intervalLoop() {
	defer h.wg.Done()

	h.runOnce("")
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-h.refresh:
			h.runOnce("")
		case <-ticker.C:
			if h.isPaused() {
				continue
			}
			h.runOnce("")
		}
	}
}

func (h *WatchHandler) watchLoop() {
	defer h.wg.Done()

	h.runOnce(h.watchPath)
	for {
		select {
		case <-h.stop:
			return
		case <-h.refresh:
			h.runOnce(h.watchPath)
		case ev, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if h.isPaused() {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				h.runOnce(ev.Name)
			}
		case _, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// runOnce executes the command, substituting {file} with the changed
// path in watch mode.
func (h *WatchHandler) runOnce(changed string) {
	command := h.command
	if changed != "" {
		command = strings.ReplaceAll(command, "{file}", changed)
	}
	lines, err := runShellCommand(command, pipeCommandTimeout)
	if err != nil {
		// Keep the output, append the failure, stay running.
		lines = append(lines, PlainLine(fmt.Sprintf("[%s]", err.Error())))
	}
	h.queue.Post(Event{Zone: h.zone, Kind: EventReplace, Lines: lines})
}
