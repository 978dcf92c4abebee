package zones

import "time"

// pipeCommandTimeout bounds a single PIPE/WATCH command run.
const pipeCommandTimeout = 30 * time.Second

// PipeHandler runs a command once at start and again on refresh,
// replacing the zone buffer with its combined output.
type PipeHandler struct {
	baseHandler
	command string
	refresh chan struct{}
}

// NewPipeHandler creates the handler for a PIPE zone.
func NewPipeHandler(zone string, command string, queue *EventQueue) *PipeHandler {
	return &PipeHandler{
		baseHandler: newBaseHandler(zone, queue),
		command:     command,
		refresh:     make(chan struct{}, 1),
	}
}

// Start launches the run loop and triggers the initial execution.
func (h *PipeHandler) Start() error {
	h.wg.Add(1)
	go h.loop()
	h.Refresh()
	return nil
}

// Refresh schedules another run of the command.
func (h *PipeHandler) Refresh() {
	select {
	case h.refresh <- struct{}{}:
	default:
	}
}

// Stop terminates the run loop.
func (h *PipeHandler) Stop() {
	h.signalStop()
	h.join()
}

func (h *PipeHandler) loop() {
	defer h.wg.Done()
	for {
		select {
		case <-h.stop:
			return
		case <-h.refresh:
			if h.isPaused() {
				continue
			}
			h.runOnce()
		}
	}
}

func (h *PipeHandler) runOnce() {
	lines, err := runShellCommand(h.command, pipeCommandTimeout)
	h.queue.Post(Event{Zone: h.zone, Kind: EventReplace, Lines: lines})
	if err != nil {
		h.queue.Post(Event{Zone: h.zone, Kind: EventError, Err: err.Error()})
		return
	}
	h.queue.Post(Event{Zone: h.zone, Kind: EventState, State: StateRunning})
}
