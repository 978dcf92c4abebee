package zones

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/creack/pty"

	"mygrid/pkg/term"
)

// PTYHandler hosts an interactive child process on a pseudo-terminal.
// Output bytes are fed into the zone's terminal emulator; Send writes
// input bytes to the master side.
type PTYHandler struct {
	baseHandler
	shellLine string
	emulator  *term.Emulator

	mu   sync.Mutex
	ptmx *os.File
	cmd  *exec.Cmd
}

// NewPTYHandler creates the handler. The emulator is owned by the
// handler; the zone renders it through its snapshot method.
func NewPTYHandler(zone, shellLine string, emulator *term.Emulator, queue *EventQueue) *PTYHandler {
	return &PTYHandler{
		baseHandler: newBaseHandler(zone, queue),
		shellLine:   shellLine,
		emulator:    emulator,
	}
}

// Start spawns the child on a new PTY sized to the zone interior and
// begins the read loop.
func (h *PTYHandler) Start() error {
	parts := strings.Fields(h.shellLine)
	if len(parts) == 0 {
		parts = []string{DefaultShell}
	}
	cmd := exec.Command(parts[0], parts[1:]...)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	w, hgt := h.emulator.Size()
	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: uint16(w), Rows: uint16(hgt)})
	if err != nil {
		return fmt.Errorf("start pty: %w", err)
	}

	h.mu.Lock()
	h.ptmx = ptmx
	h.cmd = cmd
	h.mu.Unlock()

	h.wg.Add(1)
	go h.readLoop()
	return nil
}

func (h *PTYHandler) readLoop() {
	defer h.wg.Done()

	buf := make([]byte, 4096)
	for {
		n, err := h.ptmx.Read(buf)
		if n > 0 && !h.isPaused() {
			h.emulator.Feed(buf[:n])
		}
		if err != nil {
			if !h.stopped() {
				h.queue.Post(Event{Zone: h.zone, Kind: EventState, State: StateStopped})
			}
			return
		}
	}
}

// Send forwards input bytes to the child.
func (h *PTYHandler) Send(data []byte) error {
	h.mu.Lock()
	ptmx := h.ptmx
	h.mu.Unlock()
	if ptmx == nil {
		return fmt.Errorf("pty not started")
	}
	_, err := ptmx.Write(data)
	return err
}

// Resize propagates a zone resize to the PTY and the emulator.
func (h *PTYHandler) Resize(w, hgt int) {
	h.emulator.Resize(w, hgt)
	h.mu.Lock()
	ptmx := h.ptmx
	h.mu.Unlock()
	if ptmx != nil {
		pty.Setsize(ptmx, &pty.Winsize{Cols: uint16(w), Rows: uint16(hgt)})
	}
}

// Refresh is a no-op for live terminals.
func (h *PTYHandler) Refresh() {}

// Stop hangs up the child, closes the master, and joins the reader.
func (h *PTYHandler) Stop() {
	h.signalStop()

	h.mu.Lock()
	cmd := h.cmd
	ptmx := h.ptmx
	h.ptmx = nil
	h.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		cmd.Process.Signal(syscall.SIGHUP)
	}
	if ptmx != nil {
		ptmx.Close() // unblocks the read loop
	}
	if !waitTimeout(&h.wg, joinTimeout) && cmd != nil && cmd.Process != nil {
		cmd.Process.Kill()
	}
	if cmd != nil {
		go cmd.Wait() // reap
	}
}
