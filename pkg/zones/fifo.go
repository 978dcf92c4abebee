package zones

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// FIFOHandler reads lines from a named pipe and appends them to the
// zone buffer. The pipe is created with owner-only permissions when
// absent and removed on stop if this handler created it.
type FIFOHandler struct {
	baseHandler
	path    string
	created bool
}

// NewFIFOHandler creates the handler for a FIFO zone.
func NewFIFOHandler(zone, path string, queue *EventQueue) *FIFOHandler {
	return &FIFOHandler{baseHandler: newBaseHandler(zone, queue), path: path}
}

// Start ensures the pipe exists and launches the read loop.
func (h *FIFOHandler) Start() error {
	info, err := os.Stat(h.path)
	switch {
	case err == nil:
		if info.Mode()&os.ModeNamedPipe == 0 {
			return fmt.Errorf("%s exists and is not a fifo", h.path)
		}
	case os.IsNotExist(err):
		if err := unix.Mkfifo(h.path, 0o600); err != nil {
			return fmt.Errorf("mkfifo %s: %w", h.path, err)
		}
		h.created = true
	default:
		return fmt.Errorf("stat %s: %w", h.path, err)
	}

	h.wg.Add(1)
	go h.readLoop()
	return nil
}

// readLoop opens the pipe non-blocking so EOF (writer gone) and stop
// requests are both observable, re-opening after each writer leaves.
func (h *FIFOHandler) readLoop() {
	defer h.wg.Done()

	for !h.stopped() {
		f, err := os.OpenFile(h.path, os.O_RDONLY|unix.O_NONBLOCK, 0)
		if err != nil {
			h.queue.Post(Event{Zone: h.zone, Kind: EventError, Err: fmt.Sprintf("open fifo: %v", err)})
			return
		}
		h.drain(f)
		f.Close()
	}
}

// drain reads one writer session: until EOF with no data, an error, or
// stop.
func (h *FIFOHandler) drain(f *os.File) {
	buf := make([]byte, 4096)
	var partial []byte
	sawData := false

	for !h.stopped() {
		n, err := f.Read(buf)
		if n > 0 {
			sawData = true
			partial = h.appendChunk(partial, buf[:n])
		}
		if err != nil {
			if err == io.EOF {
				if sawData {
					// Writer closed; flush any unterminated tail and
					// reopen for the next producer.
					if len(partial) > 0 && !h.isPaused() {
						h.queue.Post(Event{Zone: h.zone, Kind: EventAppend,
							Lines: []Line{ParseANSILine(string(partial))}})
					}
					return
				}
				// No writer yet: poll.
				select {
				case <-h.stop:
					return
				case <-time.After(50 * time.Millisecond):
				}
				continue
			}
			if pe, ok := err.(*os.PathError); ok && pe.Err == unix.EAGAIN {
				select {
				case <-h.stop:
					return
				case <-time.After(50 * time.Millisecond):
				}
				continue
			}
			h.queue.Post(Event{Zone: h.zone, Kind: EventError, Err: fmt.Sprintf("fifo read: %v", err)})
			return
		}
	}
}

// appendChunk splits a chunk into lines, posting complete ones and
// carrying the unterminated remainder.
func (h *FIFOHandler) appendChunk(partial, chunk []byte) []byte {
	data := append(partial, chunk...)
	var lines []Line
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		line := bytes.TrimRight(data[:i], "\r")
		lines = append(lines, ParseANSILine(string(line)))
		data = data[i+1:]
	}
	if len(lines) > 0 && !h.isPaused() {
		h.queue.Post(Event{Zone: h.zone, Kind: EventAppend, Lines: lines})
	}
	return data
}

// Refresh is a no-op; content arrives from writers.
func (h *FIFOHandler) Refresh() {}

// Stop closes the reader and removes the pipe if this zone created it.
func (h *FIFOHandler) Stop() {
	h.signalStop()
	h.join()
	if h.created {
		os.Remove(h.path)
	}
}
