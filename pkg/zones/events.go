package zones

import "sync/atomic"

// EventKind distinguishes handler notifications.
type EventKind int

const (
	// EventAppend adds lines to the zone buffer.
	EventAppend EventKind = iota
	// EventReplace swaps the buffer content (WATCH/PIPE runs).
	EventReplace
	// EventState reports a control-state transition.
	EventState
	// EventError moves the zone into the error state with a message.
	EventError
)

// Event is posted by handler goroutines and applied by the
// application thread. Events for zones deleted in the meantime are
// discarded by name.
type Event struct {
	Zone  string
	Kind  EventKind
	Lines []Line
	State State
	Err   string
}

// EventQueue is the bounded multi-producer single-consumer channel
// between handlers and the loop. Overflow drops the newest event and
// counts it.
type EventQueue struct {
	ch      chan Event
	dropped atomic.Int64
}

// NewEventQueue creates a queue with the given capacity.
func NewEventQueue(capacity int) *EventQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &EventQueue{ch: make(chan Event, capacity)}
}

// Post enqueues an event without blocking; full queues tail-drop.
func (q *EventQueue) Post(ev Event) {
	select {
	case q.ch <- ev:
	default:
		q.dropped.Add(1)
	}
}

// Poll dequeues one event without blocking.
func (q *EventQueue) Poll() (Event, bool) {
	select {
	case ev := <-q.ch:
		return ev, true
	default:
		return Event{}, false
	}
}

// Chan exposes the receive side for select loops.
func (q *EventQueue) Chan() <-chan Event {
	return q.ch
}

// Dropped returns the number of tail-dropped events.
func (q *EventQueue) Dropped() int64 {
	return q.dropped.Load()
}
