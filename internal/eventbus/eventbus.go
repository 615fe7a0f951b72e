// Package eventbus implements the process-wide bounded event queue (C6):
// producers fire events from any goroutine, a single consumer polls them on
// its own goroutine, and per-code callbacks run in registration order,
// stopping at the first one that reports the event handled.
package eventbus

import "sync"

// Code identifies an event kind. The client fires window/input codes from
// its network and platform layers; PlayerInit/GameWorldInit/ChunkReceived
// are fired by the network thread to hand world-affecting work back to the
// main/render thread (spec.md §5: "the event bus is the only sanctioned
// cross-thread handoff").
type Code int

const (
	KeyPressed Code = iota
	KeyReleased
	KeyRepeated
	CharPressed
	MouseButtonPressed
	MouseButtonReleased
	MouseMoved
	MouseScrolled
	WindowClosed
	WindowResized
	WindowMinimized
	WindowMaximized
	PlayerInit
	GameWorldInit
	ChunkReceived
)

// DataSize is the fixed size of an event's payload union (spec.md §4.5:
// "a fixed 16-byte union").
const DataSize = 16

// Data is the fixed-size payload carried alongside a Code. Callers encode
// whatever small value they need (an id, a coordinate pair) into the first
// bytes and ignore the rest.
type Data [DataSize]byte

// Event is one queued {code, data} unit.
type Event struct {
	Code Code
	Data Data
}

// HandlerFunc processes one event and reports whether it was handled. When
// true, Bus.Poll stops invoking further callbacks registered for that code.
type HandlerFunc func(Event) bool

// MaxPollEvents bounds how many events a single Poll call drains, keeping
// frame latency bounded per spec.md §4.5.
const MaxPollEvents = 64

// Bus is a bounded FIFO of events guarded by a mutex, with per-code ordered
// callback lists. Safe for concurrent Fire from any goroutine; Poll is
// intended to be called from a single consumer goroutine (the main/render
// thread) but is itself safe to call concurrently with Fire.
type Bus struct {
	mu       sync.Mutex
	queue    []Event
	capacity int
	handlers map[Code][]HandlerFunc
}

// New creates a Bus whose queue holds at most capacity pending events.
func New(capacity int) *Bus {
	return &Bus{
		capacity: capacity,
		handlers: make(map[Code][]HandlerFunc),
	}
}

// On registers h to run for every event fired with the given code, after
// any handler already registered for that code.
func (b *Bus) On(code Code, h HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[code] = append(b.handlers[code], h)
}

// Fire enqueues an event. It returns false without blocking if the queue is
// already at capacity (spec.md §4.5: "fire returns false on full — logged
// and dropped — never blocks").
func (b *Bus) Fire(code Code, data Data) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) >= b.capacity {
		return false
	}
	b.queue = append(b.queue, Event{Code: code, Data: data})
	return true
}

// Poll drains up to MaxPollEvents queued events and dispatches each to its
// registered handlers in order, stopping at the first handler that returns
// true. It returns the number of events drained.
func (b *Bus) Poll() int {
	b.mu.Lock()
	n := len(b.queue)
	if n > MaxPollEvents {
		n = MaxPollEvents
	}
	batch := make([]Event, n)
	copy(batch, b.queue[:n])
	b.queue = b.queue[n:]
	b.mu.Unlock()

	for _, ev := range batch {
		b.mu.Lock()
		handlers := append([]HandlerFunc(nil), b.handlers[ev.Code]...)
		b.mu.Unlock()
		for _, h := range handlers {
			if h(ev) {
				break
			}
		}
	}
	return n
}

// Len reports the number of events currently queued.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}
