// Package trace records the observation history of collapse runs as a
// bounded append-only event log. Subscribers receive every event as it
// is recorded, which is how the meta layer watches the engine without
// coupling to it.
package trace

import "sync"

// DefaultCapacity bounds the event log when no capacity is configured.
const DefaultCapacity = 4096

// Kind labels a collapse lifecycle event.
type Kind string

const (
	// KindSeeded marks the start of a run with the initial
	// superposition size.
	KindSeeded Kind = "seeded"
	// KindScored is emitted after every candidate in the working set
	// has been observed.
	KindScored Kind = "scored"
	// KindRanked is emitted after pruning to the strongest candidates.
	KindRanked Kind = "ranked"
	// KindFactorFound terminates a successful run.
	KindFactorFound Kind = "factor_found"
	// KindExhausted terminates a run that spent its budget or stalled.
	KindExhausted Kind = "exhausted"
)

// Event is a single entry in the observation log. Session ties events
// of one engine call together; producers stamp it before recording.
type Event struct {
	Session    string
	Kind       Kind
	N          uint64
	Iteration  int
	Position   uint64
	Weight     float64
	Source     string
	Candidates int
}

// Sink receives events as they happen. Implementations must tolerate
// concurrent calls when the producer runs collapses concurrently.
type Sink interface {
	Record(Event)
}

// Trace is a fixed-capacity ring of events. It implements Sink; the
// oldest events are overwritten once the ring is full. All methods are
// safe for concurrent use.
type Trace struct {
	mu      sync.Mutex
	events  []Event
	head    int
	size    int
	dropped uint64
	subs    []Sink
}

// New returns a trace holding up to capacity events. Non-positive
// capacities fall back to DefaultCapacity.
func New(capacity int) *Trace {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Trace{events: make([]Event, capacity)}
}

// Record appends the event and notifies subscribers in registration
// order. Notification happens outside the trace lock so subscribers
// may read the trace back.
func (t *Trace) Record(ev Event) {
	t.mu.Lock()
	idx := (t.head + t.size) % len(t.events)
	t.events[idx] = ev
	if t.size < len(t.events) {
		t.size++
	} else {
		t.head = (t.head + 1) % len(t.events)
		t.dropped++
	}
	subs := t.subs
	t.mu.Unlock()

	for _, s := range subs {
		s.Record(ev)
	}
}

// Subscribe registers a sink for future events. Already-recorded
// events are not replayed.
func (t *Trace) Subscribe(s Sink) {
	if s == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	subs := make([]Sink, len(t.subs), len(t.subs)+1)
	copy(subs, t.subs)
	t.subs = append(subs, s)
}

// Events returns a copy of the retained events, oldest first.
func (t *Trace) Events() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, t.size)
	for i := 0; i < t.size; i++ {
		out[i] = t.events[(t.head+i)%len(t.events)]
	}
	return out
}

// Len reports the number of retained events.
func (t *Trace) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.size
}

// Cap reports the ring capacity.
func (t *Trace) Cap() int {
	return len(t.events)
}

// Dropped reports how many events have been overwritten.
func (t *Trace) Dropped() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}

// Reset discards all retained events. Subscribers stay registered.
func (t *Trace) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.head, t.size, t.dropped = 0, 0, 0
}
