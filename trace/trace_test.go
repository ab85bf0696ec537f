package trace

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct {
	mu     sync.Mutex
	events []Event
}

func (c *capture) Record(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *capture) all() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

func TestTraceRecord(t *testing.T) {
	tr := New(8)

	tr.Record(Event{Kind: KindSeeded, N: 143, Candidates: 10})
	tr.Record(Event{Kind: KindFactorFound, N: 143, Position: 11, Iteration: 0})

	events := tr.Events()
	require.Len(t, events, 2)
	assert.Equal(t, KindSeeded, events[0].Kind)
	assert.Equal(t, KindFactorFound, events[1].Kind)
	assert.Equal(t, uint64(11), events[1].Position)
	assert.Zero(t, tr.Dropped())
}

func TestTraceRingEviction(t *testing.T) {
	tr := New(4)

	for i := 0; i < 6; i++ {
		tr.Record(Event{Kind: KindScored, Iteration: i})
	}

	events := tr.Events()
	require.Len(t, events, 4)
	assert.Equal(t, 2, events[0].Iteration, "oldest two are gone")
	assert.Equal(t, 5, events[3].Iteration)
	assert.Equal(t, uint64(2), tr.Dropped())
	assert.Equal(t, 4, tr.Len())
	assert.Equal(t, 4, tr.Cap())
}

func TestTraceDefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultCapacity, New(0).Cap())
	assert.Equal(t, DefaultCapacity, New(-1).Cap())
}

func TestTraceSubscribe(t *testing.T) {
	tr := New(8)
	first := &capture{}
	second := &capture{}

	tr.Record(Event{Kind: KindSeeded})
	tr.Subscribe(first)
	tr.Subscribe(second)
	tr.Subscribe(nil)
	tr.Record(Event{Kind: KindExhausted, Iteration: 7})

	require.Len(t, first.all(), 1, "no replay of earlier events")
	assert.Equal(t, KindExhausted, first.all()[0].Kind)
	assert.Equal(t, first.all(), second.all())
}

func TestTraceReset(t *testing.T) {
	tr := New(4)
	sub := &capture{}
	tr.Subscribe(sub)

	tr.Record(Event{Kind: KindSeeded})
	tr.Reset()

	assert.Zero(t, tr.Len())
	assert.Empty(t, tr.Events())
	tr.Record(Event{Kind: KindRanked})
	assert.Len(t, sub.all(), 2, "subscribers survive a reset")
}

func TestTraceConcurrentRecord(t *testing.T) {
	tr := New(64)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(session string) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				tr.Record(Event{Session: session, Kind: KindScored, Iteration: i})
			}
		}(string(rune('a' + g)))
	}
	wg.Wait()

	assert.Equal(t, 64, tr.Len())
	assert.Equal(t, uint64(8*50-64), tr.Dropped())
}
