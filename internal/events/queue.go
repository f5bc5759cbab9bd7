package events

import (
	"sync"

	"burnrate/internal/world"
)

// Queue buffers emitted events awaiting webhook dispatch. The Tick Engine
// drains it once per tick (pipeline stage 13); events are pushed in tick
// order, so a single webhook always sees its matches in tick order even
// though there is no ordering guarantee across different webhooks.
type Queue struct {
	mu     sync.Mutex
	events []*world.Event
}

// NewQueue returns an empty dispatch queue.
func NewQueue() *Queue { return &Queue{} }

// Push enqueues an event for later dispatch.
func (q *Queue) Push(e *world.Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, e)
}

// Drain removes and returns every queued event in push order.
func (q *Queue) Drain() []*world.Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.events
	q.events = nil
	return out
}
