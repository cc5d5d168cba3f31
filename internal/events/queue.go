// Package events holds the ordered, lossless queue that carries market,
// signal and order events between the feed, strategy, portfolio and executor.
package events

import (
	"context"
	"sync"

	"github.com/rxtech-lab/argo-replay/internal/types"
)

// Sink is where components put the events they emit.
type Sink interface {
	Put(event types.Event)
}

// Queue is an unbounded FIFO. Put never blocks and never drops.
type Queue struct {
	mu     sync.Mutex
	events []types.Event
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Put appends event to the tail.
func (q *Queue) Put(event types.Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.events = append(q.events, event)
}

// Get pops the head without blocking. ok is false when the queue is empty.
func (q *Queue) Get() (event types.Event, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return nil, false
	}

	event = q.events[0]
	q.events[0] = nil
	q.events = q.events[1:]

	return event, true
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.events)
}

// Drain hands events to handler in order until the queue is empty. Events the
// handler puts back are drained in the same call. It stops early on the first
// handler error or when ctx is done.
func (q *Queue) Drain(ctx context.Context, handler func(types.Event) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		event, ok := q.Get()
		if !ok {
			return nil
		}

		if err := handler(event); err != nil {
			return err
		}
	}
}
