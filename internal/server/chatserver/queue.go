// Package chatserver implements the relaychat TCP server.
package chatserver

import "sync"

// eventQueue is an unbounded many-producer single-consumer FIFO.
//
// Push never blocks: readers must be able to hand off events even when
// the coordinator is busy fanning out a broadcast. The cost is that a
// persistently slow coordinator grows the queue without bound, which
// is the documented backpressure trade-off of the design.
type eventQueue struct {
	mu       sync.Mutex
	nonEmpty *sync.Cond
	items    []event
	closed   bool
}

func newEventQueue() *eventQueue {
	q := &eventQueue{}
	q.nonEmpty = sync.NewCond(&q.mu)
	return q
}

// push appends an event. Returns false if the queue is closed; the
// coordinator is gone and the event is dropped.
func (q *eventQueue) push(ev event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, ev)
	q.nonEmpty.Signal()
	return true
}

// pop blocks until an event is available or the queue is closed and
// drained. The second return is false once no more events will come.
func (q *eventQueue) pop() (event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.nonEmpty.Wait()
	}
	if len(q.items) == 0 {
		return event{}, false
	}
	ev := q.items[0]
	q.items = q.items[1:]
	// Let the backing array go once fully drained so a burst does not
	// pin its peak allocation forever.
	if len(q.items) == 0 {
		q.items = nil
	}
	return ev, true
}

// close marks the queue closed and wakes the consumer. Pending events
// are still delivered; further pushes are rejected.
func (q *eventQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.nonEmpty.Broadcast()
}

// depth reports the number of queued events. Used for metrics.
func (q *eventQueue) depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
