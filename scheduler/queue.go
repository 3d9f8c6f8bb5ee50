package scheduler

import "github.com/robmorgan/pulse/rhythm"

// queue is the FIFO of events that have been handed to the output but not
// yet shown. Events are pushed in due-time order.
type queue struct {
	events []rhythm.Event
	head   int
}

func (q *queue) push(ev rhythm.Event) {
	q.events = append(q.events, ev)
}

func (q *queue) empty() bool {
	return q.head >= len(q.events)
}

func (q *queue) front() rhythm.Event {
	return q.events[q.head]
}

func (q *queue) pop() rhythm.Event {
	ev := q.events[q.head]
	q.head++
	if q.empty() {
		q.reset()
	}
	return ev
}

func (q *queue) len() int {
	return len(q.events) - q.head
}

func (q *queue) reset() {
	q.events = q.events[:0]
	q.head = 0
}
