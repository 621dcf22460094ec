// Package timingevent wraps memctrl.BwLatMemCtrl.Access for event-driven
// hosts that split a response latency into a baseline, returned inline, and
// a queued over-baseline surcharge event (spec §4.7).
package timingevent

import "container/heap"

// Event is one scheduled surcharge: the portion of an access's latency
// above the zero-load baseline, to be accounted for in the host's "weave"
// phase rather than synchronously in its "bound" phase.
type Event struct {
	// Cycle is the simulation time at which the event becomes due.
	Cycle int64
	// SequenceNumber breaks ties deterministically between events sharing
	// a Cycle, in issue order.
	SequenceNumber int64
	// Surcharge is currentLatency - zeroLoadLatency for the access that
	// produced this event.
	Surcharge int64
	// PreDelay and PostDelay split zeroLoadLatency/2 either side of the
	// surcharge, per spec §4.7 and the teacher's weave-phase event shape.
	PreDelay, PostDelay int64
}

// eventHeap implements a priority queue with deterministic ordering: cycle,
// then sequence number, matching the teacher's sim/cluster/event_heap.go
// (there: timestamp → type priority → event ID; here there is only one
// event type, so the tiebreaker collapses to sequence number).
type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].Cycle != h[j].Cycle {
		return h[i].Cycle < h[j].Cycle
	}
	return h[i].SequenceNumber < h[j].SequenceNumber
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(*Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// EventQueue is the weave-phase surcharge queue: a deterministic,
// cycle-ordered priority queue of pending Events.
type EventQueue struct {
	h    eventHeap
	next int64
}

// NewEventQueue returns an empty EventQueue.
func NewEventQueue() *EventQueue {
	q := &EventQueue{}
	heap.Init(&q.h)
	return q
}

// Schedule enqueues a surcharge event due at cycle, assigning it the next
// sequence number for deterministic tie-breaking.
func (q *EventQueue) Schedule(cycle, surcharge, preDelay, postDelay int64) *Event {
	e := &Event{
		Cycle:          cycle,
		SequenceNumber: q.next,
		Surcharge:      surcharge,
		PreDelay:       preDelay,
		PostDelay:      postDelay,
	}
	q.next++
	heap.Push(&q.h, e)
	return e
}

// Len reports the number of pending events.
func (q *EventQueue) Len() int { return q.h.Len() }

// Peek returns the next due event without removing it, or nil if empty.
func (q *EventQueue) Peek() *Event {
	if q.h.Len() == 0 {
		return nil
	}
	return q.h[0]
}

// PopNext removes and returns the next due event, or nil if empty.
func (q *EventQueue) PopNext() *Event {
	if q.h.Len() == 0 {
		return nil
	}
	return heap.Pop(&q.h).(*Event)
}
