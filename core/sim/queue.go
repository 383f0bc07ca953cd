package sim

import (
	"sort"
	"time"

	"github.com/flexfleet/flexdispatch/core/model"
)

// EventQueue keeps events sorted ascending by timestamp. Equal timestamps
// keep insertion order, so same-moment order arrivals are processed in call
// order.
type EventQueue struct {
	events []Event
}

// NewEventQueue returns an empty queue.
func NewEventQueue() *EventQueue { return &EventQueue{} }

// Push inserts the event after all events with an equal or earlier time.
func (q *EventQueue) Push(e Event) {
	i := sort.Search(len(q.events), func(i int) bool {
		return q.events[i].When().After(e.When())
	})
	q.events = append(q.events, nil)
	copy(q.events[i+1:], q.events[i:])
	q.events[i] = e
}

// Pop removes and returns the earliest event, or nil when empty.
func (q *EventQueue) Pop() Event {
	if len(q.events) == 0 {
		return nil
	}
	e := q.events[0]
	q.events = q.events[1:]
	return e
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int { return len(q.events) }

// PendingOrders lists queued order arrivals with a call time not after the
// given time, in queue order. It implements dispatch.OrderSource.
func (q *EventQueue) PendingOrders(notAfter time.Time) []*model.Order {
	var out []*model.Order
	for _, e := range q.events {
		oa, ok := e.(OrderArrival)
		if !ok {
			continue
		}
		if oa.Order.CallTime.After(notAfter) {
			break
		}
		out = append(out, oa.Order)
	}
	return out
}

// RemoveOrder drops the arrival event carrying the order, reporting whether
// one was found.
func (q *EventQueue) RemoveOrder(o *model.Order) bool {
	for i, e := range q.events {
		if oa, ok := e.(OrderArrival); ok && oa.Order == o {
			q.events = append(q.events[:i], q.events[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveTruckEvents invalidates every Arrival and ReturnDeadline scheduled
// for the truck. Removing events that are not there is a no-op; this is the
// cancellation mechanism applied whenever a truck's planned route changes.
func (q *EventQueue) RemoveTruckEvents(t *model.Truck) {
	kept := q.events[:0]
	for _, e := range q.events {
		switch ev := e.(type) {
		case Arrival:
			if ev.Truck == t {
				continue
			}
		case ReturnDeadline:
			if ev.Truck == t {
				continue
			}
		}
		kept = append(kept, e)
	}
	q.events = kept
}
