package dispatch

import (
	"time"

	"github.com/flexfleet/flexdispatch/core/model"
)

// OrderSource lists order arrivals still waiting in the event queue and
// removes one that was absorbed into a combination.
type OrderSource interface {
	// PendingOrders returns queued, not-yet-processed orders whose call
	// time is not after the given time, in queue order.
	PendingOrders(notAfter time.Time) []*model.Order
	// RemoveOrder drops the arrival event for the order. It reports whether
	// an event was actually removed.
	RemoveOrder(*model.Order) bool
}

// Combine tries to pair a newly arrived order with another pending order
// sharing an endpoint, subject to truck capacity. Candidates are scanned
// first among queued arrivals with a call time not after o's, then among
// single uncombined backlog entries; the first fit wins. The partner is
// removed from wherever it was found.
func (e *Engine) Combine(o *model.Order, src OrderSource, backlog *Backlog) []*model.Order {
	for _, cand := range src.PendingOrders(o.CallTime) {
		if cand == o || cand.Partner != nil || cand.Planned {
			continue
		}
		if !e.combinable(o, cand) {
			continue
		}
		o.CombineWith(cand)
		src.RemoveOrder(cand)
		e.log.Debugf("combined order %s with queued order %s", o.ID, cand.ID)
		return []*model.Order{o, cand}
	}
	for _, batch := range backlog.Batches() {
		if len(batch) != 1 {
			continue
		}
		cand := batch[0]
		if cand.Partner != nil || cand.Planned || !e.combinable(o, cand) {
			continue
		}
		o.CombineWith(cand)
		backlog.Remove(batch)
		e.log.Debugf("combined order %s with backlog order %s", o.ID, cand.ID)
		return []*model.Order{o, cand}
	}
	return []*model.Order{o}
}

// combinable reports whether two orders fit one truck and share an endpoint.
func (e *Engine) combinable(a, b *model.Order) bool {
	if a.Total+b.Total > e.cfg.TruckCapacityRC {
		return false
	}
	return a.Origin == b.Origin || a.Destination == b.Destination
}
