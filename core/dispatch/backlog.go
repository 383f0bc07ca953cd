package dispatch

import (
	"github.com/flexfleet/flexdispatch/core/logger"
	"github.com/flexfleet/flexdispatch/core/model"
)

// Backlog holds the order batches no truck has started yet, in arrival
// order. A batch stays in the backlog even after it has been committed to a
// truck's pending queue; it only leaves when the trip actually starts, so a
// later re-planning pass can still move it to a better truck.
type Backlog struct {
	batches [][]*model.Order
	log     logger.Logger
}

// NewBacklog returns an empty backlog.
func NewBacklog(log logger.Logger) *Backlog {
	return &Backlog{log: log}
}

// Add appends a batch.
func (b *Backlog) Add(batch []*model.Order) {
	b.batches = append(b.batches, batch)
}

// Remove deletes the batch holding the same lead order. Removing a batch
// that is no longer present is expected when combination and assignment race
// over the same entry within one event; it is logged and treated as a no-op.
func (b *Backlog) Remove(batch []*model.Order) {
	if len(batch) == 0 {
		return
	}
	for i, cand := range b.batches {
		if cand[0] == batch[0] {
			b.batches = append(b.batches[:i], b.batches[i+1:]...)
			return
		}
	}
	b.log.Debugf("batch led by order %s already removed from backlog", batch[0].ID)
}

// Batches returns a snapshot of the backlog in order.
func (b *Backlog) Batches() [][]*model.Order {
	out := make([][]*model.Order, len(b.batches))
	copy(out, b.batches)
	return out
}

// Len returns the number of batches held.
func (b *Backlog) Len() int { return len(b.batches) }
