// Package scoring estimates how much of a shortfall would be delivered on
// time and how efficiently a truck would spend its shift doing it.
package scoring

import (
	"errors"
	"fmt"
	"time"

	"github.com/flexfleet/flexdispatch/core/logger"
	"github.com/flexfleet/flexdispatch/core/model"
)

// ErrZeroQuantity is returned when an on-time fraction is requested for an
// empty order. The order invariant precludes this; failing fast here keeps a
// divide by zero out of the score.
var ErrZeroQuantity = errors.New("scoring: order has zero total quantity")

// Weights combines the best-case and delay-adjusted throughput terms of the
// efficiency score. Both are configured independently.
type Weights struct {
	BestCase float64
	Delayed  float64
}

// Scorer evaluates candidate assignments against the configured deadline
// table.
type Scorer struct {
	deadlines DeadlineTable
	weights   Weights
	log       logger.Logger
}

// NewScorer returns a scorer over the given deadline table.
func NewScorer(deadlines DeadlineTable, w Weights, log logger.Logger) *Scorer {
	return &Scorer{deadlines: deadlines, weights: w, log: log}
}

// OnTimeFraction estimates the fraction of rollcages delivered before their
// configured final-departure deadline when delivery ends at deliveryEnd. A
// class with no configured deadline counts as on time; that is a heuristic
// default, logged as a data-quality signal rather than an error.
func (s *Scorer) OnTimeFraction(origin, destination model.Location, q model.Quantities, inter bool, deliveryEnd time.Time) (float64, error) {
	total := q.Total()
	if total == 0 {
		return 0, fmt.Errorf("%w: %s -> %s", ErrZeroQuantity, origin, destination)
	}
	counts := q.ByPriority()
	onTime := 0
	for i, prio := range model.Priorities {
		deadline, ok := s.deadlines.Lookup(origin, destination, prio, inter)
		if !ok {
			s.log.Debugf("no final departure deadline for %s->%s prio %s (inter=%t), class counted on time", origin, destination, prio, inter)
			onTime += counts[i]
			continue
		}
		if deadline.After(deliveryEnd) {
			onTime += counts[i]
		}
	}
	return float64(onTime) / float64(total), nil
}

// BatchOnTimeFraction returns the quantity-weighted on-time fraction across
// the orders of one trip. The batch is judged against the trip's first
// pickup and last drop, the way the chained route actually runs.
func (s *Scorer) BatchOnTimeFraction(batch []*model.Order, deliveryEnd time.Time) (float64, error) {
	if len(batch) == 0 {
		return 0, ErrZeroQuantity
	}
	origin := batch[0].Origin
	destination := batch[len(batch)-1].Destination
	var weighted float64
	var n int
	for _, o := range batch {
		frac, err := s.OnTimeFraction(origin, destination, o.Quantities, o.Inter, deliveryEnd)
		if err != nil {
			return 0, err
		}
		weighted += float64(o.Total) * frac
		n += o.Total
	}
	if n == 0 {
		return 0, ErrZeroQuantity
	}
	return weighted / float64(n), nil
}

// Efficiency scores a candidate trip as rollcages moved per second, blending
// a best-case term over the ideal travel time with a delay-adjusted term
// that also counts the wait before the truck can start. Zero or negative
// travel time yields a zero score; route selection guarantees at least one
// leg, so this only guards degenerate input.
func (s *Scorer) Efficiency(quantity int, idealTravel, startDelay time.Duration) float64 {
	if idealTravel <= 0 {
		return 0
	}
	if startDelay < 0 {
		startDelay = 0
	}
	best := float64(quantity) / idealTravel.Seconds()
	delayed := float64(quantity) / (idealTravel + startDelay).Seconds()
	return s.weights.BestCase*best + s.weights.Delayed*delayed
}
