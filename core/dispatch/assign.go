package dispatch

import (
	"time"

	"github.com/flexfleet/flexdispatch/core/events"
	"github.com/flexfleet/flexdispatch/core/metrics"
	"github.com/flexfleet/flexdispatch/core/model"
	"github.com/flexfleet/flexdispatch/core/routing"
)

// SelectTruck scores every candidate truck against the batch and commits the
// best feasible one, returning it with its score. If force is non-nil the
// batch is bound to that truck unconditionally, shift-end feasibility
// ignored. A nil truck result means no truck could take the batch; the
// caller decides between backlog and shift extension.
func (e *Engine) SelectTruck(trucks []*model.Truck, batch []*model.Order, now time.Time, force *model.Truck) (*model.Truck, float64, error) {
	return e.selectTruck(trucks, batch, now, force, true)
}

func (e *Engine) selectTruck(trucks []*model.Truck, batch []*model.Order, now time.Time, force *model.Truck, record bool) (*model.Truck, float64, error) {
	if force != nil {
		route, err := routing.Best(force.Position(), force.Base, batch, e.matrix)
		if err != nil {
			return nil, 0, err
		}
		e.commit(force, batch, now, route)
		if record {
			e.record(force, batch, 0, 0, now, now, true)
		}
		return force, 0, nil
	}

	var best *model.Truck
	var bestRoute routing.Route
	var bestScore, bestOnTime float64
	var bestStart, bestEnd time.Time
	for _, t := range trucks {
		if t.Finished() {
			continue
		}
		if t.HomeBaseOnly && t.Base != batch[0].Origin {
			continue
		}
		start := e.startTimeFor(t, now)
		route, err := routing.Best(t.Position(), t.Base, batch, e.matrix)
		if err != nil {
			return nil, 0, err
		}
		if route.Total() <= 0 {
			continue
		}
		deliveryEnd := start.Add(e.loadingOverhead(len(batch))).Add(route.ToLastDrop())
		if !deliveryEnd.Before(t.End) {
			continue
		}
		loadingDone := start.Add(route.ToPickup())
		onTime, err := e.scorer.BatchOnTimeFraction(batch, loadingDone)
		if err != nil {
			return nil, 0, err
		}
		score := e.scorer.Efficiency(batchQuantity(batch), route.Total(), start.Sub(now)) * onTime
		if score > bestScore {
			best = t
			bestRoute = route
			bestScore = score
			bestOnTime = onTime
			bestStart = start
			bestEnd = deliveryEnd
		}
	}
	if best == nil {
		return nil, 0, nil
	}
	e.commit(best, batch, now, bestRoute)
	if record {
		e.record(best, batch, bestScore, bestOnTime, bestStart, bestEnd, false)
	}
	return best, bestScore, nil
}

// startTimeFor computes when the truck could begin the batch: the end of its
// committed chain when active, its shift start when still pending, otherwise
// now. A chain estimate that already lies in the past clamps to now.
func (e *Engine) startTimeFor(t *model.Truck, now time.Time) time.Time {
	if !t.Active() {
		return t.Start
	}
	if t.LastArrival != nil && t.LastArrival.After(now) {
		return *t.LastArrival
	}
	return now
}

// loadingOverhead is the dwell cost of one trip: full loading time for the
// first order and half for each combined one.
func (e *Engine) loadingOverhead(orders int) time.Duration {
	lt := e.cfg.LoadingTime()
	return lt + time.Duration(orders-1)*lt/2
}

// commit binds the batch to the truck: the batch joins the pending queue,
// the chained-arrival estimate advances by the route duration, the pending
// destination becomes the route's last stop and every order's pickup
// location becomes the actual pickup waypoint.
func (e *Engine) commit(t *model.Truck, batch []*model.Order, now time.Time, route routing.Route) {
	t.Queue = append(t.Queue, batch)
	var chainEnd time.Time
	if t.LastArrival != nil {
		chainEnd = t.LastArrival.Add(route.Total())
	} else {
		chainEnd = now.Add(route.Total())
	}
	t.LastArrival = &chainEnd
	t.Destination = route.Stops[len(route.Stops)-1]
	for _, o := range batch {
		o.PickupLoc = route.Pickup()
		o.Planned = true
	}
}

func (e *Engine) record(t *model.Truck, batch []*model.Order, score, onTime float64, start, end time.Time, forced bool) {
	ids := make([]string, len(batch))
	for i, o := range batch {
		ids[i] = o.ID.String()
	}
	res := metrics.AssignmentResult{
		Truck:       t.Name,
		Orders:      ids,
		Quantity:    batchQuantity(batch),
		Score:       score,
		OnTime:      onTime,
		Forced:      forced,
		Start:       start,
		DeliveryEnd: end,
	}
	if err := e.sink.RecordAssignment(res); err != nil {
		e.log.Warnf("record assignment: %v", err)
	}
	action := "selected"
	if forced {
		action = "forced"
	}
	e.publish(events.AssignmentEvent{Truck: t.Name, Orders: batch, Score: score, Action: action, Time: start})
	e.log.Infof("assigned %d order(s), %d RC to truck %s (score %.4f)", len(batch), res.Quantity, t.Name, score)
}

// AssignBacklog re-plans every unstarted batch. It evaluates the backlog in
// arrival order and in reverse, keeps the direction with the higher summed
// score and commits that direction. This is a two-permutation heuristic, not
// an exhaustive search.
func (e *Engine) AssignBacklog(trucks []*model.Truck, backlog *Backlog, now time.Time) error {
	batches := backlog.Batches()
	if len(batches) == 0 {
		return nil
	}
	reversed := make([][]*model.Order, len(batches))
	for i, b := range batches {
		reversed[len(batches)-1-i] = b
	}

	best := -1.0
	var bestSeq [][]*model.Order
	for _, seq := range [][][]*model.Order{batches, reversed} {
		releasePlanned(trucks)
		total, err := e.sweep(trucks, seq, now, false)
		if err != nil {
			return err
		}
		if total > best {
			best = total
			bestSeq = seq
		}
	}
	releasePlanned(trucks)
	if best <= 0 {
		return nil
	}
	_, err := e.sweep(trucks, bestSeq, now, true)
	return err
}

// sweep runs selection once per batch in sequence order and returns the
// summed score. Speculative sweeps skip sink and bus recording.
func (e *Engine) sweep(trucks []*model.Truck, seq [][]*model.Order, now time.Time, record bool) (float64, error) {
	total := 0.0
	for _, batch := range seq {
		if len(batch) == 0 || batch[0].Fulfilled {
			continue
		}
		_, score, err := e.selectTruck(trucks, batch, now, nil, record)
		if err != nil {
			return 0, err
		}
		total += score
	}
	return total, nil
}

// releasePlanned drops every batch a truck has accepted but not started and
// rewinds its chain estimate to the leg in progress, so a fresh planning
// pass evaluates against clean state.
func releasePlanned(trucks []*model.Truck) {
	for _, t := range trucks {
		for _, batch := range t.Queue {
			for _, o := range batch {
				o.Planned = false
				o.PickupLoc = o.Origin
			}
		}
		t.Queue = nil
		if t.Arrival != nil {
			a := *t.Arrival
			t.LastArrival = &a
		} else {
			t.LastArrival = nil
			t.Destination = ""
		}
	}
}

func batchQuantity(batch []*model.Order) int {
	n := 0
	for _, o := range batch {
		n += o.Total
	}
	return n
}
