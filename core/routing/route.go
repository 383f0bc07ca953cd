// Package routing enumerates the legal stop orderings for a trip of one or
// two orders and picks the minimum-duration one.
package routing

import (
	"time"

	"github.com/flexfleet/flexdispatch/core/model"
	"github.com/flexfleet/flexdispatch/core/traveltime"
)

// Route is a chosen trajectory with prefix-summed travel times. Elapsed[i]
// is the driving time from the start up to Stops[i], excluding any dwell.
type Route struct {
	Stops   []model.Location
	Elapsed []time.Duration
}

// Total is the driving time over the whole trajectory, return leg included.
func (r Route) Total() time.Duration { return r.Elapsed[len(r.Elapsed)-1] }

// Pickup is the first waypoint after the start, where loading happens.
func (r Route) Pickup() model.Location { return r.Stops[1] }

// ToPickup is the driving time to the pickup stop.
func (r Route) ToPickup() time.Duration { return r.Elapsed[1] }

// LastDrop is the final delivery stop, before the return to base.
func (r Route) LastDrop() model.Location { return r.Stops[len(r.Stops)-2] }

// ToLastDrop is the driving time to the final delivery stop.
func (r Route) ToLastDrop() time.Duration { return r.Elapsed[len(r.Elapsed)-2] }

// Best returns the minimum-duration trajectory for the truck position and
// batch. For a single order there is one candidate; for two combined orders
// there are exactly two, and on equal duration the first enumerated
// candidate wins.
func Best(start, base model.Location, batch []*model.Order, m *traveltime.Matrix) (Route, error) {
	var best Route
	found := false
	for _, stops := range candidates(start, base, batch) {
		elapsed, err := prefixTimes(stops, m)
		if err != nil {
			return Route{}, err
		}
		if !found || elapsed[len(elapsed)-1] < best.Total() {
			best = Route{Stops: stops, Elapsed: elapsed}
			found = true
		}
	}
	return best, nil
}

func candidates(start, base model.Location, batch []*model.Order) [][]model.Location {
	switch {
	case len(batch) == 1:
		o := batch[0]
		return [][]model.Location{{start, o.Origin, o.Destination, base}}
	case batch[0].Origin == batch[1].Origin:
		a, b := batch[0], batch[1]
		return [][]model.Location{
			{start, a.Origin, a.Destination, b.Destination, base},
			{start, a.Origin, b.Destination, a.Destination, base},
		}
	default:
		a, b := batch[0], batch[1]
		return [][]model.Location{
			{start, a.Origin, b.Origin, b.Destination, base},
			{start, b.Origin, a.Origin, a.Destination, base},
		}
	}
}

func prefixTimes(stops []model.Location, m *traveltime.Matrix) ([]time.Duration, error) {
	elapsed := make([]time.Duration, len(stops))
	for i := 1; i < len(stops); i++ {
		leg, err := m.Duration(stops[i-1], stops[i])
		if err != nil {
			return nil, err
		}
		elapsed[i] = elapsed[i-1] + leg
	}
	return elapsed, nil
}
