package dispatch

import (
	"time"

	"github.com/flexfleet/flexdispatch/core/model"
)

// ShiftExtensionCandidates returns the active external trucks that could
// reach the pickup, deliver the batch and return to base before their shift
// end plus the configured extension allowance. Selection among the eligible
// trucks is left to the caller; eligibility is all that is decided here.
func (e *Engine) ShiftExtensionCandidates(trucks []*model.Truck, batch []*model.Order, now time.Time) ([]*model.Truck, error) {
	var eligible []*model.Truck
	for _, t := range trucks {
		if !t.Active() || !t.External {
			continue
		}
		start := now
		if t.Arrival != nil {
			start = *t.Arrival
		}
		total, err := e.extendedTripTime(t, batch)
		if err != nil {
			return nil, err
		}
		if start.Add(total).Before(t.End.Add(e.cfg.ShiftExtension())) {
			eligible = append(eligible, t)
		}
	}
	return eligible, nil
}

// extendedTripTime is the full pickup-deliver-return duration from the
// truck's current or pending position, loading overhead included.
func (e *Engine) extendedTripTime(t *model.Truck, batch []*model.Order) (time.Duration, error) {
	pickup := batch[0].Origin
	toPickup, err := e.matrix.Duration(t.Position(), pickup)
	if err != nil {
		return 0, err
	}
	if len(batch) == 1 {
		deliver, err := e.matrix.Duration(pickup, batch[0].Destination)
		if err != nil {
			return 0, err
		}
		back, err := e.matrix.Duration(batch[0].Destination, t.Base)
		if err != nil {
			return 0, err
		}
		return toPickup + deliver + back + e.loadingOverhead(1), nil
	}

	// Two combined orders: deliver to the nearer destination first.
	first, err := e.matrix.Duration(pickup, batch[0].Destination)
	if err != nil {
		return 0, err
	}
	second, err := e.matrix.Duration(pickup, batch[1].Destination)
	if err != nil {
		return 0, err
	}
	var deliver, back time.Duration
	if first < second {
		hop, err := e.matrix.Duration(batch[0].Destination, batch[1].Destination)
		if err != nil {
			return 0, err
		}
		back, err = e.matrix.Duration(batch[1].Destination, t.Base)
		if err != nil {
			return 0, err
		}
		deliver = first + hop
	} else {
		hop, err := e.matrix.Duration(batch[1].Destination, batch[0].Destination)
		if err != nil {
			return 0, err
		}
		back, err = e.matrix.Duration(batch[0].Destination, t.Base)
		if err != nil {
			return 0, err
		}
		deliver = first + hop
	}
	return toPickup + deliver + back + e.loadingOverhead(2), nil
}
