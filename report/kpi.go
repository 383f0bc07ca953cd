package report

import (
	"encoding/json"
	"io"

	"gonum.org/v1/gonum/stat"

	"github.com/flexfleet/flexdispatch/core/model"
)

// KPIs are the headline figures for one dispatch run.
type KPIs struct {
	FulfillmentRate float64 `json:"fulfillment_rate"`
	OrdersFulfilled int     `json:"orders_fulfilled"`
	OrdersBacklog   int     `json:"orders_backlog"`
	RollcagesMoved  int     `json:"rollcages_moved"`
	// Batch quantity distribution over started trips.
	MeanBatchQuantity   float64 `json:"mean_batch_quantity"`
	StddevBatchQuantity float64 `json:"stddev_batch_quantity"`
	// Share of rostered trucks that ran at least one trip.
	TruckUtilization float64 `json:"truck_utilization"`
	MeanTripsPerUsed float64 `json:"mean_trips_per_used_truck"`
	// Mean time between call-in and trip start over fulfilled orders.
	MeanResponseMinutes float64 `json:"mean_response_minutes"`
}

// ComputeKPIs derives run figures from the fulfilled batches, the remaining
// backlog and the roster.
func ComputeKPIs(fulfilled, backlog [][]*model.Order, trucks []*model.Truck) KPIs {
	var k KPIs

	byName := make(map[string]*model.Truck, len(trucks))
	for _, t := range trucks {
		byName[t.Name] = t
	}

	var quantities []float64
	var responses []float64
	for _, batch := range fulfilled {
		batchTotal := 0
		for _, o := range batch {
			k.OrdersFulfilled++
			batchTotal += o.Total
			k.RollcagesMoved += o.Total
			if m, ok := responseMinutes(o, byName[o.SolvedBy]); ok {
				responses = append(responses, m)
			}
		}
		quantities = append(quantities, float64(batchTotal))
	}
	for _, batch := range backlog {
		k.OrdersBacklog += len(batch)
	}
	if total := k.OrdersFulfilled + k.OrdersBacklog; total > 0 {
		k.FulfillmentRate = float64(k.OrdersFulfilled) / float64(total)
	}
	if len(quantities) > 0 {
		k.MeanBatchQuantity = stat.Mean(quantities, nil)
		k.StddevBatchQuantity = stat.StdDev(quantities, nil)
	}
	if len(responses) > 0 {
		k.MeanResponseMinutes = stat.Mean(responses, nil)
	}

	used := 0
	var trips []float64
	for _, t := range trucks {
		if n := len(t.Completed); n > 0 {
			used++
			trips = append(trips, float64(n))
		}
	}
	if len(trucks) > 0 {
		k.TruckUtilization = float64(used) / float64(len(trucks))
	}
	if len(trips) > 0 {
		k.MeanTripsPerUsed = stat.Mean(trips, nil)
	}
	return k
}

// WriteKPIs writes the run figures to w in JSON format.
func WriteKPIs(w io.Writer, k KPIs) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(k)
}

// responseMinutes measures call-in to pickup using the solving truck's
// timeline. The pickup is the first loading stop at the order origin at or
// after the call time.
func responseMinutes(o *model.Order, t *model.Truck) (float64, bool) {
	if t == nil {
		return 0, false
	}
	for _, e := range t.Timeline {
		if e.Action == model.ActionLoad && e.Location == o.PickupLoc && !e.Time.Before(o.CallTime) {
			return e.Time.Sub(o.CallTime).Minutes(), true
		}
	}
	return 0, false
}
