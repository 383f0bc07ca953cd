package dispatch

import (
	"testing"
	"time"

	"github.com/flexfleet/flexdispatch/core/metrics"
	"github.com/flexfleet/flexdispatch/core/model"
	"github.com/flexfleet/flexdispatch/core/scoring"
	"github.com/flexfleet/flexdispatch/core/traveltime"
	"github.com/flexfleet/flexdispatch/infra/logger"
)

var (
	day     = time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	classes = model.Classifier{
		"ALR": model.ClassDepot,
		"TB":  model.ClassDepot,
		"XWW": model.ClassCross,
	}
)

func at(hour, min int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

// testMatrix is a small symmetric geometry around two depots and two
// crossdocks.
func testMatrix() *traveltime.Matrix {
	var records []traveltime.Record
	pairs := map[[2]model.Location]float64{
		{"ALR", "XWW"}: 90,
		{"ALR", "TL"}:  60,
		{"ALR", "TB"}:  45,
		{"TB", "XWW"}:  75,
		{"TB", "TL"}:   50,
		{"XWW", "TL"}:  40,
	}
	for pair, m := range pairs {
		records = append(records,
			traveltime.Record{From: pair[0], To: pair[1], Minutes: m},
			traveltime.Record{From: pair[1], To: pair[0], Minutes: m},
		)
	}
	return traveltime.New(records)
}

func testEngine(t *testing.T, sink metrics.Sink) *Engine {
	t.Helper()
	var cfg Config
	cfg.SetDefaults()
	scorer := scoring.NewScorer(scoring.DeadlineTable{}, scoring.Weights{BestCase: 1, Delayed: 1}, logger.NopLogger{})
	e, err := NewEngine(testMatrix(), scorer, cfg, logger.NopLogger{}, sink, nil)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return e
}

func order(t *testing.T, callTime time.Time, origin, dest model.Location, rc int) *model.Order {
	t.Helper()
	o, err := model.NewOrder(callTime, origin, dest, model.Quantities{A: rc}, classes)
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	return o
}

func truck(name string, base model.Location, startHour, endHour int) *model.Truck {
	tr := model.NewTruck(name, base, at(startHour, 0), at(endHour, 0), false, false)
	tr.StartShift()
	return tr
}

// fakeSource implements OrderSource over a fixed slice.
type fakeSource struct {
	orders  []*model.Order
	removed []*model.Order
}

func (f *fakeSource) PendingOrders(notAfter time.Time) []*model.Order {
	var out []*model.Order
	for _, o := range f.orders {
		if o.CallTime.After(notAfter) {
			break
		}
		out = append(out, o)
	}
	return out
}

func (f *fakeSource) RemoveOrder(o *model.Order) bool {
	for i, cand := range f.orders {
		if cand == o {
			f.orders = append(f.orders[:i], f.orders[i+1:]...)
			f.removed = append(f.removed, o)
			return true
		}
	}
	return false
}
