package dispatch

import (
	"testing"

	"github.com/flexfleet/flexdispatch/core/metrics"
	"github.com/flexfleet/flexdispatch/core/model"
	"github.com/flexfleet/flexdispatch/infra/logger"
)

func TestSelectTruckCommitsBestCandidate(t *testing.T) {
	collector := metrics.NewCollector()
	e := testEngine(t, collector)
	tr := truck("ALR1", "ALR", 8, 16)
	batch := []*model.Order{order(t, at(8, 0), "ALR", "XWW", 24)}

	got, score, err := e.SelectTruck([]*model.Truck{tr}, batch, at(8, 0), nil)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if got != tr {
		t.Fatalf("truck not selected")
	}
	if score <= 0 {
		t.Errorf("score = %f, want positive", score)
	}
	if len(tr.Queue) != 1 || tr.Queue[0][0] != batch[0] {
		t.Fatalf("batch not committed to the queue")
	}
	// Route ALR -> ALR -> XWW -> ALR is 180m; chain estimate lands at 11:00.
	if tr.LastArrival == nil || !tr.LastArrival.Equal(at(11, 0)) {
		t.Errorf("chain estimate = %v, want 11:00", tr.LastArrival)
	}
	if !batch[0].Planned || batch[0].PickupLoc != "ALR" {
		t.Errorf("order not marked planned at its pickup")
	}

	results := collector.Assignments()
	if len(results) != 1 {
		t.Fatalf("recorded %d results, want 1", len(results))
	}
	res := results[0]
	if res.Truck != "ALR1" || res.Quantity != 24 || res.Forced {
		t.Errorf("unexpected result %+v", res)
	}
	if !res.Start.Equal(at(8, 0)) {
		t.Errorf("start = %v, want 08:00", res.Start)
	}
	// Delivery ends at start + 20m loading + 90m to the drop.
	if !res.DeliveryEnd.Equal(at(9, 50)) {
		t.Errorf("delivery end = %v, want 09:50", res.DeliveryEnd)
	}
}

func TestSelectTruckPrefersShorterRoute(t *testing.T) {
	e := testEngine(t, nil)
	near := truck("ALR1", "ALR", 8, 16)
	far := truck("TB1", "TB", 8, 16)
	batch := []*model.Order{order(t, at(8, 0), "ALR", "XWW", 24)}

	got, _, err := e.SelectTruck([]*model.Truck{far, near}, batch, at(8, 0), nil)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if got != near {
		t.Fatalf("selected %s, want the truck based at the pickup", got.Name)
	}
}

func TestSelectTruckSkipsRestrictedTruckAwayFromBase(t *testing.T) {
	e := testEngine(t, nil)
	restricted := model.NewTruck("TB1", "TB", at(8, 0), at(16, 0), false, true)
	restricted.StartShift()
	batch := []*model.Order{order(t, at(8, 0), "ALR", "XWW", 24)}

	got, _, err := e.SelectTruck([]*model.Truck{restricted}, batch, at(8, 0), nil)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if got != nil {
		t.Fatalf("restricted truck must not pick up away from its base")
	}

	atHome := model.NewTruck("ALR9", "ALR", at(8, 0), at(16, 0), false, true)
	atHome.StartShift()
	got, _, err = e.SelectTruck([]*model.Truck{restricted, atHome}, batch, at(8, 0), nil)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if got != atHome {
		t.Fatalf("restricted truck at its base must remain eligible")
	}
}

func TestSelectTruckRespectsShiftEnd(t *testing.T) {
	e := testEngine(t, nil)
	tr := truck("ALR1", "ALR", 8, 9) // delivery would end 09:50
	batch := []*model.Order{order(t, at(8, 0), "ALR", "XWW", 24)}

	got, _, err := e.SelectTruck([]*model.Truck{tr}, batch, at(8, 0), nil)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if got != nil {
		t.Fatalf("infeasible truck selected")
	}
	if len(tr.Queue) != 0 || batch[0].Planned {
		t.Errorf("non-selection must leave no state behind")
	}
}

func TestSelectTruckForceIgnoresShiftEnd(t *testing.T) {
	collector := metrics.NewCollector()
	e := testEngine(t, collector)
	tr := truck("ALR1", "ALR", 8, 9)
	batch := []*model.Order{order(t, at(8, 0), "ALR", "XWW", 24)}

	got, score, err := e.SelectTruck([]*model.Truck{tr}, batch, at(8, 0), tr)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if got != tr || score != 0 {
		t.Fatalf("forced selection must return the truck with zero score")
	}
	if len(tr.Queue) != 1 {
		t.Fatalf("forced batch not committed")
	}
	results := collector.Assignments()
	if len(results) != 1 || !results[0].Forced {
		t.Fatalf("forced assignment not recorded, got %v", results)
	}
}

func TestSelectTruckChainsBehindRunningTrip(t *testing.T) {
	collector := metrics.NewCollector()
	e := testEngine(t, collector)
	tr := truck("ALR1", "ALR", 8, 16)
	tr.BeginLeg("XWW", at(9, 30))
	chain := at(10, 0)
	tr.LastArrival = &chain

	// Route plans from the pending destination XWW.
	batch := []*model.Order{order(t, at(8, 0), "XWW", "TL", 20)}
	got, _, err := e.SelectTruck([]*model.Truck{tr}, batch, at(8, 0), nil)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if got != tr {
		t.Fatalf("occupied truck must be bookable for its next leg")
	}
	res := collector.Assignments()[0]
	if !res.Start.Equal(at(10, 0)) {
		t.Errorf("start = %v, want the chain drain time 10:00", res.Start)
	}
	// XWW -> XWW -> TL -> ALR is 100m on top of the chain estimate.
	if tr.LastArrival == nil || !tr.LastArrival.Equal(at(11, 40)) {
		t.Errorf("chain estimate = %v, want 11:40", tr.LastArrival)
	}
}

func TestSelectTruckClampsStaleChainEstimate(t *testing.T) {
	collector := metrics.NewCollector()
	e := testEngine(t, collector)
	tr := truck("ALR1", "ALR", 8, 16)
	stale := at(8, 30)
	tr.LastArrival = &stale

	batch := []*model.Order{order(t, at(9, 0), "ALR", "XWW", 24)}
	_, _, err := e.SelectTruck([]*model.Truck{tr}, batch, at(9, 0), nil)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if !collector.Assignments()[0].Start.Equal(at(9, 0)) {
		t.Errorf("stale chain estimate must clamp the start to now")
	}
}

func TestAssignBacklogKeepsBetterDirection(t *testing.T) {
	collector := metrics.NewCollector()
	e := testEngine(t, collector)
	// Shift ends at 10:00: only the first batch of either direction fits.
	tr := truck("ALR1", "ALR", 8, 10)

	small := []*model.Order{order(t, at(7, 0), "ALR", "TL", 10)}
	big := []*model.Order{order(t, at(7, 30), "ALR", "TL", 40)}
	backlog := NewBacklog(logger.NopLogger{})
	backlog.Add(small)
	backlog.Add(big)

	if err := e.AssignBacklog([]*model.Truck{tr}, backlog, at(8, 0)); err != nil {
		t.Fatalf("assign backlog: %v", err)
	}
	// The reversed direction places the 40 RC batch and scores higher.
	if !big[0].Planned {
		t.Fatalf("high-volume batch not planned")
	}
	if small[0].Planned {
		t.Fatalf("infeasible leftover batch must stay unplanned")
	}
	if len(tr.Queue) != 1 || tr.Queue[0][0] != big[0] {
		t.Fatalf("queue = %v, want the big batch only", tr.Queue)
	}
	// Speculative sweeps must not record; only the final commit does.
	results := collector.Assignments()
	if len(results) != 1 || results[0].Quantity != 40 {
		t.Fatalf("recorded %v, want exactly the final commitment", results)
	}
}

func TestAssignBacklogNoFeasibleTruckLeavesStateClean(t *testing.T) {
	collector := metrics.NewCollector()
	e := testEngine(t, collector)
	tr := truck("ALR1", "ALR", 8, 8) // zero-length shift, nothing fits

	backlog := NewBacklog(logger.NopLogger{})
	backlog.Add([]*model.Order{order(t, at(7, 0), "ALR", "TL", 10)})

	if err := e.AssignBacklog([]*model.Truck{tr}, backlog, at(8, 0)); err != nil {
		t.Fatalf("assign backlog: %v", err)
	}
	if len(tr.Queue) != 0 || tr.LastArrival != nil {
		t.Fatalf("speculative state leaked onto the truck")
	}
	if len(collector.Assignments()) != 0 {
		t.Fatalf("nothing should be recorded")
	}
	if backlog.Len() != 1 {
		t.Fatalf("batch must stay in the backlog")
	}
}

func TestAssignBacklogSkipsFulfilledBatches(t *testing.T) {
	e := testEngine(t, nil)
	tr := truck("ALR1", "ALR", 8, 16)

	done := order(t, at(7, 0), "ALR", "TL", 10)
	done.Fulfilled = true
	backlog := NewBacklog(logger.NopLogger{})
	backlog.Add([]*model.Order{done})

	if err := e.AssignBacklog([]*model.Truck{tr}, backlog, at(8, 0)); err != nil {
		t.Fatalf("assign backlog: %v", err)
	}
	if len(tr.Queue) != 0 {
		t.Fatalf("fulfilled batch must not be re-planned")
	}
}

// Ensures commits during speculative sweeps are fully rewound, Destination
// included.
func TestReleasePlannedRewindsChainState(t *testing.T) {
	tr := truck("ALR1", "ALR", 8, 16)
	o := &model.Order{Planned: true, PickupLoc: "XWW", Origin: "ALR"}
	tr.Queue = [][]*model.Order{{o}}
	la := at(11, 0)
	tr.LastArrival = &la
	tr.Destination = "ALR"

	releasePlanned([]*model.Truck{tr})
	if tr.Queue != nil || tr.LastArrival != nil || tr.Destination != "" {
		t.Fatalf("idle truck state not rewound: %+v", tr)
	}
	if o.Planned || o.PickupLoc != "ALR" {
		t.Fatalf("order state not rewound: %+v", o)
	}

	// A truck with a leg in progress keeps a chain estimate at its arrival.
	busy := truck("TB1", "TB", 8, 16)
	busy.BeginLeg("XWW", at(9, 0))
	far := at(12, 0)
	busy.LastArrival = &far
	releasePlanned([]*model.Truck{busy})
	if busy.LastArrival == nil || !busy.LastArrival.Equal(at(9, 0)) {
		t.Fatalf("chain estimate must rewind to the running leg's arrival")
	}
	if busy.Destination != "XWW" {
		t.Fatalf("running leg destination must survive the rewind")
	}
}
