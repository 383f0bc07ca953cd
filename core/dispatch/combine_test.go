package dispatch

import (
	"testing"

	"github.com/flexfleet/flexdispatch/core/model"
	"github.com/flexfleet/flexdispatch/infra/logger"
)

func TestCombineWithQueuedOrderSameOrigin(t *testing.T) {
	e := testEngine(t, nil)
	backlog := NewBacklog(logger.NopLogger{})

	o := order(t, at(8, 0), "ALR", "XWW", 20)
	partner := order(t, at(8, 0), "ALR", "TL", 20)
	src := &fakeSource{orders: []*model.Order{partner}}

	batch := e.Combine(o, src, backlog)
	if len(batch) != 2 || batch[0] != o || batch[1] != partner {
		t.Fatalf("batch = %v, want [o, partner]", batch)
	}
	if o.Partner != partner || partner.Partner != o {
		t.Errorf("partner link not set")
	}
	if len(src.removed) != 1 || src.removed[0] != partner {
		t.Errorf("partner arrival event not removed")
	}
}

func TestCombineRespectsCapacity(t *testing.T) {
	e := testEngine(t, nil)
	backlog := NewBacklog(logger.NopLogger{})

	o := order(t, at(8, 0), "ALR", "XWW", 30)
	big := order(t, at(8, 0), "ALR", "TL", 19) // 30+19 > 48
	src := &fakeSource{orders: []*model.Order{big}}

	batch := e.Combine(o, src, backlog)
	if len(batch) != 1 {
		t.Fatalf("over-capacity pair must not combine")
	}
}

func TestCombineNeedsSharedEndpoint(t *testing.T) {
	e := testEngine(t, nil)
	backlog := NewBacklog(logger.NopLogger{})

	o := order(t, at(8, 0), "ALR", "XWW", 10)
	unrelated := order(t, at(8, 0), "TB", "TL", 10)
	src := &fakeSource{orders: []*model.Order{unrelated}}

	if batch := e.Combine(o, src, backlog); len(batch) != 1 {
		t.Fatalf("orders sharing no endpoint must not combine")
	}
}

func TestCombineSharedDestination(t *testing.T) {
	e := testEngine(t, nil)
	backlog := NewBacklog(logger.NopLogger{})

	o := order(t, at(8, 0), "ALR", "XWW", 10)
	dest := order(t, at(8, 0), "TB", "XWW", 10)
	src := &fakeSource{orders: []*model.Order{dest}}

	if batch := e.Combine(o, src, backlog); len(batch) != 2 {
		t.Fatalf("orders sharing a destination must combine")
	}
}

func TestCombineFallsBackToBacklog(t *testing.T) {
	e := testEngine(t, nil)
	backlog := NewBacklog(logger.NopLogger{})
	waiting := order(t, at(7, 0), "ALR", "TL", 15)
	backlog.Add([]*model.Order{waiting})

	o := order(t, at(8, 0), "ALR", "XWW", 15)
	batch := e.Combine(o, &fakeSource{}, backlog)
	if len(batch) != 2 || batch[1] != waiting {
		t.Fatalf("backlog single must be absorbed, got %v", batch)
	}
	if backlog.Len() != 0 {
		t.Errorf("absorbed batch must leave the backlog")
	}
}

func TestCombineSkipsPlannedAndPartnered(t *testing.T) {
	e := testEngine(t, nil)
	backlog := NewBacklog(logger.NopLogger{})

	planned := order(t, at(7, 0), "ALR", "TL", 10)
	planned.Planned = true
	partnered := order(t, at(7, 0), "ALR", "TL", 10)
	partnered.Partner = planned
	src := &fakeSource{orders: []*model.Order{planned, partnered}}

	o := order(t, at(8, 0), "ALR", "XWW", 10)
	if batch := e.Combine(o, src, backlog); len(batch) != 1 {
		t.Fatalf("planned or partnered orders must not combine, got %v", batch)
	}
}

func TestCombineQueuedBeatsBacklog(t *testing.T) {
	e := testEngine(t, nil)
	backlog := NewBacklog(logger.NopLogger{})

	inBacklog := order(t, at(7, 0), "ALR", "TL", 10)
	backlog.Add([]*model.Order{inBacklog})
	queued := order(t, at(8, 0), "ALR", "TL", 10)
	src := &fakeSource{orders: []*model.Order{queued}}

	o := order(t, at(8, 0), "ALR", "XWW", 10)
	batch := e.Combine(o, src, backlog)
	if len(batch) != 2 || batch[1] != queued {
		t.Fatalf("queued arrivals are scanned before the backlog, got %v", batch)
	}
	if backlog.Len() != 1 {
		t.Errorf("backlog entry must stay untouched")
	}
}
