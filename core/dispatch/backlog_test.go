package dispatch

import (
	"testing"

	"github.com/flexfleet/flexdispatch/core/model"
	"github.com/flexfleet/flexdispatch/infra/logger"
)

func TestBacklogKeepsArrivalOrder(t *testing.T) {
	b := NewBacklog(logger.NopLogger{})
	first := []*model.Order{order(t, at(8, 0), "ALR", "XWW", 10)}
	second := []*model.Order{order(t, at(9, 0), "TB", "TL", 10)}
	b.Add(first)
	b.Add(second)

	got := b.Batches()
	if len(got) != 2 || got[0][0] != first[0] || got[1][0] != second[0] {
		t.Fatalf("batches out of order: %v", got)
	}
}

func TestBacklogRemoveByLeadOrder(t *testing.T) {
	b := NewBacklog(logger.NopLogger{})
	batch := []*model.Order{
		order(t, at(8, 0), "ALR", "XWW", 10),
		order(t, at(8, 0), "ALR", "TL", 10),
	}
	b.Add(batch)
	b.Remove(batch)
	if b.Len() != 0 {
		t.Fatalf("batch not removed")
	}
	// Removing again is a tolerated no-op.
	b.Remove(batch)
	if b.Len() != 0 {
		t.Fatalf("duplicate removal must not alter the backlog")
	}
}

func TestBacklogBatchesIsSnapshot(t *testing.T) {
	b := NewBacklog(logger.NopLogger{})
	batch := []*model.Order{order(t, at(8, 0), "ALR", "XWW", 10)}
	b.Add(batch)
	snap := b.Batches()
	b.Remove(batch)
	if len(snap) != 1 {
		t.Fatalf("snapshot must survive later removals")
	}
}
