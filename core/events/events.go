// Package events defines the progress notifications published on the event
// bus while a dispatch run executes.
package events

import (
	"time"

	"github.com/flexfleet/flexdispatch/core/model"
)

// AssignmentEvent is emitted when a batch is committed to a truck. Action is
// "selected", "forced" or "extended".
type AssignmentEvent struct {
	Truck  string
	Orders []*model.Order
	Score  float64
	Action string
	Time   time.Time
}

// BacklogEvent is emitted when a batch enters or leaves the unfulfilled
// backlog. Action is "queued" or "started".
type BacklogEvent struct {
	Orders []*model.Order
	Action string
	Time   time.Time
}

// ShiftEvent is emitted on truck lifecycle transitions. Action is "start" or
// "finish".
type ShiftEvent struct {
	Truck  string
	Action string
	Time   time.Time
}
