// Package sim drives the discrete-event dispatch run: a stable time-ordered
// event queue and the single-threaded loop that owns every truck and order
// state transition.
package sim

import (
	"time"

	"github.com/flexfleet/flexdispatch/core/model"
)

// Event is one timestamped occurrence in the simulated day. The loop
// dispatches on the concrete variant.
type Event interface {
	When() time.Time
}

// OrderArrival fires when a shortfall order is called in.
type OrderArrival struct {
	Order *model.Order
}

func (e OrderArrival) When() time.Time { return e.Order.CallTime }

// ShiftStart fires when a truck comes on shift.
type ShiftStart struct {
	Truck *model.Truck
}

func (e ShiftStart) When() time.Time { return e.Truck.Start }

// Arrival fires when a truck reaches the final drop of its running trip.
type Arrival struct {
	Time     time.Time
	Truck    *model.Truck
	Location model.Location
}

func (e Arrival) When() time.Time { return e.Time }

// ReturnDeadline fires at the last moment a truck can leave for base and
// still be home by shift end.
type ReturnDeadline struct {
	Time  time.Time
	Truck *model.Truck
}

func (e ReturnDeadline) When() time.Time { return e.Time }
