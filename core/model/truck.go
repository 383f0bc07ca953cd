package model

import (
	"time"
)

// TruckStatus is the lifecycle state of a truck. Transitions only happen
// through the methods on Truck so that illegal states stay unrepresentable.
type TruckStatus int

const (
	// StatusPending means the shift has not started yet.
	StatusPending TruckStatus = iota
	// StatusIdle means the truck is on shift with no leg in progress.
	StatusIdle
	// StatusOccupied means the truck is executing a leg.
	StatusOccupied
	// StatusFinished means the shift has ended and the truck is home.
	StatusFinished
)

func (s TruckStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusIdle:
		return "idle"
	case StatusOccupied:
		return "occupied"
	case StatusFinished:
		return "finished"
	}
	return "unknown"
}

// Timeline actions.
const (
	ActionStart  = "Start"
	ActionLoad   = "Load"
	ActionUnload = "Unload"
	ActionReturn = "return to base"
)

// TimelineEntry records one stop of a truck's journey.
type TimelineEntry struct {
	Location Location  `json:"location"`
	Time     time.Time `json:"time"`
	Action   string    `json:"action"`
}

// Truck is a dispatchable flex resource. A truck is created once at roster
// load time and lives for the whole run; it is never deleted, only
// transitioned through its lifecycle.
type Truck struct {
	Name     string
	Base     Location
	Location Location
	// Destination is the planned final stop of the committed chain; empty
	// when nothing is planned.
	Destination Location
	Start       time.Time
	End         time.Time
	// External marks a chartered truck (eligible for shift extension).
	External bool
	// HomeBaseOnly restricts the truck to trips whose pickup equals its
	// base. The restriction is consumed by the first started trip.
	HomeBaseOnly bool
	Status       TruckStatus
	// Arrival is the expected arrival time of the leg in progress, nil when
	// no leg is running.
	Arrival *time.Time
	// LastArrival is the time the committed chain is expected to drain,
	// used to chain consecutive legs.
	LastArrival *time.Time
	// Queue holds order batches accepted but not yet started.
	Queue [][]*Order
	// Completed holds the batches this truck has started or finished.
	Completed [][]*Order
	// Timeline is the append-only journey record.
	Timeline []TimelineEntry
}

// NewTruck initialises a truck at its base with the opening timeline entry.
func NewTruck(name string, base Location, start, end time.Time, external, homeBaseOnly bool) *Truck {
	return &Truck{
		Name:         name,
		Base:         base,
		Location:     base,
		Start:        start,
		End:          end,
		External:     external,
		HomeBaseOnly: homeBaseOnly,
		Timeline:     []TimelineEntry{{Location: base, Time: start, Action: ActionStart}},
	}
}

// Active reports whether the truck is on shift.
func (t *Truck) Active() bool { return t.Status == StatusIdle || t.Status == StatusOccupied }

// Occupied reports whether the truck is executing a leg. The flag is true
// iff the truck has a non-nil arrival time.
func (t *Truck) Occupied() bool { return t.Status == StatusOccupied }

// Finished reports whether the shift has ended.
func (t *Truck) Finished() bool { return t.Status == StatusFinished }

// Position is where route planning starts: the pending destination when a
// chain is committed, otherwise the current location. This lets a
// still-moving truck be pre-booked for its next leg.
func (t *Truck) Position() Location {
	if t.Arrival != nil && t.Destination != "" {
		return t.Destination
	}
	return t.Location
}

// StartShift moves the truck from pending to idle.
func (t *Truck) StartShift() {
	if t.Status != StatusPending {
		return
	}
	t.Status = StatusIdle
}

// BeginLeg marks the truck occupied until arrival at dest.
func (t *Truck) BeginLeg(dest Location, arrival time.Time) {
	a := arrival
	t.Destination = dest
	t.Arrival = &a
	t.Status = StatusOccupied
}

// CompleteLeg places the truck at its arrival stop and clears the leg
// bookkeeping, returning it to idle.
func (t *Truck) CompleteLeg(at Location) {
	t.Location = at
	t.Destination = ""
	t.Arrival = nil
	t.Status = StatusIdle
}

// FinishShift sends the truck home, ending its shift. arrivedHome is the
// time the truck reaches its base.
func (t *Truck) FinishShift(arrivedHome time.Time) {
	t.Location = t.Base
	t.Destination = ""
	t.Arrival = nil
	t.Status = StatusFinished
	t.Record(t.Base, arrivedHome, ActionReturn)
}

// Record appends an entry to the truck's timeline.
func (t *Truck) Record(loc Location, at time.Time, action string) {
	t.Timeline = append(t.Timeline, TimelineEntry{Location: loc, Time: at, Action: action})
}
