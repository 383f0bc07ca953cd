package scoring

import (
	"time"

	"github.com/flexfleet/flexdispatch/core/model"
)

// DeadlineKey identifies one configured final-departure deadline.
type DeadlineKey struct {
	Origin      model.Location
	Destination model.Location
	Priority    model.Priority
	Inter       bool
}

// DeadlineTable maps (origin, destination, priority, transport type) to the
// final-departure deadline for that class. Loaded once per run.
type DeadlineTable map[DeadlineKey]time.Time

// Lookup returns the configured deadline for the tuple, if any.
func (t DeadlineTable) Lookup(origin, destination model.Location, prio model.Priority, inter bool) (time.Time, bool) {
	d, ok := t[DeadlineKey{Origin: origin, Destination: destination, Priority: prio, Inter: inter}]
	return d, ok
}
