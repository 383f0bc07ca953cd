package sim

import (
	"fmt"
	"time"

	"github.com/flexfleet/flexdispatch/core/dispatch"
	"github.com/flexfleet/flexdispatch/core/events"
	"github.com/flexfleet/flexdispatch/core/logger"
	"github.com/flexfleet/flexdispatch/core/model"
	"github.com/flexfleet/flexdispatch/core/routing"
	"github.com/flexfleet/flexdispatch/internal/eventbus"
)

// Simulator is the event loop over one operating day. All truck, order,
// backlog and queue state is owned here and mutated strictly sequentially:
// one event is processed to completion before the next is considered.
type Simulator struct {
	engine    *dispatch.Engine
	queue     *EventQueue
	trucks    []*model.Truck
	backlog   *dispatch.Backlog
	fulfilled [][]*model.Order
	log       logger.Logger
	bus       eventbus.EventBus
	now       time.Time
}

// New seeds the event queue with the day's order arrivals, one shift start
// per truck and each truck's initial return deadline.
func New(engine *dispatch.Engine, trucks []*model.Truck, orders []*model.Order, log logger.Logger, bus eventbus.EventBus) (*Simulator, error) {
	if engine == nil || log == nil {
		return nil, fmt.Errorf("sim: nil parameter provided to New")
	}
	s := &Simulator{
		engine:  engine,
		queue:   NewEventQueue(),
		trucks:  trucks,
		backlog: dispatch.NewBacklog(log),
		log:     log,
		bus:     bus,
	}
	for _, o := range orders {
		s.queue.Push(OrderArrival{Order: o})
	}
	for _, t := range trucks {
		s.queue.Push(ShiftStart{Truck: t})
		home, err := engine.Matrix().Duration(t.Location, t.Base)
		if err != nil {
			return nil, fmt.Errorf("seed return deadline for %s: %w", t.Name, err)
		}
		s.queue.Push(ReturnDeadline{Time: t.End.Add(-home), Truck: t})
	}
	return s, nil
}

// Run drains the event queue. It returns the first configuration error
// encountered; a missing travel-time entry aborts the run.
func (s *Simulator) Run() error {
	for s.queue.Len() > 0 {
		ev := s.queue.Pop()
		if ev.When().After(s.now) {
			s.now = ev.When()
		}
		var err error
		switch e := ev.(type) {
		case OrderArrival:
			err = s.handleOrder(e.Order)
		case ShiftStart:
			err = s.handleShiftStart(e.Truck)
		case Arrival:
			err = s.handleArrival(e)
		case ReturnDeadline:
			err = s.handleReturnDeadline(e)
		default:
			err = fmt.Errorf("sim: unknown event %T", ev)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Fulfilled returns the started batches in start order.
func (s *Simulator) Fulfilled() [][]*model.Order { return s.fulfilled }

// Unfulfilled returns the batches still in the backlog.
func (s *Simulator) Unfulfilled() [][]*model.Order { return s.backlog.Batches() }

// Trucks returns the fleet registry.
func (s *Simulator) Trucks() []*model.Truck { return s.trucks }

// Now returns the simulation clock.
func (s *Simulator) Now() time.Time { return s.now }

func (s *Simulator) publish(ev eventbus.Event) {
	if s.bus != nil {
		s.bus.Publish(ev)
	}
}

// handleOrder combines the arrival with a pending partner if possible, files
// the batch in the backlog and tries to place it. With no feasible truck the
// batch is escalated to shift-extension evaluation; failing that it waits in
// the backlog for the next shift start or idle truck.
func (s *Simulator) handleOrder(o *model.Order) error {
	batch := s.engine.Combine(o, s.queue, s.backlog)
	s.backlog.Add(batch)
	s.publish(events.BacklogEvent{Orders: batch, Action: "queued", Time: s.now})

	truck, _, err := s.engine.SelectTruck(s.trucks, batch, s.now, nil)
	if err != nil {
		return err
	}
	if truck == nil {
		eligible, err := s.engine.ShiftExtensionCandidates(s.trucks, batch, s.now)
		if err != nil {
			return err
		}
		if len(eligible) > 0 {
			if _, _, err := s.engine.SelectTruck(s.trucks, batch, s.now, eligible[0]); err != nil {
				return err
			}
			s.log.Infof("order %s bound to external truck %s under shift extension", o.ID, eligible[0].Name)
		} else {
			s.log.Infof("no feasible truck for order %s, kept in backlog", o.ID)
		}
	}
	return s.startIdle()
}

// handleShiftStart activates the truck and re-plans the backlog against the
// enlarged fleet.
func (s *Simulator) handleShiftStart(t *model.Truck) error {
	t.StartShift()
	s.publish(events.ShiftEvent{Truck: t.Name, Action: "start", Time: s.now})
	s.log.Debugf("truck %s on shift at %s", t.Name, s.now.Format("15:04"))
	if err := s.engine.AssignBacklog(s.trucks, s.backlog, s.now); err != nil {
		return err
	}
	return s.startIdle()
}

// handleArrival completes the running trip. With more batches queued the
// truck rolls straight into the next one; otherwise it goes idle and gets a
// fresh return deadline, and the backlog is re-planned now that a truck
// freed up.
func (s *Simulator) handleArrival(ev Arrival) error {
	t := ev.Truck
	t.CompleteLeg(ev.Location)
	if len(t.Queue) > 0 {
		return s.startNextBatch(t)
	}
	if err := s.scheduleReturn(t); err != nil {
		return err
	}
	if err := s.engine.AssignBacklog(s.trucks, s.backlog, s.now); err != nil {
		return err
	}
	return s.startIdle()
}

// handleReturnDeadline ends the shift unless the trigger is stale. Batches
// the truck accepted but never started stay in the backlog for other trucks.
func (s *Simulator) handleReturnDeadline(ev ReturnDeadline) error {
	t := ev.Truck
	if t.Finished() || t.Occupied() || !t.Active() {
		s.log.Debugf("stale return deadline for truck %s ignored", t.Name)
		return nil
	}
	if len(t.Queue) > 0 {
		s.log.Warnf("truck %s ends shift with %d unstarted batch(es), released to backlog", t.Name, len(t.Queue))
		for _, batch := range t.Queue {
			for _, o := range batch {
				o.Planned = false
				o.PickupLoc = o.Origin
			}
		}
		t.Queue = nil
	}
	home, err := s.engine.Matrix().Duration(t.Location, t.Base)
	if err != nil {
		return err
	}
	t.FinishShift(ev.Time.Add(home))
	s.publish(events.ShiftEvent{Truck: t.Name, Action: "finish", Time: s.now})
	s.log.Debugf("truck %s returned to base %s", t.Name, t.Base)
	return nil
}

// startIdle begins the next batch on every idle truck that has one queued.
func (s *Simulator) startIdle() error {
	for _, t := range s.trucks {
		if t.Status == model.StatusIdle && len(t.Queue) > 0 {
			if err := s.startNextBatch(t); err != nil {
				return err
			}
		}
	}
	return nil
}

// startNextBatch is the idle-to-occupied transition: the batch is marked
// fulfilled, the route and per-stop timeline are computed, stale events for
// the truck are invalidated and the new arrival is scheduled.
func (s *Simulator) startNextBatch(t *model.Truck) error {
	batch := t.Queue[0]
	t.Queue = t.Queue[1:]
	t.Completed = append(t.Completed, batch)
	if t.HomeBaseOnly {
		// The home-base restriction is consumed by the first trip.
		t.HomeBaseOnly = false
	}
	for _, o := range batch {
		o.Fulfilled = true
		o.SolvedBy = t.Name
		o.Planned = false
	}

	route, err := routing.Best(t.Position(), t.Base, batch, s.engine.Matrix())
	if err != nil {
		return err
	}
	halfLoad := s.engine.Config().LoadingTime() / 2
	arr := s.now
	prev := t.Location
	action := model.ActionLoad
	for _, stop := range route.Stops[1 : len(route.Stops)-1] {
		leg, err := s.engine.Matrix().Duration(prev, stop)
		if err != nil {
			return err
		}
		arr = arr.Add(leg)
		for _, o := range batch {
			if stop == o.Destination {
				action = model.ActionUnload
			}
		}
		t.Record(stop, arr, action)
		arr = arr.Add(halfLoad)
		prev = stop
	}
	t.BeginLeg(route.Stops[len(route.Stops)-1], arr)

	s.queue.RemoveTruckEvents(t)
	s.queue.Push(Arrival{Time: arr, Truck: t, Location: route.LastDrop()})

	s.backlog.Remove(batch)
	s.fulfilled = append(s.fulfilled, batch)
	s.publish(events.BacklogEvent{Orders: batch, Action: "started", Time: s.now})
	s.log.Infof("truck %s started batch of %d order(s) towards %s", t.Name, len(batch), route.LastDrop())
	return nil
}

// scheduleReturn replaces the truck's return deadline with one computed from
// where it is now.
func (s *Simulator) scheduleReturn(t *model.Truck) error {
	home, err := s.engine.Matrix().Duration(t.Location, t.Base)
	if err != nil {
		return err
	}
	s.queue.RemoveTruckEvents(t)
	s.queue.Push(ReturnDeadline{Time: t.End.Add(-home), Truck: t})
	return nil
}
