package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Priority identifies one of the four rollcage service tiers.
type Priority int

const (
	PrioA Priority = iota
	PrioB
	PrioC
	PrioD
)

// Priorities lists all service tiers in deadline order.
var Priorities = [4]Priority{PrioA, PrioB, PrioC, PrioD}

func (p Priority) String() string {
	switch p {
	case PrioA:
		return "A"
	case PrioB:
		return "B"
	case PrioC:
		return "C"
	case PrioD:
		return "D"
	}
	return "?"
}

// Quantities holds the rollcage count per priority class.
type Quantities struct {
	A int `json:"a"`
	B int `json:"b"`
	C int `json:"c"`
	D int `json:"d"`
}

// Total returns the summed rollcage count across all classes.
func (q Quantities) Total() int { return q.A + q.B + q.C + q.D }

// ByPriority returns the counts indexed in the order of Priorities.
func (q Quantities) ByPriority() [4]int { return [4]int{q.A, q.B, q.C, q.D} }

// ErrInvalidOrder is returned when an order carries no rollcages at all.
var ErrInvalidOrder = errors.New("model: order total quantity must be positive")

// Order is a single afvoer shortfall to be covered by one flex trip. Orders
// are created once from an incoming shortfall record and only mutated by the
// combination and assignment components; they are never destroyed, only
// marked fulfilled.
type Order struct {
	ID          uuid.UUID
	CallTime    time.Time
	Origin      Location
	Destination Location
	Quantities  Quantities
	Total       int
	// Inter is derived from the depot classification at creation and fixed
	// thereafter. It selects which final-departure deadline table applies.
	Inter     bool
	Fulfilled bool
	// SolvedBy is the name of the truck that fulfilled the order.
	SolvedBy string
	// ReportedSolver is the truck name recorded upstream by the control
	// room, kept for comparison reporting only.
	ReportedSolver string
	// Partner links two orders combined into one trip. The link is mutual.
	Partner *Order
	// PickupLoc starts equal to Origin and is overwritten with the actual
	// pickup waypoint once the order is committed to a multi-leg trip.
	PickupLoc Location
	// Planned marks an order committed to a truck's pending queue but not
	// yet started. Planned orders are not eligible for combination.
	Planned bool
}

// NewOrder validates the shortfall quantities and derives the total and the
// inter flag. A zero total is rejected up front so that a divide by zero can
// never reach the scoring stage.
func NewOrder(callTime time.Time, origin, destination Location, q Quantities, classes Classifier) (*Order, error) {
	total := q.Total()
	if total <= 0 {
		return nil, fmt.Errorf("%w: %s -> %s at %s", ErrInvalidOrder, origin, destination, callTime.Format(time.RFC3339))
	}
	return &Order{
		ID:          uuid.New(),
		CallTime:    callTime,
		Origin:      origin,
		Destination: destination,
		Quantities:  q,
		Total:       total,
		Inter:       classes.InterLeg(origin, destination),
		PickupLoc:   origin,
	}, nil
}

// CombineWith links o and p as combination partners. The relation is
// symmetric and unique: an order has at most one partner.
func (o *Order) CombineWith(p *Order) {
	o.Partner = p
	p.Partner = o
}
