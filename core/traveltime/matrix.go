// Package traveltime provides the read-only directional travel duration
// lookup every other component is built on.
package traveltime

import (
	"errors"
	"fmt"
	"time"

	"github.com/flexfleet/flexdispatch/core/model"
)

// ErrUnknownPair is returned when a location pair is absent from the matrix.
// Callers must treat this as a configuration error, not a retry case: a
// defaulted duration would corrupt all downstream scoring.
var ErrUnknownPair = errors.New("traveltime: no entry for location pair")

// Record is one row of the travel-time table.
type Record struct {
	From    model.Location
	To      model.Location
	Minutes float64
}

type pair struct {
	from, to model.Location
}

// Matrix maps ordered location pairs to travel durations. It is not required
// to be symmetric and is immutable for the run.
type Matrix struct {
	durations map[pair]time.Duration
}

// New builds a matrix from table records. Later records overwrite earlier
// ones for the same pair.
func New(records []Record) *Matrix {
	m := &Matrix{durations: make(map[pair]time.Duration, len(records))}
	for _, r := range records {
		m.durations[pair{r.From, r.To}] = time.Duration(r.Minutes * float64(time.Minute))
	}
	return m
}

// Duration returns the travel time from a to b. A location paired with
// itself yields zero.
func (m *Matrix) Duration(a, b model.Location) (time.Duration, error) {
	if a == b {
		return 0, nil
	}
	d, ok := m.durations[pair{a, b}]
	if !ok {
		return 0, fmt.Errorf("%w: %s -> %s", ErrUnknownPair, a, b)
	}
	return d, nil
}

// Len returns the number of pairs in the matrix.
func (m *Matrix) Len() int { return len(m.durations) }
