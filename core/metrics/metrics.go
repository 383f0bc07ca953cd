// Package metrics defines the records produced by the dispatch engine for
// observability sinks.
package metrics

import "time"

// AssignmentResult is one committed truck/batch assignment to be recorded.
type AssignmentResult struct {
	Truck       string
	Orders      []string
	Quantity    int
	Score       float64
	OnTime      float64
	Forced      bool
	Start       time.Time
	DeliveryEnd time.Time
}

// RunStats summarises a completed dispatch run.
type RunStats struct {
	Day         time.Time
	Fulfilled   int
	Unfulfilled int
	Trucks      int
}

// Sink records assignment results for observability purposes.
type Sink interface {
	RecordAssignment(AssignmentResult) error
}

// RunRecorder records end-of-run statistics. Sinks may optionally implement
// it.
type RunRecorder interface {
	RecordRunStats(RunStats) error
}

// NopSink discards every record.
type NopSink struct{}

// RecordAssignment implements Sink.
func (NopSink) RecordAssignment(AssignmentResult) error { return nil }

// RecordRunStats implements RunRecorder.
func (NopSink) RecordRunStats(RunStats) error { return nil }
