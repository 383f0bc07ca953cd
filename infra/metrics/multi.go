package metrics

import (
	"errors"

	coremetrics "github.com/flexfleet/flexdispatch/core/metrics"
)

// MultiSink fans out to several sinks. Errors from individual sinks are
// collected so one failing backend does not hide another.
type MultiSink struct {
	sinks []coremetrics.Sink
}

// NewMultiSink builds a sink that forwards to every non-nil sink.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	out := make([]coremetrics.Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &MultiSink{sinks: out}
}

func (m *MultiSink) RecordAssignment(res coremetrics.AssignmentResult) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordAssignment(res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordRunStats forwards the run summary to every sink that records runs.
func (m *MultiSink) RecordRunStats(st coremetrics.RunStats) error {
	var errs []error
	for _, s := range m.sinks {
		rec, ok := s.(coremetrics.RunRecorder)
		if !ok {
			continue
		}
		if err := rec.RecordRunStats(st); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
