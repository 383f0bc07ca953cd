package metrics

import "sync"

// Collector is a Sink that keeps every recorded result in memory, for
// end-of-run reporting and persistence.
type Collector struct {
	mu          sync.Mutex
	assignments []AssignmentResult
	stats       RunStats
}

func NewCollector() *Collector { return &Collector{} }

func (c *Collector) RecordAssignment(res AssignmentResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assignments = append(c.assignments, res)
	return nil
}

func (c *Collector) RecordRunStats(st RunStats) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = st
	return nil
}

// Assignments returns a copy of every assignment recorded so far.
func (c *Collector) Assignments() []AssignmentResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]AssignmentResult, len(c.assignments))
	copy(out, c.assignments)
	return out
}

// Stats returns the last recorded run summary.
func (c *Collector) Stats() RunStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
