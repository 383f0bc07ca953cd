// Package dispatch implements the truck assignment engine: order
// combination, per-truck scoring and commitment, the two-permutation backlog
// pass and the shift-extension escape valve for external trucks.
package dispatch

import (
	"fmt"

	"github.com/flexfleet/flexdispatch/core/logger"
	"github.com/flexfleet/flexdispatch/core/metrics"
	"github.com/flexfleet/flexdispatch/core/scoring"
	"github.com/flexfleet/flexdispatch/core/traveltime"
	"github.com/flexfleet/flexdispatch/internal/eventbus"
)

// Engine scores and commits truck assignments. It owns no truck state; the
// registry, queue and backlog are passed in explicitly so runs stay
// deterministic and unit-testable.
type Engine struct {
	matrix *traveltime.Matrix
	scorer *scoring.Scorer
	cfg    Config
	log    logger.Logger
	sink   metrics.Sink
	bus    eventbus.EventBus
}

// NewEngine creates an engine. sink and bus may be nil; a nil sink is
// replaced with a NopSink.
func NewEngine(matrix *traveltime.Matrix, scorer *scoring.Scorer, cfg Config, log logger.Logger, sink metrics.Sink, bus eventbus.EventBus) (*Engine, error) {
	if matrix == nil || scorer == nil || log == nil {
		return nil, fmt.Errorf("dispatch: nil parameter provided to NewEngine")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("dispatch config: %w", err)
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Engine{matrix: matrix, scorer: scorer, cfg: cfg, log: log, sink: sink, bus: bus}, nil
}

// Matrix returns the travel-time matrix the engine plans against.
func (e *Engine) Matrix() *traveltime.Matrix { return e.matrix }

// Config returns the engine parameters.
func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) publish(ev eventbus.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}
