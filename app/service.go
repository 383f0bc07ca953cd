// Package app assembles the dispatch service from its parts.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/flexfleet/flexdispatch/config"
	"github.com/flexfleet/flexdispatch/core/dispatch"
	coremetrics "github.com/flexfleet/flexdispatch/core/metrics"
	"github.com/flexfleet/flexdispatch/core/model"
	"github.com/flexfleet/flexdispatch/core/scoring"
	"github.com/flexfleet/flexdispatch/core/sim"
	"github.com/flexfleet/flexdispatch/core/traveltime"
	"github.com/flexfleet/flexdispatch/infra/logger"
	"github.com/flexfleet/flexdispatch/infra/metrics"
	"github.com/flexfleet/flexdispatch/infra/store"
	"github.com/flexfleet/flexdispatch/ingest"
	"github.com/flexfleet/flexdispatch/internal/eventbus"
	"github.com/flexfleet/flexdispatch/report"
)

// Service wires the static inputs, the engine and the sinks together for
// one process day.
type Service struct {
	cfg       *config.Config
	day       time.Time
	matrix    *traveltime.Matrix
	classes   model.Classifier
	deadlines scoring.DeadlineTable
	collector *coremetrics.Collector
	sink      *metrics.MultiSink
	store     *store.RunStore
	bus       eventbus.EventBus
	log       logger.Logger
}

// New loads the static inputs and builds the metric sinks.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")

	day, err := cfg.ProcessDay()
	if err != nil {
		return nil, err
	}
	matrix, err := ingest.ReadTravelTimes(cfg.Inputs.TravelTimes)
	if err != nil {
		return nil, err
	}
	classes, err := ingest.ReadDepotClasses(cfg.Inputs.DepotClasses)
	if err != nil {
		return nil, err
	}
	deadlines := scoring.DeadlineTable{}
	if cfg.Inputs.Deadlines != "" {
		deadlines, err = ingest.ReadDeadlines(cfg.Inputs.Deadlines, day)
		if err != nil {
			return nil, err
		}
	}

	collector := coremetrics.NewCollector()
	sinks := []coremetrics.Sink{collector}
	if cfg.Metrics.PromEnabled {
		prom, err := metrics.NewPromSink(prometheus.DefaultRegisterer)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, prom)
	}
	if cfg.Metrics.InfluxURL != "" {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(
			cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken,
			cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket))
	}

	svc := &Service{
		cfg:       cfg,
		day:       day,
		matrix:    matrix,
		classes:   classes,
		deadlines: deadlines,
		collector: collector,
		sink:      metrics.NewMultiSink(sinks...),
		bus:       eventbus.New(),
		log:       log,
	}
	if cfg.Store.Enabled {
		svc.store, err = store.Open(cfg.Store.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("run store: %w", err)
		}
	}
	return svc, nil
}

// Bus exposes the internal event bus for observers.
func (s *Service) Bus() eventbus.EventBus { return s.bus }

// Classes exposes the depot classification for feed consumers.
func (s *Service) Classes() model.Classifier { return s.classes }

// Day returns the process day.
func (s *Service) Day() time.Time { return s.day }

// Run executes a full day run from the configured order file.
func (s *Service) Run(ctx context.Context) error {
	orders, err := ingest.ReadOrders(s.cfg.Inputs.Orders, s.day, s.classes)
	if err != nil {
		return err
	}
	return s.Dispatch(ctx, orders)
}

// Dispatch runs the assignment simulation over the given orders and writes
// the run outputs.
func (s *Service) Dispatch(ctx context.Context, orders []*model.Order) error {
	trucks, err := ingest.ReadRoster(s.cfg.Inputs.Roster, s.day)
	if err != nil {
		return err
	}
	s.log.Infof("dispatching %d orders over %d trucks for %s",
		len(orders), len(trucks), s.day.Format("2006-01-02"))

	scorer := scoring.NewScorer(s.deadlines, scoring.Weights{
		BestCase: s.cfg.Dispatch.BestCaseWeight,
		Delayed:  s.cfg.Dispatch.DelayWeight,
	}, logger.New("scoring"))
	engine, err := dispatch.NewEngine(s.matrix, scorer, s.cfg.Dispatch,
		logger.New("dispatch"), s.sink, s.bus)
	if err != nil {
		return err
	}
	simulator, err := sim.New(engine, trucks, orders, logger.New("sim"), s.bus)
	if err != nil {
		return err
	}
	if err := simulator.Run(); err != nil {
		return err
	}

	stats := coremetrics.RunStats{
		Day:         s.day,
		Fulfilled:   countOrders(simulator.Fulfilled()),
		Unfulfilled: countOrders(simulator.Unfulfilled()),
		Trucks:      len(trucks),
	}
	if err := s.sink.RecordRunStats(stats); err != nil {
		s.log.Warnf("record run stats: %v", err)
	}
	if err := s.writeReports(simulator, trucks); err != nil {
		return err
	}
	if s.store != nil {
		runID, err := s.store.SaveRun(ctx, stats, s.collector.Assignments())
		if err != nil {
			return fmt.Errorf("persist run: %w", err)
		}
		s.log.Infof("run persisted as id %d", runID)
	}
	s.log.Infof("run complete: %d fulfilled, %d in backlog",
		stats.Fulfilled, stats.Unfulfilled)
	return nil
}

func (s *Service) writeReports(simulator *sim.Simulator, trucks []*model.Truck) error {
	dir := s.cfg.Output.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("output dir: %w", err)
	}
	rep := report.Build(s.day, simulator.Fulfilled(), simulator.Unfulfilled(), trucks)

	files := map[string]func(*os.File) error{
		"run.json": func(f *os.File) error { return report.WriteJSON(f, rep) },
		"orders.csv": func(f *os.File) error {
			return report.WriteOrdersCSV(f, rep)
		},
		"timeline.csv": func(f *os.File) error {
			return report.WriteTimelineCSV(f, rep)
		},
		"kpi.json": func(f *os.File) error {
			return report.WriteKPIs(f, report.ComputeKPIs(
				simulator.Fulfilled(), simulator.Unfulfilled(), trucks))
		},
	}
	for name, write := range files {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("create %s: %w", name, err)
		}
		if err := write(f); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

// ServeMetrics exposes the Prometheus endpoint until the context ends.
func (s *Service) ServeMetrics(ctx context.Context) {
	if !s.cfg.Metrics.PromEnabled {
		return
	}
	go func() {
		if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PromPort); err != nil {
			s.log.Errorf("prom server: %v", err)
		}
	}()
}

// Close releases held resources.
func (s *Service) Close() error {
	s.bus.Close()
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

func countOrders(batches [][]*model.Order) int {
	n := 0
	for _, b := range batches {
		n += len(b)
	}
	return n
}
