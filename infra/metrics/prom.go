// Package metrics provides the Prometheus and InfluxDB implementations of
// the core metrics sink.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/flexfleet/flexdispatch/core/metrics"
)

// PromSink records assignment results in Prometheus metrics.
type PromSink struct {
	assignments *prometheus.CounterVec
	rollcages   *prometheus.CounterVec
	score       prometheus.Histogram
	unfulfilled prometheus.Gauge
}

// NewPromSink registers the dispatch collectors on reg. A nil reg uses the
// default registerer; already-registered collectors are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flex_assignments_total",
		Help: "Total number of committed truck assignments",
	}, []string{"truck", "forced"})
	rollcages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flex_rollcages_total",
		Help: "Total rollcages committed to trucks",
	}, []string{"truck"})
	score := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "flex_assignment_score",
		Help:    "Score of committed assignments",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	})
	unfulfilled := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "flex_unfulfilled_orders",
		Help: "Orders left unfulfilled at run end",
	})

	if err := register(reg, &assignments); err != nil {
		return nil, err
	}
	if err := register(reg, &rollcages); err != nil {
		return nil, err
	}
	if err := registerHistogram(reg, &score); err != nil {
		return nil, err
	}
	if err := registerGauge(reg, &unfulfilled); err != nil {
		return nil, err
	}
	return &PromSink{assignments: assignments, rollcages: rollcages, score: score, unfulfilled: unfulfilled}, nil
}

func register(reg prometheus.Registerer, c **prometheus.CounterVec) error {
	if err := reg.Register(*c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			*c = are.ExistingCollector.(*prometheus.CounterVec)
			return nil
		}
		return err
	}
	return nil
}

func registerHistogram(reg prometheus.Registerer, h *prometheus.Histogram) error {
	if err := reg.Register(*h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			*h = are.ExistingCollector.(prometheus.Histogram)
			return nil
		}
		return err
	}
	return nil
}

func registerGauge(reg prometheus.Registerer, g *prometheus.Gauge) error {
	if err := reg.Register(*g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			*g = are.ExistingCollector.(prometheus.Gauge)
			return nil
		}
		return err
	}
	return nil
}

// RecordAssignment implements the core sink.
func (s *PromSink) RecordAssignment(res coremetrics.AssignmentResult) error {
	s.assignments.WithLabelValues(res.Truck, strconv.FormatBool(res.Forced)).Inc()
	s.rollcages.WithLabelValues(res.Truck).Add(float64(res.Quantity))
	s.score.Observe(res.Score)
	return nil
}

// RecordRunStats implements the optional run recorder.
func (s *PromSink) RecordRunStats(st coremetrics.RunStats) error {
	s.unfulfilled.Set(float64(st.Unfulfilled))
	return nil
}

// StartPromServer serves the metrics endpoint until the context is
// cancelled.
func StartPromServer(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
