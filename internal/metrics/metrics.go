// Package metrics records planner search statistics in a Prometheus
// registry that can be written as a node-exporter textfile.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Veraticus/course-planner/internal/csp"
	"github.com/Veraticus/course-planner/internal/scheduler"
	"github.com/Veraticus/course-planner/internal/search"
)

const namespace = "planner"

// Run outcomes.
const (
	StatusSolved        = "solved"
	StatusUnsatisfiable = "unsatisfiable"
	StatusInterrupted   = "interrupted"
	StatusError         = "error"
)

// Recorder holds the planner's search metrics.
type Recorder struct {
	registry      *prometheus.Registry
	runs          *prometheus.CounterVec
	operations    *prometheus.CounterVec
	assignments   *prometheus.CounterVec
	optimal       *prometheus.GaugeVec
	optimalWeight *prometheus.GaugeVec
	duration      *prometheus.HistogramVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "runs_total",
			Help:      "Search runs by engine and outcome",
		}, []string{"engine", "status"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "operations_total",
			Help:      "Backtracking calls or expanded states",
		}, []string{"engine"}),
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "assignments_total",
			Help:      "Complete consistent assignments found",
		}, []string{"engine"}),
		optimal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "optimal_assignments",
			Help:      "Optimal assignments found by the last run",
		}, []string{"engine"}),
		optimalWeight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "optimal_weight",
			Help:      "Weight (csp) or cost (ucs) of the best schedule of the last run",
		}, []string{"engine"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Search wall time in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"engine"}),
	}
	r.registry.MustRegister(r.runs, r.operations, r.assignments, r.optimal, r.optimalWeight, r.duration)
	return r
}

// ObserveCSP records one backtracking run. result may be partial when err
// reports an interruption.
func (r *Recorder) ObserveCSP(result *csp.Result, err error) {
	engine := scheduler.Engine
	r.runs.WithLabelValues(engine, status(err, result != nil && result.Satisfiable())).Inc()
	if result == nil {
		return
	}
	r.operations.WithLabelValues(engine).Add(float64(result.NumOperations))
	r.assignments.WithLabelValues(engine).Add(float64(result.NumAssignments))
	r.optimal.WithLabelValues(engine).Set(float64(result.NumOptimalAssignments))
	r.optimalWeight.WithLabelValues(engine).Set(result.OptimalWeight)
	r.duration.WithLabelValues(engine).Observe(result.Duration.Seconds())
}

// ObserveUCS records one uniform-cost search run.
func (r *Recorder) ObserveUCS(result *search.Result, elapsed time.Duration, err error) {
	engine := search.Engine
	r.runs.WithLabelValues(engine, status(err, result != nil && result.Satisfied)).Inc()
	r.duration.WithLabelValues(engine).Observe(elapsed.Seconds())
	if result == nil {
		return
	}
	r.operations.WithLabelValues(engine).Add(float64(result.Expanded))
	r.assignments.WithLabelValues(engine).Inc()
	r.optimal.WithLabelValues(engine).Set(1)
	r.optimalWeight.WithLabelValues(engine).Set(result.Cost)
}

// WriteTextfile writes the registry in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

func status(err error, solved bool) string {
	switch {
	case err == nil && solved:
		return StatusSolved
	case err == nil:
		return StatusUnsatisfiable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusInterrupted
	default:
		return StatusError
	}
}
