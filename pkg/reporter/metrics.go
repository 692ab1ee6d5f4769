package reporter

import (
	"context"

	"github.com/aretw0/grove/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records run outcomes as Prometheus metrics.
type Metrics struct {
	examples        *prometheus.CounterVec
	duration        prometheus.Histogram
	contextFailures *prometheus.CounterVec
	runs            *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		examples: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grove_examples_total",
				Help: "Total number of executed examples by status",
			},
			[]string{"status"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "grove_example_duration_seconds",
				Help:    "Duration of example executions, hooks included",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
		),
		contextFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grove_context_failures_total",
				Help: "Total number of before/after hook failures",
			},
			[]string{"hook"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grove_runs_total",
				Help: "Total number of runs by outcome",
			},
			[]string{"outcome"},
		),
	}
	for _, c := range []prometheus.Collector{m.examples, m.duration, m.contextFailures, m.runs} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks counts results by status and observes the elapsed time of settled examples.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnResult: func(_ context.Context, e *domain.ResultEvent) {
			m.examples.WithLabelValues(string(e.Result.Status)).Inc()
			if e.Result.Status != domain.StatusPending {
				m.duration.Observe(e.Result.Elapsed.Seconds())
			}
		},
		OnContextFailure: func(_ context.Context, e *domain.ContextFailureEvent) {
			m.contextFailures.WithLabelValues(string(e.Failure.Hook)).Inc()
		},
	}
}

// Finish counts the run as passed or failed. It never fails.
func (m *Metrics) Finish(report *domain.Report) error {
	outcome := "passed"
	if !report.OK() {
		outcome = "failed"
	}
	m.runs.WithLabelValues(outcome).Inc()
	return nil
}
