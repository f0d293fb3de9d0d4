// Package metrics exposes optimizer runs as Prometheus metrics.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/vsinha/workforce/pkg/application/dto"
	"github.com/vsinha/workforce/pkg/application/services/optimizer"
)

const namespace = "workforce"

// Recorder collects optimizer run metrics on its own registry
type Recorder struct {
	registry *prometheus.Registry

	runs            *prometheus.CounterVec
	memoLookups     *prometheus.CounterVec
	memoEntries     *prometheus.GaugeVec
	statesEvaluated *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	lastPlanCost    prometheus.Gauge
}

var _ optimizer.MetricsRecorder = (*Recorder)(nil)

// NewRecorder creates a recorder and registers its collectors
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "optimizer_runs_total",
			Help:      "Completed optimization runs.",
		}, []string{"strategy"}),
		memoLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "optimizer_memo_lookups_total",
			Help:      "Memo table lookups by outcome.",
		}, []string{"strategy", "result"}),
		memoEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "optimizer_memo_entries",
			Help:      "Subproblems stored by the most recent run.",
		}, []string{"strategy"}),
		statesEvaluated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "optimizer_states_evaluated_total",
			Help:      "Candidate headcounts evaluated.",
		}, []string{"strategy"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "optimizer_run_duration_seconds",
			Help:      "Wall time of optimization runs.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"strategy"}),
		lastPlanCost: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "plan_total_cost",
			Help:      "Total cost of the most recent plan.",
		}),
	}

	r.registry.MustRegister(r.runs, r.memoLookups, r.memoEntries, r.statesEvaluated, r.duration, r.lastPlanCost)
	return r
}

// Registry returns the registry holding the recorder's collectors
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveRun records one completed run
func (r *Recorder) ObserveRun(stats dto.SolveStats, totalCost decimal.Decimal) {
	strategy := stats.Strategy
	r.runs.WithLabelValues(strategy).Inc()
	r.memoLookups.WithLabelValues(strategy, "hit").Add(float64(stats.MemoHits))
	r.memoLookups.WithLabelValues(strategy, "miss").Add(float64(stats.MemoMisses))
	r.memoEntries.WithLabelValues(strategy).Set(float64(stats.MemoEntries))
	r.statesEvaluated.WithLabelValues(strategy).Add(float64(stats.StatesEvaluated))
	r.duration.WithLabelValues(strategy).Observe(stats.Duration.Seconds())
	r.lastPlanCost.Set(totalCost.InexactFloat64())
}

// WriteTextfile writes the current metrics in the node exporter textfile format
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
