package optimizer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/workforce/pkg/application/dto"
	"github.com/vsinha/workforce/pkg/domain/entities"
	"github.com/vsinha/workforce/pkg/infrastructure/logging"
)

// EngineConfig holds configuration for the optimizer
type EngineConfig struct {
	// Strategy selects top-down recursion or a bottom-up table fill.
	// BottomUp keeps recursion depth constant and suits long horizons.
	Strategy Strategy
	// Parallelism bounds the number of incoming headcounts swept concurrently
	// within one week by the BottomUp strategy (<= 1 = sequential)
	Parallelism int
}

// MetricsRecorder receives measurements of completed runs
type MetricsRecorder interface {
	ObserveRun(stats dto.SolveStats, totalCost decimal.Decimal)
}

type noopRecorder struct{}

func (noopRecorder) ObserveRun(dto.SolveStats, decimal.Decimal) {}

// Option customizes an Optimizer
type Option func(*Optimizer)

// WithLogger sets the logger used for run and week level messages
func WithLogger(logger logr.Logger) Option {
	return func(o *Optimizer) {
		o.logger = logger
	}
}

// WithMetrics sets the recorder notified after every successful run
func WithMetrics(recorder MetricsRecorder) Option {
	return func(o *Optimizer) {
		if recorder != nil {
			o.metrics = recorder
		}
	}
}

// Optimizer computes cost-minimal weekly staffing plans for one problem
type Optimizer struct {
	problem *entities.Problem
	config  EngineConfig
	logger  logr.Logger
	metrics MetricsRecorder
}

// NewOptimizer creates an optimizer with the default configuration
func NewOptimizer(problem *entities.Problem, opts ...Option) (*Optimizer, error) {
	return NewOptimizerWithConfig(problem, EngineConfig{Strategy: TopDown}, opts...)
}

// NewOptimizerWithConfig creates an optimizer with custom configuration.
// The problem is validated here so that Run never sees malformed parameters.
func NewOptimizerWithConfig(problem *entities.Problem, config EngineConfig, opts ...Option) (*Optimizer, error) {
	if problem == nil {
		return nil, &entities.ValidationError{Field: "problem", Reason: "problem cannot be nil"}
	}
	if err := problem.Validate(); err != nil {
		return nil, err
	}

	o := &Optimizer{
		problem: problem,
		config:  config,
		logger:  logr.Discard(),
		metrics: noopRecorder{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Problem returns the parameters this optimizer was built with
func (o *Optimizer) Problem() *entities.Problem {
	return o.problem
}

// Config returns the engine configuration
func (o *Optimizer) Config() EngineConfig {
	return o.config
}

// Run computes the optimal plan. Each call uses its own memo table, so repeated
// runs are independent and return identical results.
func (o *Optimizer) Run(ctx context.Context) (*dto.PlanResult, error) {
	start := time.Now()
	weeks := o.problem.Weeks

	o.logger.V(logging.DEBUG).Info("Starting optimization",
		"weeks", weeks,
		"strategy", o.config.Strategy.String(),
		"maxMinimum", o.problem.MaxMinimum())

	r := newRun(o.problem)
	if o.config.Strategy == BottomUp {
		if err := r.fill(ctx, o.config.Parallelism); err != nil {
			return nil, fmt.Errorf("failed to fill subproblem table: %w", err)
		}
	}

	result := &dto.PlanResult{
		RunID:     uuid.New(),
		TotalCost: decimal.Zero,
		Trace:     make([]entities.Headcount, 0, weeks),
		WeekCosts: make([]decimal.Decimal, 0, weeks),
	}

	// No workers are staffed before the first week
	var previous entities.Headcount
	for week := 0; week < weeks; week++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("optimization cancelled at week %d: %w", week+1, err)
		}

		chosen := r.solve(week, previous).Choice
		cost := o.problem.TransitionCost(week, previous, chosen)

		result.TotalCost = result.TotalCost.Add(cost)
		result.Trace = append(result.Trace, chosen)
		result.WeekCosts = append(result.WeekCosts, cost)

		o.logger.V(logging.TRACE).Info("Week planned",
			"week", week+1,
			"minimum", o.problem.Minimum(week),
			"previous", previous,
			"headcount", chosen,
			"cost", cost.StringFixed(2))

		previous = chosen
	}

	result.ComputedAt = time.Now()
	result.Stats = dto.SolveStats{
		Strategy:        o.config.Strategy.String(),
		MemoEntries:     r.memo.len(),
		MemoHits:        int(r.memo.hits.Load()),
		MemoMisses:      int(r.memo.misses.Load()),
		StatesEvaluated: int(r.states.Load()),
		Duration:        result.ComputedAt.Sub(start),
	}

	o.metrics.ObserveRun(result.Stats, result.TotalCost)
	o.logger.V(logging.DEBUG).Info("Optimization completed",
		"runID", result.RunID,
		"totalCost", result.TotalCost.StringFixed(2),
		"memoEntries", result.Stats.MemoEntries,
		"duration", result.Stats.Duration)

	return result, nil
}
