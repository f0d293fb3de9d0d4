package orchestration

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/vsinha/workforce/pkg/application/dto"
	"github.com/vsinha/workforce/pkg/application/services/optimizer"
	"github.com/vsinha/workforce/pkg/application/services/report"
	"github.com/vsinha/workforce/pkg/domain/entities"
	"github.com/vsinha/workforce/pkg/domain/repositories"
	"github.com/vsinha/workforce/pkg/infrastructure/events"
	"github.com/vsinha/workforce/pkg/infrastructure/logging"
)

// PlanningOrchestrator coordinates the optimizer, the report and plan persistence
type PlanningOrchestrator struct {
	repositories []repositories.PlanRepository
	eventStore   events.EventStore
	logger       logr.Logger
	metrics      optimizer.MetricsRecorder
}

// Option customizes a PlanningOrchestrator
type Option func(*PlanningOrchestrator)

// WithRepositories adds destinations every completed plan is saved to
func WithRepositories(repos ...repositories.PlanRepository) Option {
	return func(po *PlanningOrchestrator) {
		po.repositories = append(po.repositories, repos...)
	}
}

// WithEventStore sets the store planning events are published to
func WithEventStore(store events.EventStore) Option {
	return func(po *PlanningOrchestrator) {
		po.eventStore = store
	}
}

// WithLogger sets the logger passed down to the optimizer
func WithLogger(logger logr.Logger) Option {
	return func(po *PlanningOrchestrator) {
		po.logger = logger
	}
}

// WithMetrics sets the recorder passed down to the optimizer
func WithMetrics(recorder optimizer.MetricsRecorder) Option {
	return func(po *PlanningOrchestrator) {
		po.metrics = recorder
	}
}

// NewPlanningOrchestrator creates a new planning orchestrator
func NewPlanningOrchestrator(opts ...Option) *PlanningOrchestrator {
	po := &PlanningOrchestrator{logger: logr.Discard()}
	for _, opt := range opts {
		opt(po)
	}
	return po
}

// PlanRequest describes one planning run
type PlanRequest struct {
	Name    string
	Problem *entities.Problem
	Engine  optimizer.EngineConfig
}

// PlanningResult contains the optimizer output, the derived plan and where it was stored
type PlanningResult struct {
	Result    *dto.PlanResult
	Plan      *entities.PlanRecord
	Persisted []string
}

// RunPlanning optimizes the request, builds its report and saves it to every repository.
// Invalid problems fail before anything is published. When some repositories fail the
// result is still returned together with the joined persistence errors.
func (po *PlanningOrchestrator) RunPlanning(ctx context.Context, req PlanRequest) (*PlanningResult, error) {
	// Step 1: Validate and build the optimizer
	opt, err := optimizer.NewOptimizerWithConfig(req.Problem, req.Engine,
		optimizer.WithLogger(po.logger), optimizer.WithMetrics(po.metrics))
	if err != nil {
		return nil, err
	}

	runID := uuid.New()
	logger := po.logger.WithValues("runID", runID, "plan", req.Name)
	po.publish(logger, events.NewPlanRequestedEvent(runID, req.Name, req.Problem, req.Engine.Strategy.String()))

	// Step 2: Run the optimization
	result, err := opt.Run(ctx)
	if err != nil {
		po.publish(logger, events.NewPlanFailedEvent(runID, "optimize", err))
		return nil, fmt.Errorf("failed to optimize plan %q: %w", req.Name, err)
	}
	result.RunID = runID

	// Step 3: Derive the per-week plan
	plan, err := report.Build(req.Name, req.Problem, result)
	if err != nil {
		po.publish(logger, events.NewPlanFailedEvent(runID, "report", err))
		return nil, fmt.Errorf("failed to build report for plan %q: %w", req.Name, err)
	}
	for _, week := range plan.Weeks {
		po.publish(logger, events.NewWeekPlannedEvent(runID, week))
	}
	po.publish(logger, events.NewPlanCompletedEvent(plan))

	// Step 4: Persist to every destination
	planning := &PlanningResult{Result: result, Plan: plan}
	var errs []error
	for _, repo := range po.repositories {
		if err := repo.SavePlan(ctx, plan); err != nil {
			if !errors.Is(err, repositories.ErrPersist) {
				err = &repositories.PersistError{Destination: repo.Name(), Err: err}
			}
			logger.Error(err, "Failed to persist plan", "destination", repo.Name())
			po.publish(logger, events.NewPlanFailedEvent(runID, "persist", err))
			errs = append(errs, err)
			continue
		}
		planning.Persisted = append(planning.Persisted, repo.Name())
		po.publish(logger, events.NewPlanPersistedEvent(runID, repo.Name()))
		logger.V(logging.DEBUG).Info("Plan persisted", "destination", repo.Name())
	}

	return planning, errors.Join(errs...)
}

func (po *PlanningOrchestrator) publish(logger logr.Logger, event events.Event) {
	if po.eventStore == nil {
		return
	}
	if err := po.eventStore.AppendEvent(event.StreamID(), event); err != nil {
		logger.Error(err, "Failed to publish event", "type", event.Type())
	}
}

// GetSummary returns a formatted summary of the planning results
func (result *PlanningResult) GetSummary() string {
	stats := result.Result.Stats
	summary := fmt.Sprintf("Planning Summary (%d weeks, %s):\n", len(result.Plan.Weeks), stats.Strategy)
	summary += fmt.Sprintf("  Total cost: %s\n", report.FormatMoney(result.Plan.TotalCost))
	summary += fmt.Sprintf("  Staffing: %v\n", result.Plan.Trace())
	summary += fmt.Sprintf("  Subproblems: %d stored, %d hits, %d states evaluated",
		stats.MemoEntries, stats.MemoHits, stats.StatesEvaluated)
	return summary
}
