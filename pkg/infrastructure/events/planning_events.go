package events

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/workforce/pkg/domain/entities"
)

// Planning event types, in the order a run publishes them
const (
	PlanRequestedEvent = "plan.requested"
	WeekPlannedEvent   = "week.planned"
	PlanCompletedEvent = "plan.completed"
	PlanPersistedEvent = "plan.persisted"
	PlanFailedEvent    = "plan.failed"
)

// PlanRequested is published once a problem has passed validation
type PlanRequested struct {
	Name     string               `json:"name"`
	Weeks    int                  `json:"weeks"`
	Minimums []entities.Headcount `json:"minimums"`
	Strategy string               `json:"strategy"`
}

// WeekPlanned carries one line of the derived plan
type WeekPlanned struct {
	Week entities.WeekPlan `json:"week"`
}

type PlanCompleted struct {
	TotalCost decimal.Decimal      `json:"total_cost"`
	Trace     []entities.Headcount `json:"trace"`
}

type PlanPersisted struct {
	Destination string `json:"destination"`
}

// PlanFailed names the stage (optimize, report or persist) that failed
type PlanFailed struct {
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

func NewPlanRequestedEvent(runID uuid.UUID, name string, problem *entities.Problem, strategy string) Event {
	return NewEvent(PlanRequestedEvent, runID.String(), PlanRequested{
		Name:     name,
		Weeks:    problem.Weeks,
		Minimums: append([]entities.Headcount(nil), problem.Minimums...),
		Strategy: strategy,
	})
}

func NewWeekPlannedEvent(runID uuid.UUID, week entities.WeekPlan) Event {
	return NewEvent(WeekPlannedEvent, runID.String(), WeekPlanned{Week: week})
}

func NewPlanCompletedEvent(plan *entities.PlanRecord) Event {
	return NewEvent(PlanCompletedEvent, plan.ID.String(), PlanCompleted{
		TotalCost: plan.TotalCost,
		Trace:     plan.Trace(),
	})
}

func NewPlanPersistedEvent(runID uuid.UUID, destination string) Event {
	return NewEvent(PlanPersistedEvent, runID.String(), PlanPersisted{Destination: destination})
}

func NewPlanFailedEvent(runID uuid.UUID, stage string, err error) Event {
	return NewEvent(PlanFailedEvent, runID.String(), PlanFailed{Stage: stage, Reason: err.Error()})
}
