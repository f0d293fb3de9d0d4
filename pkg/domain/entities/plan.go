package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WeekPlan is one line of a staffing plan. Week is 1-indexed.
type WeekPlan struct {
	Week      int             `json:"week" yaml:"week"`
	Minimum   Headcount       `json:"minimum" yaml:"minimum"`
	Headcount Headcount       `json:"headcount" yaml:"headcount"`
	Previous  Headcount       `json:"previous" yaml:"previous"`
	Cost      decimal.Decimal `json:"cost" yaml:"cost"`
	Action    Action          `json:"action" yaml:"action"`
	Change    Headcount       `json:"change" yaml:"change"`
}

// Decision returns the narrative label for this week, e.g. "hire 5 workers"
func (w WeekPlan) Decision() string {
	return w.Action.Narrative(w.Change)
}

// PlanRecord is the persisted form of a completed optimization run
type PlanRecord struct {
	ID         uuid.UUID       `json:"id" yaml:"id"`
	Name       string          `json:"name" yaml:"name"`
	CreatedAt  time.Time       `json:"created_at" yaml:"created_at"`
	Strategy   string          `json:"strategy" yaml:"strategy"`
	ExcessCost decimal.Decimal `json:"excess_cost" yaml:"excess_cost"`
	Hiring     HiringCost      `json:"hiring_cost" yaml:"hiring_cost"`
	TotalCost  decimal.Decimal `json:"total_cost" yaml:"total_cost"`
	Weeks      []WeekPlan      `json:"weeks" yaml:"weeks"`
}

// Trace returns the chosen headcount of every week in order
func (r *PlanRecord) Trace() []Headcount {
	trace := make([]Headcount, len(r.Weeks))
	for i, w := range r.Weeks {
		trace[i] = w.Headcount
	}
	return trace
}

// Minimums returns the weekly minimum headcounts in order
func (r *PlanRecord) Minimums() []Headcount {
	mins := make([]Headcount, len(r.Weeks))
	for i, w := range r.Weeks {
		mins[i] = w.Minimum
	}
	return mins
}
