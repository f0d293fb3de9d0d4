package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/workforce/pkg/domain/entities"
)

// PlanResult contains the complete output of an optimization run
type PlanResult struct {
	RunID      uuid.UUID            `json:"run_id" yaml:"run_id"`
	TotalCost  decimal.Decimal      `json:"total_cost" yaml:"total_cost"`
	Trace      []entities.Headcount `json:"trace" yaml:"trace"`
	WeekCosts  []decimal.Decimal    `json:"week_costs" yaml:"week_costs"`
	Stats      SolveStats           `json:"stats" yaml:"stats"`
	ComputedAt time.Time            `json:"computed_at" yaml:"computed_at"`
}

// SolveStats describes the work done by one run
type SolveStats struct {
	Strategy        string        `json:"strategy" yaml:"strategy"`
	MemoEntries     int           `json:"memo_entries" yaml:"memo_entries"`
	MemoHits        int           `json:"memo_hits" yaml:"memo_hits"`
	MemoMisses      int           `json:"memo_misses" yaml:"memo_misses"`
	StatesEvaluated int           `json:"states_evaluated" yaml:"states_evaluated"`
	Duration        time.Duration `json:"duration" yaml:"duration"`
}

// MemoKey identifies a subproblem: the week being decided and the headcount carried into it
type MemoKey struct {
	Week     int
	Incoming entities.Headcount
}

// MemoEntry is the solved value of a subproblem
type MemoEntry struct {
	Cost   decimal.Decimal    // minimal cost from Week through the last week
	Choice entities.Headcount // headcount to adopt in Week
}
