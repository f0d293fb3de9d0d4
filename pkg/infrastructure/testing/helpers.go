// Package testing holds fixtures shared by package tests.
package testing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/workforce/pkg/application/dto"
	"github.com/vsinha/workforce/pkg/application/services/report"
	"github.com/vsinha/workforce/pkg/domain/entities"
)

// Canonical scenario: five weeks, minimums 5 7 8 4 6, excess 300, hiring 400 + 200 per worker.
// Its optimal plan staffs 5 8 8 6 6 for a total of 3300.
var (
	CanonicalMinimums = []entities.Headcount{5, 7, 8, 4, 6}
	CanonicalTrace    = []entities.Headcount{5, 8, 8, 6, 6}
	CanonicalTotal    = decimal.NewFromInt(3300)
)

// MustProblem builds a validated problem with integer costs, horizon = len(minimums).
// It panics on invalid input.
func MustProblem(minimums []entities.Headcount, excess, fixed, perHead int64) *entities.Problem {
	problem, err := entities.NewProblem(len(minimums), minimums, decimal.NewFromInt(excess),
		entities.HiringCost{Fixed: decimal.NewFromInt(fixed), PerHead: decimal.NewFromInt(perHead)})
	if err != nil {
		panic(err)
	}
	return problem
}

// BuildCanonicalProblem returns the canonical scenario
func BuildCanonicalProblem() *entities.Problem {
	return MustProblem(CanonicalMinimums, 300, 400, 200)
}

// BuildCanonicalResult returns the optimizer output for the canonical scenario
// without running the optimizer.
func BuildCanonicalResult(strategy string) *dto.PlanResult {
	return &dto.PlanResult{
		RunID:     uuid.New(),
		TotalCost: CanonicalTotal,
		Trace:     append([]entities.Headcount(nil), CanonicalTrace...),
		WeekCosts: []decimal.Decimal{
			decimal.NewFromInt(1400),
			decimal.NewFromInt(1300),
			decimal.Zero,
			decimal.NewFromInt(600),
			decimal.Zero,
		},
		Stats:      dto.SolveStats{Strategy: strategy, MemoEntries: 8, MemoMisses: 8, StatesEvaluated: 8},
		ComputedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
}

// BuildCanonicalPlan returns the canonical result together with its derived plan
func BuildCanonicalPlan(name string) (*dto.PlanResult, *entities.PlanRecord) {
	result := BuildCanonicalResult("top-down")
	plan, err := report.Build(name, BuildCanonicalProblem(), result)
	if err != nil {
		panic(err)
	}
	return result, plan
}
