// Package report turns an optimization result into the per-week staffing report.
// Everything here is derived from the problem and the chosen trace alone.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/workforce/pkg/application/dto"
	"github.com/vsinha/workforce/pkg/domain/entities"
)

// Build derives the per-week plan lines for a completed run
func Build(name string, problem *entities.Problem, result *dto.PlanResult) (*entities.PlanRecord, error) {
	if problem == nil || result == nil {
		return nil, fmt.Errorf("problem and result are required to build a report")
	}
	if len(result.Trace) != problem.Weeks {
		return nil, fmt.Errorf("trace has %d weeks, problem has %d", len(result.Trace), problem.Weeks)
	}

	plan := &entities.PlanRecord{
		ID:         result.RunID,
		Name:       name,
		CreatedAt:  result.ComputedAt,
		Strategy:   result.Stats.Strategy,
		ExcessCost: problem.ExcessCost,
		Hiring:     problem.Hiring,
		Weeks:      make([]entities.WeekPlan, 0, problem.Weeks),
	}

	var previous entities.Headcount
	for week, chosen := range result.Trace {
		cost := problem.TransitionCost(week, previous, chosen)
		plan.Weeks = append(plan.Weeks, entities.WeekPlan{
			Week:      week + 1,
			Minimum:   problem.Minimum(week),
			Headcount: chosen,
			Previous:  previous,
			Cost:      cost,
			Action:    entities.ActionBetween(previous, chosen),
			Change:    chosen.Diff(previous),
		})
		plan.TotalCost = plan.TotalCost.Add(cost)
		previous = chosen
	}

	return plan, nil
}

// FormatMoney renders an amount with two decimals and a currency prefix
func FormatMoney(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// WriteText renders the plan in the persisted text report format
func WriteText(w io.Writer, plan *entities.PlanRecord) error {
	var sb strings.Builder

	sb.WriteString("Workforce optimization results:\n\n")
	for _, week := range plan.Weeks {
		fmt.Fprintf(&sb, "Week %d:\n", week.Week)
		fmt.Fprintf(&sb, "-- Minimum headcount: %d\n", week.Minimum)
		fmt.Fprintf(&sb, "-- Optimal headcount: %d\n", week.Headcount)
		fmt.Fprintf(&sb, "-- Cost: %s\n", FormatMoney(week.Cost))
		fmt.Fprintf(&sb, "-- Decision: %s\n", week.Decision())
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Total optimization cost: %s\n", FormatMoney(plan.TotalCost))

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
