package entities

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrInvalidProblem is matched by every ValidationError returned from NewProblem
var ErrInvalidProblem = errors.New("invalid problem parameters")

// ValidationError reports a malformed problem parameter
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Is lets callers test for configuration errors with errors.Is(err, ErrInvalidProblem)
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidProblem
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// HiringCost is charged whenever headcount increases from one week to the next
type HiringCost struct {
	Fixed   decimal.Decimal `json:"fixed" yaml:"fixed"`       // charged once on any positive hire
	PerHead decimal.Decimal `json:"per_head" yaml:"per_head"` // charged per worker added
}

// Problem holds the parameters of a staffing optimization.
// Values built by NewProblem must not be mutated afterwards.
type Problem struct {
	Weeks      int         `validate:"gt=0"`
	Minimums   []Headcount `validate:"dive,gte=0"`
	ExcessCost decimal.Decimal
	Hiring     HiringCost
}

// NewProblem creates a validated Problem. The minimums slice is copied.
func NewProblem(weeks int, minimums []Headcount, excessCost decimal.Decimal, hiring HiringCost) (*Problem, error) {
	p := &Problem{
		Weeks:      weeks,
		Minimums:   append([]Headcount(nil), minimums...),
		ExcessCost: excessCost,
		Hiring:     hiring,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the problem parameters and returns the first violation found
func (p *Problem) Validate() error {
	if err := validate.Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fieldError(fieldErrs[0])
		}
		return &ValidationError{Field: "problem", Reason: err.Error()}
	}
	if len(p.Minimums) != p.Weeks {
		return &ValidationError{
			Field:  "minimums",
			Reason: fmt.Sprintf("expected %d weekly minimums, got %d", p.Weeks, len(p.Minimums)),
		}
	}
	if p.ExcessCost.IsNegative() {
		return &ValidationError{
			Field:  "excess_cost",
			Reason: fmt.Sprintf("excess cost cannot be negative, got %s", p.ExcessCost),
		}
	}
	if p.Hiring.Fixed.IsNegative() {
		return &ValidationError{
			Field:  "hiring_cost.fixed",
			Reason: fmt.Sprintf("fixed hiring cost cannot be negative, got %s", p.Hiring.Fixed),
		}
	}
	if p.Hiring.PerHead.IsNegative() {
		return &ValidationError{
			Field:  "hiring_cost.per_head",
			Reason: fmt.Sprintf("per-head hiring cost cannot be negative, got %s", p.Hiring.PerHead),
		}
	}
	return nil
}

func fieldError(fe validator.FieldError) error {
	if fe.StructField() == "Weeks" {
		return &ValidationError{
			Field:  "weeks",
			Reason: fmt.Sprintf("horizon length must be positive, got %v", fe.Value()),
		}
	}
	var idx int
	if _, err := fmt.Sscanf(fe.StructField(), "Minimums[%d]", &idx); err == nil {
		return &ValidationError{
			Field:  "minimums",
			Reason: fmt.Sprintf("minimum headcount for week %d cannot be negative, got %v", idx+1, fe.Value()),
		}
	}
	return &ValidationError{Field: fe.Field(), Reason: fe.Error()}
}

// Minimum returns the required headcount for a zero-based week index
func (p *Problem) Minimum(week int) Headcount {
	return p.Minimums[week]
}

// IsLastWeek reports whether week is the final week of the horizon
func (p *Problem) IsLastWeek(week int) bool {
	return week == p.Weeks-1
}

// MaxMinimum returns the largest weekly minimum. No optimal plan ever staffs above it:
// a surplus over the largest requirement only adds excess cost.
func (p *Problem) MaxMinimum() Headcount {
	var maxMin Headcount
	for _, m := range p.Minimums {
		if m > maxMin {
			maxMin = m
		}
	}
	return maxMin
}

// TransitionCost returns the cost of staffing chosen workers in week when incoming
// workers were staffed the week before. Layoffs are free.
func (p *Problem) TransitionCost(week int, incoming, chosen Headcount) decimal.Decimal {
	cost := decimal.Zero
	if surplus := chosen - p.Minimums[week]; surplus > 0 {
		cost = cost.Add(p.ExcessCost.Mul(decimal.NewFromInt(int64(surplus))))
	}
	if hired := chosen - incoming; hired > 0 {
		cost = cost.Add(p.Hiring.Fixed).Add(p.Hiring.PerHead.Mul(decimal.NewFromInt(int64(hired))))
	}
	return cost
}
