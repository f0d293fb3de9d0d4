package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vsinha/workforce/pkg/domain/entities"
)

// ErrPersist is matched by every PersistError
var ErrPersist = errors.New("failed to persist plan")

// ErrPlanNotFound is returned by readers when no plan has the requested ID
var ErrPlanNotFound = errors.New("plan not found")

// PersistError reports an I/O failure while storing a plan. It is kept distinct
// from entities.ErrInvalidProblem so callers can tell bad input from a bad destination.
type PersistError struct {
	Destination string
	Err         error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist plan to %s: %v", e.Destination, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// Is lets callers test for persistence failures with errors.Is(err, ErrPersist)
func (e *PersistError) Is(target error) bool {
	return target == ErrPersist
}

// PlanRepository stores completed staffing plans
type PlanRepository interface {
	// Name identifies the destination in logs and errors
	Name() string
	SavePlan(ctx context.Context, plan *entities.PlanRecord) error
}

// PlanReader gives access to previously stored plans
type PlanReader interface {
	GetPlan(ctx context.Context, id uuid.UUID) (*entities.PlanRecord, error)
	// ListPlans returns plans newest first, at most limit entries (0 = all)
	ListPlans(ctx context.Context, limit int) ([]*entities.PlanRecord, error)
}
