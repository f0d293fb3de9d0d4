package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/vsinha/workforce/pkg/domain/entities"
	"github.com/vsinha/workforce/pkg/domain/repositories"
)

// PlanRepository provides in-memory plan storage
type PlanRepository struct {
	plans    []entities.PlanRecord
	plansMap map[uuid.UUID]int
	mutex    sync.RWMutex
}

// NewPlanRepository creates a new in-memory plan repository
func NewPlanRepository(expectedPlans int) *PlanRepository {
	return &PlanRepository{
		plans:    make([]entities.PlanRecord, 0, expectedPlans),
		plansMap: make(map[uuid.UUID]int, expectedPlans),
	}
}

// Verify interface compliance
var (
	_ repositories.PlanRepository = (*PlanRepository)(nil)
	_ repositories.PlanReader     = (*PlanRepository)(nil)
)

// Name identifies the repository in logs and events
func (r *PlanRepository) Name() string {
	return "memory"
}

// SavePlan stores a copy of the plan. Saving an ID twice replaces the earlier plan.
func (r *PlanRepository) SavePlan(ctx context.Context, plan *entities.PlanRecord) error {
	if plan == nil {
		return &repositories.PersistError{Destination: r.Name(), Err: fmt.Errorf("plan is nil")}
	}
	if err := ctx.Err(); err != nil {
		return &repositories.PersistError{Destination: r.Name(), Err: err}
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	stored := copyPlan(plan)
	if index, exists := r.plansMap[plan.ID]; exists {
		r.plans[index] = stored
		return nil
	}
	r.plansMap[plan.ID] = len(r.plans)
	r.plans = append(r.plans, stored)
	return nil
}

// GetPlan returns the plan stored under id
func (r *PlanRepository) GetPlan(_ context.Context, id uuid.UUID) (*entities.PlanRecord, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	index, exists := r.plansMap[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", repositories.ErrPlanNotFound, id)
	}
	plan := copyPlan(&r.plans[index])
	return &plan, nil
}

// ListPlans returns stored plans newest first
func (r *PlanRepository) ListPlans(_ context.Context, limit int) ([]*entities.PlanRecord, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	plans := make([]*entities.PlanRecord, 0, len(r.plans))
	for i := len(r.plans) - 1; i >= 0; i-- {
		plan := copyPlan(&r.plans[i])
		plans = append(plans, &plan)
	}
	// Insertion order breaks ties between equal timestamps
	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].CreatedAt.After(plans[j].CreatedAt)
	})

	if limit > 0 && len(plans) > limit {
		plans = plans[:limit]
	}
	return plans, nil
}

// Len returns the number of stored plans
func (r *PlanRepository) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.plans)
}

func copyPlan(plan *entities.PlanRecord) entities.PlanRecord {
	stored := *plan
	stored.Weeks = append([]entities.WeekPlan(nil), plan.Weeks...)
	return stored
}
