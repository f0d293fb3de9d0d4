// Package postgres stores staffing plans in PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/vsinha/workforce/pkg/domain/entities"
	"github.com/vsinha/workforce/pkg/domain/repositories"
)

const schema = `
CREATE TABLE IF NOT EXISTS workforce_plans (
	id              UUID PRIMARY KEY,
	name            TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL,
	strategy        TEXT NOT NULL,
	excess_cost     NUMERIC NOT NULL,
	hiring_fixed    NUMERIC NOT NULL,
	hiring_per_head NUMERIC NOT NULL,
	total_cost      NUMERIC NOT NULL
);

CREATE TABLE IF NOT EXISTS workforce_plan_weeks (
	plan_id   UUID NOT NULL REFERENCES workforce_plans(id) ON DELETE CASCADE,
	week      INTEGER NOT NULL,
	minimum   INTEGER NOT NULL,
	headcount INTEGER NOT NULL,
	previous  INTEGER NOT NULL,
	cost      NUMERIC NOT NULL,
	action    TEXT NOT NULL,
	change    INTEGER NOT NULL,
	PRIMARY KEY (plan_id, week)
);

CREATE INDEX IF NOT EXISTS workforce_plans_created_at_idx ON workforce_plans (created_at DESC);
`

// PlanRepository wraps a PostgreSQL connection pool
type PlanRepository struct {
	pool *pgxpool.Pool
}

var (
	_ repositories.PlanRepository = (*PlanRepository)(nil)
	_ repositories.PlanReader     = (*PlanRepository)(nil)
)

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*PlanRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PlanRepository{pool: pool}, nil
}

// Close closes the connection pool
func (r *PlanRepository) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// Migrate creates the plan tables if they do not exist yet
func (r *PlanRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate plan tables: %w", err)
	}
	return nil
}

// Name identifies the repository in logs and events
func (r *PlanRepository) Name() string {
	return "postgres"
}

// SavePlan stores the plan and its weeks in one transaction, replacing any plan with the same ID
func (r *PlanRepository) SavePlan(ctx context.Context, plan *entities.PlanRecord) error {
	if err := r.savePlan(ctx, plan); err != nil {
		return &repositories.PersistError{Destination: r.Name(), Err: err}
	}
	return nil
}

func (r *PlanRepository) savePlan(ctx context.Context, plan *entities.PlanRecord) error {
	if plan == nil {
		return fmt.Errorf("plan is nil")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Costs travel as text so no decimal precision is lost on the way to NUMERIC
	_, err = tx.Exec(ctx,
		`INSERT INTO workforce_plans (id, name, created_at, strategy, excess_cost, hiring_fixed, hiring_per_head, total_cost)
		 VALUES ($1, $2, $3, $4, $5::text::numeric, $6::text::numeric, $7::text::numeric, $8::text::numeric)
		 ON CONFLICT (id) DO UPDATE SET
		     name = $2, created_at = $3, strategy = $4, excess_cost = $5::text::numeric,
		     hiring_fixed = $6::text::numeric, hiring_per_head = $7::text::numeric, total_cost = $8::text::numeric`,
		plan.ID, plan.Name, plan.CreatedAt, plan.Strategy,
		plan.ExcessCost.String(), plan.Hiring.Fixed.String(), plan.Hiring.PerHead.String(), plan.TotalCost.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert plan: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM workforce_plan_weeks WHERE plan_id = $1`, plan.ID); err != nil {
		return fmt.Errorf("failed to clear plan weeks: %w", err)
	}

	batch := &pgx.Batch{}
	for _, week := range plan.Weeks {
		action, err := week.Action.MarshalText()
		if err != nil {
			return fmt.Errorf("failed to encode action for week %d: %w", week.Week, err)
		}
		batch.Queue(
			`INSERT INTO workforce_plan_weeks (plan_id, week, minimum, headcount, previous, cost, action, change)
			 VALUES ($1, $2, $3, $4, $5, $6::text::numeric, $7, $8)`,
			plan.ID, week.Week, int(week.Minimum), int(week.Headcount), int(week.Previous),
			week.Cost.String(), string(action), int(week.Change),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert plan weeks: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit plan: %w", err)
	}
	return nil
}

// GetPlan retrieves a plan and its weeks by ID
func (r *PlanRepository) GetPlan(ctx context.Context, id uuid.UUID) (*entities.PlanRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at, strategy, excess_cost::text, hiring_fixed::text,
		        hiring_per_head::text, total_cost::text
		 FROM workforce_plans WHERE id = $1`,
		id,
	)
	plan, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", repositories.ErrPlanNotFound, id)
		}
		return nil, fmt.Errorf("failed to get plan %s: %w", id, err)
	}

	if err := r.loadWeeks(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// ListPlans returns stored plans newest first, at most limit entries (0 = all)
func (r *PlanRepository) ListPlans(ctx context.Context, limit int) ([]*entities.PlanRecord, error) {
	query := `SELECT id, name, created_at, strategy, excess_cost::text, hiring_fixed::text,
	                 hiring_per_head::text, total_cost::text
	          FROM workforce_plans ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []*entities.PlanRecord
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	rows.Close()

	for _, plan := range plans {
		if err := r.loadWeeks(ctx, plan); err != nil {
			return nil, err
		}
	}
	return plans, nil
}

func (r *PlanRepository) loadWeeks(ctx context.Context, plan *entities.PlanRecord) error {
	rows, err := r.pool.Query(ctx,
		`SELECT week, minimum, headcount, previous, cost::text, action, change
		 FROM workforce_plan_weeks WHERE plan_id = $1 ORDER BY week`,
		plan.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get weeks of plan %s: %w", plan.ID, err)
	}
	defer rows.Close()

	plan.Weeks = plan.Weeks[:0]
	for rows.Next() {
		var (
			week                                 int
			minimum, headcount, previous, change int
			cost, action                         string
		)
		if err := rows.Scan(&week, &minimum, &headcount, &previous, &cost, &action, &change); err != nil {
			return fmt.Errorf("failed to scan week of plan %s: %w", plan.ID, err)
		}

		wp := entities.WeekPlan{
			Week:      week,
			Minimum:   entities.Headcount(minimum),
			Headcount: entities.Headcount(headcount),
			Previous:  entities.Headcount(previous),
			Change:    entities.Headcount(change),
		}
		if wp.Cost, err = decimal.NewFromString(cost); err != nil {
			return fmt.Errorf("invalid cost for week %d of plan %s: %w", week, plan.ID, err)
		}
		if err := wp.Action.UnmarshalText([]byte(action)); err != nil {
			return fmt.Errorf("invalid action for week %d of plan %s: %w", week, plan.ID, err)
		}
		plan.Weeks = append(plan.Weeks, wp)
	}
	return rows.Err()
}

func scanPlan(row pgx.Row) (*entities.PlanRecord, error) {
	var (
		plan                          entities.PlanRecord
		excess, fixed, perHead, total string
	)
	if err := row.Scan(&plan.ID, &plan.Name, &plan.CreatedAt, &plan.Strategy,
		&excess, &fixed, &perHead, &total); err != nil {
		return nil, err
	}

	amounts := []struct {
		text string
		dst  *decimal.Decimal
	}{
		{excess, &plan.ExcessCost},
		{fixed, &plan.Hiring.Fixed},
		{perHead, &plan.Hiring.PerHead},
		{total, &plan.TotalCost},
	}
	for _, a := range amounts {
		value, err := decimal.NewFromString(a.text)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", a.text, err)
		}
		*a.dst = value
	}
	return &plan, nil
}
