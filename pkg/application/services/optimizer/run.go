package optimizer

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/vsinha/workforce/pkg/application/dto"
	"github.com/vsinha/workforce/pkg/domain/entities"
)

// run holds the mutable state of a single optimization. It is never shared between runs.
type run struct {
	problem    *entities.Problem
	maxMinimum entities.Headcount
	memo       *memoTable
	states     atomic.Int64
}

func newRun(problem *entities.Problem) *run {
	maxMinimum := problem.MaxMinimum()
	return &run{
		problem:    problem,
		maxMinimum: maxMinimum,
		memo:       newMemoTable(),
	}
}

// solve returns the minimal cost from week through the last week, and the headcount
// to adopt in week, given the headcount carried in from the week before
func (r *run) solve(week int, incoming entities.Headcount) dto.MemoEntry {
	// Last week: nothing left to amortize excess or hiring against
	if r.problem.IsLastWeek(week) {
		minimum := r.problem.Minimum(week)
		return dto.MemoEntry{
			Cost:   r.problem.TransitionCost(week, incoming, minimum),
			Choice: minimum,
		}
	}

	key := dto.MemoKey{Week: week, Incoming: incoming}
	if entry, exists := r.memo.get(key); exists {
		return entry
	}

	entry := r.sweep(week, incoming)
	r.memo.put(key, entry)
	return entry
}

// sweep evaluates every feasible headcount for week. Candidates run in ascending order
// and only a strictly cheaper total replaces the incumbent, so ties go to the smallest.
func (r *run) sweep(week int, incoming entities.Headcount) dto.MemoEntry {
	minimum := r.problem.Minimum(week)
	best := dto.MemoEntry{Choice: minimum}
	found := false

	for candidate := minimum; candidate <= r.maxMinimum; candidate++ {
		r.states.Add(1)
		total := r.problem.TransitionCost(week, incoming, candidate).
			Add(r.solve(week+1, candidate).Cost)

		if !found || total.LessThan(best.Cost) {
			best = dto.MemoEntry{Cost: total, Choice: candidate}
			found = true
		}
	}

	return best
}

// incomingRange returns the headcounts that can be carried into week
func (r *run) incomingRange(week int) (entities.Headcount, entities.Headcount) {
	if week == 0 {
		return 0, 0
	}
	return r.problem.Minimum(week - 1), r.maxMinimum
}

// fill solves every reachable subproblem from the second to last week backwards.
// Rows of one week only read rows of the following week, which are complete by then,
// so the rows of a week may be swept concurrently.
func (r *run) fill(ctx context.Context, parallelism int) error {
	for week := r.problem.Weeks - 2; week >= 0; week-- {
		if err := ctx.Err(); err != nil {
			return err
		}

		lo, hi := r.incomingRange(week)
		if parallelism <= 1 {
			for incoming := lo; incoming <= hi; incoming++ {
				r.memo.put(dto.MemoKey{Week: week, Incoming: incoming}, r.sweep(week, incoming))
			}
			continue
		}

		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(parallelism)
		for incoming := lo; incoming <= hi; incoming++ {
			g.Go(func() error {
				if err := gCtx.Err(); err != nil {
					return err
				}
				r.memo.put(dto.MemoKey{Week: week, Incoming: incoming}, r.sweep(week, incoming))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}
