package optimizer

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vsinha/workforce/pkg/application/dto"
	"github.com/vsinha/workforce/pkg/domain/entities"
	"github.com/vsinha/workforce/pkg/infrastructure/logging"
)

type scenario struct {
	name     string
	minimums []entities.Headcount
	excess   int64
	fixed    int64
	perHead  int64
	cost     string
	trace    []entities.Headcount
}

// Expected values were computed independently by exhaustive simulation.
var scenarios = []scenario{
	{"canonical", []entities.Headcount{5, 7, 8, 4, 6}, 300, 400, 200, "3300", []entities.Headcount{5, 8, 8, 6, 6}},
	{"single week", []entities.Headcount{4}, 300, 400, 200, "1200", []entities.Headcount{4}},
	{"zero costs", []entities.Headcount{3, 0, 6, 2}, 0, 0, 0, "0", []entities.Headcount{3, 0, 6, 2}},
	{"cheap excess", []entities.Headcount{2, 4, 3}, 100, 500, 50, "900", []entities.Headcount{4, 4, 3}},
	{"tie on first week", []entities.Headcount{3, 5}, 200, 400, 0, "800", []entities.Headcount{3, 5}},
	{"all zero minimums", []entities.Headcount{0, 0}, 10, 5, 5, "0", []entities.Headcount{0, 0}},
	{"six weeks", []entities.Headcount{2, 6, 3, 6, 1, 4}, 150, 600, 100, "2700", []entities.Headcount{2, 6, 6, 6, 4, 4}},
}

func newTestProblem(t *testing.T, s scenario) *entities.Problem {
	t.Helper()
	p, err := entities.NewProblem(
		len(s.minimums),
		s.minimums,
		decimal.NewFromInt(s.excess),
		entities.HiringCost{Fixed: decimal.NewFromInt(s.fixed), PerHead: decimal.NewFromInt(s.perHead)},
	)
	require.NoError(t, err)
	return p
}

var testConfigs = []EngineConfig{
	{Strategy: TopDown},
	{Strategy: BottomUp},
	{Strategy: BottomUp, Parallelism: 4},
}

func TestOptimizer_Run_Scenarios(t *testing.T) {
	for _, s := range scenarios {
		for _, cfg := range testConfigs {
			t.Run(s.name+"/"+cfg.Strategy.String(), func(t *testing.T) {
				opt, err := NewOptimizerWithConfig(newTestProblem(t, s), cfg)
				require.NoError(t, err)

				result, err := opt.Run(context.Background())
				require.NoError(t, err)

				assert.True(t, result.TotalCost.Equal(decimal.RequireFromString(s.cost)),
					"expected total %s, got %s", s.cost, result.TotalCost)
				if diff := cmp.Diff(s.trace, result.Trace); diff != "" {
					t.Errorf("trace mismatch (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestOptimizer_Run_CanonicalWeekCosts(t *testing.T) {
	opt, err := NewOptimizer(newTestProblem(t, scenarios[0]))
	require.NoError(t, err)

	result, err := opt.Run(context.Background())
	require.NoError(t, err)

	want := []string{"1400", "1300", "0", "600", "0"}
	require.Len(t, result.WeekCosts, len(want))
	for i, w := range want {
		assert.True(t, result.WeekCosts[i].Equal(decimal.RequireFromString(w)),
			"week %d: expected %s, got %s", i+1, w, result.WeekCosts[i])
	}
	assert.Equal(t, "3300.00", result.TotalCost.StringFixed(2))
}

func TestOptimizer_Run_Invariants(t *testing.T) {
	for _, s := range scenarios {
		t.Run(s.name, func(t *testing.T) {
			problem := newTestProblem(t, s)
			opt, err := NewOptimizer(problem)
			require.NoError(t, err)

			result, err := opt.Run(context.Background())
			require.NoError(t, err)
			require.Len(t, result.Trace, problem.Weeks)

			sum := decimal.Zero
			var previous entities.Headcount
			for week, chosen := range result.Trace {
				assert.GreaterOrEqual(t, int(chosen), int(problem.Minimum(week)),
					"week %d staffed below its minimum", week+1)
				sum = sum.Add(problem.TransitionCost(week, previous, chosen))
				previous = chosen
			}
			assert.True(t, sum.Equal(result.TotalCost),
				"recomputed total %s differs from reported %s", sum, result.TotalCost)

			assert.True(t, result.TotalCost.Equal(bruteForce(problem)),
				"expected optimum %s, got %s", bruteForce(problem), result.TotalCost)
		})
	}
}

// bruteForce enumerates every plan staffed between each week's minimum and the maximum minimum
func bruteForce(p *entities.Problem) decimal.Decimal {
	maxMin := p.MaxMinimum()
	var best decimal.Decimal
	found := false

	var walk func(week int, previous entities.Headcount, acc decimal.Decimal)
	walk = func(week int, previous entities.Headcount, acc decimal.Decimal) {
		if week == p.Weeks {
			if !found || acc.LessThan(best) {
				best, found = acc, true
			}
			return
		}
		for c := p.Minimum(week); c <= maxMin; c++ {
			walk(week+1, c, acc.Add(p.TransitionCost(week, previous, c)))
		}
	}
	walk(0, 0, decimal.Zero)
	return best
}

func TestOptimizer_Run_SingleWeek(t *testing.T) {
	p, err := entities.NewProblem(1, []entities.Headcount{7}, decimal.NewFromInt(300),
		entities.HiringCost{Fixed: decimal.NewFromInt(400), PerHead: decimal.NewFromInt(200)})
	require.NoError(t, err)

	opt, err := NewOptimizer(p)
	require.NoError(t, err)

	result, err := opt.Run(context.Background())
	require.NoError(t, err)

	// fixed + per-head x minimum, no excess possible
	assert.Equal(t, []entities.Headcount{7}, result.Trace)
	assert.Equal(t, "1800.00", result.TotalCost.StringFixed(2))
	assert.Equal(t, 0, result.Stats.MemoEntries)
}

func TestOptimizer_Run_SingleWeekLargeMinimum(t *testing.T) {
	const minimum = entities.Headcount(1 << 30)
	p, err := entities.NewProblem(1, []entities.Headcount{minimum}, decimal.NewFromInt(300),
		entities.HiringCost{Fixed: decimal.NewFromInt(400), PerHead: decimal.NewFromInt(200)})
	require.NoError(t, err)

	expected := decimal.NewFromInt(400).Add(decimal.NewFromInt(200).Mul(decimal.NewFromInt(1 << 30)))

	for _, strategy := range []Strategy{TopDown, BottomUp} {
		t.Run(strategy.String(), func(t *testing.T) {
			opt, err := NewOptimizerWithConfig(p, EngineConfig{Strategy: strategy, Parallelism: 4})
			require.NoError(t, err)

			result, err := opt.Run(context.Background())
			require.NoError(t, err)

			assert.Equal(t, []entities.Headcount{minimum}, result.Trace)
			assert.True(t, expected.Equal(result.TotalCost), "got %s", result.TotalCost)
			assert.Equal(t, 0, result.Stats.MemoEntries)
			assert.Equal(t, 0, result.Stats.StatesEvaluated)
		})
	}
}

func TestRun_Solve_TieBreaksToSmallestHeadcount(t *testing.T) {
	problem := newTestProblem(t, scenarios[4])
	r := newRun(problem)

	// staffing 3 or 5 in week one both cost 800 overall
	cheapest := problem.TransitionCost(0, 0, 3).Add(r.solve(1, 3).Cost)
	largest := problem.TransitionCost(0, 0, 5).Add(r.solve(1, 5).Cost)
	require.True(t, cheapest.Equal(largest), "fixture no longer produces a tie: %s vs %s", cheapest, largest)

	entry := r.solve(0, 0)
	assert.Equal(t, entities.Headcount(3), entry.Choice)
	assert.Equal(t, "800", entry.Cost.String())
}

func TestRun_Solve_Memoizes(t *testing.T) {
	r := newRun(newTestProblem(t, scenarios[0]))

	first := r.solve(0, 0)
	entries := r.memo.len()
	states := r.states.Load()
	require.Greater(t, entries, 0)

	second := r.solve(0, 0)
	assert.Equal(t, first, second)
	assert.Equal(t, entries, r.memo.len(), "memo table grew on repeated lookup")
	assert.Equal(t, states, r.states.Load(), "subproblem was re-evaluated")
	assert.GreaterOrEqual(t, r.memo.hits.Load(), int64(1))

	cached, ok := r.memo.get(dto.MemoKey{Week: 0, Incoming: 0})
	require.True(t, ok)
	assert.Equal(t, first, cached)
}

func TestOptimizer_Run_Deterministic(t *testing.T) {
	for _, cfg := range testConfigs {
		t.Run(cfg.Strategy.String(), func(t *testing.T) {
			opt, err := NewOptimizerWithConfig(newTestProblem(t, scenarios[6]), cfg)
			require.NoError(t, err)

			first, err := opt.Run(context.Background())
			require.NoError(t, err)
			second, err := opt.Run(context.Background())
			require.NoError(t, err)

			assert.True(t, first.TotalCost.Equal(second.TotalCost))
			assert.Equal(t, first.Trace, second.Trace)
			// a leaked memo table would turn the second run's misses into hits
			assert.Equal(t, first.Stats.MemoEntries, second.Stats.MemoEntries)
			assert.Equal(t, first.Stats.MemoMisses, second.Stats.MemoMisses)
			assert.Equal(t, first.Stats.StatesEvaluated, second.Stats.StatesEvaluated)
			assert.NotEqual(t, first.RunID, second.RunID)
		})
	}
}

func TestOptimizer_Run_Cancelled(t *testing.T) {
	for _, cfg := range testConfigs {
		t.Run(cfg.Strategy.String(), func(t *testing.T) {
			opt, err := NewOptimizerWithConfig(newTestProblem(t, scenarios[0]), cfg)
			require.NoError(t, err)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err = opt.Run(ctx)
			require.Error(t, err)
			assert.True(t, errors.Is(err, context.Canceled))
		})
	}
}

func TestNewOptimizer_RejectsInvalidProblem(t *testing.T) {
	_, err := NewOptimizer(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, entities.ErrInvalidProblem))

	// built without NewProblem, so never validated
	bad := &entities.Problem{Weeks: 3, Minimums: []entities.Headcount{1, 2}}
	_, err = NewOptimizer(bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, entities.ErrInvalidProblem))
	assert.Equal(t, "expected 3 weekly minimums, got 2", err.Error())
}

type recordingMetrics struct {
	runs  []dto.SolveStats
	total decimal.Decimal
}

func (m *recordingMetrics) ObserveRun(stats dto.SolveStats, total decimal.Decimal) {
	m.runs = append(m.runs, stats)
	m.total = total
}

func TestOptimizer_Run_RecordsMetrics(t *testing.T) {
	metrics := &recordingMetrics{}
	opt, err := NewOptimizerWithConfig(newTestProblem(t, scenarios[0]), EngineConfig{Strategy: BottomUp},
		WithMetrics(metrics))
	require.NoError(t, err)

	_, err = opt.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, metrics.runs, 1)
	assert.Equal(t, "bottom-up", metrics.runs[0].Strategy)
	assert.Equal(t, "3300", metrics.total.String())
	// week one has a single reachable incoming headcount, later weeks range up to 8
	assert.Equal(t, 1+(8-5+1)+(8-7+1)+(8-8+1), metrics.runs[0].MemoEntries)
	assert.Zero(t, metrics.runs[0].MemoMisses)
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input    string
		expected Strategy
		wantErr  bool
	}{
		{"top-down", TopDown, false},
		{"", TopDown, false},
		{"Bottom-Up", BottomUp, false},
		{"bottomup", BottomUp, false},
		{"sideways", TopDown, true},
	}

	for _, tt := range tests {
		got, err := ParseStrategy(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.expected, got)
	}
}

func TestOptimizer_Run_LogsEveryWeek(t *testing.T) {
	core, logs := observer.New(zapcore.Level(-logging.TRACE))
	opt, err := NewOptimizer(newTestProblem(t, scenarios[0]), WithLogger(logging.NewWithCore(core)))
	require.NoError(t, err)

	_, err = opt.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, logs.FilterMessage("Week planned").Len())
	completed := logs.FilterMessage("Optimization completed").All()
	require.Len(t, completed, 1)
	assert.Equal(t, "3300.00", completed[0].ContextMap()["totalCost"])
}
