package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/workforce/pkg/domain/entities"
	"github.com/vsinha/workforce/pkg/domain/repositories"
	"github.com/vsinha/workforce/pkg/infrastructure/config"
	"github.com/vsinha/workforce/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/workforce/pkg/infrastructure/scenario"
	"github.com/vsinha/workforce/pkg/interfaces/cli/output"
)

const peakSeasonYAML = `name: peak-season
minimums: [5, 7, 8, 4, 6]
excess_cost: 300
hiring_cost:
  fixed: 400
  per_head: 200
strategy: bottom-up
`

// Commands write their text report to the working directory by default
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "workforce-commands")
	if err != nil {
		panic(err)
	}
	if err := os.Chdir(dir); err != nil {
		panic(err)
	}
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExampleCommand_PrintsTotalAndTrace(t *testing.T) {
	for _, strategy := range []string{"top-down", "bottom-up"} {
		t.Run(strategy, func(t *testing.T) {
			stdout, _, err := runCLI(t, "example", "--strategy", strategy)
			require.NoError(t, err)

			assert.Equal(t,
				"=== Total optimization cost: $3300.00\n=== Optimal workers per week: [5 8 8 6 6]\n",
				stdout)
		})
	}
}

func TestExampleCommand_WritesReportAndScenario(t *testing.T) {
	dir := t.TempDir()
	scenarioPath := filepath.Join(dir, "example.yaml")

	_, stderr, err := runCLI(t, "example", "--output-dir", dir, "--save-scenario", scenarioPath, "--verbose")
	require.NoError(t, err)

	report, err := os.ReadFile(filepath.Join(dir, config.Default().ReportFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(report), "Workforce optimization results:\n"))
	assert.Contains(t, string(report), "-- Decision: lay off 2 workers")
	assert.True(t, strings.HasSuffix(string(report), "Total optimization cost: $3300.00\n"))

	s, err := scenario.Load(scenarioPath)
	require.NoError(t, err)
	problem, err := s.Problem()
	require.NoError(t, err)
	assert.Equal(t, ExampleProblem().Minimums, problem.Minimums)
	assert.True(t, problem.ExcessCost.Equal(ExampleProblem().ExcessCost))

	assert.Contains(t, stderr, "Scenario saved to: "+scenarioPath)
	assert.Contains(t, stderr, "Planning Summary (5 weeks, top-down)")
}

func TestExampleCommand_SaveScenario(t *testing.T) {
	dir := t.TempDir()
	var stderr bytes.Buffer

	path := filepath.Join(dir, "example.json")
	cmd := NewExampleCommand(ExampleConfig{SaveScenario: path, Verbose: true, Out: &bytes.Buffer{}, Err: &stderr})
	require.NoError(t, cmd.saveScenario(ExampleProblem()))
	assert.Equal(t, "Scenario saved to: "+path+"\n", stderr.String())

	s, err := scenario.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ExampleName, s.Name)

	cmd = NewExampleCommand(ExampleConfig{SaveScenario: filepath.Join(dir, "missing", "example.yaml")})
	assert.ErrorContains(t, cmd.saveScenario(ExampleProblem()), "failed to create scenario file")

	cmd = NewExampleCommand(ExampleConfig{SaveScenario: filepath.Join(dir, "example.toml")})
	assert.ErrorContains(t, cmd.saveScenario(ExampleProblem()), "unsupported scenario file extension")
}

func TestPlanCommand_InlineMinimumsCSV(t *testing.T) {
	stdout, _, err := runCLI(t, "plan", "--minimums", "5,7,8,4,6", "--format", "csv", "--name", "inline")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "week,min_headcount,headcount,previous,action,change,cost", lines[0])
	assert.Equal(t, "2,7,8,5,hire,3,1300.00", lines[2])
	assert.Equal(t, "4,4,6,8,lay_off,2,600.00", lines[4])
}

func TestPlanCommand_ScenarioStrategyAndJSON(t *testing.T) {
	path := writeFile(t, "peak.yaml", peakSeasonYAML)

	stdout, _, err := runCLI(t, "plan", "--scenario", path, "--format", "json")
	require.NoError(t, err)

	var doc struct {
		Plan struct {
			Name      string `json:"name"`
			TotalCost string `json:"total_cost"`
		} `json:"plan"`
		Stats struct {
			Strategy string `json:"strategy"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "peak-season", doc.Plan.Name)
	assert.Equal(t, "3300", doc.Plan.TotalCost)
	assert.Equal(t, "bottom-up", doc.Stats.Strategy, "scenario strategy applies when --strategy is not given")

	stdout, _, err = runCLI(t, "plan", "--scenario", path, "--format", "json", "--strategy", "top-down")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "top-down", doc.Stats.Strategy, "explicit flag beats the scenario")
}

func TestPlanCommand_MinimumsFromCSVFile(t *testing.T) {
	path := writeFile(t, "minimums.csv", "week,min_headcount\n1,5\n2,7\n3,8\n4,4\n5,6\n")
	chart := filepath.Join(t.TempDir(), "plan.svg")

	stdout, _, err := runCLI(t, "plan", "--minimums-csv", path, "--chart", chart)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Total cost: $3300.00")
	assert.Contains(t, stdout, DefaultPlanName)

	svg, err := os.ReadFile(chart)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(svg), "<svg"))
}

func TestPlanCommand_EnvironmentSelectsFormat(t *testing.T) {
	t.Setenv("WORKFORCE_FORMAT", "yaml")

	stdout, _, err := runCLI(t, "plan", "--minimums", "4")
	require.NoError(t, err)
	assert.Contains(t, stdout, "plan:")
	assert.Contains(t, stdout, "stats:")
}

func TestPlanCommand_MetricsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workforce.prom")

	_, _, err := runCLI(t, "plan", "--minimums", "5,7,8,4,6", "--metrics-file", path)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `workforce_optimizer_runs_total{strategy="top-down"} 1`)
	assert.Contains(t, string(content), "workforce_plan_total_cost 3300")
}

func TestPlanCommand_InputErrors(t *testing.T) {
	csvPath := writeFile(t, "minimums.csv", "week,min_headcount\n1,5\n")

	tests := []struct {
		name     string
		args     []string
		contains string
		is       error
	}{
		{name: "no source", args: []string{"plan"}, contains: "scenario"},
		{name: "two sources", args: []string{"plan", "--minimums", "1", "--minimums-csv", csvPath}, contains: "minimums-csv"},
		{name: "negative minimum", args: []string{"plan", "--minimums", "5,-1"}, is: entities.ErrInvalidProblem},
		{name: "bad amount", args: []string{"plan", "--minimums", "5", "--excess-cost", "lots"}, contains: "invalid --excess-cost"},
		{name: "bad strategy", args: []string{"plan", "--minimums", "5", "--strategy", "sideways"}, contains: "invalid strategy"},
		{name: "bad format", args: []string{"plan", "--minimums", "5", "--format", "xml"}, contains: "invalid format"},
		{name: "missing scenario", args: []string{"plan", "--scenario", "missing.yaml"}, contains: "missing.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			require.Error(t, err)
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestPlanCommand_Execute(t *testing.T) {
	repo := memory.NewPlanRepository(1)
	var stdout, stderr bytes.Buffer

	cmd := NewPlanCommand(Config{
		Minimums:      []int{5, 7, 8, 4, 6},
		Name:          "direct",
		ExcessCost:    "300",
		HiringFixed:   "400",
		HiringPerHead: "200",
		Verbose:       true,
		Out:           &stdout,
		Err:           &stderr,
		Repositories:  []repositories.PlanRepository{repo},
	})
	require.NoError(t, cmd.Execute(context.Background()))

	assert.Equal(t, 1, repo.Len())
	plans, err := repo.ListPlans(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "direct", plans[0].Name)
	assert.Equal(t, []entities.Headcount{5, 8, 8, 6, 6}, plans[0].Trace())

	assert.Contains(t, stderr.String(), "Plan: direct (5 weeks, peak minimum 8)")
	assert.Contains(t, stderr.String(), "Plan saved to: memory")
}

func TestPlanCommand_VerboseReportsProgress(t *testing.T) {
	dir := t.TempDir()
	stdout, stderr, err := runCLI(t, "plan", "--minimums", "5,7,8,4,6", "--name", "progress",
		"--output-dir", dir, "--format", "json", "--verbose")
	require.NoError(t, err)

	var doc output.Document
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc), "progress stays off stdout")

	weekLines := []string{
		"Week 1: hire 5 workers (headcount 5, cost $1400.00)",
		"Week 2: hire 3 workers (headcount 8, cost $1300.00)",
		"Week 3: maintain current headcount (headcount 8, cost $0.00)",
		"Week 4: lay off 2 workers (headcount 6, cost $600.00)",
		"Week 5: maintain current headcount (headcount 6, cost $0.00)",
	}
	last := -1
	for _, line := range weekLines {
		idx := strings.Index(stderr, line)
		require.GreaterOrEqual(t, idx, 0, "missing %q in:\n%s", line, stderr)
		assert.Greater(t, idx, last, "weeks are reported in order")
		last = idx
	}
	assert.Contains(t, stderr, "Plan saved to: file:"+filepath.Join(dir, config.Default().ReportFile))
}

func TestPlanCommand_VerboseReportsPersistFailure(t *testing.T) {
	blocker := writeFile(t, "not-a-dir", "")
	_, stderr, err := runCLI(t, "plan", "--minimums", "4", "--output-dir", blocker, "--verbose")

	require.Error(t, err)
	assert.True(t, errors.Is(err, repositories.ErrPersist))
	assert.Contains(t, stderr, "Week 1: hire 4 workers (headcount 4, cost $1200.00)")
	assert.Contains(t, stderr, "Plan failed during persist: failed to persist plan to "+blocker)
}

func TestPlanCommand_ReportFileDefaultsToWorkingDirectory(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := runCLI(t, "plan", "--minimums", "5,7,8,4,6")
	require.NoError(t, err)
	content, err := os.ReadFile(config.Default().ReportFile)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(content), "Total optimization cost: $3300.00\n"))

	require.NoError(t, os.Remove(config.Default().ReportFile))
	_, _, err = runCLI(t, "plan", "--minimums", "5,7,8,4,6", "--output-dir", "")
	require.NoError(t, err)
	_, err = os.Stat(config.Default().ReportFile)
	assert.True(t, os.IsNotExist(err), "an empty --output-dir skips the report")
}

func TestPlanCommand_QuietByDefault(t *testing.T) {
	_, stderr, err := runCLI(t, "plan", "--minimums", "5,7,8,4,6")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "Week 1:")
}

func TestPlanCommand_PersistFailureStillShowsPlan(t *testing.T) {
	blocker := writeFile(t, "not-a-dir", "")
	settings := config.Default()
	settings.OutputDir = blocker
	var stdout bytes.Buffer

	cmd := NewPlanCommand(Config{
		Minimums:      []int{5, 7, 8, 4, 6},
		ExcessCost:    "300",
		HiringFixed:   "400",
		HiringPerHead: "200",
		Settings:      settings,
		Out:           &stdout,
		Err:           &bytes.Buffer{},
	})
	err := cmd.Execute(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, repositories.ErrPersist))
	assert.Contains(t, stdout.String(), "Total cost: $3300.00")
}

func TestValidateCommand(t *testing.T) {
	valid := writeFile(t, "valid.yaml", peakSeasonYAML)
	invalid := writeFile(t, "invalid.json", `{"name": "broken", "minimums": [1, 2], "excess_cost": 10}`)

	stdout, _, err := runCLI(t, "validate", valid)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ "+valid+": peak-season, 5 weeks, peak minimum 8")

	stdout, _, err = runCLI(t, "validate", valid, invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 scenario files are invalid")
	assert.Contains(t, stdout, "✗ "+invalid)
	assert.Contains(t, stdout, "hiring_cost")
}

func TestHistoryCommand(t *testing.T) {
	repo := memory.NewPlanRepository(1)
	var discard bytes.Buffer
	require.NoError(t, NewExampleCommand(ExampleConfig{
		Out:          &discard,
		Err:          &discard,
		Repositories: []repositories.PlanRepository{repo},
	}).Execute(context.Background()))

	plans, err := repo.ListPlans(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	id := plans[0].ID.String()

	var list bytes.Buffer
	require.NoError(t, NewHistoryCommand(HistoryConfig{Reader: repo, Out: &list}).Execute(context.Background()))
	assert.Contains(t, list.String(), id)
	assert.Contains(t, list.String(), ExampleName)
	assert.Contains(t, list.String(), "$3300.00")

	var single bytes.Buffer
	require.NoError(t, NewHistoryCommand(HistoryConfig{Reader: repo, Out: &single, PlanID: id}).Execute(context.Background()))
	assert.True(t, strings.HasPrefix(single.String(), "Workforce optimization results:"))

	err = NewHistoryCommand(HistoryConfig{Reader: repo, Out: &single, PlanID: "not-a-uuid"}).Execute(context.Background())
	assert.ErrorContains(t, err, "invalid plan id")

	err = NewHistoryCommand(HistoryConfig{Reader: memory.NewPlanRepository(0), Out: &single, PlanID: id}).Execute(context.Background())
	assert.ErrorIs(t, err, repositories.ErrPlanNotFound)

	var empty bytes.Buffer
	require.NoError(t, NewHistoryCommand(HistoryConfig{Reader: memory.NewPlanRepository(0), Out: &empty}).Execute(context.Background()))
	assert.Equal(t, "No stored plans\n", empty.String())
}

func TestHistoryCommand_RequiresDatabase(t *testing.T) {
	t.Setenv("WORKFORCE_DATABASE_URL", "")

	_, _, err := runCLI(t, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history requires --database-url")
}

func TestOutputFormatsAreAcceptedByConfig(t *testing.T) {
	for _, format := range []string{"text", "json", "yaml", "csv"} {
		settings := config.Default()
		settings.Format = format
		assert.NoError(t, settings.Validate(), format)
		assert.NoError(t, output.Generate(nil, emptyPlan(), output.Config{Format: format, Out: &bytes.Buffer{}}), format)
	}
}

func emptyPlan() *entities.PlanRecord {
	return &entities.PlanRecord{Name: "empty"}
}
