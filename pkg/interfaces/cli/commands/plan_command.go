package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/shopspring/decimal"

	"github.com/vsinha/workforce/pkg/application/services/optimizer"
	"github.com/vsinha/workforce/pkg/application/services/orchestration"
	"github.com/vsinha/workforce/pkg/application/services/report"
	"github.com/vsinha/workforce/pkg/domain/entities"
	"github.com/vsinha/workforce/pkg/domain/repositories"
	"github.com/vsinha/workforce/pkg/infrastructure/config"
	"github.com/vsinha/workforce/pkg/infrastructure/events"
	"github.com/vsinha/workforce/pkg/infrastructure/logging"
	"github.com/vsinha/workforce/pkg/infrastructure/metrics"
	"github.com/vsinha/workforce/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/workforce/pkg/infrastructure/repositories/file"
	"github.com/vsinha/workforce/pkg/infrastructure/repositories/postgres"
	"github.com/vsinha/workforce/pkg/infrastructure/scenario"
	"github.com/vsinha/workforce/pkg/interfaces/cli/output"
)

// DefaultPlanName is used when neither a scenario nor --name names the plan
const DefaultPlanName = "workforce-plan"

// Config holds configuration for the plan command
type Config struct {
	// Exactly one problem source: a scenario file, a minimums CSV or inline minimums
	ScenarioFile string
	MinimumsCSV  string
	Minimums     []int

	// Weeks overrides the horizon when positive
	Weeks int
	Name  string

	// Cost parameters for CSV and inline minimums, as decimal strings
	ExcessCost    string
	HiringFixed   string
	HiringPerHead string

	// StrategySet is true when --strategy was given; otherwise a scenario's own strategy wins
	StrategySet bool
	Verbose     bool

	Settings *config.Config
	Out      io.Writer
	Err      io.Writer

	// Repositories receive the plan in addition to the ones derived from Settings
	Repositories []repositories.PlanRepository
}

// PlanCommand handles the plan execution logic
type PlanCommand struct {
	config Config
}

// NewPlanCommand creates a new plan command with the given configuration
func NewPlanCommand(cfg Config) *PlanCommand {
	if cfg.Settings == nil {
		cfg.Settings = config.Default()
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Err == nil {
		cfg.Err = os.Stderr
	}
	return &PlanCommand{config: cfg}
}

// Execute runs the plan command
func (c *PlanCommand) Execute(ctx context.Context) error {
	if err := c.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	settings := c.config.Settings
	logger, err := logging.New(settings.LogLevel, logging.Format(settings.LogFormat))
	if err != nil {
		return err
	}

	name, problem, scenarioStrategy, err := c.resolveProblem()
	if err != nil {
		return err
	}

	strategyName := settings.Strategy
	if !c.config.StrategySet && scenarioStrategy != "" {
		strategyName = scenarioStrategy
	}
	strategy, err := optimizer.ParseStrategy(strategyName)
	if err != nil {
		return err
	}

	if c.config.Verbose {
		c.printHeader(name, problem, strategy)
	}

	return runPlanning(ctx, planningRun{
		name:     name,
		problem:  problem,
		engine:   optimizer.EngineConfig{Strategy: strategy, Parallelism: settings.Parallelism},
		settings: settings,
		logger:   logger,
		err:      c.config.Err,
		verbose:  c.config.Verbose,
		extra:    c.config.Repositories,
		render: func(planning *orchestration.PlanningResult) error {
			return output.Generate(planning.Result, planning.Plan, output.Config{
				Format:    settings.Format,
				Out:       c.config.Out,
				Verbose:   c.config.Verbose,
				ChartPath: settings.Chart,
			})
		},
	})
}

// validateInputs validates the command configuration
func (c *PlanCommand) validateInputs() error {
	sources := 0
	if c.config.ScenarioFile != "" {
		sources++
	}
	if c.config.MinimumsCSV != "" {
		sources++
	}
	if len(c.config.Minimums) > 0 {
		sources++
	}
	if sources != 1 {
		return fmt.Errorf("must specify exactly one of --scenario, --minimums-csv or --minimums")
	}
	if c.config.Weeks < 0 {
		return fmt.Errorf("--weeks cannot be negative: %d", c.config.Weeks)
	}
	return nil
}

// resolveProblem builds the problem from whichever source was given
func (c *PlanCommand) resolveProblem() (string, *entities.Problem, string, error) {
	if c.config.ScenarioFile != "" {
		s, err := scenario.Load(c.config.ScenarioFile)
		if err != nil {
			return "", nil, "", err
		}
		if c.config.Weeks > 0 {
			s.Weeks = c.config.Weeks
		}
		problem, err := s.Problem()
		if err != nil {
			return "", nil, "", fmt.Errorf("scenario %s: %w", c.config.ScenarioFile, err)
		}
		name := c.config.Name
		if name == "" {
			name = s.Name
		}
		return name, problem, s.Strategy, nil
	}

	var minimums []entities.Headcount
	if c.config.MinimumsCSV != "" {
		loaded, err := csv.NewLoader().LoadMinimums(c.config.MinimumsCSV)
		if err != nil {
			return "", nil, "", fmt.Errorf("error loading minimums: %w", err)
		}
		minimums = loaded
	} else {
		minimums = make([]entities.Headcount, len(c.config.Minimums))
		for i, m := range c.config.Minimums {
			minimums[i] = entities.Headcount(m)
		}
	}

	excess, err := parseAmount("excess-cost", c.config.ExcessCost)
	if err != nil {
		return "", nil, "", err
	}
	fixed, err := parseAmount("hiring-fixed", c.config.HiringFixed)
	if err != nil {
		return "", nil, "", err
	}
	perHead, err := parseAmount("hiring-per-head", c.config.HiringPerHead)
	if err != nil {
		return "", nil, "", err
	}

	weeks := c.config.Weeks
	if weeks == 0 {
		weeks = len(minimums)
	}
	problem, err := entities.NewProblem(weeks, minimums, excess, entities.HiringCost{Fixed: fixed, PerHead: perHead})
	if err != nil {
		return "", nil, "", err
	}

	name := c.config.Name
	if name == "" {
		name = DefaultPlanName
	}
	return name, problem, "", nil
}

// printHeader prints the command header information
func (c *PlanCommand) printHeader(name string, problem *entities.Problem, strategy optimizer.Strategy) {
	w := c.config.Err
	fmt.Fprintf(w, "Workforce planner\n")
	switch {
	case c.config.ScenarioFile != "":
		fmt.Fprintf(w, "Scenario file: %s\n", c.config.ScenarioFile)
	case c.config.MinimumsCSV != "":
		fmt.Fprintf(w, "Minimums file: %s\n", c.config.MinimumsCSV)
	}
	fmt.Fprintf(w, "Plan: %s (%d weeks, peak minimum %d)\n", name, problem.Weeks, problem.MaxMinimum())
	fmt.Fprintf(w, "Excess cost: %s per worker, hiring cost: %s + %s per worker\n",
		report.FormatMoney(problem.ExcessCost), report.FormatMoney(problem.Hiring.Fixed), report.FormatMoney(problem.Hiring.PerHead))
	fmt.Fprintf(w, "Strategy: %s\n", strategy)
	fmt.Fprintf(w, "Output format: %s\n", c.config.Settings.Format)
	if c.config.Settings.OutputDir != "" {
		fmt.Fprintf(w, "Output directory: %s\n", c.config.Settings.OutputDir)
	}
	fmt.Fprintln(w)
}

func parseAmount(flag, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q: %w", flag, value, err)
	}
	return d, nil
}

// planningRun is the part shared by the plan and example commands:
// wire repositories, events and metrics around one orchestrated run.
type planningRun struct {
	name     string
	problem  *entities.Problem
	engine   optimizer.EngineConfig
	settings *config.Config
	logger   logr.Logger
	err      io.Writer
	verbose  bool
	extra    []repositories.PlanRepository
	render   func(*orchestration.PlanningResult) error
}

func runPlanning(ctx context.Context, run planningRun) error {
	repos, closeRepos, err := buildRepositories(ctx, run.settings, run.extra)
	if err != nil {
		return err
	}
	defer closeRepos()

	recorder := metrics.NewRecorder()
	eventStore := events.NewInMemoryEventStore(run.logger)
	var progress *progressPrinter
	if run.verbose {
		progress = &progressPrinter{}
		if err := eventStore.Subscribe(progressEvents, progress); err != nil {
			return fmt.Errorf("failed to subscribe progress output: %w", err)
		}
	}
	orchestrator := orchestration.NewPlanningOrchestrator(
		orchestration.WithRepositories(repos...),
		orchestration.WithEventStore(eventStore),
		orchestration.WithLogger(run.logger),
		orchestration.WithMetrics(recorder),
	)

	planning, runErr := orchestrator.RunPlanning(ctx, orchestration.PlanRequest{
		Name:    run.name,
		Problem: run.problem,
		Engine:  run.engine,
	})
	eventStore.Wait()
	if planning == nil {
		if progress != nil {
			_ = progress.Flush(run.err)
		}
		return runErr
	}

	if err := run.render(planning); err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	if progress != nil {
		fmt.Fprintln(run.err)
		if err := progress.Flush(run.err); err != nil {
			return err
		}
	}

	if run.settings.MetricsFile != "" {
		if err := recorder.WriteTextfile(run.settings.MetricsFile); err != nil {
			return err
		}
	}

	if run.verbose {
		fmt.Fprintf(run.err, "\n%s\n", planning.GetSummary())
	}

	// Persistence failures are reported after the plan has been shown
	if runErr != nil {
		return fmt.Errorf("plan computed but not fully persisted: %w", runErr)
	}
	return nil
}

// buildRepositories returns every destination configured in settings followed by extra
func buildRepositories(ctx context.Context, settings *config.Config, extra []repositories.PlanRepository) ([]repositories.PlanRepository, func(), error) {
	var repos []repositories.PlanRepository
	closeRepos := func() {}

	if settings.OutputDir != "" {
		repos = append(repos, file.NewPlanRepository(settings.OutputDir, settings.ReportFile, report.WriteText))
	}

	if settings.DatabaseURL != "" {
		pg, err := postgres.Connect(ctx, settings.DatabaseURL)
		if err != nil {
			return nil, closeRepos, err
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, closeRepos, err
		}
		repos = append(repos, pg)
		closeRepos = pg.Close
	}

	return append(repos, extra...), closeRepos, nil
}
