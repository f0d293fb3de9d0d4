package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"

	"github.com/vsinha/workforce/pkg/application/services/optimizer"
	"github.com/vsinha/workforce/pkg/application/services/orchestration"
	"github.com/vsinha/workforce/pkg/application/services/report"
	"github.com/vsinha/workforce/pkg/domain/entities"
	"github.com/vsinha/workforce/pkg/domain/repositories"
	"github.com/vsinha/workforce/pkg/infrastructure/config"
	"github.com/vsinha/workforce/pkg/infrastructure/logging"
	"github.com/vsinha/workforce/pkg/infrastructure/scenario"
)

// ExampleName names the built-in five week scenario
const ExampleName = "example"

// ExampleProblem returns the built-in scenario: five weeks with minimums 5, 7, 8, 4, 6,
// an excess cost of 300 per idle worker and a hiring cost of 400 plus 200 per hire.
func ExampleProblem() *entities.Problem {
	problem, err := entities.NewProblem(5, []entities.Headcount{5, 7, 8, 4, 6}, decimal.NewFromInt(300),
		entities.HiringCost{Fixed: decimal.NewFromInt(400), PerHead: decimal.NewFromInt(200)})
	if err != nil {
		panic(fmt.Sprintf("example problem is invalid: %v", err))
	}
	return problem
}

// ExampleConfig holds configuration for the example command
type ExampleConfig struct {
	// SaveScenario writes the example as a scenario file (.yaml, .yml or .json) when set
	SaveScenario string
	Verbose      bool

	Settings *config.Config
	Out      io.Writer
	Err      io.Writer

	Repositories []repositories.PlanRepository
}

// ExampleCommand solves the built-in scenario and prints its total cost and staffing
type ExampleCommand struct {
	config ExampleConfig
}

// NewExampleCommand creates a new example command with the given configuration
func NewExampleCommand(cfg ExampleConfig) *ExampleCommand {
	if cfg.Settings == nil {
		cfg.Settings = config.Default()
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Err == nil {
		cfg.Err = os.Stderr
	}
	return &ExampleCommand{config: cfg}
}

// Execute runs the example command
func (c *ExampleCommand) Execute(ctx context.Context) error {
	settings := c.config.Settings
	logger, err := logging.New(settings.LogLevel, logging.Format(settings.LogFormat))
	if err != nil {
		return err
	}

	strategy, err := optimizer.ParseStrategy(settings.Strategy)
	if err != nil {
		return err
	}

	problem := ExampleProblem()
	if c.config.SaveScenario != "" {
		if err := c.saveScenario(problem); err != nil {
			return err
		}
	}

	return runPlanning(ctx, planningRun{
		name:     ExampleName,
		problem:  problem,
		engine:   optimizer.EngineConfig{Strategy: strategy, Parallelism: settings.Parallelism},
		settings: settings,
		logger:   logger,
		err:      c.config.Err,
		verbose:  c.config.Verbose,
		extra:    c.config.Repositories,
		render: func(planning *orchestration.PlanningResult) error {
			if _, err := fmt.Fprintf(c.config.Out, "=== Total optimization cost: %s\n", report.FormatMoney(planning.Result.TotalCost)); err != nil {
				return err
			}
			_, err := fmt.Fprintf(c.config.Out, "=== Optimal workers per week: %v\n", planning.Result.Trace)
			return err
		},
	})
}

func (c *ExampleCommand) saveScenario(problem *entities.Problem) (err error) {
	format, err := scenario.FormatFromPath(c.config.SaveScenario)
	if err != nil {
		return err
	}

	f, err := os.Create(c.config.SaveScenario)
	if err != nil {
		return fmt.Errorf("failed to create scenario file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close scenario file: %w", closeErr)
		}
	}()

	if err := scenario.FromProblem(ExampleName, problem).Write(f, format); err != nil {
		return err
	}
	if c.config.Verbose {
		fmt.Fprintf(c.config.Err, "Scenario saved to: %s\n", c.config.SaveScenario)
	}
	return nil
}
