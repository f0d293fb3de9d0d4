// Package commands wires the workforce CLI. Each subcommand resolves its settings
// through the config package and hands them to a Command whose Execute does the work.
package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vsinha/workforce/pkg/infrastructure/config"
)

const configFlag = "config"

// NewRootCommand builds the workforce command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "workforce",
		Short: "Cost-optimal weekly workforce planning",
		Long: `workforce plans weekly headcount over a fixed horizon. Each week must be staffed at or
above its minimum; idle workers cost an excess charge per week and every increase in
headcount costs a fixed hiring charge plus a charge per worker. Layoffs are free.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String(configFlag, "", "Path to a config file (yaml, json or toml)")
	flags.String(config.KeyLogLevel, config.Default().LogLevel, "Log level: trace, debug, info, warn, error")
	flags.String(config.KeyLogFormat, config.Default().LogFormat, "Log format: console or json")

	root.AddCommand(
		newPlanCmd(),
		newExampleCmd(),
		newValidateCmd(),
		newHistoryCmd(),
	)
	return root
}

// loadSettings resolves the settings of cmd from its flags, the environment and --config
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	configFile, err := cmd.Flags().GetString(configFlag)
	if err != nil {
		return nil, err
	}
	return config.Load(viper.New(), cmd.Flags(), configFile)
}

// addEngineFlags registers the optimizer settings shared by plan and example
func addEngineFlags(cmd *cobra.Command) {
	d := config.Default()
	flags := cmd.Flags()
	flags.String(config.KeyStrategy, d.Strategy, "Optimization strategy: top-down or bottom-up")
	flags.Int(config.KeyParallelism, d.Parallelism, "Concurrent headcounts per week for bottom-up (0 or 1 = sequential)")
	flags.String(config.KeyOutputDir, d.OutputDir, "Directory for the text report (empty to skip the report)")
	flags.String(config.KeyReportFile, d.ReportFile, "File name of the text report inside --output-dir")
	flags.String(config.KeyDatabaseURL, d.DatabaseURL, "PostgreSQL URL plans are stored in (optional)")
	flags.String(config.KeyMetricsFile, d.MetricsFile, "Write Prometheus metrics in text format to this file (optional)")
	flags.BoolP("verbose", "v", false, "Enable verbose output")
}

func newPlanCmd() *cobra.Command {
	var cfg Config

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute the cost-optimal staffing plan for a scenario",
		Example: `  workforce plan --scenario scenarios/peak_season.yaml -v
  workforce plan --minimums-csv data/minimums.csv --excess-cost 300 --hiring-fixed 400 --hiring-per-head 200
  workforce plan --minimums 5,7,8,4,6 --format json --output-dir results/
  workforce plan --scenario scenarios/peak_season.yaml --strategy bottom-up --parallelism 4 --chart plan.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			cfg.Settings = settings
			cfg.StrategySet = cmd.Flags().Changed(config.KeyStrategy)
			cfg.Verbose, _ = cmd.Flags().GetBool("verbose")
			cfg.Out = cmd.OutOrStdout()
			cfg.Err = cmd.ErrOrStderr()
			return NewPlanCommand(cfg).Execute(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfg.ScenarioFile, "scenario", "s", "", "Scenario file (.yaml, .yml or .json)")
	flags.StringVar(&cfg.MinimumsCSV, "minimums-csv", "", "CSV file with week,min_headcount rows")
	flags.IntSliceVar(&cfg.Minimums, "minimums", nil, "Comma separated minimum headcount per week")
	flags.IntVar(&cfg.Weeks, "weeks", 0, "Planning horizon in weeks (default: number of minimums)")
	flags.StringVar(&cfg.Name, "name", "", "Plan name (default: scenario name)")
	flags.StringVar(&cfg.ExcessCost, "excess-cost", "300", "Cost per idle worker per week")
	flags.StringVar(&cfg.HiringFixed, "hiring-fixed", "400", "Fixed cost of any week that hires")
	flags.StringVar(&cfg.HiringPerHead, "hiring-per-head", "200", "Cost per hired worker")
	flags.StringP(config.KeyFormat, "f", config.Default().Format, "Output format: text, json, yaml, csv")
	flags.String(config.KeyChart, "", "Write an SVG staffing chart to this path (optional)")
	addEngineFlags(cmd)

	cmd.MarkFlagsMutuallyExclusive("scenario", "minimums-csv", "minimums")
	cmd.MarkFlagsOneRequired("scenario", "minimums-csv", "minimums")
	return cmd
}

func newExampleCmd() *cobra.Command {
	var cfg ExampleConfig

	cmd := &cobra.Command{
		Use:   "example",
		Short: "Solve the built-in five week example",
		Long: `Solves five weeks with minimums 5, 7, 8, 4 and 6, an excess cost of 300 per idle
worker and a hiring cost of 400 plus 200 per hired worker, then prints the total
cost and the headcount chosen for each week.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			cfg.Settings = settings
			cfg.Verbose, _ = cmd.Flags().GetBool("verbose")
			cfg.Out = cmd.OutOrStdout()
			cfg.Err = cmd.ErrOrStderr()
			return NewExampleCommand(cfg).Execute(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&cfg.SaveScenario, "save-scenario", "", "Also write the example as a scenario file (.yaml or .json)")
	addEngineFlags(cmd)
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenario>...",
		Short: "Check scenario files against the schema and problem rules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewValidateCommand(args, cmd.OutOrStdout()).Execute()
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var cfg HistoryConfig

	cmd := &cobra.Command{
		Use:   "history [plan-id]",
		Short: "List plans stored in PostgreSQL, or print one in full",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			cfg.Settings = settings
			cfg.Out = cmd.OutOrStdout()
			if len(args) == 1 {
				cfg.PlanID = args[0]
			}
			return NewHistoryCommand(cfg).Execute(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&cfg.Limit, "limit", "n", 20, "Maximum number of plans to list (0 = all)")
	cmd.Flags().String(config.KeyDatabaseURL, "", "PostgreSQL URL plans are stored in")
	return cmd
}
