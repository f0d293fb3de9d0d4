package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"

	"github.com/vsinha/workforce/pkg/application/services/report"
	"github.com/vsinha/workforce/pkg/domain/entities"
	"github.com/vsinha/workforce/pkg/domain/repositories"
	"github.com/vsinha/workforce/pkg/infrastructure/config"
	"github.com/vsinha/workforce/pkg/infrastructure/repositories/postgres"
)

// HistoryConfig holds configuration for the history command
type HistoryConfig struct {
	// PlanID selects a single plan to print in full; empty lists recent plans
	PlanID string
	Limit  int

	Settings *config.Config
	Out      io.Writer

	// Reader replaces the database named in Settings
	Reader repositories.PlanReader
}

// HistoryCommand lists and prints stored plans
type HistoryCommand struct {
	config HistoryConfig
}

// NewHistoryCommand creates a new history command with the given configuration
func NewHistoryCommand(cfg HistoryConfig) *HistoryCommand {
	if cfg.Settings == nil {
		cfg.Settings = config.Default()
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	return &HistoryCommand{config: cfg}
}

// Execute runs the history command
func (c *HistoryCommand) Execute(ctx context.Context) error {
	reader := c.config.Reader
	if reader == nil {
		if c.config.Settings.DatabaseURL == "" {
			return fmt.Errorf("history requires --%s or %s_DATABASE_URL", config.KeyDatabaseURL, config.EnvPrefix)
		}
		pg, err := postgres.Connect(ctx, c.config.Settings.DatabaseURL)
		if err != nil {
			return err
		}
		defer pg.Close()
		reader = pg
	}

	if c.config.PlanID != "" {
		id, err := uuid.Parse(c.config.PlanID)
		if err != nil {
			return fmt.Errorf("invalid plan id %q: %w", c.config.PlanID, err)
		}
		plan, err := reader.GetPlan(ctx, id)
		if err != nil {
			return err
		}
		return report.WriteText(c.config.Out, plan)
	}

	plans, err := reader.ListPlans(ctx, c.config.Limit)
	if err != nil {
		return err
	}
	return c.writeList(plans)
}

func (c *HistoryCommand) writeList(plans []*entities.PlanRecord) error {
	if len(plans) == 0 {
		_, err := fmt.Fprintln(c.config.Out, "No stored plans")
		return err
	}

	renderer := lipgloss.NewRenderer(c.config.Out)
	cell := renderer.NewStyle().Padding(0, 1)
	header := cell.Bold(true)

	rows := make([][]string, 0, len(plans))
	for _, plan := range plans {
		rows = append(rows, []string{
			plan.ID.String(),
			plan.Name,
			plan.CreatedAt.Format("2006-01-02 15:04:05"),
			plan.Strategy,
			strconv.Itoa(len(plan.Weeks)),
			report.FormatMoney(plan.TotalCost),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Name", "Created", "Strategy", "Weeks", "Total cost").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	_, err := fmt.Fprintln(c.config.Out, t.Render())
	return err
}
