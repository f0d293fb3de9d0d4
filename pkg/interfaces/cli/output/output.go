package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/workforce/pkg/application/dto"
	"github.com/vsinha/workforce/pkg/application/services/report"
	"github.com/vsinha/workforce/pkg/domain/entities"
)

// Config holds configuration for output generation
type Config struct {
	Format  string
	Out     io.Writer
	Verbose bool
	// ChartPath receives an SVG staffing chart when set
	ChartPath string
}

// Document is the structured form written by the json and yaml formats
type Document struct {
	Plan  *entities.PlanRecord `json:"plan" yaml:"plan"`
	Stats dto.SolveStats       `json:"stats" yaml:"stats"`
}

// Generate writes the plan in the configured format
func Generate(result *dto.PlanResult, plan *entities.PlanRecord, config Config) error {
	if config.Out == nil {
		config.Out = os.Stdout
	}

	var err error
	switch config.Format {
	case "text", "":
		err = generateTextOutput(result, plan, config)
	case "json":
		err = generateJSONOutput(result, plan, config)
	case "yaml":
		err = generateYAMLOutput(result, plan, config)
	case "csv":
		err = generateCSVOutput(plan, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
	if err != nil {
		return err
	}

	if config.ChartPath != "" {
		if err := WriteChart(plan, config.ChartPath); err != nil {
			return err
		}
		if config.Verbose && (config.Format == "text" || config.Format == "") {
			fmt.Fprintf(config.Out, "Chart saved to: %s\n", config.ChartPath)
		}
	}
	return nil
}

// generateTextOutput creates the human-readable summary table
func generateTextOutput(result *dto.PlanResult, plan *entities.PlanRecord, config Config) error {
	renderer := lipgloss.NewRenderer(config.Out)

	title := renderer.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("WORKFORCE PLAN · %s", plan.Name))
	muted := renderer.NewStyle().Foreground(lipgloss.Color("#888888"))
	header := renderer.NewStyle().Bold(true).Padding(0, 1)
	cell := renderer.NewStyle().Padding(0, 1)
	actionStyles := map[entities.Action]lipgloss.Style{
		entities.Hire:     cell.Foreground(lipgloss.Color("#4CAF50")),
		entities.LayOff:   cell.Foreground(lipgloss.Color("#FF6B6B")),
		entities.Maintain: cell,
	}

	rows := make([][]string, 0, len(plan.Weeks))
	for _, week := range plan.Weeks {
		rows = append(rows, []string{
			strconv.Itoa(week.Week),
			strconv.Itoa(int(week.Minimum)),
			strconv.Itoa(int(week.Headcount)),
			report.FormatMoney(week.Cost),
			week.Decision(),
		})
	}

	weeks := plan.Weeks
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(renderer.NewStyle().Foreground(lipgloss.Color("#444444"))).
		Headers("Week", "Minimum", "Headcount", "Cost", "Decision").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if col == 4 && row >= 0 && row < len(weeks) {
				return actionStyles[weeks[row].Action]
			}
			return cell
		})

	total := renderer.NewStyle().Bold(true).
		Render(fmt.Sprintf("Total cost: %s", report.FormatMoney(plan.TotalCost)))

	sections := []string{title, t.Render(), total}
	if config.Verbose && result != nil {
		stats := result.Stats
		sections = append(sections, muted.Render(fmt.Sprintf(
			"Run %s · %s · %d subproblems · %d memo hits · %d states · %v",
			result.RunID, stats.Strategy, stats.MemoEntries, stats.MemoHits, stats.StatesEvaluated, stats.Duration)))
	}

	if _, err := fmt.Fprintln(config.Out, lipgloss.JoinVertical(lipgloss.Left, sections...)); err != nil {
		return fmt.Errorf("failed to write text output: %w", err)
	}
	return nil
}

// generateJSONOutput creates JSON output
func generateJSONOutput(result *dto.PlanResult, plan *entities.PlanRecord, config Config) error {
	encoder := json.NewEncoder(config.Out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(newDocument(result, plan)); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

// generateYAMLOutput creates YAML output
func generateYAMLOutput(result *dto.PlanResult, plan *entities.PlanRecord, config Config) error {
	encoder := yaml.NewEncoder(config.Out)
	encoder.SetIndent(2)
	if err := encoder.Encode(newDocument(result, plan)); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return encoder.Close()
}

// generateCSVOutput writes one row per week
func generateCSVOutput(plan *entities.PlanRecord, config Config) error {
	writer := csv.NewWriter(config.Out)
	if err := writer.Write([]string{"week", "min_headcount", "headcount", "previous", "action", "change", "cost"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, week := range plan.Weeks {
		action, err := week.Action.MarshalText()
		if err != nil {
			return err
		}
		record := []string{
			strconv.Itoa(week.Week),
			strconv.Itoa(int(week.Minimum)),
			strconv.Itoa(int(week.Headcount)),
			strconv.Itoa(int(week.Previous)),
			string(action),
			strconv.Itoa(int(week.Change)),
			week.Cost.StringFixed(2),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row for week %d: %w", week.Week, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write CSV output: %w", err)
	}
	return nil
}

// WriteChart saves the SVG staffing chart of plan to path
func WriteChart(plan *entities.PlanRecord, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create chart directory: %w", err)
		}
	}

	svg := NewStaffingChart(plan).GenerateSVG(plan)
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return fmt.Errorf("failed to write chart file: %w", err)
	}
	return nil
}

func newDocument(result *dto.PlanResult, plan *entities.PlanRecord) Document {
	doc := Document{Plan: plan}
	if result != nil {
		doc.Stats = result.Stats
	}
	return doc
}
