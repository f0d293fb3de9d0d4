package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vsinha/workforce/pkg/application/services/optimizer"
	"github.com/vsinha/workforce/pkg/application/services/report"
	"github.com/vsinha/workforce/pkg/infrastructure/scenario"
)

// ValidateCommand checks scenario files without solving them
type ValidateCommand struct {
	paths []string
	out   io.Writer
}

// NewValidateCommand creates a validate command for the given scenario files
func NewValidateCommand(paths []string, out io.Writer) *ValidateCommand {
	if out == nil {
		out = os.Stdout
	}
	return &ValidateCommand{paths: paths, out: out}
}

// Execute validates every file and reports each result. It fails if any file is invalid.
func (c *ValidateCommand) Execute() error {
	var failed int
	for _, path := range c.paths {
		if err := c.validate(path); err != nil {
			failed++
			fmt.Fprintf(c.out, "✗ %s\n", path)
			var schemaErr *scenario.SchemaError
			if errors.As(err, &schemaErr) {
				for _, fe := range schemaErr.Errors {
					fmt.Fprintf(c.out, "  - %s: %s\n", fe.Field, fe.Message)
				}
			} else {
				fmt.Fprintf(c.out, "  - %v\n", err)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("validation failed: %d of %d scenario files are invalid", failed, len(c.paths))
	}
	return nil
}

func (c *ValidateCommand) validate(path string) error {
	s, err := scenario.Load(path)
	if err != nil {
		return err
	}
	problem, err := s.Problem()
	if err != nil {
		return err
	}
	if _, err := optimizer.ParseStrategy(s.Strategy); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "✓ %s: %s, %d weeks, peak minimum %d, excess %s, hiring %s + %s per worker\n",
		path, s.Name, problem.Weeks, problem.MaxMinimum(),
		report.FormatMoney(problem.ExcessCost), report.FormatMoney(problem.Hiring.Fixed), report.FormatMoney(problem.Hiring.PerHead))
	return nil
}
