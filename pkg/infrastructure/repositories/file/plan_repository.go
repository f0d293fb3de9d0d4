package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vsinha/workforce/pkg/domain/entities"
	"github.com/vsinha/workforce/pkg/domain/repositories"
)

// DefaultFileName is used when no report file name is configured
const DefaultFileName = "workforce_plan.txt"

// RenderFunc writes a plan in some textual format
type RenderFunc func(w io.Writer, plan *entities.PlanRecord) error

// PlanRepository writes each saved plan to a single report file, replacing
// whatever the previous run left there
type PlanRepository struct {
	dir      string
	filename string
	render   RenderFunc
}

var _ repositories.PlanRepository = (*PlanRepository)(nil)

// NewPlanRepository creates a repository writing dir/filename with render
func NewPlanRepository(dir, filename string, render RenderFunc) *PlanRepository {
	if filename == "" {
		filename = DefaultFileName
	}
	return &PlanRepository{dir: dir, filename: filename, render: render}
}

// Path returns the file plans are written to
func (r *PlanRepository) Path() string {
	return filepath.Join(r.dir, r.filename)
}

// Name identifies the repository in logs and events
func (r *PlanRepository) Name() string {
	return "file:" + r.Path()
}

// SavePlan renders the plan into a temporary file and moves it into place,
// so a failed write never leaves a truncated report behind
func (r *PlanRepository) SavePlan(ctx context.Context, plan *entities.PlanRecord) error {
	if err := r.save(ctx, plan); err != nil {
		return &repositories.PersistError{Destination: r.Path(), Err: err}
	}
	return nil
}

func (r *PlanRepository) save(ctx context.Context, plan *entities.PlanRecord) error {
	if plan == nil {
		return fmt.Errorf("plan is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := r.dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+r.filename+".*")
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := r.render(tmp, plan); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set report permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close report file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.Path()); err != nil {
		return fmt.Errorf("failed to move report into place: %w", err)
	}
	return nil
}
