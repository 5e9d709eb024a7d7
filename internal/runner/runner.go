package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rbnhln/kckScraper/internal/schedule"
)

// Scraper is what warm-up tasks need from the scraper package.
type Scraper interface {
	FetchTeacherList(ctx context.Context) (map[int]string, error)
	FetchTeacherSchedule(ctx context.Context, id int) (schedule.TeacherSchedule, error)
}

type ExecCtx struct {
	Ctx     context.Context
	Logger  *slog.Logger
	Scraper Scraper
	// Teachers is filled by TeacherListTask.
	Teachers map[int]string
}

type Task interface {
	Name() string
	Execute(x *ExecCtx) error
}

type Plan struct {
	Tasks []Task
}

func (p *Plan) Add(t Task) {
	p.Tasks = append(p.Tasks, t)
}

// Execute runs every task in order. A failing task does not stop the plan;
// a cancelled context does.
func (p *Plan) Execute(x *ExecCtx) error {
	total := len(p.Tasks)
	failed := 0
	var errs []error

	for i, task := range p.Tasks {
		if err := x.Ctx.Err(); err != nil {
			x.Logger.Warn("plan interrupted", "done", i, "total", total)
			errs = append(errs, err)
			break
		}

		x.Logger.Info("executing task", "i", i+1, "n", total, "task", task.Name())

		err := task.Execute(x)
		if err != nil {
			failed++
			x.Logger.Error("task failed", "task", task.Name(), "error", err, "failed", failed, "total", total)
			errs = append(errs, fmt.Errorf("task %q failed: %w", task.Name(), err))
			continue
		}
	}

	if len(errs) > 0 {
		x.Logger.Error("plan finished with errors", "failed", failed, "total", total)
		return errors.Join(errs...)
	}

	x.Logger.Info("plan finished successfully", "total", total)
	return nil
}
