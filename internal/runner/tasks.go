package runner

import (
	"fmt"
	"slices"
)

type TeacherListTask struct{}

type TeacherScheduleTask struct {
	ID      int
	Teacher string
}

func (TeacherListTask) Name() string {
	return "teacher list"
}

func (TeacherListTask) Execute(x *ExecCtx) error {
	list, err := x.Scraper.FetchTeacherList(x.Ctx)
	if err != nil {
		return err
	}
	x.Teachers = list
	x.Logger.Info("teacher list ready", "teachers", len(list))
	return nil
}

func (t TeacherScheduleTask) Name() string {
	if t.Teacher == "" {
		return fmt.Sprintf("schedule %d", t.ID)
	}
	return fmt.Sprintf("schedule %d (%s)", t.ID, t.Teacher)
}

func (t TeacherScheduleTask) Execute(x *ExecCtx) error {
	ts, err := x.Scraper.FetchTeacherSchedule(x.Ctx, t.ID)
	if err != nil {
		return err
	}
	x.Logger.Debug("schedule ready", "id", t.ID, "blocks", len(ts.Schedule))
	return nil
}

// WarmPlan fetches the teacher list and then every teacher's schedule, all
// through the cache.
func WarmPlan(x *ExecCtx) error {
	phase1 := Plan{}
	phase1.Add(TeacherListTask{})
	if err := phase1.Execute(x); err != nil {
		return err
	}

	ids := make([]int, 0, len(x.Teachers))
	for id := range x.Teachers {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	phase2 := Plan{}
	for _, id := range ids {
		phase2.Add(TeacherScheduleTask{ID: id, Teacher: x.Teachers[id]})
	}
	return phase2.Execute(x)
}
