package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/fvbommel/sortorder"
	"github.com/olekukonko/tablewriter"
	"github.com/rbnhln/kckScraper/internal/notifications"
	"github.com/rbnhln/kckScraper/internal/runner"
	"github.com/rbnhln/kckScraper/internal/schedule"
	"github.com/spf13/cobra"
)

func (app *application) teachersCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "teachers",
		Short: "List all teachers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := app.fetcher.FetchTeacherList(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(app.out, list)
			}
			return writeTeachers(app.out, list)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func (app *application) scheduleCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "schedule <teacher-id>",
		Short: "Show one teacher's weekly schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTeacherID(args[0])
			if err != nil {
				return err
			}
			ts, err := app.fetcher.FetchTeacherSchedule(cmd.Context(), id)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(app.out, ts)
			}
			return writeSchedule(app.out, ts)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func (app *application) warmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "warm",
		Short: "Fetch the teacher list and every schedule into the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (retErr error) {
			ctx := cmd.Context()
			started := time.Now()

			notif := notifications.NewManagerFromConfig(app.logger, app.config)
			notif.Start(ctx)

			x := &runner.ExecCtx{
				Ctx:     ctx,
				Logger:  app.logger,
				Scraper: app.fetcher,
			}
			defer func() {
				// still report when ctx was cancelled by an interrupt
				_ = notif.Finish(context.WithoutCancel(ctx), notifications.Report{
					OK:       retErr == nil,
					Teachers: len(x.Teachers),
					Duration: time.Since(started),
					Err:      retErr,
				})
			}()

			return runner.WarmPlan(x)
		},
	}
}

func (app *application) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version and exit",
		Args:  cobra.NoArgs,
		// no config or cache needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(app.out, "Version:\t%s\n", version)
		},
	}
}

func parseTeacherID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid teacher id %q (expected a positive integer)", s)
	}
	return id, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTeachers(w io.Writer, list map[int]string) error {
	ids := make([]int, 0, len(list))
	for id := range list {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b int) int {
		switch {
		case sortorder.NaturalLess(list[a], list[b]):
			return -1
		case sortorder.NaturalLess(list[b], list[a]):
			return 1
		default:
			return a - b
		}
	})

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Name")
	for _, id := range ids {
		if err := table.Append([]string{strconv.Itoa(id), list[id]}); err != nil {
			return err
		}
	}
	return table.Render()
}

func writeSchedule(w io.Writer, ts schedule.TeacherSchedule) error {
	fmt.Fprintf(w, "%s (%d)\n", ts.Name, ts.ID)

	table := tablewriter.NewWriter(w)
	table.Header("Day", "Time", "Subject", "Type", "Room", "Group")
	for _, day := range ts.Days() {
		block := ts.Schedule[day]
		for _, label := range block.Labels() {
			for _, e := range block[label] {
				row := []string{day, label, e.Subject, e.Type, e.Room, e.Group}
				if err := table.Append(row); err != nil {
					return err
				}
			}
		}
	}
	return table.Render()
}
