package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/taskyard/internal/store"
	"github.com/zulandar/taskyard/internal/timetrack"
)

func newTimeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "time",
		Short: "Time tracking commands",
	}

	cmd.AddCommand(newTimeStartCmd())
	cmd.AddCommand(newTimeStopCmd())
	cmd.AddCommand(newTimeListCmd())
	return cmd
}

func newTimeStartCmd() *cobra.Command {
	var (
		configPath string
		user       string
		notes      string
	)

	cmd := &cobra.Command{
		Use:   "start <task-id>",
		Short: "Start a timer on a task",
		Long:  "Opens a time entry on a task. A user may run only one timer at a time.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := resolveUser(user)
			if err != nil {
				return err
			}
			_, st, closeFn, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			defer closeFn()

			e, err := timetrack.Start(context.Background(), st, args[0], actor, notes, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Started timer %s on %s at %s\n",
				e.ID, e.TaskID, e.StartTime.Format("15:04"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Taskyard config file")
	cmd.Flags().StringVarP(&user, "user", "u", "", "acting user (default $TASKYARD_USER)")
	cmd.Flags().StringVar(&notes, "notes", "", "notes for the entry")
	return cmd
}

func newTimeStopCmd() *cobra.Command {
	var (
		configPath string
		user       string
	)

	cmd := &cobra.Command{
		Use:   "stop <task-id>",
		Short: "Stop the running timer on a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := resolveUser(user)
			if err != nil {
				return err
			}
			_, st, closeFn, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			defer closeFn()

			e, err := timetrack.Stop(context.Background(), st, args[0], actor, time.Now())
			if err != nil {
				return err
			}
			d := time.Duration(e.DurationMs) * time.Millisecond
			fmt.Fprintf(cmd.OutOrStdout(), "Stopped timer %s after %s\n", e.ID, d.Round(time.Second))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Taskyard config file")
	cmd.Flags().StringVarP(&user, "user", "u", "", "acting user (default $TASKYARD_USER)")
	return cmd
}

func newTimeListCmd() *cobra.Command {
	var (
		configPath string
		filter     store.TimeEntryFilter
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List time entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, closeFn, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			defer closeFn()

			entries, err := timetrack.List(context.Background(), st, filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No time entries found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TASK\tUSER\tSTART\tDURATION\tNOTES")
			for _, e := range entries {
				dur := "running"
				if e.EndTime != nil {
					dur = (time.Duration(e.DurationMs) * time.Millisecond).Round(time.Second).String()
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.TaskID, e.UserID,
					e.StartTime.UTC().Format("2006-01-02 15:04"), dur, truncate(orDash(e.Notes), 30))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Taskyard config file")
	cmd.Flags().StringVar(&filter.TaskID, "task", "", "filter by task")
	cmd.Flags().StringVar(&filter.UserID, "user", "", "filter by user")
	cmd.Flags().StringVar(&filter.ProjectID, "project", "", "filter by project")
	cmd.Flags().BoolVar(&filter.OpenOnly, "open", false, "only running timers")
	return cmd
}
