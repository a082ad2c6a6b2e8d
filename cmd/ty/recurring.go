package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/taskyard/internal/models"
	"github.com/zulandar/taskyard/internal/recurrence"
	"github.com/zulandar/taskyard/internal/task"
)

func newRecurringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Recurring task templates and instance generation",
	}

	cmd.AddCommand(newRecurringCreateCmd())
	cmd.AddCommand(newRecurringGenerateCmd())
	return cmd
}

func newRecurringCreateCmd() *cobra.Command {
	var (
		configPath  string
		user        string
		flags       taskFlags
		frequency   string
		interval    int
		days        string
		until       string
		occurrences int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a recurring task template",
		Long:  "Creates a template task whose rule drives generated instances (see 'recurring generate').",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.opts(cmd)
			if err != nil {
				return err
			}
			end, err := parseDateFlag("until", until)
			if err != nil {
				return err
			}
			weekdays, err := parseWeekdays(days)
			if err != nil {
				return err
			}
			rule := models.Recurrence{
				Frequency:   models.Frequency(frequency),
				Interval:    interval,
				DaysOfWeek:  weekdays,
				EndDate:     end,
				Occurrences: occurrences,
			}
			return runRecurringCreate(cmd, configPath, user, opts, rule)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Taskyard config file")
	cmd.Flags().StringVarP(&user, "user", "u", "", "acting user (default $TASKYARD_USER)")
	flags.register(cmd)
	cmd.Flags().StringVar(&frequency, "frequency", string(models.FrequencyWeekly), "daily, weekly, monthly or custom")
	cmd.Flags().IntVar(&interval, "interval", 1, "step between occurrences")
	cmd.Flags().StringVar(&days, "days", "", "comma-separated weekdays for weekly rules (0=Sunday)")
	cmd.Flags().StringVar(&until, "until", "", "last date to generate (YYYY-MM-DD)")
	cmd.Flags().IntVar(&occurrences, "occurrences", 0, "maximum instances per generation run (0 = no cap)")
	return cmd
}

func parseWeekdays(s string) ([]int, error) {
	var out []int
	for _, part := range splitList(s) {
		d, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("--days %q: %w", part, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func runRecurringCreate(cmd *cobra.Command, configPath, user string, opts task.CreateOpts, rule models.Recurrence) error {
	actor, err := resolveUser(user)
	if err != nil {
		return err
	}
	opts.CreatedBy = actor

	_, st, closeFn, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx := context.Background()
	if err := requireEdit(ctx, st, opts.Project, actor); err != nil {
		return err
	}
	t, err := recurrence.CreateTemplate(ctx, st, opts, rule, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created recurring template %s (%s every %d)\n",
		t.ID, t.Recurrence.Frequency, t.Recurrence.Interval)
	return nil
}

func newRecurringGenerateCmd() *cobra.Command {
	var (
		configPath string
		upTo       string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Create instances of recurring templates",
		Long: `Creates task instances for every active recurring template up to --up-to
(default: the configured horizon). Dates that already have an instance are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecurringGenerate(cmd, configPath, upTo)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Taskyard config file")
	cmd.Flags().StringVar(&upTo, "up-to", "", "generate through this date (YYYY-MM-DD)")
	return cmd
}

func runRecurringGenerate(cmd *cobra.Command, configPath, upTo string) error {
	cfg, st, closeFn, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer closeFn()

	now := time.Now().UTC()
	limit := now.AddDate(0, 0, cfg.Recurrence.HorizonDays)
	if upTo != "" {
		d, err := parseDateFlag("up-to", upTo)
		if err != nil {
			return err
		}
		limit = d.Add(24*time.Hour - time.Millisecond)
	}

	res, err := recurrence.NewGenerator(st).CreateInstances(context.Background(), limit, now)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Processed %d templates, created %d instances through %s\n",
		res.Processed, res.Created, limit.Format("2006-01-02"))
	if res.Errors > 0 {
		fmt.Fprintf(out, "%d templates failed:\n", res.Errors)
		for _, id := range res.Failed {
			fmt.Fprintf(out, "  %s\n", id)
		}
	}
	return nil
}
