package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zulandar/taskyard/internal/api"
	"github.com/zulandar/taskyard/internal/config"
	"github.com/zulandar/taskyard/internal/logging"
	"github.com/zulandar/taskyard/internal/recurrence"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
		noSchedule bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and recurrence scheduler",
		Long: `Starts the HTTP API. Unless --no-schedule is set, recurring templates are
expanded on the configured cron schedule while the server runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port, noSchedule)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Taskyard config file")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default from config)")
	cmd.Flags().BoolVar(&noSchedule, "no-schedule", false, "disable scheduled recurring generation")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int, noSchedule bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logCloser, err := logging.Init(logOptions(cfg.Log))
	if err != nil {
		return err
	}
	defer logCloser.Close()

	st, closeFn, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gen := recurrence.NewGenerator(st)
	if !noSchedule {
		sched, err := recurrence.NewScheduler(gen, cfg.Recurrence.Schedule, cfg.Recurrence.HorizonDays, nil)
		if err != nil {
			return err
		}
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()
		fmt.Fprintf(cmd.OutOrStdout(), "Recurring generation scheduled (%s, %d day horizon)\n",
			cfg.Recurrence.Schedule, cfg.Recurrence.HorizonDays)
	}

	if port == 0 {
		port = cfg.Server.Port
	}
	return api.Start(ctx, api.StartOpts{
		Store:       st,
		Generator:   gen,
		Port:        port,
		HorizonDays: cfg.Recurrence.HorizonDays,
		Out:         cmd.OutOrStdout(),
	})
}

func logOptions(c config.LogConfig) logging.Options {
	return logging.Options{
		Level:      c.Level,
		File:       c.File,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
		JSON:       c.JSON,
	}
}
