package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/taskyard/internal/config"
	"github.com/zulandar/taskyard/internal/db"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the Taskyard database",
		Long:  "Creates the database if needed, then migrates all tables (SQL drivers) or indexes (mongo).",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Taskyard config file")
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	fmt.Fprintf(out, "Loaded %s config from %s\n", cfg.Database.Driver, configPath)

	switch cfg.Database.Driver {
	case config.DriverMongo:
		ms, closeFn, err := openMongo(cfg)
		if err != nil {
			return err
		}
		defer closeFn()
		if err := ms.EnsureIndexes(context.Background()); err != nil {
			return err
		}
		fmt.Fprintf(out, "Indexes ready on %s\n", cfg.Database.Name)

	case config.DriverMySQL:
		adminDB, err := db.ConnectAdmin(cfg.Database)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Connected to MySQL at %s:%d\n", cfg.Database.Host, cfg.Database.Port)
		if err := db.CreateDatabase(adminDB, cfg.Database.Name); err != nil {
			return err
		}
		fmt.Fprintf(out, "Database %s ready\n", cfg.Database.Name)
		if err := migrateSQL(cmd, cfg); err != nil {
			return err
		}

	default:
		if err := migrateSQL(cmd, cfg); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "\nTaskyard database initialized successfully.")
	return nil
}

func migrateSQL(cmd *cobra.Command, cfg *config.Config) error {
	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", cfg.Database.Name, err)
	}
	defer closeSQL(gormDB)

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d tables\n", len(db.AllModels()))
	return nil
}
