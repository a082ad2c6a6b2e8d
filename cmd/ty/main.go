package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const defaultConfigPath = "taskyard.yaml"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ty",
		Short: "Taskyard: project and task tracking",
		Long:  "Taskyard manages projects, task hierarchies, dependencies, recurring work and time tracking.",
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newDBCmd())
	cmd.AddCommand(newProjectCmd())
	cmd.AddCommand(newTaskCmd())
	cmd.AddCommand(newRecurringCmd())
	cmd.AddCommand(newTimeCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ty %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}

// resolveUser returns the acting user: the flag value, else TASKYARD_USER,
// else the login name.
func resolveUser(flagValue string) (string, error) {
	for _, v := range []string{flagValue, os.Getenv("TASKYARD_USER"), os.Getenv("USER")} {
		if v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("no user: pass --user or set TASKYARD_USER")
}
