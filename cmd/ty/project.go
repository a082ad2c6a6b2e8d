package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/taskyard/internal/models"
	"github.com/zulandar/taskyard/internal/project"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project management commands",
	}

	cmd.AddCommand(newProjectCreateCmd())
	cmd.AddCommand(newProjectListCmd())
	cmd.AddCommand(newProjectShowCmd())
	cmd.AddCommand(newProjectDeleteCmd())
	cmd.AddCommand(newProjectMemberCmd())
	return cmd
}

func newProjectCreateCmd() *cobra.Command {
	var (
		configPath  string
		user        string
		title       string
		description string
		deadline    string
		priority    string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new project",
		Long:  "Creates a project owned by the acting user, who becomes its first admin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			dl, err := parseDateFlag("deadline", deadline)
			if err != nil {
				return err
			}
			return runProjectCreate(cmd, configPath, user, project.CreateOpts{
				Title:       title,
				Description: description,
				Deadline:    dl,
				Priority:    models.Priority(priority),
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Taskyard config file")
	cmd.Flags().StringVarP(&user, "user", "u", "", "acting user (default $TASKYARD_USER)")
	cmd.Flags().StringVar(&title, "title", "", "project title (required)")
	cmd.Flags().StringVar(&description, "description", "", "project description")
	cmd.Flags().StringVar(&deadline, "deadline", "", "deadline (YYYY-MM-DD)")
	cmd.Flags().StringVar(&priority, "priority", string(models.PriorityMedium), "priority (Low, Medium, High, Urgent)")
	cmd.MarkFlagRequired("title")
	return cmd
}

func runProjectCreate(cmd *cobra.Command, configPath, user string, opts project.CreateOpts) error {
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

	p, err := project.Create(context.Background(), st, opts, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s)\n", p.ID, p.Title)
	return nil
}

func newProjectListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectList(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Taskyard config file")
	return cmd
}

func runProjectList(cmd *cobra.Command, configPath string) error {
	_, st, closeFn, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer closeFn()

	projects, err := st.ListProjects(context.Background())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(projects) == 0 {
		fmt.Fprintln(out, "No projects found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPROGRESS\tPRI\tDEADLINE")
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d%%\t%s\t%s\n",
			p.ID, truncate(p.Title, 40), p.Status, p.Progress, p.Priority, formatDate(p.Deadline))
	}
	return w.Flush()
}

func newProjectShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show project details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectShow(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Taskyard config file")
	return cmd
}

func runProjectShow(cmd *cobra.Command, configPath, id string) error {
	_, st, closeFn, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer closeFn()

	p, err := project.Get(context.Background(), st, id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:          %s\n", p.ID)
	fmt.Fprintf(out, "Title:       %s\n", p.Title)
	fmt.Fprintf(out, "Status:      %s\n", p.Status)
	fmt.Fprintf(out, "Progress:    %d%%\n", p.Progress)
	fmt.Fprintf(out, "Priority:    %s\n", p.Priority)
	fmt.Fprintf(out, "Deadline:    %s\n", formatDate(p.Deadline))
	fmt.Fprintf(out, "Created by:  %s\n", p.CreatedBy)
	fmt.Fprintf(out, "Tasks:       %d\n", len(p.Tasks))
	if p.Description != "" {
		fmt.Fprintf(out, "\n%s\n", p.Description)
	}

	fmt.Fprintln(out, "\nMembers:")
	for _, m := range p.Members {
		fmt.Fprintf(out, "  %-20s %s\n", m.User, m.Role)
	}

	if n := len(p.Activity); n > 0 {
		fmt.Fprintln(out, "\nRecent activity:")
		start := 0
		if n > 10 {
			start = n - 10
		}
		for _, a := range p.Activity[start:] {
			fmt.Fprintf(out, "  %s  %-18s %s (%s)\n",
				a.Timestamp.UTC().Format("2006-01-02 15:04"), a.Action, a.Description, a.User)
		}
	}
	return nil
}

func newProjectDeleteCmd() *cobra.Command {
	var (
		configPath string
		user       string
	)

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project and all of its tasks",
		Long:  "Deletes a project and every task in it. Only the project creator may do this.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectDelete(cmd, configPath, user, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Taskyard config file")
	cmd.Flags().StringVarP(&user, "user", "u", "", "acting user (default $TASKYARD_USER)")
	return cmd
}

func runProjectDelete(cmd *cobra.Command, configPath, user, id string) error {
	actor, err := resolveUser(user)
	if err != nil {
		return err
	}
	_, st, closeFn, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := project.Delete(context.Background(), st, id, actor); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", id)
	return nil
}

func newProjectMemberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage project members",
	}

	cmd.AddCommand(newProjectMemberAddCmd())
	cmd.AddCommand(newProjectMemberRemoveCmd())
	return cmd
}

func newProjectMemberAddCmd() *cobra.Command {
	var (
		configPath string
		user       string
		role       string
	)

	cmd := &cobra.Command{
		Use:   "add <project-id> <user>",
		Short: "Add a member or change their role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectMemberAdd(cmd, configPath, user, args[0], args[1], models.Role(role))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Taskyard config file")
	cmd.Flags().StringVarP(&user, "user", "u", "", "acting user (default $TASKYARD_USER)")
	cmd.Flags().StringVar(&role, "role", string(models.RoleContributor), "member role (Admin, Contributor, Viewer)")
	return cmd
}

func runProjectMemberAdd(cmd *cobra.Command, configPath, user, projectID, member string, role models.Role) error {
	actor, err := resolveUser(user)
	if err != nil {
		return err
	}
	_, st, closeFn, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer closeFn()

	if _, err := project.AddMember(context.Background(), st, projectID, actor, member, role, time.Now()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s on %s\n", member, role, projectID)
	return nil
}

func newProjectMemberRemoveCmd() *cobra.Command {
	var (
		configPath string
		user       string
	)

	cmd := &cobra.Command{
		Use:   "remove <project-id> <user>",
		Short: "Remove a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectMemberRemove(cmd, configPath, user, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Taskyard config file")
	cmd.Flags().StringVarP(&user, "user", "u", "", "acting user (default $TASKYARD_USER)")
	return cmd
}

func runProjectMemberRemove(cmd *cobra.Command, configPath, user, projectID, member string) error {
	actor, err := resolveUser(user)
	if err != nil {
		return err
	}
	_, st, closeFn, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer closeFn()

	if _, err := project.RemoveMember(context.Background(), st, projectID, actor, member, time.Now()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %s\n", member, projectID)
	return nil
}
