package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/taskyard/internal/health"
	"github.com/zulandar/taskyard/internal/models"
	"github.com/zulandar/taskyard/internal/project"
	"github.com/zulandar/taskyard/internal/store"
	"github.com/zulandar/taskyard/internal/task"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Task management commands",
	}

	cmd.AddCommand(newTaskCreateCmd())
	cmd.AddCommand(newTaskListCmd())
	cmd.AddCommand(newTaskShowCmd())
	cmd.AddCommand(newTaskUpdateCmd())
	cmd.AddCommand(newTaskDeleteCmd())
	cmd.AddCommand(newTaskDepCmd())
	cmd.AddCommand(newTaskCloneCmd())
	cmd.AddCommand(newTaskHealthCmd())
	cmd.AddCommand(newTaskCommentCmd())
	cmd.AddCommand(newTaskChecklistCmd())
	return cmd
}

// taskFlags are the create-time fields shared by task and recurring create.
type taskFlags struct {
	title       string
	description string
	category    string
	projectID   string
	parentID    string
	priority    string
	due         string
	estimate    float64
	assignees   string
	tags        string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "task title (required)")
	cmd.Flags().StringVar(&f.description, "description", "", "detailed description")
	cmd.Flags().StringVar(&f.category, "category", "", "free-form category")
	cmd.Flags().StringVar(&f.projectID, "project", "", "project ID (required)")
	cmd.Flags().StringVar(&f.parentID, "parent", "", "parent task ID")
	cmd.Flags().StringVar(&f.priority, "priority", string(models.PriorityMedium), "priority (Low, Medium, High, Urgent)")
	cmd.Flags().StringVar(&f.due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&f.estimate, "estimate", 0, "estimated hours")
	cmd.Flags().StringVar(&f.assignees, "assign", "", "comma-separated assignees")
	cmd.Flags().StringVar(&f.tags, "tags", "", "comma-separated tags")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("project")
}

func (f *taskFlags) opts(cmd *cobra.Command) (task.CreateOpts, error) {
	due, err := parseDateFlag("due", f.due)
	if err != nil {
		return task.CreateOpts{}, err
	}
	opts := task.CreateOpts{
		Title:       f.title,
		Description: f.description,
		Category:    f.category,
		Project:     f.projectID,
		ParentTask:  f.parentID,
		Priority:    models.Priority(f.priority),
		DueDate:     due,
		AssignedTo:  splitList(f.assignees),
		Tags:        splitList(f.tags),
	}
	if cmd.Flags().Changed("estimate") {
		est := f.estimate
		opts.EstimatedHours = &est
	}
	return opts, nil
}

// requireEdit fails unless actor may modify tasks in the project.
func requireEdit(ctx context.Context, st store.Store, projectID, actor string) error {
	p, err := project.Get(ctx, st, projectID)
	if err != nil {
		return err
	}
	if !project.CanEdit(p, actor) {
		return fmt.Errorf("%s on project %s: %w", actor, projectID, project.ErrPermissionDenied)
	}
	return nil
}

// editableTask loads a task and checks that actor may modify it.
func editableTask(ctx context.Context, st store.Store, id, actor string) (*models.Task, error) {
	t, err := task.Get(ctx, st, id)
	if err != nil {
		return nil, err
	}
	if err := requireEdit(ctx, st, t.Project, actor); err != nil {
		return nil, err
	}
	return t, nil
}

func newTaskCreateCmd() *cobra.Command {
	var (
		configPath string
		user       string
		flags      taskFlags
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new task",
		Long:  "Creates a task in a project, optionally as a subtask of --parent.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.opts(cmd)
			if err != nil {
				return err
			}
			return runTaskCreate(cmd, configPath, user, opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Taskyard config file")
	cmd.Flags().StringVarP(&user, "user", "u", "", "acting user (default $TASKYARD_USER)")
	flags.register(cmd)
	return cmd
}

func runTaskCreate(cmd *cobra.Command, configPath, user string, opts task.CreateOpts) error {
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
	t, err := task.Create(ctx, st, opts, time.Now())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created task %s\n", t.ID)
	if t.ParentTask != nil {
		fmt.Fprintf(out, "Parent: %s (level %d)\n", *t.ParentTask, t.Level)
	}
	return nil
}

func newTaskListCmd() *cobra.Command {
	var (
		configPath string
		projectID  string
		parentID   string
		status     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskList(cmd, configPath, store.TaskFilter{
				Project:    projectID,
				ParentTask: parentID,
				Status:     models.TaskStatus(status),
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Taskyard config file")
	cmd.Flags().StringVar(&projectID, "project", "", "project ID (required)")
	cmd.Flags().StringVar(&parentID, "parent", "", "only subtasks of this task")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.MarkFlagRequired("project")
	return cmd
}

func runTaskList(cmd *cobra.Command, configPath string, filter store.TaskFilter) error {
	_, st, closeFn, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer closeFn()

	tasks, err := st.ListTasks(context.Background(), filter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRI\tDUE\tHEALTH\tASSIGNEE")
	for _, t := range tasks {
		title := strings.Repeat("  ", t.Level) + t.Title
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, truncate(title, 40), t.Status, t.Priority, formatDate(t.DueDate),
			healthLabel(out, t.Health.Status), orDash(strings.Join(t.AssignedTo, ",")))
	}
	return w.Flush()
}

func newTaskShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskShow(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Taskyard config file")
	return cmd
}

func runTaskShow(cmd *cobra.Command, configPath, id string) error {
	_, st, closeFn, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer closeFn()

	t, err := task.Get(context.Background(), st, id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:          %s\n", t.ID)
	fmt.Fprintf(out, "Title:       %s\n", t.Title)
	fmt.Fprintf(out, "Project:     %s\n", t.Project)
	if t.ParentTask != nil {
		fmt.Fprintf(out, "Parent:      %s\n", *t.ParentTask)
	}
	fmt.Fprintf(out, "Level:       %d\n", t.Level)
	fmt.Fprintf(out, "Status:      %s\n", t.Status)
	fmt.Fprintf(out, "Priority:    %s\n", t.Priority)
	fmt.Fprintf(out, "Due:         %s\n", formatDate(t.DueDate))
	fmt.Fprintf(out, "Hours:       %s estimated, %s actual\n", formatHours(t.EstimatedHours), formatHours(t.ActualHours))
	fmt.Fprintf(out, "Health:      %s\n", healthLabel(out, t.Health.Status))
	fmt.Fprintf(out, "Assignees:   %s\n", orDash(strings.Join(t.AssignedTo, ", ")))
	fmt.Fprintf(out, "Tags:        %s\n", orDash(strings.Join(t.Tags, ", ")))
	if t.Recurrence.IsRecurring {
		fmt.Fprintf(out, "Recurs:      %s every %d\n", t.Recurrence.Frequency, t.Recurrence.Interval)
	}
	if t.Recurrence.ParentRecurringTaskID != "" {
		fmt.Fprintf(out, "Template:    %s\n", t.Recurrence.ParentRecurringTaskID)
	}
	if t.Description != "" {
		fmt.Fprintf(out, "\n%s\n", t.Description)
	}

	if len(t.Subtasks) > 0 {
		fmt.Fprintf(out, "\nSubtasks: %s\n", strings.Join(t.Subtasks, ", "))
	}
	if len(t.Dependencies) > 0 {
		fmt.Fprintln(out, "\nDepends on:")
		for _, d := range t.Dependencies {
			fmt.Fprintf(out, "  %s (%s, delay %.1fh)\n", d.Task, d.Type, d.Delay)
		}
	}
	if len(t.Checklist) > 0 {
		fmt.Fprintf(out, "\nChecklist (%d%%):\n", health.ProgressRate(t.Checklist))
		for i, item := range t.Checklist {
			mark := " "
			if item.Completed {
				mark = "x"
			}
			fmt.Fprintf(out, "  %d. [%s] %s\n", i, mark, item.Title)
		}
	}
	if len(t.Comments) > 0 {
		fmt.Fprintln(out, "\nComments:")
		for _, c := range t.Comments {
			fmt.Fprintf(out, "  [%s] %s: %s\n", c.CreatedAt.UTC().Format("2006-01-02 15:04"), c.Author, c.Text)
		}
	}
	return nil
}

func newTaskUpdateCmd() *cobra.Command {
	var (
		configPath string
		user       string
		title      string
		status     string
		priority   string
		due        string
		clearDue   bool
		estimate   float64
		actual     float64
		assignees  string
		tags       string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update task fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts task.UpdateOpts
			flags := cmd.Flags()
			if flags.Changed("title") {
				opts.Title = &title
			}
			if flags.Changed("status") {
				s := models.TaskStatus(status)
				opts.Status = &s
			}
			if flags.Changed("priority") {
				p := models.Priority(priority)
				opts.Priority = &p
			}
			if flags.Changed("due") {
				d, err := parseDateFlag("due", due)
				if err != nil {
					return err
				}
				opts.DueDate = d
			}
			opts.ClearDueDate = clearDue
			if flags.Changed("estimate") {
				opts.EstimatedHours = &estimate
			}
			if flags.Changed("actual") {
				opts.ActualHours = &actual
			}
			if flags.Changed("assign") {
				list := splitList(assignees)
				opts.AssignedTo = &list
			}
			if flags.Changed("tags") {
				list := splitList(tags)
				opts.Tags = &list
			}
			return runTaskUpdate(cmd, configPath, user, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Taskyard config file")
	cmd.Flags().StringVarP(&user, "user", "u", "", "acting user (default $TASKYARD_USER)")
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&status, "status", "", "new status (ToDo, InProgress, OnHold, Completed, Cancelled)")
	cmd.Flags().StringVar(&priority, "priority", "", "new priority")
	cmd.Flags().StringVar(&due, "due", "", "new due date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "remove the due date")
	cmd.Flags().Float64Var(&estimate, "estimate", 0, "estimated hours")
	cmd.Flags().Float64Var(&actual, "actual", 0, "actual hours")
	cmd.Flags().StringVar(&assignees, "assign", "", "comma-separated assignees (replaces)")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags (replaces)")
	return cmd
}

func runTaskUpdate(cmd *cobra.Command, configPath, user, id string, opts task.UpdateOpts) error {
	actor, err := resolveUser(user)
	if err != nil {
		return err
	}
	_, st, closeFn, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx := context.Background()
	if _, err := editableTask(ctx, st, id, actor); err != nil {
		return err
	}
	t, err := task.Update(ctx, st, id, actor, opts, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s (%s)\n", t.ID, t.Status)
	return nil
}

func newTaskDeleteCmd() *cobra.Command {
	var (
		configPath string
		user       string
	)

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task and its subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskDelete(cmd, configPath, user, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Taskyard config file")
	cmd.Flags().StringVarP(&user, "user", "u", "", "acting user (default $TASKYARD_USER)")
	return cmd
}

func runTaskDelete(cmd *cobra.Command, configPath, user, id string) error {
	actor, err := resolveUser(user)
	if err != nil {
		return err
	}
	_, st, closeFn, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx := context.Background()
	if _, err := editableTask(ctx, st, id, actor); err != nil {
		return err
	}
	if err := task.DeleteCascade(ctx, st, id, actor, time.Now()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", id)
	return nil
}

func newTaskDepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dep",
		Short: "Manage task dependencies",
	}

	cmd.AddCommand(newTaskDepAddCmd())
	cmd.AddCommand(newTaskDepRemoveCmd())
	return cmd
}

func newTaskDepAddCmd() *cobra.Command {
	var (
		configPath string
		user       string
		depType    string
		delay      float64
	)

	cmd := &cobra.Command{
		Use:   "add <task-id> <depends-on-id>",
		Short: "Make a task depend on another",
		Long:  "Adds or replaces a dependency edge. Edges that would close a cycle are rejected.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskDepAdd(cmd, configPath, user, args[0], args[1], models.RelationType(depType), delay)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Taskyard config file")
	cmd.Flags().StringVarP(&user, "user", "u", "", "acting user (default $TASKYARD_USER)")
	cmd.Flags().StringVar(&depType, "type", string(models.FinishToStart), "relation type")
	cmd.Flags().Float64Var(&delay, "delay", 0, "lag in hours")
	return cmd
}

func runTaskDepAdd(cmd *cobra.Command, configPath, user, taskID, depID string, typ models.RelationType, delay float64) error {
	actor, err := resolveUser(user)
	if err != nil {
		return err
	}
	_, st, closeFn, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx := context.Background()
	if _, err := editableTask(ctx, st, taskID, actor); err != nil {
		return err
	}
	if _, err := task.AddDependency(ctx, st, taskID, depID, typ, delay, actor, time.Now()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s now depends on %s\n", taskID, depID)
	return nil
}

func newTaskDepRemoveCmd() *cobra.Command {
	var (
		configPath string
		user       string
	)

	cmd := &cobra.Command{
		Use:   "remove <task-id> <depends-on-id>",
		Short: "Remove a dependency",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskDepRemove(cmd, configPath, user, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Taskyard config file")
	cmd.Flags().StringVarP(&user, "user", "u", "", "acting user (default $TASKYARD_USER)")
	return cmd
}

func runTaskDepRemove(cmd *cobra.Command, configPath, user, taskID, depID string) error {
	actor, err := resolveUser(user)
	if err != nil {
		return err
	}
	_, st, closeFn, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx := context.Background()
	if _, err := editableTask(ctx, st, taskID, actor); err != nil {
		return err
	}
	if _, err := task.RemoveDependency(ctx, st, taskID, depID, actor, time.Now()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed dependency %s -> %s\n", taskID, depID)
	return nil
}

func newTaskCloneCmd() *cobra.Command {
	var (
		configPath string
		user       string
		opts       task.CloneOpts
	)

	cmd := &cobra.Command{
		Use:   "clone <id>",
		Short: "Copy a task, optionally with its subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskClone(cmd, configPath, user, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Taskyard config file")
	cmd.Flags().StringVarP(&user, "user", "u", "", "acting user (default $TASKYARD_USER)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "title of the copy (default \"Copy of <title>\")")
	cmd.Flags().BoolVar(&opts.SkipDueDate, "no-due", false, "leave the copy without a due date")
	cmd.Flags().IntVar(&opts.DateOffset, "offset", 0, "days to shift copied due dates")
	cmd.Flags().BoolVar(&opts.IncludeAssignees, "assignees", false, "copy assignees")
	cmd.Flags().BoolVar(&opts.IncludeAttachments, "attachments", false, "copy attachments")
	cmd.Flags().BoolVar(&opts.IncludeSubtasks, "subtasks", false, "copy the subtask tree")
	return cmd
}

func runTaskClone(cmd *cobra.Command, configPath, user, id string, opts task.CloneOpts) error {
	actor, err := resolveUser(user)
	if err != nil {
		return err
	}
	_, st, closeFn, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx := context.Background()
	if _, err := editableTask(ctx, st, id, actor); err != nil {
		return err
	}
	t, err := task.Clone(ctx, st, id, actor, opts, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cloned %s as %s (%s)\n", id, t.ID, t.Title)
	return nil
}

func newTaskHealthCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "health <id>",
		Short: "Recalculate and show task health",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskHealth(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Taskyard config file")
	return cmd
}

func runTaskHealth(cmd *cobra.Command, configPath, id string) error {
	_, st, closeFn, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer closeFn()

	t, err := health.Recalculate(context.Background(), st, id, time.Now())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	f := t.Health.Factors
	fmt.Fprintf(out, "Health:    %s\n", healthLabel(out, t.Health.Status))
	if f.DaysUntilDue != nil {
		fmt.Fprintf(out, "Due in:    %d days\n", *f.DaysUntilDue)
	}
	fmt.Fprintf(out, "Blocked:   %t\n", f.BlockedByDependencies)
	fmt.Fprintf(out, "Progress:  %d%%\n", f.ProgressRate)
	return nil
}

func newTaskCommentCmd() *cobra.Command {
	var (
		configPath string
		user       string
		mentions   string
	)

	cmd := &cobra.Command{
		Use:   "comment <id> <text>",
		Short: "Add a comment to a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskComment(cmd, configPath, user, args[0], args[1], splitList(mentions))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Taskyard config file")
	cmd.Flags().StringVarP(&user, "user", "u", "", "acting user (default $TASKYARD_USER)")
	cmd.Flags().StringVar(&mentions, "mention", "", "comma-separated users to mention")
	return cmd
}

func runTaskComment(cmd *cobra.Command, configPath, user, id, text string, mentions []string) error {
	actor, err := resolveUser(user)
	if err != nil {
		return err
	}
	_, st, closeFn, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer closeFn()

	c, err := task.AddComment(context.Background(), st, id, actor, text, mentions, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added comment %s\n", c.ID)
	return nil
}

func newTaskChecklistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checklist",
		Short: "Manage task checklist items",
	}

	cmd.AddCommand(newTaskChecklistAddCmd())
	cmd.AddCommand(newTaskChecklistToggleCmd())
	return cmd
}

func newTaskChecklistAddCmd() *cobra.Command {
	var (
		configPath string
		user       string
	)

	cmd := &cobra.Command{
		Use:   "add <id> <title>",
		Short: "Append a checklist item",
		Args:  cobra.ExactArgs(2),
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

			ctx := context.Background()
			if _, err := editableTask(ctx, st, args[0], actor); err != nil {
				return err
			}
			t, err := task.AddChecklistItem(ctx, st, args[0], args[1], time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added item %d to %s\n", len(t.Checklist)-1, t.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Taskyard config file")
	cmd.Flags().StringVarP(&user, "user", "u", "", "acting user (default $TASKYARD_USER)")
	return cmd
}

func newTaskChecklistToggleCmd() *cobra.Command {
	var (
		configPath string
		user       string
	)

	cmd := &cobra.Command{
		Use:   "toggle <id> <index>",
		Short: "Flip a checklist item between done and open",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("index %q: %w", args[1], err)
			}
			actor, err := resolveUser(user)
			if err != nil {
				return err
			}
			_, st, closeFn, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := context.Background()
			if _, err := editableTask(ctx, st, args[0], actor); err != nil {
				return err
			}
			t, err := task.ToggleChecklistItem(ctx, st, args[0], index, actor, time.Now())
			if err != nil {
				return err
			}
			state := "open"
			if t.Checklist[index].Completed {
				state = "done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Item %d on %s is %s\n", index, t.ID, state)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Taskyard config file")
	cmd.Flags().StringVarP(&user, "user", "u", "", "acting user (default $TASKYARD_USER)")
	return cmd
}
