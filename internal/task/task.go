// Package task provides task hierarchy, dependency, clone and checklist
// operations over a store.Store.
package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zulandar/taskyard/internal/models"
	"github.com/zulandar/taskyard/internal/project"
	"github.com/zulandar/taskyard/internal/store"
)

// CreateOpts holds parameters for creating a new task.
type CreateOpts struct {
	Title          string
	Description    string
	Category       string
	Project        string
	ParentTask     string
	Priority       models.Priority
	DueDate        *time.Time
	EstimatedHours *float64
	AssignedTo     []string
	Tags           []string
	CreatedBy      string
	// Recurrence marks the task as a recurring template. Callers validate
	// the rule (see recurrence.CreateTemplate).
	Recurrence *models.Recurrence
}

// UpdateOpts holds the fields Update may change. Nil fields are left
// untouched. Project and CreatedBy are immutable.
type UpdateOpts struct {
	Title          *string
	Description    *string
	Category       *string
	Tags           *[]string
	Status         *models.TaskStatus
	Priority       *models.Priority
	DueDate        *time.Time
	ClearDueDate   bool
	EstimatedHours *float64
	ActualHours    *float64
	AssignedTo     *[]string
}

// Create creates a task in its project. A task with a parent is placed one
// level below it and appended to the parent's subtasks; a top-level task is
// appended to the project's task list and the project progress refreshed.
func Create(ctx context.Context, st store.Store, opts CreateOpts, now time.Time) (*models.Task, error) {
	if strings.TrimSpace(opts.Title) == "" {
		return nil, fmt.Errorf("task: title is required: %w", models.ErrInvalidInput)
	}
	if opts.Project == "" {
		return nil, fmt.Errorf("task: project is required: %w", models.ErrInvalidInput)
	}
	if opts.CreatedBy == "" {
		return nil, fmt.Errorf("task: creator is required: %w", models.ErrInvalidInput)
	}
	if opts.Priority == "" {
		opts.Priority = models.PriorityMedium
	}
	if !opts.Priority.Valid() {
		return nil, fmt.Errorf("task: invalid priority %q: %w", opts.Priority, models.ErrInvalidInput)
	}
	if err := checkHours("estimated", opts.EstimatedHours); err != nil {
		return nil, err
	}

	if _, err := project.Get(ctx, st, opts.Project); err != nil {
		return nil, fmt.Errorf("task: %w", err)
	}

	level := 0
	var parentID *string
	if opts.ParentTask != "" {
		parent, err := st.GetTask(ctx, opts.ParentTask)
		if err != nil {
			return nil, fmt.Errorf("task: parent %s: %w", opts.ParentTask, err)
		}
		if parent.Project != opts.Project {
			return nil, fmt.Errorf("task: parent %s belongs to project %s, not %s: %w",
				parent.ID, parent.Project, opts.Project, models.ErrInvalidInput)
		}
		level = parent.Level + 1
		parentID = &parent.ID
	}

	id, err := store.NewID("tsk")
	if err != nil {
		return nil, err
	}
	t := &models.Task{
		ID:             id,
		Title:          opts.Title,
		Description:    opts.Description,
		Category:       opts.Category,
		Tags:           opts.Tags,
		Project:        opts.Project,
		ParentTask:     parentID,
		Level:          level,
		Status:         models.StatusToDo,
		Priority:       opts.Priority,
		EstimatedHours: opts.EstimatedHours,
		AssignedTo:     opts.AssignedTo,
		CreatedBy:      opts.CreatedBy,
		Health:         models.Health{Status: models.HealthOnTrack},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if opts.DueDate != nil {
		d := opts.DueDate.UTC()
		t.DueDate = &d
	}
	if opts.Recurrence != nil {
		t.Recurrence = *opts.Recurrence
		t.Recurrence.IsRecurring = true
		t.Recurrence.ParentRecurringTaskID = ""
	}

	if err := st.CreateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("task: create: %w", err)
	}
	if err := Link(ctx, st, t); err != nil {
		return nil, err
	}
	if err := project.Record(ctx, st, t.Project, "created_task",
		fmt.Sprintf("created task %q", t.Title), opts.CreatedBy, now); err != nil {
		return nil, fmt.Errorf("task: %w", err)
	}
	if t.IsTopLevel() {
		if _, err := project.UpdateProgress(ctx, st, t.Project, now); err != nil {
			return nil, fmt.Errorf("task: %w", err)
		}
	}
	return t, nil
}

// Get retrieves a task by ID.
func Get(ctx context.Context, st store.Store, id string) (*models.Task, error) {
	t, err := st.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("task: get %s: %w", id, err)
	}
	return t, nil
}

// Update applies a partial update. Moving to Completed stamps CompletedAt
// and moving away clears it; a status change on a top-level task refreshes
// the project progress.
func Update(ctx context.Context, st store.Store, id, userID string, opts UpdateOpts, now time.Time) (*models.Task, error) {
	t, err := Get(ctx, st, id)
	if err != nil {
		return nil, err
	}

	var changed []string
	if opts.Title != nil {
		if strings.TrimSpace(*opts.Title) == "" {
			return nil, fmt.Errorf("task: title is required: %w", models.ErrInvalidInput)
		}
		t.Title = *opts.Title
		changed = append(changed, "title")
	}
	if opts.Description != nil {
		t.Description = *opts.Description
		changed = append(changed, "description")
	}
	if opts.Category != nil {
		t.Category = *opts.Category
		changed = append(changed, "category")
	}
	if opts.Tags != nil {
		t.Tags = *opts.Tags
		changed = append(changed, "tags")
	}
	if opts.Priority != nil {
		if !opts.Priority.Valid() {
			return nil, fmt.Errorf("task: invalid priority %q: %w", *opts.Priority, models.ErrInvalidInput)
		}
		t.Priority = *opts.Priority
		changed = append(changed, "priority")
	}
	if opts.ClearDueDate {
		t.DueDate = nil
		changed = append(changed, "dueDate")
	} else if opts.DueDate != nil {
		d := opts.DueDate.UTC()
		t.DueDate = &d
		changed = append(changed, "dueDate")
	}
	if opts.EstimatedHours != nil {
		if err := checkHours("estimated", opts.EstimatedHours); err != nil {
			return nil, err
		}
		t.EstimatedHours = opts.EstimatedHours
		changed = append(changed, "estimatedHours")
	}
	if opts.ActualHours != nil {
		if err := checkHours("actual", opts.ActualHours); err != nil {
			return nil, err
		}
		t.ActualHours = opts.ActualHours
		changed = append(changed, "actualHours")
	}
	if opts.AssignedTo != nil {
		t.AssignedTo = *opts.AssignedTo
		changed = append(changed, "assignedTo")
	}

	statusChanged := false
	if opts.Status != nil && *opts.Status != t.Status {
		if !opts.Status.Valid() {
			return nil, fmt.Errorf("task: invalid status %q: %w", *opts.Status, models.ErrInvalidInput)
		}
		t.Status = *opts.Status
		if t.Status == models.StatusCompleted {
			completed := now
			t.CompletedAt = &completed
		} else {
			t.CompletedAt = nil
		}
		statusChanged = true
		changed = append(changed, "status")
	}

	if len(changed) == 0 {
		return t, nil
	}
	t.UpdatedAt = now
	if err := st.SaveTask(ctx, t); err != nil {
		return nil, fmt.Errorf("task: save %s: %w", id, err)
	}

	desc := fmt.Sprintf("updated %s of %q", strings.Join(changed, ", "), t.Title)
	if err := project.Record(ctx, st, t.Project, "updated_task", desc, userID, now); err != nil && !store.IsNotFound(err) {
		return nil, fmt.Errorf("task: %w", err)
	}
	if statusChanged && t.IsTopLevel() {
		if _, err := project.UpdateProgress(ctx, st, t.Project, now); err != nil && !store.IsNotFound(err) {
			return nil, fmt.Errorf("task: %w", err)
		}
	}
	return t, nil
}

// AddSubtask appends childID to parent's subtasks if absent and reports
// whether the list changed. The caller sets the child's level.
func AddSubtask(parent *models.Task, childID string) bool {
	for _, id := range parent.Subtasks {
		if id == childID {
			return false
		}
	}
	parent.Subtasks = append(parent.Subtasks, childID)
	return true
}

// RemoveSubtask removes childID from parent's subtasks and reports whether
// it was present.
func RemoveSubtask(parent *models.Task, childID string) bool {
	for i, id := range parent.Subtasks {
		if id == childID {
			parent.Subtasks = append(parent.Subtasks[:i], parent.Subtasks[i+1:]...)
			return true
		}
	}
	return false
}

// Link registers t with its parent's subtasks, or with its project's task
// list when t is top-level.
func Link(ctx context.Context, st store.Store, t *models.Task) error {
	if t.IsTopLevel() {
		p, err := st.GetProject(ctx, t.Project)
		if err != nil {
			return fmt.Errorf("task: link %s to project: %w", t.ID, err)
		}
		if !project.LinkTask(p, t.ID) {
			return nil
		}
		if err := st.SaveProject(ctx, p); err != nil {
			return fmt.Errorf("task: link %s to project %s: %w", t.ID, p.ID, err)
		}
		return nil
	}

	parent, err := st.GetTask(ctx, *t.ParentTask)
	if err != nil {
		return fmt.Errorf("task: link %s to parent: %w", t.ID, err)
	}
	if !AddSubtask(parent, t.ID) {
		return nil
	}
	if err := st.SaveTask(ctx, parent); err != nil {
		return fmt.Errorf("task: link %s to parent %s: %w", t.ID, parent.ID, err)
	}
	return nil
}

// Unlink removes t from its parent's subtasks or its project's task list.
// A parent or project that no longer exists is not an error.
func Unlink(ctx context.Context, st store.Store, t *models.Task) error {
	if t.IsTopLevel() {
		p, err := st.GetProject(ctx, t.Project)
		if err != nil {
			if store.IsNotFound(err) {
				return nil
			}
			return fmt.Errorf("task: unlink %s from project: %w", t.ID, err)
		}
		if !project.UnlinkTask(p, t.ID) {
			return nil
		}
		if err := st.SaveProject(ctx, p); err != nil {
			return fmt.Errorf("task: unlink %s from project %s: %w", t.ID, p.ID, err)
		}
		return nil
	}

	parent, err := st.GetTask(ctx, *t.ParentTask)
	if err != nil {
		if store.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("task: unlink %s from parent: %w", t.ID, err)
	}
	if !RemoveSubtask(parent, t.ID) {
		return nil
	}
	if err := st.SaveTask(ctx, parent); err != nil {
		return fmt.Errorf("task: unlink %s from parent %s: %w", t.ID, parent.ID, err)
	}
	return nil
}

func checkHours(name string, h *float64) error {
	if h != nil && *h < 0 {
		return fmt.Errorf("task: %s hours must be non-negative, got %g: %w", name, *h, models.ErrInvalidInput)
	}
	return nil
}
