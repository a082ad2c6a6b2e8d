package task

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zulandar/taskyard/internal/models"
	"github.com/zulandar/taskyard/internal/project"
	"github.com/zulandar/taskyard/internal/store"
)

// CloneOpts controls what Clone copies.
type CloneOpts struct {
	Title              string // defaults to "Copy of <source title>"
	SkipDueDate        bool   // leave the clone without a due date
	DateOffset         int    // days added to the source due date
	IncludeAssignees   bool
	IncludeAttachments bool
	IncludeSubtasks    bool
}

// Clone copies a task, and optionally its subtree, as new ToDo tasks owned
// by userID. The clone sits next to its source: under the same parent, or
// at the top level of the same project.
func Clone(ctx context.Context, st store.Store, sourceID, userID string, opts CloneOpts, now time.Time) (*models.Task, error) {
	src, err := Get(ctx, st, sourceID)
	if err != nil {
		return nil, err
	}
	title := opts.Title
	if title == "" {
		title = "Copy of " + src.Title
	}

	clone, err := cloneTree(ctx, st, src, src.ParentTask, src.Level, title, userID, opts, now)
	if err != nil {
		return nil, err
	}
	if err := Link(ctx, st, clone); err != nil {
		return nil, err
	}

	if err := project.Record(ctx, st, clone.Project, "cloned_task",
		fmt.Sprintf("cloned %q as %q", src.Title, clone.Title), userID, now); err != nil && !store.IsNotFound(err) {
		return nil, fmt.Errorf("task: %w", err)
	}
	if clone.IsTopLevel() {
		if _, err := project.UpdateProgress(ctx, st, clone.Project, now); err != nil && !store.IsNotFound(err) {
			return nil, fmt.Errorf("task: %w", err)
		}
	}
	return clone, nil
}

// cloneTree creates the copy of src under parent and, when requested,
// recursively copies its subtasks beneath it. Subtask copies keep their
// source titles.
func cloneTree(ctx context.Context, st store.Store, src *models.Task, parent *string, level int, title, userID string, opts CloneOpts, now time.Time) (*models.Task, error) {
	id, err := store.NewID("tsk")
	if err != nil {
		return nil, err
	}
	t := &models.Task{
		ID:          id,
		Title:       title,
		Description: src.Description,
		Tags:        append([]string(nil), src.Tags...),
		Project:     src.Project,
		ParentTask:  parent,
		Level:       level,
		Status:      models.StatusToDo,
		Priority:    src.Priority,
		CreatedBy:   userID,
		Health:      models.Health{Status: models.HealthOnTrack},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if src.DueDate != nil && !opts.SkipDueDate {
		d := src.DueDate.AddDate(0, 0, opts.DateOffset)
		t.DueDate = &d
	}
	if src.EstimatedHours != nil {
		h := *src.EstimatedHours
		t.EstimatedHours = &h
	}
	if opts.IncludeAssignees {
		t.AssignedTo = append([]string(nil), src.AssignedTo...)
	}
	if opts.IncludeAttachments {
		for _, a := range src.Attachments {
			t.Attachments = append(t.Attachments, models.Attachment{
				ID:         uuid.NewString(),
				Name:       a.Name,
				URL:        a.URL,
				Type:       a.Type,
				UploadedBy: userID,
				UploadedAt: now,
			})
		}
	}

	if err := st.CreateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("task: create clone of %s: %w", src.ID, err)
	}
	if !opts.IncludeSubtasks || len(src.Subtasks) == 0 {
		return t, nil
	}

	for _, subID := range src.Subtasks {
		sub, err := st.GetTask(ctx, subID)
		if err != nil {
			if store.IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("task: load subtask %s: %w", subID, err)
		}
		child, err := cloneTree(ctx, st, sub, &t.ID, level+1, sub.Title, userID, opts, now)
		if err != nil {
			return nil, err
		}
		AddSubtask(t, child.ID)
	}
	if err := st.SaveTask(ctx, t); err != nil {
		return nil, fmt.Errorf("task: save clone %s: %w", t.ID, err)
	}
	return t, nil
}
