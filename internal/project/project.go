// Package project provides project lifecycle, membership and progress
// operations.
package project

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zulandar/taskyard/internal/logging"
	"github.com/zulandar/taskyard/internal/models"
	"github.com/zulandar/taskyard/internal/store"
)

// ErrPermissionDenied is returned when the acting user lacks the role an
// operation requires.
var ErrPermissionDenied = errors.New("permission denied")

// CreateOpts holds parameters for creating a new project.
type CreateOpts struct {
	Title       string
	Description string
	Deadline    *time.Time
	Priority    models.Priority
	CreatedBy   string
}

// Create creates a project whose creator is its sole Admin member.
func Create(ctx context.Context, st store.Store, opts CreateOpts, now time.Time) (*models.Project, error) {
	if strings.TrimSpace(opts.Title) == "" {
		return nil, fmt.Errorf("project: title is required: %w", models.ErrInvalidInput)
	}
	if opts.CreatedBy == "" {
		return nil, fmt.Errorf("project: creator is required: %w", models.ErrInvalidInput)
	}
	if opts.Priority == "" {
		opts.Priority = models.PriorityMedium
	}
	if !opts.Priority.Valid() {
		return nil, fmt.Errorf("project: invalid priority %q: %w", opts.Priority, models.ErrInvalidInput)
	}

	id, err := store.NewID("prj")
	if err != nil {
		return nil, err
	}
	p := &models.Project{
		ID:          id,
		Title:       opts.Title,
		Description: opts.Description,
		Priority:    opts.Priority,
		Status:      models.ProjectPlanning,
		Members:     []models.Member{{User: opts.CreatedBy, Role: models.RoleAdmin, JoinedAt: now}},
		Tasks:       []string{},
		CreatedBy:   opts.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if opts.Deadline != nil {
		d := opts.Deadline.UTC()
		p.Deadline = &d
	}
	LogActivity(p, "created_project", fmt.Sprintf("created project %q", p.Title), opts.CreatedBy, now)

	if err := st.CreateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("project: create: %w", err)
	}
	return p, nil
}

// Get retrieves a project by ID.
func Get(ctx context.Context, st store.Store, id string) (*models.Project, error) {
	p, err := st.GetProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("project: get %s: %w", id, err)
	}
	return p, nil
}

// RoleOf returns the user's role in the project. The creator is Admin
// whether or not they appear in Members.
func RoleOf(p *models.Project, userID string) (models.Role, bool) {
	if userID != "" && p.CreatedBy == userID {
		return models.RoleAdmin, true
	}
	for _, m := range p.Members {
		if m.User == userID {
			return m.Role, true
		}
	}
	return "", false
}

// IsMember reports whether the user has any role in the project.
func IsMember(p *models.Project, userID string) bool {
	_, ok := RoleOf(p, userID)
	return ok
}

// IsAdmin reports whether the user is the creator or an Admin member.
func IsAdmin(p *models.Project, userID string) bool {
	role, ok := RoleOf(p, userID)
	return ok && role == models.RoleAdmin
}

// CanEdit reports whether the user may modify the project's tasks.
func CanEdit(p *models.Project, userID string) bool {
	role, ok := RoleOf(p, userID)
	return ok && (role == models.RoleAdmin || role == models.RoleContributor)
}

// AddMember adds userID with role, or changes the role of an existing
// member. Only admins may manage membership.
func AddMember(ctx context.Context, st store.Store, projectID, actorID, userID string, role models.Role, now time.Time) (*models.Project, error) {
	if userID == "" {
		return nil, fmt.Errorf("project: member user is required: %w", models.ErrInvalidInput)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("project: invalid role %q: %w", role, models.ErrInvalidInput)
	}
	p, err := Get(ctx, st, projectID)
	if err != nil {
		return nil, err
	}
	if !IsAdmin(p, actorID) {
		return nil, fmt.Errorf("project: %s cannot manage members of %s: %w", actorID, projectID, ErrPermissionDenied)
	}

	action := "added_member"
	found := false
	for i := range p.Members {
		if p.Members[i].User == userID {
			p.Members[i].Role = role
			found = true
			action = "changed_role"
			break
		}
	}
	if !found {
		p.Members = append(p.Members, models.Member{User: userID, Role: role, JoinedAt: now})
	}
	LogActivity(p, action, fmt.Sprintf("%s is now %s", userID, role), actorID, now)
	p.UpdatedAt = now

	if err := st.SaveProject(ctx, p); err != nil {
		return nil, fmt.Errorf("project: save %s: %w", projectID, err)
	}
	return p, nil
}

// RemoveMember removes userID from the project. The creator cannot be
// removed.
func RemoveMember(ctx context.Context, st store.Store, projectID, actorID, userID string, now time.Time) (*models.Project, error) {
	p, err := Get(ctx, st, projectID)
	if err != nil {
		return nil, err
	}
	if !IsAdmin(p, actorID) {
		return nil, fmt.Errorf("project: %s cannot manage members of %s: %w", actorID, projectID, ErrPermissionDenied)
	}
	if userID == p.CreatedBy {
		return nil, fmt.Errorf("project: cannot remove creator %s: %w", userID, models.ErrInvalidInput)
	}

	kept := p.Members[:0]
	removed := false
	for _, m := range p.Members {
		if m.User == userID {
			removed = true
			continue
		}
		kept = append(kept, m)
	}
	if !removed {
		return p, nil
	}
	p.Members = kept
	LogActivity(p, "removed_member", fmt.Sprintf("removed %s", userID), actorID, now)
	p.UpdatedAt = now

	if err := st.SaveProject(ctx, p); err != nil {
		return nil, fmt.Errorf("project: save %s: %w", projectID, err)
	}
	return p, nil
}

// Delete removes the project and every task belonging to it at any level.
// Only the creator may delete a project.
func Delete(ctx context.Context, st store.Store, projectID, userID string) error {
	p, err := Get(ctx, st, projectID)
	if err != nil {
		return err
	}
	if p.CreatedBy != userID {
		return fmt.Errorf("project: only the creator can delete %s: %w", projectID, ErrPermissionDenied)
	}

	tasks, err := st.ListTasks(ctx, store.TaskFilter{Project: projectID})
	if err != nil {
		return fmt.Errorf("project: list tasks of %s: %w", projectID, err)
	}
	for _, t := range tasks {
		if err := st.DeleteTask(ctx, t.ID); err != nil && !store.IsNotFound(err) {
			return fmt.Errorf("project: delete task %s: %w", t.ID, err)
		}
	}
	if err := st.DeleteProject(ctx, projectID); err != nil {
		return fmt.Errorf("project: delete %s: %w", projectID, err)
	}

	logging.Logger.WithFields(logrus.Fields{
		"project": projectID,
		"user":    userID,
		"tasks":   len(tasks),
	}).Info("project deleted")
	return nil
}

// LogActivity appends an activity entry to p in memory.
func LogActivity(p *models.Project, action, description, userID string, now time.Time) {
	p.Activity = append(p.Activity, models.Activity{
		Action:      action,
		Description: description,
		User:        userID,
		Timestamp:   now,
	})
}

// Record loads the project, appends an activity entry and saves it.
func Record(ctx context.Context, st store.Store, projectID, action, description, userID string, now time.Time) error {
	p, err := Get(ctx, st, projectID)
	if err != nil {
		return err
	}
	LogActivity(p, action, description, userID, now)
	if err := st.SaveProject(ctx, p); err != nil {
		return fmt.Errorf("project: save %s: %w", projectID, err)
	}
	return nil
}

// LinkTask appends taskID to the project's top-level task list if absent
// and reports whether the list changed.
func LinkTask(p *models.Project, taskID string) bool {
	for _, id := range p.Tasks {
		if id == taskID {
			return false
		}
	}
	p.Tasks = append(p.Tasks, taskID)
	return true
}

// UnlinkTask removes taskID from the project's top-level task list and
// reports whether it was present.
func UnlinkTask(p *models.Project, taskID string) bool {
	for i, id := range p.Tasks {
		if id == taskID {
			p.Tasks = append(p.Tasks[:i], p.Tasks[i+1:]...)
			return true
		}
	}
	return false
}
