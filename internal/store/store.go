// Package store defines the persistence boundary for tasks, projects and
// time entries, with SQL (gorm) and MongoDB implementations.
package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/zulandar/taskyard/internal/models"
)

// ErrNotFound is returned when a task, project or time entry does not exist.
var ErrNotFound = errors.New("not found")

// TaskFilter narrows ListTasks. Zero-valued fields are ignored; DueFrom and
// DueTo are inclusive.
type TaskFilter struct {
	Project               string
	ParentTask            string
	Status                models.TaskStatus
	Recurring             *bool
	ParentRecurringTaskID string
	DueFrom               *time.Time
	DueTo                 *time.Time
}

// TimeEntryFilter narrows ListTimeEntries.
type TimeEntryFilter struct {
	TaskID    string
	UserID    string
	ProjectID string
	OpenOnly  bool
}

// Store is the document-level load/save surface the domain packages use.
// Writes replace whole documents; there is no cross-document transaction.
type Store interface {
	CreateTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	SaveTask(ctx context.Context, t *models.Task) error
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context, f TaskFilter) ([]models.Task, error)

	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	SaveProject(ctx context.Context, p *models.Project) error
	DeleteProject(ctx context.Context, id string) error
	ListProjects(ctx context.Context) ([]models.Project, error)

	CreateTimeEntry(ctx context.Context, e *models.TimeEntry) error
	SaveTimeEntry(ctx context.Context, e *models.TimeEntry) error
	ListTimeEntries(ctx context.Context, f TimeEntryFilter) ([]models.TimeEntry, error)
}

// NewID creates an id in prefix-xxxxxxxxxxxx format (12 hex chars).
func NewID(prefix string) (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("store: generate ID: %w", err)
	}
	return prefix + "-" + hex.EncodeToString(b), nil
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Bool returns a pointer to b, for filter fields.
func Bool(b bool) *bool {
	return &b
}
