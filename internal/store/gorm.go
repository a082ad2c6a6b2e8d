package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/zulandar/taskyard/internal/models"
	"gorm.io/gorm"
)

// GormStore persists documents in a SQL database through gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open gorm connection. Tables must already exist
// (see db.AutoMigrate).
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB returns the underlying connection.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) CreateTask(ctx context.Context, t *models.Task) error {
	normalizeTask(t)
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("store: create task %s: %w", t.ID, err)
	}
	return nil
}

func (s *GormStore) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var t models.Task
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("store: task %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("store: get task %s: %w", id, err)
	}
	return &t, nil
}

func (s *GormStore) SaveTask(ctx context.Context, t *models.Task) error {
	normalizeTask(t)
	if err := s.db.WithContext(ctx).Save(t).Error; err != nil {
		return fmt.Errorf("store: save task %s: %w", t.ID, err)
	}
	return nil
}

func (s *GormStore) DeleteTask(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{})
	if result.Error != nil {
		return fmt.Errorf("store: delete task %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("store: task %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListTasks returns matching tasks ordered by creation time.
func (s *GormStore) ListTasks(ctx context.Context, f TaskFilter) ([]models.Task, error) {
	q := s.db.WithContext(ctx).Model(&models.Task{})

	if f.Project != "" {
		q = q.Where("project = ?", f.Project)
	}
	if f.ParentTask != "" {
		q = q.Where("parent_task = ?", f.ParentTask)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Recurring != nil {
		q = q.Where("recurrence_is_recurring = ?", *f.Recurring)
	}
	if f.ParentRecurringTaskID != "" {
		q = q.Where("recurrence_parent_recurring_task_id = ?", f.ParentRecurringTaskID)
	}
	if f.DueFrom != nil {
		q = q.Where("due_date >= ?", f.DueFrom.UTC())
	}
	if f.DueTo != nil {
		q = q.Where("due_date <= ?", f.DueTo.UTC())
	}

	var tasks []models.Task
	if err := q.Order("created_at ASC, id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("store: list tasks: %w", err)
	}
	return tasks, nil
}

func (s *GormStore) CreateProject(ctx context.Context, p *models.Project) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("store: create project %s: %w", p.ID, err)
	}
	return nil
}

func (s *GormStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var p models.Project
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("store: project %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("store: get project %s: %w", id, err)
	}
	return &p, nil
}

func (s *GormStore) SaveProject(ctx context.Context, p *models.Project) error {
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("store: save project %s: %w", p.ID, err)
	}
	return nil
}

func (s *GormStore) DeleteProject(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Project{})
	if result.Error != nil {
		return fmt.Errorf("store: delete project %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("store: project %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *GormStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := s.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("store: list projects: %w", err)
	}
	return projects, nil
}

func (s *GormStore) CreateTimeEntry(ctx context.Context, e *models.TimeEntry) error {
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("store: create time entry %s: %w", e.ID, err)
	}
	return nil
}

func (s *GormStore) SaveTimeEntry(ctx context.Context, e *models.TimeEntry) error {
	if err := s.db.WithContext(ctx).Save(e).Error; err != nil {
		return fmt.Errorf("store: save time entry %s: %w", e.ID, err)
	}
	return nil
}

// ListTimeEntries returns matching entries, most recent start first.
func (s *GormStore) ListTimeEntries(ctx context.Context, f TimeEntryFilter) ([]models.TimeEntry, error) {
	q := s.db.WithContext(ctx).Model(&models.TimeEntry{})

	if f.TaskID != "" {
		q = q.Where("task_id = ?", f.TaskID)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.ProjectID != "" {
		q = q.Where("project_id = ?", f.ProjectID)
	}
	if f.OpenOnly {
		q = q.Where("end_time IS NULL")
	}

	var entries []models.TimeEntry
	if err := q.Order("start_time DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("store: list time entries: %w", err)
	}
	return entries, nil
}

// normalizeTask stores due dates in UTC so range filters compare cleanly
// on drivers that keep timestamps as text.
func normalizeTask(t *models.Task) {
	if t.DueDate != nil {
		d := t.DueDate.UTC()
		t.DueDate = &d
	}
}
