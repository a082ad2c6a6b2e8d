package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zulandar/taskyard/internal/models"
	"github.com/zulandar/taskyard/internal/store"
	"github.com/zulandar/taskyard/internal/store/storetest"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func TestCalculate_Status(t *testing.T) {
	done := &models.Task{ID: "tsk-done", Status: models.StatusCompleted}
	open := &models.Task{ID: "tsk-open", Status: models.StatusInProgress}
	deps := map[string]*models.Task{done.ID: done, open.ID: open}

	tests := []struct {
		name        string
		task        models.Task
		want        models.HealthStatus
		wantBlocked bool
	}{
		{
			name: "no due date",
			task: models.Task{Status: models.StatusToDo},
			want: models.HealthOnTrack,
		},
		{
			name: "due far out",
			task: models.Task{Status: models.StatusToDo, DueDate: at(10 * 24 * time.Hour)},
			want: models.HealthOnTrack,
		},
		{
			name: "due soon not started",
			task: models.Task{Status: models.StatusToDo, DueDate: at(36 * time.Hour)},
			want: models.HealthAtRisk,
		},
		{
			name: "due soon in progress",
			task: models.Task{Status: models.StatusInProgress, DueDate: at(36 * time.Hour)},
			want: models.HealthOnTrack,
		},
		{
			name: "overdue",
			task: models.Task{Status: models.StatusInProgress, DueDate: at(-30 * time.Hour)},
			want: models.HealthDelayed,
		},
		{
			name: "overdue on hold outranks at-risk",
			task: models.Task{Status: models.StatusOnHold, DueDate: at(-30 * time.Hour)},
			want: models.HealthDelayed,
		},
		{
			name:        "blocked finish-to-start",
			task:        models.Task{Status: models.StatusInProgress, Dependencies: []models.Dependency{{Task: open.ID, Type: models.FinishToStart}}},
			want:        models.HealthAtRisk,
			wantBlocked: true,
		},
		{
			name:        "blocked start-to-start stays on track",
			task:        models.Task{Status: models.StatusInProgress, Dependencies: []models.Dependency{{Task: open.ID, Type: models.StartToStart}}},
			want:        models.HealthOnTrack,
			wantBlocked: true,
		},
		{
			name:        "first incomplete dependency decides",
			task:        models.Task{Status: models.StatusInProgress, Dependencies: []models.Dependency{{Task: done.ID, Type: models.FinishToStart}, {Task: open.ID, Type: models.StartToFinish}, {Task: open.ID, Type: models.FinishToStart}}},
			want:        models.HealthOnTrack,
			wantBlocked: true,
		},
		{
			name: "completed dependency",
			task: models.Task{Status: models.StatusInProgress, Dependencies: []models.Dependency{{Task: done.ID, Type: models.FinishToStart}}},
			want: models.HealthOnTrack,
		},
		{
			name: "missing dependency ignored",
			task: models.Task{Status: models.StatusInProgress, Dependencies: []models.Dependency{{Task: "tsk-gone", Type: models.FinishToStart}}},
			want: models.HealthOnTrack,
		},
		{
			name:        "blocked and overdue is delayed",
			task:        models.Task{Status: models.StatusInProgress, DueDate: at(-48 * time.Hour), Dependencies: []models.Dependency{{Task: open.ID, Type: models.FinishToStart}}},
			want:        models.HealthDelayed,
			wantBlocked: true,
		},
		{
			name: "completed before due is ahead",
			task: models.Task{Status: models.StatusCompleted, DueDate: at(48 * time.Hour), CompletedAt: at(-time.Hour)},
			want: models.HealthAhead,
		},
		{
			name: "completed after due is on track",
			task: models.Task{Status: models.StatusCompleted, DueDate: at(-48 * time.Hour), CompletedAt: at(-time.Hour)},
			want: models.HealthOnTrack,
		},
		{
			name: "ahead wins over past due",
			task: models.Task{Status: models.StatusCompleted, DueDate: at(-48 * time.Hour), UpdatedAt: now.Add(-72 * time.Hour)},
			want: models.HealthAhead,
		},
		{
			name:        "ahead wins over blocked",
			task:        models.Task{Status: models.StatusCompleted, DueDate: at(24 * time.Hour), CompletedAt: at(0), Dependencies: []models.Dependency{{Task: open.ID, Type: models.FinishToStart}}},
			want:        models.HealthAhead,
			wantBlocked: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Calculate(&tt.task, deps, now)
			if h.Status != tt.want {
				t.Errorf("Status = %q, want %q (risks %v)", h.Status, tt.want, h.Factors.RisksIdentified)
			}
			if h.Factors.BlockedByDependencies != tt.wantBlocked {
				t.Errorf("BlockedByDependencies = %v, want %v", h.Factors.BlockedByDependencies, tt.wantBlocked)
			}
			if h.LastCalculatedAt == nil || !h.LastCalculatedAt.Equal(now) {
				t.Errorf("LastCalculatedAt = %v", h.LastCalculatedAt)
			}
		})
	}
}

func TestCalculate_DaysUntilDue(t *testing.T) {
	tests := []struct {
		due  time.Duration
		want int
	}{
		{24 * time.Hour, 1},
		{25 * time.Hour, 2},
		{time.Hour, 1},
		{0, 0},
		{-time.Hour, 0},
		{-25 * time.Hour, -1},
	}
	for _, tt := range tests {
		h := Calculate(&models.Task{Status: models.StatusToDo, DueDate: at(tt.due)}, nil, now)
		if h.Factors.DaysUntilDue == nil || *h.Factors.DaysUntilDue != tt.want {
			t.Errorf("due in %v: DaysUntilDue = %v, want %d", tt.due, h.Factors.DaysUntilDue, tt.want)
		}
	}

	h := Calculate(&models.Task{}, nil, now)
	if h.Factors.DaysUntilDue != nil {
		t.Errorf("no due date: DaysUntilDue = %v, want nil", *h.Factors.DaysUntilDue)
	}
}

func TestProgressRate(t *testing.T) {
	item := func(done bool) models.ChecklistItem { return models.ChecklistItem{Completed: done} }
	tests := []struct {
		items []models.ChecklistItem
		want  int
	}{
		{nil, 0},
		{[]models.ChecklistItem{item(false)}, 0},
		{[]models.ChecklistItem{item(true), item(false), item(false)}, 33},
		{[]models.ChecklistItem{item(true), item(true), item(false)}, 67},
		{[]models.ChecklistItem{item(true), item(true)}, 100},
	}
	for _, tt := range tests {
		if got := ProgressRate(tt.items); got != tt.want {
			t.Errorf("ProgressRate(%d items) = %d, want %d", len(tt.items), got, tt.want)
		}
	}
}

func TestRecalculate_Persists(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()

	blocker := &models.Task{ID: "tsk-b", Title: "B", Project: "prj-1", Status: models.StatusInProgress, CreatedAt: now, UpdatedAt: now}
	tk := &models.Task{
		ID:           "tsk-a",
		Title:        "A",
		Project:      "prj-1",
		Status:       models.StatusInProgress,
		Dependencies: []models.Dependency{{Task: "tsk-gone", Type: models.FinishToStart}, {Task: "tsk-b", Type: models.FinishToStart}},
		Checklist:    []models.ChecklistItem{{Completed: true}, {}},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, x := range []*models.Task{blocker, tk} {
		if err := st.CreateTask(ctx, x); err != nil {
			t.Fatal(err)
		}
	}

	later := now.Add(time.Hour)
	got, err := Recalculate(ctx, st, "tsk-a", later)
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if got.Health.Status != models.HealthAtRisk || !got.Health.Factors.BlockedByDependencies || got.Health.Factors.ProgressRate != 50 {
		t.Errorf("Health = %+v", got.Health)
	}

	stored, err := st.GetTask(ctx, "tsk-a")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Health.Status != models.HealthAtRisk {
		t.Errorf("stored status = %q", stored.Health.Status)
	}
	if stored.Health.LastCalculatedAt == nil || !stored.Health.LastCalculatedAt.Equal(later) {
		t.Errorf("stored LastCalculatedAt = %v", stored.Health.LastCalculatedAt)
	}
	if !stored.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want unchanged", stored.UpdatedAt)
	}
}

func TestRecalculate_NotFound(t *testing.T) {
	st := storetest.New(t)
	if _, err := Recalculate(context.Background(), st, "tsk-missing", now); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
