package timetrack

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

func setup(t *testing.T) *store.GormStore {
	t.Helper()
	st := storetest.New(t)
	for _, id := range []string{"tsk-1", "tsk-2"} {
		if err := st.CreateTask(context.Background(), &models.Task{ID: id, Title: id, Project: "prj-1", CreatedAt: now, UpdatedAt: now}); err != nil {
			t.Fatal(err)
		}
	}
	return st
}

func TestStartStop_AccumulatesActualHours(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	e, err := Start(ctx, st, "tsk-1", "alice", "pairing", now)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if e.ID == "" || e.ProjectID != "prj-1" || e.EndTime != nil {
		t.Errorf("entry = %+v", e)
	}

	stopped, err := Stop(ctx, st, "tsk-1", "alice", now.Add(90*time.Minute))
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if stopped.DurationMs != 90*60*1000 {
		t.Errorf("DurationMs = %d", stopped.DurationMs)
	}

	if _, err := Start(ctx, st, "tsk-1", "alice", "", now.Add(2*time.Hour)); err != nil {
		t.Fatal(err)
	}
	if _, err := Stop(ctx, st, "tsk-1", "alice", now.Add(3*time.Hour)); err != nil {
		t.Fatal(err)
	}

	tk, _ := st.GetTask(ctx, "tsk-1")
	if tk.ActualHours == nil || *tk.ActualHours != 2.5 {
		t.Errorf("ActualHours = %v, want 2.5", tk.ActualHours)
	}
}

func TestStart_OneActiveSessionPerUser(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	if _, err := Start(ctx, st, "tsk-1", "alice", "", now); err != nil {
		t.Fatal(err)
	}
	if _, err := Start(ctx, st, "tsk-2", "alice", "", now); !errors.Is(err, ErrActiveSession) {
		t.Errorf("second start err = %v, want ErrActiveSession", err)
	}
	if _, err := Start(ctx, st, "tsk-2", "bob", "", now); err != nil {
		t.Errorf("other user start: %v", err)
	}

	active, err := Active(ctx, st, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if active == nil || active.TaskID != "tsk-1" {
		t.Errorf("Active = %+v", active)
	}
}

func TestStop_NoRunningEntry(t *testing.T) {
	st := setup(t)
	ctx := context.Background()
	if _, err := Stop(ctx, st, "tsk-1", "alice", now); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	if _, err := Start(ctx, st, "tsk-1", "alice", "", now); err != nil {
		t.Fatal(err)
	}
	if _, err := Stop(ctx, st, "tsk-2", "alice", now); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("stop on other task err = %v, want ErrNotFound", err)
	}
}

func TestStart_Errors(t *testing.T) {
	st := setup(t)
	ctx := context.Background()
	if _, err := Start(ctx, st, "tsk-missing", "alice", "", now); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing task err = %v", err)
	}
	if _, err := Start(ctx, st, "tsk-1", "", "", now); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("missing user err = %v", err)
	}
}

func TestList(t *testing.T) {
	st := setup(t)
	ctx := context.Background()
	if _, err := Start(ctx, st, "tsk-1", "alice", "", now); err != nil {
		t.Fatal(err)
	}
	if _, err := Stop(ctx, st, "tsk-1", "alice", now.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if _, err := Start(ctx, st, "tsk-2", "alice", "", now.Add(2*time.Hour)); err != nil {
		t.Fatal(err)
	}

	entries, err := List(ctx, st, store.TimeEntryFilter{UserID: "alice"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 || entries[0].TaskID != "tsk-2" {
		t.Errorf("entries = %+v, want newest first", entries)
	}
}
