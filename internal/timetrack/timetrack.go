// Package timetrack records time spent on tasks. A user has at most one
// running entry at a time.
package timetrack

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/zulandar/taskyard/internal/logging"
	"github.com/zulandar/taskyard/internal/models"
	"github.com/zulandar/taskyard/internal/store"
)

// ErrActiveSession is returned by Start when the user already has a running
// entry.
var ErrActiveSession = errors.New("time tracking already active")

// Start opens a time entry for userID on taskID. The check for a running
// entry and the insert are not atomic.
func Start(ctx context.Context, st store.Store, taskID, userID, notes string, now time.Time) (*models.TimeEntry, error) {
	if userID == "" {
		return nil, fmt.Errorf("timetrack: user is required: %w", models.ErrInvalidInput)
	}
	t, err := st.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("timetrack: task %s: %w", taskID, err)
	}

	active, err := Active(ctx, st, userID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, fmt.Errorf("timetrack: %s is tracking task %s since %s: %w",
			userID, active.TaskID, active.StartTime.Format(time.RFC3339), ErrActiveSession)
	}

	e := &models.TimeEntry{
		ID:        uuid.NewString(),
		TaskID:    t.ID,
		UserID:    userID,
		ProjectID: t.Project,
		StartTime: now,
		Notes:     notes,
	}
	if err := st.CreateTimeEntry(ctx, e); err != nil {
		return nil, fmt.Errorf("timetrack: start: %w", err)
	}
	logging.Logger.WithFields(logrus.Fields{"task": t.ID, "user": userID}).Debug("time tracking started")
	return e, nil
}

// Stop closes the user's running entry on taskID and adds the elapsed time
// to the task's actual hours.
func Stop(ctx context.Context, st store.Store, taskID, userID string, now time.Time) (*models.TimeEntry, error) {
	open, err := st.ListTimeEntries(ctx, store.TimeEntryFilter{TaskID: taskID, UserID: userID, OpenOnly: true})
	if err != nil {
		return nil, fmt.Errorf("timetrack: list entries: %w", err)
	}
	if len(open) == 0 {
		return nil, fmt.Errorf("timetrack: no running entry for %s on %s: %w", userID, taskID, store.ErrNotFound)
	}

	e := open[0]
	end := now
	if end.Before(e.StartTime) {
		end = e.StartTime
	}
	e.EndTime = &end
	e.DurationMs = end.Sub(e.StartTime).Milliseconds()
	if err := st.SaveTimeEntry(ctx, &e); err != nil {
		return nil, fmt.Errorf("timetrack: stop: %w", err)
	}

	t, err := st.GetTask(ctx, taskID)
	if err != nil {
		if store.IsNotFound(err) {
			return &e, nil
		}
		return nil, fmt.Errorf("timetrack: task %s: %w", taskID, err)
	}
	hours := float64(e.DurationMs) / float64(time.Hour/time.Millisecond)
	if t.ActualHours != nil {
		hours += *t.ActualHours
	}
	t.ActualHours = &hours
	if err := st.SaveTask(ctx, t); err != nil {
		return nil, fmt.Errorf("timetrack: save task %s: %w", taskID, err)
	}
	return &e, nil
}

// Active returns the user's running entry, or nil when there is none.
func Active(ctx context.Context, st store.Store, userID string) (*models.TimeEntry, error) {
	open, err := st.ListTimeEntries(ctx, store.TimeEntryFilter{UserID: userID, OpenOnly: true})
	if err != nil {
		return nil, fmt.Errorf("timetrack: list entries: %w", err)
	}
	if len(open) == 0 {
		return nil, nil
	}
	return &open[0], nil
}

// List returns entries matching f, newest first.
func List(ctx context.Context, st store.Store, f store.TimeEntryFilter) ([]models.TimeEntry, error) {
	entries, err := st.ListTimeEntries(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("timetrack: list entries: %w", err)
	}
	return entries, nil
}
