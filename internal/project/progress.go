package project

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/zulandar/taskyard/internal/logging"
	"github.com/zulandar/taskyard/internal/models"
	"github.com/zulandar/taskyard/internal/store"
)

// Compute returns the completion percentage of tasks and the project
// status it implies. With no tasks progress is 0 and current is kept;
// partial progress never resets a status back to Planning.
func Compute(tasks []models.Task, current models.ProjectStatus) (int, models.ProjectStatus) {
	if len(tasks) == 0 {
		return 0, current
	}
	completed := 0
	for _, t := range tasks {
		if t.Status == models.StatusCompleted {
			completed++
		}
	}
	progress := int(math.Round(100 * float64(completed) / float64(len(tasks))))

	switch {
	case progress == 100:
		return progress, models.ProjectCompleted
	case progress > 0:
		return progress, models.ProjectInProgress
	default:
		return progress, current
	}
}

// UpdateProgress recomputes the project's progress from its top-level
// tasks and saves it. Task ids that no longer resolve are skipped.
func UpdateProgress(ctx context.Context, st store.Store, projectID string, now time.Time) (*models.Project, error) {
	p, err := Get(ctx, st, projectID)
	if err != nil {
		return nil, err
	}

	tasks := make([]models.Task, 0, len(p.Tasks))
	for _, id := range p.Tasks {
		t, err := st.GetTask(ctx, id)
		if err != nil {
			if store.IsNotFound(err) {
				logging.Logger.WithField("project", projectID).Debugf("progress: skipping missing task %s", id)
				continue
			}
			return nil, fmt.Errorf("project: load task %s: %w", id, err)
		}
		tasks = append(tasks, *t)
	}

	p.Progress, p.Status = Compute(tasks, p.Status)
	p.UpdatedAt = now
	if err := st.SaveProject(ctx, p); err != nil {
		return nil, fmt.Errorf("project: save %s: %w", projectID, err)
	}
	return p, nil
}
