// Package health classifies how a task is tracking against its due date,
// its direct dependencies and its checklist.
package health

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/zulandar/taskyard/internal/models"
	"github.com/zulandar/taskyard/internal/store"
)

// dueSoonDays is the horizon under which a task not yet started is at risk.
const dueSoonDays = 2

// precedence ranks candidate classifications; the highest wins.
var precedence = map[models.HealthStatus]int{
	models.HealthOnTrack: 0,
	models.HealthAtRisk:  1,
	models.HealthDelayed: 2,
	models.HealthAhead:   3,
}

// Calculate scores t at now. deps maps dependency task ids to the loaded
// tasks; ids absent from the map are ignored. Only the first incomplete
// dependency, in stored order, is considered.
func Calculate(t *models.Task, deps map[string]*models.Task, now time.Time) models.Health {
	status := models.HealthOnTrack
	consider := func(s models.HealthStatus) {
		if precedence[s] > precedence[status] {
			status = s
		}
	}
	factors := models.HealthFactors{RisksIdentified: []string{}}

	if t.DueDate != nil {
		days := int(math.Ceil(t.DueDate.Sub(now).Hours() / 24))
		factors.DaysUntilDue = &days

		if days <= dueSoonDays && t.Status != models.StatusInProgress && t.Status != models.StatusCompleted {
			consider(models.HealthAtRisk)
			factors.RisksIdentified = append(factors.RisksIdentified,
				fmt.Sprintf("due in %d days and not started", days))
		}
		if days < 0 && t.Status != models.StatusCompleted {
			consider(models.HealthDelayed)
			factors.RisksIdentified = append(factors.RisksIdentified,
				fmt.Sprintf("overdue by %d days", -days))
		}
	}

	for _, d := range t.Dependencies {
		dep, ok := deps[d.Task]
		if !ok || dep.Status == models.StatusCompleted {
			continue
		}
		factors.BlockedByDependencies = true
		if d.Type == models.FinishToStart {
			consider(models.HealthAtRisk)
		}
		factors.RisksIdentified = append(factors.RisksIdentified,
			fmt.Sprintf("blocked by %s (%s)", dep.ID, d.Type))
		break
	}

	factors.ProgressRate = ProgressRate(t.Checklist)

	if t.Status == models.StatusCompleted && t.DueDate != nil && t.CompletionTime().Before(*t.DueDate) {
		consider(models.HealthAhead)
	}

	at := now
	return models.Health{
		Status:           status,
		LastCalculatedAt: &at,
		Factors:          factors,
	}
}

// ProgressRate returns the rounded percentage of completed checklist
// items, or 0 for an empty checklist.
func ProgressRate(items []models.ChecklistItem) int {
	if len(items) == 0 {
		return 0
	}
	done := 0
	for _, it := range items {
		if it.Completed {
			done++
		}
	}
	return int(math.Round(100 * float64(done) / float64(len(items))))
}

// Recalculate loads the task and its direct dependencies, scores it and
// saves the result. UpdatedAt is left alone since it stands in for the
// completion time of older records.
func Recalculate(ctx context.Context, st store.Store, taskID string, now time.Time) (*models.Task, error) {
	t, err := st.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("health: load %s: %w", taskID, err)
	}

	deps := make(map[string]*models.Task, len(t.Dependencies))
	for _, d := range t.Dependencies {
		if _, ok := deps[d.Task]; ok {
			continue
		}
		dep, err := st.GetTask(ctx, d.Task)
		if err != nil {
			if store.IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("health: load dependency %s: %w", d.Task, err)
		}
		deps[d.Task] = dep
	}

	t.Health = Calculate(t, deps, now)
	if err := st.SaveTask(ctx, t); err != nil {
		return nil, fmt.Errorf("health: save %s: %w", taskID, err)
	}
	return t, nil
}
