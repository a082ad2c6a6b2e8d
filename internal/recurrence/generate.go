package recurrence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zulandar/taskyard/internal/logging"
	"github.com/zulandar/taskyard/internal/models"
	"github.com/zulandar/taskyard/internal/project"
	"github.com/zulandar/taskyard/internal/store"
	"github.com/zulandar/taskyard/internal/task"
)

// Result summarizes a CreateInstances batch. Failed lists the ids of
// templates that errored.
type Result struct {
	Processed int      `json:"processed"`
	Created   int      `json:"created"`
	Errors    int      `json:"errors"`
	Failed    []string `json:"failed,omitempty"`
}

// Generator materializes instances of recurring templates. Batches are
// serialized so concurrent runs cannot both create the same instance.
type Generator struct {
	st store.Store
	mu sync.Mutex
}

// NewGenerator returns a Generator backed by st.
func NewGenerator(st store.Store) *Generator {
	return &Generator{st: st}
}

// CreateInstances creates the missing instances of every active template
// due on or before the template's end date, or upTo when it has none. An
// instance is missing when no instance of the template is due on the same
// UTC calendar day. A failing template is logged and counted; only a
// failure to list templates aborts the batch.
func (g *Generator) CreateInstances(ctx context.Context, upTo, now time.Time) (*Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	templates, err := g.st.ListTasks(ctx, store.TaskFilter{Recurring: store.Bool(true)})
	if err != nil {
		return nil, fmt.Errorf("recurrence: list templates: %w", err)
	}

	res := &Result{}
	touched := map[string]bool{}
	for i := range templates {
		tpl := &templates[i]
		if tpl.Recurrence.EndDate != nil && tpl.Recurrence.EndDate.Before(now) {
			continue
		}
		res.Processed++

		created, err := g.generate(ctx, tpl, upTo, now)
		res.Created += created
		if created > 0 && tpl.IsTopLevel() {
			touched[tpl.Project] = true
		}
		if err != nil {
			res.Errors++
			res.Failed = append(res.Failed, tpl.ID)
			logging.Logger.WithFields(logrus.Fields{
				"template": tpl.ID,
				"project":  tpl.Project,
			}).WithError(err).Warn("recurring instance generation failed")
		}
	}

	for projectID := range touched {
		if _, err := project.UpdateProgress(ctx, g.st, projectID, now); err != nil {
			logging.Logger.WithField("project", projectID).WithError(err).Warn("progress refresh after generation failed")
		}
	}

	logging.Logger.WithFields(logrus.Fields{
		"processed": res.Processed,
		"created":   res.Created,
		"errors":    res.Errors,
	}).Info("recurring instances generated")
	return res, nil
}

// generate creates the missing instances of one template and returns how
// many it created before any error.
func (g *Generator) generate(ctx context.Context, tpl *models.Task, upTo, now time.Time) (int, error) {
	dates := CalculateDates(tpl.Recurrence, now, upTo)
	if len(dates) == 0 {
		return 0, nil
	}

	existing, err := g.st.ListTasks(ctx, store.TaskFilter{ParentRecurringTaskID: tpl.ID})
	if err != nil {
		return 0, fmt.Errorf("recurrence: list instances of %s: %w", tpl.ID, err)
	}
	have := make(map[string]bool, len(existing))
	for _, inst := range existing {
		if inst.DueDate != nil {
			have[dayKey(*inst.DueDate)] = true
		}
	}

	created := 0
	for _, due := range dates {
		key := dayKey(due)
		if have[key] {
			continue
		}
		inst, err := newInstance(tpl, due, now)
		if err != nil {
			return created, err
		}
		if err := g.st.CreateTask(ctx, inst); err != nil {
			return created, fmt.Errorf("recurrence: create instance of %s for %s: %w", tpl.ID, key, err)
		}
		if err := task.Link(ctx, g.st, inst); err != nil {
			return created, err
		}
		have[key] = true
		created++
	}
	return created, nil
}

func newInstance(tpl *models.Task, due, now time.Time) (*models.Task, error) {
	id, err := store.NewID("tsk")
	if err != nil {
		return nil, err
	}
	inst := &models.Task{
		ID:          id,
		Title:       tpl.Title,
		Description: tpl.Description,
		Tags:        append([]string(nil), tpl.Tags...),
		Project:     tpl.Project,
		ParentTask:  tpl.ParentTask,
		Level:       tpl.Level,
		Status:      models.StatusToDo,
		Priority:    tpl.Priority,
		AssignedTo:  append([]string(nil), tpl.AssignedTo...),
		CreatedBy:   tpl.CreatedBy,
		Recurrence:  models.Recurrence{ParentRecurringTaskID: tpl.ID},
		Health:      models.Health{Status: models.HealthOnTrack},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if tpl.EstimatedHours != nil {
		h := *tpl.EstimatedHours
		inst.EstimatedHours = &h
	}
	d := due.UTC()
	inst.DueDate = &d
	return inst, nil
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
