package recurrence

import (
	"context"
	"time"

	"github.com/zulandar/taskyard/internal/models"
	"github.com/zulandar/taskyard/internal/store"
	"github.com/zulandar/taskyard/internal/task"
)

// CreateTemplate validates rule and creates a recurring template task in
// opts.Project. An interval of zero means 1.
func CreateTemplate(ctx context.Context, st store.Store, opts task.CreateOpts, rule models.Recurrence, now time.Time) (*models.Task, error) {
	if rule.Interval == 0 {
		rule.Interval = 1
	}
	if err := Validate(rule); err != nil {
		return nil, err
	}
	if rule.EndDate != nil {
		end := rule.EndDate.UTC()
		rule.EndDate = &end
	}
	opts.Recurrence = &rule
	return task.Create(ctx, st, opts, now)
}
