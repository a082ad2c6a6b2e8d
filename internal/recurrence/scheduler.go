package recurrence

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zulandar/taskyard/internal/logging"
)

// cronParser accepts 5-field cron expressions and descriptors such as
// @daily or @every 1h. It matches cron.ParseStandard, which config
// validation uses.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// NextRun returns the first fire time of expr strictly after from.
func NextRun(expr string, from time.Time) (time.Time, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("recurrence: parse schedule %q: %w", expr, err)
	}
	return sched.Next(from), nil
}

// Scheduler runs Generator.CreateInstances on a cron schedule with a
// rolling horizon.
type Scheduler struct {
	gen     *Generator
	cron    *cron.Cron
	expr    string
	horizon time.Duration
	clock   func() time.Time
}

// NewScheduler validates expr and returns a stopped scheduler. Each run
// generates instances due within horizonDays of the clock. A nil clock
// means time.Now.
func NewScheduler(gen *Generator, expr string, horizonDays int, clock func() time.Time) (*Scheduler, error) {
	if _, err := cronParser.Parse(expr); err != nil {
		return nil, fmt.Errorf("recurrence: parse schedule %q: %w", expr, err)
	}
	if clock == nil {
		clock = time.Now
	}
	return &Scheduler{
		gen:     gen,
		cron:    cron.New(cron.WithParser(cronParser), cron.WithLocation(time.UTC)),
		expr:    expr,
		horizon: time.Duration(horizonDays) * 24 * time.Hour,
		clock:   clock,
	}, nil
}

// RunOnce generates instances up to the horizon from the current clock.
func (s *Scheduler) RunOnce(ctx context.Context) (*Result, error) {
	now := s.clock().UTC()
	return s.gen.CreateInstances(ctx, now.Add(s.horizon), now)
}

// Start schedules runs until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.expr, func() {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.RunOnce(ctx); err != nil {
			logging.Logger.WithError(err).Error("scheduled recurring generation failed")
		}
	})
	if err != nil {
		return fmt.Errorf("recurrence: schedule %q: %w", s.expr, err)
	}
	s.cron.Start()
	logging.Logger.WithField("schedule", s.expr).Info("recurrence scheduler started")
	return nil
}

// Stop halts the schedule and waits for a running batch to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
