// Package recurrence expands recurrence rules into due dates and
// materializes task instances from recurring templates.
package recurrence

import (
	"fmt"
	"time"

	"github.com/zulandar/taskyard/internal/models"
)

// Validate checks a template's rule. Custom frequency is accepted but never
// produces dates.
func Validate(rule models.Recurrence) error {
	if !rule.Frequency.Valid() {
		return fmt.Errorf("recurrence: unknown frequency %q: %w", rule.Frequency, models.ErrInvalidInput)
	}
	if rule.Interval < 1 {
		return fmt.Errorf("recurrence: interval must be at least 1, got %d: %w", rule.Interval, models.ErrInvalidInput)
	}
	if rule.Occurrences < 0 {
		return fmt.Errorf("recurrence: occurrences must be non-negative, got %d: %w", rule.Occurrences, models.ErrInvalidInput)
	}
	seen := make(map[int]bool, len(rule.DaysOfWeek))
	for _, d := range rule.DaysOfWeek {
		if d < 0 || d > 6 {
			return fmt.Errorf("recurrence: day of week %d out of range 0-6: %w", d, models.ErrInvalidInput)
		}
		if seen[d] {
			return fmt.Errorf("recurrence: day of week %d listed twice: %w", d, models.ErrInvalidInput)
		}
		seen[d] = true
	}
	return nil
}

// CalculateDates returns the future occurrences of rule from now up to the
// rule's end date, or upTo when the rule has none. Dates keep now's time
// of day and weekdays are evaluated in UTC. The result is chronological and
// capped at rule.Occurrences when that is set.
func CalculateDates(rule models.Recurrence, now, upTo time.Time) []time.Time {
	now = now.UTC()
	end := upTo.UTC()
	if rule.EndDate != nil {
		end = rule.EndDate.UTC()
	}
	interval := rule.Interval
	if interval < 1 {
		interval = 1
	}

	var days map[time.Weekday]bool
	if len(rule.DaysOfWeek) > 0 {
		days = make(map[time.Weekday]bool, len(rule.DaysOfWeek))
		for _, d := range rule.DaysOfWeek {
			days[time.Weekday(d)] = true
		}
	}

	var dates []time.Time
	capped := func() bool {
		return rule.Occurrences > 0 && len(dates) >= rule.Occurrences
	}
	emit := func(d time.Time) {
		if !d.Before(now) && !d.After(end) {
			dates = append(dates, d)
		}
	}

	cursor := now
	for !cursor.After(end) && !capped() {
		switch rule.Frequency {
		case models.FrequencyDaily:
			cursor = cursor.AddDate(0, 0, interval)
			emit(cursor)
		case models.FrequencyWeekly:
			if days == nil {
				cursor = cursor.AddDate(0, 0, 7*interval)
				emit(cursor)
				continue
			}
			cursor = cursor.AddDate(0, 0, 1)
			if days[cursor.Weekday()] {
				emit(cursor)
			}
			if cursor.Weekday() == time.Saturday && interval > 1 {
				cursor = cursor.AddDate(0, 0, 7*(interval-1))
			}
		case models.FrequencyMonthly:
			cursor = cursor.AddDate(0, interval, 0)
			emit(cursor)
		default:
			// Custom rules have no expansion.
			return nil
		}
	}
	return dates
}
