// Package recurrence schedules recurring donations and spawns their successors.
package recurrence

import (
	"time"

	"givehub-backend/internal/domain"
)

// Fixed-day offsets; "monthly" drifts against the calendar.
const (
	monthlyOffset  = 30 * 24 * time.Hour
	annuallyOffset = 365 * 24 * time.Hour
)

// ComputeNextRecurrence returns from plus the interval's offset, or nil when the
// interval does not recur.
func ComputeNextRecurrence(interval domain.RecurrenceInterval, from time.Time) *time.Time {
	var next time.Time
	switch interval {
	case domain.RecurrenceMonthly:
		next = from.Add(monthlyOffset)
	case domain.RecurrenceAnnually:
		next = from.Add(annuallyOffset)
	default:
		return nil
	}
	return &next
}
