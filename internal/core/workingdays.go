package core

import (
	"context"
	"errors"
	"time"

	"remotework.service/internal/core/model"
)

// ErrNoWorkingDays is returned when a requested date range contains no
// working day at all. Callers should surface it as a user input error.
var ErrNoWorkingDays = errors.New("no working days found in the selected date range")

// WorkDayCalendar answers whether a date is a working day for a user.
// It is owned by the organization's contract/holiday system; this
// service only drives the iteration, it knows nothing about weekends or
// contract rules itself.
type WorkDayCalendar interface {
	IsWorkDay(ctx context.Context, user *model.User, date time.Time) bool
}

// WorkingDayExpander turns a requested date range into the concrete,
// ascending list of working days that need a remote work entry.
type WorkingDayExpander struct {
	calendar WorkDayCalendar
}

// NewWorkingDayExpander wires the expander to the external calendar oracle.
func NewWorkingDayExpander(calendar WorkDayCalendar) *WorkingDayExpander {
	return &WorkingDayExpander{calendar: calendar}
}

// Expand evaluates the start date and, if an end date strictly after it
// is given, every calendar day up to and including the end date. Dates
// are normalized to start of day. The result may be empty; callers must
// treat that as "no working day in range", not as "nothing to do".
func (e *WorkingDayExpander) Expand(ctx context.Context, user *model.User, start time.Time, end *time.Time) []time.Time {
	days := make([]time.Time, 0)

	current := startOfDay(start)
	if e.calendar.IsWorkDay(ctx, user, current) {
		days = append(days, current)
	}

	if end == nil {
		return days
	}

	endDay := startOfDay(*end)
	for current.Before(endDay) {
		current = current.AddDate(0, 0, 1)
		if e.calendar.IsWorkDay(ctx, user, current) {
			days = append(days, current)
		}
	}

	return days
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
