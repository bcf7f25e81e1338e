package workcalendar

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"remotework.service/internal/core"
	"remotework.service/internal/core/model"
)

// WeekdayCalendar is the default working day oracle used when the
// organization's contract calendar is not wired in: Monday to Friday
// counts as working, full-day public holidays do not. The per-user
// contract rules live in an external system; swap in its client here
// once it exposes one.
type WeekdayCalendar struct {
	holidays core.HolidayFinder // optional, may be nil
}

// New creates a WeekdayCalendar. The holiday finder is optional.
func New(holidays core.HolidayFinder) *WeekdayCalendar {
	return &WeekdayCalendar{holidays: holidays}
}

// IsWorkDay reports whether the date is a weekday and not a full-day
// public holiday of the user's holiday group.
func (c *WeekdayCalendar) IsWorkDay(ctx context.Context, user *model.User, date time.Time) bool {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	if c.holidays == nil {
		return true
	}

	holidays, err := c.holidays.FindForDay(ctx, date, user.HolidayGroup)
	if err != nil {
		// Treat an unreachable holiday source as "no holiday" so entry
		// creation keeps working; overlap warnings catch the rest.
		log.Ctx(ctx).Warn().Err(err).Msg("Holiday lookup failed, assuming working day")
		return true
	}

	for _, holiday := range holidays {
		if !holiday.HalfDay {
			return false
		}
	}

	return true
}
