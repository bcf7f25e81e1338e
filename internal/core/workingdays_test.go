package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"remotework.service/internal/core/model"
)

// calendarFunc adapts a plain function to the WorkDayCalendar interface.
type calendarFunc func(date time.Time) bool

func (f calendarFunc) IsWorkDay(_ context.Context, _ *model.User, date time.Time) bool {
	return f(date)
}

func weekdaysOnly(date time.Time) bool {
	return date.Weekday() != time.Saturday && date.Weekday() != time.Sunday
}

func TestWorkingDayExpander(t *testing.T) {
	user := &model.User{ID: 42, Username: "jdoe"}
	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	friday := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	t.Run("single date yields at most one day", func(t *testing.T) {
		expander := NewWorkingDayExpander(calendarFunc(weekdaysOnly))
		days := expander.Expand(context.Background(), user, monday, nil)

		assert.Equal(t, []time.Time{monday}, days)
	})

	t.Run("single non-working date yields nothing", func(t *testing.T) {
		saturday := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
		expander := NewWorkingDayExpander(calendarFunc(weekdaysOnly))
		days := expander.Expand(context.Background(), user, saturday, nil)

		assert.Empty(t, days)
	})

	t.Run("end date equal to start yields at most one day", func(t *testing.T) {
		end := monday
		expander := NewWorkingDayExpander(calendarFunc(weekdaysOnly))
		days := expander.Expand(context.Background(), user, monday, &end)

		assert.Equal(t, []time.Time{monday}, days)
	})

	t.Run("range includes the end date", func(t *testing.T) {
		expander := NewWorkingDayExpander(calendarFunc(weekdaysOnly))
		days := expander.Expand(context.Background(), user, monday, &friday)

		assert.Len(t, days, 5)
		assert.Equal(t, monday, days[0])
		assert.Equal(t, friday, days[len(days)-1])
	})

	t.Run("non-working days inside the range are skipped", func(t *testing.T) {
		wednesday := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
		calendar := calendarFunc(func(date time.Time) bool {
			return weekdaysOnly(date) && !date.Equal(wednesday)
		})

		expander := NewWorkingDayExpander(calendar)
		days := expander.Expand(context.Background(), user, monday, &friday)

		assert.Len(t, days, 4)
		assert.NotContains(t, days, wednesday)
	})

	t.Run("range spanning a weekend skips it", func(t *testing.T) {
		nextMonday := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)
		expander := NewWorkingDayExpander(calendarFunc(weekdaysOnly))
		days := expander.Expand(context.Background(), user, friday, &nextMonday)

		assert.Equal(t, []time.Time{friday, nextMonday}, days)
	})

	t.Run("range with no working days yields empty", func(t *testing.T) {
		saturday := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
		sunday := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)
		expander := NewWorkingDayExpander(calendarFunc(weekdaysOnly))
		days := expander.Expand(context.Background(), user, saturday, &sunday)

		assert.Empty(t, days)
	})

	t.Run("dates are normalized to start of day", func(t *testing.T) {
		late := time.Date(2025, 3, 10, 23, 45, 0, 0, time.UTC)
		expander := NewWorkingDayExpander(calendarFunc(weekdaysOnly))
		days := expander.Expand(context.Background(), user, late, nil)

		assert.Equal(t, []time.Time{monday}, days)
	})
}
