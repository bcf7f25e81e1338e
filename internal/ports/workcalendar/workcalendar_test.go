package workcalendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"remotework.service/internal/core/model"
)

type stubHolidayFinder struct {
	holidays []model.PublicHoliday
	err      error
}

func (s *stubHolidayFinder) FindForDay(_ context.Context, _ time.Time, _ int) ([]model.PublicHoliday, error) {
	return s.holidays, s.err
}

func TestIsWorkDay(t *testing.T) {
	user := &model.User{ID: 42, HolidayGroup: 1}
	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	saturday := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)

	t.Run("weekdays are working days", func(t *testing.T) {
		calendar := New(nil)
		assert.True(t, calendar.IsWorkDay(context.Background(), user, monday))
	})

	t.Run("weekends are not", func(t *testing.T) {
		calendar := New(nil)
		assert.False(t, calendar.IsWorkDay(context.Background(), user, saturday))
		assert.False(t, calendar.IsWorkDay(context.Background(), user, sunday))
	})

	t.Run("full day holidays block the day", func(t *testing.T) {
		calendar := New(&stubHolidayFinder{holidays: []model.PublicHoliday{
			{Name: "Foundation Day", Date: monday},
		}})
		assert.False(t, calendar.IsWorkDay(context.Background(), user, monday))
	})

	t.Run("half day holidays do not", func(t *testing.T) {
		calendar := New(&stubHolidayFinder{holidays: []model.PublicHoliday{
			{Name: "New Year's Eve", Date: monday, HalfDay: true},
		}})
		assert.True(t, calendar.IsWorkDay(context.Background(), user, monday))
	})

	t.Run("holiday lookup failure assumes working day", func(t *testing.T) {
		calendar := New(&stubHolidayFinder{err: errors.New("api down")})
		assert.True(t, calendar.IsWorkDay(context.Background(), user, monday))
	})
}
