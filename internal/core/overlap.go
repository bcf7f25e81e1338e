package core

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"remotework.service/internal/core/model"
)

// Message keys for overlap warnings; the presentation layer owns the
// actual wording.
const (
	overlapWithRemoteWork = "remote_work.overlap_warning"
	overlapWithAbsence    = "remote_work.overlap_with_absence"
	overlapWithHoliday    = "remote_work.overlap_with_holiday"
)

// RemoteWorkFinder is the slice of the repository the overlap checker needs.
type RemoteWorkFinder interface {
	FindByUserAndDate(ctx context.Context, userID int64, date time.Time) ([]*model.RemoteWork, error)
}

// AbsenceFinder looks up externally owned absence records for one day.
type AbsenceFinder interface {
	FindForDay(ctx context.Context, userID int64, date time.Time) ([]model.Absence, error)
}

// HolidayFinder looks up public holidays for one day and holiday group.
type HolidayFinder interface {
	FindForDay(ctx context.Context, date time.Time, holidayGroup int) ([]model.PublicHoliday, error)
}

// OverlapChecker produces advisory warnings about commitments that
// already exist on a candidate date: other remote work entries, absences
// and public holidays.
//
// Warnings never block anything. Remote work, absences and holidays are
// independently owned records that may legitimately coexist, so the
// decision to proceed belongs entirely to the caller. The checker also
// never returns an error; a failing or missing lookup source simply
// contributes no warnings.
type OverlapChecker struct {
	remoteWork RemoteWorkFinder
	absences   AbsenceFinder // optional, may be nil
	holidays   HolidayFinder // optional, may be nil
}

// NewOverlapChecker creates a checker. The absence and holiday finders
// are optional collaborators; pass nil when they are not configured.
func NewOverlapChecker(remoteWork RemoteWorkFinder, absences AbsenceFinder, holidays HolidayFinder) *OverlapChecker {
	return &OverlapChecker{
		remoteWork: remoteWork,
		absences:   absences,
		holidays:   holidays,
	}
}

// CheckOverlaps inspects the candidate's date or, when an end date is
// given, every calendar day from start to end inclusive.
func (c *OverlapChecker) CheckOverlaps(ctx context.Context, candidate *model.RemoteWork, endDate *time.Time) []model.OverlapWarning {
	warnings := make([]model.OverlapWarning, 0)

	if candidate.User == nil || candidate.Date.IsZero() {
		return warnings
	}

	start := startOfDay(candidate.Date)

	if endDate == nil {
		return c.checkDay(ctx, candidate, start)
	}

	end := startOfDay(*endDate)
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		warnings = append(warnings, c.checkDay(ctx, candidate, current)...)
	}

	return warnings
}

func (c *OverlapChecker) checkDay(ctx context.Context, candidate *model.RemoteWork, date time.Time) []model.OverlapWarning {
	warnings := make([]model.OverlapWarning, 0)
	user := candidate.User

	existing, err := c.remoteWork.FindByUserAndDate(ctx, user.ID, date)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("Overlap lookup for remote work entries failed")
	}
	for _, other := range existing {
		// Editing an entry must not warn against itself.
		if other.ID == candidate.ID {
			continue
		}
		if other.IsRejected() {
			continue
		}

		warnings = append(warnings, model.OverlapWarning{
			ConflictingType: string(other.Type),
			Date:            date,
			MessageKey:      overlapWithRemoteWork,
		})
	}

	if c.absences != nil {
		absences, err := c.absences.FindForDay(ctx, user.ID, date)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("Overlap lookup for absences failed")
		}
		for _, absence := range absences {
			if absence.Rejected {
				continue
			}

			warnings = append(warnings, model.OverlapWarning{
				ConflictingType: string(absence.Type),
				Date:            date,
				MessageKey:      overlapWithAbsence,
			})
		}
	}

	if c.holidays != nil {
		holidays, err := c.holidays.FindForDay(ctx, date, user.HolidayGroup)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("Overlap lookup for public holidays failed")
		}
		for _, holiday := range holidays {
			// Half-day holidays leave room for a remote work day.
			if holiday.HalfDay {
				continue
			}

			warnings = append(warnings, model.OverlapWarning{
				ConflictingType: "public_holiday",
				Date:            date,
				MessageKey:      overlapWithHoliday,
			})
		}
	}

	return warnings
}
