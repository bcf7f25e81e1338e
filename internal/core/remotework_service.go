package core

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"remotework.service/internal/core/model"
	"remotework.service/internal/ports/messaging"
	"remotework.service/internal/ports/repository"
)

var (
	ErrMissingUser = errors.New("remote work entry must have a user")
	ErrMissingDate = errors.New("remote work entry must have a date")
)

// CalendarSync is what the service needs from the CalDAV client. Every
// operation reports success as a bool; sync failures are advisory and
// never abort a local mutation.
type CalendarSync interface {
	UpsertEvent(ctx context.Context, entry *model.RemoteWork) bool
	DeleteEvent(ctx context.Context, entry *model.RemoteWork) bool
	SyncBatch(ctx context.Context, entries []*model.RemoteWork) int
}

// RemoteWorkService is the main application service: it expands date
// ranges into entries, drives the approval workflow and keeps the remote
// calendar in step with local state.
type RemoteWorkService struct {
	repo             repository.Repository
	calendar         CalendarSync
	expander         *WorkingDayExpander
	producer         messaging.QueueProducer
	approvalRequired bool
	approverEmail    string
}

// NewRemoteWorkService wires up the service with its repository, the
// calendar sync client, the working day expander and the event producer.
func NewRemoteWorkService(
	repo repository.Repository,
	calendar CalendarSync,
	expander *WorkingDayExpander,
	producer messaging.QueueProducer,
	approvalRequired bool,
	approverEmail string,
) *RemoteWorkService {
	return &RemoteWorkService{
		repo:             repo,
		calendar:         calendar,
		expander:         expander,
		producer:         producer,
		approvalRequired: approvalRequired,
		approverEmail:    approverEmail,
	}
}

// ApprovalRequired reports whether new entries need an explicit approval.
func (s *RemoteWorkService) ApprovalRequired() bool {
	return s.approvalRequired
}

// CreateEntries creates one entry per working day between the prototype's
// date and the optional end date. Entries start in status "new", or are
// auto-approved immediately when approval is not required; auto-approved
// entries are pushed to the calendar right away.
func (s *RemoteWorkService) CreateEntries(ctx context.Context, currentUser *model.User, prototype *model.RemoteWork, endDate *time.Time) ([]*model.RemoteWork, error) {
	if prototype.User == nil {
		return nil, ErrMissingUser
	}
	if prototype.Date.IsZero() {
		return nil, ErrMissingDate
	}

	now := time.Now()

	workingDays := s.expander.Expand(ctx, prototype.User, prototype.Date, endDate)
	if len(workingDays) == 0 {
		return nil, ErrNoWorkingDays
	}

	entries := make([]*model.RemoteWork, 0, len(workingDays))
	for _, day := range workingDays {
		entry := &model.RemoteWork{
			User:      prototype.User,
			Type:      prototype.Type,
			Date:      day,
			HalfDay:   prototype.HalfDay,
			Comment:   prototype.Comment,
			Status:    model.StatusNew,
			CreatedBy: currentUser,
			CreatedAt: now,
		}
		if !s.approvalRequired {
			entry.Approve(currentUser, now)
		}

		if err := s.repo.Save(ctx, entry); err != nil {
			return nil, errors.New("failed to save remote work entry")
		}
		s.syncToCalendar(ctx, entry)
		entries = append(entries, entry)
	}

	if s.approvalRequired {
		s.publishMail(ctx, prototype.User, messaging.MailActionRequested, entries)
	}

	return entries, nil
}

// Save persists an edited entry and re-syncs it if it is approved.
func (s *RemoteWorkService) Save(ctx context.Context, entry *model.RemoteWork) error {
	if err := s.repo.Save(ctx, entry); err != nil {
		return errors.New("failed to save remote work entry")
	}
	s.syncToCalendar(ctx, entry)
	return nil
}

// Approve approves all given entries in one transaction and then pushes
// each of them to the calendar.
func (s *RemoteWorkService) Approve(ctx context.Context, entries []*model.RemoteWork, approver *model.User) error {
	if len(entries) == 0 {
		return nil
	}

	now := time.Now()
	for _, entry := range entries {
		entry.Approve(approver, now)
	}

	if err := s.repo.BatchSave(ctx, entries); err != nil {
		return errors.New("failed to save approved entries")
	}

	for _, entry := range entries {
		s.calendar.UpsertEvent(ctx, entry)
	}

	if len(entries) > 0 && entries[0].User != nil {
		s.publishMail(ctx, entries[0].User, messaging.MailActionApproved, entries)
	}

	return nil
}

// Reject rejects all given entries. Entries that were previously
// approved are removed from the calendar first, so a crash between the
// two steps leaves at worst a stale remote copy, never an orphaned one.
func (s *RemoteWorkService) Reject(ctx context.Context, entries []*model.RemoteWork) error {
	if len(entries) == 0 {
		return nil
	}

	for _, entry := range entries {
		if entry.IsApproved() {
			if !s.calendar.DeleteEvent(ctx, entry) {
				// Local state wins; the remote event may linger until the next sync.
				log.Ctx(ctx).Warn().
					Int64("entry_id", entry.ID).
					Msg("Could not remove calendar event for rejected entry, remote calendar is now stale")
			}
		}
		entry.Reject()
	}

	if err := s.repo.BatchSave(ctx, entries); err != nil {
		return errors.New("failed to save rejected entries")
	}

	if entries[0].User != nil {
		s.publishMail(ctx, entries[0].User, messaging.MailActionRejected, entries)
	}

	return nil
}

// Delete removes a single entry from the calendar and then locally.
func (s *RemoteWorkService) Delete(ctx context.Context, entry *model.RemoteWork) error {
	s.calendar.DeleteEvent(ctx, entry)

	if err := s.repo.Remove(ctx, entry); err != nil {
		return errors.New("failed to delete remote work entry")
	}
	return nil
}

// BatchDelete removes all entries from the calendar first and then
// deletes them locally in one transaction.
func (s *RemoteWorkService) BatchDelete(ctx context.Context, entries []*model.RemoteWork) error {
	for _, entry := range entries {
		s.calendar.DeleteEvent(ctx, entry)
	}

	if err := s.repo.BatchRemove(ctx, entries); err != nil {
		return errors.New("failed to delete remote work entries")
	}
	return nil
}

// SyncToCalendarBatch pushes all approved entries of the given set to the
// calendar and returns how many were synced.
func (s *RemoteWorkService) SyncToCalendarBatch(ctx context.Context, entries []*model.RemoteWork) int {
	return s.calendar.SyncBatch(ctx, entries)
}

// RequestResync enqueues a background re-push of all approved entries of
// one user and year.
func (s *RemoteWorkService) RequestResync(ctx context.Context, user *model.User, year int) error {
	if s.producer == nil {
		return errors.New("calendar sync queue is not configured")
	}

	event := messaging.CalendarSyncEvent{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Year:        year,
	}
	if err := s.producer.PublishSync(ctx, event); err != nil {
		return errors.New("failed to publish calendar sync event")
	}
	return nil
}

// ResyncYear loads all approved entries of one user and year and pushes
// them to the calendar. Used by the sync worker.
func (s *RemoteWorkService) ResyncYear(ctx context.Context, userID int64, year int) (int, error) {
	entries, err := s.repo.FindApprovedByUserAndYear(ctx, userID, year)
	if err != nil {
		return 0, errors.New("failed to load entries for resync")
	}
	return s.calendar.SyncBatch(ctx, entries), nil
}

// Statistic sums up a user's approved remote work days for one year.
func (s *RemoteWorkService) Statistic(ctx context.Context, userID int64, year int) (*model.Statistic, error) {
	entries, err := s.repo.FindApprovedByUserAndYear(ctx, userID, year)
	if err != nil {
		return nil, errors.New("failed to load entries for statistics")
	}

	stats := &model.Statistic{}
	for _, entry := range entries {
		if entry.IsHomeoffice() {
			stats.AddHomeofficeDays(entry.DayValue())
		} else if entry.IsBusinessTrip() {
			stats.AddBusinessTripDays(entry.DayValue())
		}
	}

	return stats, nil
}

// FindByUserAndYear is a pass-through to the repository layer.
func (s *RemoteWorkService) FindByUserAndYear(ctx context.Context, userID int64, year int) ([]*model.RemoteWork, error) {
	return s.repo.FindByUserAndYear(ctx, userID, year)
}

// FindByUserAndMonth is a pass-through to the repository layer.
func (s *RemoteWorkService) FindByUserAndMonth(ctx context.Context, userID int64, year int, month time.Month) ([]*model.RemoteWork, error) {
	return s.repo.FindByUserAndMonth(ctx, userID, year, month)
}

// FindByUserAndDate is a pass-through to the repository layer.
func (s *RemoteWorkService) FindByUserAndDate(ctx context.Context, userID int64, date time.Time) ([]*model.RemoteWork, error) {
	return s.repo.FindByUserAndDate(ctx, userID, date)
}

// FindApprovedByUserAndYear is a pass-through to the repository layer.
func (s *RemoteWorkService) FindApprovedByUserAndYear(ctx context.Context, userID int64, year int) ([]*model.RemoteWork, error) {
	return s.repo.FindApprovedByUserAndYear(ctx, userID, year)
}

// Get is a pass-through to the repository layer.
func (s *RemoteWorkService) Get(ctx context.Context, id int64) (*model.RemoteWork, error) {
	return s.repo.Get(ctx, id)
}

// syncToCalendar pushes a single entry if it is approved. New and
// rejected entries never reach the calendar.
func (s *RemoteWorkService) syncToCalendar(ctx context.Context, entry *model.RemoteWork) {
	if entry.IsApproved() {
		s.calendar.UpsertEvent(ctx, entry)
	}
}

// publishMail notifies the mail worker about a workflow step. Best
// effort: a lost notification never fails the workflow itself.
func (s *RemoteWorkService) publishMail(ctx context.Context, user *model.User, action string, entries []*model.RemoteWork) {
	if s.producer == nil {
		return
	}

	dates := make([]string, 0, len(entries))
	for _, entry := range entries {
		dates = append(dates, entry.Date.Format("2006-01-02"))
	}

	event := messaging.ApprovalMailEvent{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Email:       s.notificationAddress(user, action),
		Action:      action,
		Dates:       dates,
		OccurredAt:  time.Now(),
	}

	if err := s.producer.PublishMail(ctx, event); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("action", action).Msg("Failed to publish approval mail event")
	}
}

// notificationAddress picks the recipient: the approver inbox for new
// requests, the entry owner for decisions.
func (s *RemoteWorkService) notificationAddress(user *model.User, action string) string {
	if action == messaging.MailActionRequested {
		return s.approverEmail
	}
	if user.Email != "" {
		return user.Email
	}
	return s.approverEmail
}
