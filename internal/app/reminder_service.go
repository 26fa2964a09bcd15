package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"reminder_calendar_bot/internal/domain/calendar"
	"reminder_calendar_bot/internal/domain/reminder"

	"github.com/sirupsen/logrus"
)

// RetentionDays is the grace period after a reminder's date before it is
// purged. A reminder dated exactly today-RetentionDays is still retained.
const RetentionDays = 10

// Custom application-level errors for reminder validation.
var ErrEmptyTitle = fmt.Errorf("reminder title must not be empty")
var ErrTitleTooLong = fmt.Errorf("reminder title must not exceed %d characters", reminder.MaxTitleLength)
var ErrPastDate = fmt.Errorf("reminders cannot be created for past dates")

// ReminderService owns validation, the retention sweep and the listing/month
// projection the presentation layer consumes.
type ReminderService struct {
	repo           reminder.Repository
	logger         *logrus.Entry
	allowPastDates bool
	weekStart      time.Weekday
}

func NewReminderService(repo reminder.Repository, logger *logrus.Entry, allowPastDates bool, weekStart time.Weekday) *ReminderService {
	return &ReminderService{
		repo:           repo,
		logger:         logger,
		allowPastDates: allowPastDates,
		weekStart:      weekStart,
	}
}

// AddReminder validates and persists a new reminder. On validation failure
// nothing is written and the collection is left untouched.
func (s *ReminderService) AddReminder(ctx context.Context, title, description string, date time.Time, createdBy, color string) (*reminder.Reminder, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if len([]rune(title)) > reminder.MaxTitleLength {
		return nil, ErrTitleTooLong
	}

	createdBy = strings.TrimSpace(createdBy)
	if createdBy == "" {
		createdBy = reminder.AnonymousAuthor
	}

	day := calendar.DateOf(date)
	if !s.allowPastDates && day.Before(calendar.DateOf(time.Now())) {
		return nil, ErrPastDate
	}

	r := &reminder.Reminder{
		Title:       title,
		Description: strings.TrimSpace(description),
		Date:        day,
		CreatedBy:   createdBy,
		Color:       strings.TrimSpace(color),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, r); err != nil {
		s.logger.WithError(err).Error("Failed to insert reminder")
		return nil, fmt.Errorf("failed to insert reminder: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"reminder_id": r.ID,
		"date":        day.Format("2006-01-02"),
		"created_by":  r.CreatedBy,
	}).Info("Reminder created")
	return r, nil
}

// GetReminders returns every live reminder, purging expired ones as a side
// effect of the load. The returned set is unfiltered and unsorted; ordering
// is the caller's responsibility.
func (s *ReminderService) GetReminders(ctx context.Context, today time.Time) ([]*reminder.Reminder, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	live, expired := s.partitionByRetention(all, today)
	s.purge(ctx, expired)
	return live, nil
}

// SweepExpired purges every reminder past the retention window and returns
// the number of records removed. The read path calls this implicitly; the
// scheduler calls it out-of-band to keep the store bounded when nobody reads.
func (s *ReminderService) SweepExpired(ctx context.Context, today time.Time) (int, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list reminders for sweep: %w", err)
	}
	_, expired := s.partitionByRetention(all, today)
	return s.purge(ctx, expired), nil
}

// DeleteReminder removes a reminder. Deleting an ID that is missing, or that
// a concurrent sweep already removed, succeeds as a no-op.
func (s *ReminderService) DeleteReminder(ctx context.Context, id int64) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		s.logger.WithError(err).WithField("reminder_id", id).Error("Failed to delete reminder")
		return fmt.Errorf("failed to delete reminder %d: %w", id, err)
	}
	s.logger.WithField("reminder_id", id).Info("Reminder deleted")
	return nil
}

// EditReminder replaces the title and description of an existing reminder,
// applying the same title rules as creation. Editing a missing ID is a no-op.
func (s *ReminderService) EditReminder(ctx context.Context, id int64, title, description string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	if len([]rune(title)) > reminder.MaxTitleLength {
		return ErrTitleTooLong
	}

	if err := s.repo.Update(ctx, id, title, strings.TrimSpace(description)); err != nil {
		s.logger.WithError(err).WithField("reminder_id", id).Error("Failed to update reminder")
		return fmt.Errorf("failed to update reminder %d: %w", id, err)
	}
	s.logger.WithField("reminder_id", id).Info("Reminder updated")
	return nil
}

// WeekStart exposes the configured first weekday for renderers.
func (s *ReminderService) WeekStart() time.Weekday {
	return s.weekStart
}

func (s *ReminderService) partitionByRetention(all []*reminder.Reminder, today time.Time) (live, expired []*reminder.Reminder) {
	cutoff := calendar.DateOf(today).AddDate(0, 0, -RetentionDays)
	for _, r := range all {
		if calendar.DateOf(r.Date).Before(cutoff) {
			expired = append(expired, r)
		} else {
			live = append(live, r)
		}
	}
	return live, expired
}

// purge deletes expired reminders best-effort: a single failed deletion is
// logged and skipped so it can never abort the rest of the sweep or the
// listing that triggered it.
func (s *ReminderService) purge(ctx context.Context, expired []*reminder.Reminder) int {
	purged := 0
	for _, r := range expired {
		if err := s.repo.DeleteByID(ctx, r.ID); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"reminder_id": r.ID,
				"date":        r.Date.Format("2006-01-02"),
			}).Warn("Failed to purge expired reminder, continuing sweep")
			continue
		}
		purged++
	}
	if purged > 0 {
		s.logger.WithField("purged", purged).Info("Expired reminders purged")
	}
	return purged
}
