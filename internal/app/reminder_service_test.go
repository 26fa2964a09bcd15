package app

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"reminder_calendar_bot/internal/domain/calendar"
	"reminder_calendar_bot/internal/domain/reminder"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepo is an in-memory reminder.Repository for service tests.
// failDeletes lets tests simulate a store that rejects specific deletions.
type memoryRepo struct {
	mu          sync.Mutex
	nextID      int64
	rows        map[int64]*reminder.Reminder
	failDeletes map[int64]error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[int64]*reminder.Reminder), failDeletes: make(map[int64]error)}
}

func (m *memoryRepo) Insert(_ context.Context, r *reminder.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.ID = m.nextID
	clone := *r
	m.rows[r.ID] = &clone
	return nil
}

func (m *memoryRepo) ListAll(_ context.Context) ([]*reminder.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*reminder.Reminder, 0, len(m.rows))
	for _, r := range m.rows {
		clone := *r
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memoryRepo) ListBetween(ctx context.Context, start, end time.Time) ([]*reminder.Reminder, error) {
	all, err := m.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*reminder.Reminder, 0, len(all))
	for _, r := range all {
		if !r.Date.Before(start) && !r.Date.After(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryRepo) DeleteByID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failDeletes[id]; ok {
		return err
	}
	delete(m.rows, id)
	return nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, title, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rows[id]; ok {
		r.Title = title
		r.Description = description
	}
	return nil
}

func (m *memoryRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newTestService(repo reminder.Repository, allowPastDates bool) *ReminderService {
	return NewReminderService(repo, discardLogger(), allowPastDates, time.Monday)
}

func TestAddReminderRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	service := newTestService(repo, true)

	today := time.Now()
	created, err := service.AddReminder(ctx, "  Dentist appointment  ", "  bring documents  ", today, "  Bob  ", " #ff8800 ")
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	listed, err := service.GetReminders(ctx, today)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	got := listed[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Dentist appointment", got.Title)
	assert.Equal(t, "bring documents", got.Description)
	assert.Equal(t, "Bob", got.CreatedBy)
	assert.Equal(t, "#ff8800", got.Color)
	assert.Equal(t, calendar.DateOf(today), got.Date)
	assert.False(t, got.CreatedAt.IsZero())

	second, err := service.AddReminder(ctx, "Another", "", today, "Bob", "")
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, second.ID, "ids must be unique")
}

func TestAddReminderAnonymousDefault(t *testing.T) {
	ctx := context.Background()
	service := newTestService(newMemoryRepo(), true)

	created, err := service.AddReminder(ctx, "Standup", "", time.Now(), "   ", "")
	require.NoError(t, err)
	assert.Equal(t, reminder.AnonymousAuthor, created.CreatedBy)
}

func TestAddReminderValidation(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	service := newTestService(repo, true)

	_, err := service.AddReminder(ctx, "   ", "x", time.Now(), "Bob", "#fff")
	assert.ErrorIs(t, err, ErrEmptyTitle)
	assert.Equal(t, 0, repo.count(), "a rejected add must not write anything")

	_, err = service.AddReminder(ctx, strings.Repeat("a", reminder.MaxTitleLength+1), "", time.Now(), "Bob", "")
	assert.ErrorIs(t, err, ErrTitleTooLong)
	assert.Equal(t, 0, repo.count())

	// Exactly at the cap is accepted.
	_, err = service.AddReminder(ctx, strings.Repeat("a", reminder.MaxTitleLength), "", time.Now(), "Bob", "")
	assert.NoError(t, err)
}

func TestAddReminderPastDatePolicy(t *testing.T) {
	ctx := context.Background()
	yesterday := time.Now().AddDate(0, 0, -1)

	t.Run("allowed_by_default", func(t *testing.T) {
		service := newTestService(newMemoryRepo(), true)
		_, err := service.AddReminder(ctx, "Backdated", "", yesterday, "Bob", "")
		assert.NoError(t, err)
	})

	t.Run("rejected_when_disabled", func(t *testing.T) {
		repo := newMemoryRepo()
		service := newTestService(repo, false)
		_, err := service.AddReminder(ctx, "Backdated", "", yesterday, "Bob", "")
		assert.ErrorIs(t, err, ErrPastDate)
		assert.Equal(t, 0, repo.count())

		_, err = service.AddReminder(ctx, "Today is fine", "", time.Now(), "Bob", "")
		assert.NoError(t, err)
	})
}

func TestExpiryBoundary(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	service := newTestService(repo, true)

	today := time.Now()
	onBoundary, err := service.AddReminder(ctx, "Exactly ten days old", "", today.AddDate(0, 0, -RetentionDays), "Bob", "")
	require.NoError(t, err)
	_, err = service.AddReminder(ctx, "Eleven days old", "", today.AddDate(0, 0, -RetentionDays-1), "Bob", "")
	require.NoError(t, err)

	live, err := service.GetReminders(ctx, today)
	require.NoError(t, err)
	require.Len(t, live, 1, "the reminder beyond the retention window must be purged")
	assert.Equal(t, onBoundary.ID, live[0].ID)
	assert.Equal(t, 1, repo.count(), "purged rows are removed from the store, not hidden")
}

func TestDeleteReminderIdempotent(t *testing.T) {
	ctx := context.Background()
	service := newTestService(newMemoryRepo(), true)

	created, err := service.AddReminder(ctx, "Short lived", "", time.Now(), "Bob", "")
	require.NoError(t, err)

	require.NoError(t, service.DeleteReminder(ctx, created.ID))
	require.NoError(t, service.DeleteReminder(ctx, created.ID), "second delete must be a no-op, not an error")
}

func TestSweepContinuesPastFailedDelete(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	service := newTestService(repo, true)

	today := time.Now()
	stuck, err := service.AddReminder(ctx, "Stuck", "", today.AddDate(0, 0, -20), "Bob", "")
	require.NoError(t, err)
	_, err = service.AddReminder(ctx, "Also expired", "", today.AddDate(0, 0, -15), "Bob", "")
	require.NoError(t, err)
	fresh, err := service.AddReminder(ctx, "Fresh", "", today, "Bob", "")
	require.NoError(t, err)

	repo.failDeletes[stuck.ID] = fmt.Errorf("connection reset")

	live, err := service.GetReminders(ctx, today)
	require.NoError(t, err, "a failed deletion must not abort the listing")
	require.Len(t, live, 1)
	assert.Equal(t, fresh.ID, live[0].ID)

	// The failing row survived, the other expired row did not.
	assert.Equal(t, 2, repo.count())
}

func TestSweepExpiredCount(t *testing.T) {
	ctx := context.Background()
	service := newTestService(newMemoryRepo(), true)

	today := time.Now()
	for i := 0; i < 3; i++ {
		_, err := service.AddReminder(ctx, fmt.Sprintf("Old %d", i), "", today.AddDate(0, 0, -RetentionDays-1-i), "Bob", "")
		require.NoError(t, err)
	}
	_, err := service.AddReminder(ctx, "Current", "", today, "Bob", "")
	require.NoError(t, err)

	purged, err := service.SweepExpired(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, 3, purged)

	purged, err = service.SweepExpired(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, 0, purged, "a second sweep finds nothing to purge")
}

func TestEditReminder(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	service := newTestService(repo, true)

	created, err := service.AddReminder(ctx, "Draft", "old text", time.Now(), "Bob", "")
	require.NoError(t, err)

	require.NoError(t, service.EditReminder(ctx, created.ID, "  Final  ", "  new text  "))

	listed, err := service.GetReminders(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Final", listed[0].Title)
	assert.Equal(t, "new text", listed[0].Description)

	assert.ErrorIs(t, service.EditReminder(ctx, created.ID, "   ", ""), ErrEmptyTitle)
	assert.NoError(t, service.EditReminder(ctx, created.ID+100, "Missing", ""), "editing a missing id is a no-op")
}

func TestMonthViewGrouping(t *testing.T) {
	ctx := context.Background()
	service := newTestService(newMemoryRepo(), true)

	may1 := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	may3 := time.Date(2024, time.May, 3, 0, 0, 0, 0, time.UTC)
	apr29 := time.Date(2024, time.April, 29, 0, 0, 0, 0, time.UTC) // overflow day of the May grid

	first, err := service.AddReminder(ctx, "First", "", may1, "Bob", "")
	require.NoError(t, err)
	second, err := service.AddReminder(ctx, "Second", "", may1, "Alice", "")
	require.NoError(t, err)
	_, err = service.AddReminder(ctx, "Third", "", may3, "Bob", "")
	require.NoError(t, err)
	_, err = service.AddReminder(ctx, "Leading overflow", "", apr29, "Bob", "")
	require.NoError(t, err)

	today := time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)
	view, err := service.MonthView(ctx, 2024, time.May, today)
	require.NoError(t, err)

	require.Len(t, view.Weeks, 5)
	require.Len(t, view.ByDate, 3)
	require.Len(t, view.On(may1), 2)
	require.Len(t, view.On(may3), 1)
	require.Len(t, view.On(apr29), 1, "overflow days are valid lookup keys")
	assert.Empty(t, view.On(time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)))

	// Insertion order within the day is preserved.
	assert.Equal(t, first.ID, view.On(may1)[0].ID)
	assert.Equal(t, second.ID, view.On(may1)[1].ID)
}
