package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"reminder_calendar_bot/internal/domain/reminder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A file in a per-test temp dir, not ":memory:": the connection pool would
// otherwise hand each connection its own empty in-memory database.
func setupSQLiteRepo(t *testing.T) *SQLiteReminderRepository {
	repo, err := NewSQLiteReminderRepository(filepath.Join(t.TempDir(), "reminders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testReminder(day time.Time) *reminder.Reminder {
	return &reminder.Reminder{
		Title:       "Team lunch",
		Description: "at the usual place",
		Date:        day,
		CreatedBy:   "Bob",
		Color:       "#ff8800",
		CreatedAt:   time.Date(2024, time.April, 30, 12, 30, 0, 0, time.UTC),
	}
}

func TestSQLiteInsertAndListAll(t *testing.T) {
	ctx := context.Background()
	repo := setupSQLiteRepo(t)

	day := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	first := testReminder(day)
	require.NoError(t, repo.Insert(ctx, first))
	require.NotZero(t, first.ID)

	second := testReminder(day)
	second.Title = "Another"
	require.NoError(t, repo.Insert(ctx, second))
	assert.NotEqual(t, first.ID, second.ID)

	rows, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	got := rows[0]
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "Team lunch", got.Title)
	assert.Equal(t, "at the usual place", got.Description)
	assert.Equal(t, day, got.Date)
	assert.Equal(t, "Bob", got.CreatedBy)
	assert.Equal(t, "#ff8800", got.Color)
	assert.True(t, got.CreatedAt.Equal(first.CreatedAt))
}

func TestSQLiteListBetweenInclusive(t *testing.T) {
	ctx := context.Background()
	repo := setupSQLiteRepo(t)

	for d := 1; d <= 3; d++ {
		r := testReminder(time.Date(2024, time.May, d, 0, 0, 0, 0, time.UTC))
		require.NoError(t, repo.Insert(ctx, r))
	}

	rows, err := repo.ListBetween(ctx,
		time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 2, "both range endpoints are inclusive")
	assert.Equal(t, 1, rows[0].Date.Day())
	assert.Equal(t, 2, rows[1].Date.Day())

	rows, err = repo.ListBetween(ctx,
		time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSQLiteDeleteByIDNoOp(t *testing.T) {
	ctx := context.Background()
	repo := setupSQLiteRepo(t)

	r := testReminder(time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Insert(ctx, r))

	require.NoError(t, repo.DeleteByID(ctx, r.ID))
	require.NoError(t, repo.DeleteByID(ctx, r.ID), "deleting an already-removed id must be a no-op")
	require.NoError(t, repo.DeleteByID(ctx, 9999), "deleting an unknown id must be a no-op")

	rows, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSQLiteUpdate(t *testing.T) {
	ctx := context.Background()
	repo := setupSQLiteRepo(t)

	r := testReminder(time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Insert(ctx, r))

	require.NoError(t, repo.Update(ctx, r.ID, "New title", "new description"))

	rows, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "New title", rows[0].Title)
	assert.Equal(t, "new description", rows[0].Description)
	assert.Equal(t, "Bob", rows[0].CreatedBy, "update only touches title and description")
	assert.Equal(t, r.Date, rows[0].Date)

	require.NoError(t, repo.Update(ctx, 9999, "x", "y"), "updating a missing id is a no-op")
}
