package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reminder_calendar_bot/internal/domain/reminder"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

const dateLayout = "2006-01-02"

// SQLiteReminderRepository is the single-file adapter for the reminder
// collection, for deployments without a PostgreSQL server. Dates are stored
// as ISO-8601 text, which compares correctly in BETWEEN queries.
type SQLiteReminderRepository struct {
	db *sql.DB
}

// NewSQLiteReminderRepository opens (or creates) the SQLite database at
// dbPath and ensures the reminders table exists.
func NewSQLiteReminderRepository(dbPath string) (*SQLiteReminderRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// WAL mode so concurrent readers don't block the sweep's deletes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS reminders (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			date        TEXT NOT NULL,
			created_by  TEXT NOT NULL DEFAULT 'Anonymous',
			color       TEXT NOT NULL DEFAULT '',
			created_at  TEXT NOT NULL
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create reminders table: %w", err)
	}

	return &SQLiteReminderRepository{db: db}, nil
}

// Close closes the underlying database connection.
func (r *SQLiteReminderRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteReminderRepository) Insert(ctx context.Context, rem *reminder.Reminder) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO reminders (title, description, date, created_by, color, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rem.Title, rem.Description, rem.Date.Format(dateLayout),
		rem.CreatedBy, rem.Color, rem.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("error inserting reminder: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading inserted reminder id: %w", err)
	}
	rem.ID = id
	return nil
}

func (r *SQLiteReminderRepository) ListAll(ctx context.Context) ([]*reminder.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, date, created_by, color, created_at
		FROM reminders ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("error listing all reminders: %w", err)
	}
	defer rows.Close()
	return scanSQLiteReminders(rows)
}

func (r *SQLiteReminderRepository) ListBetween(ctx context.Context, start, end time.Time) ([]*reminder.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, date, created_by, color, created_at
		FROM reminders WHERE date BETWEEN ? AND ? ORDER BY date, id`,
		start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("error listing reminders between dates: %w", err)
	}
	defer rows.Close()
	return scanSQLiteReminders(rows)
}

// DeleteByID removes the reminder if present; a missing ID is a no-op.
func (r *SQLiteReminderRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id); err != nil {
		return fmt.Errorf("error deleting reminder %d: %w", id, err)
	}
	return nil
}

// Update replaces title and description; updating a missing ID is a no-op.
func (r *SQLiteReminderRepository) Update(ctx context.Context, id int64, title, description string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET title = ?, description = ? WHERE id = ?`,
		title, description, id)
	if err != nil {
		return fmt.Errorf("error updating reminder %d: %w", id, err)
	}
	return nil
}

func scanSQLiteReminders(rows *sql.Rows) ([]*reminder.Reminder, error) {
	reminders := make([]*reminder.Reminder, 0)
	for rows.Next() {
		rem := reminder.Reminder{}
		var date, createdAt string
		if err := rows.Scan(
			&rem.ID, &rem.Title, &rem.Description, &date,
			&rem.CreatedBy, &rem.Color, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning reminder row: %w", err)
		}

		var err error
		if rem.Date, err = time.ParseInLocation(dateLayout, date, time.UTC); err != nil {
			return nil, fmt.Errorf("error parsing reminder date %q: %w", date, err)
		}
		if rem.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("error parsing reminder created_at %q: %w", createdAt, err)
		}
		reminders = append(reminders, &rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminder rows: %w", err)
	}
	return reminders, nil
}
