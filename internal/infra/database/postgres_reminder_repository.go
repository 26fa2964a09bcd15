package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reminder_calendar_bot/internal/domain/reminder"
)

// PostgresReminderRepository is the PostgreSQL adapter for the shared
// reminder collection. Row layout: id, title, description, date, created_by,
// color, created_at.
type PostgresReminderRepository struct {
	db *sql.DB
}

func NewPostgresReminderRepository(db *sql.DB) *PostgresReminderRepository {
	return &PostgresReminderRepository{db: db}
}

// EnsureSchema creates the reminders table if it does not exist yet.
// Titles are capped at creation time, not by the column type.
func (r *PostgresReminderRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS reminders (
            id          BIGSERIAL PRIMARY KEY,
            title       TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            date        DATE NOT NULL,
            created_by  TEXT NOT NULL DEFAULT 'Anonymous',
            color       TEXT NOT NULL DEFAULT '',
            created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`)
	if err != nil {
		return fmt.Errorf("failed to ensure reminders schema: %w", err)
	}
	return nil
}

func (r *PostgresReminderRepository) Insert(ctx context.Context, rem *reminder.Reminder) error {
	query := `INSERT INTO reminders (title, description, date, created_by, color, created_at)
               VALUES ($1, $2, $3, $4, $5, $6)
               RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		rem.Title, rem.Description, rem.Date, rem.CreatedBy, rem.Color, rem.CreatedAt,
	).Scan(&rem.ID)
	if err != nil {
		return fmt.Errorf("error inserting reminder: %w", err)
	}
	return nil
}

func (r *PostgresReminderRepository) ListAll(ctx context.Context) ([]*reminder.Reminder, error) {
	query := `SELECT id, title, description, date, created_by, color, created_at
               FROM reminders ORDER BY date, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing all reminders: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

func (r *PostgresReminderRepository) ListBetween(ctx context.Context, start, end time.Time) ([]*reminder.Reminder, error) {
	query := `SELECT id, title, description, date, created_by, color, created_at
               FROM reminders
               WHERE date BETWEEN $1 AND $2 ORDER BY date, id`
	rows, err := r.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("error listing reminders between dates: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

// DeleteByID removes the reminder if present. A missing ID is a no-op so a
// delete racing another client's sweep never errors.
func (r *PostgresReminderRepository) DeleteByID(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting reminder %d: %w", id, err)
	}
	return nil
}

// Update replaces title and description of an existing reminder; updating a
// missing ID is a no-op.
func (r *PostgresReminderRepository) Update(ctx context.Context, id int64, title, description string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET title = $1, description = $2 WHERE id = $3`,
		title, description, id)
	if err != nil {
		return fmt.Errorf("error updating reminder %d: %w", id, err)
	}
	return nil
}

// Helper to scan multiple rows.
func scanReminders(rows *sql.Rows) ([]*reminder.Reminder, error) {
	reminders := make([]*reminder.Reminder, 0)
	for rows.Next() {
		rem := reminder.Reminder{}
		if err := rows.Scan(
			&rem.ID, &rem.Title, &rem.Description, &rem.Date,
			&rem.CreatedBy, &rem.Color, &rem.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning reminder row: %w", err)
		}
		rem.Date = rem.Date.UTC()
		reminders = append(reminders, &rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminder rows: %w", err)
	}
	return reminders, nil
}
