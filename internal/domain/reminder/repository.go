package reminder

import (
	"context"
	"time"
)

// Repository defines the operations for persisting and retrieving Reminder records.
// Every mutating operation is immediately durable: a subsequent ListAll reflects it.
type Repository interface {
	// Insert persists the reminder and assigns its ID. IDs are never reused.
	Insert(ctx context.Context, r *Reminder) error
	// ListAll returns every persisted record. Adapters return a stable order,
	// but ordering is not part of the contract; callers that need date order must sort.
	ListAll(ctx context.Context) ([]*Reminder, error)
	// ListBetween returns records whose date falls in the inclusive range [start, end].
	ListBetween(ctx context.Context, start, end time.Time) ([]*Reminder, error)
	// DeleteByID removes the record if present. Deleting a missing ID is a no-op,
	// not an error, so a concurrent sweep racing a user delete stays harmless.
	DeleteByID(ctx context.Context, id int64) error
	// Update replaces the title and description of an existing record.
	// Updating a missing ID is a no-op.
	Update(ctx context.Context, id int64, title, description string) error
}
