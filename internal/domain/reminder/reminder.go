package reminder

import "time"

// AnonymousAuthor is the attribution used when a collaborator leaves their name blank.
const AnonymousAuthor = "Anonymous"

// MaxTitleLength is the maximum accepted title length, enforced at creation.
const MaxTitleLength = 100

// Reminder is a titled, dated note shared by all collaborators.
// Corresponds to one row of the 'reminders' table.
type Reminder struct {
	ID          int64
	Title       string
	Description string
	Date        time.Time // calendar date only, normalized to midnight UTC
	CreatedBy   string
	Color       string // opaque display tag (e.g. "#ff8800"); no meaning to the core
	CreatedAt   time.Time
}
