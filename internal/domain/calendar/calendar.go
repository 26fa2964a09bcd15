// Package calendar holds the pure date logic behind the month view:
// grid generation, month arithmetic and per-day grouping. No I/O.
package calendar

import (
	"time"

	"reminder_calendar_bot/internal/domain/reminder"
)

// Day is one cell of a month grid. Overflow marks dates that belong to the
// previous or next month and are only present to complete a 7-day week;
// they render dimmed but remain valid lookup keys.
type Day struct {
	Date     time.Time
	Overflow bool
}

// Week is one row of a month grid.
type Week [7]Day

// DateOf strips the time-of-day component, normalizing to midnight UTC.
// All date comparisons and grouping keys go through this.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthGrid produces the full set of calendar weeks needed to display the
// given month, padded with overflow days so every week starts on weekStart.
// A month spans 4, 5 or 6 whole weeks depending on how its days align.
func MonthGrid(year int, month time.Month, weekStart time.Weekday) []Week {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	// Step back from the 1st to the nearest weekStart.
	offset := (int(first.Weekday()) - int(weekStart) + 7) % 7
	cur := first.AddDate(0, 0, -offset)

	weeks := make([]Week, 0, 6)
	for !cur.After(last) {
		var w Week
		for i := range w {
			w[i] = Day{Date: cur, Overflow: cur.Month() != month}
			cur = cur.AddDate(0, 0, 1)
		}
		weeks = append(weeks, w)
	}
	return weeks
}

// ShiftMonth returns the year and month delta calendar months away from the
// given one, rolling over year boundaries for arbitrary integer deltas.
func ShiftMonth(year int, month time.Month, delta int) (int, time.Month) {
	idx := year*12 + int(month) - 1 + delta
	y := idx / 12
	m := idx % 12
	if m < 0 {
		m += 12
		y--
	}
	return y, time.Month(m + 1)
}

// GroupByDate groups reminders by their calendar date. Within a date the
// slice preserves the order the reminders were passed in.
func GroupByDate(reminders []*reminder.Reminder) map[time.Time][]*reminder.Reminder {
	grouped := make(map[time.Time][]*reminder.Reminder, len(reminders))
	for _, r := range reminders {
		key := DateOf(r.Date)
		grouped[key] = append(grouped[key], r)
	}
	return grouped
}
