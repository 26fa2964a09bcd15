package app

import (
	"context"
	"fmt"
	"time"

	"reminder_calendar_bot/internal/domain/calendar"
	"reminder_calendar_bot/internal/domain/reminder"
)

// MonthView is everything the presentation layer needs to render one month:
// the rectangular grid of dates and the live reminders grouped per day,
// keyed by midnight-UTC date (overflow days are valid keys too).
type MonthView struct {
	Year   int
	Month  time.Month
	Weeks  []calendar.Week
	ByDate map[time.Time][]*reminder.Reminder
}

// On returns the reminders for a single grid day, in store order.
func (v *MonthView) On(day time.Time) []*reminder.Reminder {
	return v.ByDate[calendar.DateOf(day)]
}

// MonthView assembles the calendar projection for the given month. The load
// triggers the retention sweep first, then fetches exactly the grid's date
// span, so overflow days at the edges carry their reminders as well.
func (s *ReminderService) MonthView(ctx context.Context, year int, month time.Month, today time.Time) (*MonthView, error) {
	if _, err := s.SweepExpired(ctx, today); err != nil {
		return nil, err
	}

	weeks := calendar.MonthGrid(year, month, s.weekStart)
	start := weeks[0][0].Date
	end := weeks[len(weeks)-1][6].Date

	rows, err := s.repo.ListBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders between %s and %s: %w",
			start.Format("2006-01-02"), end.Format("2006-01-02"), err)
	}

	return &MonthView{
		Year:   year,
		Month:  month,
		Weeks:  weeks,
		ByDate: calendar.GroupByDate(rows),
	}, nil
}
