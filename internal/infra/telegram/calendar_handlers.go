package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"reminder_calendar_bot/internal/app"
	"reminder_calendar_bot/internal/domain/calendar"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterCalendarHandlers registers the month-grid view and its
// prev/next navigation callbacks.
func RegisterCalendarHandlers(
	ctx context.Context,
	b *telebot.Bot,
	service *app.ReminderService,
	baseLogger *logrus.Entry,
) {
	b.Handle("/calendar", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/calendar",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		state := calendar.ViewStateFor(time.Now())
		if args := c.Args(); len(args) == 1 {
			month, err := time.ParseInLocation("2006-01", args[0], time.UTC)
			if err != nil {
				handlerLogger.WithField("arg", args[0]).Warn("Invalid month format")
				return c.Send("Invalid month. Use: /calendar YYYY-MM")
			}
			state = calendar.ViewStateFor(month)
		}

		text, markup, err := monthMessage(ctx, service, state)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to build month view")
			return c.Send("Cannot reach storage right now. Please try again later.")
		}
		return c.Send(text, markup, telebot.ModeMarkdown)
	})

	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		data := strings.TrimPrefix(c.Callback().Data, "\f")
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "calendar_callback",
			"sender_id": c.Sender().ID,
			"data":      data,
		})

		if !strings.HasPrefix(data, "cal_nav_") {
			handlerLogger.Warn("Unhandled callback data")
			return c.Respond(&telebot.CallbackResponse{Text: "Unknown action."})
		}

		parts := strings.Split(data, "_") // cal_nav_<year>_<month>
		if len(parts) != 4 {
			handlerLogger.Warn("Invalid callback data format")
			return c.Respond(&telebot.CallbackResponse{Text: "Invalid navigation data."})
		}
		year, errY := strconv.Atoi(parts[2])
		month, errM := strconv.Atoi(parts[3])
		if errY != nil || errM != nil || month < 1 || month > 12 {
			handlerLogger.Warn("Invalid year/month in callback data")
			return c.Respond(&telebot.CallbackResponse{Text: "Invalid navigation data."})
		}

		state := calendar.ViewState{Year: year, Month: time.Month(month)}
		text, markup, err := monthMessage(ctx, service, state)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to build month view for navigation")
			return c.Respond(&telebot.CallbackResponse{Text: "Cannot reach storage right now."})
		}

		if err := c.Edit(text, markup, telebot.ModeMarkdown); err != nil {
			handlerLogger.WithError(err).Error("Failed to edit calendar message")
			return c.Respond(&telebot.CallbackResponse{Text: "Could not refresh the calendar."})
		}
		return c.Respond()
	})
}

// monthMessage builds the rendered month text and its navigation keyboard.
func monthMessage(ctx context.Context, service *app.ReminderService, state calendar.ViewState) (string, *telebot.ReplyMarkup, error) {
	view, err := service.MonthView(ctx, state.Year, state.Month, time.Now())
	if err != nil {
		return "", nil, err
	}

	markup := &telebot.ReplyMarkup{}
	prev := state.Shift(-1)
	next := state.Shift(+1)
	btnPrev := markup.Data("◀", fmt.Sprintf("cal_nav_%d_%d", prev.Year, int(prev.Month)))
	btnNext := markup.Data("▶", fmt.Sprintf("cal_nav_%d_%d", next.Year, int(next.Month)))
	markup.Inline(markup.Row(btnPrev, btnNext))

	return renderMonth(view, service.WeekStart()), markup, nil
}

// renderMonth draws the month grid as monospace text. Days carrying
// reminders are starred, overflow days are parenthesized, and the month's
// reminders are listed beneath the grid in grid order.
func renderMonth(view *app.MonthView, weekStart time.Weekday) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s %d*\n```\n", view.Month.String(), view.Year))

	for i := 0; i < 7; i++ {
		wd := time.Weekday((int(weekStart) + i) % 7)
		sb.WriteString(fmt.Sprintf(" %s ", wd.String()[:3]))
	}
	sb.WriteString("\n")

	for _, week := range view.Weeks {
		for _, day := range week {
			marker := " "
			if len(view.On(day.Date)) > 0 {
				marker = "*"
			}
			if day.Overflow {
				sb.WriteString(fmt.Sprintf("(%2d)%s", day.Date.Day(), marker))
			} else {
				sb.WriteString(fmt.Sprintf(" %2d %s", day.Date.Day(), marker))
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("```\n")

	listed := 0
	for _, week := range view.Weeks {
		for _, day := range week {
			for _, r := range view.On(day.Date) {
				sb.WriteString(fmt.Sprintf("%s  #%d  %s (by %s)\n", r.Date.Format(dateLayout), r.ID, r.Title, r.CreatedBy))
				if r.Description != "" {
					sb.WriteString(fmt.Sprintf("    %s\n", truncate(r.Description, 120)))
				}
				listed++
			}
		}
	}
	if listed == 0 {
		sb.WriteString("No reminders this month.\n")
	}
	return sb.String()
}
