package telegram

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"reminder_calendar_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const dateLayout = "2006-01-02"

// RegisterReminderHandlers registers the commands that manage the shared
// reminder collection. Any participant may add, edit or delete any record;
// "created by" is attribution only.
func RegisterReminderHandlers(
	ctx context.Context,
	b *telebot.Bot,
	service *app.ReminderService,
	baseLogger *logrus.Entry,
) {
	b.Handle("/start", func(c telebot.Context) error {
		baseLogger.WithFields(logrus.Fields{
			"handler":   "/start",
			"sender_id": c.Sender().ID,
		}).Info("Command received")
		return c.Send(fmt.Sprintf("Hi, %s! I keep this group's shared reminder calendar. Use /help to see what I can do.", c.Sender().FirstName))
	})

	b.Handle("/help", func(c telebot.Context) error {
		baseLogger.WithFields(logrus.Fields{
			"handler":   "/help",
			"sender_id": c.Sender().ID,
		}).Info("Command received")

		var helpText strings.Builder
		helpText.WriteString("Shared reminder calendar commands:\n\n")
		helpText.WriteString("`/add <YYYY-MM-DD> <title> [| description [| color]]`\n - Post a reminder for a date.\n\n")
		helpText.WriteString("`/list`\n - Show all current reminders, oldest date first.\n\n")
		helpText.WriteString("`/calendar [YYYY-MM]`\n - Show the month grid. Use the arrow buttons to change month.\n\n")
		helpText.WriteString("`/edit <id> <title> [| description]`\n - Replace a reminder's title and description.\n\n")
		helpText.WriteString("`/delete <id>`\n - Remove a reminder.\n\n")
		helpText.WriteString(fmt.Sprintf("Reminders are kept for %d days past their date, then purged automatically.", app.RetentionDays))
		return c.Send(helpText.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})

	b.Handle("/add", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/add",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		date, title, description, color, err := parseAddPayload(c.Message().Payload)
		if err != nil {
			handlerLogger.WithError(err).Warn("Invalid command format")
			return c.Send("Invalid format. Use: /add <YYYY-MM-DD> <title> [| description [| color]]")
		}

		created, err := service.AddReminder(ctx, title, description, date, senderName(c), color)
		if err != nil {
			logWithError := handlerLogger.WithError(err)
			switch err {
			case app.ErrEmptyTitle:
				logWithError.Warn("Empty title rejected")
				return c.Send("Please provide a title for the reminder.")
			case app.ErrTitleTooLong:
				logWithError.Warn("Overlong title rejected")
				return c.Send("That title is too long (100 characters max).")
			case app.ErrPastDate:
				logWithError.Warn("Past date rejected")
				return c.Send("Reminders for past dates are disabled here. Pick today or later.")
			default:
				logWithError.Error("Failed to add reminder")
				return c.Send("Cannot reach storage right now, the reminder was not saved. Please try again.")
			}
		}

		handlerLogger.WithField("reminder_id", created.ID).Info("Reminder added")
		return c.Send(fmt.Sprintf("Saved reminder #%d for %s: %s", created.ID, created.Date.Format(dateLayout), created.Title))
	})

	b.Handle("/list", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/list",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		reminders, err := service.GetReminders(ctx, time.Now())
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to list reminders")
			return c.Send("Cannot reach storage right now. Please try again later.")
		}
		if len(reminders) == 0 {
			return c.Send("No reminders yet. Add one with /add.")
		}

		// The service returns the set unsorted; date order is ours to impose.
		sort.Slice(reminders, func(i, j int) bool {
			if !reminders[i].Date.Equal(reminders[j].Date) {
				return reminders[i].Date.Before(reminders[j].Date)
			}
			return reminders[i].ID < reminders[j].ID
		})

		var response strings.Builder
		response.WriteString(fmt.Sprintf("All reminders (%d):\n", len(reminders)))
		for _, r := range reminders {
			response.WriteString(fmt.Sprintf("%s  #%d  %s (by %s)\n", r.Date.Format(dateLayout), r.ID, r.Title, r.CreatedBy))
			if r.Description != "" {
				response.WriteString(fmt.Sprintf("    %s\n", truncate(r.Description, 120)))
			}
		}
		return c.Send(response.String())
	})

	b.Handle("/delete", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/delete",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		args := c.Args()
		if len(args) != 1 {
			return c.Send("Invalid format. Use: /delete <id>")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			handlerLogger.WithField("arg", args[0]).Warn("Invalid reminder ID format")
			return c.Send("The reminder ID must be a number.")
		}

		// Idempotent: deleting an already-removed ID still succeeds.
		if err := service.DeleteReminder(ctx, id); err != nil {
			handlerLogger.WithError(err).Error("Failed to delete reminder")
			return c.Send("Cannot reach storage right now. Please try again later.")
		}
		handlerLogger.WithField("reminder_id", id).Info("Reminder deleted")
		return c.Send(fmt.Sprintf("Reminder #%d removed.", id))
	})

	b.Handle("/edit", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/edit",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		id, title, description, err := parseEditPayload(c.Message().Payload)
		if err != nil {
			handlerLogger.WithError(err).Warn("Invalid command format")
			return c.Send("Invalid format. Use: /edit <id> <title> [| description]")
		}

		if err := service.EditReminder(ctx, id, title, description); err != nil {
			logWithError := handlerLogger.WithError(err)
			switch err {
			case app.ErrEmptyTitle:
				logWithError.Warn("Empty title rejected")
				return c.Send("Please provide a title for the reminder.")
			case app.ErrTitleTooLong:
				logWithError.Warn("Overlong title rejected")
				return c.Send("That title is too long (100 characters max).")
			default:
				logWithError.Error("Failed to edit reminder")
				return c.Send("Cannot reach storage right now. Please try again later.")
			}
		}
		handlerLogger.WithField("reminder_id", id).Info("Reminder edited")
		return c.Send(fmt.Sprintf("Reminder #%d updated.", id))
	})
}

// parseAddPayload splits "/add" arguments: a date, then a title, with
// optional "|"-separated description and color.
func parseAddPayload(payload string) (date time.Time, title, description, color string, err error) {
	fields := strings.SplitN(strings.TrimSpace(payload), " ", 2)
	if len(fields) < 2 {
		return time.Time{}, "", "", "", fmt.Errorf("expected a date followed by a title")
	}

	date, err = time.ParseInLocation(dateLayout, fields[0], time.UTC)
	if err != nil {
		return time.Time{}, "", "", "", fmt.Errorf("invalid date %q: %w", fields[0], err)
	}

	parts := strings.SplitN(fields[1], "|", 3)
	title = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		description = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		color = strings.TrimSpace(parts[2])
	}
	return date, title, description, color, nil
}

// parseEditPayload splits "/edit" arguments: an ID, then a title, with an
// optional "|"-separated description.
func parseEditPayload(payload string) (id int64, title, description string, err error) {
	fields := strings.SplitN(strings.TrimSpace(payload), " ", 2)
	if len(fields) < 2 {
		return 0, "", "", fmt.Errorf("expected an id followed by a title")
	}

	id, err = strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, "", "", fmt.Errorf("invalid reminder id %q: %w", fields[0], err)
	}

	parts := strings.SplitN(fields[1], "|", 2)
	title = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		description = strings.TrimSpace(parts[1])
	}
	return id, title, description, nil
}

func senderName(c telebot.Context) string {
	name := c.Sender().FirstName
	if c.Sender().LastName != "" {
		name += " " + c.Sender().LastName
	}
	return name
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
