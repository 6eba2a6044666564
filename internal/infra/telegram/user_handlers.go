package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"school_schedule_bot/internal/app"
	"school_schedule_bot/internal/domain/user"
	"school_schedule_bot/internal/timeutil"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const (
	msgInternalError  = "Произошла ошибка. Пожалуйста, попробуйте позже."
	msgPickDay        = "Выберите день:"
	msgRemindersOn    = "Напоминания включены ✅"
	msgRemindersOff   = "Напоминания выключены 🔕"
	msgRemindTimeHint = "Формат: /remind_time 10"
	msgRemindRange    = "Введите число от 5 до 60."
)

func (h *HandlerSet) registerUserHandlers(ctx context.Context) {
	h.bot.Handle("/start", func(c telebot.Context) error {
		logCtx := h.logger.WithFields(logrus.Fields{"command": "/start", "sender_id": c.Sender().ID})
		logCtx.Info("Processing /start command")

		text := "Привет! Я бот с расписанием уроков. Выберите действие на клавиатуре или наберите /help."
		if h.cfg.IsAdmin(c.Sender().ID) {
			text += "\n\nВам доступна админ-панель: /admin"
		}
		return c.Send(text, userMainKeyboard())
	})

	h.bot.Handle("/help", func(c telebot.Context) error {
		var help strings.Builder
		help.WriteString("Доступные команды:\n\n")
		help.WriteString("/today - расписание на сегодня\n")
		help.WriteString("/tomorrow - расписание на завтра\n")
		help.WriteString("/day - расписание на выбранный день\n")
		help.WriteString("/week - расписание на неделю\n")
		help.WriteString("/bell - расписание звонков\n")
		help.WriteString("/remind_on - включить напоминания об уроках\n")
		help.WriteString("/remind_off - выключить напоминания\n")
		help.WriteString("/remind_time <минуты> - за сколько минут напоминать (от 5 до 60)\n")
		if h.cfg.IsAdmin(c.Sender().ID) {
			help.WriteString("\nАдминистратору:\n/admin - открыть админ-панель\n")
		}
		return c.Send(help.String(), userMainKeyboard())
	})

	h.bot.Handle("/today", func(c telebot.Context) error {
		return h.sendDay(ctx, c, timeutil.DayOfWeek(time.Now(), h.cfg.Location))
	})

	h.bot.Handle("/tomorrow", func(c telebot.Context) error {
		return h.sendDay(ctx, c, timeutil.DayOfWeek(timeutil.Tomorrow(time.Now()), h.cfg.Location))
	})

	h.bot.Handle("/day", func(c telebot.Context) error {
		return c.Send(msgPickDay, dayInlineKeyboard(uniqueUserDay))
	})

	h.bot.Handle("/week", func(c telebot.Context) error {
		return h.sendWeek(ctx, c)
	})

	h.bot.Handle("/bell", func(c telebot.Context) error {
		return h.sendBells(ctx, c)
	})

	h.bot.Handle("/remind_on", func(c telebot.Context) error {
		return h.setReminders(ctx, c, true)
	})

	h.bot.Handle("/remind_off", func(c telebot.Context) error {
		return h.setReminders(ctx, c, false)
	})

	h.bot.Handle("/remind_time", func(c telebot.Context) error {
		logCtx := h.logger.WithFields(logrus.Fields{"command": "/remind_time", "sender_id": c.Sender().ID})

		args := c.Args()
		if len(args) != 1 {
			return c.Send(msgRemindTimeHint)
		}
		minutes, err := strconv.Atoi(args[0])
		if err != nil {
			return c.Send(msgRemindRange)
		}

		if err := h.preferences.SetReminderMinutes(ctx, c.Sender().ID, minutes); err != nil {
			if err == app.ErrInvalidReminderMinutes {
				return c.Send(msgRemindRange)
			}
			logCtx.WithError(err).Error("Failed to set reminder minutes")
			return c.Send(msgInternalError)
		}
		logCtx.WithField("minutes", minutes).Info("Reminder lead time updated")
		return c.Send(fmt.Sprintf("Ок, напомню за %d минут ⏰", minutes))
	})

	// Weekday picked from the /day inline keyboard.
	h.bot.Handle(&telebot.Btn{Unique: uniqueUserDay}, func(c telebot.Context) error {
		day, err := strconv.Atoi(c.Data())
		if err != nil || !timeutil.IsValidDay(day) {
			return c.Respond()
		}
		if err := c.Respond(); err != nil {
			return err
		}
		return h.sendDay(ctx, c, day)
	})
}

func (h *HandlerSet) sendDay(ctx context.Context, c telebot.Context, dayOfWeek int) error {
	text, err := h.schedule.FormatDay(ctx, dayOfWeek)
	if err != nil {
		h.logger.WithError(err).WithField("day_of_week", dayOfWeek).Error("Failed to format day schedule")
		return c.Send(msgInternalError)
	}
	return c.Send(text, userMainKeyboard())
}

func (h *HandlerSet) sendWeek(ctx context.Context, c telebot.Context) error {
	text, err := h.schedule.FormatWeek(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to format week schedule")
		return c.Send(msgInternalError)
	}
	return c.Send(text, userMainKeyboard())
}

func (h *HandlerSet) sendBells(ctx context.Context, c telebot.Context) error {
	text, err := h.schedule.FormatBells(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to format bell times")
		return c.Send(msgInternalError)
	}
	return c.Send(text, userMainKeyboard())
}

func (h *HandlerSet) setReminders(ctx context.Context, c telebot.Context, enabled bool) error {
	logCtx := h.logger.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "enabled": enabled})

	if err := h.preferences.SetRemindersEnabled(ctx, c.Sender().ID, enabled); err != nil {
		logCtx.WithError(err).Error("Failed to toggle reminders")
		return c.Send(msgInternalError)
	}
	logCtx.Info("Reminders toggled")

	if !enabled {
		return c.Send(msgRemindersOff)
	}

	pref, err := h.preferences.Get(ctx, c.Sender().ID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to read preference after enabling reminders")
		return c.Send(msgRemindersOn)
	}
	minutes := pref.ReminderMinutes
	if minutes <= 0 {
		minutes = user.DefaultReminderMinutes
	}
	return c.Send(fmt.Sprintf("%s\nНапомню за %d минут до урока.", msgRemindersOn, minutes))
}
