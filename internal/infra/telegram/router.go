package telegram

import (
	"context"
	"time"

	"school_schedule_bot/internal/timeutil"

	"gopkg.in/telebot.v3"
)

// registerTextRouter dispatches plain text messages: an admin with an active
// flow gets the flow step handler, otherwise the text is matched against the
// reply-keyboard button labels.
func (h *HandlerSet) registerTextRouter(ctx context.Context) {
	h.bot.Handle(telebot.OnText, func(c telebot.Context) error {
		senderID := c.Sender().ID

		if h.cfg.IsAdmin(senderID) && h.sessions.State(senderID) != StateIdle {
			return h.handleFlowText(ctx, c)
		}

		switch c.Text() {
		case btnTodayText:
			return h.sendDay(ctx, c, timeutil.DayOfWeek(time.Now(), h.cfg.Location))
		case btnTomorrowText:
			return h.sendDay(ctx, c, timeutil.DayOfWeek(timeutil.Tomorrow(time.Now()), h.cfg.Location))
		case btnPickDayText:
			return c.Send(msgPickDay, dayInlineKeyboard(uniqueUserDay))
		case btnWeekText:
			return h.sendWeek(ctx, c)
		case btnBellsText:
			return h.sendBells(ctx, c)
		case btnHelpText:
			return c.Send("Наберите /help для списка команд.", userMainKeyboard())

		case btnAddLessonText:
			return h.startAddLesson(c)
		case btnDeleteLessonText:
			return h.startDeleteLesson(c)
		case btnListDayText:
			return h.startListDay(c)
		case btnSetBellsText:
			return h.startSetBells(c)
		case btnMainMenuText:
			h.sessions.Clear(senderID)
			return c.Send(msgMainMenu, userMainKeyboard())
		}

		// Free text outside any flow is ignored.
		return nil
	})
}
