package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"school_schedule_bot/internal/timeutil"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const (
	msgNotAuthorized   = "Ошибка: У вас нет прав для выполнения этой команды."
	msgAdminPanel      = "Админ-панель:"
	msgMainMenu        = "Главное меню:"
	msgPickWeekday     = "Выберите день недели:"
	msgAskLessonNumber = "Введите номер урока (1-10):"
	msgLessonNumber110 = "Введите число от 1 до 10."
	msgAskSubject      = "Введите название предмета:"
	msgSubjectEmpty    = "Название предмета не может быть пустым."
	msgAskRoom         = "Введите кабинет (или «-», если нет):"
	msgAskOnline       = "Урок проходит онлайн?"
	msgAskStartTime    = "Введите время начала в формате ЧЧ:ММ (или «-», чтобы использовать расписание звонков):"
	msgAskEndTime      = "Введите время окончания в формате ЧЧ:ММ (или «-»):"
	msgAskTeacher      = "Введите имя учителя (или «-», если нет):"
	msgBadTime         = "Некорректное время. Пример: 08:30"
	msgLessonSaved     = "Сохранено ✅"
	msgLessonDeleted   = "Урок удален ✅"
	msgLessonNotFound  = "Урок не найден."
	msgBellAskStart    = "Введите время начала урока в формате ЧЧ:ММ:"
	msgBellAskEnd      = "Введите время окончания урока в формате ЧЧ:ММ:"
	msgBellSaved       = "Звонок сохранен ✅"
)

// skipMarker in a text answer leaves the optional field empty.
const skipMarker = "-"

func (h *HandlerSet) registerAdminHandlers(ctx context.Context) {
	h.bot.Handle("/admin", func(c telebot.Context) error {
		logCtx := h.logger.WithFields(logrus.Fields{"command": "/admin", "sender_id": c.Sender().ID})
		if !h.cfg.IsAdmin(c.Sender().ID) {
			logCtx.Warn("Unauthorized access attempt")
			return c.Send(msgNotAuthorized)
		}
		logCtx.Info("Admin panel opened")
		h.sessions.Clear(c.Sender().ID)
		return c.Send(msgAdminPanel, adminKeyboard())
	})

	h.bot.Handle("/add", func(c telebot.Context) error {
		return h.startAddLesson(c)
	})
	h.bot.Handle("/delete", func(c telebot.Context) error {
		return h.startDeleteLesson(c)
	})
	h.bot.Handle("/list", func(c telebot.Context) error {
		return h.startListDay(c)
	})
	h.bot.Handle("/setbells", func(c telebot.Context) error {
		return h.startSetBells(c)
	})

	// Weekday picked while adding a lesson.
	h.bot.Handle(&telebot.Btn{Unique: uniqueAdminAddDay}, func(c telebot.Context) error {
		if !h.cfg.IsAdmin(c.Sender().ID) {
			return c.Respond()
		}
		day, err := strconv.Atoi(c.Data())
		if err != nil || !timeutil.IsValidDay(day) {
			return c.Respond()
		}
		if h.sessions.State(c.Sender().ID) != StateAddDay {
			return c.Respond()
		}
		h.sessions.Update(c.Sender().ID, func(s *Session) {
			s.Lesson.DayOfWeek = day
			s.State = StateAddLessonNumber
		})
		if err := c.Respond(); err != nil {
			return err
		}
		return c.Send(msgAskLessonNumber, backKeyboard())
	})

	// Weekday picked while deleting a lesson.
	h.bot.Handle(&telebot.Btn{Unique: uniqueAdminDelDay}, func(c telebot.Context) error {
		if !h.cfg.IsAdmin(c.Sender().ID) {
			return c.Respond()
		}
		day, err := strconv.Atoi(c.Data())
		if err != nil || !timeutil.IsValidDay(day) {
			return c.Respond()
		}
		if h.sessions.State(c.Sender().ID) != StateDeleteDay {
			return c.Respond()
		}
		h.sessions.Update(c.Sender().ID, func(s *Session) {
			s.Lesson.DayOfWeek = day
			s.State = StateDeleteLessonNumber
		})
		if err := c.Respond(); err != nil {
			return err
		}
		return c.Send(msgAskLessonNumber, backKeyboard())
	})

	// Weekday picked for the read-only day listing. Stateless.
	h.bot.Handle(&telebot.Btn{Unique: uniqueAdminList}, func(c telebot.Context) error {
		if !h.cfg.IsAdmin(c.Sender().ID) {
			return c.Respond()
		}
		day, err := strconv.Atoi(c.Data())
		if err != nil || !timeutil.IsValidDay(day) {
			return c.Respond()
		}
		if err := c.Respond(); err != nil {
			return err
		}
		text, err := h.schedule.FormatDay(ctx, day)
		if err != nil {
			h.logger.WithError(err).WithField("day_of_week", day).Error("Failed to format day listing for admin")
			return c.Send(msgInternalError)
		}
		return c.Send(text, adminKeyboard())
	})

	// Yes/no answer to the "is the lesson online" question.
	h.bot.Handle(&telebot.Btn{Unique: uniqueAddOnline}, func(c telebot.Context) error {
		if !h.cfg.IsAdmin(c.Sender().ID) {
			return c.Respond()
		}
		if h.sessions.State(c.Sender().ID) != StateAddOnline {
			return c.Respond()
		}
		online := c.Data() == "yes"
		h.sessions.Update(c.Sender().ID, func(s *Session) {
			s.Lesson.IsOnline = online
			s.State = StateAddStartTime
		})
		if err := c.Respond(); err != nil {
			return err
		}
		return c.Send(msgAskStartTime, backKeyboard())
	})
}

func (h *HandlerSet) startAddLesson(c telebot.Context) error {
	if !h.cfg.IsAdmin(c.Sender().ID) {
		return c.Send(msgNotAuthorized)
	}
	h.sessions.Begin(c.Sender().ID, StateAddDay)
	return c.Send(msgPickWeekday, dayInlineKeyboard(uniqueAdminAddDay))
}

func (h *HandlerSet) startDeleteLesson(c telebot.Context) error {
	if !h.cfg.IsAdmin(c.Sender().ID) {
		return c.Send(msgNotAuthorized)
	}
	h.sessions.Begin(c.Sender().ID, StateDeleteDay)
	return c.Send(msgPickWeekday, dayInlineKeyboard(uniqueAdminDelDay))
}

func (h *HandlerSet) startListDay(c telebot.Context) error {
	if !h.cfg.IsAdmin(c.Sender().ID) {
		return c.Send(msgNotAuthorized)
	}
	h.sessions.Clear(c.Sender().ID)
	return c.Send(msgPickWeekday, dayInlineKeyboard(uniqueAdminList))
}

func (h *HandlerSet) startSetBells(c telebot.Context) error {
	if !h.cfg.IsAdmin(c.Sender().ID) {
		return c.Send(msgNotAuthorized)
	}
	h.sessions.Begin(c.Sender().ID, StateBellsLessonNumber)
	return c.Send(msgAskLessonNumber, backKeyboard())
}

// handleFlowText advances an admin's active flow with a plain-text answer.
// Called from the text router only when a session is in progress.
func (h *HandlerSet) handleFlowText(ctx context.Context, c telebot.Context) error {
	senderID := c.Sender().ID
	text := strings.TrimSpace(c.Text())
	state := h.sessions.State(senderID)

	if text == btnBackText {
		return h.stepBack(senderID, c, state)
	}

	switch state {
	case StateAddLessonNumber:
		number, err := strconv.Atoi(text)
		if err != nil || !timeutil.IsValidLessonNumber(number) {
			return c.Send(msgLessonNumber110)
		}
		h.sessions.Update(senderID, func(s *Session) {
			s.Lesson.LessonNumber = number
			s.State = StateAddSubject
		})
		return c.Send(msgAskSubject, backKeyboard())

	case StateAddSubject:
		if text == "" {
			return c.Send(msgSubjectEmpty)
		}
		h.sessions.Update(senderID, func(s *Session) {
			s.Lesson.Subject = text
			s.State = StateAddRoom
		})
		return c.Send(msgAskRoom, backKeyboard())

	case StateAddRoom:
		room := text
		if room == skipMarker {
			room = ""
		}
		h.sessions.Update(senderID, func(s *Session) {
			s.Lesson.Room = room
			s.State = StateAddOnline
		})
		return c.Send(msgAskOnline, yesNoKeyboard(uniqueAddOnline))

	case StateAddOnline:
		// The question is answered with inline buttons.
		return c.Send(msgAskOnline, yesNoKeyboard(uniqueAddOnline))

	case StateAddStartTime:
		if text == skipMarker {
			// No explicit times; bell times will anchor the reminders.
			h.sessions.Update(senderID, func(s *Session) {
				s.Lesson.StartTime = ""
				s.Lesson.EndTime = ""
				s.State = StateAddTeacher
			})
			return c.Send(msgAskTeacher, backKeyboard())
		}
		if !timeutil.IsValidTime(text) {
			return c.Send(msgBadTime)
		}
		h.sessions.Update(senderID, func(s *Session) {
			s.Lesson.StartTime = text
			s.State = StateAddEndTime
		})
		return c.Send(msgAskEndTime, backKeyboard())

	case StateAddEndTime:
		endTime := text
		if endTime == skipMarker {
			endTime = ""
		} else if !timeutil.IsValidTime(endTime) {
			return c.Send(msgBadTime)
		}
		h.sessions.Update(senderID, func(s *Session) {
			s.Lesson.EndTime = endTime
			s.State = StateAddTeacher
		})
		return c.Send(msgAskTeacher, backKeyboard())

	case StateAddTeacher:
		teacherName := text
		if teacherName == skipMarker {
			teacherName = ""
		}
		h.sessions.Update(senderID, func(s *Session) {
			s.Lesson.Teacher = teacherName
		})
		return h.finishAddLesson(ctx, c)

	case StateDeleteLessonNumber:
		number, err := strconv.Atoi(text)
		if err != nil || !timeutil.IsValidLessonNumber(number) {
			return c.Send(msgLessonNumber110)
		}
		return h.finishDeleteLesson(ctx, c, number)

	case StateBellsLessonNumber:
		number, err := strconv.Atoi(text)
		if err != nil || !timeutil.IsValidLessonNumber(number) {
			return c.Send(msgLessonNumber110)
		}
		h.sessions.Update(senderID, func(s *Session) {
			s.BellLessonNumber = number
			s.State = StateBellsStartTime
		})
		return c.Send(msgBellAskStart, backKeyboard())

	case StateBellsStartTime:
		if !timeutil.IsValidTime(text) {
			return c.Send(msgBadTime)
		}
		h.sessions.Update(senderID, func(s *Session) {
			s.BellStartTime = text
			s.State = StateBellsEndTime
		})
		return c.Send(msgBellAskEnd, backKeyboard())

	case StateBellsEndTime:
		if !timeutil.IsValidTime(text) {
			return c.Send(msgBadTime)
		}
		return h.finishSetBells(ctx, c, text)
	}

	// Unknown state, drop the session.
	h.sessions.Clear(senderID)
	return c.Send(msgAdminPanel, adminKeyboard())
}

// stepBack returns the flow to the previous question, or to the admin panel
// from a flow's first step.
func (h *HandlerSet) stepBack(senderID int64, c telebot.Context, state FlowState) error {
	prev := previousState(state)
	if prev == StateIdle {
		h.sessions.Clear(senderID)
		return c.Send(msgAdminPanel, adminKeyboard())
	}
	h.sessions.Update(senderID, func(s *Session) { s.State = prev })
	prompt, markup := h.promptFor(prev)
	return c.Send(prompt, markup)
}

// promptFor re-issues the question belonging to a flow step.
func (h *HandlerSet) promptFor(state FlowState) (string, *telebot.ReplyMarkup) {
	switch state {
	case StateAddDay:
		return msgPickWeekday, dayInlineKeyboard(uniqueAdminAddDay)
	case StateAddLessonNumber, StateBellsLessonNumber, StateDeleteLessonNumber:
		return msgAskLessonNumber, backKeyboard()
	case StateAddSubject:
		return msgAskSubject, backKeyboard()
	case StateAddRoom:
		return msgAskRoom, backKeyboard()
	case StateAddOnline:
		return msgAskOnline, yesNoKeyboard(uniqueAddOnline)
	case StateAddStartTime:
		return msgAskStartTime, backKeyboard()
	case StateAddEndTime:
		return msgAskEndTime, backKeyboard()
	case StateAddTeacher:
		return msgAskTeacher, backKeyboard()
	case StateDeleteDay:
		return msgPickWeekday, dayInlineKeyboard(uniqueAdminDelDay)
	case StateBellsStartTime:
		return msgBellAskStart, backKeyboard()
	case StateBellsEndTime:
		return msgBellAskEnd, backKeyboard()
	default:
		return msgAdminPanel, adminKeyboard()
	}
}

func (h *HandlerSet) finishAddLesson(ctx context.Context, c telebot.Context) error {
	senderID := c.Sender().ID
	session := h.sessions.Snapshot(senderID)
	logCtx := h.logger.WithFields(logrus.Fields{
		"handler":       "add_lesson",
		"sender_id":     senderID,
		"day_of_week":   session.Lesson.DayOfWeek,
		"lesson_number": session.Lesson.LessonNumber,
	})

	lesson, err := h.admin.UpsertLesson(ctx, senderID, session.Lesson)
	if err != nil {
		logCtx.WithError(err).Error("Failed to save lesson")
		h.sessions.Clear(senderID)
		if errors.Is(err, timeutil.ErrInvalidTimeFormat) {
			return c.Send(msgBadTime, adminKeyboard())
		}
		return c.Send(msgInternalError, adminKeyboard())
	}

	logCtx.WithField("lesson_id", lesson.ID).Info("Lesson saved")
	h.sessions.Clear(senderID)
	return c.Send(msgLessonSaved, adminKeyboard())
}

func (h *HandlerSet) finishDeleteLesson(ctx context.Context, c telebot.Context, lessonNumber int) error {
	senderID := c.Sender().ID
	session := h.sessions.Snapshot(senderID)
	logCtx := h.logger.WithFields(logrus.Fields{
		"handler":       "delete_lesson",
		"sender_id":     senderID,
		"day_of_week":   session.Lesson.DayOfWeek,
		"lesson_number": lessonNumber,
	})

	deleted, err := h.admin.DeleteLesson(ctx, senderID, session.Lesson.DayOfWeek, lessonNumber)
	h.sessions.Clear(senderID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to delete lesson")
		return c.Send(msgInternalError, adminKeyboard())
	}
	if !deleted {
		logCtx.Info("Lesson to delete not found")
		return c.Send(msgLessonNotFound, adminKeyboard())
	}
	logCtx.Info("Lesson deleted")
	return c.Send(msgLessonDeleted, adminKeyboard())
}

func (h *HandlerSet) finishSetBells(ctx context.Context, c telebot.Context, endTime string) error {
	senderID := c.Sender().ID
	session := h.sessions.Snapshot(senderID)
	logCtx := h.logger.WithFields(logrus.Fields{
		"handler":       "set_bells",
		"sender_id":     senderID,
		"lesson_number": session.BellLessonNumber,
	})

	err := h.admin.SetBellTime(ctx, senderID, session.BellLessonNumber, session.BellStartTime, endTime)
	h.sessions.Clear(senderID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to save bell time")
		if errors.Is(err, timeutil.ErrInvalidTimeFormat) {
			return c.Send(msgBadTime, adminKeyboard())
		}
		return c.Send(msgInternalError, adminKeyboard())
	}
	logCtx.Info("Bell time saved")
	return c.Send(msgBellSaved, adminKeyboard())
}
