package telegram

import (
	"fmt"

	"gopkg.in/telebot.v3"
)

// Reply-keyboard button labels. The text router matches on these, so they
// live in one place.
const (
	btnTodayText    = "📅 Сегодня"
	btnTomorrowText = "➡️ Завтра"
	btnPickDayText  = "🗓 Выбрать день"
	btnWeekText     = "📘 Неделя"
	btnBellsText    = "⏰ Звонки"
	btnHelpText     = "ℹ️ Помощь"

	btnAddLessonText    = "➕ Добавить/изменить урок"
	btnDeleteLessonText = "➖ Удалить урок"
	btnListDayText      = "📄 Список на день"
	btnSetBellsText     = "⏰ Настроить звонки"
	btnMainMenuText     = "🏠 Главное меню"

	btnBackText = "⬅️ Назад"
)

// Inline callback uniques.
const (
	uniqueUserDay     = "user_day"
	uniqueAdminAddDay = "admin_add_day"
	uniqueAdminDelDay = "admin_del_day"
	uniqueAdminList   = "admin_list_day"
	uniqueAddOnline   = "admin_add_online"
)

var dayShortNames = map[int]string{
	1: "Пн", 2: "Вт", 3: "Ср", 4: "Чт", 5: "Пт", 6: "Сб", 7: "Вс",
}

func userMainKeyboard() *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{ResizeKeyboard: true}
	menu.Reply(
		menu.Row(menu.Text(btnTodayText), menu.Text(btnTomorrowText)),
		menu.Row(menu.Text(btnPickDayText), menu.Text(btnWeekText)),
		menu.Row(menu.Text(btnBellsText), menu.Text(btnHelpText)),
	)
	return menu
}

func adminKeyboard() *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{ResizeKeyboard: true}
	menu.Reply(
		menu.Row(menu.Text(btnAddLessonText), menu.Text(btnDeleteLessonText)),
		menu.Row(menu.Text(btnListDayText), menu.Text(btnSetBellsText)),
		menu.Row(menu.Text(btnMainMenuText)),
	)
	return menu
}

func backKeyboard() *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{ResizeKeyboard: true}
	menu.Reply(menu.Row(menu.Text(btnBackText)))
	return menu
}

// dayInlineKeyboard renders the seven weekday buttons, four per row, carrying
// the day index as callback payload.
func dayInlineKeyboard(unique string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}

	var rows []telebot.Row
	var row []telebot.Btn
	for day := 1; day <= 7; day++ {
		row = append(row, markup.Data(dayShortNames[day], unique, fmt.Sprintf("%d", day)))
		if len(row) == 4 {
			rows = append(rows, markup.Row(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, markup.Row(row...))
	}

	markup.Inline(rows...)
	return markup
}

func yesNoKeyboard(unique string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.Inline(markup.Row(
		markup.Data("Да", unique, "yes"),
		markup.Data("Нет", unique, "no"),
	))
	return markup
}
