package bot

import (
	"photostudio-bot/internal/booking"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	mainMenuText    = "👇 Выберите действие:"
	bookButtonText  = "📅 Запись на фотосессию"
	statusButtonPre = "✅Вы записаны: "
)

// inlineKeyboard рисует варианты ответа инлайн-кнопками
func inlineKeyboard(rows [][]booking.Choice) tgbotapi.InlineKeyboardMarkup {
	keyboard := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, c := range row {
			if c.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(c.Label, c.URL))
				continue
			}
			data := EncodeChoice(c)
			if data == "" {
				continue
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(c.Label, data))
		}
		if len(buttons) > 0 {
			keyboard = append(keyboard, buttons)
		}
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: keyboard}
}

// mainMenu - кнопка записи; при активной записи сверху кнопка со статусом
func mainMenu(statusLabel string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if statusLabel != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(statusButtonPre+statusLabel, cbBookingStatus),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(bookButtonText, cbBooking)))
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}
