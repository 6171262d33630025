package booking

const (
	msgSelectDate      = "Выберите дату:"
	msgSelectNewDate   = "Перенос записи. Выберите новую дату:"
	msgDateUnavailable = "Эта дата недоступна для записи. Выберите другую дату:"
	msgPickHour        = "Дата %s. Выберите время:"
	msgNoHours         = "Дата %s. На этот день нет времени для записи, выберите другую дату."
	msgHourUnavailable = "Дата %s. Это время не предлагается, выберите другое:"
	msgSlotTaken       = "Дата %s. Слот уже занят, выберите другое время:"
	msgSlotTakenShort  = "Слот занят"
	msgHourClosedShort = "Время недоступно"
	msgPickCategory    = "Вы выбрали %s.\nВыберите категорию съёмки:"
	msgUnknownCategory = "Такой категории нет, выберите из списка"
	msgLocationPrompt  = "Вы выбрали %s\nКатегория: %s\n\n" +
		"📍 Локация съёмки:\n" +
		"Откройте Яндекс.Карты по кнопке ниже (по умолчанию — %s),\n" +
		"выберите место → Поделиться → Скопировать ссылку и пришлите её сюда одним сообщением.\n" +
		"Можно отправить геолокацию через «📎» или координаты \"lat, lon\"."
	msgLocationHint = "⚠️ Не удалось распознать координаты. Варианты:\n" +
		"• Откройте ссылку → Поделиться → Скопировать ссылку (чтобы были ll= или pt=)\n" +
		"• Отправьте геолокацию через «📎»\n" +
		"• Пришлите \"lat, lon\", например: 53.252560, 50.249664\n" +
		"• Или нажмите «Пропустить локацию»."
	msgLocationAccepted   = "📍 Локация принята"
	msgSummary            = "Вы выбрали %s\nКатегория: %s"
	msgConfirmQuestion    = "Подтвердить?"
	msgCategoryLost       = "Категория утрачена, начните заново."
	msgCreated            = "✅ Запись создана: %s (с резервом до %s). Напоминание за 24 часа."
	msgRescheduled        = "🔁 Запись обновлена: %s"
	msgRescheduleFallback = "Исходная запись не найдена, создана новая."
	msgFlowCancelled      = "Запись отменена."
	msgCannotReschedule   = "Невозможно перенести: запись не найдена."
	msgCannotCancel       = "Невозможно отменить: запись не найдена."
	msgBookingCancelled   = "❌ Запись на %s отменена."
	msgNoBooking          = "📅 Запись на фотосессию\nУ вас пока нет активной записи."
	msgBookingCard        = "📅 Ваша запись:\nВремя: %s\nКатегория: %s"
	msgTryLater           = "⚠️ Сервис временно недоступен. Попробуйте ещё раз чуть позже."

	btnBack        = "⬅️ Назад"
	btnCancel      = "❌ Отмена"
	btnConfirm     = "✅ Подтвердить"
	btnChange      = "↩️ Изменить"
	btnSkipLoc     = "⏭️ Пропустить локацию"
	btnOpenMap     = "🗺️ Открыть Яндекс.Карты"
	btnBook        = "📅 Записаться"
	btnReschedule  = "Перенести"
	btnCancelBook  = "Отменить"
	btnMenu        = "⬅️ В меню"
	takenHourLabel = " ⛔"
)
