package bot

import (
	"fmt"
	"strconv"
	"strings"

	"photostudio-bot/internal/booking"
)

// Данные callback-кнопок. Telegram ограничивает их 64 байтами.
const (
	cbBooking       = "booking"
	cbBookingStatus = "booking_status"
	cbBackMain      = "back_main"
	cbDate          = "bk_d:"
	cbHour          = "bk_h:"
	cbHourTaken     = "bk_h_taken"
	cbCategory      = "bk_cat:"
	cbSkipLocation  = "bk_loc_skip"
	cbConfirm       = "bk_cf"
	cbCancel        = "bk_cancel"
	cbBackDate      = "bk_back_date"
	cbReschedule    = "bk_resch:"
	cbCancelBooking = "bk_cancel_booking:"
)

// EncodeChoice превращает вариант ответа в данные кнопки
func EncodeChoice(c booking.Choice) string {
	switch c.Action {
	case booking.ActionStart:
		return cbBooking
	case booking.ActionStatus:
		return cbBookingStatus
	case booking.ActionMenu:
		return cbBackMain
	case booking.ActionPickDate:
		return cbDate + c.Date
	case booking.ActionPickHour:
		return fmt.Sprintf("%s%s:%d", cbHour, c.Date, c.Hour)
	case booking.ActionTakenHour:
		return cbHourTaken
	case booking.ActionPickCategory:
		return fmt.Sprintf("%s%s:%d:%s", cbCategory, c.Date, c.Hour, c.Category)
	case booking.ActionSkipLocation:
		return cbSkipLocation
	case booking.ActionConfirm:
		return cbConfirm
	case booking.ActionCancel:
		return cbCancel
	case booking.ActionBackToDate:
		return cbBackDate
	case booking.ActionReschedule:
		return cbReschedule + strconv.FormatInt(c.BookingID, 10)
	case booking.ActionCancelBooking:
		return cbCancelBooking + strconv.FormatInt(c.BookingID, 10)
	default:
		return ""
	}
}

// DecodeCallback разбирает данные кнопки в событие диалога; ok=false для чужих кнопок
func DecodeCallback(data string) (booking.Event, bool) {
	switch data {
	case cbBooking:
		return booking.Event{Action: booking.ActionStart}, true
	case cbBookingStatus:
		return booking.Event{Action: booking.ActionStatus}, true
	case cbBackMain:
		return booking.Event{Action: booking.ActionMenu}, true
	case cbHourTaken:
		return booking.Event{Action: booking.ActionTakenHour}, true
	case cbSkipLocation:
		return booking.Event{Action: booking.ActionSkipLocation}, true
	case cbConfirm:
		return booking.Event{Action: booking.ActionConfirm}, true
	case cbCancel:
		return booking.Event{Action: booking.ActionCancel}, true
	case cbBackDate:
		return booking.Event{Action: booking.ActionBackToDate}, true
	}

	switch {
	case strings.HasPrefix(data, cbDate):
		date := strings.TrimPrefix(data, cbDate)
		if date == "" {
			return booking.Event{}, false
		}
		return booking.Event{Action: booking.ActionPickDate, Date: date}, true

	case strings.HasPrefix(data, cbHour):
		parts := strings.Split(strings.TrimPrefix(data, cbHour), ":")
		if len(parts) != 2 {
			return booking.Event{}, false
		}
		hour, err := strconv.Atoi(parts[1])
		if err != nil {
			return booking.Event{}, false
		}
		return booking.Event{Action: booking.ActionPickHour, Date: parts[0], Hour: hour}, true

	case strings.HasPrefix(data, cbCategory):
		parts := strings.SplitN(strings.TrimPrefix(data, cbCategory), ":", 3)
		if len(parts) != 3 || parts[2] == "" {
			return booking.Event{}, false
		}
		hour, err := strconv.Atoi(parts[1])
		if err != nil {
			return booking.Event{}, false
		}
		return booking.Event{Action: booking.ActionPickCategory, Date: parts[0], Hour: hour, Category: parts[2]}, true

	case strings.HasPrefix(data, cbReschedule):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, cbReschedule), 10, 64)
		if err != nil {
			return booking.Event{}, false
		}
		return booking.Event{Action: booking.ActionReschedule, BookingID: id}, true

	case strings.HasPrefix(data, cbCancelBooking):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, cbCancelBooking), 10, 64)
		if err != nil {
			return booking.Event{}, false
		}
		return booking.Event{Action: booking.ActionCancelBooking, BookingID: id}, true
	}

	return booking.Event{}, false
}
