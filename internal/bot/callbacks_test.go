package bot

import (
	"testing"

	"photostudio-bot/internal/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeCallback(t *testing.T) {
	cases := []booking.Choice{
		{Action: booking.ActionStart},
		{Action: booking.ActionStatus},
		{Action: booking.ActionMenu},
		{Action: booking.ActionPickDate, Date: "2025-03-08"},
		{Action: booking.ActionPickHour, Date: "2025-03-08", Hour: 18},
		{Action: booking.ActionTakenHour},
		{Action: booking.ActionPickCategory, Date: "2025-03-08", Hour: 10, Category: "love_story"},
		{Action: booking.ActionSkipLocation},
		{Action: booking.ActionConfirm},
		{Action: booking.ActionCancel},
		{Action: booking.ActionBackToDate},
		{Action: booking.ActionReschedule, BookingID: 17},
		{Action: booking.ActionCancelBooking, BookingID: 17},
	}

	for _, c := range cases {
		t.Run(string(c.Action), func(t *testing.T) {
			data := EncodeChoice(c)
			require.NotEmpty(t, data)
			assert.LessOrEqual(t, len(data), 64)

			ev, ok := DecodeCallback(data)
			require.True(t, ok, data)
			assert.Equal(t, c.Action, ev.Action)
			assert.Equal(t, c.Date, ev.Date)
			assert.Equal(t, c.Hour, ev.Hour)
			assert.Equal(t, c.Category, ev.Category)
			assert.Equal(t, c.BookingID, ev.BookingID)
		})
	}
}

func TestDecodeCallbackRejectsForeignData(t *testing.T) {
	for _, data := range []string{
		"",
		"order_123",
		"bk_d:",
		"bk_h:2025-03-08",
		"bk_h:2025-03-08:xx",
		"bk_cat:2025-03-08:10",
		"bk_cat:2025-03-08:10:",
		"bk_resch:abc",
		"bk_cancel_booking:",
	} {
		_, ok := DecodeCallback(data)
		assert.False(t, ok, data)
	}
}

func TestEncodeChoiceUnknownAction(t *testing.T) {
	assert.Empty(t, EncodeChoice(booking.Choice{Action: booking.ActionSupplyLocation}))
}

func TestInlineKeyboard(t *testing.T) {
	kb := inlineKeyboard([][]booking.Choice{
		{
			{Label: "18:00", Action: booking.ActionPickHour, Date: "2025-03-06", Hour: 18},
			{Label: "19:00 ❌", Action: booking.ActionTakenHour},
		},
		{{Label: "Карта", URL: "https://yandex.ru/maps/?ll=50.1,53.2&z=12"}},
		{{Label: "пропадёт", Action: booking.ActionSupplyLocation}},
	})

	require.Len(t, kb.InlineKeyboard, 2, "rows without renderable buttons are dropped")
	require.Len(t, kb.InlineKeyboard[0], 2)
	require.NotNil(t, kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "bk_h:2025-03-06:18", *kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "bk_h_taken", *kb.InlineKeyboard[0][1].CallbackData)
	require.NotNil(t, kb.InlineKeyboard[1][0].URL)
	assert.Nil(t, kb.InlineKeyboard[1][0].CallbackData)
}

func TestMainMenu(t *testing.T) {
	kb := mainMenu("")
	require.Len(t, kb.InlineKeyboard, 1)
	assert.Equal(t, bookButtonText, kb.InlineKeyboard[0][0].Text)

	kb = mainMenu("18:00 06.03.2025")
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Equal(t, "✅Вы записаны: 18:00 06.03.2025", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, cbBookingStatus, *kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, cbBooking, *kb.InlineKeyboard[1][0].CallbackData)
}
