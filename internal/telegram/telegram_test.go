package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageFromUpdate(t *testing.T) {
	_, ok := messageFromUpdate(tgbotapi.Update{})
	assert.False(t, ok)

	_, ok = messageFromUpdate(tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}}})
	assert.False(t, ok, "channel posts have no sender")

	msg, ok := messageFromUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		From:     &tgbotapi.User{ID: 42, FirstName: "Анна", LastName: "К", UserName: "anna"},
		Chat:     &tgbotapi.Chat{ID: 420},
		Location: &tgbotapi.Location{Latitude: 53.2, Longitude: 50.1},
	}})
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.UserID)
	assert.Equal(t, int64(420), msg.ChatID)
	assert.Equal(t, "Анна К", msg.FullName)
	require.NotNil(t, msg.Location)
	assert.Equal(t, 50.1, msg.Location.Lon)
}

func TestCallbackFromUpdate(t *testing.T) {
	cb, ok := callbackFromUpdate(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb1",
		From: &tgbotapi.User{ID: 42, FirstName: "Анна", UserName: "anna"},
		Data: "bk_d:2025-03-08",
	}})
	require.True(t, ok)
	assert.Equal(t, int64(42), cb.ChatID)
	assert.Zero(t, cb.MessageID)

	cb, ok = callbackFromUpdate(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb2",
		From:    &tgbotapi.User{ID: 42},
		Message: &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: 420}},
		Data:    "bk_cf",
	}})
	require.True(t, ok)
	assert.Equal(t, int64(420), cb.ChatID)
	assert.Equal(t, 7, cb.MessageID)
}
