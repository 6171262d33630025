package telegram

import (
	"context"
	"fmt"
	"strings"

	"photostudio-bot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type TelegramClient struct {
	bot    *tgbotapi.BotAPI
	logger *zap.Logger
}

func NewTelegramClient(token string, debug bool, logger *zap.Logger) (*TelegramClient, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("error creating telegram client: %w", err)
	}
	bot.Debug = debug

	logger.Info("Авторизован бот", zap.String("username", bot.Self.UserName))
	return &TelegramClient{
		bot:    bot,
		logger: logger,
	}, nil
}

func (t *TelegramClient) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := t.bot.Send(msg)
	return err
}

func (t *TelegramClient) SendMarkdownMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	_, err := t.bot.Send(msg)
	return err
}

func (t *TelegramClient) SendMessageWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	msg.DisableWebPagePreview = true
	_, err := t.bot.Send(msg)
	return err
}

// EditMessageWithInlineKeyboard заменяет текст и кнопки сообщения, в котором нажали кнопку
func (t *TelegramClient) EditMessageWithInlineKeyboard(chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	editMsg := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, keyboard)
	editMsg.DisableWebPagePreview = true

	_, err := t.bot.Send(editMsg)
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		return nil
	}
	return err
}

// AnswerCallback убирает индикатор загрузки у кнопки; непустой текст показывается всплывающим уведомлением
func (t *TelegramClient) AnswerCallback(callbackID, text string) error {
	_, err := t.bot.Request(tgbotapi.NewCallback(callbackID, text))
	return err
}

// Единый метод обработки обновлений. Каналы закрываются после отмены ctx.
func (t *TelegramClient) StartBot(ctx context.Context) (chan models.Message, chan models.CallbackQuery, error) {
	// Удаляем вебхук перед запуском Long Polling
	_, err := t.bot.Request(tgbotapi.DeleteWebhookConfig{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to delete webhook: %v", err)
	}

	// Создаем каналы для обычных сообщений и callback-запросов
	userMessages := make(chan models.Message)
	callbackQueries := make(chan models.CallbackQuery)

	// Настраиваем получение обновлений
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.bot.GetUpdatesChan(u)

	go func() {
		defer close(userMessages)
		defer close(callbackQueries)

		for {
			select {
			case <-ctx.Done():
				t.bot.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if msg, ok := messageFromUpdate(update); ok {
					select {
					case userMessages <- msg:
					case <-ctx.Done():
					}
				}
				if cb, ok := callbackFromUpdate(update); ok {
					select {
					case callbackQueries <- cb:
					case <-ctx.Done():
					}
				}
			}
		}
	}()

	return userMessages, callbackQueries, nil
}

func messageFromUpdate(update tgbotapi.Update) (models.Message, bool) {
	m := update.Message
	if m == nil || m.From == nil {
		return models.Message{}, false
	}

	fullName := m.From.FirstName
	if m.From.LastName != "" {
		fullName += " " + m.From.LastName
	}

	msg := models.Message{
		ChatID:   m.Chat.ID,
		UserID:   m.From.ID,
		Text:     m.Text,
		Username: m.From.UserName,
		FullName: fullName,
	}
	if m.Location != nil {
		msg.Location = &models.GeoPoint{Lat: m.Location.Latitude, Lon: m.Location.Longitude}
	}
	return msg, true
}

func callbackFromUpdate(update tgbotapi.Update) (models.CallbackQuery, bool) {
	q := update.CallbackQuery
	if q == nil || q.From == nil {
		return models.CallbackQuery{}, false
	}

	userName := q.From.FirstName
	if q.From.LastName != "" {
		userName += " " + q.From.LastName
	}

	cb := models.CallbackQuery{
		ID:        q.ID,
		UserID:    q.From.ID,
		UserName:  userName,
		UserLogin: q.From.UserName,
		ChatID:    q.From.ID,
		Data:      q.Data,
	}
	if q.Message != nil {
		cb.MessageID = q.Message.MessageID
		cb.ChatID = q.Message.Chat.ID
	}
	return cb, true
}
