package bot

import (
	"context"
	"strings"

	"photostudio-bot/internal/booking"
	"photostudio-bot/internal/models"
	"photostudio-bot/internal/utils"

	"go.uber.org/zap"
)

const (
	startCommand   = "/start"
	bookingCommand = "/booking"

	unknownMessageText = "Здравствуйте! Отправьте /start, чтобы открыть меню."
)

// HandleMessage - обработчик входящих сообщений: команды и ввод локации
func (s *Service) HandleMessage(ctx context.Context, msg models.Message, log *zap.Logger) error {
	text := strings.TrimSpace(msg.Text)

	switch {
	case strings.HasPrefix(text, startCommand):
		if s.admins != nil && s.admins.IsAdmin(msg.Username, msg.UserID) {
			s.admins.Remember(ctx, msg.UserID)
		}
		return s.sendMainMenu(ctx, msg.ChatID, msg.UserID, log)

	case strings.HasPrefix(text, bookingCommand):
		ev := booking.Event{UserID: msg.UserID, ChatID: msg.ChatID, Username: msg.Username, Action: booking.ActionStatus}
		reply, err := s.flow.Handle(ctx, ev)
		return s.deliver(ctx, msg.ChatID, 0, msg.UserID, reply, err, log)
	}

	if text == "" && msg.Location == nil {
		return nil
	}

	// Всё остальное может быть локацией съёмки, если диалог записи её ждёт
	ev := booking.Event{
		UserID:   msg.UserID,
		ChatID:   msg.ChatID,
		Username: msg.Username,
		Action:   booking.ActionSupplyLocation,
		Location: &models.LocationInput{Text: text, Geo: msg.Location},
	}
	reply, err := s.flow.Handle(ctx, ev)
	if err == nil && reply.Ignored {
		return s.telegram.SendMessage(msg.ChatID, unknownMessageText)
	}
	return s.deliver(ctx, msg.ChatID, 0, msg.UserID, reply, err, log)
}

// HandleCallback - обработчик нажатий на инлайн-кнопки
func (s *Service) HandleCallback(ctx context.Context, cb models.CallbackQuery, log *zap.Logger) error {
	ev, ok := DecodeCallback(cb.Data)
	if !ok {
		log.Warn("неизвестные данные кнопки", zap.String("data", cb.Data))
		return s.telegram.AnswerCallback(cb.ID, "")
	}
	ev.UserID = cb.UserID
	ev.ChatID = cb.ChatID
	ev.Username = cb.UserLogin

	reply, err := s.flow.Handle(ctx, ev)

	if aerr := s.telegram.AnswerCallback(cb.ID, reply.Notice); aerr != nil {
		log.Warn("не удалось ответить на callback", zap.Error(aerr))
	}
	return s.deliver(ctx, cb.ChatID, cb.MessageID, cb.UserID, reply, err, log)
}

// deliver показывает ответ диалога: редактирует сообщение с кнопкой или шлёт новое
func (s *Service) deliver(
	ctx context.Context,
	chatID int64,
	messageID int,
	userID int64,
	reply booking.Reply,
	flowErr error,
	log *zap.Logger,
) error {
	if reply.Ignored {
		return flowErr
	}

	if reply.Text != "" {
		keyboard := inlineKeyboard(reply.Choices)
		var err error
		if messageID != 0 && !reply.ShowMenu {
			err = s.telegram.EditMessageWithInlineKeyboard(chatID, messageID, reply.Text, keyboard)
		} else if len(keyboard.InlineKeyboard) > 0 {
			err = s.telegram.SendMessageWithInlineKeyboard(chatID, reply.Text, keyboard)
		} else {
			err = s.telegram.SendMessage(chatID, reply.Text)
		}
		if err != nil {
			log.Error("ошибка при отправке шага записи",
				zap.Error(err),
				zap.Int64("chat_id", chatID),
				zap.String("stage", string(reply.Stage)),
			)
			return err
		}
	}

	if reply.ShowMenu {
		if err := s.sendMainMenu(ctx, chatID, userID, log); err != nil {
			return err
		}
	}
	return flowErr
}

func (s *Service) sendMainMenu(ctx context.Context, chatID, userID int64, log *zap.Logger) error {
	var status string
	b, err := s.flow.ActiveBooking(ctx, userID)
	if err != nil {
		log.Warn("не удалось получить активную запись для меню", zap.Error(err))
	} else if b != nil {
		status = utils.FormatTimeDate(b.StartTS.In(s.flow.Location()))
	}

	if err := s.telegram.SendMessageWithInlineKeyboard(chatID, mainMenuText, mainMenu(status)); err != nil {
		log.Error("ошибка при отправке главного меню",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
		return err
	}
	return nil
}
