package bot

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewService - создает новый экземпляр основного сервиса бота
func NewService(telegram TelegramClient, flow BookingFlow, admins AdminDirectory, logger *zap.Logger) *Service {
	return &Service{
		telegram: telegram,
		flow:     flow,
		admins:   admins,
		logger:   logger,
	}
}

// Start - запускает обработку сообщений и callback-запросов до отмены ctx.
// Обновления обрабатываются строго по одному, поэтому проверка слота
// и сохранение записи не перемежаются между пользователями.
func (s *Service) Start(ctx context.Context) error {
	messagesChan, callbacksChan, err := s.telegram.StartBot(ctx)
	if err != nil {
		s.logger.Error("ошибка при запуске бота",
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("Бот запущен, ожидаем обновления")

	for messagesChan != nil || callbacksChan != nil {
		select {
		case <-ctx.Done():
			return nil

		case message, ok := <-messagesChan:
			if !ok {
				messagesChan = nil
				continue
			}
			log := s.logger.With(zap.String("trace_id", uuid.NewString()))
			log.Info("получено сообщение",
				zap.Int64("chat_id", message.ChatID),
				zap.Int64("user_id", message.UserID),
				zap.Bool("location", message.Location != nil),
			)
			if err := s.HandleMessage(ctx, message, log); err != nil {
				log.Error("ошибка при обработке сообщения",
					zap.Error(err),
					zap.Int64("chat_id", message.ChatID),
				)
			}

		case callback, ok := <-callbacksChan:
			if !ok {
				callbacksChan = nil
				continue
			}
			log := s.logger.With(zap.String("trace_id", uuid.NewString()))
			log.Info("получен callback-запрос",
				zap.String("data", callback.Data),
				zap.Int64("user_id", callback.UserID),
			)
			if err := s.HandleCallback(ctx, callback, log); err != nil {
				log.Error("ошибка при обработке callback-запроса",
					zap.Error(err),
					zap.Int64("user_id", callback.UserID),
				)
			}
		}
	}

	return nil
}
