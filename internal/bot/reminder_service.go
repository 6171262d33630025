package bot

import (
	"context"
	"fmt"
	"time"

	"photostudio-bot/internal/metrics"
	"photostudio-bot/internal/models"
	"photostudio-bot/internal/utils"

	"go.uber.org/zap"
)

// NewReminderService создает новый сервис напоминаний
func NewReminderService(
	repo ReminderRepository,
	telegram TelegramClient,
	logger *zap.Logger,
	m *metrics.BookingMetrics,
	loc *time.Location,
	checkPeriod time.Duration,
	lead time.Duration,
) *ReminderService {
	if loc == nil {
		loc = time.UTC
	}
	if checkPeriod <= 0 {
		checkPeriod = 10 * time.Minute
	}
	if lead <= 0 {
		lead = 24 * time.Hour
	}
	return &ReminderService{
		repo:        repo,
		telegram:    telegram,
		logger:      logger,
		metrics:     m,
		loc:         loc,
		checkPeriod: checkPeriod,
		lead:        lead,
		now:         time.Now,
	}
}

// Start запускает цикл проверки записей и блокируется до отмены ctx
func (s *ReminderService) Start(ctx context.Context) {
	s.logger.Info("Запуск сервиса напоминаний",
		zap.Duration("check_period", s.checkPeriod),
		zap.Duration("lead", s.lead),
	)

	ticker := time.NewTicker(s.checkPeriod)
	defer ticker.Stop()

	s.checkAndSendReminders(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Сервис напоминаний остановлен")
			return
		case <-ticker.C:
			s.checkAndSendReminders(ctx)
		}
	}
}

// checkAndSendReminders находит записи, до которых осталось не больше lead, и напоминает о них
func (s *ReminderService) checkAndSendReminders(ctx context.Context) {
	s.logger.Debug("Проверка записей для отправки напоминаний")

	now := s.now()
	bookings, err := s.repo.DueReminders(ctx, now, now.Add(s.lead))
	if err != nil {
		s.logger.Error("Ошибка при получении записей для напоминаний",
			zap.Error(err))
		return
	}

	if len(bookings) == 0 {
		s.logger.Debug("Нет записей, требующих напоминания")
		return
	}

	s.logger.Info("Найдены записи для отправки напоминаний",
		zap.Int("count", len(bookings)))

	for _, b := range bookings {
		s.sendReminder(ctx, b)
	}
}

// sendReminder отправляет напоминание клиенту и отмечает запись
func (s *ReminderService) sendReminder(ctx context.Context, b models.Booking) {
	if err := s.telegram.SendMarkdownMessage(b.UserID, s.reminderText(b)); err != nil {
		s.metrics.ObserveReminder("failed")
		s.logger.Error("Ошибка при отправке напоминания",
			zap.Error(err),
			zap.Int64("user_id", b.UserID),
			zap.Int64("booking_id", b.ID))
		return
	}

	// Если отметка не сохранится, напоминание уйдёт повторно на следующей проверке
	if err := s.repo.MarkReminderSent(ctx, b.ID); err != nil {
		s.metrics.ObserveReminder("failed")
		s.logger.Error("Ошибка при отметке отправленного напоминания",
			zap.Error(err),
			zap.Int64("booking_id", b.ID))
		return
	}

	s.metrics.ObserveReminder("sent")
	s.logger.Info("Напоминание успешно отправлено",
		zap.Int64("user_id", b.UserID),
		zap.Int64("booking_id", b.ID))
}

func (s *ReminderService) reminderText(b models.Booking) string {
	start := b.StartTS.In(s.loc)
	text := fmt.Sprintf("⏰ *Напоминание о фотосессии*\n\nЖдём вас %s в %s\\.\nКатегория: %s",
		utils.EscapeMarkdownV2(utils.FormatDate(start)),
		utils.EscapeMarkdownV2(start.Format("15:04")),
		utils.EscapeMarkdownV2(b.Category),
	)
	if b.Location != nil {
		place := b.Location.Address
		if place == "" {
			place = b.Location.Text
		}
		if place == "" {
			place = "Место съёмки"
		}
		text += fmt.Sprintf("\n📍 [%s](%s)", utils.EscapeMarkdownV2(place), b.Location.MapURL())
	}
	return text + "\n\nЕсли планы изменились, перенесите или отмените запись через /booking\\."
}
