package bot

import (
	"context"
	"fmt"
	"time"

	"photostudio-bot/internal/booking"
	"photostudio-bot/internal/metrics"
	"photostudio-bot/internal/models"
	"photostudio-bot/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// AdminNotifier рассылает администраторам уведомления о записях.
// Telegram ограничивает частоту отправки, поэтому сообщения идут через limiter.
type AdminNotifier struct {
	telegram TelegramClient
	admins   AdminDirectory
	loc      *time.Location
	limiter  *rate.Limiter
	metrics  *metrics.BookingMetrics
	logger   *zap.Logger
}

func NewAdminNotifier(
	telegram TelegramClient,
	admins AdminDirectory,
	loc *time.Location,
	limiter *rate.Limiter,
	m *metrics.BookingMetrics,
	logger *zap.Logger,
) *AdminNotifier {
	if loc == nil {
		loc = time.UTC
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &AdminNotifier{
		telegram: telegram,
		admins:   admins,
		loc:      loc,
		limiter:  limiter,
		metrics:  m,
		logger:   logger,
	}
}

// Notify отправляет уведомление всем известным администраторам.
// Ошибки доставки только логируются.
func (n *AdminNotifier) Notify(ctx context.Context, note booking.Notification) {
	text := n.text(note)
	kind := string(note.Kind)

	for _, adminID := range n.admins.All(ctx) {
		if err := n.limiter.Wait(ctx); err != nil {
			n.metrics.ObserveNotification(kind, "dropped")
			n.logger.Warn("уведомление администратору не отправлено",
				zap.Error(err),
				zap.Int64("admin_id", adminID),
			)
			continue
		}
		if err := n.telegram.SendMessage(adminID, text); err != nil {
			n.metrics.ObserveNotification(kind, "failed")
			n.logger.Warn("ошибка при отправке уведомления администратору",
				zap.Error(err),
				zap.Int64("admin_id", adminID),
				zap.Int64("booking_id", note.Booking.ID),
			)
			continue
		}
		n.metrics.ObserveNotification(kind, "sent")
	}
}

func (n *AdminNotifier) text(note booking.Notification) string {
	b := note.Booking
	who := utils.Handle(b.Username)
	start := utils.FormatTimeDate(b.StartTS.In(n.loc))

	switch note.Kind {
	case booking.NotificationRescheduled:
		return fmt.Sprintf("🔁 Пользователь %s перенёс запись: %s -> %s. Категория: \"%s\"%s",
			who, utils.FormatTimeDate(note.OldStart.In(n.loc)), start, b.Category, locationSuffix(b.Location))
	case booking.NotificationCancelled:
		return fmt.Sprintf("❌ Пользователь %s отменил запись на %s.", who, start)
	default:
		return fmt.Sprintf("🆕 Добавлена запись %s: %s Категория: \"%s\"%s",
			who, start, b.Category, locationSuffix(b.Location))
	}
}

func locationSuffix(loc *models.Location) string {
	if loc == nil {
		return ""
	}
	if loc.Address != "" {
		return fmt.Sprintf("\n📍 Локация: %s\n🏷️ Адрес: %s", loc.MapURL(), loc.Address)
	}
	return "\n📍 Локация: " + loc.MapURL()
}
