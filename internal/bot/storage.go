package bot

import (
	"context"
	"time"

	"photostudio-bot/internal/booking"
	"photostudio-bot/internal/metrics"
	"photostudio-bot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramClient - интерфейс для взаимодействия с Telegram API
type TelegramClient interface {
	// Базовые методы отправки сообщений
	SendMessage(chatID int64, text string) error
	SendMarkdownMessage(chatID int64, text string) error
	SendMessageWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error

	// Методы для ответа на нажатия кнопок
	EditMessageWithInlineKeyboard(chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) error
	AnswerCallback(callbackID, text string) error

	// Метод для получения обновлений
	StartBot(ctx context.Context) (chan models.Message, chan models.CallbackQuery, error)
}

// BookingFlow - диалог записи на фотосессию
type BookingFlow interface {
	Handle(ctx context.Context, ev booking.Event) (booking.Reply, error)
	ActiveBooking(ctx context.Context, userID int64) (*models.Booking, error)
	Location() *time.Location
}

// AdminDirectory - кто получает уведомления о записях
type AdminDirectory interface {
	IsAdmin(username string, userID int64) bool
	Remember(ctx context.Context, userID int64)
	All(ctx context.Context) []int64
}

// ReminderRepository - записи, по которым пора напомнить клиенту
type ReminderRepository interface {
	DueReminders(ctx context.Context, from, to time.Time) ([]models.Booking, error)
	MarkReminderSent(ctx context.Context, id int64) error
}

// Service - основной сервис бота
type Service struct {
	telegram TelegramClient
	flow     BookingFlow
	admins   AdminDirectory
	logger   *zap.Logger
}

// ReminderService отправляет клиентам напоминание о съёмке заранее
type ReminderService struct {
	repo        ReminderRepository
	telegram    TelegramClient
	logger      *zap.Logger
	metrics     *metrics.BookingMetrics
	loc         *time.Location
	checkPeriod time.Duration // Период проверки записей
	lead        time.Duration // За сколько до съёмки напоминать
	now         func() time.Time
}
