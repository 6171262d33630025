package booking

import (
	"context"
	"time"

	"photostudio-bot/internal/models"
)

// Repository - единственная точка чтения и записи таблицы bookings.
// Get и GetActiveForUser возвращают nil без ошибки, если записи нет.
type Repository interface {
	Insert(ctx context.Context, b models.Booking) (int64, error)
	Get(ctx context.Context, id int64) (*models.Booking, error)
	GetActiveForUser(ctx context.Context, userID int64) (*models.Booking, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Booking, error)
	ExistsAt(ctx context.Context, start time.Time) (bool, error)
	UpdateTimeCategoryLocation(ctx context.Context, id int64, start time.Time, category string, loc *models.Location) error
	SetStatus(ctx context.Context, id int64, status models.BookingStatus) error
}

// DialogueStore хранит черновик записи и отметку о переносе по пользователю
type DialogueStore interface {
	LoadPending(ctx context.Context, userID int64) (*models.PendingReservation, error)
	SavePending(ctx context.Context, userID int64, p models.PendingReservation) error
	ClearPending(ctx context.Context, userID int64) error
	LoadReschedule(ctx context.Context, userID int64) (*models.RescheduleIntent, error)
	SaveReschedule(ctx context.Context, userID int64, r models.RescheduleIntent) error
	ClearReschedule(ctx context.Context, userID int64) error
}

type CategoryProvider interface {
	Categories(ctx context.Context) ([]models.Category, error)
}

// LocationResolver превращает ссылку, текст или геопозицию в координаты.
// nil без ошибки означает, что распознать место не удалось.
type LocationResolver interface {
	Resolve(ctx context.Context, in models.LocationInput) (*models.Location, error)
}

type NotificationKind string

const (
	NotificationCreated     NotificationKind = "created"
	NotificationRescheduled NotificationKind = "rescheduled"
	NotificationCancelled   NotificationKind = "cancelled"
)

// Notification - событие для администраторов о записи
type Notification struct {
	Kind     NotificationKind
	Booking  models.Booking
	OldStart time.Time // Только для переноса
}

// Notifier доставляет уведомления администраторам; ошибки доставки не должны ломать диалог
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}
