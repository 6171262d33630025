package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"photostudio-bot/internal/metrics"
	"photostudio-bot/internal/models"
	"photostudio-bot/internal/utils"

	"go.uber.org/zap"
)

// Options - параметры менеджера записи, нулевые значения заменяются значениями по умолчанию
type Options struct {
	Schedule    WeeklySchedule
	Location    *time.Location
	HorizonDays int
	Now         func() time.Time
	CityName    string
	CityMapURL  string
	Metrics     *metrics.BookingMetrics
}

// Manager ведёт диалог записи на фотосессию и следит, чтобы записи не пересекались.
// Собственного состояния между событиями не хранит: всё лежит в Repository и DialogueStore.
type Manager struct {
	repo       Repository
	dialogues  DialogueStore
	categories CategoryProvider
	resolver   LocationResolver
	notifier   Notifier
	logger     *zap.Logger
	metrics    *metrics.BookingMetrics

	schedule   WeeklySchedule
	loc        *time.Location
	horizon    int
	now        func() time.Time
	cityName   string
	cityMapURL string
}

func NewManager(
	repo Repository,
	dialogues DialogueStore,
	categories CategoryProvider,
	resolver LocationResolver,
	notifier Notifier,
	logger *zap.Logger,
	opts Options,
) *Manager {
	if opts.Schedule == nil {
		opts.Schedule = DefaultSchedule()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.HorizonDays <= 0 {
		opts.HorizonDays = 30
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Manager{
		repo:       repo,
		dialogues:  dialogues,
		categories: categories,
		resolver:   resolver,
		notifier:   notifier,
		logger:     logger,
		metrics:    opts.Metrics,
		schedule:   opts.Schedule,
		loc:        opts.Location,
		horizon:    opts.HorizonDays,
		now:        opts.Now,
		cityName:   opts.CityName,
		cityMapURL: opts.CityMapURL,
	}
}

// Location - часовой пояс, в котором считаются даты и часы записи
func (m *Manager) Location() *time.Location {
	return m.loc
}

// Handle обрабатывает одно событие диалога. Ответ пригоден для показа пользователю
// всегда, даже вместе с ошибкой: ошибка возвращается только при сбое хранилища.
func (m *Manager) Handle(ctx context.Context, ev Event) (Reply, error) {
	var (
		reply Reply
		err   error
	)

	switch ev.Action {
	case ActionStart:
		reply, err = m.start(ctx, ev)
	case ActionBackToDate:
		reply = m.datePickerReply(msgSelectDate)
	case ActionPickDate:
		reply, err = m.pickDate(ctx, ev)
	case ActionPickHour:
		reply, err = m.pickHour(ctx, ev)
	case ActionTakenHour:
		reply = Reply{Stage: StageSelectingHour, Notice: msgSlotTakenShort}
	case ActionPickCategory:
		reply, err = m.pickCategory(ctx, ev)
	case ActionSupplyLocation:
		reply, err = m.supplyLocation(ctx, ev)
	case ActionSkipLocation:
		reply, err = m.skipLocation(ctx, ev)
	case ActionConfirm:
		reply, err = m.confirm(ctx, ev)
	case ActionCancel:
		reply, err = m.cancel(ctx, ev)
	case ActionReschedule:
		reply, err = m.reschedule(ctx, ev)
	case ActionCancelBooking:
		reply, err = m.cancelBooking(ctx, ev)
	case ActionStatus:
		reply, err = m.status(ctx, ev)
	case ActionMenu:
		reply = Reply{Stage: StageIdle, ShowMenu: true}
	default:
		return Reply{Ignored: true}, nil
	}

	if err != nil {
		m.metrics.ObserveEvent(string(ev.Action), "error")
		m.logger.Error("Ошибка при обработке шага записи",
			zap.Error(err),
			zap.Int64("user_id", ev.UserID),
			zap.String("action", string(ev.Action)),
		)
		if !errors.Is(err, ErrStorageUnavailable) {
			err = storageError(string(ev.Action), err)
		}
		return Reply{Stage: StageIdle, Text: msgTryLater, ShowMenu: true}, err
	}

	if !reply.Ignored {
		m.metrics.ObserveEvent(string(ev.Action), string(reply.Stage))
	}
	return reply, nil
}

// CancelBooking отменяет активную запись пользователя.
// Отсутствующая, чужая или уже отменённая запись даёт ErrBookingNotFound.
func (m *Manager) CancelBooking(ctx context.Context, userID, bookingID int64) (*models.Booking, error) {
	b, err := m.repo.Get(ctx, bookingID)
	if err != nil {
		return nil, storageError("get booking", err)
	}
	if !ownedAndActive(b, userID) {
		return nil, ErrBookingNotFound
	}
	if err := m.repo.SetStatus(ctx, bookingID, models.BookingStatusCancelled); err != nil {
		return nil, storageError("cancel booking", err)
	}
	b.Status = models.BookingStatusCancelled
	return b, nil
}

// ActiveBooking - текущая запись пользователя или nil
func (m *Manager) ActiveBooking(ctx context.Context, userID int64) (*models.Booking, error) {
	b, err := m.repo.GetActiveForUser(ctx, userID)
	if err != nil {
		return nil, storageError("get active booking", err)
	}
	return b, nil
}

// parseDay разбирает дату и проверяет, что она попадает в горизонт записи (с завтра на N дней)
func (m *Manager) parseDay(raw string) (time.Time, error) {
	day, err := time.ParseInLocation(utils.DateLayout, raw, m.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrDateOutOfRange, raw)
	}
	first, last := m.horizonBounds()
	if day.Before(first) || day.After(last) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrDateOutOfRange, raw)
	}
	return day, nil
}

func (m *Manager) horizonBounds() (time.Time, time.Time) {
	today := m.dayStart(m.now())
	return today.AddDate(0, 0, 1), today.AddDate(0, 0, m.horizon)
}

// parseSlot проверяет дату и час события и возвращает начало слота
func (m *Manager) parseSlot(date string, hour int) (time.Time, time.Time, error) {
	day, err := m.parseDay(date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !m.schedule.Offers(day, hour) {
		return day, time.Time{}, fmt.Errorf("%w: %s %d:00", ErrHourNotOffered, date, hour)
	}
	return day, m.slotStart(day, hour), nil
}

func (m *Manager) categoryBySlug(ctx context.Context, slug string) (models.Category, bool, error) {
	cats, err := m.categories.Categories(ctx)
	if err != nil {
		return models.Category{}, false, storageError("load categories", err)
	}
	for _, c := range cats {
		if c.Slug == slug {
			return c, true, nil
		}
	}
	return models.Category{Label: slug, Slug: slug}, false, nil
}

func ownedAndActive(b *models.Booking, userID int64) bool {
	return b != nil && b.UserID == userID && b.Status.Occupies()
}

func (m *Manager) notify(ctx context.Context, n Notification) {
	if m.notifier == nil {
		return
	}
	m.notifier.Notify(ctx, n)
}
