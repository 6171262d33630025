package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"photostudio-bot/internal/models"
	"photostudio-bot/internal/utils"

	"go.uber.org/zap"
)

// start открывает выбор даты для новой записи и сбрасывает старые черновики
func (m *Manager) start(ctx context.Context, ev Event) (Reply, error) {
	if err := m.dialogues.ClearReschedule(ctx, ev.UserID); err != nil {
		return Reply{}, storageError("clear reschedule", err)
	}
	if err := m.dialogues.ClearPending(ctx, ev.UserID); err != nil {
		return Reply{}, storageError("clear pending", err)
	}
	return m.datePickerReply(msgSelectDate), nil
}

func (m *Manager) pickDate(ctx context.Context, ev Event) (Reply, error) {
	day, err := m.parseDay(ev.Date)
	if err != nil {
		return m.datePickerReply(msgDateUnavailable), nil
	}
	return m.hoursReply(ctx, day, msgPickHour)
}

func (m *Manager) hoursReply(ctx context.Context, day time.Time, format string) (Reply, error) {
	slots, err := m.Availability(ctx, day)
	if err != nil {
		return Reply{}, err
	}
	if len(slots) == 0 {
		r := m.datePickerReply(fmt.Sprintf(msgNoHours, utils.FormatDate(day)))
		return r, nil
	}
	return Reply{
		Stage:   StageSelectingHour,
		Text:    fmt.Sprintf(format, utils.FormatDate(day)),
		Choices: hourChoices(day, slots),
	}, nil
}

// rejectSlot возвращает пользователя к сетке часов или к выбору даты
func (m *Manager) rejectSlot(ctx context.Context, day time.Time, err error) (Reply, error) {
	switch {
	case errors.Is(err, ErrDateOutOfRange):
		return m.datePickerReply(msgDateUnavailable), nil
	case errors.Is(err, ErrHourNotOffered):
		r, herr := m.hoursReply(ctx, day, msgHourUnavailable)
		r.Notice = msgHourClosedShort
		return r, herr
	case errors.Is(err, ErrSlotConflict):
		r, herr := m.hoursReply(ctx, day, msgSlotTaken)
		r.Notice = msgSlotTakenShort
		return r, herr
	default:
		return Reply{}, err
	}
}

// pickHour: выбор часа, проверка конфликта, сохранение черновика и выбор категории
func (m *Manager) pickHour(ctx context.Context, ev Event) (Reply, error) {
	day, start, err := m.parseSlot(ev.Date, ev.Hour)
	if err != nil {
		return m.rejectSlot(ctx, day, err)
	}
	if err := m.CheckSlot(ctx, start); err != nil {
		if errors.Is(err, ErrSlotConflict) {
			m.metrics.ObserveConflict("hour")
		}
		return m.rejectSlot(ctx, day, err)
	}

	date := day.Format(utils.DateLayout)
	pend := models.PendingReservation{Date: date, Hour: ev.Hour}
	if err := m.dialogues.SavePending(ctx, ev.UserID, pend); err != nil {
		return Reply{}, storageError("save pending", err)
	}

	return m.categoryReply(ctx, date, start)
}

func (m *Manager) categoryReply(ctx context.Context, date string, start time.Time) (Reply, error) {
	cats, err := m.categories.Categories(ctx)
	if err != nil {
		return Reply{}, storageError("load categories", err)
	}
	return Reply{
		Stage:   StageSelectingCategory,
		Text:    fmt.Sprintf(msgPickCategory, utils.FormatDateTime(start)),
		Choices: categoryChoices(date, start.Hour(), cats),
	}, nil
}

// pickCategory повторно проверяет слот: с выбора часа могло пройти время
func (m *Manager) pickCategory(ctx context.Context, ev Event) (Reply, error) {
	day, start, err := m.parseSlot(ev.Date, ev.Hour)
	if err != nil {
		return m.rejectSlot(ctx, day, err)
	}
	date := day.Format(utils.DateLayout)

	cat, known, err := m.categoryBySlug(ctx, ev.Category)
	if err != nil {
		return Reply{}, err
	}
	if !known {
		r, err := m.categoryReply(ctx, date, start)
		r.Notice = msgUnknownCategory
		return r, err
	}

	if err := m.CheckSlot(ctx, start); err != nil {
		if errors.Is(err, ErrSlotConflict) {
			m.metrics.ObserveConflict("category")
		}
		return m.rejectSlot(ctx, day, err)
	}

	pend := models.PendingReservation{
		Date:             date,
		Hour:             ev.Hour,
		Slug:             cat.Slug,
		AwaitingLocation: true,
	}
	if err := m.dialogues.SavePending(ctx, ev.UserID, pend); err != nil {
		return Reply{}, storageError("save pending", err)
	}

	return Reply{
		Stage:   StageAwaitingLocation,
		Text:    fmt.Sprintf(msgLocationPrompt, utils.FormatDateTime(start), cat.Label, m.cityName),
		Choices: m.locationChoices(),
	}, nil
}

// supplyLocation принимает локацию, только если черновик её ждёт
func (m *Manager) supplyLocation(ctx context.Context, ev Event) (Reply, error) {
	if ev.Location == nil || (ev.Location.Text == "" && ev.Location.Geo == nil) {
		return Reply{Ignored: true}, nil
	}

	pend, err := m.dialogues.LoadPending(ctx, ev.UserID)
	if err != nil {
		return Reply{}, storageError("load pending", err)
	}
	if pend == nil || !pend.AwaitingLocation {
		return Reply{Ignored: true}, nil
	}

	var loc *models.Location
	if m.resolver != nil {
		loc, err = m.resolver.Resolve(ctx, *ev.Location)
		if err != nil {
			m.logger.Warn("Не удалось распознать локацию",
				zap.Error(err),
				zap.Int64("user_id", ev.UserID),
			)
			loc = nil
		}
	}
	if loc == nil {
		return Reply{
			Stage:   StageAwaitingLocation,
			Text:    msgLocationHint,
			Choices: m.locationChoices(),
		}, nil
	}

	pend.SetLocation(*loc)
	pend.AwaitingLocation = false
	if err := m.dialogues.SavePending(ctx, ev.UserID, *pend); err != nil {
		return Reply{}, storageError("save pending", err)
	}

	m.logger.Info("Локация для записи принята",
		zap.Int64("user_id", ev.UserID),
		zap.String("slug", pend.Slug),
		zap.Float64("lat", loc.Lat),
		zap.Float64("lon", loc.Lon),
	)

	return m.confirmReply(ctx, ev.UserID, *pend, msgLocationAccepted)
}

func (m *Manager) skipLocation(ctx context.Context, ev Event) (Reply, error) {
	pend, err := m.dialogues.LoadPending(ctx, ev.UserID)
	if err != nil {
		return Reply{}, storageError("load pending", err)
	}
	if pend == nil || pend.Slug == "" {
		return m.staleReply(ctx, ev.UserID)
	}

	pend.AwaitingLocation = false
	if err := m.dialogues.SavePending(ctx, ev.UserID, *pend); err != nil {
		return Reply{}, storageError("save pending", err)
	}
	return m.confirmReply(ctx, ev.UserID, *pend, "")
}

func (m *Manager) confirmReply(ctx context.Context, userID int64, pend models.PendingReservation, header string) (Reply, error) {
	day, err := time.ParseInLocation(utils.DateLayout, pend.Date, m.loc)
	if err != nil || pend.Slug == "" {
		return m.staleReply(ctx, userID)
	}
	start := m.slotStart(day, pend.Hour)

	cat, _, err := m.categoryBySlug(ctx, pend.Slug)
	if err != nil {
		return Reply{}, err
	}

	text := fmt.Sprintf(msgSummary, utils.FormatDateTime(start), cat.Label) + "\n" + msgConfirmQuestion
	if header != "" {
		if pend.LocAddress != "" {
			header += "\nАдрес: " + pend.LocAddress
		}
		text = header + "\n\n" + text
	}

	return Reply{Stage: StageConfirming, Text: text, Choices: confirmChoices()}, nil
}

// staleReply: черновик потерян или неполный, диалог начинается заново
func (m *Manager) staleReply(ctx context.Context, userID int64) (Reply, error) {
	m.logger.Warn("Черновик записи неполный, начинаем заново",
		zap.Error(ErrStaleDialogueState),
		zap.Int64("user_id", userID),
	)
	if err := m.dialogues.ClearPending(ctx, userID); err != nil {
		return Reply{}, storageError("clear pending", err)
	}
	return m.datePickerReply(msgCategoryLost + "\n\n" + msgSelectDate), nil
}

// confirm - третья проверка слота и фиксация записи: перенос существующей или новая
func (m *Manager) confirm(ctx context.Context, ev Event) (Reply, error) {
	pend, err := m.dialogues.LoadPending(ctx, ev.UserID)
	if err != nil {
		return Reply{}, storageError("load pending", err)
	}
	if pend == nil || pend.Slug == "" {
		return m.staleReply(ctx, ev.UserID)
	}

	day, start, err := m.parseSlot(pend.Date, pend.Hour)
	if err != nil {
		return m.rejectSlot(ctx, day, err)
	}
	if err := m.CheckSlot(ctx, start); err != nil {
		if errors.Is(err, ErrSlotConflict) {
			m.metrics.ObserveConflict("confirm")
			m.logger.Info("Слот заняли до подтверждения",
				zap.Int64("user_id", ev.UserID),
				zap.Time("start", start),
			)
		}
		return m.rejectSlot(ctx, day, err)
	}

	cat, _, err := m.categoryBySlug(ctx, pend.Slug)
	if err != nil {
		return Reply{}, err
	}
	loc := pend.Location()

	intent, err := m.dialogues.LoadReschedule(ctx, ev.UserID)
	if err != nil {
		return Reply{}, storageError("load reschedule", err)
	}

	var reply Reply
	if intent != nil && intent.BookingID != 0 {
		reply, err = m.commitReschedule(ctx, ev, *intent, start, cat, loc)
	} else {
		reply, err = m.commitNew(ctx, ev, start, cat, loc, "")
	}
	if err != nil {
		return Reply{}, err
	}

	// Запись уже сохранена, ошибки очистки только в лог
	if intent != nil {
		if err := m.dialogues.ClearReschedule(ctx, ev.UserID); err != nil {
			m.logger.Warn("Не удалось очистить отметку переноса", zap.Error(err), zap.Int64("user_id", ev.UserID))
		}
	}
	if err := m.dialogues.ClearPending(ctx, ev.UserID); err != nil {
		m.logger.Warn("Не удалось очистить черновик записи", zap.Error(err), zap.Int64("user_id", ev.UserID))
	}

	return reply, nil
}

func (m *Manager) commitReschedule(
	ctx context.Context,
	ev Event,
	intent models.RescheduleIntent,
	start time.Time,
	cat models.Category,
	loc *models.Location,
) (Reply, error) {
	old, err := m.repo.Get(ctx, intent.BookingID)
	if err != nil {
		return Reply{}, storageError("get booking", err)
	}
	if !ownedAndActive(old, ev.UserID) {
		m.logger.Info("Запись для переноса не найдена, создаём новую",
			zap.Error(ErrMissingRescheduleTarget),
			zap.Int64("user_id", ev.UserID),
			zap.Int64("booking_id", intent.BookingID),
		)
		return m.commitNew(ctx, ev, start, cat, loc, msgRescheduleFallback)
	}

	if err := m.repo.UpdateTimeCategoryLocation(ctx, old.ID, start, cat.Label, loc); err != nil {
		return Reply{}, storageError("update booking", err)
	}
	m.metrics.ObserveCommit("reschedule")

	updated := *old
	updated.StartTS = start
	updated.Category = cat.Label
	updated.ReminderSent = false
	if loc != nil {
		updated.Location = loc
	}
	m.notify(ctx, Notification{Kind: NotificationRescheduled, Booking: updated, OldStart: old.StartTS})

	m.logger.Info("Запись перенесена",
		zap.Int64("booking_id", old.ID),
		zap.Int64("user_id", ev.UserID),
		zap.Time("old_start", old.StartTS),
		zap.Time("new_start", start),
	)

	return Reply{
		Stage:     StageCommitted,
		Text:      fmt.Sprintf(msgRescheduled, utils.FormatDateTime(start)),
		ShowMenu:  true,
		BookingID: old.ID,
	}, nil
}

func (m *Manager) commitNew(
	ctx context.Context,
	ev Event,
	start time.Time,
	cat models.Category,
	loc *models.Location,
	fallback string,
) (Reply, error) {
	b := models.Booking{
		UserID:   ev.UserID,
		Username: ev.Username,
		ChatID:   ev.ChatID,
		StartTS:  start,
		Status:   models.BookingStatusActive,
		Category: cat.Label,
		Location: loc,
	}
	id, err := m.repo.Insert(ctx, b)
	if err != nil {
		return Reply{}, storageError("insert booking", err)
	}
	b.ID = id

	kind := "new"
	if fallback != "" {
		kind = "fallback"
	}
	m.metrics.ObserveCommit(kind)
	m.notify(ctx, Notification{Kind: NotificationCreated, Booking: b})

	m.logger.Info("Создана запись",
		zap.Int64("booking_id", id),
		zap.Int64("user_id", ev.UserID),
		zap.Time("start", start),
		zap.String("category", cat.Label),
		zap.String("kind", kind),
	)

	text := fmt.Sprintf(msgCreated, utils.FormatDateTime(start), start.Add(time.Hour).Format("15:04"))
	if fallback != "" {
		text = fallback + "\n" + text
	}
	return Reply{
		Stage:     StageCommitted,
		Text:      text,
		Notice:    fallback,
		ShowMenu:  true,
		BookingID: id,
	}, nil
}

// cancel прерывает диалог на любом шаге, записи в таблице не трогаются
func (m *Manager) cancel(ctx context.Context, ev Event) (Reply, error) {
	if err := m.dialogues.ClearPending(ctx, ev.UserID); err != nil {
		return Reply{}, storageError("clear pending", err)
	}
	if err := m.dialogues.ClearReschedule(ctx, ev.UserID); err != nil {
		return Reply{}, storageError("clear reschedule", err)
	}
	return Reply{Stage: StageCancelled, Text: msgFlowCancelled, ShowMenu: true}, nil
}

func (m *Manager) reschedule(ctx context.Context, ev Event) (Reply, error) {
	b, err := m.repo.Get(ctx, ev.BookingID)
	if err != nil {
		return Reply{}, storageError("get booking", err)
	}
	if !ownedAndActive(b, ev.UserID) {
		return Reply{Stage: StageIdle, Text: msgCannotReschedule, ShowMenu: true}, nil
	}

	intent := models.RescheduleIntent{
		BookingID: b.ID,
		OldStart:  b.StartTS.UTC().Format(time.RFC3339),
	}
	if err := m.dialogues.SaveReschedule(ctx, ev.UserID, intent); err != nil {
		return Reply{}, storageError("save reschedule", err)
	}
	if err := m.dialogues.ClearPending(ctx, ev.UserID); err != nil {
		return Reply{}, storageError("clear pending", err)
	}
	return m.datePickerReply(msgSelectNewDate), nil
}

func (m *Manager) cancelBooking(ctx context.Context, ev Event) (Reply, error) {
	b, err := m.CancelBooking(ctx, ev.UserID, ev.BookingID)
	if errors.Is(err, ErrBookingNotFound) {
		return Reply{Stage: StageIdle, Text: msgCannotCancel, ShowMenu: true}, nil
	}
	if err != nil {
		return Reply{}, err
	}

	m.notify(ctx, Notification{Kind: NotificationCancelled, Booking: *b})
	m.logger.Info("Запись отменена пользователем",
		zap.Int64("booking_id", b.ID),
		zap.Int64("user_id", ev.UserID),
	)

	return Reply{
		Stage:     StageIdle,
		Text:      fmt.Sprintf(msgBookingCancelled, utils.FormatTimeDate(b.StartTS.In(m.loc))),
		ShowMenu:  true,
		BookingID: b.ID,
	}, nil
}

func (m *Manager) status(ctx context.Context, ev Event) (Reply, error) {
	b, err := m.ActiveBooking(ctx, ev.UserID)
	if err != nil {
		return Reply{}, err
	}
	if b == nil {
		return Reply{
			Stage: StageIdle,
			Text:  msgNoBooking,
			Choices: [][]Choice{
				{{Label: btnBook, Action: ActionStart}},
				{{Label: btnMenu, Action: ActionMenu}},
			},
		}, nil
	}
	return m.bookingCard(*b), nil
}
