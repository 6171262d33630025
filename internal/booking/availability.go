package booking

import (
	"context"
	"time"
)

// HourSlot - час в сетке дня и признак занятости
type HourSlot struct {
	Hour  int  `json:"hour"`
	Taken bool `json:"taken"`
}

// Availability возвращает предлагаемые часы даты и какие из них заняты.
// Занятым считается час записи и следующий за ним резервный час.
// Предыдущий час здесь не блокируется, его отсекает только CheckSlot.
func (m *Manager) Availability(ctx context.Context, day time.Time) ([]HourSlot, error) {
	start := m.dayStart(day)
	end := start.AddDate(0, 0, 1)

	bookings, err := m.repo.ListBetween(ctx, start, end)
	if err != nil {
		return nil, storageError("list bookings", err)
	}

	taken := make(map[int]bool, len(bookings)*2)
	for _, b := range bookings {
		if !b.Status.Occupies() {
			continue
		}
		h := b.StartTS.In(m.loc).Hour()
		taken[h] = true
		if h+1 < 24 {
			taken[h+1] = true
		}
	}

	hours := m.schedule.OfferedHours(start)
	slots := make([]HourSlot, 0, len(hours))
	for _, h := range hours {
		slots = append(slots, HourSlot{Hour: h, Taken: taken[h]})
	}
	return slots, nil
}

// CheckSlot проверяет три точки: час до, сам час и резервный час после.
// Возвращает ErrSlotConflict, если хотя бы одна занята активной записью.
func (m *Manager) CheckSlot(ctx context.Context, start time.Time) error {
	probes := [...]time.Time{start.Add(-time.Hour), start, start.Add(time.Hour)}
	for _, probe := range probes {
		taken, err := m.repo.ExistsAt(ctx, probe)
		if err != nil {
			return storageError("check slot", err)
		}
		if taken {
			return ErrSlotConflict
		}
	}
	return nil
}

func (m *Manager) dayStart(t time.Time) time.Time {
	t = t.In(m.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, m.loc)
}

// slotStart собирает начало слота из даты YYYY-MM-DD и часа
func (m *Manager) slotStart(day time.Time, hour int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, m.loc)
}
