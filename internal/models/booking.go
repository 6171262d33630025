package models

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "active"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Occupies сообщает, занимает ли запись с таким статусом слот в расписании
func (s BookingStatus) Occupies() bool {
	return s == BookingStatusActive || s == BookingStatusConfirmed
}

// Location - место съёмки, указанное клиентом
type Location struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Text    string  `json:"text,omitempty"`    // Человекочитаемое описание, например "Telegram geo: 53.2,50.2"
	Source  string  `json:"source,omitempty"`  // Исходная ссылка или текст
	Address string  `json:"address,omitempty"` // Адрес, если удалось определить
}

// MapURL возвращает ссылку на точку в Яндекс.Картах
func (l Location) MapURL() string {
	return fmt.Sprintf("https://yandex.ru/maps/?ll=%.6f,%.6f&z=16&pt=%.6f,%.6f", l.Lon, l.Lat, l.Lon, l.Lat)
}

type Booking struct {
	ID           int64         `json:"id"`
	UserID       int64         `json:"user_id"`
	Username     string        `json:"username"`
	ChatID       int64         `json:"chat_id"` // Только для информации
	StartTS      time.Time     `json:"start_ts"`
	Status       BookingStatus `json:"status"`
	Category     string        `json:"category"`
	ReminderSent bool          `json:"reminder_sent"`
	Location     *Location     `json:"location,omitempty"`
}

// Category - тип фотосессии из настраиваемого списка
type Category struct {
	Label string `json:"text"`
	Slug  string `json:"slug"`
}

// PendingReservation - черновик записи, который собирается по шагам диалога.
// Хранится под ключом pending_booking_<user_id>.
type PendingReservation struct {
	Date             string   `json:"date"` // YYYY-MM-DD
	Hour             int      `json:"hour"`
	Slug             string   `json:"slug,omitempty"`
	AwaitingLocation bool     `json:"await_loc"`
	LocLat           *float64 `json:"loc_lat,omitempty"`
	LocLon           *float64 `json:"loc_lon,omitempty"`
	LocText          string   `json:"loc_text,omitempty"`
	LocSource        string   `json:"loc_source,omitempty"`
	LocAddress       string   `json:"loc_addr,omitempty"`
}

// Location собирает поля локации черновика, nil если координат нет
func (p PendingReservation) Location() *Location {
	if p.LocLat == nil || p.LocLon == nil {
		return nil
	}
	return &Location{
		Lat:     *p.LocLat,
		Lon:     *p.LocLon,
		Text:    p.LocText,
		Source:  p.LocSource,
		Address: p.LocAddress,
	}
}

// SetLocation переносит локацию в черновик
func (p *PendingReservation) SetLocation(loc Location) {
	lat, lon := loc.Lat, loc.Lon
	p.LocLat = &lat
	p.LocLon = &lon
	p.LocText = loc.Text
	p.LocSource = loc.Source
	p.LocAddress = loc.Address
}

// RescheduleIntent - отметка о переносе существующей записи.
// Хранится под ключом resched_<user_id>.
type RescheduleIntent struct {
	BookingID int64  `json:"bid"`
	OldStart  string `json:"old_start"`
}
