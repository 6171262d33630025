package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"photostudio-bot/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const bookingColumns = `id, user_id, username, chat_id, start_ts, status, category, reminder_sent,
            lat, lon, loc_text, loc_source, loc_addr`

// BookingRepository представляет репозиторий для работы с записями на съёмку
type BookingRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewBookingRepository создает новый репозиторий записей
func NewBookingRepository(db *sqlx.DB, logger *zap.Logger) *BookingRepository {
	return &BookingRepository{
		db:     db,
		logger: logger,
	}
}

type bookingRow struct {
	ID           int64           `db:"id"`
	UserID       int64           `db:"user_id"`
	Username     string          `db:"username"`
	ChatID       int64           `db:"chat_id"`
	StartTS      time.Time       `db:"start_ts"`
	Status       string          `db:"status"`
	Category     string          `db:"category"`
	ReminderSent bool            `db:"reminder_sent"`
	Lat          sql.NullFloat64 `db:"lat"`
	Lon          sql.NullFloat64 `db:"lon"`
	LocText      sql.NullString  `db:"loc_text"`
	LocSource    sql.NullString  `db:"loc_source"`
	LocAddress   sql.NullString  `db:"loc_addr"`
}

func (r bookingRow) toModel() models.Booking {
	b := models.Booking{
		ID:           r.ID,
		UserID:       r.UserID,
		Username:     r.Username,
		ChatID:       r.ChatID,
		StartTS:      r.StartTS.UTC(),
		Status:       models.BookingStatus(r.Status),
		Category:     r.Category,
		ReminderSent: r.ReminderSent,
	}
	if r.Lat.Valid && r.Lon.Valid {
		b.Location = &models.Location{
			Lat:     r.Lat.Float64,
			Lon:     r.Lon.Float64,
			Text:    r.LocText.String,
			Source:  r.LocSource.String,
			Address: r.LocAddress.String,
		}
	}
	return b
}

type locationArgs struct {
	lat, lon              sql.NullFloat64
	text, source, address sql.NullString
}

func newLocationArgs(loc *models.Location) locationArgs {
	if loc == nil {
		return locationArgs{}
	}
	return locationArgs{
		lat:     sql.NullFloat64{Float64: loc.Lat, Valid: true},
		lon:     sql.NullFloat64{Float64: loc.Lon, Valid: true},
		text:    sql.NullString{String: loc.Text, Valid: true},
		source:  sql.NullString{String: loc.Source, Valid: true},
		address: sql.NullString{String: loc.Address, Valid: loc.Address != ""},
	}
}

// Insert сохраняет запись и возвращает её id
func (r *BookingRepository) Insert(ctx context.Context, b models.Booking) (int64, error) {
	query := r.db.Rebind(`
        INSERT INTO bookings (
            user_id, username, chat_id, start_ts, status, category, reminder_sent,
            lat, lon, loc_text, loc_source, loc_addr
        )
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        RETURNING id
    `)

	loc := newLocationArgs(b.Location)
	var id int64
	err := r.db.QueryRowxContext(ctx, query,
		b.UserID,
		b.Username,
		b.ChatID,
		b.StartTS.UTC(),
		string(b.Status),
		b.Category,
		b.ReminderSent,
		loc.lat,
		loc.lon,
		loc.text,
		loc.source,
		loc.address,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Ошибка при создании записи",
			zap.Error(err),
			zap.Int64("user_id", b.UserID),
			zap.Time("start_ts", b.StartTS),
		)
		return 0, err
	}

	return id, nil
}

// Get возвращает запись по id или nil, если её нет
func (r *BookingRepository) Get(ctx context.Context, id int64) (*models.Booking, error) {
	query := r.db.Rebind(`SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`)

	var row bookingRow
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Ошибка при получении записи",
			zap.Error(err),
			zap.Int64("booking_id", id),
		)
		return nil, err
	}

	b := row.toModel()
	return &b, nil
}

// GetActiveForUser возвращает активную запись пользователя с самым поздним началом
func (r *BookingRepository) GetActiveForUser(ctx context.Context, userID int64) (*models.Booking, error) {
	query := r.db.Rebind(`
        SELECT ` + bookingColumns + `
        FROM bookings
        WHERE user_id = ? AND status IN ('active', 'confirmed')
        ORDER BY start_ts DESC, id DESC
        LIMIT 1
    `)

	var row bookingRow
	err := r.db.GetContext(ctx, &row, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Ошибка при получении активной записи пользователя",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		return nil, err
	}

	b := row.toModel()
	return &b, nil
}

// ListBetween возвращает записи любого статуса с началом в [from, to)
func (r *BookingRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	query := r.db.Rebind(`
        SELECT ` + bookingColumns + `
        FROM bookings
        WHERE start_ts >= ? AND start_ts < ?
        ORDER BY start_ts
    `)
	return r.list(ctx, "Ошибка при получении записей за период", query, from.UTC(), to.UTC())
}

// DueReminders - активные записи с началом в [from, to), по которым ещё не было напоминания
func (r *BookingRepository) DueReminders(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	query := r.db.Rebind(`
        SELECT ` + bookingColumns + `
        FROM bookings
        WHERE status IN ('active', 'confirmed')
        AND reminder_sent = ?
        AND start_ts >= ? AND start_ts < ?
        ORDER BY start_ts
    `)
	return r.list(ctx, "Ошибка при получении записей для напоминаний", query, false, from.UTC(), to.UTC())
}

func (r *BookingRepository) list(ctx context.Context, msg, query string, args ...interface{}) ([]models.Booking, error) {
	var rows []bookingRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.Error(msg, zap.Error(err))
		return nil, err
	}

	bookings := make([]models.Booking, 0, len(rows))
	for _, row := range rows {
		bookings = append(bookings, row.toModel())
	}
	return bookings, nil
}

// ExistsAt проверяет, есть ли активная запись ровно с таким началом
func (r *BookingRepository) ExistsAt(ctx context.Context, start time.Time) (bool, error) {
	query := r.db.Rebind(`
        SELECT COUNT(1)
        FROM bookings
        WHERE start_ts = ? AND status IN ('active', 'confirmed')
    `)

	var count int
	if err := r.db.GetContext(ctx, &count, query, start.UTC()); err != nil {
		r.logger.Error("Ошибка при проверке занятости слота",
			zap.Error(err),
			zap.Time("start_ts", start),
		)
		return false, err
	}
	return count > 0, nil
}

// UpdateTimeCategoryLocation переносит запись одним запросом.
// Если loc == nil, прежняя локация остаётся. Флаг напоминания сбрасывается.
func (r *BookingRepository) UpdateTimeCategoryLocation(
	ctx context.Context,
	id int64,
	start time.Time,
	category string,
	loc *models.Location,
) error {
	var (
		query string
		args  []interface{}
	)
	if loc == nil {
		query = `
            UPDATE bookings
            SET start_ts = ?, category = ?, reminder_sent = ?
            WHERE id = ?
        `
		args = []interface{}{start.UTC(), category, false, id}
	} else {
		l := newLocationArgs(loc)
		query = `
            UPDATE bookings
            SET start_ts = ?, category = ?, reminder_sent = ?,
                lat = ?, lon = ?, loc_text = ?, loc_source = ?, loc_addr = ?
            WHERE id = ?
        `
		args = []interface{}{start.UTC(), category, false, l.lat, l.lon, l.text, l.source, l.address, id}
	}

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		r.logger.Error("Ошибка при переносе записи",
			zap.Error(err),
			zap.Int64("booking_id", id),
			zap.Time("start_ts", start),
		)
		return err
	}
	return nil
}

func (r *BookingRepository) SetStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	query := r.db.Rebind(`UPDATE bookings SET status = ? WHERE id = ?`)

	if _, err := r.db.ExecContext(ctx, query, string(status), id); err != nil {
		r.logger.Error("Ошибка при обновлении статуса записи",
			zap.Error(err),
			zap.Int64("booking_id", id),
			zap.String("status", string(status)),
		)
		return err
	}
	return nil
}

// MarkReminderSent отмечает, что напоминание по записи отправлено
func (r *BookingRepository) MarkReminderSent(ctx context.Context, id int64) error {
	query := r.db.Rebind(`UPDATE bookings SET reminder_sent = ? WHERE id = ?`)

	if _, err := r.db.ExecContext(ctx, query, true, id); err != nil {
		r.logger.Error("Ошибка при отметке отправленного напоминания",
			zap.Error(err),
			zap.Int64("booking_id", id),
		)
		return err
	}
	return nil
}
