package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// SettingsRepository - таблица settings: строковые значения по ключу
type SettingsRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewSettingsRepository(db *sqlx.DB, logger *zap.Logger) *SettingsRepository {
	return &SettingsRepository{
		db:     db,
		logger: logger,
	}
}

// Get возвращает значение и признак, что ключ существует
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.GetContext(ctx, &value, r.db.Rebind(`SELECT value FROM settings WHERE key = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		r.logger.Error("Ошибка при чтении настройки", zap.Error(err), zap.String("key", key))
		return "", false, err
	}
	return value, true, nil
}

func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	query := r.db.Rebind(`
        INSERT INTO settings (key, value)
        VALUES (?, ?)
        ON CONFLICT (key) DO UPDATE SET value = excluded.value
    `)

	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		r.logger.Error("Ошибка при сохранении настройки", zap.Error(err), zap.String("key", key))
		return err
	}
	return nil
}

func (r *SettingsRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM settings WHERE key = ?`), key); err != nil {
		r.logger.Error("Ошибка при удалении настройки", zap.Error(err), zap.String("key", key))
		return err
	}
	return nil
}
