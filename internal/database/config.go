package database

import (
	"fmt"

	"photostudio-bot/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // драйвер для PostgreSQL
	_ "github.com/mattn/go-sqlite3" // драйвер для SQLite
	"go.uber.org/zap"
)

// NewConnection создает новое подключение к базе данных
func NewConnection(cfg config.Database, logger *zap.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Connect(cfg.Driver, cfg.DSN())
	if err != nil {
		logger.Error("Ошибка подключения к базе данных",
			zap.Error(err),
			zap.String("driver", cfg.Driver),
		)
		return nil, fmt.Errorf("не удалось подключиться к базе данных: %w", err)
	}

	// Установка настроек пула соединений
	if cfg.Driver == "sqlite3" {
		// SQLite пишет одним соединением, иначе ловим "database is locked"
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}

	// Проверка подключения
	if err := db.Ping(); err != nil {
		logger.Error("Ошибка проверки подключения к базе данных", zap.Error(err))
		return nil, fmt.Errorf("не удалось проверить подключение к базе данных: %w", err)
	}

	logger.Info("Успешное подключение к базе данных", zap.String("driver", cfg.Driver))
	return db, nil
}
