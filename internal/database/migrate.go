package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationsFS embed.FS

// NewMigrator собирает мигратор для открытого подключения; схема выбирается по драйверу
func NewMigrator(db *sqlx.DB) (*migrate.Migrate, error) {
	var (
		driver migratedb.Driver
		err    error
	)
	switch db.DriverName() {
	case "postgres":
		driver, err = postgres.WithInstance(db.DB, &postgres.Config{})
	case "sqlite3":
		driver, err = sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	default:
		return nil, fmt.Errorf("миграции для драйвера %q не поддерживаются", db.DriverName())
	}
	if err != nil {
		return nil, fmt.Errorf("db driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations/"+db.DriverName())
	if err != nil {
		return nil, fmt.Errorf("source driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, db.DriverName(), driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// Migrate накатывает схему до последней версии или откатывает её целиком
func Migrate(db *sqlx.DB, down bool, logger *zap.Logger) error {
	m, err := NewMigrator(db)
	if err != nil {
		logger.Error("Ошибка подготовки миграций", zap.Error(err))
		return err
	}
	// Close закрыл бы и само подключение, поэтому мигратор не закрываем

	if down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Ошибка применения миграций", zap.Error(err), zap.Bool("down", down))
		return fmt.Errorf("migrate: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("migrate version: %w", verr)
	}
	logger.Info("Миграции применены",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
		zap.Bool("down", down),
	)
	return nil
}
