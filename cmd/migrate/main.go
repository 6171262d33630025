package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"photostudio-bot/internal/config"
	"photostudio-bot/internal/database"
	"photostudio-bot/internal/logger"

	"github.com/golang-migrate/migrate/v4"
)

const usage = `Использование: migrate [-config путь] команда

Команды:
  up            накатить все миграции
  down          откатить все миграции
  steps N       применить N шагов (отрицательное N - откат)
  force V       пометить версию V как чистую
  version       показать текущую версию схемы
`

func main() {
	configPath := flag.String("config", "./config/config.yaml", "Путь к файлу конфигурации")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	// Загружаем конфигурацию
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	zl, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Ошибка создания логгера: %v", err)
	}

	// Подключаемся к базе данных
	db, err := database.NewConnection(cfg.Database, zl)
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}
	defer db.Close()

	m, err := database.NewMigrator(db)
	if err != nil {
		log.Fatalf("Ошибка подготовки миграций: %v", err)
	}

	if err := run(m, flag.Args()); err != nil {
		log.Fatalf("Ошибка выполнения миграции: %v", err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		fmt.Println("Схема пуста")
	case err != nil:
		log.Fatalf("Ошибка чтения версии: %v", err)
	default:
		fmt.Printf("Версия схемы: %d (dirty=%v)\n", version, dirty)
	}
}

func run(m *migrate.Migrate, args []string) error {
	var err error
	switch args[0] {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		n, perr := intArg(args)
		if perr != nil {
			return perr
		}
		err = m.Steps(n)
	case "force":
		v, perr := intArg(args)
		if perr != nil {
			return perr
		}
		err = m.Force(v)
	case "version":
		return nil
	default:
		return fmt.Errorf("неизвестная команда %q", args[0])
	}
	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("Изменений нет")
		return nil
	}
	return err
}

func intArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("команде %s нужен числовой аргумент", args[0])
	}
	return strconv.Atoi(args[1])
}
