// Команда bot запускает Telegram-бота записи на фотосессии:
// диалог выбора даты и часа, напоминания клиентам и служебный HTTP/gRPC.
package main

import (
	"flag"
	"log"
	"os"

	"photostudio-bot/internal/app"
)

func main() {
	runMigrations := flag.Bool("migrate", true, "Накатить схему bookings/settings перед запуском")
	rollbackMigrations := flag.Bool("rollback", false, "Откатить схему и завершить работу")
	configPath := flag.String("config", "./config/config.yaml", "YAML с токеном бота, БД и расписанием студии")
	verbose := flag.Bool("verbose", false, "Поднять уровень логов до debug")
	flag.Parse()

	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		log.Fatalf("Конфигурация бота фотостудии не найдена: %s", *configPath)
	}

	log.Printf("Запуск бота фотостудии (config=%s, migrate=%v, rollback=%v, verbose=%v)",
		*configPath, *runMigrations, *rollbackMigrations, *verbose)

	if err := app.Run(*configPath, *runMigrations, *rollbackMigrations, *verbose); err != nil {
		log.Fatalf("Бот фотостудии остановлен с ошибкой: %v", err)
	}
}
