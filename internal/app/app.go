package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"photostudio-bot/internal/api"
	"photostudio-bot/internal/booking"
	"photostudio-bot/internal/bot"
	"photostudio-bot/internal/config"
	"photostudio-bot/internal/database"
	"photostudio-bot/internal/grpc"
	"photostudio-bot/internal/location"
	"photostudio-bot/internal/logger"
	"photostudio-bot/internal/metrics"
	"photostudio-bot/internal/state"
	"photostudio-bot/internal/telegram"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func Run(configPath string, migrate, rollback, verbose bool) error {
	// Загружаем конфигурацию
	cfg, err := config.NewConfig(configPath)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Logger.Level = "debug"
	}

	// Инициализируем логгер
	logger, err := logger.New(cfg.Logger)
	if err != nil {
		zap.L().Error("не удалось создать логгер", zap.Error(err))
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Error("некорректная конфигурация", zap.Error(err))
		return err
	}

	// Подключаемся к базе данных
	db, err := database.NewConnection(cfg.Database, logger)
	if err != nil {
		logger.Error("не удалось подключиться к базе данных", zap.Error(err))
		return err
	}
	defer db.Close()

	if rollback {
		return database.Migrate(db, true, logger)
	}
	if migrate {
		if err := database.Migrate(db, false, logger); err != nil {
			return err
		}
	}

	loc, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		return fmt.Errorf("booking timezone: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Состояние диалогов, категории и администраторы
	kv, err := state.NewKV(cfg.State, db, logger)
	if err != nil {
		logger.Error("не удалось создать хранилище состояния", zap.Error(err))
		return err
	}
	if redisKV, ok := kv.(*state.RedisKV); ok {
		defer redisKV.Close()
		if err := redisKV.Ping(ctx); err != nil {
			logger.Error("Redis недоступен", zap.Error(err), zap.String("addr", cfg.State.Redis.Addr))
			return err
		}
	}
	dialogues := state.NewDialogueStore(kv, logger)
	categories := state.NewCategoryStore(kv, cfg.Booking.Categories, logger)
	admins := state.NewAdminDirectory(kv, cfg.Telegram.AdminIDs, cfg.Telegram.AdminUsernames, logger)

	// Метрики
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	bookingMetrics := metrics.NewBookingMetrics(registry)

	// Инициализируем Telegram клиент
	tgClient, err := telegram.NewTelegramClient(cfg.Telegram.Token, cfg.Telegram.Debug, logger)
	if err != nil {
		logger.Error("не удалось создать Telegram клиент", zap.Error(err))
		return err
	}

	bookings := database.NewBookingRepository(db, logger)
	notifier := bot.NewAdminNotifier(
		tgClient,
		admins,
		loc,
		rate.NewLimiter(rate.Limit(cfg.Notify.PerSecond), cfg.Notify.Burst),
		bookingMetrics,
		logger,
	)

	manager := booking.NewManager(
		bookings,
		dialogues,
		categories,
		location.NewResolver(cfg.Location, logger),
		notifier,
		logger,
		booking.Options{
			Schedule: booking.NewWeeklySchedule(
				booking.HourRange{From: cfg.Booking.WeekdayHours.From, To: cfg.Booking.WeekdayHours.To},
				booking.HourRange{From: cfg.Booking.WeekendHours.From, To: cfg.Booking.WeekendHours.To},
			),
			Location:    loc,
			HorizonDays: cfg.Booking.HorizonDays,
			CityName:    cfg.Location.CityName,
			CityMapURL:  location.CityMapURL(cfg.Location.CityLat, cfg.Location.CityLon, cfg.Location.Zoom),
			Metrics:     bookingMetrics,
		},
	)

	// Служебный HTTP-сервер
	httpServer := api.NewServer(
		logger,
		cfg.Server.Addr,
		db,
		manager,
		bookings,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		cfg.Server.AdminToken,
	)
	httpServer.Start()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("ошибка остановки HTTP-сервера", zap.Error(err))
		}
	}()

	var wg sync.WaitGroup
	defer wg.Wait()

	// gRPC health
	if cfg.GRPC.HealthAddr != "" {
		healthServer := grpc.NewHealthServer(logger, db, cfg.GRPC.HealthInterval.Std())
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := healthServer.Serve(ctx, cfg.GRPC.HealthAddr); err != nil {
				logger.Error("ошибка gRPC health сервера", zap.Error(err))
			}
		}()
	}

	// Инициализируем сервис напоминаний
	reminderService := bot.NewReminderService(
		bookings,
		tgClient,
		logger,
		bookingMetrics,
		loc,
		cfg.Booking.ReminderCheck.Std(),
		cfg.Booking.ReminderLead.Std(),
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		reminderService.Start(ctx)
	}()

	// Инициализируем основной сервис бота
	botService := bot.NewService(tgClient, manager, admins, logger)

	// Запускаем бота; остальные сервисы останавливаются вместе с ним
	err = botService.Start(ctx)
	stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("ошибка запуска бота", zap.Error(err))
		return err
	}

	logger.Info("Бот остановлен")
	return nil
}
