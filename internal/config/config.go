// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Duration - time.Duration, который читается из YAML строкой вида "24h"
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Database struct {
	Driver   string `yaml:"driver"` // postgres или sqlite3
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	Path     string `yaml:"path"` // Файл базы для sqlite3
}

// DSN собирает строку подключения для выбранного драйвера
func (d Database) DSN() string {
	if d.Driver == "sqlite3" {
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", d.Path)
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type Logger struct {
	Level    string `yaml:"level"`
	Sink     string `yaml:"sink"`
	Encoding string `yaml:"encoding"` // console или json
}

type Telegram struct {
	Token          string   `yaml:"token"`
	AdminIDs       []int64  `yaml:"admin_ids"`
	AdminUsernames []string `yaml:"admin_usernames"` // Логины без @
	Debug          bool     `yaml:"debug"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// State - где хранится состояние диалогов (черновики записей, переносы)
type State struct {
	Backend string `yaml:"backend"` // sql, redis или memory
	Prefix  string `yaml:"prefix"`  // Префикс ключей в Redis
	Redis   Redis  `yaml:"redis"`
}

type HourRange struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

type CategoryItem struct {
	Text string `yaml:"text"`
	Slug string `yaml:"slug"`
}

type Booking struct {
	Timezone      string         `yaml:"timezone"`
	HorizonDays   int            `yaml:"horizon_days"`
	WeekdayHours  HourRange      `yaml:"weekday_hours"`
	WeekendHours  HourRange      `yaml:"weekend_hours"`
	ReminderLead  Duration       `yaml:"reminder_lead"`
	ReminderCheck Duration       `yaml:"reminder_check"`
	Categories    []CategoryItem `yaml:"categories"` // Список по умолчанию, если в настройках пусто
}

type Location struct {
	ReverseGeocode bool     `yaml:"reverse_geocode"`
	NominatimURL   string   `yaml:"nominatim_url"`
	UserAgent      string   `yaml:"user_agent"`
	Timeout        Duration `yaml:"timeout"`
	CityName       string   `yaml:"city_name"`
	CityLat        float64  `yaml:"city_lat"`
	CityLon        float64  `yaml:"city_lon"`
	Zoom           int      `yaml:"zoom"`
}

type Notify struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

type Server struct {
	Addr       string `yaml:"addr"`
	AdminToken string `yaml:"admin_token"`
}

type GRPC struct {
	HealthAddr     string   `yaml:"health_addr"`
	HealthInterval Duration `yaml:"health_interval"`
}

type AppConfig struct {
	Server   Server   `yaml:"server"`
	GRPC     GRPC     `yaml:"grpc"`
	Logger   Logger   `yaml:"log"`
	Telegram Telegram `yaml:"telegram"`
	Database Database `yaml:"database"`
	State    State    `yaml:"state"`
	Booking  Booking  `yaml:"booking"`
	Location Location `yaml:"location"`
	Notify   Notify   `yaml:"notify"`
}

func NewConfig(path string) (*AppConfig, error) {
	// .env необязателен, переменные окружения могут прийти и из контейнера
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	appConfig := Default()
	if err := yaml.Unmarshal(data, appConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := appConfig.applyEnv(); err != nil {
		return nil, err
	}
	appConfig.fillDefaults()

	return appConfig, nil
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *AppConfig {
	return &AppConfig{
		Server: Server{Addr: ":8080"},
		GRPC: GRPC{
			HealthInterval: Duration(15 * time.Second),
		},
		Logger: Logger{Level: "info", Sink: "stdout", Encoding: "console"},
		Database: Database{
			Driver: "sqlite3",
			Path:   "data.db",
		},
		State: State{Backend: "sql", Prefix: "photostudio:"},
		Booking: Booking{
			Timezone:      "UTC",
			HorizonDays:   30,
			WeekdayHours:  HourRange{From: 18, To: 21},
			WeekendHours:  HourRange{From: 10, To: 21},
			ReminderLead:  Duration(24 * time.Hour),
			ReminderCheck: Duration(10 * time.Minute),
		},
		Location: Location{
			NominatimURL: "https://nominatim.openstreetmap.org",
			UserAgent:    "photostudio-bot/1.0",
			Timeout:      Duration(5 * time.Second),
			CityName:     "Самара",
			CityLat:      53.195878,
			CityLon:      50.100202,
			Zoom:         12,
		},
		Notify: Notify{PerSecond: 20, Burst: 5},
	}
}

func (c *AppConfig) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("BOT_TOKEN")); v != "" {
		c.Telegram.Token = v
	}
	if v := strings.TrimSpace(os.Getenv("ADMIN_IDS")); v != "" {
		ids, err := ParseIDList(v)
		if err != nil {
			return fmt.Errorf("invalid ADMIN_IDS: %w", err)
		}
		c.Telegram.AdminIDs = append(c.Telegram.AdminIDs, ids...)
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_DRIVER")); v != "" {
		c.Database.Driver = v
	}
	if v := strings.TrimSpace(os.Getenv("DB_PATH")); v != "" {
		c.Database.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_ADDR")); v != "" {
		c.State.Redis.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		c.Logger.Level = v
	}
	return nil
}

// fillDefaults подставляет значения для полей, обнулённых в YAML
func (c *AppConfig) fillDefaults() {
	def := Default()
	if c.Booking.HorizonDays <= 0 {
		c.Booking.HorizonDays = def.Booking.HorizonDays
	}
	if c.Booking.WeekdayHours == (HourRange{}) {
		c.Booking.WeekdayHours = def.Booking.WeekdayHours
	}
	if c.Booking.WeekendHours == (HourRange{}) {
		c.Booking.WeekendHours = def.Booking.WeekendHours
	}
	if c.Booking.ReminderLead <= 0 {
		c.Booking.ReminderLead = def.Booking.ReminderLead
	}
	if c.Booking.ReminderCheck <= 0 {
		c.Booking.ReminderCheck = def.Booking.ReminderCheck
	}
	if c.Booking.Timezone == "" {
		c.Booking.Timezone = def.Booking.Timezone
	}
	if c.Notify.PerSecond <= 0 {
		c.Notify.PerSecond = def.Notify.PerSecond
	}
	if c.Notify.Burst <= 0 {
		c.Notify.Burst = def.Notify.Burst
	}
}

// Validate проверяет, что конфигурация пригодна для запуска бота
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Telegram.Token == "" {
		errs = append(errs, errors.New("telegram token is empty (set telegram.token or BOT_TOKEN)"))
	}
	switch c.Database.Driver {
	case "postgres", "sqlite3":
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}
	switch c.State.Backend {
	case "sql", "memory":
	case "redis":
		if c.State.Redis.Addr == "" {
			errs = append(errs, errors.New("state backend redis requires state.redis.addr"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown state backend %q", c.State.Backend))
	}
	for name, r := range map[string]HourRange{"weekday_hours": c.Booking.WeekdayHours, "weekend_hours": c.Booking.WeekendHours} {
		if r.From < 0 || r.To > 23 || r.From > r.To {
			errs = append(errs, fmt.Errorf("booking.%s: invalid range %d-%d", name, r.From, r.To))
		}
	}
	if _, err := time.LoadLocation(c.Booking.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("booking.timezone: %w", err))
	}
	return errors.Join(errs...)
}

// ParseIDList разбирает строку вида "123, 456"
func ParseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
