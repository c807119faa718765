package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"yoga_schedule_bot/internal/validation"
)

// Режимы получения обновлений от Telegram
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// Драйверы хранилища
const (
	DriverSupabase = "supabase"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Telegram     TelegramConfig     `json:"telegram"`
	Server       ServerConfig       `json:"server"`
	Storage      StorageConfig      `json:"storage"`
	Schedule     ScheduleConfig     `json:"schedule"`
	Notification NotificationConfig `json:"notification"`
	Ops          OpsConfig          `json:"ops"`
	LogLevel     string             `json:"log_level"`
}

// TelegramConfig содержит настройки Telegram бота
type TelegramConfig struct {
	Token       string `json:"token"`
	Username    string `json:"username"`
	Mode        string `json:"mode"`
	WebhookURL  string `json:"webhook_url"`
	SecretToken string `json:"-"`
	AdminID     int64  `json:"admin_id"`
	ChannelID   string `json:"channel_id"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string        `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// StorageConfig содержит настройки хранилища
type StorageConfig struct {
	Driver      string        `json:"driver"`
	SupabaseURL string        `json:"supabase_url"`
	SupabaseKey string        `json:"-"`
	DSN         string        `json:"dsn"`
	HTTPTimeout time.Duration `json:"http_timeout"`
}

// ScheduleConfig содержит настройки расписания
type ScheduleConfig struct {
	Timezone   string `json:"timezone"`
	WindowDays int    `json:"window_days"`
	InitTime   string `json:"init_time"`
}

// NotificationConfig содержит настройки ежедневной рассылки
type NotificationConfig struct {
	Time              string        `json:"time"`
	AppURL            string        `json:"app_url"`
	KeepAliveInterval time.Duration `json:"keep_alive_interval"`
}

// OpsConfig содержит настройки служебных эндпоинтов
type OpsConfig struct {
	Token string `json:"-"`
}

// Load загружает конфигурацию из .env файла (если есть) и переменных окружения
func Load() (*Config, error) {
	// Отсутствие .env не ошибка: в продакшене переменные задаются окружением
	_ = godotenv.Load()

	adminID, err := getEnvAsInt64("ADMIN_TELEGRAM_ID", 0)
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg := &Config{
		Telegram: TelegramConfig{
			Token:       os.Getenv("TELEGRAM_TOKEN"),
			Username:    os.Getenv("TELEGRAM_BOT_USERNAME"),
			Mode:        strings.ToLower(getEnv("TELEGRAM_MODE", ModePolling)),
			WebhookURL:  os.Getenv("WEBHOOK_URL"),
			SecretToken: os.Getenv("TELEGRAM_SECRET_TOKEN"),
			AdminID:     adminID,
			ChannelID:   os.Getenv("CHANNEL_ID"),
		},
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Storage: StorageConfig{
			Driver:      strings.ToLower(getEnv("STORAGE_DRIVER", DriverSupabase)),
			SupabaseURL: strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
			SupabaseKey: os.Getenv("SUPABASE_KEY"),
			DSN:         getEnv("DB_DSN", "yoga.db"),
			HTTPTimeout: getEnvAsDuration("HTTP_TIMEOUT", 10*time.Second),
		},
		Schedule: ScheduleConfig{
			Timezone:   getEnv("TIMEZONE", "Europe/Moscow"),
			WindowDays: getEnvAsInt("SCHEDULE_WINDOW_DAYS", 180),
			InitTime:   getEnv("INIT_TIME", "00:05"),
		},
		Notification: NotificationConfig{
			Time:              getEnv("NOTIFICATION_TIME", "16:00"),
			AppURL:            strings.TrimRight(os.Getenv("APP_URL"), "/"),
			KeepAliveInterval: getEnvAsDuration("KEEPALIVE_INTERVAL", 14*time.Minute),
		},
		Ops: OpsConfig{
			Token: os.Getenv("OPS_TOKEN"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.Telegram.AdminID == 0 {
		return fmt.Errorf("ADMIN_TELEGRAM_ID is required")
	}
	if c.Telegram.ChannelID == "" {
		return fmt.Errorf("CHANNEL_ID is required")
	}

	switch c.Telegram.Mode {
	case ModePolling:
	case ModeWebhook:
		if c.Telegram.WebhookURL == "" {
			return fmt.Errorf("WEBHOOK_URL is required in webhook mode")
		}
	default:
		return fmt.Errorf("unknown TELEGRAM_MODE %q (expected %s or %s)", c.Telegram.Mode, ModePolling, ModeWebhook)
	}

	switch c.Storage.Driver {
	case DriverSupabase:
		if c.Storage.SupabaseURL == "" || c.Storage.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_KEY are required for the supabase driver")
		}
	case DriverSQLite, DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("DB_DSN is required for the %s driver", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Storage.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}

	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	if err := validation.ValidateWindowDays(c.Schedule.WindowDays); err != nil {
		return fmt.Errorf("invalid SCHEDULE_WINDOW_DAYS: %w", err)
	}
	if _, err := time.Parse("15:04", c.Schedule.InitTime); err != nil {
		return fmt.Errorf("invalid INIT_TIME format (expected HH:MM): %w", err)
	}
	if _, err := time.Parse("15:04", c.Notification.Time); err != nil {
		return fmt.Errorf("invalid NOTIFICATION_TIME format (expected HH:MM): %w", err)
	}
	if c.Notification.AppURL != "" && c.Notification.KeepAliveInterval <= 0 {
		return fmt.Errorf("KEEPALIVE_INTERVAL must be positive when APP_URL is set")
	}

	return nil
}

// Location возвращает часовой пояс студии
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ChannelChatID возвращает идентификатор канала в виде, который принимает Bot API:
// число для числовых id и строку для @username
func (t TelegramConfig) ChannelChatID() any {
	if id, err := strconv.ParseInt(t.ChannelID, 10, 64); err == nil {
		return id
	}
	return t.ChannelID
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvAsInt получает переменную окружения как число
func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvAsInt64 получает переменную окружения как int64; мусор в значении считается ошибкой
func getEnvAsInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return i, nil
}

// getEnvAsDuration получает переменную окружения как duration
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
