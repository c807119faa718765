package config_test

import (
	"strings"
	"testing"
	"time"

	"yoga_schedule_bot/internal/config"
	"yoga_schedule_bot/internal/testutils"
)

var allKeys = []string{
	"TELEGRAM_TOKEN", "TELEGRAM_BOT_USERNAME", "TELEGRAM_MODE", "WEBHOOK_URL", "TELEGRAM_SECRET_TOKEN",
	"ADMIN_TELEGRAM_ID", "CHANNEL_ID", "PORT", "STORAGE_DRIVER", "SUPABASE_URL", "SUPABASE_KEY",
	"DB_DSN", "HTTP_TIMEOUT", "TIMEZONE", "SCHEDULE_WINDOW_DAYS", "INIT_TIME", "NOTIFICATION_TIME",
	"APP_URL", "KEEPALIVE_INTERVAL", "OPS_TOKEN", "LOG_LEVEL",
}

func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
	}
	for key, value := range vars {
		t.Setenv(key, value)
	}
}

func baseEnv() map[string]string {
	return map[string]string{
		"TELEGRAM_TOKEN":    "123456:ABC-DEF1234ghIkl-zyx57W2v1u123ew11",
		"ADMIN_TELEGRAM_ID": "42",
		"CHANNEL_ID":        "-1001234567890",
		"SUPABASE_URL":      "https://project.supabase.co/",
		"SUPABASE_KEY":      "service-key",
	}
}

func TestConfig_Load(t *testing.T) {
	tests := []struct {
		name        string
		override    map[string]string
		expectError bool
		validate    func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "Default values",
			validate: func(t *testing.T, cfg *config.Config) {
				testutils.AssertEqual(t, "8080", cfg.Server.Port, "Default port")
				testutils.AssertEqual(t, config.ModePolling, cfg.Telegram.Mode, "Default mode")
				testutils.AssertEqual(t, config.DriverSupabase, cfg.Storage.Driver, "Default driver")
				testutils.AssertEqual(t, "https://project.supabase.co", cfg.Storage.SupabaseURL, "Trailing slash trimmed")
				testutils.AssertEqual(t, 10*time.Second, cfg.Storage.HTTPTimeout, "Default HTTP timeout")
				testutils.AssertEqual(t, "Europe/Moscow", cfg.Schedule.Timezone, "Default timezone")
				testutils.AssertEqual(t, 180, cfg.Schedule.WindowDays, "Default window")
				testutils.AssertEqual(t, "16:00", cfg.Notification.Time, "Default notification time")
				testutils.AssertEqual(t, int64(42), cfg.Telegram.AdminID, "Admin ID")
			},
		},
		{
			name: "Webhook mode with sqlite",
			override: map[string]string{
				"TELEGRAM_MODE":        "webhook",
				"WEBHOOK_URL":          "https://example.com/webhook",
				"STORAGE_DRIVER":       "sqlite",
				"SUPABASE_URL":         "",
				"SUPABASE_KEY":         "",
				"DB_DSN":               "test.db",
				"SCHEDULE_WINDOW_DAYS": "30",
				"NOTIFICATION_TIME":    "18:30",
			},
			validate: func(t *testing.T, cfg *config.Config) {
				testutils.AssertEqual(t, config.ModeWebhook, cfg.Telegram.Mode, "Mode")
				testutils.AssertEqual(t, "test.db", cfg.Storage.DSN, "DSN")
				testutils.AssertEqual(t, 30, cfg.Schedule.WindowDays, "Window")
				testutils.AssertEqual(t, "18:30", cfg.Notification.Time, "Notification time")
			},
		},
		{
			name:        "Missing token",
			override:    map[string]string{"TELEGRAM_TOKEN": ""},
			expectError: true,
		},
		{
			name:        "Missing admin",
			override:    map[string]string{"ADMIN_TELEGRAM_ID": ""},
			expectError: true,
		},
		{
			name:        "Garbage admin id",
			override:    map[string]string{"ADMIN_TELEGRAM_ID": "admin"},
			expectError: true,
		},
		{
			name:        "Missing channel",
			override:    map[string]string{"CHANNEL_ID": ""},
			expectError: true,
		},
		{
			name:        "Webhook without URL",
			override:    map[string]string{"TELEGRAM_MODE": "webhook"},
			expectError: true,
		},
		{
			name:        "Supabase without key",
			override:    map[string]string{"SUPABASE_KEY": ""},
			expectError: true,
		},
		{
			name:        "Unknown driver",
			override:    map[string]string{"STORAGE_DRIVER": "mongo"},
			expectError: true,
		},
		{
			name:        "Invalid notification time",
			override:    map[string]string{"NOTIFICATION_TIME": "25:00"},
			expectError: true,
		},
		{
			name:        "Invalid timezone",
			override:    map[string]string{"TIMEZONE": "Mars/Olympus"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := baseEnv()
			for k, v := range tt.override {
				env[k] = v
			}
			setEnv(t, env)

			cfg, err := config.Load()

			if tt.expectError {
				testutils.AssertError(t, err, "Expected configuration error")
				return
			}

			testutils.AssertNoError(t, err, "Configuration should load without error")
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestConfig_ValidateMessages(t *testing.T) {
	cfg := &config.Config{
		Telegram: config.TelegramConfig{Token: "t", AdminID: 1, ChannelID: "@yoga", Mode: "carrier-pigeon"},
	}

	err := cfg.Validate()
	testutils.AssertError(t, err, "Unknown mode should fail")
	if !strings.Contains(err.Error(), "TELEGRAM_MODE") {
		t.Errorf("error should name the variable, got %v", err)
	}
}

func TestTelegramConfig_ChannelChatID(t *testing.T) {
	numeric := config.TelegramConfig{ChannelID: "-1001234567890"}
	testutils.AssertEqual(t, int64(-1001234567890), numeric.ChannelChatID(), "Numeric channel id")

	named := config.TelegramConfig{ChannelID: "@yoga_channel"}
	testutils.AssertEqual(t, "@yoga_channel", named.ChannelChatID(), "Named channel id")
}
