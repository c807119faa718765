package server

import (
	"net/http"
	"sort"
	"time"

	tgmodels "github.com/go-telegram/bot/models"

	"yoga_schedule_bot/internal/middleware"
	"yoga_schedule_bot/pkg/logger"
	"yoga_schedule_bot/pkg/metrics"
)

// SecurityLogger логирует события безопасности
type SecurityLogger struct {
	log *logger.Logger
}

// NewSecurityLogger создает новый логгер безопасности
func NewSecurityLogger(log *logger.Logger) *SecurityLogger {
	return &SecurityLogger{log: log.Component("security")}
}

// LogFailedAuth логирует неудачную попытку аутентификации
func (sl *SecurityLogger) LogFailedAuth(r *http.Request, reason string) {
	metrics.RecordError("http", reason)
	sl.log.Warn("Authentication failed",
		logger.String("reason", reason),
		logger.String("ip", middleware.RealIP(r)),
		logger.String("user_agent", r.UserAgent()),
		logger.String("path", r.URL.Path),
		logger.String("method", r.Method),
	)
}

// LogSuspiciousActivity логирует подозрительную активность
func (sl *SecurityLogger) LogSuspiciousActivity(r *http.Request, activity string, details map[string]interface{}) {
	fields := []logger.Field{
		logger.String("activity", activity),
		logger.String("ip", middleware.RealIP(r)),
		logger.String("path", r.URL.Path),
	}
	sl.log.Warn("Suspicious activity detected", append(fields, detailFields(details)...)...)
}

// LogTelegramUpdate логирует обработку Telegram update
func (sl *SecurityLogger) LogTelegramUpdate(update *tgmodels.Update, processingTime time.Duration) {
	var userID int64
	updateType := "other"

	switch {
	case update.Message != nil:
		updateType = "message"
		if update.Message.From != nil {
			userID = update.Message.From.ID
		}
	case update.CallbackQuery != nil:
		updateType = "callback_query"
		userID = update.CallbackQuery.From.ID
	}

	sl.log.Debug("Telegram update processed",
		logger.Int64("update_id", update.ID),
		logger.String("type", updateType),
		logger.Int64("user_id", userID),
		logger.Duration("processing_time", processingTime),
	)
}

// LogSystemEvent логирует системные события
func (sl *SecurityLogger) LogSystemEvent(event string, details map[string]interface{}) {
	fields := []logger.Field{logger.String("event", event)}
	sl.log.Info("System event", append(fields, detailFields(details)...)...)
}

// detailFields превращает детали в поля в стабильном порядке
func detailFields(details map[string]interface{}) []logger.Field {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]logger.Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, logger.Any(k, details[k]))
	}
	return fields
}
