package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"yoga_schedule_bot/internal/bot/keyboard"
	"yoga_schedule_bot/internal/config"
	"yoga_schedule_bot/internal/schedule"
	"yoga_schedule_bot/internal/storage/models"
	"yoga_schedule_bot/pkg/errors"
	"yoga_schedule_bot/pkg/logger"
	"yoga_schedule_bot/pkg/metrics"
)

// Общие ответы пользователю
const (
	MsgAccessDenied   = "⛔ У вас нет доступа к этой функции."
	MsgUnknownCommand = "Неизвестная команда. Используйте кнопки меню."
	MsgError          = "❌ Произошла ошибка при обработке запроса."
	MsgSubscribed     = "✅ Вы успешно записались на занятие!"
	MsgUnsubscribed   = "❌ Запись на занятие отменена."
)

// BotAPI методы Telegram Bot API, которые использует бот; *bot.Bot им удовлетворяет
type BotAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*tgmodels.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
	SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*tgmodels.Message, error)
}

// Service представляет основной сервис Telegram бота
type Service struct {
	api      BotAPI
	schedule *schedule.Service
	config   *config.Config
	log      *logger.Logger
}

// NewService создает новый экземпляр сервиса бота
func NewService(api BotAPI, sched *schedule.Service, cfg *config.Config, log *logger.Logger) *Service {
	return &Service{
		api:      api,
		schedule: sched,
		config:   cfg,
		log:      log.Component("bot"),
	}
}

// Schedule возвращает сервис расписания
func (s *Service) Schedule() *schedule.Service {
	return s.schedule
}

// Logger возвращает логгер бота
func (s *Service) Logger() *logger.Logger {
	return s.log
}

// IsAdmin проверяет, является ли пользователь администратором студии
func (s *Service) IsAdmin(userID int64) bool {
	return userID != 0 && userID == s.config.Telegram.AdminID
}

// RememberUser сохраняет автора обновления; ошибка только логируется
func (s *Service) RememberUser(ctx context.Context, u *tgmodels.User) {
	if u == nil || u.ID == 0 || u.IsBot {
		return
	}
	err := s.schedule.SaveUser(ctx, &models.BotUser{
		TelegramID: u.ID,
		FirstName:  models.StringPtr(u.FirstName),
		LastName:   models.StringPtr(u.LastName),
		Username:   models.StringPtr(u.Username),
	})
	if err != nil {
		s.log.Warn("Failed to save user", logger.Int64("user_id", u.ID), logger.Error(err))
	}
}

// SendMessage отправляет HTML сообщение
func (s *Service) SendMessage(ctx context.Context, chatID any, text string, replyMarkup tgmodels.ReplyMarkup) error {
	params := &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   tgmodels.ParseModeHTML,
		ReplyMarkup: replyMarkup,
	}

	if _, err := s.api.SendMessage(ctx, params); err != nil {
		metrics.RecordError("telegram", "send_message")
		return errors.ErrTelegramAPI.WithError(err)
	}
	return nil
}

// SendSimpleMessage отправляет простое текстовое сообщение
func (s *Service) SendSimpleMessage(ctx context.Context, chatID int64, text string) error {
	return s.SendMessage(ctx, chatID, text, nil)
}

// SendError отправляет сообщение об ошибке пользователю
func (s *Service) SendError(ctx context.Context, chatID int64) {
	if err := s.SendSimpleMessage(ctx, chatID, MsgError); err != nil {
		s.log.Error("Failed to send error message", logger.Int64("chat_id", chatID), logger.Error(err))
	}
}

// EditMessage заменяет текст и кнопки сообщения
func (s *Service) EditMessage(ctx context.Context, chatID int64, messageID int, text string, markup tgmodels.ReplyMarkup) error {
	params := &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ParseMode:   tgmodels.ParseModeHTML,
		ReplyMarkup: markup,
	}

	if _, err := s.api.EditMessageText(ctx, params); err != nil {
		metrics.RecordError("telegram", "edit_message")
		return errors.ErrTelegramAPI.WithError(err)
	}
	return nil
}

// AnswerCallbackQuery отвечает на callback query всплывающим уведомлением
func (s *Service) AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error {
	params := &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackQueryID,
		Text:            text,
	}

	if _, err := s.api.AnswerCallbackQuery(ctx, params); err != nil {
		metrics.RecordError("telegram", "answer_callback")
		return errors.ErrTelegramAPI.WithError(err)
	}
	return nil
}

// SendDocument отправляет файл
func (s *Service) SendDocument(ctx context.Context, chatID int64, filename string, data []byte, caption string) error {
	params := &bot.SendDocumentParams{
		ChatID:   chatID,
		Document: &tgmodels.InputFileUpload{Filename: filename, Data: bytes.NewReader(data)},
		Caption:  caption,
	}

	if _, err := s.api.SendDocument(ctx, params); err != nil {
		metrics.RecordError("telegram", "send_document")
		return errors.ErrTelegramAPI.WithError(err)
	}
	return nil
}

// SendDailyNotification отправляет в канал напоминание о завтрашних занятиях,
// если рассылка не выключена администратором
func (s *Service) SendDailyNotification(ctx context.Context) error {
	enabled, err := s.schedule.NotificationsEnabled(ctx)
	if err != nil {
		metrics.RecordNotification("daily", "error")
		return fmt.Errorf("failed to read notification flag: %w", err)
	}
	if !enabled {
		metrics.RecordNotification("daily", "disabled")
		s.log.Info("Daily notification skipped: disabled by admin")
		return nil
	}
	return s.sendTomorrow(ctx, "daily")
}

// SendTestNotification отправляет напоминание независимо от флага рассылки
func (s *Service) SendTestNotification(ctx context.Context) error {
	return s.sendTomorrow(ctx, "test")
}

func (s *Service) sendTomorrow(ctx context.Context, kind string) error {
	tomorrow := s.schedule.Tomorrow()

	n, err := s.schedule.NotificationFor(ctx, tomorrow)
	if err != nil {
		metrics.RecordNotification(kind, "error")
		return fmt.Errorf("failed to build notification: %w", err)
	}

	var markup tgmodels.ReplyMarkup
	if n.HasClasses() {
		markup = keyboard.CreateNotificationKeyboard(n.Schedule)
	}

	if err := s.SendMessage(ctx, s.config.Telegram.ChannelChatID(), n.Text, markup); err != nil {
		metrics.RecordNotification(kind, "error")
		return fmt.Errorf("failed to send notification: %w", err)
	}

	metrics.RecordNotification(kind, "success")
	s.log.Info("Notification sent",
		logger.String("type", kind),
		logger.String("date", tomorrow.Format(models.DateLayout)),
		logger.Bool("has_classes", n.HasClasses()),
	)
	return nil
}

// NotificationScheduleText описывает время рассылки для администратора
func (s *Service) NotificationScheduleText() string {
	return fmt.Sprintf("%s %s", s.config.Notification.Time, s.config.Schedule.Timezone)
}

// ParseDate разбирает дату хранилища в часовом поясе студии
func (s *Service) ParseDate(date string) (time.Time, error) {
	return time.ParseInLocation(models.DateLayout, date, s.schedule.Location())
}
