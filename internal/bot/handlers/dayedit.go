package handlers

import (
	"context"
	"html"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"yoga_schedule_bot/internal/bot/keyboard"
	botservice "yoga_schedule_bot/internal/bot/service"
	"yoga_schedule_bot/internal/schedule"
	"yoga_schedule_bot/pkg/errors"
	"yoga_schedule_bot/pkg/logger"
)

// DayEditHandler принимает от администратора новое расписание дня текстом
type DayEditHandler struct {
	service *botservice.Service
}

// NewDayEditHandler создает обработчик правки дня
func NewDayEditHandler(service *botservice.Service) *DayEditHandler {
	return &DayEditHandler{service: service}
}

// Matches сообщает, похоже ли сообщение на правку дня от администратора
func (h *DayEditHandler) Matches(msg *models.Message) bool {
	return msg.From != nil && h.service.IsAdmin(msg.From.ID) && schedule.LooksLikeDayEdit(msg.Text)
}

// Handle разбирает правку, сохраняет день и показывает результат
func (h *DayEditHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) error {
	msg := update.Message
	chatID := msg.Chat.ID

	edit, err := schedule.ParseDayEdit(msg.Text)
	if err != nil {
		h.service.Logger().Info("Rejected day edit", logger.Int64("chat_id", chatID), logger.Error(err))
		return h.service.SendSimpleMessage(ctx, chatID, editErrorText(err))
	}

	sch, err := h.service.Schedule().UpdateDay(ctx, edit)
	if err != nil {
		h.service.Logger().Error("Failed to update day",
			logger.String("date", edit.Date), logger.Error(err))
		h.service.SendError(ctx, chatID)
		return err
	}

	date, err := h.service.ParseDate(sch.Date)
	if err != nil {
		return err
	}

	text := "✅ Расписание обновлено:\n\n" + schedule.FormatDayCard(date, sch)
	return h.service.SendMessage(ctx, chatID, text, keyboard.CreateEditKeyboard())
}

func editErrorText(err error) string {
	parts := []string{"❌ Не удалось разобрать расписание."}

	if be, ok := errors.GetBotError(err); ok {
		switch c := be.Context.(type) {
		case string:
			parts = append(parts, c)
		case map[string]interface{}:
			if line, ok := c["line"].(string); ok {
				parts = append(parts, "Строка: <code>"+html.EscapeString(line)+"</code>")
			}
			if reason, ok := c["reason"].(string); ok {
				parts = append(parts, html.EscapeString(reason))
			}
		}
		if inner, ok := errors.GetBotError(be.Err); ok {
			parts = append(parts, inner.Message)
		} else if be.Err != nil {
			parts = append(parts, html.EscapeString(be.Err.Error()))
		}
	}

	return strings.Join(parts, "\n") + "\n\nФормат: дата, затем строки «Утро: ЧЧ:ММ Название» и «Вечер: ЧЧ:ММ Название» или слово «Отдых»."
}
