package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	botservice "yoga_schedule_bot/internal/bot/service"
)

// DefaultHandler отвечает на сообщения, которые не распознал ни один обработчик
type DefaultHandler struct {
	service *botservice.Service
}

// NewDefaultHandler создает новый обработчик по умолчанию
func NewDefaultHandler(service *botservice.Service) *DefaultHandler {
	return &DefaultHandler{service: service}
}

// Handle подсказывает пользователю воспользоваться меню
func (h *DefaultHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) error {
	if update.Message == nil {
		return nil
	}
	return h.service.SendSimpleMessage(ctx, update.Message.Chat.ID, botservice.MsgUnknownCommand)
}
