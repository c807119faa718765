// Package dispatcher направляет обновления Telegram нужному обработчику.
package dispatcher

import (
	"context"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"yoga_schedule_bot/internal/bot/handlers"
	"yoga_schedule_bot/internal/bot/service"
	"yoga_schedule_bot/pkg/logger"
	"yoga_schedule_bot/pkg/metrics"
)

// Dispatcher управляет обработкой входящих обновлений от Telegram
type Dispatcher struct {
	service         *service.Service
	menuHandler     *handlers.MenuHandler
	dayEditHandler  *handlers.DayEditHandler
	callbackHandler *handlers.CallbackHandler
	defaultHandler  *handlers.DefaultHandler
	log             *logger.Logger
}

// NewDispatcher создает новый диспетчер обновлений
func NewDispatcher(svc *service.Service) *Dispatcher {
	return &Dispatcher{
		service:         svc,
		menuHandler:     handlers.NewMenuHandler(svc),
		dayEditHandler:  handlers.NewDayEditHandler(svc),
		callbackHandler: handlers.NewCallbackHandler(svc),
		defaultHandler:  handlers.NewDefaultHandler(svc),
		log:             svc.Logger().Component("dispatcher"),
	}
}

// HandleUpdate обрабатывает входящее обновление от Telegram.
// Подходит как bot.WithDefaultHandler.
func (d *Dispatcher) HandleUpdate(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	start := time.Now()
	name, err := d.route(ctx, b, update)
	if name == "" {
		return
	}
	metrics.RecordUpdate(name, metrics.Status(err), time.Since(start).Seconds())
}

func (d *Dispatcher) route(ctx context.Context, b *tgbot.Bot, update *models.Update) (string, error) {
	if cb := update.CallbackQuery; cb != nil {
		d.log.Debug("Received callback query",
			logger.Int64("user_id", cb.From.ID), logger.String("data", cb.Data))
		d.service.RememberUser(ctx, &cb.From)
		return "callback", d.callbackHandler.Handle(ctx, b, update)
	}

	msg := update.Message
	if msg == nil {
		d.log.Debug("Skipping unsupported update", logger.Int64("update_id", update.ID))
		return "", nil
	}

	d.log.Debug("Received message",
		logger.Int64("chat_id", msg.Chat.ID), logger.String("text", msg.Text))
	d.service.RememberUser(ctx, msg.From)

	switch {
	case msg.Text == "":
		return "", nil
	case d.menuHandler.Matches(msg.Text):
		return "menu", d.menuHandler.Handle(ctx, b, update)
	case d.dayEditHandler.Matches(msg):
		return "day_edit", d.dayEditHandler.Handle(ctx, b, update)
	}
	return "default", d.defaultHandler.Handle(ctx, b, update)
}
