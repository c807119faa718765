package handlers

import (
	"context"
	stderrors "errors"
	"fmt"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"yoga_schedule_bot/internal/bot/callback"
	"yoga_schedule_bot/internal/bot/keyboard"
	botservice "yoga_schedule_bot/internal/bot/service"
	"yoga_schedule_bot/internal/schedule"
	storagemodels "yoga_schedule_bot/internal/storage/models"
	"yoga_schedule_bot/pkg/errors"
	"yoga_schedule_bot/pkg/logger"
)

const (
	msgScheduleNotFound = "Расписание на выбранную дату не найдено."
	msgSlotNotOffered   = "В этот день такого занятия нет."
	msgDeleteCancelled  = "Удаление отменено."
)

// CallbackHandler обрабатывает callback query от inline кнопок
type CallbackHandler struct {
	service *botservice.Service
}

// NewCallbackHandler создает новый обработчик callback query
func NewCallbackHandler(service *botservice.Service) *CallbackHandler {
	return &CallbackHandler{service: service}
}

// callbackTarget сообщение, к которому привязана кнопка
type callbackTarget struct {
	chatID    int64
	messageID int
}

func targetOf(cb *models.CallbackQuery) callbackTarget {
	switch {
	case cb.Message.Message != nil:
		return callbackTarget{chatID: cb.Message.Message.Chat.ID, messageID: cb.Message.Message.ID}
	case cb.Message.InaccessibleMessage != nil:
		return callbackTarget{chatID: cb.Message.InaccessibleMessage.Chat.ID}
	}
	return callbackTarget{chatID: cb.From.ID}
}

// Handle обрабатывает callback query
func (h *CallbackHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) error {
	cb := update.CallbackQuery
	log := h.service.Logger()

	data, err := callback.Parse(cb.Data)
	if err != nil {
		log.Warn("Unknown callback data", logger.String("data", cb.Data), logger.Int64("user_id", cb.From.ID))
		h.answer(ctx, cb.ID, "")
		return err
	}

	switch data.Action {
	case callback.ActionSubscribe, callback.ActionUnsubscribe:
		return h.handleSubscription(ctx, cb, data)
	}

	if !h.service.IsAdmin(cb.From.ID) {
		h.answer(ctx, cb.ID, botservice.MsgAccessDenied)
		return nil
	}

	target := targetOf(cb)
	switch data.Action {
	case callback.ActionViewSubscribers:
		err = h.handleViewSubscribers(ctx, target, data)
	case callback.ActionEditDay:
		err = h.handleEditDay(ctx, target, data.Date)
	case callback.ActionDeleteDay:
		err = h.handleDeleteDay(ctx, target, data.Date)
	case callback.ActionConfirmDelete:
		err = h.handleConfirmDelete(ctx, target, data.Date)
	case callback.ActionCancelDelete:
		err = h.replaceOrSend(ctx, target, msgDeleteCancelled, nil)
	case callback.ActionBackToMain:
		err = h.service.SendMessage(ctx, target.chatID, msgMainMenu, keyboard.CreateMainKeyboard(true))
	case callback.ActionBackToEdit:
		err = h.service.SendMessage(ctx, target.chatID, msgEditMode, keyboard.CreateEditKeyboard())
	}

	h.answer(ctx, cb.ID, "")
	if err != nil {
		log.Error("Failed to handle callback", logger.String("data", data.String()), logger.Error(err))
		h.service.SendError(ctx, target.chatID)
	}
	return err
}

func (h *CallbackHandler) answer(ctx context.Context, id, text string) {
	if err := h.service.AnswerCallbackQuery(ctx, id, text); err != nil {
		h.service.Logger().Warn("Failed to answer callback query", logger.Error(err))
	}
}

// handleSubscription записывает или отписывает нажавшего; ответ приходит всплывающим уведомлением
func (h *CallbackHandler) handleSubscription(ctx context.Context, cb *models.CallbackQuery, data callback.Data) error {
	sched := h.service.Schedule()
	userID := cb.From.ID

	if data.Action == callback.ActionUnsubscribe {
		if err := sched.Unsubscribe(ctx, userID, data.ScheduleID, data.ClassType); err != nil {
			h.service.Logger().Error("Failed to unsubscribe", logger.Int64("user_id", userID), logger.Error(err))
			h.answer(ctx, cb.ID, botservice.MsgError)
			return err
		}
		h.answer(ctx, cb.ID, botservice.MsgUnsubscribed)
		return nil
	}

	_, err := sched.SubscribeToClass(ctx, userID, data.ScheduleID, data.ClassType)
	switch {
	case err == nil:
		h.answer(ctx, cb.ID, botservice.MsgSubscribed)
		return nil
	case stderrors.Is(err, errors.ErrScheduleNotFound):
		h.answer(ctx, cb.ID, msgScheduleNotFound)
		return nil
	case stderrors.Is(err, errors.ErrSlotNotOffered):
		h.answer(ctx, cb.ID, msgSlotNotOffered)
		return nil
	}

	h.service.Logger().Error("Failed to subscribe", logger.Int64("user_id", userID), logger.Error(err))
	h.answer(ctx, cb.ID, botservice.MsgError)
	return err
}

func (h *CallbackHandler) handleViewSubscribers(ctx context.Context, target callbackTarget, data callback.Data) error {
	sched := h.service.Schedule()

	sch, err := sched.GetScheduleByID(ctx, data.ScheduleID)
	if err != nil {
		return err
	}
	if sch == nil {
		return h.service.SendSimpleMessage(ctx, target.chatID, msgScheduleNotFound)
	}

	list, err := sched.FormatSubscriberList(ctx, data.ScheduleID, data.ClassType)
	if err != nil {
		return err
	}

	kind := "утреннее"
	if data.ClassType == storagemodels.Evening {
		kind = "вечернее"
	}
	header := fmt.Sprintf("📋 Список записавшихся на %s занятие", kind)
	if date, err := h.service.ParseDate(sch.Date); err == nil {
		header += fmt.Sprintf(" (%s, %s)", schedule.RussianDayName(date.Weekday()), schedule.FormatDate(date))
	}

	return h.service.SendSimpleMessage(ctx, target.chatID, header+":\n\n"+list)
}

func (h *CallbackHandler) handleEditDay(ctx context.Context, target callbackTarget, date string) error {
	day, err := h.service.ParseDate(date)
	if err != nil {
		return err
	}

	sch, err := h.service.Schedule().GetScheduleForDate(ctx, day)
	if err != nil {
		return err
	}

	text := schedule.FormatDayCard(day, sch) + "\n\n" + schedule.EditTemplate(schedule.FormatDate(day))
	return h.service.SendSimpleMessage(ctx, target.chatID, text)
}

func (h *CallbackHandler) handleDeleteDay(ctx context.Context, target callbackTarget, date string) error {
	day, err := h.service.ParseDate(date)
	if err != nil {
		return err
	}

	sch, err := h.service.Schedule().GetScheduleForDate(ctx, day)
	if err != nil {
		return err
	}
	if sch == nil {
		return h.service.SendSimpleMessage(ctx, target.chatID, msgScheduleNotFound)
	}

	text := fmt.Sprintf("🗑 Вы уверены, что хотите удалить расписание на %s (%s)?",
		schedule.RussianDayName(day.Weekday()), schedule.FormatDate(day))
	return h.service.SendMessage(ctx, target.chatID, text, keyboard.CreateDeleteConfirmKeyboard(date))
}

func (h *CallbackHandler) handleConfirmDelete(ctx context.Context, target callbackTarget, date string) error {
	day, err := h.service.ParseDate(date)
	if err != nil {
		return err
	}

	if _, err := h.service.Schedule().SetDayToRest(ctx, date); err != nil {
		return err
	}

	text := fmt.Sprintf("✅ Расписание на %s (%s) удалено. День отмечен как выходной.",
		schedule.RussianDayName(day.Weekday()), schedule.FormatDate(day))
	return h.replaceOrSend(ctx, target, text, nil)
}

// replaceOrSend редактирует сообщение с кнопками, а если оно недоступно, отправляет новое
func (h *CallbackHandler) replaceOrSend(ctx context.Context, target callbackTarget, text string, markup models.ReplyMarkup) error {
	if target.messageID != 0 {
		err := h.service.EditMessage(ctx, target.chatID, target.messageID, text, markup)
		if err == nil {
			return nil
		}
		h.service.Logger().Warn("Failed to edit message, sending new one", logger.Error(err))
	}
	return h.service.SendMessage(ctx, target.chatID, text, markup)
}
