package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"yoga_schedule_bot/internal/bot/callback"
	"yoga_schedule_bot/internal/bot/keyboard"
	botservice "yoga_schedule_bot/internal/bot/service"
	"yoga_schedule_bot/internal/export"
	"yoga_schedule_bot/pkg/logger"
)

const (
	msgWelcome  = "🧘 Добро пожаловать в Yoga Bot!\n\nЯ помогу вам с расписанием занятий и записью на тренировки."
	msgMainMenu = "Главное меню:"
	msgEditMode = "✏️ Режим редактирования\n\nВыберите действие для работы с расписанием:"
	msgPickEdit = "✏️ Выберите день для редактирования:"
	msgPickDel  = "🗑 Выберите день для удаления:"
	msgPickView = "📋 Выберите занятие для просмотра записей:"
)

// MenuHandler обрабатывает команды и кнопки reply клавиатуры
type MenuHandler struct {
	service *botservice.Service
}

// NewMenuHandler создает новый обработчик меню
func NewMenuHandler(service *botservice.Service) *MenuHandler {
	return &MenuHandler{service: service}
}

// command приводит "/start@bot_name" к "/start"
func command(text string) string {
	if strings.HasPrefix(text, keyboard.BtnStart+"@") {
		return keyboard.BtnStart
	}
	return text
}

// Matches сообщает, является ли текст командой меню
func (h *MenuHandler) Matches(text string) bool {
	switch command(text) {
	case keyboard.BtnStart, keyboard.BtnSchedule, keyboard.BtnSubscriptions,
		keyboard.BtnEditMode, keyboard.BtnNotifications, keyboard.BtnEditDay,
		keyboard.BtnDeleteDay, keyboard.BtnExport, keyboard.BtnBack:
		return true
	}
	return false
}

// adminOnly кнопки, доступные только администратору
func adminOnly(text string) bool {
	switch text {
	case keyboard.BtnSubscriptions, keyboard.BtnEditMode, keyboard.BtnNotifications,
		keyboard.BtnEditDay, keyboard.BtnDeleteDay, keyboard.BtnExport:
		return true
	}
	return false
}

// Handle обрабатывает команду меню
func (h *MenuHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) error {
	msg := update.Message
	chatID := msg.Chat.ID
	isAdmin := msg.From != nil && h.service.IsAdmin(msg.From.ID)
	cmd := command(msg.Text)

	if adminOnly(cmd) && !isAdmin {
		return h.service.SendSimpleMessage(ctx, chatID, botservice.MsgAccessDenied)
	}

	var err error
	switch cmd {
	case keyboard.BtnStart:
		err = h.service.SendMessage(ctx, chatID, msgWelcome, keyboard.CreateMainKeyboard(isAdmin))
	case keyboard.BtnBack:
		err = h.service.SendMessage(ctx, chatID, msgMainMenu, keyboard.CreateMainKeyboard(isAdmin))
	case keyboard.BtnSchedule:
		err = h.showSchedule(ctx, chatID)
	case keyboard.BtnSubscriptions:
		err = h.showSubscriptions(ctx, chatID)
	case keyboard.BtnEditMode:
		err = h.service.SendMessage(ctx, chatID, msgEditMode, keyboard.CreateEditKeyboard())
	case keyboard.BtnNotifications:
		err = h.toggleNotifications(ctx, chatID)
	case keyboard.BtnEditDay:
		err = h.showDayPicker(ctx, chatID, msgPickEdit, callback.EditDay)
	case keyboard.BtnDeleteDay:
		err = h.showDayPicker(ctx, chatID, msgPickDel, callback.DeleteDay)
	case keyboard.BtnExport:
		err = h.sendExport(ctx, chatID)
	}

	if err != nil {
		h.service.Logger().Error("Failed to handle menu command",
			logger.String("command", cmd), logger.Int64("chat_id", chatID), logger.Error(err))
		h.service.SendError(ctx, chatID)
	}
	return err
}

func (h *MenuHandler) showSchedule(ctx context.Context, chatID int64) error {
	text, err := h.service.Schedule().WeeklyScheduleText(ctx)
	if err != nil {
		return err
	}
	return h.service.SendSimpleMessage(ctx, chatID, text)
}

func (h *MenuHandler) showSubscriptions(ctx context.Context, chatID int64) error {
	sched := h.service.Schedule()

	overview, err := sched.SubscriptionsOverviewText(ctx)
	if err != nil {
		return err
	}
	week, err := sched.Roster(ctx, sched.Today(), 7)
	if err != nil {
		return err
	}

	text := overview + "\n\n" + msgPickView
	return h.service.SendMessage(ctx, chatID, text, keyboard.CreateViewSubscribersKeyboard(week))
}

func (h *MenuHandler) toggleNotifications(ctx context.Context, chatID int64) error {
	enabled, err := h.service.Schedule().ToggleNotifications(ctx)
	if err != nil {
		return err
	}

	text := "🔕 Ежедневные уведомления выключены."
	if enabled {
		text = fmt.Sprintf("🔔 Ежедневные уведомления включены (отправка в %s).", h.service.NotificationScheduleText())
	}
	return h.service.SendSimpleMessage(ctx, chatID, text)
}

func (h *MenuHandler) showDayPicker(ctx context.Context, chatID int64, text string, pick func(string) callback.Data) error {
	dates, _, err := h.service.Schedule().UpcomingDays(ctx)
	if err != nil {
		return err
	}
	return h.service.SendMessage(ctx, chatID, text, keyboard.CreateDayPickerKeyboard(dates, pick))
}

func (h *MenuHandler) sendExport(ctx context.Context, chatID int64) error {
	sched := h.service.Schedule()
	start := sched.Today()

	week, err := sched.Roster(ctx, start, 7)
	if err != nil {
		return err
	}
	data, err := export.Roster(week)
	if err != nil {
		return err
	}

	h.service.Logger().Info("Roster exported", logger.Int64("chat_id", chatID), logger.Int("bytes", len(data)))
	return h.service.SendDocument(ctx, chatID, export.FileName(start), data, "📥 Записи на неделю")
}
