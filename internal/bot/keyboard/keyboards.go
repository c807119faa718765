package keyboard

import (
	"fmt"
	"time"

	"github.com/go-telegram/bot/models"

	"yoga_schedule_bot/internal/bot/callback"
	"yoga_schedule_bot/internal/schedule"
	storagemodels "yoga_schedule_bot/internal/storage/models"
)

// Тексты кнопок главного меню и меню редактирования
const (
	BtnStart         = "/start"
	BtnSchedule      = "📅 Расписание"
	BtnSubscriptions = "📋 Запись"
	BtnEditMode      = "✏️ Редактирование"
	BtnNotifications = "🔔 Уведомления вкл/выкл"
	BtnEditDay       = "✏️ Изменить"
	BtnDeleteDay     = "🗑 Удалить"
	BtnExport        = "📥 Экспорт"
	BtnBack          = "🔙 Назад"
)

// CreateMainKeyboard создает главное меню; второй ряд видит только администратор
func CreateMainKeyboard(isAdmin bool) *models.ReplyKeyboardMarkup {
	rows := [][]models.KeyboardButton{
		{{Text: BtnSchedule}, {Text: BtnSubscriptions}},
	}
	if isAdmin {
		rows = append(rows, []models.KeyboardButton{{Text: BtnEditMode}, {Text: BtnNotifications}})
	}

	return &models.ReplyKeyboardMarkup{
		Keyboard:        rows,
		ResizeKeyboard:  true,
		OneTimeKeyboard: false,
		Selective:       true,
	}
}

// CreateEditKeyboard создает меню режима редактирования
func CreateEditKeyboard() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{{Text: BtnEditDay}, {Text: BtnDeleteDay}},
			{{Text: BtnExport}, {Text: BtnBack}},
		},
		ResizeKeyboard:  true,
		OneTimeKeyboard: false,
		Selective:       true,
	}
}

func button(text string, data callback.Data) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, CallbackData: data.Encode()}
}

// CreateNotificationKeyboard создает кнопки записи и отмены для каждого занятия дня
func CreateNotificationKeyboard(sch *storagemodels.Schedule) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton

	if sch.HasMorning() {
		rows = append(rows, []models.InlineKeyboardButton{
			button("📝 Утро", callback.Subscribe(storagemodels.Morning, sch.ID)),
			button("❌ Отмена", callback.Unsubscribe(storagemodels.Morning, sch.ID)),
		})
	}
	if sch.HasEvening() {
		rows = append(rows, []models.InlineKeyboardButton{
			button("📝 Вечер", callback.Subscribe(storagemodels.Evening, sch.ID)),
			button("❌ Отмена", callback.Unsubscribe(storagemodels.Evening, sch.ID)),
		})
	}

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// CreateDayPickerKeyboard создает список дней для правки или удаления
func CreateDayPickerKeyboard(dates []time.Time, pick func(date string) callback.Data) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(dates)+1)

	for _, d := range dates {
		text := fmt.Sprintf("%s (%s)", schedule.RussianDayName(d.Weekday()), d.Format("02.01"))
		rows = append(rows, []models.InlineKeyboardButton{
			button(text, pick(d.Format(storagemodels.DateLayout))),
		})
	}
	rows = append(rows, []models.InlineKeyboardButton{button(BtnBack, callback.BackToEdit())})

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// CreateDeleteConfirmKeyboard создает кнопки подтверждения удаления дня
func CreateDeleteConfirmKeyboard(date string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				button("✅ Да, удалить", callback.ConfirmDelete(date)),
				button("❌ Отмена", callback.CancelDelete()),
			},
		},
	}
}

// CreateViewSubscribersKeyboard создает кнопки просмотра записавшихся по занятиям недели
func CreateViewSubscribersKeyboard(days []schedule.DayRoster) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton

	for _, day := range days {
		dayName := schedule.RussianDayName(day.Date.Weekday())
		for _, class := range day.Classes {
			name := "Утро"
			if class.ClassType == storagemodels.Evening {
				name = "Вечер"
			}
			text := fmt.Sprintf("📋 %s %s (%s) · %d", dayName, name, class.Time, len(class.Names))
			rows = append(rows, []models.InlineKeyboardButton{
				button(text, callback.ViewSubscribers(class.ClassType, class.ScheduleID)),
			})
		}
	}
	rows = append(rows, []models.InlineKeyboardButton{button(BtnBack, callback.BackToMain())})

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}
