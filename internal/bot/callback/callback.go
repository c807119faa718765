// Package callback кодирует и разбирает данные inline кнопок.
// Данные разбираются один раз на входе в обработчик.
package callback

import (
	"fmt"
	"strconv"
	"strings"

	"yoga_schedule_bot/internal/storage/models"
	"yoga_schedule_bot/internal/validation"
	"yoga_schedule_bot/pkg/errors"
)

// Action тип действия кнопки
type Action int

const (
	ActionSubscribe Action = iota + 1
	ActionUnsubscribe
	ActionViewSubscribers
	ActionEditDay
	ActionDeleteDay
	ActionConfirmDelete
	ActionCancelDelete
	ActionBackToMain
	ActionBackToEdit
)

func (a Action) String() string {
	switch a {
	case ActionSubscribe:
		return "subscribe"
	case ActionUnsubscribe:
		return "unsubscribe"
	case ActionViewSubscribers:
		return "view"
	case ActionEditDay:
		return "edit_day"
	case ActionDeleteDay:
		return "delete_day"
	case ActionConfirmDelete:
		return "confirm_delete"
	case ActionCancelDelete:
		return "cancel_delete"
	case ActionBackToMain:
		return "back_to_main"
	case ActionBackToEdit:
		return "back_to_edit"
	}
	return "unknown"
}

// Data разобранные данные кнопки
type Data struct {
	Action     Action
	ScheduleID int64
	ClassType  models.ClassType
	Date       string
}

// Encode возвращает строку для поля callback_data
func (d Data) Encode() string {
	switch d.Action {
	case ActionSubscribe, ActionUnsubscribe, ActionViewSubscribers:
		return fmt.Sprintf("%s_%s_%d", d.Action, d.ClassType.Lower(), d.ScheduleID)
	case ActionEditDay, ActionDeleteDay, ActionConfirmDelete:
		return d.Action.String() + "_" + d.Date
	case ActionCancelDelete, ActionBackToMain, ActionBackToEdit:
		return d.Action.String()
	}
	return ""
}

// Конструкторы кнопок

func Subscribe(ct models.ClassType, scheduleID int64) Data {
	return Data{Action: ActionSubscribe, ClassType: ct, ScheduleID: scheduleID}
}

func Unsubscribe(ct models.ClassType, scheduleID int64) Data {
	return Data{Action: ActionUnsubscribe, ClassType: ct, ScheduleID: scheduleID}
}

func ViewSubscribers(ct models.ClassType, scheduleID int64) Data {
	return Data{Action: ActionViewSubscribers, ClassType: ct, ScheduleID: scheduleID}
}

func EditDay(date string) Data { return Data{Action: ActionEditDay, Date: date} }

func DeleteDay(date string) Data { return Data{Action: ActionDeleteDay, Date: date} }

func ConfirmDelete(date string) Data { return Data{Action: ActionConfirmDelete, Date: date} }

func CancelDelete() Data { return Data{Action: ActionCancelDelete} }

func BackToMain() Data { return Data{Action: ActionBackToMain} }

func BackToEdit() Data { return Data{Action: ActionBackToEdit} }

var classPrefixes = []struct {
	prefix string
	action Action
}{
	{"unsubscribe_", ActionUnsubscribe},
	{"subscribe_", ActionSubscribe},
	{"view_", ActionViewSubscribers},
}

var datePrefixes = []struct {
	prefix string
	action Action
}{
	{"edit_day_", ActionEditDay},
	{"delete_day_", ActionDeleteDay},
	{"confirm_delete_", ActionConfirmDelete},
}

// Parse разбирает callback_data; неизвестные и битые данные дают ErrInvalidCallback
func Parse(raw string) (Data, error) {
	switch raw {
	case "cancel_delete":
		return CancelDelete(), nil
	case "back_to_main":
		return BackToMain(), nil
	case "back_to_edit":
		return BackToEdit(), nil
	}

	for _, p := range classPrefixes {
		if rest, ok := strings.CutPrefix(raw, p.prefix); ok {
			return parseClassPayload(raw, p.action, rest)
		}
	}

	for _, p := range datePrefixes {
		if rest, ok := strings.CutPrefix(raw, p.prefix); ok {
			if _, err := validation.ValidateDate(rest); err != nil {
				return Data{}, invalid(raw, err)
			}
			return Data{Action: p.action, Date: rest}, nil
		}
	}

	return Data{}, invalid(raw, nil)
}

func parseClassPayload(raw string, action Action, rest string) (Data, error) {
	typ, idStr, ok := strings.Cut(rest, "_")
	if !ok {
		return Data{}, invalid(raw, nil)
	}

	ct, err := validation.ValidateClassType(typ)
	if err != nil {
		return Data{}, invalid(raw, err)
	}

	id, err := validation.ValidateScheduleID(idStr)
	if err != nil {
		return Data{}, invalid(raw, err)
	}

	return Data{Action: action, ClassType: ct, ScheduleID: id}, nil
}

func invalid(raw string, err error) error {
	e := errors.ErrInvalidCallback.WithContext(map[string]interface{}{"data": raw})
	if err != nil {
		e = e.WithError(err)
	}
	return e
}

// String нужен для логов
func (d Data) String() string {
	if s := d.Encode(); s != "" {
		return s
	}
	return "invalid(" + strconv.Itoa(int(d.Action)) + ")"
}
