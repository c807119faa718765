package errors

import (
	stderrors "errors"
	"fmt"
)

// BotError представляет ошибку бота с кодом и контекстом
type BotError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Err     error       `json:"-"`
	Context interface{} `json:"context,omitempty"`
}

// Error реализует интерфейс error
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap позволяет использовать errors.Is и errors.As
func (e *BotError) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по коду, чтобы копии из WithError/WithContext
// совпадали с предопределенными значениями
func (e *BotError) Is(target error) bool {
	t, ok := target.(*BotError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithContext добавляет контекст к ошибке
func (e *BotError) WithContext(ctx interface{}) *BotError {
	return &BotError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Context: ctx,
	}
}

// WithError добавляет underlying ошибку
func (e *BotError) WithError(err error) *BotError {
	return &BotError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
		Context: e.Context,
	}
}

// Предопределенные ошибки
var (
	// Ошибки расписания
	ErrScheduleNotFound = &BotError{
		Code:    "SCHEDULE_NOT_FOUND",
		Message: "расписание на выбранную дату не найдено",
	}

	ErrSlotNotOffered = &BotError{
		Code:    "SLOT_NOT_OFFERED",
		Message: "в этот день нет такого занятия",
	}

	// Ошибки валидации
	ErrInvalidCallback = &BotError{
		Code:    "INVALID_CALLBACK",
		Message: "некорректные данные кнопки",
	}

	ErrInvalidDate = &BotError{
		Code:    "INVALID_DATE",
		Message: "некорректная дата",
	}

	ErrInvalidTime = &BotError{
		Code:    "INVALID_TIME",
		Message: "некорректное время",
	}

	ErrInvalidScheduleID = &BotError{
		Code:    "INVALID_SCHEDULE_ID",
		Message: "некорректный ID расписания",
	}

	ErrInvalidClassType = &BotError{
		Code:    "INVALID_CLASS_TYPE",
		Message: "некорректный тип занятия",
	}

	ErrInvalidDayEdit = &BotError{
		Code:    "INVALID_DAY_EDIT",
		Message: "не удалось разобрать новое расписание",
	}

	// Системные ошибки
	ErrStorageUnavailable = &BotError{
		Code:    "STORAGE_UNAVAILABLE",
		Message: "ошибка обращения к хранилищу",
	}

	ErrConfigurationInvalid = &BotError{
		Code:    "CONFIGURATION_INVALID",
		Message: "некорректная конфигурация",
	}

	ErrTelegramAPI = &BotError{
		Code:    "TELEGRAM_API",
		Message: "ошибка Telegram API",
	}

	ErrAccessDenied = &BotError{
		Code:    "ACCESS_DENIED",
		Message: "нет доступа к этой функции",
	}
)

// NewBotError создает новую ошибку бота
func NewBotError(code, message string) *BotError {
	return &BotError{
		Code:    code,
		Message: message,
	}
}

// Wrap оборачивает обычную ошибку в BotError
func Wrap(err error, code, message string) *BotError {
	return &BotError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsBotError проверяет, является ли ошибка BotError (в том числе обернутой)
func IsBotError(err error) bool {
	_, ok := GetBotError(err)
	return ok
}

// GetBotError извлекает BotError из цепочки ошибок
func GetBotError(err error) (*BotError, bool) {
	var botErr *BotError
	if stderrors.As(err, &botErr) {
		return botErr, true
	}
	return nil, false
}

// Code возвращает код ошибки или "INTERNAL" для посторонних ошибок
func Code(err error) string {
	if botErr, ok := GetBotError(err); ok {
		return botErr.Code
	}
	return "INTERNAL"
}
