package validation

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"yoga_schedule_bot/internal/storage/models"
	"yoga_schedule_bot/pkg/errors"
)

// Регулярные выражения для валидации
var (
	isoDateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	ruDateRegex  = regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4}$`)
	timeRegex    = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
)

// ValidateScheduleID валидирует ID дня расписания из данных кнопки
func ValidateScheduleID(idStr string) (int64, error) {
	if idStr == "" {
		return 0, errors.ErrInvalidScheduleID.WithContext("ID расписания не может быть пустым")
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, errors.ErrInvalidScheduleID.WithError(err).WithContext(map[string]interface{}{
			"input": idStr,
		})
	}

	if id <= 0 {
		return 0, errors.ErrInvalidScheduleID.WithContext(map[string]interface{}{
			"input":  idStr,
			"reason": "ID должен быть положительным числом",
		})
	}

	return id, nil
}

// ValidateDate валидирует дату в формате YYYY-MM-DD
func ValidateDate(dateStr string) (time.Time, error) {
	if dateStr == "" {
		return time.Time{}, errors.ErrInvalidDate.WithContext("дата не может быть пустой")
	}

	if !isoDateRegex.MatchString(dateStr) {
		return time.Time{}, errors.ErrInvalidDate.WithContext(map[string]interface{}{
			"date":   dateStr,
			"reason": "дата должна быть в формате YYYY-MM-DD",
		})
	}

	date, err := time.Parse(models.DateLayout, dateStr)
	if err != nil {
		return time.Time{}, errors.ErrInvalidDate.WithError(err).WithContext(map[string]interface{}{
			"date": dateStr,
		})
	}

	return date, nil
}

// ParseUserDate разбирает дату, введенную человеком (ДД.ММ.ГГГГ или ГГГГ-ММ-ДД),
// и возвращает ее в формате хранилища
func ParseUserDate(input string) (string, error) {
	input = strings.TrimSpace(input)

	if ruDateRegex.MatchString(input) {
		date, err := time.Parse("2.1.2006", input)
		if err != nil {
			return "", errors.ErrInvalidDate.WithError(err).WithContext(map[string]interface{}{
				"date": input,
			})
		}
		return date.Format(models.DateLayout), nil
	}

	date, err := ValidateDate(input)
	if err != nil {
		return "", err
	}
	return date.Format(models.DateLayout), nil
}

// ValidateClockTime валидирует время занятия и приводит его к виду HH:MM
func ValidateClockTime(timeStr string) (string, error) {
	if timeStr == "" {
		return "", errors.ErrInvalidTime.WithContext("время не может быть пустым")
	}

	if !timeRegex.MatchString(timeStr) {
		return "", errors.ErrInvalidTime.WithContext(map[string]interface{}{
			"time":   timeStr,
			"reason": "время должно быть в формате HH:MM",
		})
	}

	parsed, err := time.Parse("15:04", leftPadHour(timeStr))
	if err != nil {
		return "", errors.ErrInvalidTime.WithError(err).WithContext(map[string]interface{}{
			"time": timeStr,
		})
	}

	return parsed.Format("15:04"), nil
}

func leftPadHour(s string) string {
	if len(s) == 4 {
		return "0" + s
	}
	return s
}

// ValidateClassType валидирует тип занятия из данных кнопки
func ValidateClassType(s string) (models.ClassType, error) {
	ct, ok := models.ParseClassType(s)
	if !ok {
		return "", errors.ErrInvalidClassType.WithContext(map[string]interface{}{
			"input": s,
		})
	}
	return ct, nil
}

// ValidateChatID валидирует Telegram Chat ID
func ValidateChatID(chatID int64) error {
	if chatID == 0 {
		return errors.NewBotError("INVALID_CHAT_ID", "Chat ID не может быть равен нулю")
	}

	// Отрицательные id у групп и каналов допустимы
	return nil
}

// ValidateWindowDays валидирует глубину окна расписания
func ValidateWindowDays(days int) error {
	if days <= 0 {
		return errors.NewBotError("INVALID_SCHEDULE_DAYS", "количество дней должно быть положительным")
	}

	if days > 366 {
		return errors.NewBotError("INVALID_SCHEDULE_DAYS", "слишком много дней для планирования (максимум 366)")
	}

	return nil
}

// ValidateClassLabel валидирует название занятия
func ValidateClassLabel(label string) error {
	if len([]rune(label)) > 100 {
		return errors.NewBotError("INVALID_CLASS_LABEL", "название занятия слишком длинное (максимум 100 символов)")
	}
	return nil
}
