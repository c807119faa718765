package models

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout формат даты расписания в хранилище
const DateLayout = "2006-01-02"

// ClassType тип занятия: утреннее или вечернее
type ClassType string

const (
	Morning ClassType = "MORNING"
	Evening ClassType = "EVENING"
)

// ParseClassType разбирает тип занятия без учета регистра ("morning", "EVENING")
func ParseClassType(s string) (ClassType, bool) {
	switch ClassType(strings.ToUpper(s)) {
	case Morning:
		return Morning, true
	case Evening:
		return Evening, true
	}
	return "", false
}

// Lower возвращает тип в нижнем регистре, как он пишется в данных кнопок
func (c ClassType) Lower() string {
	return strings.ToLower(string(c))
}

// Ключи настроек бота
const (
	SettingNotificationsEnabled = "notifications_enabled"
)

// Schedule представляет один день расписания
type Schedule struct {
	ID           int64      `json:"id,omitempty" db:"id"`
	Date         string     `json:"date" db:"date"`
	MorningTime  *string    `json:"morning_time" db:"morning_time"`
	MorningClass *string    `json:"morning_class" db:"morning_class"`
	EveningTime  *string    `json:"evening_time" db:"evening_time"`
	EveningClass *string    `json:"evening_class" db:"evening_class"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedAt    *time.Time `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// Normalize приводит день к каноническому виду: у выходного нет слотов,
// у слота без времени нет названия
func (s *Schedule) Normalize() {
	if !s.IsActive {
		s.MorningTime, s.MorningClass = nil, nil
		s.EveningTime, s.EveningClass = nil, nil
		return
	}
	if isBlank(s.MorningTime) {
		s.MorningTime, s.MorningClass = nil, nil
	}
	if isBlank(s.EveningTime) {
		s.EveningTime, s.EveningClass = nil, nil
	}
}

// HasMorning сообщает, проводится ли утреннее занятие
func (s *Schedule) HasMorning() bool {
	return s.IsActive && !isBlank(s.MorningTime)
}

// HasEvening сообщает, проводится ли вечернее занятие
func (s *Schedule) HasEvening() bool {
	return s.IsActive && !isBlank(s.EveningTime)
}

// Offers сообщает, проводится ли занятие указанного типа
func (s *Schedule) Offers(ct ClassType) bool {
	switch ct {
	case Morning:
		return s.HasMorning()
	case Evening:
		return s.HasEvening()
	}
	return false
}

// Slot возвращает время и название занятия указанного типа
func (s *Schedule) Slot(ct ClassType) (clock, label string) {
	switch ct {
	case Morning:
		return deref(s.MorningTime), deref(s.MorningClass)
	case Evening:
		return deref(s.EveningTime), deref(s.EveningClass)
	}
	return "", ""
}

// ParsedDate возвращает дату дня в указанном часовом поясе
func (s *Schedule) ParsedDate(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s.Date, loc)
}

// BotUser представляет пользователя, который хоть раз писал боту
type BotUser struct {
	ID         int64      `json:"id,omitempty" db:"id"`
	TelegramID int64      `json:"telegram_id" db:"telegram_id"`
	FirstName  *string    `json:"first_name" db:"first_name"`
	LastName   *string    `json:"last_name" db:"last_name"`
	Username   *string    `json:"username" db:"username"`
	CreatedAt  *time.Time `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// DisplayName возвращает имя для списков записавшихся
func (u *BotUser) DisplayName() string {
	if !isBlank(u.Username) {
		return "@" + *u.Username
	}
	first, last := strings.TrimSpace(deref(u.FirstName)), strings.TrimSpace(deref(u.LastName))
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	}
	return FallbackName(u.TelegramID)
}

// FallbackName имя пользователя, которого нет в базе
func FallbackName(telegramID int64) string {
	return "Пользователь " + strconv.FormatInt(telegramID, 10)
}

// Subscription представляет запись пользователя на занятие
type Subscription struct {
	ID           int64      `json:"id,omitempty" db:"id"`
	TelegramID   int64      `json:"telegram_id" db:"telegram_id"`
	ScheduleID   int64      `json:"schedule_id" db:"schedule_id"`
	ClassType    ClassType  `json:"class_type" db:"class_type"`
	ClassDate    string     `json:"class_date" db:"class_date"`
	SubscribedAt *time.Time `json:"subscribed_at,omitempty" db:"subscribed_at"`
}

// Setting представляет пару ключ/значение настроек бота
type Setting struct {
	Key       string     `json:"key" db:"key"`
	Value     string     `json:"value" db:"value"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// StringPtr возвращает указатель на строку, пустая строка дает nil
func StringPtr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
