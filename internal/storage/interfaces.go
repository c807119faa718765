package storage

import (
	"context"

	"yoga_schedule_bot/internal/storage/models"
)

// ScheduleRepository определяет интерфейс для работы с днями расписания.
// Отсутствие строки возвращается как (nil, nil).
type ScheduleRepository interface {
	GetScheduleByDate(ctx context.Context, date string) (*models.Schedule, error)
	GetScheduleByID(ctx context.Context, id int64) (*models.Schedule, error)
	GetSchedulesBetween(ctx context.Context, from, to string) ([]*models.Schedule, error)
	CreateSchedule(ctx context.Context, s *models.Schedule) (*models.Schedule, error)
	UpdateSchedule(ctx context.Context, s *models.Schedule) (*models.Schedule, error)
}

// UserRepository определяет интерфейс для работы с пользователями
type UserRepository interface {
	SaveUser(ctx context.Context, user *models.BotUser) error
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.BotUser, error)
	GetUsersByTelegramIDs(ctx context.Context, telegramIDs []int64) ([]*models.BotUser, error)
}

// SubscriptionRepository определяет интерфейс для работы с записями на занятия
type SubscriptionRepository interface {
	Subscribe(ctx context.Context, sub *models.Subscription) error
	Unsubscribe(ctx context.Context, telegramID, scheduleID int64, classType models.ClassType) error
	ListSubscriptions(ctx context.Context, scheduleID int64, classType models.ClassType) ([]*models.Subscription, error)
}

// SettingsRepository определяет интерфейс для настроек бота
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Storage объединяет все репозитории в единый интерфейс
type Storage interface {
	ScheduleRepository
	UserRepository
	SubscriptionRepository
	SettingsRepository
	Close() error
	Ping(ctx context.Context) error
}
