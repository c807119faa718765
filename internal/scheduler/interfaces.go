package scheduler

import (
	"context"
	"time"

	"yoga_schedule_bot/internal/schedule"
)

// Теги фоновых задач
const (
	JobNotification = "daily_notification"
	JobScheduleInit = "schedule_init"
	JobKeepAlive    = "keep_alive"
)

// NotificationSender определяет интерфейс для отправки ежедневного напоминания
type NotificationSender interface {
	// SendDailyNotification отправляет в канал напоминание о завтрашних занятиях
	SendDailyNotification(ctx context.Context) error
}

// WindowInitializer заполняет расписание на ближайшие дни
type WindowInitializer interface {
	// EnsureDefaultScheduleWindow создает недостающие дни по недельной сетке
	EnsureDefaultScheduleWindow(ctx context.Context) (schedule.InitResult, error)
}

// JobScheduler определяет интерфейс планировщика фоновых задач
type JobScheduler interface {
	// Start регистрирует задачи и запускает планировщик
	Start(ctx context.Context) error

	// Stop останавливает планировщик
	Stop() error

	// RunNow запускает задачу вне расписания
	RunNow(job string) error

	// NextRun возвращает время следующего запуска задачи
	NextRun(job string) (time.Time, bool)
}
