package schedule

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"yoga_schedule_bot/internal/storage"
	"yoga_schedule_bot/internal/storage/models"
	"yoga_schedule_bot/pkg/errors"
	"yoga_schedule_bot/pkg/logger"
	"yoga_schedule_bot/pkg/metrics"
)

// Service ведет расписание студии и записи на занятия
type Service struct {
	store      storage.Storage
	log        *logger.Logger
	loc        *time.Location
	windowDays int
	now        func() time.Time
}

// NewService создает сервис расписания
func NewService(store storage.Storage, log *logger.Logger, loc *time.Location, windowDays int) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:      store,
		log:        log.Component("schedule"),
		loc:        loc,
		windowDays: windowDays,
		now:        time.Now,
	}
}

// WithClock подменяет источник времени (для тестов)
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Location возвращает часовой пояс студии
func (s *Service) Location() *time.Location {
	return s.loc
}

// Today возвращает начало сегодняшнего дня в часовом поясе студии
func (s *Service) Today() time.Time {
	n := s.now().In(s.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, s.loc)
}

// Tomorrow возвращает начало завтрашнего дня
func (s *Service) Tomorrow() time.Time {
	return s.Today().AddDate(0, 0, 1)
}

// GetScheduleForDate возвращает день расписания; (nil, nil) если строки нет
func (s *Service) GetScheduleForDate(ctx context.Context, date time.Time) (*models.Schedule, error) {
	return s.store.GetScheduleByDate(ctx, date.Format(models.DateLayout))
}

// GetScheduleWindow возвращает дни в диапазоне [start, start+6] по возрастанию
func (s *Service) GetScheduleWindow(ctx context.Context, start time.Time) ([]*models.Schedule, error) {
	from := start.Format(models.DateLayout)
	to := start.AddDate(0, 0, 6).Format(models.DateLayout)
	return s.store.GetSchedulesBetween(ctx, from, to)
}

// InitResult итог заполнения окна расписания
type InitResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// EnsureDefaultScheduleWindow создает дни по недельной сетке на windowDays дней вперед.
// Существующие дни не трогаются; ошибка по одному дню не останавливает остальные.
func (s *Service) EnsureDefaultScheduleWindow(ctx context.Context) (InitResult, error) {
	var result InitResult

	start := s.Today()
	end := start.AddDate(0, 0, s.windowDays-1)

	existing, err := s.store.GetSchedulesBetween(ctx, start.Format(models.DateLayout), end.Format(models.DateLayout))
	if err != nil {
		return result, fmt.Errorf("failed to load schedule window: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, d := range existing {
		have[d.Date] = true
	}

	for i := 0; i < s.windowDays; i++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		date := start.AddDate(0, 0, i)
		key := date.Format(models.DateLayout)
		if have[key] {
			result.Skipped++
			continue
		}

		if _, err := s.store.CreateSchedule(ctx, DefaultFor(date)); err != nil {
			result.Failed++
			s.log.Error("Failed to create default schedule day", logger.String("date", key), logger.Error(err))
			continue
		}
		result.Created++
		metrics.RecordScheduleDayCreated()
	}

	s.log.Info("Schedule window ensured",
		logger.Int("created", result.Created),
		logger.Int("skipped", result.Skipped),
		logger.Int("failed", result.Failed),
	)
	return result, nil
}

// SetDayToRest переводит день в выходной: слоты очищаются, строка остается
func (s *Service) SetDayToRest(ctx context.Context, date string) (*models.Schedule, error) {
	sch, err := s.upsertDay(ctx, &models.Schedule{Date: date, IsActive: false})
	if err != nil {
		return nil, err
	}
	metrics.RecordScheduleDayRested()
	s.log.Info("Day set to rest", logger.String("date", date))
	return sch, nil
}

// UpdateDay заменяет слоты дня содержимым правки администратора
func (s *Service) UpdateDay(ctx context.Context, edit *DayEdit) (*models.Schedule, error) {
	if edit.Rest {
		return s.SetDayToRest(ctx, edit.Date)
	}
	sch, err := s.upsertDay(ctx, edit.Schedule())
	if err != nil {
		return nil, err
	}
	s.log.Info("Day updated", logger.String("date", edit.Date),
		logger.Bool("morning", sch.HasMorning()), logger.Bool("evening", sch.HasEvening()))
	return sch, nil
}

// upsertDay обновляет день по дате и создает его, если строки еще нет
func (s *Service) upsertDay(ctx context.Context, sch *models.Schedule) (*models.Schedule, error) {
	updated, err := s.store.UpdateSchedule(ctx, sch)
	if err != nil {
		return nil, err
	}
	if updated != nil {
		return updated, nil
	}
	return s.store.CreateSchedule(ctx, sch)
}

// WeeklyScheduleText рендерит расписание на 7 дней начиная с сегодня
func (s *Service) WeeklyScheduleText(ctx context.Context) (string, error) {
	start := s.Today()
	days, err := s.GetScheduleWindow(ctx, start)
	if err != nil {
		return "", err
	}
	return FormatWeek(start, days), nil
}

// Subscribe записывает пользователя на занятие; повторная запись ничего не меняет
func (s *Service) Subscribe(ctx context.Context, userID, scheduleID int64, classType models.ClassType, classDate string) error {
	err := s.store.Subscribe(ctx, &models.Subscription{
		TelegramID: userID,
		ScheduleID: scheduleID,
		ClassType:  classType,
		ClassDate:  classDate,
	})
	if err != nil {
		return err
	}
	metrics.RecordSubscription("subscribe", string(classType))
	return nil
}

// SubscribeToClass записывает пользователя на занятие дня scheduleID,
// проверяя, что день существует и занятие в нем проводится
func (s *Service) SubscribeToClass(ctx context.Context, userID, scheduleID int64, classType models.ClassType) (*models.Schedule, error) {
	sch, err := s.store.GetScheduleByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if sch == nil {
		return nil, errors.ErrScheduleNotFound.WithContext(map[string]interface{}{"schedule_id": scheduleID})
	}
	if !sch.Offers(classType) {
		return nil, errors.ErrSlotNotOffered.WithContext(map[string]interface{}{
			"schedule_id": scheduleID,
			"class_type":  classType,
		})
	}
	if err := s.Subscribe(ctx, userID, scheduleID, classType, sch.Date); err != nil {
		return nil, err
	}
	return sch, nil
}

// Unsubscribe удаляет записи пользователя на занятие
func (s *Service) Unsubscribe(ctx context.Context, userID, scheduleID int64, classType models.ClassType) error {
	if err := s.store.Unsubscribe(ctx, userID, scheduleID, classType); err != nil {
		return err
	}
	metrics.RecordSubscription("unsubscribe", string(classType))
	return nil
}

// ListSubscribers возвращает записи на занятие в порядке хранилища
func (s *Service) ListSubscribers(ctx context.Context, scheduleID int64, classType models.ClassType) ([]*models.Subscription, error) {
	return s.store.ListSubscriptions(ctx, scheduleID, classType)
}

// SubscriberNames возвращает имена записавшихся; пользователи ищутся одним запросом
func (s *Service) SubscriberNames(ctx context.Context, scheduleID int64, classType models.ClassType) ([]string, error) {
	subs, err := s.ListSubscribers(ctx, scheduleID, classType)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, nil
	}

	seen := make(map[int64]bool, len(subs))
	ids := make([]int64, 0, len(subs))
	for _, sub := range subs {
		if !seen[sub.TelegramID] {
			seen[sub.TelegramID] = true
			ids = append(ids, sub.TelegramID)
		}
	}

	users, err := s.store.GetUsersByTelegramIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*models.BotUser, len(users))
	for _, u := range users {
		byID[u.TelegramID] = u
	}

	names := make([]string, len(subs))
	for i, sub := range subs {
		if u := byID[sub.TelegramID]; u != nil {
			names[i] = u.DisplayName()
		} else {
			names[i] = models.FallbackName(sub.TelegramID)
		}
	}
	return names, nil
}

// FormatSubscriberList возвращает нумерованный список записавшихся
// или "— Нет записей", если никого нет
func (s *Service) FormatSubscriberList(ctx context.Context, scheduleID int64, classType models.ClassType) (string, error) {
	names, err := s.SubscriberNames(ctx, scheduleID, classType)
	if err != nil {
		return "", err
	}
	return FormatNames(names), nil
}

// ClassRoster одно занятие дня со списком записавшихся
type ClassRoster struct {
	ScheduleID int64
	ClassType  models.ClassType
	Time       string
	Label      string
	Names      []string
}

// DayRoster день с занятиями и записавшимися
type DayRoster struct {
	Date    time.Time
	Classes []ClassRoster
}

// Roster собирает записавшихся на days дней начиная со start
func (s *Service) Roster(ctx context.Context, start time.Time, days int) ([]DayRoster, error) {
	end := start.AddDate(0, 0, days-1)
	rows, err := s.store.GetSchedulesBetween(ctx, start.Format(models.DateLayout), end.Format(models.DateLayout))
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]*models.Schedule, len(rows))
	for _, r := range rows {
		byDate[r.Date] = r
	}

	out := make([]DayRoster, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i)
		day := DayRoster{Date: date}

		if sch := byDate[date.Format(models.DateLayout)]; sch != nil {
			for _, ct := range []models.ClassType{models.Morning, models.Evening} {
				if !sch.Offers(ct) {
					continue
				}
				names, err := s.SubscriberNames(ctx, sch.ID, ct)
				if err != nil {
					return nil, err
				}
				clock, label := sch.Slot(ct)
				day.Classes = append(day.Classes, ClassRoster{
					ScheduleID: sch.ID,
					ClassType:  ct,
					Time:       clock,
					Label:      label,
					Names:      names,
				})
			}
		}
		out = append(out, day)
	}
	return out, nil
}

// SubscriptionsOverviewText рендерит записавшихся на сегодня и завтра
func (s *Service) SubscriptionsOverviewText(ctx context.Context) (string, error) {
	days, err := s.Roster(ctx, s.Today(), 2)
	if err != nil {
		return "", err
	}
	return FormatOverview(days), nil
}

// UpcomingDays возвращает даты ближайшей недели вместе со строками расписания
func (s *Service) UpcomingDays(ctx context.Context) ([]time.Time, map[string]*models.Schedule, error) {
	start := s.Today()
	rows, err := s.GetScheduleWindow(ctx, start)
	if err != nil {
		return nil, nil, err
	}
	byDate := make(map[string]*models.Schedule, len(rows))
	for _, r := range rows {
		byDate[r.Date] = r
	}
	dates := make([]time.Time, 7)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return dates, byDate, nil
}

// GetScheduleByID возвращает день по идентификатору; nil, если его нет
func (s *Service) GetScheduleByID(ctx context.Context, id int64) (*models.Schedule, error) {
	return s.store.GetScheduleByID(ctx, id)
}

// SaveUser сохраняет пользователя при каждом обращении к боту
func (s *Service) SaveUser(ctx context.Context, user *models.BotUser) error {
	return s.store.SaveUser(ctx, user)
}

// NotificationsEnabled читает флаг ежедневной рассылки; по умолчанию включено
func (s *Service) NotificationsEnabled(ctx context.Context) (bool, error) {
	value, ok, err := s.store.GetSetting(ctx, models.SettingNotificationsEnabled)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	enabled, err := strconv.ParseBool(value)
	if err != nil {
		s.log.Warn("Malformed notifications setting, treating as enabled", logger.String("value", value))
		return true, nil
	}
	return enabled, nil
}

// SetNotificationsEnabled сохраняет флаг ежедневной рассылки
func (s *Service) SetNotificationsEnabled(ctx context.Context, enabled bool) error {
	return s.store.SetSetting(ctx, models.SettingNotificationsEnabled, strconv.FormatBool(enabled))
}

// ToggleNotifications переключает флаг рассылки и возвращает новое значение
func (s *Service) ToggleNotifications(ctx context.Context) (bool, error) {
	enabled, err := s.NotificationsEnabled(ctx)
	if err != nil {
		return false, err
	}
	if err := s.SetNotificationsEnabled(ctx, !enabled); err != nil {
		return false, err
	}
	s.log.Info("Notifications toggled", logger.Bool("enabled", !enabled))
	return !enabled, nil
}

// Notification напоминание на конкретную дату
type Notification struct {
	Date     time.Time
	Schedule *models.Schedule
	Text     string
}

// HasClasses сообщает, есть ли занятия для кнопок записи
func (n *Notification) HasClasses() bool {
	return n.Schedule != nil && (n.Schedule.HasMorning() || n.Schedule.HasEvening())
}

// NotificationFor строит напоминание на дату
func (s *Service) NotificationFor(ctx context.Context, date time.Time) (*Notification, error) {
	sch, err := s.GetScheduleForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	return &Notification{Date: date, Schedule: sch, Text: FormatNotification(date, sch)}, nil
}

// NextScheduledDays возвращает ближайшие активные дни (для служебного эндпоинта)
func (s *Service) NextScheduledDays(ctx context.Context, limit int) ([]*models.Schedule, error) {
	rows, err := s.GetScheduleWindow(ctx, s.Today())
	if err != nil {
		return nil, err
	}
	active := make([]*models.Schedule, 0, len(rows))
	for _, r := range rows {
		if r.HasMorning() || r.HasEvening() {
			active = append(active, r)
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].Date < active[j].Date })
	if len(active) > limit {
		active = active[:limit]
	}
	return active, nil
}
