package schedule

import (
	"time"

	"yoga_schedule_bot/internal/storage/models"
)

// Стандартные занятия студии
const (
	DefaultMorningTime  = "08:00"
	DefaultMorningClass = "МАЙСОР КЛАСС 8:00 - 11:30"
	DefaultEveningTime  = "17:00"
	DefaultEveningClass = "МАЙСОР КЛАСС 17:00 - 20:30"
)

type dayRule struct {
	morning bool
	evening bool
}

// weeklyRules недельная сетка по умолчанию; суббота выходной
var weeklyRules = map[time.Weekday]dayRule{
	time.Monday:    {morning: true, evening: true},
	time.Tuesday:   {morning: true},
	time.Wednesday: {morning: true, evening: true},
	time.Thursday:  {morning: true, evening: true},
	time.Friday:    {morning: true, evening: true},
	time.Saturday:  {},
	time.Sunday:    {morning: true, evening: true},
}

// DefaultFor строит день расписания по недельной сетке
func DefaultFor(date time.Time) *models.Schedule {
	rule := weeklyRules[date.Weekday()]

	sch := &models.Schedule{
		Date:     date.Format(models.DateLayout),
		IsActive: rule.morning || rule.evening,
	}
	if rule.morning {
		sch.MorningTime = models.StringPtr(DefaultMorningTime)
		sch.MorningClass = models.StringPtr(DefaultMorningClass)
	}
	if rule.evening {
		sch.EveningTime = models.StringPtr(DefaultEveningTime)
		sch.EveningClass = models.StringPtr(DefaultEveningClass)
	}
	return sch
}
