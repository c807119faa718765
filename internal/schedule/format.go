package schedule

import (
	"fmt"
	"html"
	"strings"
	"time"

	"yoga_schedule_bot/internal/storage/models"
)

// Тексты, которые видят пользователи
const (
	RestDayLine       = "😴 Отдых / Занятий нет."
	EmptyListSentinel = "— Нет записей"
	WeeklyHeader      = "📅 <b>Расписание на ближайшие 7 дней:</b>"
	ReminderHeader    = "📣 <b>Напоминание о занятиях!</b>"
	OverviewHeader    = "📋 <b>Список записавшихся (Сегодня и Завтра):</b>"
)

var russianDays = map[time.Weekday]string{
	time.Monday:    "Понедельник",
	time.Tuesday:   "Вторник",
	time.Wednesday: "Среда",
	time.Thursday:  "Четверг",
	time.Friday:    "Пятница",
	time.Saturday:  "Суббота",
	time.Sunday:    "Воскресенье",
}

// RussianDayName возвращает название дня недели по-русски
func RussianDayName(d time.Weekday) string {
	return russianDays[d]
}

// FormatDate форматирует дату как ДД.ММ.ГГГГ
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// FormatWeek рендерит расписание на 7 дней начиная со start.
// Дни без строки в хранилище выводятся как выходные.
func FormatWeek(start time.Time, days []*models.Schedule) string {
	byDate := make(map[string]*models.Schedule, len(days))
	for _, d := range days {
		byDate[d.Date] = d
	}

	var sb strings.Builder
	sb.WriteString(WeeklyHeader)
	sb.WriteString("\n\n")

	for i := 0; i < 7; i++ {
		date := start.AddDate(0, 0, i)
		fmt.Fprintf(&sb, "🔸 <b>%s, %s:</b>\n", RussianDayName(date.Weekday()), FormatDate(date))

		sch := byDate[date.Format(models.DateLayout)]
		if sch == nil || (!sch.HasMorning() && !sch.HasEvening()) {
			sb.WriteString("   " + RestDayLine + "\n\n")
			continue
		}
		if sch.HasMorning() {
			clock, label := sch.Slot(models.Morning)
			fmt.Fprintf(&sb, "   🌅 %s - %s\n", clock, html.EscapeString(label))
		}
		if sch.HasEvening() {
			clock, label := sch.Slot(models.Evening)
			fmt.Fprintf(&sb, "   🌇 %s - %s\n", clock, html.EscapeString(label))
		}
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// FormatDayCard рендерит один день для меню редактирования
func FormatDayCard(date time.Time, sch *models.Schedule) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🗓 <b>%s, %s</b>\n", RussianDayName(date.Weekday()), FormatDate(date))

	if sch == nil || (!sch.HasMorning() && !sch.HasEvening()) {
		sb.WriteString(RestDayLine)
		return sb.String()
	}
	if sch.HasMorning() {
		clock, label := sch.Slot(models.Morning)
		fmt.Fprintf(&sb, "🌅 Утро: %s - %s\n", clock, html.EscapeString(label))
	}
	if sch.HasEvening() {
		clock, label := sch.Slot(models.Evening)
		fmt.Fprintf(&sb, "🌇 Вечер: %s - %s\n", clock, html.EscapeString(label))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatNotification рендерит напоминание о занятиях на дату.
// sch == nil или выходной дают текст "занятий нет".
func FormatNotification(date time.Time, sch *models.Schedule) string {
	if sch == nil || (!sch.HasMorning() && !sch.HasEvening()) {
		return fmt.Sprintf("На завтра (%s) занятий нет. Отдыхаем! 🧘‍♀️", FormatDate(date))
	}

	var sb strings.Builder
	sb.WriteString(ReminderHeader)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "🗓 %s (%s)\n\n", RussianDayName(date.Weekday()), date.Format("02.01"))

	if sch.HasMorning() {
		clock, label := sch.Slot(models.Morning)
		fmt.Fprintf(&sb, "🌅 Утро %s: %s\n", clock, html.EscapeString(label))
	}
	if sch.HasEvening() {
		clock, label := sch.Slot(models.Evening)
		fmt.Fprintf(&sb, "🌇 Вечер %s: %s\n", clock, html.EscapeString(label))
	}
	sb.WriteString("\nЗапишитесь кнопками ниже 👇")
	return sb.String()
}

// FormatNames нумерует имена записавшихся; пустой список дает EmptyListSentinel
func FormatNames(names []string) string {
	if len(names) == 0 {
		return EmptyListSentinel
	}
	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = fmt.Sprintf("%d. %s", i+1, html.EscapeString(name))
	}
	return strings.Join(lines, "\n")
}

// FormatOverview рендерит списки записавшихся на сегодня и завтра
func FormatOverview(days []DayRoster) string {
	var sb strings.Builder
	sb.WriteString(OverviewHeader)
	sb.WriteString("\n\n")

	for i, day := range days {
		label := "СЕГОДНЯ"
		if i > 0 {
			label = "ЗАВТРА"
		}
		fmt.Fprintf(&sb, "🔹 <b>%s %s (%s)</b>\n", label, RussianDayName(day.Date.Weekday()), day.Date.Format("02.01"))

		if len(day.Classes) == 0 {
			sb.WriteString("   <i>Занятий нет.</i>\n\n")
			continue
		}
		for _, class := range day.Classes {
			icon, name := "🌅", "Утро"
			if class.ClassType == models.Evening {
				icon, name = "🌇", "Вечер"
			}
			fmt.Fprintf(&sb, "   %s %s (%s): %s\n", icon, name, class.Time, html.EscapeString(class.Label))
			for _, line := range strings.Split(FormatNames(class.Names), "\n") {
				sb.WriteString("      " + line + "\n")
			}
		}
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}
