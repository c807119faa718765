package schedule

import (
	"fmt"
	"strings"

	"yoga_schedule_bot/internal/storage/models"
	"yoga_schedule_bot/internal/validation"
	"yoga_schedule_bot/pkg/errors"
)

// Slot время и название одного занятия
type Slot struct {
	Time  string
	Label string
}

// DayEdit новое содержимое дня, присланное администратором.
// Слоты, которых нет в правке, удаляются.
type DayEdit struct {
	Date    string
	Rest    bool
	Morning *Slot
	Evening *Slot
}

// Schedule превращает правку в строку расписания
func (e *DayEdit) Schedule() *models.Schedule {
	sch := &models.Schedule{Date: e.Date}
	if e.Rest {
		return sch
	}
	if e.Morning != nil {
		sch.MorningTime = models.StringPtr(e.Morning.Time)
		sch.MorningClass = models.StringPtr(e.Morning.Label)
	}
	if e.Evening != nil {
		sch.EveningTime = models.StringPtr(e.Evening.Time)
		sch.EveningClass = models.StringPtr(e.Evening.Label)
	}
	sch.IsActive = e.Morning != nil || e.Evening != nil
	return sch
}

const restWord = "отдых"

// EditTemplate подсказка администратору с форматом правки дня
func EditTemplate(date string) string {
	return fmt.Sprintf("✏️ Отправьте новое расписание на этот день одним сообщением:\n\n"+
		"<code>%s\nУтро: 08:00 МАЙСОР КЛАСС 8:00 - 11:30\nВечер: 17:00 МАЙСОР КЛАСС 17:00 - 20:30</code>\n\n"+
		"Строку с ненужным занятием можно не писать. Для выходного отправьте:\n<code>%s\nОтдых</code>",
		date, date)
}

// LooksLikeDayEdit быстро проверяет, что первая строка сообщения похожа на дату
func LooksLikeDayEdit(text string) bool {
	first, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	first = strings.TrimSpace(first)
	if fields := strings.Fields(first); len(fields) > 0 {
		first = fields[0]
	}
	_, err := validation.ParseUserDate(first)
	return err == nil
}

// ParseDayEdit разбирает правку дня:
//
//	05.03.2025
//	Утро: 08:00 МАЙСОР КЛАСС 8:00 - 11:30
//	Вечер: 17:00 МАЙСОР КЛАСС 17:00 - 20:30
//
// или дату и слово "Отдых" (на той же или следующей строке)
func ParseDayEdit(text string) (*DayEdit, error) {
	lines := nonEmptyLines(text)
	if len(lines) == 0 {
		return nil, errors.ErrInvalidDayEdit.WithContext("пустое сообщение")
	}

	head := strings.Fields(lines[0])
	date, err := validation.ParseUserDate(head[0])
	if err != nil {
		return nil, errors.ErrInvalidDayEdit.WithError(err)
	}
	edit := &DayEdit{Date: date}

	rest := lines[1:]
	if len(head) > 1 {
		rest = append([]string{strings.Join(head[1:], " ")}, rest...)
	}
	if len(rest) == 0 {
		return nil, errors.ErrInvalidDayEdit.WithContext("нет ни одного занятия")
	}

	if len(rest) == 1 && strings.EqualFold(strings.Trim(rest[0], " -."), restWord) {
		edit.Rest = true
		return edit, nil
	}

	for _, line := range rest {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, errors.ErrInvalidDayEdit.WithContext(map[string]interface{}{
				"line":   line,
				"reason": "ожидается 'Утро: ЧЧ:ММ Название' или 'Вечер: ЧЧ:ММ Название'",
			})
		}

		slot, err := parseSlot(value)
		if err != nil {
			return nil, errors.ErrInvalidDayEdit.WithError(err).WithContext(map[string]interface{}{
				"line": line,
			})
		}

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "утро":
			edit.Morning = slot
		case "вечер":
			edit.Evening = slot
		default:
			return nil, errors.ErrInvalidDayEdit.WithContext(map[string]interface{}{
				"line":   line,
				"reason": "неизвестное занятие " + key,
			})
		}
	}

	return edit, nil
}

func parseSlot(value string) (*Slot, error) {
	fields := strings.Fields(value)
	if len(fields) < 2 {
		return nil, fmt.Errorf("нужно время и название занятия")
	}

	clock, err := validation.ValidateClockTime(fields[0])
	if err != nil {
		return nil, err
	}

	label := strings.Join(fields[1:], " ")
	if err := validation.ValidateClassLabel(label); err != nil {
		return nil, err
	}

	return &Slot{Time: clock, Label: label}, nil
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
