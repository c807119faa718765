package schedule

import (
	"strings"
	"testing"
	"time"

	"yoga_schedule_bot/internal/storage/models"
)

func TestRussianDayName(t *testing.T) {
	want := []string{"Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота", "Воскресенье"}
	for i, name := range want {
		if got := RussianDayName(monday.AddDate(0, 0, i).Weekday()); got != name {
			t.Errorf("day %d: got %s, want %s", i, got, name)
		}
	}
}

func TestFormatWeek_EscapesLabels(t *testing.T) {
	label := "Йога <для всех> & друзей"
	clock := "09:00"
	days := []*models.Schedule{{Date: "2025-03-03", MorningTime: &clock, MorningClass: &label, IsActive: true}}

	text := FormatWeek(monday, days)
	if !strings.Contains(text, "🌅 09:00 - Йога &lt;для всех&gt; &amp; друзей") {
		t.Errorf("label must be HTML-escaped:\n%s", text)
	}
	if strings.Count(text, "🔸") != 7 {
		t.Errorf("expected 7 day headings:\n%s", text)
	}
}

func TestFormatWeek_InactiveWithLeftoverIsRest(t *testing.T) {
	clock := "08:00"
	days := []*models.Schedule{{Date: "2025-03-03", MorningTime: &clock, IsActive: false}}

	text := FormatWeek(monday, days)
	if strings.Contains(text, "🌅") {
		t.Errorf("inactive day must render as rest:\n%s", text)
	}
}

func TestFormatNames(t *testing.T) {
	if got := FormatNames(nil); got != EmptyListSentinel {
		t.Errorf("empty list: got %q", got)
	}
	if got := FormatNames([]string{"@a", "Б"}); got != "1. @a\n2. Б" {
		t.Errorf("numbered list: got %q", got)
	}
}

func TestFormatDayCard(t *testing.T) {
	date := time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC)
	card := FormatDayCard(date, nil)
	if !strings.Contains(card, "Суббота, 08.03.2025") || !strings.Contains(card, RestDayLine) {
		t.Errorf("unexpected card:\n%s", card)
	}

	card = FormatDayCard(monday, DefaultFor(monday))
	if !strings.Contains(card, "🌅 Утро: 08:00") || !strings.Contains(card, "🌇 Вечер: 17:00") {
		t.Errorf("unexpected card:\n%s", card)
	}
}
