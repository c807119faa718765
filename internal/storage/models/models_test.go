package models

import "testing"

func ptr(s string) *string { return &s }

func TestSchedule_NormalizeRestDay(t *testing.T) {
	s := &Schedule{
		Date:         "2025-03-08",
		MorningTime:  ptr("08:00"),
		MorningClass: ptr("-Отдых-"),
		EveningClass: ptr("x"),
		IsActive:     false,
	}
	s.Normalize()

	if s.MorningTime != nil || s.MorningClass != nil || s.EveningTime != nil || s.EveningClass != nil {
		t.Errorf("inactive day must have no slots, got %+v", s)
	}
}

func TestSchedule_NormalizeDropsLabelWithoutTime(t *testing.T) {
	s := &Schedule{
		MorningTime:  ptr("08:00"),
		MorningClass: ptr("Утро"),
		EveningTime:  ptr("  "),
		EveningClass: ptr("Вечер"),
		IsActive:     true,
	}
	s.Normalize()

	if !s.HasMorning() {
		t.Error("morning slot should survive")
	}
	if s.EveningTime != nil || s.EveningClass != nil {
		t.Errorf("evening label without time must be dropped, got %+v", s)
	}
	if s.Offers(Evening) {
		t.Error("evening is not offered")
	}
}

func TestBotUser_DisplayName(t *testing.T) {
	tests := []struct {
		name string
		user BotUser
		want string
	}{
		{"username wins", BotUser{TelegramID: 1, Username: ptr("yogi"), FirstName: ptr("Анна")}, "@yogi"},
		{"first and last", BotUser{TelegramID: 1, FirstName: ptr("Анна"), LastName: ptr("Петрова")}, "Анна Петрова"},
		{"first only", BotUser{TelegramID: 1, FirstName: ptr("Анна")}, "Анна"},
		{"blank username", BotUser{TelegramID: 1, Username: ptr(""), FirstName: ptr("Анна")}, "Анна"},
		{"nothing", BotUser{TelegramID: 42}, "Пользователь 42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseClassType(t *testing.T) {
	if ct, ok := ParseClassType("morning"); !ok || ct != Morning {
		t.Errorf("ParseClassType(morning) = %v, %v", ct, ok)
	}
	if ct, ok := ParseClassType("EVENING"); !ok || ct != Evening {
		t.Errorf("ParseClassType(EVENING) = %v, %v", ct, ok)
	}
	if _, ok := ParseClassType("noon"); ok {
		t.Error("unknown class type must be rejected")
	}
	if Morning.Lower() != "morning" {
		t.Errorf("Lower() = %s", Morning.Lower())
	}
}
