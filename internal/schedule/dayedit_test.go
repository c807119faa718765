package schedule

import (
	stderrors "errors"
	"testing"

	"yoga_schedule_bot/pkg/errors"
)

func TestParseDayEdit(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    DayEdit
		wantErr bool
	}{
		{
			name:  "both classes",
			input: "05.03.2025\nУтро: 08:00 МАЙСОР КЛАСС 8:00 - 11:30\nВечер: 17:00 Хатха",
			want: DayEdit{
				Date:    "2025-03-05",
				Morning: &Slot{Time: "08:00", Label: "МАЙСОР КЛАСС 8:00 - 11:30"},
				Evening: &Slot{Time: "17:00", Label: "Хатха"},
			},
		},
		{
			name:  "iso date and short hour",
			input: "2025-03-05\n  утро: 7:30 Ранняя практика  ",
			want: DayEdit{
				Date:    "2025-03-05",
				Morning: &Slot{Time: "07:30", Label: "Ранняя практика"},
			},
		},
		{
			name:  "rest on the next line",
			input: "05.03.2025\nОтдых",
			want:  DayEdit{Date: "2025-03-05", Rest: true},
		},
		{
			name:  "rest on the same line",
			input: "05.03.2025 -Отдых-",
			want:  DayEdit{Date: "2025-03-05", Rest: true},
		},
		{name: "empty", input: "  ", wantErr: true},
		{name: "date only", input: "05.03.2025", wantErr: true},
		{name: "bad date", input: "35.03.2025\nОтдых", wantErr: true},
		{name: "unknown slot", input: "05.03.2025\nОбед: 13:00 Йога", wantErr: true},
		{name: "missing label", input: "05.03.2025\nУтро: 08:00", wantErr: true},
		{name: "bad time", input: "05.03.2025\nУтро: 28:00 Йога", wantErr: true},
		{name: "no colon", input: "05.03.2025\nУтро 08:00 Йога", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDayEdit(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				if !stderrors.Is(err, errors.ErrInvalidDayEdit) {
					t.Errorf("expected INVALID_DAY_EDIT, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Date != tt.want.Date || got.Rest != tt.want.Rest {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			assertSlot(t, "morning", tt.want.Morning, got.Morning)
			assertSlot(t, "evening", tt.want.Evening, got.Evening)
		})
	}
}

func assertSlot(t *testing.T, name string, want, got *Slot) {
	t.Helper()
	if (want == nil) != (got == nil) {
		t.Fatalf("%s slot: want %+v, got %+v", name, want, got)
	}
	if want != nil && *want != *got {
		t.Errorf("%s slot: want %+v, got %+v", name, *want, *got)
	}
}

func TestDayEdit_Schedule(t *testing.T) {
	edit := &DayEdit{Date: "2025-03-05", Evening: &Slot{Time: "17:00", Label: "Хатха"}}
	sch := edit.Schedule()
	if !sch.IsActive || sch.HasMorning() || !sch.HasEvening() {
		t.Errorf("unexpected schedule %+v", sch)
	}

	rest := (&DayEdit{Date: "2025-03-05", Rest: true}).Schedule()
	if rest.IsActive || rest.MorningTime != nil || rest.EveningTime != nil {
		t.Errorf("rest edit must produce an empty inactive day, got %+v", rest)
	}
}

func TestLooksLikeDayEdit(t *testing.T) {
	if !LooksLikeDayEdit("05.03.2025\nОтдых") {
		t.Error("date first line should look like an edit")
	}
	if !LooksLikeDayEdit("2025-03-05 Отдых") {
		t.Error("iso date with trailing word should look like an edit")
	}
	if LooksLikeDayEdit("привет") {
		t.Error("plain text is not an edit")
	}
}
