package callback

import (
	stderrors "errors"
	"testing"

	"yoga_schedule_bot/internal/storage/models"
	"yoga_schedule_bot/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Data
	}{
		{"subscribe_morning_12", Data{Action: ActionSubscribe, ClassType: models.Morning, ScheduleID: 12}},
		{"unsubscribe_evening_7", Data{Action: ActionUnsubscribe, ClassType: models.Evening, ScheduleID: 7}},
		{"view_evening_3", Data{Action: ActionViewSubscribers, ClassType: models.Evening, ScheduleID: 3}},
		{"edit_day_2025-03-05", Data{Action: ActionEditDay, Date: "2025-03-05"}},
		{"delete_day_2025-03-05", Data{Action: ActionDeleteDay, Date: "2025-03-05"}},
		{"confirm_delete_2025-03-05", Data{Action: ActionConfirmDelete, Date: "2025-03-05"}},
		{"cancel_delete", Data{Action: ActionCancelDelete}},
		{"back_to_main", Data{Action: ActionBackToMain}},
		{"back_to_edit", Data{Action: ActionBackToEdit}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
			if enc := got.Encode(); enc != tt.raw {
				t.Errorf("Encode() = %q, want %q", enc, tt.raw)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, raw := range []string{
		"",
		"DATE:2025-03-05",
		"subscribe_noon_1",
		"subscribe_morning_",
		"subscribe_morning_abc",
		"subscribe_morning_-1",
		"subscribe_morning",
		"delete_day_tomorrow",
		"confirm_delete_2025-13-01",
		"back_to_nowhere",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := Parse(raw)
			if err == nil {
				t.Fatalf("Parse(%q) should fail", raw)
			}
			if !stderrors.Is(err, errors.ErrInvalidCallback) {
				t.Errorf("expected INVALID_CALLBACK, got %v", err)
			}
		})
	}
}

func TestEncode_FitsTelegramLimit(t *testing.T) {
	longest := []Data{
		Unsubscribe(models.Evening, 9223372036854775807),
		ConfirmDelete("2025-12-31"),
	}
	for _, d := range longest {
		if n := len(d.Encode()); n > 64 {
			t.Errorf("%s is %d bytes, Telegram allows 64", d, n)
		}
	}
}
