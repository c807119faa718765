package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestBotError_IsMatchesByCode(t *testing.T) {
	err := ErrScheduleNotFound.WithContext(map[string]string{"date": "2025-03-01"})

	if !stderrors.Is(err, ErrScheduleNotFound) {
		t.Error("copy with context should match the predefined error")
	}
	if stderrors.Is(err, ErrInvalidDate) {
		t.Error("different codes must not match")
	}
}

func TestBotError_UnwrapThroughFmt(t *testing.T) {
	base := stderrors.New("connection refused")
	wrapped := fmt.Errorf("get schedule: %w", ErrStorageUnavailable.WithError(base))

	if !stderrors.Is(wrapped, base) {
		t.Error("underlying error should be reachable")
	}
	if got := Code(wrapped); got != "STORAGE_UNAVAILABLE" {
		t.Errorf("Code() = %s, want STORAGE_UNAVAILABLE", got)
	}
	if !IsBotError(wrapped) {
		t.Error("IsBotError should see through fmt wrapping")
	}
}

func TestCode_ForeignError(t *testing.T) {
	if got := Code(stderrors.New("x")); got != "INTERNAL" {
		t.Errorf("Code() = %s, want INTERNAL", got)
	}
}

func TestBotError_Message(t *testing.T) {
	err := Wrap(stderrors.New("timeout"), "TELEGRAM_API", "send failed")
	if got := err.Error(); got != "TELEGRAM_API: send failed: timeout" {
		t.Errorf("unexpected message: %s", got)
	}
	if got := NewBotError("X", "y").Error(); got != "X: y" {
		t.Errorf("unexpected message: %s", got)
	}
}
