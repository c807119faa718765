package testutils

import (
	"context"
	"io"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"yoga_schedule_bot/pkg/logger"
)

// SetupTestLogger создает тестовый логгер, который ничего не печатает
func SetupTestLogger() *logger.Logger {
	return logger.NewWithWriter(logger.LevelDebug, io.Discard)
}

// TestContext создает контекст для тестов
func TestContext() context.Context {
	return context.Background()
}

// MustLocation загружает часовой пояс или валит тест
func MustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("failed to load location %s: %v", name, err)
	}
	return loc
}

// FakeClock возвращает фиксированное время, которое можно сдвигать
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock создает часы, стоящие на указанном моменте
func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

// Now возвращает текущее время часов
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance сдвигает часы вперед
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// AssertEqual проверяет равенство значений
func AssertEqual(t *testing.T, expected, actual interface{}, msg string) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Errorf("%s: expected %v, got %v", msg, expected, actual)
	}
}

// AssertNotEqual проверяет неравенство значений
func AssertNotEqual(t *testing.T, unexpected, actual interface{}, msg string) {
	t.Helper()
	if reflect.DeepEqual(unexpected, actual) {
		t.Errorf("%s: did not expect %v", msg, actual)
	}
}

// AssertNoError проверяет отсутствие ошибки
func AssertNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", msg, err)
	}
}

// AssertError проверяет наличие ошибки
func AssertError(t *testing.T, err error, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error, got nil", msg)
	}
}

// AssertTrue проверяет истинность условия
func AssertTrue(t *testing.T, cond bool, msg string) {
	t.Helper()
	if !cond {
		t.Errorf("%s: expected true", msg)
	}
}

// AssertContains проверяет вхождение подстроки
func AssertContains(t *testing.T, s, substr, msg string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("%s: expected %q to contain %q", msg, s, substr)
	}
}

// AssertNotContains проверяет отсутствие подстроки
func AssertNotContains(t *testing.T, s, substr, msg string) {
	t.Helper()
	if strings.Contains(s, substr) {
		t.Errorf("%s: expected %q not to contain %q", msg, s, substr)
	}
}
