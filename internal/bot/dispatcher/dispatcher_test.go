package dispatcher

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-telegram/bot/models"

	"yoga_schedule_bot/internal/bot/keyboard"
	"yoga_schedule_bot/internal/bot/service"
	"yoga_schedule_bot/internal/config"
	"yoga_schedule_bot/internal/schedule"
	storagemodels "yoga_schedule_bot/internal/storage/models"
	"yoga_schedule_bot/internal/storage/sqlstore"
	"yoga_schedule_bot/internal/testutils"
)

const (
	adminID  = 42
	memberID = 7
)

// 3 марта 2025 года понедельник
var monday = time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)

type fixture struct {
	d     *Dispatcher
	api   *testutils.FakeBotAPI
	store *sqlstore.Store
	sched *schedule.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := sqlstore.New(sqlstore.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	loc := testutils.MustLocation(t, "Europe/Moscow")
	log := testutils.SetupTestLogger()
	sched := schedule.NewService(store, log, loc, 14).WithClock(testutils.NewFakeClock(monday.In(loc)).Now)
	if _, err := sched.EnsureDefaultScheduleWindow(testutils.TestContext()); err != nil {
		t.Fatalf("Failed to init schedule: %v", err)
	}

	cfg := &config.Config{
		Telegram:     config.TelegramConfig{AdminID: adminID, ChannelID: "-100123"},
		Schedule:     config.ScheduleConfig{Timezone: "Europe/Moscow"},
		Notification: config.NotificationConfig{Time: "16:00"},
	}
	api := &testutils.FakeBotAPI{}
	svc := service.NewService(api, sched, cfg, log)

	return &fixture{d: NewDispatcher(svc), api: api, store: store, sched: sched}
}

func (f *fixture) message(from int64, text string) {
	f.d.HandleUpdate(testutils.TestContext(), nil, &models.Update{
		Message: &models.Message{
			ID:   1,
			From: &models.User{ID: from, FirstName: fmt.Sprintf("user%d", from)},
			Chat: models.Chat{ID: from},
			Text: text,
		},
	})
}

func (f *fixture) press(from int64, data string) {
	f.d.HandleUpdate(testutils.TestContext(), nil, &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb",
			From: models.User{ID: from, Username: fmt.Sprintf("user%d", from)},
			Message: models.MaybeInaccessibleMessage{
				Message: &models.Message{ID: 99, Chat: models.Chat{ID: from}},
			},
			Data: data,
		},
	})
}

func (f *fixture) lastText(t *testing.T) string {
	t.Helper()
	sent := f.api.LastSent()
	if sent == nil {
		t.Fatal("nothing was sent")
	}
	return sent.Text
}

func TestStart_KeyboardDependsOnRole(t *testing.T) {
	f := newFixture(t)

	f.message(memberID, "/start")
	member, ok := f.api.LastSent().ReplyMarkup.(*models.ReplyKeyboardMarkup)
	if !ok {
		t.Fatalf("expected reply keyboard, got %T", f.api.LastSent().ReplyMarkup)
	}
	testutils.AssertEqual(t, 1, len(member.Keyboard), "member sees one row")
	testutils.AssertContains(t, f.lastText(t), "Добро пожаловать", "welcome text")

	f.message(adminID, "/start")
	admin := f.api.LastSent().ReplyMarkup.(*models.ReplyKeyboardMarkup)
	testutils.AssertEqual(t, 2, len(admin.Keyboard), "admin sees edit row")
	testutils.AssertEqual(t, keyboard.BtnEditMode, admin.Keyboard[1][0].Text, "edit button")
}

func TestMessage_SavesUser(t *testing.T) {
	f := newFixture(t)
	f.message(memberID, keyboard.BtnSchedule)

	u, err := f.store.GetUserByTelegramID(testutils.TestContext(), memberID)
	testutils.AssertNoError(t, err, "lookup")
	if u == nil {
		t.Fatal("user must be saved on every interaction")
	}
}

func TestSchedule_ShowsWeek(t *testing.T) {
	f := newFixture(t)
	f.message(memberID, keyboard.BtnSchedule)

	text := f.lastText(t)
	testutils.AssertEqual(t, 7, strings.Count(text, "🔸"), "seven days")
	testutils.AssertContains(t, text, schedule.RestDayLine, "saturday is a rest day")
}

func TestAdminButtons_DeniedForMembers(t *testing.T) {
	for _, btn := range []string{keyboard.BtnSubscriptions, keyboard.BtnEditMode, keyboard.BtnNotifications, keyboard.BtnDeleteDay, keyboard.BtnExport} {
		t.Run(btn, func(t *testing.T) {
			f := newFixture(t)
			f.message(memberID, btn)
			testutils.AssertEqual(t, service.MsgAccessDenied, f.lastText(t), "access denied")
		})
	}
}

func TestUnknownText(t *testing.T) {
	f := newFixture(t)
	f.message(memberID, "привет")
	testutils.AssertEqual(t, service.MsgUnknownCommand, f.lastText(t), "unknown command reply")

	// правка дня от обычного участника тоже неизвестная команда
	f.message(memberID, "05.03.2025\nОтдых")
	testutils.AssertEqual(t, service.MsgUnknownCommand, f.lastText(t), "members cannot edit")
}

func TestDeleteDay_EndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := testutils.TestContext()

	f.message(adminID, keyboard.BtnDeleteDay)
	picker, ok := f.api.LastSent().ReplyMarkup.(*models.InlineKeyboardMarkup)
	if !ok {
		t.Fatalf("expected day picker, got %T", f.api.LastSent().ReplyMarkup)
	}
	testutils.AssertEqual(t, 8, len(picker.InlineKeyboard), "seven days and back")
	testutils.AssertEqual(t, "delete_day_2025-03-05", picker.InlineKeyboard[2][0].CallbackData, "wednesday button")

	f.press(adminID, "delete_day_2025-03-05")
	testutils.AssertEqual(t, "🗑 Вы уверены, что хотите удалить расписание на Среда (05.03.2025)?", f.lastText(t), "confirmation")
	confirm := f.api.LastSent().ReplyMarkup.(*models.InlineKeyboardMarkup)
	testutils.AssertEqual(t, "confirm_delete_2025-03-05", confirm.InlineKeyboard[0][0].CallbackData, "confirm button")
	testutils.AssertEqual(t, "cancel_delete", confirm.InlineKeyboard[0][1].CallbackData, "cancel button")

	f.press(adminID, "confirm_delete_2025-03-05")
	if len(f.api.Edited) != 1 {
		t.Fatalf("confirmation message must be edited, got %d edits", len(f.api.Edited))
	}
	testutils.AssertContains(t, f.api.Edited[0].Text, "удалено", "result text")

	sch, err := f.store.GetScheduleByDate(ctx, "2025-03-05")
	testutils.AssertNoError(t, err, "lookup")
	if sch == nil {
		t.Fatal("rest day keeps its row")
	}
	testutils.AssertTrue(t, !sch.IsActive, "day is inactive")
	testutils.AssertTrue(t, sch.MorningTime == nil && sch.MorningClass == nil, "morning cleared")
	testutils.AssertTrue(t, sch.EveningTime == nil && sch.EveningClass == nil, "evening cleared")
}

func TestDeleteDay_DeniedForMembers(t *testing.T) {
	f := newFixture(t)
	f.press(memberID, "confirm_delete_2025-03-05")

	testutils.AssertEqual(t, service.MsgAccessDenied, f.api.LastAnswer(), "access denied toast")
	sch, err := f.store.GetScheduleByDate(testutils.TestContext(), "2025-03-05")
	testutils.AssertNoError(t, err, "lookup")
	testutils.AssertTrue(t, sch.IsActive, "day untouched")
}

func TestSubscribe_Toasts(t *testing.T) {
	f := newFixture(t)
	ctx := testutils.TestContext()

	tuesday, err := f.store.GetScheduleByDate(ctx, "2025-03-04")
	testutils.AssertNoError(t, err, "lookup")

	f.press(memberID, fmt.Sprintf("subscribe_morning_%d", tuesday.ID))
	testutils.AssertEqual(t, service.MsgSubscribed, f.api.LastAnswer(), "subscribed toast")

	f.press(memberID, fmt.Sprintf("subscribe_morning_%d", tuesday.ID))
	subs, err := f.sched.ListSubscribers(ctx, tuesday.ID, storagemodels.Morning)
	testutils.AssertNoError(t, err, "list")
	testutils.AssertEqual(t, 1, len(subs), "repeat subscribe is idempotent")

	f.press(memberID, fmt.Sprintf("subscribe_evening_%d", tuesday.ID))
	testutils.AssertContains(t, f.api.LastAnswer(), "такого занятия нет", "tuesday has no evening class")

	f.press(memberID, fmt.Sprintf("unsubscribe_morning_%d", tuesday.ID))
	testutils.AssertEqual(t, service.MsgUnsubscribed, f.api.LastAnswer(), "unsubscribed toast")
	subs, err = f.sched.ListSubscribers(ctx, tuesday.ID, storagemodels.Morning)
	testutils.AssertNoError(t, err, "list")
	testutils.AssertEqual(t, 0, len(subs), "unsubscribed")

	f.press(memberID, "subscribe_morning_999999")
	testutils.AssertEqual(t, "Расписание на выбранную дату не найдено.", f.api.LastAnswer(), "missing day")
}

func TestViewSubscribers(t *testing.T) {
	f := newFixture(t)
	ctx := testutils.TestContext()

	today, err := f.store.GetScheduleByDate(ctx, "2025-03-03")
	testutils.AssertNoError(t, err, "lookup")

	f.press(adminID, fmt.Sprintf("view_evening_%d", today.ID))
	testutils.AssertContains(t, f.lastText(t), schedule.EmptyListSentinel, "empty list")

	f.press(memberID, fmt.Sprintf("subscribe_evening_%d", today.ID))
	f.press(adminID, fmt.Sprintf("view_evening_%d", today.ID))
	text := f.lastText(t)
	testutils.AssertContains(t, text, "📋 Список записавшихся на вечернее занятие", "header")
	testutils.AssertContains(t, text, "1. @user7", "subscriber name")
}

func TestAdminDayEdit(t *testing.T) {
	f := newFixture(t)

	f.message(adminID, "08.03.2025\nУтро: 9:00 Хатха йога")
	testutils.AssertContains(t, f.lastText(t), "✅ Расписание обновлено", "success reply")

	sch, err := f.store.GetScheduleByDate(testutils.TestContext(), "2025-03-08")
	testutils.AssertNoError(t, err, "lookup")
	testutils.AssertTrue(t, sch.HasMorning(), "saturday now has a morning class")
	testutils.AssertTrue(t, !sch.HasEvening(), "no evening class")
	clock, label := sch.Slot(storagemodels.Morning)
	testutils.AssertEqual(t, "09:00", clock, "normalized time")
	testutils.AssertEqual(t, "Хатха йога", label, "label")

	f.message(adminID, "08.03.2025\nПолдень: 12:00 Йога")
	testutils.AssertContains(t, f.lastText(t), "Не удалось разобрать", "parse error reply")
}

func TestToggleNotifications(t *testing.T) {
	f := newFixture(t)
	ctx := testutils.TestContext()

	f.message(adminID, keyboard.BtnNotifications)
	testutils.AssertContains(t, f.lastText(t), "выключены", "turned off")
	enabled, err := f.sched.NotificationsEnabled(ctx)
	testutils.AssertNoError(t, err, "flag")
	testutils.AssertTrue(t, !enabled, "disabled")

	f.message(adminID, keyboard.BtnNotifications)
	testutils.AssertContains(t, f.lastText(t), "включены (отправка в 16:00 Europe/Moscow)", "turned on")
}

func TestExport_SendsDocument(t *testing.T) {
	f := newFixture(t)
	f.message(adminID, keyboard.BtnExport)

	if len(f.api.Documents) != 1 {
		t.Fatalf("expected one document, got %d", len(f.api.Documents))
	}
	upload, ok := f.api.Documents[0].Document.(*models.InputFileUpload)
	if !ok {
		t.Fatalf("expected file upload, got %T", f.api.Documents[0].Document)
	}
	testutils.AssertEqual(t, "yoga_roster_20250303.xlsx", upload.Filename, "file name")
}

func TestUnknownCallback_IsAnswered(t *testing.T) {
	f := newFixture(t)
	f.press(memberID, "DATE:2025-03-05")
	testutils.AssertEqual(t, 1, len(f.api.Answers), "spinner is cleared")
	testutils.AssertEqual(t, 0, len(f.api.Sent), "no message for garbage")
}
