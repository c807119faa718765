package supabase

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"yoga_schedule_bot/internal/storage/models"
	"yoga_schedule_bot/internal/testutils"
	apperrors "yoga_schedule_bot/pkg/errors"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Header http.Header
	Body   map[string]any
}

// fakePostgREST отвечает заранее заданным телом и запоминает запросы
type fakePostgREST struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	response string
}

func (f *fakePostgREST) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	status, response := f.status, f.response
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, response)
}

func (f *fakePostgREST) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatal("no requests recorded")
	}
	return f.requests[len(f.requests)-1]
}

func newTestClient(t *testing.T, fake *fakePostgREST) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", "secret-key", 2*time.Second)
}

func TestClient_SendsAuthHeaders(t *testing.T) {
	fake := &fakePostgREST{response: `[]`}
	client := newTestClient(t, fake)

	_, err := client.GetScheduleByDate(context.Background(), "2025-03-03")
	testutils.AssertNoError(t, err, "GetScheduleByDate")

	req := fake.last(t)
	testutils.AssertEqual(t, "/rest/v1/schedule", req.Path, "path")
	testutils.AssertEqual(t, "secret-key", req.Header.Get("apikey"), "apikey header")
	testutils.AssertEqual(t, "Bearer secret-key", req.Header.Get("Authorization"), "authorization header")
	testutils.AssertEqual(t, []string{"eq.2025-03-03"}, req.Query["date"], "date filter")
}

func TestClient_MissingScheduleIsAbsent(t *testing.T) {
	fake := &fakePostgREST{response: `[]`}
	client := newTestClient(t, fake)

	sch, err := client.GetScheduleByDate(context.Background(), "2030-01-01")
	testutils.AssertNoError(t, err, "empty result is not an error")
	if sch != nil {
		t.Errorf("expected nil schedule, got %+v", sch)
	}
}

func TestClient_GetSchedulesBetween(t *testing.T) {
	fake := &fakePostgREST{response: `[
		{"id": 1, "date": "2025-03-03", "morning_time": "08:00", "morning_class": "МАЙСОР КЛАСС 8:00 - 11:30",
		 "evening_time": null, "evening_class": null, "is_active": true},
		{"id": 6, "date": "2025-03-08", "morning_time": null, "morning_class": null,
		 "evening_time": null, "evening_class": null, "is_active": false}
	]`}
	client := newTestClient(t, fake)

	days, err := client.GetSchedulesBetween(context.Background(), "2025-03-03", "2025-03-09")
	testutils.AssertNoError(t, err, "GetSchedulesBetween")
	testutils.AssertEqual(t, 2, len(days), "rows")
	testutils.AssertTrue(t, days[0].HasMorning(), "first day has a morning class")
	testutils.AssertTrue(t, !days[1].IsActive, "second day is a rest day")

	req := fake.last(t)
	testutils.AssertEqual(t, []string{"gte.2025-03-03", "lte.2025-03-09"}, req.Query["date"], "range filters")
	testutils.AssertEqual(t, []string{"date.asc"}, req.Query["order"], "ordering")
}

func TestClient_UpdateSendsExplicitNulls(t *testing.T) {
	fake := &fakePostgREST{response: `[{"id": 3, "date": "2025-03-05", "is_active": false}]`}
	client := newTestClient(t, fake)

	morning := "08:00"
	updated, err := client.UpdateSchedule(context.Background(), &models.Schedule{
		Date:        "2025-03-05",
		MorningTime: &morning,
		IsActive:    false,
	})
	testutils.AssertNoError(t, err, "UpdateSchedule")
	testutils.AssertEqual(t, int64(3), updated.ID, "returned row")

	req := fake.last(t)
	testutils.AssertEqual(t, http.MethodPatch, req.Method, "method")
	testutils.AssertEqual(t, []string{"eq.2025-03-05"}, req.Query["date"], "date filter")
	testutils.AssertEqual(t, "return=representation", req.Header.Get("Prefer"), "prefer header")
	for _, field := range []string{"morning_time", "morning_class", "evening_time", "evening_class"} {
		value, present := req.Body[field]
		testutils.AssertTrue(t, present, field+" must be sent")
		testutils.AssertEqual(t, nil, value, field+" must be null on a rest day")
	}
}

func TestClient_UpdateMissingDay(t *testing.T) {
	fake := &fakePostgREST{response: `[]`}
	client := newTestClient(t, fake)

	updated, err := client.UpdateSchedule(context.Background(), &models.Schedule{Date: "2031-01-01"})
	testutils.AssertNoError(t, err, "UpdateSchedule")
	if updated != nil {
		t.Errorf("expected nil, got %+v", updated)
	}
}

func TestClient_SubscribeIgnoresDuplicates(t *testing.T) {
	fake := &fakePostgREST{status: http.StatusCreated}
	client := newTestClient(t, fake)

	err := client.Subscribe(context.Background(), &models.Subscription{
		TelegramID: 7, ScheduleID: 3, ClassType: models.Evening, ClassDate: "2025-03-05",
	})
	testutils.AssertNoError(t, err, "Subscribe")

	req := fake.last(t)
	testutils.AssertEqual(t, http.MethodPost, req.Method, "method")
	testutils.AssertEqual(t, "/rest/v1/subscriptions", req.Path, "path")
	testutils.AssertEqual(t, []string{"telegram_id,schedule_id,class_type"}, req.Query["on_conflict"], "conflict target")
	testutils.AssertContains(t, req.Header.Get("Prefer"), "resolution=ignore-duplicates", "prefer header")
	testutils.AssertEqual(t, "EVENING", req.Body["class_type"], "class type")
}

func TestClient_UnsubscribeFilters(t *testing.T) {
	fake := &fakePostgREST{status: http.StatusNoContent}
	client := newTestClient(t, fake)

	err := client.Unsubscribe(context.Background(), 7, 3, models.Morning)
	testutils.AssertNoError(t, err, "Unsubscribe")

	req := fake.last(t)
	testutils.AssertEqual(t, http.MethodDelete, req.Method, "method")
	testutils.AssertEqual(t, []string{"eq.7"}, req.Query["telegram_id"], "user filter")
	testutils.AssertEqual(t, []string{"eq.3"}, req.Query["schedule_id"], "schedule filter")
	testutils.AssertEqual(t, []string{"eq.MORNING"}, req.Query["class_type"], "class filter")
}

func TestClient_BatchUserLookup(t *testing.T) {
	fake := &fakePostgREST{response: `[{"telegram_id": 1, "username": "yogi"}]`}
	client := newTestClient(t, fake)

	users, err := client.GetUsersByTelegramIDs(context.Background(), []int64{1, 2})
	testutils.AssertNoError(t, err, "GetUsersByTelegramIDs")
	testutils.AssertEqual(t, 1, len(users), "rows")
	testutils.AssertEqual(t, "@yogi", users[0].DisplayName(), "display name")
	testutils.AssertEqual(t, []string{"in.(1,2)"}, fake.last(t).Query["telegram_id"], "in filter")

	fake.requests = nil
	empty, err := client.GetUsersByTelegramIDs(context.Background(), nil)
	testutils.AssertNoError(t, err, "empty list")
	testutils.AssertEqual(t, 0, len(empty), "no users")
	testutils.AssertEqual(t, 0, len(fake.requests), "no request for an empty id list")
}

func TestClient_ErrorStatusIsStorageUnavailable(t *testing.T) {
	fake := &fakePostgREST{status: http.StatusInternalServerError, response: `{"message":"boom"}`}
	client := newTestClient(t, fake)

	_, err := client.GetScheduleByDate(context.Background(), "2025-03-03")
	testutils.AssertError(t, err, "5xx should fail")
	if !stderrors.Is(err, apperrors.ErrStorageUnavailable) {
		t.Errorf("expected STORAGE_UNAVAILABLE, got %v", err)
	}
	testutils.AssertContains(t, err.Error(), "boom", "error carries the response body")
}

func TestClient_Settings(t *testing.T) {
	fake := &fakePostgREST{response: `[{"key": "notifications_enabled", "value": "false"}]`}
	client := newTestClient(t, fake)

	value, ok, err := client.GetSetting(context.Background(), models.SettingNotificationsEnabled)
	testutils.AssertNoError(t, err, "GetSetting")
	testutils.AssertTrue(t, ok, "setting present")
	testutils.AssertEqual(t, "false", value, "value")

	fake.response = ""
	fake.status = http.StatusCreated
	testutils.AssertNoError(t, client.SetSetting(context.Background(), models.SettingNotificationsEnabled, "true"), "SetSetting")
	req := fake.last(t)
	testutils.AssertEqual(t, []string{"key"}, req.Query["on_conflict"], "conflict target")
	testutils.AssertContains(t, req.Header.Get("Prefer"), "merge-duplicates", "prefer header")
}
