package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"yoga_schedule_bot/internal/storage"
	"yoga_schedule_bot/internal/storage/models"
	apperrors "yoga_schedule_bot/pkg/errors"
	"yoga_schedule_bot/pkg/metrics"
)

// Таблицы Supabase
const (
	tableSchedule      = "schedule"
	tableUsers         = "bot_users"
	tableSubscriptions = "subscriptions"
	tableSettings      = "bot_settings"
)

// Значения заголовка Prefer
const (
	preferReturnRepresentation = "return=representation"
	preferIgnoreDuplicates     = "resolution=ignore-duplicates,return=minimal"
	preferMergeDuplicates      = "resolution=merge-duplicates,return=minimal"
)

// Client реализует интерфейс Storage поверх PostgREST API Supabase
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ storage.Storage = (*Client)(nil)

// New создает клиент Supabase с фиксированным таймаутом запросов
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext:  (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
				MaxIdleConns: 10,
			},
		},
	}
}

// request описывает один запрос к PostgREST
type request struct {
	method    string
	table     string
	operation string
	query     url.Values
	body      any
	prefer    string
}

// do выполняет запрос и декодирует JSON ответ в out (если out != nil)
func (c *Client) do(ctx context.Context, r request, out any) (err error) {
	defer func(start time.Time) {
		metrics.RecordStorageOperation(r.operation, r.table, metrics.Status(err), time.Since(start).Seconds())
	}(time.Now())

	endpoint := c.baseURL + "/rest/v1/" + r.table
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to encode %s body: %w", r.table, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", r.table, err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if r.prefer != "" {
		req.Header.Set("Prefer", r.prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.ErrStorageUnavailable.WithError(fmt.Errorf("%s %s: %w", r.method, r.table, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return apperrors.ErrStorageUnavailable.WithError(
			fmt.Errorf("%s %s: status %d: %s", r.method, r.table, resp.StatusCode, strings.TrimSpace(string(msg))),
		)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", r.table, err)
	}
	return nil
}

// Close ничего не делает: HTTP клиент не держит ресурсов
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Ping проверяет доступность Supabase
func (c *Client) Ping(ctx context.Context) error {
	var rows []struct {
		ID int64 `json:"id"`
	}
	return c.do(ctx, request{
		method:    http.MethodGet,
		table:     tableSchedule,
		operation: "ping",
		query:     url.Values{"select": {"id"}, "limit": {"1"}},
	}, &rows)
}

func eq(v string) string { return "eq." + v }

func (c *Client) getOneSchedule(ctx context.Context, operation string, query url.Values) (*models.Schedule, error) {
	var rows []*models.Schedule
	query.Set("limit", "1")
	err := c.do(ctx, request{method: http.MethodGet, table: tableSchedule, operation: operation, query: query}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// GetScheduleByDate получает день расписания по дате; (nil, nil) если его нет
func (c *Client) GetScheduleByDate(ctx context.Context, date string) (*models.Schedule, error) {
	sch, err := c.getOneSchedule(ctx, "get_by_date", url.Values{"date": {eq(date)}})
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule for %s: %w", date, err)
	}
	return sch, nil
}

// GetScheduleByID получает день расписания по ID; (nil, nil) если его нет
func (c *Client) GetScheduleByID(ctx context.Context, id int64) (*models.Schedule, error) {
	sch, err := c.getOneSchedule(ctx, "get_by_id", url.Values{"id": {eq(strconv.FormatInt(id, 10))}})
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule %d: %w", id, err)
	}
	return sch, nil
}

// GetSchedulesBetween получает дни расписания в диапазоне [from, to] по возрастанию даты
func (c *Client) GetSchedulesBetween(ctx context.Context, from, to string) ([]*models.Schedule, error) {
	query := url.Values{}
	query.Add("date", "gte."+from)
	query.Add("date", "lte."+to)
	query.Set("order", "date.asc")

	rows := []*models.Schedule{}
	if err := c.do(ctx, request{method: http.MethodGet, table: tableSchedule, operation: "get_between", query: query}, &rows); err != nil {
		return nil, fmt.Errorf("failed to get schedules between %s and %s: %w", from, to, err)
	}
	return rows, nil
}

// CreateSchedule создает день расписания и возвращает сохраненную строку
func (c *Client) CreateSchedule(ctx context.Context, sch *models.Schedule) (*models.Schedule, error) {
	sch.Normalize()

	var rows []*models.Schedule
	err := c.do(ctx, request{
		method:    http.MethodPost,
		table:     tableSchedule,
		operation: "create",
		body:      slotPayload(sch),
		prefer:    preferReturnRepresentation,
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to create schedule for %s: %w", sch.Date, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("failed to create schedule for %s: empty response", sch.Date)
	}
	return rows[0], nil
}

// UpdateSchedule перезаписывает слоты дня по дате; (nil, nil) если дня нет
func (c *Client) UpdateSchedule(ctx context.Context, sch *models.Schedule) (*models.Schedule, error) {
	sch.Normalize()

	var rows []*models.Schedule
	err := c.do(ctx, request{
		method:    http.MethodPatch,
		table:     tableSchedule,
		operation: "update",
		query:     url.Values{"date": {eq(sch.Date)}},
		body:      slotPayload(sch),
		prefer:    preferReturnRepresentation,
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to update schedule for %s: %w", sch.Date, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// slotPayload тело запроса со слотами; null передается явно, чтобы PATCH очищал поля
func slotPayload(sch *models.Schedule) map[string]any {
	return map[string]any{
		"date":          sch.Date,
		"morning_time":  sch.MorningTime,
		"morning_class": sch.MorningClass,
		"evening_time":  sch.EveningTime,
		"evening_class": sch.EveningClass,
		"is_active":     sch.IsActive,
	}
}

// SaveUser создает или обновляет пользователя по telegram_id
func (c *Client) SaveUser(ctx context.Context, user *models.BotUser) error {
	err := c.do(ctx, request{
		method:    http.MethodPost,
		table:     tableUsers,
		operation: "upsert",
		query:     url.Values{"on_conflict": {"telegram_id"}},
		body: map[string]any{
			"telegram_id": user.TelegramID,
			"first_name":  user.FirstName,
			"last_name":   user.LastName,
			"username":    user.Username,
		},
		prefer: preferMergeDuplicates,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to save user %d: %w", user.TelegramID, err)
	}
	return nil
}

// GetUserByTelegramID получает пользователя; (nil, nil) если его нет
func (c *Client) GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.BotUser, error) {
	var rows []*models.BotUser
	err := c.do(ctx, request{
		method:    http.MethodGet,
		table:     tableUsers,
		operation: "get",
		query:     url.Values{"telegram_id": {eq(strconv.FormatInt(telegramID, 10))}, "limit": {"1"}},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", telegramID, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// GetUsersByTelegramIDs получает пользователей одним запросом in.(...)
func (c *Client) GetUsersByTelegramIDs(ctx context.Context, telegramIDs []int64) ([]*models.BotUser, error) {
	rows := []*models.BotUser{}
	if len(telegramIDs) == 0 {
		return rows, nil
	}

	ids := make([]string, len(telegramIDs))
	for i, id := range telegramIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}

	err := c.do(ctx, request{
		method:    http.MethodGet,
		table:     tableUsers,
		operation: "get_many",
		query:     url.Values{"telegram_id": {"in.(" + strings.Join(ids, ",") + ")"}},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return rows, nil
}

// Subscribe записывает пользователя на занятие; дубликаты игнорируются сервером
func (c *Client) Subscribe(ctx context.Context, sub *models.Subscription) error {
	err := c.do(ctx, request{
		method:    http.MethodPost,
		table:     tableSubscriptions,
		operation: "insert",
		query:     url.Values{"on_conflict": {"telegram_id,schedule_id,class_type"}},
		body: map[string]any{
			"telegram_id": sub.TelegramID,
			"schedule_id": sub.ScheduleID,
			"class_type":  sub.ClassType,
			"class_date":  sub.ClassDate,
		},
		prefer: preferIgnoreDuplicates,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to subscribe %d to %d/%s: %w", sub.TelegramID, sub.ScheduleID, sub.ClassType, err)
	}
	return nil
}

// Unsubscribe удаляет все записи пользователя на занятие
func (c *Client) Unsubscribe(ctx context.Context, telegramID, scheduleID int64, classType models.ClassType) error {
	err := c.do(ctx, request{
		method:    http.MethodDelete,
		table:     tableSubscriptions,
		operation: "delete",
		query: url.Values{
			"telegram_id": {eq(strconv.FormatInt(telegramID, 10))},
			"schedule_id": {eq(strconv.FormatInt(scheduleID, 10))},
			"class_type":  {eq(string(classType))},
		},
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to unsubscribe %d from %d/%s: %w", telegramID, scheduleID, classType, err)
	}
	return nil
}

// ListSubscriptions получает записи на занятие в порядке их создания
func (c *Client) ListSubscriptions(ctx context.Context, scheduleID int64, classType models.ClassType) ([]*models.Subscription, error) {
	rows := []*models.Subscription{}
	err := c.do(ctx, request{
		method:    http.MethodGet,
		table:     tableSubscriptions,
		operation: "list",
		query: url.Values{
			"schedule_id": {eq(strconv.FormatInt(scheduleID, 10))},
			"class_type":  {eq(string(classType))},
			"order":       {"id.asc"},
		},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions for %d/%s: %w", scheduleID, classType, err)
	}
	return rows, nil
}

// GetSetting получает значение настройки; ok=false если ее нет
func (c *Client) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var rows []models.Setting
	err := c.do(ctx, request{
		method:    http.MethodGet,
		table:     tableSettings,
		operation: "get",
		query:     url.Values{"key": {eq(key)}, "limit": {"1"}},
	}, &rows)
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	if len(rows) == 0 {
		return "", false, nil
	}
	return rows[0].Value, true, nil
}

// SetSetting сохраняет значение настройки
func (c *Client) SetSetting(ctx context.Context, key, value string) error {
	err := c.do(ctx, request{
		method:    http.MethodPost,
		table:     tableSettings,
		operation: "upsert",
		query:     url.Values{"on_conflict": {"key"}},
		body:      map[string]any{"key": key, "value": value},
		prefer:    preferMergeDuplicates,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}
