package server

import (
	"net/http"
	"time"

	"yoga_schedule_bot/internal/scheduler"
	"yoga_schedule_bot/internal/storage/models"
	"yoga_schedule_bot/pkg/logger"
)

// Служебные эндпоинты для ручного обслуживания бота

type opsResponse struct {
	Status string      `json:"status"`
	Error  string      `json:"error,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

func (s *Server) opsError(w http.ResponseWriter, op string, err error) {
	s.log.Error("Ops request failed", logger.String("op", op), logger.Error(err))
	writeJSON(w, http.StatusInternalServerError, opsResponse{Status: "error", Error: err.Error()})
}

func requireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	return false
}

// handleForceInit заполняет расписание на окно вперед немедленно
func (s *Server) handleForceInit(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost, http.MethodGet) {
		return
	}

	result, err := s.deps.Schedule.EnsureDefaultScheduleWindow(r.Context())
	if err != nil {
		s.opsError(w, "force_init", err)
		return
	}

	s.securityLogger.LogSystemEvent("force_init", map[string]interface{}{
		"created": result.Created,
		"failed":  result.Failed,
	})
	writeJSON(w, http.StatusOK, opsResponse{Status: "ok", Data: result})
}

// handleCheckConnection проверяет доступность хранилища
func (s *Server) handleCheckConnection(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	start := time.Now()
	if err := s.deps.Storage.Ping(r.Context()); err != nil {
		s.opsError(w, "check_connection", err)
		return
	}

	writeJSON(w, http.StatusOK, opsResponse{Status: "ok", Data: map[string]interface{}{
		"storage":    s.config.Storage.Driver,
		"latency_ms": time.Since(start).Milliseconds(),
	}})
}

type nextScheduleData struct {
	Days             []*models.Schedule `json:"days"`
	NextNotification string             `json:"next_notification,omitempty"`
	NotificationsOn  bool               `json:"notifications_enabled"`
}

// handleNextSchedule показывает ближайшие дни с занятиями и время следующей рассылки
func (s *Server) handleNextSchedule(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	days, err := s.deps.Schedule.NextScheduledDays(r.Context(), 7)
	if err != nil {
		s.opsError(w, "next_schedule", err)
		return
	}
	enabled, err := s.deps.Schedule.NotificationsEnabled(r.Context())
	if err != nil {
		s.opsError(w, "next_schedule", err)
		return
	}

	data := nextScheduleData{Days: days, NotificationsOn: enabled}
	if s.deps.Jobs != nil {
		if next, ok := s.deps.Jobs.NextRun(scheduler.JobNotification); ok {
			data.NextNotification = next.Format(time.RFC3339)
		}
	}
	writeJSON(w, http.StatusOK, opsResponse{Status: "ok", Data: data})
}

// handleTestNotification отправляет завтрашнее напоминание в канал прямо сейчас
func (s *Server) handleTestNotification(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost, http.MethodGet) {
		return
	}

	if err := s.deps.Notifier.SendTestNotification(r.Context()); err != nil {
		s.opsError(w, "test_notification", err)
		return
	}
	s.securityLogger.LogSystemEvent("test_notification", nil)
	writeJSON(w, http.StatusOK, opsResponse{Status: "ok"})
}
