package server

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"yoga_schedule_bot/internal/storage"
	"yoga_schedule_bot/pkg/metrics"
)

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Version   string            `json:"version,omitempty"`
	Uptime    string            `json:"uptime,omitempty"`
	Checks    map[string]string `json:"checks"`
}

// HealthChecker проверяет состояние системы
type HealthChecker struct {
	storage   storage.Storage
	startTime time.Time
	version   string
}

// NewHealthChecker создает новый health checker
func NewHealthChecker(storage storage.Storage, version string) *HealthChecker {
	return &HealthChecker{
		storage:   storage,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthHandler обрабатывает запросы health check
func (h *HealthChecker) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	overallStatus := "healthy"

	if err := h.checkStorage(ctx); err != nil {
		checks["storage"] = "unhealthy: " + err.Error()
		overallStatus = "unhealthy"
	} else {
		checks["storage"] = "healthy"
	}

	checks["memory"] = h.checkMemory()
	if checks["memory"] != "healthy" && overallStatus == "healthy" {
		overallStatus = "warning"
	}

	status := http.StatusOK
	if overallStatus == "unhealthy" {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, HealthResponse{
		Status:    overallStatus,
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Truncate(time.Second).String(),
		Checks:    checks,
	})
}

func (h *HealthChecker) checkStorage(ctx context.Context) error {
	if h.storage == nil {
		return nil
	}
	return h.storage.Ping(ctx)
}

// checkMemory обновляет runtime метрики и проверяет использование памяти
func (h *HealthChecker) checkMemory() string {
	metrics.UpdateRuntimeStats()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	const warningLimit = 400 * 1024 * 1024
	if m.Alloc > warningLimit {
		return "warning: memory usage > 400MB"
	}
	return "healthy"
}
