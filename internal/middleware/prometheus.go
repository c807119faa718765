package middleware

import (
	"net/http"
	"strconv"
	"time"

	"yoga_schedule_bot/pkg/metrics"
)

// PrometheusMiddleware добавляет метрики Prometheus для HTTP запросов.
// Неизвестные пути пишутся с меткой "other", чтобы сканеры не раздували число серий.
func PrometheusMiddleware(knownPaths ...string) func(http.Handler) http.Handler {
	known := make(map[string]bool, len(knownPaths))
	for _, p := range knownPaths {
		known[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			endpoint := r.URL.Path
			if !known[endpoint] {
				endpoint = "other"
			}
			metrics.RecordHTTPRequest(r.Method, endpoint, strconv.Itoa(wrapped.StatusCode), time.Since(start).Seconds())
		})
	}
}

// ResponseWriter оборачивает http.ResponseWriter для захвата статус-кода
type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

// WriteHeader захватывает статус-код ответа
func (rw *ResponseWriter) WriteHeader(code int) {
	rw.StatusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
