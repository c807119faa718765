package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"yoga_schedule_bot/internal/middleware"
	"yoga_schedule_bot/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// loggingMiddleware логирует HTTP запросы и присваивает им request id
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		wrapped := &middleware.ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		fields := []logger.Field{
			logger.String("request_id", requestID),
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status_code", wrapped.StatusCode),
			logger.Duration("duration", time.Since(start)),
		}
		if r.URL.Path == "/health" || r.URL.Path == "/ping" || r.URL.Path == "/metrics" {
			s.log.Debug("HTTP request completed", fields...)
			return
		}
		s.log.Info("HTTP request completed", fields...)
	})
}

// securityHeadersMiddleware добавляет заголовки безопасности
func (s *Server) securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")

		next.ServeHTTP(w, r)
	})
}
