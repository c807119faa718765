package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	tgmodels "github.com/go-telegram/bot/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"yoga_schedule_bot/internal/config"
	"yoga_schedule_bot/internal/middleware"
	"yoga_schedule_bot/internal/schedule"
	"yoga_schedule_bot/internal/scheduler"
	"yoga_schedule_bot/internal/storage"
	"yoga_schedule_bot/pkg/logger"
)

const maxWebhookBody = 1 << 20

// UpdateHandler обрабатывает одно обновление Telegram
type UpdateHandler func(ctx context.Context, update *tgmodels.Update)

// TestNotifier отправляет напоминание вне расписания
type TestNotifier interface {
	SendTestNotification(ctx context.Context) error
}

// Deps зависимости HTTP сервера
type Deps struct {
	Storage  storage.Storage
	Schedule *schedule.Service
	Notifier TestNotifier
	Jobs     scheduler.JobScheduler
	// Updates nil в режиме polling: /webhook тогда не регистрируется
	Updates UpdateHandler
	Version string
}

// Server представляет HTTP сервер с middleware
type Server struct {
	httpServer     *http.Server
	config         *config.Config
	log            *logger.Logger
	deps           Deps
	rateLimiter    *middleware.RateLimiter
	securityLogger *SecurityLogger
	healthChecker  *HealthChecker
}

// New создает новый HTTP сервер
func New(cfg *config.Config, log *logger.Logger, deps Deps) *Server {
	log = log.Component("http")

	s := &Server{
		config:         cfg,
		log:            log,
		deps:           deps,
		rateLimiter:    middleware.NewRateLimiter(60, time.Minute, log),
		securityLogger: NewSecurityLogger(log),
		healthChecker:  NewHealthChecker(deps.Storage, deps.Version),
	}

	s.httpServer = &http.Server{
		Addr:           ":" + cfg.Server.Port,
		Handler:        s.Handler(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	return s
}

// Handler возвращает корневой обработчик со всеми middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	paths := []string{"/health", "/ping", "/metrics"}

	mux.HandleFunc("/health", s.healthChecker.HealthHandler)
	mux.HandleFunc("/ping", s.handlePing)
	mux.Handle("/metrics", promhttp.Handler())

	if s.deps.Updates != nil {
		mux.Handle("/webhook", s.webhookAuthMiddleware(http.HandlerFunc(s.handleWebhook)))
		paths = append(paths, "/webhook")
	}

	ops := map[string]http.HandlerFunc{
		"/force-init":        s.handleForceInit,
		"/check-connection":  s.handleCheckConnection,
		"/next-schedule":     s.handleNextSchedule,
		"/test-notification": s.handleTestNotification,
	}
	for path, h := range ops {
		limited := middleware.HTTPRateLimitMiddleware(s.rateLimiter)(s.opsAuthMiddleware(h))
		mux.Handle(path, limited)
		paths = append(paths, path)
	}

	// Middleware применяются в обратном порядке: последний оборачивает первым
	var h http.Handler = mux
	h = middleware.PrometheusMiddleware(paths...)(h)
	h = s.loggingMiddleware(h)
	h = s.securityHeadersMiddleware(h)
	return h
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

// handleWebhook обрабатывает Telegram webhook
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		s.securityLogger.LogSuspiciousActivity(r, "invalid_webhook_method", map[string]interface{}{
			"method": r.Method,
		})
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var update tgmodels.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxWebhookBody)).Decode(&update); err != nil {
		s.log.Warn("Failed to decode Telegram update", logger.Error(err))
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	s.deps.Updates(ctx, &update)

	s.securityLogger.LogTelegramUpdate(&update, time.Since(start))
	w.WriteHeader(http.StatusOK)
}

// Start запускает сервер и блокируется до отмены ctx
func (s *Server) Start(ctx context.Context) error {
	s.log.Info("Starting HTTP server", logger.String("addr", s.httpServer.Addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown корректно завершает работу сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	s.rateLimiter.Close()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error("Error during server shutdown", logger.Error(err))
		return err
	}

	s.securityLogger.LogSystemEvent("server_shutdown_complete", map[string]interface{}{
		"completed_at": time.Now().UTC().Unix(),
	})
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
