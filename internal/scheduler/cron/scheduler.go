// Package cron запускает ежедневные задачи бота на gocron.
package cron

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"yoga_schedule_bot/internal/scheduler"
	"yoga_schedule_bot/pkg/logger"
	"yoga_schedule_bot/pkg/metrics"
)

// Config расписание фоновых задач
type Config struct {
	NotificationTime  string // "16:00" в часовом поясе студии
	InitTime          string // "00:05"
	AppURL            string // пусто: keep-alive выключен
	KeepAliveInterval time.Duration
	JobTimeout        time.Duration
}

// Scheduler реализует планировщик задач на gocron
type Scheduler struct {
	cron     *gocron.Scheduler
	sender   scheduler.NotificationSender
	init     scheduler.WindowInitializer
	config   Config
	client   *http.Client
	log      *logger.Logger
	mu       sync.Mutex
	ctx      context.Context
	started  bool
	stopOnce sync.Once
}

var _ scheduler.JobScheduler = (*Scheduler)(nil)

// New создает новый планировщик в часовом поясе loc
func New(loc *time.Location, sender scheduler.NotificationSender, windows scheduler.WindowInitializer, cfg Config, log *logger.Logger) *Scheduler {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 2 * time.Minute
	}

	c := gocron.NewScheduler(loc)
	c.SingletonModeAll()

	return &Scheduler{
		cron:   c,
		sender: sender,
		init:   windows,
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log.Component("cron"),
		ctx:    context.Background(),
	}
}

// Start регистрирует задачи и запускает планировщик без блокировки
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("scheduler is already started")
	}
	s.ctx = ctx

	if _, err := s.cron.Every(1).Day().At(s.config.NotificationTime).Tag(scheduler.JobNotification).Do(s.runNotification); err != nil {
		return fmt.Errorf("failed to schedule notification job: %w", err)
	}
	if _, err := s.cron.Every(1).Day().At(s.config.InitTime).Tag(scheduler.JobScheduleInit).Do(s.runScheduleInit); err != nil {
		return fmt.Errorf("failed to schedule init job: %w", err)
	}
	if s.config.AppURL != "" && s.config.KeepAliveInterval > 0 {
		if _, err := s.cron.Every(s.config.KeepAliveInterval).WaitForSchedule().Tag(scheduler.JobKeepAlive).Do(s.runKeepAlive); err != nil {
			return fmt.Errorf("failed to schedule keep-alive job: %w", err)
		}
	}

	s.cron.StartAsync()
	s.started = true

	s.log.Info("Scheduler started",
		logger.String("notification_time", s.config.NotificationTime),
		logger.String("init_time", s.config.InitTime),
		logger.Bool("keep_alive", s.config.AppURL != ""),
	)
	return nil
}

// Stop останавливает планировщик
func (s *Scheduler) Stop() error {
	s.stopOnce.Do(func() {
		s.cron.Stop()
		s.log.Info("Scheduler stopped")
	})
	return nil
}

// RunNow запускает задачу по тегу вне расписания
func (s *Scheduler) RunNow(job string) error {
	return s.cron.RunByTag(job)
}

// NextRun возвращает время следующего запуска задачи
func (s *Scheduler) NextRun(job string) (time.Time, bool) {
	jobs, err := s.cron.FindJobsByTag(job)
	if err != nil || len(jobs) == 0 {
		return time.Time{}, false
	}
	return jobs[0].NextRun(), true
}

func (s *Scheduler) jobContext() (context.Context, context.CancelFunc) {
	s.mu.Lock()
	parent := s.ctx
	s.mu.Unlock()
	return context.WithTimeout(parent, s.config.JobTimeout)
}

func (s *Scheduler) runNotification() {
	ctx, cancel := s.jobContext()
	defer cancel()

	start := time.Now()
	err := s.sender.SendDailyNotification(ctx)
	metrics.RecordJob(scheduler.JobNotification, metrics.Status(err), time.Since(start).Seconds())
	if err != nil {
		s.log.Error("Daily notification failed", logger.Error(err))
	}
}

func (s *Scheduler) runScheduleInit() {
	ctx, cancel := s.jobContext()
	defer cancel()

	start := time.Now()
	result, err := s.init.EnsureDefaultScheduleWindow(ctx)
	metrics.RecordJob(scheduler.JobScheduleInit, metrics.Status(err), time.Since(start).Seconds())
	if err != nil {
		s.log.Error("Schedule init failed", logger.Error(err))
		return
	}
	s.log.Info("Schedule init finished",
		logger.Int("created", result.Created),
		logger.Int("skipped", result.Skipped),
		logger.Int("failed", result.Failed),
	)
}

// runKeepAlive дергает собственный /health, чтобы бесплатный хостинг не усыплял сервис
func (s *Scheduler) runKeepAlive() {
	ctx, cancel := s.jobContext()
	defer cancel()

	start := time.Now()
	err := s.ping(ctx)
	metrics.RecordJob(scheduler.JobKeepAlive, metrics.Status(err), time.Since(start).Seconds())
	if err != nil {
		s.log.Warn("Keep-alive ping failed", logger.Error(err))
		return
	}
	s.log.Debug("Keep-alive ping ok")
}

func (s *Scheduler) ping(ctx context.Context) error {
	url := strings.TrimRight(s.config.AppURL, "/") + "/health"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}
