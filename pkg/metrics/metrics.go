package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики для Telegram бота
var (
	// Обработка обновлений
	UpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yoga_bot_updates_total",
			Help: "Общее количество обработанных обновлений Telegram",
		},
		[]string{"handler", "status"},
	)

	UpdateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yoga_bot_update_duration_seconds",
			Help:    "Время обработки обновлений в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler"},
	)

	// Расписание
	ScheduleDaysCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yoga_bot_schedule_days_created_total",
			Help: "Количество дней расписания, созданных по умолчанию",
		},
	)

	ScheduleDaysRested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yoga_bot_schedule_days_rested_total",
			Help: "Количество дней, переведенных в выходной",
		},
	)

	// Записи на занятия
	SubscriptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yoga_bot_subscriptions_total",
			Help: "Количество записей и отмен по типу занятия",
		},
		[]string{"action", "class_type"},
	)

	// Уведомления
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yoga_bot_notifications_sent_total",
			Help: "Общее количество отправленных уведомлений",
		},
		[]string{"type", "status"},
	)

	// Фоновые задачи
	JobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yoga_bot_job_runs_total",
			Help: "Количество запусков фоновых задач",
		},
		[]string{"job", "status"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yoga_bot_job_duration_seconds",
			Help:    "Длительность фоновых задач",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)

	// Хранилище
	StorageOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yoga_bot_storage_operations_total",
			Help: "Общее количество операций с хранилищем",
		},
		[]string{"operation", "table", "status"},
	)

	StorageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yoga_bot_storage_operation_duration_seconds",
			Help:    "Длительность операций с хранилищем",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	// Производительность
	MemoryUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "yoga_bot_memory_usage_bytes",
			Help: "Использование памяти в байтах",
		},
	)

	GoroutinesCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "yoga_bot_goroutines_count",
			Help: "Количество активных горутин",
		},
	)

	// Ошибки
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yoga_bot_errors_total",
			Help: "Общее количество ошибок",
		},
		[]string{"component", "error_type"},
	)

	// HTTP сервер
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yoga_bot_http_requests_total",
			Help: "Общее количество HTTP запросов",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yoga_bot_http_request_duration_seconds",
			Help:    "Время обработки HTTP запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordUpdate записывает метрику обработки обновления
func RecordUpdate(handler, status string, seconds float64) {
	UpdatesTotal.WithLabelValues(handler, status).Inc()
	UpdateDuration.WithLabelValues(handler).Observe(seconds)
}

// RecordScheduleDayCreated записывает создание дня по умолчанию
func RecordScheduleDayCreated() {
	ScheduleDaysCreated.Inc()
}

// RecordScheduleDayRested записывает перевод дня в выходной
func RecordScheduleDayRested() {
	ScheduleDaysRested.Inc()
}

// RecordSubscription записывает запись (subscribe) или отмену (unsubscribe)
func RecordSubscription(action, classType string) {
	SubscriptionsTotal.WithLabelValues(action, classType).Inc()
}

// RecordNotification записывает метрику отправки уведомления
func RecordNotification(notificationType, status string) {
	NotificationsSent.WithLabelValues(notificationType, status).Inc()
}

// RecordJob записывает метрику запуска фоновой задачи
func RecordJob(job, status string, seconds float64) {
	JobRuns.WithLabelValues(job, status).Inc()
	JobDuration.WithLabelValues(job).Observe(seconds)
}

// UpdateRuntimeStats обновляет метрики памяти и горутин
func UpdateRuntimeStats() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	MemoryUsage.Set(float64(m.Alloc))
	GoroutinesCount.Set(float64(runtime.NumGoroutine()))
}

// RecordStorageOperation записывает метрику операции с хранилищем
func RecordStorageOperation(operation, table, status string, seconds float64) {
	StorageOperations.WithLabelValues(operation, table, status).Inc()
	StorageDuration.WithLabelValues(operation, table).Observe(seconds)
}

// RecordError записывает метрику ошибки
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// RecordHTTPRequest записывает метрику HTTP запроса
func RecordHTTPRequest(method, endpoint, status string, seconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(seconds)
}

// Status возвращает метку статуса для результата операции
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
