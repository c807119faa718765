package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"yoga_schedule_bot/internal/storage"
	"yoga_schedule_bot/internal/storage/models"
	"yoga_schedule_bot/pkg/metrics"
)

// Поддерживаемые драйверы database/sql
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Колонки выбираются явно: дата приводится к тексту, чтобы DATE в Postgres
// и TEXT в SQLite читались одинаково
const scheduleColumns = `id, CAST(date AS TEXT) AS date, morning_time, morning_class,
	evening_time, evening_class, is_active, created_at, updated_at`

const subscriptionColumns = `id, telegram_id, schedule_id, class_type,
	CAST(class_date AS TEXT) AS class_date, subscribed_at`

const userColumns = `id, telegram_id, first_name, last_name, username, created_at, updated_at`

// Store реализует интерфейс Storage поверх SQL базы (SQLite или Postgres)
type Store struct {
	db *sqlx.DB
}

var _ storage.Storage = (*Store)(nil)

// New создает подключение и выполняет миграции.
// driver: "sqlite" (modernc) или "postgres" (lib/pq).
func New(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite поддерживает только одно write-подключение, а :memory: живет в рамках соединения
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}
	db.SetConnMaxLifetime(time.Hour)

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return store, nil
}

// migrate выполняет миграции базы данных
func (s *Store) migrate() error {
	queries := sqliteSchema
	if s.db.DriverName() == DriverPostgres {
		queries = postgresSchema
	} else {
		if _, err := s.db.Exec(`PRAGMA foreign_keys=ON`); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration query: %w", err)
		}
	}

	return nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS schedule (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT UNIQUE NOT NULL,
		morning_time TEXT,
		morning_class TEXT,
		evening_time TEXT,
		evening_class TEXT,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS bot_users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		telegram_id INTEGER UNIQUE NOT NULL,
		first_name TEXT,
		last_name TEXT,
		username TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		telegram_id INTEGER NOT NULL,
		schedule_id INTEGER NOT NULL,
		class_type TEXT NOT NULL,
		class_date TEXT NOT NULL,
		subscribed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(telegram_id, schedule_id, class_type),
		FOREIGN KEY(schedule_id) REFERENCES schedule(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS bot_settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_subscriptions_schedule ON subscriptions(schedule_id, class_type)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS schedule (
		id BIGSERIAL PRIMARY KEY,
		date DATE UNIQUE NOT NULL,
		morning_time TEXT,
		morning_class TEXT,
		evening_time TEXT,
		evening_class TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS bot_users (
		id BIGSERIAL PRIMARY KEY,
		telegram_id BIGINT UNIQUE NOT NULL,
		first_name TEXT,
		last_name TEXT,
		username TEXT,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id BIGSERIAL PRIMARY KEY,
		telegram_id BIGINT NOT NULL,
		schedule_id BIGINT NOT NULL REFERENCES schedule(id) ON DELETE CASCADE,
		class_type TEXT NOT NULL,
		class_date DATE NOT NULL,
		subscribed_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(telegram_id, schedule_id, class_type)
	)`,
	`CREATE TABLE IF NOT EXISTS bot_settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_subscriptions_schedule ON subscriptions(schedule_id, class_type)`,
}

// Close закрывает подключение к базе данных
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping проверяет подключение к базе данных
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// observe записывает метрику операции с хранилищем
func observe(operation, table string, start time.Time, err error) {
	metrics.RecordStorageOperation(operation, table, metrics.Status(err), time.Since(start).Seconds())
}

// GetScheduleByDate получает день расписания по дате; (nil, nil) если его нет
func (s *Store) GetScheduleByDate(ctx context.Context, date string) (sch *models.Schedule, err error) {
	defer func(start time.Time) { observe("get_by_date", "schedule", start, err) }(time.Now())

	sch = &models.Schedule{}
	query := s.db.Rebind(`SELECT ` + scheduleColumns + ` FROM schedule WHERE date = ?`)
	if err = s.db.GetContext(ctx, sch, query, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get schedule for %s: %w", date, err)
	}
	return sch, nil
}

// GetScheduleByID получает день расписания по ID; (nil, nil) если его нет
func (s *Store) GetScheduleByID(ctx context.Context, id int64) (sch *models.Schedule, err error) {
	defer func(start time.Time) { observe("get_by_id", "schedule", start, err) }(time.Now())

	sch = &models.Schedule{}
	query := s.db.Rebind(`SELECT ` + scheduleColumns + ` FROM schedule WHERE id = ?`)
	if err = s.db.GetContext(ctx, sch, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get schedule %d: %w", id, err)
	}
	return sch, nil
}

// GetSchedulesBetween получает дни расписания в диапазоне [from, to] по возрастанию даты
func (s *Store) GetSchedulesBetween(ctx context.Context, from, to string) (days []*models.Schedule, err error) {
	defer func(start time.Time) { observe("get_between", "schedule", start, err) }(time.Now())

	days = []*models.Schedule{}
	query := s.db.Rebind(`SELECT ` + scheduleColumns + ` FROM schedule
		WHERE date >= ? AND date <= ? ORDER BY date`)
	if err = s.db.SelectContext(ctx, &days, query, from, to); err != nil {
		return nil, fmt.Errorf("failed to get schedules between %s and %s: %w", from, to, err)
	}
	return days, nil
}

// CreateSchedule создает день расписания и возвращает сохраненную строку
func (s *Store) CreateSchedule(ctx context.Context, sch *models.Schedule) (created *models.Schedule, err error) {
	defer func(start time.Time) { observe("create", "schedule", start, err) }(time.Now())

	sch.Normalize()

	var id int64
	query := s.db.Rebind(`INSERT INTO schedule (date, morning_time, morning_class, evening_time, evening_class, is_active)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	err = s.db.QueryRowxContext(ctx, query,
		sch.Date, sch.MorningTime, sch.MorningClass, sch.EveningTime, sch.EveningClass, sch.IsActive,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create schedule for %s: %w", sch.Date, err)
	}

	return s.GetScheduleByID(ctx, id)
}

// UpdateSchedule перезаписывает слоты дня по дате; (nil, nil) если дня нет
func (s *Store) UpdateSchedule(ctx context.Context, sch *models.Schedule) (updated *models.Schedule, err error) {
	defer func(start time.Time) { observe("update", "schedule", start, err) }(time.Now())

	sch.Normalize()

	query := s.db.Rebind(`UPDATE schedule SET morning_time = ?, morning_class = ?, evening_time = ?,
		evening_class = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE date = ?`)
	result, err := s.db.ExecContext(ctx, query,
		sch.MorningTime, sch.MorningClass, sch.EveningTime, sch.EveningClass, sch.IsActive, sch.Date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update schedule for %s: %w", sch.Date, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return nil, nil
	}

	return s.GetScheduleByDate(ctx, sch.Date)
}

// SaveUser создает или обновляет пользователя по telegram_id
func (s *Store) SaveUser(ctx context.Context, user *models.BotUser) (err error) {
	defer func(start time.Time) { observe("upsert", "bot_users", start, err) }(time.Now())

	query := s.db.Rebind(`INSERT INTO bot_users (telegram_id, first_name, last_name, username)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (telegram_id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			username = excluded.username,
			updated_at = CURRENT_TIMESTAMP`)
	if _, err = s.db.ExecContext(ctx, query, user.TelegramID, user.FirstName, user.LastName, user.Username); err != nil {
		return fmt.Errorf("failed to save user %d: %w", user.TelegramID, err)
	}
	return nil
}

// GetUserByTelegramID получает пользователя; (nil, nil) если его нет
func (s *Store) GetUserByTelegramID(ctx context.Context, telegramID int64) (user *models.BotUser, err error) {
	defer func(start time.Time) { observe("get", "bot_users", start, err) }(time.Now())

	user = &models.BotUser{}
	query := s.db.Rebind(`SELECT ` + userColumns + ` FROM bot_users WHERE telegram_id = ?`)
	if err = s.db.GetContext(ctx, user, query, telegramID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user %d: %w", telegramID, err)
	}
	return user, nil
}

// GetUsersByTelegramIDs получает пользователей одним запросом
func (s *Store) GetUsersByTelegramIDs(ctx context.Context, telegramIDs []int64) (users []*models.BotUser, err error) {
	users = []*models.BotUser{}
	if len(telegramIDs) == 0 {
		return users, nil
	}
	defer func(start time.Time) { observe("get_many", "bot_users", start, err) }(time.Now())

	query, args, err := sqlx.In(`SELECT `+userColumns+` FROM bot_users WHERE telegram_id IN (?)`, telegramIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build users query: %w", err)
	}
	if err = s.db.SelectContext(ctx, &users, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

// Subscribe записывает пользователя на занятие; повторная запись ничего не меняет
func (s *Store) Subscribe(ctx context.Context, sub *models.Subscription) (err error) {
	defer func(start time.Time) { observe("insert", "subscriptions", start, err) }(time.Now())

	query := s.db.Rebind(`INSERT INTO subscriptions (telegram_id, schedule_id, class_type, class_date)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (telegram_id, schedule_id, class_type) DO NOTHING`)
	if _, err = s.db.ExecContext(ctx, query, sub.TelegramID, sub.ScheduleID, string(sub.ClassType), sub.ClassDate); err != nil {
		return fmt.Errorf("failed to subscribe %d to %d/%s: %w", sub.TelegramID, sub.ScheduleID, sub.ClassType, err)
	}
	return nil
}

// Unsubscribe удаляет все записи пользователя на занятие
func (s *Store) Unsubscribe(ctx context.Context, telegramID, scheduleID int64, classType models.ClassType) (err error) {
	defer func(start time.Time) { observe("delete", "subscriptions", start, err) }(time.Now())

	query := s.db.Rebind(`DELETE FROM subscriptions WHERE telegram_id = ? AND schedule_id = ? AND class_type = ?`)
	if _, err = s.db.ExecContext(ctx, query, telegramID, scheduleID, string(classType)); err != nil {
		return fmt.Errorf("failed to unsubscribe %d from %d/%s: %w", telegramID, scheduleID, classType, err)
	}
	return nil
}

// ListSubscriptions получает записи на занятие в порядке их создания
func (s *Store) ListSubscriptions(ctx context.Context, scheduleID int64, classType models.ClassType) (subs []*models.Subscription, err error) {
	defer func(start time.Time) { observe("list", "subscriptions", start, err) }(time.Now())

	subs = []*models.Subscription{}
	query := s.db.Rebind(`SELECT ` + subscriptionColumns + ` FROM subscriptions
		WHERE schedule_id = ? AND class_type = ? ORDER BY id`)
	if err = s.db.SelectContext(ctx, &subs, query, scheduleID, string(classType)); err != nil {
		return nil, fmt.Errorf("failed to list subscriptions for %d/%s: %w", scheduleID, classType, err)
	}
	return subs, nil
}

// GetSetting получает значение настройки; ok=false если ее нет
func (s *Store) GetSetting(ctx context.Context, key string) (value string, ok bool, err error) {
	defer func(start time.Time) { observe("get", "bot_settings", start, err) }(time.Now())

	query := s.db.Rebind(`SELECT value FROM bot_settings WHERE key = ?`)
	if err = s.db.GetContext(ctx, &value, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, true, nil
}

// SetSetting сохраняет значение настройки
func (s *Store) SetSetting(ctx context.Context, key, value string) (err error) {
	defer func(start time.Time) { observe("upsert", "bot_settings", start, err) }(time.Now())

	query := s.db.Rebind(`INSERT INTO bot_settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`)
	if _, err = s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}
