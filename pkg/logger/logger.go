package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

// LogLevel определяет уровень логирования
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = map[LogLevel]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

// String возвращает имя уровня
func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel разбирает уровень из строки конфигурации (debug, info, warn, error)
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "fatal":
		return LevelFatal, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger представляет структурированный логгер.
// Дочерние логгеры, созданные через With, разделяют уровень и вывод с родителем.
type Logger struct {
	core   *core
	fields []Field
}

type core struct {
	mu     sync.RWMutex
	level  LogLevel
	logger *log.Logger
}

// New создает новый логгер, пишущий в stdout
func New(level LogLevel) *Logger {
	return NewWithWriter(level, os.Stdout)
}

// NewWithWriter создает логгер с произвольным выводом (используется в тестах)
func NewWithWriter(level LogLevel, w io.Writer) *Logger {
	return &Logger{
		core: &core{
			level:  level,
			logger: log.New(w, "", 0),
		},
	}
}

// SetLevel устанавливает уровень логирования
func (l *Logger) SetLevel(level LogLevel) {
	l.core.mu.Lock()
	l.core.level = level
	l.core.mu.Unlock()
}

// Level возвращает текущий уровень
func (l *Logger) Level() LogLevel {
	l.core.mu.RLock()
	defer l.core.mu.RUnlock()
	return l.core.level
}

// With возвращает логгер с предустановленными полями
func (l *Logger) With(fields ...Field) *Logger {
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &Logger{core: l.core, fields: merged}
}

// Component возвращает логгер с полем component
func (l *Logger) Component(name string) *Logger {
	return l.With(String("component", name))
}

// Debug записывает debug сообщение
func (l *Logger) Debug(msg string, fields ...Field) {
	l.log(2, LevelDebug, msg, fields...)
}

// Info записывает info сообщение
func (l *Logger) Info(msg string, fields ...Field) {
	l.log(2, LevelInfo, msg, fields...)
}

// Warn записывает warning сообщение
func (l *Logger) Warn(msg string, fields ...Field) {
	l.log(2, LevelWarn, msg, fields...)
}

// Error записывает error сообщение
func (l *Logger) Error(msg string, fields ...Field) {
	l.log(2, LevelError, msg, fields...)
}

// Fatal записывает fatal сообщение и завершает программу
func (l *Logger) Fatal(msg string, fields ...Field) {
	l.log(2, LevelFatal, msg, fields...)
	os.Exit(1)
}

// log выполняет фактическое логирование; skip указывает глубину вызывающего кода
func (l *Logger) log(skip int, level LogLevel, msg string, fields ...Field) {
	if level < l.Level() {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")

	_, file, line, ok := runtime.Caller(skip)
	caller := "unknown"
	if ok {
		caller = fmt.Sprintf("%s:%d", getShortFileName(file), line)
	}

	var parts []string
	for _, field := range l.fields {
		parts = append(parts, field.String())
	}
	for _, field := range fields {
		parts = append(parts, field.String())
	}

	fieldsStr := ""
	if len(parts) > 0 {
		fieldsStr = " " + strings.Join(parts, " ")
	}

	l.core.logger.Println(fmt.Sprintf("[%s] %s %s %s%s",
		timestamp, level, caller, msg, fieldsStr))
}

// getShortFileName возвращает короткое имя файла
func getShortFileName(file string) string {
	parts := strings.Split(file, "/")
	if len(parts) >= 2 {
		return strings.Join(parts[len(parts)-2:], "/")
	}
	return file
}

// Field представляет поле логирования
type Field struct {
	Key   string
	Value interface{}
}

// String возвращает строковое представление поля
func (f Field) String() string {
	if s, ok := f.Value.(string); ok && strings.ContainsAny(s, " \t\n\"") {
		return fmt.Sprintf("%s=%q", f.Key, s)
	}
	return fmt.Sprintf("%s=%v", f.Key, f.Value)
}

// Вспомогательные функции для создания полей
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Error(err error) Field {
	return Field{Key: "error", Value: err}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Глобальный логгер по умолчанию
var defaultLogger = New(LevelInfo)

// Default возвращает глобальный логгер
func Default() *Logger {
	return defaultLogger
}

// SetDefault заменяет глобальный логгер
func SetDefault(l *Logger) {
	defaultLogger = l
}

// Глобальные функции логирования
func Debug(msg string, fields ...Field) {
	defaultLogger.log(2, LevelDebug, msg, fields...)
}

func Info(msg string, fields ...Field) {
	defaultLogger.log(2, LevelInfo, msg, fields...)
}

func Warn(msg string, fields ...Field) {
	defaultLogger.log(2, LevelWarn, msg, fields...)
}

func ErrorLog(msg string, fields ...Field) {
	defaultLogger.log(2, LevelError, msg, fields...)
}

func Fatal(msg string, fields ...Field) {
	defaultLogger.log(2, LevelFatal, msg, fields...)
	os.Exit(1)
}

func SetLevel(level LogLevel) {
	defaultLogger.SetLevel(level)
}
