// Пакет config — загрузка и валидация конфигурации eventdesk
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации eventdesk.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- PostgreSQL ---

	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Имя пользователя PostgreSQL
	DBUser string
	// Пароль пользователя PostgreSQL
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string

	// --- Токены сессий ---

	// Секрет подписи HS256
	JWTSecret string
	// Срок действия выдаваемых токенов
	TokenTTL time.Duration

	// --- Bootstrap-администратор ---

	// Имя bootstrap-администратора
	AdminUsername string
	// Пароль bootstrap-администратора (обязателен, пока нет ни одного Admin)
	AdminPassword string

	// --- Мониторинг зависимостей ---

	// Имя группы topologymetrics
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// ED_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("ED_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("ED_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("ED_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// ED_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("ED_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("ED_LOG_LEVEL: %w", err)
	}

	// ED_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("ED_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("ED_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- PostgreSQL ---

	// ED_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("ED_DB_HOST")
	if err != nil {
		return nil, err
	}

	// ED_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("ED_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("ED_DB_PORT: %w", err)
	}

	// ED_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("ED_DB_NAME")
	if err != nil {
		return nil, err
	}

	// ED_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("ED_DB_USER")
	if err != nil {
		return nil, err
	}

	// ED_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("ED_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// ED_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("ED_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("ED_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// --- Токены сессий ---

	// ED_JWT_SECRET — обязательный
	cfg.JWTSecret, err = getEnvRequired("ED_JWT_SECRET")
	if err != nil {
		return nil, err
	}
	if len(cfg.JWTSecret) < 16 {
		return nil, fmt.Errorf("ED_JWT_SECRET: секрет короче 16 символов")
	}

	// ED_TOKEN_TTL — срок действия токена (по умолчанию 1h)
	cfg.TokenTTL, err = getEnvDuration("ED_TOKEN_TTL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("ED_TOKEN_TTL: %w", err)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("ED_TOKEN_TTL: значение должно быть положительным")
	}

	// --- Bootstrap-администратор ---

	// ED_ADMIN_USERNAME — имя администратора (по умолчанию admin)
	cfg.AdminUsername = getEnvDefault("ED_ADMIN_USERNAME", "admin")

	// ED_ADMIN_PASSWORD — пароль администратора (опционален; провижининг
	// пропускается, если Admin уже существует)
	cfg.AdminPassword = getEnvDefault("ED_ADMIN_PASSWORD", "")

	// --- Мониторинг зависимостей ---

	// ED_DEPHEALTH_GROUP — группа topologymetrics (по умолчанию eventdesk)
	cfg.DephealthGroup = getEnvDefault("ED_DEPHEALTH_GROUP", "eventdesk")

	// ED_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("ED_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("ED_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	// ED_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("ED_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("ED_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL подключения к PostgreSQL (для метрик dephealth).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
