package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Redis     RedisConfig
	Session   SessionConfig
	Intake    IntakeConfig
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port           string
	ReadTimeout    int      `mapstructure:"read_timeout"`
	WriteTimeout   int      `mapstructure:"write_timeout"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// BackendConfig содержит адрес API оценки кандидатов
type BackendConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// RequestTimeoutSec: 0 - без таймаута на стороне клиента
	RequestTimeoutSec int `mapstructure:"request_timeout_sec"`
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Используется для всех режимов.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Альтернативный адрес для режима 'single'.
	// Используется, если Mode="single" и Addrs пустой.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	// MaxRetries: Максимальное количество попыток переподключения (-1 - бесконечно).
	MaxRetries int `mapstructure:"max_retries"`

	// MinRetryBackoff, MaxRetryBackoff: интервалы между попытками в миллисекундах
	MinRetryBackoff int `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"`
}

// SessionConfig содержит настройки сессии работодателя
type SessionConfig struct {
	CookieName  string `mapstructure:"cookie_name"`
	Secret      string `mapstructure:"secret"`
	LifetimeHrs int    `mapstructure:"lifetime_hours"`
}

// IntakeConfig содержит настройки анкеты кандидата
type IntakeConfig struct {
	CookieName       string  `mapstructure:"cookie_name"`
	PollIntervalMs   int     `mapstructure:"poll_interval_ms"`
	IdleTimeoutMin   int     `mapstructure:"idle_timeout_min"`
	UnwatchedPollSec int     `mapstructure:"unwatched_poll_timeout_sec"`
	QuestionBankPath string  `mapstructure:"question_bank_path"`
	MaxScore         float64 `mapstructure:"max_score"`
}

// RateLimitConfig содержит лимиты запросов на вход и отправку анкеты
type RateLimitConfig struct {
	LoginPerMinute  int `mapstructure:"login_per_minute"`
	SubmitPerMinute int `mapstructure:"submit_per_minute"`
}

// PollInterval возвращает интервал опроса статуса оценки
func (c *IntakeConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// IdleTimeout возвращает время бездействия, после которого анкета удаляется
func (c *IntakeConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutMin) * time.Minute
}

// UnwatchedPollTimeout возвращает, сколько опрос идет без подписчиков
func (c *IntakeConfig) UnwatchedPollTimeout() time.Duration {
	return time.Duration(c.UnwatchedPollSec) * time.Second
}

// Lifetime возвращает срок жизни сессии работодателя
func (c *SessionConfig) Lifetime() time.Duration {
	return time.Duration(c.LifetimeHrs) * time.Hour
}

// RequestTimeout возвращает таймаут запроса к бэкенду (0 - без таймаута)
func (c *BackendConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// Load загружает конфигурацию из файла
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Используем новый экземпляр Viper, чтобы избежать глобального состояния

	// 1. Значения по умолчанию
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.read_timeout", 10)
	vip.SetDefault("server.write_timeout", 10)
	vip.SetDefault("backend.base_url", "http://localhost:8000")
	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("redis.addr", "localhost:6379")
	vip.SetDefault("session.cookie_name", "authToken")
	vip.SetDefault("session.lifetime_hours", 24)
	vip.SetDefault("intake.cookie_name", "intake_sid")
	vip.SetDefault("intake.poll_interval_ms", 2000)
	vip.SetDefault("intake.idle_timeout_min", 30)
	vip.SetDefault("intake.unwatched_poll_timeout_sec", 120)
	vip.SetDefault("rate_limit.login_per_minute", 5)
	vip.SetDefault("rate_limit.submit_per_minute", 10)

	// 2. Привязываем переменные окружения ЯВНО
	// Привязка для секции Backend. API_BASE_URL сохранен для совместимости со старым фронтендом.
	vip.BindEnv("backend.base_url", "BACKEND_BASE_URL", "API_BASE_URL")
	vip.BindEnv("backend.request_timeout_sec", "BACKEND_REQUEST_TIMEOUT_SEC")

	// Привязка для секции Redis
	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	// Привязка для секции Session
	vip.BindEnv("session.secret", "SESSION_SECRET")
	vip.BindEnv("session.lifetime_hours", "SESSION_LIFETIME_HOURS")

	// Привязка для секции Intake
	vip.BindEnv("intake.poll_interval_ms", "INTAKE_POLL_INTERVAL_MS")
	vip.BindEnv("intake.idle_timeout_min", "INTAKE_IDLE_TIMEOUT_MIN")
	vip.BindEnv("intake.unwatched_poll_timeout_sec", "INTAKE_UNWATCHED_POLL_TIMEOUT_SEC")
	vip.BindEnv("intake.question_bank_path", "INTAKE_QUESTION_BANK_PATH")
	vip.BindEnv("intake.max_score", "INTAKE_MAX_SCORE")

	// Привязка для Server
	vip.BindEnv("server.port", "SERVER_PORT")

	// 3. Читаем файл конфигурации (не страшно, если его нет, т.к. есть BindEnv)
	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	// 4. Анмаршалим конфигурацию (Viper объединит значения из файла и привязанных env vars)
	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Логирование конфигурации (только в debug режиме)
	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("Backend Base URL: %s", cfg.Backend.BaseURL)
		log.Printf("Backend Request Timeout: %ds", cfg.Backend.RequestTimeoutSec)
		log.Printf("Redis Addr: %s", cfg.Redis.Addr)
		log.Printf("Redis Mode: %s", cfg.Redis.Mode)
		log.Printf("Session Cookie: %s", cfg.Session.CookieName)
		log.Printf("Session Secret Set: %t", cfg.Session.Secret != "")
		log.Printf("Intake Poll Interval: %dms", cfg.Intake.PollIntervalMs)
		log.Printf("Intake Question Bank: %q", cfg.Intake.QuestionBankPath)
		log.Printf("-----------------------------------------")
	}

	// 6. Проверка обязательных параметров
	if cfg.Session.Secret == "" {
		return nil, fmt.Errorf("session secret is required in config (check SESSION_SECRET env var)")
	}
	if cfg.Intake.PollIntervalMs <= 0 {
		return nil, fmt.Errorf("intake.poll_interval_ms must be positive, got %d", cfg.Intake.PollIntervalMs)
	}
	if cfg.Backend.RequestTimeoutSec < 0 {
		return nil, fmt.Errorf("backend.request_timeout_sec must not be negative, got %d", cfg.Backend.RequestTimeoutSec)
	}

	return &cfg, nil
}
