package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	TokenStoreMemory = "memory"
	TokenStoreRedis  = "redis"
)

type Config struct {
	Server         ServerConfig         `toml:"server"`
	Database       DatabaseConfig       `toml:"database"`
	Logs           LogsConfig           `toml:"logs"`
	Metrics        MetricsConfig        `toml:"metrics"`
	Scheduling     SchedulingConfig     `toml:"scheduling"`
	GoogleCalendar GoogleCalendarConfig `toml:"google_calendar"`
	TokenStore     TokenStoreConfig     `toml:"token_store"`
	Redis          RedisConfig          `toml:"redis"`
	Kafka          KafkaConfig          `toml:"kafka"`
	RateLimit      RateLimitConfig      `toml:"rate_limit"`
}

// ServerConfig таймауты задаются в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type SchedulingConfig struct {
	TimeZone            string `toml:"time_zone"`
	SlotIntervalMinutes int    `toml:"slot_interval_minutes"`
}

// GoogleCalendarConfig интеграция выключена, если не задан client_id
type GoogleCalendarConfig struct {
	ClientID       string `toml:"client_id"`
	ClientSecret   string `toml:"client_secret"`
	RedirectURL    string `toml:"redirect_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	StateTTL       int    `toml:"state_ttl_seconds"`
}

type TokenStoreConfig struct {
	Backend         string `toml:"backend"`
	CleanupInterval int    `toml:"cleanup_interval_seconds"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

type KafkaConfig struct {
	Enabled      bool   `toml:"enabled"`
	Brokers      string `toml:"brokers"`
	Topic        string `toml:"topic"`
	WriteTimeout int    `toml:"write_timeout_seconds"`
}

type RateLimitConfig struct {
	Enabled bool    `toml:"enabled"`
	RPS     float64 `toml:"rps"`
	Burst   int     `toml:"burst"`
}

// Load читает конфигурацию из TOML файла, проставляет значения по умолчанию и валидирует
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse то же, что Load, но из строки
func Parse(data string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.HTTPPort, 8080)
	setDefault(&c.Server.ReadTimeout, 15)
	setDefault(&c.Server.WriteTimeout, 15)
	setDefault(&c.Server.IdleTimeout, 60)
	setDefault(&c.Server.ShutdownTimeout, 10)

	setDefault(&c.Database.Port, 5432)
	setDefault(&c.Database.MaxOpenConns, 25)
	setDefault(&c.Database.MaxIdleConns, 5)
	setDefault(&c.Database.ConnMaxLifetime, 300)
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "fieldservice"
	}

	if c.Scheduling.TimeZone == "" {
		c.Scheduling.TimeZone = "America/Sao_Paulo"
	}
	setDefault(&c.Scheduling.SlotIntervalMinutes, 30)

	setDefault(&c.GoogleCalendar.TimeoutSeconds, 10)
	setDefault(&c.GoogleCalendar.StateTTL, 600)

	if c.TokenStore.Backend == "" {
		c.TokenStore.Backend = TokenStoreMemory
	}
	setDefault(&c.TokenStore.CleanupInterval, 60)

	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "fieldservice:"
	}

	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "ticket-events"
	}
	setDefault(&c.Kafka.WriteTimeout, 5)

	if c.RateLimit.RPS <= 0 {
		c.RateLimit.RPS = 5
	}
	setDefault(&c.RateLimit.Burst, 10)
}

func setDefault(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}

// Validate проверяет значения, которые нельзя исправить значением по умолчанию
func (c *Config) Validate() error {
	if c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port out of range: %d", ErrInvalidConfig, c.Server.HTTPPort)
	}
	if c.Database.Port > 65535 {
		return fmt.Errorf("%w: database.port out of range: %d", ErrInvalidConfig, c.Database.Port)
	}
	if _, err := time.LoadLocation(c.Scheduling.TimeZone); err != nil {
		return fmt.Errorf("%w: scheduling.time_zone %q: %v", ErrInvalidConfig, c.Scheduling.TimeZone, err)
	}
	if c.Scheduling.SlotIntervalMinutes > 24*60 {
		return fmt.Errorf("%w: scheduling.slot_interval_minutes too large: %d", ErrInvalidConfig, c.Scheduling.SlotIntervalMinutes)
	}
	switch c.TokenStore.Backend {
	case TokenStoreMemory, TokenStoreRedis:
	default:
		return fmt.Errorf("%w: token_store.backend must be %q or %q, got %q", ErrInvalidConfig, TokenStoreMemory, TokenStoreRedis, c.TokenStore.Backend)
	}
	if c.Kafka.Enabled && strings.TrimSpace(c.Kafka.Brokers) == "" {
		return fmt.Errorf("%w: kafka.brokers is required when kafka is enabled", ErrInvalidConfig)
	}
	if c.GoogleCalendar.ClientID != "" && c.GoogleCalendar.RedirectURL == "" {
		return fmt.Errorf("%w: google_calendar.redirect_url is required", ErrInvalidConfig)
	}
	return nil
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Location часовой пояс, в котором считаются рабочие часы
func (s SchedulingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CalendarEnabled включена ли интеграция с Google Calendar
func (g GoogleCalendarConfig) CalendarEnabled() bool {
	return g.ClientID != ""
}

func (g GoogleCalendarConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

func (g GoogleCalendarConfig) StateTTLDuration() time.Duration {
	return time.Duration(g.StateTTL) * time.Second
}
