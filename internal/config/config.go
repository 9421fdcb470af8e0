package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
)

// ErrInvalidConfig возвращается, когда значения конфигурации вне допустимых границ
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	DoctorService DoctorServiceConfig `toml:"doctor_service"`
	Redis         RedisConfig         `toml:"redis"`
	Scheduling    SchedulingConfig    `toml:"scheduling"`
}

// ServerConfig параметры HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig параметры подключения к PostgreSQL
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

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig параметры логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig параметры prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// DoctorServiceConfig клиент сервиса профилей врачей
type DoctorServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// RedisConfig блокировка слота на время бронирования
type RedisConfig struct {
	Enabled        bool   `toml:"enabled"`
	Addr           string `toml:"addr"`
	Password       string `toml:"password"`
	DB             int    `toml:"db"`
	LockTTLSeconds int    `toml:"lock_ttl_seconds"`
}

// SchedulingConfig значения по умолчанию для генерации слотов.
// Используются, если в БД нет ни настроек врача, ни глобальных настроек.
type SchedulingConfig struct {
	SlotGranularityMinutes int `toml:"slot_granularity_minutes"`
	BreakDurationMinutes   int `toml:"break_duration_minutes"`
}

// Load читает конфигурацию из TOML файла.
// Если рядом есть .env, переменные из него попадают в окружение и перекрывают значения файла.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет границы значений
func (c *Config) Validate() error {
	s := c.Scheduling
	if s.SlotGranularityMinutes < domain.MinSlotGranularityMinutes || s.SlotGranularityMinutes > domain.MaxSlotGranularityMinutes {
		return fmt.Errorf("%w: scheduling.slot_granularity_minutes must be in [%d, %d], got %d",
			ErrInvalidConfig, domain.MinSlotGranularityMinutes, domain.MaxSlotGranularityMinutes, s.SlotGranularityMinutes)
	}
	if s.BreakDurationMinutes < domain.MinBreakDurationMinutes || s.BreakDurationMinutes > domain.MaxBreakDurationMinutes {
		return fmt.Errorf("%w: scheduling.break_duration_minutes must be in [%d, %d], got %d",
			ErrInvalidConfig, domain.MinBreakDurationMinutes, domain.MaxBreakDurationMinutes, s.BreakDurationMinutes)
	}
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port %d", ErrInvalidConfig, c.Server.HTTPPort)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("%w: redis.addr is required when redis is enabled", ErrInvalidConfig)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("DOCTOR_SERVICE_URL"); v != "" {
		cfg.DoctorService.URL = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}

	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 300
	}

	if cfg.Logs.Level == "" {
		cfg.Logs.Level = "info"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.ServiceName == "" {
		cfg.Metrics.ServiceName = "hms-appointment-service"
	}

	if cfg.DoctorService.Timeout == 0 {
		cfg.DoctorService.Timeout = 5
	}

	if cfg.Redis.LockTTLSeconds == 0 {
		cfg.Redis.LockTTLSeconds = 10
	}

	if cfg.Scheduling.SlotGranularityMinutes == 0 {
		cfg.Scheduling.SlotGranularityMinutes = domain.DefaultSlotGranularityMinutes
	}
	if cfg.Scheduling.BreakDurationMinutes == 0 {
		cfg.Scheduling.BreakDurationMinutes = domain.DefaultBreakDurationMinutes
	}
}
