package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"todo_app/internal/logger"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvProduction = "production"
)

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is not set")
	ErrUnknownDriver      = errors.New("unknown DB_DRIVER")
)

type Config struct {
	AppPort string `yaml:"app_port"`
	AppEnv  string `yaml:"app_env"`

	DBDriver    string `yaml:"db_driver"`
	DatabaseURL string `yaml:"database_url"`
	SQLitePath  string `yaml:"sqlite_path"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	EventsChannel string `yaml:"events_channel"`

	APIRateLimit         int `yaml:"api_rate_limit"`
	APIRateWindowSeconds int `yaml:"api_rate_window_seconds"`

	AllowedOrigin string `yaml:"allowed_origin"`
	WebDir        string `yaml:"web_dir"`

	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`
}

func defaults() *Config {
	return &Config{
		AppPort:              "8080",
		AppEnv:               "development",
		DBDriver:             DriverPostgres,
		SQLitePath:           "todos.db",
		EventsChannel:        "todo_events",
		APIRateLimit:         120,
		APIRateWindowSeconds: 60,
		LogLevel:             "info",
	}
}

// Загрузка конфига: .env, затем CONFIG_FILE (yaml), затем env
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := Parse(os.Getenv)
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}
	return cfg
}

// Parse builds a Config from defaults, the optional yaml file named by
// CONFIG_FILE and finally the variables returned by getenv.
func Parse(getenv func(string) string) (*Config, error) {
	cfg := defaults()

	if path := getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	setString(getenv, "APP_PORT", &cfg.AppPort)
	setString(getenv, "APP_ENV", &cfg.AppEnv)
	setString(getenv, "DB_DRIVER", &cfg.DBDriver)
	setString(getenv, "DATABASE_URL", &cfg.DatabaseURL)
	setString(getenv, "SQLITE_PATH", &cfg.SQLitePath)
	setString(getenv, "REDIS_ADDR", &cfg.RedisAddr)
	setString(getenv, "REDIS_PASSWORD", &cfg.RedisPassword)
	setString(getenv, "EVENTS_CHANNEL", &cfg.EventsChannel)
	setString(getenv, "ALLOWED_ORIGIN", &cfg.AllowedOrigin)
	setString(getenv, "WEB_DIR", &cfg.WebDir)
	setString(getenv, "LOG_LEVEL", &cfg.LogLevel)

	// redis db index may legitimately be 0
	if v := getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.RedisDB = n
		}
	}
	setPositiveInt(getenv, "API_RATE_LIMIT", &cfg.APIRateLimit)
	setPositiveInt(getenv, "API_RATE_WINDOW_SECONDS", &cfg.APIRateWindowSeconds)

	if v := getenv("LOG_JSON"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LogJSON = b
		}
	}

	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, ErrMissingDatabaseURL
		}
	case DriverSQLite:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.DBDriver)
	}

	return cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func setString(getenv func(string) string, key string, dst *string) {
	if v := getenv(key); v != "" {
		*dst = v
	}
}

func setPositiveInt(getenv func(string) string, key string, dst *int) {
	if v := getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}
