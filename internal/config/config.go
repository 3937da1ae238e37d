package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/claude/fittrack/internal/logging"
	"gopkg.in/yaml.v3"
)

// Database drivers understood by storage.Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Log       LogConfig       `yaml:"log"`
	Redis     RedisConfig     `yaml:"redis"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	// Path is the database file for the sqlite driver.
	Path string `yaml:"path"`
}

// AuthConfig holds the optional shared API key. When empty, /api and /mcp
// are open to anyone who can reach the listener.
type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// RedisConfig enables per-user rate limiting of workout saves when Addr is set.
type RedisConfig struct {
	Addr          string `yaml:"addr"`
	Password      string `yaml:"password"`
	DB            int    `yaml:"db"`
	SavePerMinute int    `yaml:"save_per_minute"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// MigrationURL returns the database URL golang-migrate expects for the
// configured driver.
func (d DatabaseConfig) MigrationURL() string {
	if d.Driver == DriverSQLite {
		return "sqlite://" + d.Path
	}
	return d.DSN()
}

func defaults() *Config {
	return &Config{
		Database:  DatabaseConfig{Driver: DriverPostgres},
		Tailscale: TailscaleConfig{Hostname: "fittrack"},
		Log:       LogConfig{Level: "info", MaxSizeMB: 50, MaxBackups: 5},
		Redis:     RedisConfig{SavePerMinute: 10},
	}
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix FITTRACK_ and underscore-separated paths:
//
//	FITTRACK_SERVER_HOST, FITTRACK_SERVER_PORT,
//	FITTRACK_DB_DRIVER, FITTRACK_DB_HOST, FITTRACK_DB_PORT, FITTRACK_DB_NAME,
//	FITTRACK_DB_USER, FITTRACK_DB_PASSWORD, FITTRACK_DB_SSLMODE, FITTRACK_DB_PATH,
//	FITTRACK_AUTH_API_KEY,
//	FITTRACK_TAILSCALE_ENABLED, FITTRACK_TAILSCALE_HOSTNAME, FITTRACK_TAILSCALE_STATE_DIR,
//	FITTRACK_LOG_LEVEL, FITTRACK_LOG_FILE,
//	FITTRACK_REDIS_ADDR, FITTRACK_REDIS_PASSWORD,
//	FITTRACK_METRICS_ENABLED
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	setString("FITTRACK_SERVER_HOST", &cfg.Server.Host)
	setInt("FITTRACK_SERVER_PORT", &cfg.Server.Port)

	setString("FITTRACK_DB_DRIVER", &cfg.Database.Driver)
	setString("FITTRACK_DB_HOST", &cfg.Database.Host)
	setInt("FITTRACK_DB_PORT", &cfg.Database.Port)
	setString("FITTRACK_DB_NAME", &cfg.Database.Name)
	setString("FITTRACK_DB_USER", &cfg.Database.User)
	setString("FITTRACK_DB_PASSWORD", &cfg.Database.Password)
	setString("FITTRACK_DB_SSLMODE", &cfg.Database.SSLMode)
	setString("FITTRACK_DB_PATH", &cfg.Database.Path)

	setString("FITTRACK_AUTH_API_KEY", &cfg.Auth.APIKey)

	setBool("FITTRACK_TAILSCALE_ENABLED", &cfg.Tailscale.Enabled)
	setString("FITTRACK_TAILSCALE_HOSTNAME", &cfg.Tailscale.Hostname)
	setString("FITTRACK_TAILSCALE_STATE_DIR", &cfg.Tailscale.StateDir)

	setString("FITTRACK_LOG_LEVEL", &cfg.Log.Level)
	setString("FITTRACK_LOG_FILE", &cfg.Log.File)

	setString("FITTRACK_REDIS_ADDR", &cfg.Redis.Addr)
	setString("FITTRACK_REDIS_PASSWORD", &cfg.Redis.Password)

	setBool("FITTRACK_METRICS_ENABLED", &cfg.Metrics.Enabled)
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver)
	}

	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	if c.Redis.Addr != "" && c.Redis.SavePerMinute <= 0 {
		return fmt.Errorf("redis.save_per_minute must be positive")
	}
	return nil
}
