// Package config loads and validates page analyzer configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	DB      DBConfig      `mapstructure:"db"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port            int    `mapstructure:"port"`
	SecretKey       string `mapstructure:"secret_key"`
	ShutdownSeconds int    `mapstructure:"shutdown_seconds"`
}

// HTTPConfig configures the outbound page fetcher.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MinConns        int           `mapstructure:"min_conns"`
	MaxConns        int           `mapstructure:"max_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MigrateOnStart  bool          `mapstructure:"migrate_on_start"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// MemoryDSN selects the in-memory repository instead of Postgres.
const MemoryDSN = "memory://"

// bareEnv maps conventional unprefixed environment variables onto config keys.
var bareEnv = map[string]string{
	"db.dsn":            "DATABASE_URL",
	"db.min_conns":      "MINCONN",
	"db.max_conns":      "MAXCONN",
	"server.secret_key": "SECRET_KEY",
	"server.port":       "PORT",
}

// Load builds a Config from disk/environment and validates it.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Read builds a Config from disk/environment without validating it.
func Read(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PAGEANALYZER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range bareEnv {
		prefixed := "PAGEANALYZER_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.shutdown_seconds", 10)
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.user_agent", "page-analyzer/0.1")
	v.SetDefault("db.min_conns", 2)
	v.SetDefault("db.max_conns", 3)
	v.SetDefault("db.max_conn_lifetime", 30*time.Minute)
	v.SetDefault("db.migrate_on_start", true)
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "info")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if err := c.ValidateFetch(); err != nil {
		return err
	}
	if c.DB.DSN == "" {
		return fmt.Errorf("db.dsn must be set (DATABASE_URL)")
	}
	if c.DB.MinConns < 1 {
		return fmt.Errorf("db.min_conns must be >= 1")
	}
	if c.DB.MaxConns < c.DB.MinConns {
		return fmt.Errorf("db.max_conns must be >= db.min_conns")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	return nil
}

// ValidateFetch checks only the settings a one-off page check needs.
func (c Config) ValidateFetch() error {
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	return nil
}

// FetchTimeout converts the HTTP timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// ShutdownTimeout bounds graceful HTTP shutdown.
func (c Config) ShutdownTimeout() time.Duration {
	if c.Server.ShutdownSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Server.ShutdownSeconds) * time.Second
}

// InMemory reports whether the DSN selects the in-memory repository.
func (c Config) InMemory() bool {
	return c.DB.DSN == MemoryDSN
}
