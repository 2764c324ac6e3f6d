package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the server configuration.
const (
	DefaultHTTPPort        = 8000
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultDriver          = "mongo"
	DefaultURLEnv          = "DATABASE_URL"
	DefaultNameEnv         = "DATABASE_NAME"
	DefaultDatabaseName    = "coffee_growth"
	DefaultDBTimeout       = 10 * time.Second
	DefaultReadingsLimit   = 20

	// PortEnv overrides server.http_port when set.
	PortEnv = "PORT"
)

// Config holds the full server configuration parsed from config.yaml.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Readings ReadingsConfig `yaml:"readings"`
}

// ServerConfig holds HTTP listener and process settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API listens on (default 8000).
	HTTPPort int `yaml:"http_port"`

	// LogLevel is one of: debug | info | warn | error. Reloadable.
	LogLevel string `yaml:"log_level"`

	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// CORS controls cross-origin access to the API. Reloadable.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig lists the origins browsers may call the API from.
// A single "*" allows every origin.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig selects and locates the document store.
type DatabaseConfig struct {
	// Driver is one of: mongo | memory.
	Driver string `yaml:"driver"`

	// URLEnv is the name of the environment variable that holds the
	// connection string. Used when Driver == "mongo".
	URLEnv string `yaml:"url_env"`

	// NameEnv is the name of the environment variable that holds the
	// database name. Falls back to Name when unset.
	NameEnv string `yaml:"name_env"`

	// Name is the database name used when NameEnv is not set in the environment.
	Name string `yaml:"name"`

	// Timeout bounds connecting to and pinging the store at startup.
	Timeout time.Duration `yaml:"timeout"`
}

// URL returns the connection string resolved from the environment.
func (d DatabaseConfig) URL() string {
	if d.URLEnv == "" {
		return ""
	}
	return os.Getenv(d.URLEnv)
}

// DatabaseName returns the database name from the environment, or Name.
func (d DatabaseConfig) DatabaseName() string {
	if d.NameEnv != "" {
		if v := os.Getenv(d.NameEnv); v != "" {
			return v
		}
	}
	return d.Name
}

// ReadingsConfig controls the latest-readings endpoint.
type ReadingsConfig struct {
	// DefaultLimit is used when the request carries no limit parameter.
	DefaultLimit int `yaml:"default_limit"`
}

// Load reads and parses the config file at path. An empty path yields the
// defaults. Environment overrides are applied before validation.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        DefaultHTTPPort,
			LogLevel:        DefaultLogLevel,
			ShutdownTimeout: DefaultShutdownTimeout,
			CORS:            CORSConfig{AllowedOrigins: []string{"*"}},
		},
		Database: DatabaseConfig{
			Driver:  DefaultDriver,
			URLEnv:  DefaultURLEnv,
			NameEnv: DefaultNameEnv,
			Name:    DefaultDatabaseName,
			Timeout: DefaultDBTimeout,
		},
		Readings: ReadingsConfig{
			DefaultLimit: DefaultReadingsLimit,
		},
	}
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(PortEnv); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q is not a port number", PortEnv, v)
		}
		cfg.Server.HTTPPort = port
	}
	return nil
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	if _, err := ParseLevel(cfg.Server.LogLevel); err != nil {
		return fmt.Errorf("server.log_level: %w", err)
	}
	if cfg.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must not be negative")
	}
	switch cfg.Database.Driver {
	case "mongo":
		if cfg.Database.URLEnv == "" {
			return fmt.Errorf("database.url_env is required for driver mongo")
		}
	case "memory":
	default:
		return fmt.Errorf("database.driver %q unknown: want mongo|memory", cfg.Database.Driver)
	}
	if cfg.Database.DatabaseName() == "" {
		return fmt.Errorf("database.name must not be empty")
	}
	if cfg.Database.Timeout <= 0 {
		return fmt.Errorf("database.timeout must be positive")
	}
	if cfg.Readings.DefaultLimit <= 0 {
		return fmt.Errorf("readings.default_limit must be positive")
	}
	return nil
}

// ParseLevel converts a log_level string to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown level %q: want debug|info|warn|error", s)
	}
}
