// Package config loads vitrine settings from the environment.
//
// Values come from process environment variables, optionally seeded from
// a .env file. A missing .env file is not an error.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// DefaultEnvFile is read by Load when no other file is named.
const DefaultEnvFile = ".env"

// Config is the full application configuration.
type Config struct {
	Env string `envconfig:"APP_ENV" default:"development"`

	Database DatabaseConfig
	Server   ServerConfig
	Locale   LocaleConfig
	Client   ClientConfig
}

// Environment returns the parsed deployment environment.
func (c Config) Environment() Environment {
	return ParseEnvironment(c.Env)
}

// DatabaseConfig locates and tunes the SQLite catalog.
type DatabaseConfig struct {
	Path         string        `envconfig:"DATABASE_PATH" default:"data/shopee-analytics.db"`
	ReadOnly     bool          `envconfig:"DATABASE_READ_ONLY" default:"false"`
	MaxOpenConns int           `envconfig:"DATABASE_MAX_OPEN_CONNS" default:"4"`
	BusyTimeout  time.Duration `envconfig:"DATABASE_BUSY_TIMEOUT" default:"5s"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"PORT" default:"3000"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	HealthTimeout   time.Duration `envconfig:"SERVER_HEALTH_TIMEOUT" default:"2s"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"*"`
	RateLimit       float64       `envconfig:"RATE_LIMIT_RPS" default:"20"`
	RateBurst       int           `envconfig:"RATE_LIMIT_BURST" default:"40"`
}

// Addr is the host:port the server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LocaleConfig selects how prices are rendered.
type LocaleConfig struct {
	Language string `envconfig:"LOCALE_LANGUAGE" default:"pt-BR"`
	Currency string `envconfig:"LOCALE_CURRENCY" default:"BRL"`
	Symbol   string `envconfig:"LOCALE_CURRENCY_SYMBOL" default:"R$"`
}

// ClientConfig tunes the resilient API client.
type ClientConfig struct {
	BaseURL          string        `envconfig:"API_BASE_URL" default:"http://localhost:3000/api"`
	Timeout          time.Duration `envconfig:"API_TIMEOUT" default:"5s"`
	ProbeTimeout     time.Duration `envconfig:"API_PROBE_TIMEOUT" default:"3s"`
	ProbeInterval    time.Duration `envconfig:"API_PROBE_INTERVAL" default:"10s"`
	Retries          int           `envconfig:"API_RETRIES" default:"2"`
	BackoffBase      time.Duration `envconfig:"API_BACKOFF_BASE" default:"300ms"`
	BackoffCap       time.Duration `envconfig:"API_BACKOFF_CAP" default:"5s"`
	FailureThreshold int           `envconfig:"API_FAILURE_THRESHOLD" default:"2"`
	CacheTTL         time.Duration `envconfig:"API_CACHE_TTL" default:"5m"`
}

// Load reads envFile (if it exists) into the process environment and then
// decodes the environment into a Config. An empty envFile means
// DefaultEnvFile.
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("file", envFile).Msg("no env file")
		} else {
			log.Warn().Err(err).Str("file", envFile).Msg("could not load env file")
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process environment config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Database.Path == "" {
		errs = append(errs, errors.New("DATABASE_PATH must not be empty"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Server.Port))
	}
	if c.Client.Retries < 0 {
		errs = append(errs, fmt.Errorf("API_RETRIES must be >= 0, got %d", c.Client.Retries))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS must be >= 0, got %v", c.Server.RateLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
