package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v8"

	"finbot/internal/log"
)

type Config struct {
	// HTTP Server
	Port             string        `env:"PORT" envDefault:"8081"`
	HTTPReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
	HTTPIdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Database
	SQLiteDBPath string `env:"SQLITE_DB_PATH" envDefault:"./data/finbot.db"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// AMQP change events, disabled when the URL is empty
	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"finbot"`

	Telegram Telegram `envPrefix:"TELEGRAM_"`
}

// Telegram configures the bot process
type Telegram struct {
	BotKey      string        `env:"BOT_KEY"`
	PollTimeout time.Duration `env:"POLL_TIMEOUT" envDefault:"10s"`
	MetricsAddr string        `env:"METRICS_ADDR"`
}

// Load parses the configuration from the process environment
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the configuration from the given variables only
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Port
}

// SlogLevel returns the configured log level
func (c *Config) SlogLevel() slog.Level {
	return log.ParseLevel(c.LogLevel)
}

// Validate checks the settings used by the API server and returns every
// problem found in one error
func (c *Config) Validate() error {
	errors := c.validateCommon()

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	}

	for name, d := range map[string]time.Duration{
		"HTTP read timeout":  c.HTTPReadTimeout,
		"HTTP write timeout": c.HTTPWriteTimeout,
		"HTTP idle timeout":  c.HTTPIdleTimeout,
		"shutdown timeout":   c.ShutdownTimeout,
	} {
		if d <= 0 {
			errors = append(errors, fmt.Sprintf("invalid %s %v: must be positive", name, d))
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	return joinErrors(errors)
}

// ValidateBot checks the settings used by the bot process
func (c *Config) ValidateBot() error {
	errors := c.validateCommon()

	if c.Telegram.BotKey == "" {
		errors = append(errors, "TELEGRAM_BOT_KEY is required")
	}
	if c.Telegram.PollTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid telegram poll timeout %v: must be at least 1 second", c.Telegram.PollTimeout))
	}
	if c.Telegram.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(c.Telegram.MetricsAddr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid telegram metrics address '%s': %v", c.Telegram.MetricsAddr, err))
		}
	}
	if c.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be positive", c.ShutdownTimeout))
	}

	return joinErrors(errors)
}

func (c *Config) validateCommon() []string {
	var errors []string

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	return errors
}

func joinErrors(errors []string) error {
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}
