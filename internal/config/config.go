package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	applog "finboard/internal/log"
)

type Config struct {
	// HTTP Server
	Port            string
	ShutdownTimeout time.Duration

	// Database
	DBPath string

	// Admin access
	AdminPassword string
	AdminCompare  string

	// Logging
	LogLevel  string
	LogFormat string

	// AMQP change events; empty URL disables them
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Spreadsheet mirror
	GoogleSpreadsheetID  string
	GoogleSheetName      string
	MirrorResyncInterval time.Duration
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DBPath: getEnv("DB", "./data/finboard.db"),

		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminCompare:  getEnv("ADMIN_COMPARE", "plain"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", string(applog.FormatText)),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finboard"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "record_changes"),

		GoogleSpreadsheetID:  getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:      getEnv("GOOGLE_SHEET_NAME", "FinancialData"),
		MirrorResyncInterval: getEnvDuration("MIRROR_RESYNC_INTERVAL", 15*time.Minute),
	}
}

// Validate checks the settings shared by every entry point.
func (c *Config) Validate() error {
	return report(c.problems())
}

// ValidateServer additionally requires the admin secret.
func (c *Config) ValidateServer() error {
	problems := c.problems()
	if c.AdminPassword == "" {
		problems = append(problems, "ADMIN_PASSWORD is required to serve the API")
	}
	return report(problems)
}

// ValidateWorker additionally requires a broker and a spreadsheet.
func (c *Config) ValidateWorker() error {
	problems := c.problems()
	if c.AMQPURL == "" {
		problems = append(problems, "AMQP_URL is required by the worker")
	}
	if strings.TrimSpace(c.GoogleSpreadsheetID) == "" {
		problems = append(problems, "GOOGLE_SPREADSHEET_ID is required by the worker")
	}
	if strings.TrimSpace(c.GoogleSheetName) == "" {
		problems = append(problems, "GOOGLE_SHEET_NAME cannot be empty")
	}
	if c.MirrorResyncInterval < 0 {
		problems = append(problems, fmt.Sprintf("invalid mirror resync interval %v: must not be negative", c.MirrorResyncInterval))
	}
	return report(problems)
}

func (c *Config) problems() []string {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if strings.TrimSpace(c.DBPath) == "" {
		problems = append(problems, "database path (DB) cannot be empty")
	}

	switch strings.ToLower(c.AdminCompare) {
	case "plain", "constant_time", "constant-time":
	default:
		problems = append(problems, fmt.Sprintf("invalid ADMIN_COMPARE '%s': must be 'plain' or 'constant_time'", c.AdminCompare))
	}

	if _, err := applog.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("invalid LOG_LEVEL '%s': must be debug, info, warn or error", c.LogLevel))
	}

	switch applog.Format(c.LogFormat) {
	case applog.FormatText, applog.FormatJSON:
	default:
		problems = append(problems, fmt.Sprintf("invalid LOG_FORMAT '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if c.ShutdownTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("invalid shutdown timeout %v: must be positive", c.ShutdownTimeout))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", redact(c.AMQPURL), err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	return problems
}

func report(problems []string) error {
	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// EventsEnabled reports whether change events should be published.
func (c *Config) EventsEnabled() bool {
	return c.AMQPURL != ""
}

// SlogLevel returns the parsed log level, info when unparseable.
func (c *Config) SlogLevel() slog.Level {
	level, _ := applog.ParseLevel(c.LogLevel)
	return level
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// redact hides credentials embedded in a URL.
func redact(raw string) string {
	if i := strings.Index(raw, "@"); i >= 0 {
		if j := strings.Index(raw, "://"); j >= 0 && j < i {
			return raw[:j+3] + "***" + raw[i:]
		}
	}
	return raw
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
