package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"

	"github.com/Black-And-White-Club/step-bot/internal/observability"
)

// Grid backends.
const (
	GridBackendSheets = "sheets"
	GridBackendXLSX   = "xlsx"
	GridBackendMemory = "memory"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	EventBus      EventBusConfig      `yaml:"eventbus"`
	Grid          GridConfig          `yaml:"grid"`
	Awards        AwardsConfig        `yaml:"awards"`
	Messages      MessagesConfig      `yaml:"messages"`
	HTTP          HTTPConfig          `yaml:"http"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn" env:"DATABASE_URL, overwrite"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL string `yaml:"url" env:"NATS_URL, overwrite"`
}

// EventBusConfig selects the message transport.
type EventBusConfig struct {
	Driver     string `yaml:"driver" env:"EVENTBUS_DRIVER, overwrite"` // nats|gochannel
	QueueGroup string `yaml:"queue_group" env:"EVENTBUS_QUEUE_GROUP, overwrite"`
}

// GridConfig configures the shared step spreadsheet.
type GridConfig struct {
	Backend           string        `yaml:"backend" env:"GRID_BACKEND, overwrite"` // sheets|xlsx|memory
	SpreadsheetID     string        `yaml:"spreadsheet_id" env:"GRID_SPREADSHEET_ID, overwrite"`
	Sheet             string        `yaml:"sheet" env:"GRID_SHEET, overwrite"`
	CredentialsPath   string        `yaml:"credentials_path" env:"GRID_CREDENTIALS_PATH, overwrite"`
	XLSXPath          string        `yaml:"xlsx_path" env:"GRID_XLSX_PATH, overwrite"`
	Timeout           time.Duration `yaml:"timeout" env:"GRID_TIMEOUT, overwrite"`
	RequestsPerMinute int           `yaml:"requests_per_minute" env:"GRID_REQUESTS_PER_MINUTE, overwrite"`
}

// AwardsConfig configures the daily medal run.
type AwardsConfig struct {
	Enabled      bool   `yaml:"enabled" env:"AWARDS_ENABLED, overwrite"`
	Timezone     string `yaml:"timezone" env:"AWARDS_TIMEZONE, overwrite"`
	RunAt        string `yaml:"run_at" env:"AWARDS_RUN_AT, overwrite"` // HH:MM in Timezone
	ReportChatID int64  `yaml:"report_chat_id" env:"AWARDS_REPORT_CHAT_ID, overwrite"`
}

// MessagesConfig configures the raw chat message log.
type MessagesConfig struct {
	Retention time.Duration `yaml:"retention" env:"MESSAGES_RETENTION, overwrite"`
}

// HTTPConfig configures the admin HTTP server.
type HTTPConfig struct {
	Addr string `yaml:"addr" env:"HTTP_ADDR, overwrite"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	LogLevel       string `yaml:"log_level" env:"LOG_LEVEL, overwrite"`
	Environment    string `yaml:"environment" env:"ENV, overwrite"`
	MetricsAddress string `yaml:"metrics_address" env:"METRICS_ADDRESS, overwrite"`
}

// LoadConfig loads the configuration from a YAML file, then applies
// environment overrides and defaults. A missing file is not an error: the
// environment alone may configure the bot.
func LoadConfig(filename string) (*Config, error) {
	return load(context.Background(), filename, envconfig.OsLookuper())
}

func load(ctx context.Context, filename string, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.EventBus.Driver == "" {
		c.EventBus.Driver = "nats"
	}
	if c.EventBus.QueueGroup == "" {
		c.EventBus.QueueGroup = "step-bot"
	}
	if c.Grid.Backend == "" {
		c.Grid.Backend = GridBackendSheets
	}
	if c.Grid.Sheet == "" {
		c.Grid.Sheet = "Steps"
	}
	if c.Grid.Timeout <= 0 {
		c.Grid.Timeout = 10 * time.Second
	}
	if c.Grid.RequestsPerMinute <= 0 {
		c.Grid.RequestsPerMinute = 60
	}
	if c.Awards.Timezone == "" {
		c.Awards.Timezone = "Europe/Moscow"
	}
	if c.Awards.RunAt == "" {
		c.Awards.RunAt = "20:00"
	}
	if c.Messages.Retention <= 0 {
		c.Messages.Retention = 24 * time.Hour
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
}

// Validate checks the settings the bot cannot start without.
func (c *Config) Validate() error {
	var errs []error

	if c.Postgres.DSN == "" {
		errs = append(errs, errors.New("postgres.dsn (DATABASE_URL) is required"))
	}
	switch c.EventBus.Driver {
	case "nats":
		if c.NATS.URL == "" {
			errs = append(errs, errors.New("nats.url (NATS_URL) is required for the nats event bus"))
		}
	case "gochannel":
	default:
		errs = append(errs, fmt.Errorf("eventbus.driver %q must be nats or gochannel", c.EventBus.Driver))
	}

	switch c.Grid.Backend {
	case GridBackendSheets:
		if c.Grid.SpreadsheetID == "" {
			errs = append(errs, errors.New("grid.spreadsheet_id is required for the sheets backend"))
		}
		if c.Grid.CredentialsPath == "" {
			errs = append(errs, errors.New("grid.credentials_path is required for the sheets backend"))
		}
	case GridBackendXLSX:
		if c.Grid.XLSXPath == "" {
			errs = append(errs, errors.New("grid.xlsx_path is required for the xlsx backend"))
		}
	case GridBackendMemory:
	default:
		errs = append(errs, fmt.Errorf("grid.backend %q must be sheets, xlsx or memory", c.Grid.Backend))
	}

	if _, err := time.LoadLocation(c.Awards.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("awards.timezone: %w", err))
	}
	if _, _, err := ParseClock(c.Awards.RunAt); err != nil {
		errs = append(errs, fmt.Errorf("awards.run_at: %w", err))
	}

	return errors.Join(errs...)
}

// AwardLocation returns the configured award timezone.
func (c *Config) AwardLocation() *time.Location {
	loc, err := time.LoadLocation(c.Awards.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseClock parses an HH:MM wall clock time.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock time %q, want HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}

func ToObsConfig(appCfg *Config) observability.Config {
	return observability.Config{
		ServiceName:    "step-bot",
		Environment:    appCfg.Observability.Environment,
		LogLevel:       appCfg.Observability.LogLevel,
		MetricsAddress: appCfg.Observability.MetricsAddress,
	}
}
