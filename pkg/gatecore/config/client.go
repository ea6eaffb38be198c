package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Client holds the settings of a gatecore client.
type Client struct {
	// GatewayURL is the websocket endpoint shards connect to.
	GatewayURL string `env:"GATECORE_GATEWAY_URL"`

	// Shards is the number of shards this process runs.
	Shards int `env:"GATECORE_SHARDS"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"GATECORE_LOG_LEVEL"`

	// Metrics and Tracing enable OpenTelemetry instruments.
	Metrics bool `env:"GATECORE_METRICS"`
	Tracing bool `env:"GATECORE_TRACING"`

	// DropLogPath is the SQLite file for dropped events.
	// Empty keeps dropped events in memory.
	DropLogPath string `env:"GATECORE_DROP_LOG_PATH"`

	// DropLogMaxRecords bounds the in-memory drop log; the oldest record
	// is evicted first. Zero means unbounded. Ignored for SQLite.
	DropLogMaxRecords int `env:"GATECORE_DROP_LOG_MAX_RECORDS"`

	// DropRetention is how long dropped events are kept. Zero keeps them
	// until the log is pruned explicitly.
	DropRetention time.Duration `env:"GATECORE_DROP_RETENTION"`
}

// DefaultClient returns the built-in settings.
func DefaultClient() Client {
	return Client{
		GatewayURL:    "wss://gateway.discord.gg/?v=10&encoding=json",
		Shards:        1,
		LogLevel:          "info",
		DropLogMaxRecords: 1000,
		DropRetention:     24 * time.Hour,
	}
}

// ClientFrom reads client settings from c, falling back to DefaultClient
// for missing keys.
func ClientFrom(c Config) Client {
	def := DefaultClient()
	return Client{
		GatewayURL:        c.String("gateway_url", def.GatewayURL),
		Shards:            c.Int("shards", def.Shards),
		LogLevel:          c.String("log_level", def.LogLevel),
		Metrics:           c.Bool("metrics", def.Metrics),
		Tracing:           c.Bool("tracing", def.Tracing),
		DropLogPath:       c.String("drop_log_path", def.DropLogPath),
		DropLogMaxRecords: c.Int("drop_log_max_records", def.DropLogMaxRecords),
		DropRetention:     c.Duration("drop_retention", def.DropRetention),
	}
}

// LoadClient loads defaults, then the file at path if path is not empty,
// then environment overrides, and validates the result.
func LoadClient(path string) (Client, error) {
	cfg := DefaultClient()
	if path != "" {
		raw, err := FromFile(path)
		if err != nil {
			return Client{}, err
		}
		cfg = ClientFrom(raw)
	}
	if err := ParseEnv(&cfg); err != nil {
		return Client{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Client{}, err
	}
	return cfg, nil
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Validate checks the settings for consistency.
func (c Client) Validate() error {
	var errs []error
	if c.Shards < 1 {
		errs = append(errs, fmt.Errorf("shards must be at least 1, got %d", c.Shards))
	}
	if _, ok := levels[strings.ToLower(c.LogLevel)]; !ok {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	if c.DropLogMaxRecords < 0 {
		errs = append(errs, fmt.Errorf("drop log max records must not be negative, got %d", c.DropLogMaxRecords))
	}
	if c.DropRetention < 0 {
		errs = append(errs, fmt.Errorf("drop retention must not be negative, got %s", c.DropRetention))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid client config: %w", err)
	}
	return nil
}

// SlogLevel returns LogLevel as a slog level, defaulting to info.
func (c Client) SlogLevel() slog.Level {
	if l, ok := levels[strings.ToLower(c.LogLevel)]; ok {
		return l
	}
	return slog.LevelInfo
}
