package config

import (
	"time"

	redisclient "github.com/mkrogh/explorerwatch/internal/infra/redis"
	"github.com/mkrogh/explorerwatch/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server     ServerConfig       `yaml:"server"`
	Currencies []CurrencyConfig   `yaml:"currencies"`
	Redis      redisclient.Config `yaml:"redis"`
	Logging    LoggingConfig      `yaml:"logging"`
	Database   postgres.Config    `yaml:"database"`
	ErrorLog   string             `yaml:"error_log"` // path of the append-only error log, empty disables it
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// CurrencyConfig holds settings for a watched currency.
type CurrencyConfig struct {
	Code          string        `yaml:"code"`
	Provider      string        `yaml:"provider"`       // "official" or "insight"
	CustomURL     string        `yaml:"custom_url"`     // overrides the provider's default base URL
	ScanInterval  time.Duration `yaml:"scan_interval"`  // time between polling passes
	RatePerSecond float64       `yaml:"rate_per_second"`
	Addresses     []string      `yaml:"addresses"`
}
