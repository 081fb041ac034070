package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/mkrogh/explorerwatch/internal/explorer"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	for i := range cfg.Currencies {
		if cfg.Currencies[i].Provider == "" {
			cfg.Currencies[i].Provider = explorer.ProviderOfficial
		}
		if cfg.Currencies[i].ScanInterval == 0 {
			cfg.Currencies[i].ScanInterval = 60 * time.Second
		}
		if cfg.Currencies[i].RatePerSecond == 0 {
			// Matches the explorers' informal courtesy limit.
			cfg.Currencies[i].RatePerSecond = 3
		}
	}

	return &cfg, nil
}
