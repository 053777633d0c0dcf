package config

import "time"

// Config is the top-level configuration shared by both daemons. Each daemon
// reads only its own section; the log settings apply to whichever binary
// loaded the file.
type Config struct {
	LogLevel  string        `yaml:"log_level"`
	LogFormat string        `yaml:"log_format"`
	Gateway   GatewayConfig `yaml:"gateway"`
	Items     ItemsConfig   `yaml:"items"`
}

// GatewayConfig configures the simulation gateway daemon.
type GatewayConfig struct {
	Addr     string         `yaml:"addr"`
	Provider ProviderConfig `yaml:"provider"`
}

// ProviderConfig selects and configures the simulation provider backend.
type ProviderConfig struct {
	Mode         string `yaml:"mode"`     // mock or cloud
	BaseURL      string `yaml:"base_url"` // cloud mode only
	APIKey       string `yaml:"api_key"`  // falls back to CLOUD_API_KEY env
	Timeout      string `yaml:"timeout"`  // e.g. "30s"
	MaxRetries   int    `yaml:"max_retries"`
	RetryBackoff string `yaml:"retry_backoff"` // constant, linear, or exponential
	RetryBaseMs  int    `yaml:"retry_base_ms"`
}

// ItemsConfig configures the item CRUD daemon.
type ItemsConfig struct {
	Addr   string `yaml:"addr"`
	DBPath string `yaml:"db_path"`
}

// GetTimeout parses the provider timeout string to time.Duration.
func (p *ProviderConfig) GetTimeout() (time.Duration, error) {
	return time.ParseDuration(p.Timeout)
}

// Default returns the built-in configuration used when no config file is
// given: mock provider, local SQLite file, text logs.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Gateway: GatewayConfig{
			Addr: ":8080",
			Provider: ProviderConfig{
				Mode:         "mock",
				Timeout:      "30s",
				MaxRetries:   3,
				RetryBackoff: "exponential",
				RetryBaseMs:  500,
			},
		},
		Items: ItemsConfig{
			Addr:   ":8081",
			DBPath: "items.db",
		},
	}
}
