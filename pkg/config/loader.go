package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfigYAML parses a Config from YAML bytes, fills in defaults for
// omitted fields and validates the result.
func ParseConfigYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config yaml: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("invalid log_format: %s (must be text or json)", cfg.LogFormat)
	}

	if cfg.Gateway.Addr == "" {
		return fmt.Errorf("gateway addr cannot be empty")
	}
	if err := validateProvider(&cfg.Gateway.Provider); err != nil {
		return fmt.Errorf("provider validation failed: %w", err)
	}

	if cfg.Items.Addr == "" {
		return fmt.Errorf("items addr cannot be empty")
	}
	if cfg.Items.DBPath == "" {
		return fmt.Errorf("items db_path cannot be empty")
	}

	return nil
}

// validateProvider validates the provider configuration
func validateProvider(p *ProviderConfig) error {
	if p.Mode != "mock" && p.Mode != "cloud" {
		return fmt.Errorf("invalid mode: %s (must be mock or cloud)", p.Mode)
	}

	if p.Mode == "cloud" && p.BaseURL == "" {
		return fmt.Errorf("base_url is required in cloud mode")
	}

	timeout, err := p.GetTimeout()
	if err != nil {
		return fmt.Errorf("invalid timeout %s: %w", p.Timeout, err)
	}
	if timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", p.Timeout)
	}

	if p.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative, got %d", p.MaxRetries)
	}

	validBackoffs := map[string]bool{
		"constant":    true,
		"linear":      true,
		"exponential": true,
	}
	if !validBackoffs[p.RetryBackoff] {
		return fmt.Errorf("invalid retry_backoff: %s (must be constant, linear, or exponential)", p.RetryBackoff)
	}

	if p.RetryBaseMs < 0 {
		return fmt.Errorf("retry_base_ms cannot be negative, got %d", p.RetryBaseMs)
	}

	return nil
}
