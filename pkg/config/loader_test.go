package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validYAML = `
log_level: debug
log_format: json
gateway:
  addr: ":9090"
  provider:
    mode: cloud
    base_url: "https://cloud.example.com/api/open/v1"
    api_key: "test-key"
    timeout: 10s
    max_retries: 2
    retry_backoff: linear
    retry_base_ms: 100
items:
  addr: ":9091"
  db_path: "/tmp/items.db"
`

func TestParseConfigYAMLValid(t *testing.T) {
	cfg, err := ParseConfigYAML([]byte(validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("expected log_level debug, got %s", cfg.LogLevel)
	}
	if cfg.Gateway.Addr != ":9090" {
		t.Errorf("expected gateway addr :9090, got %s", cfg.Gateway.Addr)
	}
	if cfg.Gateway.Provider.Mode != "cloud" {
		t.Errorf("expected provider mode cloud, got %s", cfg.Gateway.Provider.Mode)
	}
	if cfg.Gateway.Provider.BaseURL != "https://cloud.example.com/api/open/v1" {
		t.Errorf("unexpected base_url: %s", cfg.Gateway.Provider.BaseURL)
	}
	if cfg.Items.DBPath != "/tmp/items.db" {
		t.Errorf("unexpected db_path: %s", cfg.Items.DBPath)
	}

	timeout, err := cfg.Gateway.Provider.GetTimeout()
	if err != nil {
		t.Fatalf("GetTimeout error: %v", err)
	}
	if timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %s", timeout)
	}
}

func TestParseConfigYAMLDefaults(t *testing.T) {
	cfg, err := ParseConfigYAML([]byte("{}"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("expected default log_level info, got %s", cfg.LogLevel)
	}
	if cfg.Gateway.Provider.Mode != "mock" {
		t.Errorf("expected default provider mode mock, got %s", cfg.Gateway.Provider.Mode)
	}
	if cfg.Gateway.Addr != ":8080" {
		t.Errorf("expected default gateway addr :8080, got %s", cfg.Gateway.Addr)
	}
	if cfg.Items.DBPath != "items.db" {
		t.Errorf("expected default db_path items.db, got %s", cfg.Items.DBPath)
	}
}

func TestParseConfigYAMLInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad log level", "log_level: verbose"},
		{"bad log format", "log_format: xml"},
		{"bad provider mode", "gateway:\n  provider:\n    mode: fake"},
		{"cloud without base url", "gateway:\n  provider:\n    mode: cloud"},
		{"bad timeout", "gateway:\n  provider:\n    timeout: never"},
		{"zero timeout", "gateway:\n  provider:\n    timeout: 0s"},
		{"negative retries", "gateway:\n  provider:\n    max_retries: -1"},
		{"bad backoff", "gateway:\n  provider:\n    retry_backoff: quadratic"},
		{"empty items db path", "items:\n  db_path: \"\"\n  addr: \":1\""},
		{"not yaml", ": ::: not yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseConfigYAML([]byte(tt.yaml)); err == nil {
				t.Fatalf("expected error for %q", tt.yaml)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(validYAML), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Gateway.Provider.APIKey != "test-key" {
		t.Errorf("expected api key from file, got %s", cfg.Gateway.Provider.APIKey)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
