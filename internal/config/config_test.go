package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: 0.0.0.0
  port: 9090
storage:
  database_path: ./foods.db
providers:
  timeout_ms: 1500
  generic:
    base_url: https://generic.test
    api_key: abc123
  branded:
    base_url: https://branded.test
    endpoints:
      GB: https://gb.branded.test
search:
  default_country: US
  branded_fallback_threshold: 3
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Debug {
		t.Error("debug should be true")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port: got %d", cfg.Server.Port)
	}
	if cfg.Storage.DatabasePath != filepath.Join(dir, "foods.db") {
		t.Errorf("database path not expanded relative to config dir: %s", cfg.Storage.DatabasePath)
	}
	if cfg.Providers.Generic.BaseURL != "https://generic.test" {
		t.Errorf("generic base url: got %s", cfg.Providers.Generic.BaseURL)
	}
	if cfg.Providers.Branded.Endpoints["GB"] != "https://gb.branded.test" {
		t.Errorf("branded GB endpoint: got %v", cfg.Providers.Branded.Endpoints)
	}
	if cfg.Providers.Timeout() != 1500*time.Millisecond {
		t.Errorf("timeout: got %v", cfg.Providers.Timeout())
	}
	if cfg.Search.DefaultCountry != "US" {
		t.Errorf("default country: got %s", cfg.Search.DefaultCountry)
	}
	if cfg.Search.BrandedFallbackThreshold != 3 {
		t.Errorf("threshold: got %d", cfg.Search.BrandedFallbackThreshold)
	}
	// Unset values get defaults.
	if cfg.Search.DefaultLimit != 10 || cfg.Search.MaxLimit != 100 {
		t.Errorf("limit defaults: got %d/%d", cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("server defaults: got %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Providers.TimeoutMS != 2500 {
		t.Errorf("timeout default: got %d", cfg.Providers.TimeoutMS)
	}
	if cfg.Search.DefaultCountry != "GB" {
		t.Errorf("country default: got %s", cfg.Search.DefaultCountry)
	}
	if cfg.Search.BrandedFallbackThreshold != 5 {
		t.Errorf("threshold default: got %d", cfg.Search.BrandedFallbackThreshold)
	}
	if cfg.Providers.Branded.Endpoints["GB"] == "" {
		t.Error("expected default branded endpoints")
	}
}
