// Package config provides configuration loading and structs for the foodsearch server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Providers ProvidersConfig `yaml:"providers"`
	Search    SearchConfig    `yaml:"search"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the path of the mirrored food catalog database.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ProvidersConfig holds external provider settings. TimeoutMS bounds every
// individual adapter call; a provider that misses it contributes nothing to
// the response instead of stalling it.
type ProvidersConfig struct {
	TimeoutMS int                   `yaml:"timeout_ms"`
	Generic   ProviderConfig        `yaml:"generic"`
	Branded   BrandedProviderConfig `yaml:"branded"`
}

// ProviderConfig holds settings for one HTTP nutrition provider.
type ProviderConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// BrandedProviderConfig adds per-country endpoints; the request country picks
// the regional catalog, falling back to BaseURL.
type BrandedProviderConfig struct {
	ProviderConfig `yaml:",inline"`
	Endpoints      map[string]string `yaml:"endpoints"`
}

// SearchConfig holds aggregation pipeline settings.
type SearchConfig struct {
	DefaultLimit   int    `yaml:"default_limit"`
	MaxLimit       int    `yaml:"max_limit"`
	DefaultCountry string `yaml:"default_country"`
	// BrandedFallbackThreshold is the cache result count below which the
	// branded DB is consulted on the first page.
	BrandedFallbackThreshold int `yaml:"branded_fallback_threshold"`
}

// Timeout returns the per-adapter call timeout as a duration.
func (p *ProvidersConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutMS) * time.Millisecond
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
