package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Collection artwork precedence values
const (
	CollectionNameFirst  = "name-first"
	CollectionPartsFirst = "parts-first"
)

// Config holds the service configuration
type Config struct {
	ListenAddr string `json:"listen_addr"`

	// Provider credentials
	TMDBAPIKey   string `json:"tmdb_api_key"`
	FanartAPIKey string `json:"fanart_api_key"`

	// Inbound authentication
	AccessKey               string `json:"access_key"`
	ClientAppName           string `json:"client_app_name"`
	ClientTimeWindowSeconds int    `json:"client_time_window_seconds"`

	// Outbound fetch settings
	MaxConnections        int     `json:"max_connections"`
	RequestTimeoutSeconds int     `json:"request_timeout_seconds"`
	UserAgent             string  `json:"user_agent"`
	TMDBLanguage          string  `json:"tmdb_language"`
	TMDBRequestsPerSecond float64 `json:"tmdb_requests_per_second"`

	// CacheTTLMinutes enables the process-wide payload cache when positive.
	// Zero keeps caching request-scoped only.
	CacheTTLMinutes int `json:"cache_ttl_minutes"`

	CollectionArtwork string `json:"collection_artwork"`

	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
}

// DefaultConfig returns the default service configuration
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:              ":8080",
		ClientAppName:           "Posteria",
		ClientTimeWindowSeconds: 300,
		MaxConnections:          10,
		RequestTimeoutSeconds:   10,
		UserAgent:               "Posteria/1.0",
		TMDBLanguage:            "en-US",
		TMDBRequestsPerSecond:   40,
		CacheTTLMinutes:         0,
		CollectionArtwork:       CollectionNameFirst,
		LogLevel:                "info",
		LogFormat:               "json",
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".posteria", "config.json"), nil
}

// Load reads the configuration from the default path
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration at path, fills missing fields with
// defaults and applies environment overrides. A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Decode over the defaults so absent keys keep them and an
		// explicit tmdb_requests_per_second of 0 survives
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		cfg.fillDefaults()
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

func (cfg *Config) fillDefaults() {
	defaults := DefaultConfig()
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaults.ListenAddr
	}
	if cfg.ClientAppName == "" {
		cfg.ClientAppName = defaults.ClientAppName
	}
	if cfg.ClientTimeWindowSeconds == 0 {
		cfg.ClientTimeWindowSeconds = defaults.ClientTimeWindowSeconds
	}
	if cfg.MaxConnections == 0 {
		cfg.MaxConnections = defaults.MaxConnections
	}
	if cfg.RequestTimeoutSeconds == 0 {
		cfg.RequestTimeoutSeconds = defaults.RequestTimeoutSeconds
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	if cfg.TMDBLanguage == "" {
		cfg.TMDBLanguage = defaults.TMDBLanguage
	}
	if cfg.CollectionArtwork == "" {
		cfg.CollectionArtwork = defaults.CollectionArtwork
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = defaults.LogFormat
	}
}

// ApplyEnv overrides fields from the environment. lookup is usually os.LookupEnv.
func (cfg *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("TMDB_API_KEY"); ok && v != "" {
		cfg.TMDBAPIKey = v
	}
	if v, ok := lookup("FANART_API_KEY"); ok && v != "" {
		cfg.FanartAPIKey = v
	}
	if v, ok := lookup("POSTERIA_API_KEY"); ok && v != "" {
		cfg.AccessKey = v
	}
	if v, ok := lookup("POSTERIA_ADDR"); ok && v != "" {
		cfg.ListenAddr = v
	}
	if v, ok := lookup("POSTERIA_CACHE_TTL_MINUTES"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CacheTTLMinutes = n
		}
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
}

// Validate checks ranges and enum values
func (cfg *Config) Validate() error {
	if cfg.MaxConnections < 1 {
		return fmt.Errorf("max_connections must be at least 1, got %d", cfg.MaxConnections)
	}
	if cfg.RequestTimeoutSeconds < 1 {
		return fmt.Errorf("request_timeout_seconds must be at least 1, got %d", cfg.RequestTimeoutSeconds)
	}
	if cfg.ClientTimeWindowSeconds < 1 {
		return fmt.Errorf("client_time_window_seconds must be at least 1, got %d", cfg.ClientTimeWindowSeconds)
	}
	if cfg.TMDBRequestsPerSecond < 0 {
		return fmt.Errorf("tmdb_requests_per_second must not be negative")
	}
	if cfg.CacheTTLMinutes < 0 {
		return fmt.Errorf("cache_ttl_minutes must not be negative")
	}
	switch cfg.CollectionArtwork {
	case CollectionNameFirst, CollectionPartsFirst:
	default:
		return fmt.Errorf("collection_artwork must be %q or %q, got %q", CollectionNameFirst, CollectionPartsFirst, cfg.CollectionArtwork)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("log_format must be json or text, got %q", cfg.LogFormat)
	}
	return nil
}

// RequestTimeout returns the per outbound request timeout
func (cfg *Config) RequestTimeout() time.Duration {
	return time.Duration(cfg.RequestTimeoutSeconds) * time.Second
}

// ClientTimeWindow returns how old a signed client header may be
func (cfg *Config) ClientTimeWindow() time.Duration {
	return time.Duration(cfg.ClientTimeWindowSeconds) * time.Second
}

// CacheTTL returns the process-wide cache lifetime, zero when disabled
func (cfg *Config) CacheTTL() time.Duration {
	return time.Duration(cfg.CacheTTLMinutes) * time.Minute
}

// Save writes the configuration to path
func (cfg *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Credentials live in this file
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
