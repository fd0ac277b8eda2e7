package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"TMDB_API_KEY", "FANART_API_KEY", "POSTERIA_API_KEY", "POSTERIA_ADDR", "POSTERIA_CACHE_TTL_MINUTES", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	want := &Config{
		ListenAddr:              ":8080",
		ClientAppName:           "Posteria",
		ClientTimeWindowSeconds: 300,
		MaxConnections:          10,
		RequestTimeoutSeconds:   10,
		UserAgent:               "Posteria/1.0",
		TMDBLanguage:            "en-US",
		TMDBRequestsPerSecond:   40,
		CollectionArtwork:       CollectionNameFirst,
		LogLevel:                "info",
		LogFormat:               "json",
	}

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("DefaultConfig() mismatch (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v, want nil", err)
	}
}

func TestConfigPath(t *testing.T) {
	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath() error = %v, want nil", err)
	}
	if !filepath.IsAbs(path) {
		t.Errorf("ConfigPath() = %v, want absolute path", path)
	}
	if filepath.Base(filepath.Dir(path)) != ".posteria" {
		t.Errorf("ConfigPath() = %v, want path inside .posteria", path)
	}
}

func TestLoadFrom_NonExistentFile(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v, want nil", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("LoadFrom() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFrom_PartialFileGetsDefaults(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"tmdb_api_key": "abc", "max_connections": 4, "collection_artwork": "parts-first"}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v, want nil", err)
	}

	want := DefaultConfig()
	want.TMDBAPIKey = "abc"
	want.MaxConnections = 4
	want.CollectionArtwork = CollectionPartsFirst
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("LoadFrom() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFrom_ExplicitZeroRateLimit(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"tmdb_requests_per_second": 0, "max_connections": 0}`), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v, want nil", err)
	}
	if cfg.TMDBRequestsPerSecond != 0 {
		t.Errorf("LoadFrom() TMDBRequestsPerSecond = %v, want 0 (pacing disabled)", cfg.TMDBRequestsPerSecond)
	}
	if got, want := cfg.MaxConnections, DefaultConfig().MaxConnections; got != want {
		t.Errorf("LoadFrom() MaxConnections = %d, want default %d", got, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestLoadFrom_InvalidJSON(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() error = nil, want parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"TMDB_API_KEY":               "tmdb",
		"FANART_API_KEY":             "fanart",
		"POSTERIA_API_KEY":           "secret",
		"POSTERIA_ADDR":              "127.0.0.1:9000",
		"POSTERIA_CACHE_TTL_MINUTES": "15",
		"LOG_LEVEL":                  "debug",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	cfg.ApplyEnv(lookup)

	want := DefaultConfig()
	want.TMDBAPIKey = "tmdb"
	want.FanartAPIKey = "fanart"
	want.AccessKey = "secret"
	want.ListenAddr = "127.0.0.1:9000"
	want.CacheTTLMinutes = 15
	want.LogLevel = "debug"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("ApplyEnv() mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		mutate  func(*Config)
		wantErr string
	}{
		"defaults": {
			mutate: func(*Config) {},
		},
		"zero connections": {
			mutate:  func(c *Config) { c.MaxConnections = 0 },
			wantErr: "max_connections",
		},
		"zero timeout": {
			mutate:  func(c *Config) { c.RequestTimeoutSeconds = 0 },
			wantErr: "request_timeout_seconds",
		},
		"negative cache ttl": {
			mutate:  func(c *Config) { c.CacheTTLMinutes = -1 },
			wantErr: "cache_ttl_minutes",
		},
		"unknown collection precedence": {
			mutate:  func(c *Config) { c.CollectionArtwork = "random" },
			wantErr: "collection_artwork",
		},
		"unknown log format": {
			mutate:  func(c *Config) { c.LogFormat = "xml" },
			wantErr: "log_format",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Validate() error = %v, want error mentioning %q", err, tc.wantErr)
			}
		})
	}
}

func TestDurations(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.CacheTTLMinutes = 2
	if got := cfg.RequestTimeout(); got != 10*time.Second {
		t.Errorf("RequestTimeout() = %v, want 10s", got)
	}
	if got := cfg.ClientTimeWindow(); got != 5*time.Minute {
		t.Errorf("ClientTimeWindow() = %v, want 5m", got)
	}
	if got := cfg.CacheTTL(); got != 2*time.Minute {
		t.Errorf("CacheTTL() = %v, want 2m", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := DefaultConfig()
	cfg.FanartAPIKey = "fanart"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("Save/LoadFrom mismatch (-want +got):\n%s", diff)
	}
}
