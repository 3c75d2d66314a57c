package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.RateLimit.RequestsPerMinute != 60 {
		t.Errorf("Expected default requests per minute to be 60, got %d", config.RateLimit.RequestsPerMinute)
	}

	if config.Media.MaxEntries != 512 {
		t.Errorf("Expected default media max entries to be 512, got %d", config.Media.MaxEntries)
	}

	if config.Media.PrefetchWorkers != 3 {
		t.Errorf("Expected default prefetch workers to be 3, got %d", config.Media.PrefetchWorkers)
	}

	if config.Server.ListenAddr != ":8080" {
		t.Errorf("Expected default listen address to be :8080, got %s", config.Server.ListenAddr)
	}

	if config.Upstream.Timeout != 30*time.Second {
		t.Errorf("Expected default upstream timeout to be 30s, got %v", config.Upstream.Timeout)
	}

	if !config.Retry.Enabled {
		t.Error("Expected retry to be enabled by default")
	}

	if config.Logging.Level != "info" {
		t.Errorf("Expected default log level to be info, got %s", config.Logging.Level)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("IGVIRAL_API_URL", "https://scraper.test")
	t.Setenv("IGVIRAL_HIKER_URL", "https://hiker.test")
	t.Setenv("IGVIRAL_APIFY_KEY", "test-apify-key")
	t.Setenv("IGVIRAL_HIKER_KEY", "test-hiker-key")
	t.Setenv("IGVIRAL_REQUESTS_PER_MINUTE", "30")
	t.Setenv("IGVIRAL_MEDIA_CACHE_DIR", "/tmp/test-media")
	t.Setenv("IGVIRAL_MEDIA_MAX_ENTRIES", "128")
	t.Setenv("IGVIRAL_LISTEN_ADDR", ":9090")
	t.Setenv("IGVIRAL_LOG_LEVEL", "debug")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	if config.Upstream.BaseURL != "https://scraper.test" {
		t.Errorf("Expected base URL to be https://scraper.test, got %s", config.Upstream.BaseURL)
	}
	if config.Upstream.HikerURL != "https://hiker.test" {
		t.Errorf("Expected hiker URL to be https://hiker.test, got %s", config.Upstream.HikerURL)
	}
	if config.Upstream.ApifyKey != "test-apify-key" {
		t.Errorf("Expected apify key to be test-apify-key, got %s", config.Upstream.ApifyKey)
	}
	if config.Upstream.HikerKey != "test-hiker-key" {
		t.Errorf("Expected hiker key to be test-hiker-key, got %s", config.Upstream.HikerKey)
	}
	if config.RateLimit.RequestsPerMinute != 30 {
		t.Errorf("Expected requests per minute to be 30, got %d", config.RateLimit.RequestsPerMinute)
	}
	if config.Media.CacheDir != "/tmp/test-media" {
		t.Errorf("Expected media cache dir to be /tmp/test-media, got %s", config.Media.CacheDir)
	}
	if config.Media.MaxEntries != 128 {
		t.Errorf("Expected media max entries to be 128, got %d", config.Media.MaxEntries)
	}
	if config.Server.ListenAddr != ":9090" {
		t.Errorf("Expected listen address to be :9090, got %s", config.Server.ListenAddr)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level to be debug, got %s", config.Logging.Level)
	}
}

func TestLoadFromEnvIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("IGVIRAL_REQUESTS_PER_MINUTE", "not-a-number")
	t.Setenv("IGVIRAL_MEDIA_MAX_ENTRIES", "-5")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	if config.RateLimit.RequestsPerMinute != 60 {
		t.Errorf("Invalid rpm should keep the default, got %d", config.RateLimit.RequestsPerMinute)
	}
	if config.Media.MaxEntries != 512 {
		t.Errorf("Negative max entries should keep the default, got %d", config.Media.MaxEntries)
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `
upstream:
  base_url: https://scraper.file
  hiker_url: https://hiker.file
rate_limit:
  requests_per_minute: 45
media:
  max_entries: 256
logging:
  level: warn
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config := DefaultConfig()
	if err := config.LoadFromFile(path); err != nil {
		t.Fatalf("Failed to load config file: %v", err)
	}

	if config.Upstream.BaseURL != "https://scraper.file" {
		t.Errorf("Expected base URL from file, got %s", config.Upstream.BaseURL)
	}
	if config.RateLimit.RequestsPerMinute != 45 {
		t.Errorf("Expected 45 rpm from file, got %d", config.RateLimit.RequestsPerMinute)
	}
	if config.Media.MaxEntries != 256 {
		t.Errorf("Expected 256 max entries from file, got %d", config.Media.MaxEntries)
	}
	if config.Logging.Level != "warn" {
		t.Errorf("Expected log level warn from file, got %s", config.Logging.Level)
	}

	// untouched sections keep their defaults
	if config.Server.ListenAddr != ":8080" {
		t.Errorf("Expected default listen address to survive, got %s", config.Server.ListenAddr)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	config := DefaultConfig()
	err := config.LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Error("Expected error for an explicitly named missing file")
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()
	config.Upstream.BaseURL = "https://from-env.test"

	config.MergeCommandLineFlags(map[string]interface{}{
		"api-url":     "https://from-flag.test",
		"listen-addr": ":7070",
		"log-level":   "error",
		"hiker-url":   "",
	})

	if config.Upstream.BaseURL != "https://from-flag.test" {
		t.Errorf("Flag should override, got %s", config.Upstream.BaseURL)
	}
	if config.Server.ListenAddr != ":7070" {
		t.Errorf("Expected listen address :7070, got %s", config.Server.ListenAddr)
	}
	if config.Logging.Level != "error" {
		t.Errorf("Expected log level error, got %s", config.Logging.Level)
	}
	if config.Upstream.HikerURL != "" {
		t.Errorf("Empty flag should not overwrite, got %s", config.Upstream.HikerURL)
	}
}

func TestValidate(t *testing.T) {
	valid := DefaultConfig()
	valid.Upstream.BaseURL = "https://scraper.test"
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"no upstream", func(c *Config) { c.Upstream.BaseURL = ""; c.Upstream.HikerURL = "" }, "upstream API URL"},
		{"zero timeout", func(c *Config) { c.Upstream.Timeout = 0 }, "timeout must be positive"},
		{"zero rpm", func(c *Config) { c.RateLimit.RequestsPerMinute = 0 }, "requests per minute"},
		{"empty cache dir", func(c *Config) { c.Media.CacheDir = "" }, "media cache directory"},
		{"zero max entries", func(c *Config) { c.Media.MaxEntries = 0 }, "max entries"},
		{"too many prefetch workers", func(c *Config) { c.Media.PrefetchWorkers = 11 }, "prefetch workers"},
		{"empty listen addr", func(c *Config) { c.Server.ListenAddr = "" }, "listen address"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.Upstream.BaseURL = "https://scraper.test"
			tt.mutate(config)

			err := config.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Expected error mentioning %q, got %v", tt.wantMsg, err)
			}
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved", "config.yaml")

	config := DefaultConfig()
	config.Upstream.BaseURL = "https://scraper.test"
	config.RateLimit.RequestsPerMinute = 90

	if err := config.Save(path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	reloaded := DefaultConfig()
	if err := reloaded.LoadFromFile(path); err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}

	if reloaded.Upstream.BaseURL != "https://scraper.test" {
		t.Errorf("Expected base URL to round trip, got %s", reloaded.Upstream.BaseURL)
	}
	if reloaded.RateLimit.RequestsPerMinute != 90 {
		t.Errorf("Expected 90 rpm to round trip, got %d", reloaded.RateLimit.RequestsPerMinute)
	}
}
