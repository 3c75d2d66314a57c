package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the virality dashboard service
type Config struct {
	// Upstream scraping API endpoints and credentials
	Upstream UpstreamConfig `yaml:"upstream" json:"upstream"`

	// Rate limiting configuration for upstream calls
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Retry configuration for upstream calls
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Media cache settings
	Media MediaConfig `yaml:"media" json:"media"`

	// HTTP API server settings
	Server ServerConfig `yaml:"server" json:"server"`

	// Settings store location
	Settings SettingsConfig `yaml:"settings" json:"settings"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// UpstreamConfig holds the backend scraping API endpoints and keys.
// BaseURL is the first-party scraper API (explore feed, topics, locations,
// keyword scrapes, image proxy); HikerURL is the self-hosted search API.
type UpstreamConfig struct {
	BaseURL  string        `yaml:"base_url" json:"base_url"`
	HikerURL string        `yaml:"hiker_url" json:"hiker_url"`
	ApifyKey string        `yaml:"apify_key" json:"apify_key"`
	HikerKey string        `yaml:"hiker_key" json:"hiker_key"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
	BurstSize         int `yaml:"burst_size" json:"burst_size"`
}

// RetryConfig holds retry behavior for upstream requests
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled" json:"enabled"`
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay"`
}

// MediaConfig holds image-proxy cache settings
type MediaConfig struct {
	CacheDir        string `yaml:"cache_dir" json:"cache_dir"`
	MaxEntries      int    `yaml:"max_entries" json:"max_entries"`
	PrefetchWorkers int    `yaml:"prefetch_workers" json:"prefetch_workers"`
	PrefetchEnabled bool   `yaml:"prefetch_enabled" json:"prefetch_enabled"`
}

// ServerConfig holds the dashboard API server settings
type ServerConfig struct {
	ListenAddr   string        `yaml:"listen_addr" json:"listen_addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
}

// SettingsConfig holds the key-value settings store location
type SettingsConfig struct {
	Path string `yaml:"path" json:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			Timeout: 30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
			BurstSize:         10,
		},
		Retry: RetryConfig{
			Enabled:     true,
			MaxAttempts: 3,
			BaseDelay:   time.Second,
			MaxDelay:    30 * time.Second,
		},
		Media: MediaConfig{
			CacheDir:        "./media-cache",
			MaxEntries:      512,
			PrefetchWorkers: 3,
			PrefetchEnabled: true,
		},
		Server: ServerConfig{
			ListenAddr:   ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Settings: SettingsConfig{
			Path: "./igviral.db",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if baseURL := os.Getenv("IGVIRAL_API_URL"); baseURL != "" {
		c.Upstream.BaseURL = baseURL
	}
	if hikerURL := os.Getenv("IGVIRAL_HIKER_URL"); hikerURL != "" {
		c.Upstream.HikerURL = hikerURL
	}
	if apifyKey := os.Getenv("IGVIRAL_APIFY_KEY"); apifyKey != "" {
		c.Upstream.ApifyKey = apifyKey
	}
	if hikerKey := os.Getenv("IGVIRAL_HIKER_KEY"); hikerKey != "" {
		c.Upstream.HikerKey = hikerKey
	}

	if rpm := os.Getenv("IGVIRAL_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}

	if cacheDir := os.Getenv("IGVIRAL_MEDIA_CACHE_DIR"); cacheDir != "" {
		c.Media.CacheDir = cacheDir
	}
	if maxEntries := os.Getenv("IGVIRAL_MEDIA_MAX_ENTRIES"); maxEntries != "" {
		var val int
		fmt.Sscanf(maxEntries, "%d", &val)
		if val > 0 {
			c.Media.MaxEntries = val
		}
	}

	if addr := os.Getenv("IGVIRAL_LISTEN_ADDR"); addr != "" {
		c.Server.ListenAddr = addr
	}

	if settingsPath := os.Getenv("IGVIRAL_SETTINGS_PATH"); settingsPath != "" {
		c.Settings.Path = settingsPath
	}

	if logLevel := os.Getenv("IGVIRAL_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".igviral.yaml",
		".igviral.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "igviral", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "igviral", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".igviral.yaml"),
		filepath.Join(os.Getenv("HOME"), ".igviral.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Upstream.BaseURL == "" && c.Upstream.HikerURL == "" {
		errs = append(errs, errors.New("at least one upstream API URL is required"))
	}
	if c.Upstream.Timeout <= 0 {
		errs = append(errs, errors.New("upstream timeout must be positive"))
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	if c.RateLimit.BurstSize <= 0 {
		errs = append(errs, errors.New("burst size must be positive"))
	}

	if c.Retry.MaxAttempts < 0 {
		errs = append(errs, errors.New("max attempts cannot be negative"))
	}

	if c.Media.CacheDir == "" {
		errs = append(errs, errors.New("media cache directory is required"))
	}
	if c.Media.MaxEntries <= 0 {
		errs = append(errs, errors.New("media cache max entries must be positive"))
	}
	if c.Media.PrefetchWorkers <= 0 {
		errs = append(errs, errors.New("prefetch workers must be positive"))
	}
	if c.Media.PrefetchWorkers > 10 {
		errs = append(errs, errors.New("prefetch workers should not exceed 10"))
	}

	if c.Server.ListenAddr == "" {
		errs = append(errs, errors.New("server listen address is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if baseURL, ok := flags["api-url"].(string); ok && baseURL != "" {
		c.Upstream.BaseURL = baseURL
	}
	if hikerURL, ok := flags["hiker-url"].(string); ok && hikerURL != "" {
		c.Upstream.HikerURL = hikerURL
	}
	if apifyKey, ok := flags["apify-key"].(string); ok && apifyKey != "" {
		c.Upstream.ApifyKey = apifyKey
	}
	if hikerKey, ok := flags["hiker-key"].(string); ok && hikerKey != "" {
		c.Upstream.HikerKey = hikerKey
	}
	if addr, ok := flags["listen-addr"].(string); ok && addr != "" {
		c.Server.ListenAddr = addr
	}
	if cacheDir, ok := flags["media-cache-dir"].(string); ok && cacheDir != "" {
		c.Media.CacheDir = cacheDir
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igviral.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
