// Package config loads the sensibo CLI configuration.
//
// Configuration lives in <config dir>/config.yaml, where the config dir is
// ~/.config/sensibo unless SENSIBO_CONFIG_DIR says otherwise. The file is
// optional; missing keys keep their defaults and SENSIBO_* environment
// variables override both.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rshade/sensibo/internal/cache"
	"github.com/rshade/sensibo/internal/devices"
	"github.com/rshade/sensibo/internal/logging"
	"github.com/rshade/sensibo/internal/sensibo"
)

// File names inside the config directory.
const (
	configFileName = "config.yaml"
	cacheFileName  = "customCache.json"
	authFileName   = ".auth"
)

// Default TTL strings, matching cache.DeviceListTTL and cache.DeviceDetailTTL.
const (
	defaultDeviceListTTL   = "5h"
	defaultDeviceDetailTTL = "24h"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete CLI configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Cache   CacheConfig   `yaml:"cache"`
	Devices DevicesConfig `yaml:"devices"`
	Logging LoggingConfig `yaml:"logging"`

	configDir  string
	configPath string
}

// APIConfig configures the Sensibo API client.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// CacheConfig configures the response cache.
type CacheConfig struct {
	Enabled         bool   `yaml:"enabled"`
	File            string `yaml:"file,omitempty"`
	DeviceListTTL   string `yaml:"device_list_ttl"`
	DeviceDetailTTL string `yaml:"device_detail_ttl"`
}

// DevicesConfig configures device resolution.
type DevicesConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// New returns the default configuration rooted at the default config directory.
func New() *Config {
	dir := DefaultConfigDir()
	return &Config{
		API: APIConfig{
			BaseURL: sensibo.DefaultBaseURL,
			Timeout: sensibo.DefaultTimeout.String(),
		},
		Cache: CacheConfig{
			Enabled:         true,
			DeviceListTTL:   defaultDeviceListTTL,
			DeviceDetailTTL: defaultDeviceDetailTTL,
		},
		Devices: DevicesConfig{
			Concurrency: devices.DefaultConcurrency,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: logging.FormatConsole,
		},
		configDir:  dir,
		configPath: filepath.Join(dir, configFileName),
	}
}

// Load reads the configuration file at path (the default location when empty),
// applies environment overrides and validates the result. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	cfg := New()
	if path != "" {
		cfg.SetConfigPath(path)
	}

	data, err := os.ReadFile(cfg.configPath)
	switch {
	case err == nil:
		if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
			return nil, fmt.Errorf("parsing config %s: %w", cfg.configPath, unmarshalErr)
		}
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return nil, fmt.Errorf("reading config %s: %w", cfg.configPath, err)
	}

	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every value can be used.
func (c *Config) Validate() error {
	if _, err := c.APITimeout(); err != nil {
		return err
	}

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api.base_url must be an http(s) URL, got %q", ErrInvalidConfig, c.API.BaseURL)
	}

	if _, err := c.DeviceListTTL(); err != nil {
		return err
	}
	if _, err := c.DeviceDetailTTL(); err != nil {
		return err
	}

	if c.Devices.Concurrency < 1 {
		return fmt.Errorf("%w: devices.concurrency must be >= 1, got %d", ErrInvalidConfig, c.Devices.Concurrency)
	}

	switch c.Logging.Format {
	case logging.FormatConsole, logging.FormatJSON:
	default:
		return fmt.Errorf("%w: logging.format must be console or json, got %q", ErrInvalidConfig, c.Logging.Format)
	}

	return nil
}

// APITimeout returns the parsed per-request timeout.
func (c *Config) APITimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: api.timeout must be a positive duration, got %q", ErrInvalidConfig, c.API.Timeout)
	}
	return d, nil
}

// DeviceListTTL returns the parsed TTL of the cached device list.
func (c *Config) DeviceListTTL() (time.Duration, error) {
	d, err := cache.ParseTTL(c.Cache.DeviceListTTL)
	if err != nil {
		return 0, fmt.Errorf("%w: cache.device_list_ttl: %w", ErrInvalidConfig, err)
	}
	return d, nil
}

// DeviceDetailTTL returns the parsed TTL of cached device details.
func (c *Config) DeviceDetailTTL() (time.Duration, error) {
	d, err := cache.ParseTTL(c.Cache.DeviceDetailTTL)
	if err != nil {
		return 0, fmt.Errorf("%w: cache.device_detail_ttl: %w", ErrInvalidConfig, err)
	}
	return d, nil
}

// ConfigDir returns the directory holding config, cache and credentials.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// ConfigPath returns the configuration file location.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// SetConfigPath points the configuration at a different file.
func (c *Config) SetConfigPath(path string) {
	c.configPath = path
}

// CacheFile returns the cache file location, defaulting to the config directory.
func (c *Config) CacheFile() string {
	if c.Cache.File != "" {
		return expandHome(c.Cache.File)
	}
	return filepath.Join(c.configDir, cacheFileName)
}

// AuthFile returns the location of the stored API key.
func (c *Config) AuthFile() string {
	return filepath.Join(c.configDir, authFileName)
}

// Save writes the configuration as YAML to ConfigPath.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(c.configPath, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// DefaultConfigDir returns $SENSIBO_CONFIG_DIR or ~/.config/sensibo.
// When the home directory is unknown it falls back to a relative .sensibo directory.
func DefaultConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sensibo"
	}
	return filepath.Join(home, ".config", "sensibo")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
