package config

import (
	"strconv"
)

// Environment variables recognized by the CLI.
const (
	EnvConfigDir    = "SENSIBO_CONFIG_DIR"
	EnvAPIURL       = "SENSIBO_API_URL"
	EnvCacheFile    = "SENSIBO_CACHE_FILE"
	EnvCacheEnabled = "SENSIBO_CACHE_ENABLED"
	EnvLogLevel     = "SENSIBO_LOG_LEVEL"
	EnvLogFormat    = "SENSIBO_LOG_FORMAT"
	EnvLogFile      = "SENSIBO_LOG_FILE"
)

// ApplyEnv overrides configuration values from the environment.
// lookupEnv is injected for testability (os.LookupEnv in production).
// Unparseable boolean values are ignored.
func (c *Config) ApplyEnv(lookupEnv func(string) (string, bool)) {
	if v, ok := lookupEnv(EnvAPIURL); ok && v != "" {
		c.API.BaseURL = v
	}
	if v, ok := lookupEnv(EnvCacheFile); ok && v != "" {
		c.Cache.File = v
	}
	if v, ok := lookupEnv(EnvCacheEnabled); ok && v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Cache.Enabled = enabled
		}
	}
	if v, ok := lookupEnv(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookupEnv(EnvLogFormat); ok && v != "" {
		c.Logging.Format = v
	}
	if v, ok := lookupEnv(EnvLogFile); ok {
		c.Logging.File = v
	}
}
