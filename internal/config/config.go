package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultValidationTimeout bounds the SSE wait for an asynchronous
	// transaction-validation outcome.
	DefaultValidationTimeout = 120 * time.Second

	defaultListenAddr = ":8394"
)

type APIConfig struct {
	BaseURL               string `toml:"base_url"`
	UserID                string `toml:"user_id"`
	ValidationTimeoutSecs int    `toml:"validation_timeout_secs"`
}

type Config struct {
	ListenAddr string    `toml:"listen_addr"`
	LogLevel   string    `toml:"log_level"`
	LogFormat  string    `toml:"log_format"`
	API        APIConfig `toml:"api"`
}

func Default() *Config {
	return &Config{
		ListenAddr: defaultListenAddr,
		LogLevel:   "info",
		LogFormat:  "text",
		API: APIConfig{
			ValidationTimeoutSecs: int(DefaultValidationTimeout / time.Second),
		},
	}
}

// Load reads the optional TOML file at path, then applies environment
// overrides. A missing file is not an error when path is empty; a named
// file that cannot be read is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LAYRPAY_MCP_LISTEN"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("LAYRPAY_MCP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LAYRPAY_MCP_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("LAYRPAY_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("LAYRPAY_USER_ID"); v != "" {
		cfg.API.UserID = v
	}
	if v := os.Getenv("LAYRPAY_VALIDATION_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.API.ValidationTimeoutSecs = secs
		}
	}
}

func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required (or set LAYRPAY_API_URL)")
	}
	if c.API.UserID == "" {
		return fmt.Errorf("api.user_id is required (or set LAYRPAY_USER_ID)")
	}
	if c.API.ValidationTimeoutSecs <= 0 {
		return fmt.Errorf("api.validation_timeout_secs must be positive")
	}
	return nil
}

func (c *Config) ValidationTimeout() time.Duration {
	return time.Duration(c.API.ValidationTimeoutSecs) * time.Second
}
