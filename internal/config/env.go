package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// envPrefix namespaces all environment overrides, so the variables are
// PRICEWATCH_CHECK_INTERVAL, PRICEWATCH_USER_AGENT, and so on.
const envPrefix = "pricewatch"

// envOverrides mirrors the subset of Config that can be set through the
// environment. Zero values mean "not set"; only set variables override
// the flag-derived config.
type envOverrides struct {
	CheckInterval time.Duration `envconfig:"CHECK_INTERVAL"`
	MaxAttempts   int           `envconfig:"MAX_ATTEMPTS"`
	RetryDelay    time.Duration `envconfig:"RETRY_DELAY"`
	FetchTimeout  time.Duration `envconfig:"FETCH_TIMEOUT"`
	RequestDelay  time.Duration `envconfig:"REQUEST_DELAY"`
	UserAgent     string        `envconfig:"USER_AGENT"`
	Proxy         string        `envconfig:"PROXY"`
	Stealth       bool          `envconfig:"STEALTH"`
	HistoryDir    string        `envconfig:"HISTORY_DIR"`
}

// ApplyEnv overlays environment variable overrides onto the config.
// A .env file in the working directory is loaded first when present;
// in deployed environments the variables are usually injected directly,
// so a missing file is not an error.
func (c *Config) ApplyEnv() error {
	if err := godotenv.Load(); err != nil {
		if _, statErr := os.Stat(".env"); statErr == nil {
			return err
		}
	}

	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return err
	}

	if env.CheckInterval > 0 {
		c.CheckInterval = env.CheckInterval
	}
	if env.MaxAttempts > 0 {
		c.MaxAttempts = env.MaxAttempts
	}
	if env.RetryDelay > 0 {
		c.RetryDelay = env.RetryDelay
	}
	if env.FetchTimeout > 0 {
		c.FetchTimeout = env.FetchTimeout
	}
	if env.RequestDelay > 0 {
		c.RequestDelay = env.RequestDelay
	}
	if env.UserAgent != "" {
		c.UserAgent = env.UserAgent
	}
	if env.Proxy != "" {
		c.Proxy = env.Proxy
	}
	if env.Stealth {
		c.Stealth = true
	}
	if env.HistoryDir != "" {
		c.HistoryDir = env.HistoryDir
		c.SaveHistory = true
	}

	return nil
}
