package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override api_key, first non-empty wins.
var apiKeyEnv = []string{"PR_STATUS_API_KEY", "GITHUB_TOKEN"}

type Config struct {
	APIKey         string        `yaml:"api_key"`
	APIURL         string        `yaml:"api_url"`
	PollInterval   time.Duration `yaml:"-"`
	RawInterval    string        `yaml:"poll_interval"`
	RequestTimeout time.Duration `yaml:"-"`
	RawTimeout     string        `yaml:"request_timeout"`
	Limit          int           `yaml:"limit"`
	PRIndex        *int          `yaml:"pr_index,omitempty"`
	MaxConcurrency int           `yaml:"max_concurrency"`
	LogFile        string        `yaml:"log_file"`
	Log            LogConfig     `yaml:"log"`
	TUI            TUIConfig     `yaml:"tui"`
	Breaker        BreakerConfig `yaml:"breaker"`
	Tracing        TracingConfig `yaml:"tracing"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type TUIConfig struct {
	RefreshInterval time.Duration `yaml:"-"`
	RawInterval     string        `yaml:"refresh_interval"`
}

type BreakerConfig struct {
	Failures    uint32        `yaml:"failures"`
	Cooldown    time.Duration `yaml:"-"`
	RawCooldown string        `yaml:"cooldown"`
}

type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Keys is the number of keys rendered per cycle: one in index mode,
// otherwise one per PR slot.
func (c *Config) Keys() int {
	if c.PRIndex != nil {
		return 1
	}
	return c.Limit
}

// Load reads path, a .env file in the same directory and the environment.
// A missing config file leaves every setting at its default.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	loadDotEnv(filepath.Join(filepath.Dir(path), ".env"))
	for _, name := range apiKeyEnv {
		if v := os.Getenv(name); v != "" {
			cfg.APIKey = v
			break
		}
	}

	if err := cfg.setDefaults(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv exports variables from file without overriding non-empty
// environment values.
func loadDotEnv(file string) {
	env, err := godotenv.Read(file)
	if err != nil {
		return
	}
	for k, v := range env {
		if cur, exists := os.LookupEnv(k); !exists || cur == "" {
			_ = os.Setenv(k, v)
		}
	}
}

func (c *Config) setDefaults() error {
	if c.APIURL == "" {
		c.APIURL = "https://api.github.com/"
	}

	if c.RawInterval == "" {
		c.RawInterval = "15s"
	}
	d, err := time.ParseDuration(c.RawInterval)
	if err != nil {
		return fmt.Errorf("parse poll_interval %q: %w", c.RawInterval, err)
	}
	c.PollInterval = d

	if c.RawTimeout == "" {
		c.RawTimeout = "10s"
	}
	timeout, err := time.ParseDuration(c.RawTimeout)
	if err != nil {
		return fmt.Errorf("parse request_timeout %q: %w", c.RawTimeout, err)
	}
	c.RequestTimeout = timeout

	if c.Limit == 0 {
		c.Limit = 5
	}
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = 8
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(os.TempDir(), "pr-status", "pr-status.log")
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.TUI.RawInterval == "" {
		c.TUI.RawInterval = "1s"
	}
	tuiInterval, err := time.ParseDuration(c.TUI.RawInterval)
	if err != nil {
		return fmt.Errorf("parse tui.refresh_interval %q: %w", c.TUI.RawInterval, err)
	}
	c.TUI.RefreshInterval = tuiInterval

	if c.Breaker.Failures == 0 {
		c.Breaker.Failures = 5
	}
	if c.Breaker.RawCooldown == "" {
		c.Breaker.RawCooldown = "30s"
	}
	cooldown, err := time.ParseDuration(c.Breaker.RawCooldown)
	if err != nil {
		return fmt.Errorf("parse breaker.cooldown %q: %w", c.Breaker.RawCooldown, err)
	}
	c.Breaker.Cooldown = cooldown

	return nil
}

func (c *Config) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api_key required (or set %s)", apiKeyEnv[0])
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.RawInterval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RawTimeout)
	}
	if c.TUI.RefreshInterval <= 0 {
		return fmt.Errorf("tui.refresh_interval must be positive, got %s", c.TUI.RawInterval)
	}
	if c.Breaker.Cooldown <= 0 {
		return fmt.Errorf("breaker.cooldown must be positive, got %s", c.Breaker.RawCooldown)
	}
	if c.Limit < 1 {
		return fmt.Errorf("limit must be at least 1, got %d", c.Limit)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", c.MaxConcurrency)
	}
	if c.PRIndex != nil && *c.PRIndex < 1 {
		return fmt.Errorf("pr_index must be at least 1, got %d", *c.PRIndex)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q (debug|info|warn|error)", c.Log.Level)
	}
	return nil
}
