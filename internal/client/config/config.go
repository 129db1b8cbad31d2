package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the family organizer CLI.
type Config struct {
	// APIBaseURL is the REST API root, e.g. "http://localhost:8080/api".
	APIBaseURL string
	// WeatherAPIKey is read and passed through; no command uses it yet.
	WeatherAPIKey string
	// TokenDB is the SQLite file that keeps the bearer token between runs.
	TokenDB string
	// Ephemeral keeps the token in memory only.
	Ephemeral bool

	RequestTimeout time.Duration
	CacheStaleTime time.Duration

	// KeepSessionOnNetworkError keeps a restored token when the server cannot
	// be reached at startup instead of logging out.
	KeepSessionOnNetworkError bool

	LogLevel  string
	LogFormat string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8080/api"
	c.TokenDB = "familyorganizer.db"
	c.RequestTimeout = 10 * time.Second
	c.CacheStaleTime = 30 * time.Second
	c.LogLevel = "warn"
	c.LogFormat = "text"
}

// LoadConfig builds a Config from, in increasing precedence: defaults, a
// dotenv file, the process environment, a JSON or YAML file and flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	env, err := environment()
	if err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, env); err != nil {
		return nil, err
	}
	if err := parseFile(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that the rest of the client relies on.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("config: API base URL is empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.CacheStaleTime < 0 {
		return fmt.Errorf("config: cache stale time must not be negative, got %s", c.CacheStaleTime)
	}
	if !c.Ephemeral && c.TokenDB == "" {
		return fmt.Errorf("config: token database path is empty")
	}
	return nil
}
