// Package config loads the pipeline configuration from a YAML file.
//
// All three backend base URLs are explicit named fields rather than
// free constants, so tests and the CLI can point any stage of the
// pipeline at a local stub.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment holds the candidate backend base URLs and the rules for
// choosing between them.
type Environment struct {
	ProductionURL string `yaml:"production_url"`
	StagingURL    string `yaml:"staging_url"`
	DevTunnelURL  string `yaml:"dev_tunnel_url"`

	// StagingMarker is the substring of a hostname that identifies a
	// staging deployment (the hosting platform's preview domain).
	StagingMarker string `yaml:"staging_marker"`

	// ProbeTimeoutSeconds bounds the single health probe against the
	// dev tunnel.
	ProbeTimeoutSeconds int `yaml:"probe_timeout_seconds"`
}

// ProbeTimeout returns the health-probe deadline as a duration.
func (e Environment) ProbeTimeout() time.Duration {
	return time.Duration(e.ProbeTimeoutSeconds) * time.Second
}

// Session configures the expiring hand-off store.
type Session struct {
	TTLMinutes int `yaml:"ttl_minutes"`

	// RedisAddr, when set, switches the store from in-memory to redis.
	RedisAddr string `yaml:"redis_addr"`
}

// TTL returns the hand-off time-to-live as a duration.
func (s Session) TTL() time.Duration {
	return time.Duration(s.TTLMinutes) * time.Minute
}

// Poller configures the payment-status polling loop.
type Poller struct {
	Providers       []string `yaml:"providers"`
	WarmupSeconds   int      `yaml:"warmup_seconds"`
	IntervalSeconds int      `yaml:"interval_seconds"`
	MaxAttempts     int      `yaml:"max_attempts"`
}

// Warmup returns the delay before the first status request.
func (p Poller) Warmup() time.Duration {
	return time.Duration(p.WarmupSeconds) * time.Second
}

// Interval returns the fixed backoff between status requests.
func (p Poller) Interval() time.Duration {
	return time.Duration(p.IntervalSeconds) * time.Second
}

// Journal configures the optional submission journal.
type Journal struct {
	// Path is the SQLite database file. Empty disables journaling.
	Path string `yaml:"path"`
}

type Config struct {
	Environment Environment `yaml:"environment"`
	Session     Session     `yaml:"session"`
	Poller      Poller      `yaml:"poller"`
	Journal     Journal     `yaml:"journal"`
}

// Load reads config from a YAML file, applies defaults, and validates
// required fields.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// ApplyDefaults fills in the documented defaults for unset fields.
func ApplyDefaults(cfg *Config) {
	if cfg.Environment.ProbeTimeoutSeconds == 0 {
		cfg.Environment.ProbeTimeoutSeconds = 3
	}
	if cfg.Environment.StagingMarker == "" {
		cfg.Environment.StagingMarker = "webflow.io"
	}

	if cfg.Session.TTLMinutes == 0 {
		cfg.Session.TTLMinutes = 30
	}

	if len(cfg.Poller.Providers) == 0 {
		cfg.Poller.Providers = []string{"POLi", "BLINK", "STRIPE", "ALIPAY"}
	}
	if cfg.Poller.WarmupSeconds == 0 {
		cfg.Poller.WarmupSeconds = 5
	}
	if cfg.Poller.IntervalSeconds == 0 {
		cfg.Poller.IntervalSeconds = 2
	}
	if cfg.Poller.MaxAttempts == 0 {
		cfg.Poller.MaxAttempts = 5
	}
}

// validate checks required fields and basic ranges.
func (c *Config) validate() error {
	var problems []string

	if c.Environment.ProductionURL == "" {
		problems = append(problems, "environment.production_url is required")
	}
	if c.Environment.StagingURL == "" {
		problems = append(problems, "environment.staging_url is required")
	}
	if c.Environment.DevTunnelURL == "" {
		problems = append(problems, "environment.dev_tunnel_url is required")
	}
	if c.Environment.ProbeTimeoutSeconds < 0 {
		problems = append(problems, "environment.probe_timeout_seconds must not be negative")
	}

	if c.Session.TTLMinutes <= 0 {
		problems = append(problems, "session.ttl_minutes must be positive")
	}

	if c.Poller.MaxAttempts < 1 {
		problems = append(problems, "poller.max_attempts must be at least 1")
	}
	if c.Poller.IntervalSeconds < 0 {
		problems = append(problems, "poller.interval_seconds must not be negative")
	}
	for _, p := range c.Poller.Providers {
		if strings.TrimSpace(p) == "" {
			problems = append(problems, "poller.providers must not contain empty names")
			break
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
