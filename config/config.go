// Package config provides configuration loading for the uplink binary.
//
// This package enables running UpLink as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
// Non-secret settings come from a YAML file; the per-domain JWT secrets
// come from the environment so they never live in config files.
//
// Example configuration:
//
//	port: 4000
//	allowed_origins:
//	  - https://app.example.com
//	shutdown_grace: 10s
//
// Required environment (prefix UPLINK_):
//
//	UPLINK_USER_JWT_SECRET
//	UPLINK_CONTRIBUTOR_JWT_SECRET
//	UPLINK_OPERATOR_JWT_SECRET
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort          = 4000
	defaultShutdownGrace = 10 * time.Second

	// envPrefix namespaces all environment variables read by this package.
	envPrefix = "uplink"
)

// Config is the root configuration structure for the uplink binary.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Port is the HTTP port serving /ws and /api/events. Defaults to 4000.
	Port int `yaml:"port"`

	// AllowedOrigins lists Origin header values allowed to open websocket
	// connections. Empty means same-origin only; "*" allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// ShutdownGrace is how long to wait for in-flight work on shutdown.
	// Accepts duration strings like "10s", "1m". Defaults to 10s.
	ShutdownGrace Duration `yaml:"shutdown_grace"`
}

// Secrets holds the per-domain JWT verification secrets, read from the
// environment with the UPLINK_ prefix.
//
// A domain with an empty secret is disabled: tokens are never verified
// against it. At least one domain must be configured.
type Secrets struct {
	UserJWTSecret        string `envconfig:"USER_JWT_SECRET"`
	ContributorJWTSecret string `envconfig:"CONTRIBUTOR_JWT_SECRET"`
	OperatorJWTSecret    string `envconfig:"OPERATOR_JWT_SECRET"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads and parses a YAML configuration file.
//
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.ShutdownGrace == 0 {
		cfg.ShutdownGrace = Duration(defaultShutdownGrace)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate checks field ranges.
func (c *Config) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got %d", c.Port)
	}
	if c.ShutdownGrace.Duration() < 0 {
		return fmt.Errorf("shutdown_grace cannot be negative, got %s", c.ShutdownGrace.Duration())
	}
	for i, origin := range c.AllowedOrigins {
		if origin == "" {
			return fmt.Errorf("allowed_origins[%d]: origin cannot be empty", i)
		}
	}
	return nil
}

// LoadSecrets reads the domain secrets from the environment.
//
// Returns an error if no domain secret is set at all; individual domains
// may be left unset to disable them.
func LoadSecrets() (*Secrets, error) {
	var s Secrets
	if err := envconfig.Process(envPrefix, &s); err != nil {
		return nil, fmt.Errorf("failed to read secrets from environment: %w", err)
	}

	if s.UserJWTSecret == "" && s.ContributorJWTSecret == "" && s.OperatorJWTSecret == "" {
		return nil, errors.New("no domain secret configured: set at least one of " +
			"UPLINK_USER_JWT_SECRET, UPLINK_CONTRIBUTOR_JWT_SECRET, UPLINK_OPERATOR_JWT_SECRET")
	}

	return &s, nil
}

// ConfiguredDomains returns how many domains have a secret set, for
// startup logging.
func (s *Secrets) ConfiguredDomains() int {
	n := 0
	for _, secret := range []string{s.UserJWTSecret, s.ContributorJWTSecret, s.OperatorJWTSecret} {
		if secret != "" {
			n++
		}
	}
	return n
}
