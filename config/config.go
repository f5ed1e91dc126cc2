// Package config provides YAML configuration parsing for callwatch.
//
// This package enables running callwatch as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	title: Call Tracker
//	port: 8080
//	poll_interval: 60s
//	probe_timeout: 10s
//	data_dir: link_tracking_data
//	default_link: https://www.astroyogi.com/astrologer/expert/saalivaagana.aspx
//	selector: button.profile_green_btn
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// minPollInterval is the minimum allowed polling interval.
// This prevents accidental hammering of target pages, which is easy to do
// when every probe launches a browser.
const minPollInterval = 10 * time.Second

// Config is the root configuration structure for callwatch.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the dashboard title. Defaults to "callwatch" if not set.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// PollInterval is the pause between polling cycles.
	// Accepts duration strings like "60s", "5m". Defaults to 60s.
	PollInterval Duration `yaml:"poll_interval"`

	// ProbeTimeout bounds a single page probe, including browser startup
	// and the wait for controls to render. Defaults to 10s.
	ProbeTimeout Duration `yaml:"probe_timeout"`

	// DataDir is the directory holding the link list, per-link event
	// files, and the heartbeat file. Defaults to "link_tracking_data".
	DataDir string `yaml:"data_dir"`

	// DefaultLink is probed when the link list file is missing or empty.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}.
	DefaultLink string `yaml:"default_link"`

	// Selector is the CSS selector matching the page controls whose labels
	// carry the availability signals. Empty uses the built-in default.
	Selector string `yaml:"selector"`
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

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in DefaultLink. Defaults are applied
// for Port (8080), PollInterval (60s), ProbeTimeout (10s), and DataDir
// ("link_tracking_data").
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = Duration(60 * time.Second)
	}
	if cfg.ProbeTimeout == 0 {
		cfg.ProbeTimeout = Duration(10 * time.Second)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "link_tracking_data"
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.PollInterval.Duration() < minPollInterval {
		return fmt.Errorf("poll_interval must be at least %s, got %s", minPollInterval, c.PollInterval.Duration())
	}

	if c.ProbeTimeout.Duration() < time.Second {
		return fmt.Errorf("probe_timeout must be at least 1s, got %s", c.ProbeTimeout.Duration())
	}
	if c.ProbeTimeout.Duration() > c.PollInterval.Duration() {
		return fmt.Errorf("probe_timeout (%s) must not exceed poll_interval (%s)",
			c.ProbeTimeout.Duration(), c.PollInterval.Duration())
	}

	if c.DefaultLink != "" {
		expanded, err := expandEnvVars(c.DefaultLink)
		if err != nil {
			return fmt.Errorf("default_link: %w", err)
		}
		c.DefaultLink = expanded

		parsed, err := url.Parse(c.DefaultLink)
		if err != nil {
			return fmt.Errorf("default_link: invalid url: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("default_link: url scheme must be http or https, got %q", parsed.Scheme)
		}
	}

	return nil
}
