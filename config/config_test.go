package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_MinimalConfig(t *testing.T) {
	cfg, err := Parse([]byte(``))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want default 8080", cfg.Port)
	}
	if cfg.PollInterval.Duration() != 60*time.Second {
		t.Errorf("PollInterval = %v, want default 60s", cfg.PollInterval.Duration())
	}
	if cfg.ProbeTimeout.Duration() != 10*time.Second {
		t.Errorf("ProbeTimeout = %v, want default 10s", cfg.ProbeTimeout.Duration())
	}
	if cfg.DataDir != "link_tracking_data" {
		t.Errorf("DataDir = %q, want default %q", cfg.DataDir, "link_tracking_data")
	}
	if cfg.DefaultLink != "" {
		t.Errorf("DefaultLink = %q, want empty", cfg.DefaultLink)
	}
}

func TestParse_FullConfig(t *testing.T) {
	yaml := `
title: Call Tracker
port: 9090
poll_interval: 2m
probe_timeout: 15s
data_dir: /var/lib/callwatch
default_link: https://example.com/profile
selector: div.status_badge
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Title != "Call Tracker" {
		t.Errorf("Title = %q", cfg.Title)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.PollInterval.Duration() != 2*time.Minute {
		t.Errorf("PollInterval = %v, want 2m", cfg.PollInterval.Duration())
	}
	if cfg.ProbeTimeout.Duration() != 15*time.Second {
		t.Errorf("ProbeTimeout = %v, want 15s", cfg.ProbeTimeout.Duration())
	}
	if cfg.DataDir != "/var/lib/callwatch" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.DefaultLink != "https://example.com/profile" {
		t.Errorf("DefaultLink = %q", cfg.DefaultLink)
	}
	if cfg.Selector != "div.status_badge" {
		t.Errorf("Selector = %q", cfg.Selector)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		errText string
	}{
		{
			name:    "port too large",
			yaml:    "port: 70000",
			errText: "port must be between",
		},
		{
			name:    "negative port",
			yaml:    "port: -1",
			errText: "port must be between",
		},
		{
			name:    "poll interval below minimum",
			yaml:    "poll_interval: 5s",
			errText: "poll_interval must be at least",
		},
		{
			name:    "probe timeout below minimum",
			yaml:    "probe_timeout: 500ms",
			errText: "probe_timeout must be at least",
		},
		{
			name:    "probe timeout exceeds poll interval",
			yaml:    "poll_interval: 30s\nprobe_timeout: 45s",
			errText: "must not exceed poll_interval",
		},
		{
			name:    "default link bad scheme",
			yaml:    "default_link: ftp://example.com/profile",
			errText: "scheme must be http or https",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("error = %v, want containing %q", err, tt.errText)
			}
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte(`port: [not a number`))
	if err == nil {
		t.Fatal("Parse() expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse YAML") {
		t.Errorf("error = %v, want YAML parse error", err)
	}
}

func TestParse_InvalidDuration(t *testing.T) {
	_, err := Parse([]byte(`poll_interval: sixty seconds`))
	if err == nil {
		t.Fatal("Parse() expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("error = %v, want invalid duration error", err)
	}
}

func TestParse_EnvVarSubstitution(t *testing.T) {
	t.Setenv("CALLWATCH_TEST_LINK", "https://example.com/from-env")

	cfg, err := Parse([]byte(`default_link: ${CALLWATCH_TEST_LINK}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.DefaultLink != "https://example.com/from-env" {
		t.Errorf("DefaultLink = %q, want env value", cfg.DefaultLink)
	}
}

func TestParse_EnvVarDefault(t *testing.T) {
	// deliberately not set
	os.Unsetenv("CALLWATCH_TEST_UNSET")

	cfg, err := Parse([]byte(`default_link: ${CALLWATCH_TEST_UNSET:-https://example.com/fallback}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.DefaultLink != "https://example.com/fallback" {
		t.Errorf("DefaultLink = %q, want fallback value", cfg.DefaultLink)
	}
}

func TestParse_EnvVarMissing(t *testing.T) {
	os.Unsetenv("CALLWATCH_TEST_UNSET")

	_, err := Parse([]byte(`default_link: ${CALLWATCH_TEST_UNSET}`))
	if err == nil {
		t.Fatal("Parse() expected error for unset env var without default")
	}
	if !strings.Contains(err.Error(), "is not set") {
		t.Errorf("error = %v, want 'is not set'", err)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("CW_HOST", "example.com")

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"no vars", "https://static.example.com", "https://static.example.com", false},
		{"simple var", "https://${CW_HOST}/p", "https://example.com/p", false},
		{"var with default, set", "${CW_HOST:-fallback.com}", "example.com", false},
		{"var with default, unset", "${CW_MISSING:-fallback.com}", "fallback.com", false},
		{"empty default", "${CW_MISSING:-}", "", false},
		{"unset without default", "${CW_MISSING}", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandEnvVars(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expandEnvVars(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    time.Duration
		wantErr bool
	}{
		{"seconds", "poll_interval: 30s", 30 * time.Second, false},
		{"minutes", "poll_interval: 5m", 5 * time.Minute, false},
		{"compound", "poll_interval: 1m30s", 90 * time.Second, false},
		{"bare number", "poll_interval: 60", 0, true},
		{"garbage", "poll_interval: soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && cfg.PollInterval.Duration() != tt.want {
				t.Errorf("PollInterval = %v, want %v", cfg.PollInterval.Duration(), tt.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
	if !strings.Contains(err.Error(), "failed to read") {
		t.Errorf("error = %v, want read error", err)
	}
}

func TestLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
port: 9191
poll_interval: 45s
default_link: https://example.com/profile
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9191 {
		t.Errorf("Port = %d, want 9191", cfg.Port)
	}
	if cfg.PollInterval.Duration() != 45*time.Second {
		t.Errorf("PollInterval = %v, want 45s", cfg.PollInterval.Duration())
	}
}
