package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeCmdConfig writes a minimal config pointing at a fresh data dir and
// returns the config path and the data dir.
func writeCmdConfig(t *testing.T) (string, string) {
	t.Helper()

	tmpDir := t.TempDir()
	dataDir := filepath.Join(tmpDir, "data")
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := "data_dir: " + dataDir + "\n"
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return configPath, dataDir
}

func TestRunAdd_NewLink(t *testing.T) {
	configPath, dataDir := writeCmdConfig(t)

	output, err := executeCmd(t, "add", "-c", configPath, "https://example.com/profile")
	if err != nil {
		t.Fatalf("add command error = %v", err)
	}
	if !strings.Contains(output, "Now tracking: https://example.com/profile") {
		t.Errorf("unexpected output: %s", output)
	}

	data, err := os.ReadFile(filepath.Join(dataDir, "all_links.txt"))
	if err != nil {
		t.Fatalf("links file not created: %v", err)
	}
	if string(data) != "https://example.com/profile\n" {
		t.Errorf("links file = %q, want single tracked link", string(data))
	}
}

func TestRunAdd_DuplicateIsNoOp(t *testing.T) {
	configPath, dataDir := writeCmdConfig(t)

	if _, err := executeCmd(t, "add", "-c", configPath, "https://example.com/profile"); err != nil {
		t.Fatalf("first add error = %v", err)
	}

	output, err := executeCmd(t, "add", "-c", configPath, "https://example.com/profile")
	if err != nil {
		t.Fatalf("second add error = %v", err)
	}
	if !strings.Contains(output, "Already tracked") {
		t.Errorf("unexpected output: %s", output)
	}

	data, err := os.ReadFile(filepath.Join(dataDir, "all_links.txt"))
	if err != nil {
		t.Fatalf("read links file: %v", err)
	}
	if got := strings.Count(string(data), "\n"); got != 1 {
		t.Errorf("links file has %d lines, want 1", got)
	}
}

func TestRunAdd_RejectsBadURL(t *testing.T) {
	configPath, _ := writeCmdConfig(t)

	tests := []struct {
		name string
		url  string
	}{
		{"no scheme", "example.com/profile"},
		{"ftp scheme", "ftp://example.com"},
		{"no host", "https://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := executeCmd(t, "add", "-c", configPath, tt.url); err == nil {
				t.Errorf("add %q expected error, got nil", tt.url)
			}
		})
	}
}

func TestRunStatus_PendingBeforeFirstCycle(t *testing.T) {
	configPath, _ := writeCmdConfig(t)

	output, err := executeCmd(t, "status", "-c", configPath)
	if err != nil {
		t.Fatalf("status command error = %v", err)
	}

	if !strings.Contains(output, "pending") {
		t.Errorf("status should report pending before any cycle, got: %s", output)
	}
	// with no links file, the built-in default link is tracked
	if !strings.Contains(output, "Tracked links: 1") {
		t.Errorf("status should list the default link, got: %s", output)
	}
}

func TestRunStatus_AfterHeartbeat(t *testing.T) {
	configPath, dataDir := writeCmdConfig(t)

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	heartbeat := "42\n2026-08-29 10:30:00\n"
	if err := os.WriteFile(filepath.Join(dataDir, "heartbeat.txt"), []byte(heartbeat), 0644); err != nil {
		t.Fatalf("write heartbeat: %v", err)
	}

	output, err := executeCmd(t, "status", "-c", configPath)
	if err != nil {
		t.Fatalf("status command error = %v", err)
	}

	if !strings.Contains(output, "Poll count:    42") {
		t.Errorf("status should report the poll count, got: %s", output)
	}
	if !strings.Contains(output, "2026-08-29 10:30:00") {
		t.Errorf("status should report the last poll time, got: %s", output)
	}
}
