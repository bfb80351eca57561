//nolint:goconst // test cases intentionally repeat strings for readability
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/wavecast.db",
			expected: filepath.Join(home, "wavecast.db"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/var/lib/wavecast.db",
			expected: "/var/lib/wavecast.db",
		},
		{
			name:     "relative path unchanged",
			input:    "data/wavecast.db",
			expected: "data/wavecast.db",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	if len(paths) != 2 {
		t.Fatalf("getConfigPaths() returned %d paths, want 2", len(paths))
	}
	if paths[len(paths)-1] != "config.toml" {
		t.Errorf("last config path = %q, want %q", paths[len(paths)-1], "config.toml")
	}
	if filepath.Base(filepath.Dir(paths[0])) != "wavecast" {
		t.Errorf("first config path = %q, want a wavecast config dir", paths[0])
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFrom(t *testing.T) {
	path := writeConfig(t, "config.toml", `
database = "/tmp/wavecast.db"

[log]
file = "/tmp/wavecast.log"
level = "debug"

[feed]
user_agent = "test-agent"
max_body_size = 1024
allow_private_networks = true

[playback]
autoplay = false
previous_threshold = "5s"
order = "Date_Desc"

[location]
base = "http://localhost:7777/"

[import]
rate = 0.5
burst = 3

[server]
listen = "127.0.0.1:7777"
`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/wavecast.db", cfg.Database)
	assert.Equal(t, "/tmp/wavecast.log", cfg.Log.File)
	assert.Equal(t, "debug", cfg.LogLevel())
	assert.Equal(t, "test-agent", cfg.Feed.UserAgent)
	assert.Equal(t, int64(1024), cfg.Feed.MaxBodySize)
	assert.True(t, cfg.Feed.AllowPrivateNetworks)

	pb := cfg.GetPlaybackConfig()
	assert.False(t, pb.AutoplayEnabled())
	assert.Equal(t, 5*time.Second, pb.Threshold())
	assert.Equal(t, "date_desc", pb.Order)

	assert.Equal(t, "http://localhost:7777/", cfg.GetLocationBase())
	assert.Equal(t, ImportConfig{Rate: 0.5, Burst: 3}, cfg.GetImportConfig())
	assert.True(t, cfg.HasServer())
}

func TestLoadFrom_LastWins(t *testing.T) {
	global := writeConfig(t, "global.toml", `
[log]
level = "warn"

[server]
listen = ":7777"
`)
	local := writeConfig(t, "local.toml", `
[log]
level = "error"
`)

	cfg, err := LoadFrom(global, local)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.LogLevel())
	assert.Equal(t, ":7777", cfg.Server.Listen)
}

func TestLoadFrom_MissingFilesSkipped(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.False(t, cfg.HasServer())
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	path := writeConfig(t, "config.toml", "database = [")

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}

	if got := cfg.LogLevel(); got != "info" {
		t.Errorf("LogLevel() = %q, want %q", got, "info")
	}
	if got := cfg.GetLocationBase(); got != "/" {
		t.Errorf("GetLocationBase() = %q, want %q", got, "/")
	}
	if got := cfg.GetImportConfig(); got != (ImportConfig{Rate: 2, Burst: 1}) {
		t.Errorf("GetImportConfig() = %+v, want rate 2 burst 1", got)
	}

	pb := cfg.GetPlaybackConfig()
	if !pb.AutoplayEnabled() {
		t.Error("AutoplayEnabled() = false, want true")
	}
	if got := pb.Threshold(); got != 3*time.Second {
		t.Errorf("Threshold() = %v, want 3s", got)
	}
	if pb.Order != "listed" {
		t.Errorf("Order = %q, want %q", pb.Order, "listed")
	}
}

func TestThreshold_Invalid(t *testing.T) {
	tests := []string{"", "soon", "-1s", "0s"}
	for _, in := range tests {
		pb := PlaybackConfig{PreviousThreshold: in}
		if got := pb.Threshold(); got != 3*time.Second {
			t.Errorf("Threshold(%q) = %v, want 3s", in, got)
		}
	}
}
