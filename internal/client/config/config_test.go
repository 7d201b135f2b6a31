package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/flagx"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8000", c.ServerURL)
	assert.Equal(t, "fintrack.db", c.CredentialsDB)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.Zero(t, c.RefreshLeeway)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoad_NoSources_UsesDefaults(t *testing.T) {
	t.Setenv(flagx.ConfigEnv, "")

	cfg, err := Load(nil)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Empty(t, cmp.Diff(&want, cfg))
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected *Config
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "https://fin.example", "-d", "x.db", "-t", "5", "-l", "30", "-v", "debug"},
			expected: &Config{
				ServerURL: "https://fin.example", CredentialsDB: "x.db",
				RequestTimeout: 5 * time.Second, RefreshLeeway: 30 * time.Second, LogLevel: "debug",
			},
		},
		{
			name:     "ephemeral",
			args:     []string{"-e", "-t", "1"},
			expected: &Config{Ephemeral: true, RequestTimeout: time.Second},
		},
		{
			name:    "bad timeout",
			args:    []string{"-t", "abc"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := parseFlags(cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}

func TestParseJson(t *testing.T) {
	t.Setenv(flagx.ConfigEnv, "")

	t.Run("overrides only named fields", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{
			"server_url":      "https://fin.example",
			"request_timeout": "3s",
			"refresh_leeway":  int64(time.Minute),
		})

		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg, []string{"-c", path}))

		assert.Equal(t, "https://fin.example", cfg.ServerURL)
		assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
		assert.Equal(t, time.Minute, cfg.RefreshLeeway)
		assert.Equal(t, "fintrack.db", cfg.CredentialsDB)
	})

	t.Run("no file leaves config untouched", func(t *testing.T) {
		cfg := &Config{ServerURL: "keep"}
		require.NoError(t, parseJson(cfg, nil))
		assert.Equal(t, "keep", cfg.ServerURL)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ not json`), 0o600))
		require.Error(t, parseJson(&Config{}, []string{"-config", bad}))
	})

	t.Run("missing file", func(t *testing.T) {
		require.Error(t, parseJson(&Config{}, []string{"-c", filepath.Join(t.TempDir(), "nope.json")}))
	})
}

func TestLoad_FlagsOverrideJSON(t *testing.T) {
	t.Setenv(flagx.ConfigEnv, "")
	path := writeTempJSON(t, map[string]any{"server_url": "https://json.example", "log_level": "warn"})

	cfg, err := Load([]string{"-c", path, "-a", "https://flag.example"})
	require.NoError(t, err)

	assert.Equal(t, "https://flag.example", cfg.ServerURL)
	assert.Equal(t, "warn", cfg.LogLevel)
}
