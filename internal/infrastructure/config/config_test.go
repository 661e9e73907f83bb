package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvAPIKey, "secret")

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	require.NoError(t, err)

	assert.Equal(t, defaultAddr, cfg.Server.Addr)
	assert.Equal(t, SourceFixer, cfg.Source.Kind)
	assert.Equal(t, defaultBaseURL, cfg.Source.BaseURL)
	assert.Equal(t, "secret", cfg.Source.APIKey)
	assert.Equal(t, defaultTimeout, cfg.Source.Timeout)
	assert.Equal(t, defaultMaxAttempts, cfg.Source.MaxAttempts)
	assert.Equal(t, DriverBadger, cfg.Storage.Driver)
	assert.Equal(t, filepath.Join(home, ".local/share/fxsync/data"), cfg.Storage.Path)
	assert.Equal(t, defaultInterval, cfg.Sync.Interval)
	assert.Equal(t, defaultCatalogTTL, cfg.Sync.CatalogTTL)
	assert.Equal(t, defaultLogLevel, cfg.Log.Level)
}

func TestLoadParsesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
[server]
addr = "  127.0.0.1:9090  "

[source]
kind = "Fixture"
timeout = "3s"
max_attempts = 5

[storage]
driver = "sqlite"
path = "~/fxsync"

[sync]
interval = "1h"
catalog_ttl = "12h"

[log]
level = "debug"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, SourceFixture, cfg.Source.Kind)
	assert.Equal(t, 3*time.Second, cfg.Source.Timeout)
	assert.Equal(t, 5, cfg.Source.MaxAttempts)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, filepath.Join(home, "fxsync"), cfg.Storage.Path)
	assert.Equal(t, time.Hour, cfg.Sync.Interval)
	assert.Equal(t, 12*time.Hour, cfg.Sync.CatalogTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadDurationFormats(t *testing.T) {
	path := writeConfig(t, `
[source]
kind = "fixture"
timeout = "30"

[sync]
interval = "90s"
catalog_ttl = "0s"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Source.Timeout)
	assert.Equal(t, 90*time.Second, cfg.Sync.Interval)
	assert.Equal(t, time.Duration(0), cfg.Sync.CatalogTTL)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = ":8081"

[source]
kind = "fixer"
api_key = "from-file"

[log]
level = "warn"
`)

	t.Setenv(EnvAPIKey, "from-env")
	t.Setenv(EnvBaseURL, "https://fixer.example.com/api")
	t.Setenv(EnvHTTPAddr, ":9999")
	t.Setenv(EnvStorageDriver, "SQLITE")
	t.Setenv(EnvLogLevel, "error")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Source.APIKey)
	assert.Equal(t, "https://fixer.example.com/api", cfg.Source.BaseURL)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"Malformed TOML", `[server`, "parse config"},
		{"Bad duration", "[source]\nkind = \"fixture\"\ntimeout = \"soon\"", "parse source.timeout"},
		{"Fixer without key", "[source]\nkind = \"fixer\"", "API key is required"},
		{"Unknown source", "[source]\nkind = \"ecb\"", "unknown source kind"},
		{"Unknown driver", "[source]\nkind = \"fixture\"\n[storage]\ndriver = \"redis\"", "unknown storage driver"},
		{"Bad base URL", "[source]\nkind = \"fixer\"\napi_key = \"k\"\nbase_url = \"ftp://x\"", "invalid source base URL"},
		{"Zero attempts", "[source]\nkind = \"fixture\"\nmax_attempts = -1", "max_attempts"},
		{"Negative interval", "[source]\nkind = \"fixture\"\n[sync]\ninterval = \"-1m\"", "sync interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvAPIKey, "")

			_, err := Load(writeConfig(t, tt.body))

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	const key = "FXSYNC_DOTENV_TEST"
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=loaded\n"), 0o600))

	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"), path))
	assert.Equal(t, "loaded", os.Getenv(key))
}
