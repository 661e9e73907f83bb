// Package config internal/infrastructure/config/config.go
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Source kinds
const (
	SourceFixer   = "fixer"
	SourceFixture = "fixture"
)

// Storage drivers
const (
	DriverBadger = "badger"
	DriverSQLite = "sqlite"
)

const (
	defaultConfigPath  = "~/.config/fxsync/config.toml"
	defaultAddr        = ":8080"
	defaultBaseURL     = "http://data.fixer.io/api"
	defaultTimeout     = 10 * time.Second
	defaultMaxAttempts = 3
	defaultStoragePath = "~/.local/share/fxsync/data"
	defaultInterval    = 15 * time.Minute
	defaultCatalogTTL  = 24 * time.Hour
	defaultLogLevel    = "info"
)

// Environment variables that take precedence over the config file
const (
	EnvAPIKey        = "FXSYNC_API_KEY"
	EnvBaseURL       = "FXSYNC_BASE_URL"
	EnvHTTPAddr      = "FXSYNC_HTTP_ADDR"
	EnvSourceKind    = "FXSYNC_SOURCE_KIND"
	EnvStorageDriver = "FXSYNC_STORAGE_DRIVER"
	EnvStoragePath   = "FXSYNC_STORAGE_PATH"
	EnvLogLevel      = "FXSYNC_LOG_LEVEL"
)

// Config holds every setting of the synchronization service
type Config struct {
	Server  ServerConfig
	Source  SourceConfig
	Storage StorageConfig
	Sync    SyncConfig
	Log     LogConfig
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string
}

// SourceConfig configures the remote rate provider
type SourceConfig struct {
	Kind        string
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxAttempts int
}

// StorageConfig selects the persistent store. Path is a directory for both drivers.
type StorageConfig struct {
	Driver string
	Path   string
}

// SyncConfig configures the background refresh
type SyncConfig struct {
	Interval   time.Duration
	CatalogTTL time.Duration
}

// LogConfig configures the logger
type LogConfig struct {
	Level string
}

type rawConfig struct {
	Server struct {
		Addr string `toml:"addr"`
	} `toml:"server"`
	Source struct {
		Kind        string `toml:"kind"`
		BaseURL     string `toml:"base_url"`
		APIKey      string `toml:"api_key"`
		Timeout     string `toml:"timeout"`
		MaxAttempts int    `toml:"max_attempts"`
	} `toml:"source"`
	Storage struct {
		Driver string `toml:"driver"`
		Path   string `toml:"path"`
	} `toml:"storage"`
	Sync struct {
		Interval   string `toml:"interval"`
		CatalogTTL string `toml:"catalog_ttl"`
	} `toml:"sync"`
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
}

// Default returns the configuration used when no file is present
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: defaultAddr},
		Source: SourceConfig{
			Kind:        SourceFixer,
			BaseURL:     defaultBaseURL,
			Timeout:     defaultTimeout,
			MaxAttempts: defaultMaxAttempts,
		},
		Storage: StorageConfig{
			Driver: DriverBadger,
			Path:   mustExpand(defaultStoragePath),
		},
		Sync: SyncConfig{
			Interval:   defaultInterval,
			CatalogTTL: defaultCatalogTTL,
		},
		Log: LogConfig{Level: defaultLogLevel},
	}
}

// LoadDotEnv loads environment variables from the given files, or ./.env when none
// are given. Missing files are ignored and existing variables are never overwritten.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// Load reads the TOML file at path, applies environment overrides and validates
// the result. A missing file is not an error, defaults are used instead.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()

		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}

		var raw rawConfig
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}

		if err := cfg.apply(raw); err != nil {
			return Config{}, err
		}
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) apply(raw rawConfig) error {
	setString(&c.Server.Addr, raw.Server.Addr)

	setString(&c.Source.Kind, strings.ToLower(raw.Source.Kind))
	setString(&c.Source.BaseURL, raw.Source.BaseURL)
	setString(&c.Source.APIKey, raw.Source.APIKey)
	if raw.Source.MaxAttempts != 0 {
		c.Source.MaxAttempts = raw.Source.MaxAttempts
	}
	if err := setDuration(&c.Source.Timeout, "source.timeout", raw.Source.Timeout); err != nil {
		return err
	}

	setString(&c.Storage.Driver, strings.ToLower(raw.Storage.Driver))
	if p := strings.TrimSpace(raw.Storage.Path); p != "" {
		c.Storage.Path = mustExpand(p)
	}

	if err := setDuration(&c.Sync.Interval, "sync.interval", raw.Sync.Interval); err != nil {
		return err
	}
	if err := setDuration(&c.Sync.CatalogTTL, "sync.catalog_ttl", raw.Sync.CatalogTTL); err != nil {
		return err
	}

	setString(&c.Log.Level, raw.Log.Level)
	return nil
}

// overrideWithEnv lets environment variables take precedence over the file
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.Source.APIKey = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.Source.BaseURL = v
	}
	if v := os.Getenv(EnvHTTPAddr); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv(EnvSourceKind); v != "" {
		cfg.Source.Kind = strings.ToLower(v)
	}
	if v := os.Getenv(EnvStorageDriver); v != "" {
		cfg.Storage.Driver = strings.ToLower(v)
	}
	if v := os.Getenv(EnvStoragePath); v != "" {
		cfg.Storage.Path = mustExpand(v)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server address is required")
	}

	switch c.Source.Kind {
	case SourceFixer:
		if c.Source.APIKey == "" {
			return fmt.Errorf("an API key is required for the %s source (set %s)", SourceFixer, EnvAPIKey)
		}
		if !strings.HasPrefix(c.Source.BaseURL, "http://") && !strings.HasPrefix(c.Source.BaseURL, "https://") {
			return fmt.Errorf("invalid source base URL: %s", c.Source.BaseURL)
		}
	case SourceFixture:
	default:
		return fmt.Errorf("unknown source kind: %q", c.Source.Kind)
	}

	if c.Source.Timeout <= 0 {
		return fmt.Errorf("source timeout must be positive")
	}
	if c.Source.MaxAttempts < 1 {
		return fmt.Errorf("source max_attempts must be at least 1")
	}

	switch c.Storage.Driver {
	case DriverBadger, DriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Storage.Driver)
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		return fmt.Errorf("storage path is required")
	}

	if c.Sync.Interval <= 0 {
		return fmt.Errorf("sync interval must be positive")
	}
	if c.Sync.CatalogTTL < 0 {
		return fmt.Errorf("catalog ttl must not be negative")
	}

	return nil
}

func setString(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key, value string) error {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}

	// Bare integers are seconds
	if secs, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(secs) * time.Second
		return nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	*dst = d
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
