// Package config loads server settings from a TOML file, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Duration is a time.Duration written as "15s" or "2m" in TOML
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the full server configuration
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Storage    StorageConfig    `toml:"storage"`
	Log        LogConfig        `toml:"log"`
	Extraction ExtractionConfig `toml:"extraction"`
}

// ServerConfig maps HTTP listener settings
type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	ReadTimeout     Duration `toml:"read-timeout"`
	WriteTimeout    Duration `toml:"write-timeout"`
	ShutdownTimeout Duration `toml:"shutdown-timeout"`
}

// StorageConfig selects and configures the storage backend
type StorageConfig struct {
	Type        string `toml:"type"`
	RedisURL    string `toml:"redis-url"`
	RedisPrefix string `toml:"redis-prefix"`
	SQLitePath  string `toml:"sqlite-path"`
}

// LogConfig maps logging settings
type LogConfig struct {
	Level string `toml:"level"`
}

// ExtractionConfig maps the screenshot extraction model settings.
// Extraction is disabled while APIKey is empty.
type ExtractionConfig struct {
	Endpoint  string   `toml:"endpoint"`
	Model     string   `toml:"model"`
	APIKey    string   `toml:"api-key"`
	Timeout   Duration `toml:"timeout"`
	MaxTokens int      `toml:"max-tokens"`
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration{15 * time.Second},
			WriteTimeout:    Duration{90 * time.Second},
			ShutdownTimeout: Duration{30 * time.Second},
		},
		Storage: StorageConfig{
			Type:        StorageMemory,
			RedisPrefix: "hcap",
			SQLitePath:  "data/hcap.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Extraction: ExtractionConfig{
			Endpoint:  "https://api.openai.com/v1/chat/completions",
			Model:     "gpt-4o",
			Timeout:   Duration{60 * time.Second},
			MaxTokens: 1500,
		},
	}
}

// Load reads defaults, then the TOML file at path (a missing file is fine),
// then environment overrides.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.Getenv)
}

// LoadWithEnv is Load with an injectable environment lookup
func LoadWithEnv(path string, getenv func(string) string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("failed to decode config %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=value pairs from path into the process environment.
// A missing file is not an error and existing variables are not overwritten.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	setString := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}

	setString(&cfg.Server.Host, "HCAP_HOST")
	if v := getenv("HCAP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid HCAP_PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}

	setString(&cfg.Storage.Type, "HCAP_STORAGE_TYPE", "STORAGE_TYPE")
	setString(&cfg.Storage.RedisURL, "HCAP_REDIS_URL", "REDIS_URL")
	setString(&cfg.Storage.RedisPrefix, "HCAP_REDIS_PREFIX")
	setString(&cfg.Storage.SQLitePath, "HCAP_SQLITE_PATH")

	setString(&cfg.Log.Level, "HCAP_LOG_LEVEL")

	setString(&cfg.Extraction.Endpoint, "HCAP_EXTRACTION_ENDPOINT")
	setString(&cfg.Extraction.Model, "HCAP_EXTRACTION_MODEL")
	setString(&cfg.Extraction.APIKey, "HCAP_EXTRACTION_API_KEY", "OPENAI_API_KEY")
	return nil
}

// Validate checks for settings that cannot work together
func (c Config) Validate() error {
	switch c.Storage.Type {
	case StorageMemory, StorageSQLite:
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			return errors.New("redis-url (or REDIS_URL) is required when storage type is redis")
		}
	default:
		return fmt.Errorf("invalid storage type %q: must be %q, %q or %q",
			c.Storage.Type, StorageMemory, StorageRedis, StorageSQLite)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses the configured level
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return level, nil
}
