package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Content ContentConfig `toml:"content"`
	Bridge  BridgeConfig  `toml:"bridge"`
	Session SessionConfig `toml:"session"`
	Logging LogConfig     `toml:"logging"`
}

// ServerConfig holds the loopback listener configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000" toml:"port"`
	Host string `envconfig:"HOST" default:"127.0.0.1" toml:"host"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// ContentConfig holds virtual content server configuration.
type ContentConfig struct {
	Scheme           string   `envconfig:"CONTENT_SCHEME" default:"bookview" toml:"scheme"`
	Host             string   `envconfig:"CONTENT_HOST" default:"internal.invalid" toml:"host"`
	BookDir          string   `envconfig:"BOOK_DIR" toml:"book_dir"`
	BookSource       string   `envconfig:"BOOK_SOURCE" toml:"book_source"`
	AssetsDir        string   `envconfig:"ASSETS_DIR" toml:"assets_dir"`
	PatchedAsset     string   `envconfig:"PATCHED_ASSET" default:"MathJax.js" toml:"patched_asset"`
	AssetsExclude    []string `envconfig:"ASSETS_EXCLUDE" default:"**/.*,**/*.map" toml:"assets_exclude"`
	ShellPath        string   `envconfig:"SHELL_PATH" toml:"shell_path"`
	ScriptPath       string   `envconfig:"SCRIPT_PATH" toml:"script_path"`
	TranslationsPath string   `envconfig:"TRANSLATIONS_PATH" toml:"translations_path"`
}

// BridgeConfig holds message bridge configuration.
type BridgeConfig struct {
	EventsPerSecond int           `envconfig:"BRIDGE_EVENTS_RPS" default:"200" toml:"events_per_second"`
	EventsBurst     int           `envconfig:"BRIDGE_EVENTS_BURST" default:"400" toml:"events_burst"`
	WriteTimeout    time.Duration `envconfig:"BRIDGE_WRITE_TIMEOUT" default:"10s" toml:"write_timeout"`
}

// SessionConfig holds preference store configuration.
type SessionConfig struct {
	PrefsPath string `envconfig:"PREFS_PATH" default:"viewer-webengine.json" toml:"prefs_path"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" toml:"development"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadFile loads configuration from the environment, then overlays the TOML
// file at path. Keys present in the file win over the environment.
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "127.0.0.1",
		},
		Content: ContentConfig{
			Scheme:        "bookview",
			Host:          "internal.invalid",
			PatchedAsset:  "MathJax.js",
			AssetsExclude: []string{"**/.*", "**/*.map"},
		},
		Bridge: BridgeConfig{
			EventsPerSecond: 200,
			EventsBurst:     400,
			WriteTimeout:    10 * time.Second,
		},
		Session: SessionConfig{
			PrefsPath: "viewer-webengine.json",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}
