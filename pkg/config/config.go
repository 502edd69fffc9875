// Package config defines the blocksync settings file and its loading rules.
package config

import (
	"errors"
	"fmt"
	"os"
)

// DefaultFileName is the settings file looked up in the working directory.
const DefaultFileName = ".blocksync.yaml"

// Config holds the settings shared by the CLI commands and the sync server.
type Config struct {
	// Flavor selects the Markdown flavor of the bundled splitter:
	// "commonmark" or "gfm".
	Flavor string `yaml:"flavor"`

	// LogLevel is the default log level: debug, info, warn, or error.
	LogLevel string `yaml:"logLevel"`

	// Server holds sync-server settings.
	Server ServerConfig `yaml:"server"`
}

// ServerConfig configures the live sync server.
type ServerConfig struct {
	// Addr is the listen address, e.g. "127.0.0.1:7350".
	Addr string `yaml:"addr"`

	// MaxMessageBytes caps an incoming websocket message; documents larger
	// than this are rejected by the transport.
	MaxMessageBytes int64 `yaml:"maxMessageBytes"`
}

// Default returns the configuration used when no settings file exists.
func Default() *Config {
	return &Config{
		Flavor:   "gfm",
		LogLevel: "info",
		Server: ServerConfig{
			Addr:            "127.0.0.1:7350",
			MaxMessageBytes: 8 << 20,
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Flavor {
	case "commonmark", "gfm":
	default:
		return fmt.Errorf("invalid flavor %q: must be commonmark or gfm", c.Flavor)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid logLevel %q", c.LogLevel)
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr must not be empty")
	}
	if c.Server.MaxMessageBytes <= 0 {
		return fmt.Errorf("server.maxMessageBytes must be positive, got %d", c.Server.MaxMessageBytes)
	}
	return nil
}

// Load reads the settings file at path. When path is empty, DefaultFileName
// is tried and its absence is not an error: defaults are returned.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := FromYAML(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
