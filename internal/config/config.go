// Package config loads drvsh's on-disk configuration and resolves the
// directories it operates out of.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultSuffix             = "drv"
	defaultConnectTimeout     = 2 * time.Second
	defaultReconnectBaseDelay = 250 * time.Millisecond
	defaultReconnectMaxDelay  = 10 * time.Second
)

// Config holds the settings that shape a single `drvsh run` invocation.
// Values loaded from ~/.drvsh/config.yaml are overridden by command-line
// flags, the same precedence the teacher's wing.yaml/flag combination uses.
type Config struct {
	BaseDir string `yaml:"base_dir,omitempty"`
	Suffix  string `yaml:"suffix,omitempty"`

	LogLevel string `yaml:"log_level,omitempty"`
	LogFile  string `yaml:"log_file,omitempty"`

	ConnectTimeout     time.Duration `yaml:"-"`
	ConnectTimeoutMS   int64         `yaml:"connect_timeout_ms,omitempty"`
	ReconnectBaseDelay time.Duration `yaml:"-"`
	ReconnectBaseMS    int64         `yaml:"reconnect_base_ms,omitempty"`
	ReconnectMaxDelay  time.Duration `yaml:"-"`
	ReconnectMaxMS     int64         `yaml:"reconnect_max_ms,omitempty"`
}

// Dir returns ~/.drvsh, creating it if it does not yet exist.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".drvsh")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// Load reads ~/.drvsh/config.yaml if present and fills in defaults for any
// field left unset. A missing file is not an error — it yields a
// default Config, mirroring LoadWingConfig's "no file yet" behavior.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	path := filepath.Join(dir, "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Suffix == "" {
		cfg.Suffix = defaultSuffix
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.ConnectTimeout = durationOrDefault(cfg.ConnectTimeoutMS, defaultConnectTimeout)
	cfg.ReconnectBaseDelay = durationOrDefault(cfg.ReconnectBaseMS, defaultReconnectBaseDelay)
	cfg.ReconnectMaxDelay = durationOrDefault(cfg.ReconnectMaxMS, defaultReconnectMaxDelay)
}

func durationOrDefault(ms int64, def time.Duration) time.Duration {
	if ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

// Save writes cfg back to ~/.drvsh/config.yaml, creating the directory
// first if needed.
func Save(cfg *Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0o644)
}
