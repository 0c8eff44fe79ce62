// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaud       = 115200
	DefaultIntervalMs = 1000
	DefaultDelayMs    = 10
)

// DefaultPath returns $XDG_CONFIG_HOME/miractl/config.yaml (or the
// platform equivalent)
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "miractl", "config.yaml"), nil
}

// Default returns the configuration used when no file exists
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and validates the config at path. When path is empty the
// default location is used and a missing file yields Default().
// An explicitly named file must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", path, err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	applyDefaults(&cfg)

	return &cfg, nil
}

// Save validates the config and writes it to path, creating the
// directory if needed. An invalid config is not written.
func Save(path string, cfg *Config) error {
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Connection.Baud == 0 {
		cfg.Connection.Baud = DefaultBaud
	}
	if cfg.Connection.ApplyDelayMs == nil {
		delay := DefaultDelayMs
		cfg.Connection.ApplyDelayMs = &delay
	}
	if cfg.Monitor.IntervalMs == 0 {
		cfg.Monitor.IntervalMs = DefaultIntervalMs
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
