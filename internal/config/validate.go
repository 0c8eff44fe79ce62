// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/miractl/miractl/internal/logging"
	"github.com/miractl/miractl/pkg/mira"
)

// Validate checks configuration correctness.
// It does not mutate the configuration.
func Validate(cfg *Config) error {
	c := cfg.Connection
	if c.Baud < 0 {
		return fmt.Errorf("connection.baud must be positive, got %d", c.Baud)
	}
	if c.ApplyDelayMs != nil && *c.ApplyDelayMs < 0 {
		return fmt.Errorf("connection.apply_delay_ms must not be negative, got %d", *c.ApplyDelayMs)
	}
	if c.URL != "" {
		u, err := url.Parse(c.URL)
		if err != nil {
			return fmt.Errorf("connection.url: %w", err)
		}
		if u.Scheme != "ws" && u.Scheme != "wss" {
			return fmt.Errorf("connection.url must use ws:// or wss://, got %q", c.URL)
		}
	}

	if cfg.Monitor.IntervalMs < 0 {
		return fmt.Errorf("monitor.interval_ms must not be negative, got %d", cfg.Monitor.IntervalMs)
	}

	if cfg.Logging.Level != "" {
		if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
			return fmt.Errorf("logging.level: %w", err)
		}
	}

	for _, name := range cfg.ProfileNames() {
		if err := validateProfile(name, cfg.Profiles[name]); err != nil {
			return err
		}
	}

	return nil
}

func validateProfile(name string, p Profile) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("profile name must not be empty")
	}
	if len(p) == 0 {
		return fmt.Errorf("profile %q has no settings", name)
	}
	for key, v := range p {
		s, ok := mira.LookupSetting(key)
		if !ok {
			return fmt.Errorf("profile %q: unknown setting %q", name, key)
		}
		if _, err := s.Command(v); err != nil {
			return fmt.Errorf("profile %q: %w", name, err)
		}
	}
	return nil
}
