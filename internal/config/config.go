// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads the miractl YAML configuration: connection
// defaults, logging and named settings profiles.
package config

import (
	"sort"

	"github.com/miractl/miractl/pkg/mira"
)

// Config is the root of config.yaml
type Config struct {
	Connection ConnectionConfig   `yaml:"connection"`
	Logging    LoggingConfig      `yaml:"logging"`
	Monitor    MonitorConfig      `yaml:"monitor"`
	Profiles   map[string]Profile `yaml:"profiles,omitempty"`
}

// ---- CONNECTION ----

// ConnectionConfig holds defaults for the persistent connection flags.
// Flags given on the command line win.
type ConnectionConfig struct {
	HIDPath      string `yaml:"hid_path,omitempty"`
	Port         string `yaml:"port,omitempty"`
	Baud         int    `yaml:"baud,omitempty"`
	URL          string `yaml:"url,omitempty"`
	Username     string `yaml:"username,omitempty"`
	NoSSLVerify  bool   `yaml:"no_ssl_verify,omitempty"`
	ApplyDelayMs *int   `yaml:"apply_delay_ms,omitempty"` // nil means DefaultDelayMs; 0 disables the pause
}

// ---- LOGGING ----

type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // silent, error, info, verbose, debug
	File  string `yaml:"file,omitempty"`
}

// ---- MONITOR ----

type MonitorConfig struct {
	IntervalMs int `yaml:"interval_ms,omitempty"`
}

// ---- PROFILES ----

// Profile maps setting names (as listed by mira.Settings) to values
type Profile map[string]int

// Commands returns the submit commands for the profile in setting table
// order. Call Validate first; an invalid entry is returned as an error.
func (p Profile) Commands() ([]mira.Command, error) {
	var cmds []mira.Command
	for _, s := range mira.Settings() {
		v, ok := p[s.Name]
		if !ok {
			continue
		}
		cmd, err := s.Command(v)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// ProfileFromSnapshot captures the restorable settings of a snapshot.
// Values outside a setting's range are left out so the profile always
// passes Validate.
func ProfileFromSnapshot(snap *mira.Snapshot) Profile {
	p := Profile{}
	for _, s := range mira.Settings() {
		if !s.Restorable {
			continue
		}
		v, ok := s.Read(snap)
		if !ok {
			continue
		}
		if _, err := s.Command(v); err != nil {
			continue
		}
		p[s.Name] = v
	}
	return p
}

// ProfileNames returns the profile names sorted
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
