// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miractl/miractl/pkg/mira"
)

const sampleConfig = `
connection:
  port: /dev/ttyUSB0
  baud: 57600
logging:
  level: verbose
monitor:
  interval_ms: 250
profiles:
  reading:
    refresh-mode: 3
    contrast: 9
    speed: 5
  night:
    warm-light: 120
    cold-light: 0
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB0", cfg.Connection.Port)
	assert.Equal(t, 57600, cfg.Connection.Baud)
	require.NotNil(t, cfg.Connection.ApplyDelayMs)
	assert.Equal(t, DefaultDelayMs, *cfg.Connection.ApplyDelayMs)
	assert.Equal(t, "verbose", cfg.Logging.Level)
	assert.Equal(t, 250, cfg.Monitor.IntervalMs)
	assert.Equal(t, []string{"night", "reading"}, cfg.ProfileNames())
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_DefaultMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "profiles: [oops"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := Default()
	cfg.Profiles = map[string]Profile{"day": {"cold-light": 200}}

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_ZeroApplyDelay(t *testing.T) {
	cfg, err := Load(writeConfig(t, "connection:\n  apply_delay_ms: 0\n"))
	require.NoError(t, err)
	require.NotNil(t, cfg.Connection.ApplyDelayMs)
	assert.Equal(t, 0, *cfg.Connection.ApplyDelayMs)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Save(path, cfg))
	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, *reloaded.Connection.ApplyDelayMs)
}

func TestSave_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Profiles = map[string]Profile{"bad": {"speed": 0}}

	err := Save(path, cfg)
	assert.ErrorContains(t, err, "speed must be 4-11")
	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

// A device reporting values outside the setting ranges must not leave
// behind a config that Load refuses.
func TestSaveProfileFromZeroedStatus(t *testing.T) {
	frame := make([]byte, mira.StatusFrameSize)
	copy(frame[mira.VersionBlockOffset:], mira.DefaultVersionText)
	snap, err := mira.ParseStatus(frame)
	require.NoError(t, err)

	cfg := Default()
	cfg.Profiles = map[string]Profile{"night": ProfileFromSnapshot(snap)}

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, Profile{"contrast": 0, "cold-light": 0, "warm-light": 0}, loaded.Profiles["night"])
}

func TestProfileCommands_TableOrder(t *testing.T) {
	p := Profile{"contrast": 9, "refresh-mode": 3, "speed": 5}

	cmds, err := p.Commands()
	require.NoError(t, err)
	require.Len(t, cmds, 3)

	assert.Equal(t, mira.TopicSWMode, cmds[0].Topic)
	assert.Equal(t, mira.TopicA2Freq, cmds[1].Topic)
	assert.Equal(t, mira.TopicContrast, cmds[2].Topic)
	assert.Equal(t, 9, *cmds[2].Value)
}

func TestProfileCommands_OutOfRange(t *testing.T) {
	_, err := Profile{"speed": 2}.Commands()
	assert.ErrorIs(t, err, mira.ErrInvalidArgument)
}

func TestProfileFromSnapshot(t *testing.T) {
	snap := &mira.Snapshot{RefreshMode: 1, Speed: 6, Contrast: 4, ColdLight: 10, WarmLight: 20, VCOM: 99}

	p := ProfileFromSnapshot(snap)
	assert.Equal(t, Profile{
		"refresh-mode": 1,
		"speed":        6,
		"contrast":     4,
		"cold-light":   10,
		"warm-light":   20,
	}, p)
}

func TestProfileFromSnapshot_SkipsOutOfRange(t *testing.T) {
	snap := &mira.Snapshot{RefreshMode: 9, Speed: 2, Contrast: 20, ColdLight: 10, WarmLight: 20}

	p := ProfileFromSnapshot(snap)
	assert.Equal(t, Profile{"cold-light": 10, "warm-light": 20}, p)
	assert.NoError(t, Validate(&Config{Profiles: map[string]Profile{"p": p}}))
}
