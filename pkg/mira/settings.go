// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mira

import "fmt"

// Setting describes one user-adjustable device setting: the topic it is
// written with, its accepted range, and where the device reports it back.
type Setting struct {
	Name        string
	Topic       Topic
	Min         int
	Max         int
	Description string

	// Restorable settings are echoed in the status frame and are safe to
	// write back from a snapshot.
	Restorable bool

	read func(*Snapshot) int
}

// settingTable is the fixed dispatch table from setting name to topic.
// Order matters: it is the order settings are applied in.
var settingTable = [...]Setting{
	{
		Name: "refresh-mode", Topic: TopicSWMode, Min: 1, Max: 3,
		Description: "display refresh mode", Restorable: true,
		read: func(s *Snapshot) int { return int(s.RefreshMode) },
	},
	{
		Name: "speed", Topic: TopicA2Freq, Min: 4, Max: 11,
		Description: "display refresh speed", Restorable: true,
		read: func(s *Snapshot) int { return int(s.Speed) },
	},
	{
		Name: "contrast", Topic: TopicContrast, Min: 0, Max: 15,
		Description: "contrast", Restorable: true,
		read: func(s *Snapshot) int { return int(s.Contrast) },
	},
	{
		Name: "cold-light", Topic: TopicColdLight, Min: 0, Max: 255,
		Description: "cold light intensity", Restorable: true,
		read: func(s *Snapshot) int { return int(s.ColdLight) },
	},
	{
		Name: "warm-light", Topic: TopicWarmLight, Min: 0, Max: 255,
		Description: "warm light intensity", Restorable: true,
		read: func(s *Snapshot) int { return int(s.WarmLight) },
	},
	{
		Name: "vcom", Topic: TopicVCOM, Min: 0, Max: 255,
		Description: "panel VCOM byte",
		read:        func(s *Snapshot) int { return int(s.VCOM) },
	},
	{
		Name: "refresh-time", Topic: TopicRefreshTime, Min: 0, Max: 255,
		Description: "automatic full refresh interval",
	},
	{
		Name: "dither-mode", Topic: TopicDitherMode, Min: 0, Max: 255,
		Description: "dither mode",
	},
	{
		Name: "color-filter", Topic: TopicColorFilter, Min: 0, Max: 255,
		Description: "white filter level",
	},
	{
		Name: "auto-dither", Topic: TopicAutoDither, Min: 0, Max: 255,
		Description: "auto dither",
	},
}

// Settings returns a copy of the setting table in apply order.
func Settings() []Setting {
	out := make([]Setting, len(settingTable))
	copy(out, settingTable[:])
	return out
}

// LookupSetting finds a setting by name.
func LookupSetting(name string) (Setting, bool) {
	for _, s := range settingTable {
		if s.Name == name {
			return s, true
		}
	}
	return Setting{}, false
}

// SettingForTopic finds the setting written with the given topic.
func SettingForTopic(topic Topic) (Setting, bool) {
	for _, s := range settingTable {
		if s.Topic == topic {
			return s, true
		}
	}
	return Setting{}, false
}

// Command builds the submit command for value, checking the setting's range.
func (s Setting) Command(value int) (Command, error) {
	if value < s.Min || value > s.Max {
		return Command{}, fmt.Errorf("%w: %s must be %d-%d, got %d",
			ErrInvalidArgument, s.Name, s.Min, s.Max, value)
	}
	return submit(s.Topic, value), nil
}

// Read returns the setting's value from a snapshot. ok is false when the
// device does not report this setting in its status frame.
func (s Setting) Read(snap *Snapshot) (value int, ok bool) {
	if s.read == nil || snap == nil {
		return 0, false
	}
	return s.read(snap), true
}

// Range returns the accepted range as "min-max"
func (s Setting) Range() string {
	return fmt.Sprintf("%d-%d", s.Min, s.Max)
}
