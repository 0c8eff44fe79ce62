// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mira

// Command is a logical device operation: a direction, a topic and an
// optional single-byte value.
type Command struct {
	Direction Direction
	Topic     Topic
	Value     *int
}

// Frame composes the command into its wire frame.
func (c Command) Frame() (CommandFrame, error) {
	return Compose(c.Direction, c.Topic, c.Value)
}

// HasValue reports whether the command carries a value
func (c Command) HasValue() bool {
	return c.Value != nil
}

// Command builder functions create Command values ready for composing.
// Range checks happen in Compose; use Setting.Command for the tighter
// per-setting ranges.

func submit(topic Topic, value int) Command {
	return Command{Direction: Submit, Topic: topic, Value: &value}
}

// NewReadAll requests the 64-byte status frame.
func NewReadAll() Command {
	return Command{Direction: Receive, Topic: TopicAll}
}

// NewFullRefresh triggers a full display refresh (clears ghosting).
func NewFullRefresh() Command {
	return Command{Direction: Submit, Topic: TopicFullRefresh}
}

// NewRefreshMode selects the refresh mode (1-3).
func NewRefreshMode(mode int) Command {
	return submit(TopicSWMode, mode)
}

// NewRefreshTime sets the automatic full refresh interval.
func NewRefreshTime(value int) Command {
	return submit(TopicRefreshTime, value)
}

// NewSpeed sets the refresh speed (4-11).
func NewSpeed(speed int) Command {
	return submit(TopicA2Freq, speed)
}

// NewContrast sets the contrast (0-15).
func NewContrast(contrast int) Command {
	return submit(TopicContrast, contrast)
}

// NewColdLight sets the cold (blue) front light intensity (0-255).
func NewColdLight(level int) Command {
	return submit(TopicColdLight, level)
}

// NewWarmLight sets the warm (yellow) front light intensity (0-255).
func NewWarmLight(level int) Command {
	return submit(TopicWarmLight, level)
}

// NewVCOM sets the panel VCOM byte.
func NewVCOM(value int) Command {
	return submit(TopicVCOM, value)
}

// NewDitherMode selects the dither mode.
func NewDitherMode(mode int) Command {
	return submit(TopicDitherMode, mode)
}

// NewColorFilter sets the white filter. The black side of the filter
// field is not supported by the device and is always sent as zero.
func NewColorFilter(white int) Command {
	return submit(TopicColorFilter, white)
}

// NewAutoDither sets the auto dither value.
func NewAutoDither(value int) Command {
	return submit(TopicAutoDither, value)
}
