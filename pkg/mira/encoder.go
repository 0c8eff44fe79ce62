// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mira

import (
	"encoding/hex"
	"fmt"
)

// CommandFrame is a complete outbound report, ready for the transport.
// Byte 0 is the report ID placeholder and is always zero.
type CommandFrame [CommandFrameSize]byte

// Bytes returns the frame as a slice
func (f CommandFrame) Bytes() []byte {
	return f[:]
}

// String returns the frame as lower-case hex
func (f CommandFrame) String() string {
	return hex.EncodeToString(f[:])
}

// Compose builds the command frame for the given direction, topic and
// optional value.
//
// A nil value and a value of 0 produce identical frames: the device has
// always received 0 for "no value", and the vendor tool never sends an
// explicit zero differently. The color filter topic carries a two byte
// field (white, black) of which only the white side is supported, so
// byte 3 is always written as zero for it.
func Compose(dir Direction, topic Topic, value *int) (CommandFrame, error) {
	var frame CommandFrame

	var head byte
	switch dir {
	case Submit:
	case Receive:
		head = receiveFlag
	default:
		return frame, fmt.Errorf("%w: direction %d", ErrInvalidArgument, int(dir))
	}

	if !topic.Valid() {
		return frame, fmt.Errorf("%w: unknown topic 0x%02X", ErrInvalidArgument, uint8(topic))
	}

	if value != nil && (*value < MinValue || *value > MaxValue) {
		return frame, fmt.Errorf("%w: value %d out of range %d-%d for %s",
			ErrInvalidArgument, *value, MinValue, MaxValue, FormatTopic(topic))
	}

	frame[cmdTopicOffset] = head | byte(topic)

	if value == nil || *value == 0 {
		return frame, nil
	}

	frame[cmdValueOffset] = byte(*value)
	if topic == TopicColorFilter {
		frame[cmdValue2Offset] = 0
	}

	return frame, nil
}

// MustCompose is like Compose but panics on error.
// Use only with constant, known-good arguments.
func MustCompose(dir Direction, topic Topic, value *int) CommandFrame {
	frame, err := Compose(dir, topic, value)
	if err != nil {
		panic(fmt.Sprintf("mira: compose error: %v", err))
	}
	return frame
}
