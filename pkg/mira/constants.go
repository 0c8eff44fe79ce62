// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package mira implements the vendor HID protocol of the Boox Mira 13.3"
// e-paper monitor.
//
// The device speaks in fixed-size reports: the host writes a 65-byte
// command frame (report ID placeholder + topic + value) and, for the
// read-all topic, reads back a 64-byte status frame holding every
// current setting and an embedded firmware version string. This package
// provides frame composition, status decoding, version parsing,
// formatting, validation and a small session over any io.ReadWriter.
package mira

// USB identifiers of the Mira 13.3"
const (
	VendorID  = 0x0416
	ProductID = 0x5020
)

// Frame sizes
const (
	CommandFrameSize = 65 // report ID placeholder + 64 byte report
	StatusFrameSize  = 64
	VersionBlockSize = 32
)

// Command frame layout
const (
	cmdReportIDOffset = 0
	cmdTopicOffset    = 1
	cmdValueOffset    = 2
	cmdValue2Offset   = 3
)

// Status frame layout
const (
	statusRefreshModeOffset = 1
	statusAutoTimeOffset    = 2 // 2 bytes, big-endian
	statusSpeedOffset       = 4
	statusContrastOffset    = 5
	statusColdLightOffset   = 6
	statusWarmLightOffset   = 7
	statusVCOMOffset        = 8
	statusVersionOffset     = 9 // 2 single-byte numbers
	VersionBlockOffset      = 32
)

// receiveFlag is ORed into the topic byte of receive commands.
const receiveFlag = 0x80

// Topic identifies the device setting a command frame addresses.
type Topic uint8

// Topic codes
const (
	TopicFullRefresh   Topic = 0x01
	TopicSWMode        Topic = 0x02 // refresh mode
	TopicRefreshTime   Topic = 0x03
	TopicA2Freq        Topic = 0x04 // refresh speed
	TopicContrast      Topic = 0x05
	TopicColdLight     Topic = 0x06
	TopicWarmLight     Topic = 0x07
	TopicVCOM          Topic = 0x08
	TopicDitherMode    Topic = 0x09
	TopicVersion       Topic = 0x0A
	TopicFPGAVersion   Topic = 0x0B
	TopicAll           Topic = 0x0F
	TopicColorFilter   Topic = 0x11
	TopicAutoDither    Topic = 0x12
	TopicReset         Topic = 0x1F
	TopicReqUpgrade    Topic = 0x21
	TopicWriteFirmware Topic = 0x22
	TopicUpgradeDone   Topic = 0x23
	TopicErasing       Topic = 0x25
)

// TopicLight is the alias the vendor tool uses for the cold light topic.
const TopicLight = TopicColdLight

// Valid reports whether t is one of the known topic codes.
func (t Topic) Valid() bool {
	switch t {
	case TopicFullRefresh, TopicSWMode, TopicRefreshTime, TopicA2Freq,
		TopicContrast, TopicColdLight, TopicWarmLight, TopicVCOM,
		TopicDitherMode, TopicVersion, TopicFPGAVersion, TopicAll,
		TopicColorFilter, TopicAutoDither, TopicReset, TopicReqUpgrade,
		TopicWriteFirmware, TopicUpgradeDone, TopicErasing:
		return true
	}
	return false
}

// Direction selects between writing a setting and requesting the device state.
type Direction int

// Direction values. Submit is the zero value.
const (
	Submit Direction = iota
	Receive
)

// String returns the lower-case direction name
func (d Direction) String() string {
	switch d {
	case Submit:
		return "submit"
	case Receive:
		return "receive"
	default:
		return "unknown"
	}
}

// Value limits for a single-byte command value
const (
	MinValue = 0
	MaxValue = 255
)
