// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mira

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Version text offsets, measured after stripping whitespace and the
// leading "Ver" tag. The device emits "Ver:H@SS:H@SS:H@SS-HASH", so the
// stripped text starts with the ':' separator.
const (
	mcuHVStart, mcuHVEnd   = 1, 2
	mcuSVStart, mcuSVEnd   = 3, 5
	rtdHVStart, rtdHVEnd   = 6, 7
	rtdSVStart, rtdSVEnd   = 8, 10
	fpgaHVStart, fpgaHVEnd = 11, 12
	fpgaSVStart, fpgaSVEnd = 13, 15

	minVersionLength = fpgaSVEnd
	versionTag       = "Ver"
)

// ParseStatus decodes a status frame returned for the read-all command.
// The frame must hold at least StatusFrameSize bytes; anything past that
// is ignored.
func ParseStatus(frame []byte) (*Snapshot, error) {
	if len(frame) < StatusFrameSize {
		return nil, fmt.Errorf("%w: got %d bytes, need %d", ErrMalformedFrame, len(frame), StatusFrameSize)
	}

	version, err := ParseVersion(frame[VersionBlockOffset : VersionBlockOffset+VersionBlockSize])
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		RefreshMode: frame[statusRefreshModeOffset],
		AutoTime:    binary.BigEndian.Uint16(frame[statusAutoTimeOffset : statusAutoTimeOffset+2]),
		Speed:       frame[statusSpeedOffset],
		Contrast:    frame[statusContrastOffset],
		ColdLight:   frame[statusColdLightOffset],
		WarmLight:   frame[statusWarmLightOffset],
		VCOM:        frame[statusVCOMOffset],
		Version: [2]uint8{
			frame[statusVersionOffset],
			frame[statusVersionOffset+1],
		},
		VersionDetail: version.Detail(),
		FullVersion:   version.Full,
	}, nil
}

// ParseVersion decodes the 32-byte version text block.
//
// The text is expected as "Ver:H@SS:H@SS:H@SS-HASH" (MCU, RTD main board,
// FPGA) padded with NULs or spaces. Whitespace and NULs are removed from
// the whole string, the first "Ver" is dropped, and the fields are taken
// at fixed offsets. A block of any other length than VersionBlockSize is
// rejected.
func ParseVersion(block []byte) (Version, error) {
	if len(block) != VersionBlockSize {
		return Version{}, fmt.Errorf("%w: block is %d bytes, want %d",
			ErrMalformedVersion, len(block), VersionBlockSize)
	}

	full := string(block)
	chunk := []rune(strings.Replace(stripVersionText(decodeVersionText(block)), versionTag, "", 1))

	if len(chunk) < minVersionLength {
		return Version{}, fmt.Errorf("%w: %d characters after stripping, need %d (%q)",
			ErrMalformedVersion, len(chunk), minVersionLength, string(chunk))
	}

	field := func(start, end int) string {
		return string(chunk[start:end])
	}

	return Version{
		MCUHV:  field(mcuHVStart, mcuHVEnd),
		MCUSV:  field(mcuSVStart, mcuSVEnd),
		RTDHV:  field(rtdHVStart, rtdHVEnd),
		RTDSV:  field(rtdSVStart, rtdSVEnd),
		FPGAHV: field(fpgaHVStart, fpgaHVEnd),
		FPGASV: field(fpgaSVStart, fpgaSVEnd),
		Full:   full,
	}, nil
}

// decodeVersionText decodes block as UTF-8, taking any byte that is not
// part of a valid sequence as Latin-1 so a lone 0xA0 is still a no-break
// space.
func decodeVersionText(block []byte) string {
	if utf8.Valid(block) {
		return string(block)
	}
	var b strings.Builder
	for len(block) > 0 {
		r, size := utf8.DecodeRune(block)
		if r == utf8.RuneError && size == 1 {
			r = rune(block[0])
		}
		b.WriteRune(r)
		block = block[size:]
	}
	return b.String()
}

// stripVersionText removes every whitespace rune, NUL, zero width
// no-break space and no-break space from s.
func stripVersionText(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 || r == '\uFEFF' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// ParseCommand decodes a command frame back into a Command. A zero value
// byte decodes as no value, matching Compose.
func ParseCommand(frame []byte) (Command, error) {
	if len(frame) != CommandFrameSize {
		return Command{}, fmt.Errorf("%w: command frame is %d bytes, want %d", ErrMalformedFrame, len(frame), CommandFrameSize)
	}
	if frame[0] != 0 {
		return Command{}, fmt.Errorf("%w: report byte is 0x%02X, want 0x00", ErrMalformedFrame, frame[0])
	}

	head := frame[cmdTopicOffset]
	cmd := Command{Direction: Submit, Topic: Topic(head &^ receiveFlag)}
	if head&receiveFlag != 0 {
		cmd.Direction = Receive
	}
	if !cmd.Topic.Valid() {
		return Command{}, fmt.Errorf("%w: unknown topic 0x%02X", ErrMalformedFrame, uint8(cmd.Topic))
	}

	if v := int(frame[cmdValueOffset]); v != 0 {
		cmd.Value = &v
	}
	return cmd, nil
}
