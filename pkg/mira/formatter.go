// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mira

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatTopic returns the human-readable name for a topic
func FormatTopic(topic Topic) string {
	switch topic {
	case TopicFullRefresh:
		return "FULL_REFRESH"
	case TopicSWMode:
		return "REFRESH_MODE"
	case TopicRefreshTime:
		return "REFRESH_TIME"
	case TopicA2Freq:
		return "SPEED"
	case TopicContrast:
		return "CONTRAST"
	case TopicColdLight:
		return "COLD_LIGHT"
	case TopicWarmLight:
		return "WARM_LIGHT"
	case TopicVCOM:
		return "VCOM"
	case TopicDitherMode:
		return "DITHER_MODE"
	case TopicVersion:
		return "VERSION"
	case TopicFPGAVersion:
		return "FPGA_VERSION"
	case TopicAll:
		return "ALL"
	case TopicColorFilter:
		return "COLOR_FILTER"
	case TopicAutoDither:
		return "AUTO_DITHER"
	case TopicReset:
		return "RESET"
	case TopicReqUpgrade:
		return "REQ_UPGRADE"
	case TopicWriteFirmware:
		return "WRITE_FIRMWARE"
	case TopicUpgradeDone:
		return "UPGRADE_DONE"
	case TopicErasing:
		return "ERASING"
	default:
		return "UNKNOWN"
	}
}

// ParseTopic resolves a topic from its name (as printed by FormatTopic,
// case-insensitive, '-' accepted for '_') or from a numeric code such as
// "0x0f" or "15".
func ParseTopic(s string) (Topic, error) {
	name := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for code := 0; code <= 0xFF; code++ {
		t := Topic(code)
		if t.Valid() && FormatTopic(t) == name {
			return t, nil
		}
	}

	if code, err := strconv.ParseUint(strings.TrimSpace(s), 0, 8); err == nil {
		if t := Topic(code); t.Valid() {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown topic %q", ErrInvalidArgument, s)
}

// FormatCommand formats a command on one line
func FormatCommand(c Command) string {
	dir := strings.ToUpper(c.Direction.String())
	if c.Value == nil {
		return fmt.Sprintf("%s %s (0x%02X)", dir, FormatTopic(c.Topic), uint8(c.Topic))
	}
	return fmt.Sprintf("%s %s (0x%02X) value=%d", dir, FormatTopic(c.Topic), uint8(c.Topic), *c.Value)
}

// FormatFrame formats raw frame bytes as a hex dump, 16 bytes per row
func FormatFrame(data []byte) string {
	var s strings.Builder
	for off := 0; off < len(data); off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		fmt.Fprintf(&s, "  %04X ", off)
		for i := off; i < end; i++ {
			fmt.Fprintf(&s, " %02X", data[i])
		}
		s.WriteString("\n")
	}
	return s.String()
}

// FormatSnapshot formats a snapshot into a human-readable block
func FormatSnapshot(snap *Snapshot) string {
	var s strings.Builder

	fmt.Fprintf(&s, "Refresh Mode:  %d\n", snap.RefreshMode)
	fmt.Fprintf(&s, "Speed:         %d\n", snap.Speed)
	fmt.Fprintf(&s, "Contrast:      %d\n", snap.Contrast)
	fmt.Fprintf(&s, "Cold Light:    %d\n", snap.ColdLight)
	fmt.Fprintf(&s, "Warm Light:    %d\n", snap.WarmLight)
	fmt.Fprintf(&s, "Auto Time:     %d\n", snap.AutoTime)
	fmt.Fprintf(&s, "VCOM:          %d\n", snap.VCOM)
	fmt.Fprintf(&s, "Version:       %d.%d\n", snap.Version[0], snap.Version[1])
	fmt.Fprintf(&s, "  MCU:         %s\n", formatSubsystem(snap.VersionDetail.MCUHV, snap.VersionDetail.MCUSV))
	fmt.Fprintf(&s, "  RTD:         %s\n", formatSubsystem(snap.VersionDetail.RTDHV, snap.VersionDetail.RTDSV))
	fmt.Fprintf(&s, "  FPGA:        %s\n", formatSubsystem(snap.VersionDetail.FPGAHV, snap.VersionDetail.FPGASV))
	fmt.Fprintf(&s, "Firmware:      %s\n", CleanVersionText(snap.FullVersion))

	return s.String()
}

// CleanVersionText trims NUL and whitespace padding from a raw version
// string for display.
func CleanVersionText(full string) string {
	return strings.TrimSpace(strings.TrimRight(full, "\x00 "))
}

func formatSubsystem(hv, sv string) string {
	return fmt.Sprintf("HW %s / SW %s", hv, sv)
}
