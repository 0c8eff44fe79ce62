// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mira

// Version is the parsed firmware version block.
// HV fields are single-character hardware versions, SV fields are
// two-character software versions.
type Version struct {
	MCUHV  string
	MCUSV  string
	RTDHV  string
	RTDSV  string
	FPGAHV string
	FPGASV string
	Full   string // raw block text, padding included
}

// Detail returns the version without the raw text
func (v Version) Detail() VersionDetail {
	return VersionDetail{
		MCUHV:  v.MCUHV,
		MCUSV:  v.MCUSV,
		RTDHV:  v.RTDHV,
		RTDSV:  v.RTDSV,
		FPGAHV: v.FPGAHV,
		FPGASV: v.FPGASV,
	}
}

// VersionDetail holds the per-subsystem firmware versions.
type VersionDetail struct {
	MCUHV  string `cbor:"mcu_hv"`
	MCUSV  string `cbor:"mcu_sv"`
	RTDHV  string `cbor:"rtd_hv"`
	RTDSV  string `cbor:"rtd_sv"`
	FPGAHV string `cbor:"fpga_hv"`
	FPGASV string `cbor:"fpga_sv"`
}

// Snapshot is the decoded view of a status frame.
type Snapshot struct {
	RefreshMode   uint8         `cbor:"refresh_mode"`
	AutoTime      uint16        `cbor:"auto_time"`
	Speed         uint8         `cbor:"speed"`
	Contrast      uint8         `cbor:"contrast"`
	ColdLight     uint8         `cbor:"cold_light"`
	WarmLight     uint8         `cbor:"warm_light"`
	VCOM          uint8         `cbor:"vcom"` // may double as the black/white filter
	Version       [2]uint8      `cbor:"version"`
	VersionDetail VersionDetail `cbor:"version_detail"`
	FullVersion   string        `cbor:"full_version"`
}

// Commands returns the submit commands that put a device back into the
// state described by the snapshot. Only settings the device echoes in
// its status frame are included, in a fixed order. Values outside a
// setting's range are skipped.
func (s *Snapshot) Commands() []Command {
	var cmds []Command
	for _, setting := range settingTable {
		v, ok := setting.Read(s)
		if !ok || !setting.Restorable {
			continue
		}
		cmd, err := setting.Command(v)
		if err != nil {
			continue
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}
