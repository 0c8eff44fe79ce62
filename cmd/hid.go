// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"

	"github.com/sstallion/go-hid"

	"github.com/miractl/miractl/pkg/mira"
)

// ErrNoDevice is returned when no monitor is attached
var ErrNoDevice = errors.New("no Mira monitor found")

// HIDConnection talks to the monitor's control interface directly.
// Byte 0 of every command frame is the report ID.
type HIDConnection struct {
	dev *hid.Device
}

func (h *HIDConnection) Read(p []byte) (int, error) {
	n, err := h.dev.ReadWithTimeout(p, readTimeout)
	if err != nil {
		if errors.Is(err, hid.ErrTimeout) {
			return 0, ErrReadTimeout
		}
		return n, err
	}
	if n == 0 {
		return 0, ErrReadTimeout
	}
	return n, nil
}

func (h *HIDConnection) Write(p []byte) (int, error) {
	return h.dev.Write(p)
}

func (h *HIDConnection) Close() error {
	err := h.dev.Close()
	if exitErr := hid.Exit(); err == nil {
		err = exitErr
	}
	return err
}

// hidDevice describes one enumerated monitor interface
type hidDevice struct {
	Path         string
	Serial       string
	Manufacturer string
	Product      string
	Interface    int
}

// listHIDDevices enumerates attached monitors
func listHIDDevices() ([]hidDevice, error) {
	if err := hid.Init(); err != nil {
		return nil, fmt.Errorf("hid init: %w", err)
	}
	defer hid.Exit()

	return enumerateHID()
}

func enumerateHID() ([]hidDevice, error) {
	var devices []hidDevice
	err := hid.Enumerate(mira.VendorID, mira.ProductID, func(info *hid.DeviceInfo) error {
		devices = append(devices, hidDevice{
			Path:         info.Path,
			Serial:       info.SerialNbr,
			Manufacturer: info.MfrStr,
			Product:      info.ProductStr,
			Interface:    info.InterfaceNbr,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("hid enumerate: %w", err)
	}
	return devices, nil
}

// OpenHIDConnection opens the monitor at path, or the first attached
// monitor when path is empty
func OpenHIDConnection(path string) (*HIDConnection, string, error) {
	if err := hid.Init(); err != nil {
		return nil, "", fmt.Errorf("hid init: %w", err)
	}

	if path == "" {
		devices, err := enumerateHID()
		if err != nil {
			hid.Exit()
			return nil, "", err
		}
		if len(devices) == 0 {
			hid.Exit()
			return nil, "", fmt.Errorf("%w (VID 0x%04X, PID 0x%04X)", ErrNoDevice, mira.VendorID, mira.ProductID)
		}
		if len(devices) > 1 {
			logger.Info("%d monitors found, using %s (select one with --hid-path)", len(devices), devices[0].Path)
		}
		path = devices[0].Path
	}

	dev, err := hid.OpenPath(path)
	if err != nil {
		hid.Exit()
		return nil, "", fmt.Errorf("failed to open HID device %s: %w", path, err)
	}

	return &HIDConnection{dev: dev}, fmt.Sprintf("HID: %s", path), nil
}
