// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintDevices(t *testing.T) {
	var out bytes.Buffer
	n := printDevices(&out, []hidDevice{
		{Path: "/dev/hidraw3", Manufacturer: "Dasung", Product: "Mira", Serial: "A1"},
		{Path: "/dev/hidraw5"},
	})

	assert.Equal(t, 2, n)
	s := out.String()
	assert.Contains(t, s, "Device 1:\n  Path: /dev/hidraw3\n  Product: Dasung Mira\n  Serial: A1\n")
	assert.Contains(t, s, "Device 2:\n  Path: /dev/hidraw5\n  Interface: 0\n")
	assert.Contains(t, s, "Monitors found: 2")
	assert.Contains(t, s, "--hid-path")
}

func TestPrintDevices_None(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 0, printDevices(&out, nil))
	assert.Contains(t, out.String(), "No monitors found")
}
