// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/miractl/miractl/pkg/mira"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List attached Mira monitors",
	Long: fmt.Sprintf(`Enumerate HID devices with vendor ID 0x%04X and product ID 0x%04X.

Use the printed path with --hid-path when more than one monitor is attached.

Exit codes:
  0 - At least one monitor found
  1 - No monitors found`, mira.VendorID, mira.ProductID),
	Args: cobra.NoArgs,
	RunE: runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	devices, err := listHIDDevices()
	if err != nil {
		return err
	}

	if n := printDevices(cmd.OutOrStdout(), devices); n == 0 {
		return &exitError{code: 1, err: ErrNoDevice}
	}
	return nil
}

// printDevices writes one block per device and returns the count
func printDevices(w io.Writer, devices []hidDevice) int {
	for i, d := range devices {
		fmt.Fprintf(w, "Device %d:\n", i+1)
		fmt.Fprintf(w, "  Path: %s\n", d.Path)
		if d.Manufacturer != "" || d.Product != "" {
			fmt.Fprintf(w, "  Product: %s %s\n", d.Manufacturer, d.Product)
		}
		if d.Serial != "" {
			fmt.Fprintf(w, "  Serial: %s\n", d.Serial)
		}
		fmt.Fprintf(w, "  Interface: %d\n", d.Interface)
	}

	fmt.Fprintf(w, "\n--- Device summary ---\n")
	fmt.Fprintf(w, "Monitors found: %d\n", len(devices))
	if len(devices) == 0 {
		fmt.Fprintf(w, "No monitors found. Check the USB cable and permissions on /dev/hidraw*.\n")
	}
	if len(devices) > 1 {
		fmt.Fprintf(w, "Commands use the first monitor unless --hid-path is given.\n")
	}
	return len(devices)
}
