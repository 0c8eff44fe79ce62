// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/miractl/miractl/pkg/mira"
)

var statusRaw bool

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"all"},
	Short:   "Read and display every setting the monitor reports",
	Long: `Send a read-all command and decode the 64-byte status frame.

Prints refresh mode, speed, contrast, light levels, VCOM and the firmware
version of the MCU, RTD and FPGA, followed by any value outside its
documented range.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusRaw, "raw", false, "Also print the raw status frame")
}

func runStatus(cmd *cobra.Command, args []string) error {
	session, conn, _, err := openSession()
	if err != nil {
		return err
	}
	defer conn.Close()

	return printStatus(cmd.OutOrStdout(), session, statusRaw)
}

// printStatus reads a snapshot and writes it to w. With raw, the status
// frame is captured from the session trace and dumped as well.
func printStatus(w io.Writer, session *mira.Session, raw bool) error {
	var frame []byte
	if raw {
		prev := session.Trace
		session.Trace = func(label string, f []byte) {
			if label == "rx" {
				frame = append([]byte(nil), f...)
			}
			if prev != nil {
				prev(label, f)
			}
		}
		defer func() { session.Trace = prev }()
	}

	snap, err := session.ReadAll()
	if err != nil {
		return err
	}

	fmt.Fprint(w, mira.FormatSnapshot(snap))

	if raw && frame != nil {
		fmt.Fprintln(w, "\nStatus frame:")
		fmt.Fprint(w, mira.FormatFrame(frame))
	}

	for _, v := range mira.ValidateSnapshot(snap) {
		fmt.Fprintf(w, "WARNING: %s\n", v.Message)
	}
	return nil
}
