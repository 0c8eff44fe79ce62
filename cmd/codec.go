// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/miractl/miractl/pkg/mira"
)

var (
	encodeReceive bool
	codecCopy     bool
)

var encodeCmd = &cobra.Command{
	Use:   "encode <topic> [value]",
	Short: "Print the command frame for a topic and value",
	Long: `Compose a command frame offline and print it as hex.

The topic is a name such as cold-light or COLOR_FILTER, or a numeric code
such as 0x06. No device is needed; pipe the output into another HID tool
or paste it into a bridge console.

Examples:
  miractl encode speed 7
  miractl encode all --receive
  miractl encode 0x01 --copy`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runEncode,
}

var decodeCmd = &cobra.Command{
	Use:   "decode <hex>",
	Short: "Decode a command or status frame given as hex",
	Long: `Decode a frame captured from the wire.

A 65-byte input is decoded as a command frame and a 64-byte (or longer)
input as a status frame. Spaces, colons and a 0x prefix are ignored.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)

	encodeCmd.Flags().BoolVar(&encodeReceive, "receive", false, "Compose a receive (read) command")
	encodeCmd.Flags().BoolVar(&codecCopy, "copy", false, "Copy the hex to the clipboard")
	decodeCmd.Flags().BoolVar(&codecCopy, "copy", false, "Copy the decoded text to the clipboard")
}

func runEncode(cmd *cobra.Command, args []string) error {
	dir := mira.Submit
	if encodeReceive {
		dir = mira.Receive
	}
	frame, err := encodeFrame(dir, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, frame.String())
	return copyIfRequested(out, frame.String())
}

// encodeFrame parses "<topic> [value]" and composes the frame
func encodeFrame(dir mira.Direction, args []string) (mira.CommandFrame, error) {
	topic, err := mira.ParseTopic(args[0])
	if err != nil {
		return mira.CommandFrame{}, err
	}

	var value *int
	if len(args) > 1 {
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return mira.CommandFrame{}, fmt.Errorf("%w: value %q is not a number", mira.ErrInvalidArgument, args[1])
		}
		value = &v
	}

	return mira.Compose(dir, topic, value)
}

func runDecode(cmd *cobra.Command, args []string) error {
	text, err := decodeFrame(strings.Join(args, ""))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, text)
	return copyIfRequested(out, text)
}

// decodeFrame decodes hex text into a printable description
func decodeFrame(input string) (string, error) {
	clean := strings.NewReplacer(" ", "", ":", "", "\n", "", "\t", "").Replace(input)
	clean = strings.TrimPrefix(strings.TrimPrefix(clean, "0x"), "0X")

	data, err := hex.DecodeString(clean)
	if err != nil {
		return "", fmt.Errorf("%w: invalid hex: %v", mira.ErrMalformedFrame, err)
	}

	switch {
	case len(data) == mira.CommandFrameSize:
		c, err := mira.ParseCommand(data)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Command frame: %s\n", mira.FormatCommand(c)), nil

	case len(data) >= mira.StatusFrameSize:
		snap, err := mira.ParseStatus(data)
		if err != nil {
			return "", err
		}
		var s strings.Builder
		s.WriteString("Status frame:\n")
		s.WriteString(mira.FormatSnapshot(snap))
		for _, v := range mira.ValidateSnapshot(snap) {
			fmt.Fprintf(&s, "WARNING: %s\n", v.Message)
		}
		return s.String(), nil

	default:
		return "", fmt.Errorf("%w: %d bytes is neither a command frame (%d) nor a status frame (%d)",
			mira.ErrMalformedFrame, len(data), mira.CommandFrameSize, mira.StatusFrameSize)
	}
}

func copyIfRequested(w io.Writer, text string) error {
	if !codecCopy {
		return nil
	}
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard is not available on this system")
	}
	if err := clipboard.WriteAll(strings.TrimSpace(text)); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	fmt.Fprintln(w, "(copied to clipboard)")
	return nil
}
