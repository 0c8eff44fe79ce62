// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/miractl/miractl/pkg/mira"
)

var (
	pingCount    int
	pingInterval time.Duration
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test the connection with read-all round trips",
	Long: `Send read-all commands and time each status frame that comes back.

This is useful for verifying:
  - The HID device (or bridge) accepts command frames
  - Status frames arrive complete and decode
  - Round-trip latency through a serial or WebSocket bridge

Exit codes:
  0 - All pings successful
  1 - One or more pings failed
  2 - Connection error`,
	Args: cobra.NoArgs,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().IntVar(&pingCount, "count", 3, "Number of pings to send")
	pingCmd.Flags().DurationVar(&pingInterval, "interval", 100*time.Millisecond, "Delay between pings")
}

func runPing(cmd *cobra.Command, args []string) error {
	session, conn, connInfo, err := openSession()
	if err != nil {
		return err
	}
	defer conn.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "miractl - Ping\n")
	fmt.Fprintf(out, "Connection: %s\n", connInfo)
	fmt.Fprintf(out, "Count: %d pings\n\n", pingCount)

	failed := pingDevice(out, session, pingCount, pingInterval)
	if failed > 0 {
		return &exitError{code: 1, err: fmt.Errorf("%d of %d pings failed", failed, pingCount)}
	}
	return nil
}

// pingDevice runs count read-all round trips and prints a summary.
// It returns the number of failed pings.
func pingDevice(w io.Writer, session *mira.Session, count int, interval time.Duration) int {
	successCount := 0
	failCount := 0
	var total, best, worst time.Duration

	for i := 1; i <= count; i++ {
		fmt.Fprintf(w, "Ping %d/%d: ", i, count)

		start := time.Now()
		snap, err := session.ReadAll()
		rtt := time.Since(start)
		if err != nil {
			fmt.Fprintf(w, "FAILED: %v\n", err)
			failCount++
		} else {
			fmt.Fprintf(w, "status frame, firmware=%s, rtt=%v\n",
				mira.CleanVersionText(snap.FullVersion), rtt.Round(time.Microsecond))
			successCount++
			total += rtt
			if best == 0 || rtt < best {
				best = rtt
			}
			if rtt > worst {
				worst = rtt
			}
		}

		if i < count && interval > 0 {
			time.Sleep(interval)
		}
	}

	fmt.Fprintf(w, "\n--- Ping statistics ---\n")
	loss := 0.0
	if count > 0 {
		loss = float64(failCount) / float64(count) * 100
	}
	fmt.Fprintf(w, "%d pings sent, %d responses received, %.0f%% loss\n", count, successCount, loss)
	if successCount > 0 {
		avg := total / time.Duration(successCount)
		fmt.Fprintf(w, "rtt min/avg/max = %v/%v/%v\n",
			best.Round(time.Microsecond), avg.Round(time.Microsecond), worst.Round(time.Microsecond))
	}

	return failCount
}
