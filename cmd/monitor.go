// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/miractl/miractl/pkg/mira"
)

var (
	monitorInterval      time.Duration
	monitorStats         bool
	monitorStatsInterval time.Duration
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Poll the monitor and print settings as they change",
	Long: `Continuously read the status frame and print every setting whose value
changed since the previous read. Changes made with the buttons on the
monitor or by another program show up here.

Press Ctrl+C to exit; statistics are printed on exit with --stats.`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().DurationVar(&monitorInterval, "interval", 0, "Poll interval (default from config, 1s)")
	monitorCmd.Flags().BoolVar(&monitorStats, "stats", false, "Print statistics on exit")
	monitorCmd.Flags().DurationVar(&monitorStatsInterval, "stats-interval", 0, "Also print statistics periodically (0 = off)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	session, conn, connInfo, err := openSession()
	if err != nil {
		return err
	}
	defer conn.Close()

	interval := monitorInterval
	if interval <= 0 {
		interval = time.Duration(cfg.Monitor.IntervalMs) * time.Millisecond
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "miractl - Monitor\n")
	fmt.Fprintf(out, "Connection: %s\n", connInfo)
	fmt.Fprintf(out, "Interval: %v\n", interval)
	fmt.Fprintf(out, "Press Ctrl+C to exit\n\n")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = pollChanges(ctx, out, session, interval, monitorStatsInterval)
	if monitorStats {
		fmt.Fprint(out, "\n"+session.Stats.String())
	}
	return err
}

// pollChanges reads a snapshot every interval until ctx is done and
// prints the settings that differ from the previous snapshot. Read
// errors are reported and polling continues. A statsEvery above zero
// prints the session statistics at that period.
func pollChanges(ctx context.Context, w io.Writer, session *mira.Session, interval, statsEvery time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	lastStats := time.Now()

	var prev *mira.Snapshot
	for {
		snap, err := session.ReadAll()
		now := time.Now().Format("15:04:05.000")
		switch {
		case err != nil:
			fmt.Fprintf(w, "%s [ERROR] %v\n", now, err)
		case prev == nil:
			fmt.Fprint(w, mira.FormatSnapshot(snap))
			fmt.Fprintln(w)
			prev = snap
		default:
			for _, line := range diffSnapshots(prev, snap) {
				fmt.Fprintf(w, "%s %s\n", now, line)
			}
			prev = snap
		}

		if statsEvery > 0 && session.Stats != nil && time.Since(lastStats) >= statsEvery {
			fmt.Fprint(w, session.Stats.String())
			lastStats = time.Now()
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// diffSnapshots describes every setting that changed between a and b
func diffSnapshots(a, b *mira.Snapshot) []string {
	var lines []string
	for _, s := range mira.Settings() {
		av, ok := s.Read(a)
		if !ok {
			continue
		}
		bv, _ := s.Read(b)
		if av != bv {
			lines = append(lines, fmt.Sprintf("%s: %d -> %d", s.Name, av, bv))
		}
	}
	if a.AutoTime != b.AutoTime {
		lines = append(lines, fmt.Sprintf("auto-time: %d -> %d", a.AutoTime, b.AutoTime))
	}
	if a.FullVersion != b.FullVersion {
		lines = append(lines, fmt.Sprintf("firmware: %s -> %s",
			mira.CleanVersionText(a.FullVersion), mira.CleanVersionText(b.FullVersion)))
	}
	return lines
}
