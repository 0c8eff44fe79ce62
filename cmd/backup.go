// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/miractl/miractl/pkg/mira"
)

var (
	backupOutput   string
	restoreDryRun  bool
	restoreRefresh bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Save the monitor's settings to a file",
	Long: `Read the status frame and write it to a CBOR file that "miractl restore"
can apply later, to this or another monitor.`,
	Args: cobra.NoArgs,
	RunE: runBackup,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Apply settings saved with backup",
	Long: `Write the restorable settings from a backup file to the monitor:
refresh mode, speed, contrast and both light levels.`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func init() {
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)

	backupCmd.Flags().StringVarP(&backupOutput, "output", "o", "", "Output file (required)")
	_ = backupCmd.MarkFlagRequired("output")

	restoreCmd.Flags().BoolVar(&restoreDryRun, "dry-run", false, "Print the commands without sending them")
	restoreCmd.Flags().BoolVar(&restoreRefresh, "refresh", false, "Full refresh after restoring")
}

// backupFile is the on-disk backup envelope. The snapshot is stored as
// an embedded CBOR item so the library codec owns its layout.
type backupFile struct {
	ID       string          `cbor:"id"`
	Created  time.Time       `cbor:"created"`
	Snapshot cbor.RawMessage `cbor:"snapshot"`
}

var cborNull = []byte{0xf6}

// backup is a decoded backup file
type backup struct {
	ID       string
	Created  time.Time
	Snapshot *mira.Snapshot
}

func newBackup(snap *mira.Snapshot) backup {
	return backup{
		ID:       uuid.NewString(),
		Created:  time.Now().UTC().Truncate(time.Second),
		Snapshot: snap,
	}
}

func writeBackup(w io.Writer, b backup) error {
	data, err := mira.MarshalSnapshot(b.Snapshot)
	if err != nil {
		return err
	}
	return cbor.NewEncoder(w).Encode(backupFile{ID: b.ID, Created: b.Created, Snapshot: data})
}

func readBackup(r io.Reader) (backup, error) {
	var f backupFile
	if err := cbor.NewDecoder(r).Decode(&f); err != nil {
		return backup{}, fmt.Errorf("decode backup: %w", err)
	}
	if len(f.Snapshot) == 0 || bytes.Equal(f.Snapshot, cborNull) {
		return backup{}, errors.New("decode backup: no snapshot")
	}
	if _, err := uuid.Parse(f.ID); err != nil {
		return backup{}, fmt.Errorf("decode backup: bad id: %w", err)
	}
	snap, err := mira.UnmarshalSnapshot(f.Snapshot)
	if err != nil {
		return backup{}, fmt.Errorf("decode backup: %w", err)
	}
	return backup{ID: f.ID, Created: f.Created, Snapshot: snap}, nil
}

func runBackup(cmd *cobra.Command, args []string) error {
	session, conn, _, err := openSession()
	if err != nil {
		return err
	}
	defer conn.Close()

	snap, err := session.ReadAll()
	if err != nil {
		return err
	}

	f, err := os.Create(backupOutput)
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	b := newBackup(snap)
	if err := writeBackup(f, b); err != nil {
		f.Close()
		return fmt.Errorf("write backup: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Backup %s written to %s\n", b.ID, backupOutput)
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	b, err := readBackup(f)
	f.Close()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Backup %s from %s\n", b.ID, b.Created.Local().Format(time.RFC1123))
	cmds := b.Snapshot.Commands()
	for _, err := range unrestorable(b.Snapshot) {
		fmt.Fprintf(out, "WARNING: %v, not restored\n", err)
	}

	if restoreDryRun {
		for _, c := range cmds {
			fmt.Fprintln(out, mira.FormatCommand(c))
		}
		return nil
	}

	session, conn, _, err := openSession()
	if err != nil {
		return err
	}
	defer conn.Close()

	return applySettings(out, session, cmds, restoreRefresh, false)
}

// unrestorable lists the restorable settings whose saved value is out of
// range and is therefore left out of Snapshot.Commands
func unrestorable(snap *mira.Snapshot) []error {
	var errs []error
	for _, s := range mira.Settings() {
		if !s.Restorable {
			continue
		}
		v, ok := s.Read(snap)
		if !ok {
			continue
		}
		if _, err := s.Command(v); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
