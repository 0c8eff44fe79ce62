// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/miractl/miractl/pkg/mira"
)

var (
	setValues  = map[string]*int{}
	setRefresh bool
	setShow    bool
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Change one or more monitor settings",
	Long: `Write the given settings to the monitor.

Only the flags given on the command line are sent, in the order listed
below, with a short pause between writes. Values outside a setting's range
are rejected before anything is sent.

Examples:
  miractl set --speed 7 --contrast 9
  miractl set --cold-light 0 --warm-light 120 --refresh --show`,
	Args: cobra.NoArgs,
	RunE: runSet,
}

func init() {
	rootCmd.AddCommand(setCmd)

	registerSettingFlags(setCmd.Flags(), setValues)
	setCmd.Flags().BoolVar(&setRefresh, "refresh", false, "Full refresh after applying")
	setCmd.Flags().BoolVar(&setShow, "show", false, "Print the status after applying")
}

// registerSettingFlags adds one int flag per setting, named after it
func registerSettingFlags(flags *pflag.FlagSet, values map[string]*int) {
	for _, s := range mira.Settings() {
		v := new(int)
		values[s.Name] = v
		flags.IntVar(v, s.Name, 0, fmt.Sprintf("%s (%s)", s.Description, s.Range()))
	}
}

// changedSettings returns the commands for every setting flag that was
// given, in setting table order
func changedSettings(flags *pflag.FlagSet, values map[string]*int) ([]mira.Command, error) {
	var cmds []mira.Command
	var errs []string
	for _, s := range mira.Settings() {
		if !flags.Changed(s.Name) {
			continue
		}
		c, err := s.Command(*values[s.Name])
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		cmds = append(cmds, c)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", mira.ErrInvalidArgument, strings.Join(errs, "; "))
	}
	return cmds, nil
}

func runSet(cmd *cobra.Command, args []string) error {
	cmds, err := changedSettings(cmd.Flags(), setValues)
	if err != nil {
		return err
	}
	if len(cmds) == 0 && !setRefresh {
		return errors.New("nothing to do: give at least one setting flag or --refresh")
	}

	session, conn, _, err := openSession()
	if err != nil {
		return err
	}
	defer conn.Close()

	return applySettings(cmd.OutOrStdout(), session, cmds, setRefresh, setShow)
}

// applySettings sends cmds, optionally followed by a full refresh and a
// status printout
func applySettings(w io.Writer, session *mira.Session, cmds []mira.Command, refresh, show bool) error {
	if refresh {
		cmds = append(cmds, mira.NewFullRefresh())
	}

	if err := session.Apply(cmds); err != nil {
		logger.Error("%v", err)
		return err
	}
	for _, c := range cmds {
		logger.LogCommand(c, nil)
		fmt.Fprintln(w, mira.FormatCommand(c))
	}

	if show {
		fmt.Fprintln(w)
		return printStatus(w, session, false)
	}
	return nil
}
