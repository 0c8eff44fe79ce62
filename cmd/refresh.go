// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/miractl/miractl/pkg/mira"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Clear ghosting with a full screen refresh",
	Args:  cobra.NoArgs,
	RunE:  runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	session, conn, _, err := openSession()
	if err != nil {
		return err
	}
	defer conn.Close()

	c := mira.NewFullRefresh()
	err = session.Submit(c)
	logger.LogCommand(c, err)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Full refresh sent")
	return nil
}
