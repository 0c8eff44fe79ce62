// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/miractl/miractl/internal/config"
	"github.com/miractl/miractl/pkg/mira"
)

var profileRefresh bool

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Apply named groups of settings from the config file",
	Long: `Profiles are named groups of settings stored in the config file:

  profiles:
    reading:
      refresh-mode: 3
      contrast: 9
    night:
      cold-light: 0
      warm-light: 120

Setting names are the same as the flags of "miractl set".`,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the profiles in the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		listProfiles(cmd.OutOrStdout(), cfg)
		return nil
	},
}

var profileApplyCmd = &cobra.Command{
	Use:   "apply <name>",
	Short: "Write a profile's settings to the monitor",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileApply,
}

var profileSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Store the monitor's current settings as a profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileSave,
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileApplyCmd)
	profileCmd.AddCommand(profileSaveCmd)

	profileApplyCmd.Flags().BoolVar(&profileRefresh, "refresh", false, "Full refresh after applying")
}

func listProfiles(w io.Writer, cfg *config.Config) {
	names := cfg.ProfileNames()
	if len(names) == 0 {
		fmt.Fprintln(w, "No profiles defined")
		return
	}
	for _, name := range names {
		p := cfg.Profiles[name]
		var parts []string
		for _, s := range mira.Settings() {
			if v, ok := p[s.Name]; ok {
				parts = append(parts, fmt.Sprintf("%s=%d", s.Name, v))
			}
		}
		fmt.Fprintf(w, "%-16s %s\n", name, strings.Join(parts, " "))
	}
}

func lookupProfile(cfg *config.Config, name string) ([]mira.Command, error) {
	p, ok := cfg.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q (see \"miractl profile list\")", name)
	}
	return p.Commands()
}

func runProfileApply(cmd *cobra.Command, args []string) error {
	cmds, err := lookupProfile(cfg, args[0])
	if err != nil {
		return err
	}

	session, conn, _, err := openSession()
	if err != nil {
		return err
	}
	defer conn.Close()

	logger.Info("applying profile %s", args[0])
	return applySettings(cmd.OutOrStdout(), session, cmds, profileRefresh, false)
}

func runProfileSave(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	session, conn, _, err := openSession()
	if err != nil {
		return err
	}
	defer conn.Close()

	snap, err := session.ReadAll()
	if err != nil {
		return err
	}

	saveProfile(cfg, args[0], snap)
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved profile %q to %s\n", args[0], path)
	return nil
}

func saveProfile(cfg *config.Config, name string, snap *mira.Snapshot) {
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]config.Profile{}
	}
	cfg.Profiles[name] = config.ProfileFromSnapshot(snap)
}
