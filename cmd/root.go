// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/miractl/miractl/internal/config"
	"github.com/miractl/miractl/internal/logging"
)

var (
	// HID connection flags
	hidPath string

	// Serial bridge flags
	portName string
	baudRate int

	// WebSocket bridge flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Simulated device
	simulate bool

	configPath string
	verbose    bool
	debug      bool
	logFile    string
)

var (
	cfg    = config.Default()
	logger = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "miractl",
	Short: "Control a Boox Mira e-ink monitor",
	Long: `miractl - A CLI tool for reading and changing the settings of a Boox Mira
e-ink monitor over its USB HID control interface.

Connection modes:
  HID (default): first device with VID 0x0416 / PID 0x5020, or --hid-path
  Serial:        --port /dev/ttyUSB0 [--baud 115200]   (HID bridge)
  WebSocket:     --url ws://host/path [--username user] (HID bridge)
  Simulator:     --simulate

For WebSocket authentication, the password is read from the MIRA_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.

Defaults for the connection flags and named settings profiles are read from
$XDG_CONFIG_HOME/miractl/config.yaml, or the file given with --config.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Close()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.StringVar(&hidPath, "hid-path", "", "HID device path (default: first matching device)")

	pf.StringVarP(&portName, "port", "p", "", "Serial port of an HID bridge")
	pf.IntVarP(&baudRate, "baud", "b", config.DefaultBaud, "Baud rate (serial only)")

	pf.StringVarP(&wsURL, "url", "u", "", "WebSocket URL of an HID bridge (ws:// or wss://)")
	pf.StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	pf.BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	pf.BoolVar(&simulate, "simulate", false, "Use an in-memory simulated monitor")

	pf.StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/miractl/config.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	pf.BoolVar(&debug, "debug", false, "Debug logging, including every frame")
	pf.StringVar(&logFile, "log-file", "", "Append log output to file")
}

// setup loads the config file, fills connection flags the user did not
// set, and opens the logger.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded
	applyConfigDefaults(cmd, cfg)

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	level = logging.LevelFromFlags(level, verbose, debug)

	file := logFile
	if file == "" {
		file = cfg.Logging.File
	}
	l, err := logging.NewLogger(level, file)
	if err != nil {
		return err
	}
	logger = l
	logger.Debug("config loaded, log level %s", level)
	return nil
}

func applyConfigDefaults(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	c := cfg.Connection

	if !flags.Changed("hid-path") && c.HIDPath != "" {
		hidPath = c.HIDPath
	}
	if !flags.Changed("port") && c.Port != "" {
		portName = c.Port
	}
	if !flags.Changed("baud") && c.Baud != 0 {
		baudRate = c.Baud
	}
	if !flags.Changed("url") && c.URL != "" {
		wsURL = c.URL
	}
	if !flags.Changed("username") && c.Username != "" {
		wsUsername = c.Username
	}
	if !flags.Changed("no-ssl-verify") && c.NoSSLVerify {
		wsNoSSLVerify = true
	}
}

func applyDelay() time.Duration {
	ms := config.DefaultDelayMs
	if cfg.Connection.ApplyDelayMs != nil {
		ms = *cfg.Connection.ApplyDelayMs
	}
	return time.Duration(ms) * time.Millisecond
}

// exitError carries a process exit code through cobra.
//
// Exit codes:
//
//	1 - command failed
//	2 - connection error
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func connectionFailed(err error) error {
	return &exitError{code: 2, err: fmt.Errorf("connection error: %w", err)}
}

// ExitCode maps an error returned by Execute to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
