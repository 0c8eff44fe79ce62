// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/miractl/miractl/internal/syncutil"
	"github.com/miractl/miractl/pkg/mira"
)

var controlInterval time.Duration

var controlCmd = &cobra.Command{
	Use:   "control",
	Short: "Interactive TUI for adjusting monitor settings",
	Long: `Control a Mira monitor via an interactive terminal UI.

Features:
  - Live status panel, refreshed by periodic read-all
  - Setting list with inline value editing
  - Full refresh on a key press
  - Statistics tracking
  - Event logging
  - Automatic reconnection on connection loss

Keys:
  up/down  select a setting       enter  edit the selected value
  +/-      step the value by one  r      full refresh
  u        read status now        tab    switch list / value input
  q        quit

Supports HID, serial, WebSocket and simulated connections.`,
	Args: cobra.NoArgs,
	RunE: runControl,
}

func init() {
	rootCmd.AddCommand(controlCmd)
	controlCmd.Flags().DurationVar(&controlInterval, "interval", 0, "Status poll interval (default from config, 1s)")
}

// errConnectionLost is returned for commands issued while reconnecting
var errConnectionLost = errors.New("connection lost")

// connectionManager owns the connection and session shared by the TUI
// and the poller, and handles reconnection
type connectionManager struct {
	mu       syncutil.RWMutex
	conn     Connection
	session  *mira.Session
	stats    *mira.Statistics
	connInfo string

	open func() (Connection, string, error)
	send func(tea.Msg)
	done chan struct{}
}

func newConnectionManager(conn Connection, connInfo string, open func() (Connection, string, error)) *connectionManager {
	cm := &connectionManager{
		stats: mira.NewStatistics(),
		open:  open,
		send:  func(tea.Msg) {},
		done:  make(chan struct{}),
	}
	cm.setConn(conn, connInfo)
	return cm
}

func (cm *connectionManager) setConn(conn Connection, connInfo string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.conn = conn
	cm.connInfo = connInfo
	cm.session = nil
	if conn != nil {
		cm.session = newSession(conn)
		cm.session.Stats = cm.stats
	}
}

// apply submits commands. The write lock serializes exchanges with the
// poller.
func (cm *connectionManager) apply(cmds []mira.Command) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.session == nil {
		return errConnectionLost
	}
	err := cm.session.Apply(cmds)
	for _, c := range cmds {
		logger.LogCommand(c, err)
	}
	return err
}

func (cm *connectionManager) readAll() (*mira.Snapshot, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.session == nil {
		return nil, errConnectionLost
	}
	return cm.session.ReadAll()
}

// statistics returns a copy of the shared counters
func (cm *connectionManager) statistics() mira.Statistics {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return *cm.stats
}

func (cm *connectionManager) close() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.conn != nil {
		cm.conn.Close()
		cm.conn = nil
		cm.session = nil
	}
}

// isConnectionLoss reports whether a read error means the transport is
// gone, as opposed to a bad frame or a slow device
func isConnectionLoss(err error) bool {
	switch {
	case err == nil,
		errors.Is(err, mira.ErrMalformedFrame),
		errors.Is(err, mira.ErrMalformedVersion),
		errors.Is(err, ErrReadTimeout):
		return false
	}
	return true
}

func runControl(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return connectionFailed(err)
	}

	interval := controlInterval
	if interval <= 0 {
		interval = time.Duration(cfg.Monitor.IntervalMs) * time.Millisecond
	}

	cm := newConnectionManager(conn, connInfo, OpenConnection)
	m := initialControlModel(cm, connInfo)

	// The TUI owns the terminal; diagnostics still reach --log-file
	logger.SetConsole(io.Discard)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	cm.send = p.Send

	go cm.pollLoop(interval)

	_, err = p.Run()
	close(cm.done)
	cm.close()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// pollLoop reads the status every interval and forwards it to the TUI.
// On connection loss it reconnects before polling again.
func (cm *connectionManager) pollLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-cm.done:
			return
		case <-ticker.C:
		}

		snap, err := cm.readAll()
		cm.send(snapshotMsg{snap: snap, err: err})

		if isConnectionLoss(err) {
			cm.send(connectionLostMsg{})
			if !cm.reconnect() {
				return // Shutdown requested during reconnect
			}
		}
	}
}

// reconnect attempts to reconnect with exponential backoff.
// Returns false if shutdown was requested during reconnection.
func (cm *connectionManager) reconnect() bool {
	cm.close()

	backoff := 1 * time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-cm.done:
			return false
		case <-time.After(backoff):
		}

		conn, connInfo, err := cm.open()
		if err == nil {
			cm.setConn(conn, connInfo)
			logger.Info("reconnected: %s", connInfo)
			cm.send(reconnectedMsg{connInfo: connInfo})
			return true
		}
		logger.Verbose("reconnect failed: %v", err)

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
