// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"testing"

	"github.com/miractl/miractl/pkg/mira"
)

// newSimSession returns a session over a fresh simulator with no pause
// between writes
func newSimSession(t *testing.T) (*mira.Session, *mira.Simulator) {
	t.Helper()
	sim := mira.NewSimulator()
	s := newSession(sim)
	s.ApplyDelay = 0
	return s, sim
}

// failingConn fails every read and write with err
type failingConn struct {
	err error
}

func (f *failingConn) Read(p []byte) (int, error)  { return 0, f.err }
func (f *failingConn) Write(p []byte) (int, error) { return 0, f.err }
func (f *failingConn) Close() error                { return nil }
