// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miractl/miractl/pkg/mira"
)

func TestPrintStatus(t *testing.T) {
	session, _ := newSimSession(t)

	var out bytes.Buffer
	require.NoError(t, printStatus(&out, session, false))
	assert.Contains(t, out.String(), "Speed:         7")
	assert.NotContains(t, out.String(), "Status frame:")
	assert.NotContains(t, out.String(), "WARNING")
}

func TestPrintStatus_Raw(t *testing.T) {
	session, _ := newSimSession(t)
	var labels []string
	session.Trace = func(label string, frame []byte) {
		labels = append(labels, label)
	}

	var out bytes.Buffer
	require.NoError(t, printStatus(&out, session, true))
	assert.Contains(t, out.String(), "Status frame:")

	// The caller's trace still sees both frames and is restored afterwards
	assert.Equal(t, []string{"tx", "rx"}, labels)
	_, err := session.ReadAll()
	require.NoError(t, err)
	assert.Len(t, labels, 4)
}

func TestPrintStatus_Warnings(t *testing.T) {
	status := mira.NewSimulator().Status()
	status[4] = 0
	sim, err := mira.NewSimulatorWithStatus(status)
	require.NoError(t, err)
	session := newSession(sim)

	var out bytes.Buffer
	require.NoError(t, printStatus(&out, session, false))
	assert.Contains(t, out.String(), "WARNING: Invalid speed=0")
}
