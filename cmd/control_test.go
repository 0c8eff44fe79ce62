// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miractl/miractl/pkg/mira"
)

func newTestControlModel(t *testing.T) (controlModel, *mira.Simulator) {
	t.Helper()
	sim := mira.NewSimulator()
	cm := newConnectionManager(sim, "Simulator", nil)
	cm.session.ApplyDelay = 0
	t.Cleanup(cm.close)
	return initialControlModel(cm, "Simulator"), sim
}

// update feeds msg to the model and returns the concrete result
func update(t *testing.T, m controlModel, msg tea.Msg) (controlModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	cm, ok := next.(controlModel)
	require.True(t, ok)
	return cm, cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func lastLogMessage(m controlModel) string {
	if len(m.eventLog) == 0 {
		return ""
	}
	return m.eventLog[len(m.eventLog)-1].message
}

func TestConnectionManager_ApplyAndRead(t *testing.T) {
	sim := mira.NewSimulator()
	cm := newConnectionManager(sim, "Simulator", nil)
	cm.session.ApplyDelay = 0

	require.NoError(t, cm.apply([]mira.Command{mira.NewContrast(3)}))
	snap, err := cm.readAll()
	require.NoError(t, err)
	assert.EqualValues(t, 3, snap.Contrast)

	stats := cm.statistics()
	assert.EqualValues(t, 2, stats.CommandsSent)
	assert.EqualValues(t, 1, stats.ValidStatus)

	cm.close()
	assert.ErrorIs(t, cm.apply([]mira.Command{mira.NewContrast(4)}), errConnectionLost)
	_, err = cm.readAll()
	assert.ErrorIs(t, err, errConnectionLost)
}

func TestConnectionManager_StatsSurviveReconnect(t *testing.T) {
	cm := newConnectionManager(mira.NewSimulator(), "first", nil)
	_, err := cm.readAll()
	require.NoError(t, err)

	cm.setConn(mira.NewSimulator(), "second")
	_, err = cm.readAll()
	require.NoError(t, err)

	assert.EqualValues(t, 2, cm.statistics().StatusReads)
	assert.Equal(t, "second", cm.connInfo)
}

func TestControlModel_SnapshotUpdatesItems(t *testing.T) {
	m, _ := newTestControlModel(t)

	msg := m.readCmd()()
	m, _ = update(t, m, msg)

	require.NotNil(t, m.snapshot)
	assert.True(t, m.items[0].known)
	assert.Equal(t, 2, m.items[0].value)
	assert.Contains(t, lastLogMessage(m), "Status received")

	// Write-only settings stay unknown
	for _, it := range m.items {
		if it.setting.Name == "refresh-time" {
			assert.False(t, it.known)
		}
	}
}

func TestControlModel_StepSendsSetting(t *testing.T) {
	m, sim := newTestControlModel(t)
	m, _ = update(t, m, m.readCmd()())

	m, cmd := update(t, m, keyRunes("+"))
	require.NotNil(t, cmd)

	applied, ok := cmd().(appliedMsg)
	require.True(t, ok)
	require.NoError(t, applied.err)
	assert.EqualValues(t, 3, sim.Status()[1])

	m, cmd = update(t, m, applied)
	assert.Contains(t, lastLogMessage(m), "Sent")
	require.NotNil(t, cmd)

	m, _ = update(t, m, cmd())
	assert.Equal(t, 3, m.items[0].value)
	assert.Contains(t, lastLogMessage(m), "refresh-mode: 2 -> 3")

	// Already at the maximum
	_, cmd = update(t, m, keyRunes("+"))
	assert.Nil(t, cmd)
}

func TestControlModel_WriteOnlyStepNeedsValue(t *testing.T) {
	m, _ := newTestControlModel(t)
	m, _ = update(t, m, m.readCmd()())

	idx := -1
	for i, it := range m.items {
		if it.setting.Name == "refresh-time" {
			idx = i
		}
	}
	require.GreaterOrEqual(t, idx, 0)
	m.settingList.Select(idx)

	m, cmd := update(t, m, keyRunes("+"))
	assert.Nil(t, cmd)
	assert.Contains(t, lastLogMessage(m), "write only")

	// After a value is sent the item remembers it
	c, err := m.items[idx].setting.Command(20)
	require.NoError(t, err)
	m, _ = update(t, m, appliedMsg{cmds: []mira.Command{c}})
	require.NotNil(t, m.items[idx].pending)
	assert.Equal(t, 20, *m.items[idx].pending)
	assert.Contains(t, m.items[idx].Description(), "20 sent")
}

func TestControlModel_EditValue(t *testing.T) {
	m, sim := newTestControlModel(t)
	m, _ = update(t, m, m.readCmd()())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, focusValueInput, m.focusedField)
	assert.Equal(t, "2", m.valueInput.Value())

	m.valueInput.SetValue("1")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, focusSettingList, m.focusedField)
	require.NotNil(t, cmd)

	applied := cmd().(appliedMsg)
	require.NoError(t, applied.err)
	assert.EqualValues(t, 1, sim.Status()[1])
}

func TestControlModel_EditRejectsBadInput(t *testing.T) {
	m, _ := newTestControlModel(t)
	m, _ = update(t, m, m.readCmd()())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m.valueInput.SetValue("abc")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, lastLogMessage(m), "Invalid value")

	m.valueInput.SetValue("9")
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, lastLogMessage(m), "refresh-mode must be 1-3")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, focusSettingList, m.focusedField)
}

func TestControlModel_ConnectionLostBlocksCommands(t *testing.T) {
	m, _ := newTestControlModel(t)
	m, _ = update(t, m, connectionLostMsg{})
	assert.True(t, m.connectionLost)
	assert.Contains(t, m.View(), "RECONNECTING")

	m, cmd := update(t, m, keyRunes("r"))
	assert.Nil(t, cmd)
	assert.Contains(t, lastLogMessage(m), "connection lost")

	m, cmd = update(t, m, reconnectedMsg{connInfo: "Simulator"})
	assert.False(t, m.connectionLost)
	assert.NotNil(t, cmd)
}

func TestControlModel_FullRefresh(t *testing.T) {
	m, sim := newTestControlModel(t)

	_, cmd := update(t, m, keyRunes("r"))
	require.NotNil(t, cmd)
	applied := cmd().(appliedMsg)
	require.NoError(t, applied.err)
	assert.Equal(t, 1, sim.FullRefreshes())
}

func TestControlModel_ViewAndQuit(t *testing.T) {
	m, _ := newTestControlModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	view := m.View()
	assert.Contains(t, view, "MIRACTL CONTROL")
	assert.Contains(t, view, "Waiting for status")

	m, _ = update(t, m, m.readCmd()())
	assert.Contains(t, m.View(), "Firmware:")

	m, cmd := update(t, m, keyRunes("q"))
	assert.True(t, m.quitting)
	assert.NotNil(t, cmd)
	assert.Equal(t, "Shutting down...\n", m.View())
}

func TestControlModel_ReadErrorLogged(t *testing.T) {
	m, _ := newTestControlModel(t)
	m, _ = update(t, m, snapshotMsg{err: mira.ErrNoResponse})
	assert.Nil(t, m.snapshot)
	assert.True(t, m.eventLog[len(m.eventLog)-1].isError)
}
