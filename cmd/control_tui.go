// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/miractl/miractl/pkg/mira"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

const maxLogEntries = 100

// Focus states
const (
	focusSettingList = iota
	focusValueInput
)

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// settingItem is one row of the setting list
type settingItem struct {
	setting mira.Setting
	value   int
	known   bool // the device reports this setting
	pending *int // last value written, for settings the device does not report
}

// Implement list.Item interface
func (i settingItem) Title() string { return i.setting.Name }
func (i settingItem) Description() string {
	switch {
	case i.known:
		return fmt.Sprintf("%d  (%s)", i.value, i.setting.Range())
	case i.pending != nil:
		return fmt.Sprintf("%d sent  (%s)", *i.pending, i.setting.Range())
	default:
		return fmt.Sprintf("write only  (%s)", i.setting.Range())
	}
}
func (i settingItem) FilterValue() string { return i.setting.Name }

type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// controlModel is the Bubble Tea model for the control TUI
type controlModel struct {
	connMgr  *connectionManager
	connInfo string

	items       []settingItem
	settingList list.Model
	valueInput  textinput.Model

	snapshot  *mira.Snapshot
	anomalies []mira.ValidationError
	stats     mira.Statistics
	lastRead  time.Time

	eventLog []eventLogEntry

	// UI state
	focusedField   int
	width          int
	height         int
	quitting       bool
	connectionLost bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type controlTickMsg time.Time

type snapshotMsg struct {
	snap *mira.Snapshot
	err  error
}

type appliedMsg struct {
	cmds []mira.Command
	err  error
}

type connectionLostMsg struct{}

type reconnectedMsg struct {
	connInfo string
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialControlModel(connMgr *connectionManager, connInfo string) controlModel {
	ti := textinput.New()
	ti.Placeholder = "value"
	ti.CharLimit = 3
	ti.Width = 10

	settings := mira.Settings()
	items := make([]settingItem, len(settings))
	for i, s := range settings {
		items[i] = settingItem{setting: s}
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	settingList := list.New(nil, delegate, 30, 14)
	settingList.Title = "Settings"
	settingList.SetShowStatusBar(false)
	settingList.SetShowHelp(false)
	settingList.SetFilteringEnabled(false)

	m := controlModel{
		connMgr:      connMgr,
		connInfo:     connInfo,
		items:        items,
		settingList:  settingList,
		valueInput:   ti,
		eventLog:     make([]eventLogEntry, 0),
		focusedField: focusSettingList,
		width:        80,
		height:       24,
	}
	m.updateSettingList()
	return m
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m controlModel) Init() tea.Cmd {
	return tea.Batch(controlTickCmd(), m.readCmd())
}

func controlTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return controlTickMsg(t)
	})
}

// readCmd reads the status outside the update loop
func (m controlModel) readCmd() tea.Cmd {
	cm := m.connMgr
	return func() tea.Msg {
		snap, err := cm.readAll()
		return snapshotMsg{snap: snap, err: err}
	}
}

// applyCmd writes commands outside the update loop
func (m controlModel) applyCmd(cmds ...mira.Command) tea.Cmd {
	cm := m.connMgr
	return func() tea.Msg {
		return appliedMsg{cmds: cmds, err: cm.apply(cmds)}
	}
}

func (m controlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateListSize()

	case controlTickMsg:
		m.stats = m.connMgr.statistics()
		m.stats.CalculateRates()
		return m, controlTickCmd()

	case snapshotMsg:
		m.handleSnapshot(msg)

	case appliedMsg:
		return m.handleApplied(msg)

	case connectionLostMsg:
		m.connectionLost = true
		m.addLogEntry("Connection lost - reconnecting...", true)

	case reconnectedMsg:
		m.connectionLost = false
		m.connInfo = msg.connInfo
		m.addLogEntry("Reconnected: "+msg.connInfo, false)
		return m, m.readCmd()
	}

	return m, nil
}

func (m controlModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.focusedField == focusValueInput {
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "esc", "tab", "shift+tab":
			m.blurInput()
			return m, nil
		case "enter":
			return m.submitInput()
		}
		var cmd tea.Cmd
		m.valueInput, cmd = m.valueInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "tab", "shift+tab", "enter":
		m.focusInput()
		return m, textinput.Blink

	case "+", "=":
		return m.stepSelected(1)

	case "-", "_":
		return m.stepSelected(-1)

	case "r":
		if m.connectionLost {
			m.addLogEntry("Cannot send command: connection lost", true)
			return m, nil
		}
		return m, m.applyCmd(mira.NewFullRefresh())

	case "u":
		return m, m.readCmd()
	}

	var cmd tea.Cmd
	m.settingList, cmd = m.settingList.Update(msg)
	return m, cmd
}

func (m controlModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	focusedBoxStyle := boxStyle.
		BorderForeground(lipgloss.Color("12"))

	// Header
	s.WriteString(titleStyle.Render("MIRACTL CONTROL"))
	s.WriteString(" ")
	connStatus := m.connInfo
	if m.connectionLost {
		connStatus = warningStyle.Render("RECONNECTING...")
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s | q=quit enter=edit +/-=step r=refresh", connStatus)))
	s.WriteString("\n\n")

	// Layout: left panel (settings) | right panel (status + input)
	leftWidth := 32
	rightWidth := m.width - leftWidth - 6
	if rightWidth < 20 {
		rightWidth = 20
	}

	listStyle := boxStyle.Width(leftWidth)
	if m.focusedField == focusSettingList {
		listStyle = focusedBoxStyle.Width(leftWidth)
	}
	settingPanel := listStyle.Render(m.settingList.View())

	rightStyle := boxStyle.Width(rightWidth)
	if m.focusedField == focusValueInput {
		rightStyle = focusedBoxStyle.Width(rightWidth)
	}
	statusPanel := rightStyle.Render(m.renderStatusPanel(statsLabelStyle, statsValueStyle, headerStyle, errorStyle))

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, settingPanel, " ", statusPanel))
	s.WriteString("\n\n")

	s.WriteString(m.renderStatisticsBar(statsLabelStyle, statsValueStyle, errorStyle, boxStyle))
	s.WriteString("\n\n")

	s.WriteString(m.renderEventLog(statsLabelStyle, warningStyle, errorStyle, headerStyle, boxStyle))

	return s.String()
}

//////////////////////////////////////////////////////////////
// View Helpers
//////////////////////////////////////////////////////////////

func (m controlModel) renderStatusPanel(statsLabelStyle, statsValueStyle, headerStyle, errorStyle lipgloss.Style) string {
	var s strings.Builder

	s.WriteString(statsLabelStyle.Render("STATUS"))
	if !m.lastRead.IsZero() {
		s.WriteString(headerStyle.Render("  read " + m.lastRead.Format("15:04:05")))
	}
	s.WriteString("\n")

	if m.snapshot == nil {
		s.WriteString(headerStyle.Render("Waiting for status..."))
	} else {
		for _, line := range strings.Split(strings.TrimRight(mira.FormatSnapshot(m.snapshot), "\n"), "\n") {
			label, value, ok := strings.Cut(line, ":")
			if !ok {
				s.WriteString(line + "\n")
				continue
			}
			s.WriteString(label + ":" + statsValueStyle.Render(value) + "\n")
		}
		for _, a := range m.anomalies {
			s.WriteString(errorStyle.Render("! "+a.Message) + "\n")
		}
	}

	s.WriteString("\n")
	if item, ok := m.selectedItem(); ok {
		s.WriteString(fmt.Sprintf("%s %s\n", statsLabelStyle.Render("Selected:"), item.setting.Description))
		s.WriteString(statsLabelStyle.Render("New value: "))
		if m.focusedField == focusValueInput {
			s.WriteString(m.valueInput.View())
		} else {
			s.WriteString(headerStyle.Render("[enter to edit]"))
		}
	}

	return s.String()
}

func (m controlModel) renderStatisticsBar(statsLabelStyle, statsValueStyle, errorStyle, boxStyle lipgloss.Style) string {
	var validPercent, errorPercent float64
	total := m.stats.TotalFrames()
	if m.stats.StatusReads > 0 {
		validPercent = float64(m.stats.ValidStatus) * 100.0 / float64(m.stats.StatusReads)
	}
	if total > 0 {
		errorPercent = float64(m.stats.TotalErrors()) * 100.0 / float64(total)
	}

	errText := statsValueStyle.Render("0.0%")
	if errorPercent > 0 {
		errText = errorStyle.Render(fmt.Sprintf("%.1f%%", errorPercent))
	}

	content := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s  %s %s",
		statsLabelStyle.Render("Sent:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.CommandsSent)),
		statsLabelStyle.Render("Reads:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.StatusReads)),
		statsLabelStyle.Render("Valid:"), statsValueStyle.Render(fmt.Sprintf("%.1f%%", validPercent)),
		statsLabelStyle.Render("Errors:"), errText,
		statsLabelStyle.Render("Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f fr/s", m.stats.FrameRate)),
	)

	return boxStyle.Width(m.width - 4).Render(content)
}

func (m controlModel) renderEventLog(statsLabelStyle, warningStyle, errorStyle, headerStyle, boxStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(statsLabelStyle.Render("EVENTS"))
	s.WriteString("\n")

	logHeight := 6
	startIdx := len(m.eventLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.eventLog) == 0 {
		s.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for _, entry := range m.eventLog[startIdx:] {
			icon := "i"
			style := warningStyle
			if entry.isError {
				icon = "x"
				style = errorStyle
			}
			s.WriteString(fmt.Sprintf("%s %s %s\n",
				headerStyle.Render(entry.timestamp.Format("15:04:05.000")),
				style.Render(icon),
				entry.message))
		}
	}

	return boxStyle.Width(m.width - 4).Render(s.String())
}

//////////////////////////////////////////////////////////////
// Data Processing
//////////////////////////////////////////////////////////////

func (m *controlModel) handleSnapshot(msg snapshotMsg) {
	if msg.err != nil {
		m.addLogEntry(fmt.Sprintf("READ ERROR: %v", msg.err), true)
		return
	}

	prev := m.snapshot
	m.snapshot = msg.snap
	m.lastRead = time.Now()

	anomalies := mira.ValidateSnapshot(msg.snap)
	if len(anomalies) > 0 && len(m.anomalies) == 0 {
		for _, a := range anomalies {
			m.addLogEntry(a.Message, true)
		}
	}
	m.anomalies = anomalies

	if prev == nil {
		m.addLogEntry("Status received, firmware "+mira.CleanVersionText(msg.snap.FullVersion), false)
	} else {
		for _, line := range diffSnapshots(prev, msg.snap) {
			m.addLogEntry("Changed "+line, false)
		}
	}

	for i := range m.items {
		m.items[i].value, m.items[i].known = m.items[i].setting.Read(msg.snap)
	}
	m.updateSettingList()
}

func (m controlModel) handleApplied(msg appliedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.addLogEntry(fmt.Sprintf("Failed to send command: %v", msg.err), true)
		return m, nil
	}

	for _, c := range msg.cmds {
		m.addLogEntry("Sent "+mira.FormatCommand(c), false)
		if s, ok := mira.SettingForTopic(c.Topic); ok {
			for i := range m.items {
				if m.items[i].setting.Name == s.Name && !m.items[i].known {
					v := 0
					if c.Value != nil {
						v = *c.Value
					}
					m.items[i].pending = &v
				}
			}
		}
	}
	m.updateSettingList()

	// Read back so the status panel shows what the device accepted
	return m, m.readCmd()
}

//////////////////////////////////////////////////////////////
// Commands
//////////////////////////////////////////////////////////////

func (m controlModel) submitInput() (tea.Model, tea.Cmd) {
	item, ok := m.selectedItem()
	if !ok {
		return m, nil
	}

	text := strings.TrimSpace(m.valueInput.Value())
	v, err := strconv.Atoi(text)
	if err != nil {
		m.addLogEntry(fmt.Sprintf("Invalid value: %q", text), true)
		return m, nil
	}

	return m.sendSetting(item.setting, v)
}

func (m controlModel) stepSelected(delta int) (tea.Model, tea.Cmd) {
	item, ok := m.selectedItem()
	if !ok {
		return m, nil
	}
	current := item.value
	if !item.known {
		if item.pending == nil {
			m.addLogEntry(item.setting.Name+" is write only; press enter to set a value", true)
			return m, nil
		}
		current = *item.pending
	}

	v := current + delta
	if v < item.setting.Min || v > item.setting.Max {
		return m, nil
	}
	return m.sendSetting(item.setting, v)
}

func (m controlModel) sendSetting(s mira.Setting, v int) (tea.Model, tea.Cmd) {
	if m.connectionLost {
		m.addLogEntry("Cannot send command: connection lost", true)
		return m, nil
	}

	c, err := s.Command(v)
	if err != nil {
		m.addLogEntry(err.Error(), true)
		return m, nil
	}

	m.blurInput()
	return m, m.applyCmd(c)
}

//////////////////////////////////////////////////////////////
// Helpers
//////////////////////////////////////////////////////////////

func (m *controlModel) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})

	if len(m.eventLog) > maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-maxLogEntries:]
	}
}

func (m controlModel) selectedItem() (settingItem, bool) {
	idx := m.settingList.Index()
	if idx < 0 || idx >= len(m.items) {
		return settingItem{}, false
	}
	return m.items[idx], true
}

func (m *controlModel) focusInput() {
	item, ok := m.selectedItem()
	if !ok {
		return
	}
	m.focusedField = focusValueInput
	m.valueInput.SetValue("")
	if item.known {
		m.valueInput.SetValue(strconv.Itoa(item.value))
	}
	m.valueInput.CursorEnd()
	m.valueInput.Focus()
}

func (m *controlModel) blurInput() {
	m.focusedField = focusSettingList
	m.valueInput.Blur()
}

func (m *controlModel) updateSettingList() {
	items := make([]list.Item, len(m.items))
	for i, it := range m.items {
		items[i] = it
	}
	m.settingList.SetItems(items)
}

func (m *controlModel) updateListSize() {
	listHeight := m.height - 16
	if listHeight < 6 {
		listHeight = 6
	}
	m.settingList.SetSize(30, listHeight)
}
