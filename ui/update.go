package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Message types for the application

// DataUpdateMsg carries a fresh report to the UI
type DataUpdateMsg struct {
	Data Data
}

// ErrorMsg carries error information
type ErrorMsg struct {
	Error error
}

// Init returns initial commands for the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Resize(msg.Width, msg.Height)
		return m, nil

	case DataUpdateMsg:
		m.SetData(msg.Data)
		return m, nil

	case ErrorMsg:
		m.loading = false
		m.err = msg.Error
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextTab):
		m.NextTab()
		return m, nil

	case key.Matches(msg, m.keys.PrevTab):
		m.PrevTab()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.reload == nil || m.loading {
			return m, nil
		}
		m.loading = true
		return m, reloadCmd(m.reload)
	}

	if len(m.tables) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.tables[m.active], cmd = m.tables[m.active].Update(msg)
	return m, cmd
}

// View renders the tab bar, the active table and the status bar
func (m Model) View() string {
	if len(m.tabs) == 0 {
		return m.styles.Muted.Render("No report tables.") + "\n"
	}

	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")
	b.WriteString(m.tables[m.active].View())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderTabs() string {
	tabs := make([]string, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.active {
			tabs[i] = m.styles.TabActive.Render(tab.Title)
		} else {
			tabs[i] = m.styles.TabInactive.Render(tab.Title)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderStatus() string {
	parts := []string{
		"Peak concurrency: " + m.styles.StatusValue.Render(fmt.Sprint(m.summary.PeakConcurrency)),
		"Records: " + m.styles.StatusValue.Render(fmt.Sprint(m.summary.Records)),
		fmt.Sprintf("Rows: %d", len(m.tabs[m.active].Table.Rows)),
	}
	if m.summary.Source != "" {
		parts = append(parts, m.summary.Source)
	}
	if m.loading {
		parts = append(parts, "reloading...")
	}

	lines := []string{strings.Join(parts, " │ ")}
	if m.err != nil {
		lines = append(lines, m.styles.Error.Render("reload failed: "+m.err.Error()))
	}
	lines = append(lines, m.help.View(m.keys))

	return m.styles.StatusBar.Render(strings.Join(lines, "\n"))
}
