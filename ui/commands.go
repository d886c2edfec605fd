package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// reloadCmd re-runs the report off the UI goroutine
func reloadCmd(reload ReloadFunc) tea.Cmd {
	return func() tea.Msg {
		data, err := reload()
		if err != nil {
			return ErrorMsg{Error: err}
		}
		return DataUpdateMsg{Data: data}
	}
}
