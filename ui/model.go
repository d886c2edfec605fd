package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/penwyp/UsagePivot/models"
)

// maxColumnWidth caps a table column so wide feature names do not push the
// remaining columns off screen
const maxColumnWidth = 40

// Tab is one report table shown in the viewer
type Tab struct {
	Title string
	Table models.Table
}

// Summary is shown in the status bar
type Summary struct {
	PeakConcurrency int
	Records         int
	Source          string
}

// Data is everything the viewer displays
type Data struct {
	Tabs    []Tab
	Summary Summary
}

// ReloadFunc re-runs the report and returns fresh data
type ReloadFunc func() (Data, error)

// Model represents the viewer state
type Model struct {
	// Data
	tabs    []Tab
	tables  []table.Model
	summary Summary
	reload  ReloadFunc

	// UI State
	active     int
	width      int
	height     int
	loading    bool
	err        error
	lastUpdate time.Time

	// Utilities
	keys   KeyMap
	styles Styles
	help   help.Model
	config Config
}

// NewModel creates a viewer model over data. reload may be nil.
func NewModel(cfg Config, data Data, reload ReloadFunc) Model {
	styles := NewStyles(ThemeByName(cfg.Theme))
	if cfg.NoColor {
		styles = PlainStyles()
	}

	m := Model{
		config: cfg,
		reload: reload,
		keys:   DefaultKeyMap(),
		styles: styles,
		help:   help.New(),
	}
	m.SetData(data)
	return m
}

// SetData replaces the tables, keeping the active tab when it still exists
func (m *Model) SetData(data Data) {
	m.tabs = data.Tabs
	m.summary = data.Summary
	m.tables = make([]table.Model, len(data.Tabs))
	for i, tab := range data.Tabs {
		m.tables[i] = m.newTable(tab.Table, i == m.active)
	}
	if m.active >= len(m.tabs) {
		m.active = 0
	}
	m.loading = false
	m.err = nil
	m.lastUpdate = time.Now()
}

func (m *Model) newTable(t models.Table, focused bool) table.Model {
	tm := table.New(
		table.WithColumns(columnsFor(t)),
		table.WithRows(rowsFor(t)),
		table.WithFocused(focused),
		table.WithHeight(m.tableHeight()),
	)
	tm.SetStyles(m.styles.Table)
	if m.width > 0 {
		tm.SetWidth(m.width)
	}
	return tm
}

// columnsFor sizes each column to its widest cell
func columnsFor(t models.Table) []table.Column {
	cols := make([]table.Column, len(t.Columns))
	for i, title := range t.Columns {
		w := lipgloss.Width(title)
		for _, row := range t.Rows {
			if i < len(row) {
				if cw := lipgloss.Width(row[i].String()); cw > w {
					w = cw
				}
			}
		}
		if w > maxColumnWidth {
			w = maxColumnWidth
		}
		cols[i] = table.Column{Title: title, Width: w}
	}
	return cols
}

func rowsFor(t models.Table) []table.Row {
	rows := make([]table.Row, len(t.Rows))
	for i, row := range t.Rows {
		cells := make(table.Row, t.Width())
		for j := range cells {
			if j < len(row) {
				cells[j] = row[j].String()
			}
		}
		rows[i] = cells
	}
	return rows
}

// tableHeight leaves room for the tab bar and the status bar
func (m *Model) tableHeight() int {
	h := m.config.TableHeight
	if m.height > 0 {
		if avail := m.height - 6; avail > 0 && (h <= 0 || avail < h) {
			h = avail
		}
	}
	if h <= 0 {
		h = DefaultConfig.TableHeight
	}
	return h
}

// NextTab moves to the next table, wrapping around
func (m *Model) NextTab() {
	m.switchTab((m.active + 1) % max(len(m.tabs), 1))
}

// PrevTab moves to the previous table, wrapping around
func (m *Model) PrevTab() {
	n := max(len(m.tabs), 1)
	m.switchTab((m.active - 1 + n) % n)
}

func (m *Model) switchTab(i int) {
	if len(m.tables) == 0 {
		return
	}
	m.tables[m.active].Blur()
	m.active = i
	m.tables[m.active].Focus()
}

// ActiveTab returns the title of the current table
func (m Model) ActiveTab() string {
	if len(m.tabs) == 0 {
		return ""
	}
	return m.tabs[m.active].Title
}

// Resize handles terminal size changes
func (m *Model) Resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	for i := range m.tables {
		m.tables[i].SetWidth(width)
		m.tables[i].SetHeight(m.tableHeight())
	}
}

// Summary returns the status bar figures
func (m Model) Summary() Summary {
	return m.summary
}
