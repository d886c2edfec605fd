package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Theme defines color scheme for the application
type Theme struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Background lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Highlight  lipgloss.Color
}

// Styles contains all styled components
type Styles struct {
	Title       lipgloss.Style
	Muted       lipgloss.Style
	Error       lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	StatusBar   lipgloss.Style
	StatusValue lipgloss.Style

	Table table.Styles
}

// DefaultTheme returns the default color theme
func DefaultTheme() Theme {
	return DarkTheme()
}

// DarkTheme returns a dark color theme
func DarkTheme() Theme {
	return Theme{
		Primary:    lipgloss.Color("#7C3AED"), // Purple
		Secondary:  lipgloss.Color("#6366F1"), // Indigo
		Success:    lipgloss.Color("#10B981"), // Green
		Warning:    lipgloss.Color("#F59E0B"), // Amber
		Error:      lipgloss.Color("#EF4444"), // Red
		Background: lipgloss.Color("#1F2937"), // Gray-800
		Foreground: lipgloss.Color("#F3F4F6"), // Gray-100
		Muted:      lipgloss.Color("#9CA3AF"), // Gray-400
		Border:     lipgloss.Color("#374151"), // Gray-700
		Highlight:  lipgloss.Color("#FCD34D"), // Yellow-300
	}
}

// LightTheme returns a light color theme
func LightTheme() Theme {
	return Theme{
		Primary:    lipgloss.Color("#7C3AED"),
		Secondary:  lipgloss.Color("#6366F1"),
		Success:    lipgloss.Color("#059669"),
		Warning:    lipgloss.Color("#D97706"),
		Error:      lipgloss.Color("#DC2626"),
		Background: lipgloss.Color("#FFFFFF"),
		Foreground: lipgloss.Color("#111827"),
		Muted:      lipgloss.Color("#6B7280"),
		Border:     lipgloss.Color("#D1D5DB"),
		Highlight:  lipgloss.Color("#FDE047"),
	}
}

// HighContrastTheme returns a high contrast theme for accessibility
func HighContrastTheme() Theme {
	return Theme{
		Primary:    lipgloss.Color("#FFFFFF"),
		Secondary:  lipgloss.Color("#CCCCCC"),
		Success:    lipgloss.Color("#00FF00"),
		Warning:    lipgloss.Color("#FFFF00"),
		Error:      lipgloss.Color("#FF0000"),
		Background: lipgloss.Color("#000000"),
		Foreground: lipgloss.Color("#FFFFFF"),
		Muted:      lipgloss.Color("#808080"),
		Border:     lipgloss.Color("#FFFFFF"),
		Highlight:  lipgloss.Color("#FFFF00"),
	}
}

// ThemeByName returns a theme by name, falling back to the default
func ThemeByName(name string) Theme {
	switch name {
	case "light":
		return LightTheme()
	case "high-contrast":
		return HighContrastTheme()
	default:
		return DefaultTheme()
	}
}

// NewStyles creates styles based on a theme
func NewStyles(theme Theme) Styles {
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		Foreground(theme.Primary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Bold(true)
	ts.Cell = ts.Cell.Foreground(theme.Foreground)
	ts.Selected = ts.Selected.
		Foreground(theme.Background).
		Background(theme.Highlight).
		Bold(false)

	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error).
			Bold(true),

		TabActive: lipgloss.NewStyle().
			Foreground(theme.Background).
			Background(theme.Primary).
			Bold(true).
			Padding(0, 2),

		TabInactive: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Border(lipgloss.Border{Top: "─"}).
			BorderForeground(theme.Border).
			BorderTop(true),

		StatusValue: lipgloss.NewStyle().
			Foreground(theme.Success).
			Bold(true),

		Table: ts,
	}
}

// PlainStyles renders without colors, for --no-color and dumb terminals
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title:       plain.Bold(true),
		Muted:       plain,
		Error:       plain.Bold(true),
		TabActive:   plain.Bold(true).Underline(true).Padding(0, 2),
		TabInactive: plain.Padding(0, 2),
		StatusBar:   plain,
		StatusValue: plain.Bold(true),
		Table: table.Styles{
			Header:   plain.Bold(true).Padding(0, 1),
			Cell:     plain.Padding(0, 1),
			Selected: plain.Reverse(true),
		},
	}
}
