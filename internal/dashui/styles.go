package dashui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

const (
	colorAccent  = lipgloss.Color("#C89A3A")
	colorBorder  = lipgloss.Color("#4A4A4A")
	colorMuted   = lipgloss.Color("#6E6E6E")
	colorText    = lipgloss.Color("#F0F0F0")
	colorError   = lipgloss.Color("#FF4D4F")
	colorSuccess = lipgloss.Color("#52C41A")
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(colorAccent)
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(colorBorder)
	headerStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	cardStyle    = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(colorBorder)
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	sectionStyle    = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	barStyle        = lipgloss.NewStyle().Foreground(colorAccent)
	bestStyle       = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	labelStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(colorAccent).
			Padding(1, 2)
)

func listTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(colorBorder).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(colorText).
		Background(lipgloss.Color("#3A3A3A")).
		Bold(true)
	return styles
}

// badge renders text in the lead type color. Invalid colors fall back to the accent.
func badge(text, color string) string {
	c := lipgloss.Color(color)
	if color == "" || color[0] != '#' {
		c = colorAccent
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true).Render(text)
}
