package commands

import (
	"github.com/charmbracelet/lipgloss"

	"homekeep/internal/model"
)

// Color palette
var (
	colorPrimary = lipgloss.Color("#6C63FF")
	colorMuted   = lipgloss.Color("#666666")
	colorSuccess = lipgloss.Color("#2ECC71")
	colorWarning = lipgloss.Color("#F39C12")
	colorError   = lipgloss.Color("#E74C3C")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	idStyle = lipgloss.NewStyle().
		Foreground(colorMuted)
)

// statusColor maps a task status onto the palette.
func statusColor(s model.Status) lipgloss.Color {
	switch s.Color() {
	case "red":
		return colorError
	case "yellow":
		return colorWarning
	default:
		return colorSuccess
	}
}

func statusStyle(s model.Status) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(statusColor(s))
}

func statusBadge(s model.Status) string {
	return statusStyle(s).Render("●")
}
