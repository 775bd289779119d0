package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorDim     = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent  = lipgloss.AdaptiveColor{Light: "#D9480F", Dark: "#FF8C42"}
	colorWarn    = lipgloss.AdaptiveColor{Light: "#C92A2A", Dark: "#FF6B6B"}
	colorGreen   = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}
	colorBorder  = lipgloss.AdaptiveColor{Light: "#DBDBDB", Dark: "#383838"}

	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Width(10)

	countdownStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	reachedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorGreen)

	alertStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWarn)

	staleStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(colorWarn)

	hintStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)
