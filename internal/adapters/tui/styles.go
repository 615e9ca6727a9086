package tui

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/pulse/internal/ui/style"
)

var (
	outputPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(style.Slate).
			MarginRight(1).
			PaddingRight(1)

	diagPaneStyle = lipgloss.NewStyle().
			PaddingLeft(1)

	pathStyle = lipgloss.NewStyle().
			Foreground(style.Iris).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(style.Mist)

	errorStyle = lipgloss.NewStyle().
			Foreground(style.Red)

	mutedStyle = lipgloss.NewStyle().
			Foreground(style.Slate).
			Faint(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Background(style.Iris).
			Foreground(style.White)

	failureTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Padding(0, 1).
				Background(style.Red).
				Foreground(style.White)
)
