// Package tui provides an interactive frame monitor built on Bubble Tea.
package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/pulse/internal/ui/output"
)

// DefaultMaxDiagnostics bounds the diagnostics pane.
const DefaultMaxDiagnostics = 200

// NewModel creates a model whose color profile follows the terminal behind w.
func NewModel(w io.Writer) Model {
	if w == nil {
		w = os.Stderr
	}
	lipgloss.SetColorProfile(output.New(w).Profile)

	return Model{
		Spans:          make(map[string]SpanStat),
		MaxDiagnostics: DefaultMaxDiagnostics,
		FollowMode:     true,
	}
}
