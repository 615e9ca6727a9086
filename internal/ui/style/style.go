// Package style holds the brand colors and icons shared by the log handler and renderers.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/pulse/internal/core/domain"
)

// Brand Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	White  = lipgloss.Color("#FFFFFF")
	Mist   = lipgloss.Color("#F6F7FB")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Dot     = "●"
	Circle  = "○"
)

// SeverityIcon returns the icon shown in front of a diagnostic.
func SeverityIcon(s domain.Severity) string {
	switch s {
	case domain.SeverityError:
		return Cross
	case domain.SeverityWarning:
		return Warning
	case domain.SeverityInfo:
		return Dot
	default:
		return Circle
	}
}

// SeverityColor returns the color a diagnostic is printed in.
func SeverityColor(s domain.Severity) lipgloss.Color {
	switch s {
	case domain.SeverityError:
		return Red
	case domain.SeverityWarning:
		return Yellow
	case domain.SeverityInfo:
		return Iris
	default:
		return Slate
	}
}
