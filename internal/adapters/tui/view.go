package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/pulse/internal/ui/style"
)

// View renders the monitor.
func (m *Model) View() string {
	if m.Width == 0 {
		return "Initializing..."
	}

	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		outputPaneStyle.Width(m.OutputWidth).Render(m.outputPane()),
		diagPaneStyle.Width(m.DiagWidth).Render(m.diagnosticsPane()),
	)
	return lipgloss.JoinVertical(lipgloss.Left, m.header(), body, m.footer())
}

func (m *Model) header() string {
	title := titleStyle.Render("PULSE")
	if m.Failed > 0 {
		title = failureTitleStyle.Render("PULSE")
	}
	status := fmt.Sprintf(" tick %d  bars %.2f  %s/frame  %d frame(s)",
		m.Tick, m.Context.Time, m.FrameTime, m.Frames)
	if m.Failed > 0 {
		status += fmt.Sprintf("  %d failed", m.Failed)
	}
	return title + mutedStyle.Render(status)
}

func (m *Model) outputPane() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("OUTPUTS") + "\n\n")
	if len(m.Outputs) == 0 {
		s.WriteString(mutedStyle.Render("no frame yet"))
		return s.String()
	}
	for _, row := range m.Outputs {
		s.WriteString(pathStyle.Render(row.Path) + " ")
		if row.Err != nil {
			s.WriteString(errorStyle.Render(style.Cross + " " + firstLine(row.Err.Error())))
		} else {
			s.WriteString(valueStyle.Render(row.Value))
		}
		s.WriteString("\n")
	}
	return s.String()
}

func (m *Model) diagnosticsPane() string {
	var s strings.Builder
	header := "DIAGNOSTICS"
	if !m.FollowMode {
		header += " (paused)"
	}
	s.WriteString(titleStyle.Render(header) + "\n\n")

	end := min(m.DiagOffset+m.visibleDiagnostics(), len(m.Diagnostics))
	for _, d := range m.Diagnostics[min(m.DiagOffset, end):end] {
		icon := lipgloss.NewStyle().Foreground(style.SeverityColor(d.Severity)).Render(style.SeverityIcon(d.Severity))
		line := fmt.Sprintf("%s %s %s", icon, mutedStyle.Render("["+d.Subsystem+"]"), firstLine(d.Message))
		s.WriteString(line + "\n")
	}
	return s.String()
}

func (m *Model) footer() string {
	names := make([]string, 0, len(m.Spans))
	for name := range m.Spans {
		names = append(names, name)
	}
	slices.Sort(names)

	parts := make([]string, 0, len(names)+1)
	for _, name := range names {
		stat := m.Spans[name]
		part := fmt.Sprintf("%s %s", name, stat.Duration)
		if stat.Failed {
			part = errorStyle.Render(part)
		}
		parts = append(parts, part)
	}
	parts = append(parts, "q quit  c clear  f follow")
	return mutedStyle.Render(strings.Join(parts, "  ·  "))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
