package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/pulse/internal/adapters/telemetry"
	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/pulse/internal/ui/output"
)

const (
	outputPaneWidthRatio = 0.4
	paneBorderWidth      = 4
	chromeHeight         = 4
)

// OutputRow is one requested output as last evaluated.
type OutputRow struct {
	Path  string
	Value string
	Err   error
}

// SpanStat is the latest timing of a named span.
type SpanStat struct {
	Duration time.Duration
	Failed   bool
	Count    int
}

// Model is the frame monitor state.
type Model struct {
	Outputs   []OutputRow
	Tick      domain.Tick
	Context   domain.EvalContext
	FrameTime time.Duration
	Frames    int
	Failed    int

	Diagnostics    []domain.Diagnostic
	MaxDiagnostics int
	// DiagOffset is the first visible diagnostic when FollowMode is off.
	DiagOffset int
	FollowMode bool

	Spans map[string]SpanStat

	Width       int
	Height      int
	OutputWidth int
	DiagWidth   int
	DiagHeight  int
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
//
//nolint:cyclop // One case per message kind
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.OutputWidth = int(float64(msg.Width) * outputPaneWidthRatio)
		m.DiagWidth = max(msg.Width-m.OutputWidth-paneBorderWidth, 0)
		m.DiagHeight = max(msg.Height-chromeHeight, 0)
		m.clampOffset()

	case MsgFrame:
		m.applyFrame(msg.Report)

	case MsgDiagnostic:
		m.Diagnostics = append(m.Diagnostics, msg.Diagnostic)
		if m.MaxDiagnostics > 0 && len(m.Diagnostics) > m.MaxDiagnostics {
			drop := len(m.Diagnostics) - m.MaxDiagnostics
			m.Diagnostics = append([]domain.Diagnostic(nil), m.Diagnostics[drop:]...)
			m.DiagOffset = max(m.DiagOffset-drop, 0)
		}
		m.clampOffset()

	case telemetry.MsgSpanEnded:
		stat := m.Spans[msg.Name]
		stat.Duration = msg.Duration
		stat.Failed = msg.Err != nil
		stat.Count++
		if m.Spans == nil {
			m.Spans = make(map[string]SpanStat)
		}
		m.Spans[msg.Name] = stat
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "c":
		m.Diagnostics = nil
		m.DiagOffset = 0
		m.FollowMode = true
	case "up", "k":
		m.FollowMode = false
		m.DiagOffset = max(m.DiagOffset-1, 0)
	case "down", "j":
		m.DiagOffset++
		m.clampOffset()
	case "f":
		m.FollowMode = !m.FollowMode
		m.clampOffset()
	}
	return m, nil
}

func (m *Model) applyFrame(report domain.FrameReport) {
	m.Tick = report.Tick
	m.Context = report.Context
	m.FrameTime = report.Duration
	m.Frames++
	if report.Failed() {
		m.Failed++
	}

	m.Outputs = m.Outputs[:0]
	for _, s := range report.Outputs {
		row := OutputRow{Path: s.Path, Err: s.Err}
		if s.Err == nil {
			row.Value = output.FormatValue(s.Value)
		}
		m.Outputs = append(m.Outputs, row)
	}
}

// clampOffset keeps the diagnostics window inside the list, pinned to the end in follow mode.
func (m *Model) clampOffset() {
	maxOffset := max(len(m.Diagnostics)-m.visibleDiagnostics(), 0)
	if m.FollowMode || m.DiagOffset > maxOffset {
		m.DiagOffset = maxOffset
	}
}

func (m *Model) visibleDiagnostics() int {
	if m.DiagHeight <= 0 {
		return len(m.Diagnostics)
	}
	return m.DiagHeight
}
