package tui_test

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pulse/internal/adapters/tui"
	"go.trai.ch/pulse/internal/core/domain"
)

func headless(t *testing.T) *tui.Renderer {
	t.Helper()
	model := tui.NewModel(io.Discard)
	return tui.NewRenderer(
		&model,
		tea.WithInput(strings.NewReader("")),
		tea.WithOutput(io.Discard),
		tea.WithoutSignalHandler(),
		tea.WithoutRenderer(),
	)
}

func TestRenderer_Lifecycle(t *testing.T) {
	r := headless(t)

	require.NoError(t, r.Start(context.Background()))
	r.OnFrame(domain.FrameReport{Tick: 1})
	r.OnDiagnostic(domain.Diagnostic{Message: "hello"})
	require.NoError(t, r.Stop())
	require.NoError(t, r.Wait())
	require.NoError(t, r.Wait())

	select {
	case <-r.Done():
	default:
		t.Fatal("Done not closed after Wait")
	}
	require.NotNil(t, r.Program())
}
