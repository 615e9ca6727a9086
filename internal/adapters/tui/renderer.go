package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/pulse/internal/core/ports"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer wraps the Bubble Tea model as a ports.Renderer.
type Renderer struct {
	program *tea.Program
	model   *Model

	once sync.Once
	done chan struct{}
	err  error
}

// NewRenderer creates a new TUI renderer.
func NewRenderer(model *Model, opts ...tea.ProgramOption) *Renderer {
	return &Renderer{
		program: tea.NewProgram(model, opts...),
		model:   model,
		done:    make(chan struct{}),
	}
}

// Start launches the program in a background goroutine.
func (r *Renderer) Start(_ context.Context) error {
	r.once.Do(func() {
		go func() {
			_, r.err = r.program.Run()
			close(r.done)
		}()
	})
	return nil
}

// Stop asks the program to quit.
func (r *Renderer) Stop() error {
	r.program.Quit()
	return nil
}

// Wait blocks until the program has terminated. It may be called more than once.
func (r *Renderer) Wait() error {
	<-r.done
	return r.err
}

// Done is closed when the program terminates, including when the user quits.
func (r *Renderer) Done() <-chan struct{} {
	return r.done
}

// OnFrame forwards a frame report to the program.
func (r *Renderer) OnFrame(report domain.FrameReport) {
	r.program.Send(MsgFrame{Report: report})
}

// OnDiagnostic forwards a diagnostic to the program.
func (r *Renderer) OnDiagnostic(d domain.Diagnostic) {
	r.program.Send(MsgDiagnostic{Diagnostic: d})
}

// Program returns the underlying program, for span bridging.
func (r *Renderer) Program() *tea.Program {
	return r.program
}
