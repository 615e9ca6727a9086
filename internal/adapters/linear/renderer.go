// Package linear provides a line-oriented frame renderer for CI and piped output.
package linear

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/pulse/internal/core/ports"
	"go.trai.ch/pulse/internal/ui/output"
	"go.trai.ch/pulse/internal/ui/style"
)

var _ ports.Renderer = (*Renderer)(nil)

// Option configures a Renderer.
type Option func(*Renderer)

// WithChangesOnly suppresses frames whose printed outputs equal the previous frame.
func WithChangesOnly(on bool) Option {
	return func(r *Renderer) { r.changesOnly = on }
}

// Renderer implements ports.Renderer. Each frame becomes one line on stdout; the
// summary goes to stderr on Stop.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	changesOnly bool

	mu       sync.Mutex
	last     string
	frames   int
	failed   int
	warnings int
	errors   int
}

// NewRenderer creates a Renderer. Nil writers default to the process streams.
func NewRenderer(stdout, stderr io.Writer, opts ...Option) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	r := &Renderer{
		stdout: stdout,
		stderr: stderr,
		output: output.NewWithProfile(stderr, output.ColorProfileANSI),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start is a no-op; the renderer writes synchronously.
func (r *Renderer) Start(_ context.Context) error {
	return nil
}

// Stop prints the run summary.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	icon := r.output.String(style.Check).Foreground(r.output.Color(string(style.Green)))
	if r.failed > 0 || r.errors > 0 {
		icon = r.output.String(style.Cross).Foreground(r.output.Color(string(style.Red)))
	} else if r.warnings > 0 {
		icon = r.output.String(style.Warning).Foreground(r.output.Color(string(style.Yellow)))
	}

	summary := fmt.Sprintf("%d frame(s)", r.frames)
	if r.failed > 0 {
		summary += fmt.Sprintf(", %d failed", r.failed)
	}
	switch {
	case r.errors == 0 && r.warnings == 0:
		summary += ", no problems"
	default:
		summary += fmt.Sprintf(", %d warning(s), %d error(s)", r.warnings, r.errors)
	}
	_, _ = fmt.Fprintf(r.stderr, "%s %s\n", icon, summary)
	return nil
}

// Wait is a no-op; the renderer writes synchronously.
func (r *Renderer) Wait() error {
	return nil
}

// OnFrame prints one line per frame.
func (r *Renderer) OnFrame(report domain.FrameReport) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frames++
	if report.Failed() {
		r.failed++
	}

	line := r.formatOutputs(report.Outputs)
	if r.changesOnly && line == r.last && r.frames > 1 {
		return
	}
	r.last = line

	prefix := r.output.String(fmt.Sprintf("[%d]", report.Tick)).Faint().String()
	_, _ = fmt.Fprintf(r.stdout, "%s %s\n", prefix, line)
}

// OnDiagnostic counts warnings and errors for the summary. The diagnostic itself is
// already logged by the sink.
func (r *Renderer) OnDiagnostic(d domain.Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch d.Severity {
	case domain.SeverityWarning:
		r.warnings++
	case domain.SeverityError:
		r.errors++
	default:
	}
}

func (r *Renderer) formatOutputs(samples []domain.OutputSample) string {
	parts := make([]string, 0, len(samples))
	for _, s := range samples {
		if s.Err != nil {
			cross := r.output.String(style.Cross).Foreground(r.output.Color(string(style.Red))).String()
			parts = append(parts, fmt.Sprintf("%s=%s %s", s.Path, cross, firstLine(s.Err.Error())))
			continue
		}
		parts = append(parts, s.Path+"="+output.FormatValue(s.Value))
	}
	return strings.Join(parts, "  ")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
