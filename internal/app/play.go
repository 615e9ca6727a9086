package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"go.opentelemetry.io/otel"
	"go.trai.ch/pulse/internal/adapters/detector"  //nolint:depguard // Wired in app layer
	"go.trai.ch/pulse/internal/adapters/linear"    //nolint:depguard // Wired in app layer
	"go.trai.ch/pulse/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/pulse/internal/adapters/tui"       //nolint:depguard // Wired in app layer
	"go.trai.ch/pulse/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/pulse/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// RunOptions configuration for the Run method.
type RunOptions struct {
	// ConfigPath is the patch file or a directory to search upwards from.
	ConfigPath string
	// Frames overrides the frame count of the patch when positive.
	Frames int
	// Outputs overrides the output paths of the patch.
	Outputs []string
	// OutputMode is "auto", "tui" or "linear".
	OutputMode string
	// Inspect keeps the TUI open after the last frame.
	Inspect bool
	// ChangesOnly suppresses linear lines identical to the previous frame.
	ChangesOnly bool
}

// WatchOptions configuration for the Watch method.
type WatchOptions struct {
	ConfigPath  string
	Outputs     []string
	OutputMode  string
	ChangesOnly bool
	// MetricsAddr overrides the metrics address of the patch.
	MetricsAddr string
}

type playOptions struct {
	frames      int
	realtime    bool
	outputs     []string
	mode        detector.OutputMode
	inspect     bool
	changesOnly bool
	// strict turns failed frames into an error.
	strict bool
}

// Run evaluates a fixed number of frames offline and renders them.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	s, err := a.open(opts.ConfigPath)
	if err != nil {
		return err
	}

	frames := opts.Frames
	if frames <= 0 {
		frames = max(s.patch.Settings.Frames, 1)
	}

	return a.play(ctx, s, playOptions{
		frames:      frames,
		outputs:     opts.Outputs,
		mode:        detector.ResolveMode(detector.ModeLinear, opts.OutputMode),
		inspect:     opts.Inspect,
		changesOnly: opts.ChangesOnly,
		strict:      true,
	})
}

// Watch plays the patch in real time until ctx is cancelled or the TUI is closed,
// recompiling resources when their source files change.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	s, err := a.open(opts.ConfigPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if a.watcher != nil {
		bridge := watcher.NewBridge(a.watcher, s.patch.Settings.Debounce, s.cache)
		roots := s.patch.ExistingResourceFolders()
		g.Go(func() error {
			return bridge.Run(ctx, roots...)
		})
	}

	addr := opts.MetricsAddr
	if addr == "" {
		addr = s.patch.Settings.MetricsAddr
	}
	if addr != "" && a.metrics != nil {
		a.logger.Info(fmt.Sprintf("serving metrics on %s/metrics", addr))
		g.Go(func() error {
			return a.metrics.Serve(ctx, addr)
		})
	}

	g.Go(func() error {
		defer cancel()
		return a.play(ctx, s, playOptions{
			realtime:    true,
			outputs:     opts.Outputs,
			mode:        detector.ResolveMode(detector.DetectEnvironment(), opts.OutputMode),
			changesOnly: opts.ChangesOnly,
		})
	})

	return g.Wait()
}

// play runs the scheduler and the renderer concurrently.
func (a *App) play(ctx context.Context, s *session, opts playOptions) error {
	renderer, program := a.newRenderer(ctx, opts)

	tracer := a.tracer
	if program != nil {
		tp := telemetry.NewProvider(telemetry.NewTUIBridge(program.Program()))
		otel.SetTracerProvider(tp)
		defer func() { _ = tp.Shutdown(context.WithoutCancel(ctx)) }()
		tracer = telemetry.NewOTelTracerFrom(tp, telemetry.InstrumentationName)

		restore := a.quietLogs()
		defer restore()
	}

	sched, err := a.newScheduler(s, opts.outputs, opts.realtime, tracer)
	if err != nil {
		return err
	}

	unsubscribe := a.sink.Subscribe(renderer.OnDiagnostic)
	defer unsubscribe()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	// Renderer Routine
	g.Go(func() error {
		if err := renderer.Start(ctx); err != nil {
			return err
		}
		err := renderer.Wait()
		if program != nil {
			// Closing the TUI ends playback.
			cancel()
		}
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})

	// Scheduler Routine
	failed := 0
	g.Go(func() error {
		defer func() {
			if !opts.inspect || program == nil {
				_ = renderer.Stop()
			}
		}()
		return sched.Run(ctx, opts.frames, func(report domain.FrameReport) {
			if report.Failed() {
				failed++
			}
			renderer.OnFrame(report)
		})
	})

	if err := g.Wait(); err != nil {
		return err
	}
	if opts.strict && failed > 0 {
		return zerr.With(domain.ErrFrameFailed, "failed_frames", failed)
	}
	return nil
}

// newRenderer returns the renderer for opts.mode and, in TUI mode, the TUI itself.
func (a *App) newRenderer(ctx context.Context, opts playOptions) (ports.Renderer, *tui.Renderer) {
	if opts.mode != detector.ModeTUI {
		return linear.NewRenderer(a.stdout, a.stderr, linear.WithChangesOnly(opts.changesOnly)), nil
	}
	model := tui.NewModel(a.stderr)
	teaOpts := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, a.teaOptions...)
	r := tui.NewRenderer(&model, teaOpts...)
	return r, r
}

// quietLogs silences the logger while the TUI owns the terminal. Diagnostics still
// reach the TUI through the sink.
func (a *App) quietLogs() func() {
	l, ok := a.logger.(interface{ SetOutput(w io.Writer) })
	if !ok {
		return func() {}
	}
	l.SetOutput(io.Discard)
	return func() { l.SetOutput(a.stderr) }
}
