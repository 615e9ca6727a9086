// Package app implements the application layer for pulse.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/pulse/internal/adapters/diagnostics" //nolint:depguard // Wired in app layer
	"go.trai.ch/pulse/internal/adapters/metrics"     //nolint:depguard // Wired in app layer
	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/pulse/internal/core/ports"
	"go.trai.ch/pulse/internal/engine/graph"
	"go.trai.ch/pulse/internal/engine/resource"
	"go.trai.ch/pulse/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	loader   ports.ConfigLoader
	compiler ports.Compiler
	resolver ports.SourceResolver
	hasher   ports.Hasher
	store    ports.CompileStore
	sink     *diagnostics.Sink
	logger   ports.Logger

	tracer  ports.Tracer
	metrics *metrics.Prometheus
	watcher ports.Watcher

	stdout     io.Writer
	stderr     io.Writer
	teaOptions []tea.ProgramOption
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	compiler ports.Compiler,
	resolver ports.SourceResolver,
	hasher ports.Hasher,
	store ports.CompileStore,
	sink *diagnostics.Sink,
	log ports.Logger,
) *App {
	return &App{
		loader:   loader,
		compiler: compiler,
		resolver: resolver,
		hasher:   hasher,
		store:    store,
		sink:     sink,
		logger:   log,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
}

// WithTracer sets the tracer used for frame spans when no TUI is attached.
func (a *App) WithTracer(t ports.Tracer) *App {
	a.tracer = t
	return a
}

// WithMetrics records engine counters in m and enables the metrics endpoint.
func (a *App) WithMetrics(m *metrics.Prometheus) *App {
	a.metrics = m
	return a
}

// WithWatcher enables hot reload in Watch.
func (a *App) WithWatcher(w ports.Watcher) *App {
	a.watcher = w
	return a
}

// WithOutput redirects frame output. Nil writers keep the current destination.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	if stdout != nil {
		a.stdout = stdout
	}
	if stderr != nil {
		a.stderr = stderr
	}
	return a
}

// WithTeaOptions adds bubbletea program options to the App.
// This is primarily used for testing to disable input/output.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = append(a.teaOptions, opts...)
	return a
}

// Close releases the file watcher.
func (a *App) Close() error {
	if a.watcher == nil {
		return nil
	}
	return a.watcher.Stop()
}

// session is a loaded patch with its instantiated graph.
type session struct {
	patch *domain.Patch
	cache *resource.Cache
	graph *graph.Graph
}

// open loads the patch at path and instantiates its root symbol.
func (a *App) open(path string) (*session, error) {
	patch, err := a.loader.Load(path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load patch")
	}
	a.applyLogSettings(patch.Settings)

	cacheOpts := []resource.Option{
		resource.WithStore(a.store, patch.CacheDirPath()),
		resource.WithSink(a.sink),
		resource.WithFolders(patch.ExistingResourceFolders()...),
		resource.WithCommand(patch.Settings.Compiler.Command),
	}
	graphOpts := []graph.Option{graph.WithSink(a.sink)}
	if a.metrics != nil {
		cacheOpts = append(cacheOpts, resource.WithMetrics(a.metrics))
		graphOpts = append(graphOpts, graph.WithMetrics(a.metrics))
	}

	cache := resource.New(a.compiler, a.resolver, a.hasher, cacheOpts...)
	g := graph.New(domain.NewClock(), append(graphOpts, graph.WithResources(cache))...)
	if _, err := g.Instantiate(patch.Symbol); err != nil {
		return nil, zerr.Wrap(err, "failed to instantiate patch")
	}
	if err := g.Validate(); err != nil {
		return nil, zerr.Wrap(err, "patch graph is invalid")
	}

	a.logger.Debug(fmt.Sprintf("loaded %s: %d instance(s)", patch.Path, g.Len()))
	return &session{patch: patch, cache: cache, graph: g}, nil
}

// newScheduler builds the frame driver for s.
func (a *App) newScheduler(s *session, outputs []string, realtime bool, tracer ports.Tracer) (*scheduler.Scheduler, error) {
	if len(outputs) == 0 {
		outputs = s.patch.Outputs
	}
	opts := []scheduler.Option{
		scheduler.WithResources(s.cache),
		scheduler.WithSink(a.sink),
		scheduler.WithTempo(s.patch.Settings.BPM),
		scheduler.WithFrameRate(s.patch.Settings.FPS),
		scheduler.WithRealtime(realtime),
		scheduler.WithParallelism(runtime.NumCPU()),
	}
	if tracer != nil {
		opts = append(opts, scheduler.WithTracer(tracer))
	}
	if a.metrics != nil {
		opts = append(opts, scheduler.WithMetrics(a.metrics))
	}
	sched, err := scheduler.New(s.graph, outputs, opts...)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create scheduler")
	}
	return sched, nil
}

// applyLogSettings switches the logger to JSON records when the patch asks for it.
func (a *App) applyLogSettings(settings domain.Settings) {
	if !settings.JSONLogs {
		return
	}
	if l, ok := a.logger.(interface{ SetJSON(enable bool) }); ok {
		l.SetJSON(true)
	}
}

// Inspect writes the instance tree of the patch at path.
func (a *App) Inspect(_ context.Context, path string) error {
	s, err := a.open(path)
	if err != nil {
		return err
	}
	if err := s.graph.Dump(a.stdout); err != nil {
		return zerr.Wrap(err, "failed to dump instance tree")
	}
	for _, out := range s.patch.Outputs {
		_, _ = fmt.Fprintf(a.stdout, "output %s\n", out)
	}
	return nil
}

// Clean removes the compile cache of the patch at path.
func (a *App) Clean(_ context.Context, path string) error {
	patch, err := a.loader.Load(path)
	if err != nil {
		return zerr.Wrap(err, "failed to load patch")
	}
	dir := patch.CacheDirPath()
	a.logger.Info(fmt.Sprintf("removing compile cache %s...", dir))
	if err := os.RemoveAll(dir); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove compile cache"), "dir", dir)
	}
	a.logger.Info("removed compile cache")
	return nil
}
