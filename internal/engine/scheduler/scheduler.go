// Package scheduler drives frame evaluation: apply pending resource changes, advance the
// clock, pull the requested outputs and report the frame.
package scheduler

import (
	"context"
	"runtime"
	"sync"
	"time"

	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/pulse/internal/core/ports"
	"go.trai.ch/pulse/internal/engine/graph"
	"go.trai.ch/pulse/internal/engine/resource"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// FrameStatus represents the state of the frame driver.
type FrameStatus string

const (
	// StatusIdle indicates no frame is being evaluated.
	StatusIdle FrameStatus = "Idle"
	// StatusEvaluating indicates a frame is in progress.
	StatusEvaluating FrameStatus = "Evaluating"
	// StatusCompleted indicates the last frame evaluated every output.
	StatusCompleted FrameStatus = "Completed"
	// StatusFailed indicates the last frame had a failed output.
	StatusFailed FrameStatus = "Failed"
)

// Resources is the part of the resource cache the driver controls.
type Resources interface {
	Drain() int
	Entries() []resource.Entry
	GetOrCompile(ctx context.Context, key domain.ResourceKey, debugName string) domain.ResourceResult
}

type target struct {
	path string
	ref  domain.SlotRef
}

// Scheduler evaluates frames of one graph. Frames run on the caller's goroutine; only
// resource warm-up fans out.
type Scheduler struct {
	graph     *graph.Graph
	resources Resources
	tracer    ports.Tracer
	metrics   ports.Metrics
	sink      ports.DiagnosticSink

	targets  []target
	bpm      float64
	fps      float64
	realtime bool
	parallel int

	mu     sync.RWMutex
	status FrameStatus
	last   domain.FrameReport
}

// New creates a scheduler pulling outputs from g. Each output is a path understood by
// graph.Lookup.
func New(g *graph.Graph, outputs []string, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		graph:    g,
		bpm:      domain.DefaultBPM,
		fps:      domain.DefaultFPS,
		parallel: runtime.NumCPU(),
		status:   StatusIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fps <= 0 {
		return nil, zerr.With(zerr.With(domain.ErrInvalidSettings, "field", "fps"), "value", s.fps)
	}

	for _, path := range outputs {
		ref, err := g.Lookup(path)
		if err != nil {
			return nil, zerr.With(err, "output", path)
		}
		s.targets = append(s.targets, target{path: path, ref: ref})
	}
	return s, nil
}

// Status returns the state of the driver.
func (s *Scheduler) Status() FrameStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Last returns the report of the newest completed frame.
func (s *Scheduler) Last() domain.FrameReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

func (s *Scheduler) setStatus(status FrameStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Frame evaluates one frame at the given playback time in bars.
func (s *Scheduler) Frame(ctx context.Context, bars float64) domain.FrameReport {
	s.setStatus(StatusEvaluating)
	start := time.Now()

	ctx, span := s.startSpan(ctx, "frame", ports.WithAttribute("bars", bars))
	defer span.End()

	var invalidated int
	if s.resources != nil {
		invalidated = s.resources.Drain()
		if err := s.Prewarm(ctx); err != nil {
			span.RecordError(err)
			s.report(domain.SeverityWarning, "resource warm-up interrupted", err)
		}
	}

	tick := s.graph.Clock().Advance()
	ec := domain.NewEvalContext(bars, s.bpm)
	report := domain.FrameReport{
		Tick:        tick,
		Context:     ec,
		Invalidated: invalidated,
		Outputs:     make([]domain.OutputSample, 0, len(s.targets)),
	}

	for _, t := range s.targets {
		sample := domain.OutputSample{Path: t.path}
		v, err := s.graph.GetValue(ctx, t.ref, ec)
		if err == nil {
			err = s.graph.Failure(t.ref, ec)
		}
		sample.Value, sample.Err = v, err
		if err != nil {
			span.RecordError(err)
		}
		report.Outputs = append(report.Outputs, sample)
	}

	report.Duration = time.Since(start)
	failed := report.Failed()
	span.SetAttribute("tick", int64(tick)) //nolint:gosec // Ticks never exceed MaxInt64
	span.SetAttribute("invalidated", invalidated)
	span.SetAttribute("failed", failed)
	if s.metrics != nil {
		s.metrics.FrameEvaluated(report.Duration, failed)
	}

	s.mu.Lock()
	s.last = report
	s.status = StatusCompleted
	if failed {
		s.status = StatusFailed
	}
	s.mu.Unlock()
	return report
}

// Prewarm compiles every referenced resource entry that is not ready, in parallel. It
// returns early only when ctx is cancelled; compile failures stay on their entries.
func (s *Scheduler) Prewarm(ctx context.Context) error {
	if s.resources == nil {
		return nil
	}

	var pending []resource.Entry
	for _, e := range s.resources.Entries() {
		if e.Refs > 0 && (e.State == domain.ResourceStale || e.State == domain.ResourceUncompiled) {
			pending = append(pending, e)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	ctx, span := s.startSpan(ctx, "prewarm", ports.WithAttribute("resources", len(pending)))
	defer span.End()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)
	for _, e := range pending {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_ = s.resources.GetOrCompile(ctx, e.Key, e.DebugName)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return zerr.Wrap(err, "resource warm-up cancelled")
	}
	return nil
}

// Run evaluates frames until ctx is cancelled or frames have been evaluated. Zero frames
// means no limit. In realtime mode playback follows the wall clock at the configured
// frame rate; otherwise frame n is evaluated at n/fps seconds without waiting.
func (s *Scheduler) Run(ctx context.Context, frames int, onFrame func(domain.FrameReport)) error {
	interval := time.Duration(float64(time.Second) / s.fps)
	var ticker *time.Ticker
	if s.realtime {
		ticker = time.NewTicker(interval)
		defer ticker.Stop()
	}
	start := time.Now()

	for n := 0; frames == 0 || n < frames; n++ {
		if err := ctx.Err(); err != nil {
			return nil //nolint:nilerr // Cancellation ends the loop normally
		}

		seconds := float64(n) / s.fps
		if s.realtime {
			seconds = time.Since(start).Seconds()
		}
		report := s.Frame(ctx, domain.BarsFromSeconds(seconds, s.bpm))
		if onFrame != nil {
			onFrame(report)
		}

		if ticker == nil || (frames > 0 && n+1 == frames) {
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

func (s *Scheduler) startSpan(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	if s.tracer == nil {
		return ctx, noopSpan{}
	}
	return s.tracer.Start(ctx, name, opts...)
}

func (s *Scheduler) report(sev domain.Severity, msg string, err error) {
	if s.sink == nil {
		return
	}
	s.sink.Report(domain.Diagnostic{
		Severity:  sev,
		Subsystem: domain.SubsystemFrame,
		Message:   msg,
		Err:       err,
		Time:      time.Now(),
	})
}

type noopSpan struct{}

func (noopSpan) End()                     {}
func (noopSpan) RecordError(error)        {}
func (noopSpan) SetAttribute(string, any) {}
func (noopSpan) AddEvent(string)          {}
