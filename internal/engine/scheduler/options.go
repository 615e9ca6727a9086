package scheduler

import "go.trai.ch/pulse/internal/core/ports"

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithResources lets the driver drain and warm the resource cache before each frame.
func WithResources(r Resources) Option {
	return func(s *Scheduler) { s.resources = r }
}

// WithTracer records a span per frame.
func WithTracer(t ports.Tracer) Option {
	return func(s *Scheduler) { s.tracer = t }
}

// WithMetrics records frame counters.
func WithMetrics(m ports.Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// WithSink reports driver diagnostics.
func WithSink(sink ports.DiagnosticSink) Option {
	return func(s *Scheduler) { s.sink = sink }
}

// WithTempo sets the playback tempo in beats per minute.
func WithTempo(bpm float64) Option {
	return func(s *Scheduler) {
		if bpm > 0 {
			s.bpm = bpm
		}
	}
}

// WithFrameRate sets frames per second.
func WithFrameRate(fps float64) Option {
	return func(s *Scheduler) { s.fps = fps }
}

// WithRealtime paces frames by the wall clock.
func WithRealtime(on bool) Option {
	return func(s *Scheduler) { s.realtime = on }
}

// WithParallelism bounds concurrent resource compiles during warm-up.
func WithParallelism(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.parallel = n
		}
	}
}
