// Package metrics records engine counters with Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.trai.ch/pulse/internal/core/ports"
	"go.trai.ch/zerr"
)

const namespace = "pulse"

const shutdownTimeout = 5 * time.Second

var _ ports.Metrics = (*Prometheus)(nil)

// Prometheus implements ports.Metrics on a private registry.
type Prometheus struct {
	registry *prometheus.Registry

	frames        *prometheus.CounterVec
	frameDuration prometheus.Histogram
	recomputes    *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	compiles      *prometheus.CounterVec
	compileTime   prometheus.Histogram
	invalidated   prometheus.Counter
}

// New registers the engine metrics on a fresh registry.
func New() *Prometheus {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Prometheus{
		registry: reg,
		frames: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "frame",
			Name:      "evaluated_total",
			Help:      "Frames evaluated, by outcome",
		}, []string{"failed"}),
		frameDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "frame",
			Name:      "duration_seconds",
			Help:      "Time spent evaluating one frame",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.016, 0.033, 0.1, 0.5},
		}),
		recomputes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "recomputes_total",
			Help:      "Operator recomputes, by symbol and outcome",
		}, []string{"symbol", "failed"}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resource",
			Name:      "lookups_total",
			Help:      "Resource cache lookups, by hit",
		}, []string{"hit"}),
		compiles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resource",
			Name:      "compiles_total",
			Help:      "Resource compiles, by outcome",
		}, []string{"failed"}),
		compileTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "resource",
			Name:      "compile_duration_seconds",
			Help:      "Time spent compiling one resource",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		invalidated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resource",
			Name:      "invalidated_total",
			Help:      "Resource entries invalidated by source changes",
		}),
	}
}

// FrameEvaluated records one frame.
func (p *Prometheus) FrameEvaluated(d time.Duration, failed bool) {
	p.frames.WithLabelValues(strconv.FormatBool(failed)).Inc()
	p.frameDuration.Observe(d.Seconds())
}

// Recomputed records one operator recompute.
func (p *Prometheus) Recomputed(symbol string, failed bool) {
	p.recomputes.WithLabelValues(symbol, strconv.FormatBool(failed)).Inc()
}

// CacheLookup records one resource cache lookup.
func (p *Prometheus) CacheLookup(hit bool) {
	p.cacheLookups.WithLabelValues(strconv.FormatBool(hit)).Inc()
}

// Compiled records one resource compile.
func (p *Prometheus) Compiled(d time.Duration, failed bool) {
	p.compiles.WithLabelValues(strconv.FormatBool(failed)).Inc()
	p.compileTime.Observe(d.Seconds())
}

// Invalidated records entries invalidated by one drain.
func (p *Prometheus) Invalidated(n int) {
	if n > 0 {
		p.invalidated.Add(float64(n))
	}
}

// Registry returns the registry holding the engine metrics.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler returns an HTTP handler exposing the registry.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (p *Prometheus) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", p.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: shutdownTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return zerr.With(zerr.Wrap(err, "metrics server failed"), "addr", addr)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return zerr.Wrap(err, "metrics server shutdown failed")
		}
		return nil
	}
}
