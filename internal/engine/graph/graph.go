// Package graph implements the operator instance tree and its pull-based, memoized evaluation.
//
// Every cross reference is an id into the graph arena: bindings name their sources by
// SlotRef and instances name their parent and children by InstanceID. Evaluation and edits
// must not run concurrently; the host applies edits between frames.
package graph

import (
	"time"

	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/pulse/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultContextLimit is the number of distinct evaluation contexts memoized per cell.
const DefaultContextLimit = 4

// Graph owns every instance, output cell and input binding of a patch.
type Graph struct {
	clock        *domain.Clock
	sink         ports.DiagnosticSink
	metrics      ports.Metrics
	resources    domain.ResourceProvider
	contextLimit int

	root      domain.InstanceID
	instances map[domain.InstanceID]*Instance
	cells     map[domain.SlotRef]*Cell
	bindings  map[domain.SlotRef]*Binding

	// rev is bumped by every edit and explicit invalidation.
	rev uint64
	// seq orders value changes. A binding or cell state whose changed stamp exceeds a
	// consumer's verified stamp forces the consumer to recompute.
	seq uint64
	use uint64
	// pulls counts top level GetValue calls.
	pulls uint64

	visiting map[visitKey]struct{}
	stack    []domain.SlotRef
}

type visitKey struct {
	ref domain.SlotRef
	ec  domain.EvalContext
}

// Option configures a Graph.
type Option func(*Graph)

// WithSink routes diagnostics to sink.
func WithSink(sink ports.DiagnosticSink) Option {
	return func(g *Graph) { g.sink = sink }
}

// WithMetrics records recompute counters.
func WithMetrics(m ports.Metrics) Option {
	return func(g *Graph) {
		if m != nil {
			g.metrics = m
		}
	}
}

// WithResources hands a resource provider to every operator created in the graph.
func WithResources(r domain.ResourceProvider) Option {
	return func(g *Graph) { g.resources = r }
}

// WithContextLimit bounds the number of contexts memoized per cell.
func WithContextLimit(n int) Option {
	return func(g *Graph) {
		if n > 0 {
			g.contextLimit = n
		}
	}
}

// New creates an empty graph reading ticks from clock.
func New(clock *domain.Clock, opts ...Option) *Graph {
	g := &Graph{
		clock:        clock,
		metrics:      noopMetrics{},
		contextLimit: DefaultContextLimit,
		rev:          1,
		instances:    make(map[domain.InstanceID]*Instance),
		cells:        make(map[domain.SlotRef]*Cell),
		bindings:     make(map[domain.SlotRef]*Binding),
		visiting:     make(map[visitKey]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Clock returns the clock the graph evaluates against.
func (g *Graph) Clock() *domain.Clock {
	return g.clock
}

// Root returns the root instance id.
func (g *Graph) Root() domain.InstanceID {
	return g.root
}

// Instance returns the instance with the given id.
func (g *Graph) Instance(id domain.InstanceID) (*Instance, error) {
	inst, ok := g.instances[id]
	if !ok {
		return nil, zerr.With(domain.ErrInstanceNotFound, "instance", id.String())
	}
	return inst, nil
}

// Cell returns the output cell addressed by ref.
func (g *Graph) Cell(ref domain.SlotRef) (*Cell, error) {
	c, ok := g.cells[ref]
	if !ok {
		return nil, zerr.With(domain.ErrSlotNotFound, "slot", ref.String())
	}
	return c, nil
}

// Binding returns the input binding addressed by ref.
func (g *Graph) Binding(ref domain.SlotRef) (*Binding, error) {
	b, ok := g.bindings[ref]
	if !ok {
		return nil, zerr.With(domain.ErrSlotNotFound, "slot", ref.String())
	}
	return b, nil
}

// Len returns the number of instances in the graph.
func (g *Graph) Len() int {
	return len(g.instances)
}

func (g *Graph) report(d domain.Diagnostic) {
	if g.sink == nil {
		return
	}
	if d.Time.IsZero() {
		d.Time = time.Now()
	}
	g.sink.Report(d)
}

func (g *Graph) nextUse() uint64 {
	g.use++
	return g.use
}

type noopMetrics struct{}

func (noopMetrics) FrameEvaluated(time.Duration, bool) {}
func (noopMetrics) Recomputed(string, bool)            {}
func (noopMetrics) CacheLookup(bool)                   {}
func (noopMetrics) Compiled(time.Duration, bool)       {}
func (noopMetrics) Invalidated(int)                    {}
