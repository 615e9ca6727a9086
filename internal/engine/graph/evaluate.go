package graph

import (
	"context"
	"fmt"
	"reflect"

	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/zerr"
)

// cellState is the memo of one cell under one evaluation context.
type cellState struct {
	ec       domain.EvalContext
	value    any
	hasValue bool
	stamp    domain.Stamp
	// rev is the graph revision the state was last verified against.
	rev uint64
	// verified is the graph change sequence the state was last verified against.
	verified uint64
	// changed is the change sequence of the last value change.
	changed uint64
	failed  bool
	err     error
	used    uint64
	// failedPull is the top level pull during which the last recompute failed.
	failedPull uint64
}

// state returns the memo for ec, creating it and evicting the least recently used
// memo when the cell already holds limit contexts.
func (c *Cell) state(ec domain.EvalContext, use uint64, limit int) *cellState {
	for _, s := range c.states {
		if s.ec == ec {
			s.used = use
			return s
		}
	}
	s := &cellState{ec: ec, used: use}
	if c.flag.Trigger == domain.TriggerNone {
		// Cells that do not read the context directly start from their newest memo.
		// The verification pass still pulls every input under the new context.
		if prev := c.latest(); prev != nil {
			s.value, s.hasValue = prev.value, prev.hasValue
			s.stamp = prev.stamp
			s.verified = prev.verified
			s.changed = prev.changed
		}
	}
	if len(c.states) < limit {
		c.states = append(c.states, s)
		return s
	}
	oldest := 0
	for i, st := range c.states {
		if st.used < c.states[oldest].used {
			oldest = i
		}
	}
	c.states[oldest] = s
	return s
}

// latest returns the most recently used memo holding a good value.
func (c *Cell) latest() *cellState {
	var best *cellState
	for _, s := range c.states {
		if s.hasValue && !s.failed && (best == nil || s.used > best.used) {
			best = s
		}
	}
	return best
}

// valueFor returns the memoized value for ec, falling back to the last good value.
func (c *Cell) valueFor(ec domain.EvalContext) any {
	for _, s := range c.states {
		if s.ec == ec && s.hasValue {
			return s.value
		}
	}
	return c.last
}

// GetValue returns the value of an output cell under ec, recomputing stale upstream
// cells first. Recompute failures are reported as diagnostics and leave the previous
// value in place; only topology problems are returned as errors.
func (g *Graph) GetValue(ctx context.Context, ref domain.SlotRef, ec domain.EvalContext) (any, error) {
	c, err := g.Cell(ref)
	if err != nil {
		return nil, err
	}
	if len(g.stack) == 0 {
		g.pulls++
	}
	st, err := g.pull(ctx, c, ec)
	if err != nil {
		return nil, err
	}
	if !st.hasValue {
		return c.last, nil
	}
	return st.value, nil
}

// Failure returns the recompute error behind the value GetValue last returned for ref
// under ec, or nil when that evaluation succeeded.
func (g *Graph) Failure(ref domain.SlotRef, ec domain.EvalContext) error {
	c, err := g.Cell(ref)
	if err != nil {
		return err
	}
	for _, s := range c.states {
		if s.ec == ec && s.failed {
			return s.err
		}
	}
	return nil
}

// Value is GetValue converted to T.
func Value[T any](ctx context.Context, g *Graph, ref domain.SlotRef, ec domain.EvalContext) (T, error) {
	var zero T
	v, err := g.GetValue(ctx, ref, ec)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, zerr.With(zerr.With(domain.ErrTypeMismatch, "slot", g.label(ref)), "type", reflect.TypeOf(v).String())
	}
	return t, nil
}

func (g *Graph) pull(ctx context.Context, c *Cell, ec domain.EvalContext) (*cellState, error) {
	now := g.clock.Current()
	st := c.state(ec, g.nextUse(), g.contextLimit)
	// Composite outputs always re-mirror their forward so triggers behind them are honored.
	if !c.owner.IsComposite() && st.rev == g.rev && st.stamp.Valid() && st.stamp.Tick == now &&
		!st.failed && !c.flag.Stale(st.stamp, now) {
		return st, nil
	}
	// A failed cell is retried once per top level pull, not once per consumer.
	if !c.owner.IsComposite() && st.failed && st.failedPull == g.pulls && st.rev == g.rev && st.stamp.Tick == now {
		return st, nil
	}

	key := visitKey{ref: c.Ref, ec: ec}
	if _, busy := g.visiting[key]; busy {
		return nil, g.buildCycleError(g.stack, c.Ref)
	}
	g.visiting[key] = struct{}{}
	g.stack = append(g.stack, c.Ref)
	defer func() {
		delete(g.visiting, key)
		g.stack = g.stack[:len(g.stack)-1]
	}()

	if c.owner.IsComposite() {
		return st, g.pullForward(ctx, c, st, ec, now)
	}
	return st, g.pullLeaf(ctx, c, st, ec, now)
}

// pullForward mirrors the child output behind a composite output, evaluated under the
// composite time transform.
func (g *Graph) pullForward(ctx context.Context, c *Cell, st *cellState, ec domain.EvalContext, now domain.Tick) error {
	if c.forward.IsZero() {
		return zerr.With(domain.ErrUnforwardedOutput, "output", g.label(c.Ref))
	}
	src, err := g.Cell(c.forward)
	if err != nil {
		return err
	}
	sst, err := g.pull(ctx, src, c.owner.Symbol.Transform.Apply(ec))
	if err != nil {
		return err
	}

	st.value, st.hasValue = sst.value, sst.hasValue
	st.changed = sst.changed
	st.failed = sst.failed
	st.err = sst.err
	st.stamp = c.flag.Clean(now)
	st.rev = g.rev
	st.verified = g.seq
	if sst.hasValue {
		c.last, c.hasLast = sst.value, true
	}
	return nil
}

func (g *Graph) pullLeaf(ctx context.Context, c *Cell, st *cellState, ec domain.EvalContext, now domain.Tick) error {
	inst := c.owner
	deps := g.dependencies(c)
	in := &inputReader{g: g, inst: inst, paramEC: ec, valueEC: ec, pulled: make(map[domain.SlotID][]any, len(deps))}

	var newest uint64
	if t, ok := inst.op.(domain.ContextTransformer); ok {
		in.split = true
		for _, b := range deps {
			if !b.Def.Param {
				continue
			}
			changed, values, err := g.pullBinding(ctx, b, ec)
			if err != nil {
				return err
			}
			newest = max(newest, changed)
			in.pulled[b.Def.ID] = values
		}
		in.valueEC = t.TransformContext(ec, &inputReader{g: g, inst: inst, paramEC: ec, valueEC: ec, pulled: in.pulled})
	}
	for _, b := range deps {
		if in.split && b.Def.Param {
			continue
		}
		changed, values, err := g.pullBinding(ctx, b, in.valueEC)
		if err != nil {
			return err
		}
		newest = max(newest, changed)
		in.pulled[b.Def.ID] = values
	}

	stale := !st.hasValue || st.failed || c.flag.Stale(st.stamp, now) || newest > st.verified
	if !stale {
		st.stamp = c.flag.Clean(now)
		st.rev = g.rev
		st.verified = g.seq
		return nil
	}

	v, err := inst.op.Compute(ctx, c.Def.ID, ec, in)
	g.metrics.Recomputed(inst.Symbol.Name, err != nil)
	if err != nil {
		st.failed = true
		st.err = err
		st.failedPull = g.pulls
		st.stamp = c.flag.Clean(now)
		st.rev = g.rev
		if !st.hasValue && c.hasLast {
			st.value, st.hasValue = c.last, true
		}
		g.report(domain.Diagnostic{
			Severity:  domain.SeverityError,
			Subsystem: domain.SubsystemOperator,
			Message:   fmt.Sprintf("%s: %v", g.label(c.Ref), err),
			Instance:  inst.ID,
			Err:       zerr.Wrap(err, domain.ErrRecomputeFailed.Error()),
		})
		return nil
	}

	// Every successful recompute is a change; outputs may be mutated in place.
	g.seq++
	st.changed = g.seq
	st.value, st.hasValue = v, true
	st.failed = false
	st.err = nil
	st.stamp = c.flag.Clean(now)
	st.rev = g.rev
	st.verified = g.seq
	c.last, c.hasLast = v, true
	return nil
}

// pullBinding brings every source of b up to date under ec. It returns the newest
// change sequence seen on the binding or its sources, and the source values exactly
// as they were pulled.
func (g *Graph) pullBinding(ctx context.Context, b *Binding, ec domain.EvalContext) (uint64, []any, error) {
	newest := b.changed
	if len(b.sources) == 0 {
		if b.Def.Multi {
			return newest, nil, nil
		}
		return newest, []any{b.literal}, nil
	}
	values := make([]any, 0, len(b.sources))
	for _, src := range b.sources {
		if c, ok := g.cells[src]; ok {
			st, err := g.pull(ctx, c, ec)
			if err != nil {
				return 0, nil, err
			}
			newest = max(newest, st.changed)
			var v any
			if st.hasValue {
				v = st.value
			}
			values = append(values, v)
			continue
		}
		if pb, ok := g.bindings[src]; ok {
			changed, forwarded, err := g.pullBinding(ctx, pb, ec)
			if err != nil {
				return 0, nil, err
			}
			newest = max(newest, changed)
			values = append(values, forwarded...)
			continue
		}
		return 0, nil, zerr.With(zerr.With(domain.ErrSlotNotFound, "source", src.String()), "input", g.label(b.Ref))
	}
	return newest, values, nil
}

// dependencies returns the bindings an output reads, in declaration order.
func (g *Graph) dependencies(c *Cell) []*Binding {
	inst := c.owner
	if c.Def.DependsOn == nil {
		return inst.inputs
	}
	deps := make([]*Binding, 0, len(c.Def.DependsOn))
	for _, b := range inst.inputs {
		for _, id := range c.Def.DependsOn {
			if b.Def.ID == id {
				deps = append(deps, b)
				break
			}
		}
	}
	return deps
}

func dependsOn(c *Cell, b *Binding) bool {
	if c.Def.DependsOn == nil {
		return true
	}
	for _, id := range c.Def.DependsOn {
		if id == b.Def.ID {
			return true
		}
	}
	return false
}

// resolve returns the memoized source values of b under ec. It serves inputs an
// output does not declare as dependencies, which are never pulled for it.
func (g *Graph) resolve(b *Binding, ec domain.EvalContext) []any {
	if len(b.sources) == 0 {
		if b.Def.Multi {
			return nil
		}
		return []any{b.literal}
	}
	out := make([]any, 0, len(b.sources))
	for _, src := range b.sources {
		if c, ok := g.cells[src]; ok {
			out = append(out, c.valueFor(ec))
			continue
		}
		if pb, ok := g.bindings[src]; ok {
			out = append(out, g.resolve(pb, ec)...)
		}
	}
	return out
}

// inputReader implements domain.Inputs for one recompute.
type inputReader struct {
	g       *Graph
	inst    *Instance
	paramEC domain.EvalContext
	valueEC domain.EvalContext
	split   bool
	// pulled holds the values of every binding pulled for this recompute.
	pulled map[domain.SlotID][]any
}

func (r *inputReader) binding(id domain.SlotID) (*Binding, domain.EvalContext, bool) {
	for _, b := range r.inst.inputs {
		if b.Def.ID == id {
			if r.split && b.Def.Param {
				return b, r.paramEC, true
			}
			return b, r.valueEC, true
		}
	}
	return nil, r.valueEC, false
}

func (r *inputReader) Value(id domain.SlotID) any {
	values := r.Values(id)
	if len(values) == 0 {
		return nil
	}
	return values[0]
}

func (r *inputReader) Values(id domain.SlotID) []any {
	if values, ok := r.pulled[id]; ok {
		return values
	}
	b, ec, ok := r.binding(id)
	if !ok {
		return nil
	}
	return r.g.resolve(b, ec)
}

func (r *inputReader) Connected(id domain.SlotID) bool {
	b, _, ok := r.binding(id)
	return ok && len(b.sources) > 0
}
