package graph_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/pulse/internal/core/ports/mocks"
	"go.trai.ch/pulse/internal/engine/graph"
	"go.uber.org/mock/gomock"
)

func chain(a, b, c *testLeaf) *domain.Symbol {
	return newComposite("Chain").
		child("a", a.Symbol, map[string]any{"In": 1.0}).
		child("b", b.Symbol, nil).
		child("c", c.Symbol, nil).
		connect("a.Out", "b.In").
		connect("b.Out", "c.In").
		output("Out", floatType, "c.Out").
		build()
}

func TestGetValue_Idempotent(t *testing.T) {
	a, b, c := passLeaf("A"), passLeaf("B"), passLeaf("C")
	g := instantiate(t, chain(a, b, c))
	ec := domain.NewEvalContext(0, 120)

	assert.InDelta(t, 1.0, valueOf[float64](t, g, ".Out", ec), 1e-9)
	assert.InDelta(t, 1.0, valueOf[float64](t, g, ".Out", ec), 1e-9)

	assert.Equal(t, 1, a.Calls)
	assert.Equal(t, 1, b.Calls)
	assert.Equal(t, 1, c.Calls)
}

func TestGetValue_PropagatesChanges(t *testing.T) {
	a, b, c := passLeaf("A"), passLeaf("B"), passLeaf("C")
	g := instantiate(t, chain(a, b, c))
	ec := domain.NewEvalContext(0, 120)
	valueOf[float64](t, g, ".Out", ec)

	require.NoError(t, g.SetDefault(lookup(t, g, "a.In"), 5.0))
	assert.InDelta(t, 5.0, valueOf[float64](t, g, ".Out", ec), 1e-9)
	assert.Equal(t, 2, a.Calls)
	assert.Equal(t, 2, b.Calls)
	assert.Equal(t, 2, c.Calls)

	t.Run("equal result still reaches consumers", func(t *testing.T) {
		require.NoError(t, g.SetDefault(lookup(t, g, "a.In"), 5.0))
		assert.InDelta(t, 5.0, valueOf[float64](t, g, ".Out", ec), 1e-9)
		assert.Equal(t, 3, a.Calls)
		assert.Equal(t, 3, b.Calls)
		assert.Equal(t, 3, c.Calls)
	})
}

type counter struct {
	n float64
}

func TestGetValue_MutatedPointerOutput(t *testing.T) {
	buf := &counter{}
	src := newLeaf("Buffer", domain.TriggerNone, domain.TypeOf[*counter](),
		[]slotSpec{{name: "In", typ: floatType, def: 1.0}},
		func(_ domain.EvalContext, in domain.Inputs, slot func(string) domain.SlotID) (any, error) {
			buf.n = domain.Input[float64](in, slot("In"))
			return buf, nil
		})
	read := newLeaf("Read", domain.TriggerNone, floatType,
		[]slotSpec{{name: "In", typ: domain.TypeOf[*counter]()}},
		func(_ domain.EvalContext, in domain.Inputs, slot func(string) domain.SlotID) (any, error) {
			c, _ := in.Value(slot("In")).(*counter)
			if c == nil {
				return 0.0, nil
			}
			return c.n, nil
		})
	sym := newComposite("Patch").
		child("src", src.Symbol, nil).
		child("read", read.Symbol, nil).
		connect("src.Out", "read.In").
		output("Out", floatType, "read.Out").
		build()
	g := instantiate(t, sym)
	ec := domain.NewEvalContext(0, 120)

	assert.InDelta(t, 1.0, valueOf[float64](t, g, ".Out", ec), 1e-9)
	require.NoError(t, g.SetDefault(lookup(t, g, "src.In"), 5.0))
	assert.InDelta(t, 5.0, valueOf[float64](t, g, ".Out", ec), 1e-9)
	assert.Equal(t, 2, src.Calls)
	assert.Equal(t, 2, read.Calls)
}

func TestGetValue_Diamond(t *testing.T) {
	src, left, right, join := passLeaf("Src"), passLeaf("Left"), passLeaf("Right"), addLeaf("Join")
	sym := newComposite("Diamond").
		child("src", src.Symbol, map[string]any{"In": 2.0}).
		child("left", left.Symbol, nil).
		child("right", right.Symbol, nil).
		child("join", join.Symbol, nil).
		connect("src.Out", "left.In").
		connect("src.Out", "right.In").
		connect("left.Out", "join.A").
		connect("right.Out", "join.B").
		output("Out", floatType, "join.Out").
		build()
	g := instantiate(t, sym)
	ec := domain.NewEvalContext(0, 120)

	assert.InDelta(t, 4.0, valueOf[float64](t, g, ".Out", ec), 1e-9)
	assert.Equal(t, 1, src.Calls)

	require.NoError(t, g.SetDefault(lookup(t, g, "src.In"), 3.0))
	assert.InDelta(t, 6.0, valueOf[float64](t, g, ".Out", ec), 1e-9)
	assert.Equal(t, 2, src.Calls)
	assert.Equal(t, 2, left.Calls)
	assert.Equal(t, 2, right.Calls)
	assert.Equal(t, 2, join.Calls)
}

func TestGetValue_DiamondFailureComputesOnce(t *testing.T) {
	errBroken := errors.New("broken")
	src := newLeaf("Broken", domain.TriggerNone, floatType, nil,
		func(domain.EvalContext, domain.Inputs, func(string) domain.SlotID) (any, error) {
			return nil, errBroken
		})
	left, right, join := passLeaf("Left"), passLeaf("Right"), addLeaf("Join")
	sym := newComposite("Diamond").
		child("src", src.Symbol, nil).
		child("left", left.Symbol, nil).
		child("right", right.Symbol, nil).
		child("join", join.Symbol, nil).
		connect("src.Out", "left.In").
		connect("src.Out", "right.In").
		connect("left.Out", "join.A").
		connect("right.Out", "join.B").
		output("Out", floatType, "join.Out").
		build()
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockDiagnosticSink(ctrl)
	sink.EXPECT().Report(gomock.Any()).Do(func(d domain.Diagnostic) {
		assert.Equal(t, domain.SubsystemOperator, d.Subsystem)
		require.ErrorIs(t, d.Err, errBroken)
	}).Times(2)
	g := instantiate(t, sym, graph.WithSink(sink))
	ec := domain.NewEvalContext(0, 120)

	_, err := g.GetValue(context.Background(), lookup(t, g, ".Out"), ec)
	require.NoError(t, err)
	assert.Equal(t, 1, src.Calls, "both branches share one failed recompute")

	_, err = g.GetValue(context.Background(), lookup(t, g, ".Out"), ec)
	require.NoError(t, err)
	assert.Equal(t, 2, src.Calls, "a failed cell is retried on the next pull")
}

func TestGetValue_CycleDetected(t *testing.T) {
	a, b, c := passLeaf("A"), passLeaf("B"), passLeaf("C")
	g := instantiate(t, chain(a, b, c))
	in, err := g.Binding(lookup(t, g, "a.In"))
	require.NoError(t, err)
	graph.ForceSource(in, lookup(t, g, "c.Out"))

	_, err = g.GetValue(context.Background(), lookup(t, g, ".Out"), domain.NewEvalContext(0, 120))
	require.ErrorContains(t, err, domain.ErrCycleDetected.Error())
	assert.Equal(t, 0, a.Calls)

	t.Run("guard is released after the error", func(t *testing.T) {
		require.NoError(t, g.DisconnectAll(lookup(t, g, "a.In")))
		require.NoError(t, g.SetDefault(lookup(t, g, "a.In"), 2.0))
		assert.InDelta(t, 2.0, valueOf[float64](t, g, ".Out", domain.NewEvalContext(0, 120)), 1e-9)
	})
}

func TestGetValue_FailureRetainsLastValue(t *testing.T) {
	errNegative := errors.New("negative input")
	f := newLeaf("Fragile", domain.TriggerNone, floatType,
		[]slotSpec{{name: "In", typ: floatType, def: 1.0}},
		func(_ domain.EvalContext, in domain.Inputs, slot func(string) domain.SlotID) (any, error) {
			v := domain.Input[float64](in, slot("In"))
			if v < 0 {
				return nil, errNegative
			}
			return v * 2, nil
		})
	sym := newComposite("Patch").
		child("f", f.Symbol, nil).
		output("Out", floatType, "f.Out").
		build()
	sink := &recordingSink{}
	g := instantiate(t, sym, graph.WithSink(sink))
	ec := domain.NewEvalContext(0, 120)

	assert.InDelta(t, 2.0, valueOf[float64](t, g, ".Out", ec), 1e-9)
	require.NoError(t, g.Failure(lookup(t, g, ".Out"), ec))

	require.NoError(t, g.SetDefault(lookup(t, g, "f.In"), -1.0))
	assert.InDelta(t, 2.0, valueOf[float64](t, g, ".Out", ec), 1e-9)
	require.ErrorIs(t, g.Failure(lookup(t, g, ".Out"), ec), errNegative)
	require.ErrorIs(t, g.Failure(lookup(t, g, "f.Out"), ec), errNegative)

	require.Len(t, sink.diags, 1)
	d := sink.diags[0]
	assert.Equal(t, domain.SeverityError, d.Severity)
	assert.Equal(t, domain.SubsystemOperator, d.Subsystem)
	assert.Contains(t, d.Message, "f.Out")
	require.ErrorIs(t, d.Err, errNegative)
	inst, err := g.FindInstance("f")
	require.NoError(t, err)
	assert.Equal(t, inst.ID, d.Instance)

	// A failed cell stays dirty and is retried on the next pull.
	assert.InDelta(t, 2.0, valueOf[float64](t, g, ".Out", ec), 1e-9)
	assert.Equal(t, 3, f.Calls)
	assert.Len(t, sink.diags, 2)

	require.NoError(t, g.SetDefault(lookup(t, g, "f.In"), 3.0))
	assert.InDelta(t, 6.0, valueOf[float64](t, g, ".Out", ec), 1e-9)
	require.NoError(t, g.Failure(lookup(t, g, ".Out"), ec))
}

func TestGetValue_ContextSensitivity(t *testing.T) {
	clock := clockLeaf("Clock")
	px, py := passLeaf("PassX"), passLeaf("PassY")
	x := newComposite("X").transform(1, 1).input("In").
		child("p", px.Symbol, nil).
		connect(".In", "p.In").
		output("Out", floatType, "p.Out").
		build()
	y := newComposite("Y").transform(2, 1).input("In").
		child("p", py.Symbol, nil).
		connect(".In", "p.In").
		output("Out", floatType, "p.Out").
		build()
	sym := newComposite("Patch").
		child("clock", clock.Symbol, nil).
		child("x", x, nil).
		child("y", y, nil).
		connect("clock.Out", "x.In").
		connect("clock.Out", "y.In").
		output("X", floatType, "x.Out").
		output("Y", floatType, "y.Out").
		build()
	g := instantiate(t, sym)
	ec := domain.NewEvalContext(1, 120)

	assert.InDelta(t, 2.0, valueOf[float64](t, g, ".X", ec), 1e-9)
	assert.InDelta(t, 3.0, valueOf[float64](t, g, ".Y", ec), 1e-9)
	assert.Equal(t, 2, clock.Calls, "shared upstream evaluates once per context")

	assert.InDelta(t, 2.0, valueOf[float64](t, g, ".X", ec), 1e-9)
	assert.InDelta(t, 3.0, valueOf[float64](t, g, ".Y", ec), 1e-9)
	assert.Equal(t, 2, clock.Calls)
	assert.Equal(t, 1, px.Calls)
	assert.Equal(t, 1, py.Calls)
}

func TestGetValue_Triggers(t *testing.T) {
	clock := clockLeaf("Clock")
	konst := passLeaf("Const")
	always := newLeaf("Always", domain.TriggerAlways, floatType, nil,
		func(domain.EvalContext, domain.Inputs, func(string) domain.SlotID) (any, error) {
			return 1.0, nil
		})
	sym := newComposite("Patch").
		child("clock", clock.Symbol, nil).
		child("konst", konst.Symbol, map[string]any{"In": 7.0}).
		child("always", always.Symbol, nil).
		output("T", floatType, "clock.Out").
		output("K", floatType, "konst.Out").
		output("A", floatType, "always.Out").
		build()
	g := instantiate(t, sym)

	ec := domain.NewEvalContext(0, 120)
	valueOf[float64](t, g, ".T", ec)
	valueOf[float64](t, g, ".K", ec)

	t.Run("animated recomputes on a new tick", func(t *testing.T) {
		g.Clock().Advance()
		valueOf[float64](t, g, ".T", ec)
		assert.Equal(t, 2, clock.Calls)
		valueOf[float64](t, g, ".T", ec)
		assert.Equal(t, 2, clock.Calls)
	})

	t.Run("non-animated survives new ticks and contexts", func(t *testing.T) {
		g.Clock().Advance()
		next := domain.NewEvalContext(0.5, 120)
		assert.InDelta(t, 0.5, valueOf[float64](t, g, ".T", next), 1e-9)
		assert.InDelta(t, 7.0, valueOf[float64](t, g, ".K", next), 1e-9)
		assert.Equal(t, 1, konst.Calls)
	})

	t.Run("always recomputes on every pull", func(t *testing.T) {
		valueOf[float64](t, g, ".A", ec)
		valueOf[float64](t, g, ".A", ec)
		assert.Equal(t, 2, always.Calls)
	})
}

func TestGetValue_ContextLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "revisited context stays memoized", limit: 4, want: 3},
		{name: "evicted context recomputes", limit: 2, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := clockLeaf("Clock")
			sym := newComposite("Patch").
				child("clock", clock.Symbol, nil).
				output("T", floatType, "clock.Out").
				build()
			g := instantiate(t, sym, graph.WithContextLimit(tt.limit))

			for _, bars := range []float64{1, 2, 3, 1} {
				assert.InDelta(t, bars, valueOf[float64](t, g, ".T", domain.NewEvalContext(bars, 120)), 1e-9)
			}
			assert.Equal(t, tt.want, clock.Calls)
		})
	}
}

type remapOp struct {
	offset domain.SlotID
	in     domain.SlotID
}

func (o *remapOp) TransformContext(ec domain.EvalContext, params domain.Inputs) domain.EvalContext {
	ec.LocalTime += domain.Input[float64](params, o.offset)
	return ec
}

func (o *remapOp) Compute(_ context.Context, _ domain.SlotID, _ domain.EvalContext, in domain.Inputs) (any, error) {
	return domain.Input[float64](in, o.in), nil
}

// remapSymbol reads In under the context shifted by its Offset parameter.
func remapSymbol() *domain.Symbol {
	id := domain.NewSymbolID("Remap")
	return &domain.Symbol{
		ID:   id,
		Name: "Remap",
		Inputs: []domain.InputDef{
			{ID: domain.NewSlotID(id, "In"), Name: "In", Type: floatType, Default: 0.0},
			{ID: domain.NewSlotID(id, "Offset"), Name: "Offset", Type: floatType, Default: 3.0, Param: true},
		},
		Outputs: []domain.OutputDef{{ID: domain.NewSlotID(id, "Out"), Name: "Out", Type: floatType}},
		New: func(domain.OperatorEnv) domain.Operator {
			return &remapOp{offset: domain.NewSlotID(id, "Offset"), in: domain.NewSlotID(id, "In")}
		},
	}
}

func TestGetValue_ContextTransformer(t *testing.T) {
	clock := clockLeaf("Clock")
	sym := newComposite("Patch").
		child("clock", clock.Symbol, nil).
		child("remap", remapSymbol(), nil).
		connect("clock.Out", "remap.In").
		output("Out", floatType, "remap.Out").
		output("T", floatType, "clock.Out").
		build()
	g := instantiate(t, sym)
	ec := domain.NewEvalContext(1, 120)

	assert.InDelta(t, 4.0, valueOf[float64](t, g, ".Out", ec), 1e-9)
	assert.InDelta(t, 1.0, valueOf[float64](t, g, ".T", ec), 1e-9)

	require.NoError(t, g.SetDefault(lookup(t, g, "remap.Offset"), 0.5))
	assert.InDelta(t, 1.5, valueOf[float64](t, g, ".Out", ec), 1e-9)
}

func TestGetValue_MoreContextsThanLimit(t *testing.T) {
	clock := clockLeaf("Clock")
	sum := newLeaf("Sum", domain.TriggerNone, floatType,
		[]slotSpec{
			{name: "Direct", typ: floatType, def: 0.0},
			{name: "Shifted", typ: floatType, multi: true},
		},
		func(_ domain.EvalContext, in domain.Inputs, slot func(string) domain.SlotID) (any, error) {
			total := domain.Input[float64](in, slot("Direct")) * 1000
			for _, v := range in.Values(slot("Shifted")) {
				total += v.(float64)
			}
			return total, nil
		})
	b := newComposite("Patch").
		child("clock", clock.Symbol, nil).
		child("sum", sum.Symbol, nil).
		connect("clock.Out", "sum.Direct")
	for i, name := range []string{"r1", "r2", "r3", "r4"} {
		b.child(name, remapSymbol(), map[string]any{"Offset": float64(10 * (i + 1))}).
			connect("clock.Out", name+".In").
			connect(name+".Out", "sum.Shifted")
	}
	g := instantiate(t, b.output("Out", floatType, "sum.Out").build())

	// 1*1000 + 11 + 21 + 31 + 41
	assert.InDelta(t, 1104.0, valueOf[float64](t, g, ".Out", domain.NewEvalContext(1, 120)), 1e-9)
	assert.Equal(t, 5, clock.Calls)
}

func TestGetValue_UnforwardedOutput(t *testing.T) {
	a := passLeaf("A")
	sym := newComposite("Patch").
		child("a", a.Symbol, nil).
		output("Out", floatType, "").
		build()
	g := instantiate(t, sym)

	_, err := g.GetValue(context.Background(), lookup(t, g, ".Out"), domain.NewEvalContext(0, 120))
	require.ErrorContains(t, err, domain.ErrUnforwardedOutput.Error())
}

func TestInvalidate(t *testing.T) {
	a, b, c := passLeaf("A"), passLeaf("B"), passLeaf("C")
	g := instantiate(t, chain(a, b, c))
	ec := domain.NewEvalContext(0, 120)
	valueOf[float64](t, g, ".Out", ec)

	require.NoError(t, g.Invalidate(lookup(t, g, "a.Out")))
	valueOf[float64](t, g, ".Out", ec)
	assert.Equal(t, 2, a.Calls)
	assert.Equal(t, 2, b.Calls)
	assert.Equal(t, 2, c.Calls)

	require.ErrorContains(t, g.Invalidate(lookup(t, g, "a.In")), domain.ErrSlotNotFound.Error())
}
