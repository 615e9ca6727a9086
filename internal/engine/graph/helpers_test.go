package graph_test

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/pulse/internal/engine/graph"
)

var (
	floatType  = domain.TypeOf[float64]()
	stringType = domain.TypeOf[string]()
)

type computeFunc func(ec domain.EvalContext, in domain.Inputs, slot func(string) domain.SlotID) (any, error)

// testLeaf is a single output leaf symbol that counts its recomputes.
type testLeaf struct {
	Symbol   *domain.Symbol
	Calls    int
	Disposed int
}

func (l *testLeaf) slot(name string) domain.SlotID {
	return domain.NewSlotID(l.Symbol.ID, name)
}

type testOp struct {
	leaf *testLeaf
	fn   computeFunc
}

func (o *testOp) Compute(_ context.Context, _ domain.SlotID, ec domain.EvalContext, in domain.Inputs) (any, error) {
	o.leaf.Calls++
	return o.fn(ec, in, o.leaf.slot)
}

func (o *testOp) Dispose() {
	o.leaf.Disposed++
}

type slotSpec struct {
	name  string
	typ   reflect.Type
	def   any
	multi bool
	param bool
}

func newLeaf(name string, trigger domain.Trigger, out reflect.Type, inputs []slotSpec, fn computeFunc) *testLeaf {
	id := domain.NewSymbolID(name)
	l := &testLeaf{}
	sym := &domain.Symbol{
		ID:   id,
		Name: name,
		Outputs: []domain.OutputDef{
			{ID: domain.NewSlotID(id, "Out"), Name: "Out", Type: out, Trigger: trigger},
		},
	}
	for _, in := range inputs {
		sym.Inputs = append(sym.Inputs, domain.InputDef{
			ID:      domain.NewSlotID(id, in.name),
			Name:    in.name,
			Type:    in.typ,
			Default: in.def,
			Multi:   in.multi,
			Param:   in.param,
		})
	}
	sym.New = func(domain.OperatorEnv) domain.Operator {
		return &testOp{leaf: l, fn: fn}
	}
	l.Symbol = sym
	return l
}

// passLeaf copies its In input to Out.
func passLeaf(name string) *testLeaf {
	return newLeaf(name, domain.TriggerNone, floatType,
		[]slotSpec{{name: "In", typ: floatType, def: 0.0}},
		func(_ domain.EvalContext, in domain.Inputs, slot func(string) domain.SlotID) (any, error) {
			return domain.Input[float64](in, slot("In")), nil
		})
}

// clockLeaf outputs the local time of the context it is pulled with.
func clockLeaf(name string) *testLeaf {
	return newLeaf(name, domain.TriggerAnimated, floatType, nil,
		func(ec domain.EvalContext, _ domain.Inputs, _ func(string) domain.SlotID) (any, error) {
			return ec.LocalTime, nil
		})
}

func addLeaf(name string) *testLeaf {
	return newLeaf(name, domain.TriggerNone, floatType,
		[]slotSpec{{name: "A", typ: floatType, def: 0.0}, {name: "B", typ: floatType, def: 0.0}},
		func(_ domain.EvalContext, in domain.Inputs, slot func(string) domain.SlotID) (any, error) {
			return domain.Input[float64](in, slot("A")) + domain.Input[float64](in, slot("B")), nil
		})
}

type compositeBuilder struct {
	sym *domain.Symbol
}

func newComposite(name string) *compositeBuilder {
	return &compositeBuilder{sym: &domain.Symbol{ID: domain.NewSymbolID(name), Name: name}}
}

func (b *compositeBuilder) transform(offset, scale float64) *compositeBuilder {
	b.sym.Transform = domain.TimeTransform{Offset: offset, Scale: scale}
	return b
}

func (b *compositeBuilder) input(name string) *compositeBuilder {
	b.sym.Inputs = append(b.sym.Inputs, domain.InputDef{
		ID:      domain.NewSlotID(b.sym.ID, name),
		Name:    name,
		Type:    floatType,
		Default: 0.0,
	})
	return b
}

func (b *compositeBuilder) child(name string, sym *domain.Symbol, defaults map[string]any) *compositeBuilder {
	b.sym.Children = append(b.sym.Children, domain.ChildDef{
		ID:       domain.NewChildID(b.sym.ID, name),
		Name:     name,
		Symbol:   sym,
		Defaults: defaults,
	})
	return b
}

// endpoint parses "child.Slot", or ".Slot" for the composite itself.
func (b *compositeBuilder) endpoint(path string) domain.Endpoint {
	child, slot, _ := strings.Cut(path, ".")
	if child == "" {
		return domain.Endpoint{Slot: domain.NewSlotID(b.sym.ID, slot)}
	}
	cd, ok := b.sym.ChildByName(child)
	if !ok {
		panic("unknown child " + child)
	}
	return domain.Endpoint{Child: cd.ID, Slot: domain.NewSlotID(cd.Symbol.ID, slot)}
}

func (b *compositeBuilder) connect(src, dst string) *compositeBuilder {
	b.sym.Connections = append(b.sym.Connections, domain.Connection{
		Source: b.endpoint(src),
		Target: b.endpoint(dst),
	})
	return b
}

func (b *compositeBuilder) output(name string, typ reflect.Type, src string) *compositeBuilder {
	b.sym.Outputs = append(b.sym.Outputs, domain.OutputDef{
		ID:   domain.NewSlotID(b.sym.ID, name),
		Name: name,
		Type: typ,
	})
	if src != "" {
		b.connect(src, "."+name)
	}
	return b
}

func (b *compositeBuilder) build() *domain.Symbol {
	return b.sym
}

type recordingSink struct {
	diags []domain.Diagnostic
}

func (s *recordingSink) Report(d domain.Diagnostic) {
	s.diags = append(s.diags, d)
}

func instantiate(t *testing.T, sym *domain.Symbol, opts ...graph.Option) *graph.Graph {
	t.Helper()
	g := graph.New(domain.NewClock(), opts...)
	_, err := g.Instantiate(sym)
	require.NoError(t, err)
	return g
}

func lookup(t *testing.T, g *graph.Graph, path string) domain.SlotRef {
	t.Helper()
	ref, err := g.Lookup(path)
	require.NoError(t, err)
	return ref
}

func valueOf[T any](t *testing.T, g *graph.Graph, path string, ec domain.EvalContext) T {
	t.Helper()
	v, err := graph.Value[T](context.Background(), g, lookup(t, g, path), ec)
	require.NoError(t, err)
	return v
}
