package domain_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pulse/internal/core/domain"
)

func TestTick_After(t *testing.T) {
	tests := []struct {
		name string
		a, b domain.Tick
		want bool
	}{
		{name: "later", a: 5, b: 4, want: true},
		{name: "equal", a: 5, b: 5, want: false},
		{name: "earlier", a: 4, b: 5, want: false},
		{name: "wraparound", a: 2, b: math.MaxUint64 - 1, want: true},
		{name: "wraparound reversed", a: math.MaxUint64 - 1, b: 2, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.After(tt.b))
		})
	}
}

func TestClock_Advance(t *testing.T) {
	c := domain.NewClock()
	assert.Equal(t, domain.Tick(0), c.Current())
	assert.Equal(t, domain.Tick(1), c.Advance())
	assert.Equal(t, domain.Tick(2), c.Advance())
	assert.Equal(t, domain.Tick(2), c.Current())

	wrapped := domain.NewClockAt(math.MaxUint64)
	next := wrapped.Advance()
	assert.Equal(t, domain.Tick(0), next)
	assert.True(t, next.After(math.MaxUint64))
}

func TestChangeFlag_Stale(t *testing.T) {
	t.Run("never validated", func(t *testing.T) {
		f := domain.NewChangeFlag(domain.TriggerNone)
		assert.True(t, f.Stale(domain.Stamp{}, 1))
	})

	t.Run("clean until invalidated", func(t *testing.T) {
		f := domain.NewChangeFlag(domain.TriggerNone)
		s := f.Clean(1)
		assert.False(t, f.Stale(s, 1))
		assert.False(t, f.Stale(s, 7), "non-animated cells survive tick advances")

		f.Invalidate()
		assert.True(t, f.Stale(s, 1))
		assert.False(t, f.Stale(f.Clean(1), 1))
	})

	t.Run("animated is stale on a new tick", func(t *testing.T) {
		f := domain.NewChangeFlag(domain.TriggerAnimated)
		s := f.Clean(3)
		assert.False(t, f.Stale(s, 3))
		assert.True(t, f.Stale(s, 4))
	})

	t.Run("always is stale on every pull", func(t *testing.T) {
		f := domain.NewChangeFlag(domain.TriggerAlways)
		assert.True(t, f.Stale(f.Clean(3), 3))
	})
}

func TestTimeTransform_Apply(t *testing.T) {
	ec := domain.NewEvalContext(2, 120)

	assert.Equal(t, ec, domain.TimeTransform{}.Apply(ec))
	assert.Equal(t, ec, domain.TimeTransform{Scale: 1}.Apply(ec))

	child := domain.TimeTransform{Offset: 1, Scale: 0.5}.Apply(ec)
	assert.InDelta(t, 2.0, child.LocalTime, 1e-9)
	assert.InDelta(t, 2.0, child.LocalFxTime, 1e-9)
	assert.InDelta(t, 0.5, child.Speed, 1e-9)
	assert.InDelta(t, 2.0, child.Time, 1e-9, "global time is never remapped")
}

func TestEvalContext_SecondsFromBars(t *testing.T) {
	ec := domain.NewEvalContext(0, 120)
	assert.InDelta(t, 2.0, ec.SecondsFromBars(1), 1e-9)
	assert.InDelta(t, 1.0, domain.BarsFromSeconds(2, 120), 1e-9)

	zero := domain.EvalContext{}
	assert.InDelta(t, 2.0, zero.SecondsFromBars(1), 1e-9)
}

func TestIDs_Deterministic(t *testing.T) {
	sym := domain.NewSymbolID("Sine")
	assert.Equal(t, sym, domain.NewSymbolID("Sine"))
	assert.NotEqual(t, sym, domain.NewSymbolID("Cosine"))

	slot := domain.NewSlotID(sym, "Result")
	assert.Equal(t, slot, domain.NewSlotID(sym, "Result"))

	root := domain.RootInstanceID(sym)
	child := domain.NewChildID(sym, "a")
	assert.Equal(t, domain.ChildInstanceID(root, child), domain.ChildInstanceID(root, child))
	assert.NotEqual(t, domain.ChildInstanceID(root, child), domain.ChildInstanceID(root, domain.NewChildID(sym, "b")))
	assert.False(t, root.IsZero())
	assert.True(t, domain.InstanceID{}.IsZero())
}

func TestSymbol_Validate(t *testing.T) {
	leafID := domain.NewSymbolID("Leaf")
	leaf := &domain.Symbol{
		ID:      leafID,
		Name:    "Leaf",
		Inputs:  []domain.InputDef{{ID: domain.NewSlotID(leafID, "In"), Name: "In"}},
		Outputs: []domain.OutputDef{{ID: domain.NewSlotID(leafID, "Out"), Name: "Out"}},
		New:     func(domain.OperatorEnv) domain.Operator { return nil },
	}
	require.NoError(t, leaf.Validate())

	compID := domain.NewSymbolID("Comp")
	childA := domain.NewChildID(compID, "a")
	childB := domain.NewChildID(compID, "b")
	compIn := domain.NewSlotID(compID, "In")
	compOut := domain.NewSlotID(compID, "Out")
	newComposite := func(conns ...domain.Connection) *domain.Symbol {
		return &domain.Symbol{
			ID:      compID,
			Name:    "Comp",
			Inputs:  []domain.InputDef{{ID: compIn, Name: "In"}},
			Outputs: []domain.OutputDef{{ID: compOut, Name: "Out"}},
			Children: []domain.ChildDef{
				{ID: childA, Name: "a", Symbol: leaf},
				{ID: childB, Name: "b", Symbol: leaf},
			},
			Connections: conns,
		}
	}
	leafIn := leaf.Inputs[0].ID
	leafOut := leaf.Outputs[0].ID

	tests := []struct {
		name    string
		conns   []domain.Connection
		wantErr error
	}{
		{
			name: "valid chain",
			conns: []domain.Connection{
				{Source: domain.Endpoint{Slot: compIn}, Target: domain.Endpoint{Child: childA, Slot: leafIn}},
				{Source: domain.Endpoint{Child: childA, Slot: leafOut}, Target: domain.Endpoint{Child: childB, Slot: leafIn}},
				{Source: domain.Endpoint{Child: childB, Slot: leafOut}, Target: domain.Endpoint{Slot: compOut}},
			},
		},
		{
			name: "input straight to output",
			conns: []domain.Connection{
				{Source: domain.Endpoint{Slot: compIn}, Target: domain.Endpoint{Slot: compOut}},
			},
			wantErr: domain.ErrInvalidConnection,
		},
		{
			name: "unknown child slot",
			conns: []domain.Connection{
				{Source: domain.Endpoint{Child: childA, Slot: leafIn}, Target: domain.Endpoint{Child: childB, Slot: leafIn}},
			},
			wantErr: domain.ErrInvalidConnection,
		},
		{
			name: "output forwarded twice",
			conns: []domain.Connection{
				{Source: domain.Endpoint{Child: childA, Slot: leafOut}, Target: domain.Endpoint{Slot: compOut}},
				{Source: domain.Endpoint{Child: childB, Slot: leafOut}, Target: domain.Endpoint{Slot: compOut}},
			},
			wantErr: domain.ErrAlreadyConnected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newComposite(tt.conns...).Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr.Error())
		})
	}
}

func TestSymbol_Validate_DuplicateSlot(t *testing.T) {
	id := domain.NewSymbolID("Dup")
	sym := &domain.Symbol{
		ID:      id,
		Name:    "Dup",
		Inputs:  []domain.InputDef{{ID: domain.NewSlotID(id, "X"), Name: "X"}},
		Outputs: []domain.OutputDef{{ID: domain.NewSlotID(id, "X"), Name: "X"}},
		New:     func(domain.OperatorEnv) domain.Operator { return nil },
	}
	require.ErrorContains(t, sym.Validate(), domain.ErrInvalidSymbol.Error())
}

func TestAssignable(t *testing.T) {
	assert.True(t, domain.Assignable(domain.TypeOf[float64](), domain.TypeOf[float64]()))
	assert.False(t, domain.Assignable(domain.TypeOf[string](), domain.TypeOf[float64]()))
	assert.True(t, domain.Assignable(domain.TypeOf[string](), domain.TypeOf[any]()))
	assert.True(t, domain.Assignable(domain.TypeOf[any](), domain.TypeOf[float64]()))
	assert.True(t, domain.Assignable(nil, domain.TypeOf[float64]()))
}
