package operators

import (
	"context"
	"reflect"

	"go.trai.ch/pulse/internal/core/domain"
)

// Value types used by the built-in operators.
var (
	Float    = domain.TypeOf[float64]()
	String   = domain.TypeOf[string]()
	Bool     = domain.TypeOf[bool]()
	Any      = domain.TypeOf[any]()
	Artifact = domain.TypeOf[*domain.Artifact]()
)

// Slot returns the id of a slot of a built-in symbol.
func Slot(symbol, slot string) domain.SlotID {
	return domain.NewSlotID(domain.NewSymbolID(symbol), slot)
}

// builder assembles a leaf symbol.
type builder struct {
	sym *domain.Symbol
}

func define(name string) *builder {
	return &builder{sym: &domain.Symbol{ID: domain.NewSymbolID(name), Name: name}}
}

func (b *builder) in(name string, typ reflect.Type, def any) *builder {
	b.sym.Inputs = append(b.sym.Inputs, domain.InputDef{
		ID: domain.NewSlotID(b.sym.ID, name), Name: name, Type: typ, Default: def,
	})
	return b
}

func (b *builder) multi(name string, typ reflect.Type) *builder {
	b.sym.Inputs = append(b.sym.Inputs, domain.InputDef{
		ID: domain.NewSlotID(b.sym.ID, name), Name: name, Type: typ, Multi: true,
	})
	return b
}

func (b *builder) param(name string, typ reflect.Type, def any) *builder {
	b.sym.Inputs = append(b.sym.Inputs, domain.InputDef{
		ID: domain.NewSlotID(b.sym.ID, name), Name: name, Type: typ, Default: def, Param: true,
	})
	return b
}

func (b *builder) out(name string, typ reflect.Type, trigger domain.Trigger, dependsOn ...string) *builder {
	def := domain.OutputDef{ID: domain.NewSlotID(b.sym.ID, name), Name: name, Type: typ, Trigger: trigger}
	if len(dependsOn) > 0 {
		def.DependsOn = make([]domain.SlotID, len(dependsOn))
		for i, in := range dependsOn {
			def.DependsOn[i] = domain.NewSlotID(b.sym.ID, in)
		}
	}
	b.sym.Outputs = append(b.sym.Outputs, def)
	return b
}

func (b *builder) build(factory func(env domain.OperatorEnv) domain.Operator) *domain.Symbol {
	b.sym.New = factory
	return b.sym
}

// opFunc adapts a pure function to domain.Operator.
type opFunc func(ec domain.EvalContext, in domain.Inputs) (any, error)

func (f opFunc) Compute(_ context.Context, _ domain.SlotID, ec domain.EvalContext, in domain.Inputs) (any, error) {
	return f(ec, in)
}

// stateless wraps a pure function as an operator factory.
func stateless(f opFunc) func(domain.OperatorEnv) domain.Operator {
	return func(domain.OperatorEnv) domain.Operator { return f }
}
