package operators

import (
	"go.trai.ch/pulse/internal/core/domain"
)

// Names of the arithmetic operators.
const (
	ValueName    = "Value"
	AddName      = "Add"
	MultiplyName = "Multiply"
	SumName      = "Sum"
)

// NewValue returns the Value symbol: a constant that forwards its Value input.
func NewValue() *domain.Symbol {
	value := Slot(ValueName, "Value")
	return define(ValueName).
		in("Value", Float, 0.0).
		out("Result", Float, domain.TriggerNone).
		build(stateless(func(_ domain.EvalContext, in domain.Inputs) (any, error) {
			return domain.Input[float64](in, value), nil
		}))
}

// NewAdd returns the Add symbol: A + B.
func NewAdd() *domain.Symbol {
	a, b := Slot(AddName, "A"), Slot(AddName, "B")
	return define(AddName).
		in("A", Float, 0.0).
		in("B", Float, 0.0).
		out("Result", Float, domain.TriggerNone).
		build(stateless(func(_ domain.EvalContext, in domain.Inputs) (any, error) {
			return domain.Input[float64](in, a) + domain.Input[float64](in, b), nil
		}))
}

// NewMultiply returns the Multiply symbol: A * B.
func NewMultiply() *domain.Symbol {
	a, b := Slot(MultiplyName, "A"), Slot(MultiplyName, "B")
	return define(MultiplyName).
		in("A", Float, 1.0).
		in("B", Float, 1.0).
		out("Result", Float, domain.TriggerNone).
		build(stateless(func(_ domain.EvalContext, in domain.Inputs) (any, error) {
			return domain.Input[float64](in, a) * domain.Input[float64](in, b), nil
		}))
}

// NewSum returns the Sum symbol: the total of every value connected to its multi-input.
func NewSum() *domain.Symbol {
	values := Slot(SumName, "Values")
	return define(SumName).
		multi("Values", Float).
		out("Result", Float, domain.TriggerNone).
		build(stateless(func(_ domain.EvalContext, in domain.Inputs) (any, error) {
			total := 0.0
			for _, v := range domain.InputList[float64](in, values) {
				total += v
			}
			return total, nil
		}))
}
