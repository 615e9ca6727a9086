package domain

import (
	"context"
	"reflect"
)

// Inputs gives a recompute function read access to the resolved values of its inputs.
type Inputs interface {
	// Value returns the first source value of an input, or its literal when unconnected.
	Value(id SlotID) any
	// Values returns every source value of an input in connection order.
	// An unconnected single input yields its literal; an unconnected multi-input yields nothing.
	Values(id SlotID) []any
	// Connected reports whether the input has at least one source.
	Connected(id SlotID) bool
}

// Operator computes the outputs of a leaf instance.
type Operator interface {
	Compute(ctx context.Context, output SlotID, ec EvalContext, in Inputs) (any, error)
}

// ContextTransformer is implemented by operators that evaluate their non-param inputs
// under a different context.
type ContextTransformer interface {
	TransformContext(ec EvalContext, params Inputs) EvalContext
}

// Disposer is implemented by operators that hold resources past their removal.
type Disposer interface {
	Dispose()
}

// OperatorEnv is handed to an operator factory when an instance is created.
type OperatorEnv struct {
	Instance InstanceID
	Name     string
	Symbol   *Symbol
	// Invalidate marks one output of the instance stale. It must only be called on the
	// evaluation goroutine.
	Invalidate func(output SlotID)
	// Resources is nil when the graph runs without a resource cache.
	Resources ResourceProvider
}

// Input reads a single input and converts it to T. It returns the zero value when the
// resolved value has a different type.
func Input[T any](in Inputs, id SlotID) T {
	v, _ := in.Value(id).(T)
	return v
}

// InputList reads a multi-input and keeps the values that convert to T.
func InputList[T any](in Inputs, id SlotID) []T {
	values := in.Values(id)
	out := make([]T, 0, len(values))
	for _, v := range values {
		if t, ok := v.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// TypeOf returns the reflect.Type of T, including interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// Assignable reports whether a value of type from can feed an input of type to.
// A nil type accepts anything. Interface-typed sources are accepted and checked when read.
func Assignable(from, to reflect.Type) bool {
	if to == nil || from == nil {
		return true
	}
	if from.Kind() == reflect.Interface {
		return true
	}
	return from.AssignableTo(to)
}
