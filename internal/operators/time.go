package operators

import (
	"context"
	"math"

	"go.trai.ch/pulse/internal/core/domain"
)

// Names of the time operators.
const (
	TimeName        = "Time"
	SineName        = "Sine"
	AccumulatorName = "Accumulator"
	TimeRemapName   = "TimeRemap"
)

// NewTime returns the Time symbol. Its outputs report the time bases of the context it
// is evaluated in and change on every tick.
func NewTime() *domain.Symbol {
	local, fx := Slot(TimeName, "LocalTime"), Slot(TimeName, "LocalFxTime")
	seconds := Slot(TimeName, "Seconds")
	return define(TimeName).
		out("Time", Float, domain.TriggerAnimated).
		out("LocalTime", Float, domain.TriggerAnimated).
		out("LocalFxTime", Float, domain.TriggerAnimated).
		out("Seconds", Float, domain.TriggerAnimated).
		build(func(domain.OperatorEnv) domain.Operator { return timeOp{local: local, fx: fx, seconds: seconds} })
}

type timeOp struct {
	local, fx, seconds domain.SlotID
}

func (o timeOp) Compute(_ context.Context, output domain.SlotID, ec domain.EvalContext, _ domain.Inputs) (any, error) {
	switch output {
	case o.local:
		return ec.LocalTime, nil
	case o.fx:
		return ec.LocalFxTime, nil
	case o.seconds:
		return ec.SecondsFromBars(ec.LocalTime), nil
	default:
		return ec.Time, nil
	}
}

// NewSine returns the Sine symbol, an oscillator over local time measured in bars:
// Offset + Amplitude * sin(2π (LocalTime * Frequency + Phase)).
func NewSine() *domain.Symbol {
	freq, amp := Slot(SineName, "Frequency"), Slot(SineName, "Amplitude")
	phase, offset := Slot(SineName, "Phase"), Slot(SineName, "Offset")
	return define(SineName).
		in("Frequency", Float, 1.0).
		in("Amplitude", Float, 1.0).
		in("Phase", Float, 0.0).
		in("Offset", Float, 0.0).
		out("Result", Float, domain.TriggerAnimated).
		build(stateless(func(ec domain.EvalContext, in domain.Inputs) (any, error) {
			t := ec.LocalTime*domain.Input[float64](in, freq) + domain.Input[float64](in, phase)
			return domain.Input[float64](in, offset) + domain.Input[float64](in, amp)*math.Sin(2*math.Pi*t), nil
		}))
}

// NewAccumulator returns the Accumulator symbol. It integrates Increment per bar of
// effect time and holds its total per instance. Reset clears the total.
func NewAccumulator() *domain.Symbol {
	inc, reset := Slot(AccumulatorName, "Increment"), Slot(AccumulatorName, "Reset")
	return define(AccumulatorName).
		in("Increment", Float, 1.0).
		in("Reset", Bool, false).
		out("Result", Float, domain.TriggerAnimated).
		build(func(domain.OperatorEnv) domain.Operator {
			return &accumulatorOp{increment: inc, reset: reset}
		})
}

type accumulatorOp struct {
	increment, reset domain.SlotID
	total            float64
	last             float64
	started          bool
}

func (o *accumulatorOp) Compute(_ context.Context, _ domain.SlotID, ec domain.EvalContext, in domain.Inputs) (any, error) {
	now := ec.LocalFxTime
	switch {
	case domain.Input[bool](in, o.reset):
		o.total = 0
	case o.started:
		if dt := now - o.last; dt > 0 {
			o.total += domain.Input[float64](in, o.increment) * dt
		}
	}
	o.last, o.started = now, true
	return o.total, nil
}

// NewTimeRemap returns the TimeRemap symbol. Its Value input is evaluated with local
// time scaled by Scale and shifted by Offset; the param inputs are read in the caller's
// context.
func NewTimeRemap() *domain.Symbol {
	value := Slot(TimeRemapName, "Value")
	offset, scale := Slot(TimeRemapName, "Offset"), Slot(TimeRemapName, "Scale")
	return define(TimeRemapName).
		param("Offset", Float, 0.0).
		param("Scale", Float, 1.0).
		in("Value", Float, 0.0).
		out("Result", Float, domain.TriggerNone).
		build(func(domain.OperatorEnv) domain.Operator {
			return timeRemapOp{value: value, offset: offset, scale: scale}
		})
}

type timeRemapOp struct {
	value, offset, scale domain.SlotID
}

func (o timeRemapOp) TransformContext(ec domain.EvalContext, params domain.Inputs) domain.EvalContext {
	t := domain.TimeTransform{
		Offset: domain.Input[float64](params, o.offset),
		Scale:  domain.Input[float64](params, o.scale),
	}
	return t.Apply(ec)
}

func (o timeRemapOp) Compute(_ context.Context, _ domain.SlotID, _ domain.EvalContext, in domain.Inputs) (any, error) {
	return domain.Input[float64](in, o.value), nil
}
