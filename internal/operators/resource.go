package operators

import (
	"context"
	"encoding/json"

	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/pulse/internal/engine/resource"
	"go.trai.ch/zerr"
)

// Names of the resource operators.
const (
	ShaderName = "Shader"
	ParamsName = "Params"
)

// NewShader returns the Shader symbol. Source is a file found in the resource folders,
// or the program text itself when IsSourceCode is set. The Shader output holds the
// compiled artifact and is invalidated whenever the resource cache recompiles it.
func NewShader() *domain.Symbol {
	slots := resourceSlots{
		source:     Slot(ShaderName, "Source"),
		entryPoint: Slot(ShaderName, "EntryPoint"),
		stage:      Slot(ShaderName, "Stage"),
		debugName:  Slot(ShaderName, "DebugName"),
		inline:     Slot(ShaderName, "IsSourceCode"),
		output:     Slot(ShaderName, "Shader"),
	}
	return define(ShaderName).
		in("Source", String, "").
		in("EntryPoint", String, "main").
		in("Stage", String, string(domain.StageFragment)).
		in("DebugName", String, "").
		in("IsSourceCode", Bool, false).
		out("Shader", Artifact, domain.TriggerNone).
		build(func(env domain.OperatorEnv) domain.Operator {
			return &shaderOp{res: resourceOp{env: env, slots: slots}}
		})
}

type shaderOp struct {
	res resourceOp
}

func (o *shaderOp) Compute(ctx context.Context, _ domain.SlotID, _ domain.EvalContext, in domain.Inputs) (any, error) {
	return o.res.artifact(ctx, in, "")
}

func (o *shaderOp) Dispose() {
	o.res.release()
}

// NewParams returns the Params symbol. It compiles a CUE parameter program and outputs
// the value at EntryPoint decoded from JSON: numbers as float64, objects as map[string]any.
func NewParams() *domain.Symbol {
	slots := resourceSlots{
		source:     Slot(ParamsName, "Source"),
		entryPoint: Slot(ParamsName, "EntryPoint"),
		debugName:  Slot(ParamsName, "DebugName"),
		inline:     Slot(ParamsName, "IsSourceCode"),
		output:     Slot(ParamsName, "Value"),
	}
	return define(ParamsName).
		in("Source", String, "").
		in("EntryPoint", String, "").
		in("DebugName", String, "").
		in("IsSourceCode", Bool, false).
		out("Value", Any, domain.TriggerNone).
		build(func(env domain.OperatorEnv) domain.Operator {
			return &paramsOp{res: resourceOp{env: env, slots: slots}}
		})
}

type paramsOp struct {
	res resourceOp
	fp  domain.Fingerprint
	val any
}

func (o *paramsOp) Compute(ctx context.Context, _ domain.SlotID, _ domain.EvalContext, in domain.Inputs) (any, error) {
	art, err := o.res.artifact(ctx, in, domain.StageCue)
	if err != nil {
		return nil, err
	}
	if art.Fingerprint == o.fp && o.val != nil {
		return o.val, nil
	}
	var v any
	if err := json.Unmarshal(art.Bytes, &v); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to decode parameters"), "resource", art.DebugName)
	}
	o.fp, o.val = art.Fingerprint, v
	return v, nil
}

func (o *paramsOp) Dispose() {
	o.res.release()
}

// resourceSlots names the inputs a resource operator reads. A zero stage slot means the
// stage is fixed by the operator.
type resourceSlots struct {
	source, entryPoint, stage, debugName, inline, output domain.SlotID
}

// resourceOp holds one handle on the resource cache and swaps it when the key changes.
type resourceOp struct {
	env    domain.OperatorEnv
	slots  resourceSlots
	key    domain.ResourceKey
	handle domain.ResourceHandle
}

func (r *resourceOp) keyFrom(in domain.Inputs, stage domain.Stage) domain.ResourceKey {
	if stage == "" {
		stage = domain.Stage(domain.Input[string](in, r.slots.stage))
	}
	return domain.ResourceKey{
		Source:     domain.Input[string](in, r.slots.source),
		Inline:     domain.Input[bool](in, r.slots.inline),
		EntryPoint: domain.Input[string](in, r.slots.entryPoint),
		Stage:      stage,
	}
}

// artifact returns the artifact for the current inputs. A failed recompile keeps
// returning the last good artifact; the cache reports the failure.
func (r *resourceOp) artifact(ctx context.Context, in domain.Inputs, stage domain.Stage) (*domain.Artifact, error) {
	if r.env.Resources == nil {
		return nil, zerr.With(domain.ErrNoCompiler, "instance", r.env.Name)
	}

	key := r.keyFrom(in, stage)
	if r.handle == nil || key != r.key {
		name, err := resource.DebugName(r.env.Symbol.Name, key, r.slots.output, domain.Input[string](in, r.slots.debugName))
		if err != nil {
			return nil, err
		}
		r.release()
		output := r.slots.output
		h, err := r.env.Resources.Acquire(key, name, func() { r.env.Invalidate(output) })
		if err != nil {
			return nil, err
		}
		r.key, r.handle = key, h
	}

	res := r.handle.Get(ctx)
	if res.Artifact == nil {
		if res.Err == nil {
			return nil, zerr.With(domain.ErrCompileFailed, "resource", key.String())
		}
		return nil, res.Err
	}
	return res.Artifact, nil
}

func (r *resourceOp) release() {
	if r.handle != nil {
		r.handle.Release()
		r.handle = nil
	}
}
