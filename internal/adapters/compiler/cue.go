package compiler

import (
	"context"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/pulse/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Compiler = (*Cue)(nil)

// Cue compiles CUE parameter programs. The entry point selects the field to export;
// an empty entry point exports the whole program. The artifact is the concrete value
// encoded as JSON.
type Cue struct{}

// NewCue creates a Cue compiler.
func NewCue() *Cue {
	return &Cue{}
}

// Compile evaluates req.Source and exports the entry point value.
func (c *Cue) Compile(ctx context.Context, req domain.CompileRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filename := req.Path
	if filename == "" {
		filename = req.DebugName
	}

	// A cue.Context must not be shared between concurrent compiles.
	cctx := cuecontext.New()
	v := cctx.CompileBytes(req.Source, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "invalid cue source"), "resource", req.DebugName)
	}

	if req.Key.EntryPoint != "" {
		path := cue.ParsePath(req.Key.EntryPoint)
		if err := path.Err(); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "invalid entry point"), "entry", req.Key.EntryPoint)
		}
		v = v.LookupPath(path)
		if !v.Exists() {
			return nil, zerr.With(zerr.New("entry point not found"), "entry", req.Key.EntryPoint)
		}
	}

	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "cue value is not concrete"), "resource", req.DebugName)
	}

	data, err := v.MarshalJSON()
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to export cue value"), "resource", req.DebugName)
	}
	return data, nil
}
