// Package compiler implements the resource compilers: an in-process CUE evaluator, an
// external command runner and a router that picks one by stage.
package compiler

import (
	"context"

	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/pulse/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Compiler = (*Router)(nil)

// Router dispatches compile requests by stage.
type Router struct {
	stages   map[domain.Stage]ports.Compiler
	fallback ports.Compiler
}

// NewRouter creates a Router sending every stage without a dedicated compiler to fallback.
// A nil fallback rejects unknown stages.
func NewRouter(fallback ports.Compiler) *Router {
	return &Router{
		stages:   make(map[domain.Stage]ports.Compiler),
		fallback: fallback,
	}
}

// Handle routes stage to c.
func (r *Router) Handle(stage domain.Stage, c ports.Compiler) *Router {
	r.stages[stage] = c
	return r
}

// Compile forwards req to the compiler registered for its stage.
func (r *Router) Compile(ctx context.Context, req domain.CompileRequest) ([]byte, error) {
	c, ok := r.stages[req.Key.Stage]
	if !ok {
		c = r.fallback
	}
	if c == nil {
		return nil, zerr.With(domain.ErrNoCompiler, "stage", string(req.Key.Stage))
	}
	return c.Compile(ctx, req)
}

// NewDefault routes the cue stage to the CUE evaluator and every other stage to the
// external command compiler.
func NewDefault(logger ports.Logger) *Router {
	return NewRouter(NewShell(logger)).Handle(domain.StageCue, NewCue())
}
