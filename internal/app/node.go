package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pulse/internal/adapters/cas"         //nolint:depguard // Wired in app layer
	"go.trai.ch/pulse/internal/adapters/compiler"    //nolint:depguard // Wired in app layer
	"go.trai.ch/pulse/internal/adapters/config"      //nolint:depguard // Wired in app layer
	"go.trai.ch/pulse/internal/adapters/diagnostics" //nolint:depguard // Wired in app layer
	"go.trai.ch/pulse/internal/adapters/fs"          //nolint:depguard // Wired in app layer
	"go.trai.ch/pulse/internal/adapters/logger"      //nolint:depguard // Wired in app layer
	"go.trai.ch/pulse/internal/adapters/metrics"     //nolint:depguard // Wired in app layer
	"go.trai.ch/pulse/internal/adapters/telemetry"   //nolint:depguard // Wired in app layer
	"go.trai.ch/pulse/internal/adapters/watcher"     //nolint:depguard // Wired in app layer
	"go.trai.ch/pulse/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			compiler.NodeID,
			fs.ResolverNodeID,
			fs.HasherNodeID,
			cas.NodeID,
			diagnostics.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
			metrics.NodeID,
			watcher.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log}, nil
		},
	})
}

//nolint:cyclop // one branch per dependency
func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	comp, err := graft.Dep[ports.Compiler](ctx)
	if err != nil {
		return nil, err
	}
	resolver, err := graft.Dep[ports.SourceResolver](ctx)
	if err != nil {
		return nil, err
	}
	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}
	store, err := graft.Dep[ports.CompileStore](ctx)
	if err != nil {
		return nil, err
	}
	sink, err := graft.Dep[*diagnostics.Sink](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}
	prom, err := graft.Dep[*metrics.Prometheus](ctx)
	if err != nil {
		return nil, err
	}
	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, comp, resolver, hasher, store, sink, log).
		WithTracer(tracer).
		WithMetrics(prom).
		WithWatcher(w), nil
}
