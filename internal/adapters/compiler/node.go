package compiler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pulse/internal/adapters/logger"
	"go.trai.ch/pulse/internal/core/ports"
)

// NodeID is the unique identifier for the compiler Graft node.
const NodeID graft.ID = "adapter.compiler"

func init() {
	graft.Register(graft.Node[ports.Compiler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Compiler, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewDefault(log.With("subsystem", "compiler")), nil
		},
	})
}
