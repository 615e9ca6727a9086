package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pulse/internal/adapters/logger"
	"go.trai.ch/pulse/internal/core/ports"
	"go.trai.ch/pulse/internal/operators"
)

// NodeID is the unique identifier for the patch loader Graft node.
const NodeID graft.ID = "adapter.config_loader"

func init() {
	graft.Register(graft.Node[ports.ConfigLoader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, operators.NodeID},
		Run: func(ctx context.Context) (ports.ConfigLoader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			symbols, err := graft.Dep[ports.SymbolLibrary](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(log, symbols), nil
		},
	})
}
