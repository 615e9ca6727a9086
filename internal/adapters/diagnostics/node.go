package diagnostics

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pulse/internal/adapters/logger"
	"go.trai.ch/pulse/internal/core/ports"
)

// NodeID is the unique identifier for the diagnostics Graft node.
const NodeID graft.ID = "adapter.diagnostics"

func init() {
	graft.Register(graft.Node[*Sink]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (*Sink, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(log), nil
		},
	})
}
