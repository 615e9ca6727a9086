package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pulse/internal/core/ports"
)

// NodeID is the unique identifier for the compile store Graft node.
const NodeID graft.ID = "adapter.compile_store"

func init() {
	graft.Register(graft.Node[ports.CompileStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.CompileStore, error) {
			return NewStore(), nil
		},
	})
}
