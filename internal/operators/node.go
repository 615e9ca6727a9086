package operators

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pulse/internal/core/ports"
)

// NodeID is the unique identifier for the operator library Graft node.
const NodeID graft.ID = "operators.library"

func init() {
	graft.Register(graft.Node[ports.SymbolLibrary]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.SymbolLibrary, error) {
			return NewLibrary(), nil
		},
	})
}
