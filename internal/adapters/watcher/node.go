package watcher

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pulse/internal/adapters/diagnostics"
	"go.trai.ch/pulse/internal/adapters/fs"
	"go.trai.ch/pulse/internal/core/ports"
)

// NodeID is the unique identifier for the watcher Graft node.
const NodeID graft.ID = "adapter.watcher"

func init() {
	graft.Register(graft.Node[ports.Watcher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.WalkerNodeID, diagnostics.NodeID},
		Run: func(ctx context.Context) (ports.Watcher, error) {
			walker, err := graft.Dep[*fs.Walker](ctx)
			if err != nil {
				return nil, err
			}
			sink, err := graft.Dep[*diagnostics.Sink](ctx)
			if err != nil {
				return nil, err
			}
			w, err := NewWatcher(walker, sink)
			if err != nil {
				return nil, err
			}
			return w, nil
		},
	})
}
