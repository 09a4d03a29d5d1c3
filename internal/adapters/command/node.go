package command

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/exportmap/internal/adapters/shell"
	"go.trai.ch/exportmap/internal/core/ports"
)

// NodeID is the unique identifier for the command bundler Graft node.
const NodeID graft.ID = "adapter.command_bundler"

func init() {
	graft.Register(graft.Node[*Bundler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID},
		Run: func(ctx context.Context) (*Bundler, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			return NewBundler(executor), nil
		},
	})
}
