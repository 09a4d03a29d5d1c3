package esbuild

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/exportmap/internal/core/ports"
)

// NodeID is the unique identifier for the esbuild bundler Graft node.
const NodeID graft.ID = "adapter.bundler"

func init() {
	graft.Register(graft.Node[ports.Bundler]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Bundler, error) {
			return NewBundler(), nil
		},
	})
}
