package pkgjson

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/exportmap/internal/core/ports"
)

// NodeID is the unique identifier for the package loader Graft node.
const NodeID graft.ID = "adapter.package_loader"

func init() {
	graft.Register(graft.Node[ports.PackageLoader]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.PackageLoader, error) {
			return NewLoader(), nil
		},
	})
}
