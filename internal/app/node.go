package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/exportmap/internal/adapters/cas"     //nolint:depguard // Wired in app layer
	"go.trai.ch/exportmap/internal/adapters/command" //nolint:depguard // Wired in app layer
	"go.trai.ch/exportmap/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"go.trai.ch/exportmap/internal/adapters/esbuild" //nolint:depguard // Wired in app layer
	"go.trai.ch/exportmap/internal/adapters/fs"      //nolint:depguard // Wired in app layer
	"go.trai.ch/exportmap/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"go.trai.ch/exportmap/internal/adapters/pkgjson" //nolint:depguard // Wired in app layer
	"go.trai.ch/exportmap/internal/adapters/shell"   //nolint:depguard // Wired in app layer
	"go.trai.ch/exportmap/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/exportmap/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			pkgjson.NodeID,
			esbuild.NodeID,
			command.NodeID,
			shell.NodeID,
			fs.HasherNodeID,
			cas.NodeID,
			logger.NodeID,
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
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewComponents(app, log), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	packages, err := graft.Dep[ports.PackageLoader](ctx)
	if err != nil {
		return nil, err
	}

	bundler, err := graft.Dep[ports.Bundler](ctx)
	if err != nil {
		return nil, err
	}

	cmd, err := graft.Dep[*command.Bundler](ctx)
	if err != nil {
		return nil, err
	}

	executor, err := graft.Dep[ports.Executor](ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.ResultStore](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	newWatcher, err := graft.Dep[ports.WatcherFactory](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, packages, bundler, cmd, executor, hasher, store, log, newWatcher), nil
}
