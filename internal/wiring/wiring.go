// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/exportmap/internal/adapters/cas"
	_ "go.trai.ch/exportmap/internal/adapters/command"
	_ "go.trai.ch/exportmap/internal/adapters/config"
	_ "go.trai.ch/exportmap/internal/adapters/esbuild"
	_ "go.trai.ch/exportmap/internal/adapters/fs"
	_ "go.trai.ch/exportmap/internal/adapters/logger"
	_ "go.trai.ch/exportmap/internal/adapters/pkgjson"
	_ "go.trai.ch/exportmap/internal/adapters/shell"
	_ "go.trai.ch/exportmap/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/exportmap/internal/app"
)
