package ports

import "go.trai.ch/exportmap/internal/core/domain"

// ConfigLoader defines the interface for loading the harness configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads exportmap.yaml from cwd or the nearest parent and returns the harness.
	// Without a config file the default scenario matrix rooted at cwd is returned.
	Load(cwd string) (*domain.Harness, error)

	// DiscoverRoot walks up from cwd to the directory holding exportmap.yaml.
	DiscoverRoot(cwd string) (string, error)
}
