package ports

import "go.trai.ch/exportmap/internal/core/domain"

// PackageLoader reads package descriptors.
//
//go:generate mockgen -source=package_loader.go -destination=mocks/mock_package_loader.go -package=mocks
type PackageLoader interface {
	// Load parses dir/package.json. The exports field keeps its declaration order.
	Load(dir string) (*domain.Package, error)
}
