package ports

import (
	"context"
	"io"

	"go.trai.ch/exportmap/internal/core/domain"
)

// BundleRequest describes one bundle of a scenario entry point.
type BundleRequest struct {
	Scenario domain.Scenario
	// Root is the harness root; Entry is relative to it.
	Root       string
	Entry      string
	OutDir     string
	PackageDir string
}

// Vars returns the template fields for req's commands.
func (req BundleRequest) Vars() domain.CommandVars {
	return domain.CommandVars{
		OutDir:     req.OutDir,
		Root:       req.Root,
		Entry:      req.Entry,
		PackageDir: req.PackageDir,
		Scenario:   req.Scenario.Name,
		Format:     req.Scenario.Format,
		Platform:   req.Scenario.Platform,
	}
}

// BundleResult is what a bundler produced.
type BundleResult struct {
	// Output is the emitted entry file, ready to be run.
	Output string
	// Observed lists the package imports the bundler resolved.
	Observed []domain.Observation
}

// Bundler builds a scenario entry point.
//
//go:generate mockgen -source=bundler.go -destination=mocks/mock_bundler.go -package=mocks
type Bundler interface {
	// Supports reports whether the bundler can build scenarios targeting b.
	Supports(b domain.Bundler) bool

	// Bundle builds req and writes diagnostics to log.
	Bundle(ctx context.Context, req BundleRequest, log io.Writer) (BundleResult, error)
}
