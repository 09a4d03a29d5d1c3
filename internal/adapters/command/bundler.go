// Package command bundles scenarios by running their configured build command.
package command

import (
	"context"
	"io"
	"path/filepath"

	"go.trai.ch/exportmap/internal/core/domain"
	"go.trai.ch/exportmap/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Bundler = (*Bundler)(nil)

// Bundler shells out to the scenario's build command.
type Bundler struct {
	executor ports.Executor
}

// NewBundler creates a Bundler running builds through executor.
func NewBundler(executor ports.Executor) *Bundler {
	return &Bundler{executor: executor}
}

// Supports reports whether b names a bundler at all.
// Whether a build command exists is only known per scenario.
func (b *Bundler) Supports(name domain.Bundler) bool {
	return name != domain.BundlerNone
}

// Bundle renders and runs the build command, streaming its output to log.
// The command is expected to write index.<ext> into req.OutDir.
func (b *Bundler) Bundle(ctx context.Context, req ports.BundleRequest, log io.Writer) (ports.BundleResult, error) {
	s := req.Scenario
	if len(s.Build) == 0 {
		err := zerr.With(zerr.Wrap(domain.ErrBundlerNotConfigured, "scenario has no build command"), "scenario", s.Name)
		return ports.BundleResult{}, zerr.With(err, "bundler", string(s.Bundler))
	}

	args, err := domain.ExpandArgs(s.Build, req.Vars())
	if err != nil {
		return ports.BundleResult{}, zerr.With(err, "scenario", s.Name)
	}

	cmd := &domain.Command{
		Name:   s.Name + ":build",
		Args:   args,
		Dir:    req.Root,
		Env:    s.Env,
		Stream: true,
	}
	if err := b.executor.Execute(ctx, cmd, log, log); err != nil {
		return ports.BundleResult{}, zerr.With(zerr.Wrap(err, domain.ErrBundleFailed.Error()), "scenario", s.Name)
	}

	return ports.BundleResult{
		Output: filepath.Join(req.OutDir, "index"+s.Format.Extension()),
	}, nil
}
