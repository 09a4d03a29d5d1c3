// Package matrix runs compatibility scenarios: it computes the report the resolver
// expects for each scenario, drives the bundler and runtime to observe what they
// actually resolve, and diffs the two.
package matrix

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"go.trai.ch/exportmap/internal/core/domain"
	"go.trai.ch/exportmap/internal/core/ports"
	"go.trai.ch/exportmap/internal/engine/resolver"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Span attribute keys.
const (
	AttrPreset     = "exportmap.preset"
	AttrConditions = "exportmap.conditions"
	AttrBundler    = "exportmap.bundler"
	AttrRuntime    = "exportmap.runtime"
)

// Options control a single matrix run.
type Options struct {
	// NoCache ignores stored run records.
	NoCache bool
	// DryRun computes expectations without running anything.
	DryRun bool
	// Jobs overrides the harness parallelism when positive.
	Jobs int
}

// Runner executes scenarios of a harness.
type Runner struct {
	bundler  ports.Bundler
	command  ports.Bundler
	executor ports.Executor
	hasher   ports.Hasher
	store    ports.ResultStore
	tracer   ports.Tracer
	now      func() time.Time
}

// NewRunner creates a Runner.
// bundler builds in process; command runs the scenario's build command.
func NewRunner(
	bundler ports.Bundler,
	command ports.Bundler,
	executor ports.Executor,
	hasher ports.Hasher,
	store ports.ResultStore,
	tracer ports.Tracer,
) *Runner {
	return &Runner{
		bundler:  bundler,
		command:  command,
		executor: executor,
		hasher:   hasher,
		store:    store,
		tracer:   tracer,
		now:      time.Now,
	}
}

type plan struct {
	scenario domain.Scenario
	preset   domain.Preset
	err      error
}

// Run executes the scenarios named in names, or all of them, against pkg.
// Every selected scenario yields an outcome, in harness order. The error joins
// domain.ErrScenarioFailed with each failure when at least one scenario failed.
func (r *Runner) Run(
	ctx context.Context,
	h *domain.Harness,
	pkg *domain.Package,
	names []string,
	opts Options,
) ([]domain.Outcome, error) {
	selected, err := h.Select(names)
	if err != nil {
		return nil, err
	}

	plans := make([]plan, len(selected))
	scenarioNames := make([]string, len(selected))
	conditions := make(map[string][]string, len(selected))
	for i, s := range selected {
		s.Normalize()
		p, perr := domain.PresetFor(s)
		plans[i] = plan{scenario: s, preset: p, err: perr}
		scenarioNames[i] = s.Name
		conditions[s.Name] = p.Active.Keys()
	}

	targets := names
	if len(targets) == 0 {
		targets = []string{domain.ReservedScenarioName}
	}
	r.tracer.EmitPlan(ctx, scenarioNames, conditions, targets)

	outcomes := make([]domain.Outcome, len(plans))

	var g errgroup.Group
	g.SetLimit(parallelism(h, opts))
	for i, p := range plans {
		g.Go(func() error {
			outcomes[i] = r.runScenario(ctx, h, pkg, p, opts)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, o := range outcomes {
		if o.Failed() {
			errs = append(errs, o.Err)
		}
	}
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return outcomes, nil
	}

	failed := zerr.With(zerr.Wrap(domain.ErrScenarioFailed, "matrix run failed"), "failed", len(errs))
	return outcomes, errors.Join(append([]error{failed}, errs...)...)
}

func parallelism(h *domain.Harness, opts Options) int {
	switch {
	case opts.Jobs > 0:
		return opts.Jobs
	case h.Parallelism > 0:
		return h.Parallelism
	default:
		return runtime.NumCPU()
	}
}

func (r *Runner) runScenario(
	ctx context.Context,
	h *domain.Harness,
	pkg *domain.Package,
	p plan,
	opts Options,
) domain.Outcome {
	s := p.scenario
	started := r.now()

	ctx, span := r.tracer.Start(ctx, s.Name,
		ports.WithAttribute(AttrBundler, string(s.Bundler)),
		ports.WithAttribute(AttrRuntime, string(s.Runtime)),
	)
	defer span.End()

	out := domain.Outcome{
		Scenario: s.Name,
		Preset:   p.preset.Name,
		Active:   p.preset.Active.Keys(),
	}
	fail := func(err error) domain.Outcome {
		span.RecordError(err)
		out.Status = domain.StatusFailed
		out.Err = err
		out.Message = err.Error()
		out.Duration = r.now().Sub(started)
		return out
	}

	if p.err != nil {
		return fail(p.err)
	}
	span.SetAttribute(AttrPreset, p.preset.Name)
	span.SetAttribute(AttrConditions, out.Active)

	exports := pkg.Exports
	if s.Exports != nil {
		exports = *s.Exports
	}

	expected, err := resolver.ResolveAll(exports, h.Subpaths, p.preset.Active)
	if err != nil {
		return fail(zerr.With(err, "scenario", s.Name))
	}
	out.Expected = expected

	if s.Expect != nil {
		if drift := domain.DiffReports(s.Expect, expected); len(drift) > 0 {
			out.Mismatches = drift
			return fail(zerr.With(zerr.Wrap(domain.ErrExpectationDrift, "expect block is stale"), "scenario", s.Name))
		}
	}

	if opts.DryRun {
		out.Status = domain.StatusPlanned
		out.Duration = r.now().Sub(started)
		return out
	}

	fingerprint, err := r.hasher.Fingerprint(h, s, p.preset.Active)
	if err != nil {
		return fail(zerr.With(err, "scenario", s.Name))
	}

	if !opts.NoCache {
		if rec := r.cached(h, s.Name, fingerprint, span); rec != nil {
			span.SetAttribute(ports.CachedAttribute, true)
			out.Status = domain.StatusCached
			out.Observed = rec.Observed
			out.Duration = r.now().Sub(started)
			return out
		}
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	observed, err := r.observe(ctx, h, pkg, exports, s, span)
	if err != nil {
		return fail(err)
	}
	out.Observed = observed
	out.Mismatches = domain.DiffReports(expected, observed)

	rec := domain.RunRecord{
		Scenario:    s.Name,
		Fingerprint: fingerprint,
		Passed:      len(out.Mismatches) == 0,
		Observed:    observed,
		Timestamp:   r.now().UTC(),
	}
	if err := r.store.Put(h.Root, rec); err != nil {
		return fail(zerr.With(err, "scenario", s.Name))
	}

	if !rec.Passed {
		err := zerr.Wrap(domain.ErrReportMismatch, "observed resolution differs from expected")
		err = zerr.With(err, "scenario", s.Name)
		return fail(zerr.With(err, "mismatches", len(out.Mismatches)))
	}

	out.Status = domain.StatusPassed
	out.Duration = r.now().Sub(started)
	return out
}

// cached returns the stored record when it passed with the same fingerprint.
// An unreadable record counts as a miss.
func (r *Runner) cached(h *domain.Harness, name, fingerprint string, span ports.Span) *domain.RunRecord {
	rec, err := r.store.Get(h.Root, name)
	if err != nil {
		_, _ = fmt.Fprintf(span, "ignoring run record: %v\n", err)
		return nil
	}
	if rec == nil || !rec.Passed || rec.Fingerprint != fingerprint {
		return nil
	}
	return rec
}

// observe bundles and runs s inside a scoped output directory that is removed on return.
func (r *Runner) observe(
	ctx context.Context,
	h *domain.Harness,
	pkg *domain.Package,
	exports domain.ExportMap,
	s domain.Scenario,
	span ports.Span,
) (domain.Report, error) {
	outDir, cleanup, err := scopedDir(h.Root, s.Name)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	req := ports.BundleRequest{
		Scenario:   s,
		Root:       h.Root,
		Entry:      h.Entry,
		OutDir:     outDir,
		PackageDir: h.PackageDir,
	}

	var bundled ports.BundleResult
	if s.Bundler != domain.BundlerNone {
		b, err := r.pick(s)
		if err != nil {
			return nil, err
		}
		bundled, err = b.Bundle(ctx, req, span)
		if err != nil {
			return nil, err
		}
	}

	if len(s.Run) > 0 {
		return r.runtimeReport(ctx, req, span)
	}

	if len(bundled.Observed) > 0 {
		return ObservedReport(pkg, exports, h.Subpaths, h.Root, bundled.Observed), nil
	}

	return nil, zerr.With(zerr.Wrap(domain.ErrNothingObserved, "no run command and no bundler observations"), "scenario", s.Name)
}

func (r *Runner) pick(s domain.Scenario) (ports.Bundler, error) {
	if len(s.Build) > 0 && r.command != nil {
		return r.command, nil
	}
	if r.bundler != nil && r.bundler.Supports(s.Bundler) {
		return r.bundler, nil
	}
	err := zerr.With(zerr.Wrap(domain.ErrBundlerNotConfigured, "scenario has no build command"), "scenario", s.Name)
	return nil, zerr.With(err, "bundler", string(s.Bundler))
}

func (r *Runner) runtimeReport(ctx context.Context, req ports.BundleRequest, span ports.Span) (domain.Report, error) {
	s := req.Scenario
	args, err := domain.ExpandArgs(s.Run, req.Vars())
	if err != nil {
		return nil, zerr.With(err, "scenario", s.Name)
	}

	var stdout bytes.Buffer
	cmd := &domain.Command{
		Name: s.Name + ":run",
		Args: args,
		Dir:  req.Root,
		Env:  s.Env,
	}
	if err := r.executor.Execute(ctx, cmd, &stdout, span); err != nil {
		return nil, zerr.With(err, "scenario", s.Name)
	}

	report, err := ParseReport(stdout.Bytes())
	if err != nil {
		_, _ = span.Write(stdout.Bytes())
		return nil, zerr.With(err, "scenario", s.Name)
	}
	return report, nil
}

func scopedDir(root, scenario string) (string, func(), error) {
	parent := filepath.Join(root, domain.DefaultDistPath())
	if err := os.MkdirAll(parent, domain.DirPerm); err != nil {
		return "", nil, zerr.With(zerr.Wrap(err, domain.ErrOutputDirFailed.Error()), "path", parent)
	}

	dir, err := os.MkdirTemp(parent, scenario+"-*")
	if err != nil {
		return "", nil, zerr.With(zerr.Wrap(err, domain.ErrOutputDirFailed.Error()), "path", parent)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}
