// Package app implements the application layer for exportmap.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/exportmap/internal/adapters/detector"
	"go.trai.ch/exportmap/internal/adapters/linear"
	"go.trai.ch/exportmap/internal/adapters/telemetry"
	"go.trai.ch/exportmap/internal/adapters/tui"
	"go.trai.ch/exportmap/internal/core/domain"
	"go.trai.ch/exportmap/internal/core/ports"
	"go.trai.ch/exportmap/internal/engine/matrix"
	"go.trai.ch/exportmap/internal/engine/resolver"
	"go.trai.ch/exportmap/internal/ui/report"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	packages     ports.PackageLoader
	bundler      ports.Bundler
	command      ports.Bundler
	executor     ports.Executor
	hasher       ports.Hasher
	store        ports.ResultStore
	logger       ports.Logger
	newWatcher   ports.WatcherFactory

	cwd        string
	stdout     io.Writer
	stderr     io.Writer
	detect     func() detector.OutputMode
	teaOptions []tea.ProgramOption
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	packages ports.PackageLoader,
	bundler ports.Bundler,
	command ports.Bundler,
	executor ports.Executor,
	hasher ports.Hasher,
	store ports.ResultStore,
	log ports.Logger,
	newWatcher ports.WatcherFactory,
) *App {
	return &App{
		configLoader: loader,
		packages:     packages,
		bundler:      bundler,
		command:      command,
		executor:     executor,
		hasher:       hasher,
		store:        store,
		logger:       log,
		newWatcher:   newWatcher,
		cwd:          ".",
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		detect:       detector.DetectEnvironment,
	}
}

// WithTeaOptions adds bubbletea program options to the App.
// This is primarily used for testing to disable input/output.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = append(a.teaOptions, opts...)
	return a
}

// WithOutput redirects reports and progress.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithWorkDir sets the directory the harness file is searched from.
func (a *App) WithWorkDir(dir string) *App {
	a.cwd = dir
	return a
}

// ResolveOptions configuration for the Resolve method.
type ResolveOptions struct {
	// PackageDir holds the package.json to resolve against.
	// It defaults to the harness package.
	PackageDir string
	Subpath    string
	Conditions []string
	Explain    bool
	JSON       bool
}

type resolution struct {
	Subpath       string   `json:"subpath"`
	File          string   `json:"file"`
	ConditionPath []string `json:"conditionPath"`
	ResolvedFrom  string   `json:"resolvedFrom"`
}

// Resolve resolves one subpath of a package for the given conditions and prints the result.
func (a *App) Resolve(_ context.Context, opts ResolveOptions) error {
	dir := opts.PackageDir
	if dir == "" {
		h, err := a.configLoader.Load(a.cwd)
		if err != nil {
			return zerr.Wrap(err, "failed to load configuration")
		}
		dir = h.PackageDir
	}

	pkg, err := a.packages.Load(dir)
	if err != nil {
		return err
	}

	subpath := SubpathFor(pkg, opts.Subpath)
	active := domain.NewConditionSet(opts.Conditions...)

	if opts.Explain {
		ex := resolver.Explain(pkg.Exports, subpath, active)
		if opts.JSON {
			if err := a.writeJSON(explanationJSON(ex)); err != nil {
				return err
			}
		} else {
			report.New(a.stdout).Explanation(ex)
		}
		return ex.Err
	}

	res, err := resolver.Resolve(pkg.Exports, subpath, active)
	if err != nil {
		return err
	}
	if opts.JSON {
		return a.writeJSON(resolution{
			Subpath:       res.Subpath,
			File:          res.File,
			ConditionPath: res.ConditionPath,
			ResolvedFrom:  res.Location(),
		})
	}
	report.New(a.stdout).Resolution(res)
	return nil
}

// SubpathFor turns what the user typed into an export map subpath.
// "pkg/client", "client" and "./client" all name "./client"; "pkg" names ".".
func SubpathFor(pkg *domain.Package, input string) string {
	switch {
	case input == "" || input == domain.RootSubpath || input == pkg.Name:
		return domain.RootSubpath
	case pkg.Name != "" && strings.HasPrefix(input, pkg.Name+"/"):
		return "./" + strings.TrimPrefix(input, pkg.Name+"/")
	case strings.HasPrefix(input, "./"):
		return input
	default:
		return "./" + input
	}
}

type stepJSON struct {
	Path     []string `json:"path"`
	Decision string   `json:"decision"`
}

type explanationDoc struct {
	Subpath    string      `json:"subpath"`
	Conditions []string    `json:"conditions"`
	Steps      []stepJSON  `json:"steps"`
	Result     *resolution `json:"result,omitempty"`
	Error      string      `json:"error,omitempty"`
}

func explanationJSON(ex resolver.Explanation) explanationDoc {
	doc := explanationDoc{Subpath: ex.Subpath, Conditions: ex.Active, Steps: []stepJSON{}}
	for _, s := range ex.Steps {
		doc.Steps = append(doc.Steps, stepJSON{Path: s.Path, Decision: string(s.Decision)})
	}
	if ex.Err != nil {
		doc.Error = ex.Err.Error()
		return doc
	}
	doc.Result = &resolution{
		Subpath:       ex.Result.Subpath,
		File:          ex.Result.File,
		ConditionPath: ex.Result.ConditionPath,
		ResolvedFrom:  ex.Result.Location(),
	}
	return doc
}

// ExpectOptions configuration for the Expect method.
type ExpectOptions struct {
	JSON bool
}

type expectation struct {
	Preset     string        `json:"preset"`
	Conditions []string      `json:"conditions"`
	Expected   domain.Report `json:"expected"`
}

// Expect prints the report each scenario is expected to observe, without running anything.
func (a *App) Expect(ctx context.Context, names []string, opts ExpectOptions) error {
	h, pkg, err := a.load()
	if err != nil {
		return err
	}

	runner := matrix.NewRunner(nil, nil, nil, nil, nil, telemetry.NewNoOpTracer())
	outcomes, runErr := runner.Run(ctx, h, pkg, names, matrix.Options{DryRun: true})
	if outcomes == nil {
		return runErr
	}

	if opts.JSON {
		doc := make(map[string]expectation, len(outcomes))
		for _, o := range outcomes {
			doc[o.Scenario] = expectation{Preset: o.Preset, Conditions: o.Active, Expected: o.Expected}
		}
		if err := a.writeJSON(doc); err != nil {
			return err
		}
		return runErr
	}

	p := report.New(a.stdout)
	p.Expectations(outcomes)
	p.Mismatches(outcomes)
	return runErr
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	NoCache bool
	DryRun  bool
	Watch   bool
	// OutputMode is auto, tui, linear or json.
	OutputMode string
	JSON       bool
	Jobs       int
}

// OutputJSON selects machine readable output.
const OutputJSON = "json"

// Run executes the matrix for the named scenarios, or all of them.
// With Watch it reruns after every batch of file changes until ctx is done.
func (a *App) Run(ctx context.Context, names []string, opts RunOptions) error {
	if opts.OutputMode == OutputJSON {
		opts.JSON = true
		opts.OutputMode = ""
	}
	if _, err := detector.ParseMode(opts.OutputMode); err != nil {
		return err
	}
	if opts.JSON {
		if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
			l.SetJSON(true)
		}
	}

	err := a.runOnce(ctx, names, opts)
	if !opts.Watch {
		return err
	}
	if err != nil && !errors.Is(err, domain.ErrScenarioFailed) {
		return err
	}
	return a.watch(ctx, names, opts)
}

func (a *App) load() (*domain.Harness, *domain.Package, error) {
	h, err := a.configLoader.Load(a.cwd)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to load configuration")
	}
	pkg, err := a.packages.Load(h.PackageDir)
	if err != nil {
		return nil, nil, err
	}
	return h, pkg, nil
}

func (a *App) runOnce(ctx context.Context, names []string, opts RunOptions) error {
	h, pkg, err := a.load()
	if err != nil {
		return err
	}

	renderer := a.newRenderer(ctx, opts)

	// Spans reach the renderer through the global provider.
	setupOTel(telemetry.NewBridge(renderer))
	tracer := telemetry.NewOTelTracer(telemetry.InstrumentationName).WithRenderer(renderer)

	runner := matrix.NewRunner(a.bundler, a.command, a.executor, a.hasher, a.store, tracer)

	var (
		outcomes []domain.Outcome
		runErr   error
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := renderer.Start(gctx); err != nil {
			return err
		}
		return renderer.Wait()
	})

	g.Go(func() error {
		defer func() {
			_ = tracer.Shutdown(context.WithoutCancel(ctx))
			_ = renderer.Stop()
		}()
		outcomes, runErr = runner.Run(gctx, h, pkg, names, matrix.Options{
			NoCache: opts.NoCache,
			DryRun:  opts.DryRun,
			Jobs:    opts.Jobs,
		})
		return nil
	})

	if err := g.Wait(); err != nil {
		return errors.Join(err, runErr)
	}

	if outcomes != nil {
		if opts.JSON {
			if err := a.writeJSON(outcomes); err != nil {
				return errors.Join(err, runErr)
			}
		} else {
			p := report.New(a.stdout)
			p.Mismatches(outcomes)
			p.Summary(outcomes)
		}
	}
	return runErr
}

func (a *App) newRenderer(ctx context.Context, opts RunOptions) ports.Renderer {
	if opts.JSON {
		return linear.NewRenderer(a.stderr, a.stderr)
	}

	if detector.ResolveMode(a.detect(), opts.OutputMode) == detector.ModeTUI {
		teaOpts := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(a.stderr)}, a.teaOptions...)
		return tui.NewRenderer(teaOpts...)
	}
	return linear.NewRenderer(a.stdout, a.stderr)
}

func (a *App) writeJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return zerr.Wrap(err, "failed to write JSON output")
	}
	return nil
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	Cache bool
	Dist  bool
}

// Clean removes run records and leftover bundle outputs of the harness.
func (a *App) Clean(_ context.Context, options CleanOptions) error {
	root, err := a.configLoader.DiscoverRoot(a.cwd)
	if err != nil {
		if !errors.Is(err, domain.ErrConfigNotFound) {
			return err
		}
		root = a.cwd
	}

	var errs error

	remove := func(path string, name string) {
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(err, "failed to remove "+name), "path", path))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	if options.Cache {
		remove(filepath.Join(root, domain.DefaultStorePath()), "run record store")
	}
	if options.Dist {
		remove(filepath.Join(root, domain.DefaultDistPath()), "bundle outputs")
	}

	return errs
}

// Presets prints the preset each harness scenario maps to.
func (a *App) Presets(_ context.Context) error {
	h, err := a.configLoader.Load(a.cwd)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	rows := make([]report.ScenarioPreset, 0, len(h.Scenarios))
	for _, s := range h.Scenarios {
		s.Normalize()
		p, err := domain.PresetFor(s)
		if err != nil {
			return err
		}
		rows = append(rows, report.ScenarioPreset{Scenario: s, Preset: p})
	}

	report.New(a.stdout).Presets(rows)
	return nil
}

// setupOTel configures the OpenTelemetry SDK with the renderer bridge.
func setupOTel(bridge *telemetry.Bridge) {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(bridge),
	)
	otel.SetTracerProvider(tp)
}
