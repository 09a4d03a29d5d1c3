package domain

import (
	"time"

	"go.trai.ch/zerr"
)

// Bundler names a bundler whose condition defaults are modeled by a preset.
type Bundler string

// Known bundlers.
const (
	BundlerNone     Bundler = ""
	BundlerEsbuild  Bundler = "esbuild"
	BundlerRolldown Bundler = "rolldown"
	BundlerWebpack  Bundler = "webpack"
	BundlerVite     Bundler = "vite"
	BundlerRsbuild  Bundler = "rsbuild"
)

// Runtime names a JavaScript runtime.
type Runtime string

// Known runtimes.
const (
	RuntimeNone    Runtime = ""
	RuntimeNode    Runtime = "node"
	RuntimeBun     Runtime = "bun"
	RuntimeDeno    Runtime = "deno"
	RuntimeWorkerd Runtime = "workerd"
)

// Format is the module format of a bundle.
type Format string

// Known formats.
const (
	FormatCJS Format = "cjs"
	FormatESM Format = "esm"
)

// Extension returns the output file extension used for the format.
func (f Format) Extension() string {
	if f == FormatCJS {
		return ".cjs"
	}
	return ".mjs"
}

// Platform is the target platform class of a bundle.
type Platform string

// Known platforms.
const (
	PlatformNode    Platform = "node"
	PlatformNeutral Platform = "neutral"
)

// ReservedScenarioName selects every scenario of the harness.
const ReservedScenarioName = "all"

// Scenario is one cell of the compatibility matrix.
type Scenario struct {
	Name string
	// Bundler produces the bundle. When empty, Runtime loads the sources directly.
	Bundler Bundler
	// Runtime executes the bundle or, without a bundler, resolves the package itself.
	Runtime  Runtime
	Format   Format
	Platform Platform
	// Conditions are custom conditions passed to the bundler.
	Conditions []string
	// ConditionsOverride replaces the preset's active set entirely.
	ConditionsOverride []string
	// External lists module specifiers left out of the bundle.
	External []string
	// Build is the command producing the bundle for bundlers not run in-process.
	Build []string
	// Run is the command printing the observed report as JSON.
	Run []string
	Env map[string]string
	// Expect pins the expected report; it is cross-checked against the resolver.
	Expect Report
	// Exports replaces the package's export map for this scenario.
	Exports *ExportMap
	Timeout time.Duration
}

// Normalize fills in the defaults for format and platform.
func (s *Scenario) Normalize() {
	if s.Format == "" {
		s.Format = FormatESM
	}
	if s.Platform == "" {
		s.Platform = PlatformNode
	}
}

// Validate checks the scenario's name and enums.
func (s *Scenario) Validate() error {
	if s.Name == ReservedScenarioName {
		return zerr.With(zerr.Wrap(ErrReservedScenarioName, "invalid scenario"), "scenario", s.Name)
	}
	if !validNameRegex.MatchString(s.Name) {
		return zerr.With(zerr.Wrap(ErrInvalidScenarioName, "name contains invalid characters"), "scenario", s.Name)
	}

	switch s.Bundler {
	case BundlerNone, BundlerEsbuild, BundlerRolldown, BundlerWebpack, BundlerVite, BundlerRsbuild:
	default:
		return zerr.With(zerr.Wrap(ErrUnknownBundler, "no preset for bundler"), "bundler", string(s.Bundler))
	}

	switch s.Runtime {
	case RuntimeNone, RuntimeNode, RuntimeBun, RuntimeDeno, RuntimeWorkerd:
	default:
		return zerr.With(zerr.Wrap(ErrUnknownRuntime, "no preset for runtime"), "runtime", string(s.Runtime))
	}

	if s.Bundler == BundlerNone && s.Runtime == RuntimeNone {
		return zerr.With(zerr.Wrap(ErrScenarioWithoutTarget, "nothing to run"), "scenario", s.Name)
	}

	switch s.Format {
	case FormatCJS, FormatESM:
	default:
		return zerr.With(zerr.Wrap(ErrInvalidFormat, "unsupported format"), "format", string(s.Format))
	}

	switch s.Platform {
	case PlatformNode, PlatformNeutral:
	default:
		return zerr.With(zerr.Wrap(ErrInvalidPlatform, "unsupported platform"), "platform", string(s.Platform))
	}

	if s.Exports != nil {
		if err := s.Exports.Validate(); err != nil {
			return zerr.With(err, "scenario", s.Name)
		}
	}

	return nil
}

// Harness is a loaded harness file.
type Harness struct {
	// Root is the directory containing the harness file.
	Root string
	// ConfigPath is the absolute path of the harness file.
	ConfigPath string
	// PackageDir is the directory holding the package descriptor under test.
	PackageDir string
	// Entry is the bundle entry point.
	Entry       string
	Subpaths    []NamedSubpath
	Scenarios   []Scenario
	Parallelism int
}

// Scenario returns the scenario named name.
func (h *Harness) Scenario(name string) (Scenario, bool) {
	for _, s := range h.Scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}

// Select returns the scenarios named in names, or all of them for an empty list or "all".
func (h *Harness) Select(names []string) ([]Scenario, error) {
	if len(names) == 0 {
		return h.Scenarios, nil
	}
	for _, n := range names {
		if n == ReservedScenarioName {
			return h.Scenarios, nil
		}
	}

	selected := make([]Scenario, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}

		s, ok := h.Scenario(n)
		if !ok {
			return nil, zerr.With(zerr.Wrap(ErrScenarioNotFound, "unknown scenario"), "scenario", n)
		}
		selected = append(selected, s)
	}
	return selected, nil
}

// DefaultScenarios returns the compatibility matrix exercised by the fixture package
// when a harness file declares no scenarios.
func DefaultScenarios() []Scenario {
	var out []Scenario

	for _, format := range []Format{FormatCJS, FormatESM} {
		custom := ImportCondition
		if format == FormatCJS {
			custom = RequireCondition
		}
		for _, platform := range []Platform{PlatformNode, PlatformNeutral} {
			base := Scenario{
				Name:     "esbuild-" + string(platform) + "-" + string(format),
				Bundler:  BundlerEsbuild,
				Runtime:  RuntimeNode,
				Format:   format,
				Platform: platform,
				External: []string{"node:*"},
				Run:      []string{"node", "{{.OutDir}}/index" + format.Extension()},
			}
			withConditions := base
			withConditions.Name += "-conditions"
			withConditions.Conditions = []string{custom}
			out = append(out, base, withConditions)
		}
	}

	for _, format := range []Format{FormatCJS, FormatESM} {
		out = append(out, Scenario{
			Name:     "vite-" + string(format),
			Bundler:  BundlerVite,
			Runtime:  RuntimeNode,
			Format:   format,
			Platform: PlatformNode,
			Build:    []string{"npx", "vite", "build", "--config", "vite.config." + string(format) + ".ts", "--outDir", "{{.OutDir}}"},
			Run:      []string{"node", "{{.OutDir}}/index" + format.Extension()},
		})
	}

	for _, format := range []Format{FormatCJS, FormatESM} {
		out = append(out, Scenario{
			Name:     "webpack-" + string(format),
			Bundler:  BundlerWebpack,
			Runtime:  RuntimeNode,
			Format:   format,
			Platform: PlatformNode,
			Build:    []string{"npx", "webpack", "--config", "webpack.config." + string(format) + ".ts", "--output-path", "{{.OutDir}}"},
			Run:      []string{"node", "{{.OutDir}}/index" + format.Extension()},
		})
	}

	out = append(out,
		Scenario{
			Name:     "rsbuild-esm",
			Bundler:  BundlerRsbuild,
			Runtime:  RuntimeNode,
			Format:   FormatESM,
			Platform: PlatformNode,
			Build:    []string{"npx", "rsbuild", "build", "--config", "rsbuild.config.esm.ts"},
			Run:      []string{"node", "dist/rsbuild/esm/index.js"},
		},
		Scenario{
			Name:     "bun-ts",
			Runtime:  RuntimeBun,
			Format:   FormatESM,
			Platform: PlatformNode,
			Run:      []string{"bun", "run", "{{.Entry}}"},
		},
		Scenario{
			Name:     "deno-ts",
			Runtime:  RuntimeDeno,
			Format:   FormatESM,
			Platform: PlatformNode,
			Run:      []string{"deno", "run", "--allow-read", "{{.Entry}}"},
		},
		Scenario{
			Name:     "workerd-ts",
			Runtime:  RuntimeWorkerd,
			Format:   FormatESM,
			Platform: PlatformNeutral,
			Run:      []string{"npx", "workerd", "test", "workerd.ts.capnp"},
		},
	)

	return out
}
