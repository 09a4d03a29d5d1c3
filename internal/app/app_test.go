package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/exportmap/internal/app"
	"go.trai.ch/exportmap/internal/core/domain"
	"go.trai.ch/exportmap/internal/core/ports"
	"go.trai.ch/exportmap/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type appMocks struct {
	loader   *mocks.MockConfigLoader
	packages *mocks.MockPackageLoader
	bundler  *mocks.MockBundler
	command  *mocks.MockBundler
	executor *mocks.MockExecutor
	hasher   *mocks.MockHasher
	store    *mocks.MockResultStore
	logger   *mocks.MockLogger
}

func setupApp(t *testing.T) (*app.App, appMocks, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	ctrl := gomock.NewController(t)
	m := appMocks{
		loader:   mocks.NewMockConfigLoader(ctrl),
		packages: mocks.NewMockPackageLoader(ctrl),
		bundler:  mocks.NewMockBundler(ctrl),
		command:  mocks.NewMockBundler(ctrl),
		executor: mocks.NewMockExecutor(ctrl),
		hasher:   mocks.NewMockHasher(ctrl),
		store:    mocks.NewMockResultStore(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
	}
	newWatcher := func() (ports.Watcher, error) { return mocks.NewMockWatcher(ctrl), nil }

	var stdout, stderr bytes.Buffer
	a := app.New(m.loader, m.packages, m.bundler, m.command, m.executor, m.hasher, m.store, m.logger, newWatcher).
		WithOutput(&stdout, &stderr).
		WithWorkDir("work")
	return a, m, &stdout, &stderr
}

func testPackage(t *testing.T) *domain.Package {
	t.Helper()
	exports, err := domain.NewExportMap(
		domain.Export(".", domain.Conditions(
			domain.When("import", domain.Target("./dist/index.mjs")),
			domain.When("require", domain.Target("./dist/index.cjs")),
		)),
		domain.Export("./client", domain.Conditions(
			domain.When("import", domain.Target("./dist/client.mjs")),
			domain.When("require", domain.Target("./dist/client.cjs")),
		)),
		domain.Export("./runtime", domain.Conditions(
			domain.When("node", domain.Conditions(
				domain.When("import", domain.Target("./dist/runtime-node.mjs")),
				domain.When("require", domain.Target("./dist/runtime-node.cjs")),
			)),
			domain.When("import", domain.Target("./dist/runtime.mjs")),
			domain.When("require", domain.Target("./dist/runtime.cjs")),
		)),
	)
	require.NoError(t, err)
	return &domain.Package{Name: "@scope/pkg", Version: "1.0.0", Dir: "pkg", Exports: exports}
}

func testHarness(t *testing.T, scenarios ...domain.Scenario) *domain.Harness {
	t.Helper()
	return &domain.Harness{
		Root:       t.TempDir(),
		PackageDir: "pkg",
		Entry:      "src/index.ts",
		Subpaths:   domain.DefaultSubpaths(),
		Scenarios:  scenarios,
	}
}

func nodeESM() domain.Scenario {
	return domain.Scenario{
		Name:     "esbuild-node-esm",
		Bundler:  domain.BundlerEsbuild,
		Runtime:  domain.RuntimeNode,
		Format:   domain.FormatESM,
		Platform: domain.PlatformNode,
	}
}

func TestApp_Resolve(t *testing.T) {
	a, m, stdout, _ := setupApp(t)
	m.loader.EXPECT().Load("work").Return(testHarness(t), nil)
	m.packages.EXPECT().Load("pkg").Return(testPackage(t), nil)

	err := a.Resolve(context.Background(), app.ResolveOptions{
		Subpath:    "@scope/pkg/runtime",
		Conditions: []string{"node", "require"},
	})
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "./runtime → ./dist/runtime-node.cjs")
	assert.Contains(t, stdout.String(), "exports['./runtime'].node.require")
}

func TestApp_Resolve_JSON(t *testing.T) {
	a, m, stdout, _ := setupApp(t)
	// An explicit package directory skips the harness file.
	m.packages.EXPECT().Load("other").Return(testPackage(t), nil)

	err := a.Resolve(context.Background(), app.ResolveOptions{
		PackageDir: "other",
		Subpath:    "client",
		Conditions: []string{"import"},
		JSON:       true,
	})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, "./client", got["subpath"])
	assert.Equal(t, "./dist/client.mjs", got["file"])
	assert.Equal(t, "exports['./client'].import", got["resolvedFrom"])
}

func TestApp_Resolve_NotExported(t *testing.T) {
	a, m, _, _ := setupApp(t)
	m.packages.EXPECT().Load("pkg").Return(testPackage(t), nil)

	err := a.Resolve(context.Background(), app.ResolveOptions{PackageDir: "pkg", Subpath: "."})
	require.ErrorIs(t, err, domain.ErrConditionsExhausted)
}

func TestApp_Resolve_Explain(t *testing.T) {
	a, m, stdout, _ := setupApp(t)
	m.packages.EXPECT().Load("pkg").Return(testPackage(t), nil).Times(2)

	err := a.Resolve(context.Background(), app.ResolveOptions{
		PackageDir: "pkg",
		Subpath:    "./runtime",
		Conditions: []string{"node", "import"},
		Explain:    true,
	})
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "resolving ./runtime")
	assert.Contains(t, stdout.String(), "runtime-node.mjs")

	stdout.Reset()
	err = a.Resolve(context.Background(), app.ResolveOptions{
		PackageDir: "pkg",
		Subpath:    "./runtime",
		Explain:    true,
		JSON:       true,
	})
	require.ErrorIs(t, err, domain.ErrConditionsExhausted)

	var doc struct {
		Steps []struct {
			Path     []string `json:"path"`
			Decision string   `json:"decision"`
		} `json:"steps"`
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &doc))
	assert.Len(t, doc.Steps, 3)
	assert.NotEmpty(t, doc.Error)
}

func TestSubpathFor(t *testing.T) {
	pkg := &domain.Package{Name: "@scope/pkg"}
	tests := map[string]string{
		"":                  ".",
		".":                 ".",
		"@scope/pkg":        ".",
		"@scope/pkg/client": "./client",
		"./client":          "./client",
		"client":            "./client",
		"client/deep":       "./client/deep",
	}
	for input, want := range tests {
		assert.Equal(t, want, app.SubpathFor(pkg, input), "input %q", input)
	}
}

func TestApp_Expect_JSON(t *testing.T) {
	a, m, stdout, _ := setupApp(t)
	m.loader.EXPECT().Load("work").Return(testHarness(t, nodeESM()), nil)
	m.packages.EXPECT().Load("pkg").Return(testPackage(t), nil)

	require.NoError(t, a.Expect(context.Background(), nil, app.ExpectOptions{JSON: true}))

	var doc map[string]struct {
		Preset     string        `json:"preset"`
		Conditions []string      `json:"conditions"`
		Expected   domain.Report `json:"expected"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &doc))
	require.Contains(t, doc, "esbuild-node-esm")

	e := doc["esbuild-node-esm"]
	assert.Equal(t, "esbuild/esm/node", e.Preset)
	assert.Equal(t, []string{"node", "import"}, e.Conditions)
	assert.Equal(t, "runtime-node.mjs", e.Expected["runtime"].Filename)
}

func TestApp_Expect_UnknownScenario(t *testing.T) {
	a, m, _, _ := setupApp(t)
	m.loader.EXPECT().Load("work").Return(testHarness(t, nodeESM()), nil)
	m.packages.EXPECT().Load("pkg").Return(testPackage(t), nil)

	err := a.Expect(context.Background(), []string{"missing"}, app.ExpectOptions{})
	require.ErrorIs(t, err, domain.ErrScenarioNotFound)
}

func TestApp_Run_DryRun(t *testing.T) {
	a, m, stdout, _ := setupApp(t)
	m.loader.EXPECT().Load("work").Return(testHarness(t, nodeESM()), nil)
	m.packages.EXPECT().Load("pkg").Return(testPackage(t), nil)

	err := a.Run(context.Background(), nil, app.RunOptions{DryRun: true, OutputMode: "linear"})
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "esbuild-node-esm")
	assert.Contains(t, stdout.String(), "1 planned")
}

func TestApp_Run_ExpectationDrift(t *testing.T) {
	a, m, stdout, _ := setupApp(t)

	stale := nodeESM()
	stale.Expect = domain.Report{
		"index":   {Filename: "index.mjs", ResolvedFrom: "exports['.'].import"},
		"client":  {Filename: "client.mjs", ResolvedFrom: "exports['.'].import"},
		"runtime": {Filename: "runtime.mjs", ResolvedFrom: "exports['.'].import"},
	}
	m.loader.EXPECT().Load("work").Return(testHarness(t, stale), nil)
	m.packages.EXPECT().Load("pkg").Return(testPackage(t), nil)

	err := a.Run(context.Background(), nil, app.RunOptions{DryRun: true, OutputMode: "linear"})
	require.ErrorIs(t, err, domain.ErrScenarioFailed)
	require.ErrorIs(t, err, domain.ErrExpectationDrift)
	assert.Contains(t, stdout.String(), "runtime-node.mjs")
	assert.Contains(t, stdout.String(), "0 passed, 1 failed")
}

func TestApp_Run_JSON(t *testing.T) {
	a, m, stdout, stderr := setupApp(t)
	m.loader.EXPECT().Load("work").Return(testHarness(t, nodeESM()), nil)
	m.packages.EXPECT().Load("pkg").Return(testPackage(t), nil)

	err := a.Run(context.Background(), nil, app.RunOptions{DryRun: true, OutputMode: app.OutputJSON})
	require.NoError(t, err)

	var outcomes []domain.Outcome
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &outcomes), "stdout carries only JSON, stderr: %s", stderr)
	require.Len(t, outcomes, 1)
	assert.Equal(t, domain.StatusPlanned, outcomes[0].Status)
}

func TestApp_Run_InvalidOutputMode(t *testing.T) {
	a, _, _, _ := setupApp(t)

	err := a.Run(context.Background(), nil, app.RunOptions{OutputMode: "fancy"})
	require.Error(t, err)
}

func TestApp_Run_ConfigError(t *testing.T) {
	a, m, _, _ := setupApp(t)
	m.loader.EXPECT().Load("work").Return(nil, domain.ErrConfigNotFound)

	err := a.Run(context.Background(), nil, app.RunOptions{OutputMode: "linear"})
	require.ErrorIs(t, err, domain.ErrConfigNotFound)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestApp_Clean(t *testing.T) {
	a, m, _, _ := setupApp(t)
	root := t.TempDir()
	store := filepath.Join(root, domain.DefaultStorePath())
	dist := filepath.Join(root, domain.DefaultDistPath())
	require.NoError(t, os.MkdirAll(store, 0o750))
	require.NoError(t, os.MkdirAll(dist, 0o750))

	m.loader.EXPECT().DiscoverRoot("work").Return(root, nil)
	m.logger.EXPECT().Info(gomock.Any()).Times(2)

	require.NoError(t, a.Clean(context.Background(), app.CleanOptions{Cache: true}))
	assert.NoDirExists(t, store)
	assert.DirExists(t, dist)
}

func TestApp_Clean_WithoutHarness(t *testing.T) {
	a, m, _, _ := setupApp(t)
	cwd := t.TempDir()
	a.WithWorkDir(cwd)
	dist := filepath.Join(cwd, domain.DefaultDistPath())
	require.NoError(t, os.MkdirAll(dist, 0o750))

	m.loader.EXPECT().DiscoverRoot(cwd).Return("", domain.ErrConfigNotFound)
	m.logger.EXPECT().Info(gomock.Any()).Times(2)

	require.NoError(t, a.Clean(context.Background(), app.CleanOptions{Dist: true}))
	assert.NoDirExists(t, dist)
}

func TestApp_Presets(t *testing.T) {
	a, m, stdout, _ := setupApp(t)
	m.loader.EXPECT().Load("work").Return(testHarness(t, domain.DefaultScenarios()...), nil)

	require.NoError(t, a.Presets(context.Background()))
	assert.Contains(t, stdout.String(), "esbuild-node-esm")
	assert.Contains(t, stdout.String(), "workerd-ts")
}
