package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/exportmap/internal/app"
	"go.trai.ch/exportmap/internal/core/domain"
	"go.trai.ch/exportmap/internal/core/ports"
	"go.trai.ch/exportmap/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newApp(ctrl *gomock.Controller, loader *mocks.MockConfigLoader, logger *mocks.MockLogger) *app.App {
	return app.New(
		loader,
		mocks.NewMockPackageLoader(ctrl),
		mocks.NewMockBundler(ctrl),
		mocks.NewMockBundler(ctrl),
		mocks.NewMockExecutor(ctrl),
		mocks.NewMockHasher(ctrl),
		mocks.NewMockResultStore(ctrl),
		logger,
		func() (ports.Watcher, error) { return mocks.NewMockWatcher(ctrl), nil },
	).WithOutput(io.Discard, io.Discard)
}

func provide(a *app.App, logger *mocks.MockLogger) ComponentProvider {
	return func(_ context.Context) (*app.Components, func(), error) {
		return app.NewComponents(a, logger), func() {}, nil
	}
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	a := newApp(ctrl, mocks.NewMockConfigLoader(ctrl), logger)

	exitCode := run(context.Background(), []string{"version"}, new(bytes.Buffer), provide(a, logger))
	assert.Equal(t, 0, exitCode)
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that command errors are logged and exit 1.
func TestRun_ExecutionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	logger := mocks.NewMockLogger(ctrl)
	a := newApp(ctrl, loader, logger).WithWorkDir("work")

	loader.EXPECT().Load("work").Return(nil, errors.New("load failed"))
	logger.EXPECT().Error(gomock.Any()).Times(1)

	exitCode := run(context.Background(), []string{"presets"}, io.Discard, provide(a, logger))
	assert.Equal(t, 1, exitCode)
}

// TestRun_ScenarioFailureNotLogged verifies that failed scenarios only set the exit code.
func TestRun_ScenarioFailureNotLogged(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	packages := mocks.NewMockPackageLoader(ctrl)
	// No Error expectation: logging the failure would fail the test.
	logger := mocks.NewMockLogger(ctrl)

	exports, err := domain.NewExportMap(domain.Export(".", domain.Conditions(
		domain.When("import", domain.Target("./dist/index.mjs")),
	)))
	require.NoError(t, err)

	loader.EXPECT().Load("work").Return(&domain.Harness{
		Root:       t.TempDir(),
		PackageDir: "pkg",
		Subpaths:   []domain.NamedSubpath{{Name: "index", Subpath: "."}},
		Scenarios: []domain.Scenario{{
			Name:    "stale",
			Bundler: domain.BundlerEsbuild,
			Runtime: domain.RuntimeNode,
			Expect:  domain.Report{"index": {Filename: "index.cjs", ResolvedFrom: "exports['.'].require"}},
		}},
	}, nil)
	packages.EXPECT().Load("pkg").Return(&domain.Package{Name: "pkg", Dir: "pkg", Exports: exports}, nil)

	a := app.New(
		loader,
		packages,
		mocks.NewMockBundler(ctrl),
		mocks.NewMockBundler(ctrl),
		mocks.NewMockExecutor(ctrl),
		mocks.NewMockHasher(ctrl),
		mocks.NewMockResultStore(ctrl),
		logger,
		func() (ports.Watcher, error) { return mocks.NewMockWatcher(ctrl), nil },
	).WithOutput(io.Discard, io.Discard).WithWorkDir("work")

	exitCode := run(context.Background(), []string{"run", "--dry-run", "-o", "linear"}, io.Discard, provide(a, logger))
	assert.Equal(t, 1, exitCode)
}

// TestRun_Signal verifies that the context is canceled on signal.
func TestRun_Signal(t *testing.T) {
	ctrl := gomock.NewController(t)

	blockCh := make(chan struct{})

	loader := mocks.NewMockConfigLoader(ctrl)
	loader.EXPECT().Load(gomock.Any()).DoAndReturn(func(_ string) (*domain.Harness, error) {
		select {
		case <-blockCh:
			return nil, context.Canceled
		case <-time.After(5 * time.Second):
			return nil, errors.New("timeout in mock")
		}
	})

	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Error(gomock.Any()).AnyTimes()
	a := newApp(ctrl, loader, logger)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan int)

	go func() {
		errCh <- run(ctx, []string{"presets"}, io.Discard, provide(a, logger))
	}()

	// Wait a bit to ensure run() reaches Load()
	time.Sleep(100 * time.Millisecond)

	cancel()
	close(blockCh)

	select {
	case ret := <-errCh:
		assert.NotEqual(t, 0, ret)
	case <-time.After(2 * time.Second):
		t.Fatal("TestRun_Signal timed out waiting for run() to return")
	}
}
