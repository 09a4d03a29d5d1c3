package command_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/exportmap/internal/adapters/command"
	"go.trai.ch/exportmap/internal/core/domain"
	"go.trai.ch/exportmap/internal/core/ports"
	"go.trai.ch/exportmap/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func webpackRequest(outDir string) ports.BundleRequest {
	return ports.BundleRequest{
		Scenario: domain.Scenario{
			Name:     "webpack-cjs",
			Bundler:  domain.BundlerWebpack,
			Runtime:  domain.RuntimeNode,
			Format:   domain.FormatCJS,
			Platform: domain.PlatformNode,
			Build:    []string{"npx", "webpack", "--output-path", "{{.OutDir}}", "--entry", "./{{.Entry}}"},
			Env:      map[string]string{"NODE_ENV": "production"},
		},
		Root:       "/harness",
		Entry:      "src/index.ts",
		OutDir:     outDir,
		PackageDir: "/harness/node_modules/pkg",
	}
}

func TestBundler_Supports(t *testing.T) {
	b := command.NewBundler(nil)
	assert.True(t, b.Supports(domain.BundlerWebpack))
	assert.True(t, b.Supports(domain.BundlerEsbuild))
	assert.False(t, b.Supports(domain.BundlerNone))
}

func TestBundler_Bundle(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := mocks.NewMockExecutor(ctrl)

	outDir := filepath.Join(t.TempDir(), "webpack-cjs")
	var log bytes.Buffer

	executor.EXPECT().
		Execute(gomock.Any(), gomock.Any(), &log, &log).
		DoAndReturn(func(_ context.Context, cmd *domain.Command, stdout, _ io.Writer) error {
			assert.Equal(t, "webpack-cjs:build", cmd.Name)
			assert.Equal(t, []string{"npx", "webpack", "--output-path", outDir, "--entry", "./src/index.ts"}, cmd.Args)
			assert.Equal(t, "/harness", cmd.Dir)
			assert.Equal(t, map[string]string{"NODE_ENV": "production"}, cmd.Env)
			assert.True(t, cmd.Stream)
			_, _ = io.WriteString(stdout, "compiled successfully\n")
			return nil
		})

	res, err := command.NewBundler(executor).Bundle(context.Background(), webpackRequest(outDir), &log)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "index.cjs"), res.Output)
	assert.Empty(t, res.Observed)
	assert.Equal(t, "compiled successfully\n", log.String())
}

func TestBundler_Bundle_CommandFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := mocks.NewMockExecutor(ctrl)
	executor.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("exit status 2"))

	_, err := command.NewBundler(executor).Bundle(context.Background(), webpackRequest(t.TempDir()), io.Discard)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrBundleFailed.Error())
	assert.ErrorContains(t, err, "exit status 2")
}

func TestBundler_Bundle_NoBuildCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := mocks.NewMockExecutor(ctrl)

	req := webpackRequest(t.TempDir())
	req.Scenario.Build = nil

	_, err := command.NewBundler(executor).Bundle(context.Background(), req, io.Discard)
	require.ErrorIs(t, err, domain.ErrBundlerNotConfigured)
}

func TestBundler_Bundle_BadTemplate(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := mocks.NewMockExecutor(ctrl)

	req := webpackRequest(t.TempDir())
	req.Scenario.Build = []string{"npx", "webpack", "{{.Output}}"}

	_, err := command.NewBundler(executor).Bundle(context.Background(), req, io.Discard)
	require.ErrorIs(t, err, domain.ErrCommandTemplateFailed)
}
