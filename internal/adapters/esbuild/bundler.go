// Package esbuild bundles scenarios in-process with the esbuild Go API.
package esbuild

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/exportmap/internal/core/domain"
	"go.trai.ch/exportmap/internal/core/ports"
	"go.trai.ch/zerr"
)

// EntryName is the base name of the bundle written for every scenario.
const EntryName = "index"

var _ ports.Bundler = (*Bundler)(nil)

// Bundler runs esbuild without spawning a process.
type Bundler struct{}

// NewBundler creates a new esbuild bundler.
func NewBundler() *Bundler {
	return &Bundler{}
}

// Supports reports whether b is esbuild.
func (b *Bundler) Supports(name domain.Bundler) bool {
	return name == domain.BundlerEsbuild
}

// Bundle builds req.Entry into req.OutDir and reports which files the package imports resolved to.
func (b *Bundler) Bundle(ctx context.Context, req ports.BundleRequest, log io.Writer) (ports.BundleResult, error) {
	opts := buildOptions(req)

	bctx, cerr := api.Context(opts)
	if cerr != nil {
		report(log, cerr.Errors, api.ErrorMessage)
		return ports.BundleResult{}, bundleError(req, cerr.Errors)
	}
	defer bctx.Dispose()

	stop := context.AfterFunc(ctx, bctx.Cancel)
	result := bctx.Rebuild()
	stop()

	if err := ctx.Err(); err != nil {
		return ports.BundleResult{}, zerr.With(zerr.Wrap(err, domain.ErrBundleFailed.Error()), "scenario", req.Scenario.Name)
	}

	report(log, result.Warnings, api.WarningMessage)
	report(log, result.Errors, api.ErrorMessage)
	if len(result.Errors) > 0 {
		return ports.BundleResult{}, bundleError(req, result.Errors)
	}

	observed, err := Observations(result.Metafile)
	if err != nil {
		return ports.BundleResult{}, zerr.With(err, "scenario", req.Scenario.Name)
	}

	return ports.BundleResult{
		Output:   filepath.Join(req.OutDir, EntryName+req.Scenario.Format.Extension()),
		Observed: observed,
	}, nil
}

func buildOptions(req ports.BundleRequest) api.BuildOptions {
	s := req.Scenario

	format := api.FormatESModule
	if s.Format == domain.FormatCJS {
		format = api.FormatCommonJS
	}
	platform := api.PlatformNode
	if s.Platform == domain.PlatformNeutral {
		platform = api.PlatformNeutral
	}

	opts := api.BuildOptions{
		EntryPoints:   []string{req.Entry},
		EntryNames:    EntryName,
		AbsWorkingDir: req.Root,
		Outdir:        req.OutDir,
		OutExtension:  map[string]string{".js": s.Format.Extension()},
		Bundle:        true,
		Write:         true,
		Metafile:      true,
		Format:        format,
		Platform:      platform,
		Target:        api.ES2022,
		Sourcemap:     api.SourceMapLinked,
		External:      s.External,
		LogLevel:      api.LogLevelSilent,
	}

	if len(s.Conditions) > 0 {
		opts.Conditions = slices.Clone(s.Conditions)
	}
	return opts
}

func report(log io.Writer, msgs []api.Message, kind api.MessageKind) {
	if log == nil || len(msgs) == 0 {
		return
	}
	for _, line := range api.FormatMessages(msgs, api.FormatMessagesOptions{Kind: kind}) {
		_, _ = io.WriteString(log, line)
	}
}

func bundleError(req ports.BundleRequest, msgs []api.Message) error {
	reason := "esbuild reported errors"
	if len(msgs) > 0 {
		reason = msgs[0].Text
	}
	err := zerr.Wrap(zerr.New(reason), domain.ErrBundleFailed.Error())
	err = zerr.With(err, "scenario", req.Scenario.Name)
	return zerr.With(err, "errors", len(msgs))
}

type metafile struct {
	Inputs map[string]struct {
		Imports []struct {
			Path     string `json:"path"`
			Kind     string `json:"kind"`
			External bool   `json:"external"`
			Original string `json:"original"`
		} `json:"imports"`
	} `json:"inputs"`
}

// Observations extracts bare-specifier imports and their resolved files from an esbuild metafile.
// Relative imports and externals are left out. The result is sorted by specifier.
func Observations(meta string) ([]domain.Observation, error) {
	var m metafile
	if err := json.Unmarshal([]byte(meta), &m); err != nil {
		return nil, zerr.Wrap(err, "failed to parse esbuild metafile")
	}

	seen := make(map[string]struct{})
	var out []domain.Observation
	for _, input := range m.Inputs {
		for _, imp := range input.Imports {
			if imp.External || imp.Original == "" || !bare(imp.Original) {
				continue
			}
			key := imp.Original + "\x00" + imp.Path
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, domain.Observation{Specifier: imp.Original, File: filepath.ToSlash(imp.Path)})
		}
	}

	slices.SortFunc(out, func(a, b domain.Observation) int {
		if c := strings.Compare(a.Specifier, b.Specifier); c != 0 {
			return c
		}
		return strings.Compare(a.File, b.File)
	})
	return out, nil
}

func bare(specifier string) bool {
	return !strings.HasPrefix(specifier, ".") && !strings.HasPrefix(specifier, "/") && !strings.Contains(specifier, ":")
}
