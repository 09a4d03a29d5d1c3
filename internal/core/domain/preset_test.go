package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/exportmap/internal/core/domain"
)

func TestPresetFor(t *testing.T) {
	tests := []struct {
		name     string
		scenario domain.Scenario
		preset   string
		active   []string
	}{
		{
			name:     "esbuild node cjs",
			scenario: domain.Scenario{Bundler: domain.BundlerEsbuild, Format: domain.FormatCJS, Platform: domain.PlatformNode},
			preset:   "esbuild/cjs/node",
			active:   []string{"node", "import"},
		},
		{
			name: "esbuild node cjs with require",
			scenario: domain.Scenario{
				Bundler: domain.BundlerEsbuild, Format: domain.FormatCJS, Platform: domain.PlatformNode,
				Conditions: []string{"require"},
			},
			preset: "esbuild/cjs/node+custom",
			active: []string{"node", "require"},
		},
		{
			name:     "esbuild neutral never adds node",
			scenario: domain.Scenario{Bundler: domain.BundlerEsbuild, Format: domain.FormatCJS, Platform: domain.PlatformNeutral},
			preset:   "esbuild/cjs/neutral",
			active:   []string{"import"},
		},
		{
			name: "esbuild neutral with require",
			scenario: domain.Scenario{
				Bundler: domain.BundlerEsbuild, Format: domain.FormatCJS, Platform: domain.PlatformNeutral,
				Conditions: []string{"require"},
			},
			preset: "esbuild/cjs/neutral+custom",
			active: []string{"require"},
		},
		{
			name:     "rolldown mirrors esbuild",
			scenario: domain.Scenario{Bundler: domain.BundlerRolldown, Format: domain.FormatESM, Platform: domain.PlatformNode},
			preset:   "rolldown/esm/node",
			active:   []string{"node", "import"},
		},
		{
			name:     "webpack node",
			scenario: domain.Scenario{Bundler: domain.BundlerWebpack, Format: domain.FormatESM, Platform: domain.PlatformNode},
			preset:   "webpack/esm/node",
			active:   []string{"node", "require"},
		},
		{
			name:     "webpack neutral",
			scenario: domain.Scenario{Bundler: domain.BundlerWebpack, Format: domain.FormatCJS, Platform: domain.PlatformNeutral},
			preset:   "webpack/cjs/neutral",
			active:   []string{"require"},
		},
		{
			name:     "vite cjs ignores platform",
			scenario: domain.Scenario{Bundler: domain.BundlerVite, Format: domain.FormatCJS, Platform: domain.PlatformNode},
			preset:   "vite/cjs/node",
			active:   []string{"require"},
		},
		{
			name:     "vite esm",
			scenario: domain.Scenario{Bundler: domain.BundlerVite, Format: domain.FormatESM, Platform: domain.PlatformNode},
			preset:   "vite/esm/node",
			active:   []string{"import"},
		},
		{
			name:     "rsbuild node",
			scenario: domain.Scenario{Bundler: domain.BundlerRsbuild, Format: domain.FormatESM, Platform: domain.PlatformNode},
			preset:   "rsbuild/esm/node",
			active:   []string{"node", "import"},
		},
		{
			name:     "bun runtime",
			scenario: domain.Scenario{Runtime: domain.RuntimeBun},
			preset:   "bun/esm/node",
			active:   []string{"bun", "import"},
		},
		{
			name:     "deno runtime",
			scenario: domain.Scenario{Runtime: domain.RuntimeDeno},
			preset:   "deno/esm/node",
			active:   []string{"deno", "import"},
		},
		{
			name:     "workerd runtime",
			scenario: domain.Scenario{Runtime: domain.RuntimeWorkerd, Platform: domain.PlatformNeutral},
			preset:   "workerd/esm/neutral",
			active:   []string{"workerd", "import"},
		},
		{
			name:     "node runtime cjs",
			scenario: domain.Scenario{Runtime: domain.RuntimeNode, Format: domain.FormatCJS},
			preset:   "node/cjs/node",
			active:   []string{"node", "require"},
		},
		{
			name:     "node runtime with custom",
			scenario: domain.Scenario{Runtime: domain.RuntimeNode, Conditions: []string{"edge"}},
			preset:   "node/esm/node+custom",
			active:   []string{"node", "edge"},
		},
		{
			name: "bundler wins over runtime",
			scenario: domain.Scenario{
				Bundler: domain.BundlerWebpack, Runtime: domain.RuntimeBun,
				Format: domain.FormatCJS, Platform: domain.PlatformNode,
			},
			preset: "webpack/cjs/node",
			active: []string{"node", "require"},
		},
		{
			name: "override bypasses the table",
			scenario: domain.Scenario{
				Name: "custom", Bundler: domain.BundlerEsbuild,
				ConditionsOverride: []string{"worker", "browser"},
			},
			preset: "custom+override",
			active: []string{"worker", "browser"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.scenario.Name == "" {
				tt.scenario.Name = "scenario"
			}
			p, err := domain.PresetFor(tt.scenario)
			require.NoError(t, err)
			assert.Equal(t, tt.preset, p.Name)
			assert.Equal(t, tt.active, p.Active.Keys())
		})
	}
}

func TestPresetFor_InvalidScenario(t *testing.T) {
	_, err := domain.PresetFor(domain.Scenario{Name: "x", Bundler: "parcel"})
	require.ErrorIs(t, err, domain.ErrUnknownBundler)

	_, err = domain.PresetFor(domain.Scenario{Name: "x"})
	require.ErrorIs(t, err, domain.ErrScenarioWithoutTarget)
}

func TestPresetTable(t *testing.T) {
	rows := domain.PresetTable()

	// 5 bundlers x 2 formats x 2 platforms + 4 runtimes x 2 formats, each with and without custom conditions.
	require.Len(t, rows, (5*2*2+4*2)*2)

	for _, row := range rows {
		if row.Platform == domain.PlatformNeutral {
			assert.False(t, row.Preset.Active.Has(domain.NodeCondition), row.Preset.Name)
		}
		if row.Custom {
			assert.True(t, row.Preset.Active.Has(domain.CustomPlaceholder), row.Preset.Name)
		}
	}
}
