package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/exportmap/internal/core/domain"
)

func TestScenario_Validate(t *testing.T) {
	tests := []struct {
		name     string
		scenario domain.Scenario
		wantErr  error
	}{
		{
			name:     "valid bundler scenario",
			scenario: domain.Scenario{Name: "esbuild-node-cjs", Bundler: domain.BundlerEsbuild},
		},
		{
			name:     "valid runtime scenario",
			scenario: domain.Scenario{Name: "bun.ts", Runtime: domain.RuntimeBun},
		},
		{
			name:     "reserved name",
			scenario: domain.Scenario{Name: "all", Bundler: domain.BundlerEsbuild},
			wantErr:  domain.ErrReservedScenarioName,
		},
		{
			name:     "invalid name",
			scenario: domain.Scenario{Name: "with space", Bundler: domain.BundlerEsbuild},
			wantErr:  domain.ErrInvalidScenarioName,
		},
		{
			name:     "unknown runtime",
			scenario: domain.Scenario{Name: "x", Runtime: "hermes"},
			wantErr:  domain.ErrUnknownRuntime,
		},
		{
			name:     "invalid format",
			scenario: domain.Scenario{Name: "x", Bundler: domain.BundlerVite, Format: "umd"},
			wantErr:  domain.ErrInvalidFormat,
		},
		{
			name:     "invalid platform",
			scenario: domain.Scenario{Name: "x", Bundler: domain.BundlerVite, Platform: "browser"},
			wantErr:  domain.ErrInvalidPlatform,
		},
		{
			name: "malformed inline exports",
			scenario: domain.Scenario{
				Name: "x", Bundler: domain.BundlerEsbuild,
				Exports: &domain.ExportMap{Entries: []domain.SubpathEntry{domain.Export(".", domain.Target(""))}},
			},
			wantErr: domain.ErrMalformedExportMap,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.scenario
			s.Normalize()
			err := s.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHarness_Select(t *testing.T) {
	h := &domain.Harness{
		Scenarios: []domain.Scenario{
			{Name: "a", Bundler: domain.BundlerEsbuild},
			{Name: "b", Runtime: domain.RuntimeBun},
		},
	}

	all, err := h.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	all, err = h.Select([]string{"b", "all"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := h.Select([]string{"b", "b"})
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "b", one[0].Name)

	_, err = h.Select([]string{"missing"})
	require.ErrorIs(t, err, domain.ErrScenarioNotFound)
	assert.Contains(t, err.Error(), "unknown scenario")
}

func TestDefaultScenarios(t *testing.T) {
	scenarios := domain.DefaultScenarios()
	require.Len(t, scenarios, 16)

	names := make(map[string]struct{}, len(scenarios))
	for _, s := range scenarios {
		require.NoError(t, s.Validate(), s.Name)
		_, dup := names[s.Name]
		require.False(t, dup, "duplicate scenario %s", s.Name)
		names[s.Name] = struct{}{}
	}

	assert.Contains(t, names, "esbuild-node-cjs-conditions")
	assert.Contains(t, names, "workerd-ts")
}

func TestFormat_Extension(t *testing.T) {
	assert.Equal(t, ".cjs", domain.FormatCJS.Extension())
	assert.Equal(t, ".mjs", domain.FormatESM.Extension())
}
