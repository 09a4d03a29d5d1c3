package matrix_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/exportmap/internal/core/domain"
	"go.trai.ch/exportmap/internal/engine/matrix"
)

func TestParseReport(t *testing.T) {
	tests := []struct {
		name    string
		stdout  string
		want    domain.Report
		wantErr bool
	}{
		{
			name:   "plain object",
			stdout: `{"index":{"filename":"index.cjs","resolvedFrom":"exports['.'].require"}}`,
			want:   domain.Report{"index": {Filename: "index.cjs", ResolvedFrom: "exports['.'].require"}},
		},
		{
			name:   "noise before and after",
			stdout: "warning: experimental\n{\"index\":{\"filename\":\"index.mjs\",\"resolvedFrom\":\"exports['.'].import\"}}\ndone\n",
			want:   domain.Report{"index": {Filename: "index.mjs", ResolvedFrom: "exports['.'].import"}},
		},
		{name: "empty object", stdout: "{}", want: domain.Report{}},
		{name: "no output", stdout: "", wantErr: true},
		{name: "truncated", stdout: `{"index":{"filename":`, wantErr: true},
		{name: "wrong shape", stdout: `{"index":"index.mjs"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := matrix.ParseReport([]byte(tt.stdout))
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrObservationParseFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestObservedReport(t *testing.T) {
	h, pkg := fixture(t)

	observed := []domain.Observation{
		{Specifier: "pkg", File: "node_modules/pkg/dist/index.cjs"},
		{Specifier: "pkg/client", File: filepath.Join(h.Root, "node_modules/pkg/dist/client.cjs")},
		// Not reachable through the export map.
		{Specifier: "pkg/runtime", File: "node_modules/pkg/dist/internal/runtime.js"},
		{Specifier: "other", File: "node_modules/other/index.js"},
	}

	report := matrix.ObservedReport(pkg, pkg.Exports, h.Subpaths, h.Root, observed)
	assert.Equal(t, domain.Report{
		"index":   {Filename: "index.cjs", ResolvedFrom: "exports['.'].require"},
		"client":  {Filename: "client.cjs", ResolvedFrom: "exports['.'].require"},
		"runtime": {Filename: "runtime.js"},
	}, report)
}

func TestObservedReport_SymlinkedPackage(t *testing.T) {
	h, pkg := fixture(t)

	store := filepath.Join(h.Root, "node_modules", ".pnpm", "pkg@1.0.0", "node_modules", "pkg")
	require.NoError(t, os.MkdirAll(store, 0o755))
	require.NoError(t, os.Symlink(store, pkg.Dir))

	observed := []domain.Observation{
		{Specifier: "pkg/runtime", File: "node_modules/.pnpm/pkg@1.0.0/node_modules/pkg/dist/runtime-node.mjs"},
	}

	report := matrix.ObservedReport(pkg, pkg.Exports, h.Subpaths, h.Root, observed)
	assert.Equal(t, domain.Report{
		"runtime": {Filename: "runtime-node.mjs", ResolvedFrom: "exports['.'].node.import"},
	}, report)
}
