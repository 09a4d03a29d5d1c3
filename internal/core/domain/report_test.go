package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/exportmap/internal/core/domain"
)

func TestDiffReports(t *testing.T) {
	expected := domain.Report{
		"client":  {Filename: "client.mjs", ResolvedFrom: "exports['.'].import"},
		"index":   {Filename: "index.mjs", ResolvedFrom: "exports['.'].import"},
		"runtime": {Filename: "runtime-node.mjs", ResolvedFrom: "exports['.'].node.import"},
	}

	t.Run("identical", func(t *testing.T) {
		assert.Empty(t, domain.DiffReports(expected, expected))
	})

	t.Run("field and membership differences", func(t *testing.T) {
		observed := domain.Report{
			"client":  {Filename: "client.cjs", ResolvedFrom: "exports['.'].require"},
			"runtime": {Filename: "runtime-node.mjs", ResolvedFrom: "exports['.'].node.import"},
			"version": {Filename: "package.json", ResolvedFrom: "exports['.']"},
		}

		got := domain.DiffReports(expected, observed)
		assert.Equal(t, []domain.Mismatch{
			{Export: "client", Kind: domain.MismatchFilename, Expected: "client.mjs", Observed: "client.cjs"},
			{
				Export: "client", Kind: domain.MismatchResolvedFrom,
				Expected: "exports['.'].import", Observed: "exports['.'].require",
			},
			{Export: "index", Kind: domain.MismatchMissing, Expected: "index.mjs"},
			{Export: "version", Kind: domain.MismatchUnexpected, Observed: "package.json"},
		}, got)
	})
}

func TestReport_Names(t *testing.T) {
	r := domain.Report{"runtime": {}, "client": {}, "index": {}}
	assert.Equal(t, []string{"client", "index", "runtime"}, r.Names())
}

func TestValidateSubpaths(t *testing.T) {
	require.NoError(t, domain.ValidateSubpaths(domain.DefaultSubpaths()))

	err := domain.ValidateSubpaths([]domain.NamedSubpath{
		{Name: "index", Subpath: "."},
		{Name: "index", Subpath: "./index"},
	})
	require.ErrorIs(t, err, domain.ErrDuplicateSubpathName)

	err = domain.ValidateSubpaths([]domain.NamedSubpath{{Name: "bad name", Subpath: "."}})
	require.ErrorIs(t, err, domain.ErrInvalidScenarioName)
}
