package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/exportmap/internal/core/domain"
)

func TestExpandArgs(t *testing.T) {
	vars := domain.CommandVars{
		OutDir:     "/h/.exportmap/dist/webpack-cjs-123",
		Root:       "/h",
		Entry:      "src/index.ts",
		PackageDir: "/h/node_modules/pkg",
		Scenario:   "webpack-cjs",
		Format:     domain.FormatCJS,
		Platform:   domain.PlatformNode,
	}

	args, err := domain.ExpandArgs([]string{
		"npx", "webpack", "--output-path", "{{.OutDir}}",
		"--name={{.Scenario}}.{{.Format}}.{{.Platform}}",
		"{{.Root}}/{{.Entry}}",
	}, vars)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"npx", "webpack", "--output-path", "/h/.exportmap/dist/webpack-cjs-123",
		"--name=webpack-cjs.cjs.node",
		"/h/src/index.ts",
	}, args)
}

func TestExpandArgs_Errors(t *testing.T) {
	for _, arg := range []string{"{{.OutDir", "{{.Missing}}"} {
		t.Run(arg, func(t *testing.T) {
			_, err := domain.ExpandArgs([]string{"node", arg}, domain.CommandVars{})
			require.ErrorIs(t, err, domain.ErrCommandTemplateFailed)
		})
	}
}

func TestExpandArgs_Empty(t *testing.T) {
	args, err := domain.ExpandArgs(nil, domain.CommandVars{})
	require.NoError(t, err)
	assert.Empty(t, args)
}
