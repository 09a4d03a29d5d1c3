package report_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/exportmap/internal/core/domain"
	"go.trai.ch/exportmap/internal/engine/resolver"
	"go.trai.ch/exportmap/internal/ui/report"
)

func runtimeMap(t *testing.T) domain.ExportMap {
	t.Helper()
	m, err := domain.NewExportMap(
		domain.Export(".", domain.Target("./dist/index.mjs")),
		domain.Export("./runtime", domain.Conditions(
			domain.When("bun", domain.Target("./dist/runtime-bun.ts")),
			domain.When("default", domain.Target("./dist/runtime.mjs")),
			domain.When("node", domain.Conditions(
				domain.When("import", domain.Target("./dist/runtime-node.mjs")),
				domain.When("require", domain.Target("./dist/runtime-node.cjs")),
			)),
		)),
	)
	require.NoError(t, err)
	return m
}

func TestPrinter_Explanation(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	m := runtimeMap(t)

	var buf bytes.Buffer
	p := report.New(&buf)
	p.Explanation(resolver.Explain(m, "./runtime", domain.NewConditionSet("node", "require")))
	p.Explanation(resolver.Explain(m, "./runtime", domain.NewConditionSet("deno")))

	g := goldie.New(t)
	g.Assert(t, "explanation", buf.Bytes())
}

func TestPrinter_ExplanationError(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	report.New(&buf).Explanation(resolver.Explain(runtimeMap(t), "./missing", domain.NewConditionSet("import")))

	assert.Contains(t, buf.String(), "resolving ./missing with [import]")
	assert.Contains(t, buf.String(), "✗ ")
	assert.Contains(t, buf.String(), domain.ErrSubpathNotFound.Error())
}

func outcomes() []domain.Outcome {
	return []domain.Outcome{
		{
			Scenario: "esbuild-node-esm",
			Preset:   "esbuild/esm/node",
			Active:   []string{"node", "import"},
			Status:   domain.StatusPassed,
			Duration: 1234 * time.Microsecond,
		},
		{
			Scenario: "webpack-cjs",
			Preset:   "webpack/cjs/node",
			Active:   []string{"node", "require"},
			Status:   domain.StatusFailed,
			Mismatches: []domain.Mismatch{
				{Export: "runtime", Kind: domain.MismatchFilename, Expected: "runtime-node.cjs", Observed: "runtime.cjs"},
				{Export: "extra", Kind: domain.MismatchUnexpected, Observed: "extra.cjs"},
			},
		},
		{
			Scenario: "bun-ts",
			Preset:   "bun/esm/node",
			Active:   []string{"bun", "import"},
			Status:   domain.StatusFailed,
			Message:  "command failed",
			Err:      errors.New("command failed"),
		},
		{
			Scenario: "deno-ts",
			Preset:   "deno/esm/node",
			Active:   []string{"deno", "import"},
			Status:   domain.StatusCached,
		},
	}
}

func TestPrinter_Mismatches(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	report.New(&buf).Mismatches(outcomes())
	out := buf.String()

	assert.NotContains(t, out, "esbuild-node-esm")
	assert.NotContains(t, out, "deno-ts")
	assert.Contains(t, out, "✗ webpack-cjs (webpack/cjs/node: node, require)")
	assert.Contains(t, out, "runtime-node.cjs")
	assert.Contains(t, out, "unexpected")
	assert.Contains(t, out, "extra.cjs")
	assert.Contains(t, out, "✗ bun-ts (bun/esm/node: bun, import)\n  command failed\n")
}

func TestPrinter_Summary(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	report.New(&buf).Summary(outcomes())
	out := buf.String()

	for _, want := range []string{"esbuild-node-esm", "✓ passed", "✗ failed", "~ cached", "1ms", "node, import"} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, out, "1 passed, 2 failed, 1 cached\n")
}

func TestPrinter_Presets(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var rows []report.ScenarioPreset
	for _, s := range domain.DefaultScenarios()[:2] {
		s.Normalize()
		p, err := domain.PresetFor(s)
		require.NoError(t, err)
		rows = append(rows, report.ScenarioPreset{Scenario: s, Preset: p})
	}

	var buf bytes.Buffer
	report.New(&buf).Presets(rows)
	out := buf.String()

	assert.Contains(t, out, "esbuild-node-cjs ")
	assert.Contains(t, out, "esbuild-node-cjs-conditions")
	assert.Contains(t, out, "esbuild/cjs/node+custom")
	assert.Contains(t, out, "node, require")
}

func TestPrinter_Expectations(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	report.New(&buf).Expectations([]domain.Outcome{{
		Scenario: "bun-ts",
		Preset:   "bun/esm/node",
		Active:   []string{"bun", "import"},
		Status:   domain.StatusPlanned,
		Expected: domain.Report{
			"runtime": {Filename: "runtime-bun.ts", ResolvedFrom: "exports['.'].bun.import"},
			"index":   {Filename: "index.mjs", ResolvedFrom: "exports['.'].import"},
		},
	}})
	out := buf.String()

	assert.Contains(t, out, "bun-ts (bun/esm/node: bun, import)\n")
	assert.Contains(t, out, "exports['.'].bun.import")
	assert.Less(t, strings.Index(out, "index.mjs"), strings.Index(out, "runtime-bun.ts"), "exports are sorted by name")
}
