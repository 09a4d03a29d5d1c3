// Package report renders run outcomes, mismatch tables, preset tables and
// resolution traces for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.trai.ch/exportmap/internal/core/domain"
	"go.trai.ch/exportmap/internal/ui/output"
	"go.trai.ch/exportmap/internal/ui/style"
)

// Printer writes styled reports to a single writer.
type Printer struct {
	w      io.Writer
	r      *lipgloss.Renderer
	header lipgloss.Style
	faint  lipgloss.Style
	border lipgloss.Style
	cell   lipgloss.Style
}

// New creates a Printer writing to w.
func New(w io.Writer) *Printer {
	r := output.Renderer(w)
	return &Printer{
		w:      w,
		r:      r,
		header: r.NewStyle().Bold(true).Foreground(style.Iris).Padding(0, 1),
		faint:  r.NewStyle().Foreground(style.Slate),
		border: r.NewStyle().Foreground(style.Slate),
		cell:   r.NewStyle().Padding(0, 1),
	}
}

func (p *Printer) table(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(p.border).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.header
			}
			return p.cell
		})
}

// Mismatches prints one table per failed scenario listing how the observed report
// differs from the expected one. Failures without mismatches print their error.
func (p *Printer) Mismatches(outcomes []domain.Outcome) {
	for _, o := range outcomes {
		if !o.Failed() {
			continue
		}

		title := p.r.NewStyle().Bold(true).Foreground(style.Red).
			Render(fmt.Sprintf("%s %s", style.Cross, o.Scenario))
		_, _ = fmt.Fprintf(p.w, "%s %s\n", title, p.faint.Render("("+o.Preset+": "+conditions(o.Active)+")"))

		if len(o.Mismatches) == 0 {
			if o.Message != "" {
				_, _ = fmt.Fprintf(p.w, "  %s\n\n", o.Message)
			}
			continue
		}

		t := p.table("export", "kind", "expected", "observed")
		for _, m := range o.Mismatches {
			t.Row(m.Export, string(m.Kind), orDash(m.Expected), orDash(m.Observed))
		}
		_, _ = fmt.Fprintln(p.w, t.Render())
		_, _ = fmt.Fprintln(p.w)
	}
}

// Summary prints the outcome of every scenario followed by the totals.
func (p *Printer) Summary(outcomes []domain.Outcome) {
	t := p.table("scenario", "status", "preset", "conditions", "time")
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return p.header
		}
		if col == 1 && row >= 0 && row < len(outcomes) {
			return p.cell.Foreground(style.StatusColor(outcomes[row].Status))
		}
		return p.cell
	})

	var passed, failed, cached, planned int
	for _, o := range outcomes {
		switch o.Status {
		case domain.StatusPassed:
			passed++
		case domain.StatusFailed:
			failed++
		case domain.StatusCached:
			cached++
		case domain.StatusPlanned:
			planned++
		}
		t.Row(
			o.Scenario,
			style.StatusIcon(o.Status)+" "+string(o.Status),
			o.Preset,
			conditions(o.Active),
			duration(o),
		)
	}

	_, _ = fmt.Fprintln(p.w, t.Render())

	parts := []string{fmt.Sprintf("%d passed", passed), fmt.Sprintf("%d failed", failed)}
	if cached > 0 {
		parts = append(parts, fmt.Sprintf("%d cached", cached))
	}
	if planned > 0 {
		parts = append(parts, fmt.Sprintf("%d planned", planned))
	}
	_, _ = fmt.Fprintln(p.w, strings.Join(parts, ", "))
}

// Expectations prints the report each scenario is expected to observe.
func (p *Printer) Expectations(outcomes []domain.Outcome) {
	for _, o := range outcomes {
		title := p.r.NewStyle().Bold(true).Render(o.Scenario)
		_, _ = fmt.Fprintf(p.w, "%s %s\n", title, p.faint.Render("("+o.Preset+": "+conditions(o.Active)+")"))
		if len(o.Expected) == 0 {
			continue
		}

		t := p.table("export", "filename", "resolved from")
		for _, name := range o.Expected.Names() {
			e := o.Expected[name]
			t.Row(name, e.Filename, e.ResolvedFrom)
		}
		_, _ = fmt.Fprintln(p.w, t.Render())
	}
}

// ScenarioPreset pairs a harness scenario with the preset it maps to.
type ScenarioPreset struct {
	Scenario domain.Scenario
	Preset   domain.Preset
}

// Presets prints the preset table for the harness scenarios.
func (p *Printer) Presets(rows []ScenarioPreset) {
	t := p.table("scenario", "bundler", "runtime", "format", "platform", "preset", "conditions")
	for _, row := range rows {
		s := row.Scenario
		t.Row(
			s.Name,
			orDash(string(s.Bundler)),
			orDash(string(s.Runtime)),
			string(s.Format),
			string(s.Platform),
			row.Preset.Name,
			conditions(row.Preset.Active.Keys()),
		)
	}
	_, _ = fmt.Fprintln(p.w, t.Render())
}

func conditions(keys []string) string {
	if len(keys) == 0 {
		return "(none)"
	}
	return strings.Join(keys, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func duration(o domain.Outcome) string {
	if o.Status == domain.StatusPlanned || o.Status == domain.StatusCached {
		return "-"
	}
	return o.Duration.Round(time.Millisecond).String()
}
