package report

import (
	"fmt"
	"strings"

	"go.trai.ch/exportmap/internal/core/domain"
	"go.trai.ch/exportmap/internal/engine/resolver"
	"go.trai.ch/exportmap/internal/ui/style"
)

// Resolution prints where subpath resolved and through which conditions.
func (p *Printer) Resolution(res domain.ResolutionResult) {
	_, _ = fmt.Fprintf(p.w, "%s %s %s\n", res.Subpath, style.Arrow, res.File)
	_, _ = fmt.Fprintf(p.w, "  %s\n", p.faint.Render(res.Location()))
}

// Explanation prints every condition key the resolver visited, indented by depth.
func (p *Printer) Explanation(ex resolver.Explanation) {
	_, _ = fmt.Fprintf(p.w, "resolving %s with [%s]\n", ex.Subpath, strings.Join(ex.Active, ", "))

	for _, s := range ex.Steps {
		indent := strings.Repeat("  ", s.Depth()+1)
		line := fmt.Sprintf("%s%s %s", indent, decisionIcon(s.Decision), s.Key)
		if s.Decision == resolver.DecisionSkipped || s.Decision == resolver.DecisionDeferred {
			line = p.faint.Render(line + " (" + string(s.Decision) + ")")
		}
		_, _ = fmt.Fprintln(p.w, line)
	}

	if ex.Err != nil {
		_, _ = fmt.Fprintf(p.w, "%s %v\n", style.Cross, ex.Err)
		return
	}
	p.Resolution(ex.Result)
}

func decisionIcon(d resolver.Decision) string {
	switch d {
	case resolver.DecisionMatched, resolver.DecisionFallback:
		return style.Check
	case resolver.DecisionDeferred:
		return style.Warning
	default:
		return style.Circle
	}
}
