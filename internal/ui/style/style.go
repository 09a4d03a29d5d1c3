// Package style provides shared UI styling primitives: brand colors, icons
// and the status vocabulary of scenario outcomes.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/exportmap/internal/core/domain"
)

// Brand Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Mist   = lipgloss.Color("#F6F7FB")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Tilde   = "~"
	Dot     = "●"
	Circle  = "○"
	Arrow   = "→"
)

// StatusIcon returns the icon shown next to a scenario outcome.
func StatusIcon(s domain.OutcomeStatus) string {
	switch s {
	case domain.StatusPassed:
		return Check
	case domain.StatusFailed:
		return Cross
	case domain.StatusCached:
		return Tilde
	default:
		return Circle
	}
}

// StatusColor returns the color of a scenario outcome.
func StatusColor(s domain.OutcomeStatus) lipgloss.Color {
	switch s {
	case domain.StatusPassed:
		return Green
	case domain.StatusFailed:
		return Red
	case domain.StatusCached:
		return Iris
	default:
		return Slate
	}
}
