// Package detector picks the output mode from the terminal and the environment.
package detector

import (
	"os"

	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// OutputMode represents the rendering mode for scenario progress.
type OutputMode int

const (
	// ModeAuto detects the appropriate mode.
	ModeAuto OutputMode = iota
	// ModeTUI forces the interactive progress renderer.
	ModeTUI
	// ModeLinear forces the line-oriented CI renderer.
	ModeLinear
)

// ErrUnknownOutputMode is returned for an --output value that names no mode.
var ErrUnknownOutputMode = zerr.New("unknown output mode, expected 'auto', 'tui' or 'linear'")

func (m OutputMode) String() string {
	switch m {
	case ModeTUI:
		return "tui"
	case ModeLinear:
		return "linear"
	default:
		return "auto"
	}
}

// DetectEnvironment returns the recommended mode for the current process.
func DetectEnvironment() OutputMode {
	return Detect(term.IsTerminal(int(os.Stdout.Fd())), os.Getenv)
}

// Detect returns ModeLinear when stdout is not a terminal or CI is set, and ModeTUI otherwise.
func Detect(isTTY bool, getenv func(string) string) OutputMode {
	ci := getenv("CI")
	if !isTTY || ci == "true" || ci == "1" {
		return ModeLinear
	}
	return ModeTUI
}

// ParseMode validates a user supplied mode. "ci" is an alias for "linear".
func ParseMode(flag string) (OutputMode, error) {
	switch flag {
	case "auto", "":
		return ModeAuto, nil
	case "tui":
		return ModeTUI, nil
	case "linear", "ci":
		return ModeLinear, nil
	default:
		return ModeAuto, zerr.With(zerr.Wrap(ErrUnknownOutputMode, "invalid --output"), "value", flag)
	}
}

// ResolveMode applies the user's flag on top of the detected mode.
// Unknown flags keep the detected mode.
func ResolveMode(autoDetected OutputMode, userFlag string) OutputMode {
	mode, err := ParseMode(userFlag)
	if err != nil || mode == ModeAuto {
		return autoDetected
	}
	return mode
}
