package tui

import (
	"bytes"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/vito/midterm"
)

// screen replays a scenario's pty output so carriage returns and cursor
// movement from progress bars collapse the way a real terminal shows them.
type screen struct {
	vt  *midterm.Terminal
	buf bytes.Buffer
}

func newScreen() *screen {
	return &screen{vt: midterm.NewAutoResizingTerminal()}
}

func (s *screen) Write(p []byte) (int, error) {
	return s.vt.Write(p)
}

// lastLine returns the bottom-most non-blank row as plain, trimmed text.
func (s *screen) lastLine() string {
	for row := s.vt.UsedHeight() - 1; row >= 0; row-- {
		s.buf.Reset()
		_ = s.vt.RenderLine(&s.buf, row)
		if line := strings.TrimSpace(ansi.Strip(s.buf.String())); line != "" {
			return line
		}
	}
	return ""
}
