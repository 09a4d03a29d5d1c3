package output_test

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/exportmap/internal/ui/output"
)

func TestColorProfile(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, termenv.Ascii, output.ColorProfile(), "NO_COLOR should force Ascii profile")

	t.Setenv("NO_COLOR", "")
	p := output.ColorProfile()
	assert.True(t, p >= termenv.TrueColor && p <= termenv.Ascii, "should return a valid profile")
}

func TestColorProfileANSI(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	assert.Equal(t, termenv.ANSI, output.ColorProfileANSI())

	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, termenv.Ascii, output.ColorProfileANSI())
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	out := output.New(&buf)

	_, _ = out.WriteString("test")
	assert.Equal(t, "test", buf.String())
	assert.NotNil(t, output.New(nil))
}

func TestRenderer_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	r := output.Renderer(&bytes.Buffer{})
	assert.Equal(t, termenv.Ascii, r.ColorProfile())
	assert.Equal(t, "plain", r.NewStyle().Foreground(lipgloss.Color("#FF0000")).Render("plain"))
}
