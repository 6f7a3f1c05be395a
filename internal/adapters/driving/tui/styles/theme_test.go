package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultStyles(t *testing.T) {
	s := DefaultStyles()

	require.NotNil(t, s)
	assert.Equal(t, DefaultPalette(), s.Palette)
	assert.True(t, s.Header.GetBold())
	assert.True(t, s.HeaderActive.GetUnderline())
	assert.True(t, s.Marked.GetBold())
	assert.Equal(t, 4, s.Detail.GetPaddingLeft())
}

func TestNew_CustomPalette(t *testing.T) {
	p := DefaultPalette()
	p.Accent = lipgloss.AdaptiveColor{Light: "#FF0000", Dark: "#FF0000"}

	s := New(p)

	assert.Equal(t, p.Accent, s.Palette.Accent)
	assert.Equal(t, lipgloss.TerminalColor(p.Accent), s.Title.GetForeground())
	assert.Contains(t, s.Title.Render("gridview"), "gridview")
}

func TestNew_StylesAreIndependent(t *testing.T) {
	s := DefaultStyles()

	assert.False(t, s.Filtered.GetBold())
	assert.False(t, s.Cursor.GetBold())
	assert.True(t, s.Header.GetBold())
}
