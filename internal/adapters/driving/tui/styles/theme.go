// Package styles holds the palette and lipgloss styles of the grid TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette names the colours the grid is drawn with. Each colour adapts to
// light and dark terminal backgrounds.
type Palette struct {
	Accent  lipgloss.AdaptiveColor // active heading, titles
	Heading lipgloss.AdaptiveColor // column headings
	Text    lipgloss.AdaptiveColor
	Dim     lipgloss.AdaptiveColor // help, details, status bar text
	Rule    lipgloss.AdaptiveColor // cursor row and input borders
	Bar     lipgloss.AdaptiveColor // status bar background
	Mark    lipgloss.AdaptiveColor // selected rows
	Filter  lipgloss.AdaptiveColor // headings with an active filter
	Alert   lipgloss.AdaptiveColor
}

// DefaultPalette returns the palette used when none is configured.
func DefaultPalette() Palette {
	return Palette{
		Accent:  lipgloss.AdaptiveColor{Light: "#5B21B6", Dark: "#A78BFA"},
		Heading: lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#67E8F9"},
		Text:    lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"},
		Dim:     lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"},
		Rule:    lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#374151"},
		Bar:     lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#111827"},
		Mark:    lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#86EFAC"},
		Filter:  lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FCD34D"},
		Alert:   lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#FCA5A5"},
	}
}

// Styles are the rendered styles of the grid, picker and dataset views.
type Styles struct {
	Palette Palette

	// Grid.
	Header       lipgloss.Style
	HeaderActive lipgloss.Style
	Filtered     lipgloss.Style
	Cursor       lipgloss.Style
	Marked       lipgloss.Style
	Detail       lipgloss.Style

	// Chrome around the grid.
	Title      lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Selected   lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	Warning    lipgloss.Style
	Error      lipgloss.Style
}

// New builds styles from p.
func New(p Palette) *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Palette: p,

		Header:       plain.Bold(true).Foreground(p.Heading),
		HeaderActive: plain.Bold(true).Underline(true).Foreground(p.Accent),
		Filtered:     plain.Foreground(p.Filter),
		Cursor:       plain.Foreground(p.Text).Background(p.Rule),
		Marked:       plain.Bold(true).Foreground(p.Mark),
		Detail:       plain.Foreground(p.Dim).PaddingLeft(4),

		Title:    plain.Bold(true).Foreground(p.Accent),
		Normal:   plain.Foreground(p.Text),
		Muted:    plain.Foreground(p.Dim),
		Selected: plain.Bold(true).Foreground(p.Bar).Background(p.Accent),
		InputField: plain.
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(p.Rule).
			Padding(0, 1),
		StatusBar: plain.Foreground(p.Dim).Background(p.Bar).Padding(0, 1),
		Help:      plain.Foreground(p.Dim),
		Warning:   plain.Foreground(p.Filter),
		Error:     plain.Foreground(p.Alert),
	}
}

// DefaultStyles returns styles built from DefaultPalette.
func DefaultStyles() *Styles {
	return New(DefaultPalette())
}
