// Package status renders the line under the grid: the dataset summary on the
// left and key hints on the right.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/gridview/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/gridview/internal/adapters/driving/tui/styles"
)

// State selects what the left side of the bar shows.
type State string

const (
	StateReady     State = "ready"
	StateLoading   State = "loading"
	StateFiltering State = "filtering"
	StateError     State = "error"
	StateHelp      State = "help"
)

// Bar displays the dataset summary and keybinding hints.
type Bar struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	spin     spinner.Model
	state    State
	message  string
	dataset  string
	rows     int
	total    int
	selected int
	sort     string
	filters  int
	width    int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		spin:   spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(s.Title)),
		state:  StateReady,
		width:  80,
	}
}

// StartLoading shows message next to a spinner and returns the command that
// animates it.
func (s *Bar) StartLoading(message string) tea.Cmd {
	s.state = StateLoading
	s.message = message
	return s.spin.Tick
}

// Update advances the spinner while loading. Other state changes go
// through the setters.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	tick, ok := msg.(spinner.TickMsg)
	if !ok || s.state != StateLoading {
		return s, nil
	}
	var cmd tea.Cmd
	s.spin, cmd = s.spin.Update(tick)
	return s, cmd
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders the dataset summary or the current message.
func (s *Bar) renderLeft() string {
	switch s.state {
	case StateLoading:
		message := s.message
		if message == "" {
			message = "Loading..."
		}
		return s.spin.View() + " " + s.styles.Muted.Render(message)
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		}
		return s.styles.Error.Render("Error")
	case StateHelp:
		return s.styles.Normal.Render("Help")
	case StateFiltering:
		return s.styles.Warning.Render("Filter: enter to apply, esc to cancel")
	}
	if s.dataset == "" {
		return s.styles.Muted.Render("Ready")
	}
	return s.styles.Normal.Render(s.Summary())
}

// Summary describes the dataset, e.g. "people  3/10 rows  1 selected".
func (s *Bar) Summary() string {
	parts := []string{s.dataset, fmt.Sprintf("%d/%d rows", s.rows, s.total)}
	if s.selected > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", s.selected))
	}
	if s.filters > 0 {
		parts = append(parts, fmt.Sprintf("%d filtered", s.filters))
	}
	if s.sort != "" {
		parts = append(parts, "sort: "+s.sort)
	}
	if s.message != "" {
		parts = append(parts, s.message)
	}
	return strings.Join(parts, "  ")
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.dataset != "" && s.state == StateReady {
		bindings = s.keymap.GridHelp()
	} else {
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetDataset sets the dataset name and row counts.
func (s *Bar) SetDataset(name string, rows, total int) {
	s.dataset = name
	s.rows = rows
	s.total = total
}

// SetSelected sets the number of selected rows.
func (s *Bar) SetSelected(n int) {
	s.selected = n
}

// SetSort sets the sort summary, e.g. "name asc, age desc".
func (s *Bar) SetSort(summary string) {
	s.sort = summary
}

// SetFilters sets the number of filtered fields.
func (s *Bar) SetFilters(n int) {
	s.filters = n
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to default state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.dataset = ""
	s.rows, s.total, s.selected, s.filters = 0, 0, 0, 0
	s.sort = ""
}
