// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// Back returns to the previous view.
	Back key.Binding

	// Up and Down move the row cursor.
	Up   key.Binding
	Down key.Binding

	// Left and Right move the column cursor.
	Left  key.Binding
	Right key.Binding

	// PageUp and PageDown move the cursor by a screen.
	PageUp   key.Binding
	PageDown key.Binding

	// Select clicks the row under the cursor.
	Select key.Binding

	// Extend shift-clicks the row under the cursor, selecting the range
	// from the last selected row.
	Extend key.Binding

	// Toggle flips the selection of the row under the cursor.
	Toggle key.Binding

	// StepUp and StepDown move a single-row selection.
	StepUp   key.Binding
	StepDown key.Binding

	// SelectAll selects every visible row.
	SelectAll key.Binding

	// ClearSelection empties the selection.
	ClearSelection key.Binding

	// Sort clicks the current column header.
	Sort key.Binding

	// SortAdd shift-clicks the current column header.
	SortAdd key.Binding

	// SortRemove ctrl-clicks the current column header.
	SortRemove key.Binding

	// Filter types a filter value for the current column.
	Filter key.Binding

	// Picker opens the value picker for the current column.
	Picker key.Binding

	// ClearFilter clears the current column's filter.
	ClearFilter key.Binding

	// ClearAllFilters clears every filter.
	ClearAllFilters key.Binding

	// Expand flips the expansion of the row under the cursor.
	Expand key.Binding

	// Reload reads the dataset again from its location.
	Reload key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "column"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "column"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "page down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Extend: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "extend"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		StepUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "select previous"),
		),
		StepDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "select next"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "select all"),
		),
		ClearSelection: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "unselect"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		SortAdd: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "add sort"),
		),
		SortRemove: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "unsort"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Picker: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "values"),
		),
		ClearFilter: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear filter"),
		),
		ClearAllFilters: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear all"),
		),
		Expand: key.NewBinding(
			key.WithKeys("e", "tab"),
			key.WithHelp("e", "expand"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// GridHelp returns keybindings for the grid view.
func (k *KeyMap) GridHelp() []key.Binding {
	return []key.Binding{k.Sort, k.Filter, k.Picker, k.Toggle, k.Back}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.PageUp, k.PageDown},
		{k.Select, k.Extend, k.Toggle, k.StepUp, k.StepDown, k.SelectAll, k.ClearSelection},
		{k.Sort, k.SortAdd, k.SortRemove},
		{k.Filter, k.Picker, k.ClearFilter, k.ClearAllFilters},
		{k.Expand, k.Reload, k.Back, k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
