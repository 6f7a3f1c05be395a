// Package datasets is the TUI screen listing loaded datasets.
package datasets

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/gridview/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/gridview/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/gridview/internal/core/domain"
	"github.com/custodia-labs/gridview/internal/core/ports/driving"
)

const (
	nameWidth   = 20
	rowsWidth   = 8
	loadedWidth = 8
	// chrome is the title, blank lines and help line around the table.
	chrome = 6
)

// View shows one line per dataset in a bubbles table.
type View struct {
	styles  *styles.Styles
	service driving.DatasetService
	items   []domain.DatasetInfo
	table   table.Model
	width   int
	height  int
	ready   bool
}

// NewView creates the dataset list. service may be nil, in which case the
// list stays empty.
func NewView(s *styles.Styles, service driving.DatasetService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ts := table.DefaultStyles()
	ts.Header = s.Header.PaddingRight(1)
	ts.Selected = s.Selected
	ts.Cell = s.Normal.PaddingRight(1)

	v := &View{
		styles:  s,
		service: service,
		table:   table.New(table.WithFocused(true), table.WithStyles(ts)),
	}
	v.SetDimensions(80, 24)
	v.ready = false
	return v
}

// Init fetches the dataset list.
func (v *View) Init() tea.Cmd {
	service := v.service
	if service == nil {
		return nil
	}
	return func() tea.Msg {
		return messages.DatasetsLoaded{Datasets: service.Datasets()}
	}
}

// Update handles list refreshes and keys. Cursor movement is left to the
// table's own key map.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.DatasetsLoaded:
		v.setItems(msg.Datasets)
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if len(v.items) == 0 {
				return v, nil
			}
			name := v.items[v.Selected()].Name
			return v, func() tea.Msg { return messages.DatasetSelected{Name: name} }
		case "?":
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewHelp} }
		case "q":
			return v, tea.Quit
		}
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

func (v *View) setItems(items []domain.DatasetInfo) {
	v.items = items
	rows := make([]table.Row, len(items))
	for i, item := range items {
		loaded := ""
		if !item.LoadedAt.IsZero() {
			loaded = item.LoadedAt.Local().Format("15:04:05")
		}
		rows[i] = table.Row{item.Name, strconv.Itoa(item.Rows), item.Location, loaded}
	}
	v.table.SetRows(rows)
	if len(rows) > 0 && v.table.Cursor() >= len(rows) {
		v.table.SetCursor(len(rows) - 1)
	}
}

// View renders the title, the table and a help line.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("gridview"))
	b.WriteString("  ")
	b.WriteString(v.styles.Muted.Render("datasets"))
	b.WriteString("\n\n")

	if len(v.items) == 0 {
		b.WriteString(v.styles.Muted.Render("No datasets loaded. Pass a location to gridview tui."))
	} else {
		b.WriteString(v.table.View())
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Open  [?] Help  [q] Quit"))
	return b.String()
}

// SetDimensions resizes the table to the window.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	location := max(width-nameWidth-rowsWidth-loadedWidth-8, 10)
	v.table.SetColumns([]table.Column{
		{Title: "Name", Width: nameWidth},
		{Title: "Rows", Width: rowsWidth},
		{Title: "Location", Width: location},
		{Title: "Loaded", Width: loadedWidth},
	})
	v.table.SetWidth(width)
	v.table.SetHeight(max(height-chrome, 3))
}

// Selected is the index of the highlighted dataset.
func (v *View) Selected() int {
	return v.table.Cursor()
}

// Items returns the listed datasets.
func (v *View) Items() []domain.DatasetInfo {
	return v.items
}
