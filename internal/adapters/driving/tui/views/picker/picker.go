// Package picker provides the value picker view for the TUI. It lists the
// options of one field and toggles exact-match filter values.
package picker

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/gridview/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/gridview/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/gridview/internal/core/domain"
	"github.com/custodia-labs/gridview/internal/core/ports/driving"
)

// View lists the options of a field.
type View struct {
	styles  *styles.Styles
	service driving.DatasetService

	dataset string
	field   domain.FieldSpec
	options []domain.FieldOption
	filter  domain.FieldFilter

	selected int
	offset   int
	err      error
	width    int
	height   int
}

// NewView creates a picker view.
func NewView(s *styles.Styles, service driving.DatasetService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:  s,
		service: service,
		width:   80,
		height:  24,
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Open shows the options of field.
func (v *View) Open(dataset, field string) error {
	schema, err := v.service.Schema(dataset)
	if err != nil {
		return err
	}
	spec, ok := schema.Field(field)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownField, field)
	}
	v.dataset = dataset
	v.field = spec
	v.selected, v.offset = 0, 0
	return v.refresh()
}

func (v *View) refresh() error {
	options, err := v.service.PickerOptions(v.dataset, v.field.Name)
	if err != nil {
		return err
	}
	state, err := v.service.FilterState(v.dataset)
	if err != nil {
		return err
	}
	v.options = options
	v.filter = state.Field(v.field.Name)
	if v.selected >= len(v.options) {
		v.selected = max(len(v.options)-1, 0)
	}
	return nil
}

// Checked reports whether option i is an active filter value.
func (v *View) Checked(i int) bool {
	return v.filter.Has(v.options[i].Value, domain.FilterExact)
}

// Update handles messages for the picker.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.selected > 0 {
				v.selected--
			}
		case "down", "j":
			if v.selected < len(v.options)-1 {
				v.selected++
			}
		case " ", "enter":
			if len(v.options) > 0 {
				v.err = v.toggle(v.selected)
			}
		case "c":
			v.err = v.service.ClearFilter(v.dataset, v.field.Name)
			if v.err == nil {
				v.err = v.refresh()
			}
		case "esc", "q":
			dataset, field := v.dataset, v.field.Name
			return v, tea.Batch(
				func() tea.Msg { return messages.FilterChanged{Dataset: dataset, Field: field} },
				func() tea.Msg { return messages.ViewChanged{View: messages.ViewGrid} },
			)
		}
		v.scroll()
	}
	return v, nil
}

// toggle adds or removes option i as an exact-match filter value.
func (v *View) toggle(i int) error {
	value := v.options[i].Value
	var err error
	if v.Checked(i) {
		err = v.service.RemoveFilterValue(v.dataset, v.field.Name, value, domain.FilterExact)
	} else {
		err = v.service.AddFilterValue(v.dataset, v.field.Name, value, domain.FilterExact)
	}
	if err != nil {
		return err
	}
	return v.refresh()
}

func (v *View) pageSize() int {
	return max(v.height-6, 1)
}

func (v *View) scroll() {
	page := v.pageSize()
	if v.selected < v.offset {
		v.offset = v.selected
	}
	if v.selected >= v.offset+page {
		v.offset = v.selected - page + 1
	}
}

// View renders the option list.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(v.dataset + " / " + v.field.Title()))
	b.WriteString("\n\n")

	if len(v.options) == 0 {
		b.WriteString(v.styles.Muted.Render("  No values."))
		b.WriteString("\n")
	}
	for i := v.offset; i < len(v.options) && i < v.offset+v.pageSize(); i++ {
		box := "[ ] "
		if v.Checked(i) {
			box = "[x] "
		}
		line := box + v.options[i].Label
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render("> " + line))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Space] Toggle  [c] Clear  [Esc] Back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Options returns the listed options.
func (v *View) Options() []domain.FieldOption {
	return v.options
}

// Selected returns the option under the cursor.
func (v *View) Selected() int {
	return v.selected
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
