package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/gridview/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/gridview/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/gridview/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/gridview/internal/adapters/driving/tui/views/datasets"
	"github.com/custodia-labs/gridview/internal/adapters/driving/tui/views/grid"
	"github.com/custodia-labs/gridview/internal/adapters/driving/tui/views/picker"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	datasetsView *datasets.View
	gridView     *grid.View
	pickerView   *picker.View

	// initial is opened straight away when set.
	initial string

	// currentView tracks which view is active; helpReturn is restored when
	// the help view closes.
	currentView messages.ViewType
	helpReturn  messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		datasetsView: datasets.NewView(s, ports.Datasets),
		gridView:     grid.NewView(s, ports.Datasets, ports.Loader),
		pickerView:   picker.NewView(s, ports.Datasets),
		currentView:  messages.ViewDatasets,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.gridView.SetContext(ctx)
	return a
}

// WithDataset opens name in the grid when the program starts.
func (a *App) WithDataset(name string) *App {
	a.initial = name
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tea.SetWindowTitle("gridview"),
		a.datasetsView.Init(),
	}
	if a.initial != "" {
		name := a.initial
		cmds = append(cmds, func() tea.Msg { return messages.DatasetSelected{Name: name} })
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocyclo // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.currentView {
		case messages.ViewDatasets:
			a.datasetsView, cmd = a.datasetsView.Update(msg)
		case messages.ViewGrid:
			a.gridView, cmd = a.gridView.Update(msg)
			a.err = a.gridView.Err()
		case messages.ViewPicker:
			a.pickerView, cmd = a.pickerView.Update(msg)
		case messages.ViewHelp:
			if msg.Type == tea.KeyEsc || msg.String() == "?" || msg.String() == "q" {
				a.currentView = a.helpReturn
			}
		}
		return a, cmd

	case messages.DatasetsLoaded:
		a.datasetsView, cmd = a.datasetsView.Update(msg)
		return a, cmd

	case messages.DatasetSelected:
		if err := a.gridView.SetDataset(msg.Name); err != nil {
			a.err = err
			return a, nil
		}
		a.err = nil
		a.currentView = messages.ViewGrid
		return a, nil

	case messages.PickerRequested:
		if err := a.pickerView.Open(msg.Dataset, msg.Field); err != nil {
			a.gridView, cmd = a.gridView.Update(messages.ErrorOccurred{Err: err})
			return a, cmd
		}
		a.currentView = messages.ViewPicker
		return a, nil

	case messages.FilterChanged:
		if err := a.gridView.Refresh(); err != nil {
			a.err = err
		}
		return a, nil

	case messages.DatasetReloaded:
		a.gridView, cmd = a.gridView.Update(msg)
		return a, tea.Batch(cmd, a.datasetsView.Init())

	case messages.ViewChanged:
		switch msg.View {
		case messages.ViewHelp:
			a.helpReturn = a.currentView
		case messages.ViewDatasets:
			cmd = a.datasetsView.Init()
		case messages.ViewGrid:
			if err := a.gridView.Refresh(); err != nil {
				a.err = err
			}
		case messages.ViewPicker:
		}
		a.currentView = msg.View
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, nil

	case spinner.TickMsg:
		a.gridView, cmd = a.gridView.Update(msg)
		return a, cmd
	}

	return a, nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	switch a.currentView {
	case messages.ViewGrid:
		return a.gridView.View()
	case messages.ViewPicker:
		return a.pickerView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		view := a.datasetsView.View()
		if a.err != nil {
			view += "\n\n" + a.styles.Error.Render("Error: "+a.err.Error())
		}
		return view
	}
}

// viewHelp renders the key bindings.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	for _, group := range keymap.DefaultKeyMap().FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-8s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Help.Render("[esc] back"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Grid returns the grid view.
func (a *App) Grid() *grid.View {
	return a.gridView
}

// Picker returns the picker view.
func (a *App) Picker() *picker.View {
	return a.pickerView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.datasetsView.SetDimensions(width, height)
	a.gridView.SetDimensions(width, height)
	a.pickerView.SetDimensions(width, height)
}
