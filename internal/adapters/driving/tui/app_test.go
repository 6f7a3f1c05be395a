package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gridview/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/gridview/internal/core/domain"
	"github.com/custodia-labs/gridview/internal/core/services"
)

func newTestPorts(t *testing.T) *Ports {
	t.Helper()
	svc := services.NewDatasetService(nil)
	require.NoError(t, svc.Register(domain.Schema{
		Name:   "people",
		RowKey: "id",
		Fields: []domain.FieldSpec{
			{Name: "id", Sort: domain.SortNumeric, Sortable: true, Filter: domain.FilterNumeric, Filterable: true},
			{Name: "name", Sort: domain.SortString, Sortable: true, Filter: domain.FilterContains, Filterable: true},
		},
	}))
	require.NoError(t, svc.Load("people", "people.csv", []domain.Record{
		{"id": 1, "name": "Ann"},
		{"id": 2, "name": "Bob"},
	}))
	return NewPorts(svc, nil)
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(newTestPorts(t))
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(newTestPorts(t))

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewDatasets, app.CurrentView())
	assert.False(t, app.Ready())
	assert.Equal(t, "Initialising...", app.View())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{})
	assert.ErrorIs(t, err, ErrMissingDatasetService)
	assert.Nil(t, app)

	app, err = NewApp(nil)
	assert.ErrorIs(t, err, ErrInvalidPorts)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app := newTestApp(t)

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	assert.Equal(t, app, app.WithContext(ctx))
}

func TestApp_Init(t *testing.T) {
	app := newTestApp(t)
	assert.NotNil(t, app.Init())

	app.WithDataset("people")
	assert.NotNil(t, app.Init())
}

func TestApp_Update_WindowSize(t *testing.T) {
	app, err := NewApp(newTestPorts(t))
	require.NoError(t, err)

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
}

func TestApp_Update_CtrlC(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_DatasetSelected(t *testing.T) {
	app := newTestApp(t)

	app.Update(messages.DatasetSelected{Name: "people"})
	assert.Equal(t, messages.ViewGrid, app.CurrentView())
	assert.Equal(t, "people", app.Grid().Dataset())
	assert.Contains(t, app.View(), "Ann")

	app.Update(messages.DatasetSelected{Name: "missing"})
	assert.ErrorIs(t, app.Err(), domain.ErrNotFound)
}

func TestApp_GridKeys(t *testing.T) {
	app := newTestApp(t)
	app.Update(messages.DatasetSelected{Name: "people"})

	app.Update(tea.KeyMsg{Type: tea.KeyRight})
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})

	assert.Equal(t, []string{"2", "1"}, app.Grid().IDs())
}

func TestApp_PickerFlow(t *testing.T) {
	app := newTestApp(t)
	app.Update(messages.DatasetSelected{Name: "people"})

	app.Update(messages.PickerRequested{Dataset: "people", Field: "name"})
	require.Equal(t, messages.ViewPicker, app.CurrentView())
	assert.Len(t, app.Picker().Options(), 2)

	app.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	app.Update(messages.FilterChanged{Dataset: "people", Field: "name"})
	app.Update(messages.ViewChanged{View: messages.ViewGrid})

	assert.Equal(t, messages.ViewGrid, app.CurrentView())
	assert.Equal(t, []string{"1"}, app.Grid().IDs())
}

func TestApp_PickerUnknownField(t *testing.T) {
	app := newTestApp(t)
	app.Update(messages.DatasetSelected{Name: "people"})

	app.Update(messages.PickerRequested{Dataset: "people", Field: "nope"})

	assert.Equal(t, messages.ViewGrid, app.CurrentView())
	assert.ErrorIs(t, app.Grid().Err(), domain.ErrUnknownField)
}

func TestApp_Help(t *testing.T) {
	app := newTestApp(t)
	app.Update(messages.DatasetSelected{Name: "people"})

	app.Update(messages.ViewChanged{View: messages.ViewHelp})
	assert.Equal(t, messages.ViewHelp, app.CurrentView())
	assert.Contains(t, app.View(), "select all")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewGrid, app.CurrentView())
}

func TestApp_BackToDatasets(t *testing.T) {
	app := newTestApp(t)
	app.Update(messages.DatasetSelected{Name: "people"})

	_, cmd := app.Update(messages.ViewChanged{View: messages.ViewDatasets})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Equal(t, messages.ViewDatasets, app.CurrentView())
	assert.Contains(t, app.View(), "people.csv")
}

func TestApp_ErrorOccurred(t *testing.T) {
	app := newTestApp(t)

	app.Update(messages.ErrorOccurred{Err: domain.ErrNotFound})

	assert.ErrorIs(t, app.Err(), domain.ErrNotFound)
	assert.Contains(t, app.View(), "Error: not found")
}
