package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestNewFilterInput(t *testing.T) {
	in := NewFilterInput(nil)

	assert.False(t, in.Focused())
	assert.Empty(t, in.Value())
	assert.Equal(t, 50, in.Width())
	assert.NotNil(t, in.Init())
}

func TestFilterInput_OpenAndType(t *testing.T) {
	in := NewFilterInput(nil)
	in.SetValue("stale")

	in.Open("name")
	assert.True(t, in.Focused())
	assert.Equal(t, "name", in.Field())
	assert.Empty(t, in.Value())

	in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ann")})
	assert.Equal(t, "ann", in.Value())
	assert.Contains(t, in.View(), "Filter name:")

	in.Blur()
	assert.False(t, in.Focused())

	in.Reset()
	assert.Empty(t, in.Value())
	assert.Empty(t, in.Field())
}

func TestFilterInput_SetWidth(t *testing.T) {
	in := NewFilterInput(nil)

	in.SetWidth(100)
	assert.Equal(t, 100, in.Width())
	assert.Equal(t, 80, in.textinput.Width)

	in.SetWidth(10)
	assert.Equal(t, 20, in.textinput.Width)
}
