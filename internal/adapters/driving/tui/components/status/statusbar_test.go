package status

import (
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, 80, bar.Width())
	assert.Contains(t, bar.View(), "Ready")
	assert.Contains(t, bar.View(), "q: quit")
}

func TestBar_Summary(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetDataset("people", 3, 10)

	assert.Equal(t, "people  3/10 rows", bar.Summary())

	bar.SetSelected(2)
	bar.SetFilters(1)
	bar.SetSort("name asc")
	bar.SetMessage("reloaded")
	assert.Equal(t, "people  3/10 rows  2 selected  1 filtered  sort: name asc  reloaded", bar.Summary())

	bar.SetWidth(200)
	out := bar.View()
	assert.Contains(t, out, "2 selected")
	assert.Contains(t, out, "s: sort")
}

func TestBar_States(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(120)

	bar.SetState(StateLoading)
	assert.Contains(t, bar.View(), "Loading...")

	bar.SetState(StateError)
	bar.SetMessage("boom")
	assert.Contains(t, bar.View(), "Error: boom")

	bar.SetState(StateFiltering)
	assert.Contains(t, bar.View(), "enter to apply")

	bar.SetState(StateHelp)
	assert.Contains(t, bar.View(), "Help")
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetDataset("people", 1, 2)
	bar.SetSelected(1)
	bar.SetState(StateError)
	bar.SetMessage("x")

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Contains(t, bar.View(), "Ready")
}

func TestBar_StartLoading(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(120)

	cmd := bar.StartLoading("Reloading people...")
	require.NotNil(t, cmd)
	assert.Equal(t, StateLoading, bar.State())
	assert.Contains(t, bar.View(), "Reloading people...")

	tick, ok := cmd().(spinner.TickMsg)
	require.True(t, ok)
	_, next := bar.Update(tick)
	assert.NotNil(t, next, "spinner keeps ticking while loading")

	bar.SetState(StateReady)
	_, next = bar.Update(tick)
	assert.Nil(t, next, "ticks stop once loading ends")
}
