package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("q", km.Quit))
	assert.True(t, Matches("ctrl+c", km.Quit))
	assert.True(t, Matches("j", km.Down))
	assert.True(t, Matches("down", km.Down))
	assert.True(t, Matches(" ", km.Toggle))
	assert.True(t, Matches("S", km.SortAdd))
	assert.True(t, Matches("v", km.Extend))
	assert.False(t, Matches("s", km.SortAdd))
	assert.False(t, Matches("x", km.Quit))
}

func TestKeyMap_NoOverlaps(t *testing.T) {
	km := DefaultKeyMap()
	seen := make(map[string]string)
	for _, group := range km.FullHelp() {
		for _, b := range group {
			for _, k := range b.Keys() {
				prev, dup := seen[k]
				assert.False(t, dup, "key %q bound to %q and %q", k, prev, b.Help().Desc)
				seen[k] = b.Help().Desc
			}
		}
	}
}

func TestKeyMap_Help(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ShortHelp(), 2)
	assert.Len(t, km.GridHelp(), 5)
	assert.Len(t, km.FullHelp(), 5)
}
