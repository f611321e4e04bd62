package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaletteByName(t *testing.T) {
	p, ok := PaletteByName("dracula")
	assert.True(t, ok)
	assert.Equal(t, "dracula", p.Name)

	p, ok = PaletteByName("unknown")
	assert.False(t, ok)
	assert.Equal(t, DefaultPalette, p)
}

func TestPaletteNames(t *testing.T) {
	names := PaletteNames()

	assert.Equal(t, "zinc", names[0])
	assert.Contains(t, names, "tokyonight")
	for _, name := range names {
		p, ok := PaletteByName(name)
		assert.True(t, ok, name)
		assert.NotEmpty(t, p.Accent, name)
	}
}
