package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/diogo/sanai/internal/config"
)

func TestOptionsFromConfig(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "")

	cfg := config.DefaultConfig()
	cfg.Markdown.Style = "light"
	cfg.Markdown.EnableEmoji = false
	cfg.Markdown.TableWrap = false

	opts := OptionsFromConfig(cfg)

	assert.Equal(t, "light", opts.Style)
	assert.False(t, opts.EnableEmoji)
	assert.False(t, opts.TableWrap)
	assert.True(t, opts.PreserveNewLines)
	assert.Equal(t, 80, opts.Width)
}

func TestOptionsFromConfig_EmptyStyleKeepsDefault(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "")

	cfg := config.DefaultConfig()
	cfg.Markdown.Style = ""

	assert.Equal(t, StyleDark, OptionsFromConfig(cfg).Style)
}

func TestOptionsFromConfig_EnvOverride(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "dracula")

	assert.Equal(t, "dracula", OptionsFromConfig(config.DefaultConfig()).Style)
}

func TestLoadOptionsFromConfigWithWidth(t *testing.T) {
	t.Setenv("SANAI_HOME", t.TempDir())
	t.Setenv("GLAMOUR_STYLE", "")

	opts := LoadOptionsFromConfigWithWidth(120)

	assert.Equal(t, 120, opts.Width)
	assert.Equal(t, StyleDark, opts.Style)

	out, err := Markdown("# Test", opts)
	assert.NoError(t, err)
	assert.NotEmpty(t, out)
}
